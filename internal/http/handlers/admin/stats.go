package admin

import (
	"github.com/streamvault/internal/http/response"

	"github.com/gin-gonic/gin"
)

// GetStats 后台统计总览，refresh=1 时跳过缓存
func (h *Handler) GetStats(c *gin.Context) {
	forceRefresh := c.Query("refresh") == "1" || c.Query("refresh") == "true"
	overview, err := h.DashboardService.GetOverview(c.Request.Context(), forceRefresh)
	if err != nil {
		respondWithMappedError(c, err, nil, "error.stats_fetch_failed")
		return
	}
	response.Success(c, overview)
}

// ListPlatforms 平台列表
func (h *Handler) ListPlatforms(c *gin.Context) {
	platforms, err := h.PlatformService.List()
	if err != nil {
		respondWithMappedError(c, err, nil, "error.platform_fetch_failed")
		return
	}
	response.Success(c, platforms)
}
