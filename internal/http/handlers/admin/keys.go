package admin

import (
	"strconv"
	"strings"

	handlershared "github.com/streamvault/internal/http/handlers/shared"
	"github.com/streamvault/internal/http/response"
	"github.com/streamvault/internal/service"

	"github.com/gin-gonic/gin"
)

// ListKeys 兑换码列表（含兑换记录）
func (h *Handler) ListKeys(c *gin.Context) {
	page, pageSize := handlershared.PageQuery(c)
	input := service.KeyListInput{
		Platform: c.Query("platform"),
		Status:   c.Query("status"),
		Code:     c.Query("code"),
		Page:     page,
		PageSize: pageSize,
	}
	if raw := strings.TrimSpace(c.Query("giveaway")); raw != "" {
		flag, err := strconv.ParseBool(raw)
		if err != nil {
			respondError(c, response.CodeBadRequest, "error.bad_request", nil)
			return
		}
		input.Giveaway = &flag
	}
	keys, total, err := h.KeyService.List(input)
	if err != nil {
		respondWithMappedError(c, err, keyErrorRules, "error.key_fetch_failed")
		return
	}
	response.SuccessWithPage(c, keys, response.NewPagination(page, pageSize, total))
}

// GenerateKeysRequest 批量生成请求
type GenerateKeysRequest struct {
	Platform    string `json:"platform" binding:"required"`
	Count       int    `json:"count"`
	Uses        int    `json:"uses"`
	AccountText string `json:"account_text"`
}

// GenerateKeys 批量生成兑换码，count 与 uses 缺省为 1
func (h *Handler) GenerateKeys(c *gin.Context) {
	var req GenerateKeysRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if req.Count == 0 {
		req.Count = 1
	}
	if req.Uses == 0 {
		req.Uses = 1
	}
	keys, err := h.KeyService.GenerateBatch(service.GenerateKeysInput{
		Platform:    req.Platform,
		Count:       req.Count,
		Uses:        req.Uses,
		AccountText: req.AccountText,
	})
	if err != nil {
		respondWithMappedError(c, err, keyErrorRules, "error.key_generate_failed")
		return
	}
	requestLog(c).Infow("admin_keys_generated",
		"operator", operatorName(c),
		"platform", req.Platform,
		"count", len(keys),
	)
	response.Success(c, keys)
}

// RevokeKeysRequest 撤销请求
type RevokeKeysRequest struct {
	Platform string `json:"platform" binding:"required"`
	Option   string `json:"option" binding:"required"`
}

// RevokeKeys 按选项撤销兑换码：last / all / claimed
func (h *Handler) RevokeKeys(c *gin.Context) {
	var req RevokeKeysRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	removed, err := h.KeyService.Revoke(req.Platform, req.Option)
	if err != nil {
		respondWithMappedError(c, err, keyErrorRules, "error.delete_failed")
		return
	}
	requestLog(c).Infow("admin_keys_revoked",
		"operator", operatorName(c),
		"platform", req.Platform,
		"option", req.Option,
		"removed", removed,
	)
	response.Success(c, gin.H{"removed": removed})
}

// SweepKeysRequest 批量清理请求，platform 为空时作用于全部平台
type SweepKeysRequest struct {
	Platform string `json:"platform"`
	Status   string `json:"status" binding:"required"`
}

// SweepKeys 批量清理兑换码
func (h *Handler) SweepKeys(c *gin.Context) {
	var req SweepKeysRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	removed, err := h.KeyService.Sweep(req.Platform, req.Status)
	if err != nil {
		respondWithMappedError(c, err, keyErrorRules, "error.delete_failed")
		return
	}
	response.Success(c, gin.H{"removed": removed})
}

// ExpireKey 将单个兑换码标记为过期
func (h *Handler) ExpireKey(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	if err := h.KeyService.Expire(id); err != nil {
		respondWithMappedError(c, err, keyErrorRules, "error.save_failed")
		return
	}
	response.Success(c, gin.H{"id": id})
}

// ExpireKeysRequest 平台批量过期请求
type ExpireKeysRequest struct {
	Platform string `json:"platform"`
}

// ExpireKeys 将平台内全部可用兑换码标记为过期
func (h *Handler) ExpireKeys(c *gin.Context) {
	var req ExpireKeysRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	expired, err := h.KeyService.ExpirePlatform(req.Platform)
	if err != nil {
		respondWithMappedError(c, err, keyErrorRules, "error.save_failed")
		return
	}
	response.Success(c, gin.H{"expired": expired})
}

// ListKeyRedemptions 兑换历史
func (h *Handler) ListKeyRedemptions(c *gin.Context) {
	page, pageSize := handlershared.PageQuery(c)
	userID, ok := parseInt64Query(c, "user_id")
	if !ok {
		return
	}
	from, ok := parseTimeQuery(c, "from", false)
	if !ok {
		return
	}
	to, ok := parseTimeQuery(c, "to", true)
	if !ok {
		return
	}
	filter := service.RedemptionListInput{
		Page:     page,
		PageSize: pageSize,
		UserID:   userID,
		KeyCode:  strings.TrimSpace(c.Query("code")),
		From:     from,
		To:       to,
	}
	if name := strings.TrimSpace(c.Query("platform")); name != "" {
		platform, err := h.PlatformService.Resolve(name)
		if err != nil {
			respondWithMappedError(c, err, platformErrorRules, "error.key_fetch_failed")
			return
		}
		filter.PlatformID = platform.ID
	}
	items, total, err := h.KeyService.ListRedemptions(filter)
	if err != nil {
		respondWithMappedError(c, err, nil, "error.key_fetch_failed")
		return
	}
	response.SuccessWithPage(c, items, response.NewPagination(page, pageSize, total))
}
