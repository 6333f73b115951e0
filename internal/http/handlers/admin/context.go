package admin

import (
	"strconv"
	"strings"
	"time"

	handlershared "github.com/streamvault/internal/http/handlers/shared"
	"github.com/streamvault/internal/http/response"

	"github.com/gin-gonic/gin"
)

func getAdminID(c *gin.Context) (uint, bool) {
	return handlershared.GetContextUintWithKeys(c, handlershared.ContextAdminID, "error.admin_id_invalid", "error.admin_id_type_invalid")
}

func getAdminRole(c *gin.Context) string {
	return c.GetString(handlershared.ContextAdminRole)
}

// operatorName 操作人标识，用于封禁记录与广播日志
func operatorName(c *gin.Context) string {
	if username := strings.TrimSpace(c.GetString(handlershared.ContextUsername)); username != "" {
		return "admin:" + username
	}
	return "admin"
}

func parseUintParam(c *gin.Context, name string) (uint, bool) {
	raw := strings.TrimSpace(c.Param(name))
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "error.id_invalid", nil)
		return 0, false
	}
	return uint(id), true
}

func parseInt64Param(c *gin.Context, name string) (int64, bool) {
	raw := strings.TrimSpace(c.Param(name))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		respondError(c, response.CodeBadRequest, "error.id_invalid", nil)
		return 0, false
	}
	return id, true
}

func normalizePagination(page, pageSize int) (int, int) {
	return handlershared.NormalizePagination(page, pageSize)
}

// parseTimeQuery 解析日期查询参数，支持 YYYY-MM-DD 与 RFC3339；endOfDay 时日期取当天结束
func parseTimeQuery(c *gin.Context, name string, endOfDay bool) (*time.Time, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, true
	}
	if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
		return &parsed, true
	}
	parsed, err := time.ParseInLocation("2006-01-02", raw, time.Local)
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.date_invalid", nil)
		return nil, false
	}
	if endOfDay {
		parsed = parsed.Add(24*time.Hour - time.Nanosecond)
	}
	return &parsed, true
}

func parseInt64Query(c *gin.Context, name string) (int64, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0, true
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || value < 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return 0, false
	}
	return value, true
}
