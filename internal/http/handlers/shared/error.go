package shared

import (
	"errors"

	"github.com/streamvault/internal/http/message"
	"github.com/streamvault/internal/http/response"
	"github.com/streamvault/internal/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// MappedError 业务错误到接口响应的映射规则
type MappedError struct {
	Target error
	Code   int
	Key    string
}

// RequestLog 提供携带 request_id 的日志实例。
func RequestLog(c *gin.Context) *zap.SugaredLogger {
	if c == nil {
		return logger.S()
	}
	if id := c.GetString("request_id"); id != "" {
		return logger.SW("request_id", id)
	}
	return logger.S()
}

// RespondError 返回文案目录中的错误响应，并在有原始错误时记录日志。
func RespondError(c *gin.Context, code int, key string, err error) {
	RespondErrorWithMsg(c, code, message.T(key), err)
}

// RespondErrorWithMsg 返回自定义消息错误响应，并在有原始错误时记录日志。
func RespondErrorWithMsg(c *gin.Context, code int, msg string, err error) {
	appErr := response.WrapError(code, msg, err)
	if err != nil {
		RequestLog(c).Errorw("handler_error",
			"code", appErr.Code,
			"message", appErr.Message,
			"error", err,
		)
	}
	response.Error(c, appErr.Code, appErr.Message)
}

// RespondMapped 按规则匹配业务错误，未命中时以 fallback 响应并记录原始错误。
func RespondMapped(c *gin.Context, err error, rules []MappedError, fallbackCode int, fallbackKey string) {
	for _, rule := range rules {
		if errors.Is(err, rule.Target) {
			RespondError(c, rule.Code, rule.Key, nil)
			return
		}
	}
	RespondError(c, fallbackCode, fallbackKey, err)
}

// ConcatRules 合并多组映射规则
func ConcatRules(groups ...[]MappedError) []MappedError {
	total := 0
	for _, group := range groups {
		total += len(group)
	}
	result := make([]MappedError, 0, total)
	for _, group := range groups {
		result = append(result, group...)
	}
	return result
}
