package admin

import (
	"strings"

	handlershared "github.com/streamvault/internal/http/handlers/shared"
	"github.com/streamvault/internal/http/message"
	"github.com/streamvault/internal/http/response"
	"github.com/streamvault/internal/repository"
	"github.com/streamvault/internal/service"

	"github.com/gin-gonic/gin"
)

var userErrorRules = []mappedHandlerError{
	{Target: service.ErrNotFound, Code: response.CodeNotFound, Key: "error.user_not_found"},
}

var broadcastErrorRules = []mappedHandlerError{
	{Target: service.ErrBroadcastEmpty, Code: response.CodeBadRequest, Key: "error.broadcast_empty"},
	{Target: service.ErrNotificationDisabled, Code: response.CodeInternal, Key: "error.notification_disabled"},
}

// ListUsers 机器人用户列表
func (h *Handler) ListUsers(c *gin.Context) {
	page, pageSize := handlershared.PageQuery(c)
	users, total, err := h.UserService.List(repository.UserListFilter{
		Page:     page,
		PageSize: pageSize,
		Search:   strings.TrimSpace(c.Query("search")),
	})
	if err != nil {
		respondWithMappedError(c, err, nil, "error.user_fetch_failed")
		return
	}
	response.SuccessWithPage(c, users, response.NewPagination(page, pageSize, total))
}

// GetUserStats 单个用户的兑换统计
func (h *Handler) GetUserStats(c *gin.Context) {
	userID, ok := parseInt64Param(c, "id")
	if !ok {
		return
	}
	stats, err := h.UserService.Stats(userID)
	if err != nil {
		respondWithMappedError(c, err, userErrorRules, "error.user_fetch_failed")
		return
	}
	response.Success(c, stats)
}

// ListBans 封禁列表
func (h *Handler) ListBans(c *gin.Context) {
	bans, err := h.BanService.List()
	if err != nil {
		respondWithMappedError(c, err, nil, "error.internal")
		return
	}
	response.Success(c, bans)
}

// BanUserRequest 封禁请求，identifier 为数字 ID 或 @username
type BanUserRequest struct {
	Identifier string `json:"identifier" binding:"required"`
}

// BanUser 封禁用户
func (h *Handler) BanUser(c *gin.Context) {
	var req BanUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	ban, err := h.BanService.Ban(req.Identifier, operatorName(c))
	if err != nil {
		respondWithMappedError(c, err, banErrorRules, "error.save_failed")
		return
	}
	response.Success(c, ban)
}

// UnbanUser 解除封禁
func (h *Handler) UnbanUser(c *gin.Context) {
	identifier := strings.TrimSpace(c.Param("identifier"))
	if err := h.BanService.Unban(identifier); err != nil {
		respondWithMappedError(c, err, banErrorRules, "error.delete_failed")
		return
	}
	response.Success(c, gin.H{"identifier": identifier})
}

// BroadcastRequest 广播请求
type BroadcastRequest struct {
	Message string `json:"message" binding:"required"`
}

// Broadcast 向全部用户广播消息，逐个投递在后台完成
func (h *Handler) Broadcast(c *gin.Context) {
	var req BroadcastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if err := h.NotificationService.Broadcast(req.Message, operatorName(c)); err != nil {
		respondWithMappedError(c, err, broadcastErrorRules, "error.internal")
		return
	}
	response.SuccessWithMsg(c, message.T("success.broadcast_queue"), nil)
}
