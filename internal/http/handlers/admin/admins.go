package admin

import (
	"strings"

	"github.com/streamvault/internal/http/response"
	"github.com/streamvault/internal/service"

	"github.com/gin-gonic/gin"
)

// ListAdmins 管理员列表（仅所有者）
func (h *Handler) ListAdmins(c *gin.Context) {
	admins, err := h.AdminAccountService.List()
	if err != nil {
		respondWithMappedError(c, err, nil, "error.admin_fetch_failed")
		return
	}
	response.Success(c, admins)
}

// CreateAdminRequest 新建管理员请求
type CreateAdminRequest struct {
	Username       string `json:"username" binding:"required"`
	Password       string `json:"password" binding:"required"`
	Role           string `json:"role"`
	TelegramUserID *int64 `json:"telegram_user_id"`
}

// CreateAdmin 新建管理员（仅所有者）
func (h *Handler) CreateAdmin(c *gin.Context) {
	var req CreateAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	admin, err := h.AdminAccountService.Create(service.CreateAdminInput{
		Username:       req.Username,
		Password:       req.Password,
		Role:           req.Role,
		TelegramUserID: req.TelegramUserID,
	})
	if err != nil {
		if isWeakPassword(err) {
			respondWeakPassword(c, err)
			return
		}
		respondWithMappedError(c, err, adminAccountErrorRules, "error.save_failed")
		return
	}
	requestLog(c).Infow("admin_account_created", "operator", operatorName(c), "username", admin.Username)
	response.Success(c, admin)
}

// DeleteAdmin 删除管理员（仅所有者，所有者账号不可删除）
func (h *Handler) DeleteAdmin(c *gin.Context) {
	username := strings.TrimSpace(c.Param("username"))
	if username == "" {
		respondError(c, response.CodeBadRequest, "error.admin_invalid", nil)
		return
	}
	if err := h.AdminAccountService.Delete(username); err != nil {
		respondWithMappedError(c, err, adminAccountErrorRules, "error.delete_failed")
		return
	}
	requestLog(c).Infow("admin_account_deleted", "operator", operatorName(c), "username", username)
	response.Success(c, gin.H{"username": username})
}

func isWeakPassword(err error) bool {
	_, ok := err.(interface{ Key() string })
	return ok
}
