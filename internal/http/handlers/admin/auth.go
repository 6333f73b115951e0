package admin

import (
	"errors"
	"time"

	handlershared "github.com/streamvault/internal/http/handlers/shared"
	"github.com/streamvault/internal/http/message"
	"github.com/streamvault/internal/http/response"
	"github.com/streamvault/internal/service"

	"github.com/gin-gonic/gin"
)

// GetImageCaptcha 获取登录图片验证码
func (h *Handler) GetImageCaptcha(c *gin.Context) {
	if !h.CaptchaService.Enabled() {
		respondError(c, response.CodeBadRequest, "error.captcha_unavailable", nil)
		return
	}
	challenge, err := h.CaptchaService.GenerateImageChallenge()
	if err != nil {
		if errors.Is(err, service.ErrCaptchaConfigInvalid) {
			respondError(c, response.CodeBadRequest, "error.captcha_unavailable", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.captcha_generate_failed", err)
		return
	}
	response.Success(c, challenge)
}

// LoginRequest 登录请求
type LoginRequest struct {
	Username       string                              `json:"username" binding:"required"`
	Password       string                              `json:"password" binding:"required"`
	CaptchaPayload handlershared.CaptchaPayloadRequest `json:"captcha_payload"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	Token     string                 `json:"token"`
	User      map[string]interface{} `json:"user"`
	ExpiresAt string                 `json:"expires_at"`
}

// AdminLogin 管理员登录
func (h *Handler) AdminLogin(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	if captchaErr := h.CaptchaService.Verify(req.CaptchaPayload.ToServicePayload()); captchaErr != nil {
		switch {
		case errors.Is(captchaErr, service.ErrCaptchaRequired):
			respondError(c, response.CodeBadRequest, "error.captcha_required", nil)
		case errors.Is(captchaErr, service.ErrCaptchaInvalid):
			respondError(c, response.CodeBadRequest, "error.captcha_invalid", nil)
		default:
			respondError(c, response.CodeInternal, "error.captcha_config_invalid", captchaErr)
		}
		return
	}

	admin, token, expiresAt, err := h.AuthService.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			requestLog(c).Warnw("admin_login_rejected", "username", req.Username, "client_ip", c.ClientIP())
			respondError(c, response.CodeUnauthorized, "error.admin_login_invalid", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.login_failed", err)
		return
	}
	requestLog(c).Infow("admin_login_succeeded", "admin_id", admin.ID, "username", admin.Username)
	response.Success(c, LoginResponse{
		Token: token,
		User: map[string]interface{}{
			"id":       admin.ID,
			"username": admin.Username,
			"role":     admin.Role,
		},
		ExpiresAt: expiresAt.Format(time.RFC3339),
	})
}

// GetAdminMe 当前登录管理员信息
func (h *Handler) GetAdminMe(c *gin.Context) {
	id, ok := getAdminID(c)
	if !ok {
		return
	}
	admin, err := h.AdminRepo.GetByID(id)
	if err != nil {
		respondError(c, response.CodeInternal, "error.admin_fetch_failed", err)
		return
	}
	if admin == nil {
		respondError(c, response.CodeNotFound, "error.admin_not_found", nil)
		return
	}
	response.Success(c, admin)
}

// UpdatePasswordRequest 修改密码请求
type UpdatePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// UpdateAdminPassword 修改管理员密码，成功后旧 Token 全部失效
func (h *Handler) UpdateAdminPassword(c *gin.Context) {
	id, ok := getAdminID(c)
	if !ok {
		return
	}

	var req UpdatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	if err := h.AuthService.ChangePassword(id, req.OldPassword, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidPassword):
			respondError(c, response.CodeBadRequest, "error.password_old_invalid", nil)
		case errors.Is(err, service.ErrWeakPassword):
			respondWeakPassword(c, err)
		case errors.Is(err, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "error.admin_not_found", nil)
		default:
			respondError(c, response.CodeInternal, "error.save_failed", err)
		}
		return
	}
	response.Success(c, nil)
}

// BindTelegramRequest 绑定 Telegram 请求，telegram_user_id 为 0 表示解绑
type BindTelegramRequest struct {
	TelegramUserID int64 `json:"telegram_user_id"`
}

// BindAdminTelegram 绑定当前管理员的 Telegram ID，用于接收兑换通知
func (h *Handler) BindAdminTelegram(c *gin.Context) {
	id, ok := getAdminID(c)
	if !ok {
		return
	}
	var req BindTelegramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	admin, err := h.AdminAccountService.BindTelegram(id, req.TelegramUserID)
	if err != nil {
		respondWithMappedError(c, err, adminAccountErrorRules, "error.save_failed")
		return
	}
	response.Success(c, admin)
}

func respondWeakPassword(c *gin.Context, err error) {
	if perr, ok := err.(interface {
		Key() string
		Args() []interface{}
	}); ok {
		respondErrorWithMsg(c, response.CodeBadRequest, message.Sprintf(perr.Key(), perr.Args()...), nil)
		return
	}
	respondError(c, response.CodeBadRequest, "error.password_weak", nil)
}
