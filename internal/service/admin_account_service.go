package service

import (
	"context"
	"strings"

	"github.com/streamvault/internal/cache"
	"github.com/streamvault/internal/constants"
	"github.com/streamvault/internal/logger"
	"github.com/streamvault/internal/models"
	"github.com/streamvault/internal/repository"
)

// AdminAccountService 后台管理员账号服务（所有者操作）
type AdminAccountService struct {
	repo repository.AdminRepository
	auth *AuthService
}

// CreateAdminInput 新建管理员输入
type CreateAdminInput struct {
	Username       string
	Password       string
	Role           string
	TelegramUserID *int64
}

// NewAdminAccountService 创建管理员账号服务
func NewAdminAccountService(repo repository.AdminRepository, auth *AuthService) *AdminAccountService {
	return &AdminAccountService{repo: repo, auth: auth}
}

// List 管理员列表
func (s *AdminAccountService) List() ([]models.AdminCredential, error) {
	if s == nil || s.repo == nil {
		return nil, ErrServiceUnavailable
	}
	return s.repo.List()
}

// Create 新建管理员，所有者只能由初始化流程产生
func (s *AdminAccountService) Create(input CreateAdminInput) (*models.AdminCredential, error) {
	if s == nil || s.repo == nil || s.auth == nil {
		return nil, ErrServiceUnavailable
	}
	username := strings.TrimSpace(input.Username)
	if username == "" || len(username) > 64 || strings.ContainsAny(username, " \t/") {
		return nil, ErrAdminInvalid
	}
	role := strings.ToLower(strings.TrimSpace(input.Role))
	if role == "" {
		role = constants.AdminRoleAdmin
	}
	if role != constants.AdminRoleAdmin {
		return nil, ErrAdminRoleForbidden
	}
	if err := s.auth.ValidatePassword(input.Password); err != nil {
		return nil, err
	}
	existing, err := s.repo.GetByUsername(username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrAdminExists
	}
	if input.TelegramUserID != nil {
		if *input.TelegramUserID <= 0 {
			return nil, ErrAdminInvalid
		}
		bound, err := s.repo.ExistsTelegramID(*input.TelegramUserID)
		if err != nil {
			return nil, err
		}
		if bound {
			return nil, ErrTelegramIDDuplicate
		}
	}
	hash, err := s.auth.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}
	admin := &models.AdminCredential{
		Username:       username,
		PasswordHash:   hash,
		Role:           role,
		TelegramUserID: input.TelegramUserID,
	}
	if err := s.repo.Create(admin); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrAdminExists
		}
		return nil, err
	}
	logger.Infow("admin_created", "username", username, "role", role)
	return admin, nil
}

// Delete 删除管理员，所有者不可删除
func (s *AdminAccountService) Delete(username string) error {
	if s == nil || s.repo == nil {
		return ErrServiceUnavailable
	}
	admin, err := s.repo.GetByUsername(strings.TrimSpace(username))
	if err != nil {
		return err
	}
	if admin == nil {
		return ErrAdminNotFound
	}
	if admin.IsOwner() {
		return ErrCannotDeleteOwner
	}
	if err := s.repo.Delete(admin.ID); err != nil {
		return err
	}
	_ = cache.DelAdminAuthState(context.Background(), admin.ID)
	logger.Infow("admin_deleted", "username", admin.Username)
	return nil
}

// BindTelegram 绑定或解绑（telegramID 为 0）管理员的 Telegram ID
func (s *AdminAccountService) BindTelegram(adminID uint, telegramID int64) (*models.AdminCredential, error) {
	if s == nil || s.repo == nil {
		return nil, ErrServiceUnavailable
	}
	admin, err := s.repo.GetByID(adminID)
	if err != nil {
		return nil, err
	}
	if admin == nil {
		return nil, ErrAdminNotFound
	}
	if telegramID < 0 {
		return nil, ErrAdminInvalid
	}
	if telegramID == 0 {
		admin.TelegramUserID = nil
	} else {
		if admin.TelegramUserID == nil || *admin.TelegramUserID != telegramID {
			bound, err := s.repo.ExistsTelegramID(telegramID)
			if err != nil {
				return nil, err
			}
			if bound {
				return nil, ErrTelegramIDDuplicate
			}
		}
		admin.TelegramUserID = &telegramID
	}
	if err := s.repo.Update(admin); err != nil {
		return nil, err
	}
	return admin, nil
}
