package service

import (
	"strings"

	"github.com/streamvault/internal/logger"
	"github.com/streamvault/internal/models"
	"github.com/streamvault/internal/repository"
)

// UserService Telegram 用户服务
type UserService struct {
	repo           repository.UserRepository
	redemptionRepo repository.RedemptionRepository
}

// UserStats 用户个人统计
type UserStats struct {
	User        *models.User           `json:"user"`
	Redeemed    int                    `json:"redeemed"`
	Redemptions []models.KeyRedemption `json:"redemptions"`
}

// NewUserService 创建用户服务
func NewUserService(repo repository.UserRepository, redemptionRepo repository.RedemptionRepository) *UserService {
	return &UserService{repo: repo, redemptionRepo: redemptionRepo}
}

// Register 首次交互懒注册，已存在则刷新资料，返回是否新用户
func (s *UserService) Register(user RedeemUser) (bool, error) {
	if s == nil || s.repo == nil {
		return false, ErrServiceUnavailable
	}
	if user.ID <= 0 {
		return false, ErrRedeemUserRequired
	}
	created, err := s.repo.Touch(&models.User{
		UserID:   user.ID,
		Username: strings.TrimPrefix(strings.TrimSpace(user.Username), "@"),
		FullName: strings.TrimSpace(user.FullName),
	})
	if err != nil {
		return false, err
	}
	if created {
		logger.Infow("user_registered", "user_id", user.ID, "username", user.Username)
	}
	return created, nil
}

// Stats 用户个人统计
func (s *UserService) Stats(userID int64) (*UserStats, error) {
	if s == nil || s.repo == nil || s.redemptionRepo == nil {
		return nil, ErrServiceUnavailable
	}
	user, err := s.repo.GetByUserID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	redemptions, err := s.redemptionRepo.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	return &UserStats{User: user, Redeemed: len(redemptions), Redemptions: redemptions}, nil
}

// List 用户列表
func (s *UserService) List(filter repository.UserListFilter) ([]models.User, int64, error) {
	if s == nil || s.repo == nil {
		return nil, 0, ErrServiceUnavailable
	}
	return s.repo.List(filter)
}
