package service

import (
	"strconv"
	"strings"
	"time"

	"github.com/streamvault/internal/logger"
	"github.com/streamvault/internal/models"
	"github.com/streamvault/internal/repository"
)

// BanService 用户封禁服务
type BanService struct {
	repo repository.BanRepository
}

// NewBanService 创建封禁服务
func NewBanService(repo repository.BanRepository) *BanService {
	return &BanService{repo: repo}
}

// NormalizeBanIdentifier 规范化封禁标识：数字 ID 原样保留，用户名统一为小写 @username
func NormalizeBanIdentifier(raw string) (string, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return "", ErrBanIdentifierInvalid
	}
	if id, err := strconv.ParseInt(value, 10, 64); err == nil {
		if id <= 0 {
			return "", ErrBanIdentifierInvalid
		}
		return strconv.FormatInt(id, 10), nil
	}
	name := strings.ToLower(strings.TrimPrefix(value, "@"))
	if name == "" || strings.ContainsAny(name, " \t@") {
		return "", ErrBanIdentifierInvalid
	}
	return "@" + name, nil
}

func banIdentifiers(userID int64, username string) []string {
	identifiers := make([]string, 0, 2)
	if userID > 0 {
		identifiers = append(identifiers, strconv.FormatInt(userID, 10))
	}
	if name := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(username), "@")); name != "" {
		identifiers = append(identifiers, "@"+name)
	}
	return identifiers
}

// IsBanned 按数字 ID 或 @username 任一形式判断是否封禁
func (s *BanService) IsBanned(userID int64, username string) (bool, error) {
	if s == nil || s.repo == nil {
		return false, ErrServiceUnavailable
	}
	identifiers := banIdentifiers(userID, username)
	if len(identifiers) == 0 {
		return false, nil
	}
	return s.repo.ExistsAny(identifiers)
}

// Ban 封禁用户
func (s *BanService) Ban(raw, bannedBy string) (*models.BannedUser, error) {
	if s == nil || s.repo == nil {
		return nil, ErrServiceUnavailable
	}
	identifier, err := NormalizeBanIdentifier(raw)
	if err != nil {
		return nil, err
	}
	ban := &models.BannedUser{
		UserIdentifier: identifier,
		BannedBy:       strings.TrimSpace(bannedBy),
		BannedAt:       time.Now(),
	}
	created, err := s.repo.Create(ban)
	if err != nil {
		return nil, err
	}
	if !created {
		return nil, ErrAlreadyBanned
	}
	logger.Infow("user_banned", "identifier", identifier, "banned_by", ban.BannedBy)
	return ban, nil
}

// Unban 解除封禁
func (s *BanService) Unban(raw string) error {
	if s == nil || s.repo == nil {
		return ErrServiceUnavailable
	}
	identifier, err := NormalizeBanIdentifier(raw)
	if err != nil {
		return err
	}
	affected, err := s.repo.Delete(identifier)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrBanNotFound
	}
	logger.Infow("user_unbanned", "identifier", identifier)
	return nil
}

// List 封禁列表
func (s *BanService) List() ([]models.BannedUser, error) {
	if s == nil || s.repo == nil {
		return nil, ErrServiceUnavailable
	}
	return s.repo.List()
}
