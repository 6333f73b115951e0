package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/streamvault/internal/config"
	"github.com/streamvault/internal/constants"
	"github.com/streamvault/internal/logger"
	"github.com/streamvault/internal/models"
	"github.com/streamvault/internal/repository"

	"gorm.io/gorm"
)

const (
	defaultRedeemCooldown     = 10 * time.Minute
	defaultMaxClaimAttempts   = 3
	minimumMaxClaimAttempts   = 1
	redemptionConflictBackoff = 20 * time.Millisecond
)

// RedeemUser 兑换发起人
type RedeemUser struct {
	ID       int64
	Username string
	FullName string
}

// RedemptionResult 兑换成功结果
type RedemptionResult struct {
	Key           *models.Key
	Platform      *models.Platform
	Credential    *models.Credential
	RemainingUses int
	RedeemedAt    time.Time
}

// RedemptionService 兑换引擎：校验兑换码并原子分配凭据
type RedemptionService struct {
	keyRepo        repository.KeyRepository
	credentialRepo repository.CredentialRepository
	redemptionRepo repository.RedemptionRepository
	userRepo       repository.UserRepository
	bans           *BanService
	notifier       Notifier
	cooldown       time.Duration
	maxAttempts    int
	now            func() time.Time
}

// NewRedemptionService 创建兑换引擎
func NewRedemptionService(
	cfg config.RedemptionConfig,
	keyRepo repository.KeyRepository,
	credentialRepo repository.CredentialRepository,
	redemptionRepo repository.RedemptionRepository,
	userRepo repository.UserRepository,
	bans *BanService,
	notifier Notifier,
) *RedemptionService {
	cooldown := defaultRedeemCooldown
	if cfg.CooldownSeconds > 0 {
		cooldown = time.Duration(cfg.CooldownSeconds) * time.Second
	}
	maxAttempts := defaultMaxClaimAttempts
	if cfg.MaxClaimAttempts >= minimumMaxClaimAttempts {
		maxAttempts = cfg.MaxClaimAttempts
	}
	return &RedemptionService{
		keyRepo:        keyRepo,
		credentialRepo: credentialRepo,
		redemptionRepo: redemptionRepo,
		userRepo:       userRepo,
		bans:           bans,
		notifier:       notifier,
		cooldown:       cooldown,
		maxAttempts:    maxAttempts,
		now:            time.Now,
	}
}

// Cooldown 当前冷却时长
func (s *RedemptionService) Cooldown() time.Duration {
	if s == nil {
		return 0
	}
	return s.cooldown
}

// Redeem 兑换流程：封禁 → 冷却 → 查码 → 状态 → 重复兑换 → 分配凭据并提交
func (s *RedemptionService) Redeem(ctx context.Context, code string, user RedeemUser) (*RedemptionResult, error) {
	if s == nil || s.keyRepo == nil || s.credentialRepo == nil || s.redemptionRepo == nil {
		return nil, ErrServiceUnavailable
	}
	if user.ID <= 0 {
		return nil, ErrRedeemUserRequired
	}
	code = strings.TrimSpace(strings.ToUpper(code))
	log := logger.SW("user_id", user.ID, "key_code", code)

	if s.bans != nil {
		banned, err := s.bans.IsBanned(user.ID, user.Username)
		if err != nil {
			log.Errorw("redemption_ban_check_failed", "error", err)
			return nil, err
		}
		if banned {
			log.Infow("redemption_rejected", "reason", "banned")
			return nil, newRedemptionError(ErrBanned)
		}
	}
	var (
		result *RedemptionResult
		err    error
	)
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		result, err = s.attempt(code, user)
		if !errors.Is(err, repository.ErrConflict) {
			break
		}
		log.Debugw("redemption_conflict_retry", "attempt", attempt)
		if attempt < s.maxAttempts {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * redemptionConflictBackoff):
			}
		}
	}
	if errors.Is(err, repository.ErrConflict) {
		log.Warnw("redemption_conflict_exhausted", "attempts", s.maxAttempts)
		return nil, newRedemptionError(ErrConcurrencyConflict)
	}
	if err != nil {
		if rejection, ok := AsRedemptionError(err); ok {
			log.Infow("redemption_rejected", "reason", rejection.Kind.Error())
			return nil, rejection
		}
		log.Errorw("redemption_failed", "error", err)
		return nil, err
	}

	log.Infow("redemption_committed",
		"platform", result.Platform.Name,
		"credential_id", result.Credential.ID,
		"remaining_uses", result.RemainingUses,
	)
	if s.notifier != nil {
		s.notifier.KeyRedeemed(RedemptionEvent{
			Platform:        result.Platform.Name,
			KeyCode:         result.Key.KeyCode,
			UserID:          user.ID,
			Username:        user.Username,
			FullName:        user.FullName,
			CredentialEmail: result.Credential.Email,
			RemainingUses:   result.RemainingUses,
			At:              result.RedeemedAt,
		})
	}
	return result, nil
}

// attempt 单次事务：任一拒绝或冲突都会整体回滚
func (s *RedemptionService) attempt(code string, user RedeemUser) (*RedemptionResult, error) {
	var result *RedemptionResult
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		keyRepo := s.keyRepo.WithTx(tx)
		credentialRepo := s.credentialRepo.WithTx(tx)
		redemptionRepo := s.redemptionRepo.WithTx(tx)
		if s.userRepo != nil {
			userRepo := s.userRepo.WithTx(tx)
			// 先确保用户行存在再加锁
			if _, err := userRepo.Touch(&models.User{UserID: user.ID, Username: user.Username, FullName: user.FullName}); err != nil {
				return err
			}
			if _, err := userRepo.LockByUserID(user.ID); err != nil {
				return err
			}
		}

		now := s.now()
		latest, err := redemptionRepo.LatestForUser(user.ID)
		if err != nil {
			return err
		}
		if latest != nil {
			if elapsed := now.Sub(latest.RedeemedAt); elapsed < s.cooldown {
				return &RedemptionError{Kind: ErrCooldownActive, Remaining: s.cooldown - elapsed}
			}
		}
		if code == "" {
			return newRedemptionError(ErrInvalidKey)
		}

		key, err := keyRepo.GetByCode(code)
		if err != nil {
			return err
		}
		if key == nil {
			return newRedemptionError(ErrInvalidKey)
		}
		if key.Status == constants.KeyStatusUsed || key.RemainingUses <= 0 {
			return newRedemptionError(ErrAlreadyUsed)
		}
		if key.Status == constants.KeyStatusExpired {
			return newRedemptionError(ErrKeyExpired)
		}
		if key.Status != constants.KeyStatusActive {
			return newRedemptionError(ErrInvalidKey)
		}

		redeemed, err := redemptionRepo.ExistsForKeyUser(key.ID, user.ID)
		if err != nil {
			return err
		}
		if redeemed {
			return newRedemptionError(ErrAlreadyRedeemedByUser)
		}

		credential, err := credentialRepo.ClaimNext(key.PlatformID, repository.ClaimInfo{
			UserID:   user.ID,
			Username: user.Username,
			FullName: user.FullName,
			At:       now,
		})
		if err != nil {
			return err
		}
		if credential == nil {
			return newRedemptionError(ErrNoCredentialsAvailable)
		}

		remaining, err := keyRepo.Decrement(key.ID, now)
		if err != nil {
			return err
		}
		credentialID := credential.ID
		record := &models.KeyRedemption{
			KeyID:        key.ID,
			UserID:       user.ID,
			CredentialID: &credentialID,
			Username:     user.Username,
			FullName:     user.FullName,
			RedeemedAt:   now,
		}
		if err := redemptionRepo.Create(record); err != nil {
			if repository.IsUniqueViolation(err) {
				return newRedemptionError(ErrAlreadyRedeemedByUser)
			}
			return err
		}

		key.RemainingUses = remaining
		if remaining <= 0 {
			key.Status = constants.KeyStatusUsed
		}
		key.RedeemedAt = &now
		platform := key.Platform
		if platform == nil {
			platform = &models.Platform{ID: key.PlatformID}
		}
		result = &RedemptionResult{
			Key:           key,
			Platform:      platform,
			Credential:    credential,
			RemainingUses: remaining,
			RedeemedAt:    now,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// History 用户兑换记录
func (s *RedemptionService) History(userID int64) ([]models.KeyRedemption, error) {
	if s == nil || s.redemptionRepo == nil {
		return nil, ErrServiceUnavailable
	}
	return s.redemptionRepo.ListByUser(userID)
}
