package service

import (
	crand "crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/streamvault/internal/constants"
	"github.com/streamvault/internal/logger"
	"github.com/streamvault/internal/models"
	"github.com/streamvault/internal/repository"

	"gorm.io/gorm"
)

// KeyService 兑换码服务
type KeyService struct {
	repo           repository.KeyRepository
	redemptionRepo repository.RedemptionRepository
	platforms      *PlatformService
	newCode        func(platformName string) (string, error)
}

// GenerateKeysInput 批量生成兑换码输入
type GenerateKeysInput struct {
	Platform    string
	Count       int
	Uses        int
	AccountText string
}

// KeyListInput 兑换码列表输入
type KeyListInput struct {
	Platform string
	Status   string
	Code     string
	Giveaway *bool
	Page     int
	PageSize int
}

// RedemptionListInput 兑换历史输入
type RedemptionListInput = repository.RedemptionListFilter

// KeyPrize 抽奖奖品兑换码参数
type KeyPrize struct {
	Winner int64
}

// NewKeyService 创建兑换码服务
func NewKeyService(repo repository.KeyRepository, redemptionRepo repository.RedemptionRepository, platforms *PlatformService) *KeyService {
	return &KeyService{
		repo:           repo,
		redemptionRepo: redemptionRepo,
		platforms:      platforms,
		newCode:        GenerateKeyCode,
	}
}

// GenerateKeyCode 生成 <PLATFORM>-XXXX-XXXX-XXXX 格式的兑换码
func GenerateKeyCode(platformName string) (string, error) {
	prefix := keyCodePrefix(platformName)
	if prefix == "" {
		return "", ErrPlatformRequired
	}
	alphabet := constants.KeyCodeAlphabet
	limit := big.NewInt(int64(len(alphabet)))
	var builder strings.Builder
	builder.WriteString(prefix)
	for group := 0; group < constants.KeyCodeGroupCount; group++ {
		builder.WriteByte('-')
		for i := 0; i < constants.KeyCodeGroupLength; i++ {
			n, err := crand.Int(crand.Reader, limit)
			if err != nil {
				return "", err
			}
			builder.WriteByte(alphabet[n.Int64()])
		}
	}
	return builder.String(), nil
}

func keyCodePrefix(platformName string) string {
	var builder strings.Builder
	for _, r := range strings.ToUpper(strings.TrimSpace(platformName)) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			builder.WriteRune(r)
		}
	}
	return builder.String()
}

// Generate 生成单个兑换码
func (s *KeyService) Generate(platformName string, uses int, accountText string) (*models.Key, error) {
	if s == nil || s.repo == nil {
		return nil, ErrServiceUnavailable
	}
	platform, err := s.platforms.Resolve(platformName)
	if err != nil {
		return nil, err
	}
	if uses <= 0 {
		return nil, ErrKeyInvalidInput
	}
	return s.generateWith(models.DB, platform, uses, accountText, nil)
}

// GenerateBatch 批量生成兑换码
func (s *KeyService) GenerateBatch(input GenerateKeysInput) ([]models.Key, error) {
	if s == nil || s.repo == nil {
		return nil, ErrServiceUnavailable
	}
	if input.Count <= 0 || input.Count > constants.KeyGenerateMax || input.Uses <= 0 {
		return nil, ErrKeyInvalidInput
	}
	platform, err := s.platforms.Resolve(input.Platform)
	if err != nil {
		return nil, err
	}
	accountText := strings.TrimSpace(input.AccountText)

	keys := make([]models.Key, 0, input.Count)
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		for i := 0; i < input.Count; i++ {
			key, err := s.generateWith(tx, platform, input.Uses, accountText, nil)
			if err != nil {
				return err
			}
			keys = append(keys, *key)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Infow("keys_generated",
		"platform", platform.Name,
		"count", len(keys),
		"uses", input.Uses,
	)
	return keys, nil
}

// GeneratePrize 在给定事务中为抽奖获胜者生成一次性兑换码
func (s *KeyService) GeneratePrize(tx *gorm.DB, platform *models.Platform, winner int64) (*models.Key, error) {
	if s == nil || s.repo == nil {
		return nil, ErrServiceUnavailable
	}
	if platform == nil {
		return nil, ErrPlatformRequired
	}
	accountText := fmt.Sprintf("%s %s", platform.Name, constants.GiveawayPrizeTextSuffix)
	return s.generateWith(tx, platform, constants.GiveawayPrizeUses, accountText, &KeyPrize{Winner: winner})
}

// generateWith 码冲突时在保存点内重试，db 可为事务
func (s *KeyService) generateWith(db *gorm.DB, platform *models.Platform, uses int, accountText string, prize *KeyPrize) (*models.Key, error) {
	for attempt := 1; attempt <= constants.KeyGenerateRetries; attempt++ {
		code, err := s.newCode(platform.Name)
		if err != nil {
			return nil, err
		}
		key := &models.Key{
			KeyCode:       code,
			PlatformID:    platform.ID,
			Uses:          uses,
			RemainingUses: uses,
			AccountText:   accountText,
			Status:        constants.KeyStatusActive,
		}
		if prize != nil {
			winner := prize.Winner
			key.GiveawayGenerated = true
			key.GiveawayWinner = &winner
		}
		err = db.Transaction(func(sp *gorm.DB) error {
			return s.repo.WithTx(sp).Create(key)
		})
		if err == nil {
			key.Platform = platform
			return key, nil
		}
		if !repository.IsUniqueViolation(err) {
			return nil, err
		}
		logger.Warnw("key_code_collision", "platform", platform.Name, "attempt", attempt)
	}
	return nil, ErrKeyGenerateFailed
}

// FindByCode 按兑换码查询
func (s *KeyService) FindByCode(code string) (*models.Key, error) {
	if s == nil || s.repo == nil {
		return nil, ErrServiceUnavailable
	}
	key, err := s.repo.GetByCode(code)
	if err != nil {
		return nil, err
	}
	if key == nil {
		return nil, ErrKeyNotFound
	}
	return key, nil
}

// List 兑换码列表（含兑换记录）
func (s *KeyService) List(input KeyListInput) ([]models.Key, int64, error) {
	if s == nil || s.repo == nil {
		return nil, 0, ErrServiceUnavailable
	}
	filter := repository.KeyListFilter{
		Page:     input.Page,
		PageSize: input.PageSize,
		Status:   strings.ToLower(strings.TrimSpace(input.Status)),
		Code:     input.Code,
		Giveaway: input.Giveaway,
	}
	if strings.TrimSpace(input.Platform) != "" {
		platform, err := s.platforms.Resolve(input.Platform)
		if err != nil {
			return nil, 0, err
		}
		filter.PlatformID = platform.ID
	}
	return s.repo.List(filter)
}

// Revoke 按选项撤销平台兑换码：last 最近一个，all 全部，claimed 已用尽
func (s *KeyService) Revoke(platformName, option string) (int64, error) {
	if s == nil || s.repo == nil {
		return 0, ErrServiceUnavailable
	}
	platform, err := s.platforms.Resolve(platformName)
	if err != nil {
		return 0, err
	}
	var affected int64
	switch strings.ToLower(strings.TrimSpace(option)) {
	case constants.KeyRevokeLast:
		key, err := s.repo.DeleteLatest(platform.ID)
		if err != nil {
			return 0, err
		}
		if key == nil {
			return 0, ErrKeyNotFound
		}
		affected = 1
	case constants.KeyRevokeAll:
		affected, err = s.repo.Sweep(platform.ID, constants.KeySweepAll)
	case constants.KeyRevokeClaimed:
		affected, err = s.repo.Sweep(platform.ID, constants.KeySweepUsed)
	default:
		return 0, ErrKeyRevokeOption
	}
	if err != nil {
		return 0, err
	}
	logger.Infow("keys_revoked", "platform", platform.Name, "option", option, "affected", affected)
	return affected, nil
}

// Sweep 批量清理兑换码，platformName 为空时作用于全部平台
func (s *KeyService) Sweep(platformName, scope string) (int64, error) {
	if s == nil || s.repo == nil {
		return 0, ErrServiceUnavailable
	}
	scope = strings.ToLower(strings.TrimSpace(scope))
	switch scope {
	case constants.KeySweepAll, constants.KeySweepUsed, constants.KeySweepExpired:
	default:
		return 0, ErrKeySweepScope
	}
	var platformID uint
	if strings.TrimSpace(platformName) != "" {
		platform, err := s.platforms.Resolve(platformName)
		if err != nil {
			return 0, err
		}
		platformID = platform.ID
	}
	affected, err := s.repo.Sweep(platformID, scope)
	if err != nil {
		return 0, err
	}
	logger.Infow("keys_swept", "platform_id", platformID, "scope", scope, "affected", affected)
	return affected, nil
}

// Expire 将单个兑换码标记为过期
func (s *KeyService) Expire(id uint) error {
	if s == nil || s.repo == nil {
		return ErrServiceUnavailable
	}
	affected, err := s.repo.MarkExpired(id)
	if err != nil {
		return err
	}
	if affected == 0 {
		key, err := s.repo.GetByID(id)
		if err != nil {
			return err
		}
		if key == nil {
			return ErrKeyNotFound
		}
		return ErrKeyInvalidInput
	}
	return nil
}

// ExpirePlatform 将平台下全部可用兑换码标记为过期，platformName 为空时作用于全部平台
func (s *KeyService) ExpirePlatform(platformName string) (int64, error) {
	if s == nil || s.repo == nil {
		return 0, ErrServiceUnavailable
	}
	var platformID uint
	if strings.TrimSpace(platformName) != "" {
		platform, err := s.platforms.Resolve(platformName)
		if err != nil {
			return 0, err
		}
		platformID = platform.ID
	}
	return s.repo.ExpireByPlatform(platformID)
}

// ListRedemptions 兑换历史投影
func (s *KeyService) ListRedemptions(filter RedemptionListInput) ([]models.KeyRedemption, int64, error) {
	if s == nil || s.redemptionRepo == nil {
		return nil, 0, ErrServiceUnavailable
	}
	return s.redemptionRepo.List(filter)
}
