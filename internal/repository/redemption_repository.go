package repository

import (
	"errors"
	"strings"

	"github.com/streamvault/internal/models"

	"gorm.io/gorm"
)

// RedemptionRepository 兑换记录数据访问接口
type RedemptionRepository interface {
	Create(record *models.KeyRedemption) error
	LatestForUser(userID int64) (*models.KeyRedemption, error)
	ExistsForKeyUser(keyID uint, userID int64) (bool, error)
	CountByKey(keyID uint) (int64, error)
	ListByUser(userID int64) ([]models.KeyRedemption, error)
	List(filter RedemptionListFilter) ([]models.KeyRedemption, int64, error)
	Count() (int64, error)
	WithTx(tx *gorm.DB) *GormRedemptionRepository
}

// GormRedemptionRepository GORM 实现
type GormRedemptionRepository struct {
	db *gorm.DB
}

// NewRedemptionRepository 创建兑换记录仓库
func NewRedemptionRepository(db *gorm.DB) *GormRedemptionRepository {
	return &GormRedemptionRepository{db: db}
}

// WithTx 绑定事务
func (r *GormRedemptionRepository) WithTx(tx *gorm.DB) *GormRedemptionRepository {
	if tx == nil {
		return r
	}
	return &GormRedemptionRepository{db: tx}
}

// Create 追加兑换记录
func (r *GormRedemptionRepository) Create(record *models.KeyRedemption) error {
	if record == nil || record.KeyID == 0 {
		return errors.New("invalid redemption record")
	}
	return r.db.Create(record).Error
}

// LatestForUser 获取用户最近一次兑换（跨全部兑换码）
func (r *GormRedemptionRepository) LatestForUser(userID int64) (*models.KeyRedemption, error) {
	var record models.KeyRedemption
	if err := r.db.Where("user_id = ?", userID).
		Order("redeemed_at DESC, id DESC").
		First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// ExistsForKeyUser 判断用户是否已兑换过该兑换码
func (r *GormRedemptionRepository) ExistsForKeyUser(keyID uint, userID int64) (bool, error) {
	var count int64
	if err := r.db.Model(&models.KeyRedemption{}).
		Where("key_id = ? AND user_id = ?", keyID, userID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountByKey 统计兑换码的兑换次数
func (r *GormRedemptionRepository) CountByKey(keyID uint) (int64, error) {
	var count int64
	if err := r.db.Model(&models.KeyRedemption{}).Where("key_id = ?", keyID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ListByUser 用户的全部兑换记录
func (r *GormRedemptionRepository) ListByUser(userID int64) ([]models.KeyRedemption, error) {
	items := make([]models.KeyRedemption, 0)
	if err := r.db.Preload("Key.Platform").
		Where("user_id = ?", userID).
		Order("redeemed_at DESC, id DESC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// List 兑换历史
func (r *GormRedemptionRepository) List(filter RedemptionListFilter) ([]models.KeyRedemption, int64, error) {
	query := r.db.Model(&models.KeyRedemption{}).Preload("Key.Platform")
	if filter.PlatformID > 0 || strings.TrimSpace(filter.KeyCode) != "" {
		query = query.Joins("JOIN keys ON keys.id = key_redemptions.key_id")
		if filter.PlatformID > 0 {
			query = query.Where("keys.platform_id = ?", filter.PlatformID)
		}
		if code := strings.TrimSpace(strings.ToUpper(filter.KeyCode)); code != "" {
			query = query.Where("keys.key_code = ?", code)
		}
	}
	if filter.UserID != 0 {
		query = query.Where("key_redemptions.user_id = ?", filter.UserID)
	}
	if filter.From != nil {
		query = query.Where("key_redemptions.redeemed_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("key_redemptions.redeemed_at <= ?", *filter.To)
	}

	items := make([]models.KeyRedemption, 0)
	total, err := countAndPage(query.Order("key_redemptions.redeemed_at DESC, key_redemptions.id DESC"), filter.Page, filter.PageSize, &items)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Count 兑换总次数
func (r *GormRedemptionRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&models.KeyRedemption{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
