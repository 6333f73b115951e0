package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/streamvault/internal/constants"
	"github.com/streamvault/internal/models"

	"gorm.io/gorm"
)

// KeyRepository 兑换码数据访问接口
type KeyRepository interface {
	Create(key *models.Key) error
	GetByID(id uint) (*models.Key, error)
	GetByCode(code string) (*models.Key, error)
	ExistsCode(code string) (bool, error)
	Decrement(id uint, at time.Time) (int, error)
	MarkExpired(id uint) (int64, error)
	ExpireByPlatform(platformID uint) (int64, error)
	Sweep(platformID uint, scope string) (int64, error)
	DeleteLatest(platformID uint) (*models.Key, error)
	List(filter KeyListFilter) ([]models.Key, int64, error)
	CountByPlatformStatus() ([]StatusCount, error)
	WithTx(tx *gorm.DB) *GormKeyRepository
}

// GormKeyRepository GORM 实现
type GormKeyRepository struct {
	db *gorm.DB
}

// NewKeyRepository 创建兑换码仓库
func NewKeyRepository(db *gorm.DB) *GormKeyRepository {
	return &GormKeyRepository{db: db}
}

// WithTx 绑定事务
func (r *GormKeyRepository) WithTx(tx *gorm.DB) *GormKeyRepository {
	if tx == nil {
		return r
	}
	return &GormKeyRepository{db: tx}
}

// Create 创建兑换码，重复码返回唯一索引错误
func (r *GormKeyRepository) Create(key *models.Key) error {
	if key == nil {
		return errors.New("key is nil")
	}
	return r.db.Create(key).Error
}

// GetByID 根据 ID 获取兑换码
func (r *GormKeyRepository) GetByID(id uint) (*models.Key, error) {
	if id == 0 {
		return nil, nil
	}
	var key models.Key
	if err := r.db.Preload("Platform").First(&key, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &key, nil
}

// GetByCode 按兑换码精确查询
func (r *GormKeyRepository) GetByCode(code string) (*models.Key, error) {
	code = strings.TrimSpace(strings.ToUpper(code))
	if code == "" {
		return nil, nil
	}
	var key models.Key
	if err := r.db.Preload("Platform").Where("key_code = ?", code).First(&key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &key, nil
}

// ExistsCode 判断兑换码是否已存在
func (r *GormKeyRepository) ExistsCode(code string) (bool, error) {
	var count int64
	if err := r.db.Model(&models.Key{}).
		Where("key_code = ?", strings.TrimSpace(strings.ToUpper(code))).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Decrement 原子扣减剩余次数，归零时同一语句置为 used；未命中返回 ErrConflict
func (r *GormKeyRepository) Decrement(id uint, at time.Time) (int, error) {
	if id == 0 {
		return 0, errors.New("invalid key id")
	}
	result := r.db.Model(&models.Key{}).
		Where("id = ? AND status = ? AND remaining_uses > 0", id, constants.KeyStatusActive).
		Updates(map[string]interface{}{
			"remaining_uses": gorm.Expr("remaining_uses - 1"),
			"status":         gorm.Expr("CASE WHEN remaining_uses - 1 <= 0 THEN ? ELSE status END", constants.KeyStatusUsed),
			"redeemed_at":    at,
		})
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		return 0, ErrConflict
	}

	var remaining int
	if err := r.db.Model(&models.Key{}).
		Select("remaining_uses").
		Where("id = ?", id).
		Scan(&remaining).Error; err != nil {
		return 0, err
	}
	return remaining, nil
}

// MarkExpired 将单个未用尽的兑换码标记为过期
func (r *GormKeyRepository) MarkExpired(id uint) (int64, error) {
	if id == 0 {
		return 0, nil
	}
	result := r.db.Model(&models.Key{}).
		Where("id = ? AND status = ?", id, constants.KeyStatusActive).
		Update("status", constants.KeyStatusExpired)
	return result.RowsAffected, result.Error
}

// ExpireByPlatform 将平台下全部可用兑换码标记为过期，platformID 为 0 时作用于全部平台
func (r *GormKeyRepository) ExpireByPlatform(platformID uint) (int64, error) {
	query := r.db.Model(&models.Key{}).Where("status = ?", constants.KeyStatusActive)
	if platformID > 0 {
		query = query.Where("platform_id = ?", platformID)
	}
	result := query.Update("status", constants.KeyStatusExpired)
	return result.RowsAffected, result.Error
}

// Sweep 按范围批量删除兑换码，platformID 为 0 时作用于全部平台
func (r *GormKeyRepository) Sweep(platformID uint, scope string) (int64, error) {
	query := r.db.Model(&models.Key{})
	if platformID > 0 {
		query = query.Where("platform_id = ?", platformID)
	}
	switch strings.TrimSpace(scope) {
	case constants.KeySweepAll:
		if platformID == 0 {
			query = query.Where("1 = 1")
		}
	case constants.KeySweepUsed:
		query = query.Where("status = ?", constants.KeyStatusUsed)
	case constants.KeySweepExpired:
		query = query.Where("status = ?", constants.KeyStatusExpired)
	default:
		return 0, errors.New("invalid sweep scope")
	}
	result := query.Delete(&models.Key{})
	return result.RowsAffected, result.Error
}

// DeleteLatest 删除平台下最近创建的兑换码，返回被删除的记录
func (r *GormKeyRepository) DeleteLatest(platformID uint) (*models.Key, error) {
	if platformID == 0 {
		return nil, errors.New("invalid platform id")
	}
	var key models.Key
	if err := r.db.Where("platform_id = ?", platformID).
		Order("created_at DESC, id DESC").
		First(&key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if err := r.db.Delete(&models.Key{}, key.ID).Error; err != nil {
		return nil, err
	}
	return &key, nil
}

// List 兑换码列表，附带兑换记录
func (r *GormKeyRepository) List(filter KeyListFilter) ([]models.Key, int64, error) {
	query := r.db.Model(&models.Key{}).
		Preload("Platform").
		Preload("Redemptions", func(db *gorm.DB) *gorm.DB {
			return db.Order("redeemed_at ASC, id ASC")
		})
	if filter.PlatformID > 0 {
		query = query.Where("platform_id = ?", filter.PlatformID)
	}
	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("status = ?", status)
	}
	if code := strings.TrimSpace(strings.ToUpper(filter.Code)); code != "" {
		query = query.Where("key_code LIKE ?", "%"+code+"%")
	}
	if filter.Giveaway != nil {
		query = query.Where("giveaway_generated = ?", *filter.Giveaway)
	}

	items := make([]models.Key, 0)
	total, err := countAndPage(query.Order("created_at DESC, id DESC"), filter.Page, filter.PageSize, &items)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// CountByPlatformStatus 按平台与状态统计兑换码数量
func (r *GormKeyRepository) CountByPlatformStatus() ([]StatusCount, error) {
	var rows []StatusCount
	if err := r.db.Model(&models.Key{}).
		Select("platform_id, status, COUNT(*) as total").
		Group("platform_id, status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
