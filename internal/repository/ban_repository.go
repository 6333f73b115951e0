package repository

import (
	"strings"

	"github.com/streamvault/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BanRepository 封禁数据访问接口
type BanRepository interface {
	Create(ban *models.BannedUser) (bool, error)
	Delete(identifier string) (int64, error)
	ExistsAny(identifiers []string) (bool, error)
	List() ([]models.BannedUser, error)
}

// GormBanRepository GORM 实现
type GormBanRepository struct {
	db *gorm.DB
}

// NewBanRepository 创建封禁仓库
func NewBanRepository(db *gorm.DB) *GormBanRepository {
	return &GormBanRepository{db: db}
}

// Create 新增封禁，已存在时返回 false
func (r *GormBanRepository) Create(ban *models.BannedUser) (bool, error) {
	result := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_identifier"}},
		DoNothing: true,
	}).Create(ban)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Delete 解除封禁
func (r *GormBanRepository) Delete(identifier string) (int64, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return 0, nil
	}
	result := r.db.Where("user_identifier = ?", identifier).Delete(&models.BannedUser{})
	return result.RowsAffected, result.Error
}

// ExistsAny 任一标识命中即视为封禁
func (r *GormBanRepository) ExistsAny(identifiers []string) (bool, error) {
	if len(identifiers) == 0 {
		return false, nil
	}
	var count int64
	if err := r.db.Model(&models.BannedUser{}).
		Where("user_identifier IN ?", identifiers).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// List 封禁列表
func (r *GormBanRepository) List() ([]models.BannedUser, error) {
	items := make([]models.BannedUser, 0)
	if err := r.db.Order("banned_at DESC, id DESC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
