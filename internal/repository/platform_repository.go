package repository

import (
	"errors"
	"strings"

	"github.com/streamvault/internal/models"

	"gorm.io/gorm"
)

// PlatformRepository 平台数据访问接口
type PlatformRepository interface {
	List() ([]models.Platform, error)
	GetByID(id uint) (*models.Platform, error)
	GetByName(name string) (*models.Platform, error)
	WithTx(tx *gorm.DB) *GormPlatformRepository
}

// GormPlatformRepository GORM 实现
type GormPlatformRepository struct {
	db *gorm.DB
}

// NewPlatformRepository 创建平台仓库
func NewPlatformRepository(db *gorm.DB) *GormPlatformRepository {
	return &GormPlatformRepository{db: db}
}

// WithTx 绑定事务
func (r *GormPlatformRepository) WithTx(tx *gorm.DB) *GormPlatformRepository {
	if tx == nil {
		return r
	}
	return &GormPlatformRepository{db: tx}
}

// List 获取全部平台
func (r *GormPlatformRepository) List() ([]models.Platform, error) {
	platforms := make([]models.Platform, 0)
	if err := r.db.Order("sort_order ASC, id ASC").Find(&platforms).Error; err != nil {
		return nil, err
	}
	return platforms, nil
}

// GetByID 根据 ID 获取平台
func (r *GormPlatformRepository) GetByID(id uint) (*models.Platform, error) {
	if id == 0 {
		return nil, nil
	}
	var platform models.Platform
	if err := r.db.First(&platform, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &platform, nil
}

// GetByName 按名称查询平台（大小写不敏感）
func (r *GormPlatformRepository) GetByName(name string) (*models.Platform, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return nil, nil
	}
	var platform models.Platform
	if err := r.db.Where("LOWER(name) = ?", name).First(&platform).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &platform, nil
}
