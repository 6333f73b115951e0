package repository

import (
	"errors"
	"strings"

	"github.com/streamvault/internal/models"

	"gorm.io/gorm"
)

// AdminRepository 管理员数据访问接口
type AdminRepository interface {
	GetByUsername(username string) (*models.AdminCredential, error)
	GetByID(id uint) (*models.AdminCredential, error)
	List() ([]models.AdminCredential, error)
	ListTelegramIDs() ([]int64, error)
	ExistsTelegramID(telegramID int64) (bool, error)
	Count() (int64, error)
	Create(admin *models.AdminCredential) error
	Update(admin *models.AdminCredential) error
	Delete(id uint) error
}

// GormAdminRepository GORM 实现
type GormAdminRepository struct {
	db *gorm.DB
}

// NewAdminRepository 创建管理员仓库
func NewAdminRepository(db *gorm.DB) *GormAdminRepository {
	return &GormAdminRepository{db: db}
}

// GetByUsername 根据用户名获取管理员
func (r *GormAdminRepository) GetByUsername(username string) (*models.AdminCredential, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, nil
	}
	var admin models.AdminCredential
	if err := r.db.Where("username = ?", username).First(&admin).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &admin, nil
}

// GetByID 根据 ID 获取管理员
func (r *GormAdminRepository) GetByID(id uint) (*models.AdminCredential, error) {
	var admin models.AdminCredential
	if err := r.db.First(&admin, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &admin, nil
}

// List 获取管理员列表
func (r *GormAdminRepository) List() ([]models.AdminCredential, error) {
	admins := make([]models.AdminCredential, 0)
	err := r.db.
		Select("id", "username", "role", "telegram_user_id", "last_login_at", "created_at", "updated_at").
		Order("id ASC").
		Find(&admins).Error
	if err != nil {
		return nil, err
	}
	return admins, nil
}

// ListTelegramIDs 已绑定 Telegram 的管理员ID
func (r *GormAdminRepository) ListTelegramIDs() ([]int64, error) {
	ids := make([]int64, 0)
	if err := r.db.Model(&models.AdminCredential{}).
		Where("telegram_user_id IS NOT NULL AND telegram_user_id > 0").
		Order("id ASC").
		Pluck("telegram_user_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// ExistsTelegramID 判断 Telegram ID 是否绑定了管理员
func (r *GormAdminRepository) ExistsTelegramID(telegramID int64) (bool, error) {
	if telegramID <= 0 {
		return false, nil
	}
	var count int64
	if err := r.db.Model(&models.AdminCredential{}).
		Where("telegram_user_id = ?", telegramID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Count 统计管理员数量
func (r *GormAdminRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&models.AdminCredential{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Create 创建管理员
func (r *GormAdminRepository) Create(admin *models.AdminCredential) error {
	return r.db.Create(admin).Error
}

// Update 更新管理员
func (r *GormAdminRepository) Update(admin *models.AdminCredential) error {
	return r.db.Save(admin).Error
}

// Delete 删除管理员
func (r *GormAdminRepository) Delete(id uint) error {
	if id == 0 {
		return nil
	}
	return r.db.Delete(&models.AdminCredential{}, id).Error
}
