package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/streamvault/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserRepository Telegram 用户数据访问接口
type UserRepository interface {
	Touch(user *models.User) (bool, error)
	GetByUserID(userID int64) (*models.User, error)
	GetByUsername(username string) (*models.User, error)
	List(filter UserListFilter) ([]models.User, int64, error)
	ListIDs() ([]int64, error)
	Count() (int64, error)
	LockByUserID(userID int64) (*models.User, error)
	WithTx(tx *gorm.DB) *GormUserRepository
}

// GormUserRepository GORM 实现
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建用户仓库
func NewUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// WithTx 绑定事务
func (r *GormUserRepository) WithTx(tx *gorm.DB) *GormUserRepository {
	if tx == nil {
		return r
	}
	return &GormUserRepository{db: tx}
}

// Touch 首次交互时注册用户，已存在则刷新用户名与最近交互时间；返回是否新建
func (r *GormUserRepository) Touch(user *models.User) (bool, error) {
	if user == nil || user.UserID == 0 {
		return false, errors.New("invalid user")
	}
	now := time.Now()
	if user.JoinedAt.IsZero() {
		user.JoinedAt = now
	}
	user.LastSeenAt = &now
	result := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(user)
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected > 0 {
		return true, nil
	}
	updates := map[string]interface{}{"last_seen_at": now}
	if strings.TrimSpace(user.Username) != "" {
		updates["username"] = user.Username
	}
	if strings.TrimSpace(user.FullName) != "" {
		updates["full_name"] = user.FullName
	}
	if err := r.db.Model(&models.User{}).Where("user_id = ?", user.UserID).Updates(updates).Error; err != nil {
		return false, err
	}
	return false, nil
}

// GetByUserID 根据 Telegram 用户ID获取用户
func (r *GormUserRepository) GetByUserID(userID int64) (*models.User, error) {
	var user models.User
	if err := r.db.Where("user_id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// GetByUsername 根据用户名获取用户（大小写不敏感）
func (r *GormUserRepository) GetByUsername(username string) (*models.User, error) {
	username = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(username), "@"))
	if username == "" {
		return nil, nil
	}
	var user models.User
	if err := r.db.Where("LOWER(username) = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// List 用户列表
func (r *GormUserRepository) List(filter UserListFilter) ([]models.User, int64, error) {
	query := applySearch(r.db.Model(&models.User{}), filter.Search, "username", "full_name")
	items := make([]models.User, 0)
	total, err := countAndPage(query.Order("joined_at DESC, id DESC"), filter.Page, filter.PageSize, &items)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// ListIDs 全部用户的 Telegram ID（用于广播）
func (r *GormUserRepository) ListIDs() ([]int64, error) {
	ids := make([]int64, 0)
	if err := r.db.Model(&models.User{}).Order("id ASC").Pluck("user_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// Count 用户总数
func (r *GormUserRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&models.User{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// LockByUserID 锁定用户行，串行化同一用户的并发兑换，用户不存在返回 nil
func (r *GormUserRepository) LockByUserID(userID int64) (*models.User, error) {
	var user models.User
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}
