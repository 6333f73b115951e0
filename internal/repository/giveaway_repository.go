package repository

import (
	"errors"
	"time"

	"github.com/streamvault/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GiveawayRepository 抽奖数据访问接口
type GiveawayRepository interface {
	Create(giveaway *models.Giveaway) error
	GetByID(id uint) (*models.Giveaway, error)
	GetActive() (*models.Giveaway, error)
	GetActiveForUpdate() (*models.Giveaway, error)
	Close(id uint, reason string, at time.Time) (int64, error)
	ListDue(now time.Time) ([]models.Giveaway, error)
	AddParticipant(participant *models.GiveawayParticipant) (bool, error)
	ListParticipants(giveawayID uint) ([]models.GiveawayParticipant, error)
	CountParticipants(giveawayID uint) (int64, error)
	WithTx(tx *gorm.DB) *GormGiveawayRepository
}

// GormGiveawayRepository GORM 实现
type GormGiveawayRepository struct {
	db *gorm.DB
}

// NewGiveawayRepository 创建抽奖仓库
func NewGiveawayRepository(db *gorm.DB) *GormGiveawayRepository {
	return &GormGiveawayRepository{db: db}
}

// WithTx 绑定事务
func (r *GormGiveawayRepository) WithTx(tx *gorm.DB) *GormGiveawayRepository {
	if tx == nil {
		return r
	}
	return &GormGiveawayRepository{db: tx}
}

// Create 创建抽奖；与进行中的抽奖冲突时返回唯一索引错误
func (r *GormGiveawayRepository) Create(giveaway *models.Giveaway) error {
	if giveaway == nil {
		return errors.New("giveaway is nil")
	}
	return r.db.Create(giveaway).Error
}

// GetByID 根据 ID 获取抽奖
func (r *GormGiveawayRepository) GetByID(id uint) (*models.Giveaway, error) {
	if id == 0 {
		return nil, nil
	}
	var giveaway models.Giveaway
	if err := r.db.Preload("Platform").First(&giveaway, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &giveaway, nil
}

// GetActive 获取进行中的抽奖
func (r *GormGiveawayRepository) GetActive() (*models.Giveaway, error) {
	return r.findActive(r.db)
}

// GetActiveForUpdate 加锁获取进行中的抽奖
func (r *GormGiveawayRepository) GetActiveForUpdate() (*models.Giveaway, error) {
	return r.findActive(r.db.Clauses(clause.Locking{Strength: "UPDATE"}))
}

func (r *GormGiveawayRepository) findActive(query *gorm.DB) (*models.Giveaway, error) {
	var giveaway models.Giveaway
	if err := query.Preload("Platform").
		Where("active = ?", true).
		Order("id DESC").
		First(&giveaway).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &giveaway, nil
}

// Close 关闭进行中的抽奖，返回受影响行数（0 表示已被关闭）
func (r *GormGiveawayRepository) Close(id uint, reason string, at time.Time) (int64, error) {
	if id == 0 {
		return 0, nil
	}
	result := r.db.Model(&models.Giveaway{}).
		Where("id = ? AND active = ?", id, true).
		Updates(map[string]interface{}{
			"active":       false,
			"close_reason": reason,
			"closed_at":    at,
		})
	return result.RowsAffected, result.Error
}

// ListDue 已到期但仍进行中的抽奖
func (r *GormGiveawayRepository) ListDue(now time.Time) ([]models.Giveaway, error) {
	items := make([]models.Giveaway, 0)
	if err := r.db.Preload("Platform").
		Where("active = ? AND end_time <= ?", true, now).
		Order("end_time ASC, id ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// AddParticipant 幂等加入抽奖，已参与时返回 false
func (r *GormGiveawayRepository) AddParticipant(participant *models.GiveawayParticipant) (bool, error) {
	if participant == nil || participant.GiveawayID == 0 {
		return false, errors.New("invalid participant")
	}
	result := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "giveaway_id"}, {Name: "user_id"}},
		DoNothing: true,
	}).Create(participant)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ListParticipants 抽奖参与者快照
func (r *GormGiveawayRepository) ListParticipants(giveawayID uint) ([]models.GiveawayParticipant, error) {
	items := make([]models.GiveawayParticipant, 0)
	if err := r.db.Where("giveaway_id = ?", giveawayID).
		Order("joined_at ASC, id ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// CountParticipants 参与人数
func (r *GormGiveawayRepository) CountParticipants(giveawayID uint) (int64, error) {
	var count int64
	if err := r.db.Model(&models.GiveawayParticipant{}).
		Where("giveaway_id = ?", giveawayID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
