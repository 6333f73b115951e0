package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/streamvault/internal/constants"
	"github.com/streamvault/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CredentialRepository 凭据池数据访问接口
type CredentialRepository interface {
	Create(credential *models.Credential) error
	CreateBatch(items []models.Credential) error
	GetByID(id uint) (*models.Credential, error)
	GetOldestActive(platformID uint) (*models.Credential, error)
	Claim(id uint, claim ClaimInfo) error
	ClaimNext(platformID uint, claim ClaimInfo) (*models.Credential, error)
	Update(id uint, update CredentialUpdate) error
	Delete(id uint) (int64, error)
	DeleteByPlatform(platformID uint, status string) (int64, error)
	List(filter CredentialListFilter) ([]models.Credential, int64, error)
	ListClaims(filter CredentialClaimFilter) ([]models.Credential, int64, error)
	CountByPlatformStatus() ([]StatusCount, error)
	WithTx(tx *gorm.DB) *GormCredentialRepository
}

// GormCredentialRepository GORM 实现
type GormCredentialRepository struct {
	db *gorm.DB
}

// NewCredentialRepository 创建凭据仓库
func NewCredentialRepository(db *gorm.DB) *GormCredentialRepository {
	return &GormCredentialRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCredentialRepository) WithTx(tx *gorm.DB) *GormCredentialRepository {
	if tx == nil {
		return r
	}
	return &GormCredentialRepository{db: tx}
}

// Create 创建单个凭据
func (r *GormCredentialRepository) Create(credential *models.Credential) error {
	if credential == nil {
		return errors.New("credential is nil")
	}
	return r.db.Create(credential).Error
}

// CreateBatch 批量创建凭据
func (r *GormCredentialRepository) CreateBatch(items []models.Credential) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.CreateInBatches(&items, 200).Error
}

// GetByID 根据 ID 获取凭据
func (r *GormCredentialRepository) GetByID(id uint) (*models.Credential, error) {
	if id == 0 {
		return nil, nil
	}
	var credential models.Credential
	if err := r.db.Preload("Platform").First(&credential, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &credential, nil
}

// GetOldestActive 获取平台下最早入库的可用凭据
func (r *GormCredentialRepository) GetOldestActive(platformID uint) (*models.Credential, error) {
	if platformID == 0 {
		return nil, errors.New("invalid platform id")
	}
	var credential models.Credential
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
		Where("platform_id = ? AND status = ?", platformID, constants.CredentialStatusActive).
		Order("created_at ASC, id ASC").
		First(&credential).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &credential, nil
}

// Claim 将凭据从 active 置为 claimed，未命中返回 ErrConflict
func (r *GormCredentialRepository) Claim(id uint, claim ClaimInfo) error {
	if id == 0 {
		return errors.New("invalid credential id")
	}
	at := claim.At
	if at.IsZero() {
		at = time.Now()
	}
	result := r.db.Model(&models.Credential{}).
		Where("id = ? AND status = ?", id, constants.CredentialStatusActive).
		Updates(map[string]interface{}{
			"status":              constants.CredentialStatusClaimed,
			"claimed_by":          claim.UserID,
			"claimed_by_username": claim.Username,
			"claimed_by_name":     claim.FullName,
			"claimed_at":          at,
			"updated_at":          at,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrConflict
	}
	return nil
}

// ClaimNext 选取并领取平台下最早的可用凭据，池为空返回 nil
func (r *GormCredentialRepository) ClaimNext(platformID uint, claim ClaimInfo) (*models.Credential, error) {
	credential, err := r.GetOldestActive(platformID)
	if err != nil || credential == nil {
		return nil, err
	}
	if claim.At.IsZero() {
		claim.At = time.Now()
	}
	if err := r.Claim(credential.ID, claim); err != nil {
		return nil, err
	}
	userID := claim.UserID
	at := claim.At
	credential.Status = constants.CredentialStatusClaimed
	credential.ClaimedBy = &userID
	credential.ClaimedByUsername = claim.Username
	credential.ClaimedByName = claim.FullName
	credential.ClaimedAt = &at
	return credential, nil
}

// CredentialUpdate 凭据编辑字段，空值表示不修改
type CredentialUpdate struct {
	Email  string
	Secret string
	Status string
	// ExpectStatus 修改状态时要求的当前状态
	ExpectStatus string
}

// Update 只写入给定字段；修改状态时以 ExpectStatus 为条件，未命中返回 ErrConflict
func (r *GormCredentialRepository) Update(id uint, update CredentialUpdate) error {
	if id == 0 {
		return errors.New("invalid credential id")
	}
	fields := map[string]interface{}{}
	if update.Email != "" {
		fields["email"] = update.Email
	}
	if update.Secret != "" {
		fields["password"] = update.Secret
	}
	query := r.db.Model(&models.Credential{}).Where("id = ?", id)
	if update.Status != "" {
		if update.ExpectStatus == "" {
			return errors.New("expected status required")
		}
		fields["status"] = update.Status
		query = query.Where("status = ?", update.ExpectStatus)
	}
	if len(fields) == 0 {
		return nil
	}
	fields["updated_at"] = time.Now()
	result := query.Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrConflict
	}
	return nil
}

// Delete 删除凭据
func (r *GormCredentialRepository) Delete(id uint) (int64, error) {
	if id == 0 {
		return 0, nil
	}
	result := r.db.Delete(&models.Credential{}, id)
	return result.RowsAffected, result.Error
}

// DeleteByPlatform 按平台批量删除凭据，status 为空时删除全部
func (r *GormCredentialRepository) DeleteByPlatform(platformID uint, status string) (int64, error) {
	if platformID == 0 {
		return 0, errors.New("invalid platform id")
	}
	query := r.db.Where("platform_id = ?", platformID)
	if status = strings.TrimSpace(status); status != "" {
		query = query.Where("status = ?", status)
	}
	result := query.Delete(&models.Credential{})
	return result.RowsAffected, result.Error
}

// List 凭据列表
func (r *GormCredentialRepository) List(filter CredentialListFilter) ([]models.Credential, int64, error) {
	query := r.db.Model(&models.Credential{}).Preload("Platform")
	if filter.PlatformID > 0 {
		query = query.Where("platform_id = ?", filter.PlatformID)
	}
	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("status = ?", status)
	}
	query = applySearch(query, filter.Search, "email", "claimed_by_username")

	items := make([]models.Credential, 0)
	total, err := countAndPage(query.Order("created_at ASC, id ASC"), filter.Page, filter.PageSize, &items)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// ListClaims 领取历史，按领取时间倒序
func (r *GormCredentialRepository) ListClaims(filter CredentialClaimFilter) ([]models.Credential, int64, error) {
	query := r.db.Model(&models.Credential{}).Preload("Platform").
		Where("status = ?", constants.CredentialStatusClaimed)
	if filter.PlatformID > 0 {
		query = query.Where("platform_id = ?", filter.PlatformID)
	}
	if filter.ClaimedBy > 0 {
		query = query.Where("claimed_by = ?", filter.ClaimedBy)
	}
	if filter.From != nil {
		query = query.Where("claimed_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("claimed_at <= ?", *filter.To)
	}

	items := make([]models.Credential, 0)
	total, err := countAndPage(query.Order("claimed_at DESC, id DESC"), filter.Page, filter.PageSize, &items)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// CountByPlatformStatus 按平台与状态统计凭据数量
func (r *GormCredentialRepository) CountByPlatformStatus() ([]StatusCount, error) {
	var rows []StatusCount
	if err := r.db.Model(&models.Credential{}).
		Select("platform_id, status, COUNT(*) as total").
		Group("platform_id, status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
