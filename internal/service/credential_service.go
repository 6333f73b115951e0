package service

import (
	"bufio"
	"errors"
	"strings"
	"time"

	"github.com/streamvault/internal/constants"
	"github.com/streamvault/internal/logger"
	"github.com/streamvault/internal/models"
	"github.com/streamvault/internal/repository"
)

// CredentialService 凭据池管理服务
type CredentialService struct {
	repo      repository.CredentialRepository
	platforms *PlatformService
}

// CredentialInput 凭据新增/编辑输入
type CredentialInput struct {
	Platform string
	Email    string
	Password string
	Status   string
}

// CredentialListInput 凭据列表输入
type CredentialListInput struct {
	Platform string
	Status   string
	Search   string
	Page     int
	PageSize int
}

// CredentialClaimListInput 领取历史输入
type CredentialClaimListInput struct {
	Platform  string
	ClaimedBy int64
	From      *time.Time
	To        *time.Time
	Page      int
	PageSize  int
}

// UploadReport 批量导入结果
type UploadReport struct {
	Added        int   `json:"added"`
	Skipped      int   `json:"skipped"`
	SkippedLines []int `json:"skipped_lines"`
}

// ParsedCredential 解析后的凭据行
type ParsedCredential struct {
	Email    string
	Password string
	Status   string
}

// NewCredentialService 创建凭据池服务
func NewCredentialService(repo repository.CredentialRepository, platforms *PlatformService) *CredentialService {
	return &CredentialService{repo: repo, platforms: platforms}
}

// Add 新增单个凭据
func (s *CredentialService) Add(input CredentialInput) (*models.Credential, error) {
	if s == nil || s.repo == nil {
		return nil, ErrServiceUnavailable
	}
	platform, err := s.platforms.Resolve(input.Platform)
	if err != nil {
		return nil, err
	}
	email := strings.TrimSpace(input.Email)
	password := strings.TrimSpace(input.Password)
	if !isCredentialEmail(email) || password == "" {
		return nil, ErrCredentialInvalid
	}
	status, ok := normalizeCredentialStatus(input.Status)
	if !ok {
		return nil, ErrCredentialInvalid
	}
	credential := &models.Credential{
		PlatformID: platform.ID,
		Email:      email,
		Secret:     password,
		Status:     status,
	}
	if err := s.repo.Create(credential); err != nil {
		return nil, err
	}
	credential.Platform = platform
	return credential, nil
}

// BulkUpload 按行导入 email:password[:status]，格式不符的行计入跳过
func (s *CredentialService) BulkUpload(platformName, content string) (*UploadReport, error) {
	if s == nil || s.repo == nil {
		return nil, ErrServiceUnavailable
	}
	platform, err := s.platforms.Resolve(platformName)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(content) == "" {
		return nil, ErrUploadEmpty
	}

	parsed, skipped := ParseCredentialLines(content)
	items := make([]models.Credential, 0, len(parsed))
	now := time.Now()
	for i, row := range parsed {
		items = append(items, models.Credential{
			PlatformID: platform.ID,
			Email:      row.Email,
			Secret:     row.Password,
			Status:     row.Status,
			// 保持文件内的先后顺序作为分配顺序
			CreatedAt: now.Add(time.Duration(i) * time.Microsecond),
		})
	}
	if err := s.repo.CreateBatch(items); err != nil {
		return nil, err
	}
	report := &UploadReport{Added: len(items), Skipped: len(skipped), SkippedLines: skipped}
	logger.Infow("credential_bulk_upload",
		"platform", platform.Name,
		"added", report.Added,
		"skipped", report.Skipped,
	)
	return report, nil
}

// ParseCredentialLines 解析凭据文本，返回有效行与被跳过的行号（从 1 开始）
func ParseCredentialLines(content string) ([]ParsedCredential, []int) {
	parsed := make([]ParsedCredential, 0)
	skipped := make([]int, 0)
	scanner := bufio.NewScanner(strings.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		parts := strings.Split(line, ":")
		if len(parts) < 2 {
			skipped = append(skipped, lineNo)
			continue
		}
		email := strings.TrimSpace(parts[0])
		password := strings.TrimSpace(parts[1])
		rawStatus := ""
		if len(parts) >= 3 {
			rawStatus = parts[2]
		}
		status, ok := normalizeCredentialStatus(rawStatus)
		if !isCredentialEmail(email) || password == "" || !ok {
			skipped = append(skipped, lineNo)
			continue
		}
		parsed = append(parsed, ParsedCredential{Email: email, Password: password, Status: status})
	}
	return parsed, skipped
}

// Update 编辑凭据，只写入提交的字段；状态修改以读取时的状态为条件
func (s *CredentialService) Update(id uint, input CredentialInput) (*models.Credential, error) {
	if s == nil || s.repo == nil {
		return nil, ErrServiceUnavailable
	}
	credential, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if credential == nil {
		return nil, ErrCredentialNotFound
	}
	update := repository.CredentialUpdate{}
	if email := strings.TrimSpace(input.Email); email != "" {
		if !isCredentialEmail(email) {
			return nil, ErrCredentialInvalid
		}
		update.Email = email
	}
	update.Secret = strings.TrimSpace(input.Password)
	if strings.TrimSpace(input.Status) != "" {
		status, ok := normalizeCredentialStatus(input.Status)
		if !ok {
			return nil, ErrCredentialInvalid
		}
		update.Status = status
		update.ExpectStatus = credential.Status
	}
	if err := s.repo.Update(id, update); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrCredentialConflict
		}
		return nil, err
	}
	updated, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrCredentialNotFound
	}
	return updated, nil
}

// Delete 删除凭据
func (s *CredentialService) Delete(id uint) error {
	if s == nil || s.repo == nil {
		return ErrServiceUnavailable
	}
	affected, err := s.repo.Delete(id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrCredentialNotFound
	}
	return nil
}

// DeleteByPlatform 按平台批量删除，status 为空时清空该平台
func (s *CredentialService) DeleteByPlatform(platformName, status string) (int64, error) {
	if s == nil || s.repo == nil {
		return 0, ErrServiceUnavailable
	}
	platform, err := s.platforms.Resolve(platformName)
	if err != nil {
		return 0, err
	}
	if strings.TrimSpace(status) != "" {
		normalized, ok := normalizeCredentialStatus(status)
		if !ok {
			return 0, ErrCredentialInvalid
		}
		status = normalized
	}
	return s.repo.DeleteByPlatform(platform.ID, status)
}

// List 凭据列表
func (s *CredentialService) List(input CredentialListInput) ([]models.Credential, int64, error) {
	if s == nil || s.repo == nil {
		return nil, 0, ErrServiceUnavailable
	}
	filter := repository.CredentialListFilter{
		Page:     input.Page,
		PageSize: input.PageSize,
		Status:   strings.ToLower(strings.TrimSpace(input.Status)),
		Search:   input.Search,
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

// ListClaims 领取历史投影
func (s *CredentialService) ListClaims(input CredentialClaimListInput) ([]models.Credential, int64, error) {
	if s == nil || s.repo == nil {
		return nil, 0, ErrServiceUnavailable
	}
	filter := repository.CredentialClaimFilter{
		Page:      input.Page,
		PageSize:  input.PageSize,
		ClaimedBy: input.ClaimedBy,
		From:      input.From,
		To:        input.To,
	}
	if strings.TrimSpace(input.Platform) != "" {
		platform, err := s.platforms.Resolve(input.Platform)
		if err != nil {
			return nil, 0, err
		}
		filter.PlatformID = platform.ID
	}
	return s.repo.ListClaims(filter)
}

// GetActiveCredential 查看平台下一个待分配的凭据（不领取），池为空返回 ErrNoCredentialsAvailable
func (s *CredentialService) GetActiveCredential(platformName string) (*models.Credential, error) {
	if s == nil || s.repo == nil {
		return nil, ErrServiceUnavailable
	}
	platform, err := s.platforms.Resolve(platformName)
	if err != nil {
		return nil, err
	}
	credential, err := s.repo.GetOldestActive(platform.ID)
	if err != nil {
		return nil, err
	}
	if credential == nil {
		return nil, ErrNoCredentialsAvailable
	}
	return credential, nil
}

func isCredentialEmail(email string) bool {
	return email != "" && strings.Contains(email, "@")
}

func normalizeCredentialStatus(raw string) (string, bool) {
	status := strings.ToLower(strings.TrimSpace(raw))
	switch status {
	case "":
		return constants.CredentialStatusActive, true
	case constants.CredentialStatusActive, constants.CredentialStatusClaimed, constants.CredentialStatusInactive:
		return status, true
	default:
		return "", false
	}
}
