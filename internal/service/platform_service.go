package service

import (
	"strings"

	"github.com/streamvault/internal/models"
	"github.com/streamvault/internal/repository"
)

// PlatformService 平台目录服务
type PlatformService struct {
	repo repository.PlatformRepository
}

// NewPlatformService 创建平台目录服务
func NewPlatformService(repo repository.PlatformRepository) *PlatformService {
	return &PlatformService{repo: repo}
}

// List 获取全部平台
func (s *PlatformService) List() ([]models.Platform, error) {
	if s == nil || s.repo == nil {
		return nil, ErrServiceUnavailable
	}
	return s.repo.List()
}

// Resolve 按名称解析平台（大小写不敏感）
func (s *PlatformService) Resolve(name string) (*models.Platform, error) {
	if s == nil || s.repo == nil {
		return nil, ErrServiceUnavailable
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrPlatformRequired
	}
	platform, err := s.repo.GetByName(name)
	if err != nil {
		return nil, err
	}
	if platform == nil {
		return nil, ErrPlatformNotFound
	}
	return platform, nil
}

// Get 按 ID 获取平台
func (s *PlatformService) Get(id uint) (*models.Platform, error) {
	if s == nil || s.repo == nil {
		return nil, ErrServiceUnavailable
	}
	if id == 0 {
		return nil, ErrPlatformRequired
	}
	platform, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if platform == nil {
		return nil, ErrPlatformNotFound
	}
	return platform, nil
}

// NameIndex 平台 ID 到平台的映射
func (s *PlatformService) NameIndex() (map[uint]models.Platform, error) {
	platforms, err := s.List()
	if err != nil {
		return nil, err
	}
	index := make(map[uint]models.Platform, len(platforms))
	for _, platform := range platforms {
		index[platform.ID] = platform
	}
	return index, nil
}
