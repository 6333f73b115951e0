package service

import (
	"context"
	"time"

	"github.com/streamvault/internal/cache"
	"github.com/streamvault/internal/constants"
	"github.com/streamvault/internal/repository"
)

const (
	dashboardCacheKey          = "dashboard:overview"
	dashboardCacheTTL          = 30 * time.Second
	dashboardLowStockThreshold = 3
)

// DashboardService 仪表盘服务
// 说明：聚合用户、兑换码、凭据库存等统计，供后台首页与机器人统计菜单使用。
type DashboardService struct {
	platforms      *PlatformService
	credentialRepo repository.CredentialRepository
	keyRepo        repository.KeyRepository
	redemptionRepo repository.RedemptionRepository
	userRepo       repository.UserRepository
	giveawayRepo   repository.GiveawayRepository
}

// NewDashboardService 创建仪表盘服务
func NewDashboardService(
	platforms *PlatformService,
	credentialRepo repository.CredentialRepository,
	keyRepo repository.KeyRepository,
	redemptionRepo repository.RedemptionRepository,
	userRepo repository.UserRepository,
	giveawayRepo repository.GiveawayRepository,
) *DashboardService {
	return &DashboardService{
		platforms:      platforms,
		credentialRepo: credentialRepo,
		keyRepo:        keyRepo,
		redemptionRepo: redemptionRepo,
		userRepo:       userRepo,
		giveawayRepo:   giveawayRepo,
	}
}

// StatusTotals 按状态汇总
type StatusTotals struct {
	Total    int64 `json:"total"`
	Active   int64 `json:"active"`
	Claimed  int64 `json:"claimed,omitempty"`
	Inactive int64 `json:"inactive,omitempty"`
	Used     int64 `json:"used,omitempty"`
	Expired  int64 `json:"expired,omitempty"`
}

// PlatformBreakdown 单个平台的库存统计
type PlatformBreakdown struct {
	PlatformID  uint         `json:"platform_id"`
	Name        string       `json:"name"`
	Emoji       string       `json:"emoji"`
	Credentials StatusTotals `json:"credentials"`
	Keys        StatusTotals `json:"keys"`
	LowStock    bool         `json:"low_stock"`
}

// DashboardOverview 仪表盘总览
type DashboardOverview struct {
	Users          int64               `json:"users"`
	Redemptions    int64               `json:"redemptions"`
	Credentials    StatusTotals        `json:"credentials"`
	Keys           StatusTotals        `json:"keys"`
	ActiveGiveaway bool                `json:"active_giveaway"`
	Platforms      []PlatformBreakdown `json:"platforms"`
	GeneratedAt    string              `json:"generated_at"`
}

// GetOverview 获取仪表盘总览，forceRefresh 为 false 时优先读缓存
func (s *DashboardService) GetOverview(ctx context.Context, forceRefresh bool) (*DashboardOverview, error) {
	if s == nil || s.credentialRepo == nil || s.keyRepo == nil {
		return nil, ErrServiceUnavailable
	}
	if !forceRefresh {
		var cached DashboardOverview
		hit, cacheErr := cache.GetJSON(ctx, dashboardCacheKey, &cached)
		if cacheErr == nil && hit {
			return &cached, nil
		}
	}

	platforms, err := s.platforms.List()
	if err != nil {
		return nil, err
	}
	credentialRows, err := s.credentialRepo.CountByPlatformStatus()
	if err != nil {
		return nil, err
	}
	keyRows, err := s.keyRepo.CountByPlatformStatus()
	if err != nil {
		return nil, err
	}
	users, err := s.userRepo.Count()
	if err != nil {
		return nil, err
	}
	redemptions, err := s.redemptionRepo.Count()
	if err != nil {
		return nil, err
	}
	active, err := s.giveawayRepo.GetActive()
	if err != nil {
		return nil, err
	}

	breakdown := make(map[uint]*PlatformBreakdown, len(platforms))
	order := make([]uint, 0, len(platforms))
	for _, platform := range platforms {
		breakdown[platform.ID] = &PlatformBreakdown{PlatformID: platform.ID, Name: platform.Name, Emoji: platform.Emoji}
		order = append(order, platform.ID)
	}
	overview := &DashboardOverview{
		Users:          users,
		Redemptions:    redemptions,
		ActiveGiveaway: active != nil,
		GeneratedAt:    time.Now().Format(time.RFC3339),
	}
	for _, row := range credentialRows {
		addStatus(&overview.Credentials, row.Status, row.Total)
		if item, ok := breakdown[row.PlatformID]; ok {
			addStatus(&item.Credentials, row.Status, row.Total)
		}
	}
	for _, row := range keyRows {
		addStatus(&overview.Keys, row.Status, row.Total)
		if item, ok := breakdown[row.PlatformID]; ok {
			addStatus(&item.Keys, row.Status, row.Total)
		}
	}
	overview.Platforms = make([]PlatformBreakdown, 0, len(order))
	for _, id := range order {
		item := breakdown[id]
		item.LowStock = item.Keys.Active > 0 && item.Credentials.Active < dashboardLowStockThreshold
		overview.Platforms = append(overview.Platforms, *item)
	}

	_ = cache.SetJSON(ctx, dashboardCacheKey, overview, dashboardCacheTTL)
	return overview, nil
}

func addStatus(totals *StatusTotals, status string, count int64) {
	totals.Total += count
	switch status {
	case constants.CredentialStatusActive:
		totals.Active += count
	case constants.CredentialStatusClaimed:
		totals.Claimed += count
	case constants.CredentialStatusInactive:
		totals.Inactive += count
	case constants.KeyStatusUsed:
		totals.Used += count
	case constants.KeyStatusExpired:
		totals.Expired += count
	}
}
