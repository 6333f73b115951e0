package service

import (
	"sort"

	"github.com/streamvault/internal/logger"
	"github.com/streamvault/internal/repository"
)

// AdminDirectory 管理员身份目录：静态配置与库内绑定 Telegram ID 的并集
type AdminDirectory struct {
	static map[int64]struct{}
	repo   repository.AdminRepository
}

// NewAdminDirectory 创建管理员目录
func NewAdminDirectory(staticIDs []int64, repo repository.AdminRepository) *AdminDirectory {
	static := make(map[int64]struct{}, len(staticIDs))
	for _, id := range staticIDs {
		if id > 0 {
			static[id] = struct{}{}
		}
	}
	return &AdminDirectory{static: static, repo: repo}
}

// IsAdmin 判断 Telegram 用户是否为管理员，存储不可用时仅按静态配置判断
func (d *AdminDirectory) IsAdmin(id int64) bool {
	if d == nil || id <= 0 {
		return false
	}
	if _, ok := d.static[id]; ok {
		return true
	}
	if d.repo == nil {
		return false
	}
	exists, err := d.repo.ExistsTelegramID(id)
	if err != nil {
		logger.Warnw("admin_directory_lookup_failed", "telegram_id", id, "error", err)
		return false
	}
	return exists
}

// AdminIDs 全部管理员 Telegram ID（去重、升序）
func (d *AdminDirectory) AdminIDs() ([]int64, error) {
	if d == nil {
		return nil, nil
	}
	seen := make(map[int64]struct{}, len(d.static))
	for id := range d.static {
		seen[id] = struct{}{}
	}
	if d.repo != nil {
		ids, err := d.repo.ListTelegramIDs()
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			if id > 0 {
				seen[id] = struct{}{}
			}
		}
	}
	result := make([]int64, 0, len(seen))
	for id := range seen {
		result = append(result, id)
	}
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result, nil
}
