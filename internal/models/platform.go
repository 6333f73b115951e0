package models

import "time"

// Platform 平台表（静态参考数据）
type Platform struct {
	ID        uint      `gorm:"primarykey" json:"id"`                              // 主键
	Name      string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"name"` // 平台名称（大小写不敏感唯一）
	Emoji     string    `gorm:"type:varchar(16);not null;default:''" json:"emoji"` // 展示图标
	SortOrder int       `gorm:"not null;default:0" json:"sort_order"`              // 排序
	CreatedAt time.Time `json:"created_at"`                                        // 创建时间
}

// TableName 指定表名
func (Platform) TableName() string {
	return "platforms"
}

// Label 返回带图标的平台名
func (p Platform) Label() string {
	if p.Emoji == "" {
		return p.Name
	}
	return p.Emoji + " " + p.Name
}

// DefaultPlatforms 启动时写入的平台列表
func DefaultPlatforms() []Platform {
	return []Platform{
		{Name: "Netflix", Emoji: "🎬", SortOrder: 1},
		{Name: "Crunchyroll", Emoji: "🍜", SortOrder: 2},
		{Name: "WWE", Emoji: "🤼", SortOrder: 3},
		{Name: "ParamountPlus", Emoji: "⭐", SortOrder: 4},
		{Name: "Dazn", Emoji: "🥊", SortOrder: 5},
		{Name: "MolotovTV", Emoji: "📺", SortOrder: 6},
		{Name: "DisneyPlus", Emoji: "🏰", SortOrder: 7},
		{Name: "PSNFA", Emoji: "🎮", SortOrder: 8},
		{Name: "Xbox", Emoji: "🎯", SortOrder: 9},
	}
}
