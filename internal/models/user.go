package models

import "time"

// User Telegram 用户表（首次交互时懒注册）
type User struct {
	ID         uint       `gorm:"primarykey" json:"id"`                                       // 主键
	UserID     int64      `gorm:"uniqueIndex;not null" json:"user_id"`                        // Telegram 用户ID
	Username   string     `gorm:"type:varchar(64);not null;default:'';index" json:"username"` // 用户名（不含 @）
	FullName   string     `gorm:"type:varchar(128);not null;default:''" json:"full_name"`     // 姓名
	JoinedAt   time.Time  `gorm:"index" json:"joined_at"`                                     // 首次交互时间
	LastSeenAt *time.Time `json:"last_seen_at,omitempty"`                                     // 最近交互时间
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}

// BannedUser 封禁表
type BannedUser struct {
	ID             uint      `gorm:"primarykey" json:"id"`                                         // 主键
	UserIdentifier string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"user_identifier"` // 数字ID 或 @username
	BannedBy       string    `gorm:"type:varchar(64);not null;default:''" json:"banned_by"`        // 操作人
	BannedAt       time.Time `gorm:"index" json:"banned_at"`                                       // 封禁时间
}

// TableName 指定表名
func (BannedUser) TableName() string {
	return "banned_users"
}
