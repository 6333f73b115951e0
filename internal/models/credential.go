package models

import "time"

// Credential 共享账号凭据表
type Credential struct {
	ID                uint       `gorm:"primarykey" json:"id"`                                                                                      // 主键
	PlatformID        uint       `gorm:"not null;index:idx_credentials_platform_status,priority:1" json:"platform_id"`                              // 平台ID
	Email             string     `gorm:"type:varchar(255);not null;index" json:"email"`                                                             // 账号邮箱
	Secret            string     `gorm:"column:password;type:text;not null" json:"password"`                                                        // 账号密码（需原样交付给兑换用户）
	Status            string     `gorm:"type:varchar(16);not null;default:'active';index:idx_credentials_platform_status,priority:2" json:"status"` // active / claimed / inactive
	ClaimedBy         *int64     `gorm:"index" json:"claimed_by,omitempty"`                                                                         // 领取用户 Telegram ID
	ClaimedByUsername string     `gorm:"type:varchar(64);not null;default:''" json:"claimed_by_username"`                                           // 领取用户名
	ClaimedByName     string     `gorm:"type:varchar(128);not null;default:''" json:"claimed_by_name"`                                              // 领取用户姓名
	ClaimedAt         *time.Time `gorm:"index" json:"claimed_at,omitempty"`                                                                         // 领取时间
	CreatedAt         time.Time  `gorm:"index" json:"created_at"`                                                                                   // 创建时间（分配顺序）
	UpdatedAt         time.Time  `json:"updated_at"`                                                                                                // 更新时间

	Platform *Platform `gorm:"foreignKey:PlatformID" json:"platform,omitempty"`
}

// TableName 指定表名
func (Credential) TableName() string {
	return "credentials"
}
