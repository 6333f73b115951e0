package models

import "time"

// AdminCredential 后台管理员表
type AdminCredential struct {
	ID                 uint       `gorm:"primarykey" json:"id"`                                        // 主键
	Username           string     `gorm:"type:varchar(64);uniqueIndex;not null" json:"username"`       // 管理员账号
	PasswordHash       string     `gorm:"not null" json:"-"`                                           // 密码哈希（不返回给前端）
	Role               string     `gorm:"type:varchar(16);not null;default:'admin';index" json:"role"` // owner / admin
	TelegramUserID     *int64     `gorm:"index" json:"telegram_user_id,omitempty"`                     // 绑定的 Telegram 用户ID（用于通知）
	TokenVersion       uint64     `gorm:"not null;default:0" json:"-"`                                 // Token 版本（用于全量失效）
	TokenInvalidBefore *time.Time `gorm:"index" json:"-"`                                              // 该时间点前签发的 Token 失效
	LastLoginAt        *time.Time `json:"last_login_at"`                                               // 最后登录时间
	CreatedAt          time.Time  `gorm:"index" json:"created_at"`                                     // 创建时间
	UpdatedAt          time.Time  `json:"updated_at"`                                                  // 更新时间
}

// TableName 指定表名
func (AdminCredential) TableName() string {
	return "admin_credentials"
}

// IsOwner 是否为所有者
func (a AdminCredential) IsOwner() bool {
	return a.Role == "owner"
}
