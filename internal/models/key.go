package models

import "time"

// Key 兑换码表
type Key struct {
	ID                uint       `gorm:"primarykey" json:"id"`                                           // 主键
	KeyCode           string     `gorm:"type:varchar(64);uniqueIndex;not null" json:"key_code"`          // 兑换码
	PlatformID        uint       `gorm:"not null;index" json:"platform_id"`                              // 平台ID
	Uses              int        `gorm:"not null;default:1" json:"uses"`                                 // 总可用次数
	RemainingUses     int        `gorm:"not null;default:1" json:"remaining_uses"`                       // 剩余次数
	AccountText       string     `gorm:"type:varchar(255);not null;default:''" json:"account_text"`      // 账号描述
	Status            string     `gorm:"type:varchar(16);not null;default:'active';index" json:"status"` // active / used / expired
	GiveawayGenerated bool       `gorm:"not null;default:false" json:"giveaway_generated"`               // 是否抽奖生成
	GiveawayWinner    *int64     `gorm:"index" json:"giveaway_winner,omitempty"`                         // 抽奖获胜者
	CreatedAt         time.Time  `gorm:"index" json:"created_at"`                                        // 创建时间
	RedeemedAt        *time.Time `json:"redeemed_at,omitempty"`                                          // 最近一次兑换时间

	Platform    *Platform       `gorm:"foreignKey:PlatformID" json:"platform,omitempty"`
	Redemptions []KeyRedemption `gorm:"foreignKey:KeyID" json:"redemptions,omitempty"`
}

// TableName 指定表名
func (Key) TableName() string {
	return "keys"
}

// KeyRedemption 兑换记录表（只追加）
type KeyRedemption struct {
	ID           uint      `gorm:"primarykey" json:"id"`                                                                                                       // 主键
	KeyID        uint      `gorm:"not null;uniqueIndex:idx_key_redemptions_key_user,priority:1" json:"key_id"`                                                 // 兑换码ID
	UserID       int64     `gorm:"not null;uniqueIndex:idx_key_redemptions_key_user,priority:2;index:idx_key_redemptions_user_time,priority:1" json:"user_id"` // 兑换用户
	CredentialID *uint     `gorm:"index" json:"credential_id,omitempty"`                                                                                       // 分配的凭据
	Username     string    `gorm:"type:varchar(64);not null;default:''" json:"username"`                                                                       // 用户名
	FullName     string    `gorm:"type:varchar(128);not null;default:''" json:"full_name"`                                                                     // 姓名
	RedeemedAt   time.Time `gorm:"not null;index:idx_key_redemptions_user_time,priority:2" json:"redeemed_at"`                                                 // 兑换时间

	Key *Key `gorm:"foreignKey:KeyID" json:"key,omitempty"`
}

// TableName 指定表名
func (KeyRedemption) TableName() string {
	return "key_redemptions"
}
