package models

import "time"

// Giveaway 抽奖表，全局至多一条 active=true
type Giveaway struct {
	ID              uint       `gorm:"primarykey" json:"id"`                                                                      // 主键
	PlatformID      uint       `gorm:"not null;index" json:"platform_id"`                                                         // 奖品平台
	Active          bool       `gorm:"not null;default:false;uniqueIndex:idx_giveaways_single_active,where:active" json:"active"` // 是否进行中
	Duration        string     `gorm:"type:varchar(16);not null;default:''" json:"duration"`                                      // 时长描述（如 1h）
	DurationSeconds int64      `gorm:"not null;default:0" json:"duration_seconds"`                                                // 时长秒数
	Winners         int        `gorm:"not null;default:1" json:"winners"`                                                         // 获奖人数
	EndTime         time.Time  `gorm:"not null;index" json:"end_time"`                                                            // 截止时间
	CloseReason     string     `gorm:"type:varchar(16);not null;default:''" json:"close_reason"`                                  // cancelled / drawn / empty
	ClosedAt        *time.Time `json:"closed_at,omitempty"`                                                                       // 结束时间
	CreatedAt       time.Time  `gorm:"index" json:"created_at"`                                                                   // 创建时间

	Platform *Platform `gorm:"foreignKey:PlatformID" json:"platform,omitempty"`
}

// TableName 指定表名
func (Giveaway) TableName() string {
	return "giveaways"
}

// GiveawayParticipant 抽奖参与者表
type GiveawayParticipant struct {
	ID         uint      `gorm:"primarykey" json:"id"`                                                                // 主键
	GiveawayID uint      `gorm:"not null;uniqueIndex:idx_giveaway_participants_member,priority:1" json:"giveaway_id"` // 抽奖ID
	UserID     int64     `gorm:"not null;uniqueIndex:idx_giveaway_participants_member,priority:2" json:"user_id"`     // 参与用户
	Username   string    `gorm:"type:varchar(64);not null;default:''" json:"username"`                                // 用户名
	JoinedAt   time.Time `gorm:"index" json:"joined_at"`                                                              // 参与时间
}

// TableName 指定表名
func (GiveawayParticipant) TableName() string {
	return "giveaway_participants"
}
