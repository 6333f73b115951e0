package repository

import "time"

// CredentialListFilter 凭据列表过滤条件
type CredentialListFilter struct {
	Page       int
	PageSize   int
	PlatformID uint
	Status     string
	Search     string
}

// CredentialClaimFilter 领取记录过滤条件
type CredentialClaimFilter struct {
	Page       int
	PageSize   int
	PlatformID uint
	ClaimedBy  int64
	From       *time.Time
	To         *time.Time
}

// KeyListFilter 兑换码列表过滤条件
type KeyListFilter struct {
	Page       int
	PageSize   int
	PlatformID uint
	Status     string
	Code       string
	Giveaway   *bool
}

// RedemptionListFilter 兑换记录过滤条件
type RedemptionListFilter struct {
	Page       int
	PageSize   int
	PlatformID uint
	UserID     int64
	KeyCode    string
	From       *time.Time
	To         *time.Time
}

// UserListFilter 用户列表过滤条件
type UserListFilter struct {
	Page     int
	PageSize int
	Search   string
}

// ClaimInfo 领取人信息
type ClaimInfo struct {
	UserID   int64
	Username string
	FullName string
	At       time.Time
}

// StatusCount 按状态统计结果
type StatusCount struct {
	PlatformID uint
	Status     string
	Total      int64
}
