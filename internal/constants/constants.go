package constants

// 凭据状态常量
const (
	CredentialStatusActive   = "active"
	CredentialStatusClaimed  = "claimed"
	CredentialStatusInactive = "inactive"
)

// 兑换码状态常量
const (
	KeyStatusActive  = "active"
	KeyStatusUsed    = "used"
	KeyStatusExpired = "expired"
)

// 兑换码批量清理范围
const (
	KeySweepAll     = "all"
	KeySweepUsed    = "used"
	KeySweepExpired = "expired"
)

// 兑换码撤销选项
const (
	KeyRevokeLast    = "last"
	KeyRevokeAll     = "all"
	KeyRevokeClaimed = "claimed"
)

// 管理员角色常量
const (
	AdminRoleOwner = "owner"
	AdminRoleAdmin = "admin"
)

// 兑换码格式常量
const (
	KeyCodeGroupCount  = 3
	KeyCodeGroupLength = 4
	KeyCodeAlphabet    = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	KeyGenerateRetries = 5
	KeyGenerateMax     = 500
)

// 抽奖默认配置
const (
	GiveawayPrizeUses       = 1
	GiveawayPrizeTextSuffix = "Giveaway Prize"
)

// 多轮会话步骤常量
const (
	PendingStepNone             = ""
	PendingStepRedeemCode       = "redeem_code"
	PendingStepGenerateCount    = "generate_count"
	PendingStepGenerateUses     = "generate_uses"
	PendingStepGenerateText     = "generate_account_text"
	PendingStepCredentialLines  = "credential_lines"
	PendingStepGiveawayWinners  = "giveaway_winners"
	PendingStepRevokeConfirm    = "revoke_confirm"
	PendingStepBroadcastMessage = "broadcast_message"
	PendingStepBanIdentifier    = "ban_identifier"
)

// 队列常量
const (
	QueueDefault          = "default"
	QueueCritical         = "critical"
	TaskAdminNotify       = "notify:admins"
	TaskUserMessage       = "notify:user_message"
	TaskBroadcastDispatch = "notify:broadcast"
)

// 缓存默认配置常量
const (
	RedisPrefixDefault = "sv"
)
