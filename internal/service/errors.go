package service

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidPassword    = errors.New("invalid password")
	ErrWeakPassword       = errors.New("weak password")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrTokenRevoked       = errors.New("token revoked")

	ErrPlatformRequired = errors.New("platform required")
	ErrPlatformNotFound = errors.New("platform not found")

	ErrCredentialInvalid  = errors.New("credential invalid")
	ErrCredentialNotFound = errors.New("credential not found")
	ErrCredentialConflict = errors.New("credential changed concurrently")
	ErrUploadEmpty        = errors.New("upload content empty")

	ErrKeyInvalidInput    = errors.New("key input invalid")
	ErrKeyNotFound        = errors.New("key not found")
	ErrKeyGenerateFailed  = errors.New("key code generation exhausted")
	ErrKeyRevokeOption    = errors.New("key revoke option invalid")
	ErrKeySweepScope      = errors.New("key sweep scope invalid")
	ErrRedeemUserRequired = errors.New("redeem user required")

	ErrGiveawayInvalid     = errors.New("giveaway input invalid")
	ErrGiveawayNotFound    = errors.New("giveaway not found")
	ErrGiveawayInactive    = errors.New("giveaway inactive")
	ErrGiveawayConflict    = errors.New("giveaway start conflict")
	ErrNoActiveGiveaway    = errors.New("no active giveaway")
	ErrAlreadyParticipated = errors.New("already participated")
	ErrInvalidDuration     = errors.New("invalid duration")

	ErrBanIdentifierInvalid = errors.New("ban identifier invalid")
	ErrAlreadyBanned        = errors.New("already banned")
	ErrBanNotFound          = errors.New("ban not found")

	ErrAdminExists         = errors.New("admin already exists")
	ErrAdminNotFound       = errors.New("admin not found")
	ErrAdminInvalid        = errors.New("admin input invalid")
	ErrCannotDeleteOwner   = errors.New("owner cannot be deleted")
	ErrAdminRoleForbidden  = errors.New("admin role forbidden")
	ErrTelegramIDDuplicate = errors.New("telegram id already bound")

	ErrCaptchaRequired      = errors.New("captcha required")
	ErrCaptchaInvalid       = errors.New("captcha invalid")
	ErrCaptchaConfigInvalid = errors.New("captcha config invalid")

	ErrBroadcastEmpty        = errors.New("broadcast message empty")
	ErrRecipientUnreachable  = errors.New("recipient unreachable")
	ErrNotificationDisabled  = errors.New("notification sender not configured")
	ErrLoginRateLimited      = errors.New("login rate limited")
	ErrPendingActionNotFound = errors.New("pending action not found")
)

// 兑换拒绝原因，均为正常业务结果
var (
	ErrBanned                 = errors.New("user banned")
	ErrCooldownActive         = errors.New("cooldown active")
	ErrInvalidKey             = errors.New("invalid key")
	ErrAlreadyUsed            = errors.New("key already used")
	ErrKeyExpired             = errors.New("key expired")
	ErrAlreadyRedeemedByUser  = errors.New("key already redeemed by user")
	ErrNoCredentialsAvailable = errors.New("no credentials available")
	ErrConcurrencyConflict    = errors.New("concurrency conflict")
)

// RedemptionError 兑换拒绝，Kind 为对应的哨兵错误
type RedemptionError struct {
	Kind      error
	Remaining time.Duration
}

func newRedemptionError(kind error) *RedemptionError {
	return &RedemptionError{Kind: kind}
}

func (e *RedemptionError) Error() string {
	if e == nil || e.Kind == nil {
		return "redemption rejected"
	}
	if errors.Is(e.Kind, ErrCooldownActive) {
		return fmt.Sprintf("%s: %s remaining", e.Kind.Error(), e.Remaining.Round(time.Second))
	}
	return e.Kind.Error()
}

// Is 匹配拒绝原因哨兵
func (e *RedemptionError) Is(target error) bool {
	return e != nil && e.Kind == target
}

// AsRedemptionError 提取兑换拒绝
func AsRedemptionError(err error) (*RedemptionError, bool) {
	var target *RedemptionError
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}
