// Package message 管理端接口提示文案目录
package message

import (
	"fmt"
	"strings"
)

var catalog = map[string]string{
	// 通用
	"error.bad_request":         "Invalid request parameters",
	"error.unauthorized":        "Unauthorized",
	"error.forbidden":           "Permission denied",
	"error.not_found":           "Resource not found",
	"error.internal":            "Internal server error",
	"error.service_unavailable": "Service unavailable",
	"error.id_invalid":          "Invalid id",
	"error.date_invalid":        "Invalid date, expected YYYY-MM-DD or RFC3339",
	"error.save_failed":         "Save failed",
	"error.delete_failed":       "Delete failed",

	// 鉴权
	"error.jwt_secret_missing":     "JWT secret is not configured",
	"error.auth_header_missing":    "Authorization header is missing",
	"error.auth_header_invalid":    "Authorization header must be Bearer <token>",
	"error.token_invalid":          "Token is invalid or expired",
	"error.token_revoked":          "Token has been revoked, please sign in again",
	"error.rate_limited":           "Too many requests, retry in %d seconds",
	"error.login_rate_limited":     "Too many login attempts, retry in %d seconds",
	"error.rate_limit_unavailable": "Rate limiter unavailable",
	"error.admin_login_invalid":    "Invalid username or password",
	"error.login_failed":           "Login failed",
	"error.password_old_invalid":   "Current password is incorrect",
	"error.password_weak":          "Password does not meet the policy",
	"error.password_min_length":    "Password must be at least %d characters",
	"error.password_require_mixed": "Password must contain both letters and digits",

	// 验证码
	"error.captcha_required":        "Captcha is required",
	"error.captcha_invalid":         "Captcha is incorrect or expired",
	"error.captcha_unavailable":     "Captcha is disabled",
	"error.captcha_generate_failed": "Failed to generate captcha",
	"error.captcha_config_invalid":  "Captcha configuration is invalid",

	// 管理员
	"error.admin_id_invalid":       "Invalid admin id",
	"error.admin_id_type_invalid":  "Invalid admin id type",
	"error.admin_not_found":        "Admin not found",
	"error.admin_exists":           "Admin username already exists",
	"error.admin_invalid":          "Invalid admin input",
	"error.admin_role_forbidden":   "Only the admin role can be assigned",
	"error.owner_delete_forbidden": "The owner account cannot be deleted",
	"error.telegram_id_duplicate":  "Telegram id is already bound to another admin",
	"error.admin_fetch_failed":     "Failed to load admins",

	// 平台 / 凭据
	"error.platform_required":       "Platform is required",
	"error.platform_not_found":      "Unknown platform",
	"error.platform_fetch_failed":   "Failed to load platforms",
	"error.credential_invalid":      "Invalid credential, expected a valid email and password",
	"error.credential_not_found":    "Credential not found",
	"error.credential_conflict":     "Credential was changed by another operation, reload and retry",
	"error.credential_fetch_failed": "Failed to load credentials",
	"error.upload_empty":            "Upload content is empty",
	"error.upload_read_failed":      "Failed to read upload file",

	// 兑换码
	"error.key_invalid_input":         "Invalid key parameters",
	"error.key_not_found":             "Key not found",
	"error.key_fetch_failed":          "Failed to load keys",
	"error.key_generate_failed":       "Failed to generate unique key codes",
	"error.key_revoke_option_invalid": "Revoke option must be last, all or claimed",
	"error.key_sweep_scope_invalid":   "Sweep status must be all, used or expired",

	// 抽奖
	"error.giveaway_invalid":     "Invalid giveaway parameters",
	"error.giveaway_not_found":   "Giveaway not found",
	"error.giveaway_inactive":    "Giveaway is no longer active",
	"error.giveaway_conflict":    "Another giveaway was started concurrently",
	"error.giveaway_none_active": "No active giveaway",
	"error.duration_invalid":     "Invalid duration, use 30s, 5m, 2h, 1d or seconds",

	// 用户 / 封禁 / 广播
	"error.user_not_found":         "User not found",
	"error.user_fetch_failed":      "Failed to load users",
	"error.ban_identifier_invalid": "Identifier must be a numeric user id or @username",
	"error.already_banned":         "User is already banned",
	"error.ban_not_found":          "User is not banned",
	"error.broadcast_empty":        "Broadcast message is empty",
	"error.notification_disabled":  "Telegram messaging is not configured",
	"error.stats_fetch_failed":     "Failed to load statistics",

	// 成功提示
	"success.broadcast_queue": "Broadcast scheduled",
}

// T 查询文案，未登记的 key 原样返回
func T(key string) string {
	key = strings.TrimSpace(key)
	if text, ok := catalog[key]; ok {
		return text
	}
	return key
}

// Sprintf 查询带参数的文案
func Sprintf(key string, args ...interface{}) string {
	text := T(key)
	if len(args) == 0 {
		return text
	}
	return fmt.Sprintf(text, args...)
}

// Has 判断文案是否已登记
func Has(key string) bool {
	_, ok := catalog[strings.TrimSpace(key)]
	return ok
}
