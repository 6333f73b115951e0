package bot

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/streamvault/internal/constants"
	"github.com/streamvault/internal/logger"
	"github.com/streamvault/internal/service"
)

func (h *Handler) userMenuReply(user service.RedeemUser) reply {
	active := false
	if _, err := h.Giveaways.Active(); err == nil {
		active = true
	}
	return reply{text: userMenuText(user), markup: userMenu(active)}
}

func (h *Handler) adminMenuReply(user service.RedeemUser) reply {
	return reply{text: adminMenuText(user), markup: adminMenu()}
}

func (h *Handler) helpReply() reply {
	platforms, err := h.Platforms.List()
	if err != nil {
		logger.Warnw("bot_platform_list_failed", "error", err)
	}
	return reply{text: helpText(platforms), markup: backToUserMenu()}
}

// redeemReply 执行兑换并渲染结果
func (h *Handler) redeemReply(ctx context.Context, user service.RedeemUser, code string) reply {
	result, err := h.Redemption.Redeem(ctx, code, user)
	if err != nil {
		return reply{text: redemptionErrorText(err), markup: backToUserMenu()}
	}
	return reply{text: redemptionSuccessText(result), markup: backToUserMenu()}
}

func (h *Handler) userStatsReply(user service.RedeemUser) reply {
	stats, err := h.Users.Stats(user.ID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return reply{text: "❌ <i>No statistics yet.</i> Use /start first.", markup: backToUserMenu()}
		}
		logger.Errorw("bot_user_stats_failed", "user_id", user.ID, "error", err)
		return reply{text: adminErrorText(err), markup: backToUserMenu()}
	}
	return reply{text: userStatsText(stats), markup: backToUserMenu()}
}

func (h *Handler) joinGiveawayReply(user service.RedeemUser) reply {
	giveaway, err := h.Giveaways.JoinActive(service.GiveawayParticipantInput{UserID: user.ID, Username: user.Username})
	if err != nil {
		if !errors.Is(err, service.ErrNoActiveGiveaway) && !errors.Is(err, service.ErrGiveawayInactive) && !errors.Is(err, service.ErrAlreadyParticipated) {
			logger.Errorw("bot_giveaway_join_failed", "user_id", user.ID, "error", err)
		}
		return reply{text: giveawayJoinErrorText(err), markup: backToUserMenu()}
	}
	return reply{text: giveawayJoinedText(giveaway), markup: backToUserMenu()}
}

// startPending 开始一个多轮输入流程
func (h *Handler) startPending(ctx context.Context, userID int64, action *service.PendingAction, prompt reply) reply {
	if err := h.Pending.Set(ctx, userID, action); err != nil {
		logger.Errorw("bot_pending_set_failed", "user_id", userID, "step", action.Step, "error", err)
		return reply{text: adminErrorText(err), markup: backToAdminMenu()}
	}
	return prompt
}

func (h *Handler) redeemPromptReply(ctx context.Context, userID int64) reply {
	action, _ := service.NewPendingAction(constants.PendingStepRedeemCode)
	prompt := reply{text: redeemPromptText(), markup: backToUserMenu()}
	if err := h.Pending.Set(ctx, userID, action); err != nil {
		logger.Errorw("bot_pending_set_failed", "user_id", userID, "step", action.Step, "error", err)
	}
	return prompt
}

func (h *Handler) platformPickerReply(unique, title string) reply {
	platforms, err := h.Platforms.List()
	if err != nil {
		logger.Errorw("bot_platform_list_failed", "error", err)
		return reply{text: adminErrorText(err), markup: backToAdminMenu()}
	}
	return reply{text: title, markup: platformMenu(unique, platforms)}
}

// beginPlatformStep 选定平台后进入生成或上传流程
func (h *Handler) beginPlatformStep(ctx context.Context, userID int64, step, platformName string) reply {
	platform, err := h.Platforms.Resolve(platformName)
	if err != nil {
		return reply{text: adminErrorText(err), markup: backToAdminMenu()}
	}
	action, err := service.NewPendingAction(step)
	if err != nil {
		return reply{text: adminErrorText(err), markup: backToAdminMenu()}
	}
	action.Platform = platform.Name
	var prompt string
	switch step {
	case constants.PendingStepGenerateCount:
		prompt = fmt.Sprintf("🔑 <b>Generate Keys for %s</b>\n\nHow many keys do you want to generate?\n\n📝 Please send a number (1-%d):",
			html.EscapeString(platform.Label()), constants.KeyGenerateMax)
	case constants.PendingStepCredentialLines:
		prompt = fmt.Sprintf("📧 <b>Add Credentials for %s</b>\n\nSend the accounts, one per line:\n<code>email:password</code>\n\nOptionally append a status: <code>email:password:inactive</code>",
			html.EscapeString(platform.Label()))
	default:
		return reply{text: adminErrorText(service.ErrPendingTransition), markup: backToAdminMenu()}
	}
	return h.startPending(ctx, userID, action, reply{text: prompt, markup: cancelToAdminMenu()})
}

// beginGiveawayWinners 选定平台与时长后询问获奖人数
func (h *Handler) beginGiveawayWinners(ctx context.Context, userID int64, platformName, duration string) reply {
	platform, err := h.Platforms.Resolve(platformName)
	if err != nil {
		return reply{text: adminErrorText(err), markup: backToAdminMenu()}
	}
	if _, err := service.ParseDuration(duration); err != nil {
		return reply{text: adminErrorText(err), markup: backToAdminMenu()}
	}
	action, _ := service.NewPendingAction(constants.PendingStepGiveawayWinners)
	action.Platform = platform.Name
	action.Duration = duration
	prompt := fmt.Sprintf("🎉 <b>Giveaway: %s for %s</b>\n\nHow many winners?\n\n📝 Please send a number:",
		html.EscapeString(platform.Label()), html.EscapeString(duration))
	return h.startPending(ctx, userID, action, reply{text: prompt, markup: cancelToAdminMenu()})
}

// beginRevokeConfirm 暂存撤销参数，等待确认按钮
func (h *Handler) beginRevokeConfirm(ctx context.Context, userID int64, platformName, option string) reply {
	platform, err := h.Platforms.Resolve(platformName)
	if err != nil {
		return reply{text: adminErrorText(err), markup: backToAdminMenu()}
	}
	switch option {
	case constants.KeyRevokeLast, constants.KeyRevokeAll, constants.KeyRevokeClaimed:
	default:
		return reply{text: "❌ Unknown revoke option.", markup: backToAdminMenu()}
	}
	action, _ := service.NewPendingAction(constants.PendingStepRevokeConfirm)
	action.Platform = platform.Name
	action.Option = option
	return h.startPending(ctx, userID, action, reply{text: revokeConfirmText(platform.Name, option), markup: revokeConfirmMenu()})
}

// confirmRevoke 处理撤销确认按钮
func (h *Handler) confirmRevoke(ctx context.Context, userID int64, answer string) reply {
	action, err := h.Pending.Get(ctx, userID)
	if err != nil {
		logger.Errorw("bot_pending_get_failed", "user_id", userID, "error", err)
		return reply{text: adminErrorText(err), markup: backToAdminMenu()}
	}
	if action == nil || action.Step != constants.PendingStepRevokeConfirm {
		return reply{text: adminErrorText(service.ErrPendingActionNotFound), markup: backToAdminMenu()}
	}
	h.clearPending(ctx, userID)
	if answer != "yes" {
		return reply{text: "↩️ Revoke cancelled.", markup: backToAdminMenu()}
	}
	affected, err := h.Keys.Revoke(action.Platform, action.Option)
	if err != nil {
		return reply{text: adminErrorText(err), markup: backToAdminMenu()}
	}
	return reply{
		text:   fmt.Sprintf("✅ <b>Keys Revoked</b>\n\n%d key(s) removed for <b>%s</b>.", affected, html.EscapeString(action.Platform)),
		markup: backToAdminMenu(),
	}
}

func (h *Handler) botStatsReply(ctx context.Context) reply {
	overview, err := h.Dashboard.GetOverview(ctx, true)
	if err != nil {
		logger.Errorw("bot_stats_failed", "error", err)
		return reply{text: adminErrorText(err), markup: backToAdminMenu()}
	}
	return reply{text: botStatsText(overview), markup: backToAdminMenu()}
}

func (h *Handler) keyListReply(platformName string) reply {
	platform, err := h.Platforms.Resolve(platformName)
	if err != nil {
		return reply{text: adminErrorText(err), markup: backToAdminMenu()}
	}
	keys, total, err := h.Keys.List(service.KeyListInput{Platform: platform.Name, Page: 1, PageSize: keyListPreviewLimit})
	if err != nil {
		logger.Errorw("bot_key_list_failed", "platform", platform.Name, "error", err)
		return reply{text: adminErrorText(err), markup: backToAdminMenu()}
	}
	return reply{text: keyListText(platform.Label(), keys, total), markup: backToAdminMenu()}
}

func (h *Handler) clearExpiredReply() reply {
	affected, err := h.Keys.Sweep("", constants.KeySweepExpired)
	if err != nil {
		return reply{text: adminErrorText(err), markup: backToAdminMenu()}
	}
	return reply{text: fmt.Sprintf("🗑 <b>Expired Keys Cleared</b>\n\n%d key(s) removed.", affected), markup: backToAdminMenu()}
}

func (h *Handler) stopGiveawayReply() reply {
	giveaway, err := h.Giveaways.StopActive()
	if err != nil {
		return reply{text: adminErrorText(err), markup: backToAdminMenu()}
	}
	return reply{text: giveawayStoppedText(giveaway), markup: backToAdminMenu()}
}

func (h *Handler) banReply(operator service.RedeemUser, identifier string) reply {
	ban, err := h.Bans.Ban(identifier, operatorName(operator))
	if err != nil {
		return reply{text: adminErrorText(err), markup: backToAdminMenu()}
	}
	return reply{text: fmt.Sprintf("🚫 <b>User Banned</b>\n\n<code>%s</code> can no longer use the bot.", html.EscapeString(ban.UserIdentifier)), markup: backToAdminMenu()}
}

func (h *Handler) unbanReply(identifier string) reply {
	if err := h.Bans.Unban(identifier); err != nil {
		return reply{text: adminErrorText(err), markup: backToAdminMenu()}
	}
	return reply{text: "✅ <b>User Unbanned</b>", markup: backToAdminMenu()}
}

// continuePending 根据当前步骤处理用户输入的文本
func (h *Handler) continuePending(ctx context.Context, user service.RedeemUser, action *service.PendingAction, text string) reply {
	text = strings.TrimSpace(text)
	if action.Step != constants.PendingStepRedeemCode && !h.Admins.IsAdmin(user.ID) {
		h.clearPending(ctx, user.ID)
		return reply{text: "❌ Access denied. This action is for administrators only."}
	}
	switch action.Step {
	case constants.PendingStepRedeemCode:
		h.clearPending(ctx, user.ID)
		return h.redeemReply(ctx, user, text)
	case constants.PendingStepGenerateCount:
		count, ok := parsePositive(text, constants.KeyGenerateMax)
		if !ok {
			return reply{text: fmt.Sprintf("❌ Please send a valid number (1-%d)!", constants.KeyGenerateMax), markup: cancelToAdminMenu()}
		}
		action.Count = count
		return h.advance(ctx, user.ID, action, reply{
			text:   fmt.Sprintf("🎯 <b>Count: %d</b>\n\nHow many times can each key be used?\n\n📝 Please send a number (e.g., 1):", count),
			markup: cancelToAdminMenu(),
		})
	case constants.PendingStepGenerateUses:
		uses, ok := parsePositive(text, 0)
		if !ok {
			return reply{text: "❌ Please send a valid number!", markup: cancelToAdminMenu()}
		}
		action.Uses = uses
		return h.advance(ctx, user.ID, action, reply{
			text:   fmt.Sprintf("✅ <b>Uses: %d</b>\n\nWhat account type is this?\n\n📝 Please send the account text (e.g., Premium Account):", uses),
			markup: cancelToAdminMenu(),
		})
	case constants.PendingStepGenerateText:
		if text == "" {
			return reply{text: "❌ Please send the account text!", markup: cancelToAdminMenu()}
		}
		h.clearPending(ctx, user.ID)
		keys, err := h.Keys.GenerateBatch(service.GenerateKeysInput{
			Platform:    action.Platform,
			Count:       action.Count,
			Uses:        action.Uses,
			AccountText: text,
		})
		if err != nil {
			logger.Warnw("bot_generate_keys_failed", "user_id", user.ID, "platform", action.Platform, "error", err)
			return reply{text: adminErrorText(err), markup: backToAdminMenu()}
		}
		return reply{text: generatedKeysText(action.Platform, keys), markup: backToAdminMenu()}
	case constants.PendingStepCredentialLines:
		report, err := h.Credentials.BulkUpload(action.Platform, text)
		if errors.Is(err, service.ErrUploadEmpty) || (err == nil && report.Added == 0) {
			return reply{text: adminErrorText(service.ErrUploadEmpty), markup: cancelToAdminMenu()}
		}
		h.clearPending(ctx, user.ID)
		if err != nil {
			logger.Warnw("bot_credential_upload_failed", "user_id", user.ID, "platform", action.Platform, "error", err)
			return reply{text: adminErrorText(err), markup: backToAdminMenu()}
		}
		return reply{text: uploadReportText(action.Platform, report), markup: backToAdminMenu()}
	case constants.PendingStepGiveawayWinners:
		winners, ok := parsePositive(text, 0)
		if !ok {
			return reply{text: "❌ Please send a valid number!", markup: cancelToAdminMenu()}
		}
		giveaway, err := h.Giveaways.Start(service.StartGiveawayInput{
			Platform: action.Platform,
			Duration: action.Duration,
			Winners:  winners,
		})
		if errors.Is(err, service.ErrGiveawayInvalid) {
			return reply{text: adminErrorText(err), markup: cancelToAdminMenu()}
		}
		h.clearPending(ctx, user.ID)
		if err != nil {
			logger.Warnw("bot_giveaway_start_failed", "user_id", user.ID, "error", err)
			return reply{text: adminErrorText(err), markup: backToAdminMenu()}
		}
		return reply{text: giveawayStartedText(giveaway), markup: backToAdminMenu()}
	case constants.PendingStepRevokeConfirm:
		return reply{text: revokeConfirmText(action.Platform, action.Option), markup: revokeConfirmMenu()}
	case constants.PendingStepBroadcastMessage:
		h.clearPending(ctx, user.ID)
		if err := h.Notifications.Broadcast(text, operatorName(user)); err != nil {
			return reply{text: adminErrorText(err), markup: backToAdminMenu()}
		}
		return reply{text: "📢 <b>Broadcast Started</b>\n\nThe message is being delivered to all users.", markup: backToAdminMenu()}
	case constants.PendingStepBanIdentifier:
		if _, err := service.NormalizeBanIdentifier(text); err != nil {
			return reply{text: adminErrorText(err), markup: cancelToAdminMenu()}
		}
		h.clearPending(ctx, user.ID)
		return h.banReply(user, text)
	}
	h.clearPending(ctx, user.ID)
	return reply{text: adminErrorText(service.ErrPendingTransition), markup: backToAdminMenu()}
}

// advance 进入下一步并保存
func (h *Handler) advance(ctx context.Context, userID int64, action *service.PendingAction, prompt reply) reply {
	if _, err := action.Advance(); err != nil {
		h.clearPending(ctx, userID)
		return reply{text: adminErrorText(err), markup: backToAdminMenu()}
	}
	return h.startPending(ctx, userID, action, prompt)
}

func (h *Handler) clearPending(ctx context.Context, userID int64) {
	if err := h.Pending.Clear(ctx, userID); err != nil {
		logger.Warnw("bot_pending_clear_failed", "user_id", userID, "error", err)
	}
}

// parsePositive 解析正整数，limit 大于 0 时限制上限
func parsePositive(raw string, limit int) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		return 0, false
	}
	if limit > 0 && n > limit {
		return 0, false
	}
	return n, true
}
