package bot

import (
	"context"
	"strings"

	"github.com/streamvault/internal/constants"
	"github.com/streamvault/internal/logger"
	"github.com/streamvault/internal/service"

	tele "gopkg.in/telebot.v3"
)

func updateContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), handlerTimeout)
}

func (h *Handler) onStart(c tele.Context) error {
	user := senderUser(c)
	ctx, cancel := updateContext()
	defer cancel()
	h.clearPending(ctx, user.ID)
	if h.Admins.IsAdmin(user.ID) {
		return respond(c, h.adminMenuReply(user))
	}
	return respond(c, h.userMenuReply(user))
}

func (h *Handler) onUserMain(c tele.Context) error {
	return respond(c, h.userMenuReply(senderUser(c)))
}

func (h *Handler) onRedeem(c tele.Context) error {
	user := senderUser(c)
	ctx, cancel := updateContext()
	defer cancel()
	code := strings.TrimSpace(strings.Join(c.Args(), " "))
	if code == "" {
		return respond(c, h.redeemPromptReply(ctx, user.ID))
	}
	h.clearPending(ctx, user.ID)
	return respond(c, h.redeemReply(ctx, user, code))
}

func (h *Handler) onRedeemPrompt(c tele.Context) error {
	ctx, cancel := updateContext()
	defer cancel()
	return respond(c, h.redeemPromptReply(ctx, senderID(c)))
}

func (h *Handler) onParticipate(c tele.Context) error {
	return respond(c, h.joinGiveawayReply(senderUser(c)))
}

func (h *Handler) onMyStats(c tele.Context) error {
	return respond(c, h.userStatsReply(senderUser(c)))
}

func (h *Handler) onHelp(c tele.Context) error {
	return respond(c, h.helpReply())
}

func (h *Handler) onCancel(c tele.Context) error {
	ctx, cancel := updateContext()
	defer cancel()
	h.clearPending(ctx, senderID(c))
	return respond(c, reply{text: "↩️ Cancelled. Use /start to open the menu."})
}

// onText 纯文本消息只在存在多轮会话时处理
func (h *Handler) onText(c tele.Context) error {
	user := senderUser(c)
	ctx, cancel := updateContext()
	defer cancel()
	action, err := h.Pending.Get(ctx, user.ID)
	if err != nil {
		logger.Errorw("bot_pending_get_failed", "user_id", user.ID, "error", err)
		return respond(c, reply{text: adminErrorText(err)})
	}
	if action == nil {
		return respond(c, reply{text: "💡 Use /redeem &lt;key&gt; to redeem a key, or /start to open the menu."})
	}
	return respond(c, h.continuePending(ctx, user, action, c.Text()))
}

func (h *Handler) onAdminMain(c tele.Context) error {
	user := senderUser(c)
	ctx, cancel := updateContext()
	defer cancel()
	h.clearPending(ctx, user.ID)
	return respond(c, h.adminMenuReply(user))
}

func (h *Handler) onPlatformPicker(unique, title string) tele.HandlerFunc {
	return func(c tele.Context) error {
		return respond(c, h.platformPickerReply(unique, title))
	}
}

func (h *Handler) onGeneratePlatform(c tele.Context) error {
	return h.onPlatformStep(c, constants.PendingStepGenerateCount, uniqueGenPlatform)
}

func (h *Handler) onCredentialPlatform(c tele.Context) error {
	return h.onPlatformStep(c, constants.PendingStepCredentialLines, uniqueCredPlatform)
}

func (h *Handler) onPlatformStep(c tele.Context, step, unique string) error {
	args := callbackArgs(c)
	if len(args) < 1 {
		return respond(c, h.platformPickerReply(unique, "Select the platform:"))
	}
	ctx, cancel := updateContext()
	defer cancel()
	return respond(c, h.beginPlatformStep(ctx, senderID(c), step, args[0]))
}

func (h *Handler) onListKeys(c tele.Context) error {
	args := callbackArgs(c)
	if len(args) < 1 {
		return respond(c, h.platformPickerReply(uniqueKeysPlatform, "Select the platform:"))
	}
	return respond(c, h.keyListReply(args[0]))
}

func (h *Handler) onGiveawayPlatform(c tele.Context) error {
	args := callbackArgs(c)
	if len(args) < 1 {
		return respond(c, h.platformPickerReply(uniqueGivePlatform, "Select the prize platform:"))
	}
	return respond(c, reply{text: "⏱ <b>Giveaway Duration</b>\n\nHow long should the giveaway run?", markup: durationMenu(args[0])})
}

func (h *Handler) onGiveawayDuration(c tele.Context) error {
	args := callbackArgs(c)
	if len(args) < 2 {
		return respond(c, h.platformPickerReply(uniqueGivePlatform, "Select the prize platform:"))
	}
	ctx, cancel := updateContext()
	defer cancel()
	return respond(c, h.beginGiveawayWinners(ctx, senderID(c), args[0], args[1]))
}

func (h *Handler) onRevokePlatform(c tele.Context) error {
	args := callbackArgs(c)
	if len(args) < 1 {
		return respond(c, h.platformPickerReply(uniqueRevokePlat, "Select the platform:"))
	}
	return respond(c, reply{text: "❌ <b>Revoke Keys</b>\n\nWhat should be revoked?", markup: revokeOptionMenu(args[0])})
}

func (h *Handler) onRevokeOption(c tele.Context) error {
	args := callbackArgs(c)
	if len(args) < 2 {
		return respond(c, h.platformPickerReply(uniqueRevokePlat, "Select the platform:"))
	}
	ctx, cancel := updateContext()
	defer cancel()
	return respond(c, h.beginRevokeConfirm(ctx, senderID(c), args[0], args[1]))
}

func (h *Handler) onRevokeConfirm(c tele.Context) error {
	answer := ""
	if args := callbackArgs(c); len(args) > 0 {
		answer = args[0]
	}
	ctx, cancel := updateContext()
	defer cancel()
	return respond(c, h.confirmRevoke(ctx, senderID(c), answer))
}

func (h *Handler) onBotStats(c tele.Context) error {
	ctx, cancel := updateContext()
	defer cancel()
	return respond(c, h.botStatsReply(ctx))
}

func (h *Handler) onClearExpired(c tele.Context) error {
	return respond(c, h.clearExpiredReply())
}

func (h *Handler) onStopGiveaway(c tele.Context) error {
	return respond(c, h.stopGiveawayReply())
}

func (h *Handler) onBroadcastPrompt(c tele.Context) error {
	ctx, cancel := updateContext()
	defer cancel()
	action, _ := service.NewPendingAction(constants.PendingStepBroadcastMessage)
	return respond(c, h.startPending(ctx, senderID(c), action, reply{
		text:   "📢 <b>Broadcast Message</b>\n\nSend the message you want to deliver to every user:",
		markup: cancelToAdminMenu(),
	}))
}

func (h *Handler) onBanPrompt(c tele.Context) error {
	ctx, cancel := updateContext()
	defer cancel()
	action, _ := service.NewPendingAction(constants.PendingStepBanIdentifier)
	return respond(c, h.startPending(ctx, senderID(c), action, reply{
		text:   "🚫 <b>Ban User</b>\n\nSend the numeric user ID or @username to ban:",
		markup: cancelToAdminMenu(),
	}))
}

func (h *Handler) onBanCommand(c tele.Context) error {
	if len(c.Args()) == 0 {
		return h.onBanPrompt(c)
	}
	return respond(c, h.banReply(senderUser(c), c.Args()[0]))
}

func (h *Handler) onUnbanCommand(c tele.Context) error {
	if len(c.Args()) == 0 {
		return respond(c, reply{text: "Usage: /unban &lt;user_id|@username&gt;"})
	}
	return respond(c, h.unbanReply(c.Args()[0]))
}
