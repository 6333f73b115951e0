package bot

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/streamvault/internal/logger"
	"github.com/streamvault/internal/service"

	tele "gopkg.in/telebot.v3"
)

const handlerTimeout = 30 * time.Second

// Deps 机器人依赖的业务服务
type Deps struct {
	Users         *service.UserService
	Bans          *service.BanService
	Admins        *service.AdminDirectory
	Platforms     *service.PlatformService
	Credentials   *service.CredentialService
	Keys          *service.KeyService
	Redemption    *service.RedemptionService
	Giveaways     *service.GiveawayService
	Notifications *service.NotificationService
	Dashboard     *service.DashboardService
	Pending       *service.PendingActionStore
}

// Handler 机器人会话处理器
type Handler struct {
	Deps
}

// NewHandler 创建会话处理器
func NewHandler(deps Deps) *Handler {
	return &Handler{Deps: deps}
}

// reply 一次回复的文本与键盘
type reply struct {
	text   string
	markup *tele.ReplyMarkup
}

// Register 注册全部命令与回调
func (h *Handler) Register(b *tele.Bot) {
	b.Use(logUpdates, respondCallbacks, h.trackUsers)

	b.Handle("/start", h.onStart)
	b.Handle("/redeem", h.onRedeem)
	b.Handle("/participate", h.onParticipate)
	b.Handle("/stats", h.onMyStats)
	b.Handle("/help", h.onHelp)
	b.Handle("/cancel", h.onCancel)
	b.Handle(tele.OnText, h.onText)

	b.Handle(&btnUserMain, h.onUserMain)
	b.Handle(&btnUserRedeem, h.onRedeemPrompt)
	b.Handle(&btnUserStats, h.onMyStats)
	b.Handle(&btnUserHelp, h.onHelp)
	b.Handle(&btnUserGiveaway, h.onParticipate)

	h.registerAdmin(b)
}

// registerAdmin 管理员命令与回调，统一经过 AdminMiddleware
func (h *Handler) registerAdmin(b *tele.Bot) {
	admin := b.Group()
	admin.Use(h.AdminMiddleware())

	admin.Handle("/admin", h.onAdminMain)
	admin.Handle("/ban", h.onBanCommand)
	admin.Handle("/unban", h.onUnbanCommand)

	admin.Handle(&btnAdminMain, h.onAdminMain)
	admin.Handle(&btnAdminGenerate, h.onPlatformPicker(uniqueGenPlatform, "🔑 <b>Generate Keys</b>\n\nSelect the platform:"))
	admin.Handle(&btnAdminCreds, h.onPlatformPicker(uniqueCredPlatform, "📧 <b>Add Credentials</b>\n\nSelect the platform:"))
	admin.Handle(&btnAdminKeys, h.onPlatformPicker(uniqueKeysPlatform, "📋 <b>List Keys</b>\n\nSelect the platform:"))
	admin.Handle(&btnAdminGiveaway, h.onPlatformPicker(uniqueGivePlatform, "🎉 <b>Start Giveaway</b>\n\nSelect the prize platform:"))
	admin.Handle(&btnAdminRevoke, h.onPlatformPicker(uniqueRevokePlat, "❌ <b>Revoke Keys</b>\n\nSelect the platform:"))
	admin.Handle(&btnAdminStats, h.onBotStats)
	admin.Handle(&btnAdminExpired, h.onClearExpired)
	admin.Handle(&btnAdminStopGive, h.onStopGiveaway)
	admin.Handle(&btnAdminCast, h.onBroadcastPrompt)
	admin.Handle(&btnAdminBan, h.onBanPrompt)

	admin.Handle(&tele.Btn{Unique: uniqueGenPlatform}, h.onGeneratePlatform)
	admin.Handle(&tele.Btn{Unique: uniqueCredPlatform}, h.onCredentialPlatform)
	admin.Handle(&tele.Btn{Unique: uniqueKeysPlatform}, h.onListKeys)
	admin.Handle(&tele.Btn{Unique: uniqueGivePlatform}, h.onGiveawayPlatform)
	admin.Handle(&tele.Btn{Unique: uniqueGiveDuration}, h.onGiveawayDuration)
	admin.Handle(&tele.Btn{Unique: uniqueRevokePlat}, h.onRevokePlatform)
	admin.Handle(&tele.Btn{Unique: uniqueRevokeOption}, h.onRevokeOption)
	admin.Handle(&tele.Btn{Unique: uniqueRevokeConfirm}, h.onRevokeConfirm)
}

// AdminMiddleware 仅允许管理员调用
func (h *Handler) AdminMiddleware() tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if c.Sender() == nil || !h.Admins.IsAdmin(c.Sender().ID) {
				logger.Warnw("bot_admin_denied", "user_id", senderID(c))
				return respond(c, reply{text: "❌ Access denied. This action is for administrators only."})
			}
			return next(c)
		}
	}
}

// trackUsers 懒注册用户并拦截被封禁的非管理员
func (h *Handler) trackUsers(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		if c.Sender() == nil || c.Sender().IsBot {
			return nil
		}
		user := senderUser(c)
		if _, err := h.Users.Register(user); err != nil {
			logger.Warnw("bot_user_register_failed", "user_id", user.ID, "error", err)
		}
		if h.Admins.IsAdmin(user.ID) {
			return next(c)
		}
		banned, err := h.Bans.IsBanned(user.ID, user.Username)
		if err != nil {
			logger.Errorw("bot_ban_check_failed", "user_id", user.ID, "error", err)
			return respond(c, reply{text: adminErrorText(err)})
		}
		if banned {
			return respond(c, reply{text: "🚫 <b>Access Denied</b>\n\n❌ You have been banned from using this bot."})
		}
		return next(c)
	}
}

// logUpdates 记录每个更新的用户与命令
func logUpdates(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		start := time.Now()
		command := ""
		if cb := c.Callback(); cb != nil {
			command = "callback:" + cb.Unique
		} else if text := c.Text(); strings.HasPrefix(text, "/") {
			command = strings.Fields(text)[0]
		} else {
			command = "text"
		}
		err := next(c)
		log := logger.SW("user_id", senderID(c), "command", command, "latency_ms", time.Since(start).Milliseconds())
		if err != nil {
			log.Warnw("bot_update_failed", "error", err)
			return nil
		}
		log.Debugw("bot_update_handled")
		return nil
	}
}

// respondCallbacks 自动应答回调，避免客户端一直转圈
func respondCallbacks(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		if c.Callback() != nil {
			defer func() { _ = c.Respond() }()
		}
		return next(c)
	}
}

func senderID(c tele.Context) int64 {
	if c.Sender() == nil {
		return 0
	}
	return c.Sender().ID
}

func senderUser(c tele.Context) service.RedeemUser {
	sender := c.Sender()
	if sender == nil {
		return service.RedeemUser{}
	}
	return service.RedeemUser{
		ID:       sender.ID,
		Username: sender.Username,
		FullName: strings.TrimSpace(sender.FirstName + " " + sender.LastName),
	}
}

// operatorName 操作人标识，优先 @username
func operatorName(user service.RedeemUser) string {
	if username := strings.TrimPrefix(strings.TrimSpace(user.Username), "@"); username != "" {
		return "@" + username
	}
	return strconv.FormatInt(user.ID, 10)
}

// respond 回调更新编辑原消息，其余发送新消息
func respond(c tele.Context, r reply) error {
	opts := []interface{}{tele.ModeHTML, tele.NoPreview}
	if r.markup != nil {
		opts = append(opts, r.markup)
	}
	if c.Callback() != nil && c.Message() != nil {
		err := c.Edit(r.text, opts...)
		if err == nil || errors.Is(err, tele.ErrSameMessageContent) {
			return nil
		}
		logger.Debugw("bot_edit_fallback", "user_id", senderID(c), "error", err)
	}
	return c.Send(r.text, opts...)
}

// callbackArgs 回调携带的参数
func callbackArgs(c tele.Context) []string {
	if c.Callback() == nil {
		return nil
	}
	data := strings.TrimSpace(c.Callback().Data)
	if data == "" {
		return nil
	}
	return strings.Split(data, "|")
}
