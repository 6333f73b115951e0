package bot

import (
	"github.com/streamvault/internal/constants"
	"github.com/streamvault/internal/models"

	tele "gopkg.in/telebot.v3"
)

// 回调按钮标识
const (
	uniqueUserMain      = "user_main"
	uniqueUserRedeem    = "user_redeem"
	uniqueUserStats     = "user_stats"
	uniqueUserHelp      = "user_help"
	uniqueUserGiveaway  = "user_giveaway"
	uniqueAdminMain     = "admin_main"
	uniqueAdminGenerate = "admin_generate"
	uniqueAdminCreds    = "admin_creds"
	uniqueAdminStats    = "admin_stats"
	uniqueAdminKeys     = "admin_keys"
	uniqueAdminExpired  = "admin_expired"
	uniqueAdminGiveaway = "admin_giveaway"
	uniqueAdminStopGive = "admin_stop_giveaway"
	uniqueAdminRevoke   = "admin_revoke"
	uniqueAdminCast     = "admin_broadcast"
	uniqueAdminBan      = "admin_ban"
	uniqueGenPlatform   = "gen_platform"
	uniqueCredPlatform  = "cred_platform"
	uniqueKeysPlatform  = "keys_platform"
	uniqueGivePlatform  = "give_platform"
	uniqueGiveDuration  = "give_duration"
	uniqueRevokePlat    = "revoke_platform"
	uniqueRevokeOption  = "revoke_option"
	uniqueRevokeConfirm = "revoke_confirm"
)

// giveawayDurations 抽奖时长快捷选项
var giveawayDurations = []string{"1m", "5m", "30m", "1h", "3h", "6h", "12h", "24h"}

var selector = &tele.ReplyMarkup{}

var (
	btnUserMain     = selector.Data("🔙 Back to Main", uniqueUserMain)
	btnUserRedeem   = selector.Data("🎁 Redeem Key", uniqueUserRedeem)
	btnUserStats    = selector.Data("📊 My Stats", uniqueUserStats)
	btnUserHelp     = selector.Data("❓ Help", uniqueUserHelp)
	btnUserGiveaway = selector.Data("🎁 Join Giveaway", uniqueUserGiveaway)

	btnAdminMain     = selector.Data("🔙 Back to Main", uniqueAdminMain)
	btnAdminGenerate = selector.Data("🔑 Generate Keys", uniqueAdminGenerate)
	btnAdminCreds    = selector.Data("📧 Add Credentials", uniqueAdminCreds)
	btnAdminStats    = selector.Data("📊 Bot Stats", uniqueAdminStats)
	btnAdminKeys     = selector.Data("📋 List Keys", uniqueAdminKeys)
	btnAdminExpired  = selector.Data("🗑 Clear Expired", uniqueAdminExpired)
	btnAdminGiveaway = selector.Data("🎉 Start Giveaway", uniqueAdminGiveaway)
	btnAdminStopGive = selector.Data("🛑 Stop Giveaway", uniqueAdminStopGive)
	btnAdminRevoke   = selector.Data("❌ Revoke Keys", uniqueAdminRevoke)
	btnAdminCast     = selector.Data("📢 Broadcast", uniqueAdminCast)
	btnAdminBan      = selector.Data("🚫 Ban User", uniqueAdminBan)
)

func userMenu(giveawayActive bool) *tele.ReplyMarkup {
	menu := &tele.ReplyMarkup{}
	rows := []tele.Row{menu.Row(btnUserRedeem)}
	if giveawayActive {
		rows = append(rows, menu.Row(btnUserGiveaway))
	}
	rows = append(rows, menu.Row(btnUserStats), menu.Row(btnUserHelp))
	menu.Inline(rows...)
	return menu
}

func adminMenu() *tele.ReplyMarkup {
	menu := &tele.ReplyMarkup{}
	menu.Inline(
		menu.Row(btnAdminGenerate, btnAdminCreds),
		menu.Row(btnAdminStats, btnAdminKeys),
		menu.Row(btnAdminExpired),
		menu.Row(btnAdminGiveaway, btnAdminStopGive),
		menu.Row(btnAdminRevoke),
		menu.Row(btnAdminCast, btnAdminBan),
	)
	return menu
}

func backToUserMenu() *tele.ReplyMarkup {
	menu := &tele.ReplyMarkup{}
	menu.Inline(menu.Row(btnUserMain))
	return menu
}

func backToAdminMenu() *tele.ReplyMarkup {
	menu := &tele.ReplyMarkup{}
	menu.Inline(menu.Row(btnAdminMain))
	return menu
}

func cancelToAdminMenu() *tele.ReplyMarkup {
	menu := &tele.ReplyMarkup{}
	menu.Inline(menu.Row(menu.Data("❌ Cancel", uniqueAdminMain)))
	return menu
}

// platformMenu 两列平台选择菜单
func platformMenu(unique string, platforms []models.Platform) *tele.ReplyMarkup {
	menu := &tele.ReplyMarkup{}
	rows := make([]tele.Row, 0, len(platforms)/2+2)
	var pair []tele.Btn
	for _, platform := range platforms {
		pair = append(pair, menu.Data(platform.Label(), unique, platform.Name))
		if len(pair) == 2 {
			rows = append(rows, menu.Row(pair...))
			pair = nil
		}
	}
	if len(pair) > 0 {
		rows = append(rows, menu.Row(pair...))
	}
	rows = append(rows, menu.Row(btnAdminMain))
	menu.Inline(rows...)
	return menu
}

func durationMenu(platform string) *tele.ReplyMarkup {
	menu := &tele.ReplyMarkup{}
	rows := make([]tele.Row, 0, len(giveawayDurations)/2+1)
	for i := 0; i < len(giveawayDurations); i += 2 {
		row := tele.Row{menu.Data("⏱ "+giveawayDurations[i], uniqueGiveDuration, platform, giveawayDurations[i])}
		if i+1 < len(giveawayDurations) {
			row = append(row, menu.Data("⏱ "+giveawayDurations[i+1], uniqueGiveDuration, platform, giveawayDurations[i+1]))
		}
		rows = append(rows, row)
	}
	rows = append(rows, menu.Row(btnAdminMain))
	menu.Inline(rows...)
	return menu
}

func revokeOptionMenu(platform string) *tele.ReplyMarkup {
	menu := &tele.ReplyMarkup{}
	menu.Inline(
		menu.Row(menu.Data("🕐 Last Key", uniqueRevokeOption, platform, constants.KeyRevokeLast)),
		menu.Row(menu.Data("🗑 All Keys", uniqueRevokeOption, platform, constants.KeyRevokeAll)),
		menu.Row(menu.Data("🎯 Used Keys", uniqueRevokeOption, platform, constants.KeyRevokeClaimed)),
		menu.Row(menu.Data("🔙 Back", uniqueAdminRevoke)),
		menu.Row(btnAdminMain),
	)
	return menu
}

func revokeConfirmMenu() *tele.ReplyMarkup {
	menu := &tele.ReplyMarkup{}
	menu.Inline(menu.Row(
		menu.Data("✅ Yes, Revoke", uniqueRevokeConfirm, "yes"),
		menu.Data("❌ Cancel", uniqueRevokeConfirm, "no"),
	))
	return menu
}
