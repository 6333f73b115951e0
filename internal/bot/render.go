package bot

import (
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/streamvault/internal/constants"
	"github.com/streamvault/internal/models"
	"github.com/streamvault/internal/service"
)

const (
	timeLayout          = "2006-01-02 15:04:05"
	dateLayout          = "2006-01-02"
	statsRecentLimit    = 5
	keyListPreviewLimit = 20
	keyCodeExample      = "NETFLIX-A2D8-FA2F-VV82"
)

func mention(user service.RedeemUser) string {
	name := strings.TrimSpace(user.FullName)
	if name == "" {
		name = strings.TrimPrefix(user.Username, "@")
	}
	if name == "" {
		name = "there"
	}
	return fmt.Sprintf(`<a href="tg://user?id=%d">%s</a>`, user.ID, html.EscapeString(name))
}

func userMenuText(user service.RedeemUser) string {
	return "🎮 <b>Premium Vault - Main Menu</b> 🎮\n\n" +
		"👤 <b>User:</b> " + mention(user) + "\n\n" +
		"✨ <b>What would you like to do?</b>\n\n" +
		"🔑 Redeem premium account keys\n" +
		"📊 Check your statistics\n" +
		"🎁 Participate in giveaways\n" +
		"❓ Get help and support\n\n" +
		"👇 Select an option below:"
}

func adminMenuText(user service.RedeemUser) string {
	return "🛠 <b>Admin Panel</b>\n\n" +
		"👤 <b>Admin:</b> " + mention(user) + "\n\n" +
		"Choose what you want to manage:"
}

func redeemPromptText() string {
	return "🎁 <b>Redeem Key</b>\n\n" +
		"🔑 Please send your redemption key in the format:\n" +
		"<code>PLATFORM-XXXX-XXXX-XXXX</code>\n\n" +
		"📝 Example: <code>" + keyCodeExample + "</code>"
}

func helpText(platforms []models.Platform) string {
	var b strings.Builder
	b.WriteString("❓ <b>Help & Information</b>\n\n")
	b.WriteString("🎮 <b>How to use this bot:</b>\n\n")
	b.WriteString("1️⃣ <b>Redeem Keys</b>\n   Use the 'Redeem Key' button or /redeem &lt;key&gt;\n   Format: PLATFORM-XXXX-XXXX-XXXX\n\n")
	b.WriteString("2️⃣ <b>Get Premium Accounts</b>\n   Valid keys give you premium account credentials\n\n")
	b.WriteString("3️⃣ <b>Join Giveaways</b>\n   Use /participate while a giveaway is running\n\n")
	b.WriteString("🛑 Use /cancel to abort any pending input.\n")
	if len(platforms) > 0 {
		b.WriteString("\n🎁 <b>Available Platforms:</b>\n")
		for _, platform := range platforms {
			b.WriteString(html.EscapeString(platform.Label()))
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// redemptionSuccessText 兑换成功后交付给用户的凭据
func redemptionSuccessText(result *service.RedemptionResult) string {
	platform := result.Platform.Name
	accountText := strings.TrimSpace(result.Key.AccountText)
	if accountText == "" {
		accountText = "Premium Account"
	}
	return fmt.Sprintf(
		"✅ <b>Key Redeemed Successfully!</b>\n\n"+
			"🎁 <b>Platform:</b> %s\n"+
			"✨ <b>Account Type:</b> %s\n\n"+
			"📧 <b>Email:</b> <code>%s</code>\n"+
			"🔑 <b>Password:</b> <code>%s</code>\n\n"+
			"💡 <i>Tap to copy the credentials!</i>\n\n"+
			"⚠️ <b>Important:</b>\n"+
			"• Don't share these credentials\n"+
			"• Enjoy your %s account!",
		html.EscapeString(result.Platform.Label()),
		html.EscapeString(accountText),
		html.EscapeString(result.Credential.Email),
		html.EscapeString(result.Credential.Secret),
		html.EscapeString(platform),
	)
}

// redemptionErrorText 兑换失败的提示文案，非业务拒绝统一为稍后重试
func redemptionErrorText(err error) string {
	rejection, ok := service.AsRedemptionError(err)
	if !ok {
		if errors.Is(err, service.ErrRedeemUserRequired) {
			return "❌ <b>Error</b>\n\nWe could not identify your account. Please use /start first."
		}
		return "⚠️ <b>Something went wrong</b>\n\nPlease try again later."
	}
	switch {
	case errors.Is(rejection, service.ErrBanned):
		return "🚫 <b>Access Denied</b>\n\n❌ You have been banned from using this bot."
	case errors.Is(rejection, service.ErrCooldownActive):
		return fmt.Sprintf("⏳ <b>Slow Down</b>\n\nYou can redeem another key in %s.", formatRemaining(rejection.Remaining))
	case errors.Is(rejection, service.ErrInvalidKey):
		return "❌ <b>Invalid Key</b>\n\nThe key you entered is not valid.\n\nPlease check and try again!"
	case errors.Is(rejection, service.ErrAlreadyUsed):
		return "❌ <b>Key Already Used</b>\n\nThis key has already been redeemed.\n\nTry another key!"
	case errors.Is(rejection, service.ErrKeyExpired):
		return "⏰ <b>Key Expired</b>\n\nThis key has expired.\n\nPlease use a valid key!"
	case errors.Is(rejection, service.ErrAlreadyRedeemedByUser):
		return "⚠️ <b>Already Redeemed</b>\n\nYou've already redeemed this key!\n\nTry a different key."
	case errors.Is(rejection, service.ErrNoCredentialsAvailable):
		return "❌ <b>No Accounts Available</b>\n\nAll accounts for this platform are currently used.\n\nPlease try again later!"
	case errors.Is(rejection, service.ErrConcurrencyConflict):
		return "⚠️ <b>Busy</b>\n\nMany people are redeeming right now. Please try again in a moment."
	}
	return "⚠️ <b>Something went wrong</b>\n\nPlease try again later."
}

// formatRemaining 向上取整到秒，最小 1s
func formatRemaining(d time.Duration) string {
	if d <= 0 {
		return "1s"
	}
	seconds := int64((d + time.Second - 1) / time.Second)
	minutes, seconds := seconds/60, seconds%60
	switch {
	case minutes > 0 && seconds > 0:
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	case minutes > 0:
		return fmt.Sprintf("%dm", minutes)
	}
	return fmt.Sprintf("%ds", seconds)
}

func userStatsText(stats *service.UserStats) string {
	var b strings.Builder
	b.WriteString("📊 <b>Your Statistics</b>\n\n")
	fmt.Fprintf(&b, "🎯 <b>Total Keys Redeemed:</b> %d\n", stats.Redeemed)
	fmt.Fprintf(&b, "📅 <b>Member Since:</b> %s\n\n", stats.User.JoinedAt.Format(dateLayout))
	if len(stats.Redemptions) == 0 {
		b.WriteString("❌ <i>You haven't redeemed any keys yet!</i>\n\n")
		b.WriteString("💡 Use /redeem to redeem your first key!")
		return b.String()
	}
	b.WriteString("🔑 <b>Redeemed Keys:</b>\n")
	for i, record := range stats.Redemptions {
		if i == statsRecentLimit {
			break
		}
		platform := "Unknown"
		if record.Key != nil && record.Key.Platform != nil {
			platform = record.Key.Platform.Name
		}
		fmt.Fprintf(&b, "• %s - %s\n", html.EscapeString(platform), record.RedeemedAt.Format(dateLayout))
	}
	if extra := len(stats.Redemptions) - statsRecentLimit; extra > 0 {
		fmt.Fprintf(&b, "\n... and %d more", extra)
	}
	return strings.TrimRight(b.String(), "\n")
}

func giveawayJoinedText(giveaway *models.Giveaway) string {
	return fmt.Sprintf(
		"🎁 <b>Giveaway Entry Confirmed!</b>\n\n"+
			"✅ You've successfully joined the giveaway!\n\n"+
			"🏆 <b>Winners:</b> %d\n"+
			"⏰ <b>Ends:</b> %s\n\n"+
			"🍀 Good luck!",
		giveaway.Winners, giveaway.EndTime.Format(timeLayout),
	)
}

func giveawayJoinErrorText(err error) string {
	switch {
	case errors.Is(err, service.ErrNoActiveGiveaway), errors.Is(err, service.ErrGiveawayInactive):
		return "❌ <b>No Active Giveaway</b>\n\nThere's no active giveaway right now.\n\nCheck back later!"
	case errors.Is(err, service.ErrAlreadyParticipated):
		return "⚠️ You're already in this giveaway!"
	}
	return "⚠️ <b>Something went wrong</b>\n\nPlease try again later."
}

func giveawayStartedText(giveaway *models.Giveaway) string {
	platform := ""
	if giveaway.Platform != nil {
		platform = giveaway.Platform.Label()
	}
	return fmt.Sprintf(
		"🎉 <b>Giveaway Started!</b>\n\n"+
			"🎮 <b>Platform:</b> %s\n"+
			"⏱ <b>Duration:</b> %s\n"+
			"🏆 <b>Winners:</b> %d\n"+
			"⏰ <b>Ends:</b> %s\n\n"+
			"Users can join with /participate.",
		html.EscapeString(platform), html.EscapeString(giveaway.Duration), giveaway.Winners, giveaway.EndTime.Format(timeLayout),
	)
}

func giveawayStoppedText(giveaway *models.Giveaway) string {
	return fmt.Sprintf("🛑 <b>Giveaway Stopped</b>\n\nGiveaway #%d was cancelled and participants were notified.", giveaway.ID)
}

func generatedKeysText(platform string, keys []models.Key) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🔑 <b>Generated Keys for %s</b>\n\n", html.EscapeString(platform))
	fmt.Fprintf(&b, "📊 Created %d key(s):\n", len(keys))
	for _, key := range keys {
		fmt.Fprintf(&b, "<code>%s</code>\n", html.EscapeString(key.KeyCode))
	}
	b.WriteString("\n✅ Keys saved to database!\n💡 <i>Tap to copy!</i>")
	return b.String()
}

func uploadReportText(platform string, report *service.UploadReport) string {
	text := fmt.Sprintf(
		"📧 <b>Credentials Added for %s</b>\n\n✅ <b>Added:</b> %d\n⏭ <b>Skipped:</b> %d",
		html.EscapeString(platform), report.Added, report.Skipped,
	)
	if len(report.SkippedLines) > 0 {
		lines := make([]string, 0, len(report.SkippedLines))
		for _, line := range report.SkippedLines {
			lines = append(lines, fmt.Sprintf("%d", line))
		}
		text += "\n📝 <b>Skipped lines:</b> " + strings.Join(lines, ", ")
	}
	return text
}

func botStatsText(overview *service.DashboardOverview) string {
	var b strings.Builder
	b.WriteString("📊 <b>Bot Statistics</b>\n\n")
	fmt.Fprintf(&b, "👥 <b>Total Users:</b> %d\n", overview.Users)
	fmt.Fprintf(&b, "🎯 <b>Total Redemptions:</b> %d\n\n", overview.Redemptions)
	fmt.Fprintf(&b, "🔑 <b>Total Keys:</b> %d\n", overview.Keys.Total)
	fmt.Fprintf(&b, "✅ <b>Active Keys:</b> %d\n", overview.Keys.Active)
	fmt.Fprintf(&b, "🎯 <b>Used Keys:</b> %d\n", overview.Keys.Used)
	fmt.Fprintf(&b, "⏰ <b>Expired Keys:</b> %d\n\n", overview.Keys.Expired)
	fmt.Fprintf(&b, "📧 <b>Credentials:</b> %d total, %d active, %d claimed\n", overview.Credentials.Total, overview.Credentials.Active, overview.Credentials.Claimed)
	if overview.ActiveGiveaway {
		b.WriteString("🎁 <b>Giveaway:</b> running\n")
	}
	if len(overview.Platforms) > 0 {
		b.WriteString("\n📱 <b>Platform Breakdown:</b>\n")
		for _, platform := range overview.Platforms {
			warn := ""
			if platform.LowStock {
				warn = " ⚠️"
			}
			fmt.Fprintf(&b, "%s <b>%s:</b> %d keys (%d active), %d accounts available%s\n",
				platform.Emoji, html.EscapeString(platform.Name),
				platform.Keys.Total, platform.Keys.Active, platform.Credentials.Active, warn,
			)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func keyListText(platform string, keys []models.Key, total int64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🔑 <b>%s Keys</b> (%d)\n\n", html.EscapeString(platform), total)
	if len(keys) == 0 {
		b.WriteString("❌ <i>No keys found for this platform.</i>")
		return b.String()
	}
	for _, key := range keys {
		fmt.Fprintf(&b, "%s <code>%s</code> %d/%d\n", keyStatusIcon(key.Status), html.EscapeString(key.KeyCode), key.RemainingUses, key.Uses)
	}
	if total > int64(len(keys)) {
		fmt.Fprintf(&b, "\n... and %d more", total-int64(len(keys)))
	}
	return strings.TrimRight(b.String(), "\n")
}

func keyStatusIcon(status string) string {
	switch status {
	case constants.KeyStatusActive:
		return "✅"
	case constants.KeyStatusUsed:
		return "🎯"
	case constants.KeyStatusExpired:
		return "⏰"
	}
	return "•"
}

func revokeConfirmText(platform, option string) string {
	var scope string
	switch option {
	case constants.KeyRevokeLast:
		scope = "the most recently created key"
	case constants.KeyRevokeAll:
		scope = "ALL keys"
	case constants.KeyRevokeClaimed:
		scope = "all fully used keys"
	default:
		scope = html.EscapeString(option)
	}
	return fmt.Sprintf("⚠️ <b>Confirm Revoke</b>\n\nThis deletes %s for <b>%s</b>.\n\nAre you sure?", scope, html.EscapeString(platform))
}

// adminErrorText 管理操作失败提示
func adminErrorText(err error) string {
	switch {
	case errors.Is(err, service.ErrPlatformNotFound), errors.Is(err, service.ErrPlatformRequired):
		return "❌ Unknown platform. Please start over."
	case errors.Is(err, service.ErrKeyInvalidInput):
		return "❌ Invalid key parameters."
	case errors.Is(err, service.ErrKeyNotFound):
		return "❌ No matching keys found."
	case errors.Is(err, service.ErrUploadEmpty):
		return "❌ No valid <code>email:password</code> lines found."
	case errors.Is(err, service.ErrGiveawayInvalid):
		return "❌ Invalid number of winners."
	case errors.Is(err, service.ErrInvalidDuration):
		return "❌ Invalid duration."
	case errors.Is(err, service.ErrNoActiveGiveaway), errors.Is(err, service.ErrGiveawayInactive):
		return "❌ There is no active giveaway."
	case errors.Is(err, service.ErrBanIdentifierInvalid):
		return "❌ Send a numeric user ID or an @username."
	case errors.Is(err, service.ErrAlreadyBanned):
		return "⚠️ This user is already banned."
	case errors.Is(err, service.ErrBanNotFound):
		return "⚠️ This user is not banned."
	case errors.Is(err, service.ErrBroadcastEmpty):
		return "❌ The broadcast message is empty."
	case errors.Is(err, service.ErrNotificationDisabled):
		return "❌ Messaging is not configured."
	case errors.Is(err, service.ErrPendingTransition), errors.Is(err, service.ErrPendingActionNotFound):
		return "❌ This step has expired. Please start over."
	}
	return "⚠️ <b>Something went wrong</b>\n\nPlease try again later."
}
