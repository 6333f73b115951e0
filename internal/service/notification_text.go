package service

import (
	"fmt"
	"html"
	"strings"
	"time"
)

const notificationTimeLayout = "2006-01-02 15:04:05"

// RedemptionEvent 兑换成功事件
type RedemptionEvent struct {
	Platform        string
	KeyCode         string
	UserID          int64
	Username        string
	FullName        string
	CredentialEmail string
	RemainingUses   int
	At              time.Time
}

func orNA(value string) string {
	if strings.TrimSpace(value) == "" {
		return "N/A"
	}
	return html.EscapeString(value)
}

func usernameText(username string) string {
	username = strings.TrimPrefix(strings.TrimSpace(username), "@")
	if username == "" {
		return "N/A"
	}
	return "@" + html.EscapeString(username)
}

func userDetailsBlock(userID int64, username, fullName string) string {
	return fmt.Sprintf(
		"👤 <b>User Details:</b>\n├ <b>Name:</b> %s\n├ <b>Chat ID:</b> <code>%d</code>\n└ <b>Username:</b> %s",
		orNA(fullName), userID, usernameText(username),
	)
}

// KeyRedeemedText 兑换码被兑换的管理员通知
func KeyRedeemedText(event RedemptionEvent) string {
	return fmt.Sprintf(
		"🎁 <b>Key Redeemed!</b>\n\n🎮 <b>Platform:</b> %s\n🔑 <b>Key:</b> <code>%s</code>\n\n%s\n\n⏰ <b>Time:</b> %s",
		html.EscapeString(event.Platform),
		html.EscapeString(event.KeyCode),
		userDetailsBlock(event.UserID, event.Username, event.FullName),
		event.At.Format(notificationTimeLayout),
	)
}

// CredentialClaimedText 凭据被领取的管理员通知
func CredentialClaimedText(event RedemptionEvent) string {
	return fmt.Sprintf(
		"📧 <b>Credential Claimed!</b>\n\n🎮 <b>Platform:</b> %s\n📧 <b>Email:</b> <code>%s</code>\n\n%s\n\n⏰ <b>Time:</b> %s",
		html.EscapeString(event.Platform),
		html.EscapeString(event.CredentialEmail),
		userDetailsBlock(event.UserID, event.Username, event.FullName),
		event.At.Format(notificationTimeLayout),
	)
}

// GiveawayWinnerText 中奖通知
func GiveawayWinnerText(platform, accountText, keyCode string) string {
	code := html.EscapeString(keyCode)
	return fmt.Sprintf(
		"🎉 <b>Congratulations! You Won!</b> 🎉\n\n"+
			"🏆 You've been selected as a winner in the <b>%s</b> giveaway!\n\n"+
			"🎁 <b>Your Prize:</b> %s\n"+
			"🔑 <b>Redemption Key:</b> <code>%s</code>\n\n"+
			"📝 <b>How to Redeem:</b>\n"+
			"1️⃣ Use the /redeem command\n"+
			"2️⃣ Send your key: <code>%s</code>\n"+
			"3️⃣ Get your account credentials!\n\n"+
			"💡 <i>Tap the key to copy it!</i>",
		html.EscapeString(platform), html.EscapeString(accountText), code, code,
	)
}

// GiveawayCancelledText 抽奖取消通知
func GiveawayCancelledText(platform string) string {
	return fmt.Sprintf(
		"🚫 <b>Giveaway Cancelled</b>\n\n"+
			"⚠️ The <b>%s</b> giveaway has been cancelled by the administrators.\n\n"+
			"😔 We apologize for the inconvenience.\n\n"+
			"🔔 Stay tuned for more giveaways coming soon!",
		html.EscapeString(platform),
	)
}

// BroadcastText 广播消息
func BroadcastText(message string) string {
	return "📢 <b>Announcement</b>\n\n" + html.EscapeString(strings.TrimSpace(message))
}
