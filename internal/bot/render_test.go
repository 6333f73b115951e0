package bot

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/streamvault/internal/models"
	"github.com/streamvault/internal/service"
)

func TestFormatRemaining(t *testing.T) {
	cases := []struct {
		in   time.Duration
		want string
	}{
		{0, "1s"},
		{400 * time.Millisecond, "1s"},
		{45 * time.Second, "45s"},
		{6 * time.Minute, "6m"},
		{6*time.Minute + 1500*time.Millisecond, "6m 2s"},
	}
	for _, tc := range cases {
		if got := formatRemaining(tc.in); got != tc.want {
			t.Fatalf("formatRemaining(%s) want %q got %q", tc.in, tc.want, got)
		}
	}
}

func TestRedemptionErrorText(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{&service.RedemptionError{Kind: service.ErrBanned}, "Access Denied"},
		{&service.RedemptionError{Kind: service.ErrCooldownActive, Remaining: 90 * time.Second}, "1m 30s"},
		{&service.RedemptionError{Kind: service.ErrInvalidKey}, "Invalid Key"},
		{&service.RedemptionError{Kind: service.ErrAlreadyUsed}, "Key Already Used"},
		{&service.RedemptionError{Kind: service.ErrKeyExpired}, "Key Expired"},
		{&service.RedemptionError{Kind: service.ErrAlreadyRedeemedByUser}, "Already Redeemed"},
		{&service.RedemptionError{Kind: service.ErrNoCredentialsAvailable}, "No Accounts Available"},
		{&service.RedemptionError{Kind: service.ErrConcurrencyConflict}, "Busy"},
		{errors.New("db down"), "try again later"},
	}
	for _, tc := range cases {
		if got := redemptionErrorText(tc.err); !strings.Contains(got, tc.want) {
			t.Fatalf("error %v: want %q in %q", tc.err, tc.want, got)
		}
	}
}

func TestRedemptionSuccessEscapesHTML(t *testing.T) {
	text := redemptionSuccessText(&service.RedemptionResult{
		Key:        &models.Key{AccountText: "<Premium>"},
		Platform:   &models.Platform{Name: "Netflix", Emoji: "🎬"},
		Credential: &models.Credential{Email: "a@b.co", Secret: "p<w>&"},
	})
	if !strings.Contains(text, "p&lt;w&gt;&amp;") || !strings.Contains(text, "&lt;Premium&gt;") {
		t.Fatalf("expected escaped values, got %q", text)
	}
}

func TestUserStatsTextTruncates(t *testing.T) {
	platform := &models.Platform{Name: "WWE"}
	records := make([]models.KeyRedemption, 0, 7)
	for i := 0; i < 7; i++ {
		records = append(records, models.KeyRedemption{
			Key:        &models.Key{Platform: platform},
			RedeemedAt: time.Date(2026, 1, i+1, 0, 0, 0, 0, time.UTC),
		})
	}
	text := userStatsText(&service.UserStats{
		User:        &models.User{JoinedAt: time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)},
		Redeemed:    len(records),
		Redemptions: records,
	})
	if strings.Count(text, "• WWE") != statsRecentLimit {
		t.Fatalf("expected %d rows, got %q", statsRecentLimit, text)
	}
	if !strings.Contains(text, "and 2 more") || !strings.Contains(text, "2025-12-31") {
		t.Fatalf("unexpected stats text: %q", text)
	}
}

func TestPlatformMenuLayout(t *testing.T) {
	menu := platformMenu(uniqueGenPlatform, models.DefaultPlatforms())
	// 9 个平台两列排布再加返回行
	if len(menu.InlineKeyboard) != 6 {
		t.Fatalf("expected 6 rows, got %d", len(menu.InlineKeyboard))
	}
	first := menu.InlineKeyboard[0][0]
	if first.Unique != uniqueGenPlatform || first.Data != "Netflix" {
		t.Fatalf("unexpected first button: %+v", first)
	}
	if len(menu.InlineKeyboard[4]) != 1 {
		t.Fatalf("odd platform should sit alone, got %d", len(menu.InlineKeyboard[4]))
	}
}

func TestDurationMenuCarriesPlatform(t *testing.T) {
	menu := durationMenu("Xbox")
	if len(menu.InlineKeyboard) != len(giveawayDurations)/2+1 {
		t.Fatalf("unexpected row count %d", len(menu.InlineKeyboard))
	}
	btn := menu.InlineKeyboard[0][1]
	if btn.Unique != uniqueGiveDuration || btn.Data != "Xbox|5m" {
		t.Fatalf("unexpected duration button: %+v", btn)
	}
}

func TestParsePositive(t *testing.T) {
	if n, ok := parsePositive(" 12 ", 500); !ok || n != 12 {
		t.Fatalf("expected 12, got %d %v", n, ok)
	}
	for _, raw := range []string{"0", "-3", "abc", "501"} {
		if _, ok := parsePositive(raw, 500); ok {
			t.Fatalf("expected %q to be rejected", raw)
		}
	}
	if _, ok := parsePositive("100000", 0); !ok {
		t.Fatalf("zero limit means unbounded")
	}
}

func TestOperatorName(t *testing.T) {
	if got := operatorName(service.RedeemUser{ID: 5, Username: "@Boss"}); got != "@Boss" {
		t.Fatalf("unexpected operator %q", got)
	}
	if got := operatorName(service.RedeemUser{ID: 5}); got != "5" {
		t.Fatalf("unexpected operator %q", got)
	}
}
