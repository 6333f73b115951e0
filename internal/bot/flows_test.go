package bot

import (
	"strings"
	"testing"

	"github.com/streamvault/internal/constants"
	"github.com/streamvault/internal/models"
	"github.com/streamvault/internal/service"
)

func TestRedeemReplyDeliversCredential(t *testing.T) {
	h, db := setupBotTest(t)
	netflix := mustPlatform(t, h, "Netflix")
	seedCredential(t, db, netflix.ID, "viewer@example.com")
	seedKey(t, db, netflix.ID, "NETFLIX-AAAA-BBBB-CCCC")

	first := h.redeemReply(t.Context(), service.RedeemUser{ID: 42, Username: "alice"}, "netflix-aaaa-bbbb-cccc")
	if !strings.Contains(first.text, "viewer@example.com") || !strings.Contains(first.text, "secret-viewer@example.com") {
		t.Fatalf("expected credential in reply, got %q", first.text)
	}

	second := h.redeemReply(t.Context(), service.RedeemUser{ID: 43}, "NETFLIX-AAAA-BBBB-CCCC")
	if !strings.Contains(second.text, "Key Already Used") {
		t.Fatalf("expected already used reply, got %q", second.text)
	}
}

func TestRedeemViaPendingStep(t *testing.T) {
	h, db := setupBotTest(t)
	dazn := mustPlatform(t, h, "Dazn")
	seedCredential(t, db, dazn.ID, "fight@example.com")
	seedKey(t, db, dazn.ID, "DAZN-1111-2222-3333")
	user := service.RedeemUser{ID: 77}

	h.redeemPromptReply(t.Context(), user.ID)
	if step := pendingStep(t, h, user.ID); step != constants.PendingStepRedeemCode {
		t.Fatalf("expected redeem step, got %q", step)
	}
	action, _ := h.Pending.Get(t.Context(), user.ID)
	got := h.continuePending(t.Context(), user, action, "  DAZN-1111-2222-3333 ")
	if !strings.Contains(got.text, "fight@example.com") {
		t.Fatalf("expected credential, got %q", got.text)
	}
	if step := pendingStep(t, h, user.ID); step != constants.PendingStepNone {
		t.Fatalf("pending should be cleared, got %q", step)
	}
}

func TestGenerateKeysFlow(t *testing.T) {
	h, db := setupBotTest(t)
	ctx := t.Context()
	admin := service.RedeemUser{ID: testAdminID, Username: "boss"}

	h.beginPlatformStep(ctx, admin.ID, constants.PendingStepGenerateCount, "netflix")
	action, _ := h.Pending.Get(ctx, admin.ID)
	if action == nil || action.Platform != "Netflix" {
		t.Fatalf("expected pending action for Netflix, got %+v", action)
	}

	invalid := h.continuePending(ctx, admin, action, "many")
	if !strings.Contains(invalid.text, "valid number") {
		t.Fatalf("expected validation reply, got %q", invalid.text)
	}
	if step := pendingStep(t, h, admin.ID); step != constants.PendingStepGenerateCount {
		t.Fatalf("invalid input must keep step, got %q", step)
	}

	action, _ = h.Pending.Get(ctx, admin.ID)
	h.continuePending(ctx, admin, action, "2")
	action, _ = h.Pending.Get(ctx, admin.ID)
	if action.Step != constants.PendingStepGenerateUses || action.Count != 2 {
		t.Fatalf("unexpected action after count: %+v", action)
	}
	h.continuePending(ctx, admin, action, "3")
	action, _ = h.Pending.Get(ctx, admin.ID)
	if action.Step != constants.PendingStepGenerateText || action.Uses != 3 {
		t.Fatalf("unexpected action after uses: %+v", action)
	}
	done := h.continuePending(ctx, admin, action, "Premium 4K")
	if !strings.Contains(done.text, "Created 2 key(s)") {
		t.Fatalf("unexpected generate reply: %q", done.text)
	}
	if step := pendingStep(t, h, admin.ID); step != constants.PendingStepNone {
		t.Fatalf("flow should be finished, got %q", step)
	}

	var keys []models.Key
	if err := db.Find(&keys).Error; err != nil {
		t.Fatalf("load keys failed: %v", err)
	}
	if len(keys) != 2 {
		t.Fatalf("expected 2 keys, got %d", len(keys))
	}
	for _, key := range keys {
		if key.Uses != 3 || key.RemainingUses != 3 || key.AccountText != "Premium 4K" {
			t.Fatalf("unexpected key: %+v", key)
		}
		if !strings.HasPrefix(key.KeyCode, "NETFLIX-") {
			t.Fatalf("unexpected key code: %s", key.KeyCode)
		}
	}
}

func TestAdminStepsRequireAdmin(t *testing.T) {
	h, _ := setupBotTest(t)
	ctx := t.Context()
	intruder := service.RedeemUser{ID: 5}
	h.beginPlatformStep(ctx, intruder.ID, constants.PendingStepGenerateCount, "Netflix")
	action, _ := h.Pending.Get(ctx, intruder.ID)

	got := h.continuePending(ctx, intruder, action, "10")
	if !strings.Contains(got.text, "Access denied") {
		t.Fatalf("expected access denied, got %q", got.text)
	}
	if step := pendingStep(t, h, intruder.ID); step != constants.PendingStepNone {
		t.Fatalf("pending should be dropped, got %q", step)
	}
}

func TestCredentialUploadFlow(t *testing.T) {
	h, db := setupBotTest(t)
	ctx := t.Context()
	admin := service.RedeemUser{ID: testAdminID}

	h.beginPlatformStep(ctx, admin.ID, constants.PendingStepCredentialLines, "Crunchyroll")
	action, _ := h.Pending.Get(ctx, admin.ID)

	empty := h.continuePending(ctx, admin, action, "garbage")
	if !strings.Contains(empty.text, "No valid") {
		t.Fatalf("expected empty upload reply, got %q", empty.text)
	}
	if step := pendingStep(t, h, admin.ID); step != constants.PendingStepCredentialLines {
		t.Fatalf("empty upload should keep step, got %q", step)
	}

	got := h.continuePending(ctx, admin, action, "a@example.com:one\nbroken\nb@example.com:two")
	if !strings.Contains(got.text, "<b>Added:</b> 2") || !strings.Contains(got.text, "<b>Skipped:</b> 1") {
		t.Fatalf("unexpected upload reply: %q", got.text)
	}
	var count int64
	db.Model(&models.Credential{}).Count(&count)
	if count != 2 {
		t.Fatalf("expected 2 credentials, got %d", count)
	}
}

func TestRevokeConfirmFlow(t *testing.T) {
	h, db := setupBotTest(t)
	ctx := t.Context()
	wwe := mustPlatform(t, h, "WWE")
	seedKey(t, db, wwe.ID, "WWE-AAAA-AAAA-AAAA")
	seedKey(t, db, wwe.ID, "WWE-BBBB-BBBB-BBBB")

	h.beginRevokeConfirm(ctx, testAdminID, "wwe", constants.KeyRevokeAll)
	cancelled := h.confirmRevoke(ctx, testAdminID, "no")
	if !strings.Contains(cancelled.text, "cancelled") {
		t.Fatalf("expected cancel reply, got %q", cancelled.text)
	}
	var count int64
	db.Model(&models.Key{}).Count(&count)
	if count != 2 {
		t.Fatalf("cancel must keep keys, got %d", count)
	}

	stale := h.confirmRevoke(ctx, testAdminID, "yes")
	if !strings.Contains(stale.text, "expired") {
		t.Fatalf("confirm without pending should be rejected, got %q", stale.text)
	}

	h.beginRevokeConfirm(ctx, testAdminID, "WWE", constants.KeyRevokeAll)
	done := h.confirmRevoke(ctx, testAdminID, "yes")
	if !strings.Contains(done.text, "2 key(s) removed") {
		t.Fatalf("unexpected revoke reply: %q", done.text)
	}
	db.Model(&models.Key{}).Count(&count)
	if count != 0 {
		t.Fatalf("expected keys revoked, got %d", count)
	}

	bad := h.beginRevokeConfirm(ctx, testAdminID, "WWE", "everything")
	if !strings.Contains(bad.text, "Unknown revoke option") {
		t.Fatalf("expected option rejection, got %q", bad.text)
	}
}

func TestGiveawayFlowAndJoin(t *testing.T) {
	h, _ := setupBotTest(t)
	ctx := t.Context()
	admin := service.RedeemUser{ID: testAdminID}

	h.beginGiveawayWinners(ctx, admin.ID, "Xbox", "1h")
	action, _ := h.Pending.Get(ctx, admin.ID)
	if action == nil || action.Duration != "1h" {
		t.Fatalf("unexpected pending action: %+v", action)
	}
	started := h.continuePending(ctx, admin, action, "2")
	if !strings.Contains(started.text, "Giveaway Started") {
		t.Fatalf("unexpected start reply: %q", started.text)
	}

	user := service.RedeemUser{ID: 300, Username: "player"}
	menu := h.userMenuReply(user)
	if len(menu.markup.InlineKeyboard) != 4 {
		t.Fatalf("active giveaway should add join row, got %d rows", len(menu.markup.InlineKeyboard))
	}
	joined := h.joinGiveawayReply(user)
	if !strings.Contains(joined.text, "Entry Confirmed") {
		t.Fatalf("unexpected join reply: %q", joined.text)
	}
	again := h.joinGiveawayReply(user)
	if !strings.Contains(again.text, "already in this giveaway") {
		t.Fatalf("expected duplicate join reply, got %q", again.text)
	}

	stopped := h.stopGiveawayReply()
	if !strings.Contains(stopped.text, "Giveaway Stopped") {
		t.Fatalf("unexpected stop reply: %q", stopped.text)
	}
	none := h.joinGiveawayReply(user)
	if !strings.Contains(none.text, "No Active Giveaway") {
		t.Fatalf("expected no active giveaway, got %q", none.text)
	}
}

func TestBanFlowBlocksRedeem(t *testing.T) {
	h, db := setupBotTest(t)
	ctx := t.Context()
	admin := service.RedeemUser{ID: testAdminID, Username: "boss"}
	netflix := mustPlatform(t, h, "Netflix")
	seedCredential(t, db, netflix.ID, "x@example.com")
	seedKey(t, db, netflix.ID, "NETFLIX-BANN-BANN-BANN")

	action, _ := service.NewPendingAction(constants.PendingStepBanIdentifier)
	h.startPending(ctx, admin.ID, action, reply{})
	invalid := h.continuePending(ctx, admin, action, "not valid!")
	if !strings.Contains(invalid.text, "numeric user ID") {
		t.Fatalf("expected identifier validation, got %q", invalid.text)
	}
	banned := h.continuePending(ctx, admin, action, "@Mallory")
	if !strings.Contains(banned.text, "User Banned") {
		t.Fatalf("unexpected ban reply: %q", banned.text)
	}

	got := h.redeemReply(ctx, service.RedeemUser{ID: 66, Username: "mallory"}, "NETFLIX-BANN-BANN-BANN")
	if !strings.Contains(got.text, "banned") {
		t.Fatalf("banned user should be rejected, got %q", got.text)
	}

	if unban := h.unbanReply("@mallory"); !strings.Contains(unban.text, "Unbanned") {
		t.Fatalf("unexpected unban reply: %q", unban.text)
	}
}

func TestBroadcastWithoutSender(t *testing.T) {
	h, _ := setupBotTest(t)
	ctx := t.Context()
	admin := service.RedeemUser{ID: testAdminID}
	action, _ := service.NewPendingAction(constants.PendingStepBroadcastMessage)
	h.startPending(ctx, admin.ID, action, reply{})

	got := h.continuePending(ctx, admin, action, "hello everyone")
	if !strings.Contains(got.text, "not configured") {
		t.Fatalf("expected disabled sender reply, got %q", got.text)
	}
}

func TestBotStatsAndKeyList(t *testing.T) {
	h, db := setupBotTest(t)
	psn := mustPlatform(t, h, "PSNFA")
	seedKey(t, db, psn.ID, "PSNFA-AAAA-BBBB-CCCC")
	seedCredential(t, db, psn.ID, "psn@example.com")

	stats := h.botStatsReply(t.Context())
	if !strings.Contains(stats.text, "<b>Total Keys:</b> 1") {
		t.Fatalf("unexpected stats reply: %q", stats.text)
	}
	list := h.keyListReply("psnfa")
	if !strings.Contains(list.text, "PSNFA-AAAA-BBBB-CCCC") {
		t.Fatalf("unexpected key list: %q", list.text)
	}
	cleared := h.clearExpiredReply()
	if !strings.Contains(cleared.text, "0 key(s) removed") {
		t.Fatalf("unexpected clear reply: %q", cleared.text)
	}
}
