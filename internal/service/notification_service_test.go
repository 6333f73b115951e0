package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/streamvault/internal/models"
	"github.com/streamvault/internal/repository"
)

type fakeSender struct {
	mu      sync.Mutex
	sent    map[int64][]string
	blocked map[int64]bool
	broken  map[int64]bool
}

func newFakeSender() *fakeSender {
	return &fakeSender{sent: map[int64][]string{}, blocked: map[int64]bool{}, broken: map[int64]bool{}}
}

func (s *fakeSender) SendHTML(_ context.Context, chatID int64, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.blocked[chatID] {
		return fmt.Errorf("%w: bot was blocked by the user", ErrRecipientUnreachable)
	}
	if s.broken[chatID] {
		return errors.New("telegram: internal server error")
	}
	s.sent[chatID] = append(s.sent[chatID], text)
	return nil
}

func TestAdminDirectoryUnion(t *testing.T) {
	f := setupServiceTest(t)
	bound := int64(555)
	if err := f.db.Create(&models.AdminCredential{Username: "ops", PasswordHash: "x", Role: "admin", TelegramUserID: &bound}).Error; err != nil {
		t.Fatalf("create admin failed: %v", err)
	}
	directory := NewAdminDirectory([]int64{111, 555, 0}, repository.NewAdminRepository(f.db))

	for _, id := range []int64{111, 555} {
		if !directory.IsAdmin(id) {
			t.Fatalf("%d should be admin", id)
		}
	}
	if directory.IsAdmin(222) || directory.IsAdmin(0) {
		t.Fatalf("unexpected admin")
	}
	ids, err := directory.AdminIDs()
	if err != nil {
		t.Fatalf("admin ids failed: %v", err)
	}
	if len(ids) != 2 || ids[0] != 111 || ids[1] != 555 {
		t.Fatalf("unexpected admin ids: %v", ids)
	}
}

func TestDeliverBroadcastCountsBlocked(t *testing.T) {
	f := setupServiceTest(t)
	for _, id := range []int64{1, 2, 3, 4} {
		if err := f.db.Create(&models.User{UserID: id}).Error; err != nil {
			t.Fatalf("create user failed: %v", err)
		}
	}
	sender := newFakeSender()
	sender.blocked[2] = true
	sender.broken[4] = true
	svc := NewNotificationService(sender, nil, NewAdminDirectory(nil, nil), repository.NewUserRepository(f.db), 0)

	report, err := svc.DeliverBroadcast(context.Background(), "Maintenance <tonight>")
	if err != nil {
		t.Fatalf("broadcast failed: %v", err)
	}
	if report.Total != 4 || report.Sent != 2 || report.Blocked != 1 || report.Failed != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if len(sender.sent[1]) != 1 || !strings.Contains(sender.sent[1][0], "&lt;tonight&gt;") {
		t.Fatalf("message should be escaped: %v", sender.sent[1])
	}
	if err := svc.Broadcast("   ", "owner"); !errors.Is(err, ErrBroadcastEmpty) {
		t.Fatalf("expected empty broadcast rejection, got %v", err)
	}
}

func TestGiveawayWinnerDeliveredInline(t *testing.T) {
	sender := newFakeSender()
	svc := NewNotificationService(sender, nil, NewAdminDirectory([]int64{9}, nil), nil, 0)
	key := &models.Key{KeyCode: "NETFLIX-WIN0-0000-0001", AccountText: "Netflix Giveaway Prize"}

	if err := svc.GiveawayWinner(context.Background(), 77, "Netflix", key); err != nil {
		t.Fatalf("winner delivery failed: %v", err)
	}
	if len(sender.sent[77]) != 1 || !strings.Contains(sender.sent[77][0], key.KeyCode) {
		t.Fatalf("winner message should contain the key: %v", sender.sent[77])
	}

	sender.blocked[78] = true
	if err := svc.GiveawayWinner(context.Background(), 78, "Netflix", key); !errors.Is(err, ErrRecipientUnreachable) {
		t.Fatalf("expected unreachable, got %v", err)
	}
}

func TestDeliverAdminsSkipsFailures(t *testing.T) {
	sender := newFakeSender()
	sender.blocked[1] = true
	svc := NewNotificationService(sender, nil, NewAdminDirectory([]int64{1, 2}, nil), nil, 0)
	if err := svc.DeliverAdmins(context.Background(), "hello"); err != nil {
		t.Fatalf("deliver admins failed: %v", err)
	}
	if len(sender.sent[2]) != 1 {
		t.Fatalf("admin 2 should still receive the notice")
	}

	silent := NewNotificationService(nil, nil, nil, nil, 0)
	if err := silent.DeliverUser(context.Background(), 5, "x"); !errors.Is(err, ErrNotificationDisabled) {
		t.Fatalf("expected disabled sender, got %v", err)
	}
}
