package telegram

import (
	"context"
	"errors"
	"testing"

	"github.com/streamvault/internal/config"
	"github.com/streamvault/internal/service"

	tele "gopkg.in/telebot.v3"
)

func TestMapSendError(t *testing.T) {
	unreachable := []error{
		tele.ErrBlockedByUser,
		tele.ErrChatNotFound,
		tele.ErrUserIsDeactivated,
		tele.ErrNotStartedByUser,
	}
	for _, raw := range unreachable {
		got := MapSendError(raw)
		if !errors.Is(got, service.ErrRecipientUnreachable) {
			t.Fatalf("expected unreachable for %v, got %v", raw, got)
		}
		if !errors.Is(got, raw) {
			t.Fatalf("original error lost: %v", got)
		}
	}

	transient := errors.New("connection reset")
	if got := MapSendError(transient); got != transient {
		t.Fatalf("transient error should pass through, got %v", got)
	}
	if MapSendError(nil) != nil {
		t.Fatalf("nil should stay nil")
	}
}

func TestNewBotRequiresToken(t *testing.T) {
	if _, err := NewBot(config.TelegramConfig{Token: "  "}, true); !errors.Is(err, ErrTokenMissing) {
		t.Fatalf("expected ErrTokenMissing, got %v", err)
	}
	if _, err := NewSender(config.TelegramConfig{}); !errors.Is(err, ErrTokenMissing) {
		t.Fatalf("expected ErrTokenMissing from sender, got %v", err)
	}
}

func TestOfflineSenderBuilds(t *testing.T) {
	sender, err := NewSender(config.TelegramConfig{Token: "123456:offline-token"})
	if err != nil {
		t.Fatalf("offline sender should not touch network: %v", err)
	}
	if sender.bot == nil {
		t.Fatalf("expected bot instance")
	}
}

func TestNilSenderDisabled(t *testing.T) {
	var sender *Sender
	if err := sender.SendHTML(context.Background(), 1, "hi"); !errors.Is(err, service.ErrNotificationDisabled) {
		t.Fatalf("expected ErrNotificationDisabled, got %v", err)
	}
}
