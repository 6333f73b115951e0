package queue

import (
	"testing"

	"github.com/streamvault/internal/config"
)

func TestUserMessageTaskRoundTrip(t *testing.T) {
	task, err := NewUserMessageTask(UserMessagePayload{Event: "giveaway_winner", UserID: 42, Text: "prize"})
	if err != nil {
		t.Fatalf("new task failed: %v", err)
	}
	if task.Type() != TaskUserMessage {
		t.Fatalf("unexpected task type: %s", task.Type())
	}
	payload, err := ParseUserMessagePayload(task)
	if err != nil {
		t.Fatalf("parse payload failed: %v", err)
	}
	if payload.UserID != 42 || payload.Text != "prize" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestEmptyPayloadRejected(t *testing.T) {
	if _, err := NewAdminNotifyTask(AdminNotifyPayload{Text: "  "}); err == nil {
		t.Fatalf("expected empty admin notice to be rejected")
	}
	if _, err := NewUserMessageTask(UserMessagePayload{Text: "hi"}); err == nil {
		t.Fatalf("expected missing user id to be rejected")
	}
	if _, err := NewBroadcastTask(BroadcastPayload{}); err == nil {
		t.Fatalf("expected empty broadcast to be rejected")
	}
}

func TestDisabledClientReportsDisabled(t *testing.T) {
	client, err := NewClient(&config.QueueConfig{Enabled: false})
	if err != nil {
		t.Fatalf("new client failed: %v", err)
	}
	if client.Enabled() {
		t.Fatalf("client should be disabled")
	}
	if err := client.EnqueueAdminNotify(AdminNotifyPayload{Text: "x"}); err != ErrQueueDisabled {
		t.Fatalf("expected ErrQueueDisabled, got %v", err)
	}
}

func TestBuildServerConfigDefaults(t *testing.T) {
	opt, cfg := BuildServerConfig(&config.QueueConfig{Host: "redis", Port: 6380, DB: 2})
	if opt.Addr != "redis:6380" || opt.DB != 2 {
		t.Fatalf("unexpected redis opt: %+v", opt)
	}
	if cfg.Concurrency != 10 {
		t.Fatalf("unexpected concurrency: %d", cfg.Concurrency)
	}
	if cfg.Queues["critical"] == 0 || cfg.Queues["default"] == 0 {
		t.Fatalf("expected both queues configured: %+v", cfg.Queues)
	}
}
