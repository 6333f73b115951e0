package service

import (
	"errors"
	"testing"
)

func TestNormalizeBanIdentifier(t *testing.T) {
	cases := map[string]string{
		"12345":    "12345",
		" 42 ":     "42",
		"@Alice":   "@alice",
		"BOB":      "@bob",
		"@@weird":  "",
		"":         "",
		"-3":       "",
		"two word": "",
	}
	for raw, want := range cases {
		got, err := NormalizeBanIdentifier(raw)
		if want == "" {
			if !errors.Is(err, ErrBanIdentifierInvalid) {
				t.Fatalf("%q: expected invalid identifier, got %q err=%v", raw, got, err)
			}
			continue
		}
		if err != nil || got != want {
			t.Fatalf("%q: want %q got %q err=%v", raw, want, got, err)
		}
	}
}

func TestBanLifecycle(t *testing.T) {
	f := setupServiceTest(t)
	if _, err := f.bans.Ban("@Carol", "owner"); err != nil {
		t.Fatalf("ban failed: %v", err)
	}
	if _, err := f.bans.Ban("carol", "owner"); !errors.Is(err, ErrAlreadyBanned) {
		t.Fatalf("expected already banned, got %v", err)
	}
	banned, err := f.bans.IsBanned(900, "CAROL")
	if err != nil || !banned {
		t.Fatalf("expected banned by username, got %v err=%v", banned, err)
	}
	banned, err = f.bans.IsBanned(900, "")
	if err != nil || banned {
		t.Fatalf("id 900 should not be banned, got %v err=%v", banned, err)
	}
	if err := f.bans.Unban("@carol"); err != nil {
		t.Fatalf("unban failed: %v", err)
	}
	if err := f.bans.Unban("@carol"); !errors.Is(err, ErrBanNotFound) {
		t.Fatalf("expected ban not found, got %v", err)
	}
	list, err := f.bans.List()
	if err != nil || len(list) != 0 {
		t.Fatalf("ban list should be empty: %v err=%v", list, err)
	}
}
