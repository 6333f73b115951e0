package repository

import (
	"testing"

	"github.com/streamvault/internal/models"
)

func TestTouchRegistersOnceAndRefreshesUsername(t *testing.T) {
	db := setupRepositoryTestDB(t)
	repo := NewUserRepository(db)

	created, err := repo.Touch(&models.User{UserID: 42, Username: "alice"})
	if err != nil || !created {
		t.Fatalf("first touch: created=%v err=%v", created, err)
	}
	created, err = repo.Touch(&models.User{UserID: 42, Username: "alice_new"})
	if err != nil || created {
		t.Fatalf("second touch should not create: created=%v err=%v", created, err)
	}

	user, err := repo.GetByUserID(42)
	if err != nil || user == nil {
		t.Fatalf("get user failed: %v", err)
	}
	if user.Username != "alice_new" || user.LastSeenAt == nil {
		t.Fatalf("user not refreshed: %+v", user)
	}
	byName, err := repo.GetByUsername("@ALICE_NEW")
	if err != nil || byName == nil || byName.UserID != 42 {
		t.Fatalf("lookup by username failed: %+v %v", byName, err)
	}
	total, err := repo.Count()
	if err != nil || total != 1 {
		t.Fatalf("count want 1 got %d err=%v", total, err)
	}
}

func TestBanRepositoryMatchesAnyIdentifier(t *testing.T) {
	db := setupRepositoryTestDB(t)
	repo := NewBanRepository(db)

	created, err := repo.Create(&models.BannedUser{UserIdentifier: "@mallory"})
	if err != nil || !created {
		t.Fatalf("create ban failed: created=%v err=%v", created, err)
	}
	created, err = repo.Create(&models.BannedUser{UserIdentifier: "@mallory"})
	if err != nil || created {
		t.Fatalf("duplicate ban should be ignored: created=%v err=%v", created, err)
	}

	banned, err := repo.ExistsAny([]string{"99", "@mallory"})
	if err != nil || !banned {
		t.Fatalf("expected banned by username, got %v err=%v", banned, err)
	}
	banned, err = repo.ExistsAny([]string{"99"})
	if err != nil || banned {
		t.Fatalf("id 99 should not be banned, got %v err=%v", banned, err)
	}
	if affected, err := repo.Delete("@mallory"); err != nil || affected != 1 {
		t.Fatalf("unban failed: affected=%d err=%v", affected, err)
	}
}
