package repository

import (
	"errors"
	"testing"
	"time"

	"github.com/streamvault/internal/constants"
	"github.com/streamvault/internal/models"
)

func TestDecrementTransitionsToUsedAtZero(t *testing.T) {
	db := setupRepositoryTestDB(t)
	repo := NewKeyRepository(db)
	platform := createTestPlatform(t, db, "Netflix")
	key := createTestKey(t, db, platform.ID, "NETFLIX-AAAA-BBBB-CCCC", 2)

	remaining, err := repo.Decrement(key.ID, time.Now())
	if err != nil {
		t.Fatalf("first decrement failed: %v", err)
	}
	if remaining != 1 {
		t.Fatalf("remaining want 1 got %d", remaining)
	}
	stored, _ := repo.GetByID(key.ID)
	if stored.Status != constants.KeyStatusActive {
		t.Fatalf("status should remain active, got %s", stored.Status)
	}

	remaining, err = repo.Decrement(key.ID, time.Now())
	if err != nil {
		t.Fatalf("second decrement failed: %v", err)
	}
	if remaining != 0 {
		t.Fatalf("remaining want 0 got %d", remaining)
	}
	stored, _ = repo.GetByID(key.ID)
	if stored.Status != constants.KeyStatusUsed || stored.RemainingUses != 0 || stored.RedeemedAt == nil {
		t.Fatalf("expected used key, got %+v", stored)
	}

	if _, err := repo.Decrement(key.ID, time.Now()); !errors.Is(err, ErrConflict) {
		t.Fatalf("decrement of exhausted key should conflict, got %v", err)
	}
	stored, _ = repo.GetByID(key.ID)
	if stored.RemainingUses != 0 {
		t.Fatalf("remaining uses must never go negative, got %d", stored.RemainingUses)
	}
}

func TestDecrementRejectsExpiredKey(t *testing.T) {
	db := setupRepositoryTestDB(t)
	repo := NewKeyRepository(db)
	platform := createTestPlatform(t, db, "Dazn")
	key := createTestKey(t, db, platform.ID, "DAZN-AAAA-BBBB-CCCC", 3)
	if affected, err := repo.MarkExpired(key.ID); err != nil || affected != 1 {
		t.Fatalf("mark expired failed: affected=%d err=%v", affected, err)
	}
	if _, err := repo.Decrement(key.ID, time.Now()); !errors.Is(err, ErrConflict) {
		t.Fatalf("expired key should not decrement, got %v", err)
	}
}

func TestGetByCodeNormalizesInput(t *testing.T) {
	db := setupRepositoryTestDB(t)
	repo := NewKeyRepository(db)
	platform := createTestPlatform(t, db, "Xbox")
	createTestKey(t, db, platform.ID, "XBOX-1A2B-3C4D-5E6F", 1)

	key, err := repo.GetByCode("  xbox-1a2b-3c4d-5e6f ")
	if err != nil {
		t.Fatalf("get by code failed: %v", err)
	}
	if key == nil || key.Platform == nil || key.Platform.Name != "Xbox" {
		t.Fatalf("expected key with platform, got %+v", key)
	}
	missing, err := repo.GetByCode("XBOX-0000-0000-0000")
	if err != nil || missing != nil {
		t.Fatalf("missing code should return nil,nil got %+v %v", missing, err)
	}
}

func TestCreateDuplicateCodeIsUniqueViolation(t *testing.T) {
	db := setupRepositoryTestDB(t)
	repo := NewKeyRepository(db)
	platform := createTestPlatform(t, db, "WWE")
	createTestKey(t, db, platform.ID, "WWE-AAAA-AAAA-AAAA", 1)

	err := repo.Create(&models.Key{KeyCode: "WWE-AAAA-AAAA-AAAA", PlatformID: platform.ID, Uses: 1, RemainingUses: 1, Status: constants.KeyStatusActive})
	if !IsUniqueViolation(err) {
		t.Fatalf("expected unique violation, got %v", err)
	}
}

func TestSweepScopes(t *testing.T) {
	db := setupRepositoryTestDB(t)
	repo := NewKeyRepository(db)
	netflix := createTestPlatform(t, db, "Netflix")
	dazn := createTestPlatform(t, db, "Dazn")
	used := createTestKey(t, db, netflix.ID, "NETFLIX-USED-0000-0001", 1)
	expired := createTestKey(t, db, netflix.ID, "NETFLIX-EXPD-0000-0002", 1)
	createTestKey(t, db, netflix.ID, "NETFLIX-LIVE-0000-0003", 1)
	createTestKey(t, db, dazn.ID, "DAZN-LIVE-0000-0004", 1)
	if _, err := repo.Decrement(used.ID, time.Now()); err != nil {
		t.Fatalf("decrement failed: %v", err)
	}
	if _, err := repo.MarkExpired(expired.ID); err != nil {
		t.Fatalf("mark expired failed: %v", err)
	}

	if deleted, err := repo.Sweep(0, constants.KeySweepExpired); err != nil || deleted != 1 {
		t.Fatalf("sweep expired: deleted=%d err=%v", deleted, err)
	}
	if deleted, err := repo.Sweep(netflix.ID, constants.KeySweepUsed); err != nil || deleted != 1 {
		t.Fatalf("sweep used: deleted=%d err=%v", deleted, err)
	}
	if deleted, err := repo.Sweep(netflix.ID, constants.KeySweepAll); err != nil || deleted != 1 {
		t.Fatalf("sweep all netflix: deleted=%d err=%v", deleted, err)
	}
	if _, err := repo.Sweep(0, "bogus"); err == nil {
		t.Fatalf("invalid scope should fail")
	}

	_, total, err := repo.List(KeyListFilter{Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 1 {
		t.Fatalf("only the dazn key should remain, total=%d", total)
	}
}

func TestDeleteLatestRemovesNewestKey(t *testing.T) {
	db := setupRepositoryTestDB(t)
	repo := NewKeyRepository(db)
	platform := createTestPlatform(t, db, "PSNFA")
	createTestKey(t, db, platform.ID, "PSNFA-AAAA-AAAA-0001", 1)
	newest := createTestKey(t, db, platform.ID, "PSNFA-AAAA-AAAA-0002", 1)

	deleted, err := repo.DeleteLatest(platform.ID)
	if err != nil {
		t.Fatalf("delete latest failed: %v", err)
	}
	if deleted == nil || deleted.ID != newest.ID {
		t.Fatalf("expected newest key removed, got %+v", deleted)
	}
}
