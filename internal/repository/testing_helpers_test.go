package repository

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/streamvault/internal/constants"
	"github.com/streamvault/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupRepositoryTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError:                           true,
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db failed: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(
		&models.Platform{},
		&models.Credential{},
		&models.Key{},
		&models.KeyRedemption{},
		&models.User{},
		&models.BannedUser{},
		&models.Giveaway{},
		&models.GiveawayParticipant{},
		&models.AdminCredential{},
	); err != nil {
		t.Fatalf("migrate models failed: %v", err)
	}
	return db
}

func createTestPlatform(t *testing.T, db *gorm.DB, name string) *models.Platform {
	t.Helper()
	platform := &models.Platform{Name: name, Emoji: "🎬"}
	if err := db.Create(platform).Error; err != nil {
		t.Fatalf("create platform failed: %v", err)
	}
	return platform
}

func createTestCredential(t *testing.T, db *gorm.DB, platformID uint, email string, createdAt time.Time) *models.Credential {
	t.Helper()
	credential := &models.Credential{
		PlatformID: platformID,
		Email:      email,
		Secret:     "secret",
		Status:     constants.CredentialStatusActive,
		CreatedAt:  createdAt,
	}
	if err := db.Create(credential).Error; err != nil {
		t.Fatalf("create credential failed: %v", err)
	}
	return credential
}

func createTestKey(t *testing.T, db *gorm.DB, platformID uint, code string, uses int) *models.Key {
	t.Helper()
	key := &models.Key{
		KeyCode:       code,
		PlatformID:    platformID,
		Uses:          uses,
		RemainingUses: uses,
		AccountText:   "Premium",
		Status:        constants.KeyStatusActive,
	}
	if err := db.Create(key).Error; err != nil {
		t.Fatalf("create key failed: %v", err)
	}
	return key
}
