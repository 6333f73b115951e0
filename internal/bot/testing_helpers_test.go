package bot

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/streamvault/internal/config"
	"github.com/streamvault/internal/constants"
	"github.com/streamvault/internal/models"
	"github.com/streamvault/internal/repository"
	"github.com/streamvault/internal/service"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

const testAdminID int64 = 9001

func setupBotTest(t *testing.T) (*Handler, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:bot_%s_%d?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"), time.Now().UnixNano())
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
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db
	platforms := models.DefaultPlatforms()
	if err := db.Create(&platforms).Error; err != nil {
		t.Fatalf("seed platforms failed: %v", err)
	}

	platformRepo := repository.NewPlatformRepository(db)
	credentialRepo := repository.NewCredentialRepository(db)
	keyRepo := repository.NewKeyRepository(db)
	redemptionRepo := repository.NewRedemptionRepository(db)
	userRepo := repository.NewUserRepository(db)
	giveawayRepo := repository.NewGiveawayRepository(db)
	adminRepo := repository.NewAdminRepository(db)

	admins := service.NewAdminDirectory([]int64{testAdminID}, adminRepo)
	notifications := service.NewNotificationService(nil, nil, admins, userRepo, time.Second)
	platformSvc := service.NewPlatformService(platformRepo)
	keySvc := service.NewKeyService(keyRepo, redemptionRepo, platformSvc)
	banSvc := service.NewBanService(repository.NewBanRepository(db))

	handler := NewHandler(Deps{
		Users:       service.NewUserService(userRepo, redemptionRepo),
		Bans:        banSvc,
		Admins:      admins,
		Platforms:   platformSvc,
		Credentials: service.NewCredentialService(credentialRepo, platformSvc),
		Keys:        keySvc,
		Redemption: service.NewRedemptionService(
			config.RedemptionConfig{CooldownSeconds: 600, MaxClaimAttempts: 3},
			keyRepo, credentialRepo, redemptionRepo, userRepo, banSvc, notifications,
		),
		Giveaways:     service.NewGiveawayService(giveawayRepo, platformSvc, keySvc, notifications),
		Notifications: notifications,
		Dashboard:     service.NewDashboardService(platformSvc, credentialRepo, keyRepo, redemptionRepo, userRepo, giveawayRepo),
		Pending:       service.NewPendingActionStore(time.Minute),
	})
	return handler, db
}

func seedCredential(t *testing.T, db *gorm.DB, platformID uint, email string) {
	t.Helper()
	credential := &models.Credential{
		PlatformID: platformID,
		Email:      email,
		Secret:     "secret-" + email,
		Status:     constants.CredentialStatusActive,
	}
	if err := db.Create(credential).Error; err != nil {
		t.Fatalf("create credential failed: %v", err)
	}
}

func seedKey(t *testing.T, db *gorm.DB, platformID uint, code string) {
	t.Helper()
	key := &models.Key{
		KeyCode:       code,
		PlatformID:    platformID,
		Uses:          1,
		RemainingUses: 1,
		AccountText:   "Premium Account",
		Status:        constants.KeyStatusActive,
	}
	if err := db.Create(key).Error; err != nil {
		t.Fatalf("create key failed: %v", err)
	}
}

func mustPlatform(t *testing.T, h *Handler, name string) *models.Platform {
	t.Helper()
	platform, err := h.Platforms.Resolve(name)
	if err != nil {
		t.Fatalf("resolve platform failed: %v", err)
	}
	return platform
}

func pendingStep(t *testing.T, h *Handler, userID int64) string {
	t.Helper()
	action, err := h.Pending.Get(t.Context(), userID)
	if err != nil {
		t.Fatalf("get pending failed: %v", err)
	}
	if action == nil {
		return constants.PendingStepNone
	}
	return action.Step
}
