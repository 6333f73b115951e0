package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/streamvault/internal/config"
	"github.com/streamvault/internal/constants"
	"github.com/streamvault/internal/models"
	"github.com/streamvault/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

type fakeNotifier struct {
	mu         sync.Mutex
	redeemed   []RedemptionEvent
	winners    []int64
	cancelled  [][]int64
	failWinner map[int64]bool
}

func (n *fakeNotifier) KeyRedeemed(event RedemptionEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.redeemed = append(n.redeemed, event)
}

func (n *fakeNotifier) GiveawayWinner(_ context.Context, winnerID int64, _ string, _ *models.Key) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.failWinner[winnerID] {
		return ErrRecipientUnreachable
	}
	n.winners = append(n.winners, winnerID)
	return nil
}

func (n *fakeNotifier) GiveawayCancelled(_ string, participants []int64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.cancelled = append(n.cancelled, append([]int64(nil), participants...))
}

func (n *fakeNotifier) redeemedCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.redeemed)
}

type serviceFixture struct {
	db          *gorm.DB
	platforms   *PlatformService
	credentials *CredentialService
	keys        *KeyService
	bans        *BanService
	users       *UserService
	redemption  *RedemptionService
	giveaways   *GiveawayService
	notifier    *fakeNotifier
}

func setupServiceTest(t *testing.T) *serviceFixture {
	t.Helper()
	dsn := fmt.Sprintf("file:svc_%s_%d?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"), time.Now().UnixNano())
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

	notifier := &fakeNotifier{failWinner: map[int64]bool{}}
	platformSvc := NewPlatformService(platformRepo)
	keySvc := NewKeyService(keyRepo, redemptionRepo, platformSvc)
	banSvc := NewBanService(repository.NewBanRepository(db))
	return &serviceFixture{
		db:          db,
		platforms:   platformSvc,
		credentials: NewCredentialService(credentialRepo, platformSvc),
		keys:        keySvc,
		bans:        banSvc,
		users:       NewUserService(userRepo, redemptionRepo),
		redemption: NewRedemptionService(
			config.RedemptionConfig{CooldownSeconds: 600, MaxClaimAttempts: 3},
			keyRepo, credentialRepo, redemptionRepo, userRepo, banSvc, notifier,
		),
		giveaways: NewGiveawayService(giveawayRepo, platformSvc, keySvc, notifier),
		notifier:  notifier,
	}
}

func (f *serviceFixture) platform(t *testing.T, name string) *models.Platform {
	t.Helper()
	platform, err := f.platforms.Resolve(name)
	if err != nil {
		t.Fatalf("resolve platform %s failed: %v", name, err)
	}
	return platform
}

func (f *serviceFixture) addCredential(t *testing.T, platform, email string, createdAt time.Time) *models.Credential {
	t.Helper()
	credential := &models.Credential{
		PlatformID: f.platform(t, platform).ID,
		Email:      email,
		Secret:     "pw-" + email,
		Status:     constants.CredentialStatusActive,
		CreatedAt:  createdAt,
	}
	if err := f.db.Create(credential).Error; err != nil {
		t.Fatalf("create credential failed: %v", err)
	}
	return credential
}

func (f *serviceFixture) addKey(t *testing.T, platform, code string, uses int) *models.Key {
	t.Helper()
	key := &models.Key{
		KeyCode:       code,
		PlatformID:    f.platform(t, platform).ID,
		Uses:          uses,
		RemainingUses: uses,
		AccountText:   "Premium Account",
		Status:        constants.KeyStatusActive,
	}
	if err := f.db.Create(key).Error; err != nil {
		t.Fatalf("create key failed: %v", err)
	}
	return key
}

func (f *serviceFixture) reloadKey(t *testing.T, id uint) models.Key {
	t.Helper()
	var key models.Key
	if err := f.db.First(&key, id).Error; err != nil {
		t.Fatalf("reload key failed: %v", err)
	}
	return key
}

func (f *serviceFixture) reloadCredential(t *testing.T, id uint) models.Credential {
	t.Helper()
	var credential models.Credential
	if err := f.db.First(&credential, id).Error; err != nil {
		t.Fatalf("reload credential failed: %v", err)
	}
	return credential
}

func (f *serviceFixture) countRedemptions(t *testing.T, keyID uint) int64 {
	t.Helper()
	var count int64
	if err := f.db.Model(&models.KeyRedemption{}).Where("key_id = ?", keyID).Count(&count).Error; err != nil {
		t.Fatalf("count redemptions failed: %v", err)
	}
	return count
}
