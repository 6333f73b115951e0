package service

import (
	"errors"
	"regexp"
	"testing"

	"github.com/streamvault/internal/constants"
	"github.com/streamvault/internal/models"
)

func TestGenerateKeyCodeFormat(t *testing.T) {
	pattern := regexp.MustCompile(`^PARAMOUNTPLUS-[A-Z0-9]{4}-[A-Z0-9]{4}-[A-Z0-9]{4}$`)
	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		code, err := GenerateKeyCode("Paramount+Plus")
		if err != nil {
			t.Fatalf("generate failed: %v", err)
		}
		if !pattern.MatchString(code) {
			t.Fatalf("unexpected code format: %s", code)
		}
		seen[code] = true
	}
	if len(seen) < 190 {
		t.Fatalf("codes should be effectively unique, got %d distinct", len(seen))
	}
	if _, err := GenerateKeyCode("  "); !errors.Is(err, ErrPlatformRequired) {
		t.Fatalf("expected platform required, got %v", err)
	}
}

func TestGenerateBatch(t *testing.T) {
	f := setupServiceTest(t)
	keys, err := f.keys.GenerateBatch(GenerateKeysInput{Platform: "crunchyroll", Count: 5, Uses: 2, AccountText: " Fan plan "})
	if err != nil {
		t.Fatalf("generate batch failed: %v", err)
	}
	if len(keys) != 5 {
		t.Fatalf("want 5 keys got %d", len(keys))
	}
	for _, key := range keys {
		if key.Uses != 2 || key.RemainingUses != 2 || key.Status != constants.KeyStatusActive || key.AccountText != "Fan plan" {
			t.Fatalf("unexpected key: %+v", key)
		}
		if key.GiveawayGenerated {
			t.Fatalf("batch keys are not giveaway prizes")
		}
	}
	var count int64
	if err := f.db.Model(&models.Key{}).Count(&count).Error; err != nil {
		t.Fatalf("count keys failed: %v", err)
	}
	if count != 5 {
		t.Fatalf("want 5 stored keys got %d", count)
	}

	invalid := []GenerateKeysInput{
		{Platform: "Netflix", Count: 0, Uses: 1},
		{Platform: "Netflix", Count: constants.KeyGenerateMax + 1, Uses: 1},
		{Platform: "Netflix", Count: 1, Uses: 0},
	}
	for _, input := range invalid {
		if _, err := f.keys.GenerateBatch(input); !errors.Is(err, ErrKeyInvalidInput) {
			t.Fatalf("expected invalid input for %+v, got %v", input, err)
		}
	}
	if _, err := f.keys.GenerateBatch(GenerateKeysInput{Platform: "Hulu", Count: 1, Uses: 1}); !errors.Is(err, ErrPlatformNotFound) {
		t.Fatalf("expected platform not found, got %v", err)
	}
}

func TestRevokeOptions(t *testing.T) {
	f := setupServiceTest(t)
	f.addKey(t, "Netflix", "NETFLIX-OLD0-0000-0001", 1)
	used := f.addKey(t, "Netflix", "NETFLIX-USED-0000-0002", 1)
	if err := f.db.Model(used).Updates(map[string]interface{}{"status": constants.KeyStatusUsed, "remaining_uses": 0}).Error; err != nil {
		t.Fatalf("mark used failed: %v", err)
	}
	f.addKey(t, "Dazn", "DAZN-KEEP-0000-0003", 1)

	affected, err := f.keys.Revoke("netflix", constants.KeyRevokeClaimed)
	if err != nil || affected != 1 {
		t.Fatalf("revoke claimed want 1 got %d err=%v", affected, err)
	}
	affected, err = f.keys.Revoke("Netflix", constants.KeyRevokeLast)
	if err != nil || affected != 1 {
		t.Fatalf("revoke last want 1 got %d err=%v", affected, err)
	}
	if _, err := f.keys.Revoke("Netflix", constants.KeyRevokeLast); !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("expected key not found, got %v", err)
	}
	if _, err := f.keys.Revoke("Netflix", "some"); !errors.Is(err, ErrKeyRevokeOption) {
		t.Fatalf("expected invalid option, got %v", err)
	}

	var remaining []models.Key
	if err := f.db.Find(&remaining).Error; err != nil {
		t.Fatalf("list keys failed: %v", err)
	}
	if len(remaining) != 1 || remaining[0].KeyCode != "DAZN-KEEP-0000-0003" {
		t.Fatalf("other platform keys must survive: %+v", remaining)
	}
}

func TestExpireAndSweep(t *testing.T) {
	f := setupServiceTest(t)
	key := f.addKey(t, "Netflix", "NETFLIX-EXPI-RE00-0001", 1)
	f.addKey(t, "Netflix", "NETFLIX-EXPI-RE00-0002", 1)

	if err := f.keys.Expire(key.ID); err != nil {
		t.Fatalf("expire failed: %v", err)
	}
	if err := f.keys.Expire(key.ID); !errors.Is(err, ErrKeyInvalidInput) {
		t.Fatalf("expire twice should fail, got %v", err)
	}
	if err := f.keys.Expire(9999); !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	affected, err := f.keys.ExpirePlatform("")
	if err != nil || affected != 1 {
		t.Fatalf("expire platform want 1 got %d err=%v", affected, err)
	}
	if _, err := f.keys.Sweep("", "bogus"); !errors.Is(err, ErrKeySweepScope) {
		t.Fatalf("expected invalid scope, got %v", err)
	}
	affected, err = f.keys.Sweep("", constants.KeySweepExpired)
	if err != nil || affected != 2 {
		t.Fatalf("sweep expired want 2 got %d err=%v", affected, err)
	}
}

func TestFindByCode(t *testing.T) {
	f := setupServiceTest(t)
	f.addKey(t, "Xbox", "XBOX-FIND-0000-0001", 1)
	key, err := f.keys.FindByCode(" xbox-find-0000-0001 ")
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if key.Platform == nil || key.Platform.Name != "Xbox" {
		t.Fatalf("platform should be preloaded: %+v", key.Platform)
	}
	if _, err := f.keys.FindByCode("XBOX-NONE"); !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func sequenceKeyCodes(codes ...string) (func(string) (string, error), *int) {
	calls := 0
	return func(string) (string, error) {
		code := codes[len(codes)-1]
		if calls < len(codes) {
			code = codes[calls]
		}
		calls++
		return code, nil
	}, &calls
}

func TestGenerateRetriesOnCodeCollision(t *testing.T) {
	f := setupServiceTest(t)
	taken := f.addKey(t, "Netflix", "NETFLIX-AAAA-AAAA-AAAA", 1)

	gen, calls := sequenceKeyCodes(taken.KeyCode, "NETFLIX-BBBB-BBBB-BBBB")
	f.keys.newCode = gen
	key, err := f.keys.Generate("Netflix", 2, "Premium")
	if err != nil {
		t.Fatalf("generate after collision failed: %v", err)
	}
	if key.KeyCode != "NETFLIX-BBBB-BBBB-BBBB" || *calls != 2 {
		t.Fatalf("want second code after one collision, got %s after %d calls", key.KeyCode, *calls)
	}
	if stored := f.reloadKey(t, taken.ID); stored.Uses != 1 || stored.RemainingUses != 1 {
		t.Fatalf("existing key must be untouched: %+v", stored)
	}
}

func TestGenerateGivesUpAfterRetries(t *testing.T) {
	f := setupServiceTest(t)
	taken := f.addKey(t, "Netflix", "NETFLIX-CCCC-CCCC-CCCC", 1)

	gen, calls := sequenceKeyCodes(taken.KeyCode)
	f.keys.newCode = gen
	if _, err := f.keys.Generate("Netflix", 1, ""); !errors.Is(err, ErrKeyGenerateFailed) {
		t.Fatalf("expected generate failed, got %v", err)
	}
	if *calls != constants.KeyGenerateRetries {
		t.Fatalf("want %d attempts got %d", constants.KeyGenerateRetries, *calls)
	}

	gen, _ = sequenceKeyCodes("NETFLIX-DDDD-DDDD-DDDD", taken.KeyCode)
	f.keys.newCode = gen
	if _, err := f.keys.GenerateBatch(GenerateKeysInput{Platform: "Netflix", Count: 2, Uses: 1}); !errors.Is(err, ErrKeyGenerateFailed) {
		t.Fatalf("expected batch generate failed, got %v", err)
	}
	var count int64
	if err := f.db.Model(&models.Key{}).Where("key_code = ?", "NETFLIX-DDDD-DDDD-DDDD").Count(&count).Error; err != nil {
		t.Fatalf("count keys failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("failed batch must roll back earlier keys")
	}
}
