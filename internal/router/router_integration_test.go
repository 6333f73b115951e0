package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/streamvault/internal/config"
	"github.com/streamvault/internal/models"
	"github.com/streamvault/internal/provider"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

const testOwnerPassword = "vault2026ok"

type envelope struct {
	StatusCode int             `json:"status_code"`
	Msg        string          `json:"msg"`
	Data       json.RawMessage `json:"data"`
}

func setupRouterTest(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:router_%s_%d?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"), time.Now().UnixNano())
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

	models.DB = db
	if err := models.AutoMigrate(); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	if err := models.SeedPlatforms(); err != nil {
		t.Fatalf("seed platforms failed: %v", err)
	}
	if err := models.InitDefaultAdmin("owner", testOwnerPassword); err != nil {
		t.Fatalf("init owner failed: %v", err)
	}

	cfg := &config.Config{}
	cfg.Server.Mode = "debug"
	cfg.JWT.SecretKey = "router-integration-secret"
	cfg.JWT.ExpireHours = 1
	cfg.Security.PasswordMinLength = 8
	cfg.Security.LoginRateLimit.WindowSeconds = 60
	cfg.Security.LoginRateLimit.MaxAttempts = 5
	cfg.Redemption.CooldownSeconds = 600
	cfg.Redemption.MaxClaimAttempts = 3
	cfg.Telegram.PendingTTLSeconds = 60

	return SetupRouter(cfg, provider.NewContainer(cfg))
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) envelope {
	t.Helper()
	var payload *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body failed: %v", err)
		}
		payload = bytes.NewReader(raw)
	} else {
		payload = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, payload)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("%s %s http status want 200 got %d", method, path, w.Code)
	}
	var resp envelope
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("%s %s unmarshal failed: %v body=%s", method, path, err, w.Body.String())
	}
	return resp
}

func login(t *testing.T, r *gin.Engine, username, password string) string {
	t.Helper()
	resp := doJSON(t, r, http.MethodPost, "/api/v1/admin/login", "", gin.H{"username": username, "password": password})
	if resp.StatusCode != 0 {
		t.Fatalf("login %s failed: %+v", username, resp)
	}
	var data struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(resp.Data, &data); err != nil || data.Token == "" {
		t.Fatalf("login response missing token: %s", string(resp.Data))
	}
	return data.Token
}

func TestHealth(t *testing.T) {
	r := setupRouterTest(t)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "ok") {
		t.Fatalf("health check failed: %d %s", w.Code, w.Body.String())
	}
}

func TestAdminLoginRejectsWrongPassword(t *testing.T) {
	r := setupRouterTest(t)
	resp := doJSON(t, r, http.MethodPost, "/api/v1/admin/login", "", gin.H{"username": "owner", "password": "wrong-password1"})
	if resp.StatusCode != 401 {
		t.Fatalf("wrong password want 401 got %+v", resp)
	}
	resp = doJSON(t, r, http.MethodGet, "/api/v1/admin/stats", "", nil)
	if resp.StatusCode != 401 {
		t.Fatalf("missing token want 401 got %+v", resp)
	}
}

func TestAdminKeyAndCredentialFlow(t *testing.T) {
	r := setupRouterTest(t)
	token := login(t, r, "owner", testOwnerPassword)

	resp := doJSON(t, r, http.MethodPost, "/api/v1/admin/keys", token, gin.H{"platform": "netflix", "count": 2})
	if resp.StatusCode != 0 {
		t.Fatalf("generate keys failed: %+v", resp)
	}
	var keys []struct {
		KeyCode string `json:"key_code"`
	}
	if err := json.Unmarshal(resp.Data, &keys); err != nil {
		t.Fatalf("decode keys failed: %v", err)
	}
	if len(keys) != 2 || keys[0].KeyCode == "" || keys[0].KeyCode == keys[1].KeyCode {
		t.Fatalf("expected two distinct keys, got %+v", keys)
	}

	resp = doJSON(t, r, http.MethodPost, "/api/v1/admin/keys", token, gin.H{"platform": "myspace"})
	if resp.StatusCode != 404 {
		t.Fatalf("unknown platform want 404 got %+v", resp)
	}

	resp = doJSON(t, r, http.MethodPost, "/api/v1/admin/credentials/upload", token, gin.H{
		"platform": "Netflix",
		"content":  "a@example.com:pw1\nnot-a-line\nb@example.com:pw2:active\n",
	})
	if resp.StatusCode != 0 {
		t.Fatalf("upload credentials failed: %+v", resp)
	}
	var report struct {
		Added        int   `json:"added"`
		Skipped      int   `json:"skipped"`
		SkippedLines []int `json:"skipped_lines"`
	}
	if err := json.Unmarshal(resp.Data, &report); err != nil {
		t.Fatalf("decode report failed: %v", err)
	}
	if report.Added != 2 || report.Skipped != 1 || len(report.SkippedLines) != 1 || report.SkippedLines[0] != 2 {
		t.Fatalf("unexpected upload report: %+v", report)
	}

	resp = doJSON(t, r, http.MethodGet, "/api/v1/admin/credentials?platform=netflix", token, nil)
	if resp.StatusCode != 0 {
		t.Fatalf("list credentials failed: %+v", resp)
	}
}

func TestAdminBanConflict(t *testing.T) {
	r := setupRouterTest(t)
	token := login(t, r, "owner", testOwnerPassword)

	if resp := doJSON(t, r, http.MethodPost, "/api/v1/admin/bans", token, gin.H{"identifier": "424242"}); resp.StatusCode != 0 {
		t.Fatalf("ban failed: %+v", resp)
	}
	if resp := doJSON(t, r, http.MethodPost, "/api/v1/admin/bans", token, gin.H{"identifier": "424242"}); resp.StatusCode != 409 {
		t.Fatalf("second ban want 409 got %+v", resp)
	}
	if resp := doJSON(t, r, http.MethodDelete, "/api/v1/admin/bans/424242", token, nil); resp.StatusCode != 0 {
		t.Fatalf("unban failed: %+v", resp)
	}
	if resp := doJSON(t, r, http.MethodDelete, "/api/v1/admin/bans/424242", token, nil); resp.StatusCode != 404 {
		t.Fatalf("second unban want 404 got %+v", resp)
	}
}

func TestAdminOwnerOnlyRoutes(t *testing.T) {
	r := setupRouterTest(t)
	ownerToken := login(t, r, "owner", testOwnerPassword)

	resp := doJSON(t, r, http.MethodPost, "/api/v1/admin/admins", ownerToken, gin.H{"username": "ops", "password": testOwnerPassword})
	if resp.StatusCode != 0 {
		t.Fatalf("create admin failed: %+v", resp)
	}
	resp = doJSON(t, r, http.MethodPost, "/api/v1/admin/admins", ownerToken, gin.H{"username": "ops", "password": testOwnerPassword})
	if resp.StatusCode != 409 {
		t.Fatalf("duplicate admin want 409 got %+v", resp)
	}

	opsToken := login(t, r, "ops", testOwnerPassword)
	if resp := doJSON(t, r, http.MethodGet, "/api/v1/admin/admins", opsToken, nil); resp.StatusCode != 403 {
		t.Fatalf("admin listing admins want 403 got %+v", resp)
	}
	if resp := doJSON(t, r, http.MethodGet, "/api/v1/admin/keys", opsToken, nil); resp.StatusCode != 0 {
		t.Fatalf("admin listing keys should pass: %+v", resp)
	}
	if resp := doJSON(t, r, http.MethodDelete, "/api/v1/admin/admins/owner", ownerToken, nil); resp.StatusCode != 403 {
		t.Fatalf("deleting owner want 403 got %+v", resp)
	}
	if resp := doJSON(t, r, http.MethodGet, "/api/v1/admin/permissions", ownerToken, nil); resp.StatusCode != 0 {
		t.Fatalf("owner permission catalog failed: %+v", resp)
	}
}

func TestPasswordChangeRevokesToken(t *testing.T) {
	r := setupRouterTest(t)
	token := login(t, r, "owner", testOwnerPassword)

	resp := doJSON(t, r, http.MethodPut, "/api/v1/admin/me/password", token, gin.H{
		"old_password": testOwnerPassword,
		"new_password": "vault2027new",
	})
	if resp.StatusCode != 0 {
		t.Fatalf("change password failed: %+v", resp)
	}
	if resp := doJSON(t, r, http.MethodGet, "/api/v1/admin/me", token, nil); resp.StatusCode != 401 {
		t.Fatalf("old token want 401 got %+v", resp)
	}
	fresh := login(t, r, "owner", "vault2027new")
	if resp := doJSON(t, r, http.MethodGet, "/api/v1/admin/me", fresh, nil); resp.StatusCode != 0 {
		t.Fatalf("fresh token should pass: %+v", resp)
	}
}
