package authz

import (
	"fmt"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupAuthzServiceTest(t *testing.T) *Service {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	svc, err := NewService(db)
	if err != nil {
		t.Fatalf("new authz service failed: %v", err)
	}
	if err := svc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("bootstrap roles failed: %v", err)
	}
	return svc
}

func TestAdminRoleCoversOperations(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	cases := []struct {
		path   string
		method string
	}{
		{"/api/v1/admin/stats", "GET"},
		{"/api/v1/admin/keys", "GET"},
		{"/api/v1/admin/keys/generate", "POST"},
		{"/api/v1/admin/keys/:id/expire", "POST"},
		{"/api/v1/admin/credentials/upload", "POST"},
		{"/api/v1/admin/giveaways/:id/stop", "POST"},
		{"/api/v1/admin/bans/:identifier", "DELETE"},
		{"/api/v1/admin/broadcast", "post"},
		{"/api/v1/admin/me", "GET"},
	}
	for _, tc := range cases {
		allow, err := svc.EnforceRole("admin", tc.path, tc.method)
		if err != nil {
			t.Fatalf("enforce %s %s failed: %v", tc.method, tc.path, err)
		}
		if !allow {
			t.Fatalf("admin should be allowed %s %s", tc.method, tc.path)
		}
	}
}

func TestAdminRoleCannotManageAdmins(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	for _, path := range []string{"/api/v1/admin/admins", "/api/v1/admin/admins/:username"} {
		for _, method := range []string{"GET", "POST", "DELETE"} {
			allow, err := svc.EnforceRole("admin", path, method)
			if err != nil {
				t.Fatalf("enforce failed: %v", err)
			}
			if allow {
				t.Fatalf("admin must not reach %s %s", method, path)
			}
		}
	}
	allow, err := svc.EnforceRole("admin", "/api/v1/admin/users", "DELETE")
	if err != nil {
		t.Fatalf("enforce failed: %v", err)
	}
	if allow {
		t.Fatalf("users listing is read-only")
	}
}

func TestOwnerInheritsAdmin(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	for _, tc := range []struct{ path, method string }{
		{"/api/v1/admin/admins", "GET"},
		{"/api/v1/admin/admins/:username", "DELETE"},
		{"/api/v1/admin/keys/revoke", "POST"},
	} {
		allow, err := svc.EnforceRole("OWNER", tc.path, tc.method)
		if err != nil {
			t.Fatalf("enforce failed: %v", err)
		}
		if !allow {
			t.Fatalf("owner should be allowed %s %s", tc.method, tc.path)
		}
	}

	roles, err := svc.GetInheritedRoles("owner")
	if err != nil {
		t.Fatalf("get inherited roles failed: %v", err)
	}
	if len(roles) != 1 || roles[0] != "role:admin" {
		t.Fatalf("owner should inherit role:admin, got=%v", roles)
	}
}

func TestUnknownRoleDenied(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	allow, err := svc.EnforceRole("guest", "/api/v1/admin/stats", "GET")
	if err != nil {
		t.Fatalf("enforce failed: %v", err)
	}
	if allow {
		t.Fatalf("unknown role must be denied")
	}
	if _, err := svc.EnforceRole("  ", "/api/v1/admin/stats", "GET"); err == nil {
		t.Fatalf("empty role should fail")
	}
}

func TestBootstrapIdempotent(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	before, err := svc.GetRolePolicies("admin")
	if err != nil {
		t.Fatalf("get policies failed: %v", err)
	}
	if err := svc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("second bootstrap failed: %v", err)
	}
	if err := svc.ReloadPolicy(); err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	after, err := svc.GetRolePolicies("admin")
	if err != nil {
		t.Fatalf("get policies failed: %v", err)
	}
	if len(before) != len(after) || len(after) != len(BuiltinRoleSeeds()[0].Policies) {
		t.Fatalf("policies duplicated: before=%d after=%d", len(before), len(after))
	}
}

func TestNormalizeObject(t *testing.T) {
	cases := map[string]string{
		"":                    "/",
		"admin/keys":          "/admin/keys",
		"/api/v1":             "/",
		"/api/v1/admin/stats": "/admin/stats",
	}
	for raw, want := range cases {
		if got := NormalizeObject(raw); got != want {
			t.Fatalf("normalize %q want %q got %q", raw, want, got)
		}
	}
}
