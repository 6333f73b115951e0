package router

import (
	"testing"

	"github.com/gin-gonic/gin"
)

func TestBuildAdminPermissionCatalog(t *testing.T) {
	gin.SetMode(gin.TestMode)
	noop := func(c *gin.Context) {}

	r := gin.New()
	r.GET("/health", noop)
	r.POST(adminLoginPath, noop)
	r.GET("/api/v1/admin/captcha", noop)
	r.GET("/api/v1/admin/keys", noop)
	r.POST("/api/v1/admin/keys", noop)
	r.POST("/api/v1/admin/keys/:id/expire", noop)
	r.DELETE("/api/v1/admin/admins/:username", noop)

	items := buildAdminPermissionCatalog(r)
	if len(items) != 4 {
		t.Fatalf("catalog should skip public routes, got %+v", items)
	}
	first := items[0]
	if first.Module != "admins" || first.Permission != "DELETE:/admin/admins/:username" {
		t.Fatalf("unexpected first item: %+v", first)
	}
	last := items[len(items)-1]
	if last.Module != "keys" || last.Object != "/admin/keys/:id/expire" {
		t.Fatalf("unexpected last item: %+v", last)
	}
}

func TestDeriveAdminPermissionModule(t *testing.T) {
	cases := map[string]string{
		"":                       "system",
		"/health":                "health",
		"/admin/credentials/:id": "credentials",
		"/admin/stats":           "stats",
	}
	for object, want := range cases {
		if got := deriveAdminPermissionModule(object); got != want {
			t.Fatalf("module for %q want %s got %s", object, want, got)
		}
	}
}
