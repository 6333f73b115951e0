package router

import (
	"fmt"
	"sort"
	"strings"

	"github.com/streamvault/internal/authz"
	"github.com/streamvault/internal/cache"
	"github.com/streamvault/internal/config"
	adminhandlers "github.com/streamvault/internal/http/handlers/admin"
	"github.com/streamvault/internal/http/response"
	"github.com/streamvault/internal/logger"
	"github.com/streamvault/internal/provider"

	"github.com/gin-gonic/gin"
)

const adminLoginPath = "/api/v1/admin/login"

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	if logger.L == nil {
		logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	log := logger.Z()
	r := gin.New()

	adminHandler := adminhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "sv"
	}
	adminLoginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:admin_login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		MessageKey:    "error.login_rate_limited",
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	apiV1 := r.Group("/api/v1")
	admin := apiV1.Group("/admin")
	{
		// 无需鉴权
		admin.GET("/captcha", adminHandler.GetImageCaptcha)
		admin.POST("/login", RateLimitMiddleware(cache.Client(), adminLoginRule, KeyByIPAndJSONField("username")), adminHandler.AdminLogin)

		authorized := admin.Group("")
		authorized.Use(JWTAuthMiddleware(cfg.JWT.SecretKey, c.AuthService), AdminRBACMiddleware(c.AuthzService))
		{
			// 当前账号
			authorized.GET("/me", adminHandler.GetAdminMe)
			authorized.PUT("/me/password", adminHandler.UpdateAdminPassword)
			authorized.PUT("/me/telegram", adminHandler.BindAdminTelegram)

			// 统计与平台
			authorized.GET("/stats", adminHandler.GetStats)
			authorized.GET("/platforms", adminHandler.ListPlatforms)

			// 凭据库存
			authorized.GET("/credentials", adminHandler.ListCredentials)
			authorized.POST("/credentials", adminHandler.CreateCredential)
			authorized.POST("/credentials/upload", adminHandler.UploadCredentials)
			authorized.POST("/credentials/purge", adminHandler.PurgeCredentials)
			authorized.GET("/credentials/claims", adminHandler.ListCredentialClaims)
			authorized.PUT("/credentials/:id", adminHandler.UpdateCredential)
			authorized.DELETE("/credentials/:id", adminHandler.DeleteCredential)

			// 兑换码
			authorized.GET("/keys", adminHandler.ListKeys)
			authorized.POST("/keys", adminHandler.GenerateKeys)
			authorized.POST("/keys/revoke", adminHandler.RevokeKeys)
			authorized.POST("/keys/sweep", adminHandler.SweepKeys)
			authorized.POST("/keys/expire", adminHandler.ExpireKeys)
			authorized.GET("/keys/redemptions", adminHandler.ListKeyRedemptions)
			authorized.POST("/keys/:id/expire", adminHandler.ExpireKey)

			// 抽奖
			authorized.GET("/giveaways/active", adminHandler.GetActiveGiveaway)
			authorized.POST("/giveaways", adminHandler.StartGiveaway)
			authorized.POST("/giveaways/:id/stop", adminHandler.StopGiveaway)

			// 用户、封禁与广播
			authorized.GET("/users", adminHandler.ListUsers)
			authorized.GET("/users/:id/stats", adminHandler.GetUserStats)
			authorized.GET("/bans", adminHandler.ListBans)
			authorized.POST("/bans", adminHandler.BanUser)
			authorized.DELETE("/bans/:identifier", adminHandler.UnbanUser)
			authorized.POST("/broadcast", adminHandler.Broadcast)

			// 管理员账号（仅所有者）
			authorized.GET("/admins", adminHandler.ListAdmins)
			authorized.POST("/admins", adminHandler.CreateAdmin)
			authorized.DELETE("/admins/:username", adminHandler.DeleteAdmin)
			authorized.GET("/permissions", func(ctx *gin.Context) {
				response.Success(ctx, buildAdminPermissionCatalog(r))
			})
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}

type adminPermissionCatalogItem struct {
	Module     string `json:"module"`
	Method     string `json:"method"`
	Object     string `json:"object"`
	Permission string `json:"permission"`
}

func buildAdminPermissionCatalog(engine *gin.Engine) []adminPermissionCatalogItem {
	if engine == nil {
		return []adminPermissionCatalogItem{}
	}

	routes := engine.Routes()
	seen := make(map[string]struct{}, len(routes))
	items := make([]adminPermissionCatalogItem, 0, len(routes))
	for _, item := range routes {
		method := strings.ToUpper(strings.TrimSpace(item.Method))
		if method == "" || method == "OPTIONS" || method == "HEAD" {
			continue
		}
		if !strings.HasPrefix(item.Path, "/api/v1/admin/") || item.Path == adminLoginPath || item.Path == "/api/v1/admin/captcha" {
			continue
		}
		object := authz.NormalizeObject(item.Path)
		permission := method + ":" + object
		if _, exists := seen[permission]; exists {
			continue
		}
		seen[permission] = struct{}{}
		items = append(items, adminPermissionCatalogItem{
			Module:     deriveAdminPermissionModule(object),
			Method:     method,
			Object:     object,
			Permission: permission,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Module == items[j].Module {
			if items[i].Object == items[j].Object {
				return items[i].Method < items[j].Method
			}
			return items[i].Object < items[j].Object
		}
		return items[i].Module < items[j].Module
	})
	return items
}

func deriveAdminPermissionModule(object string) string {
	normalized := strings.TrimPrefix(strings.TrimSpace(object), "/")
	if normalized == "" {
		return "system"
	}
	segments := strings.Split(normalized, "/")
	if len(segments) <= 1 || segments[0] != "admin" {
		return segments[0]
	}
	return segments[1]
}
