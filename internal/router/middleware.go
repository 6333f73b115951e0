package router

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/streamvault/internal/authz"
	"github.com/streamvault/internal/cache"
	"github.com/streamvault/internal/config"
	handlershared "github.com/streamvault/internal/http/handlers/shared"
	"github.com/streamvault/internal/http/message"
	"github.com/streamvault/internal/http/response"
	"github.com/streamvault/internal/logger"
	"github.com/streamvault/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const requestIDKey = "request_id"
const requestIDHeader = "X-Request-ID"

// AuthStateResolver 校验 Token 对应的管理员状态
type AuthStateResolver interface {
	ResolveAuthState(ctx context.Context, claims *service.JWTClaims) (*cache.AdminAuthState, error)
}

// RoleEnforcer 按角色判定访问权限
type RoleEnforcer interface {
	EnforceRole(role, object, action string) (bool, error)
}

// CORSMiddleware 跨域中间件
func CORSMiddleware(cfg config.CORSConfig) gin.HandlerFunc {
	allowedOrigins := cfg.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	allowedMethods := cfg.AllowedMethods
	if len(allowedMethods) == 0 {
		allowedMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	}
	allowedHeaders := cfg.AllowedHeaders
	if len(allowedHeaders) == 0 {
		allowedHeaders = []string{
			"Content-Type",
			"Content-Length",
			"Authorization",
			"X-Requested-With",
			requestIDHeader,
		}
	}
	methodsHeader := strings.Join(allowedMethods, ", ")
	headersHeader := strings.Join(allowedHeaders, ", ")

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if allowedOrigin := resolveAllowedOrigin(origin, allowedOrigins, cfg.AllowCredentials); allowedOrigin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
			if allowedOrigin != "*" {
				c.Writer.Header().Add("Vary", "Origin")
			}
		}
		if cfg.AllowCredentials {
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		}
		c.Writer.Header().Set("Access-Control-Allow-Headers", headersHeader)
		c.Writer.Header().Set("Access-Control-Allow-Methods", methodsHeader)
		if cfg.MaxAge > 0 {
			c.Writer.Header().Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
		}

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}

func resolveAllowedOrigin(origin string, allowedOrigins []string, allowCredentials bool) string {
	for _, allowed := range allowedOrigins {
		if allowed == "*" {
			if allowCredentials && origin != "" {
				return origin
			}
			return "*"
		}
	}
	if origin == "" {
		return ""
	}
	for _, allowed := range allowedOrigins {
		if strings.EqualFold(allowed, origin) {
			return origin
		}
	}
	return ""
}

// RequestIDMiddleware 请求 ID 中间件
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(requestIDKey, requestID)
		c.Writer.Header().Set(requestIDHeader, requestID)
		c.Next()
	}
}

// LoggerMiddleware 结构化请求日志中间件
func LoggerMiddleware(log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.L()
	}
	sugar := log.Sugar()
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := sugar.With(
			"request_id", c.GetString(requestIDKey),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		)
		if admin := c.GetString(handlershared.ContextUsername); admin != "" {
			entry = entry.With("admin", admin)
		}
		if len(c.Errors) > 0 {
			entry.Errorw("request", "errors", c.Errors.String())
			return
		}
		entry.Infow("request")
	}
}

// JWTAuthMiddleware 管理端 JWT 鉴权中间件
func JWTAuthMiddleware(secretKey string, resolver AuthStateResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.TrimSpace(secretKey) == "" {
			abortUnauthorized(c, "error.jwt_secret_missing")
			return
		}
		if resolver == nil {
			abortUnauthorized(c, "error.token_invalid")
			return
		}
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "error.auth_header_missing")
			return
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			abortUnauthorized(c, "error.auth_header_invalid")
			return
		}

		parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		claims := &service.JWTClaims{}
		token, err := parser.ParseWithClaims(strings.TrimSpace(parts[1]), claims, func(token *jwt.Token) (interface{}, error) {
			return []byte(secretKey), nil
		})
		if err != nil || !token.Valid || claims.AdminID == 0 {
			abortUnauthorized(c, "error.token_invalid")
			return
		}

		state, err := resolver.ResolveAuthState(c.Request.Context(), claims)
		if err != nil {
			if errors.Is(err, service.ErrTokenRevoked) {
				abortUnauthorized(c, "error.token_revoked")
				return
			}
			if !errors.Is(err, service.ErrNotFound) {
				logger.Warnw("admin_auth_state_resolve_failed", "admin_id", claims.AdminID, "error", err)
			}
			abortUnauthorized(c, "error.token_invalid")
			return
		}

		c.Set(handlershared.ContextAdminID, state.AdminID)
		c.Set(handlershared.ContextUsername, state.Username)
		c.Set(handlershared.ContextAdminRole, state.Role)
		c.Next()
	}
}

// AdminRBACMiddleware 管理端 RBAC 鉴权中间件，按当前角色判定路由权限
func AdminRBACMiddleware(enforcer RoleEnforcer) gin.HandlerFunc {
	return func(c *gin.Context) {
		if enforcer == nil {
			logger.Errorw("admin_rbac_service_unavailable")
			abortUnauthorized(c, "error.unauthorized")
			return
		}
		role := strings.TrimSpace(c.GetString(handlershared.ContextAdminRole))
		if role == "" {
			abortUnauthorized(c, "error.unauthorized")
			return
		}

		resource := c.FullPath()
		if strings.TrimSpace(resource) == "" {
			resource = c.Request.URL.Path
		}
		allowed, err := enforcer.EnforceRole(role, resource, c.Request.Method)
		if err != nil {
			logger.Errorw("admin_rbac_enforce_failed",
				"role", role,
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"error", err,
			)
			abortUnauthorized(c, "error.unauthorized")
			return
		}
		if !allowed {
			logger.Warnw("admin_rbac_permission_denied",
				"username", c.GetString(handlershared.ContextUsername),
				"role", role,
				"method", c.Request.Method,
				"resource", authz.NormalizeObject(resource),
			)
			response.Forbidden(c, message.T("error.forbidden"))
			c.Abort()
			return
		}
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, key string) {
	response.Unauthorized(c, message.T(key))
	c.Abort()
}
