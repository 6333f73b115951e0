package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/streamvault/internal/app"
	"github.com/streamvault/internal/config"
	"github.com/streamvault/internal/logger"
	"github.com/streamvault/internal/models"

	"github.com/gin-gonic/gin"
)

const (
	ansiReset = "\033[0m"
	ansiBold  = "\033[1m"
	ansiDim   = "\033[2m"
	ansiCyan  = "\033[36m"
)

func main() {
	var mode string
	flag.StringVar(&mode, "mode", app.ModeAll, "启动模式: all (默认), api, bot, worker")
	flag.Parse()
	if !app.IsValidMode(strings.ToLower(strings.TrimSpace(mode))) {
		fmt.Fprintln(os.Stderr, app.ErrUnknownMode)
		os.Exit(2)
	}

	printStartupBanner(mode)

	// 加载配置
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()

	if isWeakSecret(cfg.JWT.SecretKey) {
		if cfg.Server.Mode == "release" {
			stdLog.Fatalf("JWT secret 过弱或仍为默认值，请在生产环境中配置强随机密钥")
		}
		stdLog.Printf("警告: JWT secret 过弱或仍为默认值，建议在生产环境中更换")
	}

	// 初始化数据库
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("数据库初始化失败: %v", err)
	}
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("数据库迁移失败: %v", err)
	}
	if err := models.SeedPlatforms(); err != nil {
		stdLog.Fatalf("平台初始化失败: %v", err)
	}

	// 初始化所有者账号
	if cfg.Server.Mode == "release" && strings.TrimSpace(os.Getenv("BOOTSTRAP_ADMIN_PASSWORD")) == "" && strings.TrimSpace(os.Getenv("ADMIN_PASSWORD")) == "" {
		stdLog.Printf("警告: 未设置 BOOTSTRAP_ADMIN_PASSWORD，已跳过默认所有者初始化")
	} else if err := models.InitDefaultAdmin(cfg.Bootstrap.AdminUsername, cfg.Bootstrap.AdminPassword); err != nil {
		stdLog.Printf("警告: 初始化默认所有者失败: %v", err)
	}

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := app.Run(app.Options{
		Config:  cfg,
		Logger:  logger.S(),
		Signals: []os.Signal{syscall.SIGINT, syscall.SIGTERM},
		Mode:    mode,
	}); err != nil {
		stdLog.Fatalf("服务运行失败: %v", err)
	}
}

func printStartupBanner(mode string) {
	fmt.Println(ansiCyan + ansiBold + "StreamVault key distribution service" + ansiReset)
	fmt.Println(ansiDim + "mode: " + mode + ansiReset)
	fmt.Println(ansiDim + "--------------------------------------------------------------" + ansiReset)
}

func isWeakSecret(secret string) bool {
	if len(secret) < 32 {
		return true
	}
	normalized := strings.ToLower(secret)
	return strings.Contains(normalized, "change-me") ||
		strings.Contains(normalized, "change-in-production") ||
		strings.Contains(normalized, "your-secret-key")
}
