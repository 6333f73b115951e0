package main

import (
	"flag"
	"fmt"
	"strings"

	"github.com/streamvault/internal/config"
	"github.com/streamvault/internal/logger"
	"github.com/streamvault/internal/models"
	"github.com/streamvault/internal/repository"
	"github.com/streamvault/internal/service"
)

func main() {
	var (
		platformsFlag string
		credentials   int
		keys          int
		uses          int
	)
	flag.StringVar(&platformsFlag, "platforms", "", "逗号分隔的平台名，为空时填充全部平台")
	flag.IntVar(&credentials, "credentials", 5, "每个平台写入的演示凭据数量")
	flag.IntVar(&keys, "keys", 3, "每个平台生成的兑换码数量")
	flag.IntVar(&uses, "uses", 1, "每个兑换码的可用次数")
	flag.Parse()

	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}
	if err := models.SeedPlatforms(); err != nil {
		stdLog.Fatalf("Failed to seed platforms: %v", err)
	}

	platformSvc := service.NewPlatformService(repository.NewPlatformRepository(models.DB))
	credentialSvc := service.NewCredentialService(repository.NewCredentialRepository(models.DB), platformSvc)
	keySvc := service.NewKeyService(repository.NewKeyRepository(models.DB), repository.NewRedemptionRepository(models.DB), platformSvc)

	targets, err := resolveTargets(platformSvc, platformsFlag)
	if err != nil {
		stdLog.Fatalf("Failed to resolve platforms: %v", err)
	}

	for _, platform := range targets {
		if credentials > 0 {
			report, err := credentialSvc.BulkUpload(platform.Name, demoCredentials(platform.Name, credentials))
			if err != nil {
				stdLog.Printf("Failed to seed credentials for %s: %v", platform.Name, err)
			} else {
				stdLog.Printf("Seeded %d credentials for %s", report.Added, platform.Name)
			}
		}
		if keys > 0 {
			generated, err := keySvc.GenerateBatch(service.GenerateKeysInput{
				Platform:    platform.Name,
				Count:       keys,
				Uses:        uses,
				AccountText: platform.Name + " Premium Account",
			})
			if err != nil {
				stdLog.Printf("Failed to generate keys for %s: %v", platform.Name, err)
				continue
			}
			for _, key := range generated {
				stdLog.Printf("%s %s uses=%d", platform.Name, key.KeyCode, key.Uses)
			}
		}
	}
	stdLog.Printf("Seed completed")
}

func resolveTargets(platforms *service.PlatformService, raw string) ([]models.Platform, error) {
	if strings.TrimSpace(raw) == "" {
		return platforms.List()
	}
	result := make([]models.Platform, 0)
	for _, name := range strings.Split(raw, ",") {
		if strings.TrimSpace(name) == "" {
			continue
		}
		platform, err := platforms.Resolve(name)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		result = append(result, *platform)
	}
	return result, nil
}

func demoCredentials(platform string, count int) string {
	slug := strings.ToLower(platform)
	var b strings.Builder
	for i := 1; i <= count; i++ {
		fmt.Fprintf(&b, "demo%02d@%s.example.com:%s-pass-%02d\n", i, slug, slug, i)
	}
	return b.String()
}
