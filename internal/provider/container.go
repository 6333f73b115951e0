package provider

import (
	"time"

	"github.com/streamvault/internal/authz"
	"github.com/streamvault/internal/bot"
	"github.com/streamvault/internal/cache"
	"github.com/streamvault/internal/config"
	"github.com/streamvault/internal/logger"
	"github.com/streamvault/internal/models"
	"github.com/streamvault/internal/queue"
	"github.com/streamvault/internal/repository"
	"github.com/streamvault/internal/service"
	"github.com/streamvault/internal/telegram"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	AdminRepo      repository.AdminRepository
	UserRepo       repository.UserRepository
	BanRepo        repository.BanRepository
	PlatformRepo   repository.PlatformRepository
	CredentialRepo repository.CredentialRepository
	KeyRepo        repository.KeyRepository
	RedemptionRepo repository.RedemptionRepository
	GiveawayRepo   repository.GiveawayRepository

	// Services
	AuthzService        *authz.Service
	AuthService         *service.AuthService
	AdminAccountService *service.AdminAccountService
	CaptchaService      *service.CaptchaService
	AdminDirectory      *service.AdminDirectory
	PlatformService     *service.PlatformService
	CredentialService   *service.CredentialService
	KeyService          *service.KeyService
	UserService         *service.UserService
	BanService          *service.BanService
	NotificationService *service.NotificationService
	RedemptionService   *service.RedemptionService
	GiveawayService     *service.GiveawayService
	DashboardService    *service.DashboardService
	PendingActions      *service.PendingActionStore
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.AdminRepo = repository.NewAdminRepository(db)
	c.UserRepo = repository.NewUserRepository(db)
	c.BanRepo = repository.NewBanRepository(db)
	c.PlatformRepo = repository.NewPlatformRepository(db)
	c.CredentialRepo = repository.NewCredentialRepository(db)
	c.KeyRepo = repository.NewKeyRepository(db)
	c.RedemptionRepo = repository.NewRedemptionRepository(db)
	c.GiveawayRepo = repository.NewGiveawayRepository(db)
}

func (c *Container) initServices() {
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}

	c.CaptchaService = service.NewCaptchaService(c.Config.Captcha)
	c.AuthService = service.NewAuthService(c.Config, c.AdminRepo)
	c.AdminAccountService = service.NewAdminAccountService(c.AdminRepo, c.AuthService)
	c.AdminDirectory = service.NewAdminDirectory(c.Config.Telegram.AdminIDs, c.AdminRepo)

	c.PlatformService = service.NewPlatformService(c.PlatformRepo)
	c.CredentialService = service.NewCredentialService(c.CredentialRepo, c.PlatformService)
	c.KeyService = service.NewKeyService(c.KeyRepo, c.RedemptionRepo, c.PlatformService)
	c.UserService = service.NewUserService(c.UserRepo, c.RedemptionRepo)
	c.BanService = service.NewBanService(c.BanRepo)

	c.NotificationService = service.NewNotificationService(
		c.newMessageSender(),
		c.QueueClient,
		c.AdminDirectory,
		c.UserRepo,
		time.Duration(c.Config.Telegram.SendTimeoutSeconds)*time.Second,
	)
	c.RedemptionService = service.NewRedemptionService(
		c.Config.Redemption,
		c.KeyRepo,
		c.CredentialRepo,
		c.RedemptionRepo,
		c.UserRepo,
		c.BanService,
		c.NotificationService,
	)
	c.GiveawayService = service.NewGiveawayService(c.GiveawayRepo, c.PlatformService, c.KeyService, c.NotificationService)
	c.DashboardService = service.NewDashboardService(
		c.PlatformService,
		c.CredentialRepo,
		c.KeyRepo,
		c.RedemptionRepo,
		c.UserRepo,
		c.GiveawayRepo,
	)
	c.PendingActions = service.NewPendingActionStore(time.Duration(c.Config.Telegram.PendingTTLSeconds) * time.Second)
}

// newMessageSender 构建离线 Telegram 发送端，未配置 token 时返回 nil（通知降级为日志）
func (c *Container) newMessageSender() service.MessageSender {
	sender, err := telegram.NewSender(c.Config.Telegram)
	if err != nil {
		logger.Warnw("provider_telegram_sender_disabled", "error", err)
		return nil
	}
	return sender
}

// BotDeps 机器人会话依赖
func (c *Container) BotDeps() bot.Deps {
	return bot.Deps{
		Users:         c.UserService,
		Bans:          c.BanService,
		Admins:        c.AdminDirectory,
		Platforms:     c.PlatformService,
		Credentials:   c.CredentialService,
		Keys:          c.KeyService,
		Redemption:    c.RedemptionService,
		Giveaways:     c.GiveawayService,
		Notifications: c.NotificationService,
		Dashboard:     c.DashboardService,
		Pending:       c.PendingActions,
	}
}
