package config

import (
	"fmt"
	"strings"

	"github.com/streamvault/internal/logger"

	"github.com/spf13/viper"
)

// Config 应用配置结构
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Log        LogConfig        `mapstructure:"log"`
	Database   DatabaseConfig   `mapstructure:"database"`
	JWT        JWTConfig        `mapstructure:"jwt"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Queue      QueueConfig      `mapstructure:"queue"`
	CORS       CORSConfig       `mapstructure:"cors"`
	Security   SecurityConfig   `mapstructure:"security"`
	Captcha    CaptchaConfig    `mapstructure:"captcha"`
	Telegram   TelegramConfig   `mapstructure:"telegram"`
	Redemption RedemptionConfig `mapstructure:"redemption"`
	Giveaway   GiveawayConfig   `mapstructure:"giveaway"`
	Bootstrap  BootstrapConfig  `mapstructure:"bootstrap"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug / release
}

// LogConfig 日志配置
type LogConfig struct {
	Dir        string `mapstructure:"dir"`
	Filename   string `mapstructure:"filename"`
	Level      string `mapstructure:"level"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// ToLoggerOptions 转换为 logger 配置
func (c LogConfig) ToLoggerOptions() logger.Options {
	return logger.Options{
		Dir:        c.Dir,
		Filename:   c.Filename,
		Level:      c.Level,
		MaxSizeMB:  c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		MaxAgeDays: c.MaxAgeDays,
		Compress:   c.Compress,
	}
}

// DatabasePoolConfig 数据库连接池配置
type DatabasePoolConfig struct {
	MaxOpenConns           int `mapstructure:"max_open_conns"`
	MaxIdleConns           int `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeSeconds int `mapstructure:"conn_max_lifetime_seconds"`
	ConnMaxIdleTimeSeconds int `mapstructure:"conn_max_idle_time_seconds"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver string             `mapstructure:"driver"` // sqlite / postgres
	DSN    string             `mapstructure:"dsn"`
	Pool   DatabasePoolConfig `mapstructure:"pool"`
}

// JWTConfig JWT 配置
type JWTConfig struct {
	SecretKey   string `mapstructure:"secret"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// QueueConfig 异步队列配置
type QueueConfig struct {
	Enabled     bool           `mapstructure:"enabled"`
	Host        string         `mapstructure:"host"`
	Port        int            `mapstructure:"port"`
	Password    string         `mapstructure:"password"`
	DB          int            `mapstructure:"db"`
	Concurrency int            `mapstructure:"concurrency"`
	Queues      map[string]int `mapstructure:"queues"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	LoginRateLimit    LoginRateLimitConfig `mapstructure:"login_rate_limit"`
	PasswordMinLength int                  `mapstructure:"password_min_length"`
}

// LoginRateLimitConfig 登录限流配置
type LoginRateLimitConfig struct {
	WindowSeconds int `mapstructure:"window_seconds"`
	MaxAttempts   int `mapstructure:"max_attempts"`
}

// CaptchaConfig 后台登录图片验证码配置
type CaptchaConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	Length        int  `mapstructure:"length"`
	Width         int  `mapstructure:"width"`
	Height        int  `mapstructure:"height"`
	NoiseCount    int  `mapstructure:"noise_count"`
	ShowLine      int  `mapstructure:"show_line"`
	ExpireSeconds int  `mapstructure:"expire_seconds"`
	MaxStore      int  `mapstructure:"max_store"`
}

// TelegramConfig 机器人配置
type TelegramConfig struct {
	Token              string  `mapstructure:"token"`
	PollTimeoutSeconds int     `mapstructure:"poll_timeout_seconds"`
	SendTimeoutSeconds int     `mapstructure:"send_timeout_seconds"`
	AdminIDs           []int64 `mapstructure:"admin_ids"`
	PendingTTLSeconds  int     `mapstructure:"pending_ttl_seconds"`
}

// RedemptionConfig 兑换配置
type RedemptionConfig struct {
	CooldownSeconds  int `mapstructure:"cooldown_seconds"`
	MaxClaimAttempts int `mapstructure:"max_claim_attempts"`
}

// GiveawayConfig 抽奖调度配置
type GiveawayConfig struct {
	SweepSpec              string `mapstructure:"sweep_spec"`
	FirstSweepDelaySeconds int    `mapstructure:"first_sweep_delay_seconds"`
}

// BootstrapConfig 初始化账号配置
type BootstrapConfig struct {
	AdminUsername string `mapstructure:"admin_username"`
	AdminPassword string `mapstructure:"admin_password"`
}

// Load 从 config.yml 加载配置
func Load() *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("../")   // 从 cmd/server 运行
	viper.AddConfigPath("./etc") // etc 文件夹

	setDefaults(viper.GetViper())

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // server.port -> SERVER_PORT
	// 兼容旧部署使用的环境变量名
	_ = viper.BindEnv("telegram.token", "TELEGRAM_TOKEN", "BOT_TOKEN")
	_ = viper.BindEnv("bootstrap.admin_username", "BOOTSTRAP_ADMIN_USERNAME", "ADMIN_USERNAME")
	_ = viper.BindEnv("bootstrap.admin_password", "BOOTSTRAP_ADMIN_PASSWORD", "ADMIN_PASSWORD")

	if err := viper.ReadInConfig(); err != nil {
		logger.Warnw("config_file_read_failed",
			"error", err,
			"fallback", "env_or_defaults",
		)
	} else {
		logger.Infow("config_file_loaded", "file", viper.ConfigFileUsed())
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		logger.Errorw("config_unmarshal_failed", "error", err)
		panic(fmt.Errorf("配置解析失败: %w", err))
	}
	if raw := strings.TrimSpace(viper.GetString("telegram.admin_ids")); raw != "" && len(cfg.Telegram.AdminIDs) == 0 {
		cfg.Telegram.AdminIDs = ParseAdminIDs(raw)
	}

	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("log.dir", "")
	v.SetDefault("log.filename", "app.log")
	v.SetDefault("log.level", "")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 7)
	v.SetDefault("log.max_age_days", 30)
	v.SetDefault("log.compress", true)
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "./db/streamvault.db")
	v.SetDefault("database.pool.max_open_conns", 1)
	v.SetDefault("database.pool.max_idle_conns", 1)
	v.SetDefault("database.pool.conn_max_lifetime_seconds", 0)
	v.SetDefault("database.pool.conn_max_idle_time_seconds", 0)
	v.SetDefault("jwt.secret", "change-me-in-production")
	v.SetDefault("jwt.expire_hours", 24)
	v.SetDefault("redis.enabled", true)
	v.SetDefault("redis.host", "127.0.0.1")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "sv")
	v.SetDefault("queue.enabled", true)
	v.SetDefault("queue.host", "127.0.0.1")
	v.SetDefault("queue.port", 6379)
	v.SetDefault("queue.password", "")
	v.SetDefault("queue.db", 1)
	v.SetDefault("queue.concurrency", 10)
	v.SetDefault("queue.queues", map[string]int{
		"critical": 6,
		"default":  3,
	})
	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{
		"Content-Type",
		"Content-Length",
		"Accept-Encoding",
		"Authorization",
		"Cache-Control",
		"X-Requested-With",
	})
	v.SetDefault("cors.allow_credentials", true)
	v.SetDefault("cors.max_age", 600)
	v.SetDefault("security.login_rate_limit.window_seconds", 300)
	v.SetDefault("security.login_rate_limit.max_attempts", 5)
	v.SetDefault("security.password_min_length", 8)
	v.SetDefault("captcha.enabled", false)
	v.SetDefault("captcha.length", 5)
	v.SetDefault("captcha.width", 240)
	v.SetDefault("captcha.height", 80)
	v.SetDefault("captcha.noise_count", 2)
	v.SetDefault("captcha.show_line", 2)
	v.SetDefault("captcha.expire_seconds", 300)
	v.SetDefault("captcha.max_store", 10240)
	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.poll_timeout_seconds", 10)
	v.SetDefault("telegram.send_timeout_seconds", 10)
	v.SetDefault("telegram.pending_ttl_seconds", 900)
	v.SetDefault("redemption.cooldown_seconds", 600)
	v.SetDefault("redemption.max_claim_attempts", 3)
	v.SetDefault("giveaway.sweep_spec", "@every 30s")
	v.SetDefault("giveaway.first_sweep_delay_seconds", 10)
	v.SetDefault("bootstrap.admin_username", "admin")
	v.SetDefault("bootstrap.admin_password", "changeme")
}
