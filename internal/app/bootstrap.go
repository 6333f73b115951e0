package app

import (
	"errors"

	"github.com/streamvault/internal/bot"
	"github.com/streamvault/internal/config"
	"github.com/streamvault/internal/logger"
	"github.com/streamvault/internal/provider"
	"github.com/streamvault/internal/queue"
	"github.com/streamvault/internal/router"
	"github.com/streamvault/internal/worker"
)

// BuildRunner 按启动模式构建运行器，开奖调度最后注册、最先停止
func BuildRunner(cfg *config.Config, mode string) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if !IsValidMode(mode) {
		return nil, ErrUnknownMode
	}

	container := provider.NewContainer(cfg)
	var services []Unit

	// HTTP 管理端
	if mode == ModeAll || mode == ModeAPI {
		engine := router.SetupRouter(cfg, container)
		addr := cfg.Server.Host + ":" + cfg.Server.Port
		services = append(services, NewHTTPService(addr, engine))
	}

	// Telegram 机器人
	if mode == ModeAll || mode == ModeBot {
		botService, err := bot.NewService(cfg.Telegram, container.BotDeps())
		if err != nil {
			if mode == ModeBot {
				return nil, err
			}
			logger.Warnw("app_bot_skipped", "error", err)
		} else {
			services = append(services, botService)
		}
	}

	// 队列消费与抽奖开奖，每个部署只运行一个开奖调度
	if mode == ModeAll || mode == ModeWorker {
		workerService, err := worker.NewService(&cfg.Queue, worker.NewConsumer(container.NotificationService))
		switch {
		case err == nil:
			services = append(services, workerService)
		case errors.Is(err, queue.ErrQueueDisabled) && mode == ModeAll:
			logger.Warnw("app_worker_skipped", "reason", "queue_disabled")
		default:
			return nil, err
		}

		scheduler, err := worker.NewScheduler(cfg.Giveaway, container.GiveawayService)
		if err != nil {
			return nil, err
		}
		services = append(services, scheduler)
	}

	if len(services) == 0 {
		return nil, errors.New("no services initialized (check mode and config)")
	}
	return NewRunner(services...), nil
}

// Run 应用启动入口
func Run(opts Options) error {
	opts = normalizeOptions(opts)
	if opts.Config == nil {
		return errors.New("config is nil")
	}

	runner, err := BuildRunner(opts.Config, opts.Mode)
	if err != nil {
		return err
	}

	addr := opts.Config.Server.Host + ":" + opts.Config.Server.Port
	opts.Logger.Infow("app_start", "addr", addr, "mode", opts.Mode, "units", runner.Names())
	return runUntilSignal(runner, opts)
}
