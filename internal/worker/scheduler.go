package worker

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/streamvault/internal/cache"
	"github.com/streamvault/internal/config"
	"github.com/streamvault/internal/logger"
	"github.com/streamvault/internal/service"

	"github.com/robfig/cron/v3"
)

const (
	defaultSweepSpec   = "@every 30s"
	sweepLockKey       = "giveaway:sweep"
	sweepLockTTL       = 2 * time.Minute
	defaultFirstSweep  = 10 * time.Second
	sweepRunTimeout    = 90 * time.Second
	schedulerStopGrace = 5 * time.Second
)

// Sweeper 到期抽奖处理能力
type Sweeper interface {
	Sweep(ctx context.Context) ([]service.GiveawayOutcome, error)
}

// Scheduler 抽奖开奖调度器
type Scheduler struct {
	name       string
	sweeper    Sweeper
	spec       string
	firstDelay time.Duration
	cron       *cron.Cron
}

// NewScheduler 创建调度器
func NewScheduler(cfg config.GiveawayConfig, sweeper Sweeper) (*Scheduler, error) {
	if sweeper == nil {
		return nil, errors.New("sweeper is nil")
	}
	spec := strings.TrimSpace(cfg.SweepSpec)
	if spec == "" {
		spec = defaultSweepSpec
	}
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, err
	}
	firstDelay := defaultFirstSweep
	if cfg.FirstSweepDelaySeconds > 0 {
		firstDelay = time.Duration(cfg.FirstSweepDelaySeconds) * time.Second
	}
	return &Scheduler{
		name:       "scheduler",
		sweeper:    sweeper,
		spec:       spec,
		firstDelay: firstDelay,
		cron:       cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
	}, nil
}

// Name 服务名称
func (s *Scheduler) Name() string {
	if s == nil || s.name == "" {
		return "scheduler"
	}
	return s.name
}

// Start 启动调度，阻塞直到 ctx 结束
func (s *Scheduler) Start(ctx context.Context) error {
	if s == nil || s.sweeper == nil || s.cron == nil {
		return errors.New("scheduler not initialized")
	}
	if _, err := s.cron.AddFunc(s.spec, func() { s.RunOnce(ctx) }); err != nil {
		return err
	}

	timer := time.NewTimer(s.firstDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return nil
	case <-timer.C:
	}
	s.RunOnce(ctx)
	if ctx.Err() != nil {
		return nil
	}
	s.cron.Start()
	<-ctx.Done()
	return nil
}

// Stop 停止调度并等待进行中的任务
func (s *Scheduler) Stop(ctx context.Context) error {
	if s == nil || s.cron == nil {
		return nil
	}
	done := s.cron.Stop()
	wait, cancel := context.WithTimeout(ctx, schedulerStopGrace)
	defer cancel()
	select {
	case <-done.Done():
	case <-wait.Done():
		logger.Warnw("scheduler_stop_timeout")
	}
	return nil
}

// RunOnce 执行一次开奖扫描，多实例部署时由 Redis 锁互斥
func (s *Scheduler) RunOnce(parent context.Context) {
	if parent.Err() != nil {
		return
	}
	ctx, cancel := context.WithTimeout(parent, sweepRunTimeout)
	defer cancel()
	acquired, err := cache.AcquireLock(ctx, sweepLockKey, sweepLockTTL)
	if err != nil {
		logger.Warnw("giveaway_sweep_lock_failed", "error", err)
		return
	}
	if !acquired {
		logger.Debugw("giveaway_sweep_skip_locked")
		return
	}
	defer func() {
		if err := cache.ReleaseLock(context.Background(), sweepLockKey); err != nil {
			logger.Warnw("giveaway_sweep_unlock_failed", "error", err)
		}
	}()

	outcomes, err := s.sweeper.Sweep(ctx)
	if err != nil {
		logger.Errorw("giveaway_sweep_failed", "error", err)
		return
	}
	if len(outcomes) > 0 {
		logger.Infow("giveaway_sweep_done", "closed", len(outcomes))
	}
}
