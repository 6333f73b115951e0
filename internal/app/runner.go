package app

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"time"

	"go.uber.org/zap"
)

// Unit 可独立启停的运行单元：HTTP 管理端、机器人、队列消费、开奖调度
type Unit interface {
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// Runner 按注册顺序启动运行单元，按相反顺序停止
type Runner struct {
	units []Unit
}

// NewRunner 创建运行器，注册顺序即启动顺序
func NewRunner(units ...Unit) *Runner {
	return &Runner{units: units}
}

// Names 已注册单元名称
func (r *Runner) Names() []string {
	if r == nil {
		return nil
	}
	names := make([]string, 0, len(r.units))
	for _, unit := range r.units {
		if unit != nil {
			names = append(names, unit.Name())
		}
	}
	return names
}

type unitExit struct {
	name string
	err  error
}

// runUntilSignal 收到退出信号后停止全部单元
func runUntilSignal(runner *Runner, opts Options) error {
	if runner == nil {
		return errors.New("runner is nil")
	}
	opts = normalizeOptions(opts)
	ctx := context.Background()
	if len(opts.Signals) > 0 {
		var cancel context.CancelFunc
		ctx, cancel = signal.NotifyContext(ctx, opts.Signals...)
		defer cancel()
	}
	return runner.Run(ctx, opts.ShutdownTimeout, opts.Logger)
}

// Run 启动全部单元，任一单元退出或 ctx 结束即进入停止阶段
func (r *Runner) Run(ctx context.Context, stopTimeout time.Duration, log *zap.SugaredLogger) error {
	if r == nil || len(r.units) == 0 {
		return errors.New("no units to run")
	}
	for i, unit := range r.units {
		if unit == nil {
			return fmt.Errorf("unit %d is nil", i)
		}
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	exits := make(chan unitExit, len(r.units))
	for _, unit := range r.units {
		go func(unit Unit) {
			log.Infow("unit_start", "unit", unit.Name())
			exits <- unitExit{name: unit.Name(), err: unit.Start(runCtx)}
		}(unit)
	}

	var runErr error
	running := len(r.units)
	select {
	case <-runCtx.Done():
		runErr = runCtx.Err()
	case exit := <-exits:
		running--
		log.Infow("unit_exit", "unit", exit.name, "error", exit.err)
		runErr = exit.err
		if runErr != nil {
			runErr = fmt.Errorf("%s: %w", exit.name, runErr)
		}
	}
	cancel()

	if stopTimeout <= 0 {
		stopTimeout = 10 * time.Second
	}
	stopCtx, stopCancel := context.WithTimeout(context.Background(), stopTimeout)
	defer stopCancel()
	stopErr := r.stopAll(stopCtx, log)

	for running > 0 {
		select {
		case exit := <-exits:
			running--
			log.Infow("unit_exit", "unit", exit.name)
		case <-stopCtx.Done():
			log.Warnw("unit_exit_timeout", "remaining", running)
			running = 0
		}
	}

	if errors.Is(runErr, context.Canceled) {
		runErr = nil
	}
	return errors.Join(runErr, stopErr)
}

// stopAll 逆序停止：开奖调度与队列先停，HTTP 最后停
func (r *Runner) stopAll(ctx context.Context, log *zap.SugaredLogger) error {
	var errs []error
	for i := len(r.units) - 1; i >= 0; i-- {
		unit := r.units[i]
		started := time.Now()
		if err := unit.Stop(ctx); err != nil {
			log.Errorw("unit_stop_failed", "unit", unit.Name(), "error", err)
			errs = append(errs, fmt.Errorf("stop %s: %w", unit.Name(), err))
			continue
		}
		log.Infow("unit_stopped", "unit", unit.Name(), "elapsed_ms", time.Since(started).Milliseconds())
	}
	return errors.Join(errs...)
}
