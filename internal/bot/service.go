package bot

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/streamvault/internal/config"
	"github.com/streamvault/internal/logger"
	"github.com/streamvault/internal/telegram"

	tele "gopkg.in/telebot.v3"
)

// Service 机器人长轮询服务
type Service struct {
	bot     *tele.Bot
	running atomic.Bool
}

// NewService 创建机器人服务并注册处理器
func NewService(cfg config.TelegramConfig, deps Deps) (*Service, error) {
	b, err := telegram.NewBot(cfg, false)
	if err != nil {
		return nil, err
	}
	NewHandler(deps).Register(b)
	logger.Infow("bot_initialized", "username", b.Me.Username)
	return &Service{bot: b}, nil
}

// Name 服务名称
func (s *Service) Name() string {
	return "bot"
}

// Start 开始长轮询，ctx 结束时返回
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.bot == nil {
		return errors.New("bot not initialized")
	}
	done := make(chan struct{})
	s.running.Store(true)
	go func() {
		defer close(done)
		s.bot.Start()
	}()
	select {
	case <-ctx.Done():
		return nil
	case <-done:
		s.running.Store(false)
		return errors.New("bot poller exited")
	}
}

// Stop 停止长轮询
func (s *Service) Stop(ctx context.Context) error {
	if s == nil || s.bot == nil || !s.running.CompareAndSwap(true, false) {
		return nil
	}
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		s.bot.Stop()
	}()
	select {
	case <-stopped:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
