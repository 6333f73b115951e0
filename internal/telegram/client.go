package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/streamvault/internal/config"
	"github.com/streamvault/internal/logger"
	"github.com/streamvault/internal/service"

	tele "gopkg.in/telebot.v3"
)

const (
	defaultPollTimeout = 10 * time.Second
	defaultSendTimeout = 10 * time.Second
)

// ErrTokenMissing 未配置机器人 Token
var ErrTokenMissing = errors.New("telegram token missing")

// NewBot 创建 telebot 实例，offline 为 true 时不请求 getMe 也不轮询
func NewBot(cfg config.TelegramConfig, offline bool) (*tele.Bot, error) {
	token := strings.TrimSpace(cfg.Token)
	if token == "" {
		return nil, ErrTokenMissing
	}
	pollTimeout := defaultPollTimeout
	if cfg.PollTimeoutSeconds > 0 {
		pollTimeout = time.Duration(cfg.PollTimeoutSeconds) * time.Second
	}
	sendTimeout := defaultSendTimeout
	if cfg.SendTimeoutSeconds > 0 {
		sendTimeout = time.Duration(cfg.SendTimeoutSeconds) * time.Second
	}
	settings := tele.Settings{
		Token:   token,
		Offline: offline,
		Client:  &http.Client{Timeout: pollTimeout + sendTimeout},
		OnError: func(err error, c tele.Context) {
			var userID int64
			if c != nil && c.Sender() != nil {
				userID = c.Sender().ID
			}
			logger.Errorw("bot_handler_failed", "user_id", userID, "error", err)
		},
	}
	if !offline {
		settings.Poller = &tele.LongPoller{Timeout: pollTimeout}
	}
	return tele.NewBot(settings)
}

// Sender 以 HTML 格式发送消息，实现 service.MessageSender
type Sender struct {
	bot *tele.Bot
}

// NewSender 创建只发送不轮询的客户端
func NewSender(cfg config.TelegramConfig) (*Sender, error) {
	bot, err := NewBot(cfg, true)
	if err != nil {
		return nil, err
	}
	return &Sender{bot: bot}, nil
}

// WrapSender 复用已有的 bot 实例发送
func WrapSender(bot *tele.Bot) *Sender {
	return &Sender{bot: bot}
}

// SendHTML 发送 HTML 消息，ctx 结束时放弃等待
func (s *Sender) SendHTML(ctx context.Context, chatID int64, text string) error {
	if s == nil || s.bot == nil {
		return service.ErrNotificationDisabled
	}
	if ctx == nil {
		ctx = context.Background()
	}
	done := make(chan error, 1)
	go func() {
		_, err := s.bot.Send(tele.ChatID(chatID), text, &tele.SendOptions{
			ParseMode:             tele.ModeHTML,
			DisableWebPagePreview: true,
		})
		done <- err
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		return MapSendError(err)
	}
}

// MapSendError 把用户不可达类错误归并为 service.ErrRecipientUnreachable
func MapSendError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, tele.ErrBlockedByUser),
		errors.Is(err, tele.ErrChatNotFound),
		errors.Is(err, tele.ErrUserIsDeactivated),
		errors.Is(err, tele.ErrNotStartedByUser):
		return fmt.Errorf("%w: %w", service.ErrRecipientUnreachable, err)
	}
	return err
}
