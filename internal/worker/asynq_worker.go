package worker

import (
	"context"
	"errors"
	"fmt"

	"github.com/streamvault/internal/logger"
	"github.com/streamvault/internal/queue"
	"github.com/streamvault/internal/service"

	"github.com/hibiken/asynq"
)

// Deliverer 通知投递能力
type Deliverer interface {
	DeliverAdmins(ctx context.Context, text string) error
	DeliverUser(ctx context.Context, userID int64, text string) error
	DeliverBroadcast(ctx context.Context, message string) (*service.BroadcastReport, error)
}

// Consumer 异步任务消费者
type Consumer struct {
	notifications Deliverer
}

// NewConsumer 创建消费者
func NewConsumer(notifications Deliverer) *Consumer {
	return &Consumer{notifications: notifications}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskAdminNotify, c.handleAdminNotify)
	mux.HandleFunc(queue.TaskUserMessage, c.handleUserMessage)
	mux.HandleFunc(queue.TaskBroadcastDispatch, c.handleBroadcast)
}

func (c *Consumer) handleAdminNotify(ctx context.Context, task *asynq.Task) error {
	if c == nil || c.notifications == nil || task == nil {
		logger.Debugw("worker_admin_notify_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	payload, err := queue.ParseAdminNotifyPayload(task)
	if err != nil {
		logger.Warnw("worker_admin_notify_unmarshal_failed", "error", err)
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	if err := c.notifications.DeliverAdmins(ctx, payload.Text); err != nil {
		return c.classify("worker_admin_notify_failed", err, "event", payload.Event)
	}
	return nil
}

func (c *Consumer) handleUserMessage(ctx context.Context, task *asynq.Task) error {
	if c == nil || c.notifications == nil || task == nil {
		logger.Debugw("worker_user_message_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	payload, err := queue.ParseUserMessagePayload(task)
	if err != nil {
		logger.Warnw("worker_user_message_unmarshal_failed", "error", err)
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	if payload.UserID <= 0 {
		logger.Debugw("worker_user_message_skip_invalid_payload", "user_id", payload.UserID)
		return nil
	}
	if err := c.notifications.DeliverUser(ctx, payload.UserID, payload.Text); err != nil {
		return c.classify("worker_user_message_failed", err, "event", payload.Event, "user_id", payload.UserID)
	}
	return nil
}

func (c *Consumer) handleBroadcast(ctx context.Context, task *asynq.Task) error {
	if c == nil || c.notifications == nil || task == nil {
		logger.Debugw("worker_broadcast_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	payload, err := queue.ParseBroadcastPayload(task)
	if err != nil {
		logger.Warnw("worker_broadcast_unmarshal_failed", "error", err)
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	report, err := c.notifications.DeliverBroadcast(ctx, payload.Message)
	if err != nil {
		return c.classify("worker_broadcast_failed", err, "requested_by", payload.RequestedBy)
	}
	logger.Infow("worker_broadcast_finished",
		"requested_by", payload.RequestedBy,
		"total", report.Total,
		"sent", report.Sent,
		"blocked", report.Blocked,
		"failed", report.Failed,
	)
	return nil
}

// classify 不可达或未配置发送方的错误不再重试
func (c *Consumer) classify(event string, err error, kv ...interface{}) error {
	fields := append([]interface{}{"error", err}, kv...)
	switch {
	case errors.Is(err, service.ErrRecipientUnreachable), errors.Is(err, service.ErrNotificationDisabled):
		logger.Debugw(event, fields...)
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	default:
		logger.Warnw(event, fields...)
		return err
	}
}
