package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/streamvault/internal/logger"
	"github.com/streamvault/internal/models"
	"github.com/streamvault/internal/queue"
	"github.com/streamvault/internal/repository"

	"github.com/hibiken/asynq"
)

const defaultSendTimeout = 10 * time.Second

// MessageSender 聊天消息发送能力（HTML 格式）
type MessageSender interface {
	SendHTML(ctx context.Context, chatID int64, text string) error
}

// Notifier 兑换与抽奖事件的通知出口，投递失败不影响业务状态
type Notifier interface {
	KeyRedeemed(event RedemptionEvent)
	GiveawayWinner(ctx context.Context, winnerID int64, platform string, key *models.Key) error
	GiveawayCancelled(platform string, participants []int64)
}

// BroadcastReport 广播结果
type BroadcastReport struct {
	Total   int `json:"total"`
	Sent    int `json:"sent"`
	Blocked int `json:"blocked"`
	Failed  int `json:"failed"`
}

// NotificationService 通知服务：队列可用时走 asynq，否则同步/协程直发
type NotificationService struct {
	sender   MessageSender
	queue    *queue.Client
	admins   *AdminDirectory
	userRepo repository.UserRepository
	timeout  time.Duration
}

// NewNotificationService 创建通知服务
func NewNotificationService(sender MessageSender, queueClient *queue.Client, admins *AdminDirectory, userRepo repository.UserRepository, timeout time.Duration) *NotificationService {
	if timeout <= 0 {
		timeout = defaultSendTimeout
	}
	return &NotificationService{
		sender:   sender,
		queue:    queueClient,
		admins:   admins,
		userRepo: userRepo,
		timeout:  timeout,
	}
}

// KeyRedeemed 通知全部管理员：兑换码被兑换、凭据被领取
func (s *NotificationService) KeyRedeemed(event RedemptionEvent) {
	if s == nil {
		return
	}
	if event.At.IsZero() {
		event.At = time.Now()
	}
	s.notifyAdmins("key_redeemed", KeyRedeemedText(event))
	s.notifyAdmins("credential_claimed", CredentialClaimedText(event))
}

// GiveawayWinner 单次投递中奖通知，不重试
func (s *NotificationService) GiveawayWinner(ctx context.Context, winnerID int64, platform string, key *models.Key) error {
	if s == nil || key == nil {
		return ErrNotificationDisabled
	}
	text := GiveawayWinnerText(platform, key.AccountText, key.KeyCode)
	if s.queue.Enabled() {
		err := s.queue.EnqueueUserMessage(queue.UserMessagePayload{
			Event:  "giveaway_winner",
			UserID: winnerID,
			Text:   text,
		}, asynq.MaxRetry(0), asynq.Timeout(s.timeout))
		if err == nil {
			return nil
		}
		logger.Warnw("notification_enqueue_failed", "event", "giveaway_winner", "user_id", winnerID, "error", err)
	}
	return s.DeliverUser(ctx, winnerID, text)
}

// GiveawayCancelled 通知参与者抽奖已取消
func (s *NotificationService) GiveawayCancelled(platform string, participants []int64) {
	if s == nil || len(participants) == 0 {
		return
	}
	text := GiveawayCancelledText(platform)
	pending := make([]int64, 0, len(participants))
	for _, userID := range participants {
		if s.queue.Enabled() {
			err := s.queue.EnqueueUserMessage(queue.UserMessagePayload{
				Event:  "giveaway_cancelled",
				UserID: userID,
				Text:   text,
			}, asynq.MaxRetry(1))
			if err == nil {
				continue
			}
			logger.Warnw("notification_enqueue_failed", "event", "giveaway_cancelled", "user_id", userID, "error", err)
		}
		pending = append(pending, userID)
	}
	if len(pending) == 0 {
		return
	}
	go func() {
		for _, userID := range pending {
			if err := s.DeliverUser(context.Background(), userID, text); err != nil {
				logger.Warnw("giveaway_cancel_notice_failed", "user_id", userID, "error", err)
			}
		}
	}()
}

// Broadcast 向全部用户广播，队列不可用时在协程中执行
func (s *NotificationService) Broadcast(message, requestedBy string) error {
	if s == nil {
		return ErrNotificationDisabled
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return ErrBroadcastEmpty
	}
	if s.queue.Enabled() {
		err := s.queue.EnqueueBroadcast(queue.BroadcastPayload{Message: message, RequestedBy: requestedBy}, asynq.MaxRetry(0))
		if err == nil {
			logger.Infow("broadcast_enqueued", "requested_by", requestedBy)
			return nil
		}
		logger.Warnw("notification_enqueue_failed", "event", "broadcast", "error", err)
	}
	if s.sender == nil {
		return ErrNotificationDisabled
	}
	go func() {
		report, err := s.DeliverBroadcast(context.Background(), message)
		if err != nil {
			logger.Errorw("broadcast_failed", "error", err)
			return
		}
		logger.Infow("broadcast_finished",
			"requested_by", requestedBy,
			"total", report.Total,
			"sent", report.Sent,
			"blocked", report.Blocked,
			"failed", report.Failed,
		)
	}()
	return nil
}

// DeliverAdmins 直接向全部管理员发送，单个失败仅记录日志
func (s *NotificationService) DeliverAdmins(ctx context.Context, text string) error {
	if s == nil || s.sender == nil {
		return ErrNotificationDisabled
	}
	ids, err := s.admins.AdminIDs()
	if err != nil {
		return err
	}
	for _, id := range ids {
		if err := s.send(ctx, id, text); err != nil {
			logger.Warnw("admin_notify_failed", "admin_id", id, "error", err)
		}
	}
	return nil
}

// DeliverUser 直接向单个用户发送
func (s *NotificationService) DeliverUser(ctx context.Context, userID int64, text string) error {
	if s == nil || s.sender == nil {
		return ErrNotificationDisabled
	}
	return s.send(ctx, userID, text)
}

// DeliverBroadcast 逐个用户发送广播并统计结果
func (s *NotificationService) DeliverBroadcast(ctx context.Context, message string) (*BroadcastReport, error) {
	if s == nil || s.sender == nil {
		return nil, ErrNotificationDisabled
	}
	if s.userRepo == nil {
		return nil, ErrServiceUnavailable
	}
	ids, err := s.userRepo.ListIDs()
	if err != nil {
		return nil, err
	}
	text := BroadcastText(message)
	report := &BroadcastReport{Total: len(ids)}
	for _, id := range ids {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}
		err := s.send(ctx, id, text)
		switch {
		case err == nil:
			report.Sent++
		case errors.Is(err, ErrRecipientUnreachable):
			report.Blocked++
		default:
			report.Failed++
			logger.Warnw("broadcast_send_failed", "user_id", id, "error", err)
		}
	}
	return report, nil
}

func (s *NotificationService) notifyAdmins(event, text string) {
	if s.queue.Enabled() {
		err := s.queue.EnqueueAdminNotify(queue.AdminNotifyPayload{Event: event, Text: text}, asynq.MaxRetry(3))
		if err == nil {
			return
		}
		logger.Warnw("notification_enqueue_failed", "event", event, "error", err)
	}
	if s.sender == nil {
		logger.Debugw("notification_skipped", "event", event, "reason", "sender_missing")
		return
	}
	go func() {
		if err := s.DeliverAdmins(context.Background(), text); err != nil {
			logger.Warnw("admin_notify_failed", "event", event, "error", err)
		}
	}()
}

func (s *NotificationService) send(parent context.Context, chatID int64, text string) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithTimeout(parent, s.timeout)
	defer cancel()
	return s.sender.SendHTML(ctx, chatID, text)
}
