package queue

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/streamvault/internal/config"
	"github.com/streamvault/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// DefaultQueue 默认队列名称
	DefaultQueue = constants.QueueDefault
)

// ErrQueueDisabled 队列未启用，调用方应改为同步投递
var ErrQueueDisabled = errors.New("queue disabled")

// Client 队列客户端封装
type Client struct {
	client       *asynq.Client
	enabled      bool
	defaultQueue string
}

// NewClient 创建队列客户端
func NewClient(cfg *config.QueueConfig) (*Client, error) {
	if cfg == nil || !cfg.Enabled {
		return &Client{enabled: false, defaultQueue: DefaultQueue}, nil
	}
	opt := buildRedisOpt(cfg)
	client := asynq.NewClient(opt)
	return &Client{
		client:       client,
		enabled:      true,
		defaultQueue: DefaultQueue,
	}, nil
}

// Enabled 判断是否启用
func (c *Client) Enabled() bool {
	return c != nil && c.enabled && c.client != nil
}

// Close 关闭客户端
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// EnqueueAdminNotify 推送管理员通知任务
func (c *Client) EnqueueAdminNotify(payload AdminNotifyPayload, opts ...asynq.Option) error {
	if !c.Enabled() {
		return ErrQueueDisabled
	}
	task, err := NewAdminNotifyTask(payload)
	if err != nil {
		return err
	}
	return c.enqueue(task, constants.QueueDefault, opts...)
}

// EnqueueUserMessage 推送用户消息任务，中奖通知走高优先级队列
func (c *Client) EnqueueUserMessage(payload UserMessagePayload, opts ...asynq.Option) error {
	if !c.Enabled() {
		return ErrQueueDisabled
	}
	task, err := NewUserMessageTask(payload)
	if err != nil {
		return err
	}
	return c.enqueue(task, constants.QueueCritical, opts...)
}

// EnqueueBroadcast 推送广播任务
func (c *Client) EnqueueBroadcast(payload BroadcastPayload, opts ...asynq.Option) error {
	if !c.Enabled() {
		return ErrQueueDisabled
	}
	task, err := NewBroadcastTask(payload)
	if err != nil {
		return err
	}
	options := append([]asynq.Option{asynq.Timeout(30 * time.Minute)}, opts...)
	return c.enqueue(task, c.defaultQueue, options...)
}

func (c *Client) enqueue(task *asynq.Task, queueName string, opts ...asynq.Option) error {
	options := append([]asynq.Option{asynq.Queue(queueName)}, opts...)
	_, err := c.client.Enqueue(task, options...)
	return err
}

// BuildServerConfig 生成队列服务配置
func BuildServerConfig(cfg *config.QueueConfig) (asynq.RedisClientOpt, asynq.Config) {
	opt := buildRedisOpt(cfg)
	concurrency := 10
	if cfg != nil && cfg.Concurrency > 0 {
		concurrency = cfg.Concurrency
	}
	queues := map[string]int{constants.QueueCritical: 6, DefaultQueue: 3}
	if cfg != nil && len(cfg.Queues) > 0 {
		queues = cfg.Queues
	}
	return opt, asynq.Config{
		Concurrency: concurrency,
		Queues:      queues,
	}
}

func buildRedisOpt(cfg *config.QueueConfig) asynq.RedisClientOpt {
	host := "127.0.0.1"
	port := 6379
	password := ""
	db := 0
	if cfg != nil {
		if strings.TrimSpace(cfg.Host) != "" {
			host = strings.TrimSpace(cfg.Host)
		}
		if cfg.Port > 0 {
			port = cfg.Port
		}
		password = cfg.Password
		db = cfg.DB
	}
	return asynq.RedisClientOpt{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: password,
		DB:       db,
	}
}
