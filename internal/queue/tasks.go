package queue

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/streamvault/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskAdminNotify 管理员通知任务
	TaskAdminNotify = constants.TaskAdminNotify
	// TaskUserMessage 单个用户消息任务（中奖通知、取消通知）
	TaskUserMessage = constants.TaskUserMessage
	// TaskBroadcastDispatch 全员广播任务
	TaskBroadcastDispatch = constants.TaskBroadcastDispatch
)

var errEmptyPayload = errors.New("empty task payload")

// AdminNotifyPayload 管理员通知任务载荷
type AdminNotifyPayload struct {
	Event string `json:"event"`
	Text  string `json:"text"`
}

// UserMessagePayload 用户消息任务载荷
type UserMessagePayload struct {
	Event  string `json:"event"`
	UserID int64  `json:"user_id"`
	Text   string `json:"text"`
}

// BroadcastPayload 广播任务载荷
type BroadcastPayload struct {
	Message     string `json:"message"`
	RequestedBy string `json:"requested_by"`
}

// NewAdminNotifyTask 创建管理员通知任务
func NewAdminNotifyTask(payload AdminNotifyPayload) (*asynq.Task, error) {
	if strings.TrimSpace(payload.Text) == "" {
		return nil, errEmptyPayload
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAdminNotify, body), nil
}

// NewUserMessageTask 创建用户消息任务
func NewUserMessageTask(payload UserMessagePayload) (*asynq.Task, error) {
	if payload.UserID == 0 || strings.TrimSpace(payload.Text) == "" {
		return nil, errEmptyPayload
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskUserMessage, body), nil
}

// NewBroadcastTask 创建广播任务
func NewBroadcastTask(payload BroadcastPayload) (*asynq.Task, error) {
	if strings.TrimSpace(payload.Message) == "" {
		return nil, errEmptyPayload
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskBroadcastDispatch, body), nil
}

// ParseAdminNotifyPayload 解析管理员通知载荷
func ParseAdminNotifyPayload(task *asynq.Task) (AdminNotifyPayload, error) {
	var payload AdminNotifyPayload
	if task == nil {
		return payload, errEmptyPayload
	}
	err := json.Unmarshal(task.Payload(), &payload)
	return payload, err
}

// ParseUserMessagePayload 解析用户消息载荷
func ParseUserMessagePayload(task *asynq.Task) (UserMessagePayload, error) {
	var payload UserMessagePayload
	if task == nil {
		return payload, errEmptyPayload
	}
	err := json.Unmarshal(task.Payload(), &payload)
	return payload, err
}

// ParseBroadcastPayload 解析广播载荷
func ParseBroadcastPayload(task *asynq.Task) (BroadcastPayload, error) {
	var payload BroadcastPayload
	if task == nil {
		return payload, errEmptyPayload
	}
	err := json.Unmarshal(task.Payload(), &payload)
	return payload, err
}
