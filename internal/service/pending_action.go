package service

import (
	"context"
	"errors"
	"time"

	"github.com/streamvault/internal/cache"
	"github.com/streamvault/internal/constants"

	lru "github.com/hashicorp/golang-lru"
)

const (
	pendingActionMemorySize = 4096
	defaultPendingTTL       = 15 * time.Minute
)

// ErrPendingTransition 非法的会话步骤跳转
var ErrPendingTransition = errors.New("pending action transition invalid")

// pendingTransitions 多轮输入的步骤流转，空串表示流程结束
var pendingTransitions = map[string]string{
	constants.PendingStepRedeemCode:       constants.PendingStepNone,
	constants.PendingStepGenerateCount:    constants.PendingStepGenerateUses,
	constants.PendingStepGenerateUses:     constants.PendingStepGenerateText,
	constants.PendingStepGenerateText:     constants.PendingStepNone,
	constants.PendingStepCredentialLines:  constants.PendingStepNone,
	constants.PendingStepGiveawayWinners:  constants.PendingStepNone,
	constants.PendingStepRevokeConfirm:    constants.PendingStepNone,
	constants.PendingStepBroadcastMessage: constants.PendingStepNone,
	constants.PendingStepBanIdentifier:    constants.PendingStepNone,
}

// PendingAction 用户当前等待输入的步骤及已收集的参数
type PendingAction struct {
	Step      string    `json:"step"`
	Platform  string    `json:"platform,omitempty"`
	Count     int       `json:"count,omitempty"`
	Uses      int       `json:"uses,omitempty"`
	Duration  string    `json:"duration,omitempty"`
	Option    string    `json:"option,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
}

// NewPendingAction 以起始步骤创建会话状态
func NewPendingAction(step string) (*PendingAction, error) {
	if _, ok := pendingTransitions[step]; !ok {
		return nil, ErrPendingTransition
	}
	return &PendingAction{Step: step}, nil
}

// Advance 进入下一步，返回流程是否结束
func (a *PendingAction) Advance() (bool, error) {
	if a == nil {
		return false, ErrPendingActionNotFound
	}
	next, ok := pendingTransitions[a.Step]
	if !ok {
		return false, ErrPendingTransition
	}
	a.Step = next
	return next == constants.PendingStepNone, nil
}

// PendingActionStore 多轮会话状态存储：Redis 可用时共享，否则进程内 LRU
type PendingActionStore struct {
	memory *lru.Cache
	ttl    time.Duration
	now    func() time.Time
}

// NewPendingActionStore 创建会话状态存储
func NewPendingActionStore(ttl time.Duration) *PendingActionStore {
	if ttl <= 0 {
		ttl = defaultPendingTTL
	}
	memory, _ := lru.New(pendingActionMemorySize)
	return &PendingActionStore{memory: memory, ttl: ttl, now: time.Now}
}

// Get 读取用户会话状态，不存在或已过期返回 nil
func (s *PendingActionStore) Get(ctx context.Context, userID int64) (*PendingAction, error) {
	if s == nil || userID == 0 {
		return nil, nil
	}
	if cache.Enabled() {
		var action PendingAction
		hit, err := cache.GetPendingAction(ctx, userID, &action)
		if err != nil || !hit {
			return nil, err
		}
		return &action, nil
	}
	value, ok := s.memory.Get(userID)
	if !ok {
		return nil, nil
	}
	action, ok := value.(PendingAction)
	if !ok || !s.now().Before(action.ExpiresAt) {
		s.memory.Remove(userID)
		return nil, nil
	}
	return &action, nil
}

// Set 写入用户会话状态并刷新过期时间
func (s *PendingActionStore) Set(ctx context.Context, userID int64, action *PendingAction) error {
	if s == nil || userID == 0 || action == nil {
		return nil
	}
	if action.Step == constants.PendingStepNone {
		return s.Clear(ctx, userID)
	}
	stored := *action
	stored.ExpiresAt = s.now().Add(s.ttl)
	if cache.Enabled() {
		return cache.SetPendingAction(ctx, userID, stored, s.ttl)
	}
	s.memory.Add(userID, stored)
	return nil
}

// Clear 清除用户会话状态
func (s *PendingActionStore) Clear(ctx context.Context, userID int64) error {
	if s == nil || userID == 0 {
		return nil
	}
	if cache.Enabled() {
		return cache.DelPendingAction(ctx, userID)
	}
	s.memory.Remove(userID)
	return nil
}
