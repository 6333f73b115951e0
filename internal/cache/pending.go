package cache

import (
	"context"
	"fmt"
	"time"
)

func pendingActionKey(userID int64) string {
	return fmt.Sprintf("bot:pending:%d", userID)
}

// GetPendingAction 读取用户的多轮会话状态
func GetPendingAction(ctx context.Context, userID int64, dest interface{}) (bool, error) {
	if userID == 0 {
		return false, nil
	}
	return GetJSON(ctx, pendingActionKey(userID), dest)
}

// SetPendingAction 写入用户的多轮会话状态
func SetPendingAction(ctx context.Context, userID int64, value interface{}, ttl time.Duration) error {
	if userID == 0 {
		return nil
	}
	return SetJSON(ctx, pendingActionKey(userID), value, ttl)
}

// DelPendingAction 清除用户的多轮会话状态
func DelPendingAction(ctx context.Context, userID int64) error {
	if userID == 0 {
		return nil
	}
	return Del(ctx, pendingActionKey(userID))
}
