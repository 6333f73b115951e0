package repository

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrConflict 条件更新未命中（并发竞争失败）
var ErrConflict = errors.New("repository: conditional update lost the race")

// IsUniqueViolation 判断是否唯一索引冲突，兼容 sqlite 与 postgres
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint failed") ||
		strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "sqlstate 23505")
}
