package models

import (
	"strings"

	"github.com/streamvault/internal/logger"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm/clause"
)

const (
	defaultOwnerUsername = "admin"
	defaultOwnerPassword = "changeme"
	roleOwner            = "owner"
)

// SeedPlatforms 写入内置平台，已存在的平台保持不变
func SeedPlatforms() error {
	platforms := DefaultPlatforms()
	if err := DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&platforms).Error; err != nil {
		return err
	}
	return nil
}

// InitDefaultAdmin 初始化默认所有者账号
func InitDefaultAdmin(username, password string) error {
	var count int64
	if err := DB.Model(&AdminCredential{}).Count(&count).Error; err != nil {
		return err
	}

	// 已有管理员时确保至少存在一个所有者
	if count > 0 {
		var owners int64
		if err := DB.Model(&AdminCredential{}).Where("role = ?", roleOwner).Count(&owners).Error; err != nil {
			return err
		}
		if owners == 0 {
			if err := DB.Model(&AdminCredential{}).Where("username = ?", strings.TrimSpace(username)).Update("role", roleOwner).Error; err != nil {
				logger.Warnw("ensure_default_owner_failed", "error", err)
			}
		}
		return nil
	}

	username = strings.TrimSpace(username)
	if username == "" {
		username = defaultOwnerUsername
	}
	if password == "" {
		password = defaultOwnerPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := AdminCredential{
		Username:     username,
		PasswordHash: string(hash),
		Role:         roleOwner,
	}
	if err := DB.Create(&admin).Error; err != nil {
		return err
	}

	if password == defaultOwnerPassword {
		logger.Warnw("default_owner_created_with_default_password", "username", username)
		logger.Warnw("default_owner_password_change_required", "username", username)
	} else {
		logger.Warnw("default_owner_created", "username", username, "password_hidden", true)
	}
	return nil
}
