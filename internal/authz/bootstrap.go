package authz

import (
	"fmt"

	"github.com/streamvault/internal/constants"
)

// RoleSeed 预置角色定义
type RoleSeed struct {
	Role     string
	Inherits []string
	Policies []Policy
}

// BuiltinRoleSeeds 系统预置角色矩阵
// owner 继承 admin 的全部权限，并独占管理员账号管理与权限目录
func BuiltinRoleSeeds() []RoleSeed {
	return []RoleSeed{
		{
			Role: constants.AdminRoleAdmin,
			Policies: []Policy{
				{Object: "/admin/me", Action: "*"},
				{Object: "/admin/me/*", Action: "*"},
				{Object: "/admin/stats", Action: "GET"},
				{Object: "/admin/platforms", Action: "GET"},
				{Object: "/admin/credentials", Action: "*"},
				{Object: "/admin/credentials/*", Action: "*"},
				{Object: "/admin/keys", Action: "*"},
				{Object: "/admin/keys/*", Action: "*"},
				{Object: "/admin/giveaways", Action: "*"},
				{Object: "/admin/giveaways/*", Action: "*"},
				{Object: "/admin/users", Action: "GET"},
				{Object: "/admin/users/*", Action: "GET"},
				{Object: "/admin/bans", Action: "*"},
				{Object: "/admin/bans/*", Action: "*"},
				{Object: "/admin/broadcast", Action: "POST"},
			},
		},
		{
			Role:     constants.AdminRoleOwner,
			Inherits: []string{constants.AdminRoleAdmin},
			Policies: []Policy{
				{Object: "/admin/admins", Action: "*"},
				{Object: "/admin/admins/*", Action: "*"},
				{Object: "/admin/permissions", Action: "GET"},
			},
		},
	}
}

// BootstrapBuiltinRoles 初始化预置角色与默认策略，重复执行无副作用
func (s *Service) BootstrapBuiltinRoles() error {
	if s == nil || s.enforcer == nil {
		return ErrUnavailable
	}

	for _, seed := range BuiltinRoleSeeds() {
		role, err := NormalizeRole(seed.Role)
		if err != nil {
			return err
		}

		for _, parent := range seed.Inherits {
			parentRole, err := NormalizeRole(parent)
			if err != nil {
				return err
			}
			if _, err := s.enforcer.AddNamedGroupingPolicy("g", role, parentRole); err != nil {
				return fmt.Errorf("link role inheritance failed: %w", err)
			}
		}

		for _, policy := range seed.Policies {
			action := NormalizeAction(policy.Action)
			if action == "" {
				return fmt.Errorf("builtin policy action is required")
			}
			if _, err := s.enforcer.AddPolicy(role, NormalizeObject(policy.Object), action); err != nil {
				return fmt.Errorf("add builtin policy failed: %w", err)
			}
		}
	}
	return nil
}
