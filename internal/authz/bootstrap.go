package authz

import "fmt"

// 预置角色名称
const (
	RoleCouponAuditor = "coupon_auditor"
	RoleCouponTester  = "coupon_tester"
	RoleCouponEditor  = "coupon_editor"
	RoleSuperAdmin    = "super_admin"
)

// RoleSeed 预置角色定义
type RoleSeed struct {
	Role      string
	Inherits  []string
	Policies  []Policy
	Immutable bool
}

// BuiltinRoleSeeds 系统预置角色矩阵
func BuiltinRoleSeeds() []RoleSeed {
	return []RoleSeed{
		{
			Role: RoleCouponAuditor,
			Policies: []Policy{
				{Object: "/admin/coupons", Action: "GET"},
				{Object: "/admin/coupons/:id", Action: "GET"},
				{Object: "/admin/coupons/:id/rules", Action: "GET"},
				{Object: "/admin/coupons/:id/usages", Action: "GET"},
				{Object: "/admin/audit-logs", Action: "GET"},
				{Object: "/admin/authz/me", Action: "GET"},
			},
			Immutable: true,
		},
		{
			Role:     RoleCouponTester,
			Inherits: []string{RoleCouponAuditor},
			Policies: []Policy{
				{Object: "/admin/coupons/quick-test", Action: "POST"},
				{Object: "/admin/coupons/:id/quick-test", Action: "POST"},
			},
			Immutable: true,
		},
		{
			Role:     RoleCouponEditor,
			Inherits: []string{RoleCouponTester},
			Policies: []Policy{
				{Object: "/admin/coupons", Action: "POST"},
				{Object: "/admin/coupons/:id", Action: "PUT"},
				{Object: "/admin/coupons/:id/active", Action: "PATCH"},
				{Object: "/admin/coupons/:id/rules", Action: "PUT"},
			},
			Immutable: true,
		},
		{
			Role: RoleSuperAdmin,
			Policies: []Policy{
				{Object: "/admin/*", Action: "*"},
			},
			Immutable: true,
		},
	}
}

// BootstrapBuiltinRoles 初始化预置角色与默认策略，重复执行不会产生重复策略
func (s *Service) BootstrapBuiltinRoles() error {
	if !s.available() {
		return ErrUnavailable
	}

	for _, seed := range BuiltinRoleSeeds() {
		role, err := s.EnsureRole(seed.Role)
		if err != nil {
			return err
		}

		for _, parent := range seed.Inherits {
			parentRole, err := s.EnsureRole(parent)
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
