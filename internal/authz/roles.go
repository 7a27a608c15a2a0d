package authz

import "fmt"

const (
	// RoleStaff 员工，可确认、取消、删除订单并维护库存
	RoleStaff = "staff"
	// RoleAuditor 只读
	RoleAuditor = "auditor"
)

type rule struct {
	object string
	action string
}

// builtinRoles 角色策略矩阵；staff 继承 auditor
var builtinRoles = []struct {
	name     string
	inherits string
	rules    []rule
}{
	{
		name:  RoleAuditor,
		rules: []rule{{"/admin/*", "GET"}},
	},
	{
		name:     RoleStaff,
		inherits: RoleAuditor,
		rules: []rule{
			{"/admin/orders/:id", "*"},
			{"/admin/orders/:id/confirm", "POST"},
			{"/admin/orders/:id/cancel", "POST"},
			{"/admin/stock-records/:id", "PATCH"},
			{"/admin/categories/:id", "PATCH"},
			{"/admin/discounts/:id", "PATCH"},
			{"/admin/staff", "POST"},
		},
	},
}

func isBuiltinRole(role string) bool {
	for _, r := range builtinRoles {
		if r.name == role {
			return true
		}
	}
	return false
}

// BootstrapBuiltinRoles 写入内置角色策略，可重复执行
func (s *Service) BootstrapBuiltinRoles() error {
	if err := s.ready(); err != nil {
		return err
	}
	for _, role := range builtinRoles {
		subject := roleSubject(role.name)
		if role.inherits != "" {
			if _, err := s.enforcer.AddGroupingPolicy(subject, roleSubject(role.inherits)); err != nil {
				return fmt.Errorf("link role %s failed: %w", role.name, err)
			}
		}
		for _, r := range role.rules {
			if _, err := s.enforcer.AddPolicy(subject, NormalizeObject(r.object), r.action); err != nil {
				return fmt.Errorf("add policy for %s failed: %w", role.name, err)
			}
		}
	}
	return nil
}
