package authz

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/casbin/casbin/v3"
	"github.com/casbin/casbin/v3/model"
	"github.com/casbin/casbin/v3/util"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"gorm.io/gorm"
)

const (
	apiV1Prefix     = "/api/v1"
	casbinTableName = "casbin_rule"
	rolePrefix      = "role:"
)

// rbacModel 主体为 user:<id>，经 g 继承角色；资源为去掉 /api/v1 的路由模板
const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && keyMatch2(r.obj, p.obj) && (r.act == p.act || p.act == "*")
`

var errUnavailable = errors.New("authz service unavailable")

// Service 员工权限服务，员工即持有任一内置角色的用户
type Service struct {
	enforcer *casbin.SyncedEnforcer
}

// NewService 基于 gorm 适配器加载策略
func NewService(db *gorm.DB) (*Service, error) {
	if db == nil {
		return nil, errors.New("authz db is nil")
	}
	adapter, err := gormadapter.NewAdapterByDBUseTableName(db, "", casbinTableName)
	if err != nil {
		return nil, fmt.Errorf("create authz adapter failed: %w", err)
	}
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, fmt.Errorf("load authz model failed: %w", err)
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, fmt.Errorf("init authz enforcer failed: %w", err)
	}
	enforcer.AddFunction("keyMatch2", util.KeyMatch2Func)
	enforcer.EnableAutoSave(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, fmt.Errorf("load authz policy failed: %w", err)
	}
	return &Service{enforcer: enforcer}, nil
}

func (s *Service) ready() error {
	if s == nil || s.enforcer == nil {
		return errUnavailable
	}
	return nil
}

// EnforceUser 判断用户能否以 act 访问路由 obj
func (s *Service) EnforceUser(userID uint, obj, act string) (bool, error) {
	if err := s.ready(); err != nil {
		return false, err
	}
	if userID == 0 {
		return false, nil
	}
	return s.enforcer.Enforce(SubjectForUser(userID), NormalizeObject(obj), strings.ToUpper(strings.TrimSpace(act)))
}

// IsStaff 用户是否持有内置角色
func (s *Service) IsStaff(userID uint) (bool, error) {
	if userID == 0 {
		return false, nil
	}
	roles, err := s.GetUserRoles(userID)
	if err != nil {
		return false, err
	}
	return len(roles) > 0, nil
}

// GrantRole 为用户授予内置角色，重复授予无副作用
func (s *Service) GrantRole(userID uint, role string) error {
	if err := s.ready(); err != nil {
		return err
	}
	if userID == 0 {
		return errors.New("user id is required")
	}
	if !isBuiltinRole(role) {
		return fmt.Errorf("unknown role %q", role)
	}
	if _, err := s.enforcer.AddGroupingPolicy(SubjectForUser(userID), roleSubject(role)); err != nil {
		return fmt.Errorf("assign user role failed: %w", err)
	}
	return nil
}

// RevokeRoles 移除用户全部角色
func (s *Service) RevokeRoles(userID uint) error {
	if err := s.ready(); err != nil {
		return err
	}
	if userID == 0 {
		return errors.New("user id is required")
	}
	if _, err := s.enforcer.DeleteRolesForUser(SubjectForUser(userID)); err != nil {
		return fmt.Errorf("clear user roles failed: %w", err)
	}
	return nil
}

// GetUserRoles 用户直接持有的角色，形如 role:staff
func (s *Service) GetUserRoles(userID uint) ([]string, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if userID == 0 {
		return nil, errors.New("user id is required")
	}
	roles, err := s.enforcer.GetRolesForUser(SubjectForUser(userID))
	if err != nil {
		return nil, fmt.Errorf("get user roles failed: %w", err)
	}
	roles = slices.DeleteFunc(roles, func(role string) bool {
		return !isBuiltinRole(strings.TrimPrefix(role, rolePrefix))
	})
	slices.Sort(roles)
	return roles, nil
}

// SubjectForUser 用户主体标识
func SubjectForUser(userID uint) string {
	return fmt.Sprintf("user:%d", userID)
}

func roleSubject(role string) string {
	return rolePrefix + strings.TrimPrefix(strings.TrimSpace(role), rolePrefix)
}

// NormalizeObject 路由模板去掉 /api/v1 前缀
func NormalizeObject(object string) string {
	normalized := strings.TrimSpace(object)
	if !strings.HasPrefix(normalized, "/") {
		normalized = "/" + normalized
	}
	if normalized == apiV1Prefix {
		return "/"
	}
	return strings.TrimPrefix(normalized, apiV1Prefix)
}
