package authz

import (
	"fmt"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupAuthzServiceTest(t *testing.T) *Service {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	svc, err := NewService(db)
	if err != nil {
		t.Fatalf("new authz service failed: %v", err)
	}
	if err := svc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("bootstrap roles failed: %v", err)
	}
	return svc
}

func TestStaffRoleGrantsAdminRoutes(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.GrantRole(7, RoleStaff); err != nil {
		t.Fatalf("grant staff failed: %v", err)
	}

	cases := []struct {
		path   string
		method string
		want   bool
	}{
		{"/api/v1/admin/orders", "GET", true},
		{"/api/v1/admin/orders/42", "delete", true},
		{"/api/v1/admin/orders/42/confirm", "POST", true},
		{"/api/v1/admin/stock-records/3", "PATCH", true},
		{"/api/v1/admin/stock-records/3", "DELETE", false},
	}
	for _, tc := range cases {
		allow, err := svc.EnforceUser(7, tc.path, tc.method)
		if err != nil {
			t.Fatalf("enforce %s %s failed: %v", tc.method, tc.path, err)
		}
		if allow != tc.want {
			t.Fatalf("%s %s: want %v got %v", tc.method, tc.path, tc.want, allow)
		}
	}
}

func TestAuditorIsReadOnly(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.GrantRole(8, RoleAuditor); err != nil {
		t.Fatalf("grant auditor failed: %v", err)
	}
	if allow, _ := svc.EnforceUser(8, "/api/v1/admin/orders/1", "GET"); !allow {
		t.Fatalf("auditor should read orders")
	}
	if allow, _ := svc.EnforceUser(8, "/api/v1/admin/orders/1", "DELETE"); allow {
		t.Fatalf("auditor must not delete orders")
	}
}

func TestIsStaff(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if ok, err := svc.IsStaff(9); err != nil || ok {
		t.Fatalf("buyer must not be staff: %v %v", ok, err)
	}
	if err := svc.GrantRole(9, RoleStaff); err != nil {
		t.Fatalf("grant staff failed: %v", err)
	}
	if ok, err := svc.IsStaff(9); err != nil || !ok {
		t.Fatalf("expected staff: %v %v", ok, err)
	}
	roles, err := svc.GetUserRoles(9)
	if err != nil {
		t.Fatalf("get roles failed: %v", err)
	}
	if len(roles) != 1 || roles[0] != "role:staff" {
		t.Fatalf("expected direct staff role, got %v", roles)
	}
	if err := svc.RevokeRoles(9); err != nil {
		t.Fatalf("revoke failed: %v", err)
	}
	if ok, _ := svc.IsStaff(9); ok {
		t.Fatalf("revoked user must not be staff")
	}
	if ok, err := svc.IsStaff(0); err != nil || ok {
		t.Fatalf("anonymous caller is never staff")
	}
}

func TestNormalizeObject(t *testing.T) {
	if got := NormalizeObject("/api/v1/admin/orders"); got != "/admin/orders" {
		t.Fatalf("unexpected object %s", got)
	}
	if got := NormalizeObject("admin"); got != "/admin" {
		t.Fatalf("unexpected object %s", got)
	}
}

func TestGrantRoleRejectsUnknownRole(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.GrantRole(5, "owner"); err == nil {
		t.Fatalf("unknown role should be rejected")
	}
	if err := svc.GrantRole(0, RoleStaff); err == nil {
		t.Fatalf("zero user id should be rejected")
	}
}

func TestBootstrapBuiltinRolesIsIdempotent(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("second bootstrap failed: %v", err)
	}
	if err := svc.GrantRole(3, RoleStaff); err != nil {
		t.Fatalf("grant staff failed: %v", err)
	}
	if err := svc.GrantRole(3, RoleStaff); err != nil {
		t.Fatalf("repeated grant should be a no-op: %v", err)
	}
	if allow, err := svc.EnforceUser(3, "/api/v1/admin/discounts/2", "PATCH"); err != nil || !allow {
		t.Fatalf("staff should patch discounts: %v %v", allow, err)
	}
	var nilSvc *Service
	if _, err := nilSvc.EnforceUser(3, "/api/v1/admin/orders", "GET"); err == nil {
		t.Fatalf("nil service should report unavailable")
	}
}
