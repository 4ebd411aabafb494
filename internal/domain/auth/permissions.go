package auth

import (
	"context"
	"fmt"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

const (
	PermEmployeesRead  = "employees.read"
	PermEmployeesWrite = "employees.write"
	PermPayrollRead    = "payroll.read"
	PermPayrollWrite   = "payroll.write"
	PermPayrollRun     = "payroll.run"
	PermPayslipsRead   = "payslips.read"
	PermLeaveRequest   = "leave.request"
	PermLeaveRead      = "leave.read"
	PermLeaveApprove   = "leave.approve"
	PermNoticesRead    = "notices.read"
	PermNoticesWrite   = "notices.write"
	PermPoliciesRead   = "policies.read"
	PermPoliciesWrite  = "policies.write"
	PermUsersCreate    = "users.create"
	PermAdminStats     = "admin.stats"
	PermAuditRead      = "audit.read"
)

// RolePermissions lists what each role grants directly. Admin additionally
// inherits everything HR can do.
var RolePermissions = map[Role][]string{
	RoleEmployee: {
		PermPayslipsRead,
		PermLeaveRequest,
		PermNoticesRead,
		PermPoliciesRead,
	},
	RoleHR: {
		PermEmployeesRead,
		PermEmployeesWrite,
		PermPayrollRead,
		PermPayrollWrite,
		PermPayrollRun,
		PermPayslipsRead,
		PermLeaveRequest,
		PermLeaveRead,
		PermLeaveApprove,
		PermNoticesRead,
		PermNoticesWrite,
		PermPoliciesRead,
		PermPoliciesWrite,
	},
	RoleAdmin: {
		PermUsersCreate,
		PermAdminStats,
		PermAuditRead,
	},
}

var roleInherits = map[Role][]Role{
	RoleAdmin: {RoleHR},
}

const rbacModel = `
[request_definition]
r = sub, obj

[policy_definition]
p = sub, obj

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && r.obj == p.obj
`

// Enforcer answers permission checks from an in-memory casbin policy built
// from RolePermissions.
type Enforcer struct {
	enforcer *casbin.Enforcer
}

func NewEnforcer() (*Enforcer, error) {
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, fmt.Errorf("load rbac model: %w", err)
	}
	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("create enforcer: %w", err)
	}
	for role, perms := range RolePermissions {
		for _, perm := range perms {
			if _, err := e.AddPolicy(subject(role), perm); err != nil {
				return nil, fmt.Errorf("add policy %s %s: %w", role, perm, err)
			}
		}
	}
	for role, parents := range roleInherits {
		for _, parent := range parents {
			if _, err := e.AddGroupingPolicy(subject(role), subject(parent)); err != nil {
				return nil, fmt.Errorf("add inheritance %s -> %s: %w", role, parent, err)
			}
		}
	}
	return &Enforcer{enforcer: e}, nil
}

func (e *Enforcer) HasPermission(_ context.Context, role Role, permission string) (bool, error) {
	return e.enforcer.Enforce(subject(role), permission)
}

func subject(role Role) string {
	return "role:" + string(role)
}
