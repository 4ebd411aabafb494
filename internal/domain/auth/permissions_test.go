package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEnforcerRolePermissions(t *testing.T) {
	e, err := NewEnforcer()
	require.NoError(t, err)
	ctx := context.Background()

	check := func(role Role, perm string) bool {
		ok, err := e.HasPermission(ctx, role, perm)
		require.NoError(t, err)
		return ok
	}

	require.True(t, check(RoleEmployee, PermLeaveRequest))
	require.True(t, check(RoleEmployee, PermPayslipsRead))
	require.False(t, check(RoleEmployee, PermLeaveApprove))
	require.False(t, check(RoleEmployee, PermPayrollRun))

	require.True(t, check(RoleHR, PermPayrollRun))
	require.True(t, check(RoleHR, PermLeaveApprove))
	require.False(t, check(RoleHR, PermUsersCreate))
	require.False(t, check(RoleHR, PermAuditRead))

	require.True(t, check(RoleAdmin, PermUsersCreate))
	require.True(t, check(RoleAdmin, PermPayrollRun), "admin inherits hr")
	require.False(t, check(Role("ghost"), PermNoticesRead))
}
