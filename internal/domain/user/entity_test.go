package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRole(t *testing.T) {
	cases := []struct {
		input string
		want  Role
		ok    bool
	}{
		{"employee", RoleEmployee, true},
		{"Manager", RoleManager, true},
		{" HR ", RoleHR, true},
		{"admin", RoleAdmin, true},
		{"owner", Role("owner"), false},
		{"", Role(""), false},
	}
	for _, c := range cases {
		got, ok := ParseRole(c.input)
		assert.Equal(t, c.want, got, "ParseRole(%q)", c.input)
		assert.Equal(t, c.ok, ok, "ParseRole(%q) ok", c.input)
	}
}

func TestRole_Outranks(t *testing.T) {
	assert.True(t, RoleManager.Outranks(RoleEmployee))
	assert.True(t, RoleHR.Outranks(RoleEmployee))
	assert.True(t, RoleAdmin.Outranks(RoleEmployee))
	assert.False(t, RoleEmployee.Outranks(RoleEmployee))

	for _, submitter := range []Role{RoleManager, RoleHR} {
		assert.False(t, RoleEmployee.Outranks(submitter), "employee over %s", submitter)
		assert.False(t, RoleManager.Outranks(submitter), "manager over %s", submitter)
		assert.True(t, RoleHR.Outranks(submitter), "hr over %s", submitter)
		assert.True(t, RoleAdmin.Outranks(submitter), "admin over %s", submitter)
	}

	assert.False(t, RoleAdmin.Outranks(RoleAdmin))
}

func TestCapabilitiesFor(t *testing.T) {
	employee := CapabilitiesFor(RoleEmployee)
	assert.True(t, employee.CheckIn)
	assert.True(t, employee.SubmitRegularization)
	assert.False(t, employee.ApproveRequests)
	assert.False(t, employee.ViewAllUsers)

	manager := CapabilitiesFor(RoleManager)
	assert.True(t, manager.ViewTeamAttendance)
	assert.True(t, manager.ViewTeamRequests)
	assert.True(t, manager.ApproveRequests)
	assert.False(t, manager.ViewSummary)

	hr := CapabilitiesFor(RoleHR)
	assert.True(t, hr.CheckIn)
	assert.True(t, hr.ViewSummary)
	assert.True(t, hr.ViewAllRequests)
	assert.True(t, hr.ViewAllUsers)

	admin := CapabilitiesFor(RoleAdmin)
	assert.False(t, admin.CheckIn)
	assert.False(t, admin.SubmitRegularization)
	assert.True(t, admin.ApproveRequests)
	assert.True(t, admin.ViewAllAttendance)

	assert.Equal(t, Capabilities{}, CapabilitiesFor(Role("owner")))
}

func TestRole_DashboardPath(t *testing.T) {
	assert.Equal(t, "/employee-dashboard", RoleEmployee.DashboardPath())
	assert.Equal(t, "/manager-dashboard", RoleManager.DashboardPath())
	assert.Equal(t, "/hr-dashboard", RoleHR.DashboardPath())
	assert.Equal(t, "/admin-dashboard", RoleAdmin.DashboardPath())
	assert.Equal(t, "/", Role("x").DashboardPath())
}
