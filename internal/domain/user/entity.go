package user

import "strings"

type Role string

const (
	RoleEmployee Role = "employee" // Regular employee
	RoleManager  Role = "manager"  // Approves team requests
	RoleHR       Role = "hr"       // Organisation-wide attendance view
	RoleAdmin    Role = "admin"    // Full access, never submits requests
)

// ParseRole normalises a role string coming from the upstream API.
func ParseRole(s string) (Role, bool) {
	role := Role(strings.ToLower(strings.TrimSpace(s)))
	return role, role.IsValid()
}

func (r Role) IsValid() bool {
	switch r {
	case RoleEmployee, RoleManager, RoleHR, RoleAdmin:
		return true
	}
	return false
}

// CanSubmitRegularization reports whether requests of this role may exist at all.
func (r Role) CanSubmitRegularization() bool {
	return r == RoleEmployee || r == RoleManager || r == RoleHR
}

// Outranks implements the approval hierarchy: employee requests are
// approvable by manager, hr or admin; manager and hr requests only by hr or admin.
func (r Role) Outranks(submitter Role) bool {
	switch submitter {
	case RoleEmployee:
		return r == RoleManager || r == RoleHR || r == RoleAdmin
	case RoleManager, RoleHR:
		return r == RoleHR || r == RoleAdmin
	default:
		return false
	}
}

// DashboardPath is the browser route each role lands on after login.
func (r Role) DashboardPath() string {
	switch r {
	case RoleEmployee:
		return "/employee-dashboard"
	case RoleManager:
		return "/manager-dashboard"
	case RoleHR:
		return "/hr-dashboard"
	case RoleAdmin:
		return "/admin-dashboard"
	default:
		return "/"
	}
}

// User is the profile returned by the upstream login endpoint.
type User struct {
	ID        string
	FullName  string
	Email     string
	Role      Role
	ManagerID *string
}

// IsApprover checks if user can act on someone else's regularization
func (u *User) IsApprover() bool {
	return HasCapability(u.Role, CapabilityRegularizationApprove)
}
