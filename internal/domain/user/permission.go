package user

type Capability string

const (
	// Own attendance
	CapabilityCheckIn           Capability = "attendance.check_in"
	CapabilityAttendanceViewOwn Capability = "attendance.view_own"

	// Wider attendance views
	CapabilityAttendanceViewTeam Capability = "attendance.view_team"
	CapabilityAttendanceViewAll  Capability = "attendance.view_all"

	// Regularization
	CapabilityRegularizationSubmit   Capability = "regularization.submit"
	CapabilityRegularizationViewOwn  Capability = "regularization.view_own"
	CapabilityRegularizationViewTeam Capability = "regularization.view_team"
	CapabilityRegularizationViewAll  Capability = "regularization.view_all"
	CapabilityRegularizationApprove  Capability = "regularization.approve"

	// Directory and reports
	CapabilityUserViewAll Capability = "user.view_all"
	CapabilitySummaryView Capability = "summary.view"
)

// RoleCapabilities maps roles to the dashboard sections and actions they get.
var RoleCapabilities = map[Role][]Capability{
	RoleEmployee: {
		CapabilityCheckIn,
		CapabilityAttendanceViewOwn,
		CapabilityRegularizationSubmit,
		CapabilityRegularizationViewOwn,
	},
	RoleManager: {
		CapabilityCheckIn,
		CapabilityAttendanceViewOwn,
		CapabilityRegularizationSubmit,
		CapabilityRegularizationViewOwn,
		CapabilityAttendanceViewTeam,
		CapabilityRegularizationViewTeam,
		CapabilityRegularizationApprove,
	},
	RoleHR: {
		CapabilityCheckIn,
		CapabilityAttendanceViewOwn,
		CapabilityRegularizationSubmit,
		CapabilityRegularizationViewOwn,
		CapabilityAttendanceViewAll,
		CapabilityRegularizationViewAll,
		CapabilityRegularizationApprove,
		CapabilityUserViewAll,
		CapabilitySummaryView,
	},
	RoleAdmin: {
		// Admin oversees, never checks in
		CapabilityAttendanceViewAll,
		CapabilityRegularizationViewAll,
		CapabilityRegularizationApprove,
		CapabilityUserViewAll,
	},
}

// HasCapability checks if a role has a specific capability
func HasCapability(role Role, capability Capability) bool {
	capabilities, exists := RoleCapabilities[role]
	if !exists {
		return false
	}

	for _, c := range capabilities {
		if c == capability {
			return true
		}
	}

	return false
}

// Capabilities is the flag set the dashboard is rendered from.
type Capabilities struct {
	CheckIn                bool `json:"check_in"`
	ViewOwnAttendance      bool `json:"view_own_attendance"`
	ViewTeamAttendance     bool `json:"view_team_attendance"`
	ViewAllAttendance      bool `json:"view_all_attendance"`
	SubmitRegularization   bool `json:"submit_regularization"`
	ViewOwnRegularizations bool `json:"view_own_regularizations"`
	ViewTeamRequests       bool `json:"view_team_requests"`
	ViewAllRequests        bool `json:"view_all_requests"`
	ApproveRequests        bool `json:"approve_requests"`
	ViewAllUsers           bool `json:"view_all_users"`
	ViewSummary            bool `json:"view_summary"`
}

func CapabilitiesFor(role Role) Capabilities {
	return Capabilities{
		CheckIn:                HasCapability(role, CapabilityCheckIn),
		ViewOwnAttendance:      HasCapability(role, CapabilityAttendanceViewOwn),
		ViewTeamAttendance:     HasCapability(role, CapabilityAttendanceViewTeam),
		ViewAllAttendance:      HasCapability(role, CapabilityAttendanceViewAll),
		SubmitRegularization:   HasCapability(role, CapabilityRegularizationSubmit),
		ViewOwnRegularizations: HasCapability(role, CapabilityRegularizationViewOwn),
		ViewTeamRequests:       HasCapability(role, CapabilityRegularizationViewTeam),
		ViewAllRequests:        HasCapability(role, CapabilityRegularizationViewAll),
		ApproveRequests:        HasCapability(role, CapabilityRegularizationApprove),
		ViewAllUsers:           HasCapability(role, CapabilityUserViewAll),
		ViewSummary:            HasCapability(role, CapabilitySummaryView),
	}
}
