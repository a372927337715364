package dashboard

import (
	"github.com/cmlabs-hris/attendance-gateway/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-gateway/internal/domain/regularization"
	"github.com/cmlabs-hris/attendance-gateway/internal/domain/user"
)

// Section names, used as keys of DashboardResponse.SectionErrors.
const (
	SectionMyAttendance      = "my_attendance"
	SectionTeamAttendance    = "team_attendance"
	SectionMyRegularizations = "my_regularizations"
	SectionReviewable        = "reviewable_requests"
	SectionUsers             = "users"
	SectionSummary           = "summary"
)

// DashboardResponse is the single role-parameterized dashboard. Sections the
// role has no capability for are omitted.
type DashboardResponse struct {
	User         user.UserResponse `json:"user"`
	Role         string            `json:"role"`
	Capabilities user.Capabilities `json:"capabilities"`
	Cutoff       string            `json:"cutoff"`

	Timeliness        *attendance.TimelinessResponse   `json:"timeliness,omitempty"`
	MyAttendance      []attendance.RecordResponse      `json:"my_attendance,omitempty"`
	TeamAttendance    []attendance.RecordResponse      `json:"team_attendance,omitempty"`
	MyRegularizations []regularization.RequestResponse `json:"my_regularizations,omitempty"`
	Reviewable        *regularization.ListResponse     `json:"reviewable_requests,omitempty"`
	Users             []user.UserResponse              `json:"users,omitempty"`
	Summary           *SummaryResponse                 `json:"summary,omitempty"`

	// SectionErrors holds a message per section that failed to load.
	SectionErrors map[string]string `json:"section_errors,omitempty"`
}

// SummaryResponse is the HR "today" tile row.
type SummaryResponse struct {
	PresentToday    int `json:"present_today"`
	OnTime          int `json:"on_time"`
	LateArrivals    int `json:"late_arrivals"`
	PendingRequests int `json:"pending_requests"`
}
