package attendance

import (
	"context"

	"github.com/cmlabs-hris/attendance-gateway/internal/domain/session"
)

// AttendanceService defines the check-in/check-out and attendance views offered to the browser
type AttendanceService interface {
	// Timeliness previews whether checking in now would be late (advisory)
	Timeliness(ctx context.Context, sess session.Session) (TimelinessResponse, error)

	// CheckIn records a check-in upstream, gated by the advisory late confirmation
	CheckIn(ctx context.Context, sess session.Session, req CheckInRequest) (ActionResponse, error)

	// CheckOut records a check-out upstream
	CheckOut(ctx context.Context, sess session.Session) (ActionResponse, error)

	// MyAttendance returns the caller's own records, classified
	MyAttendance(ctx context.Context, sess session.Session) ([]RecordResponse, error)

	// TeamAttendance returns the manager's team records, classified
	TeamAttendance(ctx context.Context, sess session.Session) ([]RecordResponse, error)

	// Lookup returns records of any user (hr/admin)
	Lookup(ctx context.Context, sess session.Session, filter LookupFilter) ([]RecordResponse, error)
}
