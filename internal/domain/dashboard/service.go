package dashboard

import (
	"context"

	"github.com/cmlabs-hris/attendance-gateway/internal/domain/session"
	"github.com/cmlabs-hris/attendance-gateway/internal/domain/user"
)

// DashboardService composes the per-role dashboard and its directory/summary views
type DashboardService interface {
	// GetDashboard returns every section the caller's role is entitled to, fetched in parallel
	GetDashboard(ctx context.Context, sess session.Session) (*DashboardResponse, error)

	// GetSummary returns today's organisation-wide counters (hr)
	GetSummary(ctx context.Context, sess session.Session) (*SummaryResponse, error)

	// ListUsers returns the user directory (hr/admin)
	ListUsers(ctx context.Context, sess session.Session) ([]user.UserResponse, error)
}
