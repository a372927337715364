package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/cmlabs-hris/attendance-gateway/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-gateway/internal/domain/dashboard"
	"github.com/cmlabs-hris/attendance-gateway/internal/domain/regularization"
	"github.com/cmlabs-hris/attendance-gateway/internal/domain/session"
	"github.com/cmlabs-hris/attendance-gateway/internal/domain/user"
	"github.com/cmlabs-hris/attendance-gateway/internal/pkg/apiclient"
	"golang.org/x/sync/errgroup"
)

type Upstream interface {
	HRSummary(ctx context.Context, sess session.Session) (apiclient.Summary, error)
	HRUsers(ctx context.Context, sess session.Session) ([]user.User, error)
	AdminUsers(ctx context.Context, sess session.Session) ([]user.User, error)
}

type DashboardServiceImpl struct {
	upstream       Upstream
	attendance     attendance.AttendanceService
	regularization regularization.RegularizationService
	cutoff         string
}

func NewDashboardService(
	upstream Upstream,
	attendanceService attendance.AttendanceService,
	regularizationService regularization.RegularizationService,
	cutoff string,
) *DashboardServiceImpl {
	return &DashboardServiceImpl{
		upstream:       upstream,
		attendance:     attendanceService,
		regularization: regularizationService,
		cutoff:         cutoff,
	}
}

var _ dashboard.DashboardService = (*DashboardServiceImpl)(nil)

// GetDashboard returns combined dashboard data using parallel goroutines.
// A failing section is left empty and reported in SectionErrors; an expired
// upstream session or a cancelled request aborts the whole build.
func (s *DashboardServiceImpl) GetDashboard(ctx context.Context, sess session.Session) (*dashboard.DashboardResponse, error) {
	caps := user.CapabilitiesFor(sess.Role)

	resp := &dashboard.DashboardResponse{
		User:         user.ToResponse(sess.User),
		Role:         string(sess.Role),
		Capabilities: caps,
		Cutoff:       s.cutoff,
	}

	var mu sync.Mutex
	sectionFailed := func(section string, err error) error {
		if isFatal(err) {
			return err
		}
		slog.Warn("dashboard section failed", "section", section, "role", sess.Role, "error", err)
		mu.Lock()
		defer mu.Unlock()
		if resp.SectionErrors == nil {
			resp.SectionErrors = make(map[string]string)
		}
		resp.SectionErrors[section] = sectionMessage(err)
		return nil
	}

	g, gCtx := errgroup.WithContext(ctx)

	if caps.CheckIn {
		t, err := s.attendance.Timeliness(ctx, sess)
		if err == nil {
			resp.Timeliness = &t
		}
	}

	// 1. Own attendance
	if caps.ViewOwnAttendance {
		g.Go(func() error {
			records, err := s.attendance.MyAttendance(gCtx, sess)
			if err != nil {
				return sectionFailed(dashboard.SectionMyAttendance, err)
			}
			resp.MyAttendance = records
			return nil
		})
	}

	// 2. Team attendance
	if caps.ViewTeamAttendance {
		g.Go(func() error {
			records, err := s.attendance.TeamAttendance(gCtx, sess)
			if err != nil {
				return sectionFailed(dashboard.SectionTeamAttendance, err)
			}
			resp.TeamAttendance = records
			return nil
		})
	}

	// 3. Own requests
	if caps.ViewOwnRegularizations {
		g.Go(func() error {
			requests, err := s.regularization.MyRequests(gCtx, sess)
			if err != nil {
				return sectionFailed(dashboard.SectionMyRegularizations, err)
			}
			resp.MyRegularizations = requests
			return nil
		})
	}

	// 4. Requests to review
	if caps.ApproveRequests {
		g.Go(func() error {
			list, err := s.regularization.Reviewable(gCtx, sess)
			if err != nil {
				return sectionFailed(dashboard.SectionReviewable, err)
			}
			resp.Reviewable = &list
			return nil
		})
	}

	// 5. User directory
	if caps.ViewAllUsers {
		g.Go(func() error {
			users, err := s.ListUsers(gCtx, sess)
			if err != nil {
				return sectionFailed(dashboard.SectionUsers, err)
			}
			resp.Users = users
			return nil
		})
	}

	// 6. Today's counters
	if caps.ViewSummary {
		g.Go(func() error {
			summary, err := s.GetSummary(gCtx, sess)
			if err != nil {
				return sectionFailed(dashboard.SectionSummary, err)
			}
			resp.Summary = summary
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return resp, nil
}

// GetSummary implements dashboard.DashboardService.
func (s *DashboardServiceImpl) GetSummary(ctx context.Context, sess session.Session) (*dashboard.SummaryResponse, error) {
	if !user.HasCapability(sess.Role, user.CapabilitySummaryView) {
		return nil, user.ErrInsufficientPermissions
	}

	summary, err := s.upstream.HRSummary(ctx, sess)
	if err != nil {
		return nil, fmt.Errorf("failed to load summary: %w", err)
	}

	return &dashboard.SummaryResponse{
		PresentToday:    summary.PresentToday,
		OnTime:          summary.OnTime,
		LateArrivals:    summary.LateArrivals,
		PendingRequests: summary.PendingRequests,
	}, nil
}

// ListUsers implements dashboard.DashboardService.
func (s *DashboardServiceImpl) ListUsers(ctx context.Context, sess session.Session) ([]user.UserResponse, error) {
	var (
		users []user.User
		err   error
	)

	switch {
	case !user.HasCapability(sess.Role, user.CapabilityUserViewAll):
		return nil, user.ErrInsufficientPermissions
	case sess.Role == user.RoleAdmin:
		users, err = s.upstream.AdminUsers(ctx, sess)
	default:
		users, err = s.upstream.HRUsers(ctx, sess)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}

	out := make([]user.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, user.ToResponse(u))
	}
	return out, nil
}

func isFatal(err error) bool {
	return errors.Is(err, apiclient.ErrUnauthorized) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

func sectionMessage(err error) string {
	var apiErr *apiclient.APIError
	switch {
	case errors.As(err, &apiErr):
		return apiErr.Message
	case errors.Is(err, apiclient.ErrTransport):
		return "Unable to reach the attendance service"
	default:
		return "Failed to load this section"
	}
}
