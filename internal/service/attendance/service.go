package attendance

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-gateway/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-gateway/internal/domain/session"
	"github.com/cmlabs-hris/attendance-gateway/internal/domain/user"
	"github.com/cmlabs-hris/attendance-gateway/internal/pkg/apiclient"
	"github.com/cmlabs-hris/attendance-gateway/internal/pkg/inflight"
	"github.com/cmlabs-hris/attendance-gateway/internal/pkg/sse"
	"github.com/cmlabs-hris/attendance-gateway/internal/pkg/validator"
	"github.com/cmlabs-hris/attendance-gateway/internal/service/evaluator"
)

const lateCheckInMessage = "You are checking in late! You may need to submit a regularization request."

type Upstream interface {
	CheckIn(ctx context.Context, sess session.Session) (string, error)
	CheckOut(ctx context.Context, sess session.Session) (string, error)
	MyAttendance(ctx context.Context, sess session.Session) ([]attendance.Record, error)
	TeamAttendance(ctx context.Context, sess session.Session) ([]attendance.Record, error)
	HRAttendance(ctx context.Context, sess session.Session, q apiclient.AttendanceQuery) ([]attendance.Record, error)
	AdminAttendance(ctx context.Context, sess session.Session, userID, date string) ([]attendance.Record, error)
}

type AttendanceServiceImpl struct {
	upstream Upstream
	rules    evaluator.Rules
	guard    *inflight.Guard
	hub      *sse.Hub
	now      func() time.Time
}

func NewAttendanceService(upstream Upstream, rules evaluator.Rules, guard *inflight.Guard, hub *sse.Hub) *AttendanceServiceImpl {
	return &AttendanceServiceImpl{
		upstream: upstream,
		rules:    rules,
		guard:    guard,
		hub:      hub,
		now:      time.Now,
	}
}

var _ attendance.AttendanceService = (*AttendanceServiceImpl)(nil)

// Timeliness implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) Timeliness(ctx context.Context, sess session.Session) (attendance.TimelinessResponse, error) {
	if !user.HasCapability(sess.Role, user.CapabilityCheckIn) {
		return attendance.TimelinessResponse{}, user.ErrInsufficientPermissions
	}
	return s.timeliness(), nil
}

func (s *AttendanceServiceImpl) timeliness() attendance.TimelinessResponse {
	now := s.now()
	t := s.rules.Timeliness(now)

	resp := attendance.TimelinessResponse{
		IsLate:   t.IsLate,
		Cutoff:   s.rules.Cutoff.String(),
		Timezone: s.rules.Cutoff.Location.String(),
		Now:      now.In(s.rules.Cutoff.Location).Format(time.RFC3339),
	}
	if t.IsLate {
		resp.Message = lateCheckInMessage
	}
	return resp
}

// CheckIn implements attendance.AttendanceService. An advisory-late check-in
// needs confirm_late; the server remains the authority on is_late.
func (s *AttendanceServiceImpl) CheckIn(ctx context.Context, sess session.Session, req attendance.CheckInRequest) (attendance.ActionResponse, error) {
	if !user.HasCapability(sess.Role, user.CapabilityCheckIn) {
		return attendance.ActionResponse{}, user.ErrInsufficientPermissions
	}

	late := s.rules.Timeliness(s.now()).IsLate
	if late && !req.ConfirmLate {
		return attendance.ActionResponse{}, attendance.ErrLateConfirmationRequired
	}

	var message string
	err := s.guard.Do(inflight.Key(sess.ID, "check_in"), func() error {
		var err error
		message, err = s.upstream.CheckIn(ctx, sess)
		return err
	})
	if err != nil {
		return attendance.ActionResponse{}, fmt.Errorf("failed to check in: %w", err)
	}

	if message == "" {
		message = "Checked in successfully"
	}
	s.publish(sess)

	return attendance.ActionResponse{Message: message, AdvisoryLate: late}, nil
}

// CheckOut implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) CheckOut(ctx context.Context, sess session.Session) (attendance.ActionResponse, error) {
	if !user.HasCapability(sess.Role, user.CapabilityCheckIn) {
		return attendance.ActionResponse{}, user.ErrInsufficientPermissions
	}

	var message string
	err := s.guard.Do(inflight.Key(sess.ID, "check_out"), func() error {
		var err error
		message, err = s.upstream.CheckOut(ctx, sess)
		return err
	})
	if err != nil {
		return attendance.ActionResponse{}, fmt.Errorf("failed to check out: %w", err)
	}

	if message == "" {
		message = "Checked out successfully"
	}
	s.publish(sess)

	return attendance.ActionResponse{Message: message}, nil
}

// MyAttendance implements attendance.AttendanceService. HR reads its own
// records through the name-keyed HR lookup.
func (s *AttendanceServiceImpl) MyAttendance(ctx context.Context, sess session.Session) ([]attendance.RecordResponse, error) {
	if !user.HasCapability(sess.Role, user.CapabilityAttendanceViewOwn) {
		return nil, user.ErrInsufficientPermissions
	}

	var (
		records []attendance.Record
		err     error
	)
	if sess.Role == user.RoleHR {
		records, err = s.upstream.HRAttendance(ctx, sess, apiclient.AttendanceQuery{Username: sess.Username})
	} else {
		records, err = s.upstream.MyAttendance(ctx, sess)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load own attendance: %w", err)
	}

	return s.rules.Present(records), nil
}

// TeamAttendance implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) TeamAttendance(ctx context.Context, sess session.Session) ([]attendance.RecordResponse, error) {
	if !user.HasCapability(sess.Role, user.CapabilityAttendanceViewTeam) {
		return nil, user.ErrInsufficientPermissions
	}

	records, err := s.upstream.TeamAttendance(ctx, sess)
	if err != nil {
		return nil, fmt.Errorf("failed to load team attendance: %w", err)
	}
	return s.rules.Present(records), nil
}

// Lookup implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) Lookup(ctx context.Context, sess session.Session, filter attendance.LookupFilter) ([]attendance.RecordResponse, error) {
	if !user.HasCapability(sess.Role, user.CapabilityAttendanceViewAll) {
		return nil, user.ErrInsufficientPermissions
	}
	filter.Resolve()
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	var (
		records []attendance.Record
		err     error
	)
	switch sess.Role {
	case user.RoleHR:
		records, err = s.upstream.HRAttendance(ctx, sess, apiclient.AttendanceQuery{
			UserID:   deref(filter.UserID),
			Username: deref(filter.Username),
			Date:     deref(filter.Date),
		})
	case user.RoleAdmin:
		if deref(filter.UserID) == "" || deref(filter.Date) == "" {
			return nil, validator.ValidationErrors{{
				Field:   "user_id",
				Message: "user_id and date are both required",
			}}
		}
		records, err = s.upstream.AdminAttendance(ctx, sess, *filter.UserID, *filter.Date)
	default:
		return nil, user.ErrInsufficientPermissions
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up attendance: %w", err)
	}

	return s.rules.Present(records), nil
}

func (s *AttendanceServiceImpl) publish(sess session.Session) {
	if s.hub == nil {
		return
	}
	s.hub.Publish(sse.Event{
		Event: sse.EventAttendanceUpdated,
		Data:  map[string]string{"user_id": sess.User.ID},
	}, sse.UserTopic(sess.User.ID), sse.RoleTopic(string(user.RoleManager)), sse.RoleTopic(string(user.RoleHR)), sse.RoleTopic(string(user.RoleAdmin)))
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
