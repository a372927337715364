package regularization

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/attendance-gateway/internal/domain/regularization"
	"github.com/cmlabs-hris/attendance-gateway/internal/domain/session"
	"github.com/cmlabs-hris/attendance-gateway/internal/domain/user"
	"github.com/cmlabs-hris/attendance-gateway/internal/pkg/inflight"
	"github.com/cmlabs-hris/attendance-gateway/internal/pkg/sse"
	"github.com/cmlabs-hris/attendance-gateway/internal/pkg/validator"
	"github.com/cmlabs-hris/attendance-gateway/internal/service/evaluator"
)

type Upstream interface {
	MyRegularizations(ctx context.Context, sess session.Session) ([]regularization.Request, error)
	HRMyRegularizations(ctx context.Context, sess session.Session) ([]regularization.Request, error)
	SubmitRegularization(ctx context.Context, sess session.Session, date, reason string) error

	TeamRegularizations(ctx context.Context, sess session.Session) ([]regularization.Request, error)
	HRRegularizations(ctx context.Context, sess session.Session) ([]regularization.Request, error)
	AdminRegularizations(ctx context.Context, sess session.Session) ([]regularization.Request, error)

	ActOnTeamRegularization(ctx context.Context, sess session.Session, id string, action regularization.Action) error
	ActOnRegularizationAsAdmin(ctx context.Context, sess session.Session, id string, action regularization.Action) error
}

type RegularizationServiceImpl struct {
	upstream Upstream
	guard    *inflight.Guard
	hub      *sse.Hub
}

func NewRegularizationService(upstream Upstream, guard *inflight.Guard, hub *sse.Hub) *RegularizationServiceImpl {
	return &RegularizationServiceImpl{
		upstream: upstream,
		guard:    guard,
		hub:      hub,
	}
}

var _ regularization.RegularizationService = (*RegularizationServiceImpl)(nil)

// Submit implements regularization.RegularizationService. The duplicate guard
// runs against the caller's live request list before anything is sent.
func (s *RegularizationServiceImpl) Submit(ctx context.Context, sess session.Session, req regularization.SubmitRequest) (regularization.SubmitResponse, error) {
	if !user.HasCapability(sess.Role, user.CapabilityRegularizationSubmit) {
		return regularization.SubmitResponse{}, user.ErrInsufficientPermissions
	}
	if err := req.Validate(); err != nil {
		return regularization.SubmitResponse{}, err
	}
	date, _ := validator.IsValidDate(req.Date)

	err := s.guard.Do(inflight.Key(sess.ID, "regularize:"+req.Date), func() error {
		own, err := s.own(ctx, sess)
		if err != nil {
			return fmt.Errorf("failed to load own requests: %w", err)
		}
		if err := evaluator.CheckDuplicate(own, sess.User.ID, date); err != nil {
			return err
		}
		if err := s.upstream.SubmitRegularization(ctx, sess, req.Date, req.Reason); err != nil {
			return fmt.Errorf("failed to submit regularization: %w", err)
		}
		return nil
	})
	if err != nil {
		return regularization.SubmitResponse{}, err
	}

	s.publish(map[string]string{"date": req.Date, "status": string(regularization.StatusPending)},
		approverTopics(sess.Role, sse.UserTopic(sess.User.ID))...)

	return regularization.SubmitResponse{Message: "Request submitted"}, nil
}

// MyRequests implements regularization.RegularizationService.
func (s *RegularizationServiceImpl) MyRequests(ctx context.Context, sess session.Session) ([]regularization.RequestResponse, error) {
	if !user.HasCapability(sess.Role, user.CapabilityRegularizationViewOwn) {
		return nil, user.ErrInsufficientPermissions
	}

	own, err := s.own(ctx, sess)
	if err != nil {
		return nil, fmt.Errorf("failed to load own requests: %w", err)
	}

	out := make([]regularization.RequestResponse, 0, len(own))
	for _, r := range own {
		out = append(out, regularization.ToResponse(r, evaluator.CanActOn(sess.Role, sess.User.ID, r)))
	}
	return out, nil
}

// Reviewable implements regularization.RegularizationService. can_act is
// derived per request on every call.
func (s *RegularizationServiceImpl) Reviewable(ctx context.Context, sess session.Session) (regularization.ListResponse, error) {
	requests, err := s.scope(ctx, sess)
	if err != nil {
		return regularization.ListResponse{}, err
	}
	switch sess.Role {
	case user.RoleManager:
		requests = filter(requests, func(r regularization.Request) bool {
			return r.Status == regularization.StatusPending
		})
	case user.RoleHR:
		requests = filter(requests, func(r regularization.Request) bool {
			return r.SubmittedByRole == user.RoleEmployee
		})
	}

	resp := regularization.ListResponse{Requests: make([]regularization.RequestResponse, 0, len(requests))}
	for _, r := range requests {
		resp.Requests = append(resp.Requests, regularization.ToResponse(r, evaluator.CanActOn(sess.Role, sess.User.ID, r)))
		if r.Status == regularization.StatusPending {
			resp.PendingCount++
		}
	}
	return resp, nil
}

// Act implements regularization.RegularizationService. Eligibility is checked
// against the live list, never a cached one.
func (s *RegularizationServiceImpl) Act(ctx context.Context, sess session.Session, requestID string, action regularization.Action) (regularization.ActResponse, error) {
	if !user.HasCapability(sess.Role, user.CapabilityRegularizationApprove) {
		return regularization.ActResponse{}, user.ErrInsufficientPermissions
	}
	if _, err := regularization.ParseAction(string(action)); err != nil {
		return regularization.ActResponse{}, err
	}

	var target regularization.Request
	err := s.guard.Do(inflight.Key(sess.ID, "act:"+requestID), func() error {
		requests, err := s.scope(ctx, sess)
		if err != nil {
			return err
		}

		found := false
		for _, r := range requests {
			if r.ID == requestID {
				target, found = r, true
				break
			}
		}
		if !found {
			return regularization.ErrRequestNotFound
		}
		if target.Status != regularization.StatusPending {
			return regularization.ErrAlreadyProcessed
		}
		if !evaluator.CanActOn(sess.Role, sess.User.ID, target) {
			return regularization.ErrNotPermitted
		}

		if sess.Role == user.RoleManager {
			err = s.upstream.ActOnTeamRegularization(ctx, sess, requestID, action)
		} else {
			err = s.upstream.ActOnRegularizationAsAdmin(ctx, sess, requestID, action)
		}
		if err != nil {
			return fmt.Errorf("failed to %s regularization: %w", action, err)
		}
		return nil
	})
	if err != nil {
		return regularization.ActResponse{}, err
	}

	status := regularization.StatusApproved
	message := "Request approved"
	if action == regularization.ActionReject {
		status = regularization.StatusRejected
		message = "Request rejected"
	}

	s.publish(map[string]string{"id": requestID, "date": target.Date.Format("2006-01-02"), "status": string(status)},
		approverTopics(target.SubmittedByRole, sse.UserTopic(target.SubmittedByUserID))...)

	return regularization.ActResponse{ID: requestID, Action: action, Message: message}, nil
}

// own lists the caller's own requests; HR has its own listing endpoint.
func (s *RegularizationServiceImpl) own(ctx context.Context, sess session.Session) ([]regularization.Request, error) {
	if sess.Role == user.RoleHR {
		return s.upstream.HRMyRegularizations(ctx, sess)
	}
	return s.upstream.MyRegularizations(ctx, sess)
}

// scope returns the unfiltered requests visible to the viewer: team requests
// for a manager, the company-wide list for hr and admin.
func (s *RegularizationServiceImpl) scope(ctx context.Context, sess session.Session) ([]regularization.Request, error) {
	var (
		requests []regularization.Request
		err      error
	)

	switch sess.Role {
	case user.RoleManager:
		requests, err = s.upstream.TeamRegularizations(ctx, sess)
	case user.RoleHR:
		requests, err = s.upstream.HRRegularizations(ctx, sess)
	case user.RoleAdmin:
		requests, err = s.upstream.AdminRegularizations(ctx, sess)
	default:
		return nil, user.ErrInsufficientPermissions
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load requests for review: %w", err)
	}
	return requests, nil
}

func (s *RegularizationServiceImpl) publish(data map[string]string, topics ...string) {
	if s.hub == nil {
		return
	}
	s.hub.Publish(sse.Event{Event: sse.EventRegularizationUpdated, Data: data}, topics...)
}

// approverTopics addresses the submitter plus every role that may review
// requests from submitterRole.
func approverTopics(submitterRole user.Role, topics ...string) []string {
	for _, role := range []user.Role{user.RoleManager, user.RoleHR, user.RoleAdmin} {
		if role.Outranks(submitterRole) {
			topics = append(topics, sse.RoleTopic(string(role)))
		}
	}
	return topics
}

func filter(in []regularization.Request, keep func(regularization.Request) bool) []regularization.Request {
	out := in[:0:0]
	for _, r := range in {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}
