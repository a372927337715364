package regularization

import (
	"context"

	"github.com/cmlabs-hris/attendance-gateway/internal/domain/session"
)

type RegularizationService interface {
	// Submit files a request for the caller after the duplicate guard passes
	Submit(ctx context.Context, sess session.Session, req SubmitRequest) (SubmitResponse, error)

	// MyRequests lists the caller's own requests
	MyRequests(ctx context.Context, sess session.Session) ([]RequestResponse, error)

	// Reviewable lists the requests the caller's role may review
	Reviewable(ctx context.Context, sess session.Session) (ListResponse, error)

	// Act approves or rejects a request, re-checking eligibility first
	Act(ctx context.Context, sess session.Session, requestID string, action Action) (ActResponse, error)
}
