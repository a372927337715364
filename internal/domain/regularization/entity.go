package regularization

import (
	"time"

	"github.com/cmlabs-hris/attendance-gateway/internal/domain/user"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
	// StatusUnknown stands in for any status string the gateway does not
	// recognise. It is never actionable.
	StatusUnknown Status = "unknown"
)

func ParseStatus(s string) Status {
	switch Status(s) {
	case StatusPending, StatusApproved, StatusRejected:
		return Status(s)
	default:
		return StatusUnknown
	}
}

// Blocks reports whether a request in this status prevents another request
// for the same date. Unknown statuses block.
func (s Status) Blocks() bool {
	return s != StatusRejected
}

type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
)

func ParseAction(s string) (Action, error) {
	switch Action(s) {
	case ActionApprove, ActionReject:
		return Action(s), nil
	}
	return "", ErrInvalidAction
}

// Request is one regularization request as known to the upstream API.
type Request struct {
	ID                string
	SubmittedByUserID string
	UserName          string
	Date              time.Time
	Reason            string
	Status            Status
	SubmittedByRole   user.Role
	ApprovedByUserID  *string
	ApprovedByName    *string
	CreatedAt         *time.Time
}

// SameDate compares calendar dates only.
func SameDate(a, b time.Time) bool {
	return a.Format("2006-01-02") == b.Format("2006-01-02")
}
