// Package evaluator holds the attendance business rules shared by every
// dashboard: compliance classification, approval eligibility, advisory
// lateness and the duplicate-submission guard. Everything here is pure.
package evaluator

import (
	"time"

	"github.com/cmlabs-hris/attendance-gateway/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-gateway/internal/domain/regularization"
	"github.com/cmlabs-hris/attendance-gateway/internal/domain/user"
)

const DefaultMinimumDailyHours = 9.0

// Classify derives the compliance status of one record. First match wins and
// the hours comparison is inclusive.
func Classify(r attendance.Record, minimumDailyHours float64) attendance.ComplianceStatus {
	enough := r.TotalHours >= minimumDailyHours

	switch {
	case !r.IsLate && enough:
		return attendance.ComplianceCompliant
	case r.IsLate && enough && r.IsRegularized:
		return attendance.ComplianceRegularized
	default:
		return attendance.ComplianceInsufficientHours
	}
}

// CanActOn reports whether the viewer may approve or reject the request. A
// request with no known submitter is never actionable.
func CanActOn(viewerRole user.Role, viewerUserID string, req regularization.Request) bool {
	if req.Status != regularization.StatusPending {
		return false
	}
	if req.SubmittedByUserID == "" || req.SubmittedByUserID == viewerUserID {
		return false
	}
	return viewerRole.Outranks(req.SubmittedByRole)
}

// EvaluateCheckInTimeliness compares now against the cutoff on the same local
// day. Strictly after the cutoff is late. The result is advisory and never
// replaces a server-supplied is_late.
func EvaluateCheckInTimeliness(now time.Time, cutoff attendance.Cutoff) attendance.Timeliness {
	return attendance.Timeliness{IsLate: now.After(cutoff.On(now))}
}

// CheckDuplicate rejects a submission when the user already has a pending or
// approved request for the same date.
func CheckDuplicate(existing []regularization.Request, userID string, date time.Time) error {
	for _, r := range existing {
		if userID != "" && r.SubmittedByUserID != "" && r.SubmittedByUserID != userID {
			continue
		}
		if regularization.SameDate(r.Date, date) && r.Status.Blocks() {
			return regularization.ErrDuplicateRequest
		}
	}
	return nil
}

// TileClass is the calendar tile / table row class for a status.
func TileClass(status attendance.ComplianceStatus) string {
	return status.Tile()
}

// Rules binds the evaluator to the configured cutoff and hours threshold.
type Rules struct {
	Cutoff            attendance.Cutoff
	MinimumDailyHours float64
}

func NewRules(cutoff attendance.Cutoff, minimumDailyHours float64) Rules {
	if minimumDailyHours <= 0 {
		minimumDailyHours = DefaultMinimumDailyHours
	}
	return Rules{Cutoff: cutoff, MinimumDailyHours: minimumDailyHours}
}

func (r Rules) Classify(rec attendance.Record) attendance.ComplianceStatus {
	return Classify(rec, r.MinimumDailyHours)
}

func (r Rules) Timeliness(now time.Time) attendance.Timeliness {
	return EvaluateCheckInTimeliness(now, r.Cutoff)
}

// Present renders records with their compliance status and tile.
func (r Rules) Present(records []attendance.Record) []attendance.RecordResponse {
	out := make([]attendance.RecordResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, attendance.NewRecordResponse(rec, r.Classify(rec)))
	}
	return out
}
