package attendance

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-gateway/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========================================
// ATTENDANCE DTOs
// ========================================

type CheckInRequest struct {
	ConfirmLate bool `json:"confirm_late"`
}

type ActionResponse struct {
	Message      string `json:"message"`
	AdvisoryLate bool   `json:"advisory_late"`
}

type TimelinessResponse struct {
	IsLate   bool   `json:"is_late"`
	Cutoff   string `json:"cutoff"`
	Timezone string `json:"timezone"`
	Now      string `json:"now"`
	Message  string `json:"message,omitempty"`
}

type RecordResponse struct {
	Date              string           `json:"date"`
	UserName          string           `json:"user_name,omitempty"`
	CheckIn           *string          `json:"check_in"`
	CheckOut          *string          `json:"check_out"`
	TotalHours        float64          `json:"total_hours"`
	TotalHoursDisplay string           `json:"total_hours_display"`
	IsLate            bool             `json:"is_late"`
	IsRegularized     bool             `json:"is_regularized"`
	ComplianceStatus  ComplianceStatus `json:"compliance_status"`
	Tile              string           `json:"tile"`
}

// NewRecordResponse renders a record with its compliance status.
func NewRecordResponse(r Record, status ComplianceStatus) RecordResponse {
	return RecordResponse{
		Date:              r.Date.Format("2006-01-02"),
		UserName:          r.UserName,
		CheckIn:           timePtrToString(r.CheckInAt),
		CheckOut:          timePtrToString(r.CheckOutAt),
		TotalHours:        r.TotalHours,
		TotalHoursDisplay: FormatHours(r.TotalHours),
		IsLate:            r.IsLate,
		IsRegularized:     r.IsRegularized,
		ComplianceStatus:  status,
		Tile:              status.Tile(),
	}
}

// FormatHours renders hours with two fixed decimals, e.g. "9.50 hrs".
func FormatHours(h float64) string {
	return decimal.NewFromFloat(h).StringFixed(2) + " hrs"
}

// timePtrToString safely converts a *time.Time to a string.
func timePtrToString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	format := t.Format(time.RFC3339)
	return &format
}

// LookupFilter selects another user's attendance. HR may look up by username or
// user ID; admin requires both user ID and date. Query is a single free-form
// "username or id" input, split by Resolve.
type LookupFilter struct {
	Query    *string `json:"q,omitempty"`
	UserID   *string `json:"user_id,omitempty"`
	Username *string `json:"username,omitempty"`
	Date     *string `json:"date,omitempty"` // YYYY-MM-DD
}

// Resolve moves Query into UserID when it is numeric, otherwise into Username.
// Explicit user_id or username values win.
func (f *LookupFilter) Resolve() {
	if f.Query == nil {
		return
	}
	q := strings.TrimSpace(*f.Query)
	f.Query = nil
	if q == "" || f.UserID != nil || f.Username != nil {
		return
	}
	if validator.IsNumeric(q) {
		f.UserID = &q
	} else {
		f.Username = &q
	}
}

func (f *LookupFilter) Validate() error {
	var errs validator.ValidationErrors

	if (f.UserID == nil || validator.IsEmpty(*f.UserID)) && (f.Username == nil || validator.IsEmpty(*f.Username)) {
		errs = append(errs, validator.ValidationError{
			Field:   "user_id",
			Message: "user_id or username is required",
		})
	}

	if f.Date != nil && *f.Date != "" {
		if _, ok := validator.IsValidDate(*f.Date); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "date",
				Message: "date must be in YYYY-MM-DD format",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}
