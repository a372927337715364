package regularization

import (
	"github.com/cmlabs-hris/attendance-gateway/internal/pkg/validator"
)

type SubmitRequest struct {
	Date   string `json:"date"` // YYYY-MM-DD
	Reason string `json:"reason"`
}

func (r *SubmitRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Date) {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date is required",
		})
	} else if _, ok := validator.IsValidDate(r.Date); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date must be in YYYY-MM-DD format",
		})
	}

	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason is required",
		})
	}
	if len(r.Reason) > 1000 {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason must not exceed 1000 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type SubmitResponse struct {
	Message string `json:"message"`
}

type ActResponse struct {
	ID      string `json:"id"`
	Action  Action `json:"action"`
	Message string `json:"message"`
}

type RequestResponse struct {
	ID              string  `json:"id"`
	UserID          string  `json:"user_id,omitempty"`
	UserName        string  `json:"user_name"`
	Date            string  `json:"date"`
	Reason          string  `json:"reason"`
	Status          Status  `json:"status"`
	SubmittedByRole string  `json:"submitted_by_role"`
	ApprovedByID    *string `json:"approved_by_id,omitempty"`
	ApprovedByName  *string `json:"approved_by_name,omitempty"`
	CanAct          bool    `json:"can_act"`
}

type ListResponse struct {
	Requests     []RequestResponse `json:"requests"`
	PendingCount int               `json:"pending_count"`
}

func ToResponse(r Request, canAct bool) RequestResponse {
	return RequestResponse{
		ID:              r.ID,
		UserID:          r.SubmittedByUserID,
		UserName:        r.UserName,
		Date:            r.Date.Format("2006-01-02"),
		Reason:          r.Reason,
		Status:          r.Status,
		SubmittedByRole: string(r.SubmittedByRole),
		ApprovedByID:    r.ApprovedByUserID,
		ApprovedByName:  r.ApprovedByName,
		CanAct:          canAct,
	}
}
