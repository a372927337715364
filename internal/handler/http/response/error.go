package response

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/attendance-gateway/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-gateway/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-gateway/internal/domain/regularization"
	"github.com/cmlabs-hris/attendance-gateway/internal/domain/session"
	"github.com/cmlabs-hris/attendance-gateway/internal/domain/user"
	"github.com/cmlabs-hris/attendance-gateway/internal/pkg/apiclient"
	"github.com/cmlabs-hris/attendance-gateway/internal/pkg/inflight"
	"github.com/cmlabs-hris/attendance-gateway/internal/pkg/validator"
)

const upstreamUnavailableMessage = "Could not reach the attendance service. Please try again."

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth domain errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		Unauthorized(w, "Invalid email or password")
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, "Invalid or expired token")
	case errors.Is(err, auth.ErrTokenRevoked):
		SessionExpired(w, "Session has ended, please log in again")
	case errors.Is(err, auth.ErrUnsupportedRole):
		Forbidden(w, "Account role is not supported")
	case errors.Is(err, auth.ErrIncompleteLoginResponse):
		BadGateway(w, "Login failed: incomplete response from the attendance service")

	// Session errors; an upstream 401 after login means the session is gone
	case errors.Is(err, apiclient.ErrUnauthorized),
		errors.Is(err, session.ErrSessionNotFound),
		errors.Is(err, session.ErrSessionExpired):
		SessionExpired(w, "Session has expired, please log in again")

	// Permission errors
	case errors.Is(err, user.ErrInsufficientPermissions):
		Forbidden(w, "You do not have access to this resource")

	// Attendance domain errors
	case errors.Is(err, attendance.ErrLateConfirmationRequired):
		Conflict(w, "You are checking in late! You may need to submit a regularization request.")
	case errors.Is(err, attendance.ErrLookupFilterRequired):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, inflight.ErrInFlight):
		Conflict(w, "This action is already in progress")

	// Regularization domain errors
	case errors.Is(err, regularization.ErrDuplicateRequest):
		Conflict(w, "You already have a request for this date")
	case errors.Is(err, regularization.ErrAlreadyProcessed):
		Conflict(w, "Regularization request already processed")
	case errors.Is(err, regularization.ErrNotPermitted):
		Forbidden(w, "You are not allowed to act on this request")
	case errors.Is(err, regularization.ErrRequestNotFound):
		NotFound(w, "Regularization request not found")
	case errors.Is(err, regularization.ErrInvalidAction):
		BadRequest(w, err.Error(), nil)

	// Upstream errors
	case errors.Is(err, apiclient.ErrTransport),
		errors.Is(err, apiclient.ErrUnexpectedResponse),
		errors.Is(err, context.DeadlineExceeded):
		BadGateway(w, upstreamUnavailableMessage)

	default:
		var apiErr *apiclient.APIError
		if errors.As(err, &apiErr) {
			if apiErr.Status >= 400 && apiErr.Status < 500 {
				UpstreamRejected(w, apiErr.Status, apiErr.Message)
			} else {
				UpstreamRejected(w, http.StatusBadGateway, apiErr.Message)
			}
			return
		}

		slog.Error("unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
