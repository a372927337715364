package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/attendance-gateway/internal/domain/regularization"
	"github.com/cmlabs-hris/attendance-gateway/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type RegularizationHandler interface {
	Submit(w http.ResponseWriter, r *http.Request)
	GetMyRequests(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Approve(w http.ResponseWriter, r *http.Request)
	Reject(w http.ResponseWriter, r *http.Request)
}

type regularizationHandlerImpl struct {
	regularizationService regularization.RegularizationService
}

func NewRegularizationHandler(regularizationService regularization.RegularizationService) RegularizationHandler {
	return &regularizationHandlerImpl{
		regularizationService: regularizationService,
	}
}

// Submit implements RegularizationHandler.
func (h *regularizationHandlerImpl) Submit(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	var req regularization.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Submit regularization decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.regularizationService.Submit(r.Context(), sess, req)
	if err != nil {
		slog.Error("Submit regularization service error", "user_id", sess.User.ID, "date", req.Date, "error", err)
		response.HandleError(w, err)
		return
	}

	response.Created(w, result.Message, result)
}

// GetMyRequests implements RegularizationHandler.
func (h *regularizationHandlerImpl) GetMyRequests(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	result, err := h.regularizationService.MyRequests(r.Context(), sess)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result, &response.Meta{TotalItems: len(result)})
}

// List implements RegularizationHandler.
func (h *regularizationHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	result, err := h.regularizationService.Reviewable(r.Context(), sess)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result.Requests, &response.Meta{
		TotalItems:   len(result.Requests),
		PendingCount: result.PendingCount,
	})
}

// Approve implements RegularizationHandler.
func (h *regularizationHandlerImpl) Approve(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, regularization.ActionApprove)
}

// Reject implements RegularizationHandler.
func (h *regularizationHandlerImpl) Reject(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, regularization.ActionReject)
}

func (h *regularizationHandlerImpl) act(w http.ResponseWriter, r *http.Request, action regularization.Action) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Request ID is required", nil)
		return
	}

	result, err := h.regularizationService.Act(r.Context(), sess, id, action)
	if err != nil {
		slog.Error("Regularization action error", "id", id, "action", action, "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, result.Message, result)
}
