package http

import (
	"net/http"

	"github.com/cmlabs-hris/attendance-gateway/internal/domain/dashboard"
	"github.com/cmlabs-hris/attendance-gateway/internal/handler/http/response"
)

type DashboardHandler interface {
	// GetDashboard returns every section the caller's role may see
	GetDashboard(w http.ResponseWriter, r *http.Request)
	// GetSummary returns today's organisation-wide counters
	GetSummary(w http.ResponseWriter, r *http.Request)
	// ListUsers returns the user directory
	ListUsers(w http.ResponseWriter, r *http.Request)
}

type dashboardHandlerImpl struct {
	dashboardService dashboard.DashboardService
}

func NewDashboardHandler(dashboardService dashboard.DashboardService) DashboardHandler {
	return &dashboardHandlerImpl{dashboardService: dashboardService}
}

// GetDashboard handles GET /dashboard
func (h *dashboardHandlerImpl) GetDashboard(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	result, err := h.dashboardService.GetDashboard(r.Context(), sess)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetSummary handles GET /summary
func (h *dashboardHandlerImpl) GetSummary(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	result, err := h.dashboardService.GetSummary(r.Context(), sess)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ListUsers handles GET /users
func (h *dashboardHandlerImpl) ListUsers(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	result, err := h.dashboardService.ListUsers(r.Context(), sess)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result, &response.Meta{TotalItems: len(result)})
}
