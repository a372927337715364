package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/attendance-gateway/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-gateway/internal/handler/http/response"
)

type AttendanceHandler interface {
	Timeliness(w http.ResponseWriter, r *http.Request)
	CheckIn(w http.ResponseWriter, r *http.Request)
	CheckOut(w http.ResponseWriter, r *http.Request)
	GetMyAttendance(w http.ResponseWriter, r *http.Request)
	GetTeamAttendance(w http.ResponseWriter, r *http.Request)
	Lookup(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
	}
}

// Timeliness implements AttendanceHandler.
func (h *attendanceHandlerImpl) Timeliness(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	result, err := h.attendanceService.Timeliness(r.Context(), sess)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// CheckIn implements AttendanceHandler. The body is optional; an empty body
// means confirm_late=false.
func (h *attendanceHandlerImpl) CheckIn(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	var req attendance.CheckInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		slog.Error("CheckIn decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.attendanceService.CheckIn(r.Context(), sess, req)
	if err != nil {
		slog.Error("CheckIn service error", "user_id", sess.User.ID, "error", err)
		response.HandleError(w, err)
		return
	}

	response.Created(w, result.Message, result)
}

// CheckOut implements AttendanceHandler.
func (h *attendanceHandlerImpl) CheckOut(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	result, err := h.attendanceService.CheckOut(r.Context(), sess)
	if err != nil {
		slog.Error("CheckOut service error", "user_id", sess.User.ID, "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, result.Message, result)
}

// GetMyAttendance implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetMyAttendance(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	result, err := h.attendanceService.MyAttendance(r.Context(), sess)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result, &response.Meta{TotalItems: len(result)})
}

// GetTeamAttendance implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetTeamAttendance(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	result, err := h.attendanceService.TeamAttendance(r.Context(), sess)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result, &response.Meta{TotalItems: len(result)})
}

// Lookup handles GET /attendance/lookup?q=|user_id=|username=&date=
func (h *attendanceHandlerImpl) Lookup(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	var filter attendance.LookupFilter
	if v := query.Get("q"); v != "" {
		filter.Query = &v
	}
	if v := query.Get("user_id"); v != "" {
		filter.UserID = &v
	}
	if v := query.Get("username"); v != "" {
		filter.Username = &v
	}
	if v := query.Get("date"); v != "" {
		filter.Date = &v
	}

	result, err := h.attendanceService.Lookup(r.Context(), sess, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result, &response.Meta{TotalItems: len(result)})
}
