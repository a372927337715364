package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/attendance-gateway/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-gateway/internal/domain/session"
	"github.com/cmlabs-hris/attendance-gateway/internal/domain/user"
	"github.com/cmlabs-hris/attendance-gateway/internal/handler/http/middleware"
	"github.com/cmlabs-hris/attendance-gateway/internal/handler/http/response"
)

type AuthHandler interface {
	Register(w http.ResponseWriter, r *http.Request)
	Login(w http.ResponseWriter, r *http.Request)
	Logout(w http.ResponseWriter, r *http.Request)
	Managers(w http.ResponseWriter, r *http.Request)
	Me(w http.ResponseWriter, r *http.Request)
}

type AuthHandlerImpl struct {
	authService auth.AuthService
}

func NewAuthHandler(authService auth.AuthService) AuthHandler {
	return &AuthHandlerImpl{
		authService: authService,
	}
}

// Register implements AuthHandler.
func (a *AuthHandlerImpl) Register(w http.ResponseWriter, r *http.Request) {
	var registerReq auth.RegisterRequest

	// 1. Decode JSON
	if err := json.NewDecoder(r.Body).Decode(&registerReq); err != nil {
		slog.Error("Register decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	// Validate DTO
	if err := registerReq.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	// Call service
	if err := a.authService.Register(r.Context(), registerReq); err != nil {
		slog.Error("Register service error", "error", err)
		response.HandleError(w, err)
		return
	}

	slog.Info("User registered", "role", registerReq.Role)
	response.Created(w, "Registration successful! Please login.", nil)
}

// Login implements AuthHandler.
func (a *AuthHandlerImpl) Login(w http.ResponseWriter, r *http.Request) {
	var loginReq auth.LoginRequest

	// 1. Decode JSON
	if err := json.NewDecoder(r.Body).Decode(&loginReq); err != nil {
		slog.Error("Login decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	// Validate DTO
	if err := loginReq.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	// Call service
	loginResponse, err := a.authService.Login(r.Context(), loginReq)
	if err != nil {
		slog.Error("Login service error", "error", err)
		response.HandleError(w, err)
		return
	}

	slog.Info("User logged in successfully", "role", loginResponse.Role)
	response.Created(w, "User logged in successfully", loginResponse)
}

// Logout implements AuthHandler.
func (a *AuthHandlerImpl) Logout(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	if err := a.authService.Logout(r.Context(), sess, middleware.TokenFromContext(r.Context())); err != nil {
		slog.Error("Logout service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Logged out successfully", nil)
}

// Managers implements AuthHandler.
func (a *AuthHandlerImpl) Managers(w http.ResponseWriter, r *http.Request) {
	managers, err := a.authService.Managers(r.Context())
	if err != nil {
		slog.Error("Managers service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Success(w, managers)
}

// Me returns the profile stored in the session.
func (a *AuthHandlerImpl) Me(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	response.Success(w, map[string]interface{}{
		"user":          user.ToResponse(sess.User),
		"username":      sess.Username,
		"role":          sess.Role,
		"capabilities":  user.CapabilitiesFor(sess.Role),
		"redirect_path": sess.Role.DashboardPath(),
		"expires_at":    sess.ExpiresAt.Unix(),
	})
}

// currentSession writes SESSION_EXPIRED and reports false when the request carries no session.
func currentSession(w http.ResponseWriter, r *http.Request) (session.Session, bool) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		response.HandleError(w, session.ErrSessionNotFound)
	}
	return sess, ok
}
