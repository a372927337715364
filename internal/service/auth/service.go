package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-gateway/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-gateway/internal/domain/session"
	"github.com/cmlabs-hris/attendance-gateway/internal/domain/user"
	"github.com/cmlabs-hris/attendance-gateway/internal/pkg/apiclient"
	"github.com/cmlabs-hris/attendance-gateway/internal/pkg/jwt"
	"github.com/google/uuid"
)

// Upstream is the part of the API client the auth flows need.
type Upstream interface {
	Register(ctx context.Context, req auth.RegisterRequest) error
	Login(ctx context.Context, email, password string) (apiclient.LoginResult, error)
	ListManagers(ctx context.Context) ([]user.ManagerOption, error)
}

type AuthServiceImpl struct {
	upstream   Upstream
	sessions   session.SessionRepository
	jwt        jwt.Service
	sessionTTL time.Duration
	now        func() time.Time
}

func NewAuthService(upstream Upstream, sessions session.SessionRepository, jwtService jwt.Service, sessionTTL time.Duration) *AuthServiceImpl {
	return &AuthServiceImpl{
		upstream:   upstream,
		sessions:   sessions,
		jwt:        jwtService,
		sessionTTL: sessionTTL,
		now:        time.Now,
	}
}

var _ auth.AuthService = (*AuthServiceImpl)(nil)

// Register implements auth.AuthService.
func (a *AuthServiceImpl) Register(ctx context.Context, req auth.RegisterRequest) error {
	req.Normalize()
	if err := a.upstream.Register(ctx, req); err != nil {
		return fmt.Errorf("failed to register upstream: %w", err)
	}
	return nil
}

// Login implements auth.AuthService. The session is written only after the
// upstream login and the gateway token both succeed.
func (a *AuthServiceImpl) Login(ctx context.Context, req auth.LoginRequest) (auth.LoginResponse, error) {
	res, err := a.upstream.Login(ctx, strings.TrimSpace(req.Email), req.Password)
	if err != nil {
		if errors.Is(err, apiclient.ErrUnauthorized) {
			return auth.LoginResponse{}, auth.ErrInvalidCredentials
		}
		return auth.LoginResponse{}, fmt.Errorf("failed to log in upstream: %w", err)
	}

	if !res.User.Role.IsValid() {
		return auth.LoginResponse{}, fmt.Errorf("%w: %q", auth.ErrUnsupportedRole, res.User.Role)
	}

	now := a.now()
	expiresAt := now.Add(a.sessionTTL)
	if exp, ok := apiclient.AccessTokenExpiry(res.AccessToken); ok && exp.After(now) && exp.Before(expiresAt) {
		expiresAt = exp
	}

	id, err := uuid.NewV7()
	if err != nil {
		return auth.LoginResponse{}, fmt.Errorf("failed to generate session id: %w", err)
	}

	sess := session.Session{
		ID:           id.String(),
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		User:         res.User,
		Username:     res.User.FullName,
		Role:         res.User.Role,
		CreatedAt:    now,
		ExpiresAt:    expiresAt,
	}

	token, err := a.jwt.GenerateAccessToken(jwt.SessionClaims{
		SessionID: sess.ID,
		UserID:    sess.User.ID,
		Role:      sess.Role,
	}, expiresAt)
	if err != nil {
		return auth.LoginResponse{}, fmt.Errorf("failed to create access token: %w", err)
	}

	if err := a.sessions.Create(ctx, sess); err != nil {
		return auth.LoginResponse{}, fmt.Errorf("failed to store session: %w", err)
	}

	return auth.LoginResponse{
		AccessToken:  token,
		ExpiresAt:    expiresAt.Unix(),
		User:         user.ToResponse(sess.User),
		Username:     sess.Username,
		Role:         string(sess.Role),
		RedirectPath: sess.Role.DashboardPath(),
	}, nil
}

// Logout implements auth.AuthService. It clears the whole session.
func (a *AuthServiceImpl) Logout(ctx context.Context, sess session.Session, gatewayToken string) error {
	if err := a.sessions.Delete(ctx, sess.ID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if gatewayToken != "" {
		a.jwt.RevokeToken(gatewayToken, sess.ExpiresAt)
	}
	return nil
}

// Managers implements auth.AuthService.
func (a *AuthServiceImpl) Managers(ctx context.Context) ([]user.ManagerOption, error) {
	managers, err := a.upstream.ListManagers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list managers: %w", err)
	}
	return managers, nil
}

// ExpireSession drops a session the upstream no longer accepts.
func (a *AuthServiceImpl) ExpireSession(ctx context.Context, sess session.Session) {
	// the request context may already be done
	if err := a.sessions.Delete(context.WithoutCancel(ctx), sess.ID); err != nil {
		slog.Error("failed to delete expired session", "session_id", sess.ID, "error", err)
		return
	}
	slog.Info("session expired upstream, deleted", "session_id", sess.ID, "user_id", sess.User.ID)
}
