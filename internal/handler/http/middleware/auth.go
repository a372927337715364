package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/cmlabs-hris/attendance-gateway/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-gateway/internal/domain/session"
	"github.com/cmlabs-hris/attendance-gateway/internal/handler/http/response"
	"github.com/cmlabs-hris/attendance-gateway/internal/pkg/jwt"
	"github.com/go-chi/jwtauth/v5"
)

type contextKey string

const (
	sessionContextKey contextKey = "session"
	tokenContextKey   contextKey = "gateway_token"
)

// SessionMiddleware resolves the gateway token to its server-side session.
type SessionMiddleware struct {
	jwtService jwt.Service
	sessions   session.SessionRepository
	now        func() time.Time
}

func NewSessionMiddleware(jwtService jwt.Service, sessions session.SessionRepository) *SessionMiddleware {
	return &SessionMiddleware{
		jwtService: jwtService,
		sessions:   sessions,
		now:        time.Now,
	}
}

// AuthRequired must run after jwtauth.Verifier. It rejects anything but a
// live access token and injects the session into the request context.
func (m *SessionMiddleware) AuthRequired(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context())
		if err != nil || token == nil {
			response.HandleError(w, auth.ErrInvalidToken)
			return
		}

		tokenType, ok := claims["type"].(string)
		if !ok || tokenType != "access" {
			response.HandleError(w, auth.ErrInvalidToken)
			return
		}

		raw := jwtauth.TokenFromHeader(r)
		if m.jwtService.IsTokenRevoked(raw) {
			response.HandleError(w, auth.ErrTokenRevoked)
			return
		}

		sessionClaims, err := jwt.ClaimsFromMap(claims)
		if err != nil {
			response.HandleError(w, auth.ErrInvalidToken)
			return
		}

		sess, err := m.sessions.Get(r.Context(), sessionClaims.SessionID)
		if err != nil {
			if !errors.Is(err, session.ErrSessionNotFound) {
				slog.Error("session lookup failed", "session_id", sessionClaims.SessionID, "error", err)
				response.InternalServerError(w, "Failed to load session")
				return
			}
			response.HandleError(w, err)
			return
		}
		if sess.IsExpired(m.now()) || sess.User.ID != sessionClaims.UserID {
			response.HandleError(w, session.ErrSessionExpired)
			return
		}

		ctx := WithSession(r.Context(), sess)
		ctx = context.WithValue(ctx, tokenContextKey, raw)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SessionFromContext returns the session injected by AuthRequired.
func SessionFromContext(ctx context.Context) (session.Session, bool) {
	sess, ok := ctx.Value(sessionContextKey).(session.Session)
	return sess, ok
}

// TokenFromContext returns the raw gateway token of the request.
func TokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenContextKey).(string)
	return token
}

// WithSession stores the session for SessionFromContext.
func WithSession(ctx context.Context, sess session.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, sess)
}
