package middleware

import (
	"fmt"
	"net/http"

	"github.com/cmlabs-hris/attendance-gateway/internal/domain/session"
	"github.com/cmlabs-hris/attendance-gateway/internal/domain/user"
	"github.com/cmlabs-hris/attendance-gateway/internal/handler/http/response"
)

// RequireCapability checks if the session role has a specific capability
func RequireCapability(capability user.Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, ok := SessionFromContext(r.Context())
			if !ok {
				response.HandleError(w, session.ErrSessionNotFound)
				return
			}

			if !user.HasCapability(sess.Role, capability) {
				response.Forbidden(w, fmt.Sprintf("Insufficient permissions: required '%s', but user role is '%s'", capability, sess.Role))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAnyCapability passes when the role holds at least one of the capabilities.
func RequireAnyCapability(capabilities ...user.Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, ok := SessionFromContext(r.Context())
			if !ok {
				response.HandleError(w, session.ErrSessionNotFound)
				return
			}

			for _, c := range capabilities {
				if user.HasCapability(sess.Role, c) {
					next.ServeHTTP(w, r)
					return
				}
			}

			response.Forbidden(w, fmt.Sprintf("Insufficient permissions for role '%s'", sess.Role))
		})
	}
}
