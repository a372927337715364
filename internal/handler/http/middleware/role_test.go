package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cmlabs-hris/attendance-gateway/internal/domain/session"
	"github.com/cmlabs-hris/attendance-gateway/internal/domain/user"
	"github.com/stretchr/testify/assert"
)

func serveWithRole(gate func(http.Handler) http.Handler, role user.Role) int {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if role != "" {
		req = req.WithContext(WithSession(req.Context(), session.Session{ID: "s-1", Role: role}))
	}
	rec := httptest.NewRecorder()
	gate(next).ServeHTTP(rec, req)
	return rec.Code
}

func TestRequireCapability(t *testing.T) {
	gate := RequireCapability(user.CapabilityAttendanceViewAll)

	assert.Equal(t, http.StatusNoContent, serveWithRole(gate, user.RoleHR))
	assert.Equal(t, http.StatusNoContent, serveWithRole(gate, user.RoleAdmin))
	assert.Equal(t, http.StatusForbidden, serveWithRole(gate, user.RoleManager))
	assert.Equal(t, http.StatusForbidden, serveWithRole(gate, user.RoleEmployee))
	assert.Equal(t, http.StatusUnauthorized, serveWithRole(gate, ""))
}

func TestRequireAnyCapability(t *testing.T) {
	gate := RequireAnyCapability(user.CapabilityRegularizationViewTeam, user.CapabilityRegularizationViewAll)

	assert.Equal(t, http.StatusNoContent, serveWithRole(gate, user.RoleManager))
	assert.Equal(t, http.StatusNoContent, serveWithRole(gate, user.RoleHR))
	assert.Equal(t, http.StatusForbidden, serveWithRole(gate, user.RoleEmployee))
}
