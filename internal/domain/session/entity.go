package session

import (
	"time"

	"github.com/cmlabs-hris/attendance-gateway/internal/domain/user"
)

// Session binds a browser login to the upstream credentials issued for it.
// Username is the display name the upstream expects on name-keyed lookups.
type Session struct {
	ID           string
	AccessToken  string
	RefreshToken string
	User         user.User
	Username     string
	Role         user.Role
	CreatedAt    time.Time
	ExpiresAt    time.Time
}

// IsExpired reports whether the session is past its expiry at the given time.
func (s *Session) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
