package session

import (
	"context"
	"time"
)

type SessionRepository interface {
	Create(ctx context.Context, s Session) error
	// Get returns ErrSessionNotFound for unknown or expired sessions.
	Get(ctx context.Context, id string) (Session, error)
	Delete(ctx context.Context, id string) error
	// DeleteExpired removes sessions that expired before now and returns how many.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
