package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/attendance-gateway/internal/domain/session"
)

type revocationPruner interface {
	PruneRevoked(now time.Time) int
}

type SessionJobs struct {
	sessionRepo session.SessionRepository
	revoked     revocationPruner
	now         func() time.Time
}

func NewSessionJobs(sessionRepo session.SessionRepository, revoked revocationPruner) *SessionJobs {
	return &SessionJobs{
		sessionRepo: sessionRepo,
		revoked:     revoked,
		now:         time.Now,
	}
}

func (j *SessionJobs) RegisterJobs(scheduler *Scheduler, interval time.Duration) {
	scheduler.AddJob("prune_expired_sessions", interval, j.PruneExpiredSessions)
	scheduler.AddJob("prune_revoked_tokens", interval, j.PruneRevokedTokens)
}

// PruneExpiredSessions deletes sessions past their expiry.
func (j *SessionJobs) PruneExpiredSessions(ctx context.Context) error {
	deleted, err := j.sessionRepo.DeleteExpired(ctx, j.now())
	if err != nil {
		return err
	}
	if deleted > 0 {
		slog.Info("Cron: pruned expired sessions", "count", deleted)
	}
	return nil
}

func (j *SessionJobs) PruneRevokedTokens(ctx context.Context) error {
	if n := j.revoked.PruneRevoked(j.now()); n > 0 {
		slog.Info("Cron: pruned revoked tokens", "count", n)
	}
	return nil
}
