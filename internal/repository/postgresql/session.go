package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-gateway/internal/domain/session"
	"github.com/cmlabs-hris/attendance-gateway/internal/domain/user"
	"github.com/cmlabs-hris/attendance-gateway/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

// TokenSealer encrypts upstream tokens at rest.
type TokenSealer interface {
	Seal(plaintext string) (string, error)
	Open(sealed string) (string, error)
}

type sessionRepositoryImpl struct {
	db     *database.DB
	sealer TokenSealer
}

func NewSessionRepository(db *database.DB, sealer TokenSealer) session.SessionRepository {
	return &sessionRepositoryImpl{db: db, sealer: sealer}
}

// EnsureSessionSchema creates the sessions table and its expiry index.
func EnsureSessionSchema(ctx context.Context, db *database.DB) error {
	return WithTransaction(ctx, db, func(ctx context.Context) error {
		q := GetQuerier(ctx, db)

		if _, err := q.Exec(ctx, `
			CREATE TABLE IF NOT EXISTS gateway_sessions (
				id            TEXT PRIMARY KEY,
				access_token  TEXT NOT NULL,
				refresh_token TEXT NOT NULL,
				profile       TEXT NOT NULL,
				username      TEXT NOT NULL,
				role          TEXT NOT NULL,
				created_at    TIMESTAMPTZ NOT NULL,
				expires_at    TIMESTAMPTZ NOT NULL
			)
		`); err != nil {
			return fmt.Errorf("create gateway_sessions: %w", err)
		}

		if _, err := q.Exec(ctx, `
			CREATE INDEX IF NOT EXISTS idx_gateway_sessions_expires_at ON gateway_sessions (expires_at)
		`); err != nil {
			return fmt.Errorf("create gateway_sessions index: %w", err)
		}
		return nil
	})
}

func (r *sessionRepositoryImpl) Create(ctx context.Context, s session.Session) error {
	access, err := r.sealer.Seal(s.AccessToken)
	if err != nil {
		return fmt.Errorf("failed to seal access token: %w", err)
	}
	refresh, err := r.sealer.Seal(s.RefreshToken)
	if err != nil {
		return fmt.Errorf("failed to seal refresh token: %w", err)
	}
	profile, err := session.MarshalProfile(s.User)
	if err != nil {
		return err
	}

	q := GetQuerier(ctx, r.db)
	query := `
		INSERT INTO gateway_sessions (id, access_token, refresh_token, profile, username, role, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = q.Exec(ctx, query, s.ID, access, refresh, profile, s.Username, string(s.Role), s.CreatedAt.UTC(), s.ExpiresAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}
	return nil
}

func (r *sessionRepositoryImpl) Get(ctx context.Context, id string) (session.Session, error) {
	q := GetQuerier(ctx, r.db)
	query := `
		SELECT id, access_token, refresh_token, profile, username, role, created_at, expires_at
		FROM gateway_sessions
		WHERE id = $1 AND expires_at > NOW()
	`

	var (
		s                     session.Session
		access, refresh, prof string
		role                  string
	)
	err := q.QueryRow(ctx, query, id).Scan(&s.ID, &access, &refresh, &prof, &s.Username, &role, &s.CreatedAt, &s.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return session.Session{}, session.ErrSessionNotFound
		}
		return session.Session{}, fmt.Errorf("failed to load session: %w", err)
	}

	if s.AccessToken, err = r.sealer.Open(access); err != nil {
		return session.Session{}, fmt.Errorf("failed to open access token: %w", err)
	}
	if s.RefreshToken, err = r.sealer.Open(refresh); err != nil {
		return session.Session{}, fmt.Errorf("failed to open refresh token: %w", err)
	}
	if s.User, err = session.UnmarshalProfile(prof); err != nil {
		return session.Session{}, err
	}
	s.Role = user.Role(role)

	return s, nil
}

func (r *sessionRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)
	_, err := q.Exec(ctx, `DELETE FROM gateway_sessions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (r *sessionRepositoryImpl) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	q := GetQuerier(ctx, r.db)
	tag, err := q.Exec(ctx, `DELETE FROM gateway_sessions WHERE expires_at <= $1`, now.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}
