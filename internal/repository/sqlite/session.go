package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-gateway/internal/domain/session"
	"github.com/cmlabs-hris/attendance-gateway/internal/domain/user"
)

// TokenSealer encrypts upstream tokens at rest.
type TokenSealer interface {
	Seal(plaintext string) (string, error)
	Open(sealed string) (string, error)
}

var _ session.SessionRepository = (*SessionStore)(nil)

type SessionStore struct {
	db     *sql.DB
	sealer TokenSealer
	now    func() time.Time
}

func NewSessionStore(db *sql.DB, sealer TokenSealer) *SessionStore {
	return &SessionStore{db: db, sealer: sealer, now: time.Now}
}

// EnsureSchema creates the sessions table. Times are stored as unix milliseconds.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS gateway_sessions (
  id            TEXT PRIMARY KEY,
  access_token  TEXT NOT NULL,
  refresh_token TEXT NOT NULL,
  profile       TEXT NOT NULL,
  username      TEXT NOT NULL,
  role          TEXT NOT NULL,
  created_at_ms INTEGER NOT NULL,
  expires_at_ms INTEGER NOT NULL
);`); err != nil {
		return fmt.Errorf("ensure gateway_sessions: %w", err)
	}

	if _, err := db.ExecContext(ctx, `
CREATE INDEX IF NOT EXISTS idx_gateway_sessions_expires ON gateway_sessions(expires_at_ms);`); err != nil {
		return fmt.Errorf("ensure gateway_sessions index: %w", err)
	}
	return nil
}

func (s *SessionStore) Create(ctx context.Context, sess session.Session) error {
	access, err := s.sealer.Seal(sess.AccessToken)
	if err != nil {
		return fmt.Errorf("Create seal access token: %w", err)
	}
	refresh, err := s.sealer.Seal(sess.RefreshToken)
	if err != nil {
		return fmt.Errorf("Create seal refresh token: %w", err)
	}
	profile, err := session.MarshalProfile(sess.User)
	if err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, `
INSERT INTO gateway_sessions(
  id, access_token, refresh_token, profile, username, role, created_at_ms, expires_at_ms
) VALUES (?, ?, ?, ?, ?, ?, ?, ?);
`, sess.ID, access, refresh, profile, sess.Username, string(sess.Role),
		sess.CreatedAt.UTC().UnixMilli(), sess.ExpiresAt.UTC().UnixMilli()); err != nil {
		return fmt.Errorf("Create insert: %w", err)
	}
	return nil
}

func (s *SessionStore) Get(ctx context.Context, id string) (session.Session, error) {
	var (
		sess                     session.Session
		access, refresh, profile string
		role                     string
		createdMs, expiresMs     int64
	)

	err := s.db.QueryRowContext(ctx, `
SELECT id, access_token, refresh_token, profile, username, role, created_at_ms, expires_at_ms
FROM gateway_sessions
WHERE id = ? AND expires_at_ms > ?;
`, id, s.now().UTC().UnixMilli()).Scan(&sess.ID, &access, &refresh, &profile, &sess.Username, &role, &createdMs, &expiresMs)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return session.Session{}, session.ErrSessionNotFound
		}
		return session.Session{}, fmt.Errorf("Get: %w", err)
	}

	if sess.AccessToken, err = s.sealer.Open(access); err != nil {
		return session.Session{}, fmt.Errorf("Get open access token: %w", err)
	}
	if sess.RefreshToken, err = s.sealer.Open(refresh); err != nil {
		return session.Session{}, fmt.Errorf("Get open refresh token: %w", err)
	}
	if sess.User, err = session.UnmarshalProfile(profile); err != nil {
		return session.Session{}, err
	}
	sess.Role = user.Role(role)
	sess.CreatedAt = time.UnixMilli(createdMs).UTC()
	sess.ExpiresAt = time.UnixMilli(expiresMs).UTC()

	return sess, nil
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM gateway_sessions WHERE id = ?;`, id); err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	return nil
}

// DeleteExpired removes sessions whose expiry is at or before now.
func (s *SessionStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
DELETE FROM gateway_sessions
WHERE expires_at_ms <= ?;
`, now.UTC().UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("DeleteExpired: %w", err)
	}
	deleted, _ := res.RowsAffected()
	return deleted, nil
}
