package postgresql_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-gateway/internal/domain/session"
	"github.com/cmlabs-hris/attendance-gateway/internal/domain/user"
	"github.com/cmlabs-hris/attendance-gateway/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-gateway/internal/pkg/sealer"
	"github.com/cmlabs-hris/attendance-gateway/internal/repository/postgresql"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *database.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := database.NewPostgreSQLDB(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	ctx := context.Background()
	require.NoError(t, postgresql.EnsureSessionSchema(ctx, db))
	_, err = db.Exec(ctx, "TRUNCATE TABLE gateway_sessions")
	require.NoError(t, err)

	return db
}

func newRepo(t *testing.T) (session.SessionRepository, *database.DB) {
	db := openTestDB(t)
	s, err := sealer.New("test-seal-key")
	require.NoError(t, err)
	return postgresql.NewSessionRepository(db, s), db
}

func sampleSession(expiresAt time.Time) session.Session {
	mgr := "3"
	return session.Session{
		ID:           uuid.Must(uuid.NewV7()).String(),
		AccessToken:  "upstream-access",
		RefreshToken: "upstream-refresh",
		User:         user.User{ID: "7", FullName: "Asha Rao", Email: "asha@example.com", Role: user.RoleEmployee, ManagerID: &mgr},
		Username:     "Asha Rao",
		Role:         user.RoleEmployee,
		CreatedAt:    time.Now().UTC().Truncate(time.Millisecond),
		ExpiresAt:    expiresAt.UTC().Truncate(time.Millisecond),
	}
}

func TestSessionRepository_CreateGetDelete(t *testing.T) {
	repo, db := newRepo(t)
	ctx := context.Background()

	s := sampleSession(time.Now().Add(time.Hour))
	require.NoError(t, repo.Create(ctx, s))

	var stored string
	require.NoError(t, db.QueryRow(ctx, "SELECT access_token FROM gateway_sessions WHERE id = $1", s.ID).Scan(&stored))
	assert.NotEqual(t, "upstream-access", stored)

	got, err := repo.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.AccessToken, got.AccessToken)
	assert.Equal(t, s.RefreshToken, got.RefreshToken)
	assert.Equal(t, s.User, got.User)
	assert.Equal(t, s.Role, got.Role)
	assert.True(t, s.ExpiresAt.Equal(got.ExpiresAt))

	require.NoError(t, repo.Delete(ctx, s.ID))
	_, err = repo.Get(ctx, s.ID)
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
}

func TestSessionRepository_Expired(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()

	expired := sampleSession(time.Now().Add(-time.Minute))
	live := sampleSession(time.Now().Add(time.Hour))
	require.NoError(t, repo.Create(ctx, expired))
	require.NoError(t, repo.Create(ctx, live))

	_, err := repo.Get(ctx, expired.ID)
	assert.ErrorIs(t, err, session.ErrSessionNotFound)

	n, err := repo.DeleteExpired(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = repo.Get(ctx, live.ID)
	assert.NoError(t, err)
}
