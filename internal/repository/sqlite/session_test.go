package sqlite_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-gateway/internal/domain/session"
	"github.com/cmlabs-hris/attendance-gateway/internal/domain/user"
	"github.com/cmlabs-hris/attendance-gateway/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-gateway/internal/pkg/sealer"
	"github.com/cmlabs-hris/attendance-gateway/internal/repository/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openTestDB returns a unique in-memory database with the sessions schema.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	ctx := context.Background()
	conn, err := database.NewInMemorySQLiteDB(ctx, "test_"+t.Name())
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.NoError(t, sqlite.EnsureSchema(ctx, conn))
	return conn
}

func newStore(t *testing.T) (*sqlite.SessionStore, *sql.DB) {
	t.Helper()

	conn := openTestDB(t)
	s, err := sealer.New("test-seal-key")
	require.NoError(t, err)
	return sqlite.NewSessionStore(conn, s), conn
}

func sampleSession(id string, expiresAt time.Time) session.Session {
	return session.Session{
		ID:           id,
		AccessToken:  "upstream-access",
		RefreshToken: "upstream-refresh",
		User:         user.User{ID: "12", FullName: "Meera Iyer", Email: "meera@example.com", Role: user.RoleHR},
		Username:     "Meera Iyer",
		Role:         user.RoleHR,
		CreatedAt:    time.Now().UTC().Truncate(time.Millisecond),
		ExpiresAt:    expiresAt.UTC().Truncate(time.Millisecond),
	}
}

func TestSessionStore_RoundTrip(t *testing.T) {
	store, conn := newStore(t)
	ctx := context.Background()

	s := sampleSession("s1", time.Now().Add(time.Hour))
	require.NoError(t, store.Create(ctx, s))

	var stored string
	require.NoError(t, conn.QueryRowContext(ctx, "SELECT refresh_token FROM gateway_sessions WHERE id = ?", "s1").Scan(&stored))
	assert.NotEqual(t, "upstream-refresh", stored)

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, s.AccessToken, got.AccessToken)
	assert.Equal(t, s.RefreshToken, got.RefreshToken)
	assert.Equal(t, s.User, got.User)
	assert.Equal(t, s.Username, got.Username)
	assert.Equal(t, s.Role, got.Role)
	assert.True(t, s.CreatedAt.Equal(got.CreatedAt))
	assert.True(t, s.ExpiresAt.Equal(got.ExpiresAt))
}

func TestSessionStore_GetUnknown(t *testing.T) {
	store, _ := newStore(t)

	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
}

func TestSessionStore_Delete(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, sampleSession("s1", time.Now().Add(time.Hour))))
	require.NoError(t, store.Delete(ctx, "s1"))

	_, err := store.Get(ctx, "s1")
	assert.ErrorIs(t, err, session.ErrSessionNotFound)

	require.NoError(t, store.Delete(ctx, "s1"))
}

func TestSessionStore_Expiry(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, sampleSession("old", time.Now().Add(-time.Minute))))
	require.NoError(t, store.Create(ctx, sampleSession("new", time.Now().Add(time.Hour))))

	_, err := store.Get(ctx, "old")
	assert.ErrorIs(t, err, session.ErrSessionNotFound)

	n, err := store.DeleteExpired(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = store.Get(ctx, "new")
	assert.NoError(t, err)
}

func TestSessionStore_WrongSealKey(t *testing.T) {
	conn := openTestDB(t)
	ctx := context.Background()

	a, _ := sealer.New("key-a")
	b, _ := sealer.New("key-b")

	require.NoError(t, sqlite.NewSessionStore(conn, a).Create(ctx, sampleSession("s1", time.Now().Add(time.Hour))))

	_, err := sqlite.NewSessionStore(conn, b).Get(ctx, "s1")
	assert.ErrorIs(t, err, sealer.ErrOpen)
}
