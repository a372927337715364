package jwt

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-gateway/internal/domain/user"
	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testClaims = SessionClaims{SessionID: "sess-1", UserID: "7", Role: user.RoleManager}

func TestGenerateAccessToken(t *testing.T) {
	svc := NewJWTService("test-secret")
	exp := time.Now().Add(time.Hour)

	tok, err := svc.GenerateAccessToken(testClaims, exp)
	require.NoError(t, err)

	parsed, err := jwtauth.VerifyToken(svc.JWTAuth(), tok)
	require.NoError(t, err)

	claims, err := parsed.AsMap(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "access", claims["type"])

	got, err := ClaimsFromMap(claims)
	require.NoError(t, err)
	assert.Equal(t, testClaims, got)
	assert.Equal(t, exp.Unix(), parsed.Expiration().Unix())
}

func TestSSEToken(t *testing.T) {
	svc := NewJWTService("test-secret")

	tok, expiresIn, err := svc.GenerateSSEToken(testClaims)
	require.NoError(t, err)
	assert.Equal(t, 300, expiresIn)

	got, err := svc.ValidateSSEToken(tok)
	require.NoError(t, err)
	assert.Equal(t, testClaims, got)
}

func TestValidateSSEToken_RejectsAccessToken(t *testing.T) {
	svc := NewJWTService("test-secret")

	tok, err := svc.GenerateAccessToken(testClaims, time.Now().Add(time.Hour))
	require.NoError(t, err)

	_, err = svc.ValidateSSEToken(tok)
	assert.ErrorIs(t, err, ErrWrongTokenType)
}

func TestValidateSSEToken_WrongSecret(t *testing.T) {
	tok, _, err := NewJWTService("secret-a").GenerateSSEToken(testClaims)
	require.NoError(t, err)

	_, err = NewJWTService("secret-b").ValidateSSEToken(tok)
	assert.Error(t, err)
}

func TestRevokeAndPrune(t *testing.T) {
	svc := NewJWTService("test-secret")
	now := time.Now()

	svc.RevokeToken("t1", now.Add(-time.Minute))
	svc.RevokeToken("t2", now.Add(time.Hour))

	assert.True(t, svc.IsTokenRevoked("t1"))
	assert.True(t, svc.IsTokenRevoked("t2"))
	assert.False(t, svc.IsTokenRevoked("t3"))

	assert.Equal(t, 1, svc.PruneRevoked(now))
	assert.False(t, svc.IsTokenRevoked("t1"))
	assert.True(t, svc.IsTokenRevoked("t2"))
}

func TestClaimsFromMap_Missing(t *testing.T) {
	_, err := ClaimsFromMap(map[string]interface{}{"user_id": "7"})
	assert.Error(t, err)
}
