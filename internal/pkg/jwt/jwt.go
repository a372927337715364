package jwt

import (
	"errors"
	"sync"
	"time"

	"github.com/cmlabs-hris/attendance-gateway/internal/domain/user"
	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const sseTokenTTL = 5 * time.Minute

var ErrWrongTokenType = errors.New("unexpected token type")

// SessionClaims are the claims carried by a gateway access token.
type SessionClaims struct {
	SessionID string
	UserID    string
	Role      user.Role
}

type Service interface {
	GenerateAccessToken(claims SessionClaims, expiresAt time.Time) (token string, err error)
	GenerateSSEToken(claims SessionClaims) (token string, expiresIn int, err error)
	ValidateSSEToken(tokenString string) (SessionClaims, error)
	JWTAuth() *jwtauth.JWTAuth
	RevokeToken(token string, expiresAt time.Time)
	IsTokenRevoked(token string) bool
	PruneRevoked(now time.Time) int
}

type JWTService struct {
	tokenAuth     *jwtauth.JWTAuth
	revokedTokens map[string]int64
	mu            sync.RWMutex
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func NewJWTService(secretKey string) Service {
	return &JWTService{
		tokenAuth:     jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
		revokedTokens: make(map[string]int64),
	}
}

// GenerateAccessToken issues the browser token for a session. It expires with the session.
func (j *JWTService) GenerateAccessToken(claims SessionClaims, expiresAt time.Time) (string, error) {
	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"session_id": claims.SessionID,
		"user_id":    claims.UserID,
		"role":       string(claims.Role),
		"type":       "access",
		"exp":        expiresAt.Unix(),
	})
	return tokenString, err
}

// RevokeToken blocks a token until its own expiry.
func (j *JWTService) RevokeToken(token string, expiresAt time.Time) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.revokedTokens[token] = expiresAt.Unix()
}

func (j *JWTService) IsTokenRevoked(token string) bool {
	j.mu.RLock()
	defer j.mu.RUnlock()
	_, revoked := j.revokedTokens[token]
	return revoked
}

// PruneRevoked forgets revoked tokens that have expired anyway.
func (j *JWTService) PruneRevoked(now time.Time) int {
	j.mu.Lock()
	defer j.mu.Unlock()

	pruned := 0
	for token, exp := range j.revokedTokens {
		if exp <= now.Unix() {
			delete(j.revokedTokens, token)
			pruned++
		}
	}
	return pruned
}

// GenerateSSEToken generates a short-lived token for SSE connections
func (j *JWTService) GenerateSSEToken(claims SessionClaims) (token string, expiresIn int, err error) {
	expiresAt := time.Now().Add(sseTokenTTL).Unix()

	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"session_id": claims.SessionID,
		"user_id":    claims.UserID,
		"role":       string(claims.Role),
		"type":       "sse",
		"exp":        expiresAt,
	})
	if err != nil {
		return "", 0, err
	}

	return tokenString, int(sseTokenTTL.Seconds()), nil
}

// ValidateSSEToken validates an SSE token and returns its claims
func (j *JWTService) ValidateSSEToken(tokenString string) (SessionClaims, error) {
	token, err := jwtauth.VerifyToken(j.tokenAuth, tokenString)
	if err != nil {
		return SessionClaims{}, err
	}

	tokenType, ok := token.Get("type")
	if !ok || tokenType != "sse" {
		return SessionClaims{}, ErrWrongTokenType
	}

	return ClaimsFromMap(token.PrivateClaims())
}

// ClaimsFromMap reads session claims from a decoded claim set.
func ClaimsFromMap(claims map[string]interface{}) (SessionClaims, error) {
	sessionID, _ := claims["session_id"].(string)
	userID, _ := claims["user_id"].(string)
	role, _ := claims["role"].(string)

	if sessionID == "" || userID == "" {
		return SessionClaims{}, jwt.ErrInvalidJWT()
	}

	return SessionClaims{SessionID: sessionID, UserID: userID, Role: user.Role(role)}, nil
}
