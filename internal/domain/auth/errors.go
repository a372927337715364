package auth

import "errors"

var (
	ErrInvalidCredentials      = errors.New("invalid email or password")
	ErrIncompleteLoginResponse = errors.New("login response did not include an access token and user profile")
	ErrInvalidToken            = errors.New("invalid or expired token")
	ErrTokenRevoked            = errors.New("token has been revoked")
	ErrUnsupportedRole         = errors.New("account role is not supported")
)
