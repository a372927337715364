package apiclient

import (
	"time"

	"github.com/lestrrat-go/jwx/v2/jwt"
)

// AccessTokenExpiry reads the exp claim of an upstream access token without
// verifying it. ok is false for opaque tokens or tokens without exp.
func AccessTokenExpiry(token string) (exp time.Time, ok bool) {
	parsed, err := jwt.ParseInsecure([]byte(token))
	if err != nil {
		return time.Time{}, false
	}
	exp = parsed.Expiration()
	if exp.IsZero() {
		return time.Time{}, false
	}
	return exp, true
}
