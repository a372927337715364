package session

import (
	"encoding/json"
	"fmt"

	"github.com/cmlabs-hris/attendance-gateway/internal/domain/user"
)

// MarshalProfile serializes the user profile for persistent stores.
func MarshalProfile(u user.User) (string, error) {
	b, err := json.Marshal(user.ToResponse(u))
	if err != nil {
		return "", fmt.Errorf("failed to encode session profile: %w", err)
	}
	return string(b), nil
}

func UnmarshalProfile(s string) (user.User, error) {
	var r user.UserResponse
	if err := json.Unmarshal([]byte(s), &r); err != nil {
		return user.User{}, fmt.Errorf("failed to decode session profile: %w", err)
	}
	return user.FromResponse(r), nil
}
