package auth

import (
	"context"

	"github.com/cmlabs-hris/attendance-gateway/internal/domain/session"
	"github.com/cmlabs-hris/attendance-gateway/internal/domain/user"
)

type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) error
	Login(ctx context.Context, req LoginRequest) (LoginResponse, error)
	Logout(ctx context.Context, sess session.Session, gatewayToken string) error
	Managers(ctx context.Context) ([]user.ManagerOption, error)
}
