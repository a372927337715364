package user

import "errors"

var (
	ErrUnknownRole             = errors.New("unknown role")
	ErrInsufficientPermissions = errors.New("insufficient permissions")
)
