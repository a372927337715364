package regularization

import "errors"

var (
	ErrDuplicateRequest = errors.New("a regularization request for this date already exists")
	ErrRequestNotFound  = errors.New("regularization request not found")
	ErrAlreadyProcessed = errors.New("regularization request has already been processed")
	ErrNotPermitted     = errors.New("you are not allowed to act on this regularization request")
	ErrInvalidAction    = errors.New("action must be approve or reject")
)
