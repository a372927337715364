package apiclient

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport means the upstream API could not be reached at all.
	ErrTransport = errors.New("upstream API unreachable")
	// ErrUnauthorized is returned for any upstream 401.
	ErrUnauthorized = errors.New("upstream API rejected the credentials")
	// ErrUnexpectedResponse means a 2xx body could not be decoded.
	ErrUnexpectedResponse = errors.New("unexpected response from upstream API")
)

// APIError is a non-2xx upstream response carrying the server's message.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("upstream API error [%d]: %s", e.Status, e.Message)
}

// Is lets errors.Is match any *APIError with the same status.
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	if !ok {
		return false
	}
	return t.Status == e.Status && (t.Message == "" || t.Message == e.Message)
}
