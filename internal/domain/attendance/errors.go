package attendance

import "errors"

// Attendance domain errors
var (
	ErrLateConfirmationRequired = errors.New("you are checking in late, confirm to continue; you may need to submit a regularization request")
	ErrInvalidCutoff            = errors.New("invalid cutoff time, expected HH:MM")
	ErrLookupFilterRequired     = errors.New("user and date are required to look up attendance")
)
