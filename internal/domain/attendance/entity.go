package attendance

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-gateway/internal/pkg/validator"
)

// Record is one business day of a user's attendance as reported by the upstream API.
type Record struct {
	Date          time.Time
	CheckInAt     *time.Time
	CheckOutAt    *time.Time
	TotalHours    float64
	IsLate        bool
	IsRegularized bool

	// DTO / Join
	UserName     string
	ServerStatus string
}

// HasCheckIn reports whether a check-in occurred.
func (r *Record) HasCheckIn() bool {
	return r.CheckInAt != nil
}

// IsOpen reports whether the session is checked in but not yet checked out.
func (r *Record) IsOpen() bool {
	return r.CheckInAt != nil && r.CheckOutAt == nil
}

// ElapsedHours returns the hours between check-in and check-out, 0 if either is
// missing or the pair is inverted.
func ElapsedHours(checkIn, checkOut *time.Time) float64 {
	if checkIn == nil || checkOut == nil {
		return 0
	}
	h := checkOut.Sub(*checkIn).Hours()
	if h < 0 {
		return 0
	}
	return h
}

type ComplianceStatus string

const (
	ComplianceCompliant         ComplianceStatus = "compliant"
	ComplianceLateUnregularized ComplianceStatus = "late-unregularized"
	ComplianceInsufficientHours ComplianceStatus = "insufficient-hours"
	ComplianceRegularized       ComplianceStatus = "regularized"
)

// Tile is the calendar tile / table row colour for a status.
func (s ComplianceStatus) Tile() string {
	switch s {
	case ComplianceCompliant, ComplianceRegularized:
		return "green"
	default:
		return "red"
	}
}

// Cutoff is a time of day in a fixed location after which a check-in is late.
type Cutoff struct {
	Hour     int
	Minute   int
	Location *time.Location
}

// ParseCutoff parses an HH:MM clock in the given IANA timezone.
func ParseCutoff(clock string, timezone string) (Cutoff, error) {
	if !validator.IsValidClock(clock) {
		return Cutoff{}, fmt.Errorf("%w: %q", ErrInvalidCutoff, clock)
	}

	loc := time.UTC
	if timezone != "" {
		l, err := time.LoadLocation(timezone)
		if err != nil {
			return Cutoff{}, fmt.Errorf("failed to load timezone %q: %w", timezone, err)
		}
		loc = l
	}

	t, _ := time.Parse("15:04", clock)
	return Cutoff{Hour: t.Hour(), Minute: t.Minute(), Location: loc}, nil
}

// On returns the cutoff instant on the calendar day of t, in the cutoff location.
func (c Cutoff) On(t time.Time) time.Time {
	loc := c.Location
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), c.Hour, c.Minute, 0, 0, loc)
}

func (c Cutoff) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// Timeliness is the advisory result of comparing a moment against the cutoff.
type Timeliness struct {
	IsLate bool
}
