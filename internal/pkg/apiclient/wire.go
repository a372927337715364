package apiclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-gateway/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-gateway/internal/domain/regularization"
	"github.com/cmlabs-hris/attendance-gateway/internal/domain/user"
)

// flexID accepts numeric or string ids, and nested objects carrying an id.
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		*f = ""
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexID(s)
	case b[0] == '{':
		var obj struct {
			ID flexID `json:"id"`
		}
		if err := json.Unmarshal(b, &obj); err != nil {
			return err
		}
		*f = obj.ID
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return err
		}
		*f = flexID(n.String())
	}
	return nil
}

// flexFloat accepts numbers, numeric strings and null.
type flexFloat struct {
	value float64
	ok    bool
}

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*f = flexFloat{}
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*f = flexFloat{}
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("invalid number %q: %w", s, err)
		}
		*f = flexFloat{value: v, ok: true}
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*f = flexFloat{value: v, ok: true}
	return nil
}

// listOf decodes either a bare array or a paginated {"results": [...]} page.
type listOf[T any] []T

func (l *listOf[T]) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '{' {
		var page struct {
			Results []T `json:"results"`
		}
		if err := json.Unmarshal(b, &page); err != nil {
			return err
		}
		*l = page.Results
		return nil
	}
	var items []T
	if err := json.Unmarshal(b, &items); err != nil {
		return err
	}
	*l = items
	return nil
}

type wireUser struct {
	ID       flexID  `json:"id"`
	FullName string  `json:"full_name"`
	Username string  `json:"username"`
	Email    string  `json:"email"`
	Role     string  `json:"role"`
	Manager  *flexID `json:"manager"`
}

func (w wireUser) toUser() user.User {
	role, _ := user.ParseRole(w.Role)
	if !role.IsValid() {
		role = user.Role(strings.TrimSpace(w.Role))
	}

	name := w.FullName
	if name == "" {
		name = w.Username
	}

	var managerID *string
	if w.Manager != nil && *w.Manager != "" {
		id := string(*w.Manager)
		managerID = &id
	}

	return user.User{
		ID:        string(w.ID),
		FullName:  name,
		Email:     w.Email,
		Role:      role,
		ManagerID: managerID,
	}
}

type wireLogin struct {
	Access  string    `json:"access"`
	Refresh string    `json:"refresh"`
	User    *wireUser `json:"user"`
}

type wireMessage struct {
	Message string `json:"message"`
}

type wireAttendance struct {
	Date          string    `json:"date"`
	CheckIn       *string   `json:"check_in"`
	CheckOut      *string   `json:"check_out"`
	TotalHours    flexFloat `json:"total_hours"`
	IsLate        bool      `json:"is_late"`
	IsRegularized bool      `json:"is_regularized"`
	Status        string    `json:"status"`
	UserName      string    `json:"user_name"`
	Username      string    `json:"username"`
}

func (w wireAttendance) toRecord(loc *time.Location) (attendance.Record, error) {
	date, err := parseDate(w.Date, loc)
	if err != nil {
		return attendance.Record{}, err
	}

	checkIn := parseStamp(w.CheckIn, date, loc)
	checkOut := parseStamp(w.CheckOut, date, loc)

	name := w.UserName
	if name == "" {
		name = w.Username
	}

	return attendance.Record{
		Date:          date,
		CheckInAt:     checkIn,
		CheckOutAt:    checkOut,
		TotalHours:    totalHours(checkIn, checkOut, w.TotalHours),
		IsLate:        w.IsLate,
		IsRegularized: w.IsRegularized,
		UserName:      name,
		ServerStatus:  w.Status,
	}, nil
}

// totalHours is 0 unless both stamps exist; the server figure wins when present.
func totalHours(checkIn, checkOut *time.Time, server flexFloat) float64 {
	if checkIn == nil || checkOut == nil {
		return 0
	}
	if server.ok {
		if server.value < 0 {
			return 0
		}
		return server.value
	}
	return attendance.ElapsedHours(checkIn, checkOut)
}

type wireRegularization struct {
	ID              flexID  `json:"id"`
	User            flexID  `json:"user"`
	UserID          flexID  `json:"user_id"`
	UserName        string  `json:"user_name"`
	Date            string  `json:"date"`
	Reason          string  `json:"reason"`
	Status          string  `json:"status"`
	SubmittedByRole string  `json:"submitted_by_role"`
	ApprovedBy      flexID  `json:"approved_by"`
	ApprovedByID    flexID  `json:"approved_by_id"`
	ApprovedByName  *string `json:"approved_by_name"`
	CreatedAt       *string `json:"created_at"`
}

// toRequest decodes one row. defaultRole fills a missing submitted_by_role;
// it is empty unless the listing's scope guarantees the submitter's role.
func (w wireRegularization) toRequest(loc *time.Location, defaultRole user.Role) (regularization.Request, error) {
	date, err := parseDate(w.Date, loc)
	if err != nil {
		return regularization.Request{}, err
	}

	submitter := string(w.UserID)
	if submitter == "" {
		submitter = string(w.User)
	}

	role := defaultRole
	if w.SubmittedByRole != "" {
		if r, ok := user.ParseRole(w.SubmittedByRole); ok {
			role = r
		} else {
			role = user.Role(w.SubmittedByRole)
		}
	}

	var approverID *string
	if id := string(w.ApprovedByID); id != "" {
		approverID = &id
	} else if id := string(w.ApprovedBy); id != "" {
		approverID = &id
	}

	return regularization.Request{
		ID:                string(w.ID),
		SubmittedByUserID: submitter,
		UserName:          w.UserName,
		Date:              date,
		Reason:            w.Reason,
		Status:            regularization.ParseStatus(strings.ToLower(w.Status)),
		SubmittedByRole:   role,
		ApprovedByUserID:  approverID,
		ApprovedByName:    w.ApprovedByName,
		CreatedAt:         parseStamp(w.CreatedAt, date, loc),
	}, nil
}

type wireSummary struct {
	PresentToday    int `json:"present_today"`
	OnTime          int `json:"on_time"`
	LateArrivals    int `json:"late_arrivals"`
	PendingRequests int `json:"pending_requests"`
}

var stampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
}

var clockLayouts = []string{
	"15:04:05.999999999",
	"15:04",
}

// parseDate reads the calendar date of a YYYY-MM-DD or full timestamp value.
func parseDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if len(s) < 10 {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}
	d, err := time.ParseInLocation("2006-01-02", s[:10], loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return d, nil
}

// parseStamp reads a full timestamp, or a bare clock time on the given day.
// Unparseable values are treated as absent.
func parseStamp(s *string, day time.Time, loc *time.Location) *time.Time {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}

	for _, layout := range stampLayouts {
		if t, err := time.ParseInLocation(layout, v, loc); err == nil {
			return &t
		}
	}
	for _, layout := range clockLayouts {
		if c, err := time.Parse(layout, v); err == nil {
			t := time.Date(day.Year(), day.Month(), day.Day(), c.Hour(), c.Minute(), c.Second(), c.Nanosecond(), loc)
			return &t
		}
	}
	return nil
}
