package apiclient

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/cmlabs-hris/attendance-gateway/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-gateway/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-gateway/internal/domain/regularization"
	"github.com/cmlabs-hris/attendance-gateway/internal/domain/session"
	"github.com/cmlabs-hris/attendance-gateway/internal/domain/user"
)

// ========================================
// PUBLIC
// ========================================

// LoginResult is a complete upstream login.
type LoginResult struct {
	AccessToken  string
	RefreshToken string
	User         user.User
}

func (c *Client) Register(ctx context.Context, req auth.RegisterRequest) error {
	return c.do(ctx, nil, http.MethodPost, "/register/", nil, req, nil)
}

// Login returns auth.ErrIncompleteLoginResponse when the body lacks the access
// token or the user profile.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResult, error) {
	payload := map[string]string{"email": email, "password": password}

	var out wireLogin
	if err := c.do(ctx, nil, http.MethodPost, "/login/", nil, payload, &out); err != nil {
		return LoginResult{}, err
	}
	if out.Access == "" || out.User == nil {
		return LoginResult{}, auth.ErrIncompleteLoginResponse
	}

	return LoginResult{
		AccessToken:  out.Access,
		RefreshToken: out.Refresh,
		User:         out.User.toUser(),
	}, nil
}

func (c *Client) ListManagers(ctx context.Context) ([]user.ManagerOption, error) {
	var out listOf[wireUser]
	if err := c.do(ctx, nil, http.MethodGet, "/managers/", nil, nil, &out); err != nil {
		return nil, err
	}

	managers := make([]user.ManagerOption, 0, len(out))
	for _, w := range out {
		u := w.toUser()
		managers = append(managers, user.ManagerOption{ID: u.ID, FullName: u.FullName})
	}
	return managers, nil
}

// ========================================
// EMPLOYEE
// ========================================

func (c *Client) CheckIn(ctx context.Context, sess session.Session) (string, error) {
	var out wireMessage
	if err := c.do(ctx, &sess, http.MethodPost, "/employee/checkin/", nil, struct{}{}, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

func (c *Client) CheckOut(ctx context.Context, sess session.Session) (string, error) {
	var out wireMessage
	if err := c.do(ctx, &sess, http.MethodPost, "/employee/checkout/", nil, struct{}{}, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

func (c *Client) MyAttendance(ctx context.Context, sess session.Session) ([]attendance.Record, error) {
	records, err := c.attendance(ctx, sess, "/employee/attendance/", nil)
	if err != nil {
		return nil, err
	}
	for i := range records {
		if records[i].UserName == "" {
			records[i].UserName = sess.Username
		}
	}
	return records, nil
}

func (c *Client) MyRegularizations(ctx context.Context, sess session.Session) ([]regularization.Request, error) {
	return c.ownRegularizations(ctx, sess, "/employee/my-regularizations/")
}

// SubmitRegularization posts to the role's submission endpoint: employees use
// /employee/regularize/, managers and hr use /hr-manager/regularize/.
func (c *Client) SubmitRegularization(ctx context.Context, sess session.Session, date, reason string) error {
	path := "/employee/regularize/"
	if sess.Role == user.RoleManager || sess.Role == user.RoleHR {
		path = "/hr-manager/regularize/"
	}
	payload := map[string]string{"date": date, "reason": reason}
	return c.do(ctx, &sess, http.MethodPost, path, nil, payload, nil)
}

// ========================================
// MANAGER
// ========================================

func (c *Client) TeamAttendance(ctx context.Context, sess session.Session) ([]attendance.Record, error) {
	return c.attendance(ctx, sess, "/manager/attendance/", nil)
}

func (c *Client) TeamRegularizations(ctx context.Context, sess session.Session) ([]regularization.Request, error) {
	// The team listing only ever holds employee requests.
	return c.regularizations(ctx, sess, "/manager/regularizations/", user.RoleEmployee)
}

func (c *Client) ActOnTeamRegularization(ctx context.Context, sess session.Session, id string, action regularization.Action) error {
	path := fmt.Sprintf("/manager/regularizations/%s/%s/", url.PathEscape(id), action)
	return c.do(ctx, &sess, http.MethodPost, path, nil, struct{}{}, nil)
}

// ========================================
// HR
// ========================================

// AttendanceQuery selects one user's attendance; empty fields are omitted.
type AttendanceQuery struct {
	UserID   string
	Username string
	Date     string
}

func (q AttendanceQuery) values() url.Values {
	v := url.Values{}
	if q.UserID != "" {
		v.Set("user_id", q.UserID)
	} else if q.Username != "" {
		v.Set("username", q.Username)
	}
	if q.Date != "" {
		v.Set("date", q.Date)
	}
	return v
}

type Summary struct {
	PresentToday    int
	OnTime          int
	LateArrivals    int
	PendingRequests int
}

func (c *Client) HRSummary(ctx context.Context, sess session.Session) (Summary, error) {
	var out wireSummary
	if err := c.do(ctx, &sess, http.MethodGet, "/hr/summary/", nil, nil, &out); err != nil {
		return Summary{}, err
	}
	return Summary(out), nil
}

func (c *Client) HRUsers(ctx context.Context, sess session.Session) ([]user.User, error) {
	return c.users(ctx, sess, "/hr/users/")
}

func (c *Client) HRAttendance(ctx context.Context, sess session.Session, q AttendanceQuery) ([]attendance.Record, error) {
	return c.attendance(ctx, sess, "/hr/attendance/", q.values())
}

func (c *Client) HRRegularizations(ctx context.Context, sess session.Session) ([]regularization.Request, error) {
	return c.regularizations(ctx, sess, "/hr/regularizations/", "")
}

func (c *Client) HRMyRegularizations(ctx context.Context, sess session.Session) ([]regularization.Request, error) {
	return c.ownRegularizations(ctx, sess, "/hr/my-regularizations/")
}

// ========================================
// ADMIN
// ========================================

func (c *Client) AdminUsers(ctx context.Context, sess session.Session) ([]user.User, error) {
	return c.users(ctx, sess, "/admin/users/")
}

func (c *Client) AdminRegularizations(ctx context.Context, sess session.Session) ([]regularization.Request, error) {
	return c.regularizations(ctx, sess, "/admin/regularizations/", "")
}

func (c *Client) AdminAttendance(ctx context.Context, sess session.Session, userID, date string) ([]attendance.Record, error) {
	return c.attendance(ctx, sess, "/admin/attendance/", AttendanceQuery{UserID: userID, Date: date}.values())
}

// ActOnRegularizationAsAdmin is used by both hr and admin.
func (c *Client) ActOnRegularizationAsAdmin(ctx context.Context, sess session.Session, id string, action regularization.Action) error {
	path := fmt.Sprintf("/admin/regularizations/%s/%s/", url.PathEscape(id), action)
	return c.do(ctx, &sess, http.MethodPost, path, nil, struct{}{}, nil)
}

// ========================================
// shared decoders
// ========================================

func (c *Client) attendance(ctx context.Context, sess session.Session, path string, query url.Values) ([]attendance.Record, error) {
	var out listOf[wireAttendance]
	if err := c.do(ctx, &sess, http.MethodGet, path, query, nil, &out); err != nil {
		return nil, err
	}

	records := make([]attendance.Record, 0, len(out))
	for _, w := range out {
		rec, err := w.toRecord(c.location)
		if err != nil {
			slog.Warn("skipping attendance row", "path", path, "error", err)
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

func (c *Client) regularizations(ctx context.Context, sess session.Session, path string, defaultRole user.Role) ([]regularization.Request, error) {
	var out listOf[wireRegularization]
	if err := c.do(ctx, &sess, http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, err
	}

	requests := make([]regularization.Request, 0, len(out))
	for _, w := range out {
		req, err := w.toRequest(c.location, defaultRole)
		if err != nil {
			slog.Warn("skipping regularization row", "path", path, "error", err)
			continue
		}
		requests = append(requests, req)
	}
	return requests, nil
}

// ownRegularizations fills in the owner fields the "my requests" listings omit.
func (c *Client) ownRegularizations(ctx context.Context, sess session.Session, path string) ([]regularization.Request, error) {
	requests, err := c.regularizations(ctx, sess, path, sess.Role)
	if err != nil {
		return nil, err
	}
	for i := range requests {
		if requests[i].SubmittedByUserID == "" {
			requests[i].SubmittedByUserID = sess.User.ID
		}
		if requests[i].UserName == "" {
			requests[i].UserName = sess.Username
		}
	}
	return requests, nil
}

func (c *Client) users(ctx context.Context, sess session.Session, path string) ([]user.User, error) {
	var out listOf[wireUser]
	if err := c.do(ctx, &sess, http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, err
	}

	users := make([]user.User, 0, len(out))
	for _, w := range out {
		users = append(users, w.toUser())
	}
	return users, nil
}
