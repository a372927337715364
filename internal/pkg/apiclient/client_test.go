package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-gateway/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-gateway/internal/domain/regularization"
	"github.com/cmlabs-hris/attendance-gateway/internal/domain/session"
	"github.com/cmlabs-hris/attendance-gateway/internal/domain/user"
	"github.com/cmlabs-hris/attendance-gateway/internal/pkg/validator"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/api/", 5*time.Second, opts...)
}

func testSession(role user.Role) session.Session {
	return session.Session{
		ID:          "sess-1",
		AccessToken: "upstream-access",
		User:        user.User{ID: "7", FullName: "Asha Rao", Role: role},
		Username:    "Asha Rao",
		Role:        role,
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func TestLogin_Success(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/login/", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))

		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "asha@example.com", body["email"])

		writeJSON(w, http.StatusOK, map[string]any{
			"access":  "a-token",
			"refresh": "r-token",
			"user":    map[string]any{"id": 7, "full_name": "Asha Rao", "email": "asha@example.com", "role": "Employee", "manager": 3},
		})
	})

	res, err := c.Login(context.Background(), "asha@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "a-token", res.AccessToken)
	assert.Equal(t, "r-token", res.RefreshToken)
	assert.Equal(t, "7", res.User.ID)
	assert.Equal(t, user.RoleEmployee, res.User.Role)
	require.NotNil(t, res.User.ManagerID)
	assert.Equal(t, "3", *res.User.ManagerID)
}

func TestLogin_IncompleteResponse(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"refresh": "r-token", "user": map[string]any{"id": 1}})
	})

	_, err := c.Login(context.Background(), "a@b.co", "pw")
	assert.True(t, errors.Is(err, auth.ErrIncompleteLoginResponse))

	c = newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"access": "a-token"})
	})

	_, err = c.Login(context.Background(), "a@b.co", "pw")
	assert.True(t, errors.Is(err, auth.ErrIncompleteLoginResponse))
}

func TestLogin_Unauthorized(t *testing.T) {
	var hookCalls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"detail": "No active account"})
	}, WithUnauthorizedHook(func(ctx context.Context, sess session.Session) {
		atomic.AddInt32(&hookCalls, 1)
	}))

	_, err := c.Login(context.Background(), "a@b.co", "bad")
	assert.True(t, errors.Is(err, ErrUnauthorized))
	assert.Equal(t, int32(0), atomic.LoadInt32(&hookCalls))
}

func TestRegister_FieldErrors(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"password": []string{"This password is too common."},
			"email":    []string{"user with this email already exists."},
		})
	})

	err := c.Register(context.Background(), auth.RegisterRequest{FullName: "A", Email: "a@b.co", Password: "x", ConfirmPassword: "x", Role: "employee"})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	m := verrs.ToMap()
	assert.Equal(t, "This password is too common.", m["password"])
	assert.Equal(t, "user with this email already exists.", m["email"])
}

func TestCheckIn_SendsBearerAndReturnsMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/employee/checkin/", r.URL.Path)
		assert.Equal(t, "Bearer upstream-access", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, map[string]string{"message": "Checked in at 09:12"})
	})

	msg, err := c.CheckIn(context.Background(), testSession(user.RoleEmployee))
	require.NoError(t, err)
	assert.Equal(t, "Checked in at 09:12", msg)
}

func TestCheckIn_ServerErrorMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Already checked in today"})
	})

	_, err := c.CheckIn(context.Background(), testSession(user.RoleEmployee))
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "Already checked in today", apiErr.Message)
}

func TestAuthenticatedCall_UnauthorizedRunsHook(t *testing.T) {
	var got session.Session
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}, WithUnauthorizedHook(func(ctx context.Context, sess session.Session) {
		got = sess
	}))

	_, err := c.MyAttendance(context.Background(), testSession(user.RoleEmployee))
	assert.True(t, errors.Is(err, ErrUnauthorized))
	assert.Equal(t, "sess-1", got.ID)
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := New(url, time.Second)
	_, err := c.ListManagers(context.Background())
	assert.True(t, errors.Is(err, ErrTransport))
}

func TestMyAttendance_Decoding(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []map[string]any{
			{
				"date":        "2025-07-01",
				"check_in":    "2025-07-01T09:05:00+05:30",
				"check_out":   "2025-07-01T18:35:00+05:30",
				"total_hours": "9.50",
				"is_late":     false,
				"status":      "green",
			},
			{
				"date":        "2025-07-02",
				"check_in":    "10:15:00",
				"check_out":   nil,
				"total_hours": 3.2,
				"is_late":     true,
			},
			{
				"date":     "2025-07-03",
				"check_in": "09:00",
				"check_out": "17:30",
			},
			{"date": "garbage"},
		})
	})

	records, err := c.MyAttendance(context.Background(), testSession(user.RoleEmployee))
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.InDelta(t, 9.5, records[0].TotalHours, 1e-9)
	assert.Equal(t, "green", records[0].ServerStatus)
	assert.Equal(t, "Asha Rao", records[0].UserName)

	assert.Equal(t, 0.0, records[1].TotalHours)
	assert.True(t, records[1].IsLate)
	require.NotNil(t, records[1].CheckInAt)
	assert.Equal(t, 10, records[1].CheckInAt.Hour())
	assert.Nil(t, records[1].CheckOutAt)

	assert.InDelta(t, 8.5, records[2].TotalHours, 1e-9)
}

func TestRegularizations_Decoding(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"results": []map[string]any{
				{"id": 11, "user": 4, "user_name": "Ravi", "date": "2025-07-01", "reason": "Traffic", "status": "pending"},
				{"id": "12", "user_id": "5", "date": "2025-07-02", "status": "approved", "submitted_by_role": "manager", "approved_by": 3, "approved_by_name": "Meera"},
				{"id": 13, "user_id": 6, "date": "2025-07-03", "status": "withdrawn", "approved_by": map[string]any{"id": 4}},
			},
		})
	})

	reqs, err := c.AdminRegularizations(context.Background(), testSession(user.RoleAdmin))
	require.NoError(t, err)
	require.Len(t, reqs, 3)

	assert.Equal(t, "11", reqs[0].ID)
	assert.Equal(t, "4", reqs[0].SubmittedByUserID)
	assert.Empty(t, reqs[0].SubmittedByRole, "missing role stays unknown")
	assert.Equal(t, regularization.StatusPending, reqs[0].Status)
	assert.Nil(t, reqs[0].ApprovedByUserID)

	assert.Equal(t, "5", reqs[1].SubmittedByUserID)
	assert.Equal(t, user.RoleManager, reqs[1].SubmittedByRole)
	require.NotNil(t, reqs[1].ApprovedByName)
	assert.Equal(t, "Meera", *reqs[1].ApprovedByName)
	require.NotNil(t, reqs[1].ApprovedByUserID)
	assert.Equal(t, "3", *reqs[1].ApprovedByUserID)

	assert.Equal(t, regularization.StatusUnknown, reqs[2].Status)
	require.NotNil(t, reqs[2].ApprovedByUserID)
	assert.Equal(t, "4", *reqs[2].ApprovedByUserID)
}

func TestTeamRegularizations_DefaultsToEmployee(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/manager/regularizations/", r.URL.Path)
		writeJSON(w, http.StatusOK, []map[string]any{
			{"id": 1, "user": 4, "date": "2025-07-01", "reason": "x", "status": "pending"},
		})
	})

	reqs, err := c.TeamRegularizations(context.Background(), testSession(user.RoleManager))
	require.NoError(t, err)
	require.Len(t, reqs, 1)
	assert.Equal(t, user.RoleEmployee, reqs[0].SubmittedByRole)
}

func TestMyRegularizations_FillsOwner(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []map[string]any{
			{"id": 1, "date": "2025-07-01", "reason": "x", "status": "pending"},
		})
	})

	reqs, err := c.MyRegularizations(context.Background(), testSession(user.RoleManager))
	require.NoError(t, err)
	require.Len(t, reqs, 1)
	assert.Equal(t, "7", reqs[0].SubmittedByUserID)
	assert.Equal(t, user.RoleManager, reqs[0].SubmittedByRole)
	assert.Equal(t, "Asha Rao", reqs[0].UserName)
}

func TestSubmitRegularization_PathByRole(t *testing.T) {
	var path string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		writeJSON(w, http.StatusCreated, map[string]string{"message": "ok"})
	})

	require.NoError(t, c.SubmitRegularization(context.Background(), testSession(user.RoleEmployee), "2025-07-01", "x"))
	assert.Equal(t, "/api/employee/regularize/", path)

	require.NoError(t, c.SubmitRegularization(context.Background(), testSession(user.RoleManager), "2025-07-01", "x"))
	assert.Equal(t, "/api/hr-manager/regularize/", path)

	require.NoError(t, c.SubmitRegularization(context.Background(), testSession(user.RoleHR), "2025-07-01", "x"))
	assert.Equal(t, "/api/hr-manager/regularize/", path)
}

func TestActAndLookupPaths(t *testing.T) {
	var paths []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.RequestURI())
		writeJSON(w, http.StatusOK, []any{})
	})
	ctx := context.Background()

	require.NoError(t, c.ActOnTeamRegularization(ctx, testSession(user.RoleManager), "9", regularization.ActionApprove))
	require.NoError(t, c.ActOnRegularizationAsAdmin(ctx, testSession(user.RoleAdmin), "9", regularization.ActionReject))
	_, err := c.HRAttendance(ctx, testSession(user.RoleHR), AttendanceQuery{Username: "Ravi Kumar", Date: "2025-07-01"})
	require.NoError(t, err)
	_, err = c.AdminAttendance(ctx, testSession(user.RoleAdmin), "4", "2025-07-01")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"/api/manager/regularizations/9/approve/",
		"/api/admin/regularizations/9/reject/",
		"/api/hr/attendance/?date=2025-07-01&username=Ravi+Kumar",
		"/api/admin/attendance/?date=2025-07-01&user_id=4",
	}, paths)
}

func TestHRSummary(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]int{"present_today": 10, "on_time": 7, "late_arrivals": 3, "pending_requests": 2})
	})

	s, err := c.HRSummary(context.Background(), testSession(user.RoleHR))
	require.NoError(t, err)
	assert.Equal(t, Summary{PresentToday: 10, OnTime: 7, LateArrivals: 3, PendingRequests: 2}, s)
}

func TestAccessTokenExpiry(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	tok, err := jwt.NewBuilder().Expiration(exp).Build()
	require.NoError(t, err)
	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256, []byte("upstream-secret")))
	require.NoError(t, err)

	got, ok := AccessTokenExpiry(string(signed))
	require.True(t, ok)
	assert.True(t, exp.Equal(got))

	_, ok = AccessTokenExpiry("opaque-token")
	assert.False(t, ok)
}
