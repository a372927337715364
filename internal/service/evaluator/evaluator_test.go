package evaluator

import (
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-gateway/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-gateway/internal/domain/regularization"
	"github.com/cmlabs-hris/attendance-gateway/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		record attendance.Record
		want   attendance.ComplianceStatus
	}{
		{"on time full day", attendance.Record{IsLate: false, TotalHours: 9.5}, attendance.ComplianceCompliant},
		{"on time exactly threshold", attendance.Record{IsLate: false, TotalHours: 9}, attendance.ComplianceCompliant},
		{"on time short day", attendance.Record{IsLate: false, TotalHours: 8.99}, attendance.ComplianceInsufficientHours},
		{"late not regularized", attendance.Record{IsLate: true, TotalHours: 9.2}, attendance.ComplianceInsufficientHours},
		{"late regularized", attendance.Record{IsLate: true, TotalHours: 9.2, IsRegularized: true}, attendance.ComplianceRegularized},
		{"late regularized short day", attendance.Record{IsLate: true, TotalHours: 7, IsRegularized: true}, attendance.ComplianceInsufficientHours},
		{"no checkout", attendance.Record{IsLate: false, TotalHours: 0}, attendance.ComplianceInsufficientHours},
		{"regularized flag without lateness", attendance.Record{IsLate: false, TotalHours: 9, IsRegularized: true}, attendance.ComplianceCompliant},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.record, 9))
		})
	}
}

func TestClassify_NeverLateUnregularized(t *testing.T) {
	for _, late := range []bool{false, true} {
		for _, reg := range []bool{false, true} {
			for _, hours := range []float64{0, 4.5, 9, 12} {
				got := Classify(attendance.Record{IsLate: late, IsRegularized: reg, TotalHours: hours}, 9)
				assert.NotEqual(t, attendance.ComplianceLateUnregularized, got)
			}
		}
	}
}

func pending(submitterID string, role user.Role) regularization.Request {
	return regularization.Request{
		ID:                "1",
		SubmittedByUserID: submitterID,
		SubmittedByRole:   role,
		Status:            regularization.StatusPending,
	}
}

func TestCanActOn_Hierarchy(t *testing.T) {
	tests := []struct {
		viewer    user.Role
		submitter user.Role
		want      bool
	}{
		{user.RoleManager, user.RoleEmployee, true},
		{user.RoleHR, user.RoleEmployee, true},
		{user.RoleAdmin, user.RoleEmployee, true},
		{user.RoleEmployee, user.RoleEmployee, false},
		{user.RoleManager, user.RoleManager, false},
		{user.RoleHR, user.RoleManager, true},
		{user.RoleAdmin, user.RoleManager, true},
		{user.RoleManager, user.RoleHR, false},
		{user.RoleHR, user.RoleHR, true},
		{user.RoleAdmin, user.RoleHR, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.viewer)+"_on_"+string(tt.submitter), func(t *testing.T) {
			assert.Equal(t, tt.want, CanActOn(tt.viewer, "viewer", pending("submitter", tt.submitter)))
		})
	}
}

func TestCanActOn_SelfSubmitted(t *testing.T) {
	req := pending("42", user.RoleHR)
	assert.False(t, CanActOn(user.RoleHR, "42", req))
	assert.False(t, CanActOn(user.RoleAdmin, "42", req))
}

func TestCanActOn_NonPending(t *testing.T) {
	req := pending("7", user.RoleEmployee)

	req.Status = regularization.StatusApproved
	assert.False(t, CanActOn(user.RoleAdmin, "1", req))

	req.Status = regularization.StatusRejected
	assert.False(t, CanActOn(user.RoleAdmin, "1", req))

	for _, raw := range []string{"", "cancelled", "withdrawn"} {
		req.Status = regularization.ParseStatus(raw)
		assert.False(t, CanActOn(user.RoleAdmin, "1", req), "status %q", raw)
	}
}

func TestCanActOn_UnknownSubmitter(t *testing.T) {
	assert.False(t, CanActOn(user.RoleAdmin, "1", pending("", user.RoleEmployee)))
	assert.False(t, CanActOn(user.RoleAdmin, "1", pending("7", "")))
}

func TestEvaluateCheckInTimeliness(t *testing.T) {
	cutoff, err := attendance.ParseCutoff("09:30", "Asia/Kolkata")
	require.NoError(t, err)
	loc := cutoff.Location

	assert.False(t, EvaluateCheckInTimeliness(time.Date(2025, 7, 1, 9, 0, 0, 0, loc), cutoff).IsLate)
	assert.False(t, EvaluateCheckInTimeliness(time.Date(2025, 7, 1, 9, 30, 0, 0, loc), cutoff).IsLate)
	assert.True(t, EvaluateCheckInTimeliness(time.Date(2025, 7, 1, 9, 30, 1, 0, loc), cutoff).IsLate)
	assert.True(t, EvaluateCheckInTimeliness(time.Date(2025, 7, 1, 14, 0, 0, 0, loc), cutoff).IsLate)

	// 03:45 UTC is 09:15 in Kolkata.
	assert.False(t, EvaluateCheckInTimeliness(time.Date(2025, 7, 1, 3, 45, 0, 0, time.UTC), cutoff).IsLate)
}

func TestCheckDuplicate(t *testing.T) {
	day := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	other := day.AddDate(0, 0, 1)

	existing := []regularization.Request{
		{SubmittedByUserID: "7", Date: day, Status: regularization.StatusPending},
	}
	assert.True(t, errors.Is(CheckDuplicate(existing, "7", day), regularization.ErrDuplicateRequest))
	assert.NoError(t, CheckDuplicate(existing, "7", other))
	assert.NoError(t, CheckDuplicate(existing, "8", day))

	existing[0].Status = regularization.StatusApproved
	assert.Error(t, CheckDuplicate(existing, "7", day))

	existing[0].Status = regularization.StatusRejected
	assert.NoError(t, CheckDuplicate(existing, "7", day))

	// Own-request listings may not carry the owner id.
	assert.Error(t, CheckDuplicate([]regularization.Request{{Date: day, Status: regularization.StatusPending}}, "7", day))
}

func TestTileClass(t *testing.T) {
	assert.Equal(t, "green", TileClass(attendance.ComplianceCompliant))
	assert.Equal(t, "green", TileClass(attendance.ComplianceRegularized))
	assert.Equal(t, "red", TileClass(attendance.ComplianceInsufficientHours))
}

func TestRules_Present(t *testing.T) {
	rules := NewRules(attendance.Cutoff{Hour: 9, Minute: 30, Location: time.UTC}, 0)
	assert.Equal(t, DefaultMinimumDailyHours, rules.MinimumDailyHours)

	in := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)
	out := in.Add(9*time.Hour + 30*time.Minute)

	rows := rules.Present([]attendance.Record{
		{Date: in, CheckInAt: &in, CheckOutAt: &out, TotalHours: 9.5},
		{Date: in, CheckInAt: &in, IsLate: true},
	})
	require.Len(t, rows, 2)
	assert.Equal(t, attendance.ComplianceCompliant, rows[0].ComplianceStatus)
	assert.Equal(t, "green", rows[0].Tile)
	assert.Equal(t, "9.50 hrs", rows[0].TotalHoursDisplay)
	assert.Equal(t, "2025-07-01", rows[0].Date)
	assert.Equal(t, attendance.ComplianceInsufficientHours, rows[1].ComplianceStatus)
	assert.Nil(t, rows[1].CheckOut)
}
