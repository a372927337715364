package regularization

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseStatus(t *testing.T) {
	assert.Equal(t, StatusApproved, ParseStatus("approved"))
	assert.Equal(t, StatusRejected, ParseStatus("rejected"))
	assert.Equal(t, StatusPending, ParseStatus("pending"))
	assert.Equal(t, StatusUnknown, ParseStatus(""))
	assert.Equal(t, StatusUnknown, ParseStatus("cancelled"))
	assert.Equal(t, StatusUnknown, ParseStatus("withdrawn"))
}

func TestStatus_Blocks(t *testing.T) {
	assert.True(t, StatusPending.Blocks())
	assert.True(t, StatusApproved.Blocks())
	assert.False(t, StatusRejected.Blocks())
	assert.True(t, StatusUnknown.Blocks())
}

func TestParseAction(t *testing.T) {
	a, err := ParseAction("approve")
	assert.NoError(t, err)
	assert.Equal(t, ActionApprove, a)

	_, err = ParseAction("delete")
	assert.True(t, errors.Is(err, ErrInvalidAction))
}

func TestSameDate(t *testing.T) {
	a := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	b := time.Date(2025, 7, 1, 18, 30, 0, 0, time.UTC)
	c := time.Date(2025, 7, 2, 0, 0, 0, 0, time.UTC)

	assert.True(t, SameDate(a, b))
	assert.False(t, SameDate(a, c))
}

func TestSubmitRequest_Validate(t *testing.T) {
	assert.NoError(t, (&SubmitRequest{Date: "2025-07-01", Reason: "Traffic"}).Validate())
	assert.Error(t, (&SubmitRequest{Date: "", Reason: "Traffic"}).Validate())
	assert.Error(t, (&SubmitRequest{Date: "01-07-2025", Reason: "Traffic"}).Validate())
	assert.Error(t, (&SubmitRequest{Date: "2025-07-01", Reason: "  "}).Validate())
}
