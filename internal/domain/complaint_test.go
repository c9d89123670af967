package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTicketIDFormat(t *testing.T) {
	now := time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 200; i++ {
		id := NewTicketID(now)
		require.True(t, ValidTicketID(id), id)
		assert.Equal(t, "JSK-2026-", id[:9])
	}
	assert.False(t, ValidTicketID("JSK-2026-123"))
	assert.False(t, ValidTicketID("ABC-2026-12345"))
}

func TestComplaintStatus(t *testing.T) {
	assert.True(t, StatusResolved.IsTerminal())
	assert.True(t, StatusRejected.IsTerminal())
	assert.False(t, StatusPending.IsTerminal())
	assert.False(t, StatusInProgress.IsTerminal())

	got, err := ParseComplaintStatus(" resolved ")
	require.NoError(t, err)
	assert.Equal(t, StatusResolved, got)
	_, err = ParseComplaintStatus("CLOSED")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestClampSeverity(t *testing.T) {
	assert.Equal(t, 1, ClampSeverity(0))
	assert.Equal(t, 5, ClampSeverity(9))
	assert.Equal(t, 3, ClampSeverity(3))
}

func TestNotificationContent(t *testing.T) {
	assert.Equal(t, NotificationResolved, NotificationTypeForStatus(StatusResolved))
	assert.Equal(t, NotificationStatusUpdate, NotificationTypeForStatus(StatusRejected))
	assert.Equal(t, NotificationStatusUpdate, NotificationTypeForStatus(StatusInProgress))
	assert.Equal(t,
		"Your complaint JSK-2026-12345 status has been updated to REJECTED.",
		StatusUpdateMessage("JSK-2026-12345", StatusRejected))
}
