package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var allStatuses = []ReservationStatus{
	StatusDraft,
	StatusHeld,
	StatusConfirmed,
	StatusCheckedIn,
	StatusCompleted,
	StatusCancelled,
	StatusNoShow,
}

func TestCanTransition(t *testing.T) {
	allowed := map[ReservationStatus][]ReservationStatus{
		StatusDraft:     {StatusHeld},
		StatusHeld:      {StatusConfirmed, StatusCancelled},
		StatusConfirmed: {StatusCheckedIn, StatusCancelled, StatusNoShow},
		StatusCheckedIn: {StatusCompleted},
	}

	isAllowed := func(from, to ReservationStatus) bool {
		for _, s := range allowed[from] {
			if s == to {
				return true
			}
		}
		return false
	}

	// Полный перебор пар статусов: всё, что не перечислено явно, запрещено
	for _, from := range allStatuses {
		for _, to := range allStatuses {
			got := CanTransition(from, to)
			assert.Equal(t, isAllowed(from, to), got, "transition %s -> %s", from, to)
		}
	}
}

func TestValidateTransition(t *testing.T) {
	assert.NoError(t, ValidateTransition(StatusHeld, StatusConfirmed))
	assert.ErrorIs(t, ValidateTransition(StatusCompleted, StatusCancelled), ErrInvalidTransition)
	assert.ErrorIs(t, ValidateTransition(StatusHeld, StatusCheckedIn), ErrInvalidTransition)
	assert.ErrorIs(t, ValidateTransition("unknown", StatusHeld), ErrInvalidTransition)
}

func TestIsTerminalStatus(t *testing.T) {
	terminal := map[ReservationStatus]bool{
		StatusCompleted: true,
		StatusCancelled: true,
		StatusNoShow:    true,
	}

	for _, s := range allStatuses {
		assert.Equal(t, terminal[s], IsTerminalStatus(s), "status %s", s)
	}

	assert.False(t, IsTerminalStatus("unknown"))
}

func TestIsValidStatus(t *testing.T) {
	for _, s := range allStatuses {
		assert.True(t, IsValidStatus(s), "status %s", s)
	}
	assert.False(t, IsValidStatus("pending"))
	assert.False(t, IsValidStatus(""))
}
