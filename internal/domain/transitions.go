package domain

import "errors"

// ErrInvalidTransition is returned for a disallowed status transition
// Leaving a terminal status is never allowed
var ErrInvalidTransition = errors.New("domain: invalid reservation status transition")

// transitions is the table of allowed reservation status transitions
// Terminal statuses (completed, cancelled, no_show) have no outgoing transitions
var transitions = map[ReservationStatus][]ReservationStatus{
	StatusDraft:     {StatusHeld},
	StatusHeld:      {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCheckedIn, StatusCancelled, StatusNoShow},
	StatusCheckedIn: {StatusCompleted},
	StatusCompleted: {},
	StatusCancelled: {},
	StatusNoShow:    {},
}

// CanTransition returns true if the from -> to transition is allowed
func CanTransition(from, to ReservationStatus) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// ValidateTransition checks the transition and returns ErrInvalidTransition
// if it is not allowed
func ValidateTransition(from, to ReservationStatus) error {
	if !CanTransition(from, to) {
		return ErrInvalidTransition
	}
	return nil
}

// IsTerminalStatus returns true for final statuses
func IsTerminalStatus(s ReservationStatus) bool {
	allowed, ok := transitions[s]
	return ok && len(allowed) == 0
}

// IsValidStatus returns true if the status is known
func IsValidStatus(s ReservationStatus) bool {
	_, ok := transitions[s]
	return ok
}
