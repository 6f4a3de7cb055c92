package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/tablehub/reservation-service/pkg/types"
)

// ReservationStatus represents the lifecycle state of a reservation
type ReservationStatus string

const (
	StatusDraft     ReservationStatus = "draft"
	StatusHeld      ReservationStatus = "held"
	StatusConfirmed ReservationStatus = "confirmed"
	StatusCheckedIn ReservationStatus = "checked_in"
	StatusCompleted ReservationStatus = "completed"
	StatusCancelled ReservationStatus = "cancelled"
	StatusNoShow    ReservationStatus = "no_show"
)

// CancelledBy identifies who initiated a cancellation
type CancelledBy string

const (
	CancelledByCustomer CancelledBy = "customer"
	CancelledByVenue    CancelledBy = "venue"
	CancelledBySystem   CancelledBy = "system"
)

// Reservation represents a table reservation at a venue
// Owned exclusively by the booking layer; everything else holds ids
type Reservation struct {
	ID         uuid.UUID
	VenueID    int64
	CustomerID int64

	Date            time.Time
	StartTime       types.TimeString
	DurationMinutes int
	TableType       TableType
	PartySize       int
	Status          ReservationStatus

	// Policy snapshot taken at creation time. Later policy edits never
	// affect an existing reservation.
	Policy PolicySnapshot

	// Hold deadline, set while status is held and cleared on confirmation
	HoldExpiresAt *time.Time

	SpecialInstructions *string

	CancellationReason *string
	CancelledBy        *CancelledBy
	PenaltyCharged     float64
	CancelledAt        *time.Time
	CheckedInAt        *time.Time
	CompletedAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// StartAt returns the reservation start as an absolute point in time
func (r *Reservation) StartAt() (time.Time, error) {
	return r.StartTime.OnDate(r.Date)
}

// EndAt returns the reservation end as an absolute point in time
func (r *Reservation) EndAt() (time.Time, error) {
	start, err := r.StartAt()
	if err != nil {
		return time.Time{}, err
	}
	return start.Add(time.Duration(r.DurationMinutes) * time.Minute), nil
}

// IsTerminal returns true if the reservation is in a final state
func (r *Reservation) IsTerminal() bool {
	return IsTerminalStatus(r.Status)
}

// HoldsCapacity returns true if the reservation currently occupies a seat
// in the capacity ledger
func (r *Reservation) HoldsCapacity() bool {
	switch r.Status {
	case StatusHeld, StatusConfirmed, StatusCheckedIn:
		return true
	default:
		return false
	}
}

// CanBeCancelled returns true if the reservation can still be cancelled
func (r *Reservation) CanBeCancelled() bool {
	return CanTransition(r.Status, StatusCancelled)
}

// VenueReservationsFilter narrows venue reservation listings
type VenueReservationsFilter struct {
	VenueID         int64              // Required
	StartDate       *time.Time         // Period start (optional)
	EndDate         *time.Time         // Period end (optional)
	TableType       *TableType         // Filter by table type (optional)
	Status          *ReservationStatus // Filter by status (optional)
	IncludeInactive bool               // Include completed/cancelled reservations
}
