package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/tablehub/reservation-service/pkg/types"
)

// DraftReservation is an in-progress booking request from the step-by-step wizard
// Lives only in redis with a TTL and holds no seat in the capacity ledger;
// a reservation appears only on the draft -> held transition
type DraftReservation struct {
	ID                  uuid.UUID        `json:"id"`
	CustomerID          int64            `json:"customerId"`
	VenueID             int64            `json:"venueId"`
	Date                time.Time        `json:"date"`
	StartTime           types.TimeString `json:"startTime"`
	TableType           TableType        `json:"tableType"`
	PartySize           int              `json:"partySize"`
	DurationMinutes     int              `json:"durationMinutes"`
	SpecialInstructions *string          `json:"specialInstructions,omitempty"`
	CreatedAt           time.Time        `json:"createdAt"`
}
