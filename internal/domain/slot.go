package domain

import (
	"fmt"
	"time"

	"github.com/tablehub/reservation-service/pkg/types"
)

// Slot is a bookable (venue, date, time, table type) tuple
// Derived from operating hours on demand, never persisted as such
type Slot struct {
	VenueID   int64
	Date      time.Time
	StartTime types.TimeString
	TableType TableType
}

// Key returns the ledger key of the slot
func (s Slot) Key() string {
	return fmt.Sprintf("%d:%s:%s:%d", s.VenueID, s.Date.Format(DateFormat), s.StartTime, s.TableType)
}

// AvailableSlot a time slot with remaining capacity for one table type
type AvailableSlot struct {
	StartTime       types.TimeString
	DurationMinutes int
	TableType       TableType
	Remaining       int
	Total           int
}

// IsFull returns true if the slot has no remaining tables
func (s *AvailableSlot) IsFull() bool {
	return s.Remaining <= 0
}

// OccupancyRate returns the occupancy rate as a percentage (0-100)
func (s *AvailableSlot) OccupancyRate() float64 {
	if s.Total == 0 {
		return 0
	}
	occupied := s.Total - s.Remaining
	return float64(occupied) / float64(s.Total) * 100
}
