package domain

import "time"

// PolicyConfig reservation rules of a venue
// Editable by venue managers; existing reservations keep the snapshot
// taken when they were created
type PolicyConfig struct {
	ID      int64
	VenueID int64

	GracePeriodMinutes     int     // Allowed lateness after the reservation start
	PenaltyFee             float64 // Fee for no-show and late cancellation
	MaxDurationMinutes     int     // Maximum reservation duration
	FreeCancelHoursBefore  int     // Free cancellation up to N hours before start
	AutoCancelAfterMinutes int     // No-show threshold after the reservation start
	HoldTTLMinutes         int     // Hold lifetime until payment confirmation
	SlotIntervalMinutes    int     // Slot grid step

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Snapshot returns the immutable copy stored on a reservation at creation
func (p *PolicyConfig) Snapshot() PolicySnapshot {
	return PolicySnapshot{
		GracePeriodMinutes:     p.GracePeriodMinutes,
		PenaltyFee:             p.PenaltyFee,
		MaxDurationMinutes:     p.MaxDurationMinutes,
		FreeCancelHoursBefore:  p.FreeCancelHoursBefore,
		AutoCancelAfterMinutes: p.AutoCancelAfterMinutes,
		HoldTTLMinutes:         p.HoldTTLMinutes,
	}
}

// PolicySnapshot policy values frozen onto a reservation at creation time
type PolicySnapshot struct {
	GracePeriodMinutes     int
	PenaltyFee             float64
	MaxDurationMinutes     int
	FreeCancelHoursBefore  int
	AutoCancelAfterMinutes int
	HoldTTLMinutes         int
}

// DefaultPolicyConfig returns a config with default rules
// Used when a venue has no config of its own
func DefaultPolicyConfig(venueID int64) *PolicyConfig {
	return &PolicyConfig{
		VenueID:                venueID,
		GracePeriodMinutes:     DefaultGracePeriodMinutes,
		PenaltyFee:             DefaultPenaltyFee,
		MaxDurationMinutes:     DefaultMaxDurationMinutes,
		FreeCancelHoursBefore:  DefaultFreeCancelHoursBefore,
		AutoCancelAfterMinutes: DefaultAutoCancelAfterMinutes,
		HoldTTLMinutes:         DefaultHoldTTLMinutes,
		SlotIntervalMinutes:    DefaultSlotIntervalMinutes,
	}
}
