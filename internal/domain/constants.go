package domain

// Default policy values
const (
	DefaultGracePeriodMinutes     = 20
	DefaultPenaltyFee             = 10.0
	DefaultMaxDurationMinutes     = 120
	DefaultFreeCancelHoursBefore  = 2
	DefaultAutoCancelAfterMinutes = 30
	DefaultHoldTTLMinutes         = 10
	DefaultSlotIntervalMinutes    = 30
)

// Business validation constants
const (
	MinSlotIntervalMinutes = 15
	MaxSlotIntervalMinutes = 120
	MinDurationMinutes     = 30
	MaxDurationLimit       = 480 // 8 hours, hard ceiling on maxDurationMinutes
	MinGracePeriodMinutes  = 0
	MaxGracePeriodMinutes  = 120
	MaxPartySize           = 8
	MaxInstructionsLength  = 500
	MaxCancelReasonLength  = 500
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// InactiveStatuses are statuses that hold no seat in the capacity ledger
// Used for listing filters
var InactiveStatuses = []ReservationStatus{
	StatusCompleted,
	StatusCancelled,
	StatusNoShow,
}

// ActiveStatuses are statuses in which a reservation occupies a seat
var ActiveStatuses = []ReservationStatus{
	StatusHeld,
	StatusConfirmed,
	StatusCheckedIn,
}
