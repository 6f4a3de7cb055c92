// Package policy evaluates venue reservation rules against a reservation
// and an explicit clock. Every function is pure: "now" is always a
// parameter, nothing here reads time.Now or mutates state.
package policy

import (
	"time"

	"github.com/tablehub/reservation-service/internal/domain"
)

// WithinGracePeriod returns true if a check-in at "now" is still acceptable:
// now is no later than reservation start plus the grace period
func WithinGracePeriod(r *domain.Reservation, now time.Time) bool {
	start, err := r.StartAt()
	if err != nil {
		return false
	}
	deadline := start.Add(time.Duration(r.Policy.GracePeriodMinutes) * time.Minute)
	return !now.After(deadline)
}

// IsLateCancellation returns true if cancelling at "now" falls inside the
// paid-cancellation window: later than start minus freeCancelHoursBefore
func IsLateCancellation(r *domain.Reservation, now time.Time) bool {
	start, err := r.StartAt()
	if err != nil {
		return false
	}
	freeUntil := start.Add(-time.Duration(r.Policy.FreeCancelHoursBefore) * time.Hour)
	return now.After(freeUntil)
}

// ComputeCancellationPenalty returns the fee charged for cancelling at "now":
// the snapshot's penalty fee for a late cancellation, zero otherwise
func ComputeCancellationPenalty(r *domain.Reservation, now time.Time) float64 {
	if IsLateCancellation(r, now) {
		return r.Policy.PenaltyFee
	}
	return 0
}

// ComputeNoShowPenalty returns the fee charged when a confirmed reservation
// is closed as a no-show
func ComputeNoShowPenalty(r *domain.Reservation) float64 {
	return r.Policy.PenaltyFee
}

// ExceedsMaxDuration returns true if the requested duration is longer than
// the policy allows
func ExceedsMaxDuration(durationMinutes, maxDurationMinutes int) bool {
	return durationMinutes > maxDurationMinutes
}

// HoldExpired returns true if a held reservation has outlived its hold deadline
func HoldExpired(r *domain.Reservation, now time.Time) bool {
	if r.Status != domain.StatusHeld || r.HoldExpiresAt == nil {
		return false
	}
	return now.After(*r.HoldExpiresAt)
}

// NoShowThresholdPassed returns true if a confirmed reservation has passed
// the auto-cancel threshold without a check-in: now is later than start plus
// autoCancelAfterMinutes. This threshold, not the grace period, is the
// authoritative no-show condition.
func NoShowThresholdPassed(r *domain.Reservation, now time.Time) bool {
	if r.Status != domain.StatusConfirmed {
		return false
	}
	start, err := r.StartAt()
	if err != nil {
		return false
	}
	threshold := start.Add(time.Duration(r.Policy.AutoCancelAfterMinutes) * time.Minute)
	return now.After(threshold)
}
