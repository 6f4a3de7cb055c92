package request_booking

import (
	"fmt"
	"time"

	"github.com/tablehub/reservation-service/internal/domain"
	"github.com/tablehub/reservation-service/pkg/types"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.CustomerID <= 0 {
		return fmt.Errorf("%w: customerID must be positive", ErrInvalidInput)
	}

	// При бронировании из черновика остальные поля приходят из redis
	if req.DraftID != nil {
		return nil
	}

	if req.VenueID <= 0 {
		return fmt.Errorf("%w: venueID must be positive", ErrInvalidInput)
	}

	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	if req.StartTime.IsZero() {
		return fmt.Errorf("%w: startTime is required", ErrInvalidInput)
	}

	if err := req.StartTime.Validate(); err != nil {
		return fmt.Errorf("%w: invalid startTime format: %w", ErrInvalidInput, err)
	}

	if !req.TableType.IsValid() {
		return fmt.Errorf("%w: unknown table type %d", ErrInvalidInput, req.TableType)
	}

	if req.PartySize <= 0 {
		return fmt.Errorf("%w: partySize must be positive", ErrInvalidInput)
	}

	if req.DurationMinutes < 0 {
		return fmt.Errorf("%w: durationMinutes must not be negative", ErrInvalidInput)
	}

	if req.SpecialInstructions != nil && len(*req.SpecialInstructions) > domain.MaxInstructionsLength {
		return fmt.Errorf("%w: specialInstructions too long", ErrInvalidInput)
	}

	return nil
}

// validatePolicy проверяет запрос против правил ресторана
// Нарушение не трогает capacity ledger - проверка идет до списания места
func validatePolicy(req *Request, cfg *domain.PolicyConfig) error {
	if !req.TableType.Fits(req.PartySize) {
		return fmt.Errorf("%w: party of %d does not fit a %d-seat table",
			ErrPolicyViolation, req.PartySize, req.TableType.Seats())
	}

	if req.DurationMinutes > cfg.MaxDurationMinutes {
		return fmt.Errorf("%w: duration %d exceeds maximum %d minutes",
			ErrPolicyViolation, req.DurationMinutes, cfg.MaxDurationMinutes)
	}

	if req.DurationMinutes < domain.MinDurationMinutes {
		return fmt.Errorf("%w: duration %d is below minimum %d minutes",
			ErrPolicyViolation, req.DurationMinutes, domain.MinDurationMinutes)
	}

	return nil
}

// validateDate проверяет, что дата бронирования не в прошлом
func validateDate(bookingDate, now time.Time) error {
	if isDateInPast(bookingDate, now) {
		return ErrInvalidDate
	}
	return nil
}

// validateTimeSlot проверяет, что время начала лежит на сетке слотов ресторана
// и бронирование целиком помещается в рабочие часы
func validateTimeSlot(venue *domain.Venue, startTime types.TimeString, durationMinutes, intervalMinutes int) error {
	if startTime.IsBefore(venue.OpenTime) {
		return fmt.Errorf("%w: before opening time %s", ErrInvalidTimeSlot, venue.OpenTime)
	}

	end, err := startTime.AddMinutes(durationMinutes)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidTimeSlot, err)
	}
	if end.IsAfter(venue.CloseTime) {
		return fmt.Errorf("%w: ends after closing time %s", ErrInvalidTimeSlot, venue.CloseTime)
	}

	// Начало должно лежать на сетке: (start - open) кратно шагу слотов
	openMinutes, err := venue.OpenTime.Minutes()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidTimeSlot, err)
	}
	startMinutes, err := startTime.Minutes()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidTimeSlot, err)
	}
	if (startMinutes-openMinutes)%intervalMinutes != 0 {
		return fmt.Errorf("%w: %s is not aligned to the %d-minute slot grid",
			ErrInvalidTimeSlot, startTime, intervalMinutes)
	}

	return nil
}

// isDateInPast проверяет, что дата раньше сегодняшнего дня
func isDateInPast(date, now time.Time) bool {
	dateOnly := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	nowOnly := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return dateOnly.Before(nowOnly)
}
