package get_available_slots

import (
	"time"

	"github.com/tablehub/reservation-service/pkg/types"
)

// generateTimeSlots генерирует упорядоченный список времен начала слотов
// от открытия до закрытия с фиксированным шагом intervalMinutes.
// Последний слот - тот, чей интервал [start, start+interval] еще помещается
// до закрытия. Для даты в прошлом возвращает пустой список.
func generateTimeSlots(
	openTime, closeTime types.TimeString,
	intervalMinutes int,
	requestDate time.Time,
	now time.Time,
) ([]types.TimeString, error) {
	if isDateInPast(requestDate, now) {
		return []types.TimeString{}, nil
	}

	allSlots := make([]types.TimeString, 0)
	currentSlot := openTime

	for currentSlot.IsBefore(closeTime) {
		slotEnd, err := currentSlot.AddMinutes(intervalMinutes)
		if err != nil {
			return nil, err
		}
		if slotEnd.IsAfter(closeTime) {
			break
		}

		allSlots = append(allSlots, currentSlot)
		currentSlot, err = currentSlot.AddMinutes(intervalMinutes)
		if err != nil {
			return nil, err
		}
	}

	// На не-сегодняшнюю дату времени дня нет смысла фильтровать
	if !isSameDay(requestDate, now) {
		return allSlots, nil
	}

	// Сегодня показываем только слоты, которые еще не начались
	currentTime := types.NewTimeString(now)
	availableSlots := make([]types.TimeString, 0)
	for _, slot := range allSlots {
		if !slot.IsBefore(currentTime) {
			availableSlots = append(availableSlots, slot)
		}
	}

	return availableSlots, nil
}

// isSameDay проверяет, что две даты относятся к одному и тому же дню
func isSameDay(date1, date2 time.Time) bool {
	y1, m1, d1 := date1.Date()
	y2, m2, d2 := date2.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// isDateInPast проверяет, что дата в прошлом (раньше сегодняшнего дня)
func isDateInPast(date, now time.Time) bool {
	dateOnly := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	nowOnly := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return dateOnly.Before(nowOnly)
}
