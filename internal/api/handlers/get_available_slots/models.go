package get_available_slots

import (
	"github.com/tablehub/reservation-service/internal/domain"
	getAvailableSlots "github.com/tablehub/reservation-service/internal/usecase/get_available_slots"
)

// SlotResponse HTTP модель слота с доступностью одного типа столика
type SlotResponse struct {
	StartTime string `json:"startTime"` // "19:00"
	TableType int    `json:"tableType"`
	Remaining int    `json:"remaining"`
	Total     int    `json:"total"`
}

// AvailableSlotsResponse HTTP модель ответа со списком слотов
type AvailableSlotsResponse struct {
	VenueID int64          `json:"venueId"`
	Date    string         `json:"date"` // "2026-03-14"
	Slots   []SlotResponse `json:"slots"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailableSlots.Response) *AvailableSlotsResponse {
	slots := make([]SlotResponse, 0, len(resp.Slots))
	for _, s := range resp.Slots {
		slots = append(slots, SlotResponse{
			StartTime: s.StartTime.String(),
			TableType: int(s.TableType),
			Remaining: s.Remaining,
			Total:     s.Total,
		})
	}

	return &AvailableSlotsResponse{
		VenueID: resp.VenueID,
		Date:    resp.Date.Format(domain.DateFormat),
		Slots:   slots,
	}
}
