package request_booking

import (
	"time"

	"github.com/google/uuid"

	"github.com/tablehub/reservation-service/internal/domain"
	requestBooking "github.com/tablehub/reservation-service/internal/usecase/request_booking"
	"github.com/tablehub/reservation-service/pkg/types"
)

// RequestBookingRequest HTTP request model
// Поля запроса могут прийти из черновика визарда (draftId) или явно
type RequestBookingRequest struct {
	DraftID             *string `json:"draftId,omitempty"`
	VenueID             int64   `json:"venueId"`
	Date                string  `json:"date"`      // "2026-03-14"
	StartTime           string  `json:"startTime"` // "19:00"
	TableType           int     `json:"tableType"`
	PartySize           int     `json:"partySize"`
	DurationMinutes     int     `json:"durationMinutes,omitempty"` // 0 = максимум по правилам
	SpecialInstructions *string `json:"specialInstructions,omitempty"`
}

// ReservationResponse HTTP response model
type ReservationResponse struct {
	ID              string  `json:"id"`
	VenueID         int64   `json:"venueId"`
	CustomerID      int64   `json:"customerId"`
	Date            string  `json:"date"`
	StartTime       string  `json:"startTime"`
	DurationMinutes int     `json:"durationMinutes"`
	TableType       int     `json:"tableType"`
	PartySize       int     `json:"partySize"`
	Status          string  `json:"status"`
	HoldExpiresAt   string  `json:"holdExpiresAt"` // ISO 8601
	PenaltyFee      float64 `json:"penaltyFee"`
	CreatedAt       string  `json:"createdAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *RequestBookingRequest) ToUseCaseRequest(customerID int64) (*requestBooking.Request, error) {
	req := &requestBooking.Request{
		CustomerID:          customerID,
		VenueID:             r.VenueID,
		TableType:           domain.TableType(r.TableType),
		PartySize:           r.PartySize,
		DurationMinutes:     r.DurationMinutes,
		SpecialInstructions: r.SpecialInstructions,
	}

	if r.DraftID != nil {
		draftID, err := uuid.Parse(*r.DraftID)
		if err != nil {
			return nil, err
		}
		req.DraftID = &draftID
		// Остальные поля придут из черновика
		return req, nil
	}

	date, err := time.Parse(domain.DateFormat, r.Date)
	if err != nil {
		return nil, err
	}
	req.Date = date

	startTime, err := types.NewTimeStringFromString(r.StartTime)
	if err != nil {
		return nil, err
	}
	req.StartTime = startTime

	return req, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *requestBooking.Response) *ReservationResponse {
	return &ReservationResponse{
		ID:              resp.ID.String(),
		VenueID:         resp.VenueID,
		CustomerID:      resp.CustomerID,
		Date:            resp.Date.Format(domain.DateFormat),
		StartTime:       resp.StartTime.String(),
		DurationMinutes: resp.DurationMinutes,
		TableType:       int(resp.TableType),
		PartySize:       resp.PartySize,
		Status:          resp.Status,
		HoldExpiresAt:   resp.HoldExpiresAt.Format(time.RFC3339),
		PenaltyFee:      resp.PenaltyFee,
		CreatedAt:       resp.CreatedAt.Format(time.RFC3339),
	}
}
