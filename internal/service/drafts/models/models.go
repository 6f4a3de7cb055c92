package models

import (
	"errors"
	"time"

	"github.com/tablehub/reservation-service/internal/domain"
	"github.com/tablehub/reservation-service/pkg/types"
)

var (
	// ErrInvalidDate возвращается при некорректном формате даты
	ErrInvalidDate = errors.New("invalid date format")

	// ErrInvalidTime возвращается при некорректном формате времени
	ErrInvalidTime = errors.New("invalid time format")
)

// Request модели

// CreateDraftRequest запрос на создание черновика из пошагового визарда
// Черновик может быть неполным - обязателен только ресторан
type CreateDraftRequest struct {
	CustomerID          int64   `json:"customerId"`
	VenueID             int64   `json:"venueId"`
	Date                string  `json:"date,omitempty"`      // "2026-03-14"
	StartTime           string  `json:"startTime,omitempty"` // "19:00"
	TableType           int     `json:"tableType,omitempty"`
	PartySize           int     `json:"partySize,omitempty"`
	DurationMinutes     int     `json:"durationMinutes,omitempty"`
	SpecialInstructions *string `json:"specialInstructions,omitempty"`
}

// ToDomainDraft конвертирует request в domain модель
// ID и CreatedAt проставляет сервис
func (r *CreateDraftRequest) ToDomainDraft() (*domain.DraftReservation, error) {
	draft := &domain.DraftReservation{
		CustomerID:          r.CustomerID,
		VenueID:             r.VenueID,
		TableType:           domain.TableType(r.TableType),
		PartySize:           r.PartySize,
		DurationMinutes:     r.DurationMinutes,
		SpecialInstructions: r.SpecialInstructions,
	}

	if r.Date != "" {
		date, err := time.Parse(domain.DateFormat, r.Date)
		if err != nil {
			return nil, ErrInvalidDate
		}
		draft.Date = date
	}

	if r.StartTime != "" {
		startTime, err := types.NewTimeStringFromString(r.StartTime)
		if err != nil {
			return nil, ErrInvalidTime
		}
		draft.StartTime = startTime
	}

	return draft, nil
}

// Response модели

// DraftResponse ответ с данными черновика
type DraftResponse struct {
	ID                  string  `json:"id"`
	CustomerID          int64   `json:"customerId"`
	VenueID             int64   `json:"venueId"`
	Date                string  `json:"date,omitempty"`
	StartTime           string  `json:"startTime,omitempty"`
	TableType           int     `json:"tableType,omitempty"`
	PartySize           int     `json:"partySize,omitempty"`
	DurationMinutes     int     `json:"durationMinutes,omitempty"`
	SpecialInstructions *string `json:"specialInstructions,omitempty"`
	CreatedAt           string  `json:"createdAt"`
}

// FromDomainDraft конвертирует domain модель в DTO
func FromDomainDraft(d *domain.DraftReservation) *DraftResponse {
	if d == nil {
		return nil
	}

	resp := &DraftResponse{
		ID:                  d.ID.String(),
		CustomerID:          d.CustomerID,
		VenueID:             d.VenueID,
		StartTime:           d.StartTime.String(),
		TableType:           int(d.TableType),
		PartySize:           d.PartySize,
		DurationMinutes:     d.DurationMinutes,
		SpecialInstructions: d.SpecialInstructions,
		CreatedAt:           d.CreatedAt.Format(time.RFC3339),
	}

	if !d.Date.IsZero() {
		resp.Date = d.Date.Format(domain.DateFormat)
	}

	return resp
}
