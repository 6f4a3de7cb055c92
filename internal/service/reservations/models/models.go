package models

import (
	"errors"
	"time"

	"github.com/tablehub/reservation-service/internal/domain"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid reservation status")
)

// Request модели

// CancelReservationRequest запрос на отмену бронирования
type CancelReservationRequest struct {
	UserID             int64  `json:"userId"`
	CancellationReason string `json:"cancellationReason"`
}

// GetCustomerReservationsRequest запрос на получение бронирований клиента
type GetCustomerReservationsRequest struct {
	CustomerID int64   `json:"customerId"`
	Status     *string `json:"status,omitempty"`
}

// GetVenueReservationsRequest запрос на получение бронирований ресторана
type GetVenueReservationsRequest struct {
	UserID          int64      `json:"userId"`
	VenueID         int64      `json:"venueId"`
	StartDate       *time.Time `json:"startDate,omitempty"`       // Начало периода (опционально)
	EndDate         *time.Time `json:"endDate,omitempty"`         // Конец периода (опционально)
	TableType       *int       `json:"tableType,omitempty"`       // Фильтр по типу столика (опционально)
	Status          *string    `json:"status,omitempty"`          // Фильтр по статусу (опционально)
	IncludeInactive bool       `json:"includeInactive,omitempty"` // Включить завершённые и отменённые
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *GetVenueReservationsRequest) ToDomainFilter() (domain.VenueReservationsFilter, error) {
	filter := domain.VenueReservationsFilter{
		VenueID:         r.VenueID,
		StartDate:       r.StartDate,
		EndDate:         r.EndDate,
		IncludeInactive: r.IncludeInactive,
	}

	if r.TableType != nil {
		tt := domain.TableType(*r.TableType)
		if !tt.IsValid() {
			return filter, errors.New("invalid table type")
		}
		filter.TableType = &tt
	}

	if r.Status != nil {
		status, err := ToDomainReservationStatus(*r.Status)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}

	return filter, nil
}

// Response модели

// ReservationResponse ответ с данными бронирования
type ReservationResponse struct {
	ID              string `json:"id"`
	VenueID         int64  `json:"venueId"`
	CustomerID      int64  `json:"customerId"`
	Date            string `json:"date"`      // "2026-03-14"
	StartTime       string `json:"startTime"` // "19:00"
	DurationMinutes int    `json:"durationMinutes"`
	TableType       int    `json:"tableType"`
	PartySize       int    `json:"partySize"`
	Status          string `json:"status"`

	HoldExpiresAt       *time.Time `json:"holdExpiresAt,omitempty"`
	SpecialInstructions *string    `json:"specialInstructions,omitempty"`

	CancellationReason *string    `json:"cancellationReason,omitempty"`
	CancelledBy        *string    `json:"cancelledBy,omitempty"`
	PenaltyCharged     float64    `json:"penaltyCharged"`
	CancelledAt        *time.Time `json:"cancelledAt,omitempty"`
	CheckedInAt        *time.Time `json:"checkedInAt,omitempty"`
	CompletedAt        *time.Time `json:"completedAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ReservationListResponse ответ со списком бронирований
type ReservationListResponse struct {
	Reservations []ReservationResponse `json:"reservations"`
}

// Методы конвертации

// FromDomainReservation конвертирует domain модель в DTO
func FromDomainReservation(r *domain.Reservation) *ReservationResponse {
	if r == nil {
		return nil
	}

	resp := &ReservationResponse{
		ID:                  r.ID.String(),
		VenueID:             r.VenueID,
		CustomerID:          r.CustomerID,
		Date:                r.Date.Format(domain.DateFormat),
		StartTime:           r.StartTime.String(),
		DurationMinutes:     r.DurationMinutes,
		TableType:           int(r.TableType),
		PartySize:           r.PartySize,
		Status:              string(r.Status),
		HoldExpiresAt:       r.HoldExpiresAt,
		SpecialInstructions: r.SpecialInstructions,
		CancellationReason:  r.CancellationReason,
		PenaltyCharged:      r.PenaltyCharged,
		CancelledAt:         r.CancelledAt,
		CheckedInAt:         r.CheckedInAt,
		CompletedAt:         r.CompletedAt,
		CreatedAt:           r.CreatedAt,
		UpdatedAt:           r.UpdatedAt,
	}

	if r.CancelledBy != nil {
		cb := string(*r.CancelledBy)
		resp.CancelledBy = &cb
	}

	return resp
}

// FromDomainReservationList конвертирует список domain моделей в DTO
func FromDomainReservationList(list []*domain.Reservation) *ReservationListResponse {
	resp := &ReservationListResponse{
		Reservations: make([]ReservationResponse, 0, len(list)),
	}
	for _, r := range list {
		resp.Reservations = append(resp.Reservations, *FromDomainReservation(r))
	}
	return resp
}

// ToDomainReservationStatus конвертирует строку в domain статус
func ToDomainReservationStatus(s string) (domain.ReservationStatus, error) {
	status := domain.ReservationStatus(s)
	if !domain.IsValidStatus(status) {
		return "", ErrInvalidStatus
	}
	return status, nil
}
