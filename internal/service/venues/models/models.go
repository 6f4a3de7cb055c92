package models

import (
	"errors"
	"time"

	"github.com/tablehub/reservation-service/internal/domain"
	"github.com/tablehub/reservation-service/pkg/types"
)

var (
	// ErrInvalidTableType возвращается при некорректном типе столика
	ErrInvalidTableType = errors.New("invalid table type")

	// ErrInvalidTime возвращается при некорректном формате времени
	ErrInvalidTime = errors.New("invalid time format")
)

// TableTypeQuantity количество столиков одного типа
type TableTypeQuantity struct {
	TableType int `json:"tableType"` // Вместимость: 2, 3, 4, 6 или 8
	Quantity  int `json:"quantity"`
}

// Request модели

// CreateVenueRequest запрос на создание ресторана
// Создатель автоматически становится менеджером
type CreateVenueRequest struct {
	UserID     int64               `json:"userId"`
	Name       string              `json:"name"`
	Address    string              `json:"address"`
	Cuisine    string              `json:"cuisine"`
	OpenTime   string              `json:"openTime"`  // "10:00"
	CloseTime  string              `json:"closeTime"` // "23:00"
	Tables     []TableTypeQuantity `json:"tables"`
	ManagerIDs []int64             `json:"managerIds,omitempty"`
}

// UpdateVenueRequest запрос на обновление ресторана
// nil-поля не изменяются
type UpdateVenueRequest struct {
	UserID     int64                 `json:"userId"`
	Name       *string               `json:"name,omitempty"`
	Address    *string               `json:"address,omitempty"`
	Cuisine    *string               `json:"cuisine,omitempty"`
	OpenTime   *string               `json:"openTime,omitempty"`
	CloseTime  *string               `json:"closeTime,omitempty"`
	Tables     []TableTypeQuantity   `json:"tables,omitempty"`
	ManagerIDs []int64               `json:"managerIds,omitempty"`
}

// ToDomainVenue конвертирует request в domain модель
func (r *CreateVenueRequest) ToDomainVenue() (*domain.Venue, error) {
	openTime, err := types.NewTimeStringFromString(r.OpenTime)
	if err != nil {
		return nil, ErrInvalidTime
	}
	closeTime, err := types.NewTimeStringFromString(r.CloseTime)
	if err != nil {
		return nil, ErrInvalidTime
	}

	tables, err := toDomainTables(r.Tables)
	if err != nil {
		return nil, err
	}

	managerIDs := r.ManagerIDs
	if !containsID(managerIDs, r.UserID) {
		managerIDs = append(managerIDs, r.UserID)
	}

	return &domain.Venue{
		Name:       r.Name,
		Address:    r.Address,
		Cuisine:    r.Cuisine,
		OpenTime:   openTime,
		CloseTime:  closeTime,
		Tables:     tables,
		ManagerIDs: managerIDs,
	}, nil
}

// ApplyTo накладывает изменения из request на существующую domain модель
func (r *UpdateVenueRequest) ApplyTo(v *domain.Venue) error {
	if r.Name != nil {
		v.Name = *r.Name
	}
	if r.Address != nil {
		v.Address = *r.Address
	}
	if r.Cuisine != nil {
		v.Cuisine = *r.Cuisine
	}
	if r.OpenTime != nil {
		openTime, err := types.NewTimeStringFromString(*r.OpenTime)
		if err != nil {
			return ErrInvalidTime
		}
		v.OpenTime = openTime
	}
	if r.CloseTime != nil {
		closeTime, err := types.NewTimeStringFromString(*r.CloseTime)
		if err != nil {
			return ErrInvalidTime
		}
		v.CloseTime = closeTime
	}
	if r.Tables != nil {
		tables, err := toDomainTables(r.Tables)
		if err != nil {
			return err
		}
		v.Tables = tables
	}
	if r.ManagerIDs != nil {
		v.ManagerIDs = r.ManagerIDs
	}
	return nil
}

// Response модели

// VenueResponse ответ с данными ресторана
type VenueResponse struct {
	ID         int64               `json:"id"`
	Name       string              `json:"name"`
	Address    string              `json:"address"`
	Cuisine    string              `json:"cuisine"`
	OpenTime   string              `json:"openTime"`
	CloseTime  string              `json:"closeTime"`
	Tables     []TableTypeQuantity `json:"tables"`
	ManagerIDs []int64             `json:"managerIds"`
	CreatedAt  time.Time           `json:"createdAt"`
	UpdatedAt  time.Time           `json:"updatedAt"`
}

// VenueListResponse ответ со списком ресторанов
type VenueListResponse struct {
	Venues []VenueResponse `json:"venues"`
}

// Методы конвертации

// FromDomainVenue конвертирует domain модель в DTO
func FromDomainVenue(v *domain.Venue) *VenueResponse {
	if v == nil {
		return nil
	}

	tables := make([]TableTypeQuantity, 0, len(v.Tables))
	for _, tq := range v.Tables {
		tables = append(tables, TableTypeQuantity{
			TableType: int(tq.TableType),
			Quantity:  tq.Quantity,
		})
	}

	return &VenueResponse{
		ID:         v.ID,
		Name:       v.Name,
		Address:    v.Address,
		Cuisine:    v.Cuisine,
		OpenTime:   v.OpenTime.String(),
		CloseTime:  v.CloseTime.String(),
		Tables:     tables,
		ManagerIDs: v.ManagerIDs,
		CreatedAt:  v.CreatedAt,
		UpdatedAt:  v.UpdatedAt,
	}
}

// FromDomainVenueList конвертирует список domain моделей в DTO
func FromDomainVenueList(list []*domain.Venue) *VenueListResponse {
	resp := &VenueListResponse{
		Venues: make([]VenueResponse, 0, len(list)),
	}
	for _, v := range list {
		resp.Venues = append(resp.Venues, *FromDomainVenue(v))
	}
	return resp
}

func toDomainTables(tables []TableTypeQuantity) ([]domain.TableTypeQuantity, error) {
	result := make([]domain.TableTypeQuantity, 0, len(tables))
	for _, tq := range tables {
		tt := domain.TableType(tq.TableType)
		if !tt.IsValid() {
			return nil, ErrInvalidTableType
		}
		if tq.Quantity < 0 {
			return nil, errors.New("table quantity must be non-negative")
		}
		result = append(result, domain.TableTypeQuantity{
			TableType: tt,
			Quantity:  tq.Quantity,
		})
	}
	return result, nil
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
