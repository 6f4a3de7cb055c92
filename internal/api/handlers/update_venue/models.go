package update_venue

import (
	"github.com/tablehub/reservation-service/internal/service/venues/models"
)

// TableTypeQuantity количество столиков одного типа
type TableTypeQuantity struct {
	TableType int `json:"tableType"`
	Quantity  int `json:"quantity"`
}

// UpdateVenueRequest HTTP request model, nil-поля не изменяются
type UpdateVenueRequest struct {
	Name       *string             `json:"name,omitempty"`
	Address    *string             `json:"address,omitempty"`
	Cuisine    *string             `json:"cuisine,omitempty"`
	OpenTime   *string             `json:"openTime,omitempty"`
	CloseTime  *string             `json:"closeTime,omitempty"`
	Tables     []TableTypeQuantity `json:"tables,omitempty"`
	ManagerIDs []int64             `json:"managerIds,omitempty"`
}

// ToServiceRequest конвертирует HTTP запрос в модель сервиса
func (r *UpdateVenueRequest) ToServiceRequest(userID int64) *models.UpdateVenueRequest {
	req := &models.UpdateVenueRequest{
		UserID:     userID,
		Name:       r.Name,
		Address:    r.Address,
		Cuisine:    r.Cuisine,
		OpenTime:   r.OpenTime,
		CloseTime:  r.CloseTime,
		ManagerIDs: r.ManagerIDs,
	}

	if r.Tables != nil {
		tables := make([]models.TableTypeQuantity, 0, len(r.Tables))
		for _, tq := range r.Tables {
			tables = append(tables, models.TableTypeQuantity{
				TableType: tq.TableType,
				Quantity:  tq.Quantity,
			})
		}
		req.Tables = tables
	}

	return req
}
