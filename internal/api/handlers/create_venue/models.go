package create_venue

import (
	"github.com/tablehub/reservation-service/internal/service/venues/models"
)

// TableTypeQuantity количество столиков одного типа
type TableTypeQuantity struct {
	TableType int `json:"tableType"`
	Quantity  int `json:"quantity"`
}

// CreateVenueRequest HTTP request model
type CreateVenueRequest struct {
	Name       string              `json:"name"`
	Address    string              `json:"address"`
	Cuisine    string              `json:"cuisine"`
	OpenTime   string              `json:"openTime"`  // "10:00"
	CloseTime  string              `json:"closeTime"` // "23:00"
	Tables     []TableTypeQuantity `json:"tables"`
	ManagerIDs []int64             `json:"managerIds,omitempty"`
}

// ToServiceRequest конвертирует HTTP запрос в модель сервиса
func (r *CreateVenueRequest) ToServiceRequest(userID int64) *models.CreateVenueRequest {
	tables := make([]models.TableTypeQuantity, 0, len(r.Tables))
	for _, tq := range r.Tables {
		tables = append(tables, models.TableTypeQuantity{
			TableType: tq.TableType,
			Quantity:  tq.Quantity,
		})
	}

	return &models.CreateVenueRequest{
		UserID:     userID,
		Name:       r.Name,
		Address:    r.Address,
		Cuisine:    r.Cuisine,
		OpenTime:   r.OpenTime,
		CloseTime:  r.CloseTime,
		Tables:     tables,
		ManagerIDs: r.ManagerIDs,
	}
}
