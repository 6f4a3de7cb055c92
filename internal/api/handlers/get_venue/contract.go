package get_venue

import (
	"context"

	"github.com/tablehub/reservation-service/internal/service/venues/models"
)

type VenueService interface {
	GetByID(ctx context.Context, venueID int64) (*models.VenueResponse, error)
	List(ctx context.Context) (*models.VenueListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
