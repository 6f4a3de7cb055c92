package get_venue_policy

import (
	"context"

	"github.com/tablehub/reservation-service/internal/service/policies/models"
)

type PolicyService interface {
	GetByVenue(ctx context.Context, venueID int64) (*models.PolicyResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
