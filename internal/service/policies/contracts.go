package policies

import (
	"context"

	"github.com/tablehub/reservation-service/internal/domain"
)

// PolicyRepository интерфейс репозитория правил бронирования
type PolicyRepository interface {
	GetByVenueID(ctx context.Context, venueID int64) (*domain.PolicyConfig, error)
	Upsert(ctx context.Context, cfg *domain.PolicyConfig) (*domain.PolicyConfig, error)
}

// VenueRepository интерфейс репозитория ресторанов
type VenueRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Venue, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
