package venues

import (
	"context"

	"github.com/tablehub/reservation-service/internal/domain"
)

// VenueRepository интерфейс репозитория ресторанов
type VenueRepository interface {
	Create(ctx context.Context, v *domain.Venue) (*domain.Venue, error)
	Update(ctx context.Context, v *domain.Venue) error
	GetByID(ctx context.Context, id int64) (*domain.Venue, error)
	List(ctx context.Context) ([]*domain.Venue, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
