package drafts

import (
	"context"

	"github.com/google/uuid"

	"github.com/tablehub/reservation-service/internal/domain"
)

// DraftStore интерфейс хранилища черновиков (redis с TTL)
type DraftStore interface {
	Save(ctx context.Context, draft *domain.DraftReservation) error
	Get(ctx context.Context, id uuid.UUID) (*domain.DraftReservation, error)
	Delete(ctx context.Context, id uuid.UUID) error
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
