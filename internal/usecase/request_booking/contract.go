package request_booking

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/tablehub/reservation-service/internal/domain"
)

// ReservationRepository интерфейс репозитория бронирований
type ReservationRepository interface {
	Create(ctx context.Context, res *domain.Reservation) (*domain.Reservation, error)
}

// VenueRepository интерфейс репозитория ресторанов
type VenueRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Venue, error)
}

// PolicyRepository интерфейс репозитория правил бронирования
type PolicyRepository interface {
	GetByVenueID(ctx context.Context, venueID int64) (*domain.PolicyConfig, error)
}

// CapacityLedger интерфейс учета свободных мест
type CapacityLedger interface {
	Reserve(ctx context.Context, slot domain.Slot, quantity int) error
}

// DraftStore интерфейс хранилища черновиков визарда
type DraftStore interface {
	Get(ctx context.Context, id uuid.UUID) (*domain.DraftReservation, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
