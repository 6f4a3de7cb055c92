package get_available_slots

import (
	"context"
	"time"

	"github.com/tablehub/reservation-service/internal/domain"
)

// VenueRepository интерфейс репозитория ресторанов
type VenueRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Venue, error)
}

// PolicyRepository интерфейс репозитория правил бронирования
type PolicyRepository interface {
	GetByVenueID(ctx context.Context, venueID int64) (*domain.PolicyConfig, error)
}

// CapacityLedger интерфейс учета свободных мест (только чтение)
type CapacityLedger interface {
	Query(ctx context.Context, slot domain.Slot) (remaining, total int, err error)
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
