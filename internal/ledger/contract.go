package ledger

import (
	"context"

	"github.com/tablehub/reservation-service/internal/domain"
	"github.com/tablehub/reservation-service/internal/infra/storage/capacity"
)

// CapacityRepository интерфейс хранилища capacity ledger
type CapacityRepository interface {
	Ensure(ctx context.Context, slot domain.Slot, total int) error
	Reserve(ctx context.Context, slot domain.Slot, quantity int) error
	Release(ctx context.Context, slot domain.Slot, quantity int) error
	Freeze(ctx context.Context, slot domain.Slot) error
	Get(ctx context.Context, slot domain.Slot) (*capacity.Entry, error)
}

// VenueRepository интерфейс для получения исходного количества столиков
type VenueRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Venue, error)
}

// Metrics интерфейс для записи метрик ledger
type Metrics interface {
	IncLedgerCorruption()
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
