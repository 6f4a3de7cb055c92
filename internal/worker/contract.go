package worker

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/tablehub/reservation-service/internal/domain"
)

// Размер пачки бронирований, обрабатываемой за одну итерацию воркера
const batchSize = 100

// ReservationRepository интерфейс репозитория бронирований
type ReservationRepository interface {
	ListExpiredHolds(ctx context.Context, now time.Time, limit int) ([]*domain.Reservation, error)
	ListNoShowCandidates(ctx context.Context, now time.Time, limit int) ([]*domain.Reservation, error)
	UpdateStatusGuarded(ctx context.Context, id uuid.UUID, from, to domain.ReservationStatus, extra map[string]interface{}) error
}

// CapacityLedger интерфейс учета свободных мест
type CapacityLedger interface {
	Release(ctx context.Context, slot domain.Slot, quantity int) error
	Freeze(ctx context.Context, slot domain.Slot) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Metrics интерфейс для записи метрик воркеров
type Metrics interface {
	IncWorkerRun(worker, result string)
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

func reservationSlot(res *domain.Reservation) domain.Slot {
	return domain.Slot{
		VenueID:   res.VenueID,
		Date:      res.Date,
		StartTime: res.StartTime,
		TableType: res.TableType,
	}
}
