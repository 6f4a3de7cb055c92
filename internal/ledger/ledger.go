// Package ledger ведет авторитетный учет свободных столиков по ключу
// (ресторан, дата, время, тип столика).
//
// Контракт сериализуемости: конкурентные Reserve/Release по одному ключу
// упорядочиваются атомарным условным UPDATE на строке ledger - при одном
// оставшемся месте из двух одновременных Reserve пройдет ровно один.
package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/tablehub/reservation-service/internal/domain"
	"github.com/tablehub/reservation-service/internal/infra/storage/capacity"
)

// Ledger авторитетный учет свободных мест per (slot, tableType)
type Ledger struct {
	capacityRepo CapacityRepository
	venueRepo    VenueRepository
	metrics      Metrics
	logger       Logger
}

// New создает ledger
// metrics может быть nil, если метрики выключены
func New(capacityRepo CapacityRepository, venueRepo VenueRepository, metrics Metrics, logger Logger) *Ledger {
	return &Ledger{
		capacityRepo: capacityRepo,
		venueRepo:    venueRepo,
		metrics:      metrics,
		logger:       logger,
	}
}

// Reserve списывает quantity мест с ключа слота
// Запись ledger лениво создается из количества столиков ресторана
func (l *Ledger) Reserve(ctx context.Context, slot domain.Slot, quantity int) error {
	total, err := l.totalFor(ctx, slot)
	if err != nil {
		return err
	}
	if total == 0 {
		// Ресторан не имеет столиков этого типа - мест нет по определению
		return ErrCapacityExceeded
	}

	if err := l.capacityRepo.Ensure(ctx, slot, total); err != nil {
		return fmt.Errorf("%w: Reserve - ensure entry: %w", ErrInternal, err)
	}

	err = l.capacityRepo.Reserve(ctx, slot, quantity)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, capacity.ErrInsufficientCapacity):
		return ErrCapacityExceeded
	case errors.Is(err, capacity.ErrEntryFrozen):
		l.logger.Warn("Ledger: reserve rejected, key frozen: slot=%s", slot.Key())
		return ErrKeyFrozen
	default:
		return fmt.Errorf("%w: Reserve - %w", ErrInternal, err)
	}
}

// Release возвращает quantity мест на ключ слота
// Возврат сверх total означает повреждение ledger: ключ замораживается,
// дальнейшие мутации по нему отклоняются до ручного разбирательства
func (l *Ledger) Release(ctx context.Context, slot domain.Slot, quantity int) error {
	err := l.capacityRepo.Release(ctx, slot, quantity)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, capacity.ErrWouldExceedTotal):
		l.logger.Error("Ledger: CORRUPTION - release would exceed total, freezing key: slot=%s, quantity=%d",
			slot.Key(), quantity)
		if l.metrics != nil {
			l.metrics.IncLedgerCorruption()
		}
		if freezeErr := l.capacityRepo.Freeze(ctx, slot); freezeErr != nil {
			l.logger.Error("Ledger: failed to freeze corrupted key: slot=%s: %v", slot.Key(), freezeErr)
		}
		return ErrLedgerCorruption
	case errors.Is(err, capacity.ErrEntryFrozen):
		l.logger.Warn("Ledger: release rejected, key frozen: slot=%s", slot.Key())
		return ErrKeyFrozen
	case errors.Is(err, capacity.ErrEntryNotFound):
		// Возврат на ключ, с которого никогда не списывали - тоже повреждение
		l.logger.Error("Ledger: CORRUPTION - release on unknown key: slot=%s", slot.Key())
		if l.metrics != nil {
			l.metrics.IncLedgerCorruption()
		}
		return ErrLedgerCorruption
	default:
		return fmt.Errorf("%w: Release - %w", ErrInternal, err)
	}
}

// Freeze явно замораживает ключ слота
// Нужен вызывающему коду, когда Release выполнялся внутри транзакции:
// откат транзакции откатил бы и заморозку, поэтому ее переигрывают
// отдельным вызовом вне транзакции
func (l *Ledger) Freeze(ctx context.Context, slot domain.Slot) error {
	if err := l.capacityRepo.Freeze(ctx, slot); err != nil {
		return fmt.Errorf("%w: Freeze - %w", ErrInternal, err)
	}
	return nil
}

// Query возвращает (remaining, total) для ключа слота без побочных эффектов
// Для ключа без записи возвращает полное количество столиков ресторана
func (l *Ledger) Query(ctx context.Context, slot domain.Slot) (remaining, total int, err error) {
	entry, err := l.capacityRepo.Get(ctx, slot)
	if err == nil {
		return entry.Remaining, entry.Total, nil
	}
	if !errors.Is(err, capacity.ErrEntryNotFound) {
		return 0, 0, fmt.Errorf("%w: Query - %w", ErrInternal, err)
	}

	venueTotal, err := l.totalFor(ctx, slot)
	if err != nil {
		return 0, 0, err
	}
	return venueTotal, venueTotal, nil
}

func (l *Ledger) totalFor(ctx context.Context, slot domain.Slot) (int, error) {
	venue, err := l.venueRepo.GetByID(ctx, slot.VenueID)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to get venue id=%d: %w", ErrInternal, slot.VenueID, err)
	}
	return venue.TableQuantity(slot.TableType), nil
}
