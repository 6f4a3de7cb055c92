// Package worker содержит фоновые воркеры жизненного цикла бронирований:
// отмену просроченных hold и закрытие no-show.
//
// Оба воркера используют guarded-переходы статуса, поэтому гонка с
// пользовательской операцией (подтверждением, отменой, check-in) безопасна:
// проигравшая сторона получает конфликт и место в ledger возвращается
// ровно один раз.
package worker

import (
	"context"
	"errors"
	"time"

	"github.com/tablehub/reservation-service/internal/domain"
	reservationRepo "github.com/tablehub/reservation-service/internal/infra/storage/reservation"
	"github.com/tablehub/reservation-service/internal/ledger"
)

// HoldExpiryWorker отменяет held-бронирования с истекшим hold-дедлайном
// и возвращает их места в capacity ledger
type HoldExpiryWorker struct {
	reservationRepo ReservationRepository
	capacityLedger  CapacityLedger
	txManager       TransactionManager
	timeProvider    TimeProvider
	interval        time.Duration
	metrics         Metrics
	logger          Logger
}

// NewHoldExpiryWorker создает воркер истечения hold
// metrics может быть nil, если метрики выключены
func NewHoldExpiryWorker(
	reservationRepo ReservationRepository,
	capacityLedger CapacityLedger,
	txManager TransactionManager,
	interval time.Duration,
	metrics Metrics,
	logger Logger,
) *HoldExpiryWorker {
	return &HoldExpiryWorker{
		reservationRepo: reservationRepo,
		capacityLedger:  capacityLedger,
		txManager:       txManager,
		timeProvider:    &RealTimeProvider{},
		interval:        interval,
		metrics:         metrics,
		logger:          logger,
	}
}

// Run запускает цикл воркера до отмены контекста
func (w *HoldExpiryWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("HoldExpiryWorker: started, interval=%s", w.interval)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("HoldExpiryWorker: stopped")
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce обрабатывает одну пачку просроченных hold
func (w *HoldExpiryWorker) RunOnce(ctx context.Context) {
	now := w.timeProvider.Now()

	expired, err := w.reservationRepo.ListExpiredHolds(ctx, now, batchSize)
	if err != nil {
		w.logger.Error("HoldExpiryWorker: failed to list expired holds: %v", err)
		w.recordRun("error")
		return
	}
	if len(expired) == 0 {
		w.recordRun("success")
		return
	}

	w.logger.Info("HoldExpiryWorker: found %d expired holds", len(expired))

	cancelled := 0
	for _, res := range expired {
		if err := w.cancelExpiredHold(ctx, res, now); err != nil {
			continue
		}
		cancelled++
	}

	w.logger.Info("HoldExpiryWorker: cancelled %d of %d expired holds", cancelled, len(expired))
	w.recordRun("success")
}

// cancelExpiredHold отменяет одно просроченное hold-бронирование
func (w *HoldExpiryWorker) cancelExpiredHold(ctx context.Context, res *domain.Reservation, now time.Time) error {
	slot := reservationSlot(res)

	extra := map[string]interface{}{
		"cancellation_reason": "hold expired without confirmation",
		"cancelled_by":        string(domain.CancelledBySystem),
		"penalty_charged":     0.0,
		"cancelled_at":        now,
		"hold_expires_at":     nil,
	}

	err := w.txManager.DoSerializable(ctx, func(ctx context.Context) error {
		if err := w.reservationRepo.UpdateStatusGuarded(ctx, res.ID, domain.StatusHeld, domain.StatusCancelled, extra); err != nil {
			return err
		}
		return w.capacityLedger.Release(ctx, slot, 1)
	})
	if err != nil {
		switch {
		case errors.Is(err, reservationRepo.ErrStatusConflict), errors.Is(err, reservationRepo.ErrReservationNotFound):
			// Пользователь успел подтвердить или отменить - hold больше не наш
			w.logger.Info("HoldExpiryWorker: reservation id=%s changed concurrently, skipping", res.ID)
			return nil
		case errors.Is(err, ledger.ErrLedgerCorruption):
			if freezeErr := w.capacityLedger.Freeze(ctx, slot); freezeErr != nil {
				w.logger.Error("HoldExpiryWorker: failed to re-freeze corrupted key: slot=%s: %v", slot.Key(), freezeErr)
			}
			w.logger.Error("HoldExpiryWorker: ledger corruption on release: reservation id=%s, slot=%s", res.ID, slot.Key())
			return err
		default:
			w.logger.Error("HoldExpiryWorker: failed to cancel reservation id=%s: %v", res.ID, err)
			return err
		}
	}

	w.logger.Info("HoldExpiryWorker: cancelled expired hold id=%s, slot=%s", res.ID, slot.Key())
	return nil
}

func (w *HoldExpiryWorker) recordRun(result string) {
	if w.metrics != nil {
		w.metrics.IncWorkerRun("hold_expiry", result)
	}
}
