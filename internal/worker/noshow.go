package worker

import (
	"context"
	"errors"
	"time"

	"github.com/tablehub/reservation-service/internal/domain"
	reservationRepo "github.com/tablehub/reservation-service/internal/infra/storage/reservation"
	"github.com/tablehub/reservation-service/internal/ledger"
	"github.com/tablehub/reservation-service/internal/policy"
)

// NoShowWorker закрывает confirmed-бронирования, прошедшие порог
// auto_cancel_after_minutes без check-in: переводит их в no_show,
// начисляет штраф из policy snapshot и возвращает места в ledger
type NoShowWorker struct {
	reservationRepo ReservationRepository
	capacityLedger  CapacityLedger
	txManager       TransactionManager
	timeProvider    TimeProvider
	interval        time.Duration
	metrics         Metrics
	logger          Logger
}

// NewNoShowWorker создает воркер закрытия no-show
// metrics может быть nil, если метрики выключены
func NewNoShowWorker(
	reservationRepo ReservationRepository,
	capacityLedger CapacityLedger,
	txManager TransactionManager,
	interval time.Duration,
	metrics Metrics,
	logger Logger,
) *NoShowWorker {
	return &NoShowWorker{
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
func (w *NoShowWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("NoShowWorker: started, interval=%s", w.interval)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("NoShowWorker: stopped")
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce обрабатывает одну пачку кандидатов в no-show
func (w *NoShowWorker) RunOnce(ctx context.Context) {
	now := w.timeProvider.Now()

	candidates, err := w.reservationRepo.ListNoShowCandidates(ctx, now, batchSize)
	if err != nil {
		w.logger.Error("NoShowWorker: failed to list no-show candidates: %v", err)
		w.recordRun("error")
		return
	}
	if len(candidates) == 0 {
		w.recordRun("success")
		return
	}

	w.logger.Info("NoShowWorker: found %d no-show candidates", len(candidates))

	closed := 0
	for _, res := range candidates {
		// Выборка по SQL-порогу; перепроверяем по snapshot конкретной брони
		if !policy.NoShowThresholdPassed(res, now) {
			continue
		}
		if err := w.closeAsNoShow(ctx, res, now); err != nil {
			continue
		}
		closed++
	}

	w.logger.Info("NoShowWorker: closed %d of %d candidates as no-show", closed, len(candidates))
	w.recordRun("success")
}

// closeAsNoShow закрывает одно бронирование как no-show
func (w *NoShowWorker) closeAsNoShow(ctx context.Context, res *domain.Reservation, now time.Time) error {
	slot := reservationSlot(res)
	penalty := policy.ComputeNoShowPenalty(res)

	extra := map[string]interface{}{
		"penalty_charged": penalty,
		"cancelled_by":    string(domain.CancelledBySystem),
		"cancelled_at":    now,
	}

	err := w.txManager.DoSerializable(ctx, func(ctx context.Context) error {
		if err := w.reservationRepo.UpdateStatusGuarded(ctx, res.ID, domain.StatusConfirmed, domain.StatusNoShow, extra); err != nil {
			return err
		}
		return w.capacityLedger.Release(ctx, slot, 1)
	})
	if err != nil {
		switch {
		case errors.Is(err, reservationRepo.ErrStatusConflict), errors.Is(err, reservationRepo.ErrReservationNotFound):
			// Гость успел прийти или бронь отменили - кандидат больше не наш
			w.logger.Info("NoShowWorker: reservation id=%s changed concurrently, skipping", res.ID)
			return nil
		case errors.Is(err, ledger.ErrLedgerCorruption):
			if freezeErr := w.capacityLedger.Freeze(ctx, slot); freezeErr != nil {
				w.logger.Error("NoShowWorker: failed to re-freeze corrupted key: slot=%s: %v", slot.Key(), freezeErr)
			}
			w.logger.Error("NoShowWorker: ledger corruption on release: reservation id=%s, slot=%s", res.ID, slot.Key())
			return err
		default:
			w.logger.Error("NoShowWorker: failed to close reservation id=%s as no-show: %v", res.ID, err)
			return err
		}
	}

	w.logger.Info("NoShowWorker: closed reservation id=%s as no-show, penalty=%.2f, slot=%s",
		res.ID, penalty, slot.Key())
	return nil
}

func (w *NoShowWorker) recordRun(result string) {
	if w.metrics != nil {
		w.metrics.IncWorkerRun("no_show", result)
	}
}
