package get_available_slots

import (
	"context"
	"errors"
	"fmt"

	"github.com/tablehub/reservation-service/internal/domain"
	policyRepo "github.com/tablehub/reservation-service/internal/infra/storage/policy"
	venueRepo "github.com/tablehub/reservation-service/internal/infra/storage/venue"
)

// UseCase use case получения доступных слотов для бронирования
// Доступность считается только из capacity ledger - никакой случайности,
// один и тот же запрос при неизменных бронированиях дает один и тот же ответ
type UseCase struct {
	venueRepo      VenueRepository
	policyRepo     PolicyRepository
	capacityLedger CapacityLedger
	timeProvider   TimeProvider
	logger         Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	venueRepo VenueRepository,
	policyRepo PolicyRepository,
	capacityLedger CapacityLedger,
	logger Logger,
) *UseCase {
	return &UseCase{
		venueRepo:      venueRepo,
		policyRepo:     policyRepo,
		capacityLedger: capacityLedger,
		timeProvider:   &RealTimeProvider{},
		logger:         logger,
	}
}

// Execute выполняет use case получения доступных слотов
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailableSlots: venue=%d, date=%s",
		req.VenueID, req.Date.Format(domain.DateFormat))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем текущее время
	now := uc.timeProvider.Now()

	// 3. Получаем ресторан
	venue, err := uc.venueRepo.GetByID(ctx, req.VenueID)
	if err != nil {
		if errors.Is(err, venueRepo.ErrVenueNotFound) {
			uc.logger.Warn("GetAvailableSlots: venue id=%d not found", req.VenueID)
			return nil, ErrVenueNotFound
		}
		uc.logger.Error("GetAvailableSlots: failed to get venue id=%d: %v", req.VenueID, err)
		return nil, fmt.Errorf("%w: failed to get venue: %w", ErrInternal, err)
	}

	// 4. Шаг сетки слотов берем из правил ресторана
	cfg, err := uc.policyRepo.GetByVenueID(ctx, req.VenueID)
	if err != nil && !errors.Is(err, policyRepo.ErrPolicyNotFound) {
		uc.logger.Error("GetAvailableSlots: failed to get policy config: %v", err)
		return nil, fmt.Errorf("%w: failed to get policy config: %w", ErrInternal, err)
	}
	intervalMinutes := domain.DefaultSlotIntervalMinutes
	if cfg != nil {
		intervalMinutes = cfg.SlotIntervalMinutes
	}

	// 5. Генерируем сетку слотов из рабочих часов
	times, err := generateTimeSlots(venue.OpenTime, venue.CloseTime, intervalMinutes, req.Date, now)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to generate slots: %v", err)
		return nil, fmt.Errorf("%w: failed to generate slots: %w", ErrInternal, err)
	}

	// 6. Типы столиков: либо запрошенный, либо все, что есть у ресторана
	tableTypes := make([]domain.TableType, 0, len(venue.Tables))
	for _, tq := range venue.Tables {
		if tq.Quantity == 0 {
			continue
		}
		if req.TableType != nil && tq.TableType != *req.TableType {
			continue
		}
		tableTypes = append(tableTypes, tq.TableType)
	}

	// 7. Для каждой пары (время, тип столика) спрашиваем ledger
	slots := make([]Slot, 0, len(times)*len(tableTypes))
	for _, startTime := range times {
		for _, tableType := range tableTypes {
			slot := domain.Slot{
				VenueID:   req.VenueID,
				Date:      req.Date,
				StartTime: startTime,
				TableType: tableType,
			}
			remaining, total, err := uc.capacityLedger.Query(ctx, slot)
			if err != nil {
				uc.logger.Error("GetAvailableSlots: ledger query failed: slot=%s: %v", slot.Key(), err)
				return nil, fmt.Errorf("%w: ledger query failed: %w", ErrInternal, err)
			}
			slots = append(slots, Slot{
				StartTime: startTime,
				TableType: tableType,
				Remaining: remaining,
				Total:     total,
			})
		}
	}

	uc.logger.Info("GetAvailableSlots: venue=%d, date=%s: %d slots",
		req.VenueID, req.Date.Format(domain.DateFormat), len(slots))

	return &Response{
		VenueID: req.VenueID,
		Date:    req.Date,
		Slots:   slots,
	}, nil
}
