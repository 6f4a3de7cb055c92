package request_booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tablehub/reservation-service/internal/domain"
	"github.com/tablehub/reservation-service/internal/infra/draftstore"
	policyRepo "github.com/tablehub/reservation-service/internal/infra/storage/policy"
	venueRepo "github.com/tablehub/reservation-service/internal/infra/storage/venue"
	"github.com/tablehub/reservation-service/internal/ledger"
)

// UseCase use case создания бронирования
// Единственная точка, где появляются новые бронирования: проверяет правила,
// списывает место в capacity ledger и создает бронь в статусе held -
// все в одной сериализуемой транзакции
type UseCase struct {
	reservationRepo ReservationRepository
	venueRepo       VenueRepository
	policyRepo      PolicyRepository
	capacityLedger  CapacityLedger
	draftStore      DraftStore
	txManager       TransactionManager
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	reservationRepo ReservationRepository,
	venueRepo VenueRepository,
	policyRepo PolicyRepository,
	capacityLedger CapacityLedger,
	draftStore DraftStore,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		reservationRepo: reservationRepo,
		venueRepo:       venueRepo,
		policyRepo:      policyRepo,
		capacityLedger:  capacityLedger,
		draftStore:      draftStore,
		txManager:       txManager,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// Execute выполняет use case создания бронирования
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("RequestBooking: validation failed: %v", err)
		return nil, err
	}

	// 2. Если указан черновик - берем параметры бронирования из него
	if req.DraftID != nil {
		if err := uc.applyDraft(ctx, req); err != nil {
			return nil, err
		}
	}

	uc.logger.Info("RequestBooking: customer=%d, venue=%d, date=%s, time=%s, tableType=%d, party=%d",
		req.CustomerID, req.VenueID, req.Date.Format(domain.DateFormat), req.StartTime,
		req.TableType, req.PartySize)

	// 3. Получаем текущее время
	now := uc.timeProvider.Now()

	// 4. Получаем ресторан
	venue, err := uc.venueRepo.GetByID(ctx, req.VenueID)
	if err != nil {
		if errors.Is(err, venueRepo.ErrVenueNotFound) {
			uc.logger.Warn("RequestBooking: venue id=%d not found", req.VenueID)
			return nil, ErrVenueNotFound
		}
		uc.logger.Error("RequestBooking: failed to get venue id=%d: %v", req.VenueID, err)
		return nil, fmt.Errorf("%w: failed to get venue: %w", ErrInternal, err)
	}

	// 5. Получаем правила ресторана, при отсутствии - дефолтные
	cfg, err := uc.policyRepo.GetByVenueID(ctx, req.VenueID)
	if err != nil && !errors.Is(err, policyRepo.ErrPolicyNotFound) {
		uc.logger.Error("RequestBooking: failed to get policy config: %v", err)
		return nil, fmt.Errorf("%w: failed to get policy config: %w", ErrInternal, err)
	}
	if cfg == nil {
		cfg = domain.DefaultPolicyConfig(req.VenueID)
		uc.logger.Info("RequestBooking: using default policy for venue=%d", req.VenueID)
	}

	// Длительность по умолчанию - максимум, разрешенный правилами
	if req.DurationMinutes == 0 {
		req.DurationMinutes = cfg.MaxDurationMinutes
	}

	// 6. Проверяем запрос против правил: размер компании и длительность
	if err := validatePolicy(req, cfg); err != nil {
		uc.logger.Warn("RequestBooking: policy check failed: %v", err)
		return nil, err
	}

	// 7. Валидация даты и положения слота на сетке
	if err := validateDate(req.Date, now); err != nil {
		uc.logger.Warn("RequestBooking: date validation failed: %v", err)
		return nil, err
	}
	if err := validateTimeSlot(venue, req.StartTime, req.DurationMinutes, cfg.SlotIntervalMinutes); err != nil {
		uc.logger.Warn("RequestBooking: time slot validation failed: %v", err)
		return nil, err
	}

	holdExpiresAt := now.Add(time.Duration(cfg.HoldTTLMinutes) * time.Minute)
	reservation := &domain.Reservation{
		ID:                  uuid.New(),
		VenueID:             req.VenueID,
		CustomerID:          req.CustomerID,
		Date:                req.Date,
		StartTime:           req.StartTime,
		DurationMinutes:     req.DurationMinutes,
		TableType:           req.TableType,
		PartySize:           req.PartySize,
		Status:              domain.StatusHeld,
		Policy:              cfg.Snapshot(),
		HoldExpiresAt:       &holdExpiresAt,
		SpecialInstructions: req.SpecialInstructions,
	}

	slot := domain.Slot{
		VenueID:   req.VenueID,
		Date:      req.Date,
		StartTime: req.StartTime,
		TableType: req.TableType,
	}

	var created *domain.Reservation

	// 8. Списание места и создание брони в одной сериализуемой транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		if err := uc.capacityLedger.Reserve(txCtx, slot, 1); err != nil {
			switch {
			case errors.Is(err, ledger.ErrCapacityExceeded):
				uc.logger.Warn("RequestBooking: no capacity left: slot=%s", slot.Key())
				return ErrSlotUnavailable
			case errors.Is(err, ledger.ErrKeyFrozen):
				// Замороженный ключ недоступен для клиентов до разбирательства
				uc.logger.Warn("RequestBooking: slot key frozen: slot=%s", slot.Key())
				return ErrSlotUnavailable
			default:
				uc.logger.Error("RequestBooking: ledger reserve failed: %v", err)
				return fmt.Errorf("%w: ledger reserve failed: %w", ErrInternal, err)
			}
		}

		res, err := uc.reservationRepo.Create(txCtx, reservation)
		if err != nil {
			uc.logger.Error("RequestBooking: failed to create reservation: %v", err)
			return fmt.Errorf("%w: failed to create reservation: %w", ErrInternal, err)
		}

		created = res
		return nil
	})
	if err != nil {
		return nil, err
	}

	// 9. Черновик больше не нужен - удаляем, неуспех не фатален
	if req.DraftID != nil {
		if err := uc.draftStore.Delete(ctx, *req.DraftID); err != nil {
			uc.logger.Warn("RequestBooking: failed to delete draft id=%s: %v", *req.DraftID, err)
		}
	}

	uc.logger.Info("RequestBooking: reservation held: id=%s, hold expires at %s",
		created.ID, holdExpiresAt.Format(time.RFC3339))

	return &Response{
		ID:              created.ID,
		VenueID:         created.VenueID,
		CustomerID:      created.CustomerID,
		Date:            created.Date,
		StartTime:       created.StartTime,
		DurationMinutes: created.DurationMinutes,
		TableType:       created.TableType,
		PartySize:       created.PartySize,
		Status:          string(created.Status),
		HoldExpiresAt:   holdExpiresAt,
		PenaltyFee:      created.Policy.PenaltyFee,
		CreatedAt:       created.CreatedAt,
	}, nil
}

// applyDraft подставляет в запрос параметры из черновика визарда
// Черновик чужого клиента недоступен
func (uc *UseCase) applyDraft(ctx context.Context, req *Request) error {
	draft, err := uc.draftStore.Get(ctx, *req.DraftID)
	if err != nil {
		if errors.Is(err, draftstore.ErrDraftNotFound) {
			uc.logger.Warn("RequestBooking: draft id=%s not found", *req.DraftID)
			return ErrDraftNotFound
		}
		uc.logger.Error("RequestBooking: failed to get draft id=%s: %v", *req.DraftID, err)
		return fmt.Errorf("%w: failed to get draft: %w", ErrInternal, err)
	}

	if draft.CustomerID != req.CustomerID {
		uc.logger.Warn("RequestBooking: draft id=%s belongs to another customer", *req.DraftID)
		return ErrDraftNotFound
	}

	req.VenueID = draft.VenueID
	req.Date = draft.Date
	req.StartTime = draft.StartTime
	req.TableType = draft.TableType
	req.PartySize = draft.PartySize
	req.DurationMinutes = draft.DurationMinutes
	if draft.SpecialInstructions != nil {
		req.SpecialInstructions = draft.SpecialInstructions
	}

	// Параметры из черновика проходят ту же валидацию, что и прямой запрос
	draftID := req.DraftID
	req.DraftID = nil
	err = validateRequest(req)
	req.DraftID = draftID
	if err != nil {
		uc.logger.Warn("RequestBooking: draft validation failed: %v", err)
		return err
	}

	return nil
}
