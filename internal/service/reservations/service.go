package reservations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tablehub/reservation-service/internal/domain"
	reservationRepo "github.com/tablehub/reservation-service/internal/infra/storage/reservation"
	venueRepo "github.com/tablehub/reservation-service/internal/infra/storage/venue"
	"github.com/tablehub/reservation-service/internal/ledger"
	"github.com/tablehub/reservation-service/internal/policy"
	"github.com/tablehub/reservation-service/internal/service/reservations/models"
)

// Допустимое прибытие раньше начала брони для check-in
const earlyCheckInWindow = 30 * time.Minute

// Service сервис жизненного цикла бронирований после их создания:
// подтверждение, отмена, check-in, завершение, чтение истории.
// Все переходы статусов идут через guarded UPDATE - конкурентная гонка
// двух операций над одной бронью разрешается в пользу ровно одной
type Service struct {
	reservationRepo ReservationRepository
	venueRepo       VenueRepository
	capacityLedger  CapacityLedger
	txManager       TransactionManager
	timeProvider    TimeProvider
	metrics         Metrics
	logger          Logger
}

// NewService создает новый экземпляр сервиса бронирований
// metrics может быть nil, если метрики выключены
func NewService(
	reservationRepo ReservationRepository,
	venueRepo VenueRepository,
	capacityLedger CapacityLedger,
	txManager TransactionManager,
	metrics Metrics,
	logger Logger,
) *Service {
	return &Service{
		reservationRepo: reservationRepo,
		venueRepo:       venueRepo,
		capacityLedger:  capacityLedger,
		txManager:       txManager,
		timeProvider:    &RealTimeProvider{},
		metrics:         metrics,
		logger:          logger,
	}
}

// GetByID получает бронирование по ID
// Проверяет права доступа - пользователь видит только своё бронирование
// или бронирования ресторана, которым он управляет
func (s *Service) GetByID(ctx context.Context, id uuid.UUID, userID int64) (*models.ReservationResponse, error) {
	s.logger.Info("GetByID: fetching reservation id=%s for user=%d", id, userID)

	res, err := s.getReservation(ctx, "GetByID", id)
	if err != nil {
		return nil, err
	}

	if err := s.checkReservationAccess(ctx, res, userID); err != nil {
		s.logger.Warn("GetByID: access denied for user=%d to reservation id=%s", userID, id)
		return nil, err
	}

	return models.FromDomainReservation(res), nil
}

// GetCustomerReservations получает историю бронирований клиента
// Опционально фильтрует по статусу
func (s *Service) GetCustomerReservations(ctx context.Context, req *models.GetCustomerReservationsRequest) (*models.ReservationListResponse, error) {
	s.logger.Info("GetCustomerReservations: fetching reservations for customer=%d, status=%v", req.CustomerID, req.Status)

	var domainStatus *domain.ReservationStatus
	if req.Status != nil {
		status, err := models.ToDomainReservationStatus(*req.Status)
		if err != nil {
			s.logger.Warn("GetCustomerReservations: invalid status=%s for customer=%d", *req.Status, req.CustomerID)
			return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
		}
		domainStatus = &status
	}

	list, err := s.reservationRepo.GetByCustomerID(ctx, req.CustomerID, domainStatus)
	if err != nil {
		s.logger.Error("GetCustomerReservations: repository error for customer=%d: %v", req.CustomerID, err)
		return nil, fmt.Errorf("%w: GetCustomerReservations - repository error: %w", ErrInternal, err)
	}

	s.logger.Info("GetCustomerReservations: fetched %d reservations for customer=%d", len(list), req.CustomerID)
	return models.FromDomainReservationList(list), nil
}

// GetVenueReservations получает бронирования ресторана с гибкой фильтрацией
// Поддерживает фильтрацию по периоду, типу столика, статусу и включению
// неактивных бронирований. Доступно только менеджерам ресторана
func (s *Service) GetVenueReservations(ctx context.Context, req *models.GetVenueReservationsRequest) (*models.ReservationListResponse, error) {
	logMsg := fmt.Sprintf("GetVenueReservations: fetching reservations for venue=%d, user=%d", req.VenueID, req.UserID)
	if req.StartDate != nil && req.EndDate != nil {
		logMsg += fmt.Sprintf(", period=%s to %s",
			req.StartDate.Format(domain.DateFormat), req.EndDate.Format(domain.DateFormat))
	}
	if req.TableType != nil {
		logMsg += fmt.Sprintf(", tableType=%d", *req.TableType)
	}
	if req.Status != nil {
		logMsg += fmt.Sprintf(", status=%s", *req.Status)
	}
	if req.IncludeInactive {
		logMsg += ", includeInactive=true"
	}
	s.logger.Info(logMsg)

	if err := s.checkManagerAccess(ctx, req.VenueID, req.UserID); err != nil {
		return nil, err
	}

	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("GetVenueReservations: invalid filter for venue=%d: %v", req.VenueID, err)
		return nil, fmt.Errorf("%w: invalid filter", ErrInvalidInput)
	}

	list, err := s.reservationRepo.GetByVenueWithFilter(ctx, filter)
	if err != nil {
		s.logger.Error("GetVenueReservations: repository error for venue=%d: %v", req.VenueID, err)
		return nil, fmt.Errorf("%w: GetVenueReservations - repository error: %w", ErrInternal, err)
	}

	s.logger.Info("GetVenueReservations: fetched %d reservations for venue=%d", len(list), req.VenueID)
	return models.FromDomainReservationList(list), nil
}

// Confirm подтверждает удержанное бронирование (held -> confirmed)
// Доступно только владельцу бронирования. Hold с истекшим дедлайном
// подтвердить нельзя - его заберет фоновый воркер
func (s *Service) Confirm(ctx context.Context, id uuid.UUID, userID int64) (*models.ReservationResponse, error) {
	s.logger.Info("Confirm: confirming reservation id=%s by user=%d", id, userID)

	res, err := s.getReservation(ctx, "Confirm", id)
	if err != nil {
		s.recordOp("confirm", err)
		return nil, err
	}

	if res.CustomerID != userID {
		s.logger.Warn("Confirm: access denied for user=%d to reservation id=%s", userID, id)
		s.recordOp("confirm", ErrAccessDenied)
		return nil, ErrAccessDenied
	}

	if res.Status != domain.StatusHeld {
		s.logger.Warn("Confirm: reservation id=%s is not held, status=%s", id, res.Status)
		s.recordOp("confirm", ErrInvalidTransition)
		return nil, ErrInvalidTransition
	}

	now := s.timeProvider.Now()
	if policy.HoldExpired(res, now) {
		s.logger.Warn("Confirm: hold expired for reservation id=%s, deadline=%s", id, res.HoldExpiresAt)
		s.recordOp("confirm", ErrHoldExpired)
		return nil, ErrHoldExpired
	}

	// Guarded-переход: проиграв гонку воркеру истечения hold, получим конфликт
	err = s.reservationRepo.UpdateStatusGuarded(ctx, id, domain.StatusHeld, domain.StatusConfirmed, map[string]interface{}{
		"hold_expires_at": nil,
	})
	if err != nil {
		s.recordOp("confirm", err)
		return nil, s.mapGuardedUpdateError("Confirm", id, err)
	}

	updated, err := s.getReservation(ctx, "Confirm", id)
	if err != nil {
		s.recordOp("confirm", err)
		return nil, err
	}

	s.logger.Info("Confirm: successfully confirmed reservation id=%s", id)
	s.recordOp("confirm", nil)
	return models.FromDomainReservation(updated), nil
}

// Cancel отменяет бронирование
// Клиент может отменить только своё бронирование (cancelled_by=customer),
// менеджер ресторана - любое бронирование своего ресторана (cancelled_by=venue).
// Поздняя отмена клиентом тарифицируется штрафом из policy snapshot брони,
// отмена рестораном штрафа не несет
func (s *Service) Cancel(ctx context.Context, id uuid.UUID, req *models.CancelReservationRequest) (*models.ReservationResponse, error) {
	s.logger.Info("Cancel: cancelling reservation id=%s by user=%d", id, req.UserID)

	res, err := s.getReservation(ctx, "Cancel", id)
	if err != nil {
		s.recordOp("cancel", err)
		return nil, err
	}

	if !res.CanBeCancelled() {
		s.logger.Warn("Cancel: reservation id=%s cannot be cancelled, status=%s", id, res.Status)
		s.recordOp("cancel", ErrCannotCancel)
		return nil, ErrCannotCancel
	}

	// Определяем инициатора отмены по правам доступа
	var cancelledBy domain.CancelledBy
	if res.CustomerID == req.UserID {
		cancelledBy = domain.CancelledByCustomer
	} else {
		if err := s.checkManagerAccess(ctx, res.VenueID, req.UserID); err != nil {
			s.logger.Warn("Cancel: access denied for user=%d to cancel reservation id=%s", req.UserID, id)
			s.recordOp("cancel", ErrAccessDenied)
			return nil, ErrAccessDenied
		}
		cancelledBy = domain.CancelledByVenue
	}

	now := s.timeProvider.Now()
	var penalty float64
	if cancelledBy == domain.CancelledByCustomer {
		penalty = policy.ComputeCancellationPenalty(res, now)
	}

	extra := map[string]interface{}{
		"cancellation_reason": req.CancellationReason,
		"cancelled_by":        string(cancelledBy),
		"penalty_charged":     penalty,
		"cancelled_at":        now,
		"hold_expires_at":     nil,
	}

	slot := reservationSlot(res)
	fromStatus := res.Status

	// Перевод статуса и возврат места в ledger - одна атомарная единица:
	// откат любого из шагов откатывает оба
	err = s.txManager.DoSerializable(ctx, func(ctx context.Context) error {
		if err := s.reservationRepo.UpdateStatusGuarded(ctx, id, fromStatus, domain.StatusCancelled, extra); err != nil {
			return err
		}
		if res.HoldsCapacity() {
			return s.capacityLedger.Release(ctx, slot, 1)
		}
		return nil
	})
	if err != nil {
		s.recordOp("cancel", err)
		if errors.Is(err, ledger.ErrLedgerCorruption) {
			// Откат транзакции откатил и заморозку ключа - переигрываем вне её
			if freezeErr := s.capacityLedger.Freeze(ctx, slot); freezeErr != nil {
				s.logger.Error("Cancel: failed to re-freeze corrupted key: slot=%s: %v", slot.Key(), freezeErr)
			}
			s.logger.Error("Cancel: ledger corruption on release: reservation id=%s, slot=%s", id, slot.Key())
			return nil, fmt.Errorf("%w: ledger corruption on release: %w", ErrInternal, err)
		}
		if errors.Is(err, ledger.ErrKeyFrozen) {
			s.logger.Error("Cancel: slot key frozen: reservation id=%s, slot=%s", id, slot.Key())
			return nil, fmt.Errorf("%w: slot key frozen: %w", ErrInternal, err)
		}
		return nil, s.mapGuardedUpdateError("Cancel", id, err)
	}

	updated, err := s.getReservation(ctx, "Cancel", id)
	if err != nil {
		s.recordOp("cancel", err)
		return nil, err
	}

	s.logger.Info("Cancel: successfully cancelled reservation id=%s, cancelledBy=%s, penalty=%.2f",
		id, cancelledBy, penalty)
	s.recordOp("cancel", nil)
	return models.FromDomainReservation(updated), nil
}

// CheckIn отмечает прибытие гостя (confirmed -> checked_in)
// Доступно владельцу бронирования и менеджерам ресторана.
// Прибытие позже начала брони плюс grace period отклоняется -
// такую бронь закроет воркер no-show
func (s *Service) CheckIn(ctx context.Context, id uuid.UUID, userID int64) (*models.ReservationResponse, error) {
	s.logger.Info("CheckIn: checking in reservation id=%s by user=%d", id, userID)

	res, err := s.getReservation(ctx, "CheckIn", id)
	if err != nil {
		s.recordOp("check_in", err)
		return nil, err
	}

	if err := s.checkReservationAccess(ctx, res, userID); err != nil {
		s.logger.Warn("CheckIn: access denied for user=%d to reservation id=%s", userID, id)
		s.recordOp("check_in", err)
		return nil, err
	}

	if res.Status != domain.StatusConfirmed {
		s.logger.Warn("CheckIn: reservation id=%s is not confirmed, status=%s", id, res.Status)
		s.recordOp("check_in", ErrInvalidTransition)
		return nil, ErrInvalidTransition
	}

	now := s.timeProvider.Now()

	start, err := res.StartAt()
	if err != nil {
		s.logger.Error("CheckIn: invalid start time for reservation id=%s: %v", id, err)
		s.recordOp("check_in", err)
		return nil, fmt.Errorf("%w: invalid start time: %w", ErrInternal, err)
	}
	if now.Before(start.Add(-earlyCheckInWindow)) {
		s.logger.Warn("CheckIn: too early for reservation id=%s, start=%s", id, start)
		s.recordOp("check_in", ErrTooEarlyToCheckIn)
		return nil, ErrTooEarlyToCheckIn
	}

	if !policy.WithinGracePeriod(res, now) {
		s.logger.Warn("CheckIn: grace period expired for reservation id=%s, start=%s, grace=%dm",
			id, start, res.Policy.GracePeriodMinutes)
		s.recordOp("check_in", ErrGracePeriodExpired)
		return nil, ErrGracePeriodExpired
	}

	err = s.reservationRepo.UpdateStatusGuarded(ctx, id, domain.StatusConfirmed, domain.StatusCheckedIn, map[string]interface{}{
		"checked_in_at": now,
	})
	if err != nil {
		s.recordOp("check_in", err)
		return nil, s.mapGuardedUpdateError("CheckIn", id, err)
	}

	updated, err := s.getReservation(ctx, "CheckIn", id)
	if err != nil {
		s.recordOp("check_in", err)
		return nil, err
	}

	s.logger.Info("CheckIn: successfully checked in reservation id=%s", id)
	s.recordOp("check_in", nil)
	return models.FromDomainReservation(updated), nil
}

// Complete завершает визит (checked_in -> completed) и возвращает место в ledger
// Доступно только менеджерам ресторана
func (s *Service) Complete(ctx context.Context, id uuid.UUID, userID int64) (*models.ReservationResponse, error) {
	s.logger.Info("Complete: completing reservation id=%s by user=%d", id, userID)

	res, err := s.getReservation(ctx, "Complete", id)
	if err != nil {
		s.recordOp("complete", err)
		return nil, err
	}

	if err := s.checkManagerAccess(ctx, res.VenueID, userID); err != nil {
		s.logger.Warn("Complete: access denied for user=%d to reservation id=%s", userID, id)
		s.recordOp("complete", err)
		return nil, err
	}

	if res.Status != domain.StatusCheckedIn {
		s.logger.Warn("Complete: reservation id=%s is not checked in, status=%s", id, res.Status)
		s.recordOp("complete", ErrInvalidTransition)
		return nil, ErrInvalidTransition
	}

	now := s.timeProvider.Now()
	slot := reservationSlot(res)

	err = s.txManager.DoSerializable(ctx, func(ctx context.Context) error {
		err := s.reservationRepo.UpdateStatusGuarded(ctx, id, domain.StatusCheckedIn, domain.StatusCompleted, map[string]interface{}{
			"completed_at": now,
		})
		if err != nil {
			return err
		}
		return s.capacityLedger.Release(ctx, slot, 1)
	})
	if err != nil {
		s.recordOp("complete", err)
		if errors.Is(err, ledger.ErrLedgerCorruption) {
			if freezeErr := s.capacityLedger.Freeze(ctx, slot); freezeErr != nil {
				s.logger.Error("Complete: failed to re-freeze corrupted key: slot=%s: %v", slot.Key(), freezeErr)
			}
			s.logger.Error("Complete: ledger corruption on release: reservation id=%s, slot=%s", id, slot.Key())
			return nil, fmt.Errorf("%w: ledger corruption on release: %w", ErrInternal, err)
		}
		if errors.Is(err, ledger.ErrKeyFrozen) {
			s.logger.Error("Complete: slot key frozen: reservation id=%s, slot=%s", id, slot.Key())
			return nil, fmt.Errorf("%w: slot key frozen: %w", ErrInternal, err)
		}
		return nil, s.mapGuardedUpdateError("Complete", id, err)
	}

	updated, err := s.getReservation(ctx, "Complete", id)
	if err != nil {
		s.recordOp("complete", err)
		return nil, err
	}

	s.logger.Info("Complete: successfully completed reservation id=%s", id)
	s.recordOp("complete", nil)
	return models.FromDomainReservation(updated), nil
}

// Вспомогательные методы

// getReservation получает бронирование и маппит ошибки репозитория
func (s *Service) getReservation(ctx context.Context, op string, id uuid.UUID) (*domain.Reservation, error) {
	res, err := s.reservationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, reservationRepo.ErrReservationNotFound) {
			s.logger.Warn("%s: reservation id=%s not found", op, id)
			return nil, ErrReservationNotFound
		}
		s.logger.Error("%s: repository error for reservation id=%s: %v", op, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %w", ErrInternal, op, err)
	}
	return res, nil
}

// checkReservationAccess проверяет, что пользователь имеет доступ к бронированию
// Пользователь видит своё бронирование или бронирования ресторана, которым управляет
func (s *Service) checkReservationAccess(ctx context.Context, res *domain.Reservation, userID int64) error {
	if res.CustomerID == userID {
		return nil
	}
	if err := s.checkManagerAccess(ctx, res.VenueID, userID); err != nil {
		return ErrAccessDenied
	}
	return nil
}

// checkManagerAccess проверяет, что пользователь является менеджером ресторана
func (s *Service) checkManagerAccess(ctx context.Context, venueID int64, userID int64) error {
	venue, err := s.venueRepo.GetByID(ctx, venueID)
	if err != nil {
		if errors.Is(err, venueRepo.ErrVenueNotFound) {
			s.logger.Warn("checkManagerAccess: venue id=%d not found", venueID)
			return ErrVenueNotFound
		}
		s.logger.Error("checkManagerAccess: failed to get venue id=%d: %v", venueID, err)
		return fmt.Errorf("%w: failed to get venue: %w", ErrInternal, err)
	}
	if !venue.IsManager(userID) {
		return ErrAccessDenied
	}
	return nil
}

// mapGuardedUpdateError маппит ошибки guarded-обновления статуса
func (s *Service) mapGuardedUpdateError(op string, id uuid.UUID, err error) error {
	switch {
	case errors.Is(err, reservationRepo.ErrReservationNotFound):
		s.logger.Warn("%s: reservation id=%s not found during update", op, id)
		return ErrReservationNotFound
	case errors.Is(err, reservationRepo.ErrStatusConflict):
		s.logger.Warn("%s: concurrent status change for reservation id=%s", op, id)
		return ErrStatusConflict
	default:
		s.logger.Error("%s: repository error for reservation id=%s: %v", op, id, err)
		return fmt.Errorf("%w: %s - repository error: %w", ErrInternal, op, err)
	}
}

func (s *Service) recordOp(operation string, err error) {
	if s.metrics == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "error"
	}
	s.metrics.IncReservationOp(operation, result)
}

func reservationSlot(res *domain.Reservation) domain.Slot {
	return domain.Slot{
		VenueID:   res.VenueID,
		Date:      res.Date,
		StartTime: res.StartTime,
		TableType: res.TableType,
	}
}
