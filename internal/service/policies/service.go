package policies

import (
	"context"
	"errors"
	"fmt"

	"github.com/tablehub/reservation-service/internal/domain"
	policyRepo "github.com/tablehub/reservation-service/internal/infra/storage/policy"
	venueRepo "github.com/tablehub/reservation-service/internal/infra/storage/venue"
	"github.com/tablehub/reservation-service/internal/service/policies/models"
)

// Service сервис для работы с правилами бронирования ресторанов
// Правила читаются публично: клиент должен видеть условия отмены и штрафы
// до создания брони. Изменение доступно только менеджерам.
// Изменение правил никогда не затрагивает существующие бронирования -
// они живут со snapshot, взятым при создании
type Service struct {
	policyRepo PolicyRepository
	venueRepo  VenueRepository
	logger     Logger
}

// NewService создает новый экземпляр сервиса правил бронирования
func NewService(policyRepo PolicyRepository, venueRepo VenueRepository, logger Logger) *Service {
	return &Service{
		policyRepo: policyRepo,
		venueRepo:  venueRepo,
		logger:     logger,
	}
}

// GetByVenue возвращает действующие правила ресторана
// Если собственной конфигурации нет, возвращаются платформенные дефолты
func (s *Service) GetByVenue(ctx context.Context, venueID int64) (*models.PolicyResponse, error) {
	s.logger.Info("GetByVenue: fetching policy for venue=%d", venueID)

	if err := s.checkVenueExists(ctx, "GetByVenue", venueID); err != nil {
		return nil, err
	}

	cfg, err := s.policyRepo.GetByVenueID(ctx, venueID)
	if err != nil {
		if errors.Is(err, policyRepo.ErrPolicyNotFound) {
			s.logger.Info("GetByVenue: venue id=%d has no custom policy, returning defaults", venueID)
			return models.FromDomainPolicy(domain.DefaultPolicyConfig(venueID), true), nil
		}
		s.logger.Error("GetByVenue: repository error for venue=%d: %v", venueID, err)
		return nil, fmt.Errorf("%w: GetByVenue - repository error: %w", ErrInternal, err)
	}

	return models.FromDomainPolicy(cfg, false), nil
}

// Update обновляет правила ресторана
// Доступно только менеджерам ресторана. nil-поля запроса не изменяются;
// отсутствующая конфигурация создается из дефолтов
func (s *Service) Update(ctx context.Context, venueID int64, req *models.UpdatePolicyRequest) (*models.PolicyResponse, error) {
	s.logger.Info("Update: updating policy for venue=%d by user=%d", venueID, req.UserID)

	venue, err := s.venueRepo.GetByID(ctx, venueID)
	if err != nil {
		if errors.Is(err, venueRepo.ErrVenueNotFound) {
			s.logger.Warn("Update: venue id=%d not found", venueID)
			return nil, ErrVenueNotFound
		}
		s.logger.Error("Update: failed to get venue id=%d: %v", venueID, err)
		return nil, fmt.Errorf("%w: failed to get venue: %w", ErrInternal, err)
	}

	if !venue.IsManager(req.UserID) {
		s.logger.Warn("Update: access denied for user=%d to venue id=%d", req.UserID, venueID)
		return nil, ErrAccessDenied
	}

	cfg, err := s.policyRepo.GetByVenueID(ctx, venueID)
	if err != nil {
		if !errors.Is(err, policyRepo.ErrPolicyNotFound) {
			s.logger.Error("Update: repository error for venue=%d: %v", venueID, err)
			return nil, fmt.Errorf("%w: Update - repository error: %w", ErrInternal, err)
		}
		cfg = domain.DefaultPolicyConfig(venueID)
	}

	req.ApplyTo(cfg)

	if err := validatePolicyConfig(cfg); err != nil {
		s.logger.Warn("Update: validation failed for venue=%d: %v", venueID, err)
		return nil, err
	}

	updated, err := s.policyRepo.Upsert(ctx, cfg)
	if err != nil {
		s.logger.Error("Update: repository error for venue=%d: %v", venueID, err)
		return nil, fmt.Errorf("%w: Update - repository error: %w", ErrInternal, err)
	}

	s.logger.Info("Update: successfully updated policy for venue=%d", venueID)
	return models.FromDomainPolicy(updated, false), nil
}

// Вспомогательные методы

func (s *Service) checkVenueExists(ctx context.Context, op string, venueID int64) error {
	_, err := s.venueRepo.GetByID(ctx, venueID)
	if err != nil {
		if errors.Is(err, venueRepo.ErrVenueNotFound) {
			s.logger.Warn("%s: venue id=%d not found", op, venueID)
			return ErrVenueNotFound
		}
		s.logger.Error("%s: failed to get venue id=%d: %v", op, venueID, err)
		return fmt.Errorf("%w: failed to get venue: %w", ErrInternal, err)
	}
	return nil
}

// validatePolicyConfig проверяет границы значений конфигурации
func validatePolicyConfig(cfg *domain.PolicyConfig) error {
	if cfg.GracePeriodMinutes < domain.MinGracePeriodMinutes || cfg.GracePeriodMinutes > domain.MaxGracePeriodMinutes {
		return fmt.Errorf("%w: grace period must be between %d and %d minutes",
			ErrInvalidInput, domain.MinGracePeriodMinutes, domain.MaxGracePeriodMinutes)
	}
	if cfg.PenaltyFee < 0 {
		return fmt.Errorf("%w: penalty fee must be non-negative", ErrInvalidInput)
	}
	if cfg.MaxDurationMinutes < domain.MinDurationMinutes || cfg.MaxDurationMinutes > domain.MaxDurationLimit {
		return fmt.Errorf("%w: max duration must be between %d and %d minutes",
			ErrInvalidInput, domain.MinDurationMinutes, domain.MaxDurationLimit)
	}
	if cfg.FreeCancelHoursBefore < 0 {
		return fmt.Errorf("%w: free cancel hours must be non-negative", ErrInvalidInput)
	}
	if cfg.AutoCancelAfterMinutes < cfg.GracePeriodMinutes {
		return fmt.Errorf("%w: auto cancel threshold must not precede the grace period", ErrInvalidInput)
	}
	if cfg.HoldTTLMinutes <= 0 {
		return fmt.Errorf("%w: hold TTL must be positive", ErrInvalidInput)
	}
	if cfg.SlotIntervalMinutes < domain.MinSlotIntervalMinutes || cfg.SlotIntervalMinutes > domain.MaxSlotIntervalMinutes {
		return fmt.Errorf("%w: slot interval must be between %d and %d minutes",
			ErrInvalidInput, domain.MinSlotIntervalMinutes, domain.MaxSlotIntervalMinutes)
	}
	return nil
}
