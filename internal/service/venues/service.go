package venues

import (
	"context"
	"errors"
	"fmt"

	"github.com/tablehub/reservation-service/internal/domain"
	venueRepo "github.com/tablehub/reservation-service/internal/infra/storage/venue"
	"github.com/tablehub/reservation-service/internal/service/venues/models"
	"github.com/tablehub/reservation-service/pkg/types"
)

// Service сервис для работы с ресторанами
type Service struct {
	venueRepo VenueRepository
	logger    Logger
}

// NewService создает новый экземпляр сервиса ресторанов
func NewService(venueRepo VenueRepository, logger Logger) *Service {
	return &Service{
		venueRepo: venueRepo,
		logger:    logger,
	}
}

// Create создает новый ресторан
// Создатель автоматически становится менеджером
func (s *Service) Create(ctx context.Context, req *models.CreateVenueRequest) (*models.VenueResponse, error) {
	s.logger.Info("Create: creating venue name=%q by user=%d", req.Name, req.UserID)

	if err := validateVenueRequest(req.Name, req.OpenTime, req.CloseTime); err != nil {
		s.logger.Warn("Create: validation failed: %v", err)
		return nil, err
	}

	venue, err := req.ToDomainVenue()
	if err != nil {
		s.logger.Warn("Create: invalid venue data: %v", err)
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	created, err := s.venueRepo.Create(ctx, venue)
	if err != nil {
		s.logger.Error("Create: repository error: %v", err)
		return nil, fmt.Errorf("%w: Create - repository error: %w", ErrInternal, err)
	}

	s.logger.Info("Create: successfully created venue id=%d", created.ID)
	return models.FromDomainVenue(created), nil
}

// Update обновляет данные ресторана
// Доступно только менеджерам ресторана. nil-поля запроса не изменяются
func (s *Service) Update(ctx context.Context, venueID int64, req *models.UpdateVenueRequest) (*models.VenueResponse, error) {
	s.logger.Info("Update: updating venue id=%d by user=%d", venueID, req.UserID)

	venue, err := s.getVenue(ctx, "Update", venueID)
	if err != nil {
		return nil, err
	}

	if !venue.IsManager(req.UserID) {
		s.logger.Warn("Update: access denied for user=%d to venue id=%d", req.UserID, venueID)
		return nil, ErrAccessDenied
	}

	if err := req.ApplyTo(venue); err != nil {
		s.logger.Warn("Update: invalid venue data for id=%d: %v", venueID, err)
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	if err := validateVenueRequest(venue.Name, venue.OpenTime.String(), venue.CloseTime.String()); err != nil {
		s.logger.Warn("Update: validation failed for venue id=%d: %v", venueID, err)
		return nil, err
	}

	if err := s.venueRepo.Update(ctx, venue); err != nil {
		if errors.Is(err, venueRepo.ErrVenueNotFound) {
			s.logger.Warn("Update: venue id=%d not found during update", venueID)
			return nil, ErrVenueNotFound
		}
		s.logger.Error("Update: repository error for venue id=%d: %v", venueID, err)
		return nil, fmt.Errorf("%w: Update - repository error: %w", ErrInternal, err)
	}

	updated, err := s.getVenue(ctx, "Update", venueID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Update: successfully updated venue id=%d", venueID)
	return models.FromDomainVenue(updated), nil
}

// GetByID получает ресторан по ID
func (s *Service) GetByID(ctx context.Context, venueID int64) (*models.VenueResponse, error) {
	s.logger.Info("GetByID: fetching venue id=%d", venueID)

	venue, err := s.getVenue(ctx, "GetByID", venueID)
	if err != nil {
		return nil, err
	}

	return models.FromDomainVenue(venue), nil
}

// List получает список всех ресторанов
func (s *Service) List(ctx context.Context) (*models.VenueListResponse, error) {
	s.logger.Info("List: fetching all venues")

	list, err := s.venueRepo.List(ctx)
	if err != nil {
		s.logger.Error("List: repository error: %v", err)
		return nil, fmt.Errorf("%w: List - repository error: %w", ErrInternal, err)
	}

	s.logger.Info("List: fetched %d venues", len(list))
	return models.FromDomainVenueList(list), nil
}

// Вспомогательные методы

func (s *Service) getVenue(ctx context.Context, op string, venueID int64) (*domain.Venue, error) {
	venue, err := s.venueRepo.GetByID(ctx, venueID)
	if err != nil {
		if errors.Is(err, venueRepo.ErrVenueNotFound) {
			s.logger.Warn("%s: venue id=%d not found", op, venueID)
			return nil, ErrVenueNotFound
		}
		s.logger.Error("%s: repository error for venue id=%d: %v", op, venueID, err)
		return nil, fmt.Errorf("%w: %s - repository error: %w", ErrInternal, op, err)
	}
	return venue, nil
}

// validateVenueRequest проверяет обязательные поля и рабочие часы
func validateVenueRequest(name, openTime, closeTime string) error {
	if name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	open, err := types.NewTimeStringFromString(openTime)
	if err != nil {
		return fmt.Errorf("%w: invalid open time", ErrInvalidInput)
	}
	closeAt, err := types.NewTimeStringFromString(closeTime)
	if err != nil {
		return fmt.Errorf("%w: invalid close time", ErrInvalidInput)
	}
	if !open.IsBefore(closeAt) {
		return fmt.Errorf("%w: open time must be before close time", ErrInvalidInput)
	}

	return nil
}
