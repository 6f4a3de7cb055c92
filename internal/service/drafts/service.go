package drafts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tablehub/reservation-service/internal/domain"
	"github.com/tablehub/reservation-service/internal/infra/draftstore"
	venueRepo "github.com/tablehub/reservation-service/internal/infra/storage/venue"
	"github.com/tablehub/reservation-service/internal/service/drafts/models"
)

// Service сервис черновиков бронирования из пошагового визарда
// Черновики живут только в redis с TTL и не занимают мест в capacity ledger
type Service struct {
	draftStore DraftStore
	venueRepo  VenueRepository
	logger     Logger
}

// NewService создает новый экземпляр сервиса черновиков
func NewService(draftStore DraftStore, venueRepo VenueRepository, logger Logger) *Service {
	return &Service{
		draftStore: draftStore,
		venueRepo:  venueRepo,
		logger:     logger,
	}
}

// Create создает черновик бронирования
// Черновик может быть неполным, но ресторан должен существовать,
// а заполненные поля - проходить базовую проверку
func (s *Service) Create(ctx context.Context, req *models.CreateDraftRequest) (*models.DraftResponse, error) {
	s.logger.Info("Create: creating draft for customer=%d, venue=%d", req.CustomerID, req.VenueID)

	draft, err := req.ToDomainDraft()
	if err != nil {
		s.logger.Warn("Create: invalid draft data: %v", err)
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	if err := validateDraft(draft); err != nil {
		s.logger.Warn("Create: validation failed: %v", err)
		return nil, err
	}

	if _, err := s.venueRepo.GetByID(ctx, draft.VenueID); err != nil {
		if errors.Is(err, venueRepo.ErrVenueNotFound) {
			s.logger.Warn("Create: venue id=%d not found", draft.VenueID)
			return nil, ErrVenueNotFound
		}
		s.logger.Error("Create: failed to get venue id=%d: %v", draft.VenueID, err)
		return nil, fmt.Errorf("%w: failed to get venue: %w", ErrInternal, err)
	}

	draft.ID = uuid.New()
	draft.CreatedAt = time.Now()

	if err := s.draftStore.Save(ctx, draft); err != nil {
		s.logger.Error("Create: failed to save draft: %v", err)
		return nil, fmt.Errorf("%w: Create - store error: %w", ErrInternal, err)
	}

	s.logger.Info("Create: successfully created draft id=%s for customer=%d", draft.ID, req.CustomerID)
	return models.FromDomainDraft(draft), nil
}

// Get получает черновик по ID
// Черновик виден только его владельцу
func (s *Service) Get(ctx context.Context, id uuid.UUID, userID int64) (*models.DraftResponse, error) {
	s.logger.Info("Get: fetching draft id=%s for user=%d", id, userID)

	draft, err := s.getDraft(ctx, "Get", id)
	if err != nil {
		return nil, err
	}

	if draft.CustomerID != userID {
		s.logger.Warn("Get: access denied for user=%d to draft id=%s", userID, id)
		return nil, ErrAccessDenied
	}

	return models.FromDomainDraft(draft), nil
}

// Delete удаляет черновик
// Доступно только владельцу черновика
func (s *Service) Delete(ctx context.Context, id uuid.UUID, userID int64) error {
	s.logger.Info("Delete: deleting draft id=%s by user=%d", id, userID)

	draft, err := s.getDraft(ctx, "Delete", id)
	if err != nil {
		return err
	}

	if draft.CustomerID != userID {
		s.logger.Warn("Delete: access denied for user=%d to draft id=%s", userID, id)
		return ErrAccessDenied
	}

	if err := s.draftStore.Delete(ctx, id); err != nil {
		s.logger.Error("Delete: failed to delete draft id=%s: %v", id, err)
		return fmt.Errorf("%w: Delete - store error: %w", ErrInternal, err)
	}

	s.logger.Info("Delete: successfully deleted draft id=%s", id)
	return nil
}

// Вспомогательные методы

func (s *Service) getDraft(ctx context.Context, op string, id uuid.UUID) (*domain.DraftReservation, error) {
	draft, err := s.draftStore.Get(ctx, id)
	if err != nil {
		if errors.Is(err, draftstore.ErrDraftNotFound) {
			s.logger.Warn("%s: draft id=%s not found", op, id)
			return nil, ErrDraftNotFound
		}
		s.logger.Error("%s: store error for draft id=%s: %v", op, id, err)
		return nil, fmt.Errorf("%w: %s - store error: %w", ErrInternal, op, err)
	}
	return draft, nil
}

// validateDraft проверяет заполненные поля черновика
// Незаполненные поля допустимы - визард заполняет их по шагам
func validateDraft(d *domain.DraftReservation) error {
	if d.VenueID <= 0 {
		return fmt.Errorf("%w: venue id is required", ErrInvalidInput)
	}
	if d.TableType != 0 && !d.TableType.IsValid() {
		return fmt.Errorf("%w: unknown table type", ErrInvalidInput)
	}
	if d.PartySize < 0 || d.PartySize > domain.MaxPartySize {
		return fmt.Errorf("%w: party size must be between 1 and %d", ErrInvalidInput, domain.MaxPartySize)
	}
	if d.DurationMinutes < 0 {
		return fmt.Errorf("%w: duration must be non-negative", ErrInvalidInput)
	}
	if d.SpecialInstructions != nil && len(*d.SpecialInstructions) > domain.MaxInstructionsLength {
		return fmt.Errorf("%w: special instructions too long", ErrInvalidInput)
	}
	return nil
}
