package drafts

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablehub/reservation-service/internal/domain"
	"github.com/tablehub/reservation-service/internal/infra/draftstore"
	venueStorage "github.com/tablehub/reservation-service/internal/infra/storage/venue"
	"github.com/tablehub/reservation-service/internal/service/drafts/models"
)

type fakeDraftStore struct {
	byID map[uuid.UUID]*domain.DraftReservation
}

func newFakeDraftStore() *fakeDraftStore {
	return &fakeDraftStore{byID: map[uuid.UUID]*domain.DraftReservation{}}
}

func (f *fakeDraftStore) Save(_ context.Context, draft *domain.DraftReservation) error {
	cp := *draft
	f.byID[draft.ID] = &cp
	return nil
}

func (f *fakeDraftStore) Get(_ context.Context, id uuid.UUID) (*domain.DraftReservation, error) {
	draft, ok := f.byID[id]
	if !ok {
		return nil, draftstore.ErrDraftNotFound
	}
	cp := *draft
	return &cp, nil
}

func (f *fakeDraftStore) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.byID, id)
	return nil
}

type fakeVenueRepo struct {
	exists bool
}

func (f *fakeVenueRepo) GetByID(_ context.Context, id int64) (*domain.Venue, error) {
	if !f.exists {
		return nil, venueStorage.ErrVenueNotFound
	}
	return &domain.Venue{ID: id, Name: "La Piazza"}, nil
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func TestCreate_PartialDraft(t *testing.T) {
	store := newFakeDraftStore()
	svc := NewService(store, &fakeVenueRepo{exists: true}, nopLogger{})

	// Визард только начат: известен лишь ресторан
	resp, err := svc.Create(context.Background(), &models.CreateDraftRequest{
		CustomerID: 100,
		VenueID:    1,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, int64(100), resp.CustomerID)
	assert.Empty(t, resp.Date)
	assert.Empty(t, resp.StartTime)
	assert.Len(t, store.byID, 1)
}

func TestCreate_FullDraft(t *testing.T) {
	svc := NewService(newFakeDraftStore(), &fakeVenueRepo{exists: true}, nopLogger{})

	resp, err := svc.Create(context.Background(), &models.CreateDraftRequest{
		CustomerID:      100,
		VenueID:         1,
		Date:            "2026-09-16",
		StartTime:       "19:00",
		TableType:       4,
		PartySize:       3,
		DurationMinutes: 90,
	})
	require.NoError(t, err)

	assert.Equal(t, "2026-09-16", resp.Date)
	assert.Equal(t, "19:00", resp.StartTime)
	assert.Equal(t, 4, resp.TableType)
}

func TestCreate_Validation(t *testing.T) {
	svc := NewService(newFakeDraftStore(), &fakeVenueRepo{exists: true}, nopLogger{})

	tests := []struct {
		name string
		req  *models.CreateDraftRequest
	}{
		{name: "no venue", req: &models.CreateDraftRequest{CustomerID: 100}},
		{name: "bad date", req: &models.CreateDraftRequest{CustomerID: 100, VenueID: 1, Date: "16.09.2026"}},
		{name: "bad time", req: &models.CreateDraftRequest{CustomerID: 100, VenueID: 1, StartTime: "7pm"}},
		{name: "unknown table type", req: &models.CreateDraftRequest{CustomerID: 100, VenueID: 1, TableType: 5}},
		{name: "party too large", req: &models.CreateDraftRequest{CustomerID: 100, VenueID: 1, PartySize: 9}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.req)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestCreate_VenueNotFound(t *testing.T) {
	svc := NewService(newFakeDraftStore(), &fakeVenueRepo{}, nopLogger{})

	_, err := svc.Create(context.Background(), &models.CreateDraftRequest{
		CustomerID: 100,
		VenueID:    42,
	})
	assert.ErrorIs(t, err, ErrVenueNotFound)
}

func TestGet_OwnerOnly(t *testing.T) {
	store := newFakeDraftStore()
	svc := NewService(store, &fakeVenueRepo{exists: true}, nopLogger{})

	created, err := svc.Create(context.Background(), &models.CreateDraftRequest{
		CustomerID: 100,
		VenueID:    1,
	})
	require.NoError(t, err)
	id := uuid.MustParse(created.ID)

	got, err := svc.Get(context.Background(), id, 100)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = svc.Get(context.Background(), id, 999)
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = svc.Get(context.Background(), uuid.New(), 100)
	assert.ErrorIs(t, err, ErrDraftNotFound)
}

func TestDelete_OwnerOnly(t *testing.T) {
	store := newFakeDraftStore()
	svc := NewService(store, &fakeVenueRepo{exists: true}, nopLogger{})

	created, err := svc.Create(context.Background(), &models.CreateDraftRequest{
		CustomerID: 100,
		VenueID:    1,
	})
	require.NoError(t, err)
	id := uuid.MustParse(created.ID)

	assert.ErrorIs(t, svc.Delete(context.Background(), id, 999), ErrAccessDenied)

	require.NoError(t, svc.Delete(context.Background(), id, 100))
	_, err = svc.Get(context.Background(), id, 100)
	assert.ErrorIs(t, err, ErrDraftNotFound)
}
