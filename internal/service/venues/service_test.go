package venues

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablehub/reservation-service/internal/domain"
	venueStorage "github.com/tablehub/reservation-service/internal/infra/storage/venue"
	"github.com/tablehub/reservation-service/internal/service/venues/models"
)

type fakeVenueRepo struct {
	byID   map[int64]*domain.Venue
	nextID int64
}

func newFakeVenueRepo() *fakeVenueRepo {
	return &fakeVenueRepo{byID: map[int64]*domain.Venue{}, nextID: 1}
}

func (f *fakeVenueRepo) Create(_ context.Context, v *domain.Venue) (*domain.Venue, error) {
	cp := *v
	cp.ID = f.nextID
	f.nextID++
	f.byID[cp.ID] = &cp
	return &cp, nil
}

func (f *fakeVenueRepo) Update(_ context.Context, v *domain.Venue) error {
	if _, ok := f.byID[v.ID]; !ok {
		return venueStorage.ErrVenueNotFound
	}
	cp := *v
	f.byID[v.ID] = &cp
	return nil
}

func (f *fakeVenueRepo) GetByID(_ context.Context, id int64) (*domain.Venue, error) {
	v, ok := f.byID[id]
	if !ok {
		return nil, venueStorage.ErrVenueNotFound
	}
	cp := *v
	return &cp, nil
}

func (f *fakeVenueRepo) List(_ context.Context) ([]*domain.Venue, error) {
	list := make([]*domain.Venue, 0, len(f.byID))
	for _, v := range f.byID {
		cp := *v
		list = append(list, &cp)
	}
	return list, nil
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func createRequest() *models.CreateVenueRequest {
	return &models.CreateVenueRequest{
		UserID:    10,
		Name:      "La Piazza",
		Address:   "Via Roma 1",
		Cuisine:   "italian",
		OpenTime:  "10:00",
		CloseTime: "23:00",
		Tables: []models.TableTypeQuantity{
			{TableType: 2, Quantity: 6},
			{TableType: 4, Quantity: 4},
		},
	}
}

func TestCreate_CreatorBecomesManager(t *testing.T) {
	svc := NewService(newFakeVenueRepo(), nopLogger{})

	resp, err := svc.Create(context.Background(), createRequest())
	require.NoError(t, err)

	assert.Equal(t, "La Piazza", resp.Name)
	assert.Contains(t, resp.ManagerIDs, int64(10))
}

func TestCreate_ExplicitManagersKeepCreator(t *testing.T) {
	svc := NewService(newFakeVenueRepo(), nopLogger{})

	req := createRequest()
	req.ManagerIDs = []int64{20, 30}

	resp, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{10, 20, 30}, resp.ManagerIDs)
}

func TestCreate_Validation(t *testing.T) {
	svc := NewService(newFakeVenueRepo(), nopLogger{})

	tests := []struct {
		name   string
		mutate func(*models.CreateVenueRequest)
	}{
		{name: "empty name", mutate: func(r *models.CreateVenueRequest) { r.Name = "" }},
		{name: "bad open time", mutate: func(r *models.CreateVenueRequest) { r.OpenTime = "ten" }},
		{name: "bad close time", mutate: func(r *models.CreateVenueRequest) { r.CloseTime = "25:00" }},
		{name: "open after close", mutate: func(r *models.CreateVenueRequest) { r.OpenTime = "23:00"; r.CloseTime = "10:00" }},
		{name: "open equals close", mutate: func(r *models.CreateVenueRequest) { r.OpenTime = "10:00"; r.CloseTime = "10:00" }},
		{name: "unknown table type", mutate: func(r *models.CreateVenueRequest) {
			r.Tables = []models.TableTypeQuantity{{TableType: 5, Quantity: 1}}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := createRequest()
			tt.mutate(req)

			_, err := svc.Create(context.Background(), req)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestUpdate_ManagerOnly(t *testing.T) {
	repo := newFakeVenueRepo()
	svc := NewService(repo, nopLogger{})

	created, err := svc.Create(context.Background(), createRequest())
	require.NoError(t, err)

	newName := "Trattoria Nuova"
	_, err = svc.Update(context.Background(), created.ID, &models.UpdateVenueRequest{
		UserID: 999,
		Name:   &newName,
	})
	assert.ErrorIs(t, err, ErrAccessDenied)

	resp, err := svc.Update(context.Background(), created.ID, &models.UpdateVenueRequest{
		UserID: 10,
		Name:   &newName,
	})
	require.NoError(t, err)
	assert.Equal(t, "Trattoria Nuova", resp.Name)
}

func TestUpdate_PatchKeepsUnsetFields(t *testing.T) {
	repo := newFakeVenueRepo()
	svc := NewService(repo, nopLogger{})

	created, err := svc.Create(context.Background(), createRequest())
	require.NoError(t, err)

	closeTime := "22:00"
	resp, err := svc.Update(context.Background(), created.ID, &models.UpdateVenueRequest{
		UserID:    10,
		CloseTime: &closeTime,
	})
	require.NoError(t, err)

	assert.Equal(t, "22:00", resp.CloseTime)
	assert.Equal(t, "10:00", resp.OpenTime)
	assert.Equal(t, "La Piazza", resp.Name)
	assert.Len(t, resp.Tables, 2)
}

func TestUpdate_RevalidatesWorkingHours(t *testing.T) {
	repo := newFakeVenueRepo()
	svc := NewService(repo, nopLogger{})

	created, err := svc.Create(context.Background(), createRequest())
	require.NoError(t, err)

	// Патч делает закрытие раньше открытия - итоговое состояние невалидно
	closeTime := "09:00"
	_, err = svc.Update(context.Background(), created.ID, &models.UpdateVenueRequest{
		UserID:    10,
		CloseTime: &closeTime,
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestUpdate_VenueNotFound(t *testing.T) {
	svc := NewService(newFakeVenueRepo(), nopLogger{})

	name := "Ghost"
	_, err := svc.Update(context.Background(), 42, &models.UpdateVenueRequest{UserID: 10, Name: &name})
	assert.ErrorIs(t, err, ErrVenueNotFound)
}

func TestGetByIDAndList(t *testing.T) {
	repo := newFakeVenueRepo()
	svc := NewService(repo, nopLogger{})

	created, err := svc.Create(context.Background(), createRequest())
	require.NoError(t, err)

	got, err := svc.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = svc.GetByID(context.Background(), 999)
	assert.ErrorIs(t, err, ErrVenueNotFound)

	list, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, list.Venues, 1)
}
