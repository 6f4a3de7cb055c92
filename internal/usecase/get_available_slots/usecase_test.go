package get_available_slots

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablehub/reservation-service/internal/domain"
	policyStorage "github.com/tablehub/reservation-service/internal/infra/storage/policy"
	venueStorage "github.com/tablehub/reservation-service/internal/infra/storage/venue"
	"github.com/tablehub/reservation-service/pkg/types"
)

type stubVenueRepo struct {
	venue *domain.Venue
	err   error
}

func (s *stubVenueRepo) GetByID(_ context.Context, _ int64) (*domain.Venue, error) {
	return s.venue, s.err
}

type stubPolicyRepo struct {
	cfg *domain.PolicyConfig
	err error
}

func (s *stubPolicyRepo) GetByVenueID(_ context.Context, _ int64) (*domain.PolicyConfig, error) {
	return s.cfg, s.err
}

type stubLedger struct {
	remaining int
	total     int
	err       error
	queried   []domain.Slot
}

func (s *stubLedger) Query(_ context.Context, slot domain.Slot) (int, int, error) {
	s.queried = append(s.queried, slot)
	return s.remaining, s.total, s.err
}

type fixedTime struct{ now time.Time }

func (f *fixedTime) Now() time.Time { return f.now }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func testVenue() *domain.Venue {
	return &domain.Venue{
		ID:        1,
		Name:      "La Piazza",
		OpenTime:  types.TimeString("18:00"),
		CloseTime: types.TimeString("20:00"),
		Tables: []domain.TableTypeQuantity{
			{TableType: domain.TableTypeTwo, Quantity: 6},
			{TableType: domain.TableTypeFour, Quantity: 4},
			{TableType: domain.TableTypeEight, Quantity: 0},
		},
	}
}

func newTestUseCase(venueRepo VenueRepository, policyRepo PolicyRepository, ledger CapacityLedger, now time.Time) *UseCase {
	uc := NewUseCase(venueRepo, policyRepo, ledger, nopLogger{})
	uc.timeProvider = &fixedTime{now: now}
	return uc
}

func TestExecute_Success(t *testing.T) {
	now := time.Date(2026, 9, 15, 12, 0, 0, 0, time.UTC)
	ledger := &stubLedger{remaining: 3, total: 4}
	uc := newTestUseCase(
		&stubVenueRepo{venue: testVenue()},
		&stubPolicyRepo{cfg: &domain.PolicyConfig{VenueID: 1, SlotIntervalMinutes: 60}},
		ledger,
		now,
	)

	resp, err := uc.Execute(context.Background(), &Request{
		VenueID: 1,
		Date:    date(2026, 9, 16),
	})
	require.NoError(t, err)

	// Два часа работы с шагом 60 минут и два типа столиков с ненулевым
	// количеством: 2 времени * 2 типа = 4 слота, стол на восьмерых пропущен
	require.Len(t, resp.Slots, 4)
	assert.Equal(t, Slot{StartTime: "18:00", TableType: domain.TableTypeTwo, Remaining: 3, Total: 4}, resp.Slots[0])
	assert.Equal(t, Slot{StartTime: "18:00", TableType: domain.TableTypeFour, Remaining: 3, Total: 4}, resp.Slots[1])
	assert.Equal(t, Slot{StartTime: "19:00", TableType: domain.TableTypeTwo, Remaining: 3, Total: 4}, resp.Slots[2])
	assert.Equal(t, Slot{StartTime: "19:00", TableType: domain.TableTypeFour, Remaining: 3, Total: 4}, resp.Slots[3])
	assert.Len(t, ledger.queried, 4)
}

func TestExecute_TableTypeFilter(t *testing.T) {
	now := time.Date(2026, 9, 15, 12, 0, 0, 0, time.UTC)
	ledger := &stubLedger{remaining: 1, total: 4}
	uc := newTestUseCase(
		&stubVenueRepo{venue: testVenue()},
		&stubPolicyRepo{err: policyStorage.ErrPolicyNotFound},
		ledger,
		now,
	)

	tableType := domain.TableTypeFour
	resp, err := uc.Execute(context.Background(), &Request{
		VenueID:   1,
		Date:      date(2026, 9, 16),
		TableType: &tableType,
	})
	require.NoError(t, err)

	// Без собственных правил шаг сетки дефолтный (30 минут): 18:00..19:30
	require.Len(t, resp.Slots, 4)
	for _, s := range resp.Slots {
		assert.Equal(t, domain.TableTypeFour, s.TableType)
	}
	assert.Equal(t, types.TimeString("18:00"), resp.Slots[0].StartTime)
	assert.Equal(t, types.TimeString("19:30"), resp.Slots[3].StartTime)
}

func TestExecute_PastDateReturnsNoSlots(t *testing.T) {
	now := time.Date(2026, 9, 15, 12, 0, 0, 0, time.UTC)
	ledger := &stubLedger{remaining: 1, total: 4}
	uc := newTestUseCase(
		&stubVenueRepo{venue: testVenue()},
		&stubPolicyRepo{err: policyStorage.ErrPolicyNotFound},
		ledger,
		now,
	)

	resp, err := uc.Execute(context.Background(), &Request{
		VenueID: 1,
		Date:    date(2026, 9, 10),
	})
	require.NoError(t, err)
	assert.Empty(t, resp.Slots)
	assert.Empty(t, ledger.queried)
}

func TestExecute_VenueNotFound(t *testing.T) {
	uc := newTestUseCase(
		&stubVenueRepo{err: venueStorage.ErrVenueNotFound},
		&stubPolicyRepo{},
		&stubLedger{},
		time.Now(),
	)

	_, err := uc.Execute(context.Background(), &Request{VenueID: 42, Date: date(2026, 9, 16)})
	assert.ErrorIs(t, err, ErrVenueNotFound)
}

func TestExecute_ValidationErrors(t *testing.T) {
	uc := newTestUseCase(&stubVenueRepo{venue: testVenue()}, &stubPolicyRepo{}, &stubLedger{}, time.Now())

	_, err := uc.Execute(context.Background(), &Request{VenueID: 0, Date: date(2026, 9, 16)})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = uc.Execute(context.Background(), &Request{VenueID: 1})
	assert.ErrorIs(t, err, ErrInvalidInput)

	badType := domain.TableType(5)
	_, err = uc.Execute(context.Background(), &Request{VenueID: 1, Date: date(2026, 9, 16), TableType: &badType})
	assert.ErrorIs(t, err, ErrUnknownTableType)
}

func TestExecute_LedgerFailure(t *testing.T) {
	uc := newTestUseCase(
		&stubVenueRepo{venue: testVenue()},
		&stubPolicyRepo{err: policyStorage.ErrPolicyNotFound},
		&stubLedger{err: errors.New("connection refused")},
		time.Date(2026, 9, 15, 12, 0, 0, 0, time.UTC),
	)

	_, err := uc.Execute(context.Background(), &Request{VenueID: 1, Date: date(2026, 9, 16)})
	assert.ErrorIs(t, err, ErrInternal)
}
