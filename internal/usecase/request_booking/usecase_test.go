package request_booking

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablehub/reservation-service/internal/domain"
	"github.com/tablehub/reservation-service/internal/infra/draftstore"
	policyStorage "github.com/tablehub/reservation-service/internal/infra/storage/policy"
	"github.com/tablehub/reservation-service/internal/ledger"
	"github.com/tablehub/reservation-service/pkg/types"
)

type stubReservationRepo struct {
	created *domain.Reservation
	err     error
}

func (s *stubReservationRepo) Create(_ context.Context, res *domain.Reservation) (*domain.Reservation, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.created = res
	return res, nil
}

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
	err      error
	reserved []domain.Slot
}

func (s *stubLedger) Reserve(_ context.Context, slot domain.Slot, _ int) error {
	if s.err != nil {
		return s.err
	}
	s.reserved = append(s.reserved, slot)
	return nil
}

type stubDraftStore struct {
	draft   *domain.DraftReservation
	getErr  error
	deleted []uuid.UUID
}

func (s *stubDraftStore) Get(_ context.Context, _ uuid.UUID) (*domain.DraftReservation, error) {
	return s.draft, s.getErr
}

func (s *stubDraftStore) Delete(_ context.Context, id uuid.UUID) error {
	s.deleted = append(s.deleted, id)
	return nil
}

type passTxManager struct{}

func (passTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fixedTime struct{ now time.Time }

func (f *fixedTime) Now() time.Time { return f.now }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type fixture struct {
	uc              *UseCase
	reservationRepo *stubReservationRepo
	ledger          *stubLedger
	draftStore      *stubDraftStore
	now             time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	venue := &domain.Venue{
		ID:        1,
		Name:      "La Piazza",
		OpenTime:  types.TimeString("18:00"),
		CloseTime: types.TimeString("22:00"),
		Tables: []domain.TableTypeQuantity{
			{TableType: domain.TableTypeTwo, Quantity: 6},
			{TableType: domain.TableTypeFour, Quantity: 4},
		},
	}
	cfg := &domain.PolicyConfig{
		VenueID:                1,
		GracePeriodMinutes:     20,
		PenaltyFee:             10,
		MaxDurationMinutes:     120,
		FreeCancelHoursBefore:  2,
		AutoCancelAfterMinutes: 30,
		HoldTTLMinutes:         10,
		SlotIntervalMinutes:    30,
	}

	f := &fixture{
		reservationRepo: &stubReservationRepo{},
		ledger:          &stubLedger{},
		draftStore:      &stubDraftStore{},
		now:             time.Date(2026, 9, 15, 12, 0, 0, 0, time.UTC),
	}
	f.uc = NewUseCase(
		f.reservationRepo,
		&stubVenueRepo{venue: venue},
		&stubPolicyRepo{cfg: cfg},
		f.ledger,
		f.draftStore,
		passTxManager{},
		nopLogger{},
	)
	f.uc.timeProvider = &fixedTime{now: f.now}
	return f
}

func validRequest() *Request {
	return &Request{
		CustomerID: 100,
		VenueID:    1,
		Date:       time.Date(2026, 9, 16, 0, 0, 0, 0, time.UTC),
		StartTime:  types.TimeString("19:00"),
		TableType:  domain.TableTypeFour,
		PartySize:  3,
	}
}

func TestExecute_Success(t *testing.T) {
	f := newFixture(t)

	resp, err := f.uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Equal(t, "held", resp.Status)
	assert.Equal(t, f.now.Add(10*time.Minute), resp.HoldExpiresAt)
	assert.Equal(t, 10.0, resp.PenaltyFee)
	// Длительность не задана - берется максимум по правилам
	assert.Equal(t, 120, resp.DurationMinutes)

	require.NotNil(t, f.reservationRepo.created)
	created := f.reservationRepo.created
	assert.Equal(t, domain.StatusHeld, created.Status)
	require.NotNil(t, created.HoldExpiresAt)
	assert.Equal(t, f.now.Add(10*time.Minute), *created.HoldExpiresAt)
	assert.Equal(t, 20, created.Policy.GracePeriodMinutes)

	require.Len(t, f.ledger.reserved, 1)
	slot := f.ledger.reserved[0]
	assert.Equal(t, int64(1), slot.VenueID)
	assert.Equal(t, types.TimeString("19:00"), slot.StartTime)
	assert.Equal(t, domain.TableTypeFour, slot.TableType)
}

func TestExecute_PartyDoesNotFitTable(t *testing.T) {
	f := newFixture(t)

	req := validRequest()
	req.PartySize = 5

	_, err := f.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrPolicyViolation)

	// Нарушение правил не доходит до ledger
	assert.Empty(t, f.ledger.reserved)
	assert.Nil(t, f.reservationRepo.created)
}

func TestExecute_DurationExceedsMaximum(t *testing.T) {
	f := newFixture(t)

	req := validRequest()
	req.DurationMinutes = 180

	_, err := f.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrPolicyViolation)
	assert.Empty(t, f.ledger.reserved)
}

func TestExecute_SlotUnavailable(t *testing.T) {
	f := newFixture(t)
	f.ledger.err = ledger.ErrCapacityExceeded

	_, err := f.uc.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrSlotUnavailable)
	assert.Nil(t, f.reservationRepo.created)
}

func TestExecute_FrozenSlotUnavailable(t *testing.T) {
	f := newFixture(t)
	f.ledger.err = ledger.ErrKeyFrozen

	_, err := f.uc.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrSlotUnavailable)
}

func TestExecute_PastDate(t *testing.T) {
	f := newFixture(t)

	req := validRequest()
	req.Date = time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)

	_, err := f.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestExecute_TimeSlotValidation(t *testing.T) {
	tests := []struct {
		name      string
		start     types.TimeString
		duration  int
		wantError error
	}{
		{name: "before opening", start: "17:00", duration: 60, wantError: ErrInvalidTimeSlot},
		{name: "off the slot grid", start: "19:10", duration: 60, wantError: ErrInvalidTimeSlot},
		{name: "ends after closing", start: "21:30", duration: 60, wantError: ErrInvalidTimeSlot},
		{name: "last fitting slot", start: "21:00", duration: 60, wantError: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			req := validRequest()
			req.StartTime = tt.start
			req.DurationMinutes = tt.duration

			_, err := f.uc.Execute(context.Background(), req)
			if tt.wantError != nil {
				assert.ErrorIs(t, err, tt.wantError)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestExecute_FromDraft(t *testing.T) {
	f := newFixture(t)

	draftID := uuid.New()
	f.draftStore.draft = &domain.DraftReservation{
		ID:              draftID,
		CustomerID:      100,
		VenueID:         1,
		Date:            time.Date(2026, 9, 16, 0, 0, 0, 0, time.UTC),
		StartTime:       types.TimeString("20:00"),
		TableType:       domain.TableTypeTwo,
		PartySize:       2,
		DurationMinutes: 60,
	}

	resp, err := f.uc.Execute(context.Background(), &Request{
		CustomerID: 100,
		DraftID:    &draftID,
	})
	require.NoError(t, err)

	assert.Equal(t, types.TimeString("20:00"), resp.StartTime)
	assert.Equal(t, domain.TableTypeTwo, resp.TableType)
	assert.Equal(t, 60, resp.DurationMinutes)

	// Черновик удаляется после успешного бронирования
	require.Len(t, f.draftStore.deleted, 1)
	assert.Equal(t, draftID, f.draftStore.deleted[0])
}

func TestExecute_DraftOfAnotherCustomer(t *testing.T) {
	f := newFixture(t)

	draftID := uuid.New()
	f.draftStore.draft = &domain.DraftReservation{
		ID:         draftID,
		CustomerID: 200,
		VenueID:    1,
	}

	_, err := f.uc.Execute(context.Background(), &Request{
		CustomerID: 100,
		DraftID:    &draftID,
	})
	assert.ErrorIs(t, err, ErrDraftNotFound)
	assert.Empty(t, f.ledger.reserved)
}

func TestExecute_DraftExpired(t *testing.T) {
	f := newFixture(t)

	draftID := uuid.New()
	f.draftStore.getErr = draftstore.ErrDraftNotFound

	_, err := f.uc.Execute(context.Background(), &Request{
		CustomerID: 100,
		DraftID:    &draftID,
	})
	assert.ErrorIs(t, err, ErrDraftNotFound)
}

func TestExecute_DefaultPolicyWhenVenueHasNone(t *testing.T) {
	f := newFixture(t)
	f.uc.policyRepo = &stubPolicyRepo{err: policyStorage.ErrPolicyNotFound}

	resp, err := f.uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Equal(t, domain.DefaultMaxDurationMinutes, resp.DurationMinutes)
	assert.Equal(t, f.now.Add(time.Duration(domain.DefaultHoldTTLMinutes)*time.Minute), resp.HoldExpiresAt)
}

func TestExecute_InvalidInput(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name   string
		mutate func(*Request)
	}{
		{name: "no customer", mutate: func(r *Request) { r.CustomerID = 0 }},
		{name: "no venue", mutate: func(r *Request) { r.VenueID = 0 }},
		{name: "no date", mutate: func(r *Request) { r.Date = time.Time{} }},
		{name: "no start time", mutate: func(r *Request) { r.StartTime = "" }},
		{name: "bad table type", mutate: func(r *Request) { r.TableType = 5 }},
		{name: "zero party", mutate: func(r *Request) { r.PartySize = 0 }},
		{name: "negative duration", mutate: func(r *Request) { r.DurationMinutes = -30 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(req)

			_, err := f.uc.Execute(context.Background(), req)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}
