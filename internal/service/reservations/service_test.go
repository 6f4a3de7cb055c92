package reservations

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablehub/reservation-service/internal/domain"
	reservationStorage "github.com/tablehub/reservation-service/internal/infra/storage/reservation"
	"github.com/tablehub/reservation-service/internal/ledger"
	"github.com/tablehub/reservation-service/internal/service/reservations/models"
	"github.com/tablehub/reservation-service/pkg/types"
)

const (
	customerID = int64(100)
	managerID  = int64(10)
	strangerID = int64(999)
)

type guardedCall struct {
	from, to domain.ReservationStatus
	extra    map[string]interface{}
}

type fakeReservationRepo struct {
	byID       map[uuid.UUID]*domain.Reservation
	updateErr  error
	guarded    []guardedCall
	listResult []*domain.Reservation
}

func (f *fakeReservationRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Reservation, error) {
	res, ok := f.byID[id]
	if !ok {
		return nil, reservationStorage.ErrReservationNotFound
	}
	cp := *res
	return &cp, nil
}

func (f *fakeReservationRepo) GetByCustomerID(_ context.Context, _ int64, _ *domain.ReservationStatus) ([]*domain.Reservation, error) {
	return f.listResult, nil
}

func (f *fakeReservationRepo) GetByVenueWithFilter(_ context.Context, _ domain.VenueReservationsFilter) ([]*domain.Reservation, error) {
	return f.listResult, nil
}

func (f *fakeReservationRepo) UpdateStatusGuarded(_ context.Context, id uuid.UUID, from, to domain.ReservationStatus, extra map[string]interface{}) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.guarded = append(f.guarded, guardedCall{from: from, to: to, extra: extra})
	if res, ok := f.byID[id]; ok {
		res.Status = to
	}
	return nil
}

type fakeVenueRepo struct {
	venue *domain.Venue
}

func (f *fakeVenueRepo) GetByID(_ context.Context, _ int64) (*domain.Venue, error) {
	return f.venue, nil
}

type fakeLedger struct {
	releaseErr error
	released   []domain.Slot
	frozen     []domain.Slot
}

func (f *fakeLedger) Release(_ context.Context, slot domain.Slot, _ int) error {
	if f.releaseErr != nil {
		return f.releaseErr
	}
	f.released = append(f.released, slot)
	return nil
}

func (f *fakeLedger) Freeze(_ context.Context, slot domain.Slot) error {
	f.frozen = append(f.frozen, slot)
	return nil
}

type passTxManager struct{}

func (passTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (passTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (passTxManager) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fixedTime struct{ now time.Time }

func (f *fixedTime) Now() time.Time { return f.now }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type fixture struct {
	svc             *Service
	reservationRepo *fakeReservationRepo
	ledger          *fakeLedger
	now             time.Time
}

// newFixture поднимает сервис с фиксированным временем 15 сентября 12:00
// и рестораном, которым управляет managerID
func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		reservationRepo: &fakeReservationRepo{byID: map[uuid.UUID]*domain.Reservation{}},
		ledger:          &fakeLedger{},
		now:             time.Date(2026, 9, 15, 12, 0, 0, 0, time.UTC),
	}

	venue := &domain.Venue{
		ID:         1,
		Name:       "La Piazza",
		OpenTime:   types.TimeString("10:00"),
		CloseTime:  types.TimeString("23:00"),
		ManagerIDs: []int64{managerID},
	}

	f.svc = NewService(
		f.reservationRepo,
		&fakeVenueRepo{venue: venue},
		f.ledger,
		passTxManager{},
		nil,
		nopLogger{},
	)
	f.svc.timeProvider = &fixedTime{now: f.now}
	return f
}

// addReservation кладет в репозиторий бронь на 19:00 сегодняшнего дня
func (f *fixture) addReservation(status domain.ReservationStatus) *domain.Reservation {
	res := &domain.Reservation{
		ID:              uuid.New(),
		VenueID:         1,
		CustomerID:      customerID,
		Date:            time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC),
		StartTime:       types.TimeString("19:00"),
		DurationMinutes: 90,
		TableType:       domain.TableTypeFour,
		PartySize:       3,
		Status:          status,
		Policy: domain.PolicySnapshot{
			GracePeriodMinutes:     20,
			PenaltyFee:             10,
			MaxDurationMinutes:     120,
			FreeCancelHoursBefore:  2,
			AutoCancelAfterMinutes: 30,
			HoldTTLMinutes:         10,
		},
	}
	if status == domain.StatusHeld {
		deadline := f.now.Add(10 * time.Minute)
		res.HoldExpiresAt = &deadline
	}
	f.reservationRepo.byID[res.ID] = res
	return res
}

func TestGetByID(t *testing.T) {
	f := newFixture(t)
	res := f.addReservation(domain.StatusConfirmed)

	// Владелец и менеджер видят бронь, посторонний - нет
	got, err := f.svc.GetByID(context.Background(), res.ID, customerID)
	require.NoError(t, err)
	assert.Equal(t, res.ID.String(), got.ID)

	_, err = f.svc.GetByID(context.Background(), res.ID, managerID)
	assert.NoError(t, err)

	_, err = f.svc.GetByID(context.Background(), res.ID, strangerID)
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = f.svc.GetByID(context.Background(), uuid.New(), customerID)
	assert.ErrorIs(t, err, ErrReservationNotFound)
}

func TestConfirm_Success(t *testing.T) {
	f := newFixture(t)
	res := f.addReservation(domain.StatusHeld)

	got, err := f.svc.Confirm(context.Background(), res.ID, customerID)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusConfirmed), got.Status)

	require.Len(t, f.reservationRepo.guarded, 1)
	call := f.reservationRepo.guarded[0]
	assert.Equal(t, domain.StatusHeld, call.from)
	assert.Equal(t, domain.StatusConfirmed, call.to)
	assert.Contains(t, call.extra, "hold_expires_at")
	assert.Nil(t, call.extra["hold_expires_at"])
}

func TestConfirm_HoldExpired(t *testing.T) {
	f := newFixture(t)
	res := f.addReservation(domain.StatusHeld)
	expired := f.now.Add(-time.Minute)
	res.HoldExpiresAt = &expired

	_, err := f.svc.Confirm(context.Background(), res.ID, customerID)
	assert.ErrorIs(t, err, ErrHoldExpired)
	assert.Empty(t, f.reservationRepo.guarded)
}

func TestConfirm_OnlyOwner(t *testing.T) {
	f := newFixture(t)
	res := f.addReservation(domain.StatusHeld)

	// Подтверждение недоступно даже менеджеру - только владельцу
	_, err := f.svc.Confirm(context.Background(), res.ID, managerID)
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestConfirm_WrongStatus(t *testing.T) {
	f := newFixture(t)
	res := f.addReservation(domain.StatusConfirmed)

	_, err := f.svc.Confirm(context.Background(), res.ID, customerID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestConfirm_LostRaceToWorker(t *testing.T) {
	f := newFixture(t)
	res := f.addReservation(domain.StatusHeld)
	f.reservationRepo.updateErr = reservationStorage.ErrStatusConflict

	_, err := f.svc.Confirm(context.Background(), res.ID, customerID)
	assert.ErrorIs(t, err, ErrStatusConflict)
}

func TestCancel_LateCancellationPenalty(t *testing.T) {
	f := newFixture(t)
	res := f.addReservation(domain.StatusConfirmed)

	// 12:00 при брони на 19:00 и окне 2 часа - еще бесплатно
	got, err := f.svc.Cancel(context.Background(), res.ID, &models.CancelReservationRequest{
		UserID:             customerID,
		CancellationReason: "changed plans",
	})
	require.NoError(t, err)
	assert.Equal(t, 0.0, got.PenaltyCharged)

	call := f.reservationRepo.guarded[0]
	assert.Equal(t, 0.0, call.extra["penalty_charged"])
	assert.Equal(t, "customer", call.extra["cancelled_by"])
	require.Len(t, f.ledger.released, 1)
}

func TestCancel_InsidePaidWindow(t *testing.T) {
	f := newFixture(t)
	f.svc.timeProvider = &fixedTime{now: time.Date(2026, 9, 15, 17, 30, 0, 0, time.UTC)}
	res := f.addReservation(domain.StatusConfirmed)

	_, err := f.svc.Cancel(context.Background(), res.ID, &models.CancelReservationRequest{
		UserID: customerID,
	})
	require.NoError(t, err)

	call := f.reservationRepo.guarded[0]
	assert.Equal(t, 10.0, call.extra["penalty_charged"])
}

func TestCancel_ByVenueManagerNoPenalty(t *testing.T) {
	f := newFixture(t)
	// Даже в платном окне отмена рестораном не тарифицируется
	f.svc.timeProvider = &fixedTime{now: time.Date(2026, 9, 15, 18, 30, 0, 0, time.UTC)}
	res := f.addReservation(domain.StatusConfirmed)

	_, err := f.svc.Cancel(context.Background(), res.ID, &models.CancelReservationRequest{
		UserID:             managerID,
		CancellationReason: "kitchen flooded",
	})
	require.NoError(t, err)

	call := f.reservationRepo.guarded[0]
	assert.Equal(t, "venue", call.extra["cancelled_by"])
	assert.Equal(t, 0.0, call.extra["penalty_charged"])
}

func TestCancel_StrangerDenied(t *testing.T) {
	f := newFixture(t)
	res := f.addReservation(domain.StatusConfirmed)

	_, err := f.svc.Cancel(context.Background(), res.ID, &models.CancelReservationRequest{
		UserID: strangerID,
	})
	assert.ErrorIs(t, err, ErrAccessDenied)
	assert.Empty(t, f.ledger.released)
}

func TestCancel_TerminalStatus(t *testing.T) {
	f := newFixture(t)
	res := f.addReservation(domain.StatusCompleted)

	_, err := f.svc.Cancel(context.Background(), res.ID, &models.CancelReservationRequest{
		UserID: customerID,
	})
	assert.ErrorIs(t, err, ErrCannotCancel)
}

func TestCancel_CheckedInNotCancellable(t *testing.T) {
	f := newFixture(t)
	res := f.addReservation(domain.StatusCheckedIn)

	_, err := f.svc.Cancel(context.Background(), res.ID, &models.CancelReservationRequest{
		UserID: customerID,
	})
	assert.ErrorIs(t, err, ErrCannotCancel)
}

func TestCancel_LedgerCorruptionRefreezesKey(t *testing.T) {
	f := newFixture(t)
	res := f.addReservation(domain.StatusConfirmed)
	f.ledger.releaseErr = ledger.ErrLedgerCorruption

	_, err := f.svc.Cancel(context.Background(), res.ID, &models.CancelReservationRequest{
		UserID: customerID,
	})
	assert.ErrorIs(t, err, ErrInternal)

	// Заморозка переигрывается вне откаченной транзакции
	require.Len(t, f.ledger.frozen, 1)
	assert.Equal(t, res.VenueID, f.ledger.frozen[0].VenueID)
}

func TestCheckIn_Success(t *testing.T) {
	f := newFixture(t)
	// 19:05 - в пределах grace period для брони на 19:00
	f.svc.timeProvider = &fixedTime{now: time.Date(2026, 9, 15, 19, 5, 0, 0, time.UTC)}
	res := f.addReservation(domain.StatusConfirmed)

	got, err := f.svc.CheckIn(context.Background(), res.ID, managerID)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusCheckedIn), got.Status)

	call := f.reservationRepo.guarded[0]
	assert.Contains(t, call.extra, "checked_in_at")
}

func TestCheckIn_TooEarly(t *testing.T) {
	f := newFixture(t)
	// 18:29 - раньше, чем за 30 минут до начала
	f.svc.timeProvider = &fixedTime{now: time.Date(2026, 9, 15, 18, 29, 0, 0, time.UTC)}
	res := f.addReservation(domain.StatusConfirmed)

	_, err := f.svc.CheckIn(context.Background(), res.ID, customerID)
	assert.ErrorIs(t, err, ErrTooEarlyToCheckIn)
}

func TestCheckIn_WithinEarlyWindow(t *testing.T) {
	f := newFixture(t)
	f.svc.timeProvider = &fixedTime{now: time.Date(2026, 9, 15, 18, 30, 0, 0, time.UTC)}
	res := f.addReservation(domain.StatusConfirmed)

	_, err := f.svc.CheckIn(context.Background(), res.ID, customerID)
	assert.NoError(t, err)
}

func TestCheckIn_GracePeriodExpired(t *testing.T) {
	f := newFixture(t)
	// 19:21 - grace period в 20 минут уже истек
	f.svc.timeProvider = &fixedTime{now: time.Date(2026, 9, 15, 19, 21, 0, 0, time.UTC)}
	res := f.addReservation(domain.StatusConfirmed)

	_, err := f.svc.CheckIn(context.Background(), res.ID, customerID)
	assert.ErrorIs(t, err, ErrGracePeriodExpired)
}

func TestCheckIn_NotConfirmed(t *testing.T) {
	f := newFixture(t)
	f.svc.timeProvider = &fixedTime{now: time.Date(2026, 9, 15, 19, 0, 0, 0, time.UTC)}
	res := f.addReservation(domain.StatusHeld)

	_, err := f.svc.CheckIn(context.Background(), res.ID, customerID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestComplete_Success(t *testing.T) {
	f := newFixture(t)
	res := f.addReservation(domain.StatusCheckedIn)

	got, err := f.svc.Complete(context.Background(), res.ID, managerID)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusCompleted), got.Status)

	call := f.reservationRepo.guarded[0]
	assert.Contains(t, call.extra, "completed_at")

	// Завершение возвращает место в ledger
	require.Len(t, f.ledger.released, 1)
	assert.Equal(t, types.TimeString("19:00"), f.ledger.released[0].StartTime)
}

func TestComplete_CustomerDenied(t *testing.T) {
	f := newFixture(t)
	res := f.addReservation(domain.StatusCheckedIn)

	// Завершить визит может только менеджер, не сам гость
	_, err := f.svc.Complete(context.Background(), res.ID, customerID)
	assert.ErrorIs(t, err, ErrAccessDenied)
	assert.Empty(t, f.ledger.released)
}

func TestComplete_WrongStatus(t *testing.T) {
	f := newFixture(t)
	res := f.addReservation(domain.StatusConfirmed)

	_, err := f.svc.Complete(context.Background(), res.ID, managerID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestGetVenueReservations_ManagerOnly(t *testing.T) {
	f := newFixture(t)
	f.reservationRepo.listResult = []*domain.Reservation{}

	_, err := f.svc.GetVenueReservations(context.Background(), &models.GetVenueReservationsRequest{
		VenueID: 1,
		UserID:  strangerID,
	})
	assert.ErrorIs(t, err, ErrAccessDenied)

	resp, err := f.svc.GetVenueReservations(context.Background(), &models.GetVenueReservationsRequest{
		VenueID: 1,
		UserID:  managerID,
	})
	require.NoError(t, err)
	assert.Empty(t, resp.Reservations)
}

func TestGetCustomerReservations_InvalidStatus(t *testing.T) {
	f := newFixture(t)

	bad := "pending"
	_, err := f.svc.GetCustomerReservations(context.Background(), &models.GetCustomerReservationsRequest{
		CustomerID: customerID,
		Status:     &bad,
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
