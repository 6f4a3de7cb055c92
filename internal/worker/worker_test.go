package worker

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
	"github.com/tablehub/reservation-service/pkg/types"
)

type guardedCall struct {
	id       uuid.UUID
	from, to domain.ReservationStatus
	extra    map[string]interface{}
}

type fakeRepo struct {
	expiredHolds     []*domain.Reservation
	noShowCandidates []*domain.Reservation
	updateErrs       map[uuid.UUID]error
	guarded          []guardedCall
}

func (f *fakeRepo) ListExpiredHolds(_ context.Context, _ time.Time, _ int) ([]*domain.Reservation, error) {
	return f.expiredHolds, nil
}

func (f *fakeRepo) ListNoShowCandidates(_ context.Context, _ time.Time, _ int) ([]*domain.Reservation, error) {
	return f.noShowCandidates, nil
}

func (f *fakeRepo) UpdateStatusGuarded(_ context.Context, id uuid.UUID, from, to domain.ReservationStatus, extra map[string]interface{}) error {
	if err, ok := f.updateErrs[id]; ok {
		return err
	}
	f.guarded = append(f.guarded, guardedCall{id: id, from: from, to: to, extra: extra})
	return nil
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

func (passTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fixedTime struct{ now time.Time }

func (f *fixedTime) Now() time.Time { return f.now }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

// бронь на 19:00 15 сентября со штрафом 10 и порогом no-show 30 минут
func testReservation(status domain.ReservationStatus) *domain.Reservation {
	return &domain.Reservation{
		ID:              uuid.New(),
		VenueID:         1,
		CustomerID:      100,
		Date:            time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC),
		StartTime:       types.TimeString("19:00"),
		DurationMinutes: 90,
		TableType:       domain.TableTypeFour,
		PartySize:       3,
		Status:          status,
		Policy: domain.PolicySnapshot{
			GracePeriodMinutes:     20,
			PenaltyFee:             10,
			AutoCancelAfterMinutes: 30,
			HoldTTLMinutes:         10,
		},
	}
}

func TestHoldExpiryWorker_RunOnce(t *testing.T) {
	res := testReservation(domain.StatusHeld)
	repo := &fakeRepo{expiredHolds: []*domain.Reservation{res}}
	capLedger := &fakeLedger{}

	now := time.Date(2026, 9, 15, 12, 30, 0, 0, time.UTC)
	w := NewHoldExpiryWorker(repo, capLedger, passTxManager{}, time.Minute, nil, nopLogger{})
	w.timeProvider = &fixedTime{now: now}

	w.RunOnce(context.Background())

	require.Len(t, repo.guarded, 1)
	call := repo.guarded[0]
	assert.Equal(t, res.ID, call.id)
	assert.Equal(t, domain.StatusHeld, call.from)
	assert.Equal(t, domain.StatusCancelled, call.to)
	assert.Equal(t, "system", call.extra["cancelled_by"])
	assert.Equal(t, 0.0, call.extra["penalty_charged"])
	assert.Equal(t, now, call.extra["cancelled_at"])
	assert.Nil(t, call.extra["hold_expires_at"])

	// Место возвращено в ledger ровно один раз
	require.Len(t, capLedger.released, 1)
	assert.Equal(t, res.VenueID, capLedger.released[0].VenueID)
}

func TestHoldExpiryWorker_SkipsLostRace(t *testing.T) {
	winner := testReservation(domain.StatusHeld)
	loser := testReservation(domain.StatusHeld)
	repo := &fakeRepo{
		expiredHolds: []*domain.Reservation{winner, loser},
		updateErrs:   map[uuid.UUID]error{loser.ID: reservationStorage.ErrStatusConflict},
	}
	capLedger := &fakeLedger{}

	w := NewHoldExpiryWorker(repo, capLedger, passTxManager{}, time.Minute, nil, nopLogger{})
	w.timeProvider = &fixedTime{now: time.Date(2026, 9, 15, 12, 30, 0, 0, time.UTC)}

	w.RunOnce(context.Background())

	// Проигранная гонка пропускается молча, место не трогается повторно
	require.Len(t, repo.guarded, 1)
	assert.Equal(t, winner.ID, repo.guarded[0].id)
	assert.Len(t, capLedger.released, 1)
}

func TestHoldExpiryWorker_RefreezesOnCorruption(t *testing.T) {
	res := testReservation(domain.StatusHeld)
	repo := &fakeRepo{expiredHolds: []*domain.Reservation{res}}
	capLedger := &fakeLedger{releaseErr: ledger.ErrLedgerCorruption}

	w := NewHoldExpiryWorker(repo, capLedger, passTxManager{}, time.Minute, nil, nopLogger{})
	w.timeProvider = &fixedTime{now: time.Date(2026, 9, 15, 12, 30, 0, 0, time.UTC)}

	w.RunOnce(context.Background())

	require.Len(t, capLedger.frozen, 1)
	assert.Equal(t, res.VenueID, capLedger.frozen[0].VenueID)
}

func TestNoShowWorker_RunOnce(t *testing.T) {
	res := testReservation(domain.StatusConfirmed)
	repo := &fakeRepo{noShowCandidates: []*domain.Reservation{res}}
	capLedger := &fakeLedger{}

	// 19:31 - порог в 30 минут после начала пройден
	now := time.Date(2026, 9, 15, 19, 31, 0, 0, time.UTC)
	w := NewNoShowWorker(repo, capLedger, passTxManager{}, time.Minute, nil, nopLogger{})
	w.timeProvider = &fixedTime{now: now}

	w.RunOnce(context.Background())

	require.Len(t, repo.guarded, 1)
	call := repo.guarded[0]
	assert.Equal(t, domain.StatusConfirmed, call.from)
	assert.Equal(t, domain.StatusNoShow, call.to)
	assert.Equal(t, 10.0, call.extra["penalty_charged"])
	assert.Equal(t, "system", call.extra["cancelled_by"])

	require.Len(t, capLedger.released, 1)
}

func TestNoShowWorker_RechecksSnapshotThreshold(t *testing.T) {
	// У кандидата индивидуальный порог длиннее: по snapshot закрывать рано
	late := testReservation(domain.StatusConfirmed)
	patient := testReservation(domain.StatusConfirmed)
	patient.Policy.AutoCancelAfterMinutes = 120

	repo := &fakeRepo{noShowCandidates: []*domain.Reservation{late, patient}}
	capLedger := &fakeLedger{}

	w := NewNoShowWorker(repo, capLedger, passTxManager{}, time.Minute, nil, nopLogger{})
	w.timeProvider = &fixedTime{now: time.Date(2026, 9, 15, 19, 45, 0, 0, time.UTC)}

	w.RunOnce(context.Background())

	require.Len(t, repo.guarded, 1)
	assert.Equal(t, late.ID, repo.guarded[0].id)
	assert.Len(t, capLedger.released, 1)
}

func TestNoShowWorker_SkipsLostRace(t *testing.T) {
	res := testReservation(domain.StatusConfirmed)
	repo := &fakeRepo{
		noShowCandidates: []*domain.Reservation{res},
		updateErrs:       map[uuid.UUID]error{res.ID: reservationStorage.ErrStatusConflict},
	}
	capLedger := &fakeLedger{}

	w := NewNoShowWorker(repo, capLedger, passTxManager{}, time.Minute, nil, nopLogger{})
	w.timeProvider = &fixedTime{now: time.Date(2026, 9, 15, 19, 31, 0, 0, time.UTC)}

	w.RunOnce(context.Background())

	assert.Empty(t, repo.guarded)
	assert.Empty(t, capLedger.released)
}

func TestWorkers_StopOnContextCancel(t *testing.T) {
	repo := &fakeRepo{}
	capLedger := &fakeLedger{}

	holdWorker := NewHoldExpiryWorker(repo, capLedger, passTxManager{}, 10*time.Millisecond, nil, nopLogger{})
	noShowWorker := NewNoShowWorker(repo, capLedger, passTxManager{}, 10*time.Millisecond, nil, nopLogger{})

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{}, 2)
	go func() {
		holdWorker.Run(ctx)
		done <- struct{}{}
	}()
	go func() {
		noShowWorker.Run(ctx)
		done <- struct{}{}
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	for i := 0; i < 2; i++ {
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("worker did not stop after context cancellation")
		}
	}
}
