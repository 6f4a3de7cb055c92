package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablehub/reservation-service/internal/domain"
	"github.com/tablehub/reservation-service/internal/infra/storage/capacity"
	"github.com/tablehub/reservation-service/pkg/types"
)

// fakeCapacityRepo хранит записи в памяти, повторяя семантику условных
// UPDATE настоящего репозитория
type fakeCapacityRepo struct {
	entries map[string]*capacity.Entry
	frozen  map[string]bool
}

func newFakeCapacityRepo() *fakeCapacityRepo {
	return &fakeCapacityRepo{
		entries: map[string]*capacity.Entry{},
		frozen:  map[string]bool{},
	}
}

func (f *fakeCapacityRepo) Ensure(_ context.Context, slot domain.Slot, total int) error {
	if _, ok := f.entries[slot.Key()]; !ok {
		f.entries[slot.Key()] = &capacity.Entry{Remaining: total, Total: total}
	}
	return nil
}

func (f *fakeCapacityRepo) Reserve(_ context.Context, slot domain.Slot, quantity int) error {
	if f.frozen[slot.Key()] {
		return capacity.ErrEntryFrozen
	}
	entry, ok := f.entries[slot.Key()]
	if !ok {
		return capacity.ErrEntryNotFound
	}
	if entry.Remaining < quantity {
		return capacity.ErrInsufficientCapacity
	}
	entry.Remaining -= quantity
	return nil
}

func (f *fakeCapacityRepo) Release(_ context.Context, slot domain.Slot, quantity int) error {
	if f.frozen[slot.Key()] {
		return capacity.ErrEntryFrozen
	}
	entry, ok := f.entries[slot.Key()]
	if !ok {
		return capacity.ErrEntryNotFound
	}
	if entry.Remaining+quantity > entry.Total {
		return capacity.ErrWouldExceedTotal
	}
	entry.Remaining += quantity
	return nil
}

func (f *fakeCapacityRepo) Freeze(_ context.Context, slot domain.Slot) error {
	f.frozen[slot.Key()] = true
	return nil
}

func (f *fakeCapacityRepo) Get(_ context.Context, slot domain.Slot) (*capacity.Entry, error) {
	entry, ok := f.entries[slot.Key()]
	if !ok {
		return nil, capacity.ErrEntryNotFound
	}
	cp := *entry
	return &cp, nil
}

type fakeVenueRepo struct {
	venue *domain.Venue
}

func (f *fakeVenueRepo) GetByID(_ context.Context, _ int64) (*domain.Venue, error) {
	return f.venue, nil
}

type countingMetrics struct {
	corruptions int
}

func (m *countingMetrics) IncLedgerCorruption() { m.corruptions++ }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func testSlot() domain.Slot {
	return domain.Slot{
		VenueID:   1,
		Date:      time.Date(2026, 9, 16, 0, 0, 0, 0, time.UTC),
		StartTime: types.TimeString("19:00"),
		TableType: domain.TableTypeFour,
	}
}

func newTestLedger(repo *fakeCapacityRepo, metrics Metrics) *Ledger {
	venue := &domain.Venue{
		ID: 1,
		Tables: []domain.TableTypeQuantity{
			{TableType: domain.TableTypeFour, Quantity: 2},
		},
	}
	return New(repo, &fakeVenueRepo{venue: venue}, metrics, nopLogger{})
}

func TestReserve_LazyEntryCreation(t *testing.T) {
	repo := newFakeCapacityRepo()
	l := newTestLedger(repo, nil)
	ctx := context.Background()
	slot := testSlot()

	require.NoError(t, l.Reserve(ctx, slot, 1))

	remaining, total, err := l.Query(ctx, slot)
	require.NoError(t, err)
	assert.Equal(t, 1, remaining)
	assert.Equal(t, 2, total)
}

func TestReserve_CapacityExceeded(t *testing.T) {
	repo := newFakeCapacityRepo()
	l := newTestLedger(repo, nil)
	ctx := context.Background()
	slot := testSlot()

	require.NoError(t, l.Reserve(ctx, slot, 1))
	require.NoError(t, l.Reserve(ctx, slot, 1))

	// Третьего столика на четверых у ресторана нет
	assert.ErrorIs(t, l.Reserve(ctx, slot, 1), ErrCapacityExceeded)
}

func TestReserve_UnknownTableType(t *testing.T) {
	repo := newFakeCapacityRepo()
	l := newTestLedger(repo, nil)

	slot := testSlot()
	slot.TableType = domain.TableTypeEight

	assert.ErrorIs(t, l.Reserve(context.Background(), slot, 1), ErrCapacityExceeded)
}

func TestRelease_ReturnsSeat(t *testing.T) {
	repo := newFakeCapacityRepo()
	l := newTestLedger(repo, nil)
	ctx := context.Background()
	slot := testSlot()

	require.NoError(t, l.Reserve(ctx, slot, 1))
	require.NoError(t, l.Release(ctx, slot, 1))

	remaining, _, err := l.Query(ctx, slot)
	require.NoError(t, err)
	assert.Equal(t, 2, remaining)
}

func TestRelease_OverReleaseFreezesKey(t *testing.T) {
	repo := newFakeCapacityRepo()
	metrics := &countingMetrics{}
	l := newTestLedger(repo, metrics)
	ctx := context.Background()
	slot := testSlot()

	require.NoError(t, l.Reserve(ctx, slot, 1))
	require.NoError(t, l.Release(ctx, slot, 1))

	// Повторный возврат превысил бы total: повреждение, ключ заморожен
	assert.ErrorIs(t, l.Release(ctx, slot, 1), ErrLedgerCorruption)
	assert.Equal(t, 1, metrics.corruptions)

	assert.ErrorIs(t, l.Reserve(ctx, slot, 1), ErrKeyFrozen)
	assert.ErrorIs(t, l.Release(ctx, slot, 1), ErrKeyFrozen)
}

func TestRelease_UnknownKeyIsCorruption(t *testing.T) {
	repo := newFakeCapacityRepo()
	metrics := &countingMetrics{}
	l := newTestLedger(repo, metrics)

	assert.ErrorIs(t, l.Release(context.Background(), testSlot(), 1), ErrLedgerCorruption)
	assert.Equal(t, 1, metrics.corruptions)
}

func TestFreeze_Explicit(t *testing.T) {
	repo := newFakeCapacityRepo()
	l := newTestLedger(repo, nil)
	ctx := context.Background()
	slot := testSlot()

	require.NoError(t, l.Reserve(ctx, slot, 1))
	require.NoError(t, l.Freeze(ctx, slot))

	assert.ErrorIs(t, l.Reserve(ctx, slot, 1), ErrKeyFrozen)
}

func TestQuery_NoEntryReturnsVenueTotal(t *testing.T) {
	repo := newFakeCapacityRepo()
	l := newTestLedger(repo, nil)

	remaining, total, err := l.Query(context.Background(), testSlot())
	require.NoError(t, err)
	assert.Equal(t, 2, remaining)
	assert.Equal(t, 2, total)
	// Чтение не создает запись
	assert.Empty(t, repo.entries)
}
