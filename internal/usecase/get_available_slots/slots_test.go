package get_available_slots

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablehub/reservation-service/pkg/types"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestGenerateTimeSlots(t *testing.T) {
	tomorrow := date(2026, 9, 16)
	now := time.Date(2026, 9, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		open     types.TimeString
		close    types.TimeString
		interval int
		want     []types.TimeString
	}{
		{
			name: "standard evening grid", open: "18:00", close: "22:00", interval: 60,
			want: []types.TimeString{"18:00", "19:00", "20:00", "21:00"},
		},
		{
			name: "last slot must fit before close", open: "18:00", close: "20:00", interval: 45,
			want: []types.TimeString{"18:00", "18:45"},
		},
		{
			name: "interval equals working window", open: "18:00", close: "19:00", interval: 60,
			want: []types.TimeString{"18:00"},
		},
		{
			name: "interval longer than working window", open: "18:00", close: "19:00", interval: 90,
			want: []types.TimeString{},
		},
		{
			name: "thirty minute grid", open: "10:00", close: "11:30", interval: 30,
			want: []types.TimeString{"10:00", "10:30", "11:00"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := generateTimeSlots(tt.open, tt.close, tt.interval, tomorrow, now)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGenerateTimeSlots_PastDate(t *testing.T) {
	now := time.Date(2026, 9, 15, 12, 0, 0, 0, time.UTC)

	got, err := generateTimeSlots("10:00", "22:00", 30, date(2026, 9, 14), now)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestGenerateTimeSlots_TodayFiltersStartedSlots(t *testing.T) {
	// Сейчас 19:10 - слоты 18:00 и 19:00 уже начались и выпадают из выдачи
	now := time.Date(2026, 9, 15, 19, 10, 0, 0, time.UTC)

	got, err := generateTimeSlots("18:00", "22:00", 60, date(2026, 9, 15), now)
	require.NoError(t, err)
	assert.Equal(t, []types.TimeString{"20:00", "21:00"}, got)
}

func TestGenerateTimeSlots_TodayKeepsSlotStartingNow(t *testing.T) {
	now := time.Date(2026, 9, 15, 19, 0, 0, 0, time.UTC)

	got, err := generateTimeSlots("18:00", "21:00", 60, date(2026, 9, 15), now)
	require.NoError(t, err)
	assert.Equal(t, []types.TimeString{"19:00", "20:00"}, got)
}

func TestIsDateInPast(t *testing.T) {
	now := time.Date(2026, 9, 15, 23, 30, 0, 0, time.UTC)

	assert.True(t, isDateInPast(date(2026, 9, 14), now))
	assert.False(t, isDateInPast(date(2026, 9, 15), now))
	assert.False(t, isDateInPast(date(2026, 9, 16), now))
}
