package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestNewEvent_CapacityBoundaries(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	future := now.Add(7 * 24 * time.Hour).Format(time.RFC3339)

	tests := []struct {
		name     string
		capacity int
		wantErr  error
	}{
		{name: "mínimo", capacity: 1},
		{name: "máximo", capacity: 1000},
		{name: "cero", capacity: 0, wantErr: ErrInvalidCapacity},
		{name: "por encima", capacity: 1001, wantErr: ErrInvalidCapacity},
		{name: "negativa", capacity: -5, wantErr: ErrInvalidCapacity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := NewEvent("Launch", "HQ", future, intPtr(tt.capacity), now)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, e)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.capacity, e.Capacity)
			assert.NotEqual(t, uuid.Nil, e.ID)
		})
	}
}

func TestNewEvent_ValidationOrder(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	// La capacidad se comprueba antes que los campos obligatorios.
	_, err := NewEvent("", "", "", intPtr(0), now)
	assert.ErrorIs(t, err, ErrInvalidCapacity)

	// Los campos obligatorios antes que el formato de fecha.
	_, err = NewEvent("Launch", "   ", "not-a-date", intPtr(10), now)
	assert.ErrorIs(t, err, ErrMissingFields)

	_, err = NewEvent("Launch", "HQ", "2027-01-01T10:00:00Z", nil, now)
	assert.ErrorIs(t, err, ErrMissingFields)

	_, err = NewEvent("Launch", "HQ", "not-a-date", intPtr(10), now)
	assert.ErrorIs(t, err, ErrInvalidDateTime)

	_, err = NewEvent("Launch", "HQ", now.Format(time.RFC3339), intPtr(10), now)
	assert.ErrorIs(t, err, ErrEventNotInFuture)

	_, err = NewEvent("Launch", "HQ", now.Add(-time.Hour).Format(time.RFC3339), intPtr(10), now)
	assert.ErrorIs(t, err, ErrEventNotInFuture)
}

func TestNewEvent_TrimsAndNormalizesToUTC(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	e, err := NewEvent("  Launch ", " HQ", "2026-02-01T10:00:00+02:00", intPtr(2), now)
	require.NoError(t, err)
	assert.Equal(t, "Launch", e.Title)
	assert.Equal(t, "HQ", e.Location)
	assert.Equal(t, time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC), e.DateTime)
}

func TestParseDateTime_Layouts(t *testing.T) {
	want := time.Date(2026, 3, 4, 5, 6, 0, 0, time.UTC)

	for _, in := range []string{
		"2026-03-04T05:06:00Z",
		"2026-03-04T05:06:00",
		"2026-03-04T05:06",
		"2026-03-04 05:06:00",
		"2026-03-04 05:06",
	} {
		got, err := ParseDateTime(in)
		require.NoError(t, err, in)
		assert.True(t, want.Equal(got), in)
	}

	_, err := ParseDateTime("04/03/2026")
	assert.Error(t, err)
}

func TestParseDateTime_DateOnlyIsMidnightUTC(t *testing.T) {
	got, err := ParseDateTime("2030-01-01")
	require.NoError(t, err)
	assert.True(t, time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC).Equal(got))

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	e, err := NewEvent("Launch", "HQ", "2030-01-01", intPtr(10), now)
	require.NoError(t, err)
	assert.Equal(t, time.UTC, e.DateTime.Location())

	// Hoy a medianoche ya ha pasado
	_, err = NewEvent("Launch", "HQ", "2026-01-01", intPtr(10), now)
	assert.ErrorIs(t, err, ErrEventNotInFuture)
}

func TestCapacityUsedPercent_RoundHalfUp(t *testing.T) {
	assert.Equal(t, 0, CapacityUsedPercent(0, 10))
	assert.Equal(t, 50, CapacityUsedPercent(1, 2))
	assert.Equal(t, 33, CapacityUsedPercent(1, 3))
	assert.Equal(t, 67, CapacityUsedPercent(2, 3))
	assert.Equal(t, 1, CapacityUsedPercent(1, 200))  // 0.5 -> 1
	assert.Equal(t, 0, CapacityUsedPercent(1, 1000)) // 0.1 -> 0
	assert.Equal(t, 100, CapacityUsedPercent(7, 7))
	assert.Equal(t, 0, CapacityUsedPercent(3, 0))
}

func TestNewEventStats(t *testing.T) {
	id := uuid.New()
	s := NewEventStats(id, 8, 3)

	assert.Equal(t, id, s.EventID)
	assert.Equal(t, 3, s.TotalRegistrations)
	assert.Equal(t, 5, s.RemainingCapacity)
	assert.Equal(t, 38, s.CapacityUsedPercent) // 37.5 -> 38
}

func TestEvent_Timing(t *testing.T) {
	now := time.Now()
	e := &Event{DateTime: now.Add(time.Minute)}
	assert.True(t, e.IsUpcoming(now))
	assert.False(t, e.HasPassed(now))

	e.DateTime = now
	assert.False(t, e.IsUpcoming(now))
	assert.False(t, e.HasPassed(now))

	e.DateTime = now.Add(-time.Minute)
	assert.True(t, e.HasPassed(now))
}

func TestIsValidationError(t *testing.T) {
	assert.True(t, IsValidationError(ErrInvalidCapacity))
	assert.True(t, IsValidationError(ErrEventNotInFuture))
	assert.False(t, IsValidationError(ErrEventNotFound))
}
