package order_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/tienda-empleados-api/internal/domain/order"
)

func storeCalendar(t *testing.T) order.Calendar {
	t.Helper()
	loc, err := time.LoadLocation("America/Costa_Rica")
	require.NoError(t, err)
	return order.Calendar{Location: loc, WeekStart: time.Thursday, Blackout: time.Wednesday}
}

func TestWindowStart_JuevesAMedianoche(t *testing.T) {
	cal := storeCalendar(t)
	loc := cal.Location

	cases := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		// 2024-05-16 es jueves
		{"jueves temprano", time.Date(2024, 5, 16, 0, 0, 1, 0, loc), time.Date(2024, 5, 16, 0, 0, 0, 0, loc)},
		{"jueves tarde", time.Date(2024, 5, 16, 23, 59, 0, 0, loc), time.Date(2024, 5, 16, 0, 0, 0, 0, loc)},
		{"lunes", time.Date(2024, 5, 20, 10, 0, 0, 0, loc), time.Date(2024, 5, 16, 0, 0, 0, 0, loc)},
		{"miércoles", time.Date(2024, 5, 22, 18, 0, 0, 0, loc), time.Date(2024, 5, 16, 0, 0, 0, 0, loc)},
		{"cruce de mes", time.Date(2024, 6, 2, 9, 0, 0, 0, loc), time.Date(2024, 5, 30, 0, 0, 0, 0, loc)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.True(t, tc.want.Equal(cal.WindowStart(tc.now)), "got %s", cal.WindowStart(tc.now))
		})
	}
}

func TestWindowStart_UsaZonaDeLaTienda(t *testing.T) {
	cal := storeCalendar(t)
	// Jueves 03:00 UTC todavía es miércoles 21:00 en Costa Rica (UTC-6).
	now := time.Date(2024, 5, 23, 3, 0, 0, 0, time.UTC)

	assert.True(t, cal.IsBlackout(now))
	want := time.Date(2024, 5, 16, 0, 0, 0, 0, cal.Location)
	assert.True(t, want.Equal(cal.WindowStart(now)))
}

func TestIsBlackout(t *testing.T) {
	cal := storeCalendar(t)
	loc := cal.Location

	assert.True(t, cal.IsBlackout(time.Date(2024, 5, 22, 8, 0, 0, 0, loc)))
	assert.False(t, cal.IsBlackout(time.Date(2024, 5, 23, 8, 0, 0, 0, loc)))
	assert.False(t, cal.IsBlackout(time.Date(2024, 5, 21, 23, 59, 59, 0, loc)))
}

func TestWindow(t *testing.T) {
	cal := order.Calendar{WeekStart: time.Monday, Blackout: time.Sunday}
	now := time.Date(2024, 5, 22, 12, 0, 0, 0, time.UTC)

	start, end := cal.Window(now)
	assert.Equal(t, time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, now, end)
}
