package lifecycle

import (
	"testing"
	"time"

	"restran/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	day, ok := ParseDate(s)
	require.True(t, ok, "parse %q", s)
	return day
}

func at(t *testing.T, date, clock string) time.Time {
	t.Helper()
	day := mustDate(t, date)
	hm, err := time.Parse("15:04", clock)
	require.NoError(t, err)
	return time.Date(day.Year(), day.Month(), day.Day(), hm.Hour(), hm.Minute(), 0, 0, time.Local)
}

func TestSlotEnd(t *testing.T) {
	end, ok := SlotEnd("2024-01-10", "18:00-19:30")
	require.True(t, ok)
	assert.Equal(t, at(t, "2024-01-10", "19:30"), end)

	tests := []struct {
		name string
		date string
		slot string
	}{
		{"missing date", "", "18:00-19:30"},
		{"missing slot", "2024-01-10", ""},
		{"no end segment", "2024-01-10", "18:00"},
		{"garbage end", "2024-01-10", "18:00-late"},
		{"garbage date", "someday", "18:00-19:30"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := SlotEnd(tt.date, tt.slot)
			assert.False(t, ok)
		})
	}
}

func TestDeriveDisplayStatus(t *testing.T) {
	now := at(t, "2024-01-15", "12:00")

	tests := []struct {
		name   string
		status string
		date   string
		want   string
	}{
		{"confirmed in the past becomes completed", models.StatusConfirmed, "2024-01-14", models.StatusCompleted},
		{"confirmed today stays confirmed", models.StatusConfirmed, "2024-01-15", models.StatusConfirmed},
		{"confirmed tomorrow stays confirmed", models.StatusConfirmed, "2024-01-16", models.StatusConfirmed},
		{"pending in the past stays pending", models.StatusPending, "2024-01-01", models.StatusPending},
		{"cancelled never completes", models.StatusCancelled, "2024-01-01", models.StatusCancelled},
		{"unparsable date fails open", models.StatusConfirmed, "not-a-date", models.StatusConfirmed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := models.Booking{Status: tt.status, Date: tt.date}
			assert.Equal(t, tt.want, DeriveDisplayStatus(b, now))
		})
	}
}

func TestDeriveDisplayStatusIgnoresTimeOfDay(t *testing.T) {
	// late evening "now" must not push today's booking into COMPLETED
	now := at(t, "2024-01-15", "23:59")
	b := models.Booking{Status: models.StatusConfirmed, Date: "2024-01-15"}
	assert.Equal(t, models.StatusConfirmed, DeriveDisplayStatus(b, now))
}

func TestIsUpcoming(t *testing.T) {
	today := mustDate(t, "2024-01-15")

	assert.True(t, IsUpcoming(models.Booking{Date: "2024-01-15"}, today))
	assert.True(t, IsUpcoming(models.Booking{Date: "2024-02-01"}, today))
	assert.False(t, IsUpcoming(models.Booking{Date: "2024-01-14"}, today))
	assert.False(t, IsUpcoming(models.Booking{Date: "bogus"}, today))
}

func TestFilterByCategory(t *testing.T) {
	today := mustDate(t, "2024-01-15")
	bookings := []models.Booking{
		{ID: "b1", Status: models.StatusPending, Date: "2024-01-20"},
		{ID: "b2", Status: models.StatusConfirmed, Date: "2024-01-20"},
		{ID: "b3", Status: models.StatusConfirmed, Date: "2024-01-10"},
		{ID: "b4", Status: models.StatusCancelled, Date: "2024-01-20"},
		{ID: "b5", Status: models.StatusPending, Date: "2024-01-10"},
	}

	ids := func(bs []models.Booking) []string {
		var out []string
		for _, b := range bs {
			out = append(out, b.ID)
		}
		return out
	}

	tests := []struct {
		category string
		want     []string
	}{
		{CategoryUpcoming, []string{"b1", "b2"}},
		{CategoryPending, []string{"b1"}},
		{CategoryConfirmed, []string{"b2"}},
		{CategoryCompleted, []string{"b3"}},
		{CategoryCancelled, []string{"b4"}},
		{CategoryAll, []string{"b1", "b2", "b3", "b4", "b5"}},
	}
	for _, tt := range tests {
		t.Run(tt.category, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(FilterByCategory(bookings, tt.category, today)))
		})
	}
}

func TestFilterVisibleRetention(t *testing.T) {
	now := at(t, "2024-03-01", "12:00")
	old := now.Add(-31 * 24 * time.Hour)
	recent := now.Add(-29 * 24 * time.Hour)

	bookings := []models.Booking{
		{ID: "stale", Status: models.StatusCancelled, CancelledAt: &old},
		{ID: "fresh", Status: models.StatusCancelled, CancelledAt: &recent},
		{ID: "nostamp", Status: models.StatusCancelled},
		{ID: "active", Status: models.StatusConfirmed},
	}

	visible := FilterVisible(bookings, now)
	require.Len(t, visible, 3)
	assert.Equal(t, "fresh", visible[0].ID)
	assert.Equal(t, "nostamp", visible[1].ID)
	assert.Equal(t, "active", visible[2].ID)
}

func TestExpiredPendingTiming(t *testing.T) {
	booking := models.Booking{ID: "b1", Status: models.StatusPending, Date: "2024-01-10", Time: "18:00-19:30"}

	// one minute before slot end: nothing fires
	assert.Empty(t, ExpiredPending([]models.Booking{booking}, at(t, "2024-01-10", "19:29")))

	// at slot end exactly: fires
	actions := ExpiredPending([]models.Booking{booking}, at(t, "2024-01-10", "19:30"))
	require.Len(t, actions, 1)
	assert.Equal(t, "b1", actions[0].BookingID)
	assert.Equal(t, AutoCancelReason, actions[0].Reason)

	// after slot end: fires
	actions = ExpiredPending([]models.Booking{booking}, at(t, "2024-01-10", "19:31"))
	require.Len(t, actions, 1)
}

func TestExpiredPendingSkips(t *testing.T) {
	now := at(t, "2024-01-11", "12:00")
	bookings := []models.Booking{
		{ID: "confirmed", Status: models.StatusConfirmed, Date: "2024-01-10", Time: "18:00-19:30"},
		{ID: "cancelled", Status: models.StatusCancelled, Date: "2024-01-10", Time: "18:00-19:30"},
		{ID: "badslot", Status: models.StatusPending, Date: "2024-01-10", Time: "evening"},
		{ID: "expired", Status: models.StatusPending, Date: "2024-01-10", Time: "18:00-19:30"},
	}

	actions := ExpiredPending(bookings, now)
	require.Len(t, actions, 1)
	assert.Equal(t, "expired", actions[0].BookingID)
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(models.StatusPending, models.StatusConfirmed))
	assert.True(t, CanTransition(models.StatusPending, models.StatusCancelled))
	assert.True(t, CanTransition(models.StatusConfirmed, models.StatusCancelled))

	// cancelled is terminal
	assert.False(t, CanTransition(models.StatusCancelled, models.StatusPending))
	assert.False(t, CanTransition(models.StatusCancelled, models.StatusConfirmed))
	// no un-confirm, no self-loops, no persisting COMPLETED
	assert.False(t, CanTransition(models.StatusConfirmed, models.StatusPending))
	assert.False(t, CanTransition(models.StatusPending, models.StatusPending))
	assert.False(t, CanTransition(models.StatusConfirmed, models.StatusCompleted))
}
