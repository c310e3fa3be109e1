// Package lifecycle classifies, filters and time-evolves bookings. Everything
// here is a pure function over an in-memory snapshot; the only write path is
// the Sweeper in sweeper.go.
package lifecycle

import (
	"strings"
	"time"

	"restran/models"
)

// AutoCancelReason is the fixed system reason stamped by the expiry sweep.
const AutoCancelReason = "Auto-cancelled due to no confirmation"

// OwnerDeleteReason is stamped on live bookings when their restaurant is
// removed by its owner.
const OwnerDeleteReason = "Restaurant deleted by owner"

// CancelledRetention is how long a cancelled booking stays visible.
const CancelledRetention = 30 * 24 * time.Hour

// Booking list categories.
const (
	CategoryUpcoming  = "UPCOMING"
	CategoryPending   = "PENDING"
	CategoryConfirmed = "CONFIRMED"
	CategoryCompleted = "COMPLETED"
	CategoryCancelled = "CANCELLED"
	CategoryAll       = "ALL"
)

// ParseDate parses a "YYYY-MM-DD" calendar date in local time.
func ParseDate(s string) (time.Time, bool) {
	t, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// dateOnly strips the time-of-day so comparisons happen at calendar-date
// granularity, avoiding timezone-boundary surprises from raw Before/After.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SlotEnd returns the instant the reservation window closes: the slot's end
// time on the booking date. ok is false when either input is missing or the
// "HH:MM-HH:MM" descriptor has no parsable end segment; such bookings are
// simply never auto-expired.
func SlotEnd(date, slot string) (time.Time, bool) {
	if date == "" || slot == "" {
		return time.Time{}, false
	}
	day, ok := ParseDate(date)
	if !ok {
		return time.Time{}, false
	}

	parts := strings.SplitN(slot, "-", 2)
	if len(parts) != 2 {
		return time.Time{}, false
	}
	end, err := time.Parse("15:04", strings.TrimSpace(parts[1]))
	if err != nil {
		return time.Time{}, false
	}

	return time.Date(day.Year(), day.Month(), day.Day(), end.Hour(), end.Minute(), 0, 0, day.Location()), true
}

// DeriveDisplayStatus returns the status to present for a booking: the
// persisted status, overlaid with COMPLETED when a confirmed booking's date
// has fully passed. COMPLETED is never written back.
func DeriveDisplayStatus(b models.Booking, now time.Time) string {
	if b.Status != models.StatusConfirmed {
		return b.Status
	}
	day, ok := ParseDate(b.Date)
	if !ok {
		// unparsable date: fail open, keep CONFIRMED
		return b.Status
	}
	if dateOnly(day).Before(dateOnly(now)) {
		return models.StatusCompleted
	}
	return b.Status
}

// IsUpcoming reports whether the booking's calendar date is today or later.
func IsUpcoming(b models.Booking, today time.Time) bool {
	day, ok := ParseDate(b.Date)
	if !ok {
		return false
	}
	return !dateOnly(day).Before(dateOnly(today))
}

// FilterByCategory keeps the bookings matching a list-view category. Status
// checks use the persisted status; COMPLETED is the derived past+confirmed
// combination.
func FilterByCategory(bookings []models.Booking, category string, today time.Time) []models.Booking {
	if category == "" || category == CategoryAll {
		return bookings
	}

	var out []models.Booking
	for _, b := range bookings {
		var keep bool
		switch category {
		case CategoryUpcoming:
			keep = IsUpcoming(b, today) && (b.Status == models.StatusPending || b.Status == models.StatusConfirmed)
		case CategoryPending:
			keep = IsUpcoming(b, today) && b.Status == models.StatusPending
		case CategoryConfirmed:
			keep = IsUpcoming(b, today) && b.Status == models.StatusConfirmed
		case CategoryCompleted:
			keep = DeriveDisplayStatus(b, today) == models.StatusCompleted
		case CategoryCancelled:
			keep = b.Status == models.StatusCancelled
		}
		if keep {
			out = append(out, b)
		}
	}
	return out
}

// FilterVisible hides cancelled bookings whose cancellation is older than the
// retention window. This is a display rule; the records stay in the store.
func FilterVisible(bookings []models.Booking, now time.Time) []models.Booking {
	var out []models.Booking
	for _, b := range bookings {
		if b.Status == models.StatusCancelled && b.CancelledAt != nil &&
			now.Sub(*b.CancelledAt) > CancelledRetention {
			continue
		}
		out = append(out, b)
	}
	return out
}

// CancelAction is one auto-cancellation to apply back to the store.
type CancelAction struct {
	BookingID string
	Reason    string
}

// ExpiredPending returns the cancellation actions for every PENDING booking
// whose reservation window has fully elapsed. Confirmed bookings are frozen
// against expiry; bookings with unusable date/time never expire.
func ExpiredPending(bookings []models.Booking, now time.Time) []CancelAction {
	var actions []CancelAction
	for _, b := range bookings {
		if b.Status != models.StatusPending {
			continue
		}
		end, ok := SlotEnd(b.Date, b.Time)
		if !ok {
			continue
		}
		if !now.Before(end) {
			actions = append(actions, CancelAction{BookingID: b.ID, Reason: AutoCancelReason})
		}
	}
	return actions
}

// CanTransition reports whether a persisted status change is legal.
// CANCELLED is terminal; PENDING may be confirmed or cancelled; CONFIRMED may
// only be cancelled.
func CanTransition(from, to string) bool {
	switch from {
	case models.StatusPending:
		return to == models.StatusConfirmed || to == models.StatusCancelled
	case models.StatusConfirmed:
		return to == models.StatusCancelled
	default:
		return false
	}
}
