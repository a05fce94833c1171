package schedule

import (
	"fmt"
	"time"
)

// WindowBound identifies which side of the booking window a start time
// violated. Drives the "too soon" vs "too far out" patient messaging.
type WindowBound string

const (
	BoundTooSoon WindowBound = "too_soon"
	BoundTooFar  WindowBound = "too_far"
)

// WindowViolation is returned when an explicit booking request falls outside
// the calendar's booking window. Slot generation never returns it; generated
// slots outside the window are silently dropped instead.
type WindowViolation struct {
	Bound WindowBound
	Limit time.Time
}

func (v *WindowViolation) Error() string {
	if v.Bound == BoundTooSoon {
		return fmt.Sprintf("appointments can be booked from %s", v.Limit.Format(time.RFC3339))
	}
	return fmt.Sprintf("appointments can be booked until %s", v.Limit.Format(time.RFC3339))
}

// BookingWindow is the allowed range of start times for patient bookings,
// derived fresh from the calendar configuration on every request.
// MinStart is inclusive; MaxStart is exclusive.
type BookingWindow struct {
	MinStart time.Time
	MaxStart time.Time
}

// NewBookingWindow derives the window from a calendar's configured lead time
// and horizon. The horizon is day-granular: maxStart is the start of the civil
// day maxDays out, so a slot is rejected once its start falls on or after that
// day boundary.
func NewBookingWindow(minHours, maxDays int, now time.Time, loc *time.Location) BookingWindow {
	local := now.In(loc)
	dayStart := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return BookingWindow{
		MinStart: now.Add(time.Duration(minHours) * time.Hour).UTC(),
		MaxStart: dayStart.AddDate(0, 0, maxDays).UTC(),
	}
}

// Allows reports whether a slot starting at start may be offered.
func (w BookingWindow) Allows(start time.Time) bool {
	return !start.Before(w.MinStart) && start.Before(w.MaxStart)
}

// Check validates an explicit booking request against the window, naming the
// violated bound on failure.
func (w BookingWindow) Check(start time.Time) error {
	if start.Before(w.MinStart) {
		return &WindowViolation{Bound: BoundTooSoon, Limit: w.MinStart}
	}
	if !start.Before(w.MaxStart) {
		return &WindowViolation{Bound: BoundTooFar, Limit: w.MaxStart}
	}
	return nil
}
