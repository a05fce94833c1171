package schedule

import (
	"errors"
	"testing"
	"time"
)

func parisLocation(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Paris")
	if err != nil {
		t.Fatalf("loading Europe/Paris: %v", err)
	}
	return loc
}

func TestNewBookingWindow(t *testing.T) {
	loc := parisLocation(t)
	// 10:00 UTC = 11:00 in Paris (CET, winter offset).
	now := time.Date(2026, time.March, 10, 10, 0, 0, 0, time.UTC)

	w := NewBookingWindow(24, 2, now, loc)

	wantMin := time.Date(2026, time.March, 11, 10, 0, 0, 0, time.UTC)
	if !w.MinStart.Equal(wantMin) {
		t.Errorf("MinStart = %v, want %v", w.MinStart, wantMin)
	}

	// Horizon is day-granular in clinic time: start of the Paris day two days
	// out, which is 23:00 UTC the previous evening.
	wantMax := time.Date(2026, time.March, 11, 23, 0, 0, 0, time.UTC)
	if !w.MaxStart.Equal(wantMax) {
		t.Errorf("MaxStart = %v, want %v", w.MaxStart, wantMax)
	}
}

func TestBookingWindowAllows(t *testing.T) {
	loc := parisLocation(t)
	now := time.Date(2026, time.March, 10, 10, 0, 0, 0, time.UTC)
	w := NewBookingWindow(24, 2, now, loc)

	if w.Allows(w.MinStart.Add(-time.Minute)) {
		t.Error("start before MinStart should be rejected")
	}
	if !w.Allows(w.MinStart) {
		t.Error("MinStart itself should be allowed (inclusive)")
	}
	if !w.Allows(w.MaxStart.Add(-time.Minute)) {
		t.Error("start just inside MaxStart should be allowed")
	}
	if w.Allows(w.MaxStart) {
		t.Error("MaxStart itself should be rejected (exclusive)")
	}
}

func TestBookingWindowCheck(t *testing.T) {
	loc := parisLocation(t)
	now := time.Date(2026, time.March, 10, 10, 0, 0, 0, time.UTC)
	w := NewBookingWindow(24, 2, now, loc)

	err := w.Check(now.Add(time.Hour))
	var violation *WindowViolation
	if !errors.As(err, &violation) || violation.Bound != BoundTooSoon {
		t.Fatalf("Check(too soon) = %v, want WindowViolation{too_soon}", err)
	}
	if !violation.Limit.Equal(w.MinStart) {
		t.Errorf("too-soon limit = %v, want %v", violation.Limit, w.MinStart)
	}

	err = w.Check(w.MaxStart.Add(time.Hour))
	if !errors.As(err, &violation) || violation.Bound != BoundTooFar {
		t.Fatalf("Check(too far) = %v, want WindowViolation{too_far}", err)
	}
	if !violation.Limit.Equal(w.MaxStart) {
		t.Errorf("too-far limit = %v, want %v", violation.Limit, w.MaxStart)
	}

	if err := w.Check(w.MinStart); err != nil {
		t.Errorf("Check(MinStart) = %v, want nil", err)
	}
}

func TestBookingWindowZeroLeadTime(t *testing.T) {
	loc := parisLocation(t)
	now := time.Date(2026, time.March, 10, 10, 0, 0, 0, time.UTC)
	w := NewBookingWindow(0, 365, now, loc)

	if !w.MinStart.Equal(now) {
		t.Errorf("MinStart with zero lead = %v, want now %v", w.MinStart, now)
	}
	if !w.Allows(now) {
		t.Error("immediate booking should be allowed with zero lead time")
	}
}
