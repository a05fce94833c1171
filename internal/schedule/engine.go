package schedule

import (
	"strconv"
	"strings"
	"time"
)

// civilDateLayout keys exceptions by clinic-local calendar date.
const civilDateLayout = "2006-01-02"

// WeeklyRule is a recurring availability template: a clock-time window that
// repeats on one weekday. Times are clinic-local "HH:MM" strings.
type WeeklyRule struct {
	DayOfWeek int // 0 = Sunday … 6 = Saturday
	StartTime string
	EndTime   string
}

// ExceptionKind says how a date-specific exception rewrites a day.
type ExceptionKind string

const (
	// ExceptionClosed removes all availability for the date.
	ExceptionClosed ExceptionKind = "closed"
	// ExceptionCustom replaces the day's availability with one explicit window.
	ExceptionCustom ExceptionKind = "custom"
)

// DayException overrides the weekly rules for a single calendar date.
// Exceptions always win over rules.
type DayException struct {
	Kind      ExceptionKind
	StartTime string
	EndTime   string
}

// SlotRequest carries everything one slot computation needs. The caller
// fetches rules, exceptions, and busy intervals up front; the engine itself
// performs no reads or writes.
type SlotRequest struct {
	From       time.Time
	To         time.Time
	SlotLength time.Duration
	Rules      []WeeklyRule
	Exceptions map[string]DayException // keyed by clinic-local civil date
	Busy       []Interval              // the doctor's non-cancelled appointments
	Window     BookingWindow
}

// Engine computes bookable slots for one calendar over a date range. It is
// stateless and safe for concurrent use.
type Engine struct {
	loc *time.Location
}

// NewEngine builds an engine anchored to the clinic's civil timezone.
func NewEngine(loc *time.Location) *Engine {
	return &Engine{loc: loc}
}

// Location returns the engine's civil timezone.
func (e *Engine) Location() *time.Location {
	return e.loc
}

// Slots generates the ordered, duplicate-free sequence of bookable slots in
// [From, To). Each returned interval is one full slot of SlotLength.
func (e *Engine) Slots(req SlotRequest) []Interval {
	if req.SlotLength <= 0 || !req.From.Before(req.To) {
		return nil
	}

	rulesByDay := make(map[int][]WeeklyRule, len(req.Rules))
	for _, r := range req.Rules {
		rulesByDay[r.DayOfWeek] = append(rulesByDay[r.DayOfWeek], r)
	}

	var slots []Interval

	// Walk civil dates in the clinic timezone, including the partial days at
	// both ends of the range.
	fromLocal := req.From.In(e.loc)
	toLocal := req.To.In(e.loc)
	day := time.Date(fromLocal.Year(), fromLocal.Month(), fromLocal.Day(), 0, 0, 0, 0, e.loc)
	lastDay := time.Date(toLocal.Year(), toLocal.Month(), toLocal.Day(), 0, 0, 0, 0, e.loc)

	for ; !day.After(lastDay); day = day.AddDate(0, 0, 1) {
		windows := e.dayWindows(day, rulesByDay, req.Exceptions)
		if len(windows) == 0 {
			continue
		}

		windows = mergeIntervals(windows)

		free := windows
		for _, busy := range req.Busy {
			var remaining []Interval
			for _, w := range free {
				remaining = append(remaining, w.Subtract(busy)...)
			}
			free = remaining
		}

		for _, w := range free {
			for start := w.Start; !start.Add(req.SlotLength).After(w.End); start = start.Add(req.SlotLength) {
				end := start.Add(req.SlotLength)
				if !req.Window.Allows(start) {
					continue
				}
				// Discard slots entirely outside the requested range.
				if !end.After(req.From) || !start.Before(req.To) {
					continue
				}
				slots = append(slots, Interval{Start: start, End: end})
			}
		}
	}

	return slots
}

// dayWindows resolves one date's availability windows as UTC intervals:
// a closed exception yields none, a custom exception yields exactly its
// window, otherwise the matching weekly rules apply.
func (e *Engine) dayWindows(day time.Time, rulesByDay map[int][]WeeklyRule, exceptions map[string]DayException) []Interval {
	if exc, ok := exceptions[day.Format(civilDateLayout)]; ok {
		if exc.Kind == ExceptionClosed {
			return nil
		}
		if w, ok := e.clockWindow(day, exc.StartTime, exc.EndTime); ok {
			return []Interval{w}
		}
		return nil
	}

	var windows []Interval
	for _, r := range rulesByDay[int(day.Weekday())] {
		if w, ok := e.clockWindow(day, r.StartTime, r.EndTime); ok {
			windows = append(windows, w)
		}
	}
	return windows
}

// clockWindow anchors a pair of "HH:MM" clock times to a civil date and
// converts them to a UTC interval. Malformed or inverted pairs yield nothing.
func (e *Engine) clockWindow(day time.Time, startClock, endClock string) (Interval, bool) {
	startH, startM, ok := parseClock(startClock)
	if !ok {
		return Interval{}, false
	}
	endH, endM, ok := parseClock(endClock)
	if !ok {
		return Interval{}, false
	}

	start := time.Date(day.Year(), day.Month(), day.Day(), startH, startM, 0, 0, e.loc)
	end := time.Date(day.Year(), day.Month(), day.Day(), endH, endM, 0, 0, e.loc)

	iv, err := NewInterval(start, end)
	if err != nil {
		return Interval{}, false
	}
	return iv, true
}

func parseClock(clock string) (hour, minute int, ok bool) {
	parts := strings.SplitN(clock, ":", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, 0, false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, 0, false
	}
	return h, m, true
}
