package schedule

import (
	"errors"
	"time"
)

var ErrInvalidInterval = errors.New("interval start must be before end")

// Interval is a half-open [Start, End) span of UTC instants. Rule clock
// times are converted to UTC before any interval arithmetic runs.
type Interval struct {
	Start time.Time
	End   time.Time
}

// NewInterval builds an interval and rejects degenerate or inverted spans.
func NewInterval(start, end time.Time) (Interval, error) {
	if !start.Before(end) {
		return Interval{}, ErrInvalidInterval
	}
	return Interval{Start: start.UTC(), End: end.UTC()}, nil
}

// Duration returns the span length.
func (iv Interval) Duration() time.Duration {
	return iv.End.Sub(iv.Start)
}

// Overlaps reports whether two half-open intervals share any instant.
// Touching intervals ([9,10) and [10,11)) do not overlap.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start.Before(other.End) && other.Start.Before(iv.End)
}

// Contains reports whether the instant falls inside the interval.
func (iv Interval) Contains(at time.Time) bool {
	return !at.Before(iv.Start) && at.Before(iv.End)
}

// Subtract removes the overlapping portion of other from iv, yielding zero,
// one, or two sub-intervals.
func (iv Interval) Subtract(other Interval) []Interval {
	if !iv.Overlaps(other) {
		return []Interval{iv}
	}

	var out []Interval
	if iv.Start.Before(other.Start) {
		out = append(out, Interval{Start: iv.Start, End: other.Start})
	}
	if other.End.Before(iv.End) {
		out = append(out, Interval{Start: other.End, End: iv.End})
	}
	return out
}

// mergeIntervals unions a set of intervals: overlapping or touching spans
// collapse into one, and the result is sorted by start. Windows must be
// merged before slicing so overlapping rules cannot produce duplicate slots.
func mergeIntervals(ivs []Interval) []Interval {
	if len(ivs) <= 1 {
		return ivs
	}

	sorted := make([]Interval, len(ivs))
	copy(sorted, ivs)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j].Start.Before(sorted[j-1].Start); j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}

	merged := []Interval{sorted[0]}
	for _, iv := range sorted[1:] {
		last := &merged[len(merged)-1]
		if !iv.Start.After(last.End) {
			if iv.End.After(last.End) {
				last.End = iv.End
			}
			continue
		}
		merged = append(merged, iv)
	}
	return merged
}
