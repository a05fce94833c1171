package schedule

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// FeedSlot is one entry of the combined multi-calendar availability feed.
type FeedSlot struct {
	DoctorID   uuid.UUID `json:"doctorId"`
	CalendarID uuid.UUID `json:"calendarId"`
	StartAt    time.Time `json:"startAt"`
	EndAt      time.Time `json:"endAt"`
}

type feedKey struct {
	doctorID uuid.UUID
	startAt  time.Time
	endAt    time.Time
}

// MergeFeedSlots flattens per-calendar slot runs into one feed, deduplicating
// by (doctor, start, end). Overlapping specialty calendars for the same doctor
// produce identical slots; the last occurrence wins. Output is ordered by
// start time, then doctor id for a stable tiebreak.
func MergeFeedSlots(runs [][]FeedSlot) []FeedSlot {
	seen := make(map[feedKey]FeedSlot)
	order := make([]feedKey, 0)

	for _, run := range runs {
		for _, slot := range run {
			key := feedKey{doctorID: slot.DoctorID, startAt: slot.StartAt, endAt: slot.EndAt}
			if _, ok := seen[key]; !ok {
				order = append(order, key)
			}
			seen[key] = slot
		}
	}

	merged := make([]FeedSlot, 0, len(order))
	for _, key := range order {
		merged = append(merged, seen[key])
	}

	sort.Slice(merged, func(i, j int) bool {
		if !merged[i].StartAt.Equal(merged[j].StartAt) {
			return merged[i].StartAt.Before(merged[j].StartAt)
		}
		return merged[i].DoctorID.String() < merged[j].DoctorID.String()
	})

	return merged
}
