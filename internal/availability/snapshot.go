package availability

import (
	"slices"

	"github.com/Eursukkul/dojo-booking/internal/models"
	"github.com/Eursukkul/dojo-booking/internal/schedule"
)

// Snapshot is the set of occupied slot labels per date, already normalized.
type Snapshot map[string][]string

// NewSnapshot normalizes a raw occupied-slot map. Dates that do not parse
// and empty values are dropped.
func NewSnapshot(raw map[string][]string) Snapshot {
	snap := make(Snapshot, len(raw))
	for key, values := range raw {
		d, err := schedule.ParseDate(key)
		if err != nil {
			continue
		}
		date := d.String()
		for _, v := range values {
			label := schedule.Normalize(v)
			if label == "" || slices.Contains(snap[date], label) {
				continue
			}
			snap[date] = append(snap[date], label)
		}
	}
	return snap
}

// FromState builds a snapshot from both halves of the remote response: the
// booked map and the individual rows. A block row with no slot, or with the
// full-day sentinel, occupies its whole date. Customer rows without a slot
// occupy nothing.
func FromState(state *models.RemoteState) Snapshot {
	if state == nil {
		return Snapshot{}
	}
	raw := make(map[string][]string, len(state.Booked))
	for date, slots := range state.Booked {
		raw[date] = append(raw[date], slots...)
	}
	for _, r := range state.Bookings {
		slot := schedule.Normalize(r.Time)
		if r.IsAdminBlock() && slot == "" {
			slot = schedule.FullDay
		}
		if slot == "" {
			continue
		}
		raw[r.Date] = append(raw[r.Date], slot)
	}
	return NewSnapshot(raw)
}

// Occupied returns the occupied labels for a date.
func (s Snapshot) Occupied(d schedule.Date) []string {
	return s[d.String()]
}

// DayBlocked reports whether the whole date is blocked.
func (s Snapshot) DayBlocked(d schedule.Date) bool {
	return slices.Contains(s[d.String()], schedule.FullDay)
}

// IsBooked reports whether label is taken on d, either directly or by a
// whole-day block.
func (s Snapshot) IsBooked(d schedule.Date, label string) bool {
	occupied := s[d.String()]
	return slices.Contains(occupied, schedule.FullDay) || slices.Contains(occupied, label)
}
