package availability

import (
	"time"

	"github.com/Eursukkul/dojo-booking/internal/schedule"
)

type DayStatus string

const (
	DayOpen    DayStatus = "open"
	DayPast    DayStatus = "past"
	DayClosed  DayStatus = "closed"
	DayBlocked DayStatus = "blocked"
)

// Day is one cell of the month calendar.
type Day struct {
	Date   string    `json:"date"`
	Status DayStatus `json:"status"`
}

// DayStatusFor classifies a date for the calendar picker. Past wins over
// closed, which wins over a whole-day block.
func DayStatusFor(d schedule.Date, snap Snapshot, today schedule.Date) DayStatus {
	switch {
	case d.Before(today):
		return DayPast
	case schedule.SlotsFor(d).Closed():
		return DayClosed
	case snap.DayBlocked(d):
		return DayBlocked
	default:
		return DayOpen
	}
}

// Month lists every date of the month with its calendar status.
func Month(year int, month time.Month, snap Snapshot, today schedule.Date) []Day {
	n := schedule.DaysIn(year, month)
	days := make([]Day, 0, n)
	for i := 1; i <= n; i++ {
		d := schedule.NewDate(year, month, i)
		days = append(days, Day{Date: d.String(), Status: DayStatusFor(d, snap, today)})
	}
	return days
}
