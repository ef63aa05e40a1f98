package schedule

import (
	"slices"
	"time"
)

// ClosedSundayReason is shown for every Sunday.
const ClosedSundayReason = "Sorry, we are closed on Sundays."

// DaySchedule is the fixed weekly offering for one date.
type DaySchedule struct {
	Date         Date
	Slots        []string
	ClosedReason string
}

func (d DaySchedule) Closed() bool {
	return d.ClosedReason != ""
}

// Has reports whether label is one of the day's offered slots.
func (d DaySchedule) Has(label string) bool {
	return slices.Contains(d.Slots, label)
}

var weeklySlots = map[time.Weekday][]string{
	time.Monday:    {"4:30 PM", "5:00 PM", "5:30 PM", "6:00 PM"},
	time.Tuesday:   {"4:30 PM", "5:00 PM", "5:30 PM", "6:00 PM"},
	time.Wednesday: {"4:30 PM", "5:00 PM", "5:30 PM", "6:00 PM"},
	time.Thursday:  {"4:30 PM", "5:00 PM", "5:30 PM", "6:00 PM"},
	time.Friday:    {"5:30 PM", "6:00 PM", "6:30 PM"},
	time.Saturday:  {"11:00 AM", "11:30 AM", "12:00 PM"},
}

// SlotsFor returns the offered slots for a date, or a closed schedule with a
// reason when the studio does not run classes that day.
func SlotsFor(d Date) DaySchedule {
	wd := d.Weekday()
	if wd == time.Sunday {
		return DaySchedule{Date: d, ClosedReason: ClosedSundayReason}
	}
	return DaySchedule{Date: d, Slots: slices.Clone(weeklySlots[wd])}
}

// AllLabels returns every label offered on any weekday, earliest first.
func AllLabels() []string {
	var labels []string
	for _, slots := range weeklySlots {
		for _, s := range slots {
			if !slices.Contains(labels, s) {
				labels = append(labels, s)
			}
		}
	}
	slices.SortFunc(labels, func(a, b string) int {
		ah, am, _ := ParseLabel(a)
		bh, bm, _ := ParseLabel(b)
		return (ah*60 + am) - (bh*60 + bm)
	})
	return labels
}
