package availability

import (
	"errors"
	"time"

	"github.com/Eursukkul/dojo-booking/internal/schedule"
)

type Reason string

const (
	ReasonBooked Reason = "booked"
	ReasonPast   Reason = "past"
)

var (
	ErrDayClosed   = errors.New("studio is closed on this date")
	ErrUnknownSlot = errors.New("time is not offered on this date")
	ErrSlotBooked  = errors.New("time slot is already booked")
	ErrSlotPast    = errors.New("time slot has already passed")
)

// Slot is one offered time with its bookability.
type Slot struct {
	Time     string `json:"time"`
	Bookable bool   `json:"bookable"`
	Reason   Reason `json:"reason,omitempty"`
}

// AvailableSlots annotates every slot of day with bookability against the
// snapshot and the current instant. Booked takes precedence over past. now
// must be expressed in the studio's location. A closed day yields no slots.
func AvailableSlots(day schedule.DaySchedule, snap Snapshot, now time.Time) []Slot {
	if day.Closed() {
		return nil
	}
	today := schedule.DateOf(now)
	slots := make([]Slot, 0, len(day.Slots))
	for _, label := range day.Slots {
		slot := Slot{Time: label, Bookable: true}
		switch {
		case snap.IsBooked(day.Date, label):
			slot.Bookable, slot.Reason = false, ReasonBooked
		case isPast(day.Date, label, today, now):
			slot.Bookable, slot.Reason = false, ReasonPast
		}
		slots = append(slots, slot)
	}
	return slots
}

// CheckBookable reports why label cannot be booked on day, or nil.
func CheckBookable(day schedule.DaySchedule, label string, snap Snapshot, now time.Time) error {
	if day.Closed() {
		return ErrDayClosed
	}
	if !day.Has(label) {
		return ErrUnknownSlot
	}
	if snap.IsBooked(day.Date, label) {
		return ErrSlotBooked
	}
	if isPast(day.Date, label, schedule.DateOf(now), now) {
		return ErrSlotPast
	}
	return nil
}

func isPast(date schedule.Date, label string, today schedule.Date, now time.Time) bool {
	if date.Before(today) {
		return true
	}
	if date != today {
		return false
	}
	h, m, err := schedule.ParseLabel(label)
	if err != nil {
		return false
	}
	return date.At(h, m, now.Location()).Before(now)
}
