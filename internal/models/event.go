package models

import "time"

// Routing keys for availability change events.
const (
	EventBookingSubmitted = "booking.submitted"
	EventBlockChanged     = "block.changed"
)

// AvailabilityChange announces that the remote store was written to.
type AvailabilityChange struct {
	Type       string    `json:"type"`
	Date       string    `json:"date"`
	Time       string    `json:"time,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
