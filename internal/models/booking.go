package models

import "strings"

type PaymentMethod string

const (
	PaymentInStudio PaymentMethod = "in_studio"
	PaymentCard     PaymentMethod = "card"
)

func (p PaymentMethod) Valid() bool {
	return p == PaymentInStudio || p == PaymentCard
}

// Admin blocks are stored as ordinary booking records carrying these markers.
const (
	AdminBlockName    = "ADMIN BLOCK"
	AdminBlockService = "ADMIN_BLOCK"
)

// BookingRequest is one booking record as submitted to and read back from
// the spreadsheet store. Date is YYYY-MM-DD and Time is a slot label.
type BookingRequest struct {
	Service         string        `json:"service" schema:"service"`
	Date            string        `json:"date" schema:"date"`
	Time            string        `json:"time" schema:"time"`
	Name            string        `json:"name" schema:"name"`
	Email           string        `json:"email" schema:"email"`
	Phone           string        `json:"phone" schema:"phone"`
	ParticipantName string        `json:"participantName,omitempty" schema:"participantName,omitempty"`
	ParticipantAge  string        `json:"participantAge,omitempty" schema:"participantAge,omitempty"`
	Notes           string        `json:"notes,omitempty" schema:"notes,omitempty"`
	PaymentMethod   PaymentMethod `json:"paymentMethod,omitempty" schema:"paymentMethod,omitempty"`
}

// NewAdminBlock builds the sentinel record that occupies a slot, or the
// whole date when time is empty.
func NewAdminBlock(date, time string) BookingRequest {
	return BookingRequest{
		Service: AdminBlockService,
		Date:    date,
		Time:    time,
		Name:    AdminBlockName,
	}
}

// IsAdminBlock reports whether the record is an admin block rather than a
// customer booking.
func (b BookingRequest) IsAdminBlock() bool {
	return strings.EqualFold(strings.TrimSpace(b.Name), AdminBlockName) &&
		strings.EqualFold(strings.TrimSpace(b.Service), AdminBlockService)
}

// RemoteState is what the spreadsheet store reports: occupied labels per
// date plus the raw records behind them.
type RemoteState struct {
	Booked   map[string][]string `json:"booked"`
	Bookings []BookingRequest    `json:"bookings"`
}
