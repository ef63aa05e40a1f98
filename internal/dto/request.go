package dto

import "github.com/Eursukkul/dojo-booking/internal/models"

type SelectServiceRequest struct {
	Service string `json:"service"`
}

type SelectScheduleRequest struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

type ContactRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	ParticipantName string `json:"participantName"`
	ParticipantAge  string `json:"participantAge"`
	Notes           string `json:"notes"`
}

type PaymentRequest struct {
	PaymentMethod models.PaymentMethod `json:"paymentMethod"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// BlockRequest blocks a single slot, or the whole date when Time is empty.
type BlockRequest struct {
	Date string `json:"date" query:"date"`
	Time string `json:"time" query:"time"`
}
