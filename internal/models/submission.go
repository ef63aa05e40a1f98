package models

import "time"

type SubmissionStatus string

const (
	SubmissionSending SubmissionStatus = "sending"
	SubmissionSuccess SubmissionStatus = "success"
	SubmissionError   SubmissionStatus = "error"
)

// SubmissionTrigger names what caused a dispatch.
type SubmissionTrigger string

const (
	TriggerManual  SubmissionTrigger = "manual"
	TriggerPayment SubmissionTrigger = "payment"
)

// Submission journals one dispatch attempt of a booking session.
type Submission struct {
	ID        uint              `gorm:"primaryKey" json:"id"`
	SessionID string            `gorm:"type:varchar(64);not null;index" json:"session_id"`
	Attempt   int               `gorm:"not null" json:"attempt"`
	Trigger   SubmissionTrigger `gorm:"type:varchar(20);not null" json:"trigger"`
	Service   string            `gorm:"not null" json:"service"`
	Date      string            `gorm:"type:varchar(10);not null;index" json:"date"`
	Time      string            `gorm:"type:varchar(16)" json:"time"`
	Name      string            `json:"name"`
	Email     string            `json:"email"`
	Status    SubmissionStatus  `gorm:"type:varchar(20);not null;default:'sending'" json:"status"`
	Error     string            `json:"error,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}
