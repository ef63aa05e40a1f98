package service

import (
	"errors"
	"fmt"
)

var (
	ErrSessionNotFound     = errors.New("booking session not found")
	ErrSessionLocked       = errors.New("booking is being submitted or was already submitted")
	ErrDuplicateSubmission = errors.New("booking submission already in progress or completed")
	ErrNotFinalStep        = errors.New("booking can only be submitted from the final step")
	ErrRemoteUnavailable   = errors.New("booking store is unavailable")
	ErrAlreadyBlocked      = errors.New("already blocked")
	ErrInvalidCredentials  = errors.New("invalid username or password")
	ErrUnauthorized        = errors.New("admin session is missing or expired")
	ErrPaymentsDisabled    = errors.New("card payments are not configured")
	ErrPaymentNotRequired  = errors.New("booking does not need a card payment")
	ErrInvalidWebhook      = errors.New("invalid payment webhook")
)

// ValidationError reports a rejected input field. Err, when set, is the
// underlying rule that failed.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
