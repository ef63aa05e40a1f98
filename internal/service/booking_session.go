package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Eursukkul/dojo-booking/internal/models"
)

// Status is the visible submission status of a booking session.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusSending Status = "sending"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Step is a position in the booking wizard.
type Step int

const (
	StepService Step = iota + 1
	StepSchedule
	StepContact
	StepPayment
)

const FinalStep = StepPayment

const submitFailedMessage = "Something went wrong sending your booking. Please try again or call the studio."

// SessionView is a point-in-time copy of a booking session.
type SessionView struct {
	ID        string                `json:"id"`
	Step      Step                  `json:"step"`
	Status    Status                `json:"status"`
	Form      models.BookingRequest `json:"form"`
	Countdown int                   `json:"countdown,omitempty"`
	Error     string                `json:"error,omitempty"`
	Attempts  int                   `json:"attempts"`
}

// ContactInput is the contact step of the wizard.
type ContactInput struct {
	Name            string `json:"name" validate:"required,max=120"`
	Email           string `json:"email" validate:"required,email,max=254"`
	Phone           string `json:"phone" validate:"required,min=7,max=40"`
	ParticipantName string `json:"participantName" validate:"max=120"`
	ParticipantAge  string `json:"participantAge" validate:"omitempty,numeric,max=3"`
	Notes           string `json:"notes" validate:"max=2000"`
}

// session is one in-progress booking. mu guards every field except
// dispatching, which is the single-dispatch guard and is only ever taken
// with CompareAndSwap.
type session struct {
	id string

	mu            sync.Mutex
	form          models.BookingRequest
	step          Step
	status        Status
	countdown     int
	lastErr       string
	attempts      int
	touched       time.Time
	heldUntil     time.Time
	gen           uint64
	stopCountdown context.CancelFunc
	closed        bool

	dispatching atomic.Bool
}

func newSession(id string, now time.Time) *session {
	return &session{
		id:      id,
		form:    defaultForm(),
		step:    StepService,
		status:  StatusIdle,
		touched: now,
	}
}

func defaultForm() models.BookingRequest {
	return models.BookingRequest{Service: models.DefaultService}
}

func (s *session) viewLocked() *SessionView {
	return &SessionView{
		ID:        s.id,
		Step:      s.step,
		Status:    s.status,
		Form:      s.form,
		Countdown: s.countdown,
		Error:     s.lastErr,
		Attempts:  s.attempts,
	}
}

func (s *session) view() *SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

// editableLocked rejects edits once a dispatch has started.
func (s *session) editableLocked() error {
	if s.closed {
		return ErrSessionNotFound
	}
	if s.dispatching.Load() || s.status == StatusSending || s.status == StatusSuccess {
		return ErrSessionLocked
	}
	if s.status == StatusError {
		s.status = StatusIdle
		s.lastErr = ""
	}
	return nil
}

// resetLocked returns the session to a fresh first step and releases the
// dispatch guard. Any pending countdown is cancelled.
func (s *session) resetLocked() {
	if s.stopCountdown != nil {
		s.stopCountdown()
		s.stopCountdown = nil
	}
	s.gen++
	s.form = defaultForm()
	s.step = StepService
	s.status = StatusIdle
	s.countdown = 0
	s.lastErr = ""
	s.dispatching.Store(false)
}

func (s *session) closeLocked() {
	if s.stopCountdown != nil {
		s.stopCountdown()
		s.stopCountdown = nil
	}
	s.gen++
	s.closed = true
}

// startCountdownLocked shows the success state for ticks intervals of every,
// then resets the session. Close or reset cancels it.
func (s *session) startCountdownLocked(ticks int, every time.Duration) {
	ctx, cancel := context.WithCancel(context.Background())
	s.stopCountdown = cancel
	s.countdown = ticks
	gen := s.gen

	go func() {
		ticker := time.NewTicker(every)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if s.tick(gen) {
					return
				}
			}
		}
	}()
}

// tick advances the countdown started at generation gen. It reports true
// when the countdown is over or no longer current.
func (s *session) tick(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen || s.status != StatusSuccess {
		return true
	}
	s.countdown--
	if s.countdown > 0 {
		return false
	}
	s.resetLocked()
	return true
}
