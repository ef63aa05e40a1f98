package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Eursukkul/dojo-booking/internal/models"
	"github.com/Eursukkul/dojo-booking/internal/repository"
	"github.com/Eursukkul/dojo-booking/internal/schedule"
)

// BookingService drives booking wizard sessions through to a single
// dispatch against the remote store.
type BookingService interface {
	Start(ctx context.Context) (*SessionView, error)
	Get(ctx context.Context, id string) (*SessionView, error)
	SelectService(ctx context.Context, id, service string) (*SessionView, error)
	SelectSchedule(ctx context.Context, id, date, slot string) (*SessionView, error)
	UpdateContact(ctx context.Context, id string, in ContactInput) (*SessionView, error)
	SelectPayment(ctx context.Context, id string, method models.PaymentMethod) (*SessionView, error)
	Next(ctx context.Context, id string) (*SessionView, error)
	Back(ctx context.Context, id string) (*SessionView, error)
	// Submit dispatches the session at most once per attempt, whatever
	// triggers it and however often. A concurrent or repeated call gets
	// ErrDuplicateSubmission.
	Submit(ctx context.Context, id string, trigger models.SubmissionTrigger) (*SessionView, error)
	Close(ctx context.Context, id string) error
	// HoldForPayment keeps the session from being swept before until, so a
	// payment confirmation arriving after a long checkout still finds it.
	HoldForPayment(ctx context.Context, id string, until time.Time) error
	// Sweep closes sessions idle for longer than the session TTL and not
	// held for a payment.
	Sweep(now time.Time) int
	// Run sweeps periodically until ctx is done.
	Run(ctx context.Context)
}

type BookingOptions struct {
	CountdownTicks int
	Tick           time.Duration
	SessionTTL     time.Duration
	SweepInterval  time.Duration
	RemoteTimeout  time.Duration
}

func (o BookingOptions) withDefaults() BookingOptions {
	if o.CountdownTicks <= 0 {
		o.CountdownTicks = 3
	}
	if o.Tick <= 0 {
		o.Tick = time.Second
	}
	if o.SessionTTL <= 0 {
		o.SessionTTL = 30 * time.Minute
	}
	if o.SweepInterval <= 0 {
		o.SweepInterval = o.SessionTTL / 2
	}
	if o.RemoteTimeout <= 0 {
		o.RemoteTimeout = 15 * time.Second
	}
	return o
}

type bookingService struct {
	store       AvailabilityService
	slots       SlotService
	submissions repository.SubmissionRepository
	notifier    ChangeNotifier
	opts        BookingOptions
	validate    *validator.Validate
	logger      *zap.Logger

	mu       sync.RWMutex
	sessions map[string]*session
}

// NewBookingService wires the booking coordinator. submissions and notifier
// may be nil.
func NewBookingService(
	store AvailabilityService,
	slots SlotService,
	submissions repository.SubmissionRepository,
	notifier ChangeNotifier,
	opts BookingOptions,
	logger *zap.Logger,
) BookingService {
	return &bookingService{
		store:       store,
		slots:       slots,
		submissions: submissions,
		notifier:    notifier,
		opts:        opts.withDefaults(),
		validate:    newValidator(),
		logger:      logger.Named("booking"),
		sessions:    make(map[string]*session),
	}
}

func (b *bookingService) Start(ctx context.Context) (*SessionView, error) {
	sess := newSession(uuid.NewString(), time.Now())

	b.mu.Lock()
	b.sessions[sess.id] = sess
	b.mu.Unlock()

	b.logger.Debug("session started", zap.String("session", sess.id))
	return sess.view(), nil
}

func (b *bookingService) lookup(id string) (*session, error) {
	b.mu.RLock()
	sess, ok := b.sessions[id]
	b.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

func (b *bookingService) Get(ctx context.Context, id string) (*SessionView, error) {
	sess, err := b.lookup(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.closed {
		return nil, ErrSessionNotFound
	}
	sess.touched = time.Now()
	return sess.viewLocked(), nil
}

// edit applies fn to an editable session and returns the new view.
func (b *bookingService) edit(id string, fn func(s *session) error) (*SessionView, error) {
	sess, err := b.lookup(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if err := sess.editableLocked(); err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, err
		}
		return sess.viewLocked(), err
	}
	sess.touched = time.Now()
	if err := fn(sess); err != nil {
		return sess.viewLocked(), err
	}
	return sess.viewLocked(), nil
}

func (b *bookingService) SelectService(ctx context.Context, id, service string) (*SessionView, error) {
	return b.edit(id, func(s *session) error {
		service = strings.TrimSpace(service)
		if _, ok := models.LookupService(service); !ok {
			return invalid("service", "please choose a class from the list")
		}
		s.form.Service = service
		return nil
	})
}

// SelectSchedule stores the chosen date and time. Moving to a date that does
// not offer the current time clears it.
func (b *bookingService) SelectSchedule(ctx context.Context, id, date, slot string) (*SessionView, error) {
	return b.edit(id, func(s *session) error {
		if date = strings.TrimSpace(date); date != "" {
			d, err := schedule.ParseDate(date)
			if err != nil {
				return &ValidationError{Field: "date", Message: "date must be YYYY-MM-DD", Err: err}
			}
			if d.String() != s.form.Date {
				s.form.Date = d.String()
				if !schedule.SlotsFor(d).Has(s.form.Time) {
					s.form.Time = ""
				}
			}
		}
		if slot = schedule.Normalize(slot); slot != "" {
			s.form.Time = slot
		}
		return nil
	})
}

func (b *bookingService) UpdateContact(ctx context.Context, id string, in ContactInput) (*SessionView, error) {
	return b.edit(id, func(s *session) error {
		s.form.Name = strings.TrimSpace(in.Name)
		s.form.Email = strings.TrimSpace(in.Email)
		s.form.Phone = strings.TrimSpace(in.Phone)
		s.form.ParticipantName = strings.TrimSpace(in.ParticipantName)
		s.form.ParticipantAge = strings.TrimSpace(in.ParticipantAge)
		s.form.Notes = strings.TrimSpace(in.Notes)
		return nil
	})
}

func (b *bookingService) SelectPayment(ctx context.Context, id string, method models.PaymentMethod) (*SessionView, error) {
	return b.edit(id, func(s *session) error {
		if !method.Valid() {
			return invalid("paymentMethod", "please choose how you will pay")
		}
		s.form.PaymentMethod = method
		return nil
	})
}

// Next advances one step when the current step's fields are valid.
func (b *bookingService) Next(ctx context.Context, id string) (*SessionView, error) {
	return b.edit(id, func(s *session) error {
		if s.step == FinalStep {
			return invalid("step", "already at the final step")
		}
		if err := b.validateStep(ctx, s.step, s.form); err != nil {
			return err
		}
		s.step++
		return nil
	})
}

func (b *bookingService) Back(ctx context.Context, id string) (*SessionView, error) {
	return b.edit(id, func(s *session) error {
		if s.step > StepService {
			s.step--
		}
		return nil
	})
}

func (b *bookingService) validateStep(ctx context.Context, step Step, form models.BookingRequest) error {
	switch step {
	case StepService:
		if _, ok := models.LookupService(form.Service); !ok {
			return invalid("service", "please choose a class from the list")
		}
	case StepSchedule:
		return b.slots.CheckBookable(ctx, form.Date, form.Time)
	case StepContact:
		in := ContactInput{
			Name:            form.Name,
			Email:           form.Email,
			Phone:           form.Phone,
			ParticipantName: form.ParticipantName,
			ParticipantAge:  form.ParticipantAge,
			Notes:           form.Notes,
		}
		if err := b.validate.Struct(in); err != nil {
			return validationError(err)
		}
		if entry, _ := models.LookupService(form.Service); entry.RequiresParticipant && form.ParticipantName == "" {
			return invalid("participantName", "please tell us who will attend the class")
		}
	case StepPayment:
		if !form.PaymentMethod.Valid() {
			return invalid("paymentMethod", "please choose how you will pay")
		}
	}
	return nil
}

func (b *bookingService) Submit(ctx context.Context, id string, trigger models.SubmissionTrigger) (*SessionView, error) {
	sess, err := b.lookup(id)
	if err != nil {
		return nil, err
	}
	if !sess.dispatching.CompareAndSwap(false, true) {
		return sess.view(), ErrDuplicateSubmission
	}

	sess.mu.Lock()
	if sess.closed {
		sess.dispatching.Store(false)
		sess.mu.Unlock()
		return nil, ErrSessionNotFound
	}
	if sess.step != FinalStep {
		sess.dispatching.Store(false)
		v := sess.viewLocked()
		sess.mu.Unlock()
		return v, ErrNotFinalStep
	}
	form := sess.form
	sess.touched = time.Now()
	sess.mu.Unlock()

	// The slot may have been taken since it was picked; every step is
	// checked again, the schedule against a freshly fetched snapshot.
	for step := StepService; step <= FinalStep; step++ {
		var err error
		if step == StepSchedule {
			err = b.slots.RecheckBookable(ctx, form.Date, form.Time)
		} else {
			err = b.validateStep(ctx, step, form)
		}
		if err != nil {
			sess.dispatching.Store(false)
			return sess.view(), err
		}
	}

	sess.mu.Lock()
	sess.status = StatusSending
	sess.lastErr = ""
	sess.attempts++
	attempt := sess.attempts
	sess.mu.Unlock()

	log := b.logger.With(
		zap.String("session", id),
		zap.Int("attempt", attempt),
		zap.String("trigger", string(trigger)),
		zap.String("date", form.Date),
		zap.String("time", form.Time),
	)
	entry := b.journalStart(ctx, id, attempt, trigger, form)

	// The dispatch outlives the caller so a dropped request cannot leave the
	// session stuck in sending.
	dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), b.opts.RemoteTimeout)
	err = b.store.Submit(dctx, &form)
	cancel()

	sess.mu.Lock()
	if err != nil {
		sess.status = StatusError
		sess.lastErr = submitFailedMessage
		sess.dispatching.Store(false)
		v := sess.viewLocked()
		sess.mu.Unlock()

		log.Error("booking submission failed", zap.Error(err))
		b.journalFinish(ctx, entry, models.SubmissionError, err.Error())
		return v, fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}
	sess.status = StatusSuccess
	if !sess.closed {
		sess.startCountdownLocked(b.opts.CountdownTicks, b.opts.Tick)
	}
	v := sess.viewLocked()
	sess.mu.Unlock()

	log.Info("booking submitted")
	b.journalFinish(ctx, entry, models.SubmissionSuccess, "")
	if b.notifier != nil {
		b.notifier.Notify(ctx, models.AvailabilityChange{
			Type: models.EventBookingSubmitted,
			Date: form.Date,
			Time: form.Time,
		})
	}
	return v, nil
}

func (b *bookingService) journalStart(ctx context.Context, id string, attempt int, trigger models.SubmissionTrigger, form models.BookingRequest) *models.Submission {
	if b.submissions == nil {
		return nil
	}
	entry := &models.Submission{
		SessionID: id,
		Attempt:   attempt,
		Trigger:   trigger,
		Service:   form.Service,
		Date:      form.Date,
		Time:      form.Time,
		Name:      form.Name,
		Email:     form.Email,
		Status:    models.SubmissionSending,
	}
	if err := b.submissions.Create(context.WithoutCancel(ctx), entry); err != nil {
		b.logger.Warn("journal submission failed", zap.String("session", id), zap.Error(err))
		return nil
	}
	return entry
}

func (b *bookingService) journalFinish(ctx context.Context, entry *models.Submission, status models.SubmissionStatus, errMsg string) {
	if entry == nil {
		return
	}
	if err := b.submissions.UpdateStatus(context.WithoutCancel(ctx), entry.ID, status, errMsg); err != nil {
		b.logger.Warn("journal status update failed", zap.Uint("submission", entry.ID), zap.Error(err))
	}
}

func (b *bookingService) Close(ctx context.Context, id string) error {
	b.mu.Lock()
	sess, ok := b.sessions[id]
	delete(b.sessions, id)
	b.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}

	sess.mu.Lock()
	sess.closeLocked()
	sess.mu.Unlock()
	return nil
}

func (b *bookingService) HoldForPayment(ctx context.Context, id string, until time.Time) error {
	sess, err := b.lookup(id)
	if err != nil {
		return err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.closed {
		return ErrSessionNotFound
	}
	if until.After(sess.heldUntil) {
		sess.heldUntil = until
	}
	return nil
}

func (b *bookingService) Sweep(now time.Time) int {
	b.mu.RLock()
	candidates := make([]*session, 0, len(b.sessions))
	for _, sess := range b.sessions {
		candidates = append(candidates, sess)
	}
	b.mu.RUnlock()

	swept := 0
	for _, sess := range candidates {
		sess.mu.Lock()
		// A session mid-dispatch is kept until the dispatch settles.
		busy := sess.status == StatusSending || (sess.dispatching.Load() && sess.status != StatusSuccess)
		expired := now.Sub(sess.touched) > b.opts.SessionTTL && now.After(sess.heldUntil)
		if busy || !expired {
			sess.mu.Unlock()
			continue
		}
		sess.closeLocked()
		sess.mu.Unlock()

		b.mu.Lock()
		delete(b.sessions, sess.id)
		b.mu.Unlock()
		swept++
	}
	if swept > 0 {
		b.logger.Info("expired booking sessions swept", zap.Int("count", swept))
	}
	return swept
}

func (b *bookingService) Run(ctx context.Context) {
	ticker := time.NewTicker(b.opts.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			b.Sweep(now)
		}
	}
}
