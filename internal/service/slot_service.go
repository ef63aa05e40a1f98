package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/Eursukkul/dojo-booking/internal/availability"
	"github.com/Eursukkul/dojo-booking/internal/models"
	"github.com/Eursukkul/dojo-booking/internal/repository"
	"github.com/Eursukkul/dojo-booking/internal/schedule"
)

// DayAvailability is the slot picker view for one date.
type DayAvailability struct {
	Date         string              `json:"date"`
	Closed       bool                `json:"closed"`
	ClosedReason string              `json:"closed_reason,omitempty"`
	Slots        []availability.Slot `json:"slots"`
}

type SlotService interface {
	// Snapshot returns the cached remote state, fetching it on a miss.
	Snapshot(ctx context.Context) (*models.RemoteState, error)
	// Refresh fetches the remote state and replaces the cached copy.
	Refresh(ctx context.Context) (*models.RemoteState, error)
	Invalidate(ctx context.Context)
	Day(ctx context.Context, date string) (*DayAvailability, error)
	Month(ctx context.Context, year int, month time.Month) ([]availability.Day, error)
	// CheckBookable returns a *ValidationError when label cannot be booked
	// on date.
	CheckBookable(ctx context.Context, date, label string) error
	// RecheckBookable is CheckBookable against a freshly fetched snapshot.
	// The cached snapshot is used only when the remote store cannot be read.
	RecheckBookable(ctx context.Context, date, label string) error
	Now() time.Time
}

type SlotOption func(*slotService)

// WithClock overrides the wall clock.
func WithClock(now func() time.Time) SlotOption {
	return func(s *slotService) { s.now = now }
}

type slotService struct {
	store  AvailabilityService
	cache  repository.SnapshotCache
	loc    *time.Location
	now    func() time.Time
	logger *zap.Logger

	fetchMu sync.Mutex
	last    atomic.Pointer[models.RemoteState]
}

// NewSlotService wires the availability view. cache may be nil.
func NewSlotService(store AvailabilityService, cache repository.SnapshotCache, loc *time.Location, logger *zap.Logger, opts ...SlotOption) SlotService {
	s := &slotService{
		store:  store,
		cache:  cache,
		loc:    loc,
		now:    time.Now,
		logger: logger.Named("slots"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *slotService) Now() time.Time {
	return s.now().In(s.loc)
}

func (s *slotService) Snapshot(ctx context.Context) (*models.RemoteState, error) {
	if s.cache != nil {
		state, err := s.cache.Get(ctx)
		if err != nil {
			s.logger.Warn("snapshot cache read failed", zap.Error(err))
		}
		if state != nil {
			s.last.Store(state)
			return state, nil
		}
	}

	state, err := s.Refresh(ctx)
	if err != nil {
		if last := s.last.Load(); last != nil {
			s.logger.Warn("serving last known snapshot", zap.Error(err))
			return last, nil
		}
		return nil, err
	}
	return state, nil
}

func (s *slotService) Refresh(ctx context.Context) (*models.RemoteState, error) {
	s.fetchMu.Lock()
	defer s.fetchMu.Unlock()

	state, err := s.store.FetchSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}
	s.last.Store(state)

	if s.cache != nil {
		if err := s.cache.Set(ctx, state); err != nil {
			s.logger.Warn("snapshot cache write failed", zap.Error(err))
		}
	}
	s.logger.Debug("snapshot refreshed", zap.Int("dates", len(state.Booked)), zap.Int("records", len(state.Bookings)))
	return state, nil
}

func (s *slotService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("snapshot cache invalidate failed", zap.Error(err))
	}
}

func (s *slotService) Day(ctx context.Context, date string) (*DayAvailability, error) {
	d, err := schedule.ParseDate(date)
	if err != nil {
		return nil, &ValidationError{Field: "date", Message: "date must be YYYY-MM-DD", Err: err}
	}

	day := schedule.SlotsFor(d)
	view := &DayAvailability{Date: d.String(), Closed: day.Closed(), ClosedReason: day.ClosedReason}
	if day.Closed() {
		view.Slots = []availability.Slot{}
		return view, nil
	}

	state, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	view.Slots = availability.AvailableSlots(day, availability.FromState(state), s.Now())
	return view, nil
}

func (s *slotService) Month(ctx context.Context, year int, month time.Month) ([]availability.Day, error) {
	if month < time.January || month > time.December {
		return nil, invalid("month", "month must be between 1 and 12")
	}
	state, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return availability.Month(year, month, availability.FromState(state), schedule.DateOf(s.Now())), nil
}

func (s *slotService) CheckBookable(ctx context.Context, date, label string) error {
	return s.checkBookable(ctx, date, label, s.Snapshot)
}

func (s *slotService) RecheckBookable(ctx context.Context, date, label string) error {
	return s.checkBookable(ctx, date, label, s.fresh)
}

func (s *slotService) fresh(ctx context.Context) (*models.RemoteState, error) {
	state, err := s.Refresh(ctx)
	if err != nil {
		s.logger.Warn("recheck could not refresh snapshot, using cached copy", zap.Error(err))
		return s.Snapshot(ctx)
	}
	return state, nil
}

func (s *slotService) checkBookable(ctx context.Context, date, label string, load func(context.Context) (*models.RemoteState, error)) error {
	if date == "" {
		return invalid("date", "please choose a date")
	}
	d, err := schedule.ParseDate(date)
	if err != nil {
		return &ValidationError{Field: "date", Message: "date must be YYYY-MM-DD", Err: err}
	}
	day := schedule.SlotsFor(d)
	if day.Closed() {
		return &ValidationError{Field: "date", Message: day.ClosedReason, Err: availability.ErrDayClosed}
	}
	if label == "" {
		return invalid("time", "please choose a time")
	}

	// Without a snapshot only the calendar rules apply.
	snap := availability.Snapshot{}
	if state, err := load(ctx); err != nil {
		s.logger.Warn("checking slot without snapshot", zap.Error(err))
	} else {
		snap = availability.FromState(state)
	}

	if err := availability.CheckBookable(day, label, snap, s.Now()); err != nil {
		return &ValidationError{Field: "time", Message: err.Error(), Err: err}
	}
	return nil
}
