package service

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Eursukkul/dojo-booking/internal/models"
	"github.com/Eursukkul/dojo-booking/internal/repository"
	"github.com/Eursukkul/dojo-booking/internal/schedule"
)

// BookingsOverview splits the remote records into customer bookings and
// admin blocks.
type BookingsOverview struct {
	Bookings     []models.BookingRequest `json:"bookings"`
	BlockedDates []string                `json:"blocked_dates"`
	BlockedSlots map[string][]string     `json:"blocked_slots"`
}

func (o *BookingsOverview) dateBlocked(date string) bool {
	return slices.Contains(o.BlockedDates, date)
}

func (o *BookingsOverview) slotBlocked(date, slot string) bool {
	return slices.Contains(o.BlockedSlots[date], slot)
}

// Reconcile classifies records. A block with an empty or full-day time
// blocks its whole date. Customer bookings are ordered by date then time.
func Reconcile(records []models.BookingRequest) *BookingsOverview {
	o := &BookingsOverview{
		Bookings:     []models.BookingRequest{},
		BlockedDates: []string{},
		BlockedSlots: map[string][]string{},
	}
	for _, r := range records {
		if !r.IsAdminBlock() {
			o.Bookings = append(o.Bookings, r)
			continue
		}
		slot := schedule.Normalize(r.Time)
		if slot == "" || slot == schedule.FullDay {
			if !o.dateBlocked(r.Date) {
				o.BlockedDates = append(o.BlockedDates, r.Date)
			}
			continue
		}
		if !o.slotBlocked(r.Date, slot) {
			o.BlockedSlots[r.Date] = append(o.BlockedSlots[r.Date], slot)
		}
	}

	slices.Sort(o.BlockedDates)
	for date := range o.BlockedSlots {
		slices.SortFunc(o.BlockedSlots[date], compareLabels)
	}
	slices.SortStableFunc(o.Bookings, func(a, b models.BookingRequest) int {
		if c := strings.Compare(a.Date, b.Date); c != 0 {
			return c
		}
		return compareLabels(a.Time, b.Time)
	})
	return o
}

// compareLabels orders slot labels by clock time; unparseable labels sort last.
func compareLabels(a, b string) int {
	am, aok := labelMinutes(a)
	bm, bok := labelMinutes(b)
	switch {
	case aok && bok:
		return am - bm
	case aok:
		return -1
	case bok:
		return 1
	default:
		return strings.Compare(a, b)
	}
}

func labelMinutes(label string) (int, bool) {
	h, m, err := schedule.ParseLabel(label)
	if err != nil {
		return 0, false
	}
	return h*60 + m, true
}

type AdminService interface {
	Login(ctx context.Context, username, password string) (*models.AdminSession, error)
	Logout(ctx context.Context, token string) error
	Authenticate(ctx context.Context, token string) (*models.AdminSession, error)
	// Overview reads the remote store fresh, bypassing the cache.
	Overview(ctx context.Context) (*BookingsOverview, error)
	BlockDate(ctx context.Context, date string) error
	BlockSlot(ctx context.Context, date, slot string) error
	UnblockDate(ctx context.Context, date string) error
	UnblockSlot(ctx context.Context, date, slot string) error
	Submissions(ctx context.Context, limit int) ([]models.Submission, error)
}

type adminService struct {
	store       AvailabilityService
	slots       SlotService
	verifier    CredentialVerifier
	sessions    repository.AdminSessionRepository
	submissions repository.SubmissionRepository
	notifier    ChangeNotifier
	sessionTTL  time.Duration
	logger      *zap.Logger
}

// NewAdminService wires the admin console. submissions and notifier may be nil.
func NewAdminService(
	store AvailabilityService,
	slots SlotService,
	verifier CredentialVerifier,
	sessions repository.AdminSessionRepository,
	submissions repository.SubmissionRepository,
	notifier ChangeNotifier,
	sessionTTL time.Duration,
	logger *zap.Logger,
) AdminService {
	return &adminService{
		store:       store,
		slots:       slots,
		verifier:    verifier,
		sessions:    sessions,
		submissions: submissions,
		notifier:    notifier,
		sessionTTL:  sessionTTL,
		logger:      logger.Named("admin"),
	}
}

func (s *adminService) Login(ctx context.Context, username, password string) (*models.AdminSession, error) {
	if err := s.verifier.Verify(ctx, username, password); err != nil {
		s.logger.Warn("admin login rejected", zap.String("username", username))
		return nil, err
	}

	now := time.Now().UTC()
	sess := &models.AdminSession{
		Token:     uuid.NewString(),
		Username:  username,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.sessionTTL),
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("save admin session: %w", err)
	}
	s.logger.Info("admin logged in", zap.String("username", username))
	return sess, nil
}

func (s *adminService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return ErrUnauthorized
	}
	return s.sessions.Delete(ctx, token)
}

func (s *adminService) Authenticate(ctx context.Context, token string) (*models.AdminSession, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}
	sess, err := s.sessions.Get(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("load admin session: %w", err)
	}
	if sess == nil || time.Now().After(sess.ExpiresAt) {
		return nil, ErrUnauthorized
	}
	return sess, nil
}

func (s *adminService) Overview(ctx context.Context) (*BookingsOverview, error) {
	state, err := s.slots.Refresh(ctx)
	if err != nil {
		return nil, err
	}
	return Reconcile(state.Bookings), nil
}

func (s *adminService) BlockDate(ctx context.Context, date string) error {
	d, err := parseAdminDate(date)
	if err != nil {
		return err
	}
	overview, err := s.Overview(ctx)
	if err != nil {
		return err
	}
	if overview.dateBlocked(d.String()) {
		return ErrAlreadyBlocked
	}

	block := models.NewAdminBlock(d.String(), "")
	if err := s.store.Submit(ctx, &block); err != nil {
		return fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}
	s.changed(ctx, d.String(), "")
	return nil
}

func (s *adminService) BlockSlot(ctx context.Context, date, slot string) error {
	d, err := parseAdminDate(date)
	if err != nil {
		return err
	}
	slot = schedule.Normalize(slot)
	day := schedule.SlotsFor(d)
	if day.Closed() {
		return invalid("date", day.ClosedReason)
	}
	if !day.Has(slot) {
		return invalid("time", "time is not offered on this date")
	}

	overview, err := s.Overview(ctx)
	if err != nil {
		return err
	}
	if overview.dateBlocked(d.String()) || overview.slotBlocked(d.String(), slot) {
		return ErrAlreadyBlocked
	}

	block := models.NewAdminBlock(d.String(), slot)
	if err := s.store.Submit(ctx, &block); err != nil {
		return fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}
	s.changed(ctx, d.String(), slot)
	return nil
}

func (s *adminService) UnblockDate(ctx context.Context, date string) error {
	d, err := parseAdminDate(date)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, d.String(), ""); err != nil {
		return fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}
	s.changed(ctx, d.String(), "")
	return nil
}

func (s *adminService) UnblockSlot(ctx context.Context, date, slot string) error {
	d, err := parseAdminDate(date)
	if err != nil {
		return err
	}
	slot = schedule.Normalize(slot)
	if !schedule.IsLabel(slot) {
		return invalid("time", "time must look like 4:30 PM")
	}
	if err := s.store.Delete(ctx, d.String(), slot); err != nil {
		return fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}
	s.changed(ctx, d.String(), slot)
	return nil
}

func (s *adminService) Submissions(ctx context.Context, limit int) ([]models.Submission, error) {
	if s.submissions == nil {
		return []models.Submission{}, nil
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.submissions.ListRecent(ctx, limit)
}

func (s *adminService) changed(ctx context.Context, date, slot string) {
	s.logger.Info("admin block changed", zap.String("date", date), zap.String("time", slot))
	if s.notifier != nil {
		s.notifier.Notify(ctx, models.AvailabilityChange{
			Type: models.EventBlockChanged,
			Date: date,
			Time: slot,
		})
	}
}

func parseAdminDate(date string) (schedule.Date, error) {
	if strings.TrimSpace(date) == "" {
		return schedule.Date{}, invalid("date", "please choose a date")
	}
	d, err := schedule.ParseDate(date)
	if err != nil {
		return schedule.Date{}, &ValidationError{Field: "date", Message: "date must be YYYY-MM-DD", Err: err}
	}
	return d, nil
}
