package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/Eursukkul/dojo-booking/internal/models"
	"github.com/Eursukkul/dojo-booking/internal/schedule"
)

// --- Fake spreadsheet store ---

// fakeStore keeps rows in memory and derives the occupied-slot map from
// them the way the spreadsheet script does.
type fakeStore struct {
	mu      sync.Mutex
	records []models.BookingRequest

	fetchCalls  atomic.Int32
	submitCalls atomic.Int32
	deleteCalls atomic.Int32

	fetchErr error
	// rowsOnly answers with the bookings rows and no booked map.
	rowsOnly bool
	submitFn func(ctx context.Context, b *models.BookingRequest) error
}

func (f *fakeStore) FetchSnapshot(ctx context.Context) (*models.RemoteState, error) {
	f.fetchCalls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	state := &models.RemoteState{Booked: map[string][]string{}}
	for _, r := range f.records {
		slot := r.Time
		if slot == "" {
			slot = schedule.FullDay
		}
		state.Booked[r.Date] = append(state.Booked[r.Date], slot)
		state.Bookings = append(state.Bookings, r)
	}
	if f.rowsOnly {
		state.Booked = nil
	}
	return state, nil
}

func (f *fakeStore) Submit(ctx context.Context, b *models.BookingRequest) error {
	f.submitCalls.Add(1)
	if f.submitFn != nil {
		if err := f.submitFn(ctx, b); err != nil {
			return err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, *b)
	return nil
}

func (f *fakeStore) Delete(ctx context.Context, date, slot string) error {
	f.deleteCalls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.records[:0]
	for _, r := range f.records {
		if r.IsAdminBlock() && r.Date == date && r.Time == slot {
			continue
		}
		kept = append(kept, r)
	}
	f.records = kept
	return nil
}

func (f *fakeStore) add(records ...models.BookingRequest) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, records...)
}

func (f *fakeStore) setFetchErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetchErr = err
}

// --- Mock SnapshotCache ---

type mockSnapshotCache struct {
	getFn        func(ctx context.Context) (*models.RemoteState, error)
	setFn        func(ctx context.Context, state *models.RemoteState) error
	invalidateFn func(ctx context.Context) error
}

func (m *mockSnapshotCache) Get(ctx context.Context) (*models.RemoteState, error) {
	return m.getFn(ctx)
}
func (m *mockSnapshotCache) Set(ctx context.Context, state *models.RemoteState) error {
	return m.setFn(ctx, state)
}
func (m *mockSnapshotCache) Invalidate(ctx context.Context) error {
	return m.invalidateFn(ctx)
}

// memSnapshotCache is a mockSnapshotCache that keeps what it is given.
func memSnapshotCache() *mockSnapshotCache {
	var mu sync.Mutex
	var cached *models.RemoteState
	return &mockSnapshotCache{
		getFn: func(ctx context.Context) (*models.RemoteState, error) {
			mu.Lock()
			defer mu.Unlock()
			return cached, nil
		},
		setFn: func(ctx context.Context, state *models.RemoteState) error {
			mu.Lock()
			defer mu.Unlock()
			cached = state
			return nil
		},
		invalidateFn: func(ctx context.Context) error {
			mu.Lock()
			defer mu.Unlock()
			cached = nil
			return nil
		},
	}
}

// --- Mock SubmissionRepository ---

type mockSubmissionRepo struct {
	mu       sync.Mutex
	created  []models.Submission
	statuses map[uint]models.SubmissionStatus
	nextID   uint
}

func newMockSubmissionRepo() *mockSubmissionRepo {
	return &mockSubmissionRepo{statuses: map[uint]models.SubmissionStatus{}}
}

func (m *mockSubmissionRepo) Create(ctx context.Context, sub *models.Submission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	sub.ID = m.nextID
	m.created = append(m.created, *sub)
	m.statuses[sub.ID] = sub.Status
	return nil
}
func (m *mockSubmissionRepo) UpdateStatus(ctx context.Context, id uint, status models.SubmissionStatus, errMsg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statuses[id] = status
	return nil
}
func (m *mockSubmissionRepo) FindBySession(ctx context.Context, sessionID string) ([]models.Submission, error) {
	return nil, nil
}
func (m *mockSubmissionRepo) ListRecent(ctx context.Context, limit int) ([]models.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Submission(nil), m.created...), nil
}
func (m *mockSubmissionRepo) status(id uint) models.SubmissionStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.statuses[id]
}

// --- Mock AdminSessionRepository ---

type memAdminSessions struct {
	mu       sync.Mutex
	sessions map[string]models.AdminSession
}

func newMemAdminSessions() *memAdminSessions {
	return &memAdminSessions{sessions: map[string]models.AdminSession{}}
}

func (m *memAdminSessions) Save(ctx context.Context, sess *models.AdminSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sess.Token] = *sess
	return nil
}
func (m *memAdminSessions) Get(ctx context.Context, token string) (*models.AdminSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[token]
	if !ok {
		return nil, nil
	}
	return &sess, nil
}
func (m *memAdminSessions) Delete(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
	return nil
}

// --- Recording ChangeNotifier ---

type recordingNotifier struct {
	mu      sync.Mutex
	changes []models.AvailabilityChange
}

func (n *recordingNotifier) Notify(ctx context.Context, change models.AvailabilityChange) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.changes = append(n.changes, change)
}

func (n *recordingNotifier) all() []models.AvailabilityChange {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]models.AvailabilityChange(nil), n.changes...)
}

// --- Helpers ---

var studioLoc = func() *time.Location {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		panic(err)
	}
	return loc
}()

// Monday morning, one week before the booking date used in tests.
var fixedNow = time.Date(2024, time.June, 3, 9, 0, 0, 0, studioLoc)

func newTestSlots(store AvailabilityService) SlotService {
	return NewSlotService(store, nil, studioLoc, zap.NewNop(), WithClock(func() time.Time { return fixedNow }))
}

func customerBooking(date, slot string) models.BookingRequest {
	return models.BookingRequest{
		Service: models.DefaultService,
		Date:    date,
		Time:    slot,
		Name:    "Existing Customer",
		Email:   "existing@example.com",
		Phone:   "555-0199",
	}
}
