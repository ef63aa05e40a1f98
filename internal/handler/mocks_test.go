package handler

import (
	"context"
	"time"

	"github.com/Eursukkul/dojo-booking/internal/availability"
	"github.com/Eursukkul/dojo-booking/internal/models"
	"github.com/Eursukkul/dojo-booking/internal/service"
)

// --- Mock BookingService ---

type mockBookingService struct {
	startFn    func(ctx context.Context) (*service.SessionView, error)
	getFn      func(ctx context.Context, id string) (*service.SessionView, error)
	serviceFn  func(ctx context.Context, id, svc string) (*service.SessionView, error)
	scheduleFn func(ctx context.Context, id, date, slot string) (*service.SessionView, error)
	contactFn  func(ctx context.Context, id string, in service.ContactInput) (*service.SessionView, error)
	paymentFn  func(ctx context.Context, id string, method models.PaymentMethod) (*service.SessionView, error)
	nextFn     func(ctx context.Context, id string) (*service.SessionView, error)
	backFn     func(ctx context.Context, id string) (*service.SessionView, error)
	submitFn   func(ctx context.Context, id string, trigger models.SubmissionTrigger) (*service.SessionView, error)
	closeFn    func(ctx context.Context, id string) error
}

func (m *mockBookingService) Start(ctx context.Context) (*service.SessionView, error) {
	return m.startFn(ctx)
}
func (m *mockBookingService) Get(ctx context.Context, id string) (*service.SessionView, error) {
	return m.getFn(ctx, id)
}
func (m *mockBookingService) SelectService(ctx context.Context, id, svc string) (*service.SessionView, error) {
	return m.serviceFn(ctx, id, svc)
}
func (m *mockBookingService) SelectSchedule(ctx context.Context, id, date, slot string) (*service.SessionView, error) {
	return m.scheduleFn(ctx, id, date, slot)
}
func (m *mockBookingService) UpdateContact(ctx context.Context, id string, in service.ContactInput) (*service.SessionView, error) {
	return m.contactFn(ctx, id, in)
}
func (m *mockBookingService) SelectPayment(ctx context.Context, id string, method models.PaymentMethod) (*service.SessionView, error) {
	return m.paymentFn(ctx, id, method)
}
func (m *mockBookingService) Next(ctx context.Context, id string) (*service.SessionView, error) {
	return m.nextFn(ctx, id)
}
func (m *mockBookingService) Back(ctx context.Context, id string) (*service.SessionView, error) {
	return m.backFn(ctx, id)
}
func (m *mockBookingService) Submit(ctx context.Context, id string, trigger models.SubmissionTrigger) (*service.SessionView, error) {
	return m.submitFn(ctx, id, trigger)
}
func (m *mockBookingService) Close(ctx context.Context, id string) error {
	return m.closeFn(ctx, id)
}
func (m *mockBookingService) HoldForPayment(ctx context.Context, id string, until time.Time) error {
	return nil
}
func (m *mockBookingService) Sweep(now time.Time) int { return 0 }
func (m *mockBookingService) Run(ctx context.Context) {}

// --- Mock SlotService ---

type mockSlotService struct {
	dayFn   func(ctx context.Context, date string) (*service.DayAvailability, error)
	monthFn func(ctx context.Context, year int, month time.Month) ([]availability.Day, error)
	now     time.Time
}

func (m *mockSlotService) Snapshot(ctx context.Context) (*models.RemoteState, error) {
	return &models.RemoteState{}, nil
}
func (m *mockSlotService) Refresh(ctx context.Context) (*models.RemoteState, error) {
	return &models.RemoteState{}, nil
}
func (m *mockSlotService) Invalidate(ctx context.Context) {}
func (m *mockSlotService) Day(ctx context.Context, date string) (*service.DayAvailability, error) {
	return m.dayFn(ctx, date)
}
func (m *mockSlotService) Month(ctx context.Context, year int, month time.Month) ([]availability.Day, error) {
	return m.monthFn(ctx, year, month)
}
func (m *mockSlotService) CheckBookable(ctx context.Context, date, label string) error { return nil }
func (m *mockSlotService) RecheckBookable(ctx context.Context, date, label string) error {
	return nil
}
func (m *mockSlotService) Now() time.Time { return m.now }

// --- Mock AdminService ---

type mockAdminService struct {
	loginFn       func(ctx context.Context, username, password string) (*models.AdminSession, error)
	logoutFn      func(ctx context.Context, token string) error
	authFn        func(ctx context.Context, token string) (*models.AdminSession, error)
	overviewFn    func(ctx context.Context) (*service.BookingsOverview, error)
	blockDateFn   func(ctx context.Context, date string) error
	blockSlotFn   func(ctx context.Context, date, slot string) error
	unblockDateFn func(ctx context.Context, date string) error
	unblockSlotFn func(ctx context.Context, date, slot string) error
	submissionsFn func(ctx context.Context, limit int) ([]models.Submission, error)
}

func (m *mockAdminService) Login(ctx context.Context, username, password string) (*models.AdminSession, error) {
	return m.loginFn(ctx, username, password)
}
func (m *mockAdminService) Logout(ctx context.Context, token string) error {
	return m.logoutFn(ctx, token)
}
func (m *mockAdminService) Authenticate(ctx context.Context, token string) (*models.AdminSession, error) {
	return m.authFn(ctx, token)
}
func (m *mockAdminService) Overview(ctx context.Context) (*service.BookingsOverview, error) {
	return m.overviewFn(ctx)
}
func (m *mockAdminService) BlockDate(ctx context.Context, date string) error {
	return m.blockDateFn(ctx, date)
}
func (m *mockAdminService) BlockSlot(ctx context.Context, date, slot string) error {
	return m.blockSlotFn(ctx, date, slot)
}
func (m *mockAdminService) UnblockDate(ctx context.Context, date string) error {
	return m.unblockDateFn(ctx, date)
}
func (m *mockAdminService) UnblockSlot(ctx context.Context, date, slot string) error {
	return m.unblockSlotFn(ctx, date, slot)
}
func (m *mockAdminService) Submissions(ctx context.Context, limit int) ([]models.Submission, error) {
	return m.submissionsFn(ctx, limit)
}

// --- Mock PaymentService ---

type mockPaymentService struct {
	checkoutFn func(ctx context.Context, sessionID string) (*service.CheckoutResult, error)
	webhookFn  func(ctx context.Context, payload []byte, signature string) (service.WebhookOutcome, error)
}

func (m *mockPaymentService) CreateCheckout(ctx context.Context, sessionID string) (*service.CheckoutResult, error) {
	return m.checkoutFn(ctx, sessionID)
}
func (m *mockPaymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) (service.WebhookOutcome, error) {
	return m.webhookFn(ctx, payload, signature)
}

// --- Mock InquiryService ---

type mockInquiryService struct {
	sendFn func(ctx context.Context, inq *models.Inquiry) error
}

func (m *mockInquiryService) Send(ctx context.Context, inq *models.Inquiry) error {
	return m.sendFn(ctx, inq)
}
