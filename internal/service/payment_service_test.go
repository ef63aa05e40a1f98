package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/webhook"
	"go.uber.org/zap"

	"github.com/Eursukkul/dojo-booking/internal/models"
)

const testWebhookSecret = "whsec_test_secret"

// --- Mock CheckoutCreator ---

type mockCheckout struct {
	newFn func(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

func (m *mockCheckout) New(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	return m.newFn(params)
}

func testPaymentOptions() PaymentOptions {
	return PaymentOptions{
		WebhookSecret: testWebhookSecret,
		SuccessURL:    "https://dojo.example.com/booked",
		CancelURL:     "https://dojo.example.com/book?step=4",
	}
}

func cardSession(t *testing.T, svc BookingService) string {
	t.Helper()
	id := readySession(t, svc)
	_, err := svc.SelectPayment(context.Background(), id, models.PaymentCard)
	require.NoError(t, err)
	return id
}

func signedEvent(t *testing.T, eventType string, session map[string]any) (payload []byte, header string) {
	t.Helper()
	raw, err := json.Marshal(map[string]any{
		"id":          "evt_test_1",
		"object":      "event",
		"api_version": stripe.APIVersion,
		"created":     time.Now().Unix(),
		"type":        eventType,
		"data":        map[string]any{"object": session},
	})
	require.NoError(t, err)

	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload: raw,
		Secret:  testWebhookSecret,
	})
	return signed.Payload, signed.Header
}

func paidSession(bookingSessionID string) map[string]any {
	return map[string]any{
		"id":             "cs_test_1",
		"object":         "checkout.session",
		"payment_status": "paid",
		"metadata":       map[string]string{"booking_session_id": bookingSessionID},
	}
}

func TestCreateCheckout(t *testing.T) {
	bookings, _, _ := newTestBookingService(&fakeStore{}, BookingOptions{})
	id := cardSession(t, bookings)

	var got *stripe.CheckoutSessionParams
	checkout := &mockCheckout{newFn: func(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
		got = params
		return &stripe.CheckoutSession{ID: "cs_test_1", URL: "https://checkout.stripe.com/c/pay/cs_test_1"}, nil
	}}
	svc := NewPaymentService(bookings, checkout, testPaymentOptions(), zap.NewNop())

	res, err := svc.CreateCheckout(context.Background(), id)

	require.NoError(t, err)
	assert.Equal(t, "cs_test_1", res.CheckoutSessionID)
	assert.Equal(t, "https://checkout.stripe.com/c/pay/cs_test_1", res.URL)
	require.NotNil(t, got)
	assert.Equal(t, id, got.Metadata["booking_session_id"])
	assert.Equal(t, int64(2000), *got.LineItems[0].PriceData.UnitAmount)
	assert.Equal(t, "https://dojo.example.com/book?booking_session="+id+"&step=4", *got.CancelURL)
	assert.Equal(t, "ana@example.com", *got.CustomerEmail)
}

func TestCreateCheckout_HoldsSessionUntilPaid(t *testing.T) {
	store := &fakeStore{}
	bookings, _, _ := newTestBookingService(store, BookingOptions{SessionTTL: 30 * time.Minute})
	id := cardSession(t, bookings)

	var expiresAt int64
	checkout := &mockCheckout{newFn: func(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
		expiresAt = *params.ExpiresAt
		return &stripe.CheckoutSession{ID: "cs_test_1", ExpiresAt: expiresAt}, nil
	}}
	svc := NewPaymentService(bookings, checkout, testPaymentOptions(), zap.NewNop())
	ctx := context.Background()

	start := time.Now()
	_, err := svc.CreateCheckout(ctx, id)
	require.NoError(t, err)
	assert.InDelta(t, start.Add(time.Hour).Unix(), expiresAt, 5)

	// The customer is still on the hosted page when the sweeper runs.
	assert.Equal(t, 0, bookings.Sweep(start.Add(45*time.Minute)))

	payload, header := signedEvent(t, "checkout.session.completed", paidSession(id))
	outcome, err := svc.HandleWebhook(ctx, payload, header)

	require.NoError(t, err)
	assert.Equal(t, WebhookSubmitted, outcome)
	assert.Equal(t, int32(1), store.submitCalls.Load())
}

func TestCreateCheckout_ClampsExpiry(t *testing.T) {
	bookings, _, _ := newTestBookingService(&fakeStore{}, BookingOptions{})
	id := cardSession(t, bookings)

	var expiresAt int64
	checkout := &mockCheckout{newFn: func(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
		expiresAt = *params.ExpiresAt
		return &stripe.CheckoutSession{ID: "cs_test_1"}, nil
	}}
	opts := testPaymentOptions()
	opts.CheckoutExpiry = 5 * time.Minute
	svc := NewPaymentService(bookings, checkout, opts, zap.NewNop())

	start := time.Now()
	_, err := svc.CreateCheckout(context.Background(), id)

	require.NoError(t, err)
	assert.InDelta(t, start.Add(30*time.Minute).Unix(), expiresAt, 5)
}

func TestCreateCheckout_Rejections(t *testing.T) {
	bookings, _, _ := newTestBookingService(&fakeStore{}, BookingOptions{})
	checkout := &mockCheckout{newFn: func(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
		t.Fatal("checkout must not be created")
		return nil, nil
	}}
	svc := NewPaymentService(bookings, checkout, testPaymentOptions(), zap.NewNop())
	ctx := context.Background()

	inStudio := readySession(t, bookings)
	_, err := svc.CreateCheckout(ctx, inStudio)
	assert.ErrorIs(t, err, ErrPaymentNotRequired)

	early, _ := bookings.Start(ctx)
	_, err = svc.CreateCheckout(ctx, early.ID)
	assert.ErrorIs(t, err, ErrNotFinalStep)

	_, err = svc.CreateCheckout(ctx, "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	disabled := NewPaymentService(bookings, nil, testPaymentOptions(), zap.NewNop())
	_, err = disabled.CreateCheckout(ctx, inStudio)
	assert.ErrorIs(t, err, ErrPaymentsDisabled)
}

func TestHandleWebhook_SubmitsPaidBooking(t *testing.T) {
	store := &fakeStore{}
	bookings, journal, _ := newTestBookingService(store, BookingOptions{})
	id := cardSession(t, bookings)
	svc := NewPaymentService(bookings, nil, testPaymentOptions(), zap.NewNop())

	payload, header := signedEvent(t, "checkout.session.completed", paidSession(id))
	outcome, err := svc.HandleWebhook(context.Background(), payload, header)

	require.NoError(t, err)
	assert.Equal(t, WebhookSubmitted, outcome)
	assert.Equal(t, int32(1), store.submitCalls.Load())
	require.Len(t, journal.created, 1)
	assert.Equal(t, models.TriggerPayment, journal.created[0].Trigger)

	// Stripe redelivers; the booking is not sent twice.
	outcome, err = svc.HandleWebhook(context.Background(), payload, header)
	require.NoError(t, err)
	assert.Equal(t, WebhookDuplicate, outcome)
	assert.Equal(t, int32(1), store.submitCalls.Load())
}

func TestHandleWebhook_RacesManualSubmit(t *testing.T) {
	release := make(chan struct{})
	store := &fakeStore{}
	store.submitFn = func(ctx context.Context, b *models.BookingRequest) error {
		<-release
		return nil
	}
	bookings, _, _ := newTestBookingService(store, BookingOptions{})
	id := cardSession(t, bookings)
	svc := NewPaymentService(bookings, nil, testPaymentOptions(), zap.NewNop())

	manual := make(chan error, 1)
	go func() {
		_, err := bookings.Submit(context.Background(), id, models.TriggerManual)
		manual <- err
	}()
	assert.Eventually(t, func() bool { return store.submitCalls.Load() == 1 }, time.Second, 5*time.Millisecond)

	payload, header := signedEvent(t, "checkout.session.completed", paidSession(id))
	outcome, err := svc.HandleWebhook(context.Background(), payload, header)
	require.NoError(t, err)
	assert.Equal(t, WebhookDuplicate, outcome)

	close(release)
	assert.NoError(t, <-manual)
	assert.Equal(t, int32(1), store.submitCalls.Load())
}

func TestHandleWebhook_Ignores(t *testing.T) {
	store := &fakeStore{}
	bookings, _, _ := newTestBookingService(store, BookingOptions{})
	id := cardSession(t, bookings)
	svc := NewPaymentService(bookings, nil, testPaymentOptions(), zap.NewNop())
	ctx := context.Background()

	unpaid := paidSession(id)
	unpaid["payment_status"] = "unpaid"
	cases := map[string]struct {
		eventType string
		session   map[string]any
	}{
		"other event":     {"checkout.session.expired", paidSession(id)},
		"unpaid":          {"checkout.session.completed", unpaid},
		"no metadata":     {"checkout.session.completed", map[string]any{"id": "cs_2", "object": "checkout.session", "payment_status": "paid"}},
		"expired session": {"checkout.session.completed", paidSession("gone")},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			payload, header := signedEvent(t, tc.eventType, tc.session)
			outcome, err := svc.HandleWebhook(ctx, payload, header)
			require.NoError(t, err)
			assert.Equal(t, WebhookIgnored, outcome)
		})
	}
	assert.Zero(t, store.submitCalls.Load())
}

func TestHandleWebhook_BadSignature(t *testing.T) {
	bookings, _, _ := newTestBookingService(&fakeStore{}, BookingOptions{})
	svc := NewPaymentService(bookings, nil, testPaymentOptions(), zap.NewNop())

	payload, _ := signedEvent(t, "checkout.session.completed", paidSession("x"))
	_, err := svc.HandleWebhook(context.Background(), payload, "t=1,v1=deadbeef")

	assert.ErrorIs(t, err, ErrInvalidWebhook)

	unconfigured := NewPaymentService(bookings, nil, PaymentOptions{}, zap.NewNop())
	_, err = unconfigured.HandleWebhook(context.Background(), payload, "")
	assert.ErrorIs(t, err, ErrPaymentsDisabled)
}

func TestHandleWebhook_StoreFailureIsRetryable(t *testing.T) {
	store := &fakeStore{}
	store.submitFn = func(ctx context.Context, b *models.BookingRequest) error {
		return errors.New("script unavailable")
	}
	bookings, _, _ := newTestBookingService(store, BookingOptions{})
	id := cardSession(t, bookings)
	svc := NewPaymentService(bookings, nil, testPaymentOptions(), zap.NewNop())

	payload, header := signedEvent(t, "checkout.session.completed", paidSession(id))
	_, err := svc.HandleWebhook(context.Background(), payload, header)

	assert.ErrorIs(t, err, ErrRemoteUnavailable)
}
