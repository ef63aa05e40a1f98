package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/stripe/stripe-go/v79"
	checkoutsession "github.com/stripe/stripe-go/v79/checkout/session"
	"github.com/stripe/stripe-go/v79/webhook"
	"go.uber.org/zap"

	"github.com/Eursukkul/dojo-booking/internal/models"
)

const bookingSessionMetadataKey = "booking_session_id"

// Stripe accepts checkout expiries between 30 minutes and 24 hours.
const (
	minCheckoutExpiry     = 30 * time.Minute
	maxCheckoutExpiry     = 24 * time.Hour
	defaultCheckoutExpiry = time.Hour
	// checkoutHoldGrace covers webhook delivery after the checkout closes.
	checkoutHoldGrace = time.Hour
)

// CheckoutCreator opens a hosted Stripe checkout session.
type CheckoutCreator interface {
	New(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

// NewStripeCheckout returns a creator bound to secretKey rather than the
// package-global key.
func NewStripeCheckout(secretKey string) CheckoutCreator {
	return &checkoutsession.Client{B: stripe.GetBackend(stripe.APIBackend), Key: secretKey}
}

type CheckoutResult struct {
	CheckoutSessionID string `json:"checkout_session_id"`
	URL               string `json:"url"`
}

type WebhookOutcome string

const (
	WebhookSubmitted WebhookOutcome = "submitted"
	WebhookDuplicate WebhookOutcome = "duplicate"
	WebhookRejected  WebhookOutcome = "rejected"
	WebhookIgnored   WebhookOutcome = "ignored"
)

type PaymentOptions struct {
	WebhookSecret    string
	WebhookTolerance time.Duration
	SuccessURL       string
	CancelURL        string
	CheckoutExpiry   time.Duration
}

type PaymentService interface {
	CreateCheckout(ctx context.Context, sessionID string) (*CheckoutResult, error)
	// HandleWebhook verifies a Stripe event and, for a paid checkout,
	// submits the booking it belongs to. Redelivered events land on the
	// dispatch guard and report WebhookDuplicate.
	HandleWebhook(ctx context.Context, payload []byte, signature string) (WebhookOutcome, error)
}

type paymentService struct {
	bookings BookingService
	checkout CheckoutCreator
	opts     PaymentOptions
	logger   *zap.Logger
}

// NewPaymentService wires card payments. A nil checkout disables them.
func NewPaymentService(bookings BookingService, checkout CheckoutCreator, opts PaymentOptions, logger *zap.Logger) PaymentService {
	if opts.WebhookTolerance <= 0 {
		opts.WebhookTolerance = webhook.DefaultTolerance
	}
	switch {
	case opts.CheckoutExpiry <= 0:
		opts.CheckoutExpiry = defaultCheckoutExpiry
	case opts.CheckoutExpiry < minCheckoutExpiry:
		opts.CheckoutExpiry = minCheckoutExpiry
	case opts.CheckoutExpiry > maxCheckoutExpiry:
		opts.CheckoutExpiry = maxCheckoutExpiry
	}
	return &paymentService{
		bookings: bookings,
		checkout: checkout,
		opts:     opts,
		logger:   logger.Named("payment"),
	}
}

func (p *paymentService) CreateCheckout(ctx context.Context, sessionID string) (*CheckoutResult, error) {
	if p.checkout == nil {
		return nil, ErrPaymentsDisabled
	}
	view, err := p.bookings.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if view.Status == StatusSending || view.Status == StatusSuccess {
		return nil, ErrSessionLocked
	}
	if view.Step != FinalStep {
		return nil, ErrNotFinalStep
	}
	entry, ok := models.LookupService(view.Form.Service)
	if !ok || view.Form.PaymentMethod != models.PaymentCard || entry.PriceCents <= 0 {
		return nil, ErrPaymentNotRequired
	}

	expiresAt := time.Now().Add(p.opts.CheckoutExpiry)
	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		ExpiresAt:         stripe.Int64(expiresAt.Unix()),
		SuccessURL:        stripe.String(withQueryParam(p.opts.SuccessURL, "booking_session", sessionID)),
		CancelURL:         stripe.String(withQueryParam(p.opts.CancelURL, "booking_session", sessionID)),
		ClientReferenceID: stripe.String(sessionID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(string(stripe.CurrencyUSD)),
					UnitAmount: stripe.Int64(entry.PriceCents),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String(entry.Name),
						Description: stripe.String(fmt.Sprintf("%s at %s", view.Form.Date, view.Form.Time)),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		Metadata: map[string]string{
			bookingSessionMetadataKey: sessionID,
			"date":                    view.Form.Date,
			"time":                    view.Form.Time,
		},
	}
	if view.Form.Email != "" {
		params.CustomerEmail = stripe.String(view.Form.Email)
	}
	params.IdempotencyKey = stripe.String(fmt.Sprintf("checkout-%s-%d", sessionID, view.Attempts))

	cs, err := p.checkout.New(params)
	if err != nil {
		p.logger.Error("stripe checkout session create failed", zap.String("session", sessionID), zap.Error(err))
		return nil, fmt.Errorf("create checkout session: %w", err)
	}
	if cs.ExpiresAt > 0 {
		expiresAt = time.Unix(cs.ExpiresAt, 0)
	}
	// The customer may stay on the hosted page past the session TTL.
	if err := p.bookings.HoldForPayment(ctx, sessionID, expiresAt.Add(checkoutHoldGrace)); err != nil {
		return nil, err
	}
	p.logger.Info("checkout session created", zap.String("session", sessionID), zap.String("checkout_session", cs.ID))
	return &CheckoutResult{CheckoutSessionID: cs.ID, URL: cs.URL}, nil
}

func (p *paymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) (WebhookOutcome, error) {
	if p.opts.WebhookSecret == "" {
		return "", ErrPaymentsDisabled
	}
	evt, err := webhook.ConstructEventWithTolerance(payload, signature, p.opts.WebhookSecret, p.opts.WebhookTolerance)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidWebhook, err)
	}
	if evt.Type != stripe.EventTypeCheckoutSessionCompleted {
		return WebhookIgnored, nil
	}

	var cs stripe.CheckoutSession
	if err := json.Unmarshal(evt.Data.Raw, &cs); err != nil {
		return "", fmt.Errorf("%w: checkout session payload: %v", ErrInvalidWebhook, err)
	}
	sessionID := cs.Metadata[bookingSessionMetadataKey]
	log := p.logger.With(zap.String("event", evt.ID), zap.String("checkout_session", cs.ID), zap.String("session", sessionID))
	if sessionID == "" {
		log.Warn("checkout session without booking metadata")
		return WebhookIgnored, nil
	}
	if cs.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
		log.Info("checkout completed without payment", zap.String("payment_status", string(cs.PaymentStatus)))
		return WebhookIgnored, nil
	}

	_, err = p.bookings.Submit(ctx, sessionID, models.TriggerPayment)
	var verr *ValidationError
	switch {
	case err == nil:
		return WebhookSubmitted, nil
	case errors.Is(err, ErrDuplicateSubmission):
		log.Info("payment confirmation raced an existing submission")
		return WebhookDuplicate, nil
	case errors.Is(err, ErrSessionNotFound):
		log.Error("paid checkout for an expired booking session")
		return WebhookIgnored, nil
	case errors.As(err, &verr), errors.Is(err, ErrNotFinalStep):
		log.Error("paid booking failed validation", zap.Error(err))
		return WebhookRejected, nil
	default:
		return "", err
	}
}

func withQueryParam(raw, key, value string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	q.Set(key, value)
	u.RawQuery = q.Encode()
	return u.String()
}
