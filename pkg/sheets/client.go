package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/schema"
	"go.uber.org/zap"

	"github.com/Eursukkul/dojo-booking/internal/models"
)

var ErrUnexpectedStatus = errors.New("unexpected response status")

// Client talks to a spreadsheet script endpoint. GET returns the occupied
// slots and raw booking rows; POST appends or deletes rows from a form body.
type Client struct {
	endpoint string
	http     *http.Client
	encoder  *schema.Encoder
	logger   *zap.Logger
}

func NewClient(endpoint string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: timeout},
		encoder:  schema.NewEncoder(),
		logger:   logger.Named("sheets"),
	}
}

type bookingForm struct {
	Action          string `schema:"action,omitempty"`
	Service         string `schema:"service"`
	Date            string `schema:"date"`
	Time            string `schema:"time"`
	Name            string `schema:"name"`
	Email           string `schema:"email,omitempty"`
	Phone           string `schema:"phone,omitempty"`
	ParticipantName string `schema:"participantName,omitempty"`
	ParticipantAge  string `schema:"participantAge,omitempty"`
	Notes           string `schema:"notes,omitempty"`
	PaymentMethod   string `schema:"paymentMethod,omitempty"`
	Subject         string `schema:"subject,omitempty"`
	MessageBody     string `schema:"message_body,omitempty"`
}

type snapshotPayload struct {
	Booked   map[string][]any `json:"booked"`
	Bookings []map[string]any `json:"bookings"`
}

// FetchSnapshot reads the current remote state. Malformed rows are skipped.
func (c *Client) FetchSnapshot(ctx context.Context) (*models.RemoteState, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch snapshot: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("fetch snapshot: %w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	var payload snapshotPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}

	state := &models.RemoteState{Booked: make(map[string][]string, len(payload.Booked))}
	for date, values := range payload.Booked {
		for _, v := range values {
			s, ok := v.(string)
			if !ok {
				c.logger.Debug("skipping non-string slot value", zap.String("date", date), zap.Any("value", v))
				continue
			}
			state.Booked[date] = append(state.Booked[date], s)
		}
	}
	for _, row := range payload.Bookings {
		rec, ok := recordFromRow(row)
		if !ok {
			c.logger.Debug("skipping booking row without a date", zap.Any("row", row))
			continue
		}
		state.Bookings = append(state.Bookings, rec)
	}
	return state, nil
}

// Submit appends a booking or admin-block row.
func (c *Client) Submit(ctx context.Context, b *models.BookingRequest) error {
	form := bookingForm{
		Service:         b.Service,
		Date:            b.Date,
		Time:            b.Time,
		Name:            b.Name,
		Email:           b.Email,
		Phone:           b.Phone,
		ParticipantName: b.ParticipantName,
		ParticipantAge:  b.ParticipantAge,
		Notes:           b.Notes,
		PaymentMethod:   string(b.PaymentMethod),
	}
	if !b.IsAdminBlock() {
		form.Subject = "Trial Lesson Booking: " + b.Service
		form.MessageBody = messageBody(b)
	}
	return c.post(ctx, form)
}

// Delete removes the admin-block row for date and time. An empty time
// targets the whole-day block.
func (c *Client) Delete(ctx context.Context, date, slot string) error {
	return c.post(ctx, bookingForm{
		Action:  "delete",
		Service: models.AdminBlockService,
		Date:    date,
		Time:    slot,
		Name:    models.AdminBlockName,
	})
}

// SendInquiry forwards a contact or party inquiry.
func (c *Client) SendInquiry(ctx context.Context, inq *models.Inquiry) error {
	return c.post(ctx, inq)
}

func (c *Client) post(ctx context.Context, form any) error {
	values := url.Values{}
	if err := c.encoder.Encode(form, values); err != nil {
		return fmt.Errorf("encode form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(values.Encode()))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("post form: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("post form: %w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}
	c.logger.Debug("form posted", zap.Int("status", resp.StatusCode), zap.String("action", values.Get("action")))
	return nil
}

func messageBody(b *models.BookingRequest) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Service: %s\n", b.Service)
	fmt.Fprintf(&sb, "Date: %s\n", b.Date)
	fmt.Fprintf(&sb, "Time: %s\n", b.Time)
	fmt.Fprintf(&sb, "Name: %s\n", b.Name)
	fmt.Fprintf(&sb, "Email: %s\n", b.Email)
	fmt.Fprintf(&sb, "Phone: %s\n", b.Phone)
	if b.ParticipantName != "" {
		fmt.Fprintf(&sb, "Participant: %s\n", b.ParticipantName)
	}
	if b.ParticipantAge != "" {
		fmt.Fprintf(&sb, "Participant Age: %s\n", b.ParticipantAge)
	}
	if b.PaymentMethod != "" {
		fmt.Fprintf(&sb, "Payment: %s\n", b.PaymentMethod)
	}
	if b.Notes != "" {
		fmt.Fprintf(&sb, "Notes: %s\n", b.Notes)
	}
	return sb.String()
}
