package consumer

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/Eursukkul/dojo-booking/internal/models"
	"github.com/Eursukkul/dojo-booking/internal/service"
)

// Refresher is the part of the slot service the consumer drives.
type Refresher interface {
	Refresh(ctx context.Context) (*models.RemoteState, error)
}

// RefreshConsumer re-fetches the availability snapshot whenever another
// writer announces a change.
type RefreshConsumer struct {
	slots   Refresher
	timeout time.Duration
	logger  *zap.Logger
}

func NewRefreshConsumer(slots Refresher, timeout time.Duration, logger *zap.Logger) *RefreshConsumer {
	return &RefreshConsumer{slots: slots, timeout: timeout, logger: logger.Named("refresh_consumer")}
}

var _ Refresher = service.SlotService(nil)

// Start drains msgs in the background until the channel closes.
func (rc *RefreshConsumer) Start(msgs <-chan amqp.Delivery) {
	go func() {
		for msg := range msgs {
			rc.handleMessage(msg)
		}
		rc.logger.Info("channel closed, stopping consumer")
	}()
}

func (rc *RefreshConsumer) handleMessage(msg amqp.Delivery) {
	var change models.AvailabilityChange
	if err := json.Unmarshal(msg.Body, &change); err != nil {
		rc.logger.Warn("dropping malformed message", zap.String("routing_key", msg.RoutingKey), zap.Error(err))
		_ = msg.Nack(false, false)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), rc.timeout)
	defer cancel()

	// A failed refresh is not retried here; the next read goes to the
	// remote store anyway because the cache entry was already dropped.
	if _, err := rc.slots.Refresh(ctx); err != nil {
		rc.logger.Warn("snapshot refresh failed",
			zap.String("type", change.Type), zap.String("date", change.Date), zap.Error(err))
	} else {
		rc.logger.Debug("snapshot refreshed", zap.String("type", change.Type), zap.String("date", change.Date))
	}
	_ = msg.Ack(false)
}
