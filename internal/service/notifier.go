package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Eursukkul/dojo-booking/internal/models"
)

// ChangeNotifier reacts to a successful write against the remote store.
// Notify never waits for the snapshot refresh.
type ChangeNotifier interface {
	Notify(ctx context.Context, change models.AvailabilityChange)
}

type changeNotifier struct {
	slots     SlotService
	publisher EventPublisher
	timeout   time.Duration
	logger    *zap.Logger
}

// NewChangeNotifier drops the cached snapshot and announces the change. With
// a nil publisher, or when publishing fails, the refresh runs in-process.
func NewChangeNotifier(slots SlotService, publisher EventPublisher, timeout time.Duration, logger *zap.Logger) ChangeNotifier {
	return &changeNotifier{
		slots:     slots,
		publisher: publisher,
		timeout:   timeout,
		logger:    logger.Named("notifier"),
	}
}

func (n *changeNotifier) Notify(ctx context.Context, change models.AvailabilityChange) {
	if change.OccurredAt.IsZero() {
		change.OccurredAt = time.Now().UTC()
	}
	n.slots.Invalidate(context.WithoutCancel(ctx))

	if n.publisher != nil {
		err := n.publisher.Publish(change.Type, change)
		if err == nil {
			return
		}
		n.logger.Warn("publish availability change failed, refreshing locally",
			zap.String("type", change.Type), zap.Error(err))
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
		defer cancel()
		if _, err := n.slots.Refresh(ctx); err != nil {
			n.logger.Warn("background snapshot refresh failed", zap.Error(err))
		}
	}()
}
