package service

import (
	"context"

	"github.com/Eursukkul/dojo-booking/internal/models"
)

// AvailabilityService is the remote spreadsheet-backed booking store.
type AvailabilityService interface {
	FetchSnapshot(ctx context.Context) (*models.RemoteState, error)
	Submit(ctx context.Context, b *models.BookingRequest) error
	Delete(ctx context.Context, date, time string) error
}

// EventPublisher fans availability changes out to other instances.
type EventPublisher interface {
	Publish(routingKey string, payload any) error
}
