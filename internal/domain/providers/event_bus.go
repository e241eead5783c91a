package providers

import (
	"context"

	"github.com/studioavelar/booking-backend/internal/domain/entities"
)

// EventBus defines the interface for publishing and subscribing to booking
// events
type EventBus interface {
	Publish(ctx context.Context, channel string, event *entities.BookingEvent) error
	Subscribe(ctx context.Context, channel string) (<-chan *entities.BookingEvent, error)
	Unsubscribe(ctx context.Context, channel string) error
	Close() error
}
