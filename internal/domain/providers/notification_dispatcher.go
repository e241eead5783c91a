package providers

import (
	"context"

	"github.com/studioavelar/booking-backend/internal/domain/entities"
)

// NotificationDispatcher hands booking side effects to the external
// notification pipeline. Dispatch is fire-and-forget: callers invoke it
// after their transaction commits and only log failures.
type NotificationDispatcher interface {
	NotifyBooking(ctx context.Context, appointment *entities.Appointment) (bool, error)
	NotifyCancellation(ctx context.Context, appointment *entities.Appointment) (bool, error)
}
