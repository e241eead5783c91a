package notifications

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/studioavelar/booking-backend/internal/domain/entities"
	"github.com/studioavelar/booking-backend/internal/domain/providers"
)

// LogDispatcher is the fallback used when no event bus is configured. It
// records the would-be notification and reports it as not sent.
type LogDispatcher struct{}

// NewLogDispatcher creates a dispatcher that only logs
func NewLogDispatcher() providers.NotificationDispatcher {
	return &LogDispatcher{}
}

// NotifyBooking logs the booking event
func (d *LogDispatcher) NotifyBooking(ctx context.Context, appointment *entities.Appointment) (bool, error) {
	log.Info().
		Str("appointment_id", appointment.ID).
		Time("scheduled_at", appointment.ScheduledAt).
		Msg("booking notification skipped, no event bus configured")
	return false, nil
}

// NotifyCancellation logs the cancellation event
func (d *LogDispatcher) NotifyCancellation(ctx context.Context, appointment *entities.Appointment) (bool, error) {
	log.Info().
		Str("appointment_id", appointment.ID).
		Str("reason", appointment.CancellationReason).
		Msg("cancellation notification skipped, no event bus configured")
	return false, nil
}
