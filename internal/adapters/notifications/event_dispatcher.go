package notifications

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/studioavelar/booking-backend/internal/domain/entities"
	"github.com/studioavelar/booking-backend/internal/domain/providers"
	"github.com/studioavelar/booking-backend/pkg/retry"
)

// BookingEventsChannel is the bus channel the delivery worker consumes
const BookingEventsChannel = "booking.events"

// EventDispatcher implements NotificationDispatcher by publishing booking
// events onto the event bus. Message rendering and delivery (chat, email)
// happen in an external worker; this adapter only hands the event off,
// retrying briefly on transient bus failures.
type EventDispatcher struct {
	bus     providers.EventBus
	channel string
	retry   retry.Config
}

// NewEventDispatcher creates a dispatcher publishing on the default channel
func NewEventDispatcher(bus providers.EventBus) providers.NotificationDispatcher {
	return &EventDispatcher{
		bus:     bus,
		channel: BookingEventsChannel,
		retry:   retry.DispatchConfig(),
	}
}

// NotifyBooking publishes a booking-created event
func (d *EventDispatcher) NotifyBooking(ctx context.Context, appointment *entities.Appointment) (bool, error) {
	return d.publish(ctx, entities.BookingEventCreated, appointment, "")
}

// NotifyCancellation publishes a booking-cancelled event
func (d *EventDispatcher) NotifyCancellation(ctx context.Context, appointment *entities.Appointment) (bool, error) {
	return d.publish(ctx, entities.BookingEventCancelled, appointment, appointment.CancellationReason)
}

func (d *EventDispatcher) publish(ctx context.Context, kind entities.BookingEventKind, appointment *entities.Appointment, reason string) (bool, error) {
	event := &entities.BookingEvent{
		ID:            uuid.New().String(),
		Kind:          kind,
		AppointmentID: appointment.ID,
		UserID:        appointment.UserID,
		ServiceID:     appointment.ServiceID,
		ScheduledAt:   appointment.ScheduledAt,
		Location:      appointment.Location,
		Reason:        reason,
		OccurredAt:    time.Now(),
	}

	err := retry.Do(ctx, d.retry, func() error {
		return d.bus.Publish(ctx, d.channel, event)
	}, func(attempt int, err error, nextDelay time.Duration) {
		log.Warn().
			Err(err).
			Int("attempt", attempt).
			Dur("next_delay", nextDelay).
			Str("event_id", event.ID).
			Msg("notification publish failed, retrying")
	})
	if err != nil {
		return false, err
	}
	return true, nil
}
