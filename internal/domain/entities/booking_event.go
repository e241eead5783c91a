package entities

import "time"

// BookingEventKind identifies the kind of calendar change an event carries
type BookingEventKind string

const (
	BookingEventCreated   BookingEventKind = "booking.created"
	BookingEventCancelled BookingEventKind = "booking.cancelled"
)

// BookingEvent is the envelope published on the event bus after a booking
// or cancellation commits. Delivery to the client (chat message, email) is
// handled by an external worker consuming these events.
type BookingEvent struct {
	ID            string           `json:"id"`
	Kind          BookingEventKind `json:"kind"`
	AppointmentID string           `json:"appointment_id"`
	UserID        string           `json:"user_id"`
	ServiceID     string           `json:"service_id"`
	ScheduledAt   time.Time        `json:"scheduled_at"`
	Location      string           `json:"location,omitempty"`
	Reason        string           `json:"reason,omitempty"`
	OccurredAt    time.Time        `json:"occurred_at"`
}
