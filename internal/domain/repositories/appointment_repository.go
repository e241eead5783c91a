package repositories

import (
	"context"
	"time"

	"github.com/studioavelar/booking-backend/internal/domain/entities"
)

// AppointmentFilter narrows appointment listings
type AppointmentFilter struct {
	Status *entities.AppointmentStatus
	From   *time.Time
	To     *time.Time
	Limit  int
}

// AppointmentRepository defines appointment persistence operations.
// Appointment rows are only ever created through BookingRepository and are
// never deleted; lifecycle changes go through Update.
type AppointmentRepository interface {
	GetByID(ctx context.Context, id string) (*entities.Appointment, error)
	// ListActiveInRange returns PENDING and CONFIRMED appointments whose
	// interval intersects [from, to)
	ListActiveInRange(ctx context.Context, from, to time.Time) ([]*entities.Appointment, error)
	ListByUser(ctx context.Context, userID string, filter AppointmentFilter) ([]*entities.Appointment, error)
	Update(ctx context.Context, appointment *entities.Appointment) error
}
