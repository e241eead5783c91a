package repositories

import (
	"context"

	"github.com/studioavelar/booking-backend/internal/domain/entities"
)

// BookingRepository is the atomic create-appointment operation. Book runs a
// single database transaction that re-checks interval conflicts against the
// committed active appointments, consumes one package credit when the
// appointment references a package, and inserts the PENDING appointment.
// Any failure rolls the whole unit back. The returned usage snapshot is nil
// when no package was involved.
type BookingRepository interface {
	Book(ctx context.Context, appointment *entities.Appointment) (*entities.PackageUsage, error)
}
