package repositories

import (
	"context"

	"github.com/studioavelar/booking-backend/internal/domain/entities"
)

// PaymentRepository defines payment record persistence
type PaymentRepository interface {
	Create(ctx context.Context, payment *entities.Payment) error
	GetByAppointment(ctx context.Context, appointmentID string) (*entities.Payment, error)
}
