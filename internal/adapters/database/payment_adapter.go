package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/studioavelar/booking-backend/internal/domain/entities"
	"github.com/studioavelar/booking-backend/internal/domain/repositories"
	apperrors "github.com/studioavelar/booking-backend/pkg/errors"
)

// PaymentAdapter implements the PaymentRepository interface over sqlx
type PaymentAdapter struct {
	db *sqlx.DB
}

// NewPaymentAdapter creates a new payment adapter
func NewPaymentAdapter(db *sqlx.DB) repositories.PaymentRepository {
	return &PaymentAdapter{db: db}
}

// Create records a payment for an appointment
func (a *PaymentAdapter) Create(ctx context.Context, payment *entities.Payment) error {
	const query = `
		INSERT INTO payments (id, appointment_id, amount, method, status, paid_at, created_at)
		VALUES (:id, :appointment_id, :amount, :method, :status, :paid_at, :created_at)`

	if _, err := a.db.NamedExecContext(ctx, query, payment); err != nil {
		return apperrors.NewInternalError("failed to create payment", err)
	}
	return nil
}

// GetByAppointment returns the payment recorded for an appointment
func (a *PaymentAdapter) GetByAppointment(ctx context.Context, appointmentID string) (*entities.Payment, error) {
	const query = `
		SELECT id, appointment_id, amount, method, status, paid_at, created_at
		FROM payments
		WHERE appointment_id = $1`

	payment := &entities.Payment{}
	err := a.db.GetContext(ctx, payment, query, appointmentID)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("no payment recorded for appointment %s", appointmentID))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get payment", err)
	}
	return payment, nil
}
