package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/studioavelar/booking-backend/internal/domain/entities"
	"github.com/studioavelar/booking-backend/internal/domain/repositories"
	"github.com/studioavelar/booking-backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/studioavelar/booking-backend/pkg/errors"
)

var appointmentColumns = []interface{}{
	"id", "user_id", "service_id", "package_id", "scheduled_at", "end_at",
	"status", "type", "location", "address", "price", "travel_fee", "notes",
	"cancelled_at", "cancellation_reason", "payment_status", "payment_method",
	"created_at", "updated_at",
}

// AppointmentAdapter implements the AppointmentRepository interface
type AppointmentAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewAppointmentAdapter creates a new appointment adapter
func NewAppointmentAdapter(client *postgres.Client) repositories.AppointmentRepository {
	return &AppointmentAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// GetByID retrieves an appointment by ID
func (a *AppointmentAdapter) GetByID(ctx context.Context, id string) (*entities.Appointment, error) {
	query, args, err := a.db.Select(appointmentColumns...).
		From("appointments").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	appointment, err := scanAppointment(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("appointment with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get appointment", err)
	}
	return appointment, nil
}

// ListActiveInRange returns PENDING and CONFIRMED appointments whose
// interval intersects [from, to)
func (a *AppointmentAdapter) ListActiveInRange(ctx context.Context, from, to time.Time) ([]*entities.Appointment, error) {
	query, args, err := a.db.Select(appointmentColumns...).
		From("appointments").
		Where(
			goqu.C("status").In(string(entities.AppointmentStatusPending), string(entities.AppointmentStatusConfirmed)),
			goqu.C("scheduled_at").Lt(to),
			goqu.C("end_at").Gt(from),
		).
		Order(goqu.C("scheduled_at").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list active appointments", err)
	}
	defer rows.Close()

	return collectAppointments(rows)
}

// ListByUser returns a user's appointments, newest first
func (a *AppointmentAdapter) ListByUser(ctx context.Context, userID string, filter repositories.AppointmentFilter) ([]*entities.Appointment, error) {
	ds := a.db.Select(appointmentColumns...).
		From("appointments").
		Where(goqu.Ex{"user_id": userID})

	if filter.Status != nil {
		ds = ds.Where(goqu.Ex{"status": string(*filter.Status)})
	}
	if filter.From != nil {
		ds = ds.Where(goqu.C("scheduled_at").Gte(*filter.From))
	}
	if filter.To != nil {
		ds = ds.Where(goqu.C("scheduled_at").Lt(*filter.To))
	}

	ds = ds.Order(goqu.C("scheduled_at").Desc())
	if filter.Limit > 0 {
		ds = ds.Limit(uint(filter.Limit))
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list appointments", err)
	}
	defer rows.Close()

	return collectAppointments(rows)
}

// Update persists lifecycle changes to an appointment
func (a *AppointmentAdapter) Update(ctx context.Context, appointment *entities.Appointment) error {
	appointment.UpdatedAt = time.Now()

	record := goqu.Record{
		"status":              string(appointment.Status),
		"cancelled_at":        appointment.CancelledAt,
		"cancellation_reason": nullIfEmpty(appointment.CancellationReason),
		"payment_status":      string(appointment.PaymentStatus),
		"payment_method":      nullIfEmpty(appointment.PaymentMethod),
		"notes":               nullIfEmpty(appointment.Notes),
		"updated_at":          appointment.UpdatedAt,
	}

	query, args, err := a.db.Update("appointments").
		Set(record).
		Where(goqu.Ex{"id": appointment.ID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to update appointment", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to read update result", err)
	}
	if affected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("appointment with id %s not found", appointment.ID))
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAppointment(row rowScanner) (*entities.Appointment, error) {
	appointment := &entities.Appointment{}
	var packageID, address, notes, cancellationReason, paymentMethod sql.NullString
	var cancelledAt sql.NullTime

	err := row.Scan(
		&appointment.ID,
		&appointment.UserID,
		&appointment.ServiceID,
		&packageID,
		&appointment.ScheduledAt,
		&appointment.EndAt,
		&appointment.Status,
		&appointment.Type,
		&appointment.Location,
		&address,
		&appointment.Price,
		&appointment.TravelFee,
		&notes,
		&cancelledAt,
		&cancellationReason,
		&appointment.PaymentStatus,
		&paymentMethod,
		&appointment.CreatedAt,
		&appointment.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if packageID.Valid {
		appointment.PackageID = &packageID.String
	}
	appointment.Address = address.String
	appointment.Notes = notes.String
	appointment.CancellationReason = cancellationReason.String
	appointment.PaymentMethod = paymentMethod.String
	if cancelledAt.Valid {
		appointment.CancelledAt = &cancelledAt.Time
	}
	return appointment, nil
}

func collectAppointments(rows *sql.Rows) ([]*entities.Appointment, error) {
	var appointments []*entities.Appointment
	for rows.Next() {
		appointment, err := scanAppointment(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan appointment", err)
		}
		appointments = append(appointments, appointment)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate appointments", err)
	}
	return appointments, nil
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
