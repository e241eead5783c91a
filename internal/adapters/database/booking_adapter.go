package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/rs/zerolog/log"
	"github.com/studioavelar/booking-backend/internal/domain/entities"
	"github.com/studioavelar/booking-backend/internal/domain/repositories"
	"github.com/studioavelar/booking-backend/internal/domain/scheduling"
	"github.com/studioavelar/booking-backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/studioavelar/booking-backend/pkg/errors"
)

// BookingAdapter implements the BookingRepository interface. The whole
// booking is one transaction: advisory locks serialize concurrent attempts
// touching the same calendar days, the conflict predicate is re-run
// against committed rows, and the package credit (when present) is consumed
// with the appointment insert. Among concurrent attempts for overlapping
// intervals exactly one commits; the rest observe a conflict error.
type BookingAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewBookingAdapter creates a new booking adapter
func NewBookingAdapter(client *postgres.Client) repositories.BookingRepository {
	return &BookingAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Book atomically validates and inserts a new PENDING appointment
func (a *BookingAdapter) Book(ctx context.Context, appointment *entities.Appointment) (*entities.PackageUsage, error) {
	tx, err := a.client.BeginTx(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to begin booking transaction", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
			log.Warn().Err(err).Msg("booking transaction rollback failed")
		}
	}()

	if err := a.lockCalendarDays(ctx, tx, appointment.ScheduledAt, appointment.EndAt); err != nil {
		return nil, err
	}

	if err := a.checkConflicts(ctx, tx, appointment); err != nil {
		return nil, err
	}

	var usage *entities.PackageUsage
	if appointment.PackageID != nil {
		usage, err = a.consumeCredit(ctx, tx, *appointment.PackageID)
		if err != nil {
			return nil, err
		}
	}

	if err := a.insertAppointment(ctx, tx, appointment); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, apperrors.NewInternalError("failed to commit booking transaction", err)
	}
	return usage, nil
}

// lockCalendarDays takes a transaction-scoped advisory lock on every
// calendar day the interval [scheduledAt, endAt) touches, so concurrent
// bookings are serialized even when no existing row can be row-locked.
// An interval that straddles midnight locks both days; locks are taken
// in chronological order so two transactions never wait on each other.
func (a *BookingAdapter) lockCalendarDays(ctx context.Context, tx *sql.Tx, scheduledAt, endAt time.Time) error {
	for day := startOfDay(scheduledAt); day.Before(endAt); day = day.AddDate(0, 0, 1) {
		key := fmt.Sprintf("appointments:%s", day.Format("2006-01-02"))
		if _, err := tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock(hashtext($1))", key); err != nil {
			return apperrors.NewInternalError("failed to lock calendar day", err)
		}
	}
	return nil
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func (a *BookingAdapter) checkConflicts(ctx context.Context, tx *sql.Tx, appointment *entities.Appointment) error {
	query, args, err := a.db.Select("id", "scheduled_at", "end_at").
		From("appointments").
		Where(
			goqu.C("status").In(string(entities.AppointmentStatusPending), string(entities.AppointmentStatusConfirmed)),
			goqu.C("scheduled_at").Lt(appointment.EndAt),
			goqu.C("end_at").Gt(appointment.ScheduledAt),
		).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build conflict query", err)
	}

	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to check conflicts", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		var scheduledAt, endAt time.Time
		if err := rows.Scan(&id, &scheduledAt, &endAt); err != nil {
			return apperrors.NewInternalError("failed to scan conflicting appointment", err)
		}
		if scheduling.Overlaps(appointment.ScheduledAt, appointment.EndAt, scheduledAt, endAt) {
			return apperrors.NewConflictError("the requested time is no longer available")
		}
	}
	if err := rows.Err(); err != nil {
		return apperrors.NewInternalError("failed to iterate conflicts", err)
	}
	return nil
}

func (a *BookingAdapter) consumeCredit(ctx context.Context, tx *sql.Tx, packageID string) (*entities.PackageUsage, error) {
	query, args, err := a.db.Select("id", "status", "total_sessions", "used_sessions").
		From("packages").
		Where(goqu.Ex{"id": packageID}).
		ForUpdate(exp.Wait).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build package query", err)
	}

	var pkg entities.Package
	err = tx.QueryRowContext(ctx, query, args...).Scan(&pkg.ID, &pkg.Status, &pkg.TotalSessions, &pkg.UsedSessions)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("package with id %s not found", packageID))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to load package", err)
	}

	if !pkg.HasCredit() {
		return nil, apperrors.NewBusinessRuleError("package has no remaining sessions")
	}

	used := pkg.UsedSessions + 1
	status := entities.PackageStatusActive
	if used >= pkg.TotalSessions {
		status = entities.PackageStatusCompleted
	}

	update, args, err := a.db.Update("packages").
		Set(goqu.Record{
			"used_sessions": used,
			"status":        string(status),
			"updated_at":    time.Now(),
		}).
		Where(goqu.Ex{"id": packageID}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build package update", err)
	}
	if _, err := tx.ExecContext(ctx, update, args...); err != nil {
		return nil, apperrors.NewInternalError("failed to consume package credit", err)
	}

	return &entities.PackageUsage{
		PackageID:         pkg.ID,
		UsedSessions:      used,
		TotalSessions:     pkg.TotalSessions,
		RemainingSessions: pkg.TotalSessions - used,
	}, nil
}

func (a *BookingAdapter) insertAppointment(ctx context.Context, tx *sql.Tx, appointment *entities.Appointment) error {
	record := goqu.Record{
		"id":                  appointment.ID,
		"user_id":             appointment.UserID,
		"service_id":          appointment.ServiceID,
		"package_id":          appointment.PackageID,
		"scheduled_at":        appointment.ScheduledAt,
		"end_at":              appointment.EndAt,
		"status":              string(appointment.Status),
		"type":                string(appointment.Type),
		"location":            appointment.Location,
		"address":             nullIfEmpty(appointment.Address),
		"price":               appointment.Price,
		"travel_fee":          appointment.TravelFee,
		"notes":               nullIfEmpty(appointment.Notes),
		"payment_status":      string(appointment.PaymentStatus),
		"created_at":          appointment.CreatedAt,
		"updated_at":          appointment.UpdatedAt,
	}

	query, args, err := a.db.Insert("appointments").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to create appointment", err)
	}
	return nil
}
