package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/studioavelar/booking-backend/internal/domain/entities"
	"github.com/studioavelar/booking-backend/internal/domain/providers"
	"github.com/studioavelar/booking-backend/internal/domain/repositories"
	"github.com/studioavelar/booking-backend/internal/infrastructure/observability"
	apperrors "github.com/studioavelar/booking-backend/pkg/errors"
)

// TransitionOptions carries the side-effect inputs of a status transition
type TransitionOptions struct {
	CancellationReason string
	PaymentMethod      string
	ConfirmPayment     bool
}

// LifecycleService owns every appointment status change. The transition
// table lives on the status type; no caller mutates appointment status
// through any other path.
type LifecycleService struct {
	appointments repositories.AppointmentRepository
	packages     repositories.PackageRepository
	payments     repositories.PaymentRepository
	dispatcher   providers.NotificationDispatcher
	cancelWindow time.Duration
	now          func() time.Time
}

// NewLifecycleService creates a new lifecycle service
func NewLifecycleService(
	appointments repositories.AppointmentRepository,
	packages repositories.PackageRepository,
	payments repositories.PaymentRepository,
	dispatcher providers.NotificationDispatcher,
	cancellationWindowHours int,
) *LifecycleService {
	return &LifecycleService{
		appointments: appointments,
		packages:     packages,
		payments:     payments,
		dispatcher:   dispatcher,
		cancelWindow: time.Duration(cancellationWindowHours) * time.Hour,
		now:          time.Now,
	}
}

// WithClock overrides the time source, used by tests
func (s *LifecycleService) WithClock(now func() time.Time) *LifecycleService {
	s.now = now
	return s
}

// Cancel is the client-facing cancellation. It enforces the cancellation
// window on top of the state machine and reverses a package credit when
// one funded the booking.
func (s *LifecycleService) Cancel(ctx context.Context, id, userID, reason string) (*entities.Appointment, error) {
	appointment, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if userID != "" && appointment.UserID != userID {
		// Do not reveal other users' appointments
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("appointment with id %s not found", id))
	}

	if !appointment.Status.CanTransitionTo(entities.AppointmentStatusCancelled) {
		return nil, transitionError(appointment.Status, entities.AppointmentStatusCancelled)
	}

	now := s.now()
	if appointment.ScheduledAt.Sub(now) < s.cancelWindow {
		return nil, apperrors.NewBusinessRuleError(fmt.Sprintf(
			"cancellation is allowed until %d hours before the session",
			int(s.cancelWindow.Hours()),
		))
	}

	s.markCancelled(appointment, reason, now)
	if err := s.appointments.Update(ctx, appointment); err != nil {
		return nil, err
	}

	s.reverseCredit(ctx, appointment)
	go s.notifyCancellation(appointment)

	return appointment, nil
}

// Transition is the administrative status change. It validates the target
// against the state machine and applies completion and cancellation side
// effects. The cancellation window does not apply here; the practitioner
// may cancel at any time.
func (s *LifecycleService) Transition(ctx context.Context, id string, target entities.AppointmentStatus, opts TransitionOptions) (*entities.Appointment, error) {
	if !target.IsValid() {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown status %q", string(target)))
	}

	appointment, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !appointment.Status.CanTransitionTo(target) {
		return nil, transitionError(appointment.Status, target)
	}

	now := s.now()
	switch target {
	case entities.AppointmentStatusCancelled:
		s.markCancelled(appointment, opts.CancellationReason, now)
	case entities.AppointmentStatusCompleted:
		if err := s.applyCompletion(ctx, appointment, opts, now); err != nil {
			return nil, err
		}
		appointment.Status = entities.AppointmentStatusCompleted
	default:
		appointment.Status = target
	}

	if err := s.appointments.Update(ctx, appointment); err != nil {
		return nil, err
	}

	if target == entities.AppointmentStatusCancelled {
		s.reverseCredit(ctx, appointment)
		go s.notifyCancellation(appointment)
	}

	return appointment, nil
}

// RecordPayment records an in-person payment for an appointment that was
// completed without payment confirmation
func (s *LifecycleService) RecordPayment(ctx context.Context, id, method string) (*entities.Appointment, error) {
	if method == "" {
		return nil, apperrors.NewValidationError("payment method is required")
	}

	appointment, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if appointment.Status != entities.AppointmentStatusCompleted {
		return nil, apperrors.NewBusinessRuleError("payment can only be recorded for completed appointments")
	}
	if appointment.PaymentStatus != entities.PaymentStatusUnpaid {
		return nil, apperrors.NewBusinessRuleError("appointment is already paid")
	}

	now := s.now()
	if err := s.createPayment(ctx, appointment, method, now); err != nil {
		return nil, err
	}
	appointment.PaymentStatus = entities.PaymentStatusPaidInPerson
	appointment.PaymentMethod = method

	if err := s.appointments.Update(ctx, appointment); err != nil {
		return nil, err
	}
	return appointment, nil
}

func (s *LifecycleService) markCancelled(appointment *entities.Appointment, reason string, now time.Time) {
	appointment.Status = entities.AppointmentStatusCancelled
	appointment.CancelledAt = &now
	appointment.CancellationReason = reason
}

// applyCompletion settles payment state when an appointment completes.
// Revenue is recognized once: a confirmed in-person payment creates the
// payment record, an online payment stays as it is, and anything else
// remains UNPAID until recorded manually.
func (s *LifecycleService) applyCompletion(ctx context.Context, appointment *entities.Appointment, opts TransitionOptions, now time.Time) error {
	if opts.ConfirmPayment && opts.PaymentMethod != "" {
		if err := s.createPayment(ctx, appointment, opts.PaymentMethod, now); err != nil {
			return err
		}
		appointment.PaymentStatus = entities.PaymentStatusPaidInPerson
		appointment.PaymentMethod = opts.PaymentMethod
		return nil
	}
	if appointment.PaymentStatus != entities.PaymentStatusPaidOnline {
		appointment.PaymentStatus = entities.PaymentStatusUnpaid
	}
	return nil
}

func (s *LifecycleService) createPayment(ctx context.Context, appointment *entities.Appointment, method string, now time.Time) error {
	return s.payments.Create(ctx, &entities.Payment{
		ID:            uuid.New().String(),
		AppointmentID: appointment.ID,
		Amount:        appointment.TotalDue(),
		Method:        method,
		Status:        entities.PaymentRecordStatusConfirmed,
		PaidAt:        now,
		CreatedAt:     now,
	})
}

// packageLinkedSince is when bookings started persisting the funding
// package on the appointment row. A newer row without a package reference
// was never package-funded and gets no reversal.
var packageLinkedSince = time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)

// reverseCredit returns one session to the package that funded the
// booking. Only appointments created before the package reference was
// stored fall back to the newest active package for the same service;
// failures are logged and never fail the cancellation.
func (s *LifecycleService) reverseCredit(ctx context.Context, appointment *entities.Appointment) {
	packageID := ""
	if appointment.PackageID != nil {
		packageID = *appointment.PackageID
	} else {
		if !appointment.CreatedAt.Before(packageLinkedSince) {
			return
		}
		pkg, err := s.packages.FindReversible(ctx, appointment.UserID, appointment.ServiceID)
		if err != nil {
			observability.AppointmentLogger(ctx, appointment.ID).Warn().Err(err).Msg("credit reversal lookup failed")
			return
		}
		if pkg == nil {
			return
		}
		packageID = pkg.ID
	}

	if err := s.packages.ReverseCredit(ctx, packageID); err != nil {
		observability.AppointmentLogger(ctx, appointment.ID).Warn().Err(err).
			Str("package_id", packageID).
			Msg("credit reversal failed")
	}
}

func (s *LifecycleService) notifyCancellation(appointment *entities.Appointment) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if _, err := s.dispatcher.NotifyCancellation(ctx, appointment); err != nil {
		observability.AppointmentLogger(ctx, appointment.ID).Warn().Err(err).Msg("cancellation notification dispatch failed")
	}
}

func transitionError(current, target entities.AppointmentStatus) error {
	allowed := current.AllowedTransitions()
	if len(allowed) == 0 {
		return apperrors.NewBusinessRuleError(fmt.Sprintf(
			"cannot transition from %s to %s: %s is a final state",
			current, target, current,
		))
	}
	names := make([]string, len(allowed))
	for i, status := range allowed {
		names[i] = string(status)
	}
	return apperrors.NewBusinessRuleError(fmt.Sprintf(
		"cannot transition from %s to %s; allowed next states: %s",
		current, target, strings.Join(names, ", "),
	))
}
