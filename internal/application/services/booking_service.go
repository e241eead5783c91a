package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/studioavelar/booking-backend/internal/domain/entities"
	"github.com/studioavelar/booking-backend/internal/domain/providers"
	"github.com/studioavelar/booking-backend/internal/domain/repositories"
	apperrors "github.com/studioavelar/booking-backend/pkg/errors"
)

// BookingRequest carries a client's booking submission
type BookingRequest struct {
	UserID      string
	ServiceID   string
	ScheduledAt time.Time
	Type        entities.AppointmentType
	Location    string
	Address     string
	Notes       string
	PackageID   *string
}

// BookingResult is a successful booking with the package usage snapshot
// when a credit was consumed
type BookingResult struct {
	Appointment *entities.Appointment  `json:"appointment"`
	PackageInfo *entities.PackageUsage `json:"package_info,omitempty"`
}

// BookingService validates a booking request and commits it through the
// atomic booking repository. The availability read that preceded the
// request is advisory only; the repository re-checks conflicts inside its
// transaction, so concurrent submissions for overlapping intervals resolve
// to exactly one success.
type BookingService struct {
	bookings   repositories.BookingRepository
	services   repositories.ServiceRepository
	dispatcher providers.NotificationDispatcher
	now        func() time.Time
}

// NewBookingService creates a new booking service
func NewBookingService(
	bookings repositories.BookingRepository,
	services repositories.ServiceRepository,
	dispatcher providers.NotificationDispatcher,
) *BookingService {
	return &BookingService{
		bookings:   bookings,
		services:   services,
		dispatcher: dispatcher,
		now:        time.Now,
	}
}

// WithClock overrides the time source, used by tests
func (s *BookingService) WithClock(now func() time.Time) *BookingService {
	s.now = now
	return s
}

// Book creates a new PENDING appointment
func (s *BookingService) Book(ctx context.Context, req BookingRequest) (*BookingResult, error) {
	if req.UserID == "" {
		return nil, apperrors.NewValidationError("user id is required")
	}
	if req.ServiceID == "" {
		return nil, apperrors.NewValidationError("service id is required")
	}
	if req.ScheduledAt.IsZero() {
		return nil, apperrors.NewValidationError("scheduled time is required")
	}
	if !req.ScheduledAt.After(s.now()) {
		return nil, apperrors.NewValidationError("scheduled time must be in the future")
	}

	apptType := req.Type
	if apptType == "" {
		apptType = entities.AppointmentTypeFirst
	}
	if apptType != entities.AppointmentTypeFirst && apptType != entities.AppointmentTypeReturn {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown appointment type %q", req.Type))
	}

	service, err := s.services.GetByID(ctx, req.ServiceID)
	if err != nil {
		return nil, err
	}
	if !service.Active {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("service with id %s not found", req.ServiceID))
	}

	now := s.now()
	appointment := &entities.Appointment{
		ID:            uuid.New().String(),
		UserID:        req.UserID,
		ServiceID:     req.ServiceID,
		PackageID:     req.PackageID,
		ScheduledAt:   req.ScheduledAt,
		EndAt:         req.ScheduledAt.Add(time.Duration(service.Duration) * time.Minute),
		Status:        entities.AppointmentStatusPending,
		Type:          apptType,
		Location:      req.Location,
		Address:       req.Address,
		Price:         service.PriceFor(apptType),
		Notes:         req.Notes,
		PaymentStatus: entities.PaymentStatusUnpaid,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	usage, err := s.bookings.Book(ctx, appointment)
	if err != nil {
		return nil, err
	}

	// Post-commit side effect. A dispatch failure must never surface as a
	// booking failure, so it runs detached and is only logged.
	go s.notify(appointment)

	return &BookingResult{Appointment: appointment, PackageInfo: usage}, nil
}

func (s *BookingService) notify(appointment *entities.Appointment) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	sent, err := s.dispatcher.NotifyBooking(ctx, appointment)
	if err != nil {
		log.Warn().Err(err).Str("appointment_id", appointment.ID).Msg("booking notification dispatch failed")
		return
	}
	log.Debug().Bool("sent", sent).Str("appointment_id", appointment.ID).Msg("booking notification dispatched")
}
