package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/studioavelar/booking-backend/internal/api/middleware"
	"github.com/studioavelar/booking-backend/internal/application/services"
	"github.com/studioavelar/booking-backend/internal/domain/entities"
	"github.com/studioavelar/booking-backend/internal/domain/repositories"
)

// BookingService defines the booking operation used by the handler
type BookingService interface {
	Book(ctx context.Context, req services.BookingRequest) (*services.BookingResult, error)
}

// CancellationService defines the client-facing cancellation operation
type CancellationService interface {
	Cancel(ctx context.Context, id, userID, reason string) (*entities.Appointment, error)
}

// AppointmentHandler handles client appointment requests
type AppointmentHandler struct {
	booking      BookingService
	cancellation CancellationService
	appointments repositories.AppointmentRepository
}

// NewAppointmentHandler creates a new appointment handler
func NewAppointmentHandler(
	booking BookingService,
	cancellation CancellationService,
	appointments repositories.AppointmentRepository,
) *AppointmentHandler {
	return &AppointmentHandler{
		booking:      booking,
		cancellation: cancellation,
		appointments: appointments,
	}
}

type bookingRequest struct {
	UserID      string  `json:"userId"`
	ServiceID   string  `json:"serviceId"`
	ScheduledAt string  `json:"scheduledAt"`
	Type        string  `json:"type,omitempty"`
	Location    string  `json:"location,omitempty"`
	Address     string  `json:"address,omitempty"`
	Notes       string  `json:"notes,omitempty"`
	PackageID   *string `json:"packageId,omitempty"`
}

// BookAppointment handles POST /api/appointments
func (h *AppointmentHandler) BookAppointment(w http.ResponseWriter, r *http.Request) {
	var payload bookingRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	if userID := middleware.UserIDFromContext(r.Context()); userID != "" {
		payload.UserID = userID
	}

	var scheduledAt time.Time
	if payload.ScheduledAt != "" {
		var err error
		scheduledAt, err = time.Parse(time.RFC3339, payload.ScheduledAt)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid scheduledAt format (use RFC3339)")
			return
		}
	}

	result, err := h.booking.Book(r.Context(), services.BookingRequest{
		UserID:      payload.UserID,
		ServiceID:   payload.ServiceID,
		ScheduledAt: scheduledAt,
		Type:        entities.AppointmentType(payload.Type),
		Location:    payload.Location,
		Address:     payload.Address,
		Notes:       payload.Notes,
		PackageID:   payload.PackageID,
	})
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, result)
}

type appointmentActionRequest struct {
	AppointmentID string `json:"appointmentId"`
	Action        string `json:"action"`
	Reason        string `json:"reason,omitempty"`
}

// UpdateAppointment handles PATCH /api/appointments. Cancellation is the
// only client-side action.
func (h *AppointmentHandler) UpdateAppointment(w http.ResponseWriter, r *http.Request) {
	var payload appointmentActionRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if payload.AppointmentID == "" {
		respondWithError(w, http.StatusBadRequest, "appointmentId is required")
		return
	}
	if payload.Action != "cancel" {
		respondWithError(w, http.StatusBadRequest, "unsupported action")
		return
	}

	userID := middleware.UserIDFromContext(r.Context())
	if middleware.IsAdmin(r.Context()) {
		// The practitioner cancels through the admin surface, but an
		// explicit client cancellation from the admin UI skips the
		// ownership check
		userID = ""
	}

	appointment, err := h.cancellation.Cancel(r.Context(), payload.AppointmentID, userID, payload.Reason)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, appointment)
}

// ListAppointments handles GET /api/appointments
func (h *AppointmentHandler) ListAppointments(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if authUser := middleware.UserIDFromContext(r.Context()); authUser != "" && !middleware.IsAdmin(r.Context()) {
		userID = authUser
	}
	if userID == "" {
		respondWithError(w, http.StatusBadRequest, "userId query parameter is required")
		return
	}

	filter := repositories.AppointmentFilter{}
	if statusStr := r.URL.Query().Get("status"); statusStr != "" {
		status := entities.AppointmentStatus(statusStr)
		if !status.IsValid() {
			respondWithError(w, http.StatusBadRequest, "unknown status filter")
			return
		}
		filter.Status = &status
	}

	appointments, err := h.appointments.ListByUser(r.Context(), userID, filter)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"appointments": appointments,
		"count":        len(appointments),
	})
}
