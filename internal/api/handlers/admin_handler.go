package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/studioavelar/booking-backend/internal/api/middleware"
	"github.com/studioavelar/booking-backend/internal/application/services"
	"github.com/studioavelar/booking-backend/internal/domain/entities"
	"github.com/studioavelar/booking-backend/internal/domain/repositories"
)

// LifecycleService defines the administrative appointment operations
type LifecycleService interface {
	Transition(ctx context.Context, id string, target entities.AppointmentStatus, opts services.TransitionOptions) (*entities.Appointment, error)
	RecordPayment(ctx context.Context, id, method string) (*entities.Appointment, error)
}

// AdminHandler handles the practitioner's administrative endpoints
type AdminHandler struct {
	lifecycle LifecycleService
	schedules repositories.ScheduleRepository
	location  *time.Location
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(lifecycle LifecycleService, schedules repositories.ScheduleRepository, location *time.Location) *AdminHandler {
	return &AdminHandler{
		lifecycle: lifecycle,
		schedules: schedules,
		location:  location,
	}
}

func (h *AdminHandler) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	if !middleware.IsAdmin(r.Context()) {
		respondWithError(w, http.StatusForbidden, "admin role required")
		return false
	}
	return true
}

type statusUpdateRequest struct {
	ID                 string `json:"id"`
	Status             string `json:"status"`
	CancellationReason string `json:"cancellationReason,omitempty"`
	PaymentMethod      string `json:"paymentMethod,omitempty"`
	ConfirmPayment     bool   `json:"confirmPayment,omitempty"`
}

// UpdateStatus handles PUT /api/admin/appointments/status
func (h *AdminHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	var payload statusUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if payload.ID == "" || payload.Status == "" {
		respondWithError(w, http.StatusBadRequest, "id and status are required")
		return
	}

	appointment, err := h.lifecycle.Transition(r.Context(), payload.ID,
		entities.AppointmentStatus(payload.Status),
		services.TransitionOptions{
			CancellationReason: payload.CancellationReason,
			PaymentMethod:      payload.PaymentMethod,
			ConfirmPayment:     payload.ConfirmPayment,
		})
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, appointment)
}

type paymentRequest struct {
	ID            string `json:"id"`
	PaymentMethod string `json:"paymentMethod"`
}

// RecordPayment handles POST /api/admin/appointments/payment
func (h *AdminHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	var payload paymentRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if payload.ID == "" {
		respondWithError(w, http.StatusBadRequest, "id is required")
		return
	}

	appointment, err := h.lifecycle.RecordPayment(r.Context(), payload.ID, payload.PaymentMethod)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, appointment)
}

// ListScheduleRules handles GET /api/admin/schedule/rules
func (h *AdminHandler) ListScheduleRules(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	rules, err := h.schedules.ListRules(r.Context())
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"rules": rules,
	})
}

type scheduleRuleRequest struct {
	Weekday      int     `json:"weekday"`
	StartTime    string  `json:"startTime"`
	EndTime      string  `json:"endTime"`
	SlotDuration int     `json:"slotDuration"`
	BreakStart   *string `json:"breakStart,omitempty"`
	BreakEnd     *string `json:"breakEnd,omitempty"`
	Active       bool    `json:"active"`
}

// UpsertScheduleRule handles PUT /api/admin/schedule/rules
func (h *AdminHandler) UpsertScheduleRule(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	var payload scheduleRuleRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if payload.Weekday < 0 || payload.Weekday > 6 {
		respondWithError(w, http.StatusBadRequest, "weekday must be between 0 (Sunday) and 6 (Saturday)")
		return
	}
	if payload.StartTime == "" || payload.EndTime == "" || payload.SlotDuration <= 0 {
		respondWithError(w, http.StatusBadRequest, "startTime, endTime and slotDuration are required")
		return
	}
	if (payload.BreakStart == nil) != (payload.BreakEnd == nil) {
		respondWithError(w, http.StatusBadRequest, "breakStart and breakEnd must be set together")
		return
	}

	now := time.Now()
	rule := &entities.ScheduleRule{
		ID:           uuid.New().String(),
		Weekday:      time.Weekday(payload.Weekday),
		StartTime:    payload.StartTime,
		EndTime:      payload.EndTime,
		SlotDuration: payload.SlotDuration,
		BreakStart:   payload.BreakStart,
		BreakEnd:     payload.BreakEnd,
		Active:       payload.Active,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := h.schedules.UpsertRule(r.Context(), rule); err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, rule)
}

type blockDateRequest struct {
	Date   string `json:"date"`
	Reason string `json:"reason,omitempty"`
}

// BlockDate handles POST /api/admin/schedule/blocked-dates
func (h *AdminHandler) BlockDate(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	var payload blockDateRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	date, err := time.ParseInLocation(dateLayout, payload.Date, h.location)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid date format (use YYYY-MM-DD)")
		return
	}

	blocked := &entities.BlockedDate{
		ID:        uuid.New().String(),
		Date:      date,
		Reason:    payload.Reason,
		CreatedAt: time.Now(),
	}
	if err := h.schedules.BlockDate(r.Context(), blocked); err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, blocked)
}

// UnblockDate handles DELETE /api/admin/schedule/blocked-dates/{date}
func (h *AdminHandler) UnblockDate(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	date, err := time.ParseInLocation(dateLayout, r.PathValue("date"), h.location)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid date format (use YYYY-MM-DD)")
		return
	}

	if err := h.schedules.UnblockDate(r.Context(), date); err != nil {
		respondWithAppError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
