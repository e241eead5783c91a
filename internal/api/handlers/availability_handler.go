package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/studioavelar/booking-backend/internal/application/services"
)

const dateLayout = "2006-01-02"

// AvailabilityService defines the availability operations used by the handler
type AvailabilityService interface {
	SlotsForDate(ctx context.Context, date time.Time, serviceID string) (*services.DaySlots, error)
	DayStatusesForRange(ctx context.Context, from, to time.Time) ([]services.DayAvailability, error)
}

// AvailabilityHandler handles availability queries
type AvailabilityHandler struct {
	service  AvailabilityService
	location *time.Location
}

// NewAvailabilityHandler creates a new availability handler. Dates in
// query parameters are interpreted in the given business location.
func NewAvailabilityHandler(service AvailabilityService, location *time.Location) *AvailabilityHandler {
	return &AvailabilityHandler{
		service:  service,
		location: location,
	}
}

// GetAvailability handles GET /api/availability in two modes: slot listing
// for a single date, and day statuses for a range when mode=days
func (h *AvailabilityHandler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("mode") == "days" {
		h.getDayStatuses(w, r)
		return
	}
	h.getSlots(w, r)
}

func (h *AvailabilityHandler) getSlots(w http.ResponseWriter, r *http.Request) {
	dateStr := r.URL.Query().Get("date")
	serviceID := r.URL.Query().Get("serviceId")

	if dateStr == "" || serviceID == "" {
		respondWithError(w, http.StatusBadRequest, "date and serviceId query parameters are required")
		return
	}

	date, err := time.ParseInLocation(dateLayout, dateStr, h.location)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid date format (use YYYY-MM-DD)")
		return
	}

	result, err := h.service.SlotsForDate(r.Context(), date, serviceID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

func (h *AvailabilityHandler) getDayStatuses(w http.ResponseWriter, r *http.Request) {
	startStr := r.URL.Query().Get("startDate")
	endStr := r.URL.Query().Get("endDate")

	if startStr == "" || endStr == "" {
		respondWithError(w, http.StatusBadRequest, "startDate and endDate query parameters are required")
		return
	}

	from, err := time.ParseInLocation(dateLayout, startStr, h.location)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid startDate format (use YYYY-MM-DD)")
		return
	}
	to, err := time.ParseInLocation(dateLayout, endStr, h.location)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid endDate format (use YYYY-MM-DD)")
		return
	}

	days, err := h.service.DayStatusesForRange(r.Context(), from, to)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"days": days,
	})
}
