package handlers

import (
	"net/http"

	"github.com/studioavelar/booking-backend/internal/domain/repositories"
)

// ServiceHandler exposes the bookable service catalog
type ServiceHandler struct {
	services repositories.ServiceRepository
}

// NewServiceHandler creates a new service handler
func NewServiceHandler(services repositories.ServiceRepository) *ServiceHandler {
	return &ServiceHandler{
		services: services,
	}
}

// ListServices handles GET /api/services
func (h *ServiceHandler) ListServices(w http.ResponseWriter, r *http.Request) {
	services, err := h.services.ListActive(r.Context())
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"services": services,
		"count":    len(services),
	})
}
