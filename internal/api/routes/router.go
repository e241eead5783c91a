package routes

import (
	"net/http"

	"github.com/studioavelar/booking-backend/internal/api/handlers"
	"github.com/studioavelar/booking-backend/internal/api/middleware"
	"github.com/studioavelar/booking-backend/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	availabilityHandler *handlers.AvailabilityHandler
	appointmentHandler  *handlers.AppointmentHandler
	adminHandler        *handlers.AdminHandler
	serviceHandler      *handlers.ServiceHandler

	metrics *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	availabilityHandler *handlers.AvailabilityHandler,
	appointmentHandler *handlers.AppointmentHandler,
	adminHandler *handlers.AdminHandler,
	serviceHandler *handlers.ServiceHandler,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux: http.NewServeMux(),

		availabilityHandler: availabilityHandler,
		appointmentHandler:  appointmentHandler,
		adminHandler:        adminHandler,
		serviceHandler:      serviceHandler,

		metrics: metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	// Health check endpoint
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Availability endpoints
	r.mux.HandleFunc("GET /api/availability", r.availabilityHandler.GetAvailability)

	// Appointment endpoints
	r.mux.HandleFunc("POST /api/appointments", r.appointmentHandler.BookAppointment)
	r.mux.HandleFunc("PATCH /api/appointments", r.appointmentHandler.UpdateAppointment)
	r.mux.HandleFunc("GET /api/appointments", r.appointmentHandler.ListAppointments)

	// Service catalog endpoints
	r.mux.HandleFunc("GET /api/services", r.serviceHandler.ListServices)

	// Admin endpoints
	r.mux.HandleFunc("PUT /api/admin/appointments/status", r.adminHandler.UpdateStatus)
	r.mux.HandleFunc("POST /api/admin/appointments/payment", r.adminHandler.RecordPayment)
	r.mux.HandleFunc("GET /api/admin/schedule/rules", r.adminHandler.ListScheduleRules)
	r.mux.HandleFunc("PUT /api/admin/schedule/rules", r.adminHandler.UpsertScheduleRule)
	r.mux.HandleFunc("POST /api/admin/schedule/blocked-dates", r.adminHandler.BlockDate)
	r.mux.HandleFunc("DELETE /api/admin/schedule/blocked-dates/{date}", r.adminHandler.UnblockDate)

	// Apply middleware in reverse order (last middleware wraps first)
	var handler http.Handler = r.mux
	handler = middleware.AuthContextMiddleware(handler)
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)

	// CORS wraps everything so preflight requests never hit the mux
	handler = middleware.CORSMiddleware(handler)

	return handler
}
