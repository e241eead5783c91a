package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
	"github.com/studioavelar/booking-backend/internal/adapters/database"
	"github.com/studioavelar/booking-backend/internal/adapters/events"
	"github.com/studioavelar/booking-backend/internal/adapters/notifications"
	"github.com/studioavelar/booking-backend/internal/api/handlers"
	"github.com/studioavelar/booking-backend/internal/api/routes"
	"github.com/studioavelar/booking-backend/internal/application/services"
	"github.com/studioavelar/booking-backend/internal/domain/providers"
	"github.com/studioavelar/booking-backend/internal/infrastructure/clients/postgres"
	"github.com/studioavelar/booking-backend/internal/infrastructure/clients/redis"
	"github.com/studioavelar/booking-backend/internal/infrastructure/observability"
	"github.com/studioavelar/booking-backend/pkg/config"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	observability.InitLogger(cfg.OTEL.ServiceName, os.Getenv("APP_ENV"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(
			ctx,
			cfg.OTEL.ServiceName,
			cfg.OTEL.ServiceVersion,
			cfg.OTEL.Endpoint,
		)
		if err != nil {
			log.Warn().Err(err).Msg("failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Error().Err(err).Msg("error shutting down OpenTelemetry")
				}
			}()
			log.Info().Msg("OpenTelemetry initialized")
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize metrics")
	}

	// Business timezone; all schedule times are interpreted in it
	location, err := time.LoadLocation(cfg.Booking.Timezone)
	if err != nil {
		log.Fatal().Err(err).Str("timezone", cfg.Booking.Timezone).Msg("invalid business timezone")
	}

	// Initialize database client
	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize PostgreSQL client")
	}
	defer pgClient.Close()

	// Initialize Redis client. The application works without it; only the
	// notification path degrades to log-only.
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("failed to initialize Redis client, notifications will only be logged")
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	// Adapters
	appointmentAdapter := database.NewAppointmentAdapter(pgClient)
	bookingAdapter := database.NewBookingAdapter(pgClient)
	scheduleAdapter := database.NewScheduleAdapter(pgClient)
	serviceAdapter := database.NewServiceAdapter(pgClient)
	packageAdapter := database.NewPackageAdapter(pgClient)
	paymentAdapter := database.NewPaymentAdapter(sqlx.NewDb(pgClient.DB(), "postgres"))

	var eventBus providers.EventBus
	dispatcher := notifications.NewLogDispatcher()
	if redisClient != nil {
		eventBus = events.NewRedisEventBus(redisClient)
		dispatcher = notifications.NewEventDispatcher(eventBus)
		log.Info().Msg("event bus initialized")
	}

	// Services
	availabilityService := services.NewAvailabilityService(
		scheduleAdapter,
		serviceAdapter,
		appointmentAdapter,
		cfg.Booking.RangeHorizonDays,
	)
	bookingService := services.NewBookingService(bookingAdapter, serviceAdapter, dispatcher)
	lifecycleService := services.NewLifecycleService(
		appointmentAdapter,
		packageAdapter,
		paymentAdapter,
		dispatcher,
		cfg.Booking.CancellationWindowHours,
	)

	// Handlers
	availabilityHandler := handlers.NewAvailabilityHandler(availabilityService, location)
	appointmentHandler := handlers.NewAppointmentHandler(bookingService, lifecycleService, appointmentAdapter)
	adminHandler := handlers.NewAdminHandler(lifecycleService, scheduleAdapter, location)
	serviceHandler := handlers.NewServiceHandler(serviceAdapter)

	router := routes.NewRouter(
		availabilityHandler,
		appointmentHandler,
		adminHandler,
		serviceHandler,
		metrics,
	)
	handler := router.SetupRoutes()

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", serverAddr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("server shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during server shutdown")
	}

	if eventBus != nil {
		if err := eventBus.Close(); err != nil {
			log.Error().Err(err).Msg("error closing event bus")
		}
	}

	log.Info().Msg("server stopped")
}
