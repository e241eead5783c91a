package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_BookingConfig(t *testing.T) {
	// Setup environment variables
	os.Setenv("BOOKING_CANCELLATION_WINDOW_HOURS", "12")
	os.Setenv("BOOKING_TIMEZONE", "Europe/Lisbon")
	os.Setenv("BOOKING_RANGE_HORIZON_DAYS", "30")
	defer func() {
		os.Unsetenv("BOOKING_CANCELLATION_WINDOW_HOURS")
		os.Unsetenv("BOOKING_TIMEZONE")
		os.Unsetenv("BOOKING_RANGE_HORIZON_DAYS")
	}()

	cfg, err := Load()
	assert.NoError(t, err)

	assert.Equal(t, 12, cfg.Booking.CancellationWindowHours)
	assert.Equal(t, "Europe/Lisbon", cfg.Booking.Timezone)
	assert.Equal(t, 30, cfg.Booking.RangeHorizonDays)
}

func TestLoad_Defaults(t *testing.T) {
	// Ensure env vars are cleared
	os.Unsetenv("BOOKING_CANCELLATION_WINDOW_HOURS")
	os.Unsetenv("BOOKING_TIMEZONE")
	os.Unsetenv("DB_NAME")

	cfg, err := Load()
	assert.NoError(t, err)

	assert.Equal(t, 4, cfg.Booking.CancellationWindowHours)
	assert.Equal(t, "America/Sao_Paulo", cfg.Booking.Timezone)
	assert.Equal(t, "studio_booking", cfg.Database.Database)
}

func TestDatabaseDSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "db",
		Port:     5432,
		User:     "postgres",
		Password: "secret",
		Database: "bookings",
		SSLMode:  "disable",
	}

	assert.Equal(t,
		"host=db port=5432 user=postgres password=secret dbname=bookings sslmode=disable",
		cfg.DatabaseDSN(),
	)
}
