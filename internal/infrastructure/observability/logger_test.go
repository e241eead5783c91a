package observability_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/studioavelar/booking-backend/internal/infrastructure/observability"
)

func TestInitLogger_LevelFollowsEnvironment(t *testing.T) {
	observability.InitLogger("booking-api", "production")
	assert.Equal(t, zerolog.InfoLevel, observability.GetLogger().GetLevel())

	observability.InitLogger("booking-api", "development")
	assert.Equal(t, zerolog.DebugLevel, observability.GetLogger().GetLevel())
}

func TestAppointmentLogger_TagsAppointment(t *testing.T) {
	var buf bytes.Buffer
	orig := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = orig })

	observability.AppointmentLogger(context.Background(), "appt-1").Warn().Msg("credit reversal failed")

	assert.Contains(t, buf.String(), `"appointment_id":"appt-1"`)
	assert.Contains(t, buf.String(), "credit reversal failed")
}
