package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/studioavelar/booking-backend/internal/application/services"
	"github.com/studioavelar/booking-backend/internal/domain/entities"
	apperrors "github.com/studioavelar/booking-backend/pkg/errors"
)

const rangeHorizonDays = 92

func morningRule(weekday time.Weekday) *entities.ScheduleRule {
	return &entities.ScheduleRule{
		ID:           "rule-" + weekday.String(),
		Weekday:      weekday,
		StartTime:    "09:00",
		EndTime:      "12:00",
		SlotDuration: 60,
		Active:       true,
	}
}

func newAvailabilityFixture() (*MockScheduleRepository, *MockServiceRepository, *MockAppointmentRepository, *services.AvailabilityService) {
	schedules := new(MockScheduleRepository)
	catalog := new(MockServiceRepository)
	appointments := new(MockAppointmentRepository)
	svc := services.NewAvailabilityService(schedules, catalog, appointments, rangeHorizonDays)
	return schedules, catalog, appointments, svc
}

func TestAvailabilityService_SlotsForDate(t *testing.T) {
	// 2026-03-10 is a Tuesday
	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	now := time.Date(2026, 3, 9, 8, 0, 0, 0, time.UTC)

	t.Run("flags booked slots as unavailable", func(t *testing.T) {
		schedules, catalog, appointments, svc := newAvailabilityFixture()
		svc.WithClock(fixedClock(now))

		catalog.On("GetByID", mock.Anything, "svc-1").Return(activeService(), nil)
		schedules.On("IsDateBlocked", mock.Anything, date).Return(false, nil)
		schedules.On("GetRuleByWeekday", mock.Anything, time.Tuesday).Return(morningRule(time.Tuesday), nil)
		appointments.On("ListActiveInRange", mock.Anything, mock.Anything, mock.Anything).Return([]*entities.Appointment{
			{
				ID:          "appt-1",
				ScheduledAt: time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC),
				EndAt:       time.Date(2026, 3, 10, 10, 50, 0, 0, time.UTC),
				Status:      entities.AppointmentStatusConfirmed,
			},
		}, nil)

		result, err := svc.SlotsForDate(context.Background(), date, "svc-1")

		require.NoError(t, err)
		require.Len(t, result.Slots, 3)
		assert.Equal(t, services.Slot{Time: "09:00", Available: true}, result.Slots[0])
		assert.Equal(t, services.Slot{Time: "10:00", Available: false}, result.Slots[1])
		assert.Equal(t, services.Slot{Time: "11:00", Available: true}, result.Slots[2])
	})

	t.Run("cancelled appointments free their slot", func(t *testing.T) {
		schedules, catalog, appointments, svc := newAvailabilityFixture()
		svc.WithClock(fixedClock(now))

		catalog.On("GetByID", mock.Anything, "svc-1").Return(activeService(), nil)
		schedules.On("IsDateBlocked", mock.Anything, date).Return(false, nil)
		schedules.On("GetRuleByWeekday", mock.Anything, time.Tuesday).Return(morningRule(time.Tuesday), nil)
		appointments.On("ListActiveInRange", mock.Anything, mock.Anything, mock.Anything).Return([]*entities.Appointment{
			{
				ID:          "appt-1",
				ScheduledAt: time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC),
				EndAt:       time.Date(2026, 3, 10, 10, 50, 0, 0, time.UTC),
				Status:      entities.AppointmentStatusCancelled,
			},
		}, nil)

		result, err := svc.SlotsForDate(context.Background(), date, "svc-1")

		require.NoError(t, err)
		for _, slot := range result.Slots {
			assert.True(t, slot.Available, "slot %s should be available", slot.Time)
		}
	})

	t.Run("slots already in the past are unavailable", func(t *testing.T) {
		schedules, catalog, appointments, svc := newAvailabilityFixture()
		svc.WithClock(fixedClock(time.Date(2026, 3, 10, 10, 30, 0, 0, time.UTC)))

		catalog.On("GetByID", mock.Anything, "svc-1").Return(activeService(), nil)
		schedules.On("IsDateBlocked", mock.Anything, date).Return(false, nil)
		schedules.On("GetRuleByWeekday", mock.Anything, time.Tuesday).Return(morningRule(time.Tuesday), nil)
		appointments.On("ListActiveInRange", mock.Anything, mock.Anything, mock.Anything).Return([]*entities.Appointment{}, nil)

		result, err := svc.SlotsForDate(context.Background(), date, "svc-1")

		require.NoError(t, err)
		require.Len(t, result.Slots, 3)
		assert.False(t, result.Slots[0].Available)
		assert.False(t, result.Slots[1].Available)
		assert.True(t, result.Slots[2].Available)
	})

	t.Run("blocked date returns no slots with a message", func(t *testing.T) {
		schedules, catalog, appointments, svc := newAvailabilityFixture()
		svc.WithClock(fixedClock(now))

		catalog.On("GetByID", mock.Anything, "svc-1").Return(activeService(), nil)
		schedules.On("IsDateBlocked", mock.Anything, date).Return(true, nil)

		result, err := svc.SlotsForDate(context.Background(), date, "svc-1")

		require.NoError(t, err)
		assert.Empty(t, result.Slots)
		assert.NotEmpty(t, result.Message)
		appointments.AssertNotCalled(t, "ListActiveInRange")
	})

	t.Run("weekday without a rule returns no slots", func(t *testing.T) {
		schedules, catalog, _, svc := newAvailabilityFixture()
		svc.WithClock(fixedClock(now))

		catalog.On("GetByID", mock.Anything, "svc-1").Return(activeService(), nil)
		schedules.On("IsDateBlocked", mock.Anything, date).Return(false, nil)
		schedules.On("GetRuleByWeekday", mock.Anything, time.Tuesday).Return(nil, nil)

		result, err := svc.SlotsForDate(context.Background(), date, "svc-1")

		require.NoError(t, err)
		assert.Empty(t, result.Slots)
		assert.NotEmpty(t, result.Message)
	})

	t.Run("requires a service id", func(t *testing.T) {
		_, _, _, svc := newAvailabilityFixture()

		_, err := svc.SlotsForDate(context.Background(), date, "")

		require.Error(t, err)
		assert.Equal(t, apperrors.ErrorTypeValidation, apperrors.TypeOf(err))
	})
}

func TestAvailabilityService_DayStatusesForRange(t *testing.T) {
	// 2026-03-08 is a Sunday; range runs through Thursday 2026-03-12
	from := time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC)
	now := time.Date(2026, 3, 9, 0, 30, 0, 0, time.UTC)

	t.Run("classifies each day in the range", func(t *testing.T) {
		schedules, _, appointments, svc := newAvailabilityFixture()
		svc.WithClock(fixedClock(now))

		schedules.On("ListRules", mock.Anything).Return([]*entities.ScheduleRule{
			morningRule(time.Tuesday),
			morningRule(time.Wednesday),
			morningRule(time.Thursday),
		}, nil)
		schedules.On("ListBlockedInRange", mock.Anything, from, to).Return([]*entities.BlockedDate{
			{ID: "blk-1", Date: time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC), Reason: "holiday"},
		}, nil)
		appointments.On("ListActiveInRange", mock.Anything, mock.Anything, mock.Anything).Return([]*entities.Appointment{
			{
				ID:          "appt-1",
				ScheduledAt: time.Date(2026, 3, 12, 9, 0, 0, 0, time.UTC),
				EndAt:       time.Date(2026, 3, 12, 12, 0, 0, 0, time.UTC),
				Status:      entities.AppointmentStatusPending,
			},
		}, nil)

		days, err := svc.DayStatusesForRange(context.Background(), from, to)

		require.NoError(t, err)
		require.Len(t, days, 5)

		assert.Equal(t, services.DayAvailability{Date: "2026-03-08", Status: services.DayStatusPast}, days[0])
		assert.Equal(t, services.DayAvailability{Date: "2026-03-09", Status: services.DayStatusClosed}, days[1])
		assert.Equal(t, services.DayAvailability{Date: "2026-03-10", Status: services.DayStatusAvailable, AvailableSlots: 3}, days[2])
		assert.Equal(t, services.DayAvailability{Date: "2026-03-11", Status: services.DayStatusClosed}, days[3])
		assert.Equal(t, services.DayAvailability{Date: "2026-03-12", Status: services.DayStatusFull}, days[4])
	})

	t.Run("rejects an inverted range", func(t *testing.T) {
		_, _, _, svc := newAvailabilityFixture()

		_, err := svc.DayStatusesForRange(context.Background(), to, from)

		require.Error(t, err)
		assert.Equal(t, apperrors.ErrorTypeValidation, apperrors.TypeOf(err))
	})

	t.Run("rejects a range beyond the horizon", func(t *testing.T) {
		_, _, _, svc := newAvailabilityFixture()

		_, err := svc.DayStatusesForRange(context.Background(), from, from.AddDate(0, 0, rangeHorizonDays+1))

		require.Error(t, err)
		assert.Equal(t, apperrors.ErrorTypeValidation, apperrors.TypeOf(err))
	})
}
