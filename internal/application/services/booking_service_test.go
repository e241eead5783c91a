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

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func activeService() *entities.Service {
	priceReturn := 180.0
	return &entities.Service{
		ID:          "svc-1",
		Name:        "Initial Consultation",
		Duration:    50,
		Price:       250,
		PriceReturn: &priceReturn,
		Active:      true,
	}
}

func TestBookingService_Book(t *testing.T) {
	now := time.Date(2026, 3, 9, 8, 0, 0, 0, time.UTC)
	scheduledAt := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)

	t.Run("successfully books a pending appointment", func(t *testing.T) {
		bookings := new(MockBookingRepository)
		catalog := new(MockServiceRepository)
		dispatcher := new(MockNotificationDispatcher)
		svc := services.NewBookingService(bookings, catalog, dispatcher).WithClock(fixedClock(now))

		catalog.On("GetByID", mock.Anything, "svc-1").Return(activeService(), nil)
		bookings.On("Book", mock.Anything, mock.MatchedBy(func(a *entities.Appointment) bool {
			return a.Status == entities.AppointmentStatusPending &&
				a.EndAt.Equal(scheduledAt.Add(50*time.Minute)) &&
				a.Price == 250 &&
				a.PaymentStatus == entities.PaymentStatusUnpaid &&
				a.Type == entities.AppointmentTypeFirst
		})).Return(nil, nil)

		notified := make(chan struct{})
		dispatcher.On("NotifyBooking", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) { close(notified) }).
			Return(true, nil)

		result, err := svc.Book(context.Background(), services.BookingRequest{
			UserID:      "user-1",
			ServiceID:   "svc-1",
			ScheduledAt: scheduledAt,
			Location:    "clinic",
		})

		require.NoError(t, err)
		require.NotNil(t, result)
		assert.NotEmpty(t, result.Appointment.ID)
		assert.Nil(t, result.PackageInfo)

		select {
		case <-notified:
		case <-time.After(2 * time.Second):
			t.Fatal("booking notification was never dispatched")
		}
		bookings.AssertExpectations(t)
	})

	t.Run("return appointment uses the return price", func(t *testing.T) {
		bookings := new(MockBookingRepository)
		catalog := new(MockServiceRepository)
		dispatcher := new(MockNotificationDispatcher)
		svc := services.NewBookingService(bookings, catalog, dispatcher).WithClock(fixedClock(now))

		catalog.On("GetByID", mock.Anything, "svc-1").Return(activeService(), nil)
		bookings.On("Book", mock.Anything, mock.MatchedBy(func(a *entities.Appointment) bool {
			return a.Type == entities.AppointmentTypeReturn && a.Price == 180
		})).Return(nil, nil)
		dispatcher.On("NotifyBooking", mock.Anything, mock.Anything).Return(true, nil).Maybe()

		_, err := svc.Book(context.Background(), services.BookingRequest{
			UserID:      "user-1",
			ServiceID:   "svc-1",
			ScheduledAt: scheduledAt,
			Type:        entities.AppointmentTypeReturn,
		})

		require.NoError(t, err)
		bookings.AssertExpectations(t)
	})

	t.Run("package booking returns the usage snapshot", func(t *testing.T) {
		bookings := new(MockBookingRepository)
		catalog := new(MockServiceRepository)
		dispatcher := new(MockNotificationDispatcher)
		svc := services.NewBookingService(bookings, catalog, dispatcher).WithClock(fixedClock(now))

		packageID := "pkg-1"
		usage := &entities.PackageUsage{
			PackageID:         packageID,
			UsedSessions:      4,
			TotalSessions:     10,
			RemainingSessions: 6,
		}
		catalog.On("GetByID", mock.Anything, "svc-1").Return(activeService(), nil)
		bookings.On("Book", mock.Anything, mock.MatchedBy(func(a *entities.Appointment) bool {
			return a.PackageID != nil && *a.PackageID == packageID
		})).Return(usage, nil)
		dispatcher.On("NotifyBooking", mock.Anything, mock.Anything).Return(true, nil).Maybe()

		result, err := svc.Book(context.Background(), services.BookingRequest{
			UserID:      "user-1",
			ServiceID:   "svc-1",
			ScheduledAt: scheduledAt,
			PackageID:   &packageID,
		})

		require.NoError(t, err)
		require.NotNil(t, result.PackageInfo)
		assert.Equal(t, 6, result.PackageInfo.RemainingSessions)
	})

	t.Run("rejects missing fields", func(t *testing.T) {
		svc := services.NewBookingService(new(MockBookingRepository), new(MockServiceRepository), new(MockNotificationDispatcher)).
			WithClock(fixedClock(now))

		cases := []struct {
			name string
			req  services.BookingRequest
		}{
			{"missing user", services.BookingRequest{ServiceID: "svc-1", ScheduledAt: scheduledAt}},
			{"missing service", services.BookingRequest{UserID: "user-1", ScheduledAt: scheduledAt}},
			{"missing time", services.BookingRequest{UserID: "user-1", ServiceID: "svc-1"}},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				_, err := svc.Book(context.Background(), tc.req)
				require.Error(t, err)
				assert.Equal(t, apperrors.ErrorTypeValidation, apperrors.TypeOf(err))
			})
		}
	})

	t.Run("rejects past scheduled time", func(t *testing.T) {
		svc := services.NewBookingService(new(MockBookingRepository), new(MockServiceRepository), new(MockNotificationDispatcher)).
			WithClock(fixedClock(now))

		_, err := svc.Book(context.Background(), services.BookingRequest{
			UserID:      "user-1",
			ServiceID:   "svc-1",
			ScheduledAt: now.Add(-time.Hour),
		})

		require.Error(t, err)
		assert.Equal(t, apperrors.ErrorTypeValidation, apperrors.TypeOf(err))
	})

	t.Run("rejects unknown appointment type", func(t *testing.T) {
		svc := services.NewBookingService(new(MockBookingRepository), new(MockServiceRepository), new(MockNotificationDispatcher)).
			WithClock(fixedClock(now))

		_, err := svc.Book(context.Background(), services.BookingRequest{
			UserID:      "user-1",
			ServiceID:   "svc-1",
			ScheduledAt: scheduledAt,
			Type:        "WALK_IN",
		})

		require.Error(t, err)
		assert.Equal(t, apperrors.ErrorTypeValidation, apperrors.TypeOf(err))
	})

	t.Run("rejects inactive service as not found", func(t *testing.T) {
		bookings := new(MockBookingRepository)
		catalog := new(MockServiceRepository)
		svc := services.NewBookingService(bookings, catalog, new(MockNotificationDispatcher)).WithClock(fixedClock(now))

		inactive := activeService()
		inactive.Active = false
		catalog.On("GetByID", mock.Anything, "svc-1").Return(inactive, nil)

		_, err := svc.Book(context.Background(), services.BookingRequest{
			UserID:      "user-1",
			ServiceID:   "svc-1",
			ScheduledAt: scheduledAt,
		})

		require.Error(t, err)
		assert.Equal(t, apperrors.ErrorTypeNotFound, apperrors.TypeOf(err))
		bookings.AssertNotCalled(t, "Book")
	})

	t.Run("propagates a slot conflict", func(t *testing.T) {
		bookings := new(MockBookingRepository)
		catalog := new(MockServiceRepository)
		dispatcher := new(MockNotificationDispatcher)
		svc := services.NewBookingService(bookings, catalog, dispatcher).WithClock(fixedClock(now))

		catalog.On("GetByID", mock.Anything, "svc-1").Return(activeService(), nil)
		bookings.On("Book", mock.Anything, mock.Anything).
			Return(nil, apperrors.NewConflictError("the requested time is no longer available"))

		_, err := svc.Book(context.Background(), services.BookingRequest{
			UserID:      "user-1",
			ServiceID:   "svc-1",
			ScheduledAt: scheduledAt,
		})

		require.Error(t, err)
		assert.Equal(t, apperrors.ErrorTypeConflict, apperrors.TypeOf(err))
		dispatcher.AssertNotCalled(t, "NotifyBooking")
	})

	t.Run("notification failure does not fail the booking", func(t *testing.T) {
		bookings := new(MockBookingRepository)
		catalog := new(MockServiceRepository)
		dispatcher := new(MockNotificationDispatcher)
		svc := services.NewBookingService(bookings, catalog, dispatcher).WithClock(fixedClock(now))

		catalog.On("GetByID", mock.Anything, "svc-1").Return(activeService(), nil)
		bookings.On("Book", mock.Anything, mock.Anything).Return(nil, nil)

		attempted := make(chan struct{})
		dispatcher.On("NotifyBooking", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) { close(attempted) }).
			Return(false, assert.AnError)

		result, err := svc.Book(context.Background(), services.BookingRequest{
			UserID:      "user-1",
			ServiceID:   "svc-1",
			ScheduledAt: scheduledAt,
		})

		require.NoError(t, err)
		assert.Equal(t, entities.AppointmentStatusPending, result.Appointment.Status)

		select {
		case <-attempted:
		case <-time.After(2 * time.Second):
			t.Fatal("booking notification was never attempted")
		}
	})
}
