package services_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/studioavelar/booking-backend/internal/domain/entities"
	"github.com/studioavelar/booking-backend/internal/domain/repositories"
)

// Mocks shared by the service tests

type MockAppointmentRepository struct {
	mock.Mock
}

func (m *MockAppointmentRepository) GetByID(ctx context.Context, id string) (*entities.Appointment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Appointment), args.Error(1)
}

func (m *MockAppointmentRepository) ListActiveInRange(ctx context.Context, from, to time.Time) ([]*entities.Appointment, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Appointment), args.Error(1)
}

func (m *MockAppointmentRepository) ListByUser(ctx context.Context, userID string, filter repositories.AppointmentFilter) ([]*entities.Appointment, error) {
	args := m.Called(ctx, userID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Appointment), args.Error(1)
}

func (m *MockAppointmentRepository) Update(ctx context.Context, appointment *entities.Appointment) error {
	args := m.Called(ctx, appointment)
	return args.Error(0)
}

type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) Book(ctx context.Context, appointment *entities.Appointment) (*entities.PackageUsage, error) {
	args := m.Called(ctx, appointment)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.PackageUsage), args.Error(1)
}

type MockScheduleRepository struct {
	mock.Mock
}

func (m *MockScheduleRepository) GetRuleByWeekday(ctx context.Context, weekday time.Weekday) (*entities.ScheduleRule, error) {
	args := m.Called(ctx, weekday)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.ScheduleRule), args.Error(1)
}

func (m *MockScheduleRepository) ListRules(ctx context.Context) ([]*entities.ScheduleRule, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.ScheduleRule), args.Error(1)
}

func (m *MockScheduleRepository) IsDateBlocked(ctx context.Context, date time.Time) (bool, error) {
	args := m.Called(ctx, date)
	return args.Bool(0), args.Error(1)
}

func (m *MockScheduleRepository) ListBlockedInRange(ctx context.Context, from, to time.Time) ([]*entities.BlockedDate, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.BlockedDate), args.Error(1)
}

func (m *MockScheduleRepository) UpsertRule(ctx context.Context, rule *entities.ScheduleRule) error {
	args := m.Called(ctx, rule)
	return args.Error(0)
}

func (m *MockScheduleRepository) BlockDate(ctx context.Context, blocked *entities.BlockedDate) error {
	args := m.Called(ctx, blocked)
	return args.Error(0)
}

func (m *MockScheduleRepository) UnblockDate(ctx context.Context, date time.Time) error {
	args := m.Called(ctx, date)
	return args.Error(0)
}

type MockServiceRepository struct {
	mock.Mock
}

func (m *MockServiceRepository) GetByID(ctx context.Context, id string) (*entities.Service, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Service), args.Error(1)
}

func (m *MockServiceRepository) ListActive(ctx context.Context) ([]*entities.Service, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Service), args.Error(1)
}

type MockPackageRepository struct {
	mock.Mock
}

func (m *MockPackageRepository) GetByID(ctx context.Context, id string) (*entities.Package, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Package), args.Error(1)
}

func (m *MockPackageRepository) FindReversible(ctx context.Context, userID, serviceID string) (*entities.Package, error) {
	args := m.Called(ctx, userID, serviceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Package), args.Error(1)
}

func (m *MockPackageRepository) ReverseCredit(ctx context.Context, packageID string) error {
	args := m.Called(ctx, packageID)
	return args.Error(0)
}

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Create(ctx context.Context, payment *entities.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) GetByAppointment(ctx context.Context, appointmentID string) (*entities.Payment, error) {
	args := m.Called(ctx, appointmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Payment), args.Error(1)
}

type MockNotificationDispatcher struct {
	mock.Mock
}

func (m *MockNotificationDispatcher) NotifyBooking(ctx context.Context, appointment *entities.Appointment) (bool, error) {
	args := m.Called(ctx, appointment)
	return args.Bool(0), args.Error(1)
}

func (m *MockNotificationDispatcher) NotifyCancellation(ctx context.Context, appointment *entities.Appointment) (bool, error) {
	args := m.Called(ctx, appointment)
	return args.Bool(0), args.Error(1)
}
