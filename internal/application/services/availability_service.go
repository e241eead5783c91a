package services

import (
	"context"
	"fmt"
	"time"

	"github.com/studioavelar/booking-backend/internal/domain/entities"
	"github.com/studioavelar/booking-backend/internal/domain/repositories"
	"github.com/studioavelar/booking-backend/internal/domain/scheduling"
	apperrors "github.com/studioavelar/booking-backend/pkg/errors"
)

// DayStatus classifies one calendar day in a range query
type DayStatus string

const (
	DayStatusPast      DayStatus = "past"
	DayStatusClosed    DayStatus = "closed"
	DayStatusFull      DayStatus = "full"
	DayStatusAvailable DayStatus = "available"
)

// Slot is one candidate start time with its availability flag
type Slot struct {
	Time      string `json:"time"`
	Available bool   `json:"available"`
}

// DaySlots is the slots-for-date response
type DaySlots struct {
	Date    string `json:"date"`
	Slots   []Slot `json:"slots"`
	Message string `json:"message,omitempty"`
}

// DayAvailability is one day's entry in a range response
type DayAvailability struct {
	Date           string    `json:"date"`
	Status         DayStatus `json:"status"`
	AvailableSlots int       `json:"availableSlots"`
}

// AvailabilityService answers the two availability questions: which slots
// are open on a date, and how each day in a range classifies. Both reads
// recompute from a fresh store snapshot on every call and never mutate
// anything, so they are safe without external synchronization. The answers
// are advisory only; the booking transaction re-checks conflicts on commit.
type AvailabilityService struct {
	schedules    repositories.ScheduleRepository
	services     repositories.ServiceRepository
	appointments repositories.AppointmentRepository
	horizonDays  int
	now          func() time.Time
}

// NewAvailabilityService creates a new availability service
func NewAvailabilityService(
	schedules repositories.ScheduleRepository,
	services repositories.ServiceRepository,
	appointments repositories.AppointmentRepository,
	horizonDays int,
) *AvailabilityService {
	return &AvailabilityService{
		schedules:    schedules,
		services:     services,
		appointments: appointments,
		horizonDays:  horizonDays,
		now:          time.Now,
	}
}

// WithClock overrides the time source, used by tests
func (s *AvailabilityService) WithClock(now func() time.Time) *AvailabilityService {
	s.now = now
	return s
}

// SlotsForDate returns every candidate slot for the date flagged with
// whether a booking of the given service would fit there
func (s *AvailabilityService) SlotsForDate(ctx context.Context, date time.Time, serviceID string) (*DaySlots, error) {
	if serviceID == "" {
		return nil, apperrors.NewValidationError("service id is required")
	}

	service, err := s.services.GetByID(ctx, serviceID)
	if err != nil {
		return nil, err
	}
	if !service.Active {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("service with id %s not found", serviceID))
	}

	result := &DaySlots{Date: date.Format("2006-01-02"), Slots: []Slot{}}

	blocked, err := s.schedules.IsDateBlocked(ctx, date)
	if err != nil {
		return nil, err
	}
	if blocked {
		result.Message = "this date is not available for booking"
		return result, nil
	}

	rule, err := s.schedules.GetRuleByWeekday(ctx, date.Weekday())
	if err != nil {
		return nil, err
	}
	starts, err := scheduling.SlotStarts(rule, date)
	if err != nil {
		return nil, apperrors.NewInternalError("invalid schedule rule", err)
	}
	if len(starts) == 0 {
		result.Message = "no appointments on this day"
		return result, nil
	}

	duration := time.Duration(service.Duration) * time.Minute
	dayStart := midnight(date)
	dayEnd := dayStart.AddDate(0, 0, 1)
	active, err := s.appointments.ListActiveInRange(ctx, dayStart, dayEnd.Add(duration))
	if err != nil {
		return nil, err
	}

	now := s.now()
	for _, start := range starts {
		end := start.Add(duration)
		available := start.After(now) && !scheduling.ConflictsWithAny(start, end, active)
		result.Slots = append(result.Slots, Slot{
			Time:      start.Format("15:04"),
			Available: available,
		})
	}
	return result, nil
}

// DayStatusesForRange classifies every date in the inclusive range for the
// calendar view. The scan uses each rule's own slot duration rather than a
// service-specific one.
func (s *AvailabilityService) DayStatusesForRange(ctx context.Context, from, to time.Time) ([]DayAvailability, error) {
	if to.Before(from) {
		return nil, apperrors.NewValidationError("end date must not be before start date")
	}
	if s.horizonDays > 0 && int(to.Sub(from).Hours()/24) > s.horizonDays {
		return nil, apperrors.NewValidationError(fmt.Sprintf("date range must not exceed %d days", s.horizonDays))
	}

	rules, err := s.schedules.ListRules(ctx)
	if err != nil {
		return nil, err
	}
	rulesByWeekday := make(map[time.Weekday]*entities.ScheduleRule, len(rules))
	for _, rule := range rules {
		rulesByWeekday[rule.Weekday] = rule
	}

	blocked, err := s.schedules.ListBlockedInRange(ctx, from, to)
	if err != nil {
		return nil, err
	}
	blockedDates := make(map[string]struct{}, len(blocked))
	for _, b := range blocked {
		blockedDates[b.Date.Format("2006-01-02")] = struct{}{}
	}

	rangeStart := midnight(from)
	rangeEnd := midnight(to).AddDate(0, 0, 1)
	active, err := s.appointments.ListActiveInRange(ctx, rangeStart, rangeEnd)
	if err != nil {
		return nil, err
	}
	activeByDate := make(map[string][]*entities.Appointment)
	for _, appt := range active {
		key := appt.ScheduledAt.In(from.Location()).Format("2006-01-02")
		activeByDate[key] = append(activeByDate[key], appt)
	}

	now := s.now()
	today := midnight(now.In(from.Location()))

	var days []DayAvailability
	for date := midnight(from); !date.After(midnight(to)); date = date.AddDate(0, 0, 1) {
		key := date.Format("2006-01-02")
		day := DayAvailability{Date: key, Status: DayStatusClosed}

		if date.Before(today) {
			day.Status = DayStatusPast
			days = append(days, day)
			continue
		}

		rule := rulesByWeekday[date.Weekday()]
		_, isBlocked := blockedDates[key]
		if rule == nil || !rule.Active || isBlocked {
			days = append(days, day)
			continue
		}

		starts, err := scheduling.SlotStarts(rule, date)
		if err != nil {
			return nil, apperrors.NewInternalError("invalid schedule rule", err)
		}

		slotDuration := time.Duration(rule.SlotDuration) * time.Minute
		open := 0
		for _, start := range starts {
			if !start.After(now) {
				continue
			}
			if scheduling.ConflictsWithAny(start, start.Add(slotDuration), activeByDate[key]) {
				continue
			}
			open++
		}

		if open == 0 {
			day.Status = DayStatusFull
		} else {
			day.Status = DayStatusAvailable
			day.AvailableSlots = open
		}
		days = append(days, day)
	}
	return days, nil
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
