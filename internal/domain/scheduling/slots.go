package scheduling

import (
	"fmt"
	"time"

	"github.com/studioavelar/booking-backend/internal/domain/entities"
)

// ParseClock parses an "HH:MM" clock string into hour and minute
func ParseClock(clock string) (int, int, error) {
	var hour, minute int
	if _, err := fmt.Sscanf(clock, "%d:%d", &hour, &minute); err != nil {
		return 0, 0, fmt.Errorf("invalid clock value %q: %w", clock, err)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("clock value %q out of range", clock)
	}
	return hour, minute, nil
}

// OnDate anchors an "HH:MM" clock string onto the given calendar date in
// the date's location
func OnDate(date time.Time, clock string) (time.Time, error) {
	hour, minute, err := ParseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, date.Location()), nil
}

// SlotStarts generates the candidate slot start times for one calendar date
// from its weekday rule. Starting at the rule's start time it steps by the
// slot duration; generation stops once the next start would reach or pass
// the end time. A start inside [BreakStart, BreakEnd) is dropped. An
// inactive rule yields no slots. The result is regenerated fresh on every
// call and is deterministic for a given rule and date.
func SlotStarts(rule *entities.ScheduleRule, date time.Time) ([]time.Time, error) {
	if rule == nil || !rule.Active {
		return nil, nil
	}
	if rule.SlotDuration <= 0 {
		return nil, fmt.Errorf("slot duration must be positive, got %d", rule.SlotDuration)
	}

	start, err := OnDate(date, rule.StartTime)
	if err != nil {
		return nil, err
	}
	end, err := OnDate(date, rule.EndTime)
	if err != nil {
		return nil, err
	}

	var breakStart, breakEnd time.Time
	if rule.HasBreak() {
		if breakStart, err = OnDate(date, *rule.BreakStart); err != nil {
			return nil, err
		}
		if breakEnd, err = OnDate(date, *rule.BreakEnd); err != nil {
			return nil, err
		}
	}

	step := time.Duration(rule.SlotDuration) * time.Minute
	var starts []time.Time
	for t := start; t.Before(end); t = t.Add(step) {
		if rule.HasBreak() && !t.Before(breakStart) && t.Before(breakEnd) {
			continue
		}
		starts = append(starts, t)
	}
	return starts, nil
}

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// ConflictsWithAny reports whether [start, end) overlaps the interval of
// any appointment in appts that still occupies the calendar
func ConflictsWithAny(start, end time.Time, appts []*entities.Appointment) bool {
	for _, appt := range appts {
		if !appt.IsActive() {
			continue
		}
		if Overlaps(start, end, appt.ScheduledAt, appt.EndAt) {
			return true
		}
	}
	return false
}
