package entities

import "time"

// ScheduleRule is the weekly open-hours template for one weekday. At most
// one rule exists per weekday; times are "HH:MM" strings interpreted in the
// business timezone.
type ScheduleRule struct {
	ID        string       `json:"id" db:"id"`
	Weekday   time.Weekday `json:"weekday" db:"weekday"`
	StartTime string       `json:"start_time" db:"start_time"`
	EndTime   string       `json:"end_time" db:"end_time"`
	// SlotDuration is the slot granularity in minutes
	SlotDuration int     `json:"slot_duration" db:"slot_duration"`
	BreakStart   *string `json:"break_start,omitempty" db:"break_start"`
	BreakEnd     *string `json:"break_end,omitempty" db:"break_end"`
	Active       bool    `json:"active" db:"active"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// HasBreak reports whether both break boundaries are configured
func (r *ScheduleRule) HasBreak() bool {
	return r.BreakStart != nil && r.BreakEnd != nil
}

// BlockedDate marks a calendar date with zero availability regardless of
// the weekly template
type BlockedDate struct {
	ID        string    `json:"id" db:"id"`
	Date      time.Time `json:"date" db:"date"`
	Reason    string    `json:"reason,omitempty" db:"reason"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
