package repositories

import (
	"context"
	"time"

	"github.com/studioavelar/booking-backend/internal/domain/entities"
)

// ScheduleRepository provides the weekly open-hours template and blocked
// dates. Reads are snapshots; availability computations never cache them
// across calls.
type ScheduleRepository interface {
	// GetRuleByWeekday returns the rule for the weekday, or nil when the
	// weekday has no rule
	GetRuleByWeekday(ctx context.Context, weekday time.Weekday) (*entities.ScheduleRule, error)
	ListRules(ctx context.Context) ([]*entities.ScheduleRule, error)
	IsDateBlocked(ctx context.Context, date time.Time) (bool, error)
	ListBlockedInRange(ctx context.Context, from, to time.Time) ([]*entities.BlockedDate, error)

	UpsertRule(ctx context.Context, rule *entities.ScheduleRule) error
	BlockDate(ctx context.Context, blocked *entities.BlockedDate) error
	UnblockDate(ctx context.Context, date time.Time) error
}
