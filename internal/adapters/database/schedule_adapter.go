package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/studioavelar/booking-backend/internal/domain/entities"
	"github.com/studioavelar/booking-backend/internal/domain/repositories"
	"github.com/studioavelar/booking-backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/studioavelar/booking-backend/pkg/errors"
)

const dateLayout = "2006-01-02"

var scheduleRuleColumns = []interface{}{
	"id", "weekday", "start_time", "end_time", "slot_duration",
	"break_start", "break_end", "active", "created_at", "updated_at",
}

// ScheduleAdapter implements the ScheduleRepository interface
type ScheduleAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewScheduleAdapter creates a new schedule adapter
func NewScheduleAdapter(client *postgres.Client) repositories.ScheduleRepository {
	return &ScheduleAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// GetRuleByWeekday returns the rule for the weekday, or nil when the
// weekday has no rule
func (a *ScheduleAdapter) GetRuleByWeekday(ctx context.Context, weekday time.Weekday) (*entities.ScheduleRule, error) {
	query, args, err := a.db.Select(scheduleRuleColumns...).
		From("schedule_rules").
		Where(goqu.Ex{"weekday": int(weekday)}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rule, err := scanScheduleRule(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get schedule rule", err)
	}
	return rule, nil
}

// ListRules returns all weekday rules
func (a *ScheduleAdapter) ListRules(ctx context.Context) ([]*entities.ScheduleRule, error) {
	query, args, err := a.db.Select(scheduleRuleColumns...).
		From("schedule_rules").
		Order(goqu.C("weekday").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list schedule rules", err)
	}
	defer rows.Close()

	var rules []*entities.ScheduleRule
	for rows.Next() {
		rule, err := scanScheduleRule(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan schedule rule", err)
		}
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate schedule rules", err)
	}
	return rules, nil
}

// IsDateBlocked reports whether the date has a blocked-date entry
func (a *ScheduleAdapter) IsDateBlocked(ctx context.Context, date time.Time) (bool, error) {
	query, args, err := a.db.Select(goqu.COUNT("*")).
		From("blocked_dates").
		Where(goqu.Ex{"date": date.Format(dateLayout)}).
		ToSQL()
	if err != nil {
		return false, apperrors.NewInternalError("failed to build query", err)
	}

	var count int
	if err := a.client.DB().QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return false, apperrors.NewInternalError("failed to check blocked date", err)
	}
	return count > 0, nil
}

// ListBlockedInRange returns blocked dates within [from, to] inclusive
func (a *ScheduleAdapter) ListBlockedInRange(ctx context.Context, from, to time.Time) ([]*entities.BlockedDate, error) {
	query, args, err := a.db.Select("id", "date", "reason", "created_at").
		From("blocked_dates").
		Where(
			goqu.C("date").Gte(from.Format(dateLayout)),
			goqu.C("date").Lte(to.Format(dateLayout)),
		).
		Order(goqu.C("date").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list blocked dates", err)
	}
	defer rows.Close()

	var blocked []*entities.BlockedDate
	for rows.Next() {
		b := &entities.BlockedDate{}
		var reason sql.NullString
		if err := rows.Scan(&b.ID, &b.Date, &reason, &b.CreatedAt); err != nil {
			return nil, apperrors.NewInternalError("failed to scan blocked date", err)
		}
		b.Reason = reason.String
		blocked = append(blocked, b)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate blocked dates", err)
	}
	return blocked, nil
}

// UpsertRule inserts or replaces the rule for its weekday
func (a *ScheduleAdapter) UpsertRule(ctx context.Context, rule *entities.ScheduleRule) error {
	now := time.Now()
	record := goqu.Record{
		"id":            rule.ID,
		"weekday":       int(rule.Weekday),
		"start_time":    rule.StartTime,
		"end_time":      rule.EndTime,
		"slot_duration": rule.SlotDuration,
		"break_start":   rule.BreakStart,
		"break_end":     rule.BreakEnd,
		"active":        rule.Active,
		"created_at":    now,
		"updated_at":    now,
	}

	query, args, err := a.db.Insert("schedule_rules").
		Rows(record).
		OnConflict(goqu.DoUpdate("weekday", goqu.Record{
			"start_time":    rule.StartTime,
			"end_time":      rule.EndTime,
			"slot_duration": rule.SlotDuration,
			"break_start":   rule.BreakStart,
			"break_end":     rule.BreakEnd,
			"active":        rule.Active,
			"updated_at":    now,
		})).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build upsert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to upsert schedule rule", err)
	}
	return nil
}

// BlockDate marks a calendar date as unavailable
func (a *ScheduleAdapter) BlockDate(ctx context.Context, blocked *entities.BlockedDate) error {
	record := goqu.Record{
		"id":         blocked.ID,
		"date":       blocked.Date.Format(dateLayout),
		"reason":     nullIfEmpty(blocked.Reason),
		"created_at": time.Now(),
	}

	query, args, err := a.db.Insert("blocked_dates").
		Rows(record).
		OnConflict(goqu.DoNothing()).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to block date", err)
	}
	return nil
}

// UnblockDate removes the blocked-date entry for the date
func (a *ScheduleAdapter) UnblockDate(ctx context.Context, date time.Time) error {
	query, args, err := a.db.Delete("blocked_dates").
		Where(goqu.Ex{"date": date.Format(dateLayout)}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build delete query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to unblock date", err)
	}
	return nil
}

func scanScheduleRule(row rowScanner) (*entities.ScheduleRule, error) {
	rule := &entities.ScheduleRule{}
	var weekday int
	var breakStart, breakEnd sql.NullString

	err := row.Scan(
		&rule.ID,
		&weekday,
		&rule.StartTime,
		&rule.EndTime,
		&rule.SlotDuration,
		&breakStart,
		&breakEnd,
		&rule.Active,
		&rule.CreatedAt,
		&rule.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	rule.Weekday = time.Weekday(weekday)
	if breakStart.Valid {
		rule.BreakStart = &breakStart.String
	}
	if breakEnd.Valid {
		rule.BreakEnd = &breakEnd.String
	}
	return rule, nil
}
