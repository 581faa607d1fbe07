// internal/store/schedules.go
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/arenahq/arenagrid/internal/models"
)

// ListActiveRules returns the venue's active schedule rules whose validity
// window intersects [start, stop]. Rules unbounded on a side always intersect
// on that side. No ordering is guaranteed; callers sort by rank themselves.
func (s *Store) ListActiveRules(ctx context.Context, venueID int64, start, stop time.Time) ([]models.ScheduleRule, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, venue_id, name, rank, status, start_date, stop_date,
		       repeat_mode, repeat_step, month_flags, month_week_flags,
		       week_day_flags, month_day_flags, work_time_mode,
		       min_duration, max_duration, start_offset
		FROM schedule_rules
		WHERE venue_id = ?
		  AND status = 'active'
		  AND (start_date IS NULL OR start_date <= ?)
		  AND (stop_date IS NULL OR stop_date >= ?)`,
		venueID, stop.Format(dateLayout), start.Format(dateLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("list schedule rules for venue %d: %w", venueID, err)
	}
	defer rows.Close()

	var rules []models.ScheduleRule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate schedule rules for venue %d: %w", venueID, err)
	}

	for i := range rules {
		slots, err := s.listRuleSlots(ctx, rules[i].ID)
		if err != nil {
			return nil, err
		}
		rules[i].Slots = slots
	}
	return rules, nil
}

func (s *Store) listRuleSlots(ctx context.Context, ruleID int64) ([]models.TimeSlot, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT time_start, time_end
		FROM schedule_slots
		WHERE rule_id = ?
		ORDER BY position, time_start`,
		ruleID,
	)
	if err != nil {
		return nil, fmt.Errorf("list slots for rule %d: %w", ruleID, err)
	}
	defer rows.Close()

	var slots []models.TimeSlot
	for rows.Next() {
		var slot models.TimeSlot
		if err := rows.Scan(&slot.TimeStart, &slot.TimeEnd); err != nil {
			return nil, fmt.Errorf("scan slot for rule %d: %w", ruleID, err)
		}
		slots = append(slots, slot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate slots for rule %d: %w", ruleID, err)
	}
	return slots, nil
}

// CreateRule inserts a schedule rule and its slot list atomically and returns
// the stored rule with its assigned ID.
func (s *Store) CreateRule(ctx context.Context, rule models.ScheduleRule) (models.ScheduleRule, error) {
	if rule.VenueID <= 0 {
		return models.ScheduleRule{}, fmt.Errorf("venueId must be a positive integer")
	}
	if rule.Name == "" {
		return models.ScheduleRule{}, fmt.Errorf("name is required")
	}
	if rule.Status == "" {
		rule.Status = models.RuleActive
	}
	for _, slot := range rule.Slots {
		if err := slot.Validate(); err != nil {
			return models.ScheduleRule{}, fmt.Errorf("invalid slot: %w", err)
		}
	}

	err := s.RunInTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			INSERT INTO schedule_rules (
				venue_id, name, rank, status, start_date, stop_date,
				repeat_mode, repeat_step, month_flags, month_week_flags,
				week_day_flags, month_day_flags, work_time_mode,
				min_duration, max_duration, start_offset
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rule.VenueID, rule.Name, rule.Rank, string(rule.Status),
			nullableDate(rule.StartDate), nullableDate(rule.StopDate),
			string(rule.Repeat), rule.RepeatStep,
			int64(rule.Months), int64(rule.MonthWeeks),
			int64(rule.WeekDays), int64(rule.MonthDays),
			string(rule.WorkTime), rule.MinDuration, rule.MaxDuration, rule.StartOffset,
		)
		if err != nil {
			return fmt.Errorf("insert schedule rule: %w", err)
		}
		rule.ID, err = result.LastInsertId()
		if err != nil {
			return fmt.Errorf("schedule rule id: %w", err)
		}

		for position, slot := range rule.Slots {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO schedule_slots (rule_id, position, time_start, time_end)
				VALUES (?, ?, ?, ?)`,
				rule.ID, position, slot.TimeStart, slot.TimeEnd,
			); err != nil {
				return fmt.Errorf("insert slot %d for rule %d: %w", position, rule.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return models.ScheduleRule{}, err
	}
	return rule, nil
}

// SetRuleStatus flips a rule between active and disabled.
func (s *Store) SetRuleStatus(ctx context.Context, ruleID int64, status models.RuleStatus) error {
	result, err := s.DB.ExecContext(ctx,
		`UPDATE schedule_rules SET status = ? WHERE id = ?`,
		string(status), ruleID,
	)
	if err != nil {
		return fmt.Errorf("update status for rule %d: %w", ruleID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected for rule %d: %w", ruleID, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

type ruleScanner interface {
	Scan(dest ...any) error
}

func scanRule(row ruleScanner) (models.ScheduleRule, error) {
	var (
		rule                 models.ScheduleRule
		status, repeat, mode string
		startDate, stopDate  sql.NullString
		months, monthWeeks   int64
		weekDays, monthDays  int64
	)
	if err := row.Scan(
		&rule.ID, &rule.VenueID, &rule.Name, &rule.Rank, &status,
		&startDate, &stopDate, &repeat, &rule.RepeatStep,
		&months, &monthWeeks, &weekDays, &monthDays,
		&mode, &rule.MinDuration, &rule.MaxDuration, &rule.StartOffset,
	); err != nil {
		return models.ScheduleRule{}, fmt.Errorf("scan schedule rule: %w", err)
	}

	rule.Status = models.RuleStatus(status)
	rule.Repeat = models.RepeatMode(repeat)
	rule.WorkTime = models.WorkTimeMode(mode)
	rule.Months = models.FlagSet(months)
	rule.MonthWeeks = models.FlagSet(monthWeeks)
	rule.WeekDays = models.FlagSet(weekDays)
	rule.MonthDays = models.FlagSet(monthDays)

	var err error
	if rule.StartDate, err = parseNullableDate(startDate); err != nil {
		return models.ScheduleRule{}, fmt.Errorf("rule %d start date: %w", rule.ID, err)
	}
	if rule.StopDate, err = parseNullableDate(stopDate); err != nil {
		return models.ScheduleRule{}, fmt.Errorf("rule %d stop date: %w", rule.ID, err)
	}
	return rule, nil
}

func nullableDate(value time.Time) any {
	if value.IsZero() {
		return nil
	}
	return value.Format(dateLayout)
}

func parseNullableDate(value sql.NullString) (time.Time, error) {
	if !value.Valid || value.String == "" {
		return time.Time{}, nil
	}
	parsed, err := time.ParseInLocation(dateLayout, value.String, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", value.String, err)
	}
	return parsed, nil
}
