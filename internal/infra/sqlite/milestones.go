package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/praxis-labs/praxis/internal/domain"
)

// UpsertMilestone records a detected milestone, once. Re-detecting the same
// (user, subject, kind) is a no-op; the return value reports whether this
// call inserted it.
func (d *DB) UpsertMilestone(userID int64, m domain.Milestone) (bool, error) {
	res, err := d.db.Exec(
		`INSERT INTO milestones (user_id, subject_id, kind, achieved_on, description, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id, subject_id, kind) DO NOTHING`,
		userID, m.SubjectID, m.Kind, m.AchievedOn.Format(dayFormat), m.Description, time.Now().Unix())
	if err != nil {
		return false, fmt.Errorf("upsert milestone: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListMilestones returns the user's milestones, most recently achieved
// first. limit <= 0 means no limit.
func (d *DB) ListMilestones(userID int64, limit int) ([]domain.Milestone, error) {
	q := `SELECT subject_id, kind, achieved_on, description FROM milestones
	      WHERE user_id = ? ORDER BY achieved_on DESC, id DESC`
	args := []any{userID}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := d.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("list milestones: %w", err)
	}
	defer rows.Close()

	var list []domain.Milestone
	for rows.Next() {
		var m domain.Milestone
		var achieved string
		if err := rows.Scan(&m.SubjectID, &m.Kind, &achieved, &m.Description); err != nil {
			return nil, err
		}
		if m.AchievedOn, err = parseDay(achieved); err != nil {
			return nil, fmt.Errorf("milestone achieved_on: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

// GetTarget returns the user's completion target for a subject, nil when
// none is set.
func (d *DB) GetTarget(userID, subjectID int64) (*domain.Target, error) {
	var t domain.Target
	var start string
	err := d.db.QueryRow(
		`SELECT subject_id, start_date, duration_days, require_count, count_goal
		 FROM targets WHERE user_id = ? AND subject_id = ?`,
		userID, subjectID).Scan(&t.SubjectID, &start, &t.DurationDays, &t.RequireCount, &t.CountGoal)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get target: %w", err)
	}
	if t.StartDate, err = parseDay(start); err != nil {
		return nil, fmt.Errorf("target start_date: %w", err)
	}
	return &t, nil
}

// SetTarget creates or replaces the user's completion target for a subject.
func (d *DB) SetTarget(userID int64, t domain.Target) error {
	_, err := d.db.Exec(
		`INSERT INTO targets (user_id, subject_id, start_date, duration_days, require_count, count_goal)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id, subject_id) DO UPDATE SET
			start_date = excluded.start_date,
			duration_days = excluded.duration_days,
			require_count = excluded.require_count,
			count_goal = excluded.count_goal`,
		userID, t.SubjectID, t.StartDate.Format(dayFormat), t.DurationDays, t.RequireCount, t.CountGoal)
	if err != nil {
		return fmt.Errorf("set target: %w", err)
	}
	return nil
}
