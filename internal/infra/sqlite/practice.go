package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/praxis-labs/praxis/internal/domain"
)

// PracticeFilter narrows ListPracticeLogs. Zero values mean "no filter".
type PracticeFilter struct {
	ActionID int64
	Result   domain.Outcome
	From, To time.Time
	Page     int
	Size     int
}

// InsertPracticeLog stores one dated practice entry. The (action, day)
// uniqueness constraint backs the engine's no-duplicates assumption: a
// losing insert returns domain.ErrDuplicateLog and writes nothing.
func (d *DB) InsertPracticeLog(p *domain.PracticeLog) error {
	now := time.Now()
	res, err := d.db.Exec(
		`INSERT INTO practice_logs (user_id, action_id, date, result, notes, rating, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(action_id, date) WHERE deleted_at IS NULL DO NOTHING`,
		p.UserID, p.ActionID, p.Date.Format(dayFormat), p.Result, nullStr(p.Notes), nullableInt(p.Rating), now.Unix(), now.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert practice log: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrDuplicateLog
	}
	p.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("practice log id: %w", err)
	}
	p.CreatedAt, p.UpdatedAt = now, now
	return nil
}

// GetPracticeLog loads one of the user's practice logs.
func (d *DB) GetPracticeLog(userID, id int64) (*domain.PracticeLog, error) {
	return scanPracticeLog(d.db.QueryRow(
		practiceSelect+` WHERE id = ? AND user_id = ? AND deleted_at IS NULL`, id, userID))
}

// ListPracticeLogs returns one page of the user's logs, most recent date
// first, plus the unpaged total.
func (d *DB) ListPracticeLogs(userID int64, f PracticeFilter) ([]domain.PracticeLog, int, error) {
	where := []string{"user_id = ?", "deleted_at IS NULL"}
	args := []interface{}{userID}

	if f.ActionID != 0 {
		where = append(where, "action_id = ?")
		args = append(args, f.ActionID)
	}
	if f.Result != "" {
		where = append(where, "result = ?")
		args = append(args, f.Result)
	}
	if !f.From.IsZero() {
		where = append(where, "date >= ?")
		args = append(args, f.From.Format(dayFormat))
	}
	if !f.To.IsZero() {
		where = append(where, "date <= ?")
		args = append(args, f.To.Format(dayFormat))
	}
	clause := strings.Join(where, " AND ")

	var total int
	if err := d.db.QueryRow(`SELECT COUNT(*) FROM practice_logs WHERE `+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count practice logs: %w", err)
	}

	if f.Page < 1 {
		f.Page = 1
	}
	if f.Size < 1 {
		f.Size = 20
	}
	args = append(args, f.Size, (f.Page-1)*f.Size)

	rows, err := d.db.Query(
		practiceSelect+` WHERE `+clause+` ORDER BY date DESC, id DESC LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list practice logs: %w", err)
	}
	defer rows.Close()

	var logs []domain.PracticeLog
	for rows.Next() {
		p, err := scanPracticeLog(rows)
		if err != nil {
			return nil, 0, err
		}
		logs = append(logs, *p)
	}
	return logs, total, rows.Err()
}

// UpdatePracticeLog overwrites result, notes, and rating.
func (d *DB) UpdatePracticeLog(p *domain.PracticeLog) error {
	res, err := d.db.Exec(
		`UPDATE practice_logs SET result = ?, notes = ?, rating = ?, updated_at = ?
		 WHERE id = ? AND user_id = ? AND deleted_at IS NULL`,
		p.Result, nullStr(p.Notes), nullableInt(p.Rating), time.Now().Unix(), p.ID, p.UserID,
	)
	if err != nil {
		return fmt.Errorf("update practice log: %w", err)
	}
	return requireRow(res, domain.ErrPracticeLogNotFound)
}

// SoftDeletePracticeLog hides the log; the unique day slot opens up again.
func (d *DB) SoftDeletePracticeLog(userID, id int64) error {
	now := time.Now().Unix()
	res, err := d.db.Exec(
		`UPDATE practice_logs SET deleted_at = ?, updated_at = ? WHERE id = ? AND user_id = ? AND deleted_at IS NULL`,
		now, now, id, userID)
	if err != nil {
		return fmt.Errorf("delete practice log: %w", err)
	}
	return requireRow(res, domain.ErrPracticeLogNotFound)
}

// ─── Engine feeds ───────────────────────────────────────────────────────────
// The insight engine consumes plain records; these queries are its
// persistence collaborator surface.

// ListSuccessDates returns every success date, unordered, for one action
// when actionID is nonzero or across all actions otherwise.
func (d *DB) ListSuccessDates(userID, actionID int64) ([]time.Time, error) {
	where := `user_id = ? AND result = ? AND deleted_at IS NULL`
	args := []interface{}{userID, domain.OutcomeSuccess}
	if actionID != 0 {
		where += ` AND action_id = ?`
		args = append(args, actionID)
	}
	rows, err := d.db.Query(`SELECT date FROM practice_logs WHERE `+where, args...)
	if err != nil {
		return nil, fmt.Errorf("list success dates: %w", err)
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		day, err := parseDay(s)
		if err != nil {
			return nil, fmt.Errorf("stored date %q: %w", s, err)
		}
		dates = append(dates, day)
	}
	return dates, rows.Err()
}

// ListEvents returns the user's events in [start, end], for one action when
// actionID is nonzero or across all actions otherwise.
func (d *DB) ListEvents(userID, actionID int64, start, end time.Time) ([]domain.EventRecord, error) {
	where := `user_id = ? AND date >= ? AND date <= ? AND deleted_at IS NULL`
	args := []interface{}{userID, start.Format(dayFormat), end.Format(dayFormat)}
	if actionID != 0 {
		where += ` AND action_id = ?`
		args = append(args, actionID)
	}

	rows, err := d.db.Query(
		`SELECT action_id, date, result FROM practice_logs WHERE `+where+` ORDER BY date`, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []domain.EventRecord
	for rows.Next() {
		var e domain.EventRecord
		var s string
		if err := rows.Scan(&e.SubjectID, &s, &e.Outcome); err != nil {
			return nil, err
		}
		if e.OccurredOn, err = parseDay(s); err != nil {
			return nil, fmt.Errorf("stored date %q: %w", s, err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// AllEvents returns the user's full practice history as events.
func (d *DB) AllEvents(userID int64) ([]domain.EventRecord, error) {
	return d.ListEvents(userID, 0, time.Unix(0, 0), time.Now().AddDate(10, 0, 0))
}

// LastActivity returns the user's most recent practice date, nil when they
// have never logged one.
func (d *DB) LastActivity(userID int64) (*time.Time, error) {
	var s sql.NullString
	err := d.db.QueryRow(
		`SELECT MAX(date) FROM practice_logs WHERE user_id = ? AND deleted_at IS NULL`, userID).Scan(&s)
	if err != nil {
		return nil, fmt.Errorf("last activity: %w", err)
	}
	if !s.Valid {
		return nil, nil
	}
	day, err := parseDay(s.String)
	if err != nil {
		return nil, fmt.Errorf("stored date %q: %w", s.String, err)
	}
	return &day, nil
}

// CalendarMonth returns the user's logs for one month, keyed by day of month.
func (d *DB) CalendarMonth(userID int64, year int, month time.Month) (map[int][]domain.PracticeLog, error) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	logs, _, err := d.ListPracticeLogs(userID, PracticeFilter{From: first, To: last, Size: 10000})
	if err != nil {
		return nil, err
	}
	byDay := make(map[int][]domain.PracticeLog)
	for _, l := range logs {
		byDay[l.Date.Day()] = append(byDay[l.Date.Day()], l)
	}
	return byDay, nil
}

const practiceSelect = `SELECT id, user_id, action_id, date, result, notes, rating, created_at, updated_at, deleted_at FROM practice_logs`

func scanPracticeLog(s scanner) (*domain.PracticeLog, error) {
	var p domain.PracticeLog
	var date string
	var notes sql.NullString
	var rating sql.NullInt64
	var created, updated int64
	var deleted sql.NullInt64
	err := s.Scan(&p.ID, &p.UserID, &p.ActionID, &date, &p.Result, &notes, &rating, &created, &updated, &deleted)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrPracticeLogNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan practice log: %w", err)
	}
	if p.Date, err = parseDay(date); err != nil {
		return nil, fmt.Errorf("stored date %q: %w", date, err)
	}
	p.Notes = notes.String
	if rating.Valid {
		r := int(rating.Int64)
		p.Rating = &r
	}
	p.CreatedAt = time.Unix(created, 0)
	p.UpdatedAt = time.Unix(updated, 0)
	p.DeletedAt = timePtr(deleted)
	return &p, nil
}

func nullableInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}
