package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/praxis-labs/praxis/internal/domain"
)

// GetReminderSetting loads the user's reminder settings, creating the
// defaults on first access (enabled, behavior triggers on, daily schedule
// off, 3-day inactivity threshold).
func (d *DB) GetReminderSetting(userID int64) (*domain.ReminderSetting, error) {
	setting, err := d.getReminderSetting(userID)
	if err == nil {
		return setting, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	now := time.Now().Unix()
	_, err = d.db.Exec(
		`INSERT INTO reminder_settings (user_id, created_at, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(user_id) DO NOTHING`,
		userID, now, now)
	if err != nil {
		return nil, fmt.Errorf("create default reminder setting: %w", err)
	}
	return d.getReminderSetting(userID)
}

// UpdateReminderSetting overwrites the user's settings row.
func (d *DB) UpdateReminderSetting(s *domain.ReminderSetting) error {
	_, err := d.db.Exec(
		`INSERT INTO reminder_settings
			(user_id, is_enabled, daily_enabled, daily_time, reminder_days, after_action, after_new_action,
			 inactive_days_threshold, browser_notification, email_notification, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
			is_enabled = excluded.is_enabled,
			daily_enabled = excluded.daily_enabled,
			daily_time = excluded.daily_time,
			reminder_days = excluded.reminder_days,
			after_action = excluded.after_action,
			after_new_action = excluded.after_new_action,
			inactive_days_threshold = excluded.inactive_days_threshold,
			browser_notification = excluded.browser_notification,
			email_notification = excluded.email_notification,
			updated_at = excluded.updated_at`,
		s.UserID, s.Enabled, s.DailyEnabled, nullStr(s.DailyTime), weekdaysToJSON(s.ActiveWeekdays),
		s.AfterAction, s.AfterNewAction, s.InactiveThresholdDays, s.BrowserNotification, s.EmailNotification,
		time.Now().Unix(), time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("upsert reminder setting: %w", err)
	}
	return nil
}

// ListEnabledSettings returns settings for every user with reminders on,
// for the periodic sweeps.
func (d *DB) ListEnabledSettings() ([]domain.ReminderSetting, error) {
	rows, err := d.db.Query(reminderSettingSelect + ` WHERE is_enabled = 1`)
	if err != nil {
		return nil, fmt.Errorf("list enabled settings: %w", err)
	}
	defer rows.Close()

	var settings []domain.ReminderSetting
	for rows.Next() {
		s, err := scanReminderSetting(rows)
		if err != nil {
			return nil, err
		}
		settings = append(settings, *s)
	}
	return settings, rows.Err()
}

// InsertReminderLog attempts the atomic check-and-insert that makes reminder
// delivery effectively at-most-once per (user, kind, day). Returns true when
// this call won the slot; false means some other sweep already fired today
// and the caller must not deliver.
func (d *DB) InsertReminderLog(key domain.DedupKey, at time.Time, method string) (bool, error) {
	res, err := d.db.Exec(
		`INSERT INTO reminder_log (user_id, kind, day, triggered_at, method)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(user_id, kind, day) DO NOTHING`,
		key.UserID, key.Kind, key.Day, at.Unix(), method)
	if err != nil {
		return false, fmt.Errorf("insert reminder log: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// LastFired returns when a reminder of the given kind last fired for the
// user, nil when it never has.
func (d *DB) LastFired(userID int64, kind domain.ReminderKind) (*time.Time, error) {
	var ts sql.NullInt64
	err := d.db.QueryRow(
		`SELECT MAX(triggered_at) FROM reminder_log WHERE user_id = ? AND kind = ?`,
		userID, kind).Scan(&ts)
	if err != nil {
		return nil, fmt.Errorf("last fired: %w", err)
	}
	return timePtr(ts), nil
}

// ListReminderLogs returns one page of the user's fired reminders, newest
// first, plus the unpaged total.
func (d *DB) ListReminderLogs(userID int64, page, size int) ([]domain.ReminderLog, int, error) {
	var total int
	if err := d.db.QueryRow(
		`SELECT COUNT(*) FROM reminder_log WHERE user_id = ?`, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count reminder logs: %w", err)
	}

	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 20
	}
	rows, err := d.db.Query(
		`SELECT id, user_id, kind, day, triggered_at, dismissed_at, action_taken, method
		 FROM reminder_log WHERE user_id = ? ORDER BY triggered_at DESC LIMIT ? OFFSET ?`,
		userID, size, (page-1)*size)
	if err != nil {
		return nil, 0, fmt.Errorf("list reminder logs: %w", err)
	}
	defer rows.Close()

	var logs []domain.ReminderLog
	for rows.Next() {
		var l domain.ReminderLog
		var triggered int64
		var dismissed sql.NullInt64
		if err := rows.Scan(&l.ID, &l.UserID, &l.Kind, &l.Day, &triggered, &dismissed, &l.ActionTaken, &l.Method); err != nil {
			return nil, 0, err
		}
		l.TriggeredAt = time.Unix(triggered, 0)
		l.DismissedAt = timePtr(dismissed)
		logs = append(logs, l)
	}
	return logs, total, rows.Err()
}

// DismissReminderLog marks a fired reminder as seen.
func (d *DB) DismissReminderLog(userID, id int64, at time.Time) error {
	res, err := d.db.Exec(
		`UPDATE reminder_log SET dismissed_at = ? WHERE id = ? AND user_id = ? AND dismissed_at IS NULL`,
		at.Unix(), id, userID)
	if err != nil {
		return fmt.Errorf("dismiss reminder log: %w", err)
	}
	return requireRow(res, domain.ErrReminderLogNotFound)
}

func (d *DB) getReminderSetting(userID int64) (*domain.ReminderSetting, error) {
	return scanReminderSetting(d.db.QueryRow(reminderSettingSelect+` WHERE user_id = ?`, userID))
}

const reminderSettingSelect = `SELECT user_id, is_enabled, daily_enabled, daily_time, reminder_days, after_action, after_new_action, inactive_days_threshold, browser_notification, email_notification, created_at, updated_at FROM reminder_settings`

func scanReminderSetting(s scanner) (*domain.ReminderSetting, error) {
	var r domain.ReminderSetting
	var dailyTime sql.NullString
	var days string
	var created, updated int64
	err := s.Scan(&r.UserID, &r.Enabled, &r.DailyEnabled, &dailyTime, &days, &r.AfterAction, &r.AfterNewAction,
		&r.InactiveThresholdDays, &r.BrowserNotification, &r.EmailNotification, &created, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan reminder setting: %w", err)
	}
	r.DailyTime = dailyTime.String
	// A weekday list that fails to parse degrades to the empty set — the
	// user becomes never-eligible instead of the sweep failing.
	r.ActiveWeekdays, _ = weekdaysFromJSON(days)
	r.CreatedAt = time.Unix(created, 0)
	r.UpdatedAt = time.Unix(updated, 0)
	return &r, nil
}

// ─── Weekday convention boundary ────────────────────────────────────────────
// Rows keep the historical Sunday=0 JSON list; the engine speaks ISO
// Monday=0 only. The translation lives here and nowhere else.

func weekdaysToJSON(set domain.WeekdaySet) string {
	sunday := make([]int, 0, 7)
	for d := 0; d < 7; d++ { // d is Sunday-indexed
		if set.Contains((d + 6) % 7) {
			sunday = append(sunday, d)
		}
	}
	b, _ := json.Marshal(sunday)
	return string(b)
}

func weekdaysFromJSON(s string) (domain.WeekdaySet, error) {
	var sunday []int
	if err := json.Unmarshal([]byte(s), &sunday); err != nil {
		return domain.WeekdaySet{}, fmt.Errorf("parse reminder_days %q: %w", s, err)
	}
	var set domain.WeekdaySet
	for _, d := range sunday {
		if d >= 0 && d < 7 {
			set[(d+6)%7] = true
		}
	}
	return set, nil
}
