// Package sqlite provides SQLite-based persistent storage for praxis.
// Uses WAL mode for concurrent reads and crash-safe writes.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver (no CGO required)
)

// DB wraps a SQLite connection with WAL mode and migrations.
type DB struct {
	db *sql.DB
}

// Open creates or opens the SQLite database at dir/praxis.db.
// Enables WAL mode, foreign keys, and a 5-second busy timeout.
func Open(dir string) (*DB, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	dbPath := filepath.Join(dir, "praxis.db")
	dsn := dbPath + "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	// Connection pool settings for SQLite
	db.SetMaxOpenConns(1) // SQLite is single-writer
	db.SetMaxIdleConns(1)

	d := &DB{db: db}
	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return d, nil
}

// Close cleanly shuts down the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// Ping checks database connectivity.
func (d *DB) Ping() error {
	return d.db.Ping()
}

// migrate runs idempotent schema migrations.
func (d *DB) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			email         TEXT NOT NULL UNIQUE,
			name          TEXT NOT NULL,
			password_hash TEXT NOT NULL,
			is_active     BOOLEAN NOT NULL DEFAULT 1,
			plan          TEXT NOT NULL DEFAULT 'free',
			created_at    INTEGER NOT NULL,
			updated_at    INTEGER NOT NULL,
			deleted_at    INTEGER
		)`,

		`CREATE TABLE IF NOT EXISTS actions (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id        INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			book_title     TEXT NOT NULL,
			source_excerpt TEXT NOT NULL,
			action_text    TEXT NOT NULL,
			tags           TEXT NOT NULL DEFAULT '[]',
			frequency      TEXT NOT NULL DEFAULT 'daily',
			status         TEXT NOT NULL DEFAULT 'todo',
			created_at     INTEGER NOT NULL,
			updated_at     INTEGER NOT NULL,
			deleted_at     INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_actions_user ON actions(user_id)`,

		// One practice log per (action, day). Soft-deleted rows are excluded
		// from the constraint so a day can be re-logged after a deletion.
		`CREATE TABLE IF NOT EXISTS practice_logs (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id    INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			action_id  INTEGER NOT NULL REFERENCES actions(id) ON DELETE CASCADE,
			date       TEXT NOT NULL,
			result     TEXT NOT NULL,
			notes      TEXT,
			rating     INTEGER,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL,
			deleted_at INTEGER
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_practice_unique_day
			ON practice_logs(action_id, date) WHERE deleted_at IS NULL`,
		`CREATE INDEX IF NOT EXISTS idx_practice_user_date ON practice_logs(user_id, date)`,

		`CREATE TABLE IF NOT EXISTS reminder_settings (
			user_id                 INTEGER PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
			is_enabled              BOOLEAN NOT NULL DEFAULT 1,
			daily_enabled           BOOLEAN NOT NULL DEFAULT 0,
			daily_time              TEXT,
			reminder_days           TEXT NOT NULL DEFAULT '[0,1,2,3,4,5,6]',
			after_action            BOOLEAN NOT NULL DEFAULT 1,
			after_new_action        BOOLEAN NOT NULL DEFAULT 1,
			inactive_days_threshold INTEGER NOT NULL DEFAULT 3,
			browser_notification    BOOLEAN NOT NULL DEFAULT 1,
			email_notification      BOOLEAN NOT NULL DEFAULT 1,
			created_at              INTEGER NOT NULL,
			updated_at              INTEGER NOT NULL
		)`,

		// The UNIQUE constraint is the at-most-once-per-day guarantee: the
		// sweep only delivers when its INSERT wins this index.
		`CREATE TABLE IF NOT EXISTS reminder_log (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id      INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			kind         TEXT NOT NULL,
			day          TEXT NOT NULL,
			triggered_at INTEGER NOT NULL,
			dismissed_at INTEGER,
			action_taken BOOLEAN NOT NULL DEFAULT 0,
			method       TEXT NOT NULL DEFAULT 'both',
			UNIQUE(user_id, kind, day)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_reminder_log_user ON reminder_log(user_id, triggered_at)`,

		`CREATE TABLE IF NOT EXISTS milestones (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id     INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			subject_id  INTEGER NOT NULL,
			kind        TEXT NOT NULL,
			achieved_on TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			created_at  INTEGER NOT NULL,
			UNIQUE(user_id, subject_id, kind)
		)`,

		`CREATE TABLE IF NOT EXISTS targets (
			user_id       INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			subject_id    INTEGER NOT NULL,
			start_date    TEXT NOT NULL,
			duration_days INTEGER NOT NULL,
			require_count BOOLEAN NOT NULL DEFAULT 0,
			count_goal    INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (user_id, subject_id)
		)`,
	}

	for i, m := range migrations {
		if _, err := d.db.Exec(m); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

// ─── Helpers ────────────────────────────────────────────────────────────────

// scanner abstracts *sql.Row and *sql.Rows for shared scan helpers.
type scanner interface {
	Scan(dest ...interface{}) error
}

const dayFormat = "2006-01-02"

// parseDay parses a stored "2006-01-02" date as midnight UTC.
func parseDay(s string) (time.Time, error) {
	return time.Parse(dayFormat, s)
}

func nullableUnix(t *time.Time) sql.NullInt64 {
	if t == nil || t.IsZero() {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.Unix(), Valid: true}
}

func timePtr(n sql.NullInt64) *time.Time {
	if !n.Valid {
		return nil
	}
	t := time.Unix(n.Int64, 0)
	return &t
}

func nullStr(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
