package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/praxis-labs/praxis/internal/domain"
)

// ActionFilter narrows ListActions. Zero values mean "no filter".
type ActionFilter struct {
	Search string
	Status domain.ActionStatus
	Tags   []string
	Page   int // 1-based
	Size   int
}

// InsertAction stores a new action item and fills in its ID and timestamps.
func (d *DB) InsertAction(a *domain.Action) error {
	now := time.Now()
	tags, err := json.Marshal(a.Tags)
	if err != nil {
		return fmt.Errorf("marshal tags: %w", err)
	}
	if a.Frequency == "" {
		a.Frequency = domain.FrequencyDaily
	}
	if a.Status == "" {
		a.Status = domain.StatusTodo
	}
	res, err := d.db.Exec(
		`INSERT INTO actions (user_id, book_title, source_excerpt, action_text, tags, frequency, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.UserID, a.BookTitle, a.SourceExcerpt, a.ActionText, string(tags), a.Frequency, a.Status, now.Unix(), now.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert action: %w", err)
	}
	a.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("action id: %w", err)
	}
	a.CreatedAt, a.UpdatedAt = now, now
	return nil
}

// GetAction loads one of the user's actions. Returns domain.ErrActionNotFound
// for missing, soft-deleted, or foreign rows alike.
func (d *DB) GetAction(userID, id int64) (*domain.Action, error) {
	return scanAction(d.db.QueryRow(
		actionSelect+` WHERE id = ? AND user_id = ? AND deleted_at IS NULL`, id, userID))
}

// ListActions returns one page of the user's actions, newest first, plus the
// unpaged total.
func (d *DB) ListActions(userID int64, f ActionFilter) ([]domain.Action, int, error) {
	where := []string{"user_id = ?", "deleted_at IS NULL"}
	args := []interface{}{userID}

	if f.Search != "" {
		where = append(where, "(action_text LIKE ? OR book_title LIKE ? OR source_excerpt LIKE ?)")
		pat := "%" + f.Search + "%"
		args = append(args, pat, pat, pat)
	}
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, f.Status)
	}
	for _, tag := range f.Tags {
		// Tags are stored as a JSON array of strings; substring match on the
		// quoted form is exact enough for tag tokens.
		where = append(where, "tags LIKE ?")
		args = append(args, `%"`+tag+`"%`)
	}

	clause := strings.Join(where, " AND ")

	var total int
	if err := d.db.QueryRow(`SELECT COUNT(*) FROM actions WHERE `+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count actions: %w", err)
	}

	if f.Page < 1 {
		f.Page = 1
	}
	if f.Size < 1 {
		f.Size = 20
	}
	args = append(args, f.Size, (f.Page-1)*f.Size)

	rows, err := d.db.Query(
		actionSelect+` WHERE `+clause+` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list actions: %w", err)
	}
	defer rows.Close()

	var actions []domain.Action
	for rows.Next() {
		a, err := scanAction(rows)
		if err != nil {
			return nil, 0, err
		}
		actions = append(actions, *a)
	}
	return actions, total, rows.Err()
}

// AllActions returns every live action for the user (for stats views).
func (d *DB) AllActions(userID int64) ([]domain.Action, error) {
	actions, _, err := d.ListActions(userID, ActionFilter{Size: 10000})
	return actions, err
}

// UpdateAction overwrites the editable fields of an action.
func (d *DB) UpdateAction(a *domain.Action) error {
	tags, err := json.Marshal(a.Tags)
	if err != nil {
		return fmt.Errorf("marshal tags: %w", err)
	}
	res, err := d.db.Exec(
		`UPDATE actions SET book_title = ?, source_excerpt = ?, action_text = ?, tags = ?, frequency = ?, status = ?, updated_at = ?
		 WHERE id = ? AND user_id = ? AND deleted_at IS NULL`,
		a.BookTitle, a.SourceExcerpt, a.ActionText, string(tags), a.Frequency, a.Status, time.Now().Unix(), a.ID, a.UserID,
	)
	if err != nil {
		return fmt.Errorf("update action: %w", err)
	}
	return requireRow(res, domain.ErrActionNotFound)
}

// UpdateActionStatus flips just the status.
func (d *DB) UpdateActionStatus(userID, id int64, status domain.ActionStatus) error {
	res, err := d.db.Exec(
		`UPDATE actions SET status = ?, updated_at = ? WHERE id = ? AND user_id = ? AND deleted_at IS NULL`,
		status, time.Now().Unix(), id, userID)
	if err != nil {
		return fmt.Errorf("update action status: %w", err)
	}
	return requireRow(res, domain.ErrActionNotFound)
}

// SoftDeleteAction hides the action from every query.
func (d *DB) SoftDeleteAction(userID, id int64) error {
	now := time.Now().Unix()
	res, err := d.db.Exec(
		`UPDATE actions SET deleted_at = ?, updated_at = ? WHERE id = ? AND user_id = ? AND deleted_at IS NULL`,
		now, now, id, userID)
	if err != nil {
		return fmt.Errorf("delete action: %w", err)
	}
	return requireRow(res, domain.ErrActionNotFound)
}

// CountActionsByStatus returns live action counts keyed by status.
func (d *DB) CountActionsByStatus(userID int64) (map[domain.ActionStatus]int, error) {
	rows, err := d.db.Query(
		`SELECT status, COUNT(*) FROM actions WHERE user_id = ? AND deleted_at IS NULL GROUP BY status`, userID)
	if err != nil {
		return nil, fmt.Errorf("count by status: %w", err)
	}
	defer rows.Close()

	counts := map[domain.ActionStatus]int{
		domain.StatusTodo: 0, domain.StatusInProgress: 0, domain.StatusDone: 0,
	}
	for rows.Next() {
		var status domain.ActionStatus
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

const actionSelect = `SELECT id, user_id, book_title, source_excerpt, action_text, tags, frequency, status, created_at, updated_at, deleted_at FROM actions`

func scanAction(s scanner) (*domain.Action, error) {
	var a domain.Action
	var tags string
	var created, updated int64
	var deleted sql.NullInt64
	err := s.Scan(&a.ID, &a.UserID, &a.BookTitle, &a.SourceExcerpt, &a.ActionText, &tags, &a.Frequency, &a.Status, &created, &updated, &deleted)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrActionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan action: %w", err)
	}
	if err := json.Unmarshal([]byte(tags), &a.Tags); err != nil {
		a.Tags = nil // tolerate legacy junk rather than failing the read
	}
	a.CreatedAt = time.Unix(created, 0)
	a.UpdatedAt = time.Unix(updated, 0)
	a.DeletedAt = timePtr(deleted)
	return &a, nil
}

func requireRow(res sql.Result, missing error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return missing
	}
	return nil
}
