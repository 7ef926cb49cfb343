package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/praxis-labs/praxis/internal/domain"
)

// CreateUser inserts a new account. Returns domain.ErrEmailTaken when the
// email is already registered.
func (d *DB) CreateUser(email, name, passwordHash string) (*domain.User, error) {
	now := time.Now()
	res, err := d.db.Exec(
		`INSERT INTO users (email, name, password_hash, is_active, plan, created_at, updated_at)
		 VALUES (?, ?, ?, 1, 'free', ?, ?)`,
		email, name, passwordHash, now.Unix(), now.Unix(),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return nil, domain.ErrEmailTaken
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("user id: %w", err)
	}
	return d.GetUser(id)
}

// GetUser loads an active account by id.
func (d *DB) GetUser(id int64) (*domain.User, error) {
	return scanUser(d.db.QueryRow(
		`SELECT id, email, name, password_hash, is_active, plan, created_at, updated_at, deleted_at
		 FROM users WHERE id = ? AND deleted_at IS NULL`, id))
}

// GetUserByEmail loads an active account by email.
func (d *DB) GetUserByEmail(email string) (*domain.User, error) {
	return scanUser(d.db.QueryRow(
		`SELECT id, email, name, password_hash, is_active, plan, created_at, updated_at, deleted_at
		 FROM users WHERE email = ? AND deleted_at IS NULL`, email))
}

// SoftDeleteUser marks the account deleted; its rows stay for anonymized
// statistics but every query filters them out.
func (d *DB) SoftDeleteUser(id int64) error {
	now := time.Now().Unix()
	_, err := d.db.Exec(
		`UPDATE users SET deleted_at = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`,
		now, now, id)
	return err
}

func scanUser(s scanner) (*domain.User, error) {
	var u domain.User
	var created, updated int64
	var deleted sql.NullInt64
	err := s.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.IsActive, &u.Plan, &created, &updated, &deleted)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	u.CreatedAt = time.Unix(created, 0)
	u.UpdatedAt = time.Unix(updated, 0)
	u.DeletedAt = timePtr(deleted)
	return &u, nil
}
