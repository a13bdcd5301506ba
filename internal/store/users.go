// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/olegiv/tcms-go/internal/apperr"
)

// User roles.
const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
)

// User is an admin panel account.
type User struct {
	ID           int64     `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         string    `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// CreateUserParams holds the fields of a new user.
type CreateUserParams struct {
	Username     string
	Email        string
	PasswordHash string
	Role         string
}

const userColumns = "`id`, `username`, `email`, `password_hash`, `role`, `created_at`, `updated_at`"

// Users reads and writes admin_users.
type Users struct {
	db *sqlx.DB
}

// NewUsers creates the user repository.
func NewUsers(db *sqlx.DB) *Users {
	return &Users{db: db}
}

func (u *Users) get(ctx context.Context, where string, arg any) (User, error) {
	var user User
	query := "SELECT " + userColumns + " FROM `admin_users` WHERE " + where + " = ?"
	err := u.db.GetContext(ctx, &user, u.db.Rebind(query), arg)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, apperr.NotFound("User not found")
	}
	if err != nil {
		return User{}, fmt.Errorf("getting user: %w", err)
	}
	return user, nil
}

// GetByID returns a user by id.
func (u *Users) GetByID(ctx context.Context, id int64) (User, error) {
	return u.get(ctx, "`id`", id)
}

// GetByUsername returns a user by username.
func (u *Users) GetByUsername(ctx context.Context, username string) (User, error) {
	return u.get(ctx, "`username`", username)
}

// Create inserts a user.
func (u *Users) Create(ctx context.Context, arg CreateUserParams) (User, error) {
	if arg.Role == "" {
		arg.Role = RoleEditor
	}
	ts := now()
	res, err := u.db.ExecContext(ctx, u.db.Rebind(
		"INSERT INTO `admin_users` (`username`, `email`, `password_hash`, `role`, `created_at`, `updated_at`) VALUES (?, ?, ?, ?, ?, ?)"),
		arg.Username, arg.Email, arg.PasswordHash, arg.Role, ts, ts)
	if err != nil {
		return User{}, fmt.Errorf("creating user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return User{}, fmt.Errorf("reading new user id: %w", err)
	}
	return u.GetByID(ctx, id)
}

// UpdatePassword replaces the password hash of a user.
func (u *Users) UpdatePassword(ctx context.Context, id int64, hash string) error {
	res, err := u.db.ExecContext(ctx, u.db.Rebind(
		"UPDATE `admin_users` SET `password_hash` = ?, `updated_at` = ? WHERE `id` = ?"),
		hash, now(), id)
	if err != nil {
		return fmt.Errorf("updating password: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperr.NotFound("User not found")
	}
	return nil
}

// Count returns the number of users.
func (u *Users) Count(ctx context.Context) (int, error) {
	var n int
	if err := u.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM `admin_users`"); err != nil {
		return 0, fmt.Errorf("counting users: %w", err)
	}
	return n, nil
}
