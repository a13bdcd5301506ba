// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/olegiv/tcms-go/internal/auth"
)

// SeedAdminParams holds the credentials of the first admin account.
type SeedAdminParams struct {
	Username string
	Email    string
	Password string
}

// SeedAdmin creates the first admin when admin_users is empty. It does
// nothing when users exist or no password is configured.
func SeedAdmin(ctx context.Context, db *sqlx.DB, p SeedAdminParams) error {
	users := NewUsers(db)

	n, err := users.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		slog.Debug("admin users exist, skipping seed")
		return nil
	}
	if p.Password == "" {
		slog.Warn("no admin users and no seed password configured; set TCMS_SEED_ADMIN_PASSWORD to create one")
		return nil
	}

	hash, err := auth.HashPassword(p.Password)
	if err != nil {
		return fmt.Errorf("hashing admin password: %w", err)
	}

	user, err := users.Create(ctx, CreateUserParams{
		Username:     p.Username,
		Email:        p.Email,
		PasswordHash: hash,
		Role:         RoleAdmin,
	})
	if err != nil {
		return fmt.Errorf("creating admin user: %w", err)
	}

	slog.Info("created admin user", "username", user.Username, "email", user.Email)
	return nil
}
