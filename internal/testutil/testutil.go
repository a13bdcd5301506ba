// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package testutil provides shared test helpers for the tcms project.
package testutil

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/olegiv/tcms-go/internal/store"
)

// TestSecret is a token secret that passes config validation.
const TestSecret = "test-secret-0123456789-abcdefghijklmnop"

// TestLogger creates a silent test logger that only outputs warnings and errors.
func TestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
}

// TestDB creates a temporary SQLite database with all migrations applied.
// Returns the database and a cleanup function that should be deferred.
func TestDB(t *testing.T) (*sqlx.DB, func()) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "tcms-test.db")

	db, err := store.NewDB(store.DriverSQLite, dbPath, store.DefaultDBConfig())
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}

	if err := store.Migrate(context.Background(), db); err != nil {
		_ = db.Close()
		t.Fatalf("Migrate: %v", err)
	}

	return db, func() {
		_ = db.Close()
	}
}
