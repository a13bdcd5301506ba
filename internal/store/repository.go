// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/olegiv/tcms-go/internal/apperr"
	"github.com/olegiv/tcms-go/internal/content"
)

// Query narrows and pages a list. Where keys must be schema columns.
type Query struct {
	Where  map[string]any
	Limit  int // 0 = no limit
	Offset int
}

// Repository reads and writes the rows of one schema. All SQL is built
// from schema identifiers; client values only travel as bind arguments.
type Repository struct {
	db     *sqlx.DB
	schema *content.Schema
}

// NewRepository creates a repository for the schema.
func NewRepository(db *sqlx.DB, schema *content.Schema) *Repository {
	return &Repository{db: db, schema: schema}
}

// Schema returns the schema served by the repository.
func (r *Repository) Schema() *content.Schema {
	return r.schema
}

func quote(ident string) string {
	return "`" + ident + "`"
}

func (r *Repository) selectList() string {
	cols := r.schema.SelectColumns()
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = quote(c)
	}
	return strings.Join(quoted, ", ")
}

func (r *Repository) notFound() error {
	return apperr.NotFound(r.schema.Label + " not found")
}

// where renders the WHERE clause of q in a stable column order.
func (r *Repository) where(conds map[string]any) (string, []any, error) {
	if len(conds) == 0 {
		return "", nil, nil
	}

	keys := make([]string, 0, len(conds))
	for k := range conds {
		if _, ok := r.schema.Column(k); !ok {
			return "", nil, fmt.Errorf("filter on unknown column %q of %s", k, r.schema.Table)
		}
		keys = append(keys, k)
	}
	slices.Sort(keys)

	parts := make([]string, len(keys))
	args := make([]any, len(keys))
	for i, k := range keys {
		parts[i] = quote(k) + " = ?"
		args[i] = conds[k]
	}
	return " WHERE " + strings.Join(parts, " AND "), args, nil
}

// List returns the rows matching q in schema order.
func (r *Repository) List(ctx context.Context, q Query) ([]content.Record, error) {
	where, args, err := r.where(q.Where)
	if err != nil {
		return nil, err
	}

	query := "SELECT " + r.selectList() + " FROM " + quote(r.schema.Table) + where
	if r.schema.OrderBy != "" {
		query += " ORDER BY " + r.schema.OrderBy
	}
	if q.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, q.Limit, q.Offset)
	}

	rows, err := r.db.QueryxContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", r.schema.Table, err)
	}
	defer func() { _ = rows.Close() }()

	records := make([]content.Record, 0)
	for rows.Next() {
		row := make(map[string]any)
		if err := rows.MapScan(row); err != nil {
			return nil, fmt.Errorf("scanning %s: %w", r.schema.Table, err)
		}
		records = append(records, r.schema.Decode(row))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s: %w", r.schema.Table, err)
	}
	return records, nil
}

// Count returns the number of rows matching the conditions.
func (r *Repository) Count(ctx context.Context, conds map[string]any) (int, error) {
	where, args, err := r.where(conds)
	if err != nil {
		return 0, err
	}

	var total int
	query := "SELECT COUNT(*) FROM " + quote(r.schema.Table) + where
	if err := r.db.GetContext(ctx, &total, r.db.Rebind(query), args...); err != nil {
		return 0, fmt.Errorf("counting %s: %w", r.schema.Table, err)
	}
	return total, nil
}

// Get returns one row by id.
func (r *Repository) Get(ctx context.Context, id int64) (content.Record, error) {
	query := "SELECT " + r.selectList() + " FROM " + quote(r.schema.Table) + " WHERE `id` = ?"

	row := make(map[string]any)
	err := r.db.QueryRowxContext(ctx, r.db.Rebind(query), id).MapScan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, r.notFound()
	}
	if err != nil {
		return nil, fmt.Errorf("getting %s %d: %w", r.schema.Table, id, err)
	}
	return r.schema.Decode(row), nil
}

// Create inserts a row from parsed values and returns it as stored.
func (r *Repository) Create(ctx context.Context, values map[string]any) (content.Record, error) {
	id, err := r.insert(ctx, 0, values)
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, id)
}

func (r *Repository) insert(ctx context.Context, id int64, values map[string]any) (int64, error) {
	ts := now()
	cols := []string{quote(content.ColCreatedAt), quote(content.ColUpdatedAt)}
	args := []any{ts, ts}
	if id != 0 {
		cols = append(cols, quote(content.ColID))
		args = append(args, id)
	}
	for _, c := range r.schema.Columns() {
		v, ok := values[c.Name]
		if !ok {
			continue
		}
		cols = append(cols, quote(c.Name))
		args = append(args, v)
	}

	query := "INSERT INTO " + quote(r.schema.Table) + " (" + strings.Join(cols, ", ") +
		") VALUES (" + strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ") + ")"

	res, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return 0, fmt.Errorf("inserting into %s: %w", r.schema.Table, err)
	}
	if id != 0 {
		return id, nil
	}
	newID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading id of new %s row: %w", r.schema.Table, err)
	}
	return newID, nil
}

// Update applies a partial update and returns the row as stored. An empty
// patch issues no write and returns the current row.
func (r *Repository) Update(ctx context.Context, id int64, values map[string]any) (content.Record, error) {
	if len(values) == 0 {
		return r.Get(ctx, id)
	}

	var sets []string
	var args []any
	for _, c := range r.schema.Columns() {
		v, ok := values[c.Name]
		if !ok {
			continue
		}
		sets = append(sets, quote(c.Name)+" = ?")
		args = append(args, v)
	}
	sets = append(sets, quote(content.ColUpdatedAt)+" = ?")
	args = append(args, now(), id)

	query := "UPDATE " + quote(r.schema.Table) + " SET " + strings.Join(sets, ", ") + " WHERE `id` = ?"
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("updating %s %d: %w", r.schema.Table, id, err)
	}

	// MySQL reports zero affected rows when nothing changed, so existence
	// is decided by reading the row back.
	return r.Get(ctx, id)
}

// Delete removes a row. It reports whether the row existed.
func (r *Repository) Delete(ctx context.Context, id int64) (bool, error) {
	query := "DELETE FROM " + quote(r.schema.Table) + " WHERE `id` = ?"
	res, err := r.db.ExecContext(ctx, r.db.Rebind(query), id)
	if err != nil {
		return false, fmt.Errorf("deleting %s %d: %w", r.schema.Table, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("deleting %s %d: %w", r.schema.Table, id, err)
	}
	return n > 0, nil
}

// Increment atomically adds one to an integer column and returns the new
// value.
func (r *Repository) Increment(ctx context.Context, id int64, column string) (int64, error) {
	c, ok := r.schema.Column(column)
	if !ok || c.Field.Kind != content.Int {
		return 0, fmt.Errorf("cannot increment column %q of %s", column, r.schema.Table)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("starting transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := "UPDATE " + quote(r.schema.Table) + " SET " + quote(column) + " = " + quote(column) + " + 1 WHERE `id` = ?"
	res, err := tx.ExecContext(ctx, tx.Rebind(query), id)
	if err != nil {
		return 0, fmt.Errorf("incrementing %s.%s: %w", r.schema.Table, column, err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return 0, fmt.Errorf("incrementing %s.%s: %w", r.schema.Table, column, err)
	} else if n == 0 {
		return 0, r.notFound()
	}

	var value int64
	query = "SELECT " + quote(column) + " FROM " + quote(r.schema.Table) + " WHERE `id` = ?"
	if err := tx.GetContext(ctx, &value, tx.Rebind(query), id); err != nil {
		return 0, fmt.Errorf("reading %s.%s: %w", r.schema.Table, column, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing increment: %w", err)
	}
	return value, nil
}

// Singleton returns the single row of a singleton schema.
func (r *Repository) Singleton(ctx context.Context) (content.Record, error) {
	return r.Get(ctx, content.SingletonID)
}

// UpdateSingleton applies a partial update to the singleton row, creating
// the row first if it is missing.
func (r *Repository) UpdateSingleton(ctx context.Context, values map[string]any) (content.Record, error) {
	if _, err := r.Get(ctx, content.SingletonID); err != nil {
		if !apperr.IsKind(err, apperr.KindNotFound) {
			return nil, err
		}
		if _, err := r.insert(ctx, content.SingletonID, values); err != nil {
			return nil, err
		}
		return r.Get(ctx, content.SingletonID)
	}
	return r.Update(ctx, content.SingletonID, values)
}
