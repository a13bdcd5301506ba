// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package apperr defines the error taxonomy shared by the store, the
// content schemas and the HTTP layer.
package apperr

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/go-sql-driver/mysql"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Kind classifies an error for HTTP mapping.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindAuth
	KindConflict
	KindUpload
	KindRateLimit
)

// MySQL server error numbers we translate.
const (
	mysqlDupEntry       = 1062
	mysqlNoReferenceRow = 1452
)

// Standard user-facing messages.
const (
	MsgValidationFailed = "Validation failed"
	MsgDuplicate        = "Duplicate entry. This record already exists."
	MsgNoReference      = "Referenced record not found."
	MsgInternal         = "Internal Server Error"
)

// FieldError describes a single invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is an application error carrying its kind, a client-safe message,
// optional field errors and the wrapped cause.
type Error struct {
	Kind    Kind
	Message string
	Fields  []FieldError
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Status returns the HTTP status code for the error kind.
func (e *Error) Status() int {
	switch e.Kind {
	case KindValidation, KindConflict, KindUpload:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindAuth:
		return http.StatusUnauthorized
	case KindRateLimit:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Validation returns a validation error with per-field details.
func Validation(fields ...FieldError) *Error {
	return &Error{Kind: KindValidation, Message: MsgValidationFailed, Fields: fields}
}

// BadRequest returns a validation error with a custom message and no field list.
func BadRequest(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// NotFound returns a not-found error.
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Unauthorized returns an authentication error.
func Unauthorized(message string) *Error {
	return &Error{Kind: KindAuth, Message: message}
}

// Conflict returns a duplicate-key error wrapping the driver error.
func Conflict(err error) *Error {
	return &Error{Kind: KindConflict, Message: MsgDuplicate, Err: err}
}

// Upload returns an upload error.
func Upload(message string) *Error {
	return &Error{Kind: KindUpload, Message: message}
}

// TooManyRequests returns a rate-limit error.
func TooManyRequests(message string) *Error {
	return &Error{Kind: KindRateLimit, Message: message}
}

// Internal wraps an unexpected error.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: MsgInternal, Err: err}
}

// From maps any error to an *Error. Application errors pass through, known
// driver errors are translated, and everything else becomes internal.
func From(err error) *Error {
	if err == nil {
		return nil
	}

	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}

	if errors.Is(err, sql.ErrNoRows) {
		return &Error{Kind: KindNotFound, Message: "Resource not found", Err: err}
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case mysqlDupEntry:
			return Conflict(err)
		case mysqlNoReferenceRow:
			return &Error{Kind: KindValidation, Message: MsgNoReference, Err: err}
		}
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return Conflict(err)
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			return &Error{Kind: KindValidation, Message: MsgNoReference, Err: err}
		case sqlite3.SQLITE_CONSTRAINT:
			// Primary code only when extended codes are off.
			if strings.Contains(liteErr.Error(), "UNIQUE constraint failed") {
				return Conflict(err)
			}
		}
	}

	return Internal(err)
}

// IsKind reports whether err maps to the given kind.
func IsKind(err error, kind Kind) bool {
	if err == nil {
		return false
	}
	return From(err).Kind == kind
}
