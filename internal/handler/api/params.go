// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/tcms-go/internal/apperr"
)

// Paging limits.
const (
	DefaultPage = 1
	MaxLimit    = 100
)

// Parameter validation messages.
const (
	MsgInvalidPage  = "Page must be a positive integer"
	MsgInvalidLimit = "Limit must be between 1 and 100"
	MsgInvalidID    = "Invalid ID"
)

// parseID reads the {id} URL parameter. Only positive integers are ids.
func parseID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		return 0, apperr.Validation(apperr.FieldError{Field: "id", Message: MsgInvalidID})
	}
	return id, nil
}

// pageParams is a validated page request.
type pageParams struct {
	Page  int
	Limit int
}

func (p pageParams) offset() int {
	return (p.Page - 1) * p.Limit
}

// parsePage reads ?page and ?limit. Absent values take the defaults; both
// are validated before any query runs.
func parsePage(r *http.Request, defaultLimit int) (pageParams, error) {
	p := pageParams{Page: DefaultPage, Limit: defaultLimit}
	q := r.URL.Query()
	var errs []apperr.FieldError

	if v := strings.TrimSpace(q.Get("page")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			errs = append(errs, apperr.FieldError{Field: "page", Message: MsgInvalidPage})
		} else {
			p.Page = n
		}
	}

	if v := strings.TrimSpace(q.Get("limit")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > MaxLimit {
			errs = append(errs, apperr.FieldError{Field: "limit", Message: MsgInvalidLimit})
		} else {
			p.Limit = n
		}
	}

	if len(errs) > 0 {
		return pageParams{}, apperr.Validation(errs...)
	}
	return p, nil
}

// newPagination computes the page metadata for total rows.
func newPagination(total int, p pageParams) *Pagination {
	totalPages := (total + p.Limit - 1) / p.Limit
	return &Pagination{
		Total:       total,
		Page:        p.Page,
		Limit:       p.Limit,
		TotalPages:  totalPages,
		HasNextPage: p.Page < totalPages,
		HasPrevPage: p.Page > 1,
	}
}
