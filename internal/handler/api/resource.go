// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/olegiv/tcms-go/internal/apperr"
	"github.com/olegiv/tcms-go/internal/content"
	"github.com/olegiv/tcms-go/internal/store"
)

// Resource serves the CRUD endpoints of one content schema.
type Resource struct {
	h      *Handler
	schema *content.Schema
	repo   *store.Repository

	// CreatedMessage overrides "<Label> created successfully".
	CreatedMessage string
	// ReceiptOnly makes Create answer with a Receipt instead of the stored
	// record. Used by public forms.
	ReceiptOnly bool
}

// Receipt acknowledges a public submission without echoing it back.
type Receipt struct {
	ID int64 `json:"id"`
}

// Resource returns the CRUD handlers of a schema.
func (h *Handler) Resource(s *content.Schema) *Resource {
	return &Resource{h: h, schema: s, repo: h.repo(s)}
}

// localize adds resolved plain keys to rec when the client asked for a
// language with ?lang.
func (rs *Resource) localize(ctx context.Context, rec content.Record) content.Record {
	return rs.h.localized(ctx, rs.schema, rec)
}

// read serves a GET, through the response cache unless the schema is
// private.
func (rs *Resource) read(w http.ResponseWriter, r *http.Request, fn func() (*Response, error)) {
	if rs.schema.Private {
		resp, err := fn()
		if err != nil {
			rs.h.writeError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, resp)
		return
	}
	rs.h.serveCached(w, r, rs.schema.Group, fn)
}

// filter returns the equality conditions requested through the schema's
// filter parameter.
func (rs *Resource) filter(r *http.Request) map[string]any {
	f := rs.schema.Filter
	if f == nil {
		return nil
	}
	if v := strings.TrimSpace(r.URL.Query().Get(f.Param)); f.Matches(v) {
		return map[string]any{f.Column: v}
	}
	return nil
}

// listResponse loads the rows matching conds. Paginated schemas count
// the filtered rows before loading the requested page.
func (rs *Resource) listResponse(r *http.Request, conds map[string]any) (*Response, error) {
	ctx := r.Context()

	if !rs.schema.Paginated {
		records, err := rs.repo.List(ctx, store.Query{Where: conds})
		if err != nil {
			return nil, err
		}
		for i := range records {
			records[i] = rs.localize(ctx, records[i])
		}
		return &Response{Success: true, Data: records}, nil
	}

	p, err := parsePage(r, rs.schema.DefaultLimit)
	if err != nil {
		return nil, err
	}
	total, err := rs.repo.Count(ctx, conds)
	if err != nil {
		return nil, err
	}
	records, err := rs.repo.List(ctx, store.Query{Where: conds, Limit: p.Limit, Offset: p.offset()})
	if err != nil {
		return nil, err
	}
	for i := range records {
		records[i] = rs.localize(ctx, records[i])
	}
	return &Response{Success: true, Data: records, Pagination: newPagination(total, p)}, nil
}

// List handles GET /{resource}.
func (rs *Resource) List(w http.ResponseWriter, r *http.Request) {
	rs.read(w, r, func() (*Response, error) {
		return rs.listResponse(r, rs.filter(r))
	})
}

// ListWhere returns a list handler narrowed to fixed conditions, e.g. the
// active hero slides.
func (rs *Resource) ListWhere(conds map[string]any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rs.read(w, r, func() (*Response, error) {
			return rs.listResponse(r, conds)
		})
	}
}

// Get handles GET /{resource}/{id}.
func (rs *Resource) Get(w http.ResponseWriter, r *http.Request) {
	rs.read(w, r, func() (*Response, error) {
		id, err := parseID(r)
		if err != nil {
			return nil, err
		}
		rec, err := rs.repo.Get(r.Context(), id)
		if err != nil {
			return nil, err
		}
		return &Response{Success: true, Data: rs.localize(r.Context(), rec)}, nil
	})
}

// Create handles POST /{resource}.
func (rs *Resource) Create(w http.ResponseWriter, r *http.Request) {
	input, err := decodeJSON(w, r)
	if err != nil {
		rs.h.writeError(w, r, err)
		return
	}
	values, err := rs.schema.Parse(input, true)
	if err != nil {
		rs.h.writeError(w, r, err)
		return
	}

	rec, err := rs.repo.Create(r.Context(), values)
	if err != nil {
		rs.h.writeError(w, r, err)
		return
	}
	rs.h.invalidate(r, rs.schema.Group)

	msg := rs.CreatedMessage
	if msg == "" {
		msg = rs.schema.Label + " created successfully"
	}
	if rs.ReceiptOnly {
		WriteCreated(w, msg, Receipt{ID: rec.ID()})
		return
	}
	WriteCreated(w, msg, rec)
}

// Update handles PUT /{resource}/{id} with a partial body.
func (rs *Resource) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		rs.h.writeError(w, r, err)
		return
	}
	input, err := decodeJSON(w, r)
	if err != nil {
		rs.h.writeError(w, r, err)
		return
	}
	values, err := rs.schema.Parse(input, false)
	if err != nil {
		rs.h.writeError(w, r, err)
		return
	}

	rec, err := rs.repo.Update(r.Context(), id, values)
	if err != nil {
		rs.h.writeError(w, r, err)
		return
	}
	if len(values) > 0 {
		rs.h.invalidate(r, rs.schema.Group)
	}
	WriteMessage(w, rs.schema.Label+" updated successfully", rec)
}

// Delete handles DELETE /{resource}/{id}.
func (rs *Resource) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		rs.h.writeError(w, r, err)
		return
	}

	deleted, err := rs.repo.Delete(r.Context(), id)
	if err != nil {
		rs.h.writeError(w, r, err)
		return
	}
	if !deleted {
		rs.h.writeError(w, r, apperr.NotFound(rs.schema.Label+" not found"))
		return
	}
	rs.h.invalidate(r, rs.schema.Group)
	WriteMessage(w, rs.schema.Label+" deleted successfully", nil)
}

// GetSingleton handles GET of a singleton resource.
func (rs *Resource) GetSingleton(w http.ResponseWriter, r *http.Request) {
	rs.read(w, r, func() (*Response, error) {
		rec, err := rs.repo.Singleton(r.Context())
		if err != nil {
			return nil, err
		}
		return &Response{Success: true, Data: rs.localize(r.Context(), rec)}, nil
	})
}

// UpdateSingleton handles PUT of a singleton resource.
func (rs *Resource) UpdateSingleton(w http.ResponseWriter, r *http.Request) {
	input, err := decodeJSON(w, r)
	if err != nil {
		rs.h.writeError(w, r, err)
		return
	}
	values, err := rs.schema.Parse(input, false)
	if err != nil {
		rs.h.writeError(w, r, err)
		return
	}

	rec, err := rs.repo.UpdateSingleton(r.Context(), values)
	if err != nil {
		rs.h.writeError(w, r, err)
		return
	}
	rs.h.invalidate(r, rs.schema.Group)
	WriteMessage(w, rs.schema.Label+" updated successfully", rec)
}
