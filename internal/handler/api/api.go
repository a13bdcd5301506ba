// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package api provides the REST API handlers of the CMS.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/olegiv/tcms-go/internal/apperr"
	"github.com/olegiv/tcms-go/internal/auth"
	"github.com/olegiv/tcms-go/internal/cache"
	"github.com/olegiv/tcms-go/internal/content"
	"github.com/olegiv/tcms-go/internal/geoip"
	"github.com/olegiv/tcms-go/internal/middleware"
	"github.com/olegiv/tcms-go/internal/scheduler"
	"github.com/olegiv/tcms-go/internal/store"
	"github.com/olegiv/tcms-go/internal/upload"
	"github.com/olegiv/tcms-go/internal/version"
)

// maxBodyBytes caps JSON request bodies. Images travel through the upload
// endpoints, which have their own limit.
const maxBodyBytes = 1 << 20

// MsgInvalidJSON is returned for bodies that are not a JSON object.
const MsgInvalidJSON = "Invalid JSON body"

// Deps holds the dependencies of the API handlers.
type Deps struct {
	DB          *sqlx.DB
	Cache       cache.Cache
	CacheTTL    time.Duration
	Tokens      *auth.TokenManager
	Uploads     *upload.Service
	Login       *middleware.LoginProtection
	GeoIP       *geoip.Lookup        // optional
	Scheduler   *scheduler.Scheduler // optional
	Logger      *slog.Logger
	Development bool
	Version     version.Info
}

// Handler holds shared dependencies for all API handlers.
type Handler struct {
	db        *sqlx.DB
	users     *store.Users
	repos     map[string]*store.Repository
	cache     cache.Cache
	responses *cache.TypedCache[Response]
	tokens    *auth.TokenManager
	uploads   *upload.Service
	login     *middleware.LoginProtection
	geo       *geoip.Lookup
	scheduler *scheduler.Scheduler
	logger    *slog.Logger
	dev       bool
	version   version.Info
}

// NewHandler creates the API handler with one repository per schema.
func NewHandler(d Deps) *Handler {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Login == nil {
		d.Login = middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())
	}

	h := &Handler{
		db:        d.DB,
		users:     store.NewUsers(d.DB),
		repos:     make(map[string]*store.Repository),
		cache:     d.Cache,
		tokens:    d.Tokens,
		uploads:   d.Uploads,
		login:     d.Login,
		geo:       d.GeoIP,
		scheduler: d.Scheduler,
		logger:    d.Logger,
		dev:       d.Development,
		version:   d.Version,
	}
	if d.Cache != nil {
		h.responses = cache.NewTypedCache[Response](d.Cache, d.CacheTTL)
	}
	for _, s := range content.All() {
		h.repos[s.Name] = store.NewRepository(d.DB, s)
	}
	return h
}

// repo returns the repository of a registered schema.
func (h *Handler) repo(s *content.Schema) *store.Repository {
	return h.repos[s.Name]
}

// Response is the envelope of every API response.
type Response struct {
	Success    bool                `json:"success"`
	Message    string              `json:"message,omitempty"`
	Data       any                 `json:"data,omitempty"`
	Pagination *Pagination         `json:"pagination,omitempty"`
	Errors     []apperr.FieldError `json:"errors,omitempty"`
	Stack      string              `json:"stack,omitempty"`
}

// Pagination describes one page of a paginated list.
type Pagination struct {
	Total       int  `json:"total"`
	Page        int  `json:"page"`
	Limit       int  `json:"limit"`
	TotalPages  int  `json:"totalPages"`
	HasNextPage bool `json:"hasNextPage"`
	HasPrevPage bool `json:"hasPrevPage"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteSuccess writes a 200 response carrying data.
func WriteSuccess(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusOK, Response{Success: true, Data: data})
}

// WriteMessage writes a 200 response with a message and optional data.
func WriteMessage(w http.ResponseWriter, message string, data any) {
	WriteJSON(w, http.StatusOK, Response{Success: true, Message: message, Data: data})
}

// WriteCreated writes a 201 Created response.
func WriteCreated(w http.ResponseWriter, message string, data any) {
	WriteJSON(w, http.StatusCreated, Response{Success: true, Message: message, Data: data})
}

// writeError maps err onto the failure envelope. Internal errors are logged
// and carry a stack trace in development.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	e := apperr.From(err)
	status := e.Status()

	resp := Response{Success: false, Message: e.Message, Errors: e.Fields}
	if status >= http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		if h.dev {
			resp.Message = err.Error()
			resp.Stack = string(debug.Stack())
		}
	}
	WriteJSON(w, status, resp)
}

// decodeJSON reads a JSON object body. An empty body decodes to an empty
// object so required-field checks report what is missing.
func decodeJSON(w http.ResponseWriter, r *http.Request) (map[string]any, error) {
	return decodeJSONLimit(w, r, maxBodyBytes)
}

func decodeJSONLimit(w http.ResponseWriter, r *http.Request, limit int64) (map[string]any, error) {
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	var input map[string]any
	err := json.NewDecoder(r.Body).Decode(&input)
	if errors.Is(err, io.EOF) {
		return map[string]any{}, nil
	}
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, apperr.BadRequest("Request body too large")
		}
		return nil, apperr.BadRequest(MsgInvalidJSON)
	}
	if input == nil {
		return nil, apperr.BadRequest(MsgInvalidJSON)
	}
	return input, nil
}

// stringField returns input[key] when it is a string.
func stringField(input map[string]any, key string) string {
	s, _ := input[key].(string)
	return s
}
