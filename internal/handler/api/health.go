// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/olegiv/tcms-go/internal/scheduler"
)

// Health status values.
const (
	StatusOK       = "OK"
	StatusDegraded = "DEGRADED"
)

// healthCheckTimeout bounds each readiness check.
const healthCheckTimeout = 3 * time.Second

// HealthResponse is the liveness payload.
type HealthResponse struct {
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	Version   string    `json:"version,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ReadinessResponse reports the state of each backing service and the
// background jobs, when a scheduler is running.
type ReadinessResponse struct {
	Status    string              `json:"status"`
	Checks    map[string]string   `json:"checks"`
	Jobs      []scheduler.JobInfo `json:"jobs,omitempty"`
	Timestamp time.Time           `json:"timestamp"`
}

// Health handles GET /health.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, HealthResponse{
		Status:    StatusOK,
		Message:   "TCMS API is running",
		Version:   h.version.Version,
		Timestamp: time.Now().UTC(),
	})
}

// Ready handles GET /health/ready. It answers 503 when the database or the
// cache cannot be reached.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	resp := ReadinessResponse{
		Status:    StatusOK,
		Checks:    make(map[string]string),
		Timestamp: time.Now().UTC(),
	}

	check := func(name string, ping func(context.Context) error) {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()
		if err := ping(ctx); err != nil {
			h.logger.WarnContext(r.Context(), "readiness check failed", "check", name, "error", err)
			resp.Checks[name] = "error"
			resp.Status = StatusDegraded
			return
		}
		resp.Checks[name] = "ok"
	}

	check("database", h.db.PingContext)
	if h.cache != nil {
		check("cache", h.cache.Ping)
	}
	if h.scheduler != nil {
		resp.Jobs = h.scheduler.Jobs()
	}

	status := http.StatusOK
	if resp.Status != StatusOK {
		status = http.StatusServiceUnavailable
	}
	WriteJSON(w, status, resp)
}
