// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"
)

// CacheHeader reports whether a public read was served from the cache.
const CacheHeader = "X-Cache"

// responseKey builds the cache key of a public read. The group prefix lets
// a write drop every cached page of the group at once.
func responseKey(group string, r *http.Request) string {
	return group + ":" + r.URL.Path + "?" + r.URL.Query().Encode()
}

// serveCached writes the cached response for r, or builds it with fn and
// stores it. Errors are written and never cached.
func (h *Handler) serveCached(w http.ResponseWriter, r *http.Request, group string, fn func() (*Response, error)) {
	if h.responses == nil {
		resp, err := fn()
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, resp)
		return
	}

	key := responseKey(group, r)
	if resp, ok := h.responses.Get(r.Context(), key); ok {
		w.Header().Set(CacheHeader, "HIT")
		WriteJSON(w, http.StatusOK, resp)
		return
	}

	resp, err := fn()
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.responses.Set(r.Context(), key, resp); err != nil {
		h.logger.WarnContext(r.Context(), "caching response failed", "key", key, "error", err)
	}
	w.Header().Set(CacheHeader, "MISS")
	WriteJSON(w, http.StatusOK, resp)
}

// invalidate drops every cached response of a group after a write.
func (h *Handler) invalidate(r *http.Request, group string) {
	if h.responses == nil {
		return
	}
	if err := h.responses.Invalidate(r.Context(), group+":"); err != nil {
		h.logger.WarnContext(r.Context(), "cache invalidation failed", "group", group, "error", err)
	}
}
