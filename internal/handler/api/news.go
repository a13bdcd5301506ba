// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"

	"github.com/olegiv/tcms-go/internal/content"
)

// LikesResponse is the data of a like.
type LikesResponse struct {
	Likes int64 `json:"likes"`
}

// LikeNews handles POST /news/{id}/like.
func (h *Handler) LikeNews(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	likes, err := h.repo(content.News).Increment(r.Context(), id, "likes")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.invalidate(r, content.GroupNews)
	WriteSuccess(w, LikesResponse{Likes: likes})
}
