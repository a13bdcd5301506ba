// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"net/http"

	"github.com/olegiv/tcms-go/internal/apperr"
	"github.com/olegiv/tcms-go/internal/content"
	"github.com/olegiv/tcms-go/internal/middleware"
	"github.com/olegiv/tcms-go/internal/store"
)

// AboutPage is the whole about page in one payload.
type AboutPage struct {
	Content      content.Record   `json:"content"`
	Missions     []content.Record `json:"missions"`
	LandingStats []content.Record `json:"landingStats"`
	PageStats    []content.Record `json:"pageStats"`
	Pillars      []content.Record `json:"pillars"`
	FAQs         []content.Record `json:"faqs"`
}

// UnescoPage is the UNESCO section content plus its sites.
type UnescoPage struct {
	Content content.Record   `json:"content"`
	Sites   []content.Record `json:"sites"`
}

// singleton loads a singleton row; a missing row is an empty object.
func (h *Handler) singleton(ctx context.Context, s *content.Schema) (content.Record, error) {
	rec, err := h.repo(s).Singleton(ctx)
	if apperr.IsKind(err, apperr.KindNotFound) {
		return content.Record{}, nil
	}
	if err != nil {
		return nil, err
	}
	return h.localized(ctx, s, rec), nil
}

func (h *Handler) list(ctx context.Context, s *content.Schema, conds map[string]any) ([]content.Record, error) {
	records, err := h.repo(s).List(ctx, store.Query{Where: conds})
	if err != nil {
		return nil, err
	}
	for i := range records {
		records[i] = h.localized(ctx, s, records[i])
	}
	return records, nil
}

func (h *Handler) localized(ctx context.Context, s *content.Schema, rec content.Record) content.Record {
	if lang, explicit := middleware.LanguageFrom(ctx); explicit {
		return s.Localize(rec, lang)
	}
	return rec
}

// About handles GET /about.
func (h *Handler) About(w http.ResponseWriter, r *http.Request) {
	h.serveCached(w, r, content.GroupAbout, func() (*Response, error) {
		ctx := r.Context()
		var page AboutPage
		var err error

		if page.Content, err = h.singleton(ctx, content.AboutContent); err != nil {
			return nil, err
		}
		if page.Missions, err = h.list(ctx, content.AboutMissions, nil); err != nil {
			return nil, err
		}
		if page.LandingStats, err = h.list(ctx, content.AboutStats, map[string]any{"stat_type": content.StatLanding}); err != nil {
			return nil, err
		}
		if page.PageStats, err = h.list(ctx, content.AboutStats, map[string]any{"stat_type": content.StatPage}); err != nil {
			return nil, err
		}
		if page.Pillars, err = h.list(ctx, content.AboutPillars, nil); err != nil {
			return nil, err
		}
		if page.FAQs, err = h.list(ctx, content.AboutFAQs, nil); err != nil {
			return nil, err
		}
		return &Response{Success: true, Data: page}, nil
	})
}

// Unesco handles GET /unesco.
func (h *Handler) Unesco(w http.ResponseWriter, r *http.Request) {
	h.serveCached(w, r, content.GroupUnesco, func() (*Response, error) {
		ctx := r.Context()
		var page UnescoPage
		var err error

		if page.Content, err = h.singleton(ctx, content.UnescoContent); err != nil {
			return nil, err
		}
		if page.Sites, err = h.list(ctx, content.UnescoSites, nil); err != nil {
			return nil, err
		}
		return &Response{Success: true, Data: page}, nil
	})
}
