// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func idOf(rec map[string]any) int64 {
	return int64(rec["id"].(float64))
}

func TestNews_CreateAndGet(t *testing.T) {
	s := newTestServer(t)

	created := s.createRecord(t, "/api/news", map[string]any{
		"title_en": "Launch",
		"category": "Tourism",
	})
	assert.Equal(t, "Launch", created["title_en"])
	assert.Equal(t, "", created["title_ar"])
	assert.Equal(t, float64(0), created["likes"])

	path := fmt.Sprintf("/api/news/%d", idOf(created))

	rec := s.do(t, http.MethodGet, path+"?lang=ar", nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	got := unmarshalData[map[string]any](t, rec)
	assert.Equal(t, "Launch", got["title"], "arabic falls back to english")
	assert.Equal(t, "ar", rec.Header().Get("Content-Language"))

	rec = s.do(t, http.MethodGet, path, nil, false)
	got = unmarshalData[map[string]any](t, rec)
	_, hasPlain := got["title"]
	assert.False(t, hasPlain, "no plain keys without ?lang")
}

func TestNews_CreateMessage(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/news", map[string]any{"title_en": "Hello"}, true)
	require.Equal(t, http.StatusCreated, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.True(t, env.Success)
	assert.Equal(t, "News article created successfully", env.Message)

	got := unmarshalData[map[string]any](t, rec)
	assert.Equal(t, "Tourism", got["category"], "default category")
}

func TestNews_CreateValidation(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/news", map[string]any{
		"category":   "Sports",
		"content_en": "short",
		"image":      "data:image/png;base64,AAAA",
		"bogus":      1,
	}, true)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	env := decodeEnvelope(t, rec)
	assert.False(t, env.Success)
	assert.Equal(t, "Validation failed", env.Message)

	errs := fieldErrors(t, rec)
	assert.Equal(t, "English title is required", errs["title_en"])
	assert.Equal(t, "Invalid category", errs["category"])
	assert.Equal(t, "Content must be at least 10 characters", errs["content_en"])
	assert.Contains(t, errs, "image")
	assert.Equal(t, "Unknown field", errs["bogus"])

	list := s.do(t, http.MethodGet, "/api/news", nil, false)
	assert.Equal(t, 0, decodeEnvelope(t, list).Pagination.Total, "nothing written")
}

func TestNews_RequiresAuth(t *testing.T) {
	s := newTestServer(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/api/news"},
		{http.MethodPut, "/api/news/1"},
		{http.MethodDelete, "/api/news/1"},
		{http.MethodPut, "/api/about/content"},
		{http.MethodGet, "/api/contact"},
		{http.MethodPost, "/api/upload/base64"},
	} {
		rec := s.do(t, tc.method, tc.path, map[string]any{}, false)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", tc.method, tc.path)
		assert.Equal(t, "Not authorized, no token", decodeEnvelope(t, rec).Message)
	}
}

func TestNews_ListPaginationAndFilter(t *testing.T) {
	s := newTestServer(t)

	for i := range 12 {
		category := "Tourism"
		if i%3 == 0 {
			category = "Events"
		}
		s.createRecord(t, "/api/news", map[string]any{
			"title_en": fmt.Sprintf("Article %d", i),
			"category": category,
		})
	}

	rec := s.do(t, http.MethodGet, "/api/news", nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	require.NotNil(t, env.Pagination)
	assert.Equal(t, Pagination{Total: 12, Page: 1, Limit: 10, TotalPages: 2, HasNextPage: true}, *env.Pagination)
	items := unmarshalData[[]map[string]any](t, rec)
	require.Len(t, items, 10)
	assert.Equal(t, "Article 11", items[0]["title_en"], "newest first")

	rec = s.do(t, http.MethodGet, "/api/news?page=2&limit=10", nil, false)
	env = decodeEnvelope(t, rec)
	assert.Equal(t, Pagination{Total: 12, Page: 2, Limit: 10, TotalPages: 2, HasPrevPage: true}, *env.Pagination)
	assert.Len(t, unmarshalData[[]map[string]any](t, rec), 2)

	rec = s.do(t, http.MethodGet, "/api/news?category=Events&limit=2", nil, false)
	env = decodeEnvelope(t, rec)
	assert.Equal(t, 4, env.Pagination.Total, "filter applies before counting")
	assert.Equal(t, 2, env.Pagination.TotalPages)
	for _, item := range unmarshalData[[]map[string]any](t, rec) {
		assert.Equal(t, "Events", item["category"])
	}

	for _, all := range []string{"All", "%D8%A7%D9%84%D9%83%D9%84"} {
		rec = s.do(t, http.MethodGet, "/api/news?category="+all, nil, false)
		assert.Equal(t, 12, decodeEnvelope(t, rec).Pagination.Total, all)
	}
}

func TestNews_EmptyList(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/news", nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, string(decodeEnvelope(t, rec).Data))
	assert.Equal(t, Pagination{Page: 1, Limit: 10}, *decodeEnvelope(t, rec).Pagination)
}

func TestList_InvalidPaging(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		query string
		field string
		msg   string
	}{
		{"page=0", "page", MsgInvalidPage},
		{"page=abc", "page", MsgInvalidPage},
		{"limit=0", "limit", MsgInvalidLimit},
		{"limit=101", "limit", MsgInvalidLimit},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			rec := s.do(t, http.MethodGet, "/api/activities?"+tt.query, nil, false)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.msg, fieldErrors(t, rec)[tt.field])
		})
	}
}

func TestGet_InvalidAndMissingID(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/destinations/abc", nil, false)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, MsgInvalidID, fieldErrors(t, rec)["id"])

	rec = s.do(t, http.MethodGet, "/api/destinations/999", nil, false)
	require.Equal(t, http.StatusNotFound, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.False(t, env.Success)
	assert.Equal(t, "Destination not found", env.Message)
}

func TestUpdate_PartialAndEmpty(t *testing.T) {
	s := newTestServer(t)

	created := s.createRecord(t, "/api/destinations", map[string]any{
		"name_en": "Tassili",
		"name_ar": "طاسيلي",
	})
	path := fmt.Sprintf("/api/destinations/%d", idOf(created))

	rec := s.do(t, http.MethodPut, path, map[string]any{"name_ar": "الطاسيلي"}, true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Destination updated successfully", decodeEnvelope(t, rec).Message)
	got := unmarshalData[map[string]any](t, rec)
	assert.Equal(t, "Tassili", got["name_en"], "untouched field kept")
	assert.Equal(t, "الطاسيلي", got["name_ar"])

	rec = s.do(t, http.MethodPut, path, map[string]any{"id": 77, "created_at": "x"}, true)
	require.Equal(t, http.StatusOK, rec.Code, "system columns are dropped")
	assert.Equal(t, idOf(created), idOf(unmarshalData[map[string]any](t, rec)))

	rec = s.do(t, http.MethodPut, "/api/destinations/999", map[string]any{}, true)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodPut, path, map[string]any{"name_en": ""}, true)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "English name is required", fieldErrors(t, rec)["name_en"])
}

func TestUpdate_DisplayOrderOnly(t *testing.T) {
	s := newTestServer(t)

	created := s.createRecord(t, "/api/about/missions", map[string]any{
		"mission_en": "Promote Algeria",
		"mission_ar": "الترويج للجزائر",
	})
	path := fmt.Sprintf("/api/about/missions/%d", idOf(created))

	rec := s.do(t, http.MethodPut, path, map[string]any{"display_order": 3}, true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := unmarshalData[map[string]any](t, rec)
	assert.Equal(t, "Promote Algeria", got["mission_en"])
	assert.Equal(t, "الترويج للجزائر", got["mission_ar"])
	assert.Equal(t, float64(3), got["display_order"])

	rec = s.do(t, http.MethodGet, path, nil, false)
	got = unmarshalData[map[string]any](t, rec)
	assert.Equal(t, "Promote Algeria", got["mission_en"])
	assert.Equal(t, float64(3), got["display_order"])
}

func TestUpdate_IntegerOutOfRange(t *testing.T) {
	s := newTestServer(t)

	created := s.createRecord(t, "/api/about/missions", map[string]any{"mission_en": "Promote"})
	path := fmt.Sprintf("/api/about/missions/%d", idOf(created))

	for _, body := range []string{
		`{"display_order": 9223372036854775808}`,
		`{"display_order": 2147483648}`,
		`{"display_order": -1e300}`,
	} {
		rec := s.do(t, http.MethodPut, path, body, true)
		require.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.NotEmpty(t, fieldErrors(t, rec)["display_order"], body)
	}

	rec := s.do(t, http.MethodGet, path, nil, false)
	assert.Equal(t, float64(0), unmarshalData[map[string]any](t, rec)["display_order"])
}

func TestUpdate_InvalidJSON(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/destinations", "{not json", true)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, MsgInvalidJSON, decodeEnvelope(t, rec).Message)

	rec = s.do(t, http.MethodPost, "/api/destinations", "[1,2]", true)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDelete(t *testing.T) {
	s := newTestServer(t)

	created := s.createRecord(t, "/api/activities", map[string]any{
		"name_en": "Desert trek",
		"tags":    "hiking, sahara",
		"date":    "2026-03-01",
	})
	assert.Equal(t, []any{"hiking", "sahara"}, created["tags"])
	assert.Equal(t, "2026-03-01", created["date"])

	path := fmt.Sprintf("/api/activities/%d", idOf(created))
	rec := s.do(t, http.MethodDelete, path, nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Activity deleted successfully", decodeEnvelope(t, rec).Message)

	rec = s.do(t, http.MethodDelete, path, nil, true)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Activity not found", decodeEnvelope(t, rec).Message)
}

func TestVirtualTours_DuplicateTourID(t *testing.T) {
	s := newTestServer(t)

	body := map[string]any{"tour_id": 3, "title_en": "Casbah"}
	s.createRecord(t, "/api/virtual-tours", body)

	rec := s.do(t, http.MethodPost, "/api/virtual-tours", body, true)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Duplicate entry. This record already exists.", decodeEnvelope(t, rec).Message)
}

func TestSingleton_GetAndUpdate(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/visit-algeria", nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	before := unmarshalData[map[string]any](t, rec)
	assert.Equal(t, float64(1), before["id"])

	rec = s.do(t, http.MethodPut, "/api/visit-algeria", map[string]any{
		"headline_en":      "Discover Algeria",
		"youtube_video_id": "abc123",
	}, true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Visit Algeria content updated successfully", decodeEnvelope(t, rec).Message)

	rec = s.do(t, http.MethodGet, "/api/visit-algeria?lang=ar", nil, false)
	after := unmarshalData[map[string]any](t, rec)
	assert.Equal(t, "abc123", after["youtube_video_id"])
	assert.Equal(t, float64(1), after["id"])
	if after["headline_ar"] == "" {
		assert.Equal(t, "Discover Algeria", after["headline"])
	}
}

func TestHero_Active(t *testing.T) {
	s := newTestServer(t)

	s.createRecord(t, "/api/hero", map[string]any{"headline_en": "Shown", "display_order": 2})
	s.createRecord(t, "/api/hero", map[string]any{"headline_en": "First", "display_order": 1})
	s.createRecord(t, "/api/hero", map[string]any{"headline_en": "Hidden", "is_active": false})

	rec := s.do(t, http.MethodGet, "/api/hero/active", nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	slides := unmarshalData[[]map[string]any](t, rec)
	require.Len(t, slides, 2)
	assert.Equal(t, "First", slides[0]["headline_en"])
	assert.Equal(t, "Shown", slides[1]["headline_en"])

	rec = s.do(t, http.MethodGet, "/api/hero", nil, false)
	assert.Len(t, unmarshalData[[]map[string]any](t, rec), 3)
	assert.Nil(t, decodeEnvelope(t, rec).Pagination)

	rec = s.do(t, http.MethodPost, "/api/hero", map[string]any{"headline_en": "x", "button_link": "javascript:alert(1)"}, true)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Button link must be a valid URL", fieldErrors(t, rec)["button_link"])
}

func TestAboutStats_TypeFilter(t *testing.T) {
	s := newTestServer(t)

	s.createRecord(t, "/api/about/stats", map[string]any{"value_en": "7", "stat_type": "landing"})
	s.createRecord(t, "/api/about/stats", map[string]any{"value_en": "48", "stat_type": "page"})

	rec := s.do(t, http.MethodGet, "/api/about/stats?type=page", nil, false)
	stats := unmarshalData[[]map[string]any](t, rec)
	require.Len(t, stats, 1)
	assert.Equal(t, "48", stats[0]["value_en"])

	rec = s.do(t, http.MethodGet, "/api/about/stats", nil, false)
	assert.Len(t, unmarshalData[[]map[string]any](t, rec), 2)
}

func TestContacts(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/contact", map[string]any{
		"name":    "Amina",
		"email":   "amina@example.com",
		"message": "Hello there",
	}, false)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, MsgContactSent, decodeEnvelope(t, rec).Message)
	receipt := unmarshalData[map[string]any](t, rec)
	assert.Equal(t, map[string]any{"id": float64(1)}, receipt, "the submission is not echoed back")
	assert.NotContains(t, rec.Body.String(), "amina@example.com")

	rec = s.do(t, http.MethodPost, "/api/contact", map[string]any{
		"name":    "Amina",
		"email":   "not-an-email",
		"message": "Hello there",
	}, false)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid email", fieldErrors(t, rec)["email"])

	rec = s.do(t, http.MethodGet, "/api/contact", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, 20, env.Pagination.Limit)
	assert.Equal(t, 1, env.Pagination.Total)
	assert.Empty(t, rec.Header().Get(CacheHeader), "contacts are never cached")
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	rec = s.do(t, http.MethodPut, "/api/contact/1", map[string]any{"name": "x"}, true)
	assert.NotEqual(t, http.StatusOK, rec.Code, "contacts cannot be updated")
}

func TestCache_InvalidatedOnWrite(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/destinations", nil, false)
	assert.Equal(t, "MISS", rec.Header().Get(CacheHeader))
	rec = s.do(t, http.MethodGet, "/api/destinations", nil, false)
	assert.Equal(t, "HIT", rec.Header().Get(CacheHeader))
	assert.Len(t, unmarshalData[[]map[string]any](t, rec), 0)

	s.createRecord(t, "/api/destinations", map[string]any{"name_en": "Oran"})

	rec = s.do(t, http.MethodGet, "/api/destinations", nil, false)
	assert.Equal(t, "MISS", rec.Header().Get(CacheHeader))
	assert.Len(t, unmarshalData[[]map[string]any](t, rec), 1)

	rec = s.do(t, http.MethodGet, "/api/destinations?lang=en", nil, false)
	assert.Equal(t, "MISS", rec.Header().Get(CacheHeader), "language is part of the key")
}

func TestCache_GroupInvalidation(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/about", nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	s.do(t, http.MethodGet, "/api/about", nil, false)

	s.createRecord(t, "/api/about/faqs", map[string]any{"question_en": "When?"})

	rec = s.do(t, http.MethodGet, "/api/about", nil, false)
	assert.Equal(t, "MISS", rec.Header().Get(CacheHeader))
	page := unmarshalData[AboutPage](t, rec)
	require.Len(t, page.FAQs, 1)
	assert.Equal(t, "When?", page.FAQs[0]["question_en"])
}
