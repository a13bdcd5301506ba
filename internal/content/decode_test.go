// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package content

import (
	"reflect"
	"testing"
	"time"
)

func TestDecode_MySQLBytes(t *testing.T) {
	row := map[string]any{
		"id":             []byte("5"),
		"tour_id":        []byte("42"),
		"title_en":       []byte("Casbah"),
		"title_ar":       nil,
		"tags":           []byte(`["history","unesco"]`),
		"created_at":     time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		"description_en": []byte("<p>Old town</p>"),
	}

	rec := VirtualTours.Decode(row)

	if rec.ID() != 5 {
		t.Errorf("ID() = %d, want 5", rec.ID())
	}
	if rec["tour_id"] != int64(42) {
		t.Errorf("tour_id = %#v, want 42", rec["tour_id"])
	}
	if rec["title_en"] != "Casbah" {
		t.Errorf("title_en = %#v", rec["title_en"])
	}
	if rec["title_ar"] != "" {
		t.Errorf("title_ar = %#v, want empty", rec["title_ar"])
	}
	if !reflect.DeepEqual(rec["tags"], []string{"history", "unesco"}) {
		t.Errorf("tags = %#v", rec["tags"])
	}
}

func TestDecode_Kinds(t *testing.T) {
	rec := HeroSlides.Decode(map[string]any{"is_active": int64(0), "display_order": int64(3)})
	if rec["is_active"] != false {
		t.Errorf("is_active = %#v, want false", rec["is_active"])
	}
	if rec["display_order"] != int64(3) {
		t.Errorf("display_order = %#v", rec["display_order"])
	}

	rec = Activities.Decode(map[string]any{
		"date":       time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		"tags":       "",
		"created_at": "2025-06-01 10:00:00",
	})
	if rec["date"] != "2025-06-01" {
		t.Errorf("date = %#v", rec["date"])
	}
	if tags, ok := rec["tags"].([]string); !ok || len(tags) != 0 {
		t.Errorf("tags = %#v, want empty slice", rec["tags"])
	}
	if ts, ok := rec["created_at"].(time.Time); !ok || ts.Hour() != 10 {
		t.Errorf("created_at = %#v", rec["created_at"])
	}

	rec = UnescoSites.Decode(map[string]any{"year_inscribed": nil})
	if rec["year_inscribed"] != nil {
		t.Errorf("year_inscribed = %#v, want nil", rec["year_inscribed"])
	}
}

func TestDecode_LegacyCommaTags(t *testing.T) {
	rec := Activities.Decode(map[string]any{"tags": "a, b"})
	if !reflect.DeepEqual(rec["tags"], []string{"a", "b"}) {
		t.Errorf("tags = %#v", rec["tags"])
	}
}

func TestLocalize(t *testing.T) {
	rec := Record{
		"title_en": "Festival", "title_ar": "",
		"excerpt_en": "Short", "excerpt_ar": "ملخص",
		"content_en": "", "content_ar": "",
	}
	News.Localize(rec, "ar")

	if rec["title"] != "Festival" {
		t.Errorf("title = %v, want English fallback", rec["title"])
	}
	if rec["excerpt"] != "ملخص" {
		t.Errorf("excerpt = %v", rec["excerpt"])
	}
	if rec["content"] != "" {
		t.Errorf("content = %v, want empty", rec["content"])
	}
}
