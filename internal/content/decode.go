// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package content

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Record is one row as returned by the API.
type Record map[string]any

// ID returns the primary key of the record, or 0.
func (r Record) ID() int64 {
	n, _ := asInt(r[ColID])
	return n
}

// Decode converts a raw database row into a Record. Drivers disagree on
// the Go types they return (MySQL's text protocol yields []byte for most
// columns), so every value is normalized by the column kind.
func (s *Schema) Decode(row map[string]any) Record {
	rec := make(Record, len(row))
	for key, raw := range row {
		if b, ok := raw.([]byte); ok {
			raw = string(b)
		}

		switch key {
		case ColID:
			n, _ := asInt(raw)
			rec[key] = n
			continue
		case ColCreatedAt, ColUpdatedAt:
			rec[key] = asTime(raw)
			continue
		}

		c, ok := s.byName[key]
		if !ok {
			rec[key] = raw
			continue
		}
		rec[key] = decodeValue(c.Field.Kind, raw)
	}
	return rec
}

func decodeValue(kind Kind, raw any) any {
	switch kind {
	case Int:
		if raw == nil {
			return nil
		}
		n, ok := asInt(raw)
		if !ok {
			return nil
		}
		return n

	case Bool:
		n, ok := asInt(raw)
		if ok {
			return n != 0
		}
		b, _ := raw.(bool)
		return b

	case Tags:
		return asTags(raw)

	case Date:
		switch v := raw.(type) {
		case time.Time:
			return v.Format(DateLayout)
		case string:
			if len(v) >= len(DateLayout) {
				return v[:len(DateLayout)]
			}
			return v
		}
		return nil
	}

	if raw == nil {
		return ""
	}
	if str, ok := raw.(string); ok {
		return str
	}
	return raw
}

func asInt(raw any) (int64, bool) {
	switch v := raw.(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case uint64:
		return int64(v), true
	case float64:
		return int64(v), true
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	case []byte:
		n, err := strconv.ParseInt(string(v), 10, 64)
		return n, err == nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		return n, err == nil
	}
	return 0, false
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

func asTime(raw any) any {
	switch v := raw.(type) {
	case time.Time:
		return v.UTC()
	case string:
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, v); err == nil {
				return t.UTC()
			}
		}
		return v
	}
	return raw
}

func asTags(raw any) []string {
	tags := []string{}
	str, ok := raw.(string)
	if !ok || strings.TrimSpace(str) == "" {
		return tags
	}
	if err := json.Unmarshal([]byte(str), &tags); err != nil || tags == nil {
		// Legacy rows may hold a plain comma-separated list.
		parsed, _ := toTags(str)
		return parsed
	}
	return tags
}
