// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package content

import (
	"encoding/json"
	"fmt"
	"math"
	"net/mail"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/olegiv/tcms-go/internal/apperr"
)

// DateLayout is the wire and storage format of Date fields.
const DateLayout = "2006-01-02"

// UploadsPrefix is the public path prefix of uploaded files.
const UploadsPrefix = "/uploads/"

// Validation messages shared with the HTTP layer.
const (
	MsgUnknownField = "Unknown field"
	MsgInlineImage  = "Upload the image first; inline base64 is not accepted"
)

// Parse validates client input against the schema and returns the column
// values to write.
//
// On create every content column gets a value: missing columns receive the
// field default and required columns must be non-empty. On update only the
// columns present in input are returned; an explicit null resets a column
// to its default. System columns and read-only fields are dropped; any
// other unknown key is a validation error. Nothing is written when an error
// is returned.
func (s *Schema) Parse(input map[string]any, create bool) (map[string]any, error) {
	values := make(map[string]any, len(s.columns))
	var errs []apperr.FieldError

	for _, c := range s.columns {
		if c.Field.ReadOnly {
			if create {
				values[c.Name] = c.Field.zero()
			}
			continue
		}

		raw, present := input[c.Name]
		if !present && !create {
			continue
		}

		if !present || raw == nil {
			if c.Required() {
				errs = append(errs, apperr.FieldError{Field: c.Name, Message: c.Label() + " is required"})
				continue
			}
			values[c.Name] = c.Field.zero()
			continue
		}

		v, msg := c.coerce(raw)
		if msg != "" {
			errs = append(errs, apperr.FieldError{Field: c.Name, Message: msg})
			continue
		}
		values[c.Name] = v
	}

	var unknown []string
	for key := range input {
		if isSystemColumn(key) {
			continue
		}
		if _, ok := s.byName[key]; !ok {
			unknown = append(unknown, key)
		}
	}
	slices.Sort(unknown)
	for _, key := range unknown {
		errs = append(errs, apperr.FieldError{Field: key, Message: MsgUnknownField})
	}

	if len(errs) > 0 {
		return nil, apperr.Validation(errs...)
	}
	return values, nil
}

// zero returns the value stored when the client gives none.
func (f *Field) zero() any {
	if f.Default != nil {
		return f.Default
	}
	switch f.Kind {
	case Int, Date:
		return nil
	case Bool:
		return false
	case Tags:
		return "[]"
	default:
		return ""
	}
}

// coerce converts one non-nil input value. It returns the column value or
// a client-facing message.
func (c Column) coerce(raw any) (any, string) {
	f := c.Field
	label := c.Label()

	switch f.Kind {
	case Int:
		n, ok := toInt(raw)
		if !ok {
			return nil, label + " must be an integer"
		}
		if lo, hi := f.IntRange(); n < lo || n > hi {
			return nil, fmt.Sprintf("%s must be between %d and %d", label, lo, hi)
		}
		return n, ""

	case Bool:
		b, ok := toBool(raw)
		if !ok {
			return nil, label + " must be a boolean"
		}
		return b, ""

	case Tags:
		tags, ok := toTags(raw)
		if !ok {
			return nil, label + " must be a list or a comma-separated string"
		}
		data, err := json.Marshal(tags)
		if err != nil {
			return nil, label + " must be a list or a comma-separated string"
		}
		return string(data), ""
	}

	str, ok := raw.(string)
	if !ok {
		return nil, label + " must be a string"
	}
	str = strings.TrimSpace(str)

	if str == "" {
		if c.Required() {
			return nil, label + " is required"
		}
		if f.Kind == Date {
			return nil, ""
		}
		if f.Kind == Enum {
			return f.zero(), ""
		}
		return "", ""
	}

	switch f.Kind {
	case LocalizedRich:
		str = SanitizeRich(str)
	case Email:
		if !isEmail(str) {
			return nil, "Invalid email"
		}
	case URL:
		if !isLink(str) {
			return nil, label + " must be a valid URL"
		}
	case Image:
		if strings.HasPrefix(strings.ToLower(str), "data:") {
			return nil, MsgInlineImage
		}
		if !isImageRef(str) {
			return nil, label + " must be a URL or an /uploads/ path"
		}
	case Enum:
		if !slices.Contains(f.Options, str) {
			return nil, "Invalid " + strings.ToLower(fieldLabel(f))
		}
	case Date:
		d, ok := toDate(str)
		if !ok {
			return nil, label + " must be a date (YYYY-MM-DD)"
		}
		return d, ""
	}

	n := utf8.RuneCountInString(str)
	if f.MinLen > 0 && n < f.MinLen && (c.Lang == "" || c.Lang == "en") {
		return nil, fmt.Sprintf("%s must be at least %d characters", fieldLabel(f), f.MinLen)
	}
	if f.MaxLen > 0 && n > f.MaxLen {
		return nil, fmt.Sprintf("%s must be at most %d characters", label, f.MaxLen)
	}
	return str, ""
}

func fieldLabel(f *Field) string {
	if f.Label != "" {
		return f.Label
	}
	return humanize(f.Name)
}

func toInt(raw any) (int64, bool) {
	switch v := raw.(type) {
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) || v >= math.MaxInt64 || v < math.MinInt64 {
			return 0, false
		}
		return int64(v), true
	case int:
		return int64(v), true
	case int64:
		return v, true
	case json.Number:
		n, err := v.Int64()
		return n, err == nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		return n, err == nil
	}
	return 0, false
}

func toBool(raw any) (bool, bool) {
	switch v := raw.(type) {
	case bool:
		return v, true
	case float64:
		switch v {
		case 0:
			return false, true
		case 1:
			return true, true
		}
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "1":
			return true, true
		case "false", "0":
			return false, true
		}
	}
	return false, false
}

func toTags(raw any) ([]string, bool) {
	tags := []string{}
	add := func(s string) {
		if s = strings.TrimSpace(s); s != "" {
			tags = append(tags, s)
		}
	}

	switch v := raw.(type) {
	case string:
		for part := range strings.SplitSeq(v, ",") {
			add(part)
		}
	case []any:
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			add(s)
		}
	case []string:
		for _, s := range v {
			add(s)
		}
	default:
		return nil, false
	}
	return tags, true
}

func toDate(s string) (string, bool) {
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t.Format(DateLayout), true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.Format(DateLayout), true
	}
	return "", false
}

func isEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return false
	}
	at := strings.LastIndexByte(s, '@')
	return at > 0 && strings.Contains(s[at+1:], ".")
}

func isHTTPURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// isLink accepts absolute http(s) URLs and site-relative paths or anchors.
func isLink(s string) bool {
	if strings.HasPrefix(s, "/") && !strings.HasPrefix(s, "//") {
		return true
	}
	if strings.HasPrefix(s, "#") {
		return true
	}
	return isHTTPURL(s)
}

func isImageRef(s string) bool {
	if strings.HasPrefix(s, UploadsPrefix) {
		return !strings.Contains(s, "..")
	}
	return isHTTPURL(s)
}
