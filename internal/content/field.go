// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package content declares the schemas of every managed resource and the
// rules for turning client input into column values and stored rows back
// into API records.
package content

import (
	"math"
	"strings"
	"unicode"
)

// Kind is the storage and validation type of a field.
type Kind int

const (
	Text Kind = iota
	Localized
	LocalizedRich
	Email
	URL
	Image
	Int
	Bool
	Enum
	Date
	Tags
)

// Language column suffixes of localized fields.
const (
	SuffixEN = "_en"
	SuffixAR = "_ar"
)

// Field describes one attribute of a resource. Localized kinds expand to a
// "<Name>_en" and a "<Name>_ar" column; every other kind is one column.
type Field struct {
	Name     string
	Kind     Kind
	Label    string // human name, derived from Name when empty
	Required bool   // localized: the English column is required
	MinLen   int    // localized: checked on the English column when non-empty
	MaxLen   int    // 0 = unlimited
	Min, Max int64  // int: inclusive bounds, the INT column range when both are 0
	Options  []string
	Default  any
	ReadOnly bool // maintained by the server, dropped from client input
}

// IsLocalized reports whether the field is stored as an en/ar pair.
func (f Field) IsLocalized() bool {
	return f.Kind == Localized || f.Kind == LocalizedRich
}

// IntRange returns the inclusive bounds accepted for an Int field.
func (f Field) IntRange() (lo, hi int64) {
	if f.Min == 0 && f.Max == 0 {
		return math.MinInt32, math.MaxInt32
	}
	return f.Min, f.Max
}

// Column is a single database column produced by a field.
type Column struct {
	Name  string
	Field *Field
	Lang  string // "en", "ar" or "" for language-neutral columns
}

// Label returns the name used in validation messages.
func (c Column) Label() string {
	label := c.Field.Label
	if label == "" {
		label = humanize(c.Field.Name)
	}
	switch c.Lang {
	case "en":
		return "English " + strings.ToLower(label)
	case "ar":
		return "Arabic " + strings.ToLower(label)
	}
	return label
}

// Required reports whether the column must be non-empty on create.
func (c Column) Required() bool {
	if !c.Field.Required {
		return false
	}
	return c.Lang == "" || c.Lang == "en"
}

// humanize turns "display_order" into "Display order".
func humanize(name string) string {
	s := strings.ReplaceAll(name, "_", " ")
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
