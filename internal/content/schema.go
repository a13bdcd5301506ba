// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package content

import "slices"

// SingletonID is the fixed primary key of every singleton content row.
const SingletonID int64 = 1

// System columns present on every table. They are never written from
// client input.
const (
	ColID        = "id"
	ColCreatedAt = "created_at"
	ColUpdatedAt = "updated_at"
)

var systemColumns = []string{ColID, ColCreatedAt, ColUpdatedAt}

// Filter maps an optional query parameter onto an equality predicate.
type Filter struct {
	Param  string   // query parameter, e.g. "category"
	Column string   // filtered column
	All    []string // values meaning "no filter"
}

// Matches reports whether value should narrow the result set.
func (f *Filter) Matches(value string) bool {
	return value != "" && !slices.Contains(f.All, value)
}

// Schema declares one resource: its table, fields, ordering and paging.
type Schema struct {
	Name         string // resource key, also the route segment
	Table        string
	Label        string // singular, used in messages ("News article")
	Group        string // cache invalidation group
	Fields       []Field
	OrderBy      string // constant SQL ordering, never built from input
	Paginated    bool
	DefaultLimit int
	Filter       *Filter
	Singleton    bool
	Private      bool // reads require authentication

	columns []Column
	byName  map[string]Column
}

// init expands the fields into columns. Called once by the registry.
func (s *Schema) init() {
	s.columns = s.columns[:0]
	for i := range s.Fields {
		f := &s.Fields[i]
		if f.IsLocalized() {
			s.columns = append(s.columns,
				Column{Name: f.Name + SuffixEN, Field: f, Lang: "en"},
				Column{Name: f.Name + SuffixAR, Field: f, Lang: "ar"},
			)
			continue
		}
		s.columns = append(s.columns, Column{Name: f.Name, Field: f})
	}

	s.byName = make(map[string]Column, len(s.columns))
	for _, c := range s.columns {
		s.byName[c.Name] = c
	}

	if s.DefaultLimit == 0 {
		s.DefaultLimit = 10
	}
}

// Columns returns the content columns in declaration order.
func (s *Schema) Columns() []Column {
	return s.columns
}

// Column looks up a content column by name.
func (s *Schema) Column(name string) (Column, bool) {
	c, ok := s.byName[name]
	return c, ok
}

// SelectColumns returns every column to read, system columns included.
func (s *Schema) SelectColumns() []string {
	cols := make([]string, 0, len(s.columns)+len(systemColumns))
	cols = append(cols, ColID)
	for _, c := range s.columns {
		cols = append(cols, c.Name)
	}
	return append(cols, ColCreatedAt, ColUpdatedAt)
}

// ImageColumns returns the names of the columns holding image references.
func (s *Schema) ImageColumns() []string {
	var cols []string
	for _, c := range s.columns {
		if c.Field.Kind == Image {
			cols = append(cols, c.Name)
		}
	}
	return cols
}

// LocalizedFields returns the base names of the localized fields.
func (s *Schema) LocalizedFields() []string {
	var names []string
	for _, f := range s.Fields {
		if f.IsLocalized() {
			names = append(names, f.Name)
		}
	}
	return names
}

func isSystemColumn(name string) bool {
	return slices.Contains(systemColumns, name)
}
