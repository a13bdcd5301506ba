// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package geoip

import (
	"path/filepath"
	"testing"
)

func TestCountry_WithoutDatabase(t *testing.T) {
	l, err := Open("")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() { _ = l.Close() }()

	if l.Enabled() {
		t.Error("Enabled() = true, want false")
	}

	tests := []struct {
		ip   string
		want string
	}{
		{"127.0.0.1", Local},
		{"127.0.0.1:5000", Local},
		{"10.1.2.3", Local},
		{"192.168.0.10", Local},
		{"172.16.5.5", Local},
		{"::1", Local},
		{"[::1]:8080", Local},
		{"fe80::1", Local},
		{"fd00::1", Local},
		{"::ffff:192.168.1.1", Local},
		{"8.8.8.8", ""},
		{"not-an-ip", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := l.Country(tt.ip); got != tt.want {
			t.Errorf("Country(%q) = %q, want %q", tt.ip, got, tt.want)
		}
	}
}

func TestOpen_MissingFile(t *testing.T) {
	l, err := Open(filepath.Join(t.TempDir(), "missing.mmdb"))
	if err == nil {
		t.Fatal("Open() error = nil, want error")
	}
	if l == nil {
		t.Fatal("Open() returned nil lookup")
	}
	if l.Enabled() {
		t.Error("Enabled() = true, want false")
	}
	if got := l.Country("8.8.8.8"); got != "" {
		t.Errorf("Country() = %q, want empty", got)
	}
}

func TestReload_Disabled(t *testing.T) {
	l, _ := Open("")
	if err := l.Reload(); err != nil {
		t.Errorf("Reload() = %v, want nil", err)
	}
}
