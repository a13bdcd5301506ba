// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRateLimiter_Middleware(t *testing.T) {
	rl := NewRateLimiter(0.001, 2)
	handler := rl.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	do := func(remote string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/news", nil)
		req.RemoteAddr = remote
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr
	}

	for i := range 2 {
		if rr := do("10.0.0.1:1234"); rr.Code != http.StatusOK {
			t.Fatalf("request %d: Status = %d, want 200", i, rr.Code)
		}
	}

	rr := do("10.0.0.1:9999")
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("Status = %d, want 429", rr.Code)
	}
	if body := decodeError(t, rr); body.Message != MsgTooManyRequests {
		t.Errorf("Message = %q, want %q", body.Message, MsgTooManyRequests)
	}

	if rr := do("10.0.0.2:1234"); rr.Code != http.StatusOK {
		t.Errorf("other client: Status = %d, want 200", rr.Code)
	}
}

func TestClientIP(t *testing.T) {
	tests := map[string]string{
		"192.0.2.1:1234": "192.0.2.1",
		"[::1]:80":       "::1",
		"192.0.2.9":      "192.0.2.9",
	}
	for remote, want := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = remote
		if got := ClientIP(req); got != want {
			t.Errorf("ClientIP(%q) = %q, want %q", remote, got, want)
		}
	}
}

func TestLimiterCache_Bounded(t *testing.T) {
	lc := newLimiterCache[int](1, 1)
	for i := range maxLimiters + 5 {
		lc.get(i)
	}
	if n := len(lc.limiters); n > maxLimiters {
		t.Errorf("len(limiters) = %d, want <= %d", n, maxLimiters)
	}
}
