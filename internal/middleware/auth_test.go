// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/olegiv/tcms-go/internal/auth"
)

const testSecret = "0123456789abcdefghijklmnopqrstuvwxyz"

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding body %q: %v", rr.Body.String(), err)
	}
	return body
}

func TestRequireAuth(t *testing.T) {
	tokens := auth.NewTokenManager(testSecret, time.Hour)
	valid, err := tokens.Issue(1, "admin", "admin")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	expired, err := auth.NewTokenManager(testSecret, -time.Hour).Issue(1, "admin", "admin")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	var gotClaims *auth.Claims
	handler := RequireAuth(tokens)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotClaims, _ = auth.ClaimsFrom(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantMsg    string
	}{
		{"valid", "Bearer " + valid, http.StatusNoContent, ""},
		{"lowercase scheme", "bearer " + valid, http.StatusNoContent, ""},
		{"missing", "", http.StatusUnauthorized, MsgNoToken},
		{"wrong scheme", "Basic " + valid, http.StatusUnauthorized, MsgNoToken},
		{"empty token", "Bearer ", http.StatusUnauthorized, MsgNoToken},
		{"garbage", "Bearer abc.def.ghi", http.StatusUnauthorized, MsgInvalidToken},
		{"expired", "Bearer " + expired, http.StatusUnauthorized, MsgInvalidToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotClaims = nil
			req := httptest.NewRequest(http.MethodPost, "/api/news", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != tt.wantStatus {
				t.Fatalf("Status = %d, want %d", rr.Code, tt.wantStatus)
			}
			if tt.wantMsg != "" {
				body := decodeError(t, rr)
				if body.Success || body.Message != tt.wantMsg {
					t.Errorf("body = %+v, want message %q", body, tt.wantMsg)
				}
				if gotClaims != nil {
					t.Error("handler reached without valid token")
				}
				return
			}
			if gotClaims == nil || gotClaims.Username != "admin" || gotClaims.ID != 1 {
				t.Errorf("claims = %+v, want admin/1", gotClaims)
			}
		})
	}
}
