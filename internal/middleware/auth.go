// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"strings"

	"github.com/olegiv/tcms-go/internal/auth"
	"github.com/olegiv/tcms-go/internal/logging"
)

// Authentication failure messages.
const (
	MsgNoToken      = "Not authorized, no token"
	MsgInvalidToken = "Not authorized, token failed"
)

// RequireAuth rejects requests without a valid bearer token. On success the
// claims travel in the request context (see auth.ClaimsFrom).
func RequireAuth(tokens *auth.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				WriteJSONError(w, http.StatusUnauthorized, MsgNoToken)
				return
			}

			claims, err := tokens.Verify(raw)
			if err != nil {
				WriteJSONError(w, http.StatusUnauthorized, MsgInvalidToken)
				return
			}

			ctx := auth.WithClaims(r.Context(), claims)
			ctx = logging.WithUser(ctx, claims.Username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken extracts the token of an "Authorization: Bearer <token>" header.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
