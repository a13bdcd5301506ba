// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/olegiv/tcms-go/internal/i18n"
)

type languageKey struct{}

type languageInfo struct {
	code     string
	explicit bool
}

// Language detects the response language. An explicit ?lang=en|ar wins;
// otherwise Accept-Language is matched against the supported languages.
// The result is echoed in Content-Language.
func Language(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		info := languageInfo{code: i18n.DefaultLanguage}

		if q := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("lang"))); q != "" && i18n.IsSupported(q) {
			info = languageInfo{code: q, explicit: true}
		} else if accept := r.Header.Get("Accept-Language"); accept != "" {
			info.code = i18n.MatchLanguage(accept)
		}

		w.Header().Set("Content-Language", info.code)
		ctx := context.WithValue(r.Context(), languageKey{}, info)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// LanguageFrom returns the detected language and whether the client asked
// for it explicitly with ?lang.
func LanguageFrom(ctx context.Context) (string, bool) {
	info, ok := ctx.Value(languageKey{}).(languageInfo)
	if !ok {
		return i18n.DefaultLanguage, false
	}
	return info.code, info.explicit
}
