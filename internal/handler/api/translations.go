// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/tcms-go/internal/apperr"
	"github.com/olegiv/tcms-go/internal/i18n"
)

// Languages handles GET /translations.
func (h *Handler) Languages(w http.ResponseWriter, _ *http.Request) {
	WriteSuccess(w, i18n.GetSupportedLanguages())
}

// Translations handles GET /translations/{lang} with the UI strings of the
// public site.
func (h *Handler) Translations(w http.ResponseWriter, r *http.Request) {
	lang := strings.ToLower(chi.URLParam(r, "lang"))
	tree, ok := i18n.Tree(lang)
	if !ok {
		h.writeError(w, r, apperr.NotFound(fmt.Sprintf("Translations for language '%s' not found", chi.URLParam(r, "lang"))))
		return
	}
	WriteSuccess(w, tree)
}
