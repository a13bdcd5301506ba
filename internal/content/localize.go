// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package content

import "github.com/olegiv/tcms-go/internal/i18n"

// Localize adds a plain key for every localized field holding the value
// resolved for lang, e.g. "title" beside "title_en" and "title_ar".
func (s *Schema) Localize(rec Record, lang string) Record {
	for _, name := range s.LocalizedFields() {
		rec[name] = i18n.Resolve(rec, name, lang, "")
	}
	return rec
}
