// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package content

import "github.com/microcosm-cc/bluemonday"

// richPolicy allows the formatting produced by the admin rich-text editor
// and strips scripts, event handlers and unsafe URLs.
var richPolicy = newRichPolicy()

func newRichPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("target").Matching(bluemonday.SpaceSeparatedTokens).OnElements("a")
	p.AddTargetBlankToFullyQualifiedLinks(true)
	return p
}

// SanitizeRich cleans an HTML fragment for storage.
func SanitizeRich(html string) string {
	return richPolicy.Sanitize(html)
}
