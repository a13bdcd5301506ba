package i18n

import "strings"

// Resolve picks the display value of a localized field from a row holding
// "<field>_en" and "<field>_ar" keys. Arabic falls back to English, and
// English falls back to the static fallback. It never fails: missing keys,
// nil values and non-string values all degrade to the fallback.
func Resolve(row map[string]any, field, lang, fallback string) string {
	if lang == Arabic {
		if v := stringAt(row, field+"_ar"); v != "" {
			return v
		}
	}
	if v := stringAt(row, field+"_en"); v != "" {
		return v
	}
	return fallback
}

func stringAt(row map[string]any, key string) string {
	s, _ := row[key].(string)
	if strings.TrimSpace(s) == "" {
		return ""
	}
	return s
}
