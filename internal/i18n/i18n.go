// Package i18n provides the public-site string catalogs and the language
// resolution rules for bilingual content.
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/text/language"
)

//go:embed locales
var localesFS embed.FS

// Language codes.
const (
	English = "en"
	Arabic  = "ar"
)

// DefaultLanguage is the fallback for every lookup.
const DefaultLanguage = English

// Message represents a single translatable message.
type Message struct {
	ID          string `json:"id"`
	Message     string `json:"message"`
	Translation string `json:"translation"`
}

// MessageFile represents the structure of a messages JSON file.
type MessageFile struct {
	Language string    `json:"language"`
	Messages []Message `json:"messages"`
}

// Catalog holds all translations for all supported languages.
type Catalog struct {
	mu           sync.RWMutex
	translations map[string]map[string]string // lang -> key -> translation
	order        map[string][]string          // lang -> keys in file order
	matcher      language.Matcher
	supported    []language.Tag
	logger       *slog.Logger
}

// catalog is the global catalog instance.
var catalog *Catalog

// SupportedLanguages lists the content languages, default first.
var SupportedLanguages = []string{English, Arabic}

// Init loads the embedded catalogs.
func Init(logger *slog.Logger) error {
	c := &Catalog{
		translations: make(map[string]map[string]string),
		order:        make(map[string][]string),
		logger:       logger,
	}

	tags := make([]language.Tag, 0, len(SupportedLanguages))
	for _, lang := range SupportedLanguages {
		tags = append(tags, language.MustParse(lang))
	}
	c.supported = tags
	c.matcher = language.NewMatcher(tags)

	for _, lang := range SupportedLanguages {
		if err := c.loadLanguage(lang); err != nil {
			return fmt.Errorf("failed to load language %s: %w", lang, err)
		}
	}

	catalog = c
	if logger != nil {
		logger.Info("i18n initialized", "languages", SupportedLanguages)
	}
	return nil
}

// loadLanguage loads translations for a specific language.
func (c *Catalog) loadLanguage(lang string) error {
	path := fmt.Sprintf("locales/%s/messages.json", lang)
	data, err := localesFS.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	var msgFile MessageFile
	if err := json.Unmarshal(data, &msgFile); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.translations[lang] = make(map[string]string, len(msgFile.Messages))
	c.order[lang] = make([]string, 0, len(msgFile.Messages))
	for _, msg := range msgFile.Messages {
		if _, dup := c.translations[lang][msg.ID]; !dup {
			c.order[lang] = append(c.order[lang], msg.ID)
		}
		c.translations[lang][msg.ID] = msg.Translation
	}

	if c.logger != nil {
		c.logger.Debug("loaded translations", "language", lang, "count", len(msgFile.Messages))
	}
	return nil
}

// Tree returns the catalog of lang as a nested object, splitting message
// IDs on dots ("footer.email" becomes {"footer": {"email": ...}}).
// The second result is false when lang has no catalog.
func Tree(lang string) (map[string]any, bool) {
	if catalog == nil {
		return nil, false
	}

	catalog.mu.RLock()
	defer catalog.mu.RUnlock()

	msgs, ok := catalog.translations[lang]
	if !ok {
		return nil, false
	}

	root := make(map[string]any)
	for _, id := range catalog.order[lang] {
		parts := strings.Split(id, ".")
		node := root
		for _, p := range parts[:len(parts)-1] {
			child, ok := node[p].(map[string]any)
			if !ok {
				child = make(map[string]any)
				node[p] = child
			}
			node = child
		}
		node[parts[len(parts)-1]] = msgs[id]
	}
	return root, true
}

// GetSupportedLanguages returns the list of supported languages.
func GetSupportedLanguages() []string {
	return SupportedLanguages
}

// MatchLanguage finds the best matching supported language for an
// Accept-Language header or a bare language code.
func MatchLanguage(acceptLang string) string {
	if catalog == nil || acceptLang == "" {
		return DefaultLanguage
	}

	tags, _, err := language.ParseAcceptLanguage(acceptLang)
	if err != nil || len(tags) == 0 {
		tag, err := language.Parse(acceptLang)
		if err != nil {
			return DefaultLanguage
		}
		tags = []language.Tag{tag}
	}

	_, idx, conf := catalog.matcher.Match(tags...)
	if conf == language.No {
		return DefaultLanguage
	}
	if idx >= 0 && idx < len(catalog.supported) {
		return catalog.supported[idx].String()
	}
	return DefaultLanguage
}

// IsSupported checks if a language code is supported.
func IsSupported(lang string) bool {
	lang = strings.ToLower(lang)
	for _, supported := range SupportedLanguages {
		if supported == lang {
			return true
		}
	}
	return false
}

// TranslationCount returns the number of translations loaded for a language.
func TranslationCount(lang string) int {
	if catalog == nil {
		return 0
	}

	catalog.mu.RLock()
	defer catalog.mu.RUnlock()

	return len(catalog.translations[lang])
}
