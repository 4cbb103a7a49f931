package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

//go:embed locales/*.json
var localesFS embed.FS

// Languages lists the supported language codes. The first one is the fallback.
var Languages = []string{"en", "uk"} //nolint:gochecknoglobals // fixed catalog list

// Localizer handles translation for different languages.
type Localizer struct {
	translations map[string]map[string]string
	mu           sync.RWMutex
}

// NewLocalizer creates a new Localizer instance and loads all translations.
func NewLocalizer() (*Localizer, error) {
	locale := &Localizer{
		translations: make(map[string]map[string]string),
	}

	for _, lang := range Languages {
		if err := locale.loadLanguage(lang); err != nil {
			return nil, fmt.Errorf("failed to load language %s: %w", lang, err)
		}
	}

	return locale, nil
}

// loadLanguage loads translations for a specific language from embedded JSON files.
func (l *Localizer) loadLanguage(lang string) error {
	filename := fmt.Sprintf("locales/%s.json", lang)
	data, err := localesFS.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read locale file %s: %w", filename, err)
	}

	var translations map[string]string
	if err = json.Unmarshal(data, &translations); err != nil {
		return fmt.Errorf("failed to unmarshal locale file %s: %w", filename, err)
	}

	l.mu.Lock()
	l.translations[lang] = translations
	l.mu.Unlock()

	return nil
}

// Get returns the translation for the given key in the specified language.
// If the translation is not found, it returns the key itself.
func (l *Localizer) Get(lang, key string) string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if langTranslations, ok := l.translations[lang]; ok {
		if translation, exists := langTranslations[key]; exists {
			return translation
		}
	}

	// Fallback to the first language if translation not found
	if fallback := Languages[0]; lang != fallback {
		if translation, exists := l.translations[fallback][key]; exists {
			return translation
		}
	}

	// Return the key itself if no translation found
	return key
}

// Missing reports, per language, which of keys have no translation. It returns nil when every
// catalog has every key.
func (l *Localizer) Missing(keys ...string) map[string][]string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var missing map[string][]string
	for _, lang := range Languages {
		for _, key := range keys {
			if _, ok := l.translations[lang][key]; ok {
				continue
			}
			if missing == nil {
				missing = make(map[string][]string)
			}
			missing[lang] = append(missing[lang], key)
		}
	}
	return missing
}

// GetWithData returns the translation for the given key with {placeholder} replacement.
// Example: GetWithData("en", "payroll.paid", map[string]any{"amount": "300.00"}).
func (l *Localizer) GetWithData(lang, key string, data map[string]any) string {
	translation := l.Get(lang, key)

	for k, v := range data {
		translation = strings.ReplaceAll(translation, "{"+k+"}", fmt.Sprint(v))
	}

	return translation
}

// NormalizeLanguageCode normalizes Telegram language codes to our supported languages.
func NormalizeLanguageCode(telegramLang string) string {
	if telegramLang == "" {
		return "en"
	}

	// Handle language codes like "en-US" -> "en"
	const langCodeShortLength = 2
	if len(telegramLang) >= langCodeShortLength {
		langCode := telegramLang[:2]

		// Map to supported languages
		switch langCode {
		case "en":
			return "en"
		case "uk", "ua": // Both uk and ua map to Ukrainian
			return "uk"
		default:
			return "en" // Default to English
		}
	}

	return "en"
}
