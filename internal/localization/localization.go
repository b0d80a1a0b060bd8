// Package localization provides the translated texts of notifications.
// Translations are JSON files named with the language code (e.g., "fr.json").
package localization

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"strings"
	"sync"
)

// DefaultLanguage is used when a principal has no preferred language or a key is missing.
const DefaultLanguage = "fr"

//go:embed locales/*.json
var embedded embed.FS

// Localizer holds one key/value table per language code.
type Localizer struct {
	translations map[string]map[string]string
	mu           sync.RWMutex
}

// NewLocalizer loads every JSON file found at the root of fsys.
func NewLocalizer(fsys fs.FS) (*Localizer, error) {
	names, err := fs.Glob(fsys, "*.json")
	if err != nil {
		return nil, fmt.Errorf("list locale files: %w", err)
	}

	l := &Localizer{translations: make(map[string]map[string]string, len(names))}
	for _, name := range names {
		table, err := loadTable(fsys, name)
		if err != nil {
			return nil, err
		}
		l.translations[strings.TrimSuffix(name, ".json")] = table
	}
	return l, nil
}

func loadTable(fsys fs.FS, name string) (map[string]string, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("read locale %s: %w", name, err)
	}
	table := make(map[string]string)
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("parse locale %s: %w", name, err)
	}
	return table, nil
}

// Default returns a Localizer over the translations compiled into the binary.
func Default() (*Localizer, error) {
	sub, err := fs.Sub(embedded, "locales")
	if err != nil {
		return nil, err
	}
	return NewLocalizer(sub)
}

// GetString returns the localized string for a given key and language.
// Missing keys fall back to DefaultLanguage and then to the key itself.
func (l *Localizer) GetString(lang, key string) string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, code := range []string{lang, DefaultLanguage} {
		if value, ok := l.translations[code][key]; ok {
			return value
		}
	}
	return key
}

// Format looks up key and formats it with args.
func (l *Localizer) Format(lang, key string, args ...any) string {
	return fmt.Sprintf(l.GetString(lang, key), args...)
}

// Languages lists the loaded language codes.
func (l *Localizer) Languages() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	langs := make([]string, 0, len(l.translations))
	for lang := range l.translations {
		langs = append(langs, lang)
	}
	return langs
}
