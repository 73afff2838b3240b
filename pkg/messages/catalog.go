package messages

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Kind is a symbolic error identifier. The lifecycle core only deals in kinds;
// user-facing strings come from a Translator.
type Kind string

const (
	KindEmailRequired    Kind = "EMAIL_REQUIRED"
	KindInvalidEmail     Kind = "INVALID_EMAIL"
	KindPasswordRequired Kind = "PASSWORD_REQUIRED"
	KindPasswordTooShort Kind = "PASSWORD_TOO_SHORT"
	KindRequired         Kind = "REQUIRED"
	KindInvalidValue     Kind = "INVALID_VALUE"
	KindUnexpected       Kind = "UNEXPECTED_ERROR"
)

var (
	// ErrMissingTranslator is passed to MissingTranslationHandler when no
	// translator was configured.
	ErrMissingTranslator = errors.New("messages: translator is nil")
	// ErrMissingMessage signals that no locale in the fallback chain defines
	// the requested key.
	ErrMissingMessage = errors.New("messages: message not found")
)

//go:embed defaults.yaml
var defaultCatalog []byte

// Translator resolves a key for a locale. Optional args carry interpolation
// parameters; a map[string]string argument replaces `{name}` placeholders.
type Translator interface {
	Translate(locale, key string, args ...any) (string, error)
}

// MissingTranslationHandler produces the string used when a lookup fails.
type MissingTranslationHandler func(locale, key string, args []any, err error) string

// Catalog is an in-memory Translator keyed by locale then kind.
type Catalog struct {
	mu             sync.RWMutex
	entries        map[string]map[string]string
	fallbackLocale string
}

type catalogFile struct {
	Locales map[string]map[string]string `yaml:"locales"`
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithFallbackLocale sets the locale consulted after the requested locale and
// its base language.
func WithFallbackLocale(locale string) Option {
	return func(c *Catalog) {
		if trimmed := strings.TrimSpace(locale); trimmed != "" {
			c.fallbackLocale = trimmed
		}
	}
}

// WithoutDefaults starts from an empty catalog instead of the embedded one.
func WithoutDefaults() Option {
	return func(c *Catalog) {
		c.entries = make(map[string]map[string]string)
	}
}

// NewCatalog returns a catalog seeded with the embedded default messages.
func NewCatalog(options ...Option) *Catalog {
	c := &Catalog{fallbackLocale: "en"}
	if err := c.LoadYAML(defaultCatalog); err != nil {
		panic(fmt.Sprintf("messages: embedded catalog: %v", err))
	}
	for _, opt := range options {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Add merges entries for the locale, overriding existing keys.
func (c *Catalog) Add(locale string, entries map[Kind]string) {
	locale = normaliseLocale(locale)
	if locale == "" || len(entries) == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entries == nil {
		c.entries = make(map[string]map[string]string)
	}
	bucket := c.entries[locale]
	if bucket == nil {
		bucket = make(map[string]string, len(entries))
		c.entries[locale] = bucket
	}
	for kind, message := range entries {
		if trimmed := strings.TrimSpace(message); trimmed != "" {
			bucket[string(kind)] = trimmed
		}
	}
}

// LoadYAML merges a `locales:` document into the catalog.
func (c *Catalog) LoadYAML(data []byte) error {
	var doc catalogFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("messages: parse catalog: %w", err)
	}
	for locale, raw := range doc.Locales {
		entries := make(map[Kind]string, len(raw))
		for key, message := range raw {
			entries[Kind(strings.TrimSpace(key))] = message
		}
		c.Add(locale, entries)
	}
	return nil
}

// LoadFS merges a catalog file from fsys.
func (c *Catalog) LoadFS(fsys fs.FS, path string) error {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return fmt.Errorf("messages: read %s: %w", path, err)
	}
	return c.LoadYAML(data)
}

// Translate implements Translator. The lookup walks the requested locale, its
// base language ("de-CH" -> "de") and finally the fallback locale.
func (c *Catalog) Translate(locale, key string, args ...any) (string, error) {
	if c == nil {
		return "", ErrMissingTranslator
	}
	key = strings.TrimSpace(key)

	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, candidate := range localeChain(locale, c.fallbackLocale) {
		if message, ok := c.entries[candidate][key]; ok {
			return interpolate(message, args), nil
		}
	}
	return "", fmt.Errorf("%w: %s (%s)", ErrMissingMessage, key, locale)
}

// Resolve looks up kind through t, routing failures to onMissing. It never
// returns an empty string: without a handler it falls back to the kind itself.
func Resolve(t Translator, locale string, kind Kind, params map[string]string, onMissing MissingTranslationHandler) string {
	key := string(kind)
	args := []any{params}
	if t == nil {
		if onMissing != nil {
			return onMissing(locale, key, args, ErrMissingTranslator)
		}
		return key
	}
	msg, err := t.Translate(locale, key, args...)
	if err == nil && strings.TrimSpace(msg) != "" {
		return msg
	}
	if onMissing != nil {
		if out := onMissing(locale, key, args, err); strings.TrimSpace(out) != "" {
			return out
		}
	}
	return key
}

func interpolate(message string, args []any) string {
	for _, arg := range args {
		params, ok := arg.(map[string]string)
		if !ok || len(params) == 0 {
			continue
		}
		pairs := make([]string, 0, len(params)*2)
		for name, value := range params {
			pairs = append(pairs, "{"+name+"}", value)
		}
		message = strings.NewReplacer(pairs...).Replace(message)
	}
	return message
}

func localeChain(locale, fallback string) []string {
	locale = normaliseLocale(locale)
	fallback = normaliseLocale(fallback)

	chain := make([]string, 0, 3)
	appendUnique := func(value string) {
		if value == "" {
			return
		}
		for _, existing := range chain {
			if existing == value {
				return
			}
		}
		chain = append(chain, value)
	}
	appendUnique(locale)
	if idx := strings.IndexByte(locale, '-'); idx > 0 {
		appendUnique(locale[:idx])
	}
	appendUnique(fallback)
	return chain
}

func normaliseLocale(locale string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(locale), "_", "-"))
}
