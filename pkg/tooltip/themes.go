package tooltip

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	theme "github.com/goliatone/go-theme"
	"gopkg.in/yaml.v3"
)

// ErrUnknownTheme is returned by ManifestSelector for names it does not hold.
var ErrUnknownTheme = errors.New("tooltip: unknown theme")

type themesFile struct {
	Themes []themeEntry `yaml:"themes"`
}

type themeEntry struct {
	Name     string                  `yaml:"name"`
	Version  string                  `yaml:"version"`
	Tokens   map[string]string       `yaml:"tokens"`
	Variants map[string]variantEntry `yaml:"variants"`
}

type variantEntry struct {
	Tokens map[string]string `yaml:"tokens"`
}

// ManifestSelector is a theme.ThemeSelector over a fixed set of manifests,
// typically loaded from a themes YAML file.
type ManifestSelector struct {
	manifests map[string]*theme.Manifest
	names     []string
}

var _ theme.ThemeSelector = (*ManifestSelector)(nil)

// NewManifestSelector validates manifests by registering them with a go-theme
// registry. Theme names must be unique.
func NewManifestSelector(manifests ...*theme.Manifest) (*ManifestSelector, error) {
	registry := theme.NewRegistry()
	s := &ManifestSelector{manifests: make(map[string]*theme.Manifest, len(manifests))}
	for _, manifest := range manifests {
		if manifest == nil {
			continue
		}
		if _, exists := s.manifests[manifest.Name]; exists {
			return nil, fmt.Errorf("tooltip: duplicate theme %q", manifest.Name)
		}
		if err := registry.Register(manifest); err != nil {
			return nil, fmt.Errorf("tooltip: register theme %q: %w", manifest.Name, err)
		}
		s.manifests[manifest.Name] = manifest
		s.names = append(s.names, manifest.Name)
	}
	sort.Strings(s.names)
	return s, nil
}

// Select returns the named manifest. An empty name picks the only manifest
// when exactly one is loaded. Unknown variants are an error.
func (s *ManifestSelector) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	name = strings.TrimSpace(name)
	if name == "" && len(s.names) == 1 {
		name = s.names[0]
	}
	manifest, ok := s.manifests[name]
	if !ok {
		return nil, fmt.Errorf("%w %q (available: %v)", ErrUnknownTheme, name, s.names)
	}
	variant = strings.TrimSpace(variant)
	if variant != "" {
		if _, ok := manifest.Variants[variant]; !ok {
			return nil, fmt.Errorf("tooltip: theme %q has no variant %q", name, variant)
		}
	}
	return &theme.Selection{Theme: name, Variant: variant, Manifest: manifest}, nil
}

// LoadThemes reads a themes YAML document from fsys.
func LoadThemes(fsys fs.FS, path string) (*ManifestSelector, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("tooltip: read themes %s: %w", path, err)
	}
	return ParseThemes(data)
}

// LoadThemesFile reads a themes YAML document from disk.
func LoadThemesFile(path string) (*ManifestSelector, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("tooltip: read themes %s: %w", path, err)
	}
	return ParseThemes(data)
}

// ParseThemes builds a selector from YAML of the form
//
//	themes:
//	  - name: acme
//	    version: 1.0.0
//	    tokens: {tooltip.class: acme-tip}
//	    variants:
//	      dark: {tokens: {tooltip.class: acme-tip dark}}
func ParseThemes(data []byte) (*ManifestSelector, error) {
	var raw themesFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("tooltip: parse themes: %w", err)
	}
	manifests := make([]*theme.Manifest, 0, len(raw.Themes))
	for _, entry := range raw.Themes {
		manifest := &theme.Manifest{
			Name:    entry.Name,
			Version: entry.Version,
			Tokens:  entry.Tokens,
		}
		if len(entry.Variants) > 0 {
			manifest.Variants = make(map[string]theme.Variant, len(entry.Variants))
			for name, v := range entry.Variants {
				manifest.Variants[name] = theme.Variant{Tokens: v.Tokens}
			}
		}
		manifests = append(manifests, manifest)
	}
	return NewManifestSelector(manifests...)
}
