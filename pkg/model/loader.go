package model

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Store holds form definitions keyed by form id.
type Store struct {
	forms map[string]Form
}

type documentFile struct {
	Forms map[string]formFile `json:"forms" yaml:"forms"`
}

type formFile struct {
	Title  string  `json:"title" yaml:"title"`
	Fields []Field `json:"fields" yaml:"fields"`
}

// LoadFS walks the provided filesystem and parses JSON/YAML form definition
// files. When fsys is nil or no definition files are present, the returned
// store is empty.
func LoadFS(fsys fs.FS) (*Store, error) {
	store := &Store{forms: make(map[string]Form)}
	if fsys == nil {
		return store, nil
	}

	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isDefinitionFile(path) {
			return nil
		}

		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("model: read %s: %w", path, err)
		}
		doc, err := parseDocument(data, path)
		if err != nil {
			return err
		}

		for rawID, raw := range doc.Forms {
			id := strings.TrimSpace(rawID)
			if id == "" {
				return fmt.Errorf("model: file %s defines an empty form id", path)
			}
			if _, exists := store.forms[id]; exists {
				return fmt.Errorf("model: duplicate form %q (file %s)", id, path)
			}
			form, err := normaliseForm(id, raw, path)
			if err != nil {
				return err
			}
			store.forms[id] = form
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return store, nil
}

// ParseForm decodes a single form definition (JSON or YAML) that is not
// wrapped in a `forms` map.
func ParseForm(id string, data []byte) (Form, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return Form{}, fmt.Errorf("model: form %q definition is empty", id)
	}
	var raw formFile
	if err := json.Unmarshal(data, &raw); err != nil {
		if yerr := yaml.Unmarshal(data, &raw); yerr != nil {
			return Form{}, fmt.Errorf("model: parse form %q: invalid JSON or YAML", id)
		}
	}
	return normaliseForm(id, raw, id)
}

// Form returns the definition for the supplied id.
func (s *Store) Form(id string) (Form, bool) {
	if s == nil {
		return Form{}, false
	}
	form, ok := s.forms[id]
	if !ok {
		return Form{}, false
	}
	return form.Clone(), true
}

// IDs lists the stored form ids in sorted order.
func (s *Store) IDs() []string {
	if s == nil {
		return nil
	}
	ids := make([]string, 0, len(s.forms))
	for id := range s.forms {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Empty reports whether the store holds any forms.
func (s *Store) Empty() bool {
	return s == nil || len(s.forms) == 0
}

func parseDocument(data []byte, source string) (documentFile, error) {
	var doc documentFile
	if len(strings.TrimSpace(string(data))) == 0 {
		return documentFile{}, fmt.Errorf("model: file %s is empty", source)
	}
	if err := json.Unmarshal(data, &doc); err == nil {
		return doc, nil
	}
	if err := yaml.Unmarshal(data, &doc); err == nil {
		return doc, nil
	}
	return documentFile{}, fmt.Errorf("model: parse %s: invalid JSON or YAML", source)
}

func normaliseForm(id string, raw formFile, source string) (Form, error) {
	form := Form{ID: id, Title: strings.TrimSpace(raw.Title)}
	seen := make(map[string]struct{}, len(raw.Fields))
	for idx, field := range raw.Fields {
		name := strings.TrimSpace(field.Name)
		if name == "" {
			return Form{}, fmt.Errorf("model: form %q (file %s) field at index %d has no name", id, source, idx)
		}
		if _, dup := seen[name]; dup {
			return Form{}, fmt.Errorf("model: form %q (file %s) defines duplicate field %q", id, source, name)
		}
		seen[name] = struct{}{}
		field.Name = name
		field.Kind = field.EffectiveKind()
		form.Fields = append(form.Fields, field.clone())
	}
	return form, nil
}

func isDefinitionFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}
