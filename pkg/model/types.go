package model

import "strings"

// FieldKind is the semantic kind used to pick a validation rule for a field.
type FieldKind string

const (
	FieldKindEmail    FieldKind = "email"
	FieldKindPassword FieldKind = "password"
	FieldKindGeneric  FieldKind = "generic"
)

const (
	ValidationRuleMinLength = "minLength"
	ValidationRuleMaxLength = "maxLength"
	ValidationRulePattern   = "pattern"
)

// ValidationRule represents a single constraint applied to a generic field.
// Length limits encode their threshold in Params["value"] while pattern rules
// keep the original expression in Params["pattern"], mirroring how a browser
// exposes minlength/maxlength/pattern attributes to constraint validation.
type ValidationRule struct {
	Kind   string            `json:"kind" yaml:"kind"`
	Params map[string]string `json:"params,omitempty" yaml:"params,omitempty"`
}

// Field describes one input of a rendered form. Fields are kept in declaration
// order inside Form; that order decides which error is reported first.
type Field struct {
	Name        string            `json:"name" yaml:"name"`
	Kind        FieldKind         `json:"kind" yaml:"kind"`
	Label       string            `json:"label,omitempty" yaml:"label,omitempty"`
	Value       string            `json:"value,omitempty" yaml:"value,omitempty"`
	Required    bool              `json:"required" yaml:"required"`
	NoValue     bool              `json:"noValue,omitempty" yaml:"noValue,omitempty"`
	Group       string            `json:"group,omitempty" yaml:"group,omitempty"`
	Validations []ValidationRule  `json:"validations,omitempty" yaml:"validations,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Form is the rendered field set a lifecycle controller binds to.
type Form struct {
	ID     string  `json:"id" yaml:"id"`
	Title  string  `json:"title,omitempty" yaml:"title,omitempty"`
	Fields []Field `json:"fields" yaml:"fields"`
}

// KindFromType maps a declared input type (as found on an <input> element or
// an OpenAPI string format) onto a FieldKind.
func KindFromType(inputType string) FieldKind {
	switch strings.ToLower(strings.TrimSpace(inputType)) {
	case "email":
		return FieldKindEmail
	case "password":
		return FieldKindPassword
	default:
		return FieldKindGeneric
	}
}

// EffectiveKind returns the field kind, defaulting unknown values to generic.
func (f Field) EffectiveKind() FieldKind {
	switch f.Kind {
	case FieldKindEmail, FieldKindPassword:
		return f.Kind
	default:
		return FieldKindGeneric
	}
}

// DisplayLabel returns the label, falling back to the field name.
func (f Field) DisplayLabel() string {
	if label := strings.TrimSpace(f.Label); label != "" {
		return label
	}
	return f.Name
}

// FieldIndex returns the position of the named field or -1.
func (f Form) FieldIndex(name string) int {
	for i := range f.Fields {
		if f.Fields[i].Name == name {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy so controllers never share field slices with the
// caller.
func (f Form) Clone() Form {
	out := Form{ID: f.ID, Title: f.Title}
	if len(f.Fields) == 0 {
		return out
	}
	out.Fields = make([]Field, len(f.Fields))
	for i, field := range f.Fields {
		out.Fields[i] = field.clone()
	}
	return out
}

func (f Field) clone() Field {
	out := f
	if len(f.Validations) > 0 {
		out.Validations = make([]ValidationRule, len(f.Validations))
		for i, rule := range f.Validations {
			out.Validations[i] = ValidationRule{Kind: rule.Kind, Params: copyStringMap(rule.Params)}
		}
	}
	out.Metadata = copyStringMap(f.Metadata)
	return out
}

func copyStringMap(in map[string]string) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
