package lifecycle

import (
	"fmt"
	"net/mail"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/goliatone/go-formlife/pkg/config"
	"github.com/goliatone/go-formlife/pkg/messages"
	"github.com/goliatone/go-formlife/pkg/model"
)

// Issue describes why a field failed its rule. Params feed message
// interpolation (for example {"min": "8"}).
type Issue struct {
	Kind   messages.Kind
	Params map[string]string
}

// Validator checks one field. A nil Issue means the field is valid.
type Validator interface {
	Validate(field model.Field) *Issue
}

// ValidatorFunc adapts a function to Validator.
type ValidatorFunc func(field model.Field) *Issue

func (fn ValidatorFunc) Validate(field model.Field) *Issue {
	return fn(field)
}

// ValidatorRegistry stores one validator per field kind.
type ValidatorRegistry struct {
	mu         sync.RWMutex
	validators map[model.FieldKind]Validator
}

// NewValidatorRegistry returns a registry holding the built-in email, password
// and generic validators configured from settings.
func NewValidatorRegistry(settings config.Settings) *ValidatorRegistry {
	reg := &ValidatorRegistry{validators: make(map[model.FieldKind]Validator)}
	reg.MustRegister(model.FieldKindEmail, EmailValidator{
		MaxLength:      settings.Email.MaxLength,
		LocalMaxLength: settings.Email.LocalMaxLength,
	})
	reg.MustRegister(model.FieldKindPassword, PasswordValidator{MinLength: settings.Password.MinLength})
	reg.MustRegister(model.FieldKindGeneric, &GenericValidator{})
	return reg
}

// Register adds a validator for kind. Registering an existing kind fails.
func (r *ValidatorRegistry) Register(kind model.FieldKind, v Validator) error {
	if v == nil {
		return fmt.Errorf("lifecycle: validator for %q is nil", kind)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.validators[kind]; exists {
		return fmt.Errorf("%w: %q", ErrValidatorExists, kind)
	}
	r.validators[kind] = v
	return nil
}

// MustRegister panics on registration failure. Useful for init-time wiring.
func (r *ValidatorRegistry) MustRegister(kind model.FieldKind, v Validator) {
	if err := r.Register(kind, v); err != nil {
		panic(err)
	}
}

// Replace installs v for kind, overriding any previous validator.
func (r *ValidatorRegistry) Replace(kind model.FieldKind, v Validator) {
	if v == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.validators[kind] = v
}

// Get returns the validator registered for kind.
func (r *ValidatorRegistry) Get(kind model.FieldKind) (Validator, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.validators[kind]
	return v, ok
}

// EmailValidator requires a non-empty, well-formed address.
type EmailValidator struct {
	MaxLength      int
	LocalMaxLength int
}

func (v EmailValidator) Validate(field model.Field) *Issue {
	if field.Value == "" {
		return &Issue{Kind: messages.KindEmailRequired}
	}
	if !v.valid(field.Value) {
		return &Issue{Kind: messages.KindInvalidEmail}
	}
	return nil
}

func (v EmailValidator) valid(value string) bool {
	if v.MaxLength > 0 && len(value) > v.MaxLength {
		return false
	}
	if strings.Count(value, "@") != 1 {
		return false
	}
	local, domain, _ := strings.Cut(value, "@")
	if local == "" || (v.LocalMaxLength > 0 && len(local) > v.LocalMaxLength) {
		return false
	}
	if !strings.Contains(domain, ".") || strings.HasPrefix(domain, ".") || strings.HasSuffix(domain, ".") {
		return false
	}
	addr, err := mail.ParseAddress(value)
	if err != nil {
		return false
	}
	return addr.Name == "" && addr.Address == value
}

// PasswordValidator requires a non-empty value of at least MinLength runes.
type PasswordValidator struct {
	MinLength int
}

func (v PasswordValidator) Validate(field model.Field) *Issue {
	if field.Value == "" {
		return &Issue{Kind: messages.KindPasswordRequired}
	}
	if utf8.RuneCountInString(field.Value) < v.MinLength {
		return &Issue{
			Kind:   messages.KindPasswordTooShort,
			Params: map[string]string{"min": strconv.Itoa(v.MinLength)},
		}
	}
	return nil
}

// GenericValidator enforces Required and then the field's constraint rules
// (minLength, maxLength, pattern). Empty optional fields skip the constraints,
// as browser constraint validation does. Whitespace is a value.
type GenericValidator struct {
	patterns sync.Map
}

func (v *GenericValidator) Validate(field model.Field) *Issue {
	if field.Value == "" {
		if field.Required {
			return &Issue{Kind: messages.KindRequired}
		}
		return nil
	}

	length := utf8.RuneCountInString(field.Value)
	for _, rule := range field.Validations {
		switch rule.Kind {
		case model.ValidationRuleMinLength:
			if limit, err := strconv.Atoi(rule.Params["value"]); err == nil && length < limit {
				return invalidValue(rule.Kind, rule.Params["value"])
			}
		case model.ValidationRuleMaxLength:
			if limit, err := strconv.Atoi(rule.Params["value"]); err == nil && length > limit {
				return invalidValue(rule.Kind, rule.Params["value"])
			}
		case model.ValidationRulePattern:
			re := v.pattern(rule.Params["pattern"])
			if re != nil && !re.MatchString(field.Value) {
				return invalidValue(rule.Kind, rule.Params["pattern"])
			}
		}
	}
	return nil
}

// pattern compiles expr anchored to the whole value, the way the HTML pattern
// attribute is applied. Invalid expressions are ignored.
func (v *GenericValidator) pattern(expr string) *regexp.Regexp {
	if expr == "" {
		return nil
	}
	if cached, ok := v.patterns.Load(expr); ok {
		re, _ := cached.(*regexp.Regexp)
		return re
	}
	re, err := regexp.Compile("^(?:" + expr + ")$")
	if err != nil {
		re = nil
	}
	v.patterns.Store(expr, re)
	return re
}

func invalidValue(rule, param string) *Issue {
	return &Issue{
		Kind:   messages.KindInvalidValue,
		Params: map[string]string{"rule": rule, rule: param},
	}
}
