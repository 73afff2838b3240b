package lifecycle

import (
	"github.com/goliatone/go-formlife/pkg/model"
)

// Engine applies the per-kind validators to a form in declaration order.
// Fields whose Group matches the excluded group are validated elsewhere and
// never affect the result.
type Engine struct {
	validators    *ValidatorRegistry
	excludedGroup string
}

// NewEngine builds an engine over validators. An empty excludedGroup keeps
// every field in scope.
func NewEngine(validators *ValidatorRegistry, excludedGroup string) *Engine {
	return &Engine{validators: validators, excludedGroup: excludedGroup}
}

// InScope reports whether field takes part in validation.
func (e *Engine) InScope(field model.Field) bool {
	return e.excludedGroup == "" || field.Group != e.excludedGroup
}

// Check validates a single field. Kinds without a registered validator fall
// back to the generic one; with neither, the field passes.
func (e *Engine) Check(field model.Field) *Issue {
	if e == nil || e.validators == nil {
		return nil
	}
	kind := field.EffectiveKind()
	validator, ok := e.validators.Get(kind)
	if !ok {
		validator, ok = e.validators.Get(model.FieldKindGeneric)
	}
	if !ok {
		return nil
	}
	return validator.Validate(field)
}

// FirstInvalid returns the index and issue of the first in-scope field that
// fails, or -1 and nil when all pass.
func (e *Engine) FirstInvalid(fields []model.Field) (int, *Issue) {
	for i, field := range fields {
		if !e.InScope(field) {
			continue
		}
		if issue := e.Check(field); issue != nil {
			return i, issue
		}
	}
	return -1, nil
}

// Valid reports whether every in-scope field passes.
func (e *Engine) Valid(fields []model.Field) bool {
	idx, _ := e.FirstInvalid(fields)
	return idx < 0
}
