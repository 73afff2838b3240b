package lifecycle

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formlife/pkg/config"
	"github.com/goliatone/go-formlife/pkg/messages"
	"github.com/goliatone/go-formlife/pkg/model"
)

func TestBuiltInValidators(t *testing.T) {
	reg := NewValidatorRegistry(config.Default())
	engine := NewEngine(reg, "")

	tests := []struct {
		name  string
		field model.Field
		want  *Issue
	}{
		{"email empty", model.Field{Kind: model.FieldKindEmail}, &Issue{Kind: messages.KindEmailRequired}},
		{"email malformed", model.Field{Kind: model.FieldKindEmail, Value: "not-an-email"}, &Issue{Kind: messages.KindInvalidEmail}},
		{"email no domain dot", model.Field{Kind: model.FieldKindEmail, Value: "a@b"}, &Issue{Kind: messages.KindInvalidEmail}},
		{"email display name", model.Field{Kind: model.FieldKindEmail, Value: "Ada <a@b.com>"}, &Issue{Kind: messages.KindInvalidEmail}},
		{"email two ats", model.Field{Kind: model.FieldKindEmail, Value: "a@b@c.com"}, &Issue{Kind: messages.KindInvalidEmail}},
		{"email local too long", model.Field{Kind: model.FieldKindEmail, Value: strings.Repeat("a", 65) + "@b.com"}, &Issue{Kind: messages.KindInvalidEmail}},
		{"email valid", model.Field{Kind: model.FieldKindEmail, Value: "a@b.com"}, nil},
		{"password empty", model.Field{Kind: model.FieldKindPassword}, &Issue{Kind: messages.KindPasswordRequired}},
		{"password short", model.Field{Kind: model.FieldKindPassword, Value: "abc"}, &Issue{Kind: messages.KindPasswordTooShort, Params: map[string]string{"min": "8"}}},
		{"password ok", model.Field{Kind: model.FieldKindPassword, Value: "abcdefgh"}, nil},
		{"generic required empty", model.Field{Required: true, Value: ""}, &Issue{Kind: messages.KindRequired}},
		{"generic required whitespace", model.Field{Required: true, Value: "  "}, nil},
		{"generic optional empty", model.Field{}, nil},
		{"generic unknown kind", model.Field{Kind: "tel", Required: true}, &Issue{Kind: messages.KindRequired}},
		{
			"generic pattern mismatch",
			model.Field{Value: "12a", Validations: []model.ValidationRule{{Kind: model.ValidationRulePattern, Params: map[string]string{"pattern": "[0-9]+"}}}},
			&Issue{Kind: messages.KindInvalidValue, Params: map[string]string{"rule": "pattern", "pattern": "[0-9]+"}},
		},
		{
			"generic pattern match",
			model.Field{Value: "123", Validations: []model.ValidationRule{{Kind: model.ValidationRulePattern, Params: map[string]string{"pattern": "[0-9]+"}}}},
			nil,
		},
		{
			"generic min length",
			model.Field{Value: "ab", Validations: []model.ValidationRule{{Kind: model.ValidationRuleMinLength, Params: map[string]string{"value": "3"}}}},
			&Issue{Kind: messages.KindInvalidValue, Params: map[string]string{"rule": "minLength", "minLength": "3"}},
		},
		{
			"generic max length",
			model.Field{Value: "abcd", Validations: []model.ValidationRule{{Kind: model.ValidationRuleMaxLength, Params: map[string]string{"value": "3"}}}},
			&Issue{Kind: messages.KindInvalidValue, Params: map[string]string{"rule": "maxLength", "maxLength": "3"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := engine.Check(tt.field)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("issue mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPasswordMinLengthFromSettings(t *testing.T) {
	settings := config.Default()
	settings.Password.MinLength = 4
	reg := NewValidatorRegistry(settings)

	v, ok := reg.Get(model.FieldKindPassword)
	if !ok {
		t.Fatalf("password validator not registered")
	}
	if issue := v.Validate(model.Field{Kind: model.FieldKindPassword, Value: "abcd"}); issue != nil {
		t.Fatalf("expected 4 characters to pass, got %+v", issue)
	}
}

func TestValidatorRegistryDuplicates(t *testing.T) {
	reg := NewValidatorRegistry(config.Default())
	custom := ValidatorFunc(func(model.Field) *Issue { return &Issue{Kind: messages.KindInvalidValue} })

	err := reg.Register(model.FieldKindEmail, custom)
	if !errors.Is(err, ErrValidatorExists) {
		t.Fatalf("expected ErrValidatorExists, got %v", err)
	}

	reg.Replace(model.FieldKindEmail, custom)
	engine := NewEngine(reg, "")
	if issue := engine.Check(model.Field{Kind: model.FieldKindEmail, Value: "a@b.com"}); issue == nil || issue.Kind != messages.KindInvalidValue {
		t.Fatalf("expected replaced validator to run, got %+v", issue)
	}
}

func TestEngineSkipsExcludedGroup(t *testing.T) {
	engine := NewEngine(NewValidatorRegistry(config.Default()), "age-gate")
	fields := []model.Field{
		{Name: "age", Required: true, Group: "age-gate"},
		{Name: "email", Kind: model.FieldKindEmail, Value: "a@b.com"},
	}
	if !engine.Valid(fields) {
		t.Fatalf("excluded field must not affect validity")
	}

	fields = append(fields, model.Field{Name: "name", Required: true})
	idx, issue := engine.FirstInvalid(fields)
	if idx != 2 || issue == nil || issue.Kind != messages.KindRequired {
		t.Fatalf("expected name field to fail, got %d %+v", idx, issue)
	}
}
