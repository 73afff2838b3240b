package parser

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formlife/pkg/model"
	pkgopenapi "github.com/goliatone/go-formlife/pkg/openapi"
)

const signupDocument = `{
  "openapi": "3.0.3",
  "info": { "title": "Accounts", "version": "1.0.0" },
  "paths": {
    "/signup": {
      "post": {
        "operationId": "signup",
        "summary": "Create account",
        "requestBody": {
          "content": {
            "application/json": {
              "schema": {
                "allOf": [
                  { "$ref": "#/components/schemas/Credentials" },
                  {
                    "type": "object",
                    "required": ["displayName"],
                    "properties": {
                      "displayName": {
                        "type": "string",
                        "title": "Display name",
                        "minLength": 2,
                        "maxLength": 32,
                        "pattern": "[A-Za-z ]+",
                        "x-formlife": { "order": 3 }
                      },
                      "age": {
                        "type": "string",
                        "x-formlife": { "group": "age-gate" }
                      },
                      "tags": { "type": "array", "items": { "type": "string" } }
                    }
                  }
                ]
              }
            }
          }
        },
        "responses": { "201": { "description": "created" } }
      }
    },
    "/session": {
      "delete": {
        "responses": { "204": { "description": "signed out" } }
      },
      "put": {
        "requestBody": {
          "content": {
            "application/x-www-form-urlencoded": {
              "schema": {
                "type": "object",
                "properties": { "token": { "type": "string" } }
              }
            }
          }
        },
        "responses": { "200": { "description": "ok" } }
      }
    }
  },
  "components": {
    "schemas": {
      "Credentials": {
        "type": "object",
        "required": ["email", "password"],
        "properties": {
          "email": { "type": "string", "format": "email", "title": "Email", "x-formlife": { "order": 1 } },
          "password": { "type": "string", "format": "password", "x-formlife": { "order": 2 } },
          "passwordMirror": {
            "type": "string",
            "x-formlife": { "kind": "password", "noValue": true, "label": "Show password" }
          }
        }
      }
    }
  }
}`

func newDocument(t *testing.T) pkgopenapi.Document {
	t.Helper()
	return pkgopenapi.MustNewDocument(pkgopenapi.SourceFromFile("signup.json"), []byte(signupDocument))
}

func TestParserForm(t *testing.T) {
	p := New(pkgopenapi.NewParserOptions())

	form, err := p.Form(context.Background(), newDocument(t), "signup")
	if err != nil {
		t.Fatalf("form: %v", err)
	}

	want := model.Form{
		ID:    "signup",
		Title: "Create account",
		Fields: []model.Field{
			{Name: "email", Kind: model.FieldKindEmail, Label: "Email", Required: true},
			{Name: "password", Kind: model.FieldKindPassword, Required: true},
			{
				Name:     "displayName",
				Kind:     model.FieldKindGeneric,
				Label:    "Display name",
				Required: true,
				Validations: []model.ValidationRule{
					{Kind: model.ValidationRuleMinLength, Params: map[string]string{"value": "2"}},
					{Kind: model.ValidationRuleMaxLength, Params: map[string]string{"value": "32"}},
					{Kind: model.ValidationRulePattern, Params: map[string]string{"pattern": "[A-Za-z ]+"}},
				},
			},
			{Name: "age", Kind: model.FieldKindGeneric, Group: "age-gate"},
			{Name: "passwordMirror", Kind: model.FieldKindPassword, Label: "Show password", NoValue: true},
		},
	}
	if diff := cmp.Diff(want, form); diff != "" {
		t.Fatalf("form mismatch (-want +got):\n%s", diff)
	}
}

func TestParserOperations(t *testing.T) {
	p := New(pkgopenapi.NewParserOptions())

	ids, err := p.Operations(context.Background(), newDocument(t))
	if err != nil {
		t.Fatalf("operations: %v", err)
	}
	if diff := cmp.Diff([]string{"put:/session", "signup"}, ids); diff != "" {
		t.Fatalf("operations mismatch (-want +got):\n%s", diff)
	}

	form, err := p.Form(context.Background(), newDocument(t), "put:/session")
	if err != nil {
		t.Fatalf("form: %v", err)
	}
	if len(form.Fields) != 1 || form.Fields[0].Name != "token" {
		t.Fatalf("unexpected fields %+v", form.Fields)
	}
}

func TestParserErrors(t *testing.T) {
	p := New(pkgopenapi.NewParserOptions())
	ctx := context.Background()

	if _, err := p.Form(ctx, newDocument(t), "missing"); !errors.Is(err, pkgopenapi.ErrOperationNotFound) {
		t.Fatalf("expected ErrOperationNotFound, got %v", err)
	}
	if _, err := p.Form(ctx, newDocument(t), "delete:/session"); !errors.Is(err, pkgopenapi.ErrNoRequestBody) {
		t.Fatalf("expected ErrNoRequestBody, got %v", err)
	}

	broken := pkgopenapi.MustNewDocument(pkgopenapi.SourceFromFile("broken.json"), []byte(`{"openapi": `))
	if _, err := p.Form(ctx, broken, "signup"); err == nil {
		t.Fatalf("expected load error")
	}
}
