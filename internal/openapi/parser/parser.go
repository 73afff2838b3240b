package parser

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formlife/pkg/model"
	pkgopenapi "github.com/goliatone/go-formlife/pkg/openapi"
)

// Parser implements pkgopenapi.Parser using kin-openapi.
type Parser struct {
	options pkgopenapi.ParserOptions
}

var _ pkgopenapi.Parser = (*Parser)(nil)

// New constructs a Parser with the given options.
func New(options pkgopenapi.ParserOptions) pkgopenapi.Parser {
	return &Parser{options: options}
}

type operation struct {
	id      string
	summary string
	body    *openapi3.RequestBodyRef
}

// Operations lists the operation IDs that carry a request body.
func (p *Parser) Operations(ctx context.Context, doc pkgopenapi.Document) ([]string, error) {
	ops, err := p.operations(ctx, doc)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(ops))
	for id, op := range ops {
		if op.body != nil {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// Form converts the request body of operationID into a model.Form.
func (p *Parser) Form(ctx context.Context, doc pkgopenapi.Document, operationID string) (model.Form, error) {
	ops, err := p.operations(ctx, doc)
	if err != nil {
		return model.Form{}, err
	}
	op, ok := ops[operationID]
	if !ok {
		return model.Form{}, fmt.Errorf("%w: %q", pkgopenapi.ErrOperationNotFound, operationID)
	}

	schema := p.requestSchema(op.body)
	if schema == nil || len(collectProperties(schema)) == 0 {
		return model.Form{}, fmt.Errorf("%w: %q", pkgopenapi.ErrNoRequestBody, operationID)
	}

	form := model.Form{ID: operationID, Title: op.summary}
	if form.Title == "" {
		form.Title = schema.Title
	}
	form.Fields = buildFields(schema)
	return form, nil
}

func (p *Parser) operations(ctx context.Context, doc pkgopenapi.Document) (map[string]operation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw := doc.Raw()
	if len(raw) == 0 {
		return nil, errors.New("openapi parser: document payload is empty")
	}

	loader := &openapi3.Loader{
		Context:               ctx,
		IsExternalRefsAllowed: p.options.ResolveReferences,
	}
	spec, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("openapi parser: load document: %w", err)
	}
	if p.options.ResolveReferences {
		if err := spec.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
			return nil, fmt.Errorf("openapi parser: validate: %w", err)
		}
	}

	ops := make(map[string]operation)
	if spec.Paths == nil {
		return ops, nil
	}
	for path, item := range spec.Paths.Map() {
		if item == nil {
			continue
		}
		collect(ops, "GET", path, item.Get)
		collect(ops, "PUT", path, item.Put)
		collect(ops, "POST", path, item.Post)
		collect(ops, "DELETE", path, item.Delete)
		collect(ops, "PATCH", path, item.Patch)
	}
	return ops, nil
}

func collect(target map[string]operation, method, path string, op *openapi3.Operation) {
	if op == nil {
		return
	}
	id := op.OperationID
	if id == "" {
		id = strings.ToLower(method) + ":" + path
	}
	target[id] = operation{id: id, summary: op.Summary, body: op.RequestBody}
}

func (p *Parser) requestSchema(body *openapi3.RequestBodyRef) *openapi3.Schema {
	if body == nil || body.Value == nil {
		return nil
	}
	content := body.Value.Content
	for _, mediaType := range p.options.MediaTypes {
		if mt, ok := content[mediaType]; ok && mt != nil && mt.Schema != nil {
			return mt.Schema.Value
		}
	}
	keys := make([]string, 0, len(content))
	for key := range content {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if mt := content[key]; mt != nil && mt.Schema != nil {
			return mt.Schema.Value
		}
	}
	return nil
}

// collectProperties flattens properties declared directly and through allOf.
func collectProperties(schema *openapi3.Schema) map[string]*openapi3.Schema {
	out := make(map[string]*openapi3.Schema)
	var walk func(s *openapi3.Schema, depth int)
	walk = func(s *openapi3.Schema, depth int) {
		if s == nil || depth > 8 {
			return
		}
		for _, ref := range s.AllOf {
			if ref != nil {
				walk(ref.Value, depth+1)
			}
		}
		for name, ref := range s.Properties {
			if ref != nil && ref.Value != nil {
				out[name] = ref.Value
			}
		}
	}
	walk(schema, 0)
	return out
}

func collectRequired(schema *openapi3.Schema) map[string]bool {
	out := make(map[string]bool)
	var walk func(s *openapi3.Schema, depth int)
	walk = func(s *openapi3.Schema, depth int) {
		if s == nil || depth > 8 {
			return
		}
		for _, name := range s.Required {
			out[name] = true
		}
		for _, ref := range s.AllOf {
			if ref != nil {
				walk(ref.Value, depth+1)
			}
		}
	}
	walk(schema, 0)
	return out
}

type orderedField struct {
	field   model.Field
	order   int
	ordered bool
}

func buildFields(schema *openapi3.Schema) []model.Field {
	properties := collectProperties(schema)
	required := collectRequired(schema)

	items := make([]orderedField, 0, len(properties))
	for name, prop := range properties {
		if !isScalar(prop) {
			continue
		}
		items = append(items, convertProperty(name, prop, required[name]))
	}

	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.ordered != b.ordered {
			return a.ordered
		}
		if a.ordered && a.order != b.order {
			return a.order < b.order
		}
		return a.field.Name < b.field.Name
	})

	fields := make([]model.Field, len(items))
	for i, item := range items {
		fields[i] = item.field
	}
	return fields
}

func isScalar(schema *openapi3.Schema) bool {
	switch firstSchemaType(schema.Type) {
	case "object", "array":
		return false
	default:
		return true
	}
}

func convertProperty(name string, prop *openapi3.Schema, required bool) orderedField {
	field := model.Field{
		Name:     name,
		Kind:     model.KindFromType(prop.Format),
		Label:    prop.Title,
		Required: required,
	}
	if value, ok := prop.Default.(string); ok {
		field.Value = value
	}
	if prop.Description != "" {
		field.Metadata = map[string]string{"description": prop.Description}
	}

	if prop.MinLength != 0 {
		field.Validations = append(field.Validations, model.ValidationRule{
			Kind:   model.ValidationRuleMinLength,
			Params: map[string]string{"value": strconv.FormatUint(prop.MinLength, 10)},
		})
	}
	if prop.MaxLength != nil {
		field.Validations = append(field.Validations, model.ValidationRule{
			Kind:   model.ValidationRuleMaxLength,
			Params: map[string]string{"value": strconv.FormatUint(*prop.MaxLength, 10)},
		})
	}
	if prop.Pattern != "" {
		field.Validations = append(field.Validations, model.ValidationRule{
			Kind:   model.ValidationRulePattern,
			Params: map[string]string{"pattern": prop.Pattern},
		})
	}

	out := orderedField{field: field}
	ext, ok := prop.Extensions[pkgopenapi.ExtensionKey].(map[string]any)
	if !ok {
		return out
	}
	if kind, ok := ext["kind"].(string); ok && kind != "" {
		out.field.Kind = model.KindFromType(kind)
	}
	if noValue, ok := ext["noValue"].(bool); ok {
		out.field.NoValue = noValue
	}
	if group, ok := ext["group"].(string); ok {
		out.field.Group = group
	}
	if label, ok := ext["label"].(string); ok && label != "" {
		out.field.Label = label
	}
	if order, ok := toInt(ext["order"]); ok {
		out.order = order
		out.ordered = true
	}
	return out
}

func toInt(value any) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		if v != math.Trunc(v) {
			return 0, false
		}
		return int(v), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		return n, err == nil
	default:
		return 0, false
	}
}

func firstSchemaType(types *openapi3.Types) string {
	if types == nil {
		return ""
	}
	values := types.Slice()
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
