package openapi

import (
	"context"
	"errors"

	"github.com/goliatone/go-formlife/pkg/model"
)

// ExtensionKey is the schema extension read for form-specific hints:
//
//	x-formlife:
//	  kind: password     # overrides the kind derived from format
//	  noValue: true      # exclude from change tracking
//	  group: age-gate    # validation scope group
//	  order: 10          # declaration order (lower first)
//	  label: Repeat password
const ExtensionKey = "x-formlife"

var (
	// ErrOperationNotFound is returned when the document has no matching
	// operation.
	ErrOperationNotFound = errors.New("openapi: operation not found")
	// ErrNoRequestBody is returned for operations without an object request
	// body.
	ErrNoRequestBody = errors.New("openapi: operation has no object request body")
)

// Parser turns an OpenAPI request body into a lifecycle form.
type Parser interface {
	// Operations lists the operation IDs that carry a request body, sorted.
	Operations(ctx context.Context, doc Document) ([]string, error)
	// Form builds the form for one operation. Operations without an
	// operationId are addressed as "<method>:<path>", e.g. "post:/signup".
	Form(ctx context.Context, doc Document, operationID string) (model.Form, error)
}

// ParserOptions exposes parser toggles.
type ParserOptions struct {
	// ResolveReferences validates the document and allows external $refs.
	ResolveReferences bool
	// MediaTypes lists the request body media types tried in order.
	MediaTypes []string
}

// ParserOption mutates ParserOptions during construction.
type ParserOption func(*ParserOptions)

// WithReferenceResolution toggles eager reference resolution.
func WithReferenceResolution(enabled bool) ParserOption {
	return func(opts *ParserOptions) {
		opts.ResolveReferences = enabled
	}
}

// WithMediaTypes overrides the preferred request body media types.
func WithMediaTypes(mediaTypes ...string) ParserOption {
	return func(opts *ParserOptions) {
		if len(mediaTypes) > 0 {
			opts.MediaTypes = append([]string(nil), mediaTypes...)
		}
	}
}

// NewParserOptions applies ParserOption functions over the defaults.
func NewParserOptions(options ...ParserOption) ParserOptions {
	cfg := ParserOptions{
		ResolveReferences: true,
		MediaTypes:        []string{"application/json", "application/x-www-form-urlencoded", "multipart/form-data"},
	}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}
