package formlife

import (
	"context"
	"fmt"
	"os"

	"github.com/goliatone/go-formlife/pkg/config"
	"github.com/goliatone/go-formlife/pkg/lifecycle"
	"github.com/goliatone/go-formlife/pkg/messages"
	"github.com/goliatone/go-formlife/pkg/model"
	pkgopenapi "github.com/goliatone/go-formlife/pkg/openapi"
	"github.com/goliatone/go-formlife/pkg/terminal"
	"github.com/goliatone/go-formlife/pkg/tooltip"
)

// NewController builds a lifecycle controller wired from settings: message
// catalog (embedded defaults plus Settings.Messages when set), tooltip
// renderer (template dir, themes file, fade) and validator limits. Extra
// options are applied last.
func NewController(form model.Form, hooks lifecycle.Hooks, settings config.Settings, opts ...lifecycle.Option) (*lifecycle.Controller, error) {
	catalog, err := NewCatalog(settings)
	if err != nil {
		return nil, err
	}
	renderer, err := tooltip.FromSettings(settings)
	if err != nil {
		return nil, fmt.Errorf("formlife: tooltip renderer: %w", err)
	}

	base := []lifecycle.Option{
		lifecycle.WithSettings(settings),
		lifecycle.WithTranslator(catalog),
		lifecycle.WithTooltipRenderer(renderer),
	}
	return lifecycle.New(form, hooks, append(base, opts...)...)
}

// NewCatalog returns the embedded catalog extended with the YAML file named by
// settings.Messages.
func NewCatalog(settings config.Settings) (*messages.Catalog, error) {
	catalog := messages.NewCatalog(messages.WithFallbackLocale(config.DefaultLocale))
	if settings.Messages == "" {
		return catalog, nil
	}
	data, err := os.ReadFile(settings.Messages)
	if err != nil {
		return nil, fmt.Errorf("formlife: read messages: %w", err)
	}
	if err := catalog.LoadYAML(data); err != nil {
		return nil, fmt.Errorf("formlife: load messages: %w", err)
	}
	return catalog, nil
}

// LoadForm loads an OpenAPI document and derives the form for operationID.
func LoadForm(ctx context.Context, src pkgopenapi.Source, operationID string, loaderOpts ...pkgopenapi.LoaderOption) (model.Form, error) {
	doc, err := NewLoader(loaderOpts...).Load(ctx, src)
	if err != nil {
		return model.Form{}, err
	}
	return NewParser().Form(ctx, doc, operationID)
}

// NewSession binds a terminal session to ctrl.
func NewSession(ctrl *lifecycle.Controller, opts ...terminal.Option) (*terminal.Session, error) {
	return terminal.NewSession(ctrl, opts...)
}
