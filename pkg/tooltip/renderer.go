package tooltip

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	theme "github.com/goliatone/go-theme"
	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-formlife/pkg/config"
	"github.com/goliatone/go-formlife/pkg/lifecycle"
	"github.com/goliatone/go-formlife/pkg/render/template"
	"github.com/goliatone/go-formlife/pkg/render/template/gotemplate"
)

const (
	DefaultTooltipTemplate = `<div class="{{ class }}" role="tooltip" data-form="{{ form }}" data-for="{{ field }}" data-kind="{{ kind }}" data-placement="{{ placement }}" data-fade-ms="{{ fade }}">{{ message|safe }}</div>`
	DefaultBannerTemplate  = `<div class="{{ class }}" role="alert" data-form="{{ form }}" data-kind="{{ kind }}" data-fade-ms="{{ fade }}">{{ message|safe }}</div>`

	TokenTooltipClass     = "tooltip.class"
	TokenTooltipPlacement = "tooltip.placement"
	TokenBannerClass      = "banner.class"
)

// ErrThemeSelection wraps failures returned by the theme selector.
var ErrThemeSelection = errors.New("tooltip: theme selection failed")

func defaultTokens() map[string]string {
	return map[string]string{
		TokenTooltipClass:     "tooltip tooltip-error",
		TokenTooltipPlacement: "bottom",
		TokenBannerClass:      "error-banner",
	}
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithTemplateRenderer overrides the template engine. Defaults to the pongo2
// engine without a filesystem.
func WithTemplateRenderer(engine template.TemplateRenderer) Option {
	return func(r *Renderer) {
		if engine != nil {
			r.engine = engine
		}
	}
}

// WithInlineTemplates replaces the inline tooltip and banner templates. Empty
// values keep the defaults.
func WithInlineTemplates(tooltip, banner string) Option {
	return func(r *Renderer) {
		if strings.TrimSpace(tooltip) != "" {
			r.tooltipTemplate = tooltip
		}
		if strings.TrimSpace(banner) != "" {
			r.bannerTemplate = banner
		}
	}
}

// WithNamedTemplate renders tooltips and banners through a named template of
// the configured engine instead of the inline templates. The template receives
// a "banner" flag.
func WithNamedTemplate(name string) Option {
	return func(r *Renderer) {
		r.namedTemplate = strings.TrimSpace(name)
	}
}

// WithThemeSelector resolves style tokens from a theme manifest. Variant
// tokens override manifest tokens.
func WithThemeSelector(selector theme.ThemeSelector, name, variant string) Option {
	return func(r *Renderer) {
		r.selector = selector
		r.themeName = name
		r.themeVariant = variant
	}
}

// WithTokens overrides individual style tokens after theme resolution.
func WithTokens(tokens map[string]string) Option {
	return func(r *Renderer) {
		for key, value := range tokens {
			if r.overrides == nil {
				r.overrides = make(map[string]string, len(tokens))
			}
			r.overrides[key] = value
		}
	}
}

// WithPolicy replaces the message sanitiser. Defaults to bluemonday's strict
// policy, which strips all markup.
func WithPolicy(policy *bluemonday.Policy) Option {
	return func(r *Renderer) {
		if policy != nil {
			r.policy = policy
		}
	}
}

// WithFade sets the show/hide animation duration handed to templates as
// "fade" (milliseconds). Negative values are ignored.
func WithFade(d time.Duration) Option {
	return func(r *Renderer) {
		if d >= 0 {
			r.fade = d
		}
	}
}

// WithSettings applies the tooltip section of the process settings. Template
// directories and theme files are read by FromSettings.
func WithSettings(settings config.Tooltip) Option {
	return func(r *Renderer) {
		if settings.Template != "" {
			r.namedTemplate = settings.Template
		}
		if settings.Theme != "" {
			r.themeName = settings.Theme
		}
		if settings.Variant != "" {
			r.themeVariant = settings.Variant
		}
	}
}

// Renderer turns lifecycle tooltip views into markup. It satisfies
// lifecycle.TooltipRenderer.
type Renderer struct {
	engine          template.TemplateRenderer
	policy          *bluemonday.Policy
	tooltipTemplate string
	bannerTemplate  string
	namedTemplate   string
	fade            time.Duration

	selector     theme.ThemeSelector
	themeName    string
	themeVariant string
	overrides    map[string]string
	tokens       map[string]string
}

var _ lifecycle.TooltipRenderer = (*Renderer)(nil)

// New builds a renderer. Theme tokens are resolved once here.
func New(opts ...Option) (*Renderer, error) {
	r := &Renderer{
		policy:          bluemonday.StrictPolicy(),
		tooltipTemplate: DefaultTooltipTemplate,
		bannerTemplate:  DefaultBannerTemplate,
		fade:            config.DefaultTooltipFade,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	if r.engine == nil {
		engine, err := gotemplate.New()
		if err != nil {
			return nil, fmt.Errorf("tooltip: template engine: %w", err)
		}
		r.engine = engine
	}

	tokens, err := r.resolveTokens()
	if err != nil {
		return nil, err
	}
	r.tokens = tokens
	return r, nil
}

// FromSettings builds a renderer from the process settings: templates are
// loaded from Tooltip.TemplateDir, theme manifests from Tooltip.Themes and the
// fade from Timing.TooltipFade. Extra options are applied last.
func FromSettings(settings config.Settings, opts ...Option) (*Renderer, error) {
	base := []Option{
		WithSettings(settings.Tooltip),
		WithFade(settings.Timing.TooltipFade),
	}
	if dir := settings.Tooltip.TemplateDir; dir != "" {
		info, err := os.Stat(dir)
		if err != nil {
			return nil, fmt.Errorf("tooltip: template dir: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("tooltip: template dir %s is not a directory", dir)
		}
		engine, err := gotemplate.New(gotemplate.WithFS(os.DirFS(dir)))
		if err != nil {
			return nil, fmt.Errorf("tooltip: template engine: %w", err)
		}
		base = append(base, WithTemplateRenderer(engine))
	}
	if path := settings.Tooltip.Themes; path != "" {
		selector, err := LoadThemesFile(path)
		if err != nil {
			return nil, err
		}
		base = append(base, WithThemeSelector(selector, settings.Tooltip.Theme, settings.Tooltip.Variant))
	}
	return New(append(base, opts...)...)
}

// Tokens returns a copy of the resolved style tokens.
func (r *Renderer) Tokens() map[string]string {
	out := make(map[string]string, len(r.tokens))
	for k, v := range r.tokens {
		out[k] = v
	}
	return out
}

func (r *Renderer) resolveTokens() (map[string]string, error) {
	tokens := defaultTokens()
	if r.selector != nil {
		selection, err := r.selector.Select(r.themeName, r.themeVariant)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrThemeSelection, err)
		}
		if selection != nil && selection.Manifest != nil {
			for k, v := range selection.Manifest.Tokens {
				tokens[k] = v
			}
			if variant, ok := selection.Manifest.Variants[selection.Variant]; ok {
				for k, v := range variant.Tokens {
					tokens[k] = v
				}
			}
		}
	}
	for k, v := range r.overrides {
		tokens[k] = v
	}
	return tokens, nil
}

// RenderTooltip renders view as a field tooltip or, when view.Banner is set,
// as the form-level banner.
func (r *Renderer) RenderTooltip(ctx context.Context, view lifecycle.TooltipView) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data := map[string]any{
		"form":      view.FormID,
		"field":     view.Field,
		"label":     view.Label,
		"kind":      string(view.Kind),
		"message":   r.policy.Sanitize(view.Message),
		"banner":    view.Banner,
		"fade":      r.fade.Milliseconds(),
		"placement": r.tokens[TokenTooltipPlacement],
		"class":     r.tokens[TokenTooltipClass],
		"tokens":    r.Tokens(),
	}
	if view.Banner {
		data["class"] = r.tokens[TokenBannerClass]
	}

	var (
		out string
		err error
	)
	switch {
	case r.namedTemplate != "":
		out, err = r.engine.RenderTemplate(r.namedTemplate, data)
	case view.Banner:
		out, err = r.engine.RenderString(r.bannerTemplate, data)
	default:
		out, err = r.engine.RenderString(r.tooltipTemplate, data)
	}
	if err != nil {
		return "", fmt.Errorf("tooltip: render %q: %w", view.Field, err)
	}
	return strings.TrimSpace(out), nil
}
