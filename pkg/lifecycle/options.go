package lifecycle

import (
	"log/slog"

	"github.com/goliatone/go-formlife/pkg/config"
	"github.com/goliatone/go-formlife/pkg/messages"
)

// Option customises a Controller.
type Option func(*options)

type options struct {
	settings     *config.Settings
	translator   messages.Translator
	locale       string
	onMissing    messages.MissingTranslationHandler
	renderer     TooltipRenderer
	validators   *ValidatorRegistry
	logger       *slog.Logger
	capabilities []Capability
}

// WithSettings supplies the process-wide settings. Defaults to config.Default.
func WithSettings(settings config.Settings) Option {
	return func(o *options) {
		o.settings = &settings
	}
}

// WithTranslator overrides the message lookup service. Defaults to the
// embedded messages.Catalog.
func WithTranslator(t messages.Translator) Option {
	return func(o *options) {
		if t != nil {
			o.translator = t
		}
	}
}

// WithLocale overrides the locale used for message lookup.
func WithLocale(locale string) Option {
	return func(o *options) {
		o.locale = locale
	}
}

// WithMissingTranslation installs a handler for kinds the translator cannot
// resolve.
func WithMissingTranslation(handler messages.MissingTranslationHandler) Option {
	return func(o *options) {
		o.onMissing = handler
	}
}

// WithTooltipRenderer sets the markup renderer for tooltips and the banner.
func WithTooltipRenderer(r TooltipRenderer) Option {
	return func(o *options) {
		o.renderer = r
	}
}

// WithValidators replaces the validator registry built from settings.
func WithValidators(reg *ValidatorRegistry) Option {
	return func(o *options) {
		if reg != nil {
			o.validators = reg
		}
	}
}

// WithLogger sets the structured logger. Defaults to a discarding logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithCapabilities attaches capabilities when the controller is built. They
// are detached by Close.
func WithCapabilities(caps ...Capability) Option {
	return func(o *options) {
		for _, c := range caps {
			if c != nil {
				o.capabilities = append(o.capabilities, c)
			}
		}
	}
}
