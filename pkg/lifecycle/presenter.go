package lifecycle

import (
	"context"
	"log/slog"
	"sync"

	"github.com/goliatone/go-formlife/pkg/messages"
)

// TooltipView is the data handed to a TooltipRenderer. Banner is set for the
// form-level error banner, which has no anchor field.
type TooltipView struct {
	FormID  string
	Field   string
	Label   string
	Message string
	Kind    messages.Kind
	Banner  bool
}

// TooltipRenderer produces the markup for a tooltip or banner.
type TooltipRenderer interface {
	RenderTooltip(ctx context.Context, view TooltipView) (string, error)
}

// TooltipState tracks a tooltip through created → rendered → destroyed.
type TooltipState int

const (
	TooltipCreated TooltipState = iota
	TooltipRendered
	TooltipDestroyed
)

func (s TooltipState) String() string {
	switch s {
	case TooltipCreated:
		return "created"
	case TooltipRendered:
		return "rendered"
	case TooltipDestroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

// Tooltip is a read-only copy of a displayed error.
type Tooltip struct {
	View   TooltipView
	Markup string
	State  TooltipState
}

type tooltip struct {
	view   TooltipView
	markup string
	state  TooltipState
}

func (t *tooltip) copy() Tooltip {
	return Tooltip{View: t.view, Markup: t.markup, State: t.state}
}

// Presenter owns the visible errors of one form: at most one field tooltip and
// at most one form-level banner. Renderers run without any presenter lock
// held. Tooltip signals are emitted under emitMu so a tooltip replaced while
// it was rendering never reports itself after its successor; subscribers must
// not call back into the presenter.
type Presenter struct {
	mu       sync.Mutex
	emitMu   sync.Mutex
	formID   string
	bus      *Bus
	renderer TooltipRenderer
	logger   *slog.Logger

	tooltip *tooltip
	banner  *tooltip
	invalid map[string]bool
}

// NewPresenter builds a presenter emitting on bus. A nil renderer uses the
// plain message as markup.
func NewPresenter(formID string, bus *Bus, renderer TooltipRenderer, logger *slog.Logger) *Presenter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Presenter{
		formID:   formID,
		bus:      bus,
		renderer: renderer,
		logger:   logger,
		invalid:  make(map[string]bool),
	}
}

// ShowTooltip destroys any visible tooltip, marks view.Field invalid and
// renders a new tooltip for it.
func (p *Presenter) ShowTooltip(ctx context.Context, view TooltipView) Tooltip {
	view.FormID = p.formID
	view.Banner = false

	tip := &tooltip{view: view, state: TooltipCreated}
	p.emitMu.Lock()
	p.mu.Lock()
	prev := p.detachTooltipLocked()
	p.tooltip = tip
	p.invalid[view.Field] = true
	p.mu.Unlock()
	p.emitRemoved(prev)
	p.emitMu.Unlock()

	markup := p.render(ctx, view)

	p.emitMu.Lock()
	defer p.emitMu.Unlock()

	p.mu.Lock()
	if tip.state == TooltipCreated {
		tip.markup = markup
		tip.state = TooltipRendered
	}
	out := tip.copy()
	p.mu.Unlock()

	if out.State == TooltipDestroyed {
		return out
	}
	p.bus.Emit(Signal{
		Name:    SignalValidationError,
		FormID:  p.formID,
		Field:   view.Field,
		Message: view.Message,
		Kind:    view.Kind,
	})
	return out
}

// DestroyTooltip removes the visible tooltip, if any. It reports whether a
// tooltip was destroyed.
func (p *Presenter) DestroyTooltip() bool {
	p.emitMu.Lock()
	defer p.emitMu.Unlock()

	p.mu.Lock()
	tip := p.detachTooltipLocked()
	p.mu.Unlock()
	p.emitRemoved(tip)
	return tip != nil
}

// DestroyTooltipFor removes the tooltip only when it is anchored to field.
func (p *Presenter) DestroyTooltipFor(field string) bool {
	p.emitMu.Lock()
	defer p.emitMu.Unlock()

	p.mu.Lock()
	var tip *tooltip
	if p.tooltip != nil && p.tooltip.view.Field == field {
		tip = p.detachTooltipLocked()
	}
	p.mu.Unlock()
	p.emitRemoved(tip)
	return tip != nil
}

func (p *Presenter) detachTooltipLocked() *tooltip {
	tip := p.tooltip
	if tip == nil {
		return nil
	}
	p.tooltip = nil
	tip.state = TooltipDestroyed
	delete(p.invalid, tip.view.Field)
	return tip
}

func (p *Presenter) emitRemoved(tip *tooltip) {
	if tip == nil {
		return
	}
	p.bus.Emit(Signal{
		Name:   SignalValidationErrorRemoved,
		FormID: p.formID,
		Field:  tip.view.Field,
		Kind:   tip.view.Kind,
	})
}

// DisplayError shows message in the form-level banner, replacing any banner
// already visible.
func (p *Presenter) DisplayError(ctx context.Context, kind messages.Kind, message string) Tooltip {
	view := TooltipView{FormID: p.formID, Message: message, Kind: kind, Banner: true}
	banner := &tooltip{view: view, state: TooltipCreated}
	banner.markup = p.render(ctx, view)
	banner.state = TooltipRendered

	p.mu.Lock()
	p.banner = banner
	out := banner.copy()
	p.mu.Unlock()

	p.bus.Emit(Signal{Name: SignalErrorShown, FormID: p.formID, Message: message, Kind: kind})
	return out
}

// HideError removes the banner, if any.
func (p *Presenter) HideError() bool {
	p.mu.Lock()
	banner := p.banner
	p.banner = nil
	p.mu.Unlock()
	if banner == nil {
		return false
	}
	p.bus.Emit(Signal{Name: SignalErrorHidden, FormID: p.formID, Kind: banner.view.Kind})
	return true
}

// Tooltip returns the visible tooltip.
func (p *Presenter) Tooltip() (Tooltip, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.tooltip == nil {
		return Tooltip{}, false
	}
	return p.tooltip.copy(), true
}

// Banner returns the visible banner.
func (p *Presenter) Banner() (Tooltip, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.banner == nil {
		return Tooltip{}, false
	}
	return p.banner.copy(), true
}

// IsInvalid reports whether field is currently marked invalid.
func (p *Presenter) IsInvalid(field string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.invalid[field]
}

// IsErrorVisible reports whether a tooltip or banner is showing.
func (p *Presenter) IsErrorVisible() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tooltip != nil || p.banner != nil
}

func (p *Presenter) render(ctx context.Context, view TooltipView) string {
	if p.renderer == nil {
		return view.Message
	}
	markup, err := p.renderer.RenderTooltip(ctx, view)
	if err != nil {
		p.logger.Warn("tooltip render failed",
			slog.String("field", view.Field),
			slog.Bool("banner", view.Banner),
			slog.Any("error", err),
		)
		return view.Message
	}
	return markup
}
