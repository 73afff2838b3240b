package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/goliatone/go-formlife/pkg/config"
	"github.com/goliatone/go-formlife/pkg/messages"
	"github.com/goliatone/go-formlife/pkg/model"
)

// State is the submission state of a controller.
type State int

const (
	StateIdle State = iota
	StateSubmitting
	StateHalted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSubmitting:
		return "submitting"
	case StateHalted:
		return "halted"
	default:
		return "unknown"
	}
}

// Controller runs the validation, submission and error display lifecycle of
// one form instance. It is created per screen and discarded with it.
//
// The controller lock is never held while hooks, renderers or subscribers
// run, so hooks may call back into the controller freely.
type Controller struct {
	id         string
	settings   config.Settings
	hooks      Hooks
	engine     *Engine
	validators *ValidatorRegistry
	translator messages.Translator
	locale     string
	onMissing  messages.MissingTranslationHandler
	presenter  *Presenter
	bus        *Bus
	tracker    *Tracker
	logger     *slog.Logger

	mu       sync.Mutex
	form     model.Form
	state    State
	enabled  bool
	inFlight bool
	closed   bool
	detach   []func()
}

// New builds a controller bound to a copy of form. hooks.Submit is required.
func New(form model.Form, hooks Hooks, opts ...Option) (*Controller, error) {
	if hooks.Submit == nil {
		return nil, ErrSubmitRequired
	}

	o := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	settings := config.Default()
	if o.settings != nil {
		settings = *o.settings
	}
	if o.translator == nil {
		o.translator = messages.NewCatalog()
	}
	if o.locale == "" {
		o.locale = settings.Locale
	}
	if o.validators == nil {
		o.validators = NewValidatorRegistry(settings)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}

	id := uuid.NewString()
	logger := o.logger.With(slog.String("form_id", id), slog.String("form", form.ID))
	bus := NewBus()

	c := &Controller{
		id:         id,
		settings:   settings,
		hooks:      hooks.withDefaults(),
		engine:     NewEngine(o.validators, settings.ExcludedGroup),
		validators: o.validators,
		translator: o.translator,
		locale:     o.locale,
		onMissing:  o.onMissing,
		presenter:  NewPresenter(id, bus, o.renderer, logger),
		bus:        bus,
		logger:     logger,
		form:       form.Clone(),
		state:      StateIdle,
		enabled:    true,
	}
	c.tracker = NewTracker(c.Snapshot)

	for _, capability := range o.capabilities {
		if detach := capability.Attach(c); detach != nil {
			c.detach = append(c.detach, detach)
		}
	}
	return c, nil
}

// ID returns the instance identifier used in logs and signals.
func (c *Controller) ID() string { return c.id }

// Settings returns the settings the controller was built with.
func (c *Controller) Settings() config.Settings { return c.settings }

// Presenter exposes the error presentation state.
func (c *Controller) Presenter() *Presenter { return c.presenter }

// Subscribe registers fn for every signal this controller emits.
func (c *Controller) Subscribe(fn func(Signal)) func() {
	return c.bus.Subscribe(fn)
}

// State returns the submission state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Enabled reports whether the form accepts submission.
func (c *Controller) Enabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enabled
}

// ErrorVisible reports whether a tooltip or the banner is showing.
func (c *Controller) ErrorVisible() bool {
	return c.presenter.IsErrorVisible()
}

// Form returns a copy of the bound form with current values.
func (c *Controller) Form() model.Form {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form.Clone()
}

// Value returns the current value of the named field.
func (c *Controller) Value(name string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	idx := c.form.FieldIndex(name)
	if idx < 0 {
		return "", false
	}
	return c.form.Fields[idx].Value, true
}

// Snapshot captures the tracked field values.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return TakeSnapshot(c.form.Fields)
}

// Tracker exposes the change tracker.
func (c *Controller) Tracker() *Tracker { return c.tracker }

func (c *Controller) fields() []model.Field {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form.Clone().Fields
}

// IsValid runs the start hook, the field walk and the end hook. It never
// displays anything.
func (c *Controller) IsValid() bool {
	if c.hooks.IsValidStart != nil && !c.hooks.IsValidStart(c) {
		return false
	}
	if !c.engine.Valid(c.fields()) {
		return false
	}
	if c.hooks.IsValidEnd != nil && !c.hooks.IsValidEnd(c) {
		return false
	}
	return true
}

// SetValue updates a field value without running any reactive logic.
func (c *Controller) SetValue(name, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	idx := c.form.FieldIndex(name)
	if idx < 0 {
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	c.form.Fields[idx].Value = value
	return nil
}

// HandleInput reacts to an input event. The tracker decides whether values
// actually changed; only then are visible errors dismissed and enablement
// recomputed. It reports whether a change was handled. A done ctx drops the
// event and leaves the change pending for the next one.
func (c *Controller) HandleInput(ctx context.Context) bool {
	if ctx.Err() != nil {
		return false
	}
	if _, changed := c.tracker.DetectChange(); !changed {
		return false
	}
	c.tracker.AcceptChange()
	c.presenter.DestroyTooltip()
	c.presenter.HideError()

	c.mu.Lock()
	idle := c.state == StateIdle && !c.closed
	c.mu.Unlock()
	if !idle {
		return true
	}
	if c.IsValid() {
		c.EnableForm()
	} else {
		c.DisableForm()
	}
	c.logger.Debug("input handled", slog.Bool("enabled", c.Enabled()))
	return true
}

// Input sets a value and handles the resulting input event.
func (c *Controller) Input(ctx context.Context, name, value string) error {
	if err := c.SetValue(name, value); err != nil {
		return err
	}
	c.HandleInput(ctx)
	return nil
}

// Blur dismisses a tooltip anchored to the named field.
func (c *Controller) Blur(name string) {
	c.presenter.DestroyTooltipFor(name)
}

// Start seeds the tracker baseline and the initial enablement. Call it once
// the form has been bound.
func (c *Controller) Start(ctx context.Context) {
	c.HandleInput(ctx)
}

// EnableForm enables submission. It has no effect once halted or closed.
func (c *Controller) EnableForm() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateHalted || c.closed {
		return
	}
	c.enabled = true
}

// DisableForm disables submission.
func (c *Controller) DisableForm() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.enabled = false
}

// Halt moves the controller into its terminal state.
func (c *Controller) Halt() {
	c.mu.Lock()
	if c.state == StateHalted {
		c.mu.Unlock()
		return
	}
	c.state = StateHalted
	c.enabled = false
	c.mu.Unlock()

	c.logger.Debug("form halted")
	c.bus.Emit(Signal{Name: SignalHalted, FormID: c.id})
}

// ShowValidationErrors displays the first invalid in-scope field and returns
// its *ValidationError. When a hook takes over the display, the returned error
// carries whatever the hook left visible. It returns nil when nothing is shown.
func (c *Controller) ShowValidationErrors(ctx context.Context) error {
	if c.hooks.ShowValidationErrorsStart != nil && c.hooks.ShowValidationErrorsStart(c) {
		return c.visibleError()
	}
	fields := c.fields()
	idx, issue := c.engine.FirstInvalid(fields)
	if idx < 0 {
		if c.hooks.ShowValidationErrorsEnd != nil && c.hooks.ShowValidationErrorsEnd(c) {
			return c.visibleError()
		}
		return nil
	}
	return c.display(ctx, fields[idx], issue)
}

// visibleError rebuilds the displayed error from the presenter. The field
// tooltip wins over the banner.
func (c *Controller) visibleError() error {
	if tip, ok := c.presenter.Tooltip(); ok {
		return &ValidationError{Kind: tip.View.Kind, Field: tip.View.Field, Message: tip.View.Message}
	}
	if banner, ok := c.presenter.Banner(); ok {
		return &ValidationError{Kind: banner.View.Kind, Message: banner.View.Message}
	}
	return nil
}

// ShowValidationError displays kind on the named field.
func (c *Controller) ShowValidationError(ctx context.Context, name string, kind messages.Kind, params map[string]string) error {
	field, err := c.field(name)
	if err != nil {
		return err
	}
	return c.display(ctx, field, &Issue{Kind: kind, Params: params})
}

// ShowPasswordValidationError applies the password rule to the named field
// and displays its error. It returns nil when the password is acceptable.
func (c *Controller) ShowPasswordValidationError(ctx context.Context, name string) error {
	field, err := c.field(name)
	if err != nil {
		return err
	}
	validator, ok := c.validators.Get(model.FieldKindPassword)
	if !ok {
		validator = PasswordValidator{MinLength: c.settings.Password.MinLength}
	}
	issue := validator.Validate(field)
	if issue == nil {
		return nil
	}
	return c.display(ctx, field, issue)
}

func (c *Controller) field(name string) (model.Field, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	idx := c.form.FieldIndex(name)
	if idx < 0 {
		return model.Field{}, fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	return c.form.Fields[idx], nil
}

func (c *Controller) display(ctx context.Context, field model.Field, issue *Issue) *ValidationError {
	message := c.message(field, issue)
	c.presenter.ShowTooltip(ctx, TooltipView{
		Field:   field.Name,
		Label:   field.DisplayLabel(),
		Message: message,
		Kind:    issue.Kind,
	})
	c.logger.Debug("validation error shown",
		slog.String("field", field.Name),
		slog.String("kind", string(issue.Kind)),
	)
	return &ValidationError{Kind: issue.Kind, Field: field.Name, Message: message}
}

func (c *Controller) message(field model.Field, issue *Issue) string {
	params := map[string]string{
		"field": field.Name,
		"label": field.DisplayLabel(),
	}
	for k, v := range issue.Params {
		params[k] = v
	}
	return messages.Resolve(c.translator, c.locale, issue.Kind, params, c.onMissing)
}

// DisplayError shows err in the form-level banner. Errors belonging to a known
// field are shown as a tooltip on that field instead.
func (c *Controller) DisplayError(ctx context.Context, err error) {
	if err == nil {
		return
	}
	var fieldErr FieldError
	if errors.As(err, &fieldErr) {
		if field, lookupErr := c.field(fieldErr.FieldName()); lookupErr == nil {
			kind := messages.KindInvalidValue
			var vErr *ValidationError
			if errors.As(err, &vErr) && vErr.Kind != "" {
				kind = vErr.Kind
			}
			c.presenter.ShowTooltip(ctx, TooltipView{
				Field:   field.Name,
				Label:   field.DisplayLabel(),
				Message: fieldErr.Error(),
				Kind:    kind,
			})
			return
		}
	}

	message := strings.TrimSpace(err.Error())
	if message == "" {
		message = messages.Resolve(c.translator, c.locale, messages.KindUnexpected, nil, c.onMissing)
	}
	c.presenter.DisplayError(ctx, messages.KindUnexpected, message)
}

// HideErrors dismisses the tooltip and the banner.
func (c *Controller) HideErrors() {
	c.presenter.DestroyTooltip()
	c.presenter.HideError()
}

// ValidateAndSubmit is the submission entry point. A call made while another
// is in flight returns immediately without effect. Validation runs before the
// enablement check, so an invalid disabled form still displays its error.
func (c *Controller) ValidateAndSubmit(ctx context.Context) (Result, error) {
	c.mu.Lock()
	switch {
	case c.closed:
		c.mu.Unlock()
		return Result{}, ErrClosed
	case c.inFlight:
		c.mu.Unlock()
		c.logger.Debug("submission already in flight")
		return Result{}, nil
	case c.state == StateHalted:
		c.mu.Unlock()
		return Result{}, nil
	}
	c.inFlight = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.inFlight = false
		c.mu.Unlock()
	}()

	if !c.IsValid() {
		if err := c.ShowValidationErrors(ctx); err != nil {
			return Result{}, err
		}
		return Result{}, ErrFormInvalid
	}
	if !c.Enabled() {
		return Result{}, nil
	}
	return c.submitForm(ctx)
}

func (c *Controller) submitForm(ctx context.Context) (result Result, err error) {
	c.mu.Lock()
	c.state = StateSubmitting
	c.enabled = false
	c.mu.Unlock()

	c.logger.Debug("submission started")
	c.bus.Emit(Signal{Name: SignalSubmitStart, FormID: c.id})
	defer func() {
		c.mu.Lock()
		if c.state == StateSubmitting {
			c.state = StateIdle
		}
		c.mu.Unlock()
		c.bus.Emit(Signal{Name: SignalSubmitEnd, FormID: c.id})
	}()

	proceed, err := c.runBeforeSubmit(ctx)
	if err != nil {
		return Result{}, c.fail(ctx, StageBeforeSubmit, err)
	}
	if proceed {
		if err := ctx.Err(); err != nil {
			return Result{}, c.fail(ctx, StageSubmit, err)
		}
		result, err = c.hooks.Submit(ctx, c)
		if err != nil {
			return Result{}, c.fail(ctx, StageSubmit, err)
		}
	}

	if err := ctx.Err(); err != nil {
		return result, c.fail(ctx, StageAfterSubmit, err)
	}
	if err := c.hooks.AfterSubmit(ctx, c, result); err != nil {
		return result, c.fail(ctx, StageAfterSubmit, err)
	}
	c.logger.Debug("submission finished", slog.Bool("halt", result.Halt))
	return result, nil
}

func (c *Controller) runBeforeSubmit(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return c.hooks.BeforeSubmit(ctx, c)
}

func (c *Controller) fail(ctx context.Context, stage Stage, err error) error {
	c.mu.Lock()
	if c.state == StateSubmitting {
		c.state = StateIdle
	}
	c.mu.Unlock()

	c.logger.Warn("submission failed", slog.String("stage", string(stage)), slog.Any("error", err))
	c.DisplayError(ctx, err)
	return &SubmissionError{Stage: stage, Err: err}
}

// Close detaches capabilities and dismisses visible errors. Further calls to
// Close or ValidateAndSubmit return ErrClosed.
func (c *Controller) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.closed = true
	c.enabled = false
	detach := c.detach
	c.detach = nil
	c.mu.Unlock()

	for i := len(detach) - 1; i >= 0; i-- {
		detach[i]()
	}
	c.HideErrors()
	return nil
}
