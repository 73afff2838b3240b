package terminal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/goliatone/go-formlife/pkg/lifecycle"
	"github.com/goliatone/go-formlife/pkg/model"
)

// Theme holds the prefixes used when printing messages.
type Theme struct {
	ErrorPrefix string
	InfoPrefix  string
}

// Option configures a Session.
type Option func(*Session)

// WithPromptDriver overrides the prompt driver. Defaults to survey.
func WithPromptDriver(driver PromptDriver) Option {
	return func(s *Session) {
		if driver != nil {
			s.driver = driver
		}
	}
}

// WithMaxAttempts caps how many times an invalid form is re-prompted.
func WithMaxAttempts(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

// WithTheme overrides the message prefixes.
func WithTheme(theme Theme) Option {
	return func(s *Session) {
		s.theme = theme
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Session drives a lifecycle controller from a terminal: it prompts every
// field, submits, prints displayed errors and re-prompts the offending field.
type Session struct {
	ctrl        *lifecycle.Controller
	driver      PromptDriver
	maxAttempts int
	theme       Theme
	logger      *slog.Logger
}

// NewSession binds a session to ctrl.
func NewSession(ctrl *lifecycle.Controller, opts ...Option) (*Session, error) {
	if ctrl == nil {
		return nil, ErrNilController
	}
	s := &Session{
		ctrl:        ctrl,
		maxAttempts: 5,
		theme:       Theme{ErrorPrefix: "✗ ", InfoPrefix: "› "},
		logger:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.driver == nil {
		s.driver = NewSurveyDriver(nil)
	}
	return s, nil
}

// Run prompts, validates and submits until the submission succeeds, the user
// declines a retry, or the attempts run out.
func (s *Session) Run(ctx context.Context) (lifecycle.Result, error) {
	var printErr error
	unsubscribe := s.ctrl.Subscribe(func(sig lifecycle.Signal) {
		var msg string
		switch sig.Name {
		case lifecycle.SignalValidationError:
			msg = s.theme.ErrorPrefix + s.label(sig.Field) + ": " + sig.Message
		case lifecycle.SignalErrorShown:
			msg = s.theme.ErrorPrefix + sig.Message
		default:
			return
		}
		if err := s.driver.Info(ctx, msg); err != nil && printErr == nil {
			printErr = err
		}
	})
	defer unsubscribe()

	s.ctrl.Start(ctx)
	form := s.ctrl.Form()
	for _, field := range form.Fields {
		if err := s.prompt(ctx, field); err != nil {
			return lifecycle.Result{}, err
		}
	}

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		result, err := s.ctrl.ValidateAndSubmit(ctx)
		if printErr != nil {
			return result, printErr
		}
		if err == nil {
			s.logger.Debug("session submitted", slog.Int("attempt", attempt), slog.String("state", s.ctrl.State().String()))
			return result, nil
		}

		var subErr *lifecycle.SubmissionError
		var vErr *lifecycle.ValidationError
		switch {
		case errors.As(err, &subErr):
			retry, confirmErr := s.driver.Confirm(ctx, ConfirmConfig{Message: "Submission failed. Retry?", Default: true})
			if confirmErr != nil {
				return result, confirmErr
			}
			if !retry {
				return result, err
			}
			s.ctrl.HideErrors()
			s.ctrl.EnableForm()
		case errors.As(err, &vErr):
			field, ok := s.field(vErr.Field)
			if !ok {
				return result, err
			}
			if err := s.prompt(ctx, field); err != nil {
				return result, err
			}
		default:
			return result, err
		}
	}
	return lifecycle.Result{}, fmt.Errorf("%w (%d)", ErrTooManyAttempts, s.maxAttempts)
}

func (s *Session) prompt(ctx context.Context, field model.Field) error {
	if field.NoValue {
		return nil
	}
	cfg := InputConfig{
		Message: field.DisplayLabel(),
		Default: field.Value,
		Help:    field.Metadata["description"],
	}
	var (
		value string
		err   error
	)
	if field.EffectiveKind() == model.FieldKindPassword {
		value, err = s.driver.Password(ctx, cfg)
	} else {
		value, err = s.driver.Input(ctx, cfg)
	}
	if err != nil {
		return err
	}
	return s.ctrl.Input(ctx, field.Name, value)
}

func (s *Session) field(name string) (model.Field, bool) {
	form := s.ctrl.Form()
	idx := form.FieldIndex(name)
	if idx < 0 {
		return model.Field{}, false
	}
	return form.Fields[idx], true
}

func (s *Session) label(name string) string {
	if field, ok := s.field(name); ok {
		return field.DisplayLabel()
	}
	return name
}

// Info prints an informational line through the prompt driver.
func (s *Session) Info(ctx context.Context, msg string) error {
	return s.driver.Info(ctx, s.theme.InfoPrefix+msg)
}
