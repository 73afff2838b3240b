package lifecycle

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-formlife/pkg/messages"
)

var (
	// ErrSubmitRequired is returned by New when Hooks.Submit is nil.
	ErrSubmitRequired = errors.New("lifecycle: submit hook is required")
	// ErrUnknownField signals a field name that is not part of the form.
	ErrUnknownField = errors.New("lifecycle: unknown field")
	// ErrValidatorExists is returned when registering a kind twice.
	ErrValidatorExists = errors.New("lifecycle: validator already registered")
	// ErrFormInvalid is returned by ValidateAndSubmit when the form is invalid
	// but no hook displayed a specific error.
	ErrFormInvalid = errors.New("lifecycle: form is invalid")
	// ErrClosed is returned once the controller has been closed.
	ErrClosed = errors.New("lifecycle: controller is closed")
)

// FieldError is implemented by errors that belong to a specific field. A
// submission error implementing it is shown as a tooltip on that field
// instead of the form-level banner.
type FieldError interface {
	error
	FieldName() string
}

// ValidationError is the single error surfaced by a validation pass. Error
// returns exactly the message shown to the user.
type ValidationError struct {
	Kind    messages.Kind
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

// FieldName implements FieldError.
func (e *ValidationError) FieldName() string {
	if e == nil {
		return ""
	}
	return e.Field
}

// Stage names a step of the submission pipeline.
type Stage string

const (
	StageBeforeSubmit Stage = "beforeSubmit"
	StageSubmit       Stage = "submit"
	StageAfterSubmit  Stage = "afterSubmit"
)

// SubmissionError wraps a failure raised by a pipeline stage after it has been
// displayed. Callers inspect it but must not display it again.
type SubmissionError struct {
	Stage Stage
	Err   error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("lifecycle: %s failed: %v", e.Stage, e.Err)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}
