package lifecycle

import (
	"context"
)

// Result is what a Submit hook reports back to the pipeline. Halt moves the
// controller into its terminal state; Data is passed through untouched.
type Result struct {
	Halt bool
	Data any
}

// Hooks are the per-screen override points. Every hook except Submit is
// optional; nil hooks use the defaults described on each field.
type Hooks struct {
	// IsValidStart runs before the field walk. Returning false makes the form
	// invalid. Default: pass.
	IsValidStart func(c *Controller) bool
	// IsValidEnd runs after a successful field walk. Default: pass.
	IsValidEnd func(c *Controller) bool
	// ShowValidationErrorsStart returns true when it displayed an error itself,
	// suppressing the per-field display.
	ShowValidationErrorsStart func(c *Controller) bool
	// ShowValidationErrorsEnd runs when no field failed, typically to report
	// a form-wide rule that IsValidEnd rejected. Return true if it displayed
	// something.
	ShowValidationErrorsEnd func(c *Controller) bool
	// BeforeSubmit returning false skips Submit but still runs AfterSubmit.
	// Default: DefaultBeforeSubmit.
	BeforeSubmit func(ctx context.Context, c *Controller) (bool, error)
	// Submit performs the actual action. Required.
	Submit func(ctx context.Context, c *Controller) (Result, error)
	// AfterSubmit runs only when no stage failed. Default: DefaultAfterSubmit.
	AfterSubmit func(ctx context.Context, c *Controller, result Result) error
}

// DefaultBeforeSubmit disables the form and lets the submission proceed.
func DefaultBeforeSubmit(_ context.Context, c *Controller) (bool, error) {
	c.DisableForm()
	return true, nil
}

// DefaultAfterSubmit halts the controller when the result asks for it and
// otherwise re-enables the form unless an error is still visible.
func DefaultAfterSubmit(_ context.Context, c *Controller, result Result) error {
	if result.Halt {
		c.Halt()
		return nil
	}
	if !c.ErrorVisible() {
		c.EnableForm()
	}
	return nil
}

func (h Hooks) withDefaults() Hooks {
	if h.BeforeSubmit == nil {
		h.BeforeSubmit = DefaultBeforeSubmit
	}
	if h.AfterSubmit == nil {
		h.AfterSubmit = DefaultAfterSubmit
	}
	return h
}
