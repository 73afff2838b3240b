package terminal

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("terminal: aborted")
	// ErrTooManyAttempts is returned when the form is still invalid after the
	// configured number of submission attempts.
	ErrTooManyAttempts = errors.New("terminal: too many attempts")
	// ErrNilController is returned by NewSession without a controller.
	ErrNilController = errors.New("terminal: controller is nil")
)
