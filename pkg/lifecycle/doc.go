// Package lifecycle implements the form lifecycle controller: change tracking,
// validation, the single-flight submission pipeline and error presentation.
//
// A Controller is bound to one model.Form per screen instance. Hosts feed it
// value changes through Input or SetValue plus HandleInput, and call
// ValidateAndSubmit when the user submits:
//
//	ctrl, err := lifecycle.New(form, lifecycle.Hooks{
//		Submit: func(ctx context.Context, c *lifecycle.Controller) (lifecycle.Result, error) {
//			return lifecycle.Result{Halt: true}, api.Save(ctx, c.Snapshot().Map())
//		},
//	})
//	ctrl.Start(ctx)
//	_ = ctrl.Input(ctx, "email", "ada@example.com")
//	result, err := ctrl.ValidateAndSubmit(ctx)
//
// Errors returned by ValidateAndSubmit have already been displayed: a
// *ValidationError as a tooltip on its field, a *SubmissionError in the form
// banner (or on a field when the cause implements FieldError).
package lifecycle
