// Package tooltip renders lifecycle error tooltips and the form-level error
// banner through a template engine. Messages are sanitised with bluemonday
// before they reach the template, and style tokens (class, placement) can be
// sourced from a go-theme manifest.
package tooltip
