// Package template defines the template renderer contract used to produce
// tooltip and banner markup. The gotemplate subpackage provides the default
// pongo2-backed engine.
package template
