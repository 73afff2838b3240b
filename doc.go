// Package formlife wires the form lifecycle packages together: it builds
// controllers from process settings, derives forms from OpenAPI documents and
// binds terminal sessions.
package formlife
