// Package messages maps the symbolic error kinds raised by the lifecycle
// controller (INVALID_EMAIL, PASSWORD_TOO_SHORT, ...) onto user-facing
// strings. Catalogs are YAML documents keyed by locale; lookups fall back from
// a regional locale to its base language and then to the catalog fallback.
package messages
