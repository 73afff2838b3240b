// Package openapi exposes the contracts for loading OpenAPI documents and
// deriving lifecycle forms from operation request bodies. The kin-openapi
// backed implementations live under internal/openapi and are constructed
// through the root formlife package.
package openapi
