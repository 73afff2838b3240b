// Package model defines the form description a lifecycle controller binds to.
// A Form is an ordered list of Field descriptors; each field carries its
// semantic kind (email, password, generic), whether it is required, its raw
// value and the constraint rules (minLength/maxLength/pattern) that stand in
// for native constraint validation. Fields flagged NoValue are rendered but
// never tracked for change detection, and fields sharing a Group can be
// excluded from validation as a block. Loaders in this package and in
// pkg/openapi produce Form values from YAML definitions or OpenAPI operations.
package model
