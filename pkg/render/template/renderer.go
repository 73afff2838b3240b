package template

import (
	"io"
)

// TemplateRenderer is the seam the tooltip renderer relies on. Any engine that
// can render a named template or an inline template string against a data
// context satisfies it; output is returned and optionally mirrored to writers.
type TemplateRenderer interface {
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
	RenderString(templateContent string, data any, out ...io.Writer) (string, error)
	RegisterFilter(name string, fn func(input any, param any) (any, error)) error
	GlobalContext(data any) error
}
