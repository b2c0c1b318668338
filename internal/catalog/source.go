// Package catalog holds the template catalog session state and the pure
// filter functions that derive the visible list from it.
package catalog

import (
	"context"

	"github.com/zjrosen/catalog/internal/templates"
)

// TemplateSource supplies every known element template.
type TemplateSource interface {
	ElementTemplates(ctx context.Context) ([]templates.ElementTemplate, error)
}

// ElementInspector answers questions about the currently selected element.
type ElementInspector interface {
	// SelectedElementType returns the type of the selected element.
	SelectedElementType(ctx context.Context) (string, error)
	// AppliedTemplate returns the id of the template applied to the
	// selected element, or "" when none is.
	AppliedTemplate(ctx context.Context) (string, error)
}
