package testutil

import (
	"time"

	"github.com/zjrosen/catalog/internal/templates"
)

// TemplateOption configures a template added to a Builder.
type TemplateOption func(*templates.ElementTemplate)

func defaultTemplate(id string) templates.ElementTemplate {
	return templates.ElementTemplate{
		ID:        id,
		Name:      id,
		AppliesTo: []string{"bpmn:Task", "bpmn:ServiceTask"},
	}
}

// Name sets the display name.
func Name(name string) TemplateOption {
	return func(t *templates.ElementTemplate) { t.Name = name }
}

// Description sets the description.
func Description(desc string) TemplateOption {
	return func(t *templates.ElementTemplate) { t.Description = desc }
}

// Version sets the template version.
func Version(v int) TemplateOption {
	return func(t *templates.ElementTemplate) { t.Version = v }
}

// AppliesTo replaces the element types the template applies to.
func AppliesTo(types ...string) TemplateOption {
	return func(t *templates.ElementTemplate) { t.AppliesTo = types }
}

// Tags sets the metadata tags; the first one is the catalog.
func Tags(tags ...string) TemplateOption {
	return func(t *templates.ElementTemplate) {
		if t.Metadata == nil {
			t.Metadata = &templates.Metadata{}
		}
		t.Metadata.Tags = tags
	}
}

// Updated sets the metadata update time.
func Updated(at time.Time) TemplateOption {
	return func(t *templates.ElementTemplate) {
		if t.Metadata == nil {
			t.Metadata = &templates.Metadata{}
		}
		t.Metadata.Updated = &templates.Timestamp{Time: at}
	}
}
