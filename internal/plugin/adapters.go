package plugin

import (
	"context"
	"fmt"

	"github.com/zjrosen/catalog/internal/catalog"
	"github.com/zjrosen/catalog/internal/host"
	"github.com/zjrosen/catalog/internal/templates"
)

// ConfigGetter reads host configuration.
type ConfigGetter interface {
	Get(ctx context.Context, key string) (any, error)
}

// ActionTrigger runs host actions.
type ActionTrigger interface {
	TriggerAction(ctx context.Context, name string, args ...any) (any, error)
}

// TemplateSource reads element templates from host configuration.
type TemplateSource struct {
	Config ConfigGetter
}

var _ catalog.TemplateSource = TemplateSource{}

// ElementTemplates implements catalog.TemplateSource.
func (s TemplateSource) ElementTemplates(ctx context.Context) ([]templates.ElementTemplate, error) {
	value, err := s.Config.Get(ctx, host.KeyElementTemplates)
	if err != nil {
		return nil, err
	}
	if value == nil {
		return nil, nil
	}
	list, ok := value.([]templates.ElementTemplate)
	if !ok {
		return nil, fmt.Errorf("%s: unexpected value of type %T", host.KeyElementTemplates, value)
	}
	return list, nil
}

// ElementInspector asks the host about the selected element.
type ElementInspector struct {
	Actions ActionTrigger
}

var _ catalog.ElementInspector = ElementInspector{}

// SelectedElementType implements catalog.ElementInspector.
func (i ElementInspector) SelectedElementType(ctx context.Context) (string, error) {
	value, err := i.Actions.TriggerAction(ctx, host.ActionGetSelectedElementType)
	if err != nil {
		return "", err
	}
	typ, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("%s: unexpected result of type %T", host.ActionGetSelectedElementType, value)
	}
	return typ, nil
}

// AppliedTemplate implements catalog.ElementInspector.
func (i ElementInspector) AppliedTemplate(ctx context.Context) (string, error) {
	value, err := i.Actions.TriggerAction(ctx, host.ActionGetAppliedTemplate)
	if err != nil {
		return "", err
	}
	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	default:
		return "", fmt.Errorf("%s: unexpected result of type %T", host.ActionGetAppliedTemplate, value)
	}
}
