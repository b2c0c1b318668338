package host

import (
	"context"
	"fmt"
	"time"

	"github.com/zjrosen/catalog/internal/log"
	"github.com/zjrosen/catalog/internal/templates"
)

// Actions served by TriggerAction.
const (
	ActionGetSelectedElementType = "getSelectedElementType"
	ActionGetAppliedTemplate     = "getSelectedElementAppliedElementTemplate"
	ActionApplyElementTemplate   = "applyElementTemplate"
)

// ActionFunc executes a named host action.
type ActionFunc func(ctx context.Context, name string, args ...any) (any, error)

// Middleware wraps action execution.
type Middleware func(next ActionFunc) ActionFunc

// Use appends middleware to the action chain. The first middleware added
// is the outermost.
func (h *Host) Use(mw ...Middleware) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.middlewares = append(h.middlewares, mw...)
}

// RegisterAction adds or replaces the handler for name.
func (h *Host) RegisterAction(name string, fn func(ctx context.Context, args ...any) (any, error)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.actions[name] = func(ctx context.Context, _ string, args ...any) (any, error) {
		return fn(ctx, args...)
	}
}

// TriggerAction runs the named action through the middleware chain.
func (h *Host) TriggerAction(ctx context.Context, name string, args ...any) (any, error) {
	h.mu.RLock()
	chain := ActionFunc(h.dispatch)
	for i := len(h.middlewares) - 1; i >= 0; i-- {
		chain = h.middlewares[i](chain)
	}
	h.mu.RUnlock()

	return chain(ctx, name, args...)
}

func (h *Host) dispatch(ctx context.Context, name string, args ...any) (any, error) {
	h.mu.RLock()
	fn, ok := h.actions[name]
	h.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAction, name)
	}
	return fn(ctx, name, args...)
}

func (h *Host) registerBuiltinActions() {
	h.RegisterAction(ActionGetSelectedElementType, func(context.Context, ...any) (any, error) {
		el, ok := h.SelectedElement()
		if !ok {
			return nil, ErrNoSelection
		}
		return el.Type, nil
	})

	h.RegisterAction(ActionGetAppliedTemplate, func(context.Context, ...any) (any, error) {
		el, ok := h.SelectedElement()
		if !ok {
			return nil, ErrNoSelection
		}
		if id := el.TemplateID(); id != "" {
			return id, nil
		}
		return nil, nil
	})

	h.RegisterAction(ActionApplyElementTemplate, func(_ context.Context, args ...any) (any, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("%s: expected 1 argument, got %d", ActionApplyElementTemplate, len(args))
		}
		tmpl, ok := args[0].(templates.ElementTemplate)
		if !ok {
			return nil, fmt.Errorf("%s: expected element template, got %T", ActionApplyElementTemplate, args[0])
		}
		return nil, h.applyTemplate(tmpl)
	})
}

func (h *Host) applyTemplate(tmpl templates.ElementTemplate) error {
	h.mu.Lock()
	el, ok := h.selectedLocked()
	if !ok {
		h.mu.Unlock()
		return ErrNoSelection
	}
	if !tmpl.AppliesToType(el.Type) {
		h.mu.Unlock()
		return fmt.Errorf("template %s does not apply to %s", tmpl.ID, el.Type)
	}
	if err := h.workspace.ApplyTemplate(el.ID, tmpl.ID, tmpl.Version); err != nil {
		h.mu.Unlock()
		return err
	}
	err := h.workspace.Save()
	h.mu.Unlock()
	if err != nil {
		return err
	}

	log.Info(log.CatHost, "Element template applied", "element", el.ID, "template", tmpl.ID, "version", tmpl.Version)
	h.bus.Emit(EventElementChanged, el.ID)
	return nil
}

// LoggingMiddleware logs every action with its duration and outcome.
func LoggingMiddleware() Middleware {
	return func(next ActionFunc) ActionFunc {
		return func(ctx context.Context, name string, args ...any) (any, error) {
			start := time.Now()
			result, err := next(ctx, name, args...)
			if err != nil {
				log.ErrorErr(log.CatHost, "Action failed", err, "action", name, "duration", time.Since(start))
				return result, err
			}
			log.Debug(log.CatHost, "Action completed", "action", name, "duration", time.Since(start))
			return result, nil
		}
	}
}
