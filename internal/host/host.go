// Package host implements the terminal modeler that the catalog plugs
// into: configuration lookups, action dispatch, event subscriptions, UI
// slots and the properties panel.
package host

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/zjrosen/catalog/internal/log"
	"github.com/zjrosen/catalog/internal/pubsub"
	"github.com/zjrosen/catalog/internal/templates"
	"github.com/zjrosen/catalog/internal/workspace"
)

// Events emitted by the host.
const (
	// EventActiveTabChanged carries an ActiveTabChanged payload.
	EventActiveTabChanged = "app.activeTabChanged"
	// EventModelerConfigure carries a *ModelerConfigure payload.
	EventModelerConfigure = "bpmn.modeler.configure"
	// EventElementChanged carries the id of the changed element.
	EventElementChanged = "element.changed"
)

// Configuration keys served by Config.Get.
const KeyElementTemplates = "bpmn.elementTemplates"

var (
	// ErrUnknownConfigKey is returned by Config.Get for unsupported keys.
	ErrUnknownConfigKey = errors.New("unknown config key")
	// ErrUnknownAction is returned by TriggerAction for unregistered actions.
	ErrUnknownAction = errors.New("unknown action")
	// ErrNoSelection is returned by element actions when nothing is selected.
	ErrNoSelection = errors.New("no element selected")
)

// TemplateLoader supplies element templates for Config.Get.
type TemplateLoader interface {
	Load(ctx context.Context) ([]templates.ElementTemplate, error)
}

// ActiveTabChanged is the payload of EventActiveTabChanged.
type ActiveTabChanged struct {
	Index     int
	ActiveTab workspace.Tab
}

// Host is the modeler application hosting plugins.
type Host struct {
	mu sync.RWMutex

	config    *Config
	bus       *pubsub.Bus
	slots     *Slots
	workspace *workspace.Workspace

	actions     map[string]ActionFunc
	middlewares []Middleware

	activeTab int
	selected  map[int]string // tab index -> element id
	modelers  map[int]*Modeler
}

// New creates a host editing ws with templates from loader.
func New(loader TemplateLoader, ws *workspace.Workspace) *Host {
	h := &Host{
		config:    &Config{loader: loader},
		bus:       pubsub.NewBus(),
		slots:     NewSlots(),
		workspace: ws,
		actions:   make(map[string]ActionFunc),
		selected:  make(map[int]string),
		modelers:  make(map[int]*Modeler),
	}
	for i, tab := range ws.Tabs {
		if len(tab.Elements) > 0 {
			h.selected[i] = tab.Elements[0].ID
		}
	}
	h.registerBuiltinActions()
	return h
}

// Config returns the configuration store.
func (h *Host) Config() *Config { return h.config }

// Slots returns the UI slot registry.
func (h *Host) Slots() *Slots { return h.slots }

// Workspace returns the edited workspace.
func (h *Host) Workspace() *workspace.Workspace { return h.workspace }

// Subscribe registers handler for a host event. Handlers run synchronously
// in subscription order.
func (h *Host) Subscribe(event string, handler pubsub.Handler) pubsub.Subscription {
	return h.bus.Subscribe(event, handler)
}

// Start creates a modeler for every BPMN tab and announces the active tab.
// Plugins must be mounted before Start so they see the configure events.
func (h *Host) Start() {
	h.mu.RLock()
	tabs := h.workspace.Tabs
	h.mu.RUnlock()

	for i, tab := range tabs {
		if tab.Type == workspace.TypeBPMN {
			h.createModeler(i)
		}
	}
	h.emitActiveTab()
}

// Tabs returns the workspace tabs.
func (h *Host) Tabs() []workspace.Tab {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.workspace.Tabs
}

// ActiveTab returns the index and value of the active tab.
func (h *Host) ActiveTab() (int, workspace.Tab, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.activeTab < 0 || h.activeTab >= len(h.workspace.Tabs) {
		return -1, workspace.Tab{}, false
	}
	return h.activeTab, h.workspace.Tabs[h.activeTab], true
}

// SetActiveTab switches tabs and emits EventActiveTabChanged.
func (h *Host) SetActiveTab(index int) error {
	h.mu.Lock()
	if index < 0 || index >= len(h.workspace.Tabs) {
		h.mu.Unlock()
		return fmt.Errorf("tab index %d out of range (have %d tabs)", index, len(h.workspace.Tabs))
	}
	h.activeTab = index
	h.mu.Unlock()

	h.emitActiveTab()
	return nil
}

// Select makes elementID the selection of its tab and activates that tab.
func (h *Host) Select(elementID string) error {
	h.mu.Lock()
	_, tab, err := h.workspace.Element(elementID)
	if err != nil {
		h.mu.Unlock()
		return err
	}
	h.selected[tab] = elementID
	changed := tab != h.activeTab
	h.activeTab = tab
	h.mu.Unlock()

	if changed {
		h.emitActiveTab()
	}
	return nil
}

// MoveSelection moves the selection of the active tab by delta, clamped to
// the element list.
func (h *Host) MoveSelection(delta int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.activeTab < 0 || h.activeTab >= len(h.workspace.Tabs) {
		return
	}
	elements := h.workspace.Tabs[h.activeTab].Elements
	if len(elements) == 0 {
		return
	}
	idx := 0
	for i, el := range elements {
		if el.ID == h.selected[h.activeTab] {
			idx = i
			break
		}
	}
	idx = max(0, min(len(elements)-1, idx+delta))
	h.selected[h.activeTab] = elements[idx].ID
}

// SelectedElement returns the selected element of the active tab.
func (h *Host) SelectedElement() (workspace.Element, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.selectedLocked()
}

func (h *Host) selectedLocked() (workspace.Element, bool) {
	id, ok := h.selected[h.activeTab]
	if !ok {
		return workspace.Element{}, false
	}
	el, _, err := h.workspace.Element(id)
	if err != nil {
		return workspace.Element{}, false
	}
	return *el, true
}

func (h *Host) emitActiveTab() {
	index, tab, ok := h.ActiveTab()
	if !ok {
		return
	}
	log.Debug(log.CatHost, "Active tab changed", "index", index, "name", tab.Name, "type", tab.Type)
	h.bus.Emit(EventActiveTabChanged, ActiveTabChanged{Index: index, ActiveTab: tab})
}

// Config serves host configuration values.
type Config struct {
	loader TemplateLoader
}

// Get returns the value stored under key. Only KeyElementTemplates is
// supported; any other key is a programming error.
func (c *Config) Get(ctx context.Context, key string) (any, error) {
	switch key {
	case KeyElementTemplates:
		list, err := c.loader.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("load element templates: %w", err)
		}
		return list, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownConfigKey, key)
	}
}
