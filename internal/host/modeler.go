package host

import (
	"github.com/zjrosen/catalog/internal/log"
	"github.com/zjrosen/catalog/internal/workspace"
)

// Properties panel identifiers produced by the base provider.
const (
	TabGeneral           = "general"
	GroupGeneral         = "general"
	EntryTemplateChooser = "elementTemplate-chooser"
	EntryKindText        = "text"
	EntryKindLink        = "link"
)

// PropertiesTab is a tab of the properties panel.
type PropertiesTab struct {
	ID     string
	Label  string
	Groups []PropertiesGroup
}

// PropertiesGroup groups entries within a tab.
type PropertiesGroup struct {
	ID      string
	Label   string
	Entries []PropertiesEntry
}

// PropertiesEntry is a single row of the properties panel. Link entries
// run OnClick when activated.
type PropertiesEntry struct {
	ID      string
	Label   string
	Kind    string
	Value   string
	OnClick func()
}

// PropertiesProvider contributes to the properties panel of an element. It
// receives the tabs built so far and returns the tabs to show.
type PropertiesProvider interface {
	GetTabs(element workspace.Element, tabs []PropertiesTab) []PropertiesTab
}

// PropertiesProviderFunc adapts a function to PropertiesProvider.
type PropertiesProviderFunc func(element workspace.Element, tabs []PropertiesTab) []PropertiesTab

// GetTabs calls f.
func (f PropertiesProviderFunc) GetTabs(element workspace.Element, tabs []PropertiesTab) []PropertiesTab {
	return f(element, tabs)
}

// ModelerConfig is the configuration a BPMN modeler is created with.
type ModelerConfig struct {
	PropertiesProviders []PropertiesProvider
}

// ModelerMiddleware transforms the modeler configuration before creation.
type ModelerMiddleware func(ModelerConfig) ModelerConfig

// ModelerConfigure is the payload of EventModelerConfigure. Handlers push
// middlewares that are applied in order once every handler ran.
type ModelerConfigure struct {
	TabIndex    int
	middlewares []ModelerMiddleware
}

// Push adds a configuration middleware.
func (m *ModelerConfigure) Push(mw ModelerMiddleware) {
	m.middlewares = append(m.middlewares, mw)
}

// Modeler renders the properties panel of one BPMN tab.
type Modeler struct {
	config ModelerConfig
}

// Properties builds the properties panel for element: the base entries
// followed by every configured provider in order.
func (m *Modeler) Properties(element workspace.Element) []PropertiesTab {
	tabs := baseTabs(element)
	for _, p := range m.config.PropertiesProviders {
		tabs = p.GetTabs(element, tabs)
	}
	return tabs
}

func baseTabs(element workspace.Element) []PropertiesTab {
	template := element.TemplateID()
	if template == "" {
		template = "(none)"
	}
	return []PropertiesTab{{
		ID:    TabGeneral,
		Label: "General",
		Groups: []PropertiesGroup{{
			ID:    GroupGeneral,
			Label: "General",
			Entries: []PropertiesEntry{
				{ID: "id", Label: "Id", Kind: EntryKindText, Value: element.ID},
				{ID: "name", Label: "Name", Kind: EntryKindText, Value: element.Name},
				{ID: "type", Label: "Type", Kind: EntryKindText, Value: element.Type},
				{ID: EntryTemplateChooser, Label: "Element Template", Kind: EntryKindText, Value: template},
			},
		}},
	}}
}

// createModeler emits EventModelerConfigure for the tab and builds its
// modeler from the pushed middlewares.
func (h *Host) createModeler(tabIndex int) *Modeler {
	event := &ModelerConfigure{TabIndex: tabIndex}
	h.bus.Emit(EventModelerConfigure, event)

	var cfg ModelerConfig
	for _, mw := range event.middlewares {
		cfg = mw(cfg)
	}
	m := &Modeler{config: cfg}

	h.mu.Lock()
	h.modelers[tabIndex] = m
	h.mu.Unlock()

	log.Debug(log.CatHost, "Modeler created", "tab", tabIndex, "providers", len(cfg.PropertiesProviders))
	return m
}

// Properties returns the properties panel of the selected element in the
// active tab. Tabs without a modeler have no panel.
func (h *Host) Properties() []PropertiesTab {
	h.mu.RLock()
	m := h.modelers[h.activeTab]
	el, ok := h.selectedLocked()
	h.mu.RUnlock()

	if m == nil || !ok {
		return nil
	}
	return m.Properties(el)
}

// ListenerCount returns the number of handlers subscribed to event.
func (h *Host) ListenerCount(event string) int {
	return h.bus.HandlerCount(event)
}
