// Package plugin mounts the element template catalog into the host: a
// toolbar button, a properties panel entry, and the apply action.
package plugin

import (
	"context"
	"sync"

	"github.com/zjrosen/catalog/internal/catalog"
	"github.com/zjrosen/catalog/internal/host"
	"github.com/zjrosen/catalog/internal/log"
	"github.com/zjrosen/catalog/internal/pubsub"
	"github.com/zjrosen/catalog/internal/templates"
	"github.com/zjrosen/catalog/internal/workspace"
)

// Plugin is the catalog plugin. Its zero value is not usable; call New.
type Plugin struct {
	onOpen func()

	mu            sync.Mutex
	host          *host.Host
	subscriptions []pubsub.Subscription
	activeTab     *workspace.Tab
}

// New creates the plugin. onOpen is called whenever the user asks to open
// the catalog.
func New(onOpen func()) *Plugin {
	return &Plugin{onOpen: onOpen}
}

// Mount subscribes to host events and fills the toolbar.
func (p *Plugin) Mount(h *host.Host) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.host = h
	p.subscriptions = []pubsub.Subscription{
		h.Subscribe(host.EventActiveTabChanged, p.handleActiveTabChanged),
		h.Subscribe(host.EventModelerConfigure, p.handleModelerConfigure),
		h.Slots().Fill(host.SlotToolbar, host.Fill{Label: "Catalog", OnClick: p.Open}),
	}
	log.Debug(log.CatCatalog, "Catalog plugin mounted")
}

// Unmount cancels every subscription made by Mount.
func (p *Plugin) Unmount() {
	p.mu.Lock()
	subs := p.subscriptions
	p.subscriptions = nil
	p.mu.Unlock()

	for _, sub := range subs {
		sub.Cancel()
	}
	log.Debug(log.CatCatalog, "Catalog plugin unmounted", "subscriptions", len(subs))
}

// Open asks the application to show the catalog.
func (p *Plugin) Open() {
	if p.onOpen != nil {
		p.onOpen()
	}
}

// ActiveTab returns the last tab announced by the host.
func (p *Plugin) ActiveTab() (workspace.Tab, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.activeTab == nil {
		return workspace.Tab{}, false
	}
	return *p.activeTab, true
}

// NewStore creates a catalog store reading from the mounted host.
func (p *Plugin) NewStore(opts ...catalog.EngineOption) *catalog.Store {
	p.mu.Lock()
	h := p.host
	p.mu.Unlock()

	return catalog.NewStore(
		TemplateSource{Config: h.Config()},
		ElementInspector{Actions: h},
		opts...,
	)
}

// Apply applies tmpl to the selected element. Templates are only applied
// while a BPMN tab is active; it reports whether the action ran.
func (p *Plugin) Apply(ctx context.Context, tmpl templates.ElementTemplate) (bool, error) {
	tab, ok := p.ActiveTab()
	if !ok || tab.Type != workspace.TypeBPMN {
		log.Debug(log.CatCatalog, "Ignoring apply outside a BPMN tab", "template", tmpl.ID)
		return false, nil
	}

	p.mu.Lock()
	h := p.host
	p.mu.Unlock()

	if _, err := h.TriggerAction(ctx, host.ActionApplyElementTemplate, tmpl); err != nil {
		return true, err
	}
	return true, nil
}

func (p *Plugin) handleActiveTabChanged(payload any) {
	event, ok := payload.(host.ActiveTabChanged)
	if !ok {
		return
	}
	p.mu.Lock()
	tab := event.ActiveTab
	p.activeTab = &tab
	p.mu.Unlock()
}

func (p *Plugin) handleModelerConfigure(payload any) {
	event, ok := payload.(*host.ModelerConfigure)
	if !ok {
		return
	}
	event.Push(func(cfg host.ModelerConfig) host.ModelerConfig {
		cfg.PropertiesProviders = append(cfg.PropertiesProviders, PropertiesProvider{Open: p.Open})
		return cfg
	})
}
