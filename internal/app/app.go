// Package app contains the root application model: a small terminal
// modeler (toolbar, diagram tabs, element list, properties panel) with the
// catalog plugin mounted into it.
package app

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/catalog/internal/catalog"
	"github.com/zjrosen/catalog/internal/config"
	"github.com/zjrosen/catalog/internal/flags"
	"github.com/zjrosen/catalog/internal/host"
	"github.com/zjrosen/catalog/internal/keys"
	"github.com/zjrosen/catalog/internal/log"
	"github.com/zjrosen/catalog/internal/plugin"
	"github.com/zjrosen/catalog/internal/pubsub"
	"github.com/zjrosen/catalog/internal/templates"
	"github.com/zjrosen/catalog/internal/tracing"
	"github.com/zjrosen/catalog/internal/ui/catalogview"
	"github.com/zjrosen/catalog/internal/ui/help"
	"github.com/zjrosen/catalog/internal/ui/shared/clipboard"
	"github.com/zjrosen/catalog/internal/ui/shared/logoverlay"
	"github.com/zjrosen/catalog/internal/ui/toaster"
	"github.com/zjrosen/catalog/internal/watcher"
)

// Options carries the services the application runs on.
type Options struct {
	Host      *host.Host
	Loader    *templates.Loader
	Config    config.Config
	Flags     *flags.Registry
	Tracer    trace.Tracer // nil disables catalog spans
	Clipboard clipboard.Clipboard
	DebugMode bool
}

// Model is the root application state.
type Model struct {
	host   *host.Host
	plugin *plugin.Plugin
	loader *templates.Loader
	tracer trace.Tracer

	engineOpts []catalog.EngineOption
	viewOpts   []catalogview.Option

	// set by the plugin's open callback, which runs inside Update
	openRequested *atomic.Bool

	catalogOpen bool
	catalog     catalogview.Model

	width     int
	height    int
	status    string
	statusErr bool
	zoneBase  string

	debugMode   bool
	toaster     toaster.Model
	help        help.Model
	helpOpen    bool
	logOverlay  logoverlay.Model
	logListener *log.LogListener
	logCancel   context.CancelFunc

	watcherHandle   *watcher.Watcher
	watcherCancel   context.CancelFunc
	watcherListener *pubsub.ContinuousListener[[]string]
}

// New mounts the catalog plugin into opts.Host, starts the host and, when
// configured, the template directory watcher.
func New(opts Options) Model {
	requested := &atomic.Bool{}
	p := plugin.New(func() { requested.Store(true) })
	p.Mount(opts.Host)
	opts.Host.Start()

	var engineOpts []catalog.EngineOption
	if opts.Flags.Enabled(flags.FlagAllTags) {
		engineOpts = append(engineOpts, catalog.WithAllTags())
	}
	cb := opts.Clipboard
	if cb == nil {
		cb = clipboard.System{}
	}
	viewOpts := []catalogview.Option{
		catalogview.WithClipboard(cb),
		catalogview.WithCopyID(opts.Flags.Enabled(flags.FlagCopyID) && clipboard.Supported()),
		catalogview.WithShowDates(opts.Config.UI.ShowDates),
	}

	m := Model{
		host:          opts.Host,
		plugin:        p,
		loader:        opts.Loader,
		tracer:        opts.Tracer,
		engineOpts:    engineOpts,
		viewOpts:      viewOpts,
		openRequested: requested,
		debugMode:     opts.DebugMode,
		toaster:       toaster.New(),
		help:          help.New(opts.Flags.Enabled(flags.FlagAllTags)),
		logOverlay:    logoverlay.New(),
		zoneBase:      zone.NewPrefix(),
	}

	if opts.DebugMode {
		ctx, cancel := context.WithCancel(context.Background())
		if l := log.NewListener(ctx); l != nil {
			m.logListener = l
			m.logCancel = cancel
		} else {
			cancel()
		}
	}

	if opts.Config.Templates.Watch && opts.Loader != nil && len(opts.Loader.Paths()) > 0 {
		m.startWatcher(opts.Loader.Paths(), opts.Config)
	}
	return m
}

func (m *Model) startWatcher(dirs []string, cfg config.Config) {
	w, err := watcher.New(watcher.Config{
		Dirs:        dirs,
		DebounceDur: cfg.Templates.WatchDebounce,
		Relevant:    templates.IsTemplateFile,
	})
	if err != nil {
		log.ErrorErr(log.CatWatcher, "Watcher unavailable", err)
		return
	}
	n, err := w.Start()
	if err != nil || n == 0 {
		// nothing to watch yet; the app works without live reload
		_ = w.Stop()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	m.watcherHandle = w
	m.watcherCancel = cancel
	m.watcherListener = pubsub.NewContinuousListener(ctx, w.Broker(), pubsub.TemplatesChangedEvent).
		Coalesce(pubsub.MergePaths)
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	var cmds []tea.Cmd
	if m.watcherListener != nil {
		cmds = append(cmds, m.watcherListener.Listen())
	}
	if m.logListener != nil {
		cmds = append(cmds, m.logListener.Listen())
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.logOverlay.SetSize(msg.Width, msg.Height)
		m.help = m.help.SetSize(msg.Width, msg.Height)
		if m.catalogOpen {
			m.catalog = m.catalog.SetSize(msg.Width, msg.Height)
		}
		return m, nil

	case log.LogEvent:
		m.logOverlay.Push(msg.Payload)
		if m.logListener == nil {
			return m, nil
		}
		return m, m.logListener.Listen()

	case pubsub.Event[[]string]:
		m = m.templatesChanged(msg.Payload)
		if m.watcherListener == nil {
			return m, nil
		}
		return m, m.watcherListener.Listen()

	case catalogview.ApplyMsg:
		return m.applyTemplate(msg.Template)

	case toaster.DismissMsg:
		m.toaster = m.toaster.Update(msg)
		return m, nil

	case catalogview.CloseMsg:
		m.catalogOpen = false
		log.Debug(log.CatUI, "Catalog closed")
		return m, nil

	case logoverlay.CloseMsg:
		return m, nil

	case tea.KeyMsg:
		if m.debugMode && key.Matches(msg, keys.App.ToggleLog) {
			m.logOverlay.Toggle()
			return m, nil
		}
		if m.logOverlay.Visible() {
			var cmd tea.Cmd
			m.logOverlay, cmd = m.logOverlay.Update(msg)
			return m, cmd
		}
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.catalogOpen {
			var cmd tea.Cmd
			m.catalog, cmd = m.catalog.Update(msg)
			return m, cmd
		}
		if m.helpOpen {
			if key.Matches(msg, keys.App.Help) || msg.Type == tea.KeyEsc {
				m.helpOpen = false
			}
			return m, nil
		}
		return m.handleKey(msg)

	case tea.MouseMsg:
		if m.logOverlay.Visible() {
			var cmd tea.Cmd
			m.logOverlay, cmd = m.logOverlay.Update(msg)
			return m, cmd
		}
		if m.catalogOpen {
			var cmd tea.Cmd
			m.catalog, cmd = m.catalog.Update(msg)
			return m, cmd
		}
		m.handleClick(msg)
		return m.afterHostInput(), nil
	}

	if m.catalogOpen {
		var cmd tea.Cmd
		m.catalog, cmd = m.catalog.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""
	m.statusErr = false
	switch {
	case key.Matches(msg, keys.App.Quit):
		return m, tea.Quit
	case key.Matches(msg, keys.App.Help):
		m.helpOpen = true
	case key.Matches(msg, keys.App.Down):
		m.host.MoveSelection(1)
	case key.Matches(msg, keys.App.Up):
		m.host.MoveSelection(-1)
	case key.Matches(msg, keys.App.NextTab):
		m.shiftTab(1)
	case key.Matches(msg, keys.App.PrevTab):
		m.shiftTab(-1)
	case key.Matches(msg, keys.App.OpenCatalog):
		m.plugin.Open()
	case key.Matches(msg, keys.App.Reload):
		m.loader.InvalidateAll(context.Background())
		m.setStatus("Templates reloaded", false)
	}
	return m.afterHostInput(), nil
}

func (m *Model) shiftTab(delta int) {
	n := len(m.host.Tabs())
	if n == 0 {
		return
	}
	idx, _, _ := m.host.ActiveTab()
	if err := m.host.SetActiveTab((idx + delta + n) % n); err != nil {
		m.setStatus(err.Error(), true)
	}
}

// afterHostInput opens the catalog when a plugin contribution asked for it
// while the input was being handled.
func (m Model) afterHostInput() Model {
	if m.openRequested.Swap(false) {
		return m.openCatalog()
	}
	return m
}

func (m Model) openCatalog() Model {
	ctx, span := tracing.StartCatalogSpan(context.Background(), m.tracer, "open", "")
	defer span.End()

	store := m.plugin.NewStore(m.engineOpts...)
	if err := store.Open(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.ErrorErr(log.CatUI, "Open catalog failed", err)
		m.setStatus("Cannot open catalog: "+err.Error(), true)
		return m
	}
	span.SetAttributes(
		attribute.String(tracing.AttrSessionID, store.Session()),
		attribute.String(tracing.AttrElementType, store.ElementType()),
		attribute.Int(tracing.AttrTemplateCount, len(store.Templates())),
	)

	m.catalog = catalogview.New(store, m.viewOpts...).SetSize(m.width, m.height)
	m.catalogOpen = true
	log.Info(log.CatUI, "Catalog opened", "session", store.Session(), "templates", len(store.Templates()))
	return m
}

func (m Model) applyTemplate(t templates.ElementTemplate) (Model, tea.Cmd) {
	session := ""
	if m.catalogOpen {
		session = m.catalog.Store().Session()
	}
	ctx, span := tracing.StartCatalogSpan(context.Background(), m.tracer, "apply", session)
	defer span.End()
	span.SetAttributes(attribute.String(tracing.AttrTemplateID, t.ID))

	el, _ := m.host.SelectedElement()
	ran, err := m.plugin.Apply(ctx, t)

	var cmd tea.Cmd
	switch {
	case err != nil:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		m.toaster, cmd = m.toaster.Show(fmt.Sprintf("Apply %s failed: %v", t.Name, err), toaster.StyleError, toaster.DefaultDuration)
	case !ran:
		m.toaster, cmd = m.toaster.Show("Templates can only be applied in BPMN diagrams", toaster.StyleWarn, toaster.DefaultDuration)
	default:
		m.toaster, cmd = m.toaster.Show(fmt.Sprintf("Applied %s to %s", t.Name, el.ID), toaster.StyleSuccess, toaster.DefaultDuration)
	}
	return m, cmd
}

// templatesChanged drops cached parses of the changed files and reloads an
// open catalog in place.
func (m Model) templatesChanged(paths []string) Model {
	ctx := context.Background()
	for _, p := range paths {
		m.loader.Invalidate(ctx, p)
	}
	log.Info(log.CatWatcher, "Templates changed", "files", len(paths))
	if !m.catalogOpen {
		return m
	}
	store := m.catalog.Store()
	store.SetTemplates(store.Load(ctx, store.ElementType()))
	m.catalog = m.catalog.Refresh()
	return m
}

func (m *Model) setStatus(s string, isErr bool) {
	m.status = s
	m.statusErr = isErr
}

// HelpOpen reports whether the keybinding overlay is shown.
func (m Model) HelpOpen() bool { return m.helpOpen }

// CatalogOpen reports whether the catalog modal is shown.
func (m Model) CatalogOpen() bool { return m.catalogOpen }

// Catalog returns the catalog modal state.
func (m Model) Catalog() catalogview.Model { return m.catalog }

// Toast returns the notification toast.
func (m Model) Toast() toaster.Model { return m.toaster }

// Status returns the status bar message.
func (m Model) Status() string { return m.status }

// Close releases the watcher, listeners and plugin subscriptions.
func (m *Model) Close() error {
	m.plugin.Unmount()
	if m.logCancel != nil {
		m.logCancel()
	}
	if m.watcherCancel != nil {
		m.watcherCancel()
	}
	if m.watcherHandle != nil {
		return m.watcherHandle.Stop()
	}
	return nil
}
