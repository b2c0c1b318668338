// Package catalogview renders the element template catalog as a modal:
// a search box, an optional tag dropdown, the template list and a
// Cancel/Apply footer. All session state lives in a catalog.Store; the view
// only owns focus, cursor and scroll position.
package catalogview

import (
	"fmt"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"

	"github.com/zjrosen/catalog/internal/catalog"
	"github.com/zjrosen/catalog/internal/log"
	"github.com/zjrosen/catalog/internal/templates"
	"github.com/zjrosen/catalog/internal/ui/shared/clipboard"
	"github.com/zjrosen/catalog/internal/ui/tagpicker"
)

// Fixed copy shown by the modal.
const (
	Title        = "Catalog"
	Header       = "Templates"
	EmptyText    = "No matching catalog templates found."
	MoreLabel    = "More"
	LessLabel    = "Less"
	AppliedLabel = "applied"
)

// ApplyMsg carries the template the user confirmed. It is always followed
// by a CloseMsg.
type ApplyMsg struct {
	Template templates.ElementTemplate
}

// CloseMsg is sent when the modal should be dismissed.
type CloseMsg struct{}

type focus int

const (
	focusList focus = iota
	focusSearch
	focusTags
	focusCancel
	focusApply
)

// Option configures a Model.
type Option func(*Model)

// WithClipboard sets the clipboard used by the copy key.
func WithClipboard(c clipboard.Clipboard) Option {
	return func(m *Model) { m.clipboard = c }
}

// WithCopyID enables copying the highlighted template id.
func WithCopyID(enabled bool) Option {
	return func(m *Model) { m.copyID = enabled }
}

// WithShowDates controls whether the meta line includes the update date.
func WithShowDates(show bool) Option {
	return func(m *Model) { m.showDates = show }
}

// Model is the catalog modal state.
type Model struct {
	store     *catalog.Store
	search    textinput.Model
	tags      tagpicker.Model
	focus     focus
	cursor    int
	offset    int
	width     int
	height    int
	clipboard clipboard.Clipboard
	copyID    bool
	showDates bool
	status    string
	zoneBase  string
}

// New creates the modal over an opened store. The cursor starts on the
// store's selection when it is visible.
func New(store *catalog.Store, opts ...Option) Model {
	ti := textinput.New()
	ti.Placeholder = "Search templates"
	ti.Prompt = ""
	ti.CharLimit = 120
	ti.SetValue(store.Filter().Search)

	m := Model{
		store:     store,
		search:    ti,
		clipboard: clipboard.System{},
		showDates: true,
		zoneBase:  zone.NewPrefix(),
	}
	for _, opt := range opts {
		opt(&m)
	}
	for i, t := range store.Visible() {
		if t.ID == store.Selected() {
			m.cursor = i
		}
	}
	m.ensureVisible()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// SetSize updates the viewport size used for centering and list height.
func (m Model) SetSize(width, height int) Model {
	m.width = width
	m.height = height
	m.search.Width = m.boxWidth() - 18
	m.ensureVisible()
	return m
}

// Store returns the backing store.
func (m Model) Store() *catalog.Store { return m.store }

// Cursor returns the highlighted index into the visible list.
func (m Model) Cursor() int { return m.cursor }

// SearchFocused reports whether the search input has focus.
func (m Model) SearchFocused() bool { return m.focus == focusSearch }

// TagsOpen reports whether the tag dropdown is open.
func (m Model) TagsOpen() bool { return m.focus == focusTags }

// Status returns the last status line message.
func (m Model) Status() string { return m.status }

// Current returns the template under the cursor.
func (m Model) Current() (templates.ElementTemplate, bool) {
	visible := m.store.Visible()
	if m.cursor < 0 || m.cursor >= len(visible) {
		return templates.ElementTemplate{}, false
	}
	return visible[m.cursor], true
}

// CanApply reports whether the Apply button is enabled.
func (m Model) CanApply() bool {
	return m.store.Selected() != ""
}

func (m Model) apply() tea.Cmd {
	t, ok := m.store.ConfirmSelection()
	if !ok {
		log.Debug(log.CatUI, "Apply ignored without selection", "session", m.store.Session())
		return nil
	}
	log.Info(log.CatUI, "Template confirmed", "template", t.ID, "session", m.store.Session())
	return tea.Sequence(
		func() tea.Msg { return ApplyMsg{Template: t} },
		func() tea.Msg { return CloseMsg{} },
	)
}

func closeCmd() tea.Msg { return CloseMsg{} }

func (m Model) copyCurrent() Model {
	if !m.copyID || m.clipboard == nil {
		return m
	}
	t, ok := m.Current()
	if !ok {
		return m
	}
	if err := m.clipboard.Copy(t.ID); err != nil {
		log.ErrorErr(log.CatUI, "Copy template id failed", err, "template", t.ID)
		m.status = "Copy failed: " + err.Error()
		return m
	}
	m.status = fmt.Sprintf("Copied %s", t.ID)
	return m
}

// clampCursor keeps the cursor inside the visible list after the list
// changed (search, tags, reload).
func (m *Model) clampCursor() {
	n := len(m.store.Visible())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.ensureVisible()
}

func (m *Model) moveCursor(delta int) {
	m.cursor += delta
	m.clampCursor()
}

// Refresh re-reads the store after its templates changed underneath.
func (m Model) Refresh() Model {
	if m.focus == focusTags {
		m.tags = m.tags.SetCounts(m.store.TagCounts()).SetChecked(m.store.Filter().Tags)
	}
	m.clampCursor()
	return m
}
