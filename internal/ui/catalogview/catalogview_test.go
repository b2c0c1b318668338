package catalogview

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	zone "github.com/lrstanley/bubblezone"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/catalog/internal/catalog"
	"github.com/zjrosen/catalog/internal/templates"
	"github.com/zjrosen/catalog/internal/ui/shared/clipboard"
	"github.com/zjrosen/catalog/internal/ui/tagpicker"
)

func init() {
	zone.NewGlobal()
	lipgloss.SetColorProfile(termenv.Ascii)
}

type staticSource []templates.ElementTemplate

func (s staticSource) ElementTemplates(context.Context) ([]templates.ElementTemplate, error) {
	return s, nil
}

type staticInspector struct {
	elementType string
	applied     string
}

func (i staticInspector) SelectedElementType(context.Context) (string, error) {
	return i.elementType, nil
}

func (i staticInspector) AppliedTemplate(context.Context) (string, error) {
	return i.applied, nil
}

func tmpl(id, name string, tags ...string) templates.ElementTemplate {
	t := templates.ElementTemplate{ID: id, Name: name, AppliesTo: []string{"bpmn:ServiceTask"}}
	if len(tags) > 0 {
		t.Metadata = &templates.Metadata{Tags: tags}
	}
	return t
}

var longDescription = strings.Repeat("Calls a REST endpoint and maps the response. ", 6)

func fixtures() []templates.ElementTemplate {
	rest := tmpl("rest", "REST Connector", "Connectors", "HTTP")
	rest.Description = longDescription
	charge := tmpl("charge", "Charge Card", "Payments")
	charge.Description = "Charges the customer's card."
	refund := tmpl("refund", "Refund", "Payments")
	plain := tmpl("plain", "Plain Task")
	return []templates.ElementTemplate{rest, charge, refund, plain}
}

func openStore(t *testing.T, list []templates.ElementTemplate, applied string) *catalog.Store {
	t.Helper()
	store := catalog.NewStore(staticSource(list), staticInspector{elementType: "bpmn:ServiceTask", applied: applied})
	require.NoError(t, store.Open(context.Background()))
	return store
}

func newView(t *testing.T, opts ...Option) Model {
	t.Helper()
	return New(openStore(t, fixtures(), "charge"), opts...).SetSize(100, 60)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	space = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	esc   = tea.KeyMsg{Type: tea.KeyEsc}
	tab   = tea.KeyMsg{Type: tea.KeyTab}
)

// drain runs cmd, following batches, and collects the messages it produces.
// A cmd still blocked after a second (a cursor blink tick) yields nothing.
func drain(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()

	var msg tea.Msg
	select {
	case msg = <-ch:
	case <-time.After(time.Second):
		return nil
	}
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, drain(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func plain(m Model) string {
	return ansi.Strip(zone.Scan(m.View()))
}

func TestView_Layout(t *testing.T) {
	view := plain(newView(t))

	require.Contains(t, view, Title)
	require.Contains(t, view, Header)
	require.Contains(t, view, "4 of 4")
	require.Contains(t, view, "REST Connector")
	require.Contains(t, view, "Connectors")
	require.Contains(t, view, "Tags ▾")
	require.Contains(t, view, "Cancel")
	require.Contains(t, view, "Apply")
	require.Contains(t, view, "✓ "+AppliedLabel, "applied template is marked")
}

func TestView_TruncatedDescriptionShowsMore(t *testing.T) {
	view := plain(newView(t))

	require.Contains(t, view, MoreLabel)
	require.NotContains(t, view, LessLabel)
	require.Contains(t, view, catalog.Ellipsis)
}

func TestView_EmptyList(t *testing.T) {
	m := New(openStore(t, nil, "")).SetSize(100, 40)
	view := plain(m)

	require.Contains(t, view, EmptyText)
	require.NotContains(t, view, "Tags ▾", "tag dropdown is hidden without tag counts")
}

func TestView_NoTagsHidesDropdown(t *testing.T) {
	m := New(openStore(t, []templates.ElementTemplate{tmpl("a", "A")}, "")).SetSize(100, 40)

	require.NotContains(t, plain(m), "Tags ▾")
	m, _ = m.Update(runes("t"))
	require.False(t, m.TagsOpen())
}

func TestView_HideDates(t *testing.T) {
	list := fixtures()
	list[1].Metadata.Updated = &templates.Timestamp{Time: time.Date(2024, 3, 18, 0, 0, 0, 0, time.UTC)}

	withDates := plain(New(openStore(t, list, "")).SetSize(100, 60))
	withoutDates := plain(New(openStore(t, list, ""), WithShowDates(false)).SetSize(100, 60))

	require.Contains(t, withDates, "Payments | 2024-03-18")
	require.NotContains(t, withoutDates, "2024-03-18")
}

func TestUpdate_CursorAndSelect(t *testing.T) {
	m := newView(t)
	require.Equal(t, 0, m.Cursor())

	m, _ = m.Update(runes("j"))
	m, _ = m.Update(runes("j"))
	require.Equal(t, 2, m.Cursor())

	m, _ = m.Update(space)
	require.Equal(t, "refund", m.Store().Selected())

	m, _ = m.Update(runes("k"))
	m, _ = m.Update(enter)
	require.Equal(t, "charge", m.Store().Selected())

	for range 10 {
		m, _ = m.Update(runes("j"))
	}
	require.Equal(t, 3, m.Cursor(), "cursor clamps to the list")
}

func TestUpdate_ApplyWithoutSelectionIsIgnored(t *testing.T) {
	m := newView(t)
	require.False(t, m.CanApply())

	_, cmd := m.Update(runes("a"))
	require.Nil(t, cmd)
}

func TestUpdate_EscCloses(t *testing.T) {
	m := newView(t)

	_, cmd := m.Update(esc)
	require.NotNil(t, cmd)
	require.Equal(t, CloseMsg{}, cmd())
}

func TestUpdate_SearchFilters(t *testing.T) {
	m := newView(t)

	m, _ = m.Update(runes("/"))
	require.True(t, m.SearchFocused())

	for _, r := range "REF" {
		m, _ = m.Update(runes(string(r)))
	}
	require.Equal(t, "REF", m.Store().Filter().Search)
	visible := m.Store().Visible()
	require.Len(t, visible, 1)
	require.Equal(t, "refund", visible[0].ID)

	// keys typed into the search box do not move the cursor or close
	m, cmd := m.Update(runes("j"))
	for _, msg := range drain(cmd) {
		switch msg.(type) {
		case CloseMsg, ApplyMsg:
			t.Fatalf("typing in search emitted %T", msg)
		}
	}
	require.Equal(t, "REFj", m.Store().Filter().Search)
	require.Contains(t, plain(m), EmptyText)

	m, _ = m.Update(esc)
	require.False(t, m.SearchFocused())
	require.Equal(t, "REFj", m.Store().Filter().Search, "blurring keeps the query")
}

func TestUpdate_ExpandToggle(t *testing.T) {
	m := newView(t)

	m, _ = m.Update(runes("e"))
	require.Equal(t, "rest", m.Store().Expanded())
	view := plain(m)
	require.Contains(t, view, LessLabel)
	require.NotContains(t, view, MoreLabel)

	m, _ = m.Update(runes("e"))
	require.Empty(t, m.Store().Expanded())

	// descriptions within the limit have nothing to expand
	m, _ = m.Update(runes("j"))
	m, _ = m.Update(runes("e"))
	require.Empty(t, m.Store().Expanded())
}

func TestUpdate_TagDropdown(t *testing.T) {
	m := newView(t)

	m, _ = m.Update(runes("t"))
	require.True(t, m.TagsOpen())
	require.Contains(t, plain(m), "[ ] Payments (2)")

	// first-tag convention: options are Connectors and Payments
	m, _ = m.Update(runes("j"))
	m, cmd := m.Update(space)
	require.NotNil(t, cmd)
	msg := cmd()
	require.Equal(t, tagpicker.ToggleMsg{Tag: "Payments"}, msg)

	m, _ = m.Update(msg)
	require.Equal(t, []string{"Payments"}, m.Store().Filter().Tags)
	require.Len(t, m.Store().Visible(), 2)
	require.Contains(t, plain(m), "[x] Payments (2)")
	require.Contains(t, plain(m), "Tags (1) ▾")

	m, cmd = m.Update(esc)
	m, _ = m.Update(cmd())
	require.False(t, m.TagsOpen())

	m, _ = m.Update(runes("t"))
	m, _ = m.Update(tagpicker.ClearMsg{})
	require.Empty(t, m.Store().Filter().Tags)
	require.Len(t, m.Store().Visible(), 4)
}

func TestUpdate_TagFilterClampsCursor(t *testing.T) {
	m := newView(t)
	for range 3 {
		m, _ = m.Update(runes("j"))
	}
	require.Equal(t, 3, m.Cursor())

	m, _ = m.Update(tagpicker.ToggleMsg{Tag: "Payments"})
	require.Equal(t, 1, m.Cursor())
}

func TestUpdate_Yank(t *testing.T) {
	rec := &clipboard.Recorder{}
	m := newView(t, WithClipboard(rec), WithCopyID(true))

	m, _ = m.Update(runes("j"))
	m, _ = m.Update(runes("y"))
	require.Equal(t, "charge", rec.Last())
	require.Equal(t, "Copied charge", m.Status())
	require.Contains(t, plain(m), "Copied charge")
}

func TestUpdate_YankDisabled(t *testing.T) {
	rec := &clipboard.Recorder{}
	m := newView(t, WithClipboard(rec))

	m, _ = m.Update(runes("y"))
	require.Empty(t, rec.Copied)
	require.Empty(t, m.Status())
}

func TestUpdate_FocusCycleSkipsDisabledApply(t *testing.T) {
	m := newView(t)

	m, _ = m.Update(tab)
	require.Equal(t, focusCancel, m.focus)
	m, _ = m.Update(tab)
	require.Equal(t, focusList, m.focus, "apply is skipped while disabled")

	m, _ = m.Update(space)
	m, _ = m.Update(tab)
	m, _ = m.Update(tab)
	require.Equal(t, focusApply, m.focus)

	_, cmd := m.Update(enter)
	require.NotNil(t, cmd, "enter on the focused Apply button applies")
}

func TestUpdate_CancelButtonByKeyboard(t *testing.T) {
	m := newView(t)
	m, _ = m.Update(tab)

	_, cmd := m.Update(enter)
	require.NotNil(t, cmd)
	require.Equal(t, CloseMsg{}, cmd())
}

func TestNew_CursorStartsOnSelection(t *testing.T) {
	store := openStore(t, fixtures(), "")
	store.Select("refund")

	m := New(store)
	require.Equal(t, 2, m.Cursor())
}

func TestRefresh_ClampsAfterReload(t *testing.T) {
	m := newView(t)
	for range 3 {
		m, _ = m.Update(runes("j"))
	}
	m.Store().SetTemplates(fixtures()[:2])

	m = m.Refresh()
	require.Equal(t, 1, m.Cursor())
}

func TestView_ScrollsToCursor(t *testing.T) {
	var list []templates.ElementTemplate
	for _, id := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"} {
		list = append(list, tmpl("t-"+id, "Template "+strings.ToUpper(id), "Misc"))
	}
	m := New(openStore(t, list, "")).SetSize(100, 20)

	require.NotContains(t, plain(m), "Template J")
	for range 9 {
		m, _ = m.Update(runes("j"))
	}
	view := plain(m)
	require.Contains(t, view, "Template J")
	require.NotContains(t, view, "Template A")
}

func TestOverlay_KeepsBackground(t *testing.T) {
	m := newView(t)
	bg := strings.Repeat(strings.Repeat("#", 100)+"\n", 59) + strings.Repeat("#", 100)

	out := ansi.Strip(zone.Scan(m.Overlay(bg)))
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 60)
	require.Equal(t, strings.Repeat("#", 100), lines[0])
	require.Contains(t, out, Title)
}
