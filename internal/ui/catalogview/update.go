package catalogview

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"

	"github.com/zjrosen/catalog/internal/catalog"
	"github.com/zjrosen/catalog/internal/keys"
	"github.com/zjrosen/catalog/internal/ui/tagpicker"
)

// Update implements the modal's message handling.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.SetSize(msg.Width, msg.Height), nil

	case tagpicker.ToggleMsg:
		m.store.ToggleTag(msg.Tag)
		m.tags = m.tags.SetChecked(m.store.Filter().Tags)
		m.clampCursor()
		return m, nil

	case tagpicker.ClearMsg:
		m.store.SetTags(nil)
		m.tags = m.tags.SetChecked(nil)
		m.clampCursor()
		return m, nil

	case tagpicker.CloseMsg:
		m.focus = focusList
		return m, nil

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		switch m.focus {
		case focusSearch:
			return m.updateSearch(msg)
		case focusTags:
			var cmd tea.Cmd
			m.tags, cmd = m.tags.Update(msg)
			return m, cmd
		default:
			return m.updateList(msg)
		}
	}

	if m.focus == focusSearch {
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Search.Blur), key.Matches(msg, keys.Search.Submit):
		m.blurSearch()
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if m.search.Value() != m.store.Filter().Search {
		m.store.SetSearch(m.search.Value())
		m.cursor = 0
		m.clampCursor()
	}
	return m, cmd
}

func (m Model) updateList(msg tea.KeyMsg) (Model, tea.Cmd) {
	m.status = ""
	switch {
	case key.Matches(msg, keys.Catalog.Cancel):
		return m, closeCmd

	case key.Matches(msg, keys.Catalog.FocusSearch):
		return m, m.focusSearch()

	case key.Matches(msg, keys.Catalog.NextFocus):
		m.cycleFocus(1)
		return m, nil

	case key.Matches(msg, keys.Catalog.PrevFocus):
		m.cycleFocus(-1)
		return m, nil

	case key.Matches(msg, keys.Catalog.Down):
		m.focus = focusList
		m.moveCursor(1)
		return m, nil

	case key.Matches(msg, keys.Catalog.Up):
		m.focus = focusList
		m.moveCursor(-1)
		return m, nil

	case key.Matches(msg, keys.Catalog.Select):
		switch m.focus {
		case focusCancel:
			return m, closeCmd
		case focusApply:
			return m, m.apply()
		}
		if t, ok := m.Current(); ok {
			m.store.Select(t.ID)
		}
		return m, nil

	case key.Matches(msg, keys.Catalog.Expand):
		if t, ok := m.Current(); ok && catalog.IsTruncatable(t) {
			m.store.ToggleExpanded(t.ID)
			m.ensureVisible()
		}
		return m, nil

	case key.Matches(msg, keys.Catalog.Tags):
		m.openTags()
		return m, nil

	case key.Matches(msg, keys.Catalog.Apply):
		return m, m.apply()

	case key.Matches(msg, keys.Catalog.Yank):
		return m.copyCurrent(), nil
	}
	return m, nil
}

func (m *Model) focusSearch() tea.Cmd {
	m.focus = focusSearch
	return m.search.Focus()
}

func (m *Model) blurSearch() {
	m.search.Blur()
	m.focus = focusList
}

// openTags opens the dropdown. It only exists while some template has tags.
func (m *Model) openTags() {
	counts := m.store.TagCounts()
	if len(counts) == 0 {
		return
	}
	m.search.Blur()
	m.tags = tagpicker.New(counts).SetChecked(m.store.Filter().Tags)
	m.focus = focusTags
}

// cycleFocus moves between the list and the footer buttons. A disabled
// Apply button is skipped.
func (m *Model) cycleFocus(delta int) {
	order := []focus{focusList, focusCancel}
	if m.CanApply() {
		order = append(order, focusApply)
	}
	idx := 0
	for i, f := range order {
		if f == m.focus {
			idx = i
		}
	}
	idx = (idx + delta + len(order)) % len(order)
	m.focus = order[idx]
}

func (m Model) handleMouse(msg tea.MouseMsg) (Model, tea.Cmd) {
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.moveCursor(-1)
		return m, nil
	case tea.MouseButtonWheelDown:
		m.moveCursor(1)
		return m, nil
	}
	if msg.Button != tea.MouseButtonLeft || msg.Action != tea.MouseActionRelease {
		return m, nil
	}

	if m.focus == focusTags {
		if cmd := m.tagClick(msg); cmd != nil {
			return m, cmd
		}
	}

	switch {
	case m.inZone(zoneSearch, msg):
		return m, m.focusSearch()
	case m.inZone(zoneTags, msg):
		if m.focus == focusTags {
			m.focus = focusList
		} else {
			m.openTags()
		}
		return m, nil
	case m.inZone(zoneCancel, msg):
		return m, closeCmd
	case m.inZone(zoneApply, msg):
		return m, m.apply()
	}

	for i, t := range m.store.Visible() {
		// The More/Less toggle sits inside the item zone and must win,
		// otherwise expanding a description would also select it.
		if catalog.IsTruncatable(t) && m.inZone(toggleZone(t.ID), msg) {
			m.cursor = i
			m.store.ToggleExpanded(t.ID)
			m.ensureVisible()
			return m, nil
		}
		if m.inZone(itemZone(t.ID), msg) {
			if m.focus == focusSearch {
				m.blurSearch()
			}
			m.focus = focusList
			m.cursor = i
			m.store.Select(t.ID)
			return m, nil
		}
	}
	return m, nil
}

func (m *Model) tagClick(msg tea.MouseMsg) tea.Cmd {
	var cmd tea.Cmd
	m.tags, cmd = m.tags.Update(msg)
	return cmd
}

const (
	zoneSearch = "search"
	zoneTags   = "tags"
	zoneCancel = "cancel"
	zoneApply  = "apply"
)

func itemZone(id string) string   { return "item:" + id }
func toggleZone(id string) string { return "toggle:" + id }

func (m Model) zoneID(name string) string { return m.zoneBase + name }

func (m Model) inZone(name string, msg tea.MouseMsg) bool {
	z := zone.Get(m.zoneID(name))
	return z != nil && z.InBounds(msg)
}
