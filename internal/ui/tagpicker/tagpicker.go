// Package tagpicker provides the multi-select tag dropdown of the catalog.
package tagpicker

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"

	"github.com/zjrosen/catalog/internal/keys"
	"github.com/zjrosen/catalog/internal/ui/styles"
)

// Option is one tag with the number of templates carrying it.
type Option struct {
	Tag   string
	Count int
}

// ToggleMsg is sent when a tag is checked or unchecked.
type ToggleMsg struct {
	Tag string
}

// ClearMsg is sent when every tag should be unchecked.
type ClearMsg struct{}

// CloseMsg is sent when the dropdown is dismissed.
type CloseMsg struct{}

// Model holds the dropdown state. Checked tags are owned by the caller and
// passed back in with SetChecked after every toggle.
type Model struct {
	options  []Option
	checked  map[string]bool
	cursor   int
	width    int
	zoneBase string
}

// New creates a dropdown from tag counts. Options are sorted by tag name.
func New(counts map[string]int) Model {
	options := make([]Option, 0, len(counts))
	for tag, n := range counts {
		options = append(options, Option{Tag: tag, Count: n})
	}
	slices.SortFunc(options, func(a, b Option) int { return strings.Compare(a.Tag, b.Tag) })
	return Model{
		options:  options,
		checked:  map[string]bool{},
		zoneBase: zone.NewPrefix(),
	}
}

// SetCounts replaces the options keeping the cursor on the same tag when it
// still exists.
func (m Model) SetCounts(counts map[string]int) Model {
	current := m.Current().Tag
	next := New(counts)
	next.checked = m.checked
	next.width = m.width
	next.zoneBase = m.zoneBase
	for i, opt := range next.options {
		if opt.Tag == current {
			next.cursor = i
		}
	}
	return next
}

// SetChecked marks the given tags as checked.
func (m Model) SetChecked(tags []string) Model {
	m.checked = make(map[string]bool, len(tags))
	for _, t := range tags {
		m.checked[t] = true
	}
	return m
}

// SetWidth sets the box width. Zero picks a width from the longest label.
func (m Model) SetWidth(width int) Model {
	m.width = width
	return m
}

// Options returns the dropdown options in display order.
func (m Model) Options() []Option { return m.options }

// Cursor returns the highlighted option index.
func (m Model) Cursor() int { return m.cursor }

// Current returns the highlighted option.
func (m Model) Current() Option {
	if m.cursor >= 0 && m.cursor < len(m.options) {
		return m.options[m.cursor]
	}
	return Option{}
}

// Checked reports whether tag is checked.
func (m Model) Checked(tag string) bool { return m.checked[tag] }

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.TagPicker.Down):
			if m.cursor < len(m.options)-1 {
				m.cursor++
			}
		case key.Matches(msg, keys.TagPicker.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.TagPicker.Toggle):
			if opt := m.Current(); opt.Tag != "" {
				return m, toggle(opt.Tag)
			}
		case key.Matches(msg, keys.TagPicker.Clear):
			return m, func() tea.Msg { return ClearMsg{} }
		case key.Matches(msg, keys.TagPicker.Close):
			return m, func() tea.Msg { return CloseMsg{} }
		}

	case tea.MouseMsg:
		if msg.Button != tea.MouseButtonLeft || msg.Action != tea.MouseActionRelease {
			return m, nil
		}
		for i, opt := range m.options {
			if z := zone.Get(m.zoneID(i)); z != nil && z.InBounds(msg) {
				m.cursor = i
				return m, toggle(opt.Tag)
			}
		}
	}
	return m, nil
}

func toggle(tag string) tea.Cmd {
	return func() tea.Msg { return ToggleMsg{Tag: tag} }
}

func (m Model) zoneID(i int) string {
	return fmt.Sprintf("%stag-%d", m.zoneBase, i)
}

// Label renders an option as "[x] Tag (n)".
func Label(opt Option, checked bool) string {
	box := "[ ]"
	if checked {
		box = "[x]"
	}
	return fmt.Sprintf("%s %s (%d)", box, opt.Tag, opt.Count)
}

// View renders the dropdown box.
func (m Model) View() string {
	width := m.width
	if width == 0 {
		width = 20
		for _, opt := range m.options {
			width = max(width, lipgloss.Width(Label(opt, false))+2)
		}
	}

	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(styles.OverlayTitleColor).
		PaddingLeft(1).
		Render("Tags")
	divider := styles.DividerStyle.Render(strings.Repeat("─", width))

	var rows strings.Builder
	for i, opt := range m.options {
		label := styles.TruncateString(Label(opt, m.checked[opt.Tag]), width-1)
		labelStyle := styles.TagStyle
		var line string
		if i == m.cursor {
			line = styles.SelectionIndicatorStyle.Render(">") + labelStyle.Bold(true).Render(label)
		} else {
			line = " " + labelStyle.Render(label)
		}
		rows.WriteString(zone.Mark(m.zoneID(i), line))
		if i < len(m.options)-1 {
			rows.WriteString("\n")
		}
	}
	if len(m.options) == 0 {
		rows.WriteString(styles.HintStyle.Render(" No tags"))
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.OverlayBorderColor).
		Width(width)
	return box.Render(title + "\n" + divider + "\n" + rows.String())
}
