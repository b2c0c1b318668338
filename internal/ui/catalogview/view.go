package catalogview

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"

	"github.com/zjrosen/catalog/internal/catalog"
	"github.com/zjrosen/catalog/internal/keys"
	"github.com/zjrosen/catalog/internal/templates"
	"github.com/zjrosen/catalog/internal/ui/overlay"
	"github.com/zjrosen/catalog/internal/ui/styles"
)

const (
	defaultBoxWidth = 72
	maxBoxWidth     = 96
	minBoxWidth     = 40
	// rows taken by everything except the list: border, title, divider,
	// search row, header, status, help and buttons plus spacing
	chromeHeight = 13
	indent       = "    "
)

func (m Model) boxWidth() int {
	if m.width == 0 {
		return defaultBoxWidth
	}
	return min(max(m.width-4, minBoxWidth), maxBoxWidth)
}

// innerWidth is the usable content width inside border and padding.
func (m Model) innerWidth() int {
	return m.boxWidth() - 4
}

func (m Model) listHeight() int {
	if m.height == 0 {
		return 0
	}
	h := m.height - chromeHeight
	if m.focus == focusTags {
		h -= lipgloss.Height(m.tags.View())
	}
	return max(h, 3)
}

// ensureVisible scrolls so the cursor's entry is fully on screen.
func (m *Model) ensureVisible() {
	limit := m.listHeight()
	visible := m.store.Visible()
	if limit == 0 || len(visible) == 0 {
		m.offset = 0
		return
	}
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	for m.offset < m.cursor {
		used := 0
		for i := m.offset; i <= m.cursor; i++ {
			used += lipgloss.Height(m.renderItem(i, visible[i]))
		}
		if used <= limit {
			break
		}
		m.offset++
	}
	m.offset = min(m.offset, len(visible)-1)
}

// View renders the modal box.
func (m Model) View() string {
	width := m.innerWidth()

	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render(Title))
	b.WriteString("\n")
	b.WriteString(styles.DividerStyle.Render(strings.Repeat("─", width)))
	b.WriteString("\n")
	b.WriteString(m.renderSearchRow(width))
	b.WriteString("\n")
	if m.focus == focusTags {
		b.WriteString(m.tags.View())
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderList())
	b.WriteString("\n")
	if m.status != "" {
		b.WriteString(styles.MetaStyle.Render(m.status))
	}
	b.WriteString("\n")
	h := help.New()
	h.Width = width
	b.WriteString(h.ShortHelpView(keys.Catalog.ShortHelp()))
	b.WriteString("\n\n")
	b.WriteString(m.renderButtons())

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.OverlayBorderColor).
		Padding(0, 1).
		Width(m.boxWidth() - 2)
	return box.Render(b.String())
}

// Overlay renders the modal centered over a dimmed background.
func (m Model) Overlay(background string) string {
	return overlay.Place(overlay.Config{
		Width:    m.width,
		Height:   m.height,
		Position: overlay.Center,
		Dim:      true,
		DimColor: styles.TextMutedColor,
	}, m.View(), background)
}

func (m Model) renderSearchRow(width int) string {
	searchStyle := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(styles.BorderDefaultColor)
	if m.focus == focusSearch {
		searchStyle = searchStyle.BorderForeground(styles.BorderHighlightFocusColor)
	}

	counts := m.store.TagCounts()
	tagButton := ""
	if len(counts) > 0 {
		label := "Tags ▾"
		if n := len(m.store.Filter().Tags); n > 0 {
			label = fmt.Sprintf("Tags (%d) ▾", n)
		}
		style := styles.SecondaryButtonStyle
		if m.focus == focusTags {
			style = styles.SecondaryButtonFocusedStyle
		}
		tagButton = zone.Mark(m.zoneID(zoneTags), style.Render(label))
	}

	searchWidth := width - lipgloss.Width(tagButton) - 2
	input := searchStyle.Width(max(searchWidth, 10)).Render("⌕ " + m.search.View())
	input = zone.Mark(m.zoneID(zoneSearch), input)
	if tagButton == "" {
		return input
	}
	return lipgloss.JoinHorizontal(lipgloss.Bottom, input, "  ", tagButton)
}

func (m Model) renderHeader() string {
	header := styles.HeaderStyle.Render(Header)
	total := len(m.store.Templates())
	shown := len(m.store.Visible())
	if total == 0 {
		return header
	}
	return header + styles.MetaStyle.Render(fmt.Sprintf("  %d of %d", shown, total))
}

func (m Model) renderList() string {
	visible := m.store.Visible()
	if len(visible) == 0 {
		return styles.HintStyle.Render(EmptyText)
	}

	limit := m.listHeight()
	var blocks []string
	used := 0
	for i := m.offset; i < len(visible); i++ {
		block := m.renderItem(i, visible[i])
		h := lipgloss.Height(block)
		if limit > 0 && used+h > limit && len(blocks) > 0 {
			break
		}
		blocks = append(blocks, block)
		used += h
	}
	return strings.Join(blocks, "\n")
}

// renderItem draws one entry. The entry body and its More/Less toggle are
// separate click zones.
func (m Model) renderItem(i int, t templates.ElementTemplate) string {
	width := m.innerWidth()
	selected := t.ID == m.store.Selected()
	applied := t.ID == m.store.Applied()
	underCursor := i == m.cursor && (m.focus == focusList || m.focus == focusSearch)

	cursor := " "
	if underCursor {
		cursor = styles.SelectionIndicatorStyle.Render(">")
	}
	marker := "○"
	if selected {
		marker = styles.SelectionIndicatorStyle.Render("●")
	}

	suffix := ""
	if applied {
		suffix = "  " + styles.AppliedStyle.Render("✓ "+AppliedLabel)
	}
	nameWidth := width - 4 - lipgloss.Width(suffix)
	nameStyle := lipgloss.NewStyle().Foreground(styles.TextPrimaryColor)
	if selected || underCursor {
		nameStyle = nameStyle.Bold(true)
	}
	lines := []string{cursor + " " + marker + " " + nameStyle.Render(styles.TruncateString(t.Name, nameWidth)) + suffix}

	if meta := m.meta(t); meta != "" {
		lines = append(lines, indent+styles.MetaStyle.Render(styles.TruncateString(meta, width-len(indent))))
	}
	if desc := catalog.TruncatedDescription(t, m.store.Expanded()); desc != "" {
		wrapped := styles.Wrap(desc, width-len(indent))
		for _, l := range strings.Split(wrapped, "\n") {
			lines = append(lines, indent+styles.DescriptionStyle.Render(l))
		}
	}

	body := lipgloss.NewStyle().Width(width).Render(strings.Join(lines, "\n"))
	body = zone.Mark(m.zoneID(itemZone(t.ID)), body)
	if !catalog.IsTruncatable(t) {
		return body
	}

	label := MoreLabel
	if m.store.Expanded() == t.ID {
		label = LessLabel
	}
	toggle := indent + zone.Mark(m.zoneID(toggleZone(t.ID)), styles.LinkStyle.Render(label))
	return body + "\n" + toggle
}

func (m Model) meta(t templates.ElementTemplate) string {
	if m.showDates {
		return catalog.Meta(t)
	}
	name, _ := t.Catalog()
	return name
}

func (m Model) renderButtons() string {
	cancelStyle := styles.SecondaryButtonStyle
	if m.focus == focusCancel {
		cancelStyle = styles.SecondaryButtonFocusedStyle
	}
	applyStyle := styles.DisabledButtonStyle
	if m.CanApply() {
		applyStyle = styles.PrimaryButtonStyle
		if m.focus == focusApply {
			applyStyle = styles.PrimaryButtonFocusedStyle
		}
	}
	cancel := zone.Mark(m.zoneID(zoneCancel), cancelStyle.Render("Cancel"))
	apply := zone.Mark(m.zoneID(zoneApply), applyStyle.Render("Apply"))
	buttons := cancel + "  " + apply
	return lipgloss.PlaceHorizontal(m.innerWidth(), lipgloss.Right, buttons)
}
