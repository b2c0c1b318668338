package app

import (
	"fmt"
	"strconv"
	"strings"

	bubbleshelp "github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"

	"github.com/zjrosen/catalog/internal/host"
	"github.com/zjrosen/catalog/internal/keys"
	"github.com/zjrosen/catalog/internal/ui/styles"
	"github.com/zjrosen/catalog/internal/workspace"
)

const (
	defaultWidth  = 100
	defaultHeight = 30
	minPanelWidth = 30
)

// View implements tea.Model.
func (m Model) View() string {
	width, height := m.size()

	toolbar := m.renderToolbar(width)
	tabs := m.renderTabs(width)
	footer := m.renderFooter(width)

	bodyHeight := max(height-lipgloss.Height(toolbar)-lipgloss.Height(tabs)-lipgloss.Height(footer), 4)
	leftWidth := max(width/2, minPanelWidth)
	rightWidth := max(width-leftWidth, minPanelWidth)

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		styles.Panel{Title: "Elements", Width: leftWidth, Height: bodyHeight, Focused: !m.catalogOpen}.Render(m.renderElements(leftWidth-2)),
		styles.Panel{Title: "Properties", Width: rightWidth, Height: bodyHeight}.Render(m.renderProperties(rightWidth-2)),
	)

	view := lipgloss.JoinVertical(lipgloss.Left, toolbar, tabs, body, footer)
	if m.catalogOpen {
		view = m.catalog.Overlay(view)
	}
	if m.helpOpen {
		view = m.help.SetSize(width, height).Overlay(view)
	}
	view = m.toaster.Overlay(view, width, height)
	if m.logOverlay.Visible() {
		view = m.logOverlay.Overlay(view)
	}
	return zone.Scan(view)
}

func (m Model) size() (int, int) {
	w, h := m.width, m.height
	if w <= 0 {
		w = defaultWidth
	}
	if h <= 0 {
		h = defaultHeight
	}
	return w, h
}

func (m Model) renderToolbar(width int) string {
	parts := []string{styles.TitleStyle.Render("Modeler")}
	for _, f := range m.host.Slots().Fills(host.SlotToolbar) {
		parts = append(parts, zone.Mark(m.zoneID(zoneFillPrefix+f.ID()), styles.SecondaryButtonStyle.Render(f.Label)))
	}
	return lipgloss.NewStyle().Width(width).Render(strings.Join(parts, "  "))
}

func (m Model) renderTabs(width int) string {
	active, _, _ := m.host.ActiveTab()
	var parts []string
	for i, tab := range m.host.Tabs() {
		style := lipgloss.NewStyle().Foreground(styles.TabTypeColor(tab.Type)).Padding(0, 1)
		if i == active {
			style = style.Bold(true).Underline(true)
		}
		parts = append(parts, zone.Mark(m.zoneID(zoneTabPrefix+strconv.Itoa(i)), style.Render(tab.Name)))
	}
	if len(parts) == 0 {
		parts = append(parts, styles.HintStyle.Render("No diagrams open"))
	}
	return lipgloss.NewStyle().Width(width).Render(strings.Join(parts, styles.DividerStyle.Render("│")))
}

func (m Model) renderElements(width int) string {
	_, tab, ok := m.host.ActiveTab()
	if !ok || len(tab.Elements) == 0 {
		return styles.HintStyle.Render("No elements")
	}
	selected, _ := m.host.SelectedElement()

	lines := make([]string, 0, len(tab.Elements))
	for _, el := range tab.Elements {
		prefix := "  "
		if el.ID == selected.ID {
			prefix = styles.SelectionIndicatorStyle.Render(">") + " "
		}
		label := el.Name
		if label == "" {
			label = el.ID
		}
		line := prefix + label + " " + styles.MetaStyle.Render(el.Type)
		if id := el.TemplateID(); id != "" {
			line += " " + styles.AppliedStyle.Render("◆")
		}
		line = styles.PadRight(styles.TruncateString(line, width), width)
		lines = append(lines, zone.Mark(m.zoneID(zoneElementPrefix+el.ID), line))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderProperties(width int) string {
	tabs := m.host.Properties()
	if len(tabs) == 0 {
		if _, tab, ok := m.host.ActiveTab(); ok && tab.Type != workspace.TypeBPMN {
			return styles.HintStyle.Render("No properties for " + strings.ToUpper(tab.Type) + " diagrams")
		}
		return styles.HintStyle.Render("Select an element")
	}

	var b strings.Builder
	for _, tab := range tabs {
		for _, group := range tab.Groups {
			b.WriteString(styles.HeaderStyle.Render(group.Label))
			b.WriteString("\n")
			for _, entry := range group.Entries {
				b.WriteString(m.renderEntry(entry, width))
				b.WriteString("\n")
			}
		}
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func (m Model) renderEntry(entry host.PropertiesEntry, width int) string {
	if entry.Kind == host.EntryKindLink {
		return zone.Mark(m.zoneID(zoneEntryPrefix+entry.ID), styles.LinkStyle.Render(entry.Label))
	}
	line := fmt.Sprintf("%s: %s", styles.MetaStyle.Render(entry.Label), entry.Value)
	return styles.TruncateString(line, width)
}

func (m Model) renderFooter(width int) string {
	status := ""
	switch {
	case m.status != "" && m.statusErr:
		status = styles.ErrorStyle.Render(m.status)
	case m.status != "":
		status = m.status
	}
	h := bubbleshelp.New()
	h.Width = width
	return lipgloss.JoinVertical(lipgloss.Left,
		styles.StatusBarStyle.Width(width).Render(status),
		h.ShortHelpView(keys.App.ShortHelp()),
	)
}
