// Package help contains the keybinding overlay of the modeler.
package help

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/catalog/internal/keys"
	"github.com/zjrosen/catalog/internal/ui/overlay"
	"github.com/zjrosen/catalog/internal/ui/styles"
)

// FilterRule describes one way of narrowing the catalog list.
type FilterRule struct {
	Name string
	Desc string
}

// FilterRules returns the catalog filtering rules shown in the overlay.
// allTags reports whether every tag counts, not only the first one.
func FilterRules(allTags bool) []FilterRule {
	tagRule := "first tag of each template (its catalog)"
	if allTags {
		tagRule = "any tag of each template"
	}
	return []FilterRule{
		{Name: "search", Desc: "case-insensitive, name or description"},
		{Name: "tags", Desc: tagRule},
		{Name: "several", Desc: "a template matching any checked tag"},
		{Name: "both", Desc: "search and tags must both match"},
	}
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.OverlayTitleColor).
			PaddingLeft(2)

	dividerStyle = lipgloss.NewStyle().
			Foreground(styles.OverlayBorderColor)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.OverlayTitleColor).
			MarginTop(1)

	keyStyle = lipgloss.NewStyle().
			Foreground(styles.TextSecondaryColor).
			Width(11)

	descStyle = lipgloss.NewStyle().
			Foreground(styles.TextDescriptionColor)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(styles.OverlayBorderColor)

	contentStyle = lipgloss.NewStyle().
			Padding(0, 2)

	footerStyle = lipgloss.NewStyle().
			Foreground(styles.TextMutedColor).
			MarginTop(1)
)

// Model holds the help view state.
type Model struct {
	app       keys.AppKeyMap
	catalog   keys.CatalogKeyMap
	tagPicker keys.TagPickerKeyMap
	allTags   bool
	width     int
	height    int
}

// New creates the help view for the shared keymaps.
func New(allTags bool) Model {
	return Model{
		app:       keys.App,
		catalog:   keys.Catalog,
		tagPicker: keys.TagPicker,
		allTags:   allTags,
	}
}

// SetSize updates dimensions.
func (m Model) SetSize(width, height int) Model {
	m.width = width
	m.height = height
	return m
}

// View renders the help overlay (standalone, no background).
func (m Model) View() string {
	return m.Overlay("")
}

// Overlay renders the help box on top of a background view.
func (m Model) Overlay(background string) string {
	return overlay.Place(overlay.Config{
		Width:    m.width,
		Height:   m.height,
		Position: overlay.Center,
	}, m.renderContent(), background)
}

func (m Model) renderContent() string {
	columnStyle := lipgloss.NewStyle().MarginRight(4)

	var modelerCol strings.Builder
	modelerCol.WriteString(sectionStyle.Render("Modeler"))
	modelerCol.WriteString("\n")
	for _, group := range m.app.FullHelp() {
		for _, b := range group {
			modelerCol.WriteString(renderBinding(b))
		}
	}

	var catalogCol strings.Builder
	catalogCol.WriteString(sectionStyle.Render("Catalog"))
	catalogCol.WriteString("\n")
	for _, group := range m.catalog.FullHelp() {
		for _, b := range group {
			catalogCol.WriteString(renderBinding(b))
		}
	}

	var tagsCol strings.Builder
	tagsCol.WriteString(sectionStyle.Render("Tag list"))
	tagsCol.WriteString("\n")
	for _, b := range []key.Binding{m.tagPicker.Up, m.tagPicker.Down, m.tagPicker.Toggle, m.tagPicker.Clear, m.tagPicker.Close} {
		tagsCol.WriteString(renderBinding(b))
	}

	columns := lipgloss.JoinHorizontal(
		lipgloss.Top,
		columnStyle.Render(modelerCol.String()),
		columnStyle.Render(catalogCol.String()),
		tagsCol.String(),
	)

	ruleLabel := lipgloss.NewStyle().Foreground(styles.TextSecondaryColor).Width(10)
	ruleValue := lipgloss.NewStyle().Foreground(styles.TextMutedColor)
	var rules strings.Builder
	rules.WriteString(sectionStyle.Render("Filtering"))
	rules.WriteString("\n")
	for _, r := range FilterRules(m.allTags) {
		rules.WriteString(ruleLabel.Render(r.Name) + ruleValue.Render(r.Desc) + "\n")
	}

	boxWidth := max(lipgloss.Width(columns), lipgloss.Width(rules.String())) + 4
	body := contentStyle.Render(columns + "\n" + rules.String() + "\n" + footerStyle.Render("Press ? or Esc to close"))

	var content strings.Builder
	content.WriteString(titleStyle.Render("Keybindings"))
	content.WriteString("\n")
	content.WriteString(dividerStyle.Render(strings.Repeat("─", boxWidth)))
	content.WriteString("\n")
	content.WriteString(body)

	return boxStyle.Width(boxWidth).Render(content.String())
}

func renderBinding(b key.Binding) string {
	h := b.Help()
	return keyStyle.Render(h.Key) + descStyle.Render(h.Desc) + "\n"
}
