package plugin

import (
	"slices"

	"github.com/zjrosen/catalog/internal/host"
	"github.com/zjrosen/catalog/internal/workspace"
)

// EntryCatalog is the id of the properties entry that opens the catalog.
const EntryCatalog = "elementTemplate-catalog"

// PropertiesProvider adds a "Select Element Template" link right after the
// template chooser of the general group.
type PropertiesProvider struct {
	Open func()
}

// GetTabs implements host.PropertiesProvider.
func (p PropertiesProvider) GetTabs(_ workspace.Element, tabs []host.PropertiesTab) []host.PropertiesTab {
	ti := slices.IndexFunc(tabs, func(t host.PropertiesTab) bool { return t.ID == host.TabGeneral })
	if ti < 0 {
		return tabs
	}
	groups := tabs[ti].Groups
	gi := slices.IndexFunc(groups, func(g host.PropertiesGroup) bool { return g.ID == host.GroupGeneral })
	if gi < 0 {
		return tabs
	}
	entries := groups[gi].Entries
	ei := slices.IndexFunc(entries, func(e host.PropertiesEntry) bool { return e.ID == host.EntryTemplateChooser })
	if ei < 0 {
		return tabs
	}

	link := host.PropertiesEntry{
		ID:      EntryCatalog,
		Label:   "Select Element Template",
		Kind:    host.EntryKindLink,
		OnClick: p.Open,
	}
	groups[gi].Entries = slices.Insert(slices.Clone(entries), ei+1, link)
	return tabs
}
