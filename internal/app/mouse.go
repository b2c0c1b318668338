package app

import (
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"

	"github.com/zjrosen/catalog/internal/host"
	"github.com/zjrosen/catalog/internal/log"
)

const (
	zoneFillPrefix    = "fill:"
	zoneTabPrefix     = "tab:"
	zoneElementPrefix = "element:"
	zoneEntryPrefix   = "entry:"
)

func (m Model) zoneID(name string) string { return m.zoneBase + name }

func (m Model) inZone(name string, msg tea.MouseMsg) bool {
	z := zone.Get(m.zoneID(name))
	return z != nil && z.InBounds(msg)
}

// handleClick dispatches a left click on the modeler chrome. Opening the
// catalog is picked up by afterHostInput.
func (m *Model) handleClick(msg tea.MouseMsg) {
	if msg.Button != tea.MouseButtonLeft || msg.Action != tea.MouseActionRelease {
		return
	}

	for _, f := range m.host.Slots().Fills(host.SlotToolbar) {
		if m.inZone(zoneFillPrefix+f.ID(), msg) {
			if f.OnClick != nil {
				f.OnClick()
			}
			return
		}
	}

	for i := range m.host.Tabs() {
		if m.inZone(zoneTabPrefix+strconv.Itoa(i), msg) {
			if err := m.host.SetActiveTab(i); err != nil {
				m.setStatus(err.Error(), true)
			}
			return
		}
	}

	if _, tab, ok := m.host.ActiveTab(); ok {
		for _, el := range tab.Elements {
			if m.inZone(zoneElementPrefix+el.ID, msg) {
				if err := m.host.Select(el.ID); err != nil {
					log.ErrorErr(log.CatUI, "Select element failed", err, "element", el.ID)
				}
				return
			}
		}
	}

	for _, tab := range m.host.Properties() {
		for _, group := range tab.Groups {
			for _, entry := range group.Entries {
				if entry.OnClick == nil || entry.Kind != host.EntryKindLink {
					continue
				}
				if m.inZone(zoneEntryPrefix+entry.ID, msg) {
					entry.OnClick()
					return
				}
			}
		}
	}
}
