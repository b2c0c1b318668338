package help

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/catalog/internal/keys"
)

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

func TestView_ListsEveryKeymap(t *testing.T) {
	view := New(false).SetSize(140, 50).View()

	for _, section := range []string{"Keybindings", "Modeler", "Catalog", "Tag list", "Filtering"} {
		require.Contains(t, view, section)
	}
	for _, group := range keys.App.FullHelp() {
		for _, b := range group {
			require.Contains(t, view, b.Help().Desc)
		}
	}
	require.Contains(t, view, keys.Catalog.Apply.Help().Desc)
	require.Contains(t, view, keys.TagPicker.Clear.Help().Desc)
	require.Contains(t, view, "Press ? or Esc to close")
}

func TestFilterRules_TagMode(t *testing.T) {
	require.Contains(t, FilterRules(false)[1].Desc, "first tag")
	require.Contains(t, FilterRules(true)[1].Desc, "any tag")

	require.Contains(t, New(true).SetSize(140, 50).View(), "any tag of each template")
}

func TestOverlay_KeepsBackgroundOutsideBox(t *testing.T) {
	bg := strings.Repeat(strings.Repeat("#", 140)+"\n", 49) + strings.Repeat("#", 140)
	out := New(false).SetSize(140, 50).Overlay(bg)

	lines := strings.Split(out, "\n")
	require.Len(t, lines, 50)
	require.Equal(t, strings.Repeat("#", 140), lines[0])
	require.Contains(t, out, "Keybindings")
}
