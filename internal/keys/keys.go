// Package keys contains keybinding definitions.
package keys

import "github.com/charmbracelet/bubbles/key"

// CatalogKeyMap defines the keybindings of the catalog modal.
type CatalogKeyMap struct {
	// Navigation
	Up        key.Binding
	Down      key.Binding
	NextFocus key.Binding
	PrevFocus key.Binding

	// Actions
	FocusSearch key.Binding
	Select      key.Binding
	Expand      key.Binding
	Tags        key.Binding
	Apply       key.Binding
	Yank        key.Binding
	Cancel      key.Binding
}

// DefaultCatalogKeyMap returns the default catalog keybindings.
func DefaultCatalogKeyMap() CatalogKeyMap {
	return CatalogKeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "move down"),
		),
		NextFocus: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next control"),
		),
		PrevFocus: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "previous control"),
		),
		FocusSearch: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		Select: key.NewBinding(
			key.WithKeys(" ", "enter"),
			key.WithHelp("space/enter", "select template"),
		),
		Expand: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "more/less"),
		),
		Tags: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "filter tags"),
		),
		Apply: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "apply"),
		),
		Yank: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy template ID"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
	}
}

// ShortHelp returns keybindings for the catalog footer hint.
func (k CatalogKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.FocusSearch, k.Select, k.Expand, k.Tags, k.Apply, k.Cancel}
}

// FullHelp returns keybindings grouped by concern.
func (k CatalogKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.NextFocus, k.PrevFocus},
		{k.FocusSearch, k.Select, k.Expand, k.Tags, k.Apply, k.Yank, k.Cancel},
	}
}

// SearchKeyMap defines the keys that leave the catalog search input.
type SearchKeyMap struct {
	Blur   key.Binding
	Submit key.Binding
}

// DefaultSearchKeyMap returns the search input keybindings.
func DefaultSearchKeyMap() SearchKeyMap {
	return SearchKeyMap{
		Blur: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "blur input"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter", "down", "tab"),
			key.WithHelp("enter", "go to results"),
		),
	}
}

// TagPickerKeyMap defines the tag dropdown keybindings.
type TagPickerKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Toggle key.Binding
	Clear  key.Binding
	Close  key.Binding
}

// DefaultTagPickerKeyMap returns the tag dropdown keybindings.
func DefaultTagPickerKeyMap() TagPickerKeyMap {
	return TagPickerKeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up", "ctrl+p"),
			key.WithHelp("k/↑", "move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down", "ctrl+n"),
			key.WithHelp("j/↓", "move down"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" ", "x"),
			key.WithHelp("space", "toggle tag"),
		),
		Clear: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "clear tags"),
		),
		Close: key.NewBinding(
			key.WithKeys("esc", "enter", "t"),
			key.WithHelp("esc", "close"),
		),
	}
}

// AppKeyMap defines the host application keybindings.
type AppKeyMap struct {
	Up          key.Binding
	Down        key.Binding
	NextTab     key.Binding
	PrevTab     key.Binding
	OpenCatalog key.Binding
	Reload      key.Binding
	ToggleLog   key.Binding
	Help        key.Binding
	Quit        key.Binding
}

// DefaultAppKeyMap returns the host application keybindings.
func DefaultAppKeyMap() AppKeyMap {
	return AppKeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "previous element"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "next element"),
		),
		NextTab: key.NewBinding(
			key.WithKeys("tab", "l", "right"),
			key.WithHelp("tab", "next diagram"),
		),
		PrevTab: key.NewBinding(
			key.WithKeys("shift+tab", "h", "left"),
			key.WithHelp("shift+tab", "previous diagram"),
		),
		OpenCatalog: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "open catalog"),
		),
		Reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload templates"),
		),
		ToggleLog: key.NewBinding(
			key.WithKeys("ctrl+x"),
			key.WithHelp("ctrl+x", "toggle log"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp returns keybindings for the status bar.
func (k AppKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.NextTab, k.OpenCatalog, k.Help, k.Quit}
}

// FullHelp returns keybindings grouped by concern.
func (k AppKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.NextTab, k.PrevTab},
		{k.OpenCatalog, k.Reload, k.ToggleLog, k.Help, k.Quit},
	}
}

// Shared keymaps used by components.
var (
	Catalog   = DefaultCatalogKeyMap()
	Search    = DefaultSearchKeyMap()
	TagPicker = DefaultTagPickerKeyMap()
	App       = DefaultAppKeyMap()
)
