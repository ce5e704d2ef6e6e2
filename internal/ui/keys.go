package ui

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines the top-level key bindings
type KeyMap struct {
	Up         key.Binding
	Down       key.Binding
	PageUp     key.Binding
	PageDown   key.Binding
	Home       key.Binding
	End        key.Binding
	NextTab    key.Binding
	PrevTab    key.Binding
	FocusList  key.Binding
	FocusView  key.Binding
	Search     key.Binding
	Settings   key.Binding
	Rename     key.Binding
	Delete     key.Binding
	Cleanup    key.Binding
	Restore    key.Binding
	EmptyTrash key.Binding
	Export     key.Binding
	SortKey    key.Binding
	SortDir    key.Binding
	Theme      key.Binding
	Resume     key.Binding
	Refresh    key.Binding
	Help       key.Binding
	Quit       key.Binding
	ForceQuit  key.Binding
}

// DefaultKeyMap returns the default key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "scroll preview up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdn", "scroll preview down"),
		),
		Home: key.NewBinding(
			key.WithKeys("home"),
			key.WithHelp("home", "first"),
		),
		End: key.NewBinding(
			key.WithKeys("end"),
			key.WithHelp("end", "last"),
		),
		NextTab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "switch tab"),
		),
		PrevTab: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("⇧tab", "switch tab"),
		),
		FocusList: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "focus list"),
		),
		FocusView: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "focus preview"),
		),
		Search: key.NewBinding(
			key.WithKeys("ctrl+f", "/"),
			key.WithHelp("/", "search"),
		),
		Settings: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "settings"),
		),
		Rename: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "rename"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "trash"),
		),
		Cleanup: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "trash empty sessions"),
		),
		Restore: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "restore"),
		),
		EmptyTrash: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "empty trash"),
		),
		Export: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "export"),
		),
		SortKey: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "sort by"),
		),
		SortDir: key.NewBinding(
			key.WithKeys("S"),
			key.WithHelp("S", "reverse sort"),
		),
		Theme: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "theme"),
		),
		Resume: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "resume"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "refresh"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc"),
			key.WithHelp("q", "quit"),
		),
		ForceQuit: key.NewBinding(
			key.WithKeys("ctrl+c"),
		),
	}
}

// forTab enables the bindings that only apply on one tab
func (k *KeyMap) forTab(tab Tab) {
	onSessions := tab == TabSessions
	k.Delete.SetEnabled(onSessions)
	k.Cleanup.SetEnabled(onSessions)
	k.Resume.SetEnabled(onSessions)
	k.Restore.SetEnabled(!onSessions)
	k.EmptyTrash.SetEnabled(!onSessions)
}

// ShortHelp implements help.KeyMap
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.Resume, k.Search, k.Delete, k.Restore, k.EmptyTrash,
		k.Rename, k.SortKey, k.NextTab, k.Help, k.Quit,
	}
}

// FullHelp implements help.KeyMap
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp, k.PageDown, k.Home, k.End, k.NextTab, k.FocusList, k.FocusView},
		{k.Resume, k.Delete, k.Cleanup, k.Restore, k.EmptyTrash, k.Rename, k.Export},
		{k.Search, k.SortKey, k.SortDir, k.Settings, k.Theme, k.Refresh, k.Help, k.Quit},
	}
}
