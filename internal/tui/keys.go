package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Next      key.Binding
	Reset     key.Binding
	HardReset key.Binding
	Save      key.Binding
	Discard   key.Binding
	Up        key.Binding
	Down      key.Binding
	MoveUp    key.Binding
	MoveDown  key.Binding
	Add       key.Binding
	Rename    key.Binding
	Describe  key.Binding
	Delete    key.Binding
	Help      key.Binding
	Quit      key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Next:      key.NewBinding(key.WithKeys(" ", "enter"), key.WithHelp("space", "split")),
		Reset:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset")),
		HardReset: key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "reset bests")),
		Save:      key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "save")),
		Discard:   key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "discard")),
		Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "select up")),
		Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "select down")),
		MoveUp:    key.NewBinding(key.WithKeys("K", "shift+up"), key.WithHelp("K", "move up")),
		MoveDown:  key.NewBinding(key.WithKeys("J", "shift+down"), key.WithHelp("J", "move down")),
		Add:       key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
		Rename:    key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "rename")),
		Describe:  key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "describe")),
		Delete:    key.NewBinding(key.WithKeys("D", "delete"), key.WithHelp("D", "delete")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Reset, k.Save, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Reset, k.HardReset, k.Save, k.Discard},
		{k.Up, k.Down, k.MoveUp, k.MoveDown},
		{k.Add, k.Rename, k.Describe, k.Delete},
		{k.Help, k.Quit},
	}
}
