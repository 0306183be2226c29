package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up      key.Binding
	down    key.Binding
	more    key.Binding
	reload  key.Binding
	collage key.Binding
	open    key.Binding
	login   key.Binding
	back    key.Binding
	quit    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		more:    key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "load more")),
		reload:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		collage: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "collage")),
		open:    key.NewBinding(key.WithKeys("o", "enter"), key.WithHelp("o", "open in spotify")),
		login:   key.NewBinding(key.WithKeys("l", "enter"), key.WithHelp("l", "log in")),
		back:    key.NewBinding(key.WithKeys("esc", "enter"), key.WithHelp("esc", "back")),
		quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.more, k.reload, k.collage, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.open},
		{k.more, k.reload, k.collage},
		{k.quit},
	}
}
