package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up, Down     key.Binding
	Enter, Edit  key.Binding
	Kind, Source key.Binding
	HalfUp       key.Binding
	HalfDown     key.Binding
	PageUp       key.Binding
	PageDown     key.Binding
	Quit         key.Binding
}

var keys = keyMap{
	Up:       key.NewBinding(key.WithKeys("up", "ctrl+k"), key.WithHelp("up/C-k", "previous result")),
	Down:     key.NewBinding(key.WithKeys("down", "ctrl+j"), key.WithHelp("dn/C-j", "next result")),
	Enter:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "copy output path")),
	Edit:     key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("C-o", "open in editor")),
	Kind:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "cycle text/thinking filter")),
	Source:   key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("S-tab", "cycle platform filter")),
	HalfUp:   key.NewBinding(key.WithKeys("ctrl+u"), key.WithHelp("C-u", "preview half page up")),
	HalfDown: key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("C-d", "preview half page down")),
	PageUp:   key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "preview page up")),
	PageDown: key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "preview page down")),
	Quit:     key.NewBinding(key.WithKeys("esc", "ctrl+c"), key.WithHelp("esc", "quit")),
}
