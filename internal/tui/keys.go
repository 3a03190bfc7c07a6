package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all key bindings
type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Tab     key.Binding
	Enter   key.Binding
	Add     key.Binding
	Edit    key.Binding
	Done    key.Binding
	Delete  key.Binding
	Lookup  key.Binding
	Refresh key.Binding
	Help    key.Binding
	Quit    key.Binding
	Escape  key.Binding
	Yes     key.Binding
	No      key.Binding
}

var keys = keyMap{
	Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Tab:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch list")),
	Enter:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select/toggle")),
	Add:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add activity")),
	Edit:    key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
	Done:    key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "finish/revert")),
	Delete:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
	Lookup:  key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "find by id")),
	Refresh: key.NewBinding(key.WithKeys("R", "r"), key.WithHelp("r", "reload")),
	Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Escape:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	Yes:     key.NewBinding(key.WithKeys("y", "Y", "enter"), key.WithHelp("y", "confirm")),
	No:      key.NewBinding(key.WithKeys("n", "N", "esc"), key.WithHelp("n", "cancel")),
}
