package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all key bindings
type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Left     key.Binding
	Right    key.Binding
	Tab      key.Binding
	Enter    key.Binding
	NextView key.Binding
	Add      key.Binding
	Edit     key.Binding
	Tag      key.Binding
	Pin      key.Binding
	Archive  key.Binding
	Hide     key.Binding
	Delete   key.Binding
	Color    key.Binding
	Visible  key.Binding
	Rename   key.Binding
	Filter   key.Binding
	Help     key.Binding
	Quit     key.Binding
	Escape   key.Binding
	Refresh  key.Binding
}

var keys = keyMap{
	Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Left:     key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "left pane")),
	Right:    key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "right pane")),
	Tab:      key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch pane")),
	Enter:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "confirm")),
	NextView: key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "next view")),
	Add:      key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add idea")),
	Edit:     key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit text")),
	Tag:      key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "set categories")),
	Pin:      key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "toggle pin")),
	Archive:  key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "toggle archive")),
	Hide:     key.NewBinding(key.WithKeys("H"), key.WithHelp("H", "toggle hidden")),
	Delete:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
	Color:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "category colour")),
	Visible:  key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "show/hide category")),
	Rename:   key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "rename category")),
	Filter:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
	Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Escape:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	Refresh:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
}
