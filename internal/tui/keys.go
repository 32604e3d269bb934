package tui

import "github.com/charmbracelet/bubbles/key"

// GlobalKeys are always active.
type GlobalKeys struct {
	Quit key.Binding
	Help key.Binding
	Tab  key.Binding
}

var globalKeys = GlobalKeys{
	Quit: key.NewBinding(
		key.WithKeys("ctrl+q"),
		key.WithHelp("Ctrl+q", "quit"),
	),
	Help: key.NewBinding(
		key.WithKeys("ctrl+h"),
		key.WithHelp("Ctrl+h", "help"),
	),
	Tab: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("Tab", "switch panel"),
	),
}

// SessionListKeys are active when the session list is focused.
type SessionListKeys struct {
	Up     key.Binding
	Down   key.Binding
	New    key.Binding
	Goal   key.Binding
	Stop   key.Binding
	Delete key.Binding
	Enter  key.Binding
}

var sessionListKeys = SessionListKeys{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("j/k", "navigate"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("j/k", "navigate"),
	),
	New: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "new session"),
	),
	Goal: key.NewBinding(
		key.WithKeys("g"),
		key.WithHelp("g", "run goal"),
	),
	Stop: key.NewBinding(
		key.WithKeys("S"),
		key.WithHelp("S", "stop run"),
	),
	Delete: key.NewBinding(
		key.WithKeys("x"),
		key.WithHelp("x", "delete session"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("Enter", "open"),
	),
}

// MessageTreeKeys are active when the message tree is focused.
type MessageTreeKeys struct {
	Up       key.Binding
	Down     key.Binding
	Collapse key.Binding
	Top      key.Binding
	Bottom   key.Binding
	Reply    key.Binding
}

var messageTreeKeys = MessageTreeKeys{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("j/k", "navigate"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("j/k", "navigate"),
	),
	Collapse: key.NewBinding(
		key.WithKeys(" ", "enter"),
		key.WithHelp("Space", "collapse/expand"),
	),
	Top: key.NewBinding(
		key.WithKeys("home"),
		key.WithHelp("Home", "top"),
	),
	Bottom: key.NewBinding(
		key.WithKeys("end", "G"),
		key.WithHelp("End", "bottom"),
	),
	Reply: key.NewBinding(
		key.WithKeys("i"),
		key.WithHelp("i", "answer input request"),
	),
}

// OverlayKeys are active when an overlay form is shown.
type OverlayKeys struct {
	Submit key.Binding
	Cancel key.Binding
	Tab    key.Binding
}

var overlayKeys = OverlayKeys{
	Submit: key.NewBinding(
		key.WithKeys("ctrl+s"),
		key.WithHelp("Ctrl+s", "submit"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("Esc", "cancel"),
	),
	Tab: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("Tab", "next field"),
	),
}

// ConfirmKeys for inline confirmation prompts.
type ConfirmKeys struct {
	Yes    key.Binding
	No     key.Binding
	Cancel key.Binding
}

var confirmKeys = ConfirmKeys{
	Yes: key.NewBinding(
		key.WithKeys("y"),
		key.WithHelp("y", "confirm"),
	),
	No: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "cancel"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("Esc", "cancel"),
	),
}
