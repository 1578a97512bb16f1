package tui

import "github.com/charmbracelet/bubbles/key"

// menuKeyMap holds the selection menu key bindings.
type menuKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Home   key.Binding
	End    key.Binding
	Choose key.Binding
	Cancel key.Binding
}

var menuKeys = menuKeyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Home: key.NewBinding(
		key.WithKeys("home", "g"),
		key.WithHelp("home", "first"),
	),
	End: key.NewBinding(
		key.WithKeys("end", "G"),
		key.WithHelp("end", "last"),
	),
	Choose: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "choose"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc", "ctrl+c", "ctrl+d"),
		key.WithHelp("^C", "exit"),
	),
}

// keyBarText renders the menu key hints.
func keyBarText() string {
	return keyStyle.Render("↑↓") + keyDescStyle.Render(":select") + "  " +
		keyStyle.Render("Enter") + keyDescStyle.Render(":choose") + "  " +
		keyStyle.Render("1-9") + keyDescStyle.Render(":quick select") + "  " +
		keyStyle.Render("^C") + keyDescStyle.Render(":exit")
}
