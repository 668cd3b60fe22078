// Package keymap defines keybindings for the TUI.
package keymap

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines all keybindings for the TUI.
type KeyMap struct {
	// Quit exits the application.
	Quit key.Binding

	// Help shows the help view.
	Help key.Binding

	// Back returns to the previous view.
	Back key.Binding

	// Up navigates up in a list or form.
	Up key.Binding

	// Down navigates down in a list or form.
	Down key.Binding

	// Select confirms a menu choice or loads the focused path.
	Select key.Binding

	// PrevType and NextType cycle the document type.
	PrevType key.Binding
	NextType key.Binding

	// Remove clears the focused slot.
	Remove key.Binding

	// Submit uploads the three documents.
	Submit key.Binding

	// Retry re-runs a failed upload.
	Retry key.Binding

	// Refresh reloads the KYC status or history.
	Refresh key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "shift+tab"),
			key.WithHelp("↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "tab"),
			key.WithHelp("↓/tab", "down"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select"),
		),
		PrevType: key.NewBinding(
			key.WithKeys("left"),
			key.WithHelp("←", "prev type"),
		),
		NextType: key.NewBinding(
			key.WithKeys("right"),
			key.WithHelp("→", "next type"),
		),
		Remove: key.NewBinding(
			key.WithKeys("ctrl+d"),
			key.WithHelp("ctrl+d", "remove"),
		),
		Submit: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "submit"),
		),
		Retry: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "retry"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("ctrl+l", "refresh"),
		),
	}
}

// ShortHelp returns a short list of keybindings.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Back, k.Quit}
}

// FormHelp returns keybindings for the KYC form.
func (k *KeyMap) FormHelp() []key.Binding {
	return []key.Binding{k.Down, k.Select, k.Remove, k.Submit, k.Back}
}

// FailedHelp returns keybindings shown after a failed upload.
func (k *KeyMap) FailedHelp() []key.Binding {
	return []key.Binding{k.Retry, k.Down, k.Select, k.Back}
}

// HistoryHelp returns keybindings for the history view.
func (k *KeyMap) HistoryHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Refresh, k.Back}
}

// FullHelp returns the full list of keybindings for the help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Select},
		{k.PrevType, k.NextType, k.Remove},
		{k.Submit, k.Retry, k.Refresh},
		{k.Back, k.Help, k.Quit},
	}
}

// Matches checks if a key string matches a binding.
func Matches(keyStr string, binding key.Binding) bool {
	for _, k := range binding.Keys() {
		if k == keyStr {
			return true
		}
	}
	return false
}
