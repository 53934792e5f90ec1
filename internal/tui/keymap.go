package tui

import (
	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"

	"github.com/thenoetrevino/tablero/internal/config"
)

func keyMatches(msg tea.KeyMsg, b key.Binding) bool {
	return key.Matches(msg, b)
}

// KeyMap holds the viewer's key bindings, built from the user's config.
type KeyMap struct {
	PrevColumn  key.Binding
	NextColumn  key.Binding
	PrevTask    key.Binding
	NextTask    key.Binding
	PrevProject key.Binding
	NextProject key.Binding
	Refresh     key.Binding
	ShowHelp    key.Binding
	Quit        key.Binding
}

// NewKeyMap builds bindings from the configured key mappings.
func NewKeyMap(km config.KeyMappings) KeyMap {
	return KeyMap{
		PrevColumn: key.NewBinding(
			key.WithKeys(km.PrevColumn, "left"),
			key.WithHelp(km.PrevColumn, "prev column"),
		),
		NextColumn: key.NewBinding(
			key.WithKeys(km.NextColumn, "right"),
			key.WithHelp(km.NextColumn, "next column"),
		),
		PrevTask: key.NewBinding(
			key.WithKeys(km.PrevTask, "up"),
			key.WithHelp(km.PrevTask, "prev task"),
		),
		NextTask: key.NewBinding(
			key.WithKeys(km.NextTask, "down"),
			key.WithHelp(km.NextTask, "next task"),
		),
		PrevProject: key.NewBinding(
			key.WithKeys(km.PrevProject),
			key.WithHelp(km.PrevProject, "prev project"),
		),
		NextProject: key.NewBinding(
			key.WithKeys(km.NextProject),
			key.WithHelp(km.NextProject, "next project"),
		),
		Refresh: key.NewBinding(
			key.WithKeys(km.Refresh),
			key.WithHelp(km.Refresh, "refresh"),
		),
		ShowHelp: key.NewBinding(
			key.WithKeys(km.ShowHelp),
			key.WithHelp(km.ShowHelp, "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys(km.Quit, "ctrl+c"),
			key.WithHelp(km.Quit, "quit"),
		),
	}
}
