package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the candidate picker.
type keyMap struct {
	up   key.Binding
	down key.Binding
	pick key.Binding
	skip key.Binding
	auto key.Binding
	quit key.Binding
	stop key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:   key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down: key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		pick: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "pick")),
		skip: key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "skip")),
		auto: key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "auto-pick the rest")),
		quit: key.NewBinding(key.WithKeys("q", "esc"), key.WithHelp("q", "skip")),
		stop: key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "stop the run")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.pick, k.skip, k.auto, k.quit, k.stop}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.pick},
		{k.skip, k.auto, k.quit, k.stop},
	}
}
