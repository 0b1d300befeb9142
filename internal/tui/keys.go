package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Toggle   key.Binding
	Run      key.Binding
	Reset    key.Binding
	Seed     key.Binding
	Strategy key.Binding
	NextTab  key.Binding
	PrevTab  key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Toggle:   key.NewBinding(key.WithKeys("1", "2", "3", "4", "5", "6"), key.WithHelp("1-6", "toggle agent")),
		Run:      key.NewBinding(key.WithKeys("r", "enter"), key.WithHelp("r", "run")),
		Reset:    key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "reset")),
		Seed:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "seed")),
		Strategy: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "debt strategy")),
		NextTab:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next view")),
		PrevTab:  key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev view")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Run, k.Reset, k.Seed, k.Strategy, k.NextTab, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Toggle, k.Run, k.Reset, k.Seed},
		{k.Strategy, k.NextTab, k.PrevTab, k.Help, k.Quit},
	}
}
