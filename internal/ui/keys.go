package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Play        key.Binding
	Stop        key.Binding
	Toggle      key.Binding
	Next        key.Binding
	Previous    key.Binding
	Random      key.Binding
	Favorite    key.Binding
	Favorites   key.Binding
	Search      key.Binding
	Reload      key.Binding
	PrevCountry key.Binding
	NextCountry key.Binding
	VolumeUp    key.Binding
	VolumeDown  key.Binding
	Quit        key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Play:        key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "play")),
		Stop:        key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "stop")),
		Toggle:      key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "play/pause")),
		Next:        key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next")),
		Previous:    key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "prev")),
		Random:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "random")),
		Favorite:    key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "♥")),
		Favorites:   key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "favorites")),
		Search:      key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Reload:      key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "reload")),
		PrevCountry: key.NewBinding(key.WithKeys("["), key.WithHelp("[", "")),
		NextCountry: key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "country")),
		VolumeUp:    key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "")),
		VolumeDown:  key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "volume")),
		Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) help() []key.Binding {
	return []key.Binding{
		k.Play, k.Toggle, k.Stop, k.Next, k.Previous, k.Random, k.Favorite,
		k.Favorites, k.Search, k.Reload, k.PrevCountry, k.NextCountry, k.VolumeUp, k.VolumeDown, k.Quit,
	}
}
