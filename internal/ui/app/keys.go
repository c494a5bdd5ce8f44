package app

import "github.com/charmbracelet/bubbles/key"

type primaryKeys struct {
	Start     key.Binding
	Pause     key.Binding
	Next      key.Binding
	Previous  key.Binding
	Reset     key.Binding
	ScrubBack key.Binding
	ScrubFwd  key.Binding
	ScrubDone key.Binding
	EndNow    key.Binding
	KeepGoing key.Binding
	EndManual key.Binding
	Palette   key.Binding
	Help      key.Binding
	Quit      key.Binding
}

func defaultPrimaryKeys() primaryKeys {
	return primaryKeys{
		Start:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "start")),
		Pause:     key.NewBinding(key.WithKeys(" ", "space"), key.WithHelp("space", "pause/resume")),
		Next:      key.NewBinding(key.WithKeys("n", "tab"), key.WithHelp("n", "next item")),
		Previous:  key.NewBinding(key.WithKeys("p", "shift+tab"), key.WithHelp("p", "previous item")),
		Reset:     key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "reset")),
		ScrubBack: key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/→", "scrub")),
		ScrubFwd:  key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("←/→", "scrub")),
		ScrubDone: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "finish scrub")),
		EndNow:    key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "end meeting")),
		KeepGoing: key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "keep going")),
		EndManual: key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "end meeting")),
		Palette:   key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "edit agenda")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:      key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
	}
}

func (k primaryKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Start, k.Pause, k.Next, k.ScrubFwd, k.Palette, k.Help, k.Quit}
}

func (k primaryKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Start, k.Pause, k.Next, k.Previous, k.Reset},
		{k.ScrubBack, k.ScrubDone, k.EndNow, k.KeepGoing, k.EndManual},
		{k.Palette, k.Help, k.Quit},
	}
}

type popoutKeys struct {
	Pause    key.Binding
	Next     key.Binding
	Previous key.Binding
	Reset    key.Binding
	Quit     key.Binding
}

func defaultPopoutKeys() popoutKeys {
	return popoutKeys{
		Pause:    key.NewBinding(key.WithKeys(" ", "space"), key.WithHelp("space", "pause/resume")),
		Next:     key.NewBinding(key.WithKeys("n", "tab"), key.WithHelp("n", "next")),
		Previous: key.NewBinding(key.WithKeys("p", "shift+tab"), key.WithHelp("p", "previous")),
		Reset:    key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "reset")),
		Quit:     key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "close")),
	}
}

func (k popoutKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Pause, k.Next, k.Previous, k.Reset, k.Quit}
}

func (k popoutKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
