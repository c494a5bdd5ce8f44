package dto

import (
	"time"

	"countdown/internal/modules/agenda/domain"
)

type ItemInput struct {
	Title   string
	Minutes int
	Color   string
}

type SetItemInput struct {
	Index int
	Item  ItemInput
}

type UpdateSettingsInput struct {
	Title string
	Items []ItemInput
}

// SettingsChange carries the agenda before and after an edit so the timer can
// react to it.
type SettingsChange struct {
	Previous domain.Settings
	Current  domain.Settings
}

type TemplateOutput struct {
	ID        string
	Name      string
	Title     string
	Items     int
	Minutes   int
	Active    bool
	UpdatedAt time.Time
}

type ItemOutput struct {
	Position int
	Title    string
	Minutes  int
	Color    string
}

type SettingsOutput struct {
	Title            string
	Items            []ItemOutput
	TotalMinutes     int
	ActiveTemplateID string
	Cues             map[string]string
}

func NewSettingsOutput(settings domain.Settings) SettingsOutput {
	out := SettingsOutput{
		Title:            settings.Title,
		Items:            make([]ItemOutput, 0, len(settings.Agenda)),
		TotalMinutes:     settings.Agenda.TotalMinutes(),
		ActiveTemplateID: settings.ActiveTemplateID,
		Cues:             make(map[string]string, len(settings.Cues)),
	}
	for i, item := range settings.Agenda {
		out.Items = append(out.Items, ItemOutput{Position: i + 1, Title: item.Title, Minutes: item.Minutes, Color: string(item.Color)})
	}
	for kind, cue := range settings.Cues {
		out.Cues[string(kind)] = cue
	}
	return out
}
