package app

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	agendadto "countdown/internal/modules/agenda/dto"
)

// hints must stay in sync with parseEdit.
var editHints = []string{
	"title <text>",
	"add <minutes> <title>",
	"set <n> <minutes> [title]",
	"color <n> <color|none>",
	"remove <n>",
	"template save <name>",
	"template load <id>",
}

type editKind int

const (
	editTitle editKind = iota
	editAdd
	editSet
	editColor
	editRemove
	editTemplateSave
	editTemplateLoad
)

// agendaEdit is one parsed palette command. Index is zero-based.
type agendaEdit struct {
	kind    editKind
	index   int
	minutes int
	text    string
}

func parseEdit(input string) (agendaEdit, error) {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return agendaEdit{}, fmt.Errorf("empty command")
	}
	rest := func(n int) string {
		if len(fields) <= n {
			return ""
		}
		return strings.Join(fields[n:], " ")
	}
	switch fields[0] {
	case "title":
		if len(fields) < 2 {
			return agendaEdit{}, fmt.Errorf("usage: title <text>")
		}
		return agendaEdit{kind: editTitle, text: rest(1)}, nil
	case "add":
		if len(fields) < 3 {
			return agendaEdit{}, fmt.Errorf("usage: add <minutes> <title>")
		}
		minutes, err := strconv.Atoi(fields[1])
		if err != nil {
			return agendaEdit{}, fmt.Errorf("invalid minutes %q", fields[1])
		}
		return agendaEdit{kind: editAdd, minutes: minutes, text: rest(2)}, nil
	case "set":
		if len(fields) < 3 {
			return agendaEdit{}, fmt.Errorf("usage: set <n> <minutes> [title]")
		}
		index, err := position(fields[1])
		if err != nil {
			return agendaEdit{}, err
		}
		minutes, err := strconv.Atoi(fields[2])
		if err != nil {
			return agendaEdit{}, fmt.Errorf("invalid minutes %q", fields[2])
		}
		return agendaEdit{kind: editSet, index: index, minutes: minutes, text: rest(3)}, nil
	case "color":
		if len(fields) != 3 {
			return agendaEdit{}, fmt.Errorf("usage: color <n> <color|none>")
		}
		index, err := position(fields[1])
		if err != nil {
			return agendaEdit{}, err
		}
		return agendaEdit{kind: editColor, index: index, text: fields[2]}, nil
	case "remove":
		if len(fields) != 2 {
			return agendaEdit{}, fmt.Errorf("usage: remove <n>")
		}
		index, err := position(fields[1])
		if err != nil {
			return agendaEdit{}, err
		}
		return agendaEdit{kind: editRemove, index: index}, nil
	case "template":
		if len(fields) < 3 {
			return agendaEdit{}, fmt.Errorf("usage: template save <name> | template load <id>")
		}
		switch fields[1] {
		case "save":
			return agendaEdit{kind: editTemplateSave, text: rest(2)}, nil
		case "load":
			return agendaEdit{kind: editTemplateLoad, text: fields[2]}, nil
		}
		return agendaEdit{}, fmt.Errorf("unknown template action %q", fields[1])
	default:
		return agendaEdit{}, fmt.Errorf("unknown command: %s", fields[0])
	}
}

func position(raw string) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid item number %q", raw)
	}
	return n - 1, nil
}

// apply runs the edit against the agenda and lets the timer react. It
// returns a status line for the view.
func (e agendaEdit) apply(ctx context.Context, agenda AgendaPort, timer TimerPort) (string, error) {
	var (
		change agendadto.SettingsChange
		err    error
	)
	switch e.kind {
	case editTitle:
		change, err = agenda.UpdateSettings(ctx, agendadto.UpdateSettingsInput{Title: e.text})
	case editAdd:
		change, err = agenda.AddItem(ctx, agendadto.ItemInput{Title: e.text, Minutes: e.minutes})
	case editSet:
		change, err = agenda.SetItem(ctx, agendadto.SetItemInput{Index: e.index, Item: agendadto.ItemInput{Title: e.text, Minutes: e.minutes}})
	case editColor:
		change, err = agenda.SetItem(ctx, agendadto.SetItemInput{Index: e.index, Item: agendadto.ItemInput{Color: e.text}})
	case editRemove:
		change, err = agenda.RemoveItem(ctx, e.index)
	case editTemplateSave:
		tpl, serr := agenda.SaveTemplate(ctx, e.text)
		if serr != nil {
			return "", serr
		}
		return fmt.Sprintf("saved template %s (%s)", tpl.Name, tpl.ID), nil
	case editTemplateLoad:
		change, err = agenda.LoadTemplate(ctx, e.text)
		if err != nil {
			return "", err
		}
		timer.TemplateLoaded(ctx, change)
		return "loaded template " + change.Current.Title, nil
	}
	if err != nil {
		return "", err
	}
	timer.AgendaEdited(ctx, change)
	return "agenda updated", nil
}
