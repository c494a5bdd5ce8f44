package usecase

import (
	"context"
	"fmt"
	"strings"

	"countdown/internal/modules/agenda/domain"
	"countdown/internal/modules/agenda/dto"
	agendain "countdown/internal/modules/agenda/port/in"
	"countdown/internal/modules/agenda/service"
	apperrors "countdown/internal/platform/errors"
)

type Interactor struct {
	svc *service.AgendaService
}

func NewInteractor(svc *service.AgendaService) agendain.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) GetSettings(ctx context.Context) (domain.Settings, error) {
	return i.svc.Settings(ctx)
}

func (i *Interactor) WatchSettings(ctx context.Context) (<-chan domain.Settings, error) {
	return i.svc.Follow(ctx)
}

func (i *Interactor) UpdateSettings(ctx context.Context, input dto.UpdateSettingsInput) (dto.SettingsChange, error) {
	current, err := i.svc.Settings(ctx)
	if err != nil {
		return dto.SettingsChange{}, err
	}
	next := current
	if strings.TrimSpace(input.Title) != "" {
		next.Title = strings.TrimSpace(input.Title)
	}
	if input.Items != nil {
		agenda, err := toDefinition(input.Items)
		if err != nil {
			return dto.SettingsChange{}, err
		}
		next.Agenda = agenda
	}
	return i.replace(ctx, next)
}

func (i *Interactor) AddItem(ctx context.Context, input dto.ItemInput) (dto.SettingsChange, error) {
	item, err := toItem(input)
	if err != nil {
		return dto.SettingsChange{}, err
	}
	current, err := i.svc.Settings(ctx)
	if err != nil {
		return dto.SettingsChange{}, err
	}
	next := current
	next.Agenda = append(current.Agenda.Clone(), item)
	return i.replace(ctx, next)
}

func (i *Interactor) SetItem(ctx context.Context, input dto.SetItemInput) (dto.SettingsChange, error) {
	current, err := i.svc.Settings(ctx)
	if err != nil {
		return dto.SettingsChange{}, err
	}
	if input.Index < 0 || input.Index >= len(current.Agenda) {
		return dto.SettingsChange{}, fmt.Errorf("%w: item index %d out of range", apperrors.ErrInvalidInput, input.Index+1)
	}
	existing := current.Agenda[input.Index]
	patch := input.Item
	if strings.TrimSpace(patch.Title) == "" {
		patch.Title = existing.Title
	}
	if patch.Minutes == 0 {
		patch.Minutes = existing.Minutes
	}
	switch {
	case patch.Color == "":
		patch.Color = string(existing.Color)
	case strings.EqualFold(patch.Color, "none"):
		patch.Color = ""
	}
	item, err := toItem(patch)
	if err != nil {
		return dto.SettingsChange{}, err
	}
	next := current
	next.Agenda = current.Agenda.Clone()
	next.Agenda[input.Index] = item
	return i.replace(ctx, next)
}

func (i *Interactor) RemoveItem(ctx context.Context, index int) (dto.SettingsChange, error) {
	current, err := i.svc.Settings(ctx)
	if err != nil {
		return dto.SettingsChange{}, err
	}
	if index < 0 || index >= len(current.Agenda) {
		return dto.SettingsChange{}, fmt.Errorf("%w: item index %d out of range", apperrors.ErrInvalidInput, index+1)
	}
	next := current
	next.Agenda = append(current.Agenda[:index:index].Clone(), current.Agenda[index+1:]...)
	return i.replace(ctx, next)
}

func (i *Interactor) ListTemplates(ctx context.Context) ([]dto.TemplateOutput, error) {
	templates, err := i.svc.Templates(ctx)
	if err != nil {
		return nil, err
	}
	current, err := i.svc.Settings(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.TemplateOutput, 0, len(templates))
	for _, tpl := range templates {
		out = append(out, templateOutput(tpl, current.ActiveTemplateID))
	}
	return out, nil
}

func (i *Interactor) SaveTemplate(ctx context.Context, name string) (dto.TemplateOutput, error) {
	tpl, err := i.svc.SaveTemplate(ctx, name)
	if err != nil {
		return dto.TemplateOutput{}, err
	}
	return templateOutput(tpl, tpl.ID), nil
}

func (i *Interactor) LoadTemplate(ctx context.Context, templateID string) (dto.SettingsChange, error) {
	if strings.TrimSpace(templateID) == "" {
		return dto.SettingsChange{}, fmt.Errorf("%w: template id is required", apperrors.ErrInvalidInput)
	}
	previous, next, err := i.svc.LoadTemplate(ctx, templateID)
	if err != nil {
		return dto.SettingsChange{}, err
	}
	return dto.SettingsChange{Previous: previous, Current: next}, nil
}

func (i *Interactor) DeleteTemplate(ctx context.Context, templateID string) error {
	if strings.TrimSpace(templateID) == "" {
		return fmt.Errorf("%w: template id is required", apperrors.ErrInvalidInput)
	}
	return i.svc.DeleteTemplate(ctx, templateID)
}

func (i *Interactor) replace(ctx context.Context, next domain.Settings) (dto.SettingsChange, error) {
	previous, err := i.svc.Replace(ctx, next)
	if err != nil {
		return dto.SettingsChange{}, err
	}
	if next.Cues == nil {
		next.Cues = previous.Cues
	}
	return dto.SettingsChange{Previous: previous, Current: next}, nil
}

func toDefinition(items []dto.ItemInput) (domain.Definition, error) {
	out := make(domain.Definition, 0, len(items))
	for idx, input := range items {
		item, err := toItem(input)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", idx+1, err)
		}
		out = append(out, item)
	}
	return out, nil
}

func toItem(input dto.ItemInput) (domain.Item, error) {
	color, err := domain.ParseColor(input.Color)
	if err != nil {
		return domain.Item{}, err
	}
	item := domain.Item{Title: strings.TrimSpace(input.Title), Minutes: input.Minutes, Color: color}
	if err := item.Validate(); err != nil {
		return domain.Item{}, err
	}
	return item, nil
}

func templateOutput(tpl domain.Template, activeID string) dto.TemplateOutput {
	return dto.TemplateOutput{
		ID:        tpl.ID,
		Name:      tpl.Name,
		Title:     tpl.Title,
		Items:     len(tpl.Agenda),
		Minutes:   tpl.Agenda.TotalMinutes(),
		Active:    tpl.ID == activeID,
		UpdatedAt: tpl.UpdatedAt,
	}
}
