package service

import (
	"context"
	"fmt"
	"strings"

	"countdown/internal/modules/agenda/domain"
	agendaout "countdown/internal/modules/agenda/port/out"
	"countdown/internal/platform/clock"
	apperrors "countdown/internal/platform/errors"
	"countdown/internal/platform/id"
)

type AgendaService struct {
	clock     clock.Clock
	idGen     id.Generator
	settings  agendaout.SettingsStore
	templates agendaout.TemplateStore
	watcher   agendaout.SettingsWatcher
}

// NewAgendaService builds the service. watcher may be nil when nothing needs
// to follow settings changes.
func NewAgendaService(clock clock.Clock, idGen id.Generator, settings agendaout.SettingsStore, templates agendaout.TemplateStore, watcher agendaout.SettingsWatcher) *AgendaService {
	return &AgendaService{clock: clock, idGen: idGen, settings: settings, templates: templates, watcher: watcher}
}

func (s *AgendaService) Settings(ctx context.Context) (domain.Settings, error) {
	return s.settings.Load(ctx)
}

// Follow reloads the settings after every change the watcher reports and
// sends them on the returned channel until ctx is done. A file that cannot
// be read is skipped until its next change.
func (s *AgendaService) Follow(ctx context.Context) (<-chan domain.Settings, error) {
	if s.watcher == nil {
		return nil, fmt.Errorf("%w: settings are not watched", apperrors.ErrStoreUnavailable)
	}
	events, err := s.watcher.Watch(ctx)
	if err != nil {
		return nil, err
	}
	out := make(chan domain.Settings, 1)
	go func() {
		defer close(out)
		for range events {
			settings, err := s.settings.Load(ctx)
			if err != nil {
				continue
			}
			select {
			case out <- settings:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// Replace validates and stores next, returning what was stored before.
func (s *AgendaService) Replace(ctx context.Context, next domain.Settings) (domain.Settings, error) {
	if err := next.Validate(); err != nil {
		return domain.Settings{}, err
	}
	previous, err := s.settings.Load(ctx)
	if err != nil {
		return domain.Settings{}, err
	}
	if next.Cues == nil {
		next.Cues = previous.Cues
	}
	if err := s.settings.Save(ctx, next); err != nil {
		return domain.Settings{}, err
	}
	return previous, nil
}

func (s *AgendaService) Templates(ctx context.Context) ([]domain.Template, error) {
	return s.templates.List(ctx)
}

func (s *AgendaService) SaveTemplate(ctx context.Context, name string) (domain.Template, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Template{}, fmt.Errorf("%w: template name is required", apperrors.ErrInvalidInput)
	}
	current, err := s.settings.Load(ctx)
	if err != nil {
		return domain.Template{}, err
	}
	templates, err := s.templates.List(ctx)
	if err != nil {
		return domain.Template{}, err
	}
	now := s.clock.Now()
	tpl := domain.Template{
		ID:        s.idGen.New(),
		Name:      name,
		Title:     current.Title,
		Agenda:    current.Agenda.Clone(),
		Cues:      current.Cues,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, existing := range templates {
		if existing.Name == name {
			tpl.ID = existing.ID
			tpl.CreatedAt = existing.CreatedAt
			break
		}
	}
	if err := tpl.Validate(); err != nil {
		return domain.Template{}, err
	}
	if err := s.templates.Save(ctx, tpl); err != nil {
		return domain.Template{}, err
	}
	current.ActiveTemplateID = tpl.ID
	if err := s.settings.Save(ctx, current); err != nil {
		return domain.Template{}, err
	}
	return tpl, nil
}

func (s *AgendaService) LoadTemplate(ctx context.Context, templateID string) (domain.Settings, domain.Settings, error) {
	tpl, err := s.findTemplate(ctx, templateID)
	if err != nil {
		return domain.Settings{}, domain.Settings{}, err
	}
	previous, err := s.settings.Load(ctx)
	if err != nil {
		return domain.Settings{}, domain.Settings{}, err
	}
	next := domain.Settings{
		Title:            tpl.Title,
		Agenda:           tpl.Agenda.Clone(),
		Cues:             tpl.Cues,
		ActiveTemplateID: tpl.ID,
	}
	if next.Cues == nil {
		next.Cues = previous.Cues
	}
	if err := next.Validate(); err != nil {
		return domain.Settings{}, domain.Settings{}, err
	}
	if err := s.settings.Save(ctx, next); err != nil {
		return domain.Settings{}, domain.Settings{}, err
	}
	return previous, next, nil
}

func (s *AgendaService) DeleteTemplate(ctx context.Context, templateID string) error {
	if _, err := s.findTemplate(ctx, templateID); err != nil {
		return err
	}
	if err := s.templates.Delete(ctx, templateID); err != nil {
		return err
	}
	current, err := s.settings.Load(ctx)
	if err != nil {
		return err
	}
	if current.ActiveTemplateID != templateID {
		return nil
	}
	current.ActiveTemplateID = ""
	return s.settings.Save(ctx, current)
}

func (s *AgendaService) findTemplate(ctx context.Context, templateID string) (domain.Template, error) {
	templates, err := s.templates.List(ctx)
	if err != nil {
		return domain.Template{}, err
	}
	for _, tpl := range templates {
		if tpl.ID == templateID {
			return tpl, nil
		}
	}
	return domain.Template{}, fmt.Errorf("%w: template %s", apperrors.ErrNotFound, templateID)
}
