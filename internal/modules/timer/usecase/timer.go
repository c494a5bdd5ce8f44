package usecase

import (
	"context"
	"log/slog"

	agendadomain "countdown/internal/modules/agenda/domain"
	agendadto "countdown/internal/modules/agenda/dto"
	"countdown/internal/modules/timer/domain"
	"countdown/internal/modules/timer/dto"
	timerin "countdown/internal/modules/timer/port/in"
	timerout "countdown/internal/modules/timer/port/out"
	"countdown/internal/modules/timer/service"
	apperrors "countdown/internal/platform/errors"
	"countdown/internal/platform/logging"
)

type Interactor struct {
	engine    *service.Engine
	archive   timerout.SummaryArchive
	index     timerout.MeetingIndex
	publisher timerout.SummaryPublisher
	log       *slog.Logger
}

// NewInteractor wires the engine to its summary collaborators. Any of
// archive, index and publisher may be nil.
func NewInteractor(engine *service.Engine, archive timerout.SummaryArchive, index timerout.MeetingIndex, publisher timerout.SummaryPublisher, logger *slog.Logger) timerin.Usecase {
	return &Interactor{
		engine:    engine,
		archive:   archive,
		index:     index,
		publisher: publisher,
		log:       logging.OrDefault(logger).With("component", "meetings"),
	}
}

func (i *Interactor) View(context.Context) dto.View {
	return i.view(i.engine.Snapshot())
}

func (i *Interactor) Start(ctx context.Context) (dto.View, error) {
	state, err := i.engine.Start(ctx)
	return i.view(state), err
}

func (i *Interactor) TogglePause(ctx context.Context) dto.View {
	return i.view(i.engine.TogglePause(ctx))
}

func (i *Interactor) Pause(ctx context.Context) dto.View {
	return i.view(i.engine.SetRunning(ctx, false))
}

func (i *Interactor) Resume(ctx context.Context) dto.View {
	return i.view(i.engine.SetRunning(ctx, true))
}

func (i *Interactor) Next(ctx context.Context) dto.View {
	return i.view(i.engine.Next(ctx))
}

func (i *Interactor) Previous(ctx context.Context) dto.View {
	return i.view(i.engine.Previous(ctx))
}

func (i *Interactor) Reset(ctx context.Context) dto.View {
	return i.view(i.engine.Reset(ctx))
}

func (i *Interactor) BeginScrub(ctx context.Context) dto.View {
	return i.view(i.engine.BeginScrub(ctx))
}

func (i *Interactor) Scrub(ctx context.Context, fraction float64) dto.View {
	return i.view(i.engine.Scrub(ctx, fraction))
}

func (i *Interactor) EndScrub(ctx context.Context) dto.View {
	return i.view(i.engine.EndScrub(ctx))
}

func (i *Interactor) Decide(ctx context.Context, endNow bool) (dto.View, *dto.SummaryOutput, error) {
	state, summary, err := i.engine.Decide(ctx, endNow)
	if err != nil || summary == nil {
		return i.view(state), nil, err
	}
	out := i.finish(ctx, *summary)
	return i.view(state), &out, nil
}

func (i *Interactor) EndManually(ctx context.Context) (dto.View, dto.SummaryOutput, error) {
	state, summary, err := i.engine.EndManually(ctx)
	if err != nil {
		return i.view(state), dto.SummaryOutput{}, err
	}
	return i.view(state), i.finish(ctx, summary), nil
}

func (i *Interactor) AgendaEdited(ctx context.Context, change agendadto.SettingsChange) dto.View {
	return i.view(i.engine.ApplySettings(ctx, change.Current))
}

func (i *Interactor) TemplateLoaded(ctx context.Context, change agendadto.SettingsChange) dto.View {
	return i.view(i.engine.ReplaceSettings(ctx, change.Current))
}

// SettingsChanged treats a newly activated template as a template load and
// anything else as an agenda edit.
func (i *Interactor) SettingsChanged(ctx context.Context, settings agendadomain.Settings) (dto.View, bool) {
	previous := i.engine.Settings()
	if previous.Equal(settings) {
		return i.View(ctx), false
	}
	change := agendadto.SettingsChange{Previous: previous, Current: settings}
	if settings.ActiveTemplateID != "" && settings.ActiveTemplateID != previous.ActiveTemplateID {
		i.log.Info("template loaded elsewhere", "template", settings.ActiveTemplateID)
		return i.TemplateLoaded(ctx, change), true
	}
	i.log.Info("agenda edited elsewhere", "items", len(settings.Agenda))
	return i.AgendaEdited(ctx, change), true
}

func (i *Interactor) History(ctx context.Context, limit int) ([]dto.MeetingOutput, error) {
	if i.index == nil {
		return nil, nil
	}
	entries, err := i.index.List(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.MeetingOutput, 0, len(entries))
	for _, entry := range entries {
		out = append(out, dto.NewMeetingOutput(entry.Summary, entry.ArchivePath))
	}
	return out, nil
}

func (i *Interactor) Summary(ctx context.Context, meetingID string) (dto.SummaryOutput, error) {
	if i.index == nil {
		return dto.SummaryOutput{}, apperrors.ErrNotFound
	}
	entry, err := i.index.Get(ctx, meetingID)
	if err != nil {
		return dto.SummaryOutput{}, err
	}
	return dto.NewSummaryOutput(entry.Summary, entry.ArchivePath), nil
}

// finish hands the frozen summary to every collaborator. None of them can
// affect the timer: failures are logged and dropped.
func (i *Interactor) finish(ctx context.Context, summary domain.Summary) dto.SummaryOutput {
	path := ""
	if i.archive != nil {
		archived, err := i.archive.Archive(ctx, summary)
		if err != nil {
			i.log.Warn("archive summary", "meeting", summary.MeetingID, "error", err)
		} else {
			path = archived
		}
	}
	if i.index != nil {
		if err := i.index.Record(ctx, timerout.MeetingEntry{Summary: summary, ArchivePath: path}); err != nil {
			i.log.Warn("index meeting", "meeting", summary.MeetingID, "error", err)
		}
	}
	if i.publisher != nil {
		i.publisher.Publish(ctx, summary)
	}
	return dto.NewSummaryOutput(summary, path)
}

func (i *Interactor) view(state domain.State) dto.View {
	settings := i.engine.Settings()
	return dto.NewView(settings.Title, settings.Agenda, state)
}
