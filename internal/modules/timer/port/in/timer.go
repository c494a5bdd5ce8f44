package in

import (
	"context"

	agendadomain "countdown/internal/modules/agenda/domain"
	agendadto "countdown/internal/modules/agenda/dto"
	"countdown/internal/modules/timer/dto"
)

type Usecase interface {
	View(ctx context.Context) dto.View
	Start(ctx context.Context) (dto.View, error)
	TogglePause(ctx context.Context) dto.View
	// Pause and Resume act only when the timer is in the opposite state.
	Pause(ctx context.Context) dto.View
	Resume(ctx context.Context) dto.View
	Next(ctx context.Context) dto.View
	Previous(ctx context.Context) dto.View
	Reset(ctx context.Context) dto.View
	BeginScrub(ctx context.Context) dto.View
	Scrub(ctx context.Context, fraction float64) dto.View
	EndScrub(ctx context.Context) dto.View
	Decide(ctx context.Context, endNow bool) (dto.View, *dto.SummaryOutput, error)
	EndManually(ctx context.Context) (dto.View, dto.SummaryOutput, error)
	AgendaEdited(ctx context.Context, change agendadto.SettingsChange) dto.View
	TemplateLoaded(ctx context.Context, change agendadto.SettingsChange) dto.View
	// SettingsChanged applies settings read back from storage. The bool is
	// false when they match what the timer already runs on.
	SettingsChanged(ctx context.Context, settings agendadomain.Settings) (dto.View, bool)
	History(ctx context.Context, limit int) ([]dto.MeetingOutput, error)
	Summary(ctx context.Context, meetingID string) (dto.SummaryOutput, error)
}
