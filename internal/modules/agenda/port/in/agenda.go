package in

import (
	"context"

	"countdown/internal/modules/agenda/domain"
	"countdown/internal/modules/agenda/dto"
)

type Usecase interface {
	GetSettings(ctx context.Context) (domain.Settings, error)
	WatchSettings(ctx context.Context) (<-chan domain.Settings, error)
	UpdateSettings(ctx context.Context, input dto.UpdateSettingsInput) (dto.SettingsChange, error)
	AddItem(ctx context.Context, input dto.ItemInput) (dto.SettingsChange, error)
	SetItem(ctx context.Context, input dto.SetItemInput) (dto.SettingsChange, error)
	RemoveItem(ctx context.Context, index int) (dto.SettingsChange, error)
	ListTemplates(ctx context.Context) ([]dto.TemplateOutput, error)
	SaveTemplate(ctx context.Context, name string) (dto.TemplateOutput, error)
	LoadTemplate(ctx context.Context, id string) (dto.SettingsChange, error)
	DeleteTemplate(ctx context.Context, id string) error
}
