package in

import (
	"context"

	"countdown/internal/modules/agenda/dto"
	agendain "countdown/internal/modules/agenda/port/in"
)

type CLIHandler struct {
	usecase agendain.Usecase
}

func NewCLIHandler(usecase agendain.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Settings(ctx context.Context) (dto.SettingsOutput, error) {
	settings, err := h.usecase.GetSettings(ctx)
	if err != nil {
		return dto.SettingsOutput{}, err
	}
	return dto.NewSettingsOutput(settings), nil
}

// Update replaces the title when non-blank and the whole agenda when items
// is non-nil.
func (h CLIHandler) Update(ctx context.Context, title string, items []dto.ItemInput) (dto.SettingsChange, error) {
	return h.usecase.UpdateSettings(ctx, dto.UpdateSettingsInput{Title: title, Items: items})
}

func (h CLIHandler) AddItem(ctx context.Context, title string, minutes int, color string) (dto.SettingsChange, error) {
	return h.usecase.AddItem(ctx, dto.ItemInput{Title: title, Minutes: minutes, Color: color})
}

// SetItem edits the item at a 1-based position.
func (h CLIHandler) SetItem(ctx context.Context, position int, title string, minutes int, color string) (dto.SettingsChange, error) {
	return h.usecase.SetItem(ctx, dto.SetItemInput{Index: position - 1, Item: dto.ItemInput{Title: title, Minutes: minutes, Color: color}})
}

// RemoveItem removes the item at a 1-based position.
func (h CLIHandler) RemoveItem(ctx context.Context, position int) (dto.SettingsChange, error) {
	return h.usecase.RemoveItem(ctx, position-1)
}

func (h CLIHandler) ListTemplates(ctx context.Context) ([]dto.TemplateOutput, error) {
	return h.usecase.ListTemplates(ctx)
}

func (h CLIHandler) SaveTemplate(ctx context.Context, name string) (dto.TemplateOutput, error) {
	return h.usecase.SaveTemplate(ctx, name)
}

func (h CLIHandler) LoadTemplate(ctx context.Context, id string) (dto.SettingsChange, error) {
	return h.usecase.LoadTemplate(ctx, id)
}

func (h CLIHandler) DeleteTemplate(ctx context.Context, id string) error {
	return h.usecase.DeleteTemplate(ctx, id)
}
