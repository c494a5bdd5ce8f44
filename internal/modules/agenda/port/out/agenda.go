package out

import (
	"context"

	"countdown/internal/modules/agenda/domain"
)

type SettingsStore interface {
	Load(ctx context.Context) (domain.Settings, error)
	Save(ctx context.Context, settings domain.Settings) error
}

// SettingsWatcher signals after every change to the stored settings, including
// changes made by other processes. The channel closes when ctx is done.
type SettingsWatcher interface {
	Watch(ctx context.Context) (<-chan struct{}, error)
}

type TemplateStore interface {
	List(ctx context.Context) ([]domain.Template, error)
	Save(ctx context.Context, template domain.Template) error
	Delete(ctx context.Context, id string) error
}
