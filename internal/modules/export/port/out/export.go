package out

import (
	"context"

	"countdown/internal/modules/export/domain"
)

// Exporter delivers one meeting summary to an outbound destination.
type Exporter interface {
	Name() string
	Export(ctx context.Context, payload domain.Payload) error
}

type ManifestStore interface {
	Load(ctx context.Context) ([]domain.Manifest, error)
}

// Host launches exporter plugins.
type Host interface {
	CheckLifecycle(ctx context.Context, manifest domain.Manifest) error
	Export(ctx context.Context, manifest domain.Manifest, payload domain.Payload) error
}
