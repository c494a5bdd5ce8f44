package in

import (
	"context"

	"countdown/internal/modules/export/dto"
	timerdomain "countdown/internal/modules/timer/domain"
)

type Usecase interface {
	List(ctx context.Context) ([]dto.ExporterInfo, error)
	Doctor(ctx context.Context) ([]dto.DoctorResult, error)
	Export(ctx context.Context, summary timerdomain.Summary) ([]dto.ExportResult, error)
	// Publish runs Export in the background and only logs the outcome.
	Publish(ctx context.Context, summary timerdomain.Summary)
	// Wait blocks until background exports finish or ctx is done.
	Wait(ctx context.Context) error
}
