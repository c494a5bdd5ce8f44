package usecase

import (
	"context"

	"countdown/internal/modules/export/dto"
	exportin "countdown/internal/modules/export/port/in"
	"countdown/internal/modules/export/service"
	timerdomain "countdown/internal/modules/timer/domain"
)

type Interactor struct {
	svc *service.ExportService
}

func NewInteractor(svc *service.ExportService) exportin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) List(ctx context.Context) ([]dto.ExporterInfo, error) {
	return i.svc.List(ctx)
}

func (i *Interactor) Doctor(ctx context.Context) ([]dto.DoctorResult, error) {
	return i.svc.Doctor(ctx)
}

func (i *Interactor) Export(ctx context.Context, summary timerdomain.Summary) ([]dto.ExportResult, error) {
	return i.svc.Export(ctx, summary)
}

func (i *Interactor) Publish(ctx context.Context, summary timerdomain.Summary) {
	i.svc.Publish(ctx, summary)
}

func (i *Interactor) Wait(ctx context.Context) error {
	return i.svc.Wait(ctx)
}
