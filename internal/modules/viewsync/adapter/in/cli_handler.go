package in

import (
	"context"
	"time"

	"countdown/internal/modules/viewsync/dto"
	syncin "countdown/internal/modules/viewsync/port/in"
)

type CLIHandler struct {
	usecase syncin.Usecase
}

func NewCLIHandler(usecase syncin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) List(ctx context.Context) ([]dto.SessionOutput, error) {
	return h.usecase.ListSessions(ctx)
}

func (h CLIHandler) Prune(ctx context.Context, olderThan time.Duration) (dto.PruneOutput, error) {
	return h.usecase.PruneSessions(ctx, olderThan)
}

func (h CLIHandler) New(ctx context.Context) string {
	return h.usecase.NewSession(ctx)
}

func (h CLIHandler) Send(ctx context.Context, session, kind string) error {
	return h.usecase.Send(ctx, dto.SendInput{Session: session, Kind: kind})
}

func (h CLIHandler) Status(ctx context.Context, session string) (dto.StatusOutput, error) {
	return h.usecase.Status(ctx, session)
}
