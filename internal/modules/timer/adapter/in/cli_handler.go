package in

import (
	"context"

	"countdown/internal/modules/timer/dto"
	timerin "countdown/internal/modules/timer/port/in"
)

type CLIHandler struct {
	usecase timerin.Usecase
}

func NewCLIHandler(usecase timerin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) History(ctx context.Context, limit int) ([]dto.MeetingOutput, error) {
	return h.usecase.History(ctx, limit)
}

func (h CLIHandler) Summary(ctx context.Context, meetingID string) (dto.SummaryOutput, error) {
	return h.usecase.Summary(ctx, meetingID)
}
