package in

import (
	"context"
	"time"

	"countdown/internal/modules/viewsync/dto"
)

type Usecase interface {
	ListSessions(ctx context.Context) ([]dto.SessionOutput, error)
	PruneSessions(ctx context.Context, olderThan time.Duration) (dto.PruneOutput, error)
	NewSession(ctx context.Context) string
	Send(ctx context.Context, input dto.SendInput) error
	// Status reads the state a session's primary last published.
	Status(ctx context.Context, session string) (dto.StatusOutput, error)
}
