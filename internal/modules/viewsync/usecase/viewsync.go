package usecase

import (
	"context"
	"log/slog"
	"time"

	"countdown/internal/modules/viewsync/domain"
	"countdown/internal/modules/viewsync/dto"
	syncin "countdown/internal/modules/viewsync/port/in"
	syncout "countdown/internal/modules/viewsync/port/out"
	"countdown/internal/modules/viewsync/service"
	"countdown/internal/platform/clock"
)

type Interactor struct {
	sessions *service.SessionService
	store    syncout.Store
	clock    clock.Clock
	log      *slog.Logger
}

func NewInteractor(sessions *service.SessionService, store syncout.Store, clk clock.Clock, logger *slog.Logger) syncin.Usecase {
	return &Interactor{sessions: sessions, store: store, clock: clk, log: logger}
}

func (i *Interactor) ListSessions(ctx context.Context) ([]dto.SessionOutput, error) {
	infos, err := i.sessions.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SessionOutput, 0, len(infos))
	for _, info := range infos {
		current := -1
		if idx, ok := info.State.Index(); ok {
			current = idx
		}
		out = append(out, dto.SessionOutput{
			ID:           info.ID,
			LastUpdated:  info.LastUpdated,
			Phase:        info.State.Phase(),
			CurrentIndex: current,
			Items:        len(info.State.Records),
		})
	}
	return out, nil
}

func (i *Interactor) PruneSessions(ctx context.Context, olderThan time.Duration) (dto.PruneOutput, error) {
	removed, err := i.sessions.Prune(ctx, olderThan)
	return dto.PruneOutput{Removed: removed}, err
}

func (i *Interactor) NewSession(context.Context) string {
	return i.sessions.New()
}

// Send issues a command the way a pop-out view would.
func (i *Interactor) Send(ctx context.Context, input dto.SendInput) error {
	if err := domain.ValidateSession(input.Session); err != nil {
		return err
	}
	kind, err := domain.ParseCommandKind(input.Kind)
	if err != nil {
		return err
	}
	return service.NewMirror(i.store, i.clock, input.Session, i.log).Issue(ctx, kind)
}

func (i *Interactor) Status(ctx context.Context, session string) (dto.StatusOutput, error) {
	if err := domain.ValidateSession(session); err != nil {
		return dto.StatusOutput{}, err
	}
	mirror := service.NewMirror(i.store, i.clock, session, i.log)
	if err := mirror.Refresh(ctx); err != nil {
		return dto.StatusOutput{}, err
	}
	state, updated := mirror.State()
	out := dto.StatusOutput{Session: session, Found: updated > 0, State: state}
	if out.Found {
		out.LastUpdated = time.UnixMilli(updated).UTC()
	}
	return out, nil
}
