package service

import (
	"context"
	"fmt"
	"log/slog"

	timerdomain "countdown/internal/modules/timer/domain"
	timerin "countdown/internal/modules/timer/port/in"
	"countdown/internal/modules/viewsync/domain"
	syncout "countdown/internal/modules/viewsync/port/out"
	"countdown/internal/platform/clock"
	"countdown/internal/platform/logging"
)

// Primary is the state-owning side of a session. It persists every timer
// snapshot to the state key and applies commands mirrors write to the
// command key.
type Primary struct {
	store   syncout.Store
	clock   clock.Clock
	session string
	log     *slog.Logger
	dedupe  *domain.Deduper
}

func NewPrimary(store syncout.Store, clk clock.Clock, session string, logger *slog.Logger) *Primary {
	return &Primary{
		store:   store,
		clock:   clk,
		session: session,
		log:     logging.OrDefault(logger).With("component", "viewsync", "role", "primary", "session", session),
		dedupe:  domain.NewDeduper(0),
	}
}

func (p *Primary) Session() string {
	return p.session
}

func (p *Primary) Load(ctx context.Context) (timerdomain.State, bool, error) {
	raw, ok, err := p.store.Get(ctx, domain.StateKey(p.session))
	if err != nil || !ok {
		return timerdomain.State{}, false, err
	}
	snap, err := timerdomain.DecodeSnapshot(raw)
	if err != nil {
		return timerdomain.State{}, false, err
	}
	return snap.State, true, nil
}

func (p *Primary) Save(ctx context.Context, state timerdomain.State) error {
	raw, err := timerdomain.EncodeSnapshot(state, clock.Millis(p.clock))
	if err != nil {
		return err
	}
	return p.store.Put(ctx, domain.StateKey(p.session), raw)
}

// Run applies incoming commands to control until ctx is done. A command
// already in the store when Run starts is treated as handled.
func (p *Primary) Run(ctx context.Context, control timerin.Usecase) error {
	started := clock.Millis(p.clock)
	updates, err := p.store.Watch(ctx, domain.CommandKey(p.session))
	if err != nil {
		return fmt.Errorf("watch commands: %w", err)
	}
	// Only a command issued before this primary started is stale; a newer
	// one read here also arrives on updates and must still apply there.
	if raw, ok, err := p.store.Get(ctx, domain.CommandKey(p.session)); err == nil && ok {
		if cmd, err := domain.DecodeCommand(raw); err == nil && cmd.IssuedAt < started {
			p.dedupe.First(cmd)
		}
	}
	p.announce(ctx, domain.LifecycleOpen)
	for {
		select {
		case <-ctx.Done():
			return nil
		case raw, ok := <-updates:
			if !ok {
				return nil
			}
			p.Handle(ctx, control, raw)
		}
	}
}

// Handle decodes and applies one command payload. Malformed and repeated
// payloads are dropped.
func (p *Primary) Handle(ctx context.Context, control timerin.Usecase, raw []byte) bool {
	if raw == nil {
		return false
	}
	cmd, err := domain.DecodeCommand(raw)
	if err != nil {
		p.log.Debug("drop command", "error", err)
		return false
	}
	if !p.dedupe.First(cmd) {
		p.log.Debug("drop duplicate command", "command", cmd.Kind, "timestamp", cmd.IssuedAt)
		return false
	}
	switch cmd.Kind {
	case domain.CommandPause:
		control.Pause(ctx)
	case domain.CommandResume:
		control.Resume(ctx)
	case domain.CommandNext:
		control.Next(ctx)
	case domain.CommandPrevious:
		control.Previous(ctx)
	case domain.CommandReset:
		control.Reset(ctx)
	}
	return true
}

// Close tells mirrors the primary is going away.
func (p *Primary) Close(ctx context.Context) {
	p.announce(ctx, domain.LifecycleClosed)
}

func (p *Primary) announce(ctx context.Context, status domain.LifecycleStatus) {
	raw, err := domain.EncodeLifecycle(domain.Lifecycle{Status: status, Timestamp: clock.Millis(p.clock)})
	if err == nil {
		err = p.store.Put(ctx, domain.LifecycleKey(p.session), raw)
	}
	if err != nil {
		p.log.Warn("announce lifecycle", "status", status, "error", err)
	}
}
