package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	timerdomain "countdown/internal/modules/timer/domain"
	"countdown/internal/modules/viewsync/domain"
	syncout "countdown/internal/modules/viewsync/port/out"
	"countdown/internal/platform/clock"
	"countdown/internal/platform/logging"
)

// Mirror holds a read-only copy of a session's timer state and sends
// commands to its primary.
type Mirror struct {
	store   syncout.Store
	clock   clock.Clock
	session string
	log     *slog.Logger

	mu          sync.Mutex
	state       timerdomain.State
	lastUpdated int64
	updates     chan timerdomain.State
	closed      chan struct{}
	closeOnce   sync.Once
}

func NewMirror(store syncout.Store, clk clock.Clock, session string, logger *slog.Logger) *Mirror {
	return &Mirror{
		store:   store,
		clock:   clk,
		session: session,
		log:     logging.OrDefault(logger).With("component", "viewsync", "role", "mirror", "session", session),
		updates: make(chan timerdomain.State, 1),
		closed:  make(chan struct{}),
	}
}

func (m *Mirror) State() (timerdomain.State, int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Clone(), m.lastUpdated
}

// Updates carries the latest replaced state. Only the newest pending state
// is kept for a slow reader.
func (m *Mirror) Updates() <-chan timerdomain.State {
	return m.updates
}

// Closed is closed once the primary announced shutdown.
func (m *Mirror) Closed() <-chan struct{} {
	return m.closed
}

// Issue writes cmd to the command key, overwriting the previous one.
func (m *Mirror) Issue(ctx context.Context, kind domain.CommandKind) error {
	raw, err := domain.EncodeCommand(domain.Command{Kind: kind, IssuedAt: clock.Millis(m.clock)})
	if err != nil {
		return err
	}
	if err := m.store.Put(ctx, domain.CommandKey(m.session), raw); err != nil {
		return fmt.Errorf("issue %s: %w", kind, err)
	}
	return nil
}

// Refresh loads the stored state once.
func (m *Mirror) Refresh(ctx context.Context) error {
	raw, ok, err := m.store.Get(ctx, domain.StateKey(m.session))
	if err != nil {
		return err
	}
	if ok {
		m.replace(raw)
	}
	return nil
}

// Run follows the state and lifecycle keys until ctx is done.
func (m *Mirror) Run(ctx context.Context) error {
	states, err := m.store.Watch(ctx, domain.StateKey(m.session))
	if err != nil {
		return fmt.Errorf("watch state: %w", err)
	}
	lifecycle, err := m.store.Watch(ctx, domain.LifecycleKey(m.session))
	if err != nil {
		return fmt.Errorf("watch lifecycle: %w", err)
	}
	if err := m.Refresh(ctx); err != nil {
		m.log.Warn("load state", "error", err)
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case raw, ok := <-states:
			if !ok {
				return nil
			}
			if raw != nil {
				m.replace(raw)
			}
		case raw, ok := <-lifecycle:
			if !ok {
				return nil
			}
			m.observeLifecycle(raw)
		}
	}
}

func (m *Mirror) replace(raw []byte) {
	snap, err := timerdomain.DecodeSnapshot(raw)
	if err != nil {
		m.log.Debug("drop state", "error", err)
		return
	}
	m.mu.Lock()
	m.state = snap.State
	m.lastUpdated = snap.LastUpdated
	m.mu.Unlock()
	select {
	case <-m.updates:
	default:
	}
	select {
	case m.updates <- snap.State.Clone():
	default:
	}
}

func (m *Mirror) observeLifecycle(raw []byte) {
	if raw == nil {
		return
	}
	l, err := domain.DecodeLifecycle(raw)
	if err != nil {
		m.log.Debug("drop lifecycle", "error", err)
		return
	}
	if l.Status == domain.LifecycleClosed {
		m.closeOnce.Do(func() { close(m.closed) })
	}
}
