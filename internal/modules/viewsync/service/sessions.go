package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	timerdomain "countdown/internal/modules/timer/domain"
	"countdown/internal/modules/viewsync/domain"
	syncout "countdown/internal/modules/viewsync/port/out"
	"countdown/internal/platform/clock"
	"countdown/internal/platform/id"
	"countdown/internal/platform/logging"
)

// DefaultSessionTTL is how long an untouched session survives a prune.
const DefaultSessionTTL = 24 * time.Hour

type SessionInfo struct {
	ID          string
	LastUpdated time.Time
	State       timerdomain.State
}

type SessionService struct {
	store syncout.Store
	clock clock.Clock
	idGen id.Generator
	log   *slog.Logger
}

func NewSessionService(store syncout.Store, clk clock.Clock, idGen id.Generator, logger *slog.Logger) *SessionService {
	return &SessionService{store: store, clock: clk, idGen: idGen, log: logging.OrDefault(logger).With("component", "sessions")}
}

// List returns every session with a readable state, most recently updated
// first.
func (s *SessionService) List(ctx context.Context) ([]SessionInfo, error) {
	keys, err := s.store.Keys(ctx, domain.StatePrefix)
	if err != nil {
		return nil, err
	}
	out := make([]SessionInfo, 0, len(keys))
	for _, key := range keys {
		session, ok := domain.SessionFromStateKey(key)
		if !ok {
			continue
		}
		raw, ok, err := s.store.Get(ctx, key)
		if err != nil || !ok {
			continue
		}
		snap, err := timerdomain.DecodeSnapshot(raw)
		if err != nil {
			s.log.Debug("skip unreadable session", "session", session, "error", err)
			continue
		}
		out = append(out, SessionInfo{ID: session, LastUpdated: time.UnixMilli(snap.LastUpdated).UTC(), State: snap.State})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].LastUpdated.After(out[j].LastUpdated) })
	return out, nil
}

// Prune deletes every key of sessions not updated within olderThan and
// returns how many sessions were removed. Unreadable states count as stale.
func (s *SessionService) Prune(ctx context.Context, olderThan time.Duration) (int, error) {
	if olderThan <= 0 {
		olderThan = DefaultSessionTTL
	}
	keys, err := s.store.Keys(ctx, domain.StatePrefix)
	if err != nil {
		return 0, err
	}
	cutoff := s.clock.Now().Add(-olderThan)
	removed := 0
	for _, key := range keys {
		session, ok := domain.SessionFromStateKey(key)
		if !ok {
			continue
		}
		raw, ok, err := s.store.Get(ctx, key)
		if err != nil || !ok {
			continue
		}
		if snap, err := timerdomain.DecodeSnapshot(raw); err == nil && !time.UnixMilli(snap.LastUpdated).Before(cutoff) {
			continue
		}
		for _, k := range []string{domain.StateKey(session), domain.CommandKey(session), domain.LifecycleKey(session)} {
			if err := s.store.Delete(ctx, k); err != nil {
				return removed, fmt.Errorf("prune %s: %w", session, err)
			}
		}
		removed++
	}
	return removed, nil
}

// New returns a fresh session id in the session_<millis>_<random> form.
func (s *SessionService) New() string {
	return fmt.Sprintf("session_%d_%s", clock.Millis(s.clock), s.idGen.New())
}
