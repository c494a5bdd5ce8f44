package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	agendadomain "countdown/internal/modules/agenda/domain"
	"countdown/internal/modules/timer/domain"
	timerout "countdown/internal/modules/timer/port/out"
	"countdown/internal/platform/clock"
	"countdown/internal/platform/id"
	"countdown/internal/platform/logging"
)

// Engine drives a Machine from wall-clock time. It is the only writer of
// timer state: every mutation is saved, its cues are played and subscribers
// are notified before the call returns.
type Engine struct {
	mu         sync.Mutex
	clock      clock.Clock
	idGen      id.Generator
	store      timerout.StateStore
	cues       timerout.CuePlayer
	log        *slog.Logger
	machine    *domain.Machine
	settings   agendadomain.Settings
	lastTick   time.Time
	dragging   bool
	wasRunning bool
	wake       chan struct{}
	subs       []chan domain.State
}

func NewEngine(clk clock.Clock, idGen id.Generator, store timerout.StateStore, cues timerout.CuePlayer, logger *slog.Logger) *Engine {
	return &Engine{
		clock:   clk,
		idGen:   idGen,
		store:   store,
		cues:    cues,
		log:     logging.OrDefault(logger).With("component", "timer"),
		machine: domain.NewMachine(nil),
		wake:    make(chan struct{}, 1),
	}
}

// Load restores the last saved state for settings' agenda. A missing or
// unreadable snapshot starts from defaults.
func (e *Engine) Load(ctx context.Context, settings agendadomain.Settings) domain.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.settings = settings
	e.machine = domain.NewMachine(settings.Agenda)
	if e.store != nil {
		state, ok, err := e.store.Load(ctx)
		switch {
		case err != nil:
			e.log.Warn("load timer state", "error", err)
		case ok:
			e.machine = domain.RestoreMachine(settings.Agenda, state)
		}
	}
	e.lastTick = e.clock.Now()
	return e.commitLocked(ctx)
}

func (e *Engine) Snapshot() domain.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.machine.State()
}

func (e *Engine) Settings() agendadomain.Settings {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.settings
}

// Subscribe returns a channel receiving every committed state. Slow readers
// miss intermediate states rather than blocking the engine.
func (e *Engine) Subscribe(buffer int) <-chan domain.State {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan domain.State, buffer)
	e.mu.Lock()
	e.subs = append(e.subs, ch)
	e.mu.Unlock()
	return ch
}

func (e *Engine) Start(ctx context.Context) (domain.State, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.machine.Start(); err != nil {
		return e.machine.State(), err
	}
	e.dragging = false
	e.lastTick = e.clock.Now()
	return e.commitLocked(ctx), nil
}

// Tick accounts the whole seconds elapsed since the previous tick. The
// sub-second remainder carries over to the next tick. A clock that stepped
// backwards re-anchors the reference so the timer keeps counting from now.
func (e *Engine) Tick(ctx context.Context) domain.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.machine.State().Running || e.dragging {
		return e.machine.State()
	}
	now := e.clock.Now()
	if now.Before(e.lastTick) {
		e.log.Warn("clock stepped backwards", "by", e.lastTick.Sub(now))
		e.lastTick = now
		return e.machine.State()
	}
	elapsed := int(now.Sub(e.lastTick) / time.Second)
	if elapsed <= 0 {
		return e.machine.State()
	}
	e.lastTick = e.lastTick.Add(time.Duration(elapsed) * time.Second)
	e.machine.Tick(elapsed)
	return e.commitLocked(ctx)
}

func (e *Engine) TogglePause(ctx context.Context) domain.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.machine.TogglePauseResume() {
		e.lastTick = e.clock.Now()
	}
	return e.commitLocked(ctx)
}

// SetRunning pauses or resumes only when the timer is in the other state.
func (e *Engine) SetRunning(ctx context.Context, running bool) domain.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	state := e.machine.State()
	if state.CurrentIndex == nil || state.Running == running || e.dragging {
		return state
	}
	e.machine.SetRunning(running)
	if running {
		e.lastTick = e.clock.Now()
	}
	return e.commitLocked(ctx)
}

// Next and Previous restart the tick reference: the new item starts with no
// sub-second remainder from the one it replaced.
func (e *Engine) Next(ctx context.Context) domain.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.machine.SkipToNext()
	e.lastTick = e.clock.Now()
	return e.commitLocked(ctx)
}

func (e *Engine) Previous(ctx context.Context) domain.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.machine.SkipToPrevious()
	e.lastTick = e.clock.Now()
	return e.commitLocked(ctx)
}

func (e *Engine) Reset(ctx context.Context) domain.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.machine.Reset()
	e.dragging = false
	e.lastTick = e.clock.Now()
	return e.commitLocked(ctx)
}

// BeginScrub suspends ticking until EndScrub.
func (e *Engine) BeginScrub(ctx context.Context) domain.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	state := e.machine.State()
	if e.dragging || state.CurrentIndex == nil {
		return state
	}
	e.dragging = true
	e.wasRunning = state.Running
	e.machine.SetRunning(false)
	return e.commitLocked(ctx)
}

func (e *Engine) Scrub(ctx context.Context, fraction float64) domain.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.dragging {
		return e.machine.State()
	}
	e.machine.Scrub(fraction)
	return e.commitLocked(ctx)
}

func (e *Engine) EndScrub(ctx context.Context) domain.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.dragging {
		return e.machine.State()
	}
	e.dragging = false
	if e.wasRunning {
		e.machine.SetRunning(true)
		e.lastTick = e.clock.Now()
	}
	e.wasRunning = false
	return e.commitLocked(ctx)
}

// Decide resolves the end-of-agenda gate. The summary is non-nil only when
// the meeting ended.
func (e *Engine) Decide(ctx context.Context, endNow bool) (domain.State, *domain.Summary, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	summary, ended, err := e.machine.Decide(endNow)
	if err != nil {
		return e.machine.State(), nil, err
	}
	state := e.commitLocked(ctx)
	if !ended {
		return state, nil, nil
	}
	e.stamp(&summary)
	return state, &summary, nil
}

func (e *Engine) EndManually(ctx context.Context) (domain.State, domain.Summary, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	summary, err := e.machine.EndManually()
	if err != nil {
		return e.machine.State(), domain.Summary{}, err
	}
	e.stamp(&summary)
	return e.commitLocked(ctx), summary, nil
}

// ApplySettings reacts to an edited agenda, title or cue selection.
func (e *Engine) ApplySettings(ctx context.Context, settings agendadomain.Settings) domain.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.settings = settings
	e.machine.OnAgendaEdited(settings.Agenda)
	return e.commitLocked(ctx)
}

// ReplaceSettings installs new settings and resets the machine when a
// meeting is running.
func (e *Engine) ReplaceSettings(ctx context.Context, settings agendadomain.Settings) domain.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	running := e.machine.State().Running
	e.settings = settings
	e.machine.OnAgendaEdited(settings.Agenda)
	if running {
		e.machine.Reset()
		e.dragging = false
	}
	return e.commitLocked(ctx)
}

// Run ticks while the timer is running and sleeps otherwise, so a paused
// timer owns no ticker. It returns when ctx is done.
func (e *Engine) Run(ctx context.Context, interval time.Duration) {
	for {
		if !e.ticking() {
			select {
			case <-ctx.Done():
				return
			case <-e.wake:
				continue
			}
		}
		if !e.tickUntilIdle(ctx, NewTickSource(interval)) {
			return
		}
	}
}

func (e *Engine) tickUntilIdle(ctx context.Context, src *TickSource) bool {
	defer src.Stop()
	for {
		select {
		case <-ctx.Done():
			return false
		case <-src.C():
			e.Tick(ctx)
		case <-e.wake:
		}
		if !e.ticking() {
			return true
		}
	}
}

func (e *Engine) ticking() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.machine.State().Running && !e.dragging
}

func (e *Engine) stamp(summary *domain.Summary) {
	summary.MeetingID = e.idGen.New()
	summary.Title = e.settings.Title
	summary.EndedAt = e.clock.Now()
}

func (e *Engine) commitLocked(ctx context.Context) domain.State {
	state := e.machine.State()
	if e.store != nil {
		if err := e.store.Save(ctx, state); err != nil {
			e.log.Warn("save timer state", "error", err)
		}
	}
	for _, kind := range e.machine.DrainCues() {
		e.play(ctx, kind)
	}
	for _, ch := range e.subs {
		select {
		case ch <- state.Clone():
		default:
		}
	}
	select {
	case e.wake <- struct{}{}:
	default:
	}
	return state
}

func (e *Engine) play(ctx context.Context, kind agendadomain.CueKind) {
	if e.cues == nil {
		return
	}
	cueID := e.settings.CueID(kind)
	if cueID == "" {
		e.log.Debug("no cue selected", "kind", kind)
		return
	}
	if err := e.cues.Play(ctx, cueID); err != nil {
		e.log.Debug("play cue", "kind", kind, "cue", cueID, "error", err)
	}
}
