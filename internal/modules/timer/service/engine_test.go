package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	agendadomain "countdown/internal/modules/agenda/domain"
	"countdown/internal/modules/timer/domain"
	timerout "countdown/internal/modules/timer/port/out"
	"countdown/internal/modules/timer/service"
	"countdown/internal/platform/logging"
)

type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type fixedID struct{}

func (fixedID) New() string { return "meeting-1" }

type memoryStateStore struct {
	mu      sync.Mutex
	state   *domain.State
	saves   int
	failing bool
}

func (s *memoryStateStore) Load(context.Context) (domain.State, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return domain.State{}, false, errors.New("store offline")
	}
	if s.state == nil {
		return domain.State{}, false, nil
	}
	return s.state.Clone(), true, nil
}

func (s *memoryStateStore) Save(_ context.Context, state domain.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return errors.New("store offline")
	}
	s.saves++
	clone := state.Clone()
	s.state = &clone
	return nil
}

type recordingPlayer struct {
	mu     sync.Mutex
	played []string
	err    error
}

func (p *recordingPlayer) Play(_ context.Context, cueID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.played = append(p.played, cueID)
	return p.err
}

func settingsOf(minutes ...int) agendadomain.Settings {
	settings := agendadomain.DefaultSettings()
	settings.Agenda = nil
	for _, m := range minutes {
		settings.Agenda = append(settings.Agenda, agendadomain.Item{Title: "item", Minutes: m})
	}
	return settings
}

func newEngine(t *testing.T, store *memoryStateStore, player *recordingPlayer, settings agendadomain.Settings) (*service.Engine, *manualClock) {
	t.Helper()
	clk := &manualClock{now: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)}
	var cues timerout.CuePlayer
	if player != nil {
		cues = player
	}
	engine := service.NewEngine(clk, fixedID{}, store, cues, logging.Discard())
	engine.Load(context.Background(), settings)
	return engine, clk
}

func TestEngineTickUsesWallClockDelta(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := &memoryStateStore{}
	engine, clk := newEngine(t, store, &recordingPlayer{}, settingsOf(5))
	if _, err := engine.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	clk.Advance(1500 * time.Millisecond)
	if s := engine.Tick(ctx); s.TotalElapsedSeconds != 1 {
		t.Fatalf("expected 1s after 1.5s, got %d", s.TotalElapsedSeconds)
	}
	clk.Advance(500 * time.Millisecond)
	if s := engine.Tick(ctx); s.TotalElapsedSeconds != 2 {
		t.Fatalf("remainder should carry over, got %d", s.TotalElapsedSeconds)
	}
	clk.Advance(40 * time.Second)
	if s := engine.Tick(ctx); s.TotalElapsedSeconds != 42 || s.TimeLeftSeconds != 258 {
		t.Fatalf("delayed tick should catch up, got %+v", s)
	}
	if store.state == nil || store.state.TotalElapsedSeconds != 42 {
		t.Fatalf("every mutation should be saved, got %+v", store.state)
	}
}

func TestEnginePauseDiscardsBacklog(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	engine, clk := newEngine(t, &memoryStateStore{}, &recordingPlayer{}, settingsOf(5))
	if _, err := engine.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	clk.Advance(10 * time.Second)
	engine.Tick(ctx)
	if s := engine.TogglePause(ctx); s.Running {
		t.Fatalf("expected paused")
	}
	clk.Advance(5 * time.Minute)
	engine.Tick(ctx)
	s := engine.TogglePause(ctx)
	if !s.Running || s.TotalElapsedSeconds != 10 {
		t.Fatalf("resume should keep total 10, got %+v", s)
	}
	if s := engine.Tick(ctx); s.TotalElapsedSeconds != 10 {
		t.Fatalf("first tick after resume should not catch up, got %d", s.TotalElapsedSeconds)
	}
}

func TestEngineRecoversFromBackwardClockStep(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	engine, clk := newEngine(t, &memoryStateStore{}, nil, settingsOf(5))
	if _, err := engine.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	clk.Advance(10 * time.Second)
	engine.Tick(ctx)

	clk.Advance(-time.Hour)
	if s := engine.Tick(ctx); s.TotalElapsedSeconds != 10 {
		t.Fatalf("a backward step should not count, got %d", s.TotalElapsedSeconds)
	}
	for i := 0; i < 120; i++ {
		clk.Advance(time.Second)
		engine.Tick(ctx)
	}
	s := engine.Snapshot()
	if s.TotalElapsedSeconds != 130 || s.TimeLeftSeconds != 170 {
		t.Fatalf("expected counting to continue after the step, got total=%d timeLeft=%d", s.TotalElapsedSeconds, s.TimeLeftSeconds)
	}
}

func TestEngineItemChangeDropsTickRemainder(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	engine, clk := newEngine(t, &memoryStateStore{}, nil, settingsOf(5, 5))
	if _, err := engine.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	clk.Advance(10700 * time.Millisecond)
	engine.Tick(ctx)
	engine.Next(ctx)

	clk.Advance(500 * time.Millisecond)
	if s := engine.Tick(ctx); s.TotalElapsedSeconds != 10 || s.Records[1].ActualSeconds != 0 {
		t.Fatalf("previous item's remainder was billed to the next, got %+v", s)
	}
	clk.Advance(500 * time.Millisecond)
	if s := engine.Tick(ctx); s.Records[1].ActualSeconds != 1 {
		t.Fatalf("expected one full second on the new item, got %+v", s.Records[1])
	}

	clk.Advance(700 * time.Millisecond)
	engine.Previous(ctx)
	clk.Advance(500 * time.Millisecond)
	if s := engine.Tick(ctx); s.Records[0].ActualSeconds != 10 {
		t.Fatalf("stepping back should start the item without a remainder, got %+v", s.Records[0])
	}
}

func TestEngineSetRunningIsDirectional(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := &memoryStateStore{}
	engine, _ := newEngine(t, store, &recordingPlayer{}, settingsOf(5))
	if s := engine.SetRunning(ctx, true); s.Running {
		t.Fatalf("resume before start should be a no-op")
	}
	if _, err := engine.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	saves := store.saves
	if s := engine.SetRunning(ctx, true); !s.Running || store.saves != saves {
		t.Fatalf("resume while running should not mutate")
	}
	if s := engine.SetRunning(ctx, false); s.Running {
		t.Fatalf("pause should stop running")
	}
	if s := engine.SetRunning(ctx, false); s.Running || store.saves != saves+1 {
		t.Fatalf("second pause should not mutate")
	}
}

func TestEngineScrubGesture(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	engine, clk := newEngine(t, &memoryStateStore{}, &recordingPlayer{}, settingsOf(10))
	if _, err := engine.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if s := engine.Scrub(ctx, 0.5); s.TimeLeftSeconds != 600 {
		t.Fatalf("scrub outside a gesture should be ignored")
	}
	engine.BeginScrub(ctx)
	engine.Scrub(ctx, 0.2)
	s := engine.Scrub(ctx, 0.5)
	if s.TimeLeftSeconds != 300 || s.Running {
		t.Fatalf("unexpected state during scrub %+v", s)
	}
	clk.Advance(30 * time.Second)
	if s := engine.Tick(ctx); s.TotalElapsedSeconds != 300 {
		t.Fatalf("ticks should be suspended while dragging, got %d", s.TotalElapsedSeconds)
	}
	s = engine.EndScrub(ctx)
	if !s.Running {
		t.Fatalf("gesture end should resume a running timer")
	}
	clk.Advance(2 * time.Second)
	if s := engine.Tick(ctx); s.TotalElapsedSeconds != 302 {
		t.Fatalf("tick reference should reset at gesture end, got %d", s.TotalElapsedSeconds)
	}

	engine.TogglePause(ctx)
	engine.BeginScrub(ctx)
	if s := engine.EndScrub(ctx); s.Running {
		t.Fatalf("gesture end should keep a paused timer paused")
	}
}

func TestEngineCuesResolveSelections(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	player := &recordingPlayer{err: errors.New("no audio device")}
	settings := settingsOf(1, 1)
	settings.Cues[agendadomain.CueTransition] = ""
	engine, _ := newEngine(t, &memoryStateStore{}, player, settings)
	if _, err := engine.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	engine.Next(ctx)
	s := engine.Next(ctx)
	if !s.PendingEndDecision {
		t.Fatalf("expected end decision after last item")
	}
	want := []string{"meeting-chime", "meeting-chime-2"}
	if len(player.played) != len(want) || player.played[0] != want[0] || player.played[1] != want[1] {
		t.Fatalf("unexpected cues %v", player.played)
	}
}

func TestEngineDecideStampsSummary(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	engine, clk := newEngine(t, &memoryStateStore{}, nil, settingsOf(1))
	if _, err := engine.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	clk.Advance(65 * time.Second)
	engine.Tick(ctx)
	engine.Next(ctx)
	state, summary, err := engine.Decide(ctx, true)
	if err != nil {
		t.Fatalf("decide: %v", err)
	}
	if summary == nil || summary.MeetingID != "meeting-1" || summary.Title != "L10 Meeting Agenda" || summary.TotalElapsedSeconds != 65 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if !summary.EndedAt.Equal(clk.Now()) {
		t.Fatalf("summary should carry the end time")
	}
	if !state.MeetingCompleted || state.TotalElapsedSeconds != 0 {
		t.Fatalf("unexpected state %+v", state)
	}
}

func TestEngineSurvivesStoreFailure(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := &memoryStateStore{failing: true}
	engine, clk := newEngine(t, store, &recordingPlayer{}, settingsOf(5))
	if _, err := engine.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	clk.Advance(3 * time.Second)
	if s := engine.Tick(ctx); s.TotalElapsedSeconds != 3 {
		t.Fatalf("timer should progress without storage, got %d", s.TotalElapsedSeconds)
	}
}

func TestEngineLoadRestoresSavedState(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := &memoryStateStore{}
	first, clk := newEngine(t, store, nil, settingsOf(5, 5))
	if _, err := first.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	clk.Advance(20 * time.Second)
	first.Tick(ctx)

	second, _ := newEngine(t, store, nil, settingsOf(5, 5))
	s := second.Snapshot()
	if s.TotalElapsedSeconds != 20 || !s.Running {
		t.Fatalf("expected restored state, got %+v", s)
	}
}

func TestEngineReplaceSettingsResetsRunningMeeting(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	engine, clk := newEngine(t, &memoryStateStore{}, nil, settingsOf(5))
	if _, err := engine.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	clk.Advance(30 * time.Second)
	engine.Tick(ctx)
	s := engine.ReplaceSettings(ctx, settingsOf(2, 2, 2))
	if s.CurrentIndex != nil || s.TotalElapsedSeconds != 0 || len(s.Records) != 3 {
		t.Fatalf("expected reset to the new agenda, got %+v", s)
	}
}

func TestEngineSubscribeReceivesCommits(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	engine, _ := newEngine(t, &memoryStateStore{}, nil, settingsOf(5))
	updates := engine.Subscribe(4)
	if _, err := engine.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	select {
	case s := <-updates:
		if !s.Running {
			t.Fatalf("expected running state, got %+v", s)
		}
	default:
		t.Fatalf("expected a committed state")
	}
}

func TestEngineRunStopsWithContext(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	engine, _ := newEngine(t, &memoryStateStore{}, nil, settingsOf(5))
	if _, err := engine.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	done := make(chan struct{})
	go func() {
		engine.Run(ctx, 5*time.Millisecond)
		close(done)
	}()
	engine.TogglePause(ctx)
	engine.TogglePause(ctx)
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("run should return after cancel")
	}
}

func TestTickSourceStopIsIdempotent(t *testing.T) {
	t.Parallel()
	src := service.NewTickSource(0)
	src.Stop()
	src.Stop()
}
