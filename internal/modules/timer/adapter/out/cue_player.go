package out

import (
	"context"
	"fmt"
	"io"
	"sync"

	timerout "countdown/internal/modules/timer/port/out"
)

// BellPlayer rings the terminal bell for every cue. Distinct cue ids map to
// a number of rings so start, transition and end stay distinguishable.
type BellPlayer struct {
	mu    sync.Mutex
	w     io.Writer
	rings map[string]int
}

func NewBellPlayer(w io.Writer) timerout.CuePlayer {
	return &BellPlayer{w: w, rings: map[string]int{
		"meeting-chime":   2,
		"simple-medium":   1,
		"meeting-chime-2": 3,
	}}
}

func (p *BellPlayer) Play(ctx context.Context, cueID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	n, ok := p.rings[cueID]
	if !ok {
		n = 1
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = '\a'
	}
	if _, err := p.w.Write(buf); err != nil {
		return fmt.Errorf("ring bell for %s: %w", cueID, err)
	}
	return nil
}

// NopPlayer is used when sound is disabled.
type NopPlayer struct{}

func (NopPlayer) Play(context.Context, string) error { return nil }
