package service

import (
	"sync"
	"time"
)

// TickSource owns one time.Ticker. Stop is safe to call more than once and
// must be called on every exit path.
type TickSource struct {
	ticker *time.Ticker
	once   sync.Once
}

func NewTickSource(interval time.Duration) *TickSource {
	if interval <= 0 {
		interval = time.Second
	}
	return &TickSource{ticker: time.NewTicker(interval)}
}

func (t *TickSource) C() <-chan time.Time {
	return t.ticker.C
}

func (t *TickSource) Stop() {
	t.once.Do(t.ticker.Stop)
}
