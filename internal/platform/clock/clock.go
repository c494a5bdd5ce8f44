package clock

import "time"

// Clock abstracts time to keep the engine and sync layer deterministic in tests.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// Millis returns the Unix millisecond timestamp used on the wire.
func Millis(c Clock) int64 {
	return c.Now().UnixMilli()
}
