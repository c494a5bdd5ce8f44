package dto

import (
	"time"

	timerdomain "countdown/internal/modules/timer/domain"
)

type SessionOutput struct {
	ID           string
	LastUpdated  time.Time
	Phase        timerdomain.Phase
	CurrentIndex int
	Items        int
}

type SendInput struct {
	Session string
	Kind    string
}

type PruneOutput struct {
	Removed int
}

// StatusOutput is a session's published state. Found is false when no
// primary has written one yet.
type StatusOutput struct {
	Session     string
	Found       bool
	LastUpdated time.Time
	State       timerdomain.State
}
