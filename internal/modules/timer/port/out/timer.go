package out

import (
	"context"

	"countdown/internal/modules/timer/domain"
)

// StateStore persists the machine snapshot. Load reports false when nothing
// was stored yet.
type StateStore interface {
	Load(ctx context.Context) (domain.State, bool, error)
	Save(ctx context.Context, state domain.State) error
}

// CuePlayer plays a named sound cue. Failures are never fatal to the timer.
type CuePlayer interface {
	Play(ctx context.Context, cueID string) error
}

// SummaryArchive writes a human-readable record of an ended meeting and
// returns where it was stored.
type SummaryArchive interface {
	Archive(ctx context.Context, summary domain.Summary) (string, error)
}

type MeetingEntry struct {
	Summary     domain.Summary
	ArchivePath string
}

type MeetingIndex interface {
	Record(ctx context.Context, entry MeetingEntry) error
	List(ctx context.Context, limit int) ([]MeetingEntry, error)
	// Get returns the meeting with the given id, or the most recent one when
	// id is empty.
	Get(ctx context.Context, meetingID string) (MeetingEntry, error)
}

// SummaryPublisher hands an ended meeting to outbound exporters. It must not
// block and has no result.
type SummaryPublisher interface {
	Publish(ctx context.Context, summary domain.Summary)
}
