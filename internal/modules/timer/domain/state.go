package domain

import (
	"encoding/json"
	"fmt"

	apperrors "countdown/internal/platform/errors"
)

// ItemRecord is the ledger entry for one agenda item, index-aligned with the
// agenda. OvertimeSeconds is always max(0, ActualSeconds-PlannedSeconds).
type ItemRecord struct {
	PlannedSeconds  int  `json:"plannedDurationSeconds"`
	ActualSeconds   int  `json:"actualDurationSeconds"`
	OvertimeSeconds int  `json:"overtimeSeconds"`
	Completed       bool `json:"completed"`
}

// State is the machine snapshot owned by the primary view. A nil
// CurrentIndex means the meeting has not started or was reset.
type State struct {
	CurrentIndex        *int         `json:"currentItemIndex"`
	TimeLeftSeconds     int          `json:"timeLeftSeconds"`
	Running             bool         `json:"running"`
	TotalElapsedSeconds int          `json:"totalElapsedSeconds"`
	IsOvertime          bool         `json:"isOvertime"`
	OvertimeSeconds     int          `json:"overtimeSeconds"`
	Records             []ItemRecord `json:"itemTimeRecords"`
	MeetingCompleted    bool         `json:"meetingCompleted"`
	PendingEndDecision  bool         `json:"pendingEndDecision"`
	ManualEndAvailable  bool         `json:"manualEndAvailable"`
}

// Clone returns a deep copy.
func (s State) Clone() State {
	out := s
	if s.CurrentIndex != nil {
		idx := *s.CurrentIndex
		out.CurrentIndex = &idx
	}
	if s.Records != nil {
		out.Records = append([]ItemRecord(nil), s.Records...)
	}
	return out
}

// Index returns the current item index and whether a meeting item is active.
func (s State) Index() (int, bool) {
	if s.CurrentIndex == nil {
		return 0, false
	}
	return *s.CurrentIndex, true
}

// Current returns the ledger record of the active item.
func (s State) Current() (ItemRecord, bool) {
	idx, ok := s.Index()
	if !ok || idx < 0 || idx >= len(s.Records) {
		return ItemRecord{}, false
	}
	return s.Records[idx], true
}

// Snapshot is the persisted form of State.
type Snapshot struct {
	State
	LastUpdated int64 `json:"lastUpdated"`
}

func EncodeSnapshot(state State, lastUpdated int64) ([]byte, error) {
	raw, err := json.Marshal(Snapshot{State: state, LastUpdated: lastUpdated})
	if err != nil {
		return nil, fmt.Errorf("encode timer state: %w", err)
	}
	return raw, nil
}

func DecodeSnapshot(raw []byte) (Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("%w: decode timer state: %v", apperrors.ErrInvalidInput, err)
	}
	if err := snap.State.validate(); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

func (s State) validate() error {
	if s.TimeLeftSeconds < 0 || s.TotalElapsedSeconds < 0 || s.OvertimeSeconds < 0 {
		return fmt.Errorf("%w: negative duration in timer state", apperrors.ErrInvalidInput)
	}
	if idx, ok := s.Index(); ok && (idx < 0 || idx >= len(s.Records)) {
		return fmt.Errorf("%w: current item %d outside ledger of %d", apperrors.ErrInvalidInput, idx, len(s.Records))
	}
	for i, rec := range s.Records {
		if rec.ActualSeconds < 0 || rec.PlannedSeconds < 0 || rec.OvertimeSeconds < 0 {
			return fmt.Errorf("%w: negative duration in record %d", apperrors.ErrInvalidInput, i)
		}
	}
	return nil
}
