package domain

import (
	"encoding/json"
	"fmt"
	"strings"

	apperrors "countdown/internal/platform/errors"
)

type CommandKind string

const (
	CommandPause    CommandKind = "pause"
	CommandResume   CommandKind = "resume"
	CommandNext     CommandKind = "next"
	CommandPrevious CommandKind = "previous"
	CommandReset    CommandKind = "reset"
)

var commandKinds = []CommandKind{CommandPause, CommandResume, CommandNext, CommandPrevious, CommandReset}

func CommandKinds() []CommandKind {
	return append([]CommandKind(nil), commandKinds...)
}

func ParseCommandKind(raw string) (CommandKind, error) {
	kind := CommandKind(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range commandKinds {
		if kind == known {
			return kind, nil
		}
	}
	return "", fmt.Errorf("%w: unknown command %q", apperrors.ErrInvalidInput, raw)
}

// Command is the pop-out's request to the primary. The stored key holds only
// the latest one.
type Command struct {
	Kind     CommandKind `json:"command"`
	IssuedAt int64       `json:"timestamp"`
}

func EncodeCommand(cmd Command) ([]byte, error) {
	if _, err := ParseCommandKind(string(cmd.Kind)); err != nil {
		return nil, err
	}
	raw, err := json.Marshal(cmd)
	if err != nil {
		return nil, fmt.Errorf("encode command: %w", err)
	}
	return raw, nil
}

// DecodeCommand rejects malformed payloads, unknown kinds and missing
// timestamps.
func DecodeCommand(raw []byte) (Command, error) {
	var wire struct {
		Command   string `json:"command"`
		Timestamp int64  `json:"timestamp"`
	}
	if err := json.Unmarshal(raw, &wire); err != nil {
		return Command{}, fmt.Errorf("%w: decode command: %v", apperrors.ErrInvalidInput, err)
	}
	kind, err := ParseCommandKind(wire.Command)
	if err != nil {
		return Command{}, err
	}
	if wire.Timestamp <= 0 {
		return Command{}, fmt.Errorf("%w: command without timestamp", apperrors.ErrInvalidInput)
	}
	return Command{Kind: kind, IssuedAt: wire.Timestamp}, nil
}

// Deduper remembers the most recent commands so each kind+timestamp pair is
// applied at most once.
type Deduper struct {
	limit int
	seen  map[Command]struct{}
	order []Command
}

func NewDeduper(limit int) *Deduper {
	if limit <= 0 {
		limit = 256
	}
	return &Deduper{limit: limit, seen: make(map[Command]struct{}, limit)}
}

// First reports whether cmd has not been seen before, and records it.
func (d *Deduper) First(cmd Command) bool {
	if _, ok := d.seen[cmd]; ok {
		return false
	}
	d.seen[cmd] = struct{}{}
	d.order = append(d.order, cmd)
	if len(d.order) > d.limit {
		delete(d.seen, d.order[0])
		d.order = d.order[1:]
	}
	return true
}
