package domain

import (
	"errors"
	"testing"

	apperrors "countdown/internal/platform/errors"
)

func TestDecodeCommand(t *testing.T) {
	t.Parallel()
	cmd, err := DecodeCommand([]byte(`{"command":"NEXT","timestamp":1767225600000}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cmd.Kind != CommandNext || cmd.IssuedAt != 1767225600000 {
		t.Fatalf("unexpected command %+v", cmd)
	}
	for _, raw := range []string{`{`, `{"command":"skip","timestamp":1}`, `{"command":"pause"}`, `[]`} {
		if _, err := DecodeCommand([]byte(raw)); !errors.Is(err, apperrors.ErrInvalidInput) {
			t.Fatalf("expected invalid input for %s, got %v", raw, err)
		}
	}
}

func TestEncodeCommandWireForm(t *testing.T) {
	t.Parallel()
	raw, err := EncodeCommand(Command{Kind: CommandReset, IssuedAt: 42})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if string(raw) != `{"command":"reset","timestamp":42}` {
		t.Fatalf("unexpected wire form %s", raw)
	}
	if _, err := EncodeCommand(Command{Kind: "skip", IssuedAt: 1}); err == nil {
		t.Fatalf("unknown kind should not encode")
	}
}

func TestDeduperAtMostOnce(t *testing.T) {
	t.Parallel()
	d := NewDeduper(2)
	a := Command{Kind: CommandPause, IssuedAt: 1}
	b := Command{Kind: CommandResume, IssuedAt: 1}
	c := Command{Kind: CommandPause, IssuedAt: 2}
	if !d.First(a) || d.First(a) {
		t.Fatalf("same kind and timestamp should pass once")
	}
	if !d.First(b) {
		t.Fatalf("different kind at the same timestamp is a new command")
	}
	if !d.First(c) {
		t.Fatalf("new timestamp is a new command")
	}
	if !d.First(a) {
		t.Fatalf("oldest entry should be evicted past the limit")
	}
}

func TestKeysAndSessions(t *testing.T) {
	t.Parallel()
	if StateKey("s1") != "countdown-agenda-timer-state_s1" || CommandKey("s1") != "countdown-agenda-command_s1" {
		t.Fatalf("unexpected keys")
	}
	if s, ok := SessionFromStateKey(StateKey("abc")); !ok || s != "abc" {
		t.Fatalf("expected abc, got %q", s)
	}
	if _, ok := SessionFromStateKey(CommandKey("abc")); ok {
		t.Fatalf("command key is not a state key")
	}
	if err := ValidateSession("../etc"); err == nil {
		t.Fatalf("path-like session should be rejected")
	}
	if err := ValidateSession("session_1767225600_ab12"); err != nil {
		t.Fatalf("valid session rejected: %v", err)
	}
}
