package domain

import (
	"encoding/json"
	"fmt"
	"strings"

	apperrors "countdown/internal/platform/errors"
)

const (
	StatePrefix     = "countdown-agenda-timer-state_"
	CommandPrefix   = "countdown-agenda-command_"
	LifecyclePrefix = "countdown-agenda-lifecycle_"
)

func StateKey(session string) string     { return StatePrefix + session }
func CommandKey(session string) string   { return CommandPrefix + session }
func LifecycleKey(session string) string { return LifecyclePrefix + session }

// SessionFromStateKey extracts the session id from a state key.
func SessionFromStateKey(key string) (string, bool) {
	if !strings.HasPrefix(key, StatePrefix) {
		return "", false
	}
	session := strings.TrimPrefix(key, StatePrefix)
	return session, session != ""
}

// ValidateSession accepts ids that are safe as a store key suffix.
func ValidateSession(session string) error {
	if session == "" {
		return fmt.Errorf("%w: session id is required", apperrors.ErrInvalidInput)
	}
	for _, r := range session {
		ok := r == '-' || r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
		if !ok {
			return fmt.Errorf("%w: session id %q has unsupported characters", apperrors.ErrInvalidInput, session)
		}
	}
	return nil
}

type LifecycleStatus string

const (
	LifecycleOpen   LifecycleStatus = "open"
	LifecycleClosed LifecycleStatus = "closed"
)

// Lifecycle is the primary's announcement to mirrors.
type Lifecycle struct {
	Status    LifecycleStatus `json:"status"`
	Timestamp int64           `json:"timestamp"`
}

func EncodeLifecycle(l Lifecycle) ([]byte, error) {
	raw, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("encode lifecycle: %w", err)
	}
	return raw, nil
}

func DecodeLifecycle(raw []byte) (Lifecycle, error) {
	var l Lifecycle
	if err := json.Unmarshal(raw, &l); err != nil {
		return Lifecycle{}, fmt.Errorf("%w: decode lifecycle: %v", apperrors.ErrInvalidInput, err)
	}
	return l, nil
}
