package apperrors

import "errors"

var (
	ErrInvalidInput         = errors.New("invalid input")
	ErrNotFound             = errors.New("not found")
	ErrNoActiveMeeting      = errors.New("no active meeting")
	ErrNoDecisionPending    = errors.New("no end-of-meeting decision pending")
	ErrManualEndUnavailable = errors.New("manual end is not available")
	ErrStoreUnavailable     = errors.New("store unavailable")
)
