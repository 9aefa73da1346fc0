package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions
var (
	ErrNoFileLoaded    = errors.New("no file loaded")
	ErrSeekUnsupported = errors.New("start offset not supported")
	ErrInvalidFormat   = errors.New("unsupported audio format")
	ErrPlaybackFailed  = errors.New("playback failed")
	ErrInvalidVolume   = errors.New("volume must be between 0 and 100")
)

// PlayerError wraps errors with additional context
type PlayerError struct {
	Op    string // Operation that failed
	Track string // File name if applicable
	Err   error  // Underlying error
}

func (e *PlayerError) Error() string {
	if e.Track != "" {
		return fmt.Sprintf("%s failed for %s: %v", e.Op, e.Track, e.Err)
	}
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *PlayerError) Unwrap() error {
	return e.Err
}

// NewPlayerError creates a new PlayerError
func NewPlayerError(op, track string, err error) *PlayerError {
	return &PlayerError{Op: op, Track: track, Err: err}
}
