package player

import (
	"time"

	"github.com/jscyril/mp3deck/api"
)

// Mixer is the audio backend the controller drives. Loops follows the
// api.LoopMode convention: -1 repeats forever, 0 plays once.
type Mixer interface {
	Load(path string) error
	Play(loops int, start time.Duration) error
	Pause()
	Unpause()
	Stop()
	Rewind() error
	SetVolume(gain float64)
	// Busy reports whether audio is currently audible.
	Busy() bool
}

// Seeker is implemented by mixers that can report and change the
// playback position.
type Seeker interface {
	Position() time.Duration
	Duration() time.Duration
	Seek(pos time.Duration) error
}

// Notifier is implemented by mixers that signal when a track runs out.
type Notifier interface {
	Finished() <-chan struct{}
}

// TrackReader builds the track description shown after a load.
type TrackReader interface {
	Read(path string) (*api.Track, error)
}
