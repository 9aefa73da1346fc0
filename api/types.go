package api

import "time"

type Track struct {
	ID       string        `json:"id"`
	Title    string        `json:"title"`
	Artist   string        `json:"artist"`
	Album    string        `json:"album"`
	Year     int           `json:"year"`
	Duration time.Duration `json:"duration"`
	FilePath string        `json:"file_path"`
	FileName string        `json:"file_name"`
	Size     int64         `json:"size"`
}

// PlaybackStatus is the audible state of the loaded track.
type PlaybackStatus int

const (
	StatusStopped PlaybackStatus = iota
	StatusPlaying
	StatusPaused
)

func (s PlaybackStatus) String() string {
	switch s {
	case StatusPlaying:
		return "playing"
	case StatusPaused:
		return "paused"
	default:
		return "stopped"
	}
}

// LoopMode controls whether the track repeats when it ends.
type LoopMode int

const (
	LoopOff LoopMode = iota
	LoopInfinite
)

func (m LoopMode) String() string {
	if m == LoopInfinite {
		return "on"
	}
	return "off"
}

// Loops returns the repeat count handed to the mixer: -1 repeats forever,
// 0 plays the track once.
func (m LoopMode) Loops() int {
	if m == LoopInfinite {
		return -1
	}
	return 0
}

// State is an immutable snapshot of the controller, ready for rendering.
type State struct {
	Status    PlaybackStatus
	Loop      LoopMode
	Track     *Track
	Volume    float64 // slider value, 0-100
	Message   string
	PlayLabel string
	LoopLabel string
	Position  time.Duration
	Duration  time.Duration
}

// EventType identifies what a PlayerEvent reports.
type EventType int

const (
	EventStateChange EventType = iota
	EventTrackLoaded
	EventTrackEnded
	EventSeekDegraded
	EventError
)

func (t EventType) String() string {
	switch t {
	case EventStateChange:
		return "state_change"
	case EventTrackLoaded:
		return "track_loaded"
	case EventTrackEnded:
		return "track_ended"
	case EventSeekDegraded:
		return "seek_degraded"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// PlayerEvent is published on the event bus after a controller transition.
type PlayerEvent struct {
	Type    EventType
	State   State
	Payload interface{}
}
