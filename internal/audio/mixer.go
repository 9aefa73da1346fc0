package audio

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	"github.com/faiface/beep/speaker"
	"github.com/jscyril/mp3deck/internal/player"
	playerrors "github.com/jscyril/mp3deck/pkg/errors"
)

// Ensure BeepMixer satisfies the controller's interfaces at compile time
var (
	_ player.Mixer    = (*BeepMixer)(nil)
	_ player.Seeker   = (*BeepMixer)(nil)
	_ player.Notifier = (*BeepMixer)(nil)
)

// resampleQuality is passed to beep.Resample when a file's rate differs
// from the speaker's.
const resampleQuality = 4

// BeepMixer plays one file at a time through the beep speaker.
//
// Lock order is m.mu, then the speaker lock. The end-of-track callback runs
// on the speaker goroutine with the speaker lock held, so it only touches
// atomics.
type BeepMixer struct {
	mu         sync.Mutex
	sampleRate beep.SampleRate
	path       string
	streamer   beep.StreamSeekCloser
	format     beep.Format
	ctrl       *beep.Ctrl
	volume     *effects.Volume
	gain       float64
	logger     *log.Logger
	started    bool
	paused     bool

	generation atomic.Uint64
	ended      atomic.Bool
	finished   chan struct{}
}

// NewBeepMixer initialises the speaker. A failure here means there is no
// usable audio device.
func NewBeepMixer(sampleRate int, buffer time.Duration) (*BeepMixer, error) {
	m := newBeepMixer(beep.SampleRate(sampleRate))
	if err := speaker.Init(m.sampleRate, m.sampleRate.N(buffer)); err != nil {
		return nil, fmt.Errorf("init speaker: %w", err)
	}
	return m, nil
}

func newBeepMixer(sampleRate beep.SampleRate) *BeepMixer {
	return &BeepMixer{
		sampleRate: sampleRate,
		gain:       0.5,
		logger:     log.Default(),
		finished:   make(chan struct{}, 1),
	}
}

// SetLogger replaces the logger used for errors the Mixer interface has
// no way to return.
func (m *BeepMixer) SetLogger(l *log.Logger) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logger = l
}

// Load decodes path and makes it the current track. Playback of the
// previous track stops.
func (m *BeepMixer) Load(path string) error {
	streamer, format, err := OpenFile(path)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.clear()
	if m.streamer != nil {
		m.streamer.Close()
	}
	m.path = path
	m.streamer = streamer
	m.format = format
	return nil
}

// Play starts the current track at start. loops < 0 repeats forever,
// otherwise the track plays 1+loops times. A start offset the stream
// cannot honour returns ErrSeekUnsupported and leaves playback untouched.
func (m *BeepMixer) Play(loops int, start time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.streamer == nil {
		return playerrors.ErrNoFileLoaded
	}

	pos := 0
	if start > 0 {
		pos = m.format.SampleRate.N(start)
		if pos >= m.streamer.Len() {
			return fmt.Errorf("%w: %s is past the end", playerrors.ErrSeekUnsupported, start)
		}
	}

	speaker.Lock()
	err := m.streamer.Seek(pos)
	speaker.Unlock()
	if err != nil {
		if start > 0 {
			return fmt.Errorf("%w: %v", playerrors.ErrSeekUnsupported, err)
		}
		return fmt.Errorf("%w: %v", playerrors.ErrPlaybackFailed, err)
	}

	m.clear()
	gen := m.generation.Add(1)
	m.started = true
	m.paused = false

	speaker.Play(m.sequence(loops, gen))
	return nil
}

// sequence builds loop, resample, ctrl and volume around the current
// streamer and ends with a callback tagged gen. It must be called with
// m.mu held.
func (m *BeepMixer) sequence(loops int, gen uint64) beep.Streamer {
	var s beep.Streamer = m.streamer
	switch {
	case loops < 0:
		s = beep.Loop(-1, m.streamer)
	case loops > 0:
		s = beep.Loop(loops+1, m.streamer)
	}
	if m.format.SampleRate != m.sampleRate {
		s = beep.Resample(resampleQuality, m.format.SampleRate, m.sampleRate, s)
	}

	m.ctrl = &beep.Ctrl{Streamer: s}
	m.volume = &effects.Volume{Streamer: m.ctrl, Base: 2}
	applyGain(m.volume, m.gain)

	return beep.Seq(m.volume, beep.Callback(func() {
		m.trackEnded(gen)
	}))
}

// Pause silences output without losing the position.
func (m *BeepMixer) Pause() {
	m.setPaused(true)
}

// Unpause continues from where Pause left off.
func (m *BeepMixer) Unpause() {
	m.setPaused(false)
}

func (m *BeepMixer) setPaused(paused bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ctrl == nil {
		return
	}
	speaker.Lock()
	m.ctrl.Paused = paused
	speaker.Unlock()
	m.paused = paused
}

// Stop halts playback and rewinds to the start.
func (m *BeepMixer) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.clear()
	if m.streamer == nil {
		return
	}
	if err := m.streamer.Seek(0); err != nil {
		m.logger.Warn("rewind on stop failed", "path", m.path, "err", err)
	}
}

// Rewind moves to the start without changing whether audio is playing.
func (m *BeepMixer) Rewind() error {
	return m.Seek(0)
}

// Seek moves to pos, clamped to the stream length.
func (m *BeepMixer) Seek(pos time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.streamer == nil {
		return playerrors.ErrNoFileLoaded
	}

	n := m.format.SampleRate.N(pos)
	if n < 0 {
		n = 0
	}
	if length := m.streamer.Len(); n >= length && length > 0 {
		n = length - 1
	}

	speaker.Lock()
	err := m.streamer.Seek(n)
	speaker.Unlock()
	if err != nil {
		return fmt.Errorf("seek to %s: %w", pos, err)
	}
	return nil
}

// SetVolume sets a linear gain in [0, 1]. It applies to the current and
// all later tracks.
func (m *BeepMixer) SetVolume(gain float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.gain = math.Max(0, math.Min(1, gain))
	if m.volume == nil {
		return
	}
	speaker.Lock()
	applyGain(m.volume, m.gain)
	speaker.Unlock()
}

// Busy reports whether audio is audible: started, not paused, not run out.
func (m *BeepMixer) Busy() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.streamer != nil && m.started && !m.paused && !m.ended.Load()
}

// Position returns the playback position within the track.
func (m *BeepMixer) Position() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.streamer == nil {
		return 0
	}
	speaker.Lock()
	n := m.streamer.Position()
	speaker.Unlock()
	return m.format.SampleRate.D(n)
}

// Duration returns the length of the current track.
func (m *BeepMixer) Duration() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.streamer == nil {
		return 0
	}
	return m.format.SampleRate.D(m.streamer.Len())
}

// Gain returns the gain last passed to SetVolume.
func (m *BeepMixer) Gain() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gain
}

// Finished receives a value each time a track plays to its end.
func (m *BeepMixer) Finished() <-chan struct{} {
	return m.finished
}

// Close stops playback and releases the current file.
func (m *BeepMixer) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.clear()
	if m.streamer == nil {
		return nil
	}
	err := m.streamer.Close()
	m.streamer = nil
	return err
}

// clear must be called with m.mu held.
func (m *BeepMixer) clear() {
	speaker.Clear()
	m.generation.Add(1)
	m.ctrl = nil
	m.volume = nil
	m.started = false
	m.paused = false
	m.ended.Store(false)
}

// trackEnded runs on the speaker goroutine. Callbacks from a replaced
// stream are ignored.
func (m *BeepMixer) trackEnded(gen uint64) {
	if m.generation.Load() != gen {
		return
	}
	m.ended.Store(true)
	select {
	case m.finished <- struct{}{}:
	default:
	}
}

// applyGain maps a linear gain onto effects.Volume, which scales by
// Base^Volume.
func applyGain(v *effects.Volume, gain float64) {
	if gain <= 0 {
		v.Silent = true
		v.Volume = 0
		return
	}
	v.Silent = false
	v.Volume = math.Log2(gain)
}
