package player

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jscyril/mp3deck/api"
	playerrors "github.com/jscyril/mp3deck/pkg/errors"
	"github.com/jscyril/mp3deck/pkg/events"
)

// Button labels and status messages.
const (
	LabelPlay    = "Play"
	LabelPause   = "Pause"
	LabelResume  = "Resume"
	LabelLoopOn  = "🔁 Loop: ON"
	LabelLoopOff = "▶ Loop: OFF"

	MsgOpenPrompt = "Open an MP3 file"
	MsgNoFile     = "⚠ Please open an MP3 file first"
)

// SeekTarget is where SeekForwardFiveSeconds restarts playback.
const SeekTarget = 5 * time.Second

// DefaultVolume is the initial slider position.
const DefaultVolume = 50.0

// Options configures a Controller.
type Options struct {
	Bus    *events.EventBus
	Logger *log.Logger
	Reader TrackReader
	Volume float64
	Loop   bool
}

// Controller owns the playback state and translates user actions into
// mixer calls. It has no knowledge of widgets; the view renders State.
type Controller struct {
	mixer  Mixer
	bus    *events.EventBus
	logger *log.Logger
	reader TrackReader

	mu        sync.Mutex
	track     *api.Track
	status    api.PlaybackStatus
	loop      api.LoopMode
	volume    float64
	message   string
	playLabel string
	// cue is where the next play from Stopped begins, set by SeekBy.
	cue time.Duration
}

// DefaultOptions returns options with the slider at DefaultVolume.
func DefaultOptions() Options {
	return Options{Volume: DefaultVolume}
}

// NewController creates a controller around mixer.
func NewController(mixer Mixer, opts Options) *Controller {
	c := &Controller{
		mixer:     mixer,
		bus:       opts.Bus,
		logger:    opts.Logger,
		reader:    opts.Reader,
		status:    api.StatusStopped,
		volume:    clampPercent(opts.Volume),
		message:   MsgOpenPrompt,
		playLabel: LabelPlay,
	}
	if c.logger == nil {
		c.logger = log.Default()
	}
	if opts.Loop {
		c.loop = api.LoopInfinite
	}
	return c
}

// Load replaces the current file. An empty path means the picker was
// cancelled and nothing changes.
func (c *Controller) Load(path string) error {
	if path == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	name := filepath.Base(path)
	if err := c.mixer.Load(path); err != nil {
		c.message = fmt.Sprintf("Could not open %s", name)
		perr := playerrors.NewPlayerError("load", name, err)
		c.logger.Error("load failed", "path", path, "err", err)
		c.publish(api.EventError, perr)
		return perr
	}

	c.track = c.describe(path)
	c.status = api.StatusStopped
	c.cue = 0
	c.playLabel = LabelPlay
	c.mixer.SetVolume(gain(c.volume))
	c.message = "Loaded: " + c.track.FileName

	c.logger.Info("loaded", "path", path, "volume", c.volume)
	c.publish(api.EventTrackLoaded, c.track)
	return nil
}

// TogglePlayPause starts, pauses, or resumes playback depending on the
// current status.
func (c *Controller) TogglePlayPause() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.track == nil {
		c.message = MsgNoFile
		c.publish(api.EventStateChange, nil)
		return
	}
	c.reconcile()

	switch c.status {
	case api.StatusStopped:
		if err := c.playFromCue(); err != nil {
			c.fail("play", err)
			return
		}
		c.setPlaying()
	case api.StatusPlaying:
		c.mixer.Pause()
		c.status = api.StatusPaused
		c.playLabel = LabelResume
	case api.StatusPaused:
		c.mixer.Unpause()
		c.setPlaying()
	}

	c.logger.Debug("play/pause", "status", c.status)
	c.publish(api.EventStateChange, nil)
}

// Stop halts playback; the next play starts from the beginning.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.track != nil && c.status != api.StatusStopped {
		c.mixer.Stop()
	}
	c.status = api.StatusStopped
	c.playLabel = LabelPlay
	c.cue = 0

	c.logger.Debug("stopped")
	c.publish(api.EventStateChange, nil)
}

// ToggleLoop flips the loop mode. Audible playback restarts from the
// start with the new loop count; the position is not kept.
func (c *Controller) ToggleLoop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.loop == api.LoopInfinite {
		c.loop = api.LoopOff
	} else {
		c.loop = api.LoopInfinite
	}

	if c.track != nil && c.mixer.Busy() {
		if err := c.mixer.Play(c.loop.Loops(), 0); err != nil {
			c.fail("loop", err)
			return
		}
		c.setPlaying()
	}

	c.logger.Debug("loop toggled", "loop", c.loop)
	c.publish(api.EventStateChange, nil)
}

// SetVolume applies a slider value in [0, 100] as a linear gain.
func (c *Controller) SetVolume(percent float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.volume = clampPercent(percent)
	if c.track == nil {
		c.message = fmt.Sprintf("Volume %d%% (applies when a file is opened)", int(c.volume+0.5))
		c.publish(api.EventStateChange, nil)
		return
	}
	c.mixer.SetVolume(gain(c.volume))
	c.publish(api.EventStateChange, nil)
}

// SeekToStart rewinds the track. Playback continues from the start if it
// was audible.
func (c *Controller) SeekToStart() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.track == nil {
		c.message = MsgNoFile
		c.publish(api.EventStateChange, nil)
		return
	}
	c.seekToStart()
	c.publish(api.EventStateChange, nil)
}

func (c *Controller) seekToStart() {
	c.reconcile()
	c.cue = 0
	if err := c.mixer.Rewind(); err != nil {
		c.logger.Warn("rewind failed", "err", err)
	}
	c.message = "Back to start: " + c.track.FileName
	if c.status == api.StatusPlaying {
		if err := c.mixer.Play(c.loop.Loops(), 0); err != nil {
			c.fail("seek", err)
		}
	}
}

// SeekForwardFiveSeconds restarts playback at the five second mark. When
// the mixer cannot start at an offset, playback starts from zero and the
// message says so.
func (c *Controller) SeekForwardFiveSeconds() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.track == nil {
		c.message = MsgNoFile
		c.publish(api.EventStateChange, nil)
		return
	}

	if err := c.mixer.Rewind(); err != nil {
		c.logger.Warn("rewind failed", "err", err)
	}
	c.cue = 0

	loops := c.loop.Loops()
	err := c.mixer.Play(loops, SeekTarget)
	if err != nil {
		c.logger.Warn("seek with offset rejected, playing from start", "offset", SeekTarget, "err", err)
		if ferr := c.mixer.Play(loops, 0); ferr != nil {
			c.fail("seek", ferr)
			return
		}
		c.setPlaying()
		c.message = "Seek unavailable, playing from start: " + c.track.FileName
		c.publish(api.EventSeekDegraded, err)
		return
	}

	c.setPlaying()
	c.message = fmt.Sprintf("Seek to %s: %s", FormatDuration(SeekTarget), c.track.FileName)
	c.publish(api.EventStateChange, nil)
}

// SeekBy moves the playback position by delta. Mixers without Seeker
// support fall back to rewinding.
func (c *Controller) SeekBy(delta time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.track == nil {
		c.message = MsgNoFile
		c.publish(api.EventStateChange, nil)
		return
	}

	seeker, ok := c.mixer.(Seeker)
	if !ok {
		c.seekToStart()
		c.publish(api.EventSeekDegraded, playerrors.ErrSeekUnsupported)
		return
	}

	target := seeker.Position() + delta
	if target < 0 {
		target = 0
	}
	if d := seeker.Duration(); d > 0 && target >= d {
		target = d - time.Millisecond
	}
	if err := seeker.Seek(target); err != nil {
		c.logger.Warn("seek failed", "target", target, "err", err)
		c.message = "Seek failed: " + c.track.FileName
		c.publish(api.EventError, err)
		return
	}

	c.reconcile()
	if c.status == api.StatusStopped {
		c.cue = target
	}

	c.message = fmt.Sprintf("Seek to %s: %s", FormatDuration(target), c.track.FileName)
	c.publish(api.EventStateChange, nil)
}

// Sync notices a single-shot track that ran out while playing.
func (c *Controller) Sync() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.reconcile() {
		c.logger.Debug("track ended", "file", c.track.FileName)
		c.publish(api.EventTrackEnded, c.track)
	}
}

// Watch calls Sync whenever the mixer reports a finished track, until ctx
// is cancelled.
func (c *Controller) Watch(ctx context.Context) {
	notifier, ok := c.mixer.(Notifier)
	if !ok {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-notifier.Finished():
			if !ok {
				return
			}
			c.Sync()
		}
	}
}

// IsPlaying reports whether audio is playing (not paused or stopped).
func (c *Controller) IsPlaying() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status == api.StatusPlaying
}

// IsLooping reports whether loop mode is on.
func (c *Controller) IsLooping() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loop == api.LoopInfinite
}

// State returns a snapshot for rendering.
func (c *Controller) State() api.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

func (c *Controller) snapshot() api.State {
	st := api.State{
		Status:    c.status,
		Loop:      c.loop,
		Volume:    c.volume,
		Message:   c.message,
		PlayLabel: c.playLabel,
		LoopLabel: LabelLoopOff,
	}
	if c.loop == api.LoopInfinite {
		st.LoopLabel = LabelLoopOn
	}
	if c.track != nil {
		track := *c.track
		st.Track = &track
		st.Duration = track.Duration
		if seeker, ok := c.mixer.(Seeker); ok {
			st.Position = seeker.Position()
			if d := seeker.Duration(); d > 0 {
				st.Duration = d
			}
		}
	}
	return st
}

// reconcile moves Playing to Stopped when the mixer went quiet on its own.
// It reports whether that happened.
func (c *Controller) reconcile() bool {
	if c.track == nil || c.status != api.StatusPlaying || c.mixer.Busy() {
		return false
	}
	c.status = api.StatusStopped
	c.playLabel = LabelPlay
	c.cue = 0
	return true
}

// playFromCue starts playback at the cued position. A cue the mixer
// rejects falls back to the start.
func (c *Controller) playFromCue() error {
	start := c.cue
	c.cue = 0

	err := c.mixer.Play(c.loop.Loops(), start)
	if err != nil && start > 0 {
		c.logger.Warn("cued start rejected, playing from start", "offset", start, "err", err)
		err = c.mixer.Play(c.loop.Loops(), 0)
	}
	return err
}

func (c *Controller) setPlaying() {
	c.status = api.StatusPlaying
	c.playLabel = LabelPause
}

func (c *Controller) fail(op string, err error) {
	perr := playerrors.NewPlayerError(op, c.track.FileName, err)
	c.status = api.StatusStopped
	c.playLabel = LabelPlay
	c.message = "Playback failed: " + c.track.FileName
	if errors.Is(err, playerrors.ErrNoFileLoaded) {
		c.message = MsgNoFile
	}
	c.logger.Error(op+" failed", "err", err)
	c.publish(api.EventError, perr)
}

func (c *Controller) describe(path string) *api.Track {
	var track *api.Track
	if c.reader != nil {
		t, err := c.reader.Read(path)
		if err != nil {
			c.logger.Debug("metadata unavailable", "path", path, "err", err)
		} else {
			track = t
		}
	}
	if track == nil {
		track = &api.Track{Title: filepath.Base(path), FilePath: path}
	}
	if track.FileName == "" {
		track.FileName = filepath.Base(path)
	}
	if seeker, ok := c.mixer.(Seeker); ok && track.Duration == 0 {
		track.Duration = seeker.Duration()
	}
	return track
}

// publish must be called with c.mu held.
func (c *Controller) publish(t api.EventType, payload interface{}) {
	if c.bus == nil {
		return
	}
	c.bus.Publish(api.PlayerEvent{Type: t, State: c.snapshot(), Payload: payload})
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// gain maps a 0-100 slider value to a 0.0-1.0 mixer gain.
func gain(percent float64) float64 {
	return clampPercent(percent) / 100
}

// FormatDuration formats a duration as M:SS.
func FormatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	m := d / time.Minute
	s := (d % time.Minute) / time.Second
	return fmt.Sprintf("%d:%02d", m, s)
}
