package audio

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	"github.com/faiface/beep/wav"
	playerrors "github.com/jscyril/mp3deck/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRate = beep.SampleRate(44100)

// writeSilence writes a stereo 16-bit WAV file of the given length.
func writeSilence(t *testing.T, d time.Duration) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "silence.wav")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	format := beep.Format{SampleRate: testRate, NumChannels: 2, Precision: 2}
	require.NoError(t, wav.Encode(f, beep.Silence(testRate.N(d)), format))
	return path
}

func TestIsSupported(t *testing.T) {
	tests := []struct {
		path     string
		expected bool
	}{
		{"/music/song.mp3", true},
		{"/music/song.MP3", true},
		{"/music/song.wav", true},
		{"/music/song.flac", true},
		{"/music/song.ogg", false},
		{"/music/song.aac", false},
		{"/music/song", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := IsSupported(tt.path); got != tt.expected {
				t.Errorf("IsSupported(%s) = %v, want %v", tt.path, got, tt.expected)
			}
		})
	}
}

func TestOpenFile_Errors(t *testing.T) {
	_, _, err := OpenFile("/music/song.ogg")
	assert.ErrorIs(t, err, playerrors.ErrInvalidFormat)

	_, _, err = OpenFile(filepath.Join(t.TempDir(), "missing.mp3"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestBeepMixer_LoadReportsDuration(t *testing.T) {
	m := newBeepMixer(testRate)
	defer m.Close()

	assert.Zero(t, m.Duration())
	require.NoError(t, m.Load(writeSilence(t, 2*time.Second)))

	assert.Equal(t, 2*time.Second, m.Duration())
	assert.Zero(t, m.Position())
	assert.False(t, m.Busy(), "a loaded track is not audible until played")
}

func TestBeepMixer_PlayWithoutFile(t *testing.T) {
	m := newBeepMixer(testRate)
	assert.ErrorIs(t, m.Play(0, 0), playerrors.ErrNoFileLoaded)
	assert.ErrorIs(t, m.Rewind(), playerrors.ErrNoFileLoaded)
}

func TestBeepMixer_OffsetPastEndIsRejected(t *testing.T) {
	m := newBeepMixer(testRate)
	defer m.Close()
	require.NoError(t, m.Load(writeSilence(t, time.Second)))

	err := m.Play(0, 5*time.Second)
	assert.ErrorIs(t, err, playerrors.ErrSeekUnsupported)
	assert.False(t, m.Busy())
}

func TestBeepMixer_PlayPauseStop(t *testing.T) {
	m := newBeepMixer(testRate)
	defer m.Close()
	require.NoError(t, m.Load(writeSilence(t, 10*time.Second)))

	require.NoError(t, m.Play(-1, 5*time.Second))
	assert.True(t, m.Busy())
	assert.Equal(t, 5*time.Second, m.Position())

	m.Pause()
	assert.False(t, m.Busy())
	m.Unpause()
	assert.True(t, m.Busy())

	m.Stop()
	assert.False(t, m.Busy())
	assert.Zero(t, m.Position())
}

func TestBeepMixer_SeekClamps(t *testing.T) {
	m := newBeepMixer(testRate)
	defer m.Close()
	require.NoError(t, m.Load(writeSilence(t, time.Second)))

	require.NoError(t, m.Seek(500*time.Millisecond))
	assert.Equal(t, 500*time.Millisecond, m.Position())

	require.NoError(t, m.Seek(time.Minute))
	assert.Less(t, m.Position(), time.Second)

	require.NoError(t, m.Rewind())
	assert.Zero(t, m.Position())
}

func TestBeepMixer_StaleCallbackIgnored(t *testing.T) {
	m := newBeepMixer(testRate)
	gen := m.generation.Load()
	m.generation.Add(1)

	m.trackEnded(gen)
	assert.False(t, m.ended.Load())
	assert.Len(t, m.Finished(), 0)

	m.trackEnded(m.generation.Load())
	assert.True(t, m.ended.Load())
	assert.Len(t, m.Finished(), 1)
}

func TestSetVolume_Clamps(t *testing.T) {
	m := newBeepMixer(testRate)

	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"zero volume", 0.0, 0.0},
		{"half volume", 0.5, 0.5},
		{"full volume", 1.0, 1.0},
		{"below zero", -0.1, 0.0},
		{"above one", 1.1, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m.SetVolume(tt.in)
			assert.Equal(t, tt.want, m.Gain())
		})
	}
}

func TestApplyGain_IsLinear(t *testing.T) {
	v := &effects.Volume{Base: 2}

	applyGain(v, 0)
	assert.True(t, v.Silent)

	for _, g := range []float64{0.25, 0.5, 1.0} {
		applyGain(v, g)
		assert.False(t, v.Silent)
		assert.InDelta(t, g, math.Pow(v.Base, v.Volume), 1e-9)
	}
}

// brokenSeeker fails every seek at or beyond failAt.
type brokenSeeker struct {
	beep.StreamSeeker
	failAt int
}

func (b *brokenSeeker) Seek(p int) error {
	if p >= b.failAt {
		return errors.New("seek broken")
	}
	return b.StreamSeeker.Seek(p)
}

func (b *brokenSeeker) Close() error { return nil }

func newBrokenSeeker(d time.Duration, failAt int) *brokenSeeker {
	format := beep.Format{SampleRate: testRate, NumChannels: 2, Precision: 2}
	buf := beep.NewBuffer(format)
	buf.Append(beep.Silence(testRate.N(d)))
	return &brokenSeeker{StreamSeeker: buf.Streamer(0, buf.Len()), failAt: failAt}
}

// drain streams s to exhaustion and returns the number of samples.
func drain(s beep.Streamer) int {
	buf := make([][2]float64, 512)
	total := 0
	for {
		n, ok := s.Stream(buf)
		total += n
		if !ok {
			return total
		}
	}
}

func TestBeepMixer_FailedOffsetSeekKeepsPlaying(t *testing.T) {
	m := newBeepMixer(testRate)
	defer m.Close()
	m.streamer = newBrokenSeeker(time.Second, 1)
	m.format = beep.Format{SampleRate: testRate, NumChannels: 2, Precision: 2}

	require.NoError(t, m.Play(0, 0))
	ctrl := m.ctrl

	err := m.Play(0, 100*time.Millisecond)
	assert.ErrorIs(t, err, playerrors.ErrSeekUnsupported)
	assert.True(t, m.Busy())
	assert.Same(t, ctrl, m.ctrl, "the running stream is not replaced")
}

func TestBeepMixer_StopLogsRewindFailure(t *testing.T) {
	var out bytes.Buffer
	m := newBeepMixer(testRate)
	m.SetLogger(log.New(&out))
	m.streamer = newBrokenSeeker(time.Second, 0)

	m.Stop()
	assert.Contains(t, out.String(), "rewind on stop failed")
	assert.False(t, m.Busy())
}

func TestBeepMixer_SequenceEndsWithCallback(t *testing.T) {
	tests := []struct {
		name    string
		loops   int
		rate    beep.SampleRate
		samples int
	}{
		{"single shot", 0, testRate, 441},
		{"two extra loops", 2, testRate, 3 * 441},
		{"resampled", 0, testRate / 2, 220},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newBeepMixer(tt.rate)
			defer m.Close()
			require.NoError(t, m.Load(writeSilence(t, 10*time.Millisecond)))

			gen := m.generation.Add(1)
			total := drain(m.sequence(tt.loops, gen))

			assert.InDelta(t, tt.samples, total, 4)
			assert.True(t, m.ended.Load())
			assert.Len(t, m.Finished(), 1)
		})
	}
}
