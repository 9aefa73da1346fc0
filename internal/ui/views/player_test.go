package views

import (
	"testing"
	"time"

	"github.com/jscyril/mp3deck/api"
	"github.com/stretchr/testify/assert"
)

func TestTrackMeta(t *testing.T) {
	tests := []struct {
		name  string
		track *api.Track
		want  string
	}{
		{"no track", nil, ""},
		{"file name only", &api.Track{Title: "a.mp3", FileName: "a.mp3"}, ""},
		{"untagged title", &api.Track{Title: "a", FileName: "a.mp3", Size: 1000}, "1.0 kB"},
		{
			"tagged",
			&api.Track{Title: "Song", FileName: "a.mp3", Artist: "Band", Album: "Record", Size: 4_200_000},
			"Song · Band · Record · 4.2 MB",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, trackMeta(tt.track))
		})
	}
}

func TestStatusIcon(t *testing.T) {
	assert.Equal(t, "▶", statusIcon(api.StatusPlaying))
	assert.Equal(t, "⏸", statusIcon(api.StatusPaused))
	assert.Equal(t, "⏹", statusIcon(api.StatusStopped))
}

func TestPlayerView_RendersState(t *testing.T) {
	v := NewPlayerView("Simple MP3 Player", 60, 22, 5)
	v.SetState(api.State{
		Status:    api.StatusPaused,
		Volume:    30,
		Message:   "Loaded: song.mp3",
		PlayLabel: "Resume",
		LoopLabel: "▶ Loop: OFF",
		Track:     &api.Track{FileName: "song.mp3", Title: "song.mp3"},
		Position:  5 * time.Second,
		Duration:  time.Minute,
	})

	out := v.View(nil)
	assert.Equal(t, 30.0, v.Volume.Value)
	for _, want := range []string{"Simple MP3 Player", "Loaded: song.mp3", "Resume", "Loop: OFF", "0:05 / 1:00", "⏸"} {
		assert.Contains(t, out, want)
	}
}
