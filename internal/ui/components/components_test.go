package components

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func musicDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range []string{"b_track.mp3", "A_track.MP3", "notes.txt", "song.wav", ".hidden.mp3"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "albums"), 0755))
	return dir
}

func names(entries []FileEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Name
	}
	return out
}

func TestFileFilter_Match(t *testing.T) {
	mp3 := DefaultFilters[0]
	all := DefaultFilters[1]

	assert.True(t, mp3.Match("x.mp3"))
	assert.True(t, mp3.Match("x.MP3"))
	assert.False(t, mp3.Match("x.wav"))
	assert.True(t, all.Match("x.wav"))
	assert.True(t, all.Match("README"))
}

func TestFileBrowser_ListsMP3ByDefault(t *testing.T) {
	dir := musicDir(t)
	fb := NewFileBrowser(dir, 60, 30)

	assert.Equal(t, []string{"..", "albums", "A_track.MP3", "b_track.mp3"}, names(fb.Visible))
	assert.Equal(t, "MP3 files (*.mp3)", fb.Filter().Label)
}

func TestFileBrowser_TabShowsAllFiles(t *testing.T) {
	fb := NewFileBrowser(musicDir(t), 60, 30)

	fb, _ = fb.Update(key("tab"))
	assert.Equal(t, "All files (*.*)", fb.Filter().Label)
	assert.Equal(t, []string{"..", "albums", "A_track.MP3", "b_track.mp3", "notes.txt", "song.wav"}, names(fb.Visible))

	fb, _ = fb.Update(key("tab"))
	assert.Equal(t, "MP3 files (*.mp3)", fb.Filter().Label)
}

func TestFileBrowser_FuzzyQuery(t *testing.T) {
	fb := NewFileBrowser(musicDir(t), 60, 30)

	fb, _ = fb.Update(key("/"))
	require.True(t, fb.Query.Focused)
	fb, _ = fb.Update(key("b"))
	fb, _ = fb.Update(key("t"))

	assert.Equal(t, "bt", fb.Query.String())
	require.NotEmpty(t, fb.Visible)
	assert.Equal(t, "b_track.mp3", fb.Visible[0].Name)

	fb, _ = fb.Update(key("esc"))
	assert.False(t, fb.Query.Focused)
	assert.Len(t, fb.Visible, 4)
}

func TestFileBrowser_EnterFileEmitsPick(t *testing.T) {
	dir := musicDir(t)
	fb := NewFileBrowser(dir, 60, 30)

	for fb.SelectedEntry().Name != "b_track.mp3" {
		fb, _ = fb.Update(key("down"))
	}
	_, cmd := fb.Update(key("enter"))
	require.NotNil(t, cmd)
	assert.Equal(t, FilePickedMsg{Path: filepath.Join(dir, "b_track.mp3")}, cmd())
}

func TestFileBrowser_EnterDirNavigates(t *testing.T) {
	dir := musicDir(t)
	fb := NewFileBrowser(dir, 60, 30)

	fb, _ = fb.Update(key("down"))
	require.Equal(t, "albums", fb.SelectedEntry().Name)

	fb, cmd := fb.Update(key("enter"))
	assert.Nil(t, cmd)
	assert.Equal(t, filepath.Join(dir, "albums"), fb.CurrentPath)

	fb, _ = fb.Update(key("backspace"))
	assert.Equal(t, dir, fb.CurrentPath)
}

func TestFileBrowser_EscCancels(t *testing.T) {
	fb := NewFileBrowser(musicDir(t), 60, 30)

	_, cmd := fb.Update(key("esc"))
	require.NotNil(t, cmd)
	assert.Equal(t, FilePickedMsg{}, cmd())
}

func TestFileBrowser_UnreadableDir(t *testing.T) {
	fb := NewFileBrowser(filepath.Join(t.TempDir(), "missing"), 60, 30)
	assert.Error(t, fb.Err)
	assert.Contains(t, fb.View(), "Error:")
}

func TestShortenPath(t *testing.T) {
	assert.Equal(t, "/music", shortenPath("/music", 20))

	short := shortenPath("/home/user/very/long/path/to/music", 12)
	assert.True(t, strings.HasPrefix(short, "…"))
	assert.True(t, strings.HasSuffix(short, "music"))
}

func TestFilterInput_EditsRunes(t *testing.T) {
	in := NewFilterInput(20)
	in.Focus()

	in, _ = in.Update(key("曲"))
	in, _ = in.Update(key("a"))
	in, _ = in.Update(tea.KeyMsg{Type: tea.KeyLeft})
	in, _ = in.Update(key("b"))
	assert.Equal(t, "曲ba", in.String())

	in, _ = in.Update(key("backspace"))
	assert.Equal(t, "曲a", in.String())

	in.Blur()
	in, _ = in.Update(key("z"))
	assert.Equal(t, "曲a", in.String(), "blurred input ignores keys")
}

func TestSlider_Steps(t *testing.T) {
	s := NewSlider("Volume", 40, 50, 5)

	assert.Equal(t, 55.0, s.Increment())
	s.Value = 98
	assert.Equal(t, 100.0, s.Increment())
	s.Value = 3
	assert.Equal(t, 0.0, s.Decrement())

	s.Value = 50
	assert.Contains(t, s.View(), " 50%")
}

func TestProgressBar_Percent(t *testing.T) {
	p := NewProgressBar(40)
	assert.Zero(t, p.Percent())

	p.SetProgress(30*time.Second, time.Minute)
	assert.InDelta(t, 0.5, p.Percent(), 1e-9)
	assert.Contains(t, p.View(), "0:30 / 1:00")

	p.SetProgress(2*time.Minute, time.Minute)
	assert.Equal(t, 1.0, p.Percent())
}
