package views

import (
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/jscyril/mp3deck/api"
	"github.com/jscyril/mp3deck/internal/ui/components"
)

// PlayerView renders the controller state as the player screen
type PlayerView struct {
	Width       int
	Height      int
	Title       string
	State       api.State
	ProgressBar components.ProgressBar
	Volume      components.Slider
	Help        help.Model

	// Styles
	TitleStyle    lipgloss.Style
	LabelStyle    lipgloss.Style
	MetaStyle     lipgloss.Style
	StatusStyle   lipgloss.Style
	ButtonStyle   lipgloss.Style
	ActiveStyle   lipgloss.Style
	BorderStyle   lipgloss.Style
	ControlsStyle lipgloss.Style
}

// NewPlayerView creates a new player view
func NewPlayerView(title string, width, height int, volumeStep float64) PlayerView {
	h := help.New()
	h.Width = width - 6

	return PlayerView{
		Width:       width,
		Height:      height,
		Title:       title,
		ProgressBar: components.NewProgressBar(width - 8),
		Volume:      components.NewSlider("Volume", width-6, 50, volumeStep),
		Help:        h,
		TitleStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212")),
		LabelStyle: lipgloss.NewStyle().
			Align(lipgloss.Center),
		MetaStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("244")).
			Italic(true),
		StatusStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true),
		ButtonStyle: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1),
		ActiveStyle: lipgloss.NewStyle().
			Border(lipgloss.ThickBorder()).
			BorderForeground(lipgloss.Color("39")).
			Foreground(lipgloss.Color("39")).
			Padding(0, 1),
		BorderStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 2),
		ControlsStyle: lipgloss.NewStyle().
			MarginTop(1),
	}
}

// SetState updates the snapshot shown by the view
func (v *PlayerView) SetState(state api.State) {
	v.State = state
	v.Volume.Value = state.Volume
	v.ProgressBar.SetProgress(state.Position, state.Duration)
}

// SetWidth resizes the view and its components
func (v *PlayerView) SetWidth(width int) {
	v.Width = width
	v.ProgressBar.Width = width - 8
	v.Volume.Width = width - 6
	v.Help.Width = width - 6
}

// View renders the player view. keys supplies the help line.
func (v PlayerView) View(keys help.KeyMap) string {
	inner := v.Width - 6
	var sb strings.Builder

	sb.WriteString(v.TitleStyle.Render(v.Title))
	sb.WriteString("\n\n")

	// File label, wrapped like the label of a fixed-width window
	sb.WriteString(v.LabelStyle.Width(inner).Render(v.State.Message))
	sb.WriteString("\n")
	if meta := trackMeta(v.State.Track); meta != "" {
		sb.WriteString(v.MetaStyle.Width(inner).Align(lipgloss.Center).Render(meta))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Center,
		v.ButtonStyle.Render("Open"),
		" ",
		v.ButtonStyle.Render(v.State.PlayLabel),
		" ",
		v.ButtonStyle.Render("Stop"),
	))
	sb.WriteString("\n")

	loopStyle := v.ButtonStyle
	if v.State.Loop == api.LoopInfinite {
		loopStyle = v.ActiveStyle
	}
	sb.WriteString(loopStyle.Render(v.State.LoopLabel))
	sb.WriteString("\n\n")

	sb.WriteString(v.Volume.View())
	sb.WriteString("\n\n")

	sb.WriteString(v.StatusStyle.Render(statusIcon(v.State.Status) + " "))
	sb.WriteString(v.ProgressBar.View())
	sb.WriteString("\n")

	sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Center,
		v.ButtonStyle.Render("⏪ To start"),
		" ",
		v.ButtonStyle.Render("⏩ Seek 0:05"),
	))

	if keys != nil {
		sb.WriteString("\n")
		sb.WriteString(v.ControlsStyle.Render(v.Help.View(keys)))
	}

	return v.BorderStyle.Width(v.Width - 2).Render(sb.String())
}

func statusIcon(status api.PlaybackStatus) string {
	switch status {
	case api.StatusPlaying:
		return "▶"
	case api.StatusPaused:
		return "⏸"
	default:
		return "⏹"
	}
}

// trackMeta renders "Artist · Album · 4.2 MB" for the loaded track
func trackMeta(track *api.Track) string {
	if track == nil {
		return ""
	}

	// Untagged files are titled after the file name
	bare := strings.TrimSuffix(track.FileName, filepath.Ext(track.FileName))

	var parts []string
	if track.Title != "" && track.Title != track.FileName && track.Title != bare {
		parts = append(parts, track.Title)
	}
	if track.Artist != "" {
		parts = append(parts, track.Artist)
	}
	if track.Album != "" {
		parts = append(parts, track.Album)
	}
	if track.Size > 0 {
		parts = append(parts, humanize.Bytes(uint64(track.Size)))
	}
	return strings.Join(parts, " · ")
}
