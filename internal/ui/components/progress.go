package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/jscyril/mp3deck/internal/player"
)

// ProgressBar shows the playback position within the track
type ProgressBar struct {
	Width       int
	Current     time.Duration
	Total       time.Duration
	BarChar     string
	EmptyChar   string
	FilledStyle lipgloss.Style
	EmptyStyle  lipgloss.Style
	TimeStyle   lipgloss.Style
}

// NewProgressBar creates a new progress bar
func NewProgressBar(width int) ProgressBar {
	return ProgressBar{
		Width:       width,
		BarChar:     "━",
		EmptyChar:   "─",
		FilledStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("212")),
		EmptyStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		TimeStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
	}
}

// SetProgress sets the current position
func (p *ProgressBar) SetProgress(current, total time.Duration) {
	p.Current = current
	p.Total = total
}

// Percent returns how much of the track has played, in [0, 1]
func (p ProgressBar) Percent() float64 {
	if p.Total <= 0 {
		return 0
	}
	percent := float64(p.Current) / float64(p.Total)
	if percent > 1 {
		return 1
	}
	if percent < 0 {
		return 0
	}
	return percent
}

// View renders the progress bar
func (p ProgressBar) View() string {
	times := fmt.Sprintf(" %s / %s", player.FormatDuration(p.Current), player.FormatDuration(p.Total))

	barWidth := p.Width - len(times)
	if barWidth < 10 {
		barWidth = 10
	}

	filled := int(float64(barWidth) * p.Percent())
	empty := barWidth - filled

	return p.FilledStyle.Render(strings.Repeat(p.BarChar, filled)) +
		p.EmptyStyle.Render(strings.Repeat(p.EmptyChar, empty)) +
		p.TimeStyle.Render(times)
}
