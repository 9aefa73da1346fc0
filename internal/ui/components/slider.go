package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Slider is a horizontal 0-100 scale, the terminal stand-in for a volume
// slider widget
type Slider struct {
	Label       string
	Width       int
	Value       float64
	Step        float64
	FilledStyle lipgloss.Style
	EmptyStyle  lipgloss.Style
	LabelStyle  lipgloss.Style
}

// NewSlider creates a slider at value
func NewSlider(label string, width int, value, step float64) Slider {
	return Slider{
		Label:       label,
		Width:       width,
		Value:       value,
		Step:        step,
		FilledStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("212")),
		EmptyStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		LabelStyle:  lipgloss.NewStyle().Bold(true),
	}
}

// Increment moves the slider up one step and returns the new value
func (s *Slider) Increment() float64 {
	s.Value = math.Min(100, s.Value+s.Step)
	return s.Value
}

// Decrement moves the slider down one step and returns the new value
func (s *Slider) Decrement() float64 {
	s.Value = math.Max(0, s.Value-s.Step)
	return s.Value
}

// View renders the slider as "Label: ●●●●○○○○ 50%"
func (s Slider) View() string {
	cells := s.Width - len(s.Label) - 8
	if cells < 5 {
		cells = 5
	}
	filled := int(math.Round(float64(cells) * s.Value / 100))
	if filled > cells {
		filled = cells
	}

	return fmt.Sprintf("%s %s%s %3d%%",
		s.LabelStyle.Render(s.Label+":"),
		s.FilledStyle.Render(strings.Repeat("●", filled)),
		s.EmptyStyle.Render(strings.Repeat("○", cells-filled)),
		int(math.Round(s.Value)),
	)
}
