package components

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// FilterInput is a single-line text input used to narrow the file picker
type FilterInput struct {
	Value       []rune
	Placeholder string
	Focused     bool
	Width       int
	CursorPos   int
	Style       lipgloss.Style
	FocusStyle  lipgloss.Style
	Prompt      string
}

// NewFilterInput creates a new filter input
func NewFilterInput(width int) FilterInput {
	return FilterInput{
		Placeholder: "Type / to filter",
		Width:       width,
		Prompt:      "🔍 ",
		Style: lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")),
		FocusStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")),
	}
}

// Focus sets focus on the input
func (s *FilterInput) Focus() {
	s.Focused = true
}

// Blur removes focus from the input
func (s *FilterInput) Blur() {
	s.Focused = false
}

// String returns the current text
func (s FilterInput) String() string {
	return string(s.Value)
}

// Clear clears the input
func (s *FilterInput) Clear() {
	s.Value = nil
	s.CursorPos = 0
}

// Update handles messages for the filter input
func (s FilterInput) Update(msg tea.Msg) (FilterInput, tea.Cmd) {
	if !s.Focused {
		return s, nil
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.Type {
		case tea.KeyBackspace:
			if s.CursorPos > 0 {
				s.Value = append(s.Value[:s.CursorPos-1:s.CursorPos-1], s.Value[s.CursorPos:]...)
				s.CursorPos--
			}
		case tea.KeyDelete:
			if s.CursorPos < len(s.Value) {
				s.Value = append(s.Value[:s.CursorPos:s.CursorPos], s.Value[s.CursorPos+1:]...)
			}
		case tea.KeyLeft:
			if s.CursorPos > 0 {
				s.CursorPos--
			}
		case tea.KeyRight:
			if s.CursorPos < len(s.Value) {
				s.CursorPos++
			}
		case tea.KeyHome:
			s.CursorPos = 0
		case tea.KeyEnd:
			s.CursorPos = len(s.Value)
		case tea.KeyRunes, tea.KeySpace:
			runes := msg.Runes
			if msg.Type == tea.KeySpace {
				runes = []rune{' '}
			}
			value := make([]rune, 0, len(s.Value)+len(runes))
			value = append(value, s.Value[:s.CursorPos]...)
			value = append(value, runes...)
			value = append(value, s.Value[s.CursorPos:]...)
			s.Value = value
			s.CursorPos += len(runes)
		}
	}

	return s, nil
}

// View renders the filter input
func (s FilterInput) View() string {
	var content string

	switch {
	case len(s.Value) == 0 && !s.Focused:
		content = s.Prompt + s.Placeholder
	case s.Focused:
		before := string(s.Value[:s.CursorPos])
		after := string(s.Value[s.CursorPos:])
		cursor := lipgloss.NewStyle().Background(lipgloss.Color("212")).Render(" ")
		content = s.Prompt + before + cursor + after
	default:
		content = s.Prompt + string(s.Value)
	}

	if s.Focused {
		return s.FocusStyle.Render(content)
	}
	return s.Style.Render(runewidth.Truncate(content, s.Width, "…"))
}
