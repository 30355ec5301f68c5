package components

import (
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/tu613/vet-learning-app/internal/ui/theme"
)

const spinnerInterval = 120 * time.Millisecond

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// SpinnerTickMsg advances a Spinner.
type SpinnerTickMsg time.Time

// Spinner is a small busy indicator with a label.
type Spinner struct {
	Label string
	frame int
}

// Tick schedules the next frame.
func (s Spinner) Tick() tea.Cmd {
	return tea.Tick(spinnerInterval, func(t time.Time) tea.Msg {
		return SpinnerTickMsg(t)
	})
}

// Advance moves to the next frame.
func (s *Spinner) Advance() {
	s.frame = (s.frame + 1) % len(spinnerFrames)
}

// View renders the current frame and label.
func (s Spinner) View() string {
	return lipgloss.NewStyle().Foreground(theme.Primary).Render(spinnerFrames[s.frame]) +
		" " + theme.Hint.Render(s.Label)
}
