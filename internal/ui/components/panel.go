package components

import (
	"charm.land/lipgloss/v2"

	"github.com/tu613/vet-learning-app/internal/ui/theme"
)

// ContentWidth returns the inner width used for centred forms and cards.
func ContentWidth(frameWidth int) int {
	w := frameWidth - 6
	if w > 72 {
		w = 72
	}
	if w < 20 {
		w = 20
	}
	return w
}

// Card wraps content in a rounded-border card at the given width.
func Card(content string, width int) string {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Width(width).
		Padding(1, 2).
		Render(content)
}

// Field renders a "Label: value" row with the value wrapped under width.
func Field(label, value string, width int) string {
	l := theme.Label.Render(label + ": ")
	vw := width - lipgloss.Width(l)
	if vw < 10 {
		return l + "\n" + theme.Body.Width(width).Render(value)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, l, theme.Body.Width(vw).Render(value))
}
