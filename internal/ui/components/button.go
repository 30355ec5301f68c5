package components

import (
	"charm.land/lipgloss/v2"

	"github.com/tu613/vet-learning-app/internal/ui/theme"
)

// Button is a styled, keyboard-selected button.
type Button struct {
	Label  string
	Active bool
}

// NewButton creates a new button.
func NewButton(label string, active bool) Button {
	return Button{Label: label, Active: active}
}

// View renders the button.
func (b Button) View() string {
	label := " " + b.Label + " "
	if b.Active {
		return theme.ButtonActive.Render("▸" + label)
	}
	return theme.ButtonInactive.Render(label)
}

// ButtonRow renders buttons side by side with the one at active
// highlighted.
func ButtonRow(labels []string, active int) string {
	parts := make([]string, 0, 2*len(labels))
	for i, l := range labels {
		if i > 0 {
			parts = append(parts, "  ")
		}
		parts = append(parts, NewButton(l, i == active).View())
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, parts...)
}
