package components

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/tu613/vet-learning-app/internal/ui/theme"
)

// MenuItem represents a single item in a vertical menu.
type MenuItem struct {
	Label    string
	Detail   string // optional dim second line
	Action   func() tea.Cmd
	Disabled bool
}

// Menu is a vertical menu with keyboard navigation.
type Menu struct {
	Items    []MenuItem
	Selected int
}

// NewMenu creates a new menu with the first enabled item selected.
func NewMenu(items []MenuItem) Menu {
	selected := 0
	for i, item := range items {
		if !item.Disabled {
			selected = i
			break
		}
	}
	return Menu{
		Items:    items,
		Selected: selected,
	}
}

// Update handles keyboard navigation. Enter runs the selected item's Action.
func (m Menu) Update(msg tea.Msg) (Menu, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch kmsg.String() {
	case "up", "k":
		m.move(-1)
	case "down", "j":
		m.move(1)
	case "enter":
		if item, ok := m.Current(); ok && item.Action != nil {
			return m, item.Action()
		}
	}

	return m, nil
}

func (m *Menu) move(delta int) {
	for i := m.Selected + delta; i >= 0 && i < len(m.Items); i += delta {
		if !m.Items[i].Disabled {
			m.Selected = i
			return
		}
	}
}

// Current returns the selected item if it is enabled.
func (m Menu) Current() (MenuItem, bool) {
	if m.Selected < 0 || m.Selected >= len(m.Items) {
		return MenuItem{}, false
	}
	item := m.Items[m.Selected]
	return item, !item.Disabled
}

// View renders the menu.
func (m Menu) View() string {
	return strings.Join(m.Lines(), "\n")
}

// Lines renders each item, including any detail line, as separate rows.
func (m Menu) Lines() []string {
	var lines []string
	dim := lipgloss.NewStyle().Foreground(theme.TextDim)
	for i, item := range m.Items {
		if i == m.Selected {
			lines = append(lines, theme.Selected.Render("  ▸ "+item.Label))
		} else {
			lines = append(lines, theme.Unselected.Render("    "+item.Label))
		}
		if item.Detail != "" {
			lines = append(lines, dim.Render("      "+item.Detail))
		}
	}
	return lines
}

// SelectedLine returns the row index in Lines of the selected item.
func (m Menu) SelectedLine() int {
	row := 0
	for i := 0; i < m.Selected && i < len(m.Items); i++ {
		row++
		if m.Items[i].Detail != "" {
			row++
		}
	}
	return row
}
