// Package casedetail shows one case before the chat starts.
package casedetail

import (
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/tu613/vet-learning-app/internal/refdata"
	"github.com/tu613/vet-learning-app/internal/screen"
	"github.com/tu613/vet-learning-app/internal/ui/components"
	"github.com/tu613/vet-learning-app/internal/ui/layout"
	"github.com/tu613/vet-learning-app/internal/ui/theme"
)

var shownFields = []struct {
	label string
	field refdata.CaseField
}{
	{"Species", refdata.FieldSpecies},
	{"Level", refdata.FieldLevel},
	{"Pet", refdata.FieldPetName},
	{"Details", refdata.FieldPetDetails},
	{"Chief complaint", refdata.FieldChiefComplaint},
	{"Owner", refdata.FieldOwnerName},
	{"Owner persona", refdata.FieldPersona},
}

// CaseDetailScreen renders the case brief and the start button.
type CaseDetailScreen struct {
	c      refdata.CaseScenario
	scroll int
}

var _ screen.Screen = (*CaseDetailScreen)(nil)
var _ screen.KeyHintProvider = (*CaseDetailScreen)(nil)

func New(c refdata.CaseScenario) *CaseDetailScreen {
	return &CaseDetailScreen{c: c}
}

func (s *CaseDetailScreen) Init() tea.Cmd { return nil }

func (s *CaseDetailScreen) Title() string {
	return s.c.Title()
}

func (s *CaseDetailScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Start chat"},
		{Key: "↑↓", Description: "Scroll"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *CaseDetailScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return s, nil
	}
	switch kmsg.String() {
	case "enter", "s":
		return s, screen.Emit(screen.StartChatMsg{})
	case "esc", "b":
		return s, screen.Emit(screen.BackMsg{})
	case "up", "k":
		if s.scroll > 0 {
			s.scroll--
		}
	case "down", "j":
		s.scroll++
	}
	return s, nil
}

func (s *CaseDetailScreen) View(width, height int) string {
	cw := components.ContentWidth(width)

	var rows []string
	rows = append(rows, theme.Title.Render(s.c.Title()), "")
	for _, f := range shownFields {
		// History stays hidden; the student has to ask for it.
		if !s.c.Has(f.field) {
			continue
		}
		rows = append(rows, components.Field(f.label, s.c.Field(f.field), cw-6))
	}
	rows = append(rows, "",
		theme.Hint.Render("The owner will answer in character. Ask about the history as you would in clinic."),
		"",
		components.ButtonRow([]string{"Start chat", "Back"}, 0),
	)

	card := components.Card(strings.Join(rows, "\n"), cw)
	lines := strings.Split(card, "\n")
	window, off := layout.Window(lines, s.scroll, height)
	s.scroll = off
	return strings.Join(window, "\n")
}
