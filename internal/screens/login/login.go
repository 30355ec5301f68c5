// Package login is the name and role form shown before any case.
package login

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/tu613/vet-learning-app/internal/screen"
	"github.com/tu613/vet-learning-app/internal/session"
	"github.com/tu613/vet-learning-app/internal/ui/components"
	"github.com/tu613/vet-learning-app/internal/ui/layout"
	"github.com/tu613/vet-learning-app/internal/ui/theme"
)

const (
	focusName = iota
	focusRole
)

// LoginScreen collects a free-text name and a role.
type LoginScreen struct {
	name  components.TextInput
	roles components.Menu
	focus int
	err   string
}

var _ screen.Screen = (*LoginScreen)(nil)
var _ screen.KeyHintProvider = (*LoginScreen)(nil)
var _ screen.InputCapturer = (*LoginScreen)(nil)

// New creates the login form with the name field focused.
func New() *LoginScreen {
	items := make([]components.MenuItem, 0, len(session.Roles()))
	for _, r := range session.Roles() {
		items = append(items, components.MenuItem{Label: string(r)})
	}
	return &LoginScreen{
		name:  components.NewTextInput("Your name", "e.g. Somchai", 60),
		roles: components.NewMenu(items),
	}
}

func (s *LoginScreen) Init() tea.Cmd {
	return s.name.Init()
}

func (s *LoginScreen) Title() string {
	return "Login"
}

func (s *LoginScreen) CapturingInput() bool {
	return s.focus == focusName
}

func (s *LoginScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Tab", Description: "Switch field"},
		{Key: "↑↓", Description: "Role"},
		{Key: "Enter", Description: "Start"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (s *LoginScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyPressMsg); ok {
		switch kmsg.String() {
		case "tab", "shift+tab":
			return s, s.toggleFocus()
		case "enter":
			return s, s.submit()
		case "up", "down":
			if s.focus == focusRole {
				s.roles, _ = s.roles.Update(msg)
				return s, nil
			}
		}
	}

	if s.focus == focusName {
		var cmd tea.Cmd
		s.name, cmd = s.name.Update(msg)
		if _, ok := msg.(tea.KeyPressMsg); ok {
			s.err = ""
		}
		return s, cmd
	}
	return s, nil
}

func (s *LoginScreen) toggleFocus() tea.Cmd {
	if s.focus == focusName {
		s.focus = focusRole
		s.name.Blur()
		return nil
	}
	s.focus = focusName
	return s.name.Focus()
}

func (s *LoginScreen) submit() tea.Cmd {
	name := strings.TrimSpace(s.name.Value())
	if name == "" {
		s.err = "Please enter your name."
		return nil
	}
	role := session.RoleStudent
	if item, ok := s.roles.Current(); ok {
		role = session.ParseRole(item.Label)
	}
	return screen.Emit(screen.LoginMsg{Name: name, Role: string(role)})
}

func (s *LoginScreen) View(width, height int) string {
	cw := components.ContentWidth(width)

	var b strings.Builder
	b.WriteString(theme.Title.Width(cw - 6).Render("Veterinary History-Taking Practice"))
	b.WriteString("\n")
	b.WriteString(theme.Subtitle.Width(cw - 6).Render("Interview a simulated pet owner, then get feedback on your communication."))
	b.WriteString("\n\n")
	b.WriteString(s.name.View())
	b.WriteString("\n\n")

	roleLabel := theme.Label
	if s.focus != focusRole {
		roleLabel = lipgloss.NewStyle().Foreground(theme.TextDim)
	}
	b.WriteString(roleLabel.Render("Role"))
	b.WriteString("\n")
	b.WriteString(s.roles.View())

	if s.err != "" {
		b.WriteString("\n\n")
		b.WriteString(theme.Danger.Render(s.err))
	}

	card := components.Card(b.String(), cw)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card)
}
