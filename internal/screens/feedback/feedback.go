// Package feedback shows the evaluation of the finished conversation.
package feedback

import (
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/tu613/vet-learning-app/internal/router"
	"github.com/tu613/vet-learning-app/internal/screen"
	"github.com/tu613/vet-learning-app/internal/screens/transcript"
	"github.com/tu613/vet-learning-app/internal/session"
	"github.com/tu613/vet-learning-app/internal/ui/layout"
	"github.com/tu613/vet-learning-app/internal/ui/theme"
)

// StateSource exposes the session state. *session.Machine implements it.
type StateSource interface {
	State() session.State
}

// FeedbackScreen renders the raw evaluation text with scrolling.
type FeedbackScreen struct {
	src    StateSource
	scroll int
}

var _ screen.Screen = (*FeedbackScreen)(nil)
var _ screen.KeyHintProvider = (*FeedbackScreen)(nil)

func New(src StateSource) *FeedbackScreen {
	return &FeedbackScreen{src: src}
}

func (s *FeedbackScreen) Init() tea.Cmd { return nil }

func (s *FeedbackScreen) Title() string {
	return "Feedback"
}

func (s *FeedbackScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Scroll"},
		{Key: "t", Description: "Transcript"},
		{Key: "Enter", Description: "Back to cases"},
	}
}

func (s *FeedbackScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return s, nil
	}
	switch kmsg.String() {
	case "enter", "b":
		return s, screen.Emit(screen.BackToListMsg{})
	case "t":
		st := s.src.State()
		title := ""
		if st.Case != nil {
			title = st.Case.Title()
		}
		overlay := transcript.New(title, st.Transcript)
		return s, func() tea.Msg { return router.PushScreenMsg{Screen: overlay} }
	case "up", "k":
		s.scroll--
	case "down", "j":
		s.scroll++
	case "pgup":
		s.scroll -= 10
	case "pgdown", "space":
		s.scroll += 10
	}
	if s.scroll < 0 {
		s.scroll = 0
	}
	return s, nil
}

func (s *FeedbackScreen) View(width, height int) string {
	st := s.src.State()

	var head []string
	if st.Case != nil {
		head = append(head, theme.Title.Render("  "+st.Case.Title()))
	}
	if st.Model != "" {
		head = append(head, theme.Hint.Render("  Evaluated by "+st.Model))
	}
	head = append(head, "")

	text := st.Feedback
	if strings.TrimSpace(text) == "" {
		text = "The evaluator returned no feedback."
	}
	body := strings.Split(layout.Wrap(text, width-4), "\n")
	for i, l := range body {
		body[i] = "  " + l
	}

	window, off := layout.Window(body, s.scroll, height-len(head))
	s.scroll = off
	return strings.Join(append(head, window...), "\n")
}
