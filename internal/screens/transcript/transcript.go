// Package transcript is a read-only, scrollable view of a conversation.
package transcript

import (
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/tu613/vet-learning-app/internal/conversation"
	"github.com/tu613/vet-learning-app/internal/router"
	"github.com/tu613/vet-learning-app/internal/screen"
	"github.com/tu613/vet-learning-app/internal/screens/chat"
	"github.com/tu613/vet-learning-app/internal/ui/layout"
	"github.com/tu613/vet-learning-app/internal/ui/theme"
)

// TranscriptScreen is pushed as an overlay and popped with Esc.
type TranscriptScreen struct {
	title  string
	turns  conversation.Transcript
	scroll int
}

var _ screen.Screen = (*TranscriptScreen)(nil)
var _ screen.KeyHintProvider = (*TranscriptScreen)(nil)

func New(title string, turns conversation.Transcript) *TranscriptScreen {
	return &TranscriptScreen{title: title, turns: turns}
}

func (s *TranscriptScreen) Init() tea.Cmd { return nil }

func (s *TranscriptScreen) Title() string {
	if s.title == "" {
		return "Transcript"
	}
	return "Transcript · " + s.title
}

func (s *TranscriptScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Scroll"},
		{Key: "Esc", Description: "Close"},
	}
}

func (s *TranscriptScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return s, nil
	}
	switch kmsg.String() {
	case "esc", "q", "t":
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	case "up", "k":
		s.scroll--
	case "down", "j":
		s.scroll++
	case "pgup":
		s.scroll -= 10
	case "pgdown":
		s.scroll += 10
	case "home", "g":
		s.scroll = 0
	}
	if s.scroll < 0 {
		s.scroll = 0
	}
	return s, nil
}

func (s *TranscriptScreen) View(width, height int) string {
	if len(s.turns) == 0 {
		return theme.Hint.Render("\n  No questions were asked in this session.")
	}
	lines := chat.TranscriptLines(s.turns, width-2)
	window, off := layout.Window(lines, s.scroll, height)
	s.scroll = off
	return strings.Join(window, "\n")
}
