// Package history lists the signed-in user's past practice sessions.
package history

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/tu613/vet-learning-app/internal/conversation"
	"github.com/tu613/vet-learning-app/internal/router"
	"github.com/tu613/vet-learning-app/internal/screen"
	"github.com/tu613/vet-learning-app/internal/screens/transcript"
	"github.com/tu613/vet-learning-app/internal/store"
	"github.com/tu613/vet-learning-app/internal/ui/layout"
	"github.com/tu613/vet-learning-app/internal/ui/theme"
)

const historyLimit = 50

type historyLoadedMsg struct {
	entries []store.PracticeLogEntry
	err     error
}

// HistoryScreen displays past practice sessions and their feedback.
type HistoryScreen struct {
	repo     store.PracticeHistory
	userName string
	entries  []store.PracticeLogEntry
	selected int
	expanded map[int]bool
	scroll   int
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a HistoryScreen for userName.
func New(repo store.PracticeHistory, userName string) *HistoryScreen {
	return &HistoryScreen{
		repo:     repo,
		userName: userName,
		expanded: make(map[int]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	repo, user := s.repo, s.userName
	return func() tea.Msg {
		entries, err := repo.QueryPracticeLogs(context.Background(), user, store.QueryOpts{Limit: historyLimit})
		return historyLoadedMsg{entries: entries, err: err}
	}
}

func (s *HistoryScreen) Title() string {
	return "Practice History"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Feedback"},
		{Key: "t", Description: "Transcript"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.err != nil {
			s.errMsg = msg.err.Error()
		} else {
			s.entries = msg.entries
		}
		s.loaded = true
		return s, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "esc", "h":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
		case "down", "j":
			if s.selected < len(s.entries)-1 {
				s.selected++
			}
		case "enter":
			s.expanded[s.selected] = !s.expanded[s.selected]
		case "t":
			if s.selected < len(s.entries) {
				e := s.entries[s.selected]
				overlay := transcript.New(e.CaseName, TranscriptOf(e))
				return s, func() tea.Msg { return router.PushScreenMsg{Screen: overlay} }
			}
		}
	}
	return s, nil
}

// TranscriptOf converts a stored chat history back to a transcript.
func TranscriptOf(e store.PracticeLogEntry) conversation.Transcript {
	t := make(conversation.Transcript, 0, len(e.ChatHistory))
	for _, turn := range e.ChatHistory {
		role := conversation.User
		if turn.Role == conversation.Owner.String() {
			role = conversation.Owner
		}
		t = append(t, conversation.Turn{Role: role, Content: turn.Content})
	}
	return t
}

func (s *HistoryScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading history...")
	}
	if len(s.entries) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  No practice sessions yet. Pick a case to start!")
	}

	var lines []string
	selectedRow := 0
	for i, e := range s.entries {
		prefix := "  "
		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.selected {
			prefix = "> "
			style = style.Foreground(theme.Primary).Bold(true)
			selectedRow = len(lines)
		}

		questions := 0
		for _, turn := range e.ChatHistory {
			if turn.Role == conversation.User.String() {
				questions++
			}
		}
		line := fmt.Sprintf("%s%s  %s  %d questions", prefix, e.Timestamp.Local().Format("Jan 02, 2006 15:04"), e.CaseName, questions)
		lines = append(lines, style.Render(line))

		if s.expanded[i] {
			if e.Model != "" {
				lines = append(lines, theme.Hint.Render("    Evaluated by "+e.Model))
			}
			body := layout.Wrap(e.Feedback, width-8)
			for _, l := range strings.Split(body, "\n") {
				lines = append(lines, "    "+l)
			}
			lines = append(lines, "")
		}
	}

	if selectedRow < s.scroll {
		s.scroll = selectedRow
	}
	if selectedRow >= s.scroll+height {
		s.scroll = selectedRow - height + 1
	}
	window, off := layout.Window(lines, s.scroll, height)
	s.scroll = off
	return strings.Join(window, "\n")
}
