// Package chat is the history-taking conversation with the simulated owner.
package chat

import (
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/tu613/vet-learning-app/internal/conversation"
	"github.com/tu613/vet-learning-app/internal/llm"
	"github.com/tu613/vet-learning-app/internal/screen"
	"github.com/tu613/vet-learning-app/internal/session"
	"github.com/tu613/vet-learning-app/internal/ui/components"
	"github.com/tu613/vet-learning-app/internal/ui/layout"
	"github.com/tu613/vet-learning-app/internal/ui/theme"
)

// StateSource exposes the session state read by the chat view.
// *session.Machine implements it.
type StateSource interface {
	State() session.State
}

// ChatScreen renders the transcript and the question input.
type ChatScreen struct {
	src     StateSource
	input   components.TextInput
	spinner components.Spinner

	pending  bool
	sendErr  string
	ticking  bool
	fromTail int // lines scrolled up from the newest turn
}

var _ screen.Screen = (*ChatScreen)(nil)
var _ screen.KeyHintProvider = (*ChatScreen)(nil)
var _ screen.InputCapturer = (*ChatScreen)(nil)

func New(src StateSource) *ChatScreen {
	return &ChatScreen{
		src:   src,
		input: components.NewTextInput("Your question", "Ask the owner about the patient...", 500),
	}
}

func (s *ChatScreen) Init() tea.Cmd {
	return s.input.Init()
}

func (s *ChatScreen) Title() string {
	st := s.src.State()
	if st.Case != nil {
		return "Chat · " + st.Case.Title()
	}
	return "Chat"
}

func (s *ChatScreen) CapturingInput() bool {
	return true
}

func (s *ChatScreen) busy() bool {
	return s.pending || s.src.State().Evaluating
}

func (s *ChatScreen) KeyHints() []layout.KeyHint {
	if s.busy() {
		return []layout.KeyHint{
			{Key: "PgUp/PgDn", Description: "Scroll"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}
	return []layout.KeyHint{
		{Key: "Enter", Description: "Send"},
		{Key: "Ctrl+E", Description: "End & evaluate"},
		{Key: "PgUp/PgDn", Description: "Scroll"},
		{Key: "Esc", Description: "Back to cases"},
	}
}

func (s *ChatScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case components.SpinnerTickMsg:
		if !s.busy() {
			s.ticking = false
			return s, nil
		}
		s.spinner.Advance()
		return s, s.spinner.Tick()

	case screen.TurnResultMsg:
		s.pending = false
		s.fromTail = 0
		if msg.Err != nil {
			s.sendErr = "Message not sent. " + llm.Describe(msg.Err)
			if s.input.Value() == "" {
				s.input.SetValue(msg.Text)
			}
		}
		return s, nil

	case tea.KeyPressMsg:
		return s.handleKey(msg)
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *ChatScreen) handleKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "enter":
		text := strings.TrimSpace(s.input.Value())
		if text == "" || s.busy() {
			return s, nil
		}
		s.pending = true
		s.sendErr = ""
		s.fromTail = 0
		s.input.Reset()
		s.spinner.Label = "The owner is typing..."
		return s, tea.Batch(screen.Emit(screen.SendTurnMsg{Text: text}), s.startSpinner())

	case "ctrl+e":
		if s.busy() {
			return s, nil
		}
		s.sendErr = ""
		s.spinner.Label = "Evaluating your history taking..."
		return s, tea.Batch(screen.Emit(screen.EndSessionMsg{}), s.startSpinner())

	case "esc":
		if s.busy() {
			return s, nil
		}
		return s, screen.Emit(screen.BackMsg{})

	case "pgup", "ctrl+up":
		s.fromTail += 5
		return s, nil

	case "pgdown", "ctrl+down":
		s.fromTail -= 5
		if s.fromTail < 0 {
			s.fromTail = 0
		}
		return s, nil
	}

	if s.busy() {
		return s, nil
	}
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *ChatScreen) startSpinner() tea.Cmd {
	if s.ticking {
		return nil
	}
	s.ticking = true
	return s.spinner.Tick()
}

// TranscriptLines renders t with speaker labels, wrapped to width.
func TranscriptLines(t conversation.Transcript, width int) []string {
	var lines []string
	for i, turn := range t {
		if i > 0 {
			lines = append(lines, "")
		}
		label := theme.SpeakerUser
		if turn.Role == conversation.Owner {
			label = theme.SpeakerOwner
		}
		lines = append(lines, label.Render(turn.Role.Label()+":"))
		body := layout.Wrap(turn.Content, width-4)
		for _, l := range strings.Split(body, "\n") {
			lines = append(lines, "  "+l)
		}
	}
	return lines
}

func (s *ChatScreen) View(width, height int) string {
	st := s.src.State()

	var bottom []string
	switch {
	case s.busy():
		bottom = append(bottom, "  "+s.spinner.View())
	case s.sendErr != "":
		bottom = append(bottom, theme.Danger.Render("  "+s.sendErr))
	default:
		bottom = append(bottom, "")
	}
	bottom = append(bottom, s.input.View())

	avail := height - len(bottom) - 2
	if avail < 1 {
		avail = 1
	}

	lines := TranscriptLines(st.Transcript, width-2)
	if len(lines) == 0 {
		lines = []string{theme.Hint.Render("  Greet the owner and start taking the history.")}
	}

	maxOffset := len(lines) - avail
	if maxOffset < 0 {
		maxOffset = 0
	}
	if s.fromTail > maxOffset {
		s.fromTail = maxOffset
	}
	window, _ := layout.Window(lines, maxOffset-s.fromTail, avail)
	for len(window) < avail {
		window = append(window, "")
	}

	return strings.Join(window, "\n") + "\n\n" + strings.Join(bottom, "\n")
}
