package chat

import (
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu613/vet-learning-app/internal/conversation"
	"github.com/tu613/vet-learning-app/internal/llm"
	"github.com/tu613/vet-learning-app/internal/screen"
	"github.com/tu613/vet-learning-app/internal/session"
)

type stubState struct {
	st session.State
}

func (s *stubState) State() session.State { return s.st }

func press(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func typeText(s *ChatScreen, text string) {
	for _, r := range text {
		s.Update(tea.KeyPressMsg{Code: r, Text: string(r)})
	}
}

// emitted runs cmd and collects the intent messages it produces,
// skipping spinner ticks.
func emitted(t *testing.T, cmd tea.Cmd) []tea.Msg {
	t.Helper()
	require.NotNil(t, cmd)
	msg := cmd()
	batch, ok := msg.(tea.BatchMsg)
	if !ok {
		return []tea.Msg{msg}
	}
	var out []tea.Msg
	for _, c := range batch {
		if c == nil {
			continue
		}
		switch m := c().(type) {
		case screen.SendTurnMsg, screen.EndSessionMsg:
			out = append(out, m)
		}
	}
	return out
}

func TestSendEmitsTurn(t *testing.T) {
	s := New(&stubState{st: session.State{Screen: session.ScreenChat}})
	typeText(s, "How old is Mali?")

	_, cmd := s.Update(press(tea.KeyEnter))
	msgs := emitted(t, cmd)
	require.Len(t, msgs, 1)
	assert.Equal(t, screen.SendTurnMsg{Text: "How old is Mali?"}, msgs[0])
	assert.Empty(t, s.input.Value())

	// A second send waits for the first to finish.
	typeText(s, "x")
	_, cmd = s.Update(press(tea.KeyEnter))
	assert.Nil(t, cmd)
}

func TestBlankInputNotSent(t *testing.T) {
	s := New(&stubState{})
	typeText(s, "   ")
	_, cmd := s.Update(press(tea.KeyEnter))
	assert.Nil(t, cmd)
}

func TestFailedTurnRestoresText(t *testing.T) {
	s := New(&stubState{})
	typeText(s, "Any vomiting?")
	s.Update(press(tea.KeyEnter))

	s.Update(screen.TurnResultMsg{Err: &llm.ErrRateLimit{}, Text: "Any vomiting?"})

	assert.False(t, s.pending)
	assert.Equal(t, "Any vomiting?", s.input.Value())
	assert.Contains(t, s.View(100, 20), "Message not sent")
}

func TestEndSessionAndBack(t *testing.T) {
	src := &stubState{}
	s := New(src)

	_, cmd := s.Update(tea.KeyPressMsg{Code: 'e', Mod: tea.ModCtrl})
	msgs := emitted(t, cmd)
	require.Len(t, msgs, 1)
	assert.Equal(t, screen.EndSessionMsg{}, msgs[0])

	_, cmd = s.Update(press(tea.KeyEscape))
	require.NotNil(t, cmd)
	assert.Equal(t, screen.BackMsg{}, cmd())

	src.st.Evaluating = true
	_, cmd = s.Update(press(tea.KeyEscape))
	assert.Nil(t, cmd)
}

func TestViewRendersTranscript(t *testing.T) {
	src := &stubState{st: session.State{
		Screen: session.ScreenChat,
		Transcript: conversation.Transcript{
			{Role: conversation.User, Content: "Hello, what brings you in?"},
			{Role: conversation.Owner, Content: "Mali keeps throwing up."},
		},
	}}
	view := New(src).View(100, 20)

	assert.Contains(t, view, "User:")
	assert.Contains(t, view, "Owner:")
	assert.Contains(t, view, "Mali keeps throwing up.")
}

func TestTranscriptLinesOrder(t *testing.T) {
	lines := TranscriptLines(conversation.Transcript{
		{Role: conversation.User, Content: "a"},
		{Role: conversation.Owner, Content: "b"},
	}, 80)
	require.Len(t, lines, 5)
	assert.Contains(t, lines[0], "User:")
	assert.Contains(t, lines[3], "Owner:")
}
