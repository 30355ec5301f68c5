package feedback

import (
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu613/vet-learning-app/internal/conversation"
	"github.com/tu613/vet-learning-app/internal/refdata"
	"github.com/tu613/vet-learning-app/internal/router"
	"github.com/tu613/vet-learning-app/internal/screen"
	"github.com/tu613/vet-learning-app/internal/session"
)

type stubState struct{ st session.State }

func (s stubState) State() session.State { return s.st }

func feedbackState() stubState {
	c := refdata.CaseScenario{ID: "c1", Doc: map[string]any{"case_name": "Vomiting Cat"}}
	return stubState{st: session.State{
		Screen:      session.ScreenFeedback,
		Case:        &c,
		Feedback:    "Skill Scoring\nOpening: 4/5\n\nOverall Summary\nGood start.",
		HasFeedback: true,
		Model:       "gemini-2.5-pro",
		Transcript:  conversation.Transcript{{Role: conversation.User, Content: "Hi"}},
	}}
}

func TestViewShowsFeedback(t *testing.T) {
	view := New(feedbackState()).View(100, 30)
	assert.Contains(t, view, "Vomiting Cat")
	assert.Contains(t, view, "Opening: 4/5")
	assert.Contains(t, view, "gemini-2.5-pro")
}

func TestBackToList(t *testing.T) {
	_, cmd := New(feedbackState()).Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, screen.BackToListMsg{}, cmd())
}

func TestTranscriptOverlay(t *testing.T) {
	_, cmd := New(feedbackState()).Update(tea.KeyPressMsg{Code: 't', Text: "t"})
	require.NotNil(t, cmd)
	push, ok := cmd().(router.PushScreenMsg)
	require.True(t, ok)
	assert.Equal(t, "Transcript · Vomiting Cat", push.Screen.Title())
}

func TestScrollClamps(t *testing.T) {
	s := New(feedbackState())
	s.Update(tea.KeyPressMsg{Code: tea.KeyUp})
	assert.Equal(t, 0, s.scroll)

	for range 50 {
		s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	}
	s.View(100, 6)
	assert.Less(t, s.scroll, 50)
}
