package transcript

import (
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu613/vet-learning-app/internal/conversation"
	"github.com/tu613/vet-learning-app/internal/router"
)

func TestViewAndClose(t *testing.T) {
	s := New("Limping Dog", conversation.Transcript{
		{Role: conversation.User, Content: "Which leg?"},
		{Role: conversation.Owner, Content: "The back left one."},
	})

	view := s.View(80, 20)
	assert.Contains(t, view, "Which leg?")
	assert.Contains(t, view, "The back left one.")
	assert.Equal(t, "Transcript · Limping Dog", s.Title())

	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	require.NotNil(t, cmd)
	assert.Equal(t, router.PopScreenMsg{}, cmd())
}

func TestEmptyTranscript(t *testing.T) {
	s := New("", nil)
	assert.Equal(t, "Transcript", s.Title())
	assert.Contains(t, s.View(80, 20), "No questions were asked")
}
