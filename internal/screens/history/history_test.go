package history

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu613/vet-learning-app/internal/conversation"
	"github.com/tu613/vet-learning-app/internal/router"
	"github.com/tu613/vet-learning-app/internal/store"
)

type fakeHistory struct {
	entries []store.PracticeLogEntry
	err     error
	user    string
}

func (f *fakeHistory) QueryPracticeLogs(_ context.Context, userName string, _ store.QueryOpts) ([]store.PracticeLogEntry, error) {
	f.user = userName
	return f.entries, f.err
}

func load(t *testing.T, s *HistoryScreen) {
	t.Helper()
	cmd := s.Init()
	require.NotNil(t, cmd)
	s.Update(cmd())
}

func TestListAndExpand(t *testing.T) {
	repo := &fakeHistory{entries: []store.PracticeLogEntry{{
		Timestamp: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		CaseName:  "Vomiting Cat",
		Feedback:  "Overall Summary: thorough history.",
		Model:     "gemini-2.5-pro",
		ChatHistory: []store.ChatTurn{
			{Role: "user", Content: "Hi"},
			{Role: "owner", Content: "Hello"},
			{Role: "user", Content: "Any vomiting?"},
		},
	}}}
	s := New(repo, "Nok")
	load(t, s)
	assert.Equal(t, "Nok", repo.user)

	view := s.View(100, 20)
	assert.Contains(t, view, "Vomiting Cat")
	assert.Contains(t, view, "2 questions")
	assert.NotContains(t, view, "thorough history")

	s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	assert.Contains(t, s.View(100, 20), "thorough history")

	_, cmd := s.Update(tea.KeyPressMsg{Code: 't', Text: "t"})
	require.NotNil(t, cmd)
	_, ok := cmd().(router.PushScreenMsg)
	assert.True(t, ok)
}

func TestLoadError(t *testing.T) {
	s := New(&fakeHistory{err: errors.New("db locked")}, "Nok")
	load(t, s)
	assert.Contains(t, s.View(100, 20), "db locked")
}

func TestEmpty(t *testing.T) {
	s := New(&fakeHistory{}, "Nok")
	load(t, s)
	assert.Contains(t, s.View(100, 20), "No practice sessions yet")
}

func TestTranscriptOf(t *testing.T) {
	tr := TranscriptOf(store.PracticeLogEntry{ChatHistory: []store.ChatTurn{
		{Role: "user", Content: "a"},
		{Role: "owner", Content: "b"},
	}})
	assert.Equal(t, conversation.Transcript{
		{Role: conversation.User, Content: "a"},
		{Role: conversation.Owner, Content: "b"},
	}, tr)
}
