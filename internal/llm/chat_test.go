package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryChat_AccumulatesTurns(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Text: "He's a 5 year old beagle."},
		MockResponse{Text: "Since Monday."},
	)
	chat, err := StartChat(context.Background(), mock, "owner persona")
	require.NoError(t, err)

	_, err = chat.Send(context.Background(), "Tell me about your dog.")
	require.NoError(t, err)
	resp, err := chat.Send(context.Background(), "When did the limping start?")
	require.NoError(t, err)
	assert.Equal(t, "Since Monday.", resp.Text)

	last, ok := mock.LastCall()
	require.True(t, ok)
	assert.Equal(t, "owner persona", last.System)
	require.Len(t, last.Messages, 3)
	assert.Equal(t, RoleUser, last.Messages[0].Role)
	assert.Equal(t, RoleAssistant, last.Messages[1].Role)
	assert.Equal(t, "He's a 5 year old beagle.", last.Messages[1].Content)
	assert.Equal(t, "When did the limping start?", last.Messages[2].Content)
}

func TestHistoryChat_FailedSendLeavesHistory(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Text: "first"},
		MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("down")}},
		MockResponse{Text: "third"},
	)
	chat, err := StartChat(context.Background(), mock, "sys")
	require.NoError(t, err)

	_, err = chat.Send(context.Background(), "one")
	require.NoError(t, err)

	_, err = chat.Send(context.Background(), "two")
	require.Error(t, err)

	_, err = chat.Send(context.Background(), "two again")
	require.NoError(t, err)

	last, _ := mock.LastCall()
	require.Len(t, last.Messages, 3)
	assert.Equal(t, "one", last.Messages[0].Content)
	assert.Equal(t, "first", last.Messages[1].Content)
	assert.Equal(t, "two again", last.Messages[2].Content)
}

type starterProvider struct {
	*MockProvider
	system string
}

func (s *starterProvider) StartChat(_ context.Context, system string) (ChatSession, error) {
	s.system = system
	return &historyChat{provider: s.MockProvider, system: "native:" + system}, nil
}

func TestStartChat_UsesNativeSession(t *testing.T) {
	p := &starterProvider{MockProvider: NewMockProvider(MockResponse{Text: "ok"})}
	chat, err := StartChat(context.Background(), p, "persona")
	require.NoError(t, err)
	assert.Equal(t, "persona", p.system)

	_, err = chat.Send(context.Background(), "hi")
	require.NoError(t, err)
	last, _ := p.LastCall()
	assert.Equal(t, "native:persona", last.System)
}
