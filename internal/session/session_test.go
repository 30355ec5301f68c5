package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu613/vet-learning-app/internal/conversation"
	"github.com/tu613/vet-learning-app/internal/evaluation"
	"github.com/tu613/vet-learning-app/internal/llm"
	"github.com/tu613/vet-learning-app/internal/persona"
	"github.com/tu613/vet-learning-app/internal/refdata"
)

type countingResetter struct{ n int }

func (c *countingResetter) Reset() { c.n++ }

func caseA() refdata.CaseScenario {
	return refdata.CaseScenario{ID: "a", Doc: map[string]any{"pet_name": "Bella"}}
}

func caseB() refdata.CaseScenario {
	return refdata.CaseScenario{ID: "b", Doc: map[string]any{"pet_name": "Max"}}
}

func toChat(t *testing.T, m *Machine, c refdata.CaseScenario) {
	t.Helper()
	require.NoError(t, m.SelectCase(c))
	require.NoError(t, m.StartChat(persona.Build(c, persona.Options{})))
}

func loggedIn(t *testing.T, chats ChatResetter) *Machine {
	t.Helper()
	m := NewMachine(chats)
	require.NoError(t, m.Login(User{Name: "Somchai", Role: RoleStudent}))
	return m
}

func TestInitialState(t *testing.T) {
	m := NewMachine(nil)
	s := m.State()
	assert.Equal(t, ScreenLogin, s.Screen)
	assert.Nil(t, s.User)
	assert.True(t, s.Transcript.Empty())
}

func TestLogin(t *testing.T) {
	m := NewMachine(nil)
	assert.ErrorIs(t, m.Login(User{Name: "   "}), ErrBlankName)
	assert.Equal(t, ScreenLogin, m.Screen())

	require.NoError(t, m.Login(User{Name: "  Nok "}))
	s := m.State()
	assert.Equal(t, ScreenCaseSelection, s.Screen)
	assert.Equal(t, "Nok", s.User.Name)
	assert.Equal(t, RoleStudent, s.User.Role)
	assert.Contains(t, s.Notice, "Nok")
}

func TestHappyPath(t *testing.T) {
	m := loggedIn(t, nil)
	toChat(t, m, caseA())

	s := m.State()
	assert.Equal(t, ScreenChat, s.Screen)
	assert.Equal(t, "a", s.OwnerPrompt.CaseID)
	assert.Contains(t, s.OwnerPrompt.Text, "Bella")

	tr := conversation.Transcript{{Role: conversation.User, Content: "hi"}, {Role: conversation.Owner, Content: "hello"}}
	assert.True(t, m.UpdateTranscript(s.ChatEpoch, tr))

	require.NoError(t, m.BeginEvaluation())
	assert.True(t, m.State().Evaluating)
	require.NoError(t, m.CompleteEvaluation(&evaluation.Result{Feedback: "good job", Model: "mock"}))

	s = m.State()
	assert.Equal(t, ScreenFeedback, s.Screen)
	assert.Equal(t, "good job", s.Feedback)
	assert.Equal(t, NoticeEvaluated, s.Notice)
	assert.Len(t, s.Transcript, 2)

	require.NoError(t, m.BackToList())
	s = m.State()
	assert.Equal(t, ScreenCaseSelection, s.Screen)
	assert.Nil(t, s.Case)
	assert.False(t, s.HasFeedback)
	assert.Empty(t, s.Feedback)
	assert.True(t, s.Transcript.Empty())
	assert.Equal(t, persona.Prompt{}, s.OwnerPrompt)
	assert.NotNil(t, s.User)
}

func TestInvalidTransitionsLeaveStateUntouched(t *testing.T) {
	m := loggedIn(t, nil)
	before := m.State()

	for name, trigger := range map[string]func() error{
		"login":        func() error { return m.Login(User{Name: "x"}) },
		"start chat":   func() error { return m.StartChat(persona.Prompt{}) },
		"back":         func() error { return m.Back() },
		"evaluate":     func() error { return m.BeginEvaluation() },
		"complete":     func() error { return m.CompleteEvaluation(&evaluation.Result{}) },
		"fail":         func() error { return m.FailEvaluation(errors.New("x")) },
		"back to list": func() error { return m.BackToList() },
	} {
		err := trigger()
		assert.ErrorIs(t, err, ErrInvalidTransition, name)
		assert.Equal(t, before, m.State(), name)
	}
}

func TestBackFromDetail(t *testing.T) {
	m := loggedIn(t, nil)
	require.NoError(t, m.SelectCase(caseA()))
	require.NoError(t, m.Back())
	assert.Equal(t, ScreenCaseSelection, m.Screen())
	assert.Nil(t, m.State().Case)
}

func TestEvaluationFailureStaysOnChat(t *testing.T) {
	m := loggedIn(t, nil)
	toChat(t, m, caseA())
	m.UpdateTranscript(m.State().ChatEpoch, conversation.Transcript{{Role: conversation.User, Content: "q"}})

	require.NoError(t, m.BeginEvaluation())
	require.NoError(t, m.FailEvaluation(&llm.ErrProviderUnavailable{Err: errors.New("503")}))

	s := m.State()
	assert.Equal(t, ScreenChat, s.Screen)
	assert.False(t, s.HasFeedback)
	assert.Empty(t, s.Feedback)
	assert.False(t, s.Evaluating)
	assert.Contains(t, s.Notice, "Evaluation failed")
	assert.Len(t, s.Transcript, 1)

	// A retry is allowed.
	require.NoError(t, m.BeginEvaluation())
}

func TestEvaluationInFlightBlocksBack(t *testing.T) {
	m := loggedIn(t, nil)
	toChat(t, m, caseA())
	require.NoError(t, m.BeginEvaluation())
	assert.ErrorIs(t, m.Back(), ErrInvalidTransition)
	assert.ErrorIs(t, m.BeginEvaluation(), ErrInvalidTransition)
}

func TestLogFailureNotice(t *testing.T) {
	m := loggedIn(t, nil)
	toChat(t, m, caseA())
	require.NoError(t, m.BeginEvaluation())
	require.NoError(t, m.CompleteEvaluation(&evaluation.Result{Feedback: "ok", LogErr: errors.New("db")}))
	assert.Equal(t, NoticeLogNotSaved, m.State().Notice)
	assert.Equal(t, "ok", m.State().Feedback)
}

func TestEnforce_ForcesLoginWithoutUser(t *testing.T) {
	for _, screen := range []Screen{ScreenCaseSelection, ScreenCaseDetail, ScreenChat, ScreenFeedback} {
		m := NewMachine(nil)
		m.state.Screen = screen

		assert.True(t, m.Enforce(), screen.String())
		assert.Equal(t, ScreenLogin, m.Screen(), screen.String())
	}

	m := NewMachine(nil)
	assert.False(t, m.Enforce())

	m = loggedIn(t, nil)
	assert.False(t, m.Enforce())
	assert.Equal(t, ScreenCaseSelection, m.Screen())
}

func TestLogout(t *testing.T) {
	r := &countingResetter{}
	m := loggedIn(t, r)
	toChat(t, m, caseA())
	epoch := m.State().ChatEpoch

	m.Logout()
	s := m.State()
	assert.Equal(t, ScreenLogin, s.Screen)
	assert.Nil(t, s.User)
	assert.Nil(t, s.Case)
	assert.Equal(t, epoch, s.ChatEpoch)
	assert.Equal(t, 2, r.n)
}

func TestSwitchingCasesResetsConversation(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResponse{Text: "Bella is vomiting."},
		llm.MockResponse{Text: "Max is limping."},
	)
	driver := conversation.NewDriver(mock, nil)
	m := loggedIn(t, driver)
	ctx := context.Background()

	toChat(t, m, caseA())
	sa := m.State()
	require.NoError(t, driver.EnsureSession(ctx, sa.OwnerPrompt.CaseID, sa.OwnerPrompt.Text))
	tr, err := driver.SendUserTurn(ctx, sa.Transcript, "What's wrong with her?")
	require.NoError(t, err)
	require.True(t, m.UpdateTranscript(sa.ChatEpoch, tr))

	require.NoError(t, m.Back())
	toChat(t, m, caseB())

	sb := m.State()
	assert.True(t, sb.Transcript.Empty())
	assert.Equal(t, "", driver.Key(), "case A session must be discarded")
	assert.False(t, m.UpdateTranscript(sa.ChatEpoch, tr), "late reply from case A must be ignored")

	require.NoError(t, driver.EnsureSession(ctx, sb.OwnerPrompt.CaseID, sb.OwnerPrompt.Text))
	tr, err = driver.SendUserTurn(ctx, sb.Transcript, "What's wrong with him?")
	require.NoError(t, err)
	require.True(t, m.UpdateTranscript(sb.ChatEpoch, tr))

	final := m.State().Transcript
	require.Len(t, final, 2)
	for _, turn := range final {
		assert.NotContains(t, turn.Content, "Bella")
		assert.NotContains(t, turn.Content, "her?")
	}

	last, _ := mock.LastCall()
	require.Len(t, last.Messages, 1)
	assert.Contains(t, last.System, "Max")
}

func TestParseRole(t *testing.T) {
	assert.Equal(t, RoleInstructor, ParseRole(" instructor "))
	assert.Equal(t, RoleStudent, ParseRole("student"))
	assert.Equal(t, RoleStudent, ParseRole("other"))
	assert.Len(t, Roles(), 2)
}
