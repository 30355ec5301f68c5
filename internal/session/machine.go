// Package session sequences the practice flow
// Login → CaseSelection → CaseDetail → Chat → Feedback.
package session

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tu613/vet-learning-app/internal/conversation"
	"github.com/tu613/vet-learning-app/internal/evaluation"
	"github.com/tu613/vet-learning-app/internal/llm"
	"github.com/tu613/vet-learning-app/internal/persona"
	"github.com/tu613/vet-learning-app/internal/refdata"
)

// ErrInvalidTransition is returned when a trigger is not allowed from the
// current screen. The state is left untouched.
var ErrInvalidTransition = errors.New("invalid session transition")

// ErrBlankName is returned by Login when the name is empty or whitespace.
var ErrBlankName = errors.New("name is required")

// Notices shown after an evaluation.
const (
	NoticeEvaluating  = "Evaluating the conversation..."
	NoticeEvaluated   = "Evaluation complete."
	NoticeLogNotSaved = "Evaluation complete, but the practice log could not be saved."
)

// ChatResetter discards the external chat session bound to a case.
type ChatResetter interface {
	Reset()
}

// Machine owns the session State. It is not safe for concurrent use; the
// UI goroutine is its only caller.
type Machine struct {
	state State
	chats ChatResetter
}

// NewMachine returns a Machine on the Login screen. chats may be nil.
func NewMachine(chats ChatResetter) *Machine {
	return &Machine{chats: chats}
}

// State returns a copy of the current state.
func (m *Machine) State() State {
	return m.state
}

// Screen returns the active screen.
func (m *Machine) Screen() Screen {
	return m.state.Screen
}

func (m *Machine) invalid(trigger string) error {
	return fmt.Errorf("%w: %s from %s", ErrInvalidTransition, trigger, m.state.Screen)
}

// Login stores the user and moves to the case list.
func (m *Machine) Login(u User) error {
	if m.state.Screen != ScreenLogin {
		return m.invalid("login")
	}
	u.Name = strings.TrimSpace(u.Name)
	if u.Name == "" {
		return ErrBlankName
	}
	if u.Role == "" {
		u.Role = RoleStudent
	}
	m.state.User = &u
	m.state.Screen = ScreenCaseSelection
	m.state.Notice = fmt.Sprintf("Welcome, %s (%s)", u.Name, u.Role)
	return nil
}

// SelectCase opens the detail view of c.
func (m *Machine) SelectCase(c refdata.CaseScenario) error {
	if m.state.Screen != ScreenCaseSelection {
		return m.invalid("select case")
	}
	m.state.Case = &c
	m.state.Screen = ScreenCaseDetail
	m.state.Notice = ""
	return nil
}

// StartChat enters Chat bound to prompt with an empty transcript. Any
// session left over from a previous case is discarded.
func (m *Machine) StartChat(prompt persona.Prompt) error {
	if m.state.Screen != ScreenCaseDetail {
		return m.invalid("start chat")
	}
	m.resetChat()
	m.state.OwnerPrompt = prompt
	m.state.ChatEpoch++
	m.state.Screen = ScreenChat
	m.state.Notice = ""
	return nil
}

// Back returns to the case list from CaseDetail, or abandons an idle Chat.
func (m *Machine) Back() error {
	switch {
	case m.state.Screen == ScreenCaseDetail:
	case m.state.Screen == ScreenChat && !m.state.Evaluating:
		m.resetChat()
	default:
		return m.invalid("back")
	}
	m.state.Case = nil
	m.state.Screen = ScreenCaseSelection
	m.state.Notice = ""
	return nil
}

// UpdateTranscript records t for the chat entry identified by epoch.
// Stale epochs are ignored and reported as false.
func (m *Machine) UpdateTranscript(epoch int, t conversation.Transcript) bool {
	if m.state.Screen != ScreenChat || epoch != m.state.ChatEpoch {
		return false
	}
	m.state.Transcript = t
	return true
}

// BeginEvaluation marks the grading request as in flight.
func (m *Machine) BeginEvaluation() error {
	if m.state.Screen != ScreenChat || m.state.Evaluating {
		return m.invalid("end session")
	}
	m.state.Evaluating = true
	m.state.Notice = NoticeEvaluating
	return nil
}

// CompleteEvaluation stores the feedback and moves to Feedback.
func (m *Machine) CompleteEvaluation(res *evaluation.Result) error {
	if m.state.Screen != ScreenChat || !m.state.Evaluating || res == nil {
		return m.invalid("complete evaluation")
	}
	m.state.Evaluating = false
	m.state.Feedback = res.Feedback
	m.state.HasFeedback = true
	m.state.Model = res.Model
	m.state.Screen = ScreenFeedback
	if res.LogErr != nil {
		m.state.Notice = NoticeLogNotSaved
	} else {
		m.state.Notice = NoticeEvaluated
	}
	return nil
}

// FailEvaluation keeps the user on Chat with the error as notice. The
// previous feedback, if any, is unchanged.
func (m *Machine) FailEvaluation(err error) error {
	if m.state.Screen != ScreenChat || !m.state.Evaluating {
		return m.invalid("fail evaluation")
	}
	m.state.Evaluating = false
	m.state.Notice = "Evaluation failed. " + llm.Describe(err)
	return nil
}

// BackToList leaves Feedback and clears everything tied to the case.
func (m *Machine) BackToList() error {
	if m.state.Screen != ScreenFeedback {
		return m.invalid("back to list")
	}
	m.resetChat()
	m.state.Case = nil
	m.state.OwnerPrompt = persona.Prompt{}
	m.state.Feedback = ""
	m.state.HasFeedback = false
	m.state.Model = ""
	m.state.Screen = ScreenCaseSelection
	m.state.Notice = ""
	return nil
}

// Logout returns to Login from any screen and drops all session data.
func (m *Machine) Logout() {
	m.resetChat()
	epoch := m.state.ChatEpoch
	m.state = State{ChatEpoch: epoch}
}

// Enforce forces Login when no user is set. It reports whether the state
// was changed and is run before every render.
func (m *Machine) Enforce() bool {
	if m.state.User != nil || m.state.Screen == ScreenLogin {
		return false
	}
	m.Logout()
	m.state.Notice = "Please log in to continue."
	return true
}

// SetNotice replaces the transient notice.
func (m *Machine) SetNotice(s string) {
	m.state.Notice = s
}

func (m *Machine) resetChat() {
	m.state.Transcript = nil
	if m.chats != nil {
		m.chats.Reset()
	}
}
