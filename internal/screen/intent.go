package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/tu613/vet-learning-app/internal/refdata"
)

// Screens never mutate the session themselves. They emit these messages
// and the root model applies them to the session machine.

// LoginMsg asks to start a session as the given user.
type LoginMsg struct {
	Name string
	Role string
}

// LogoutMsg returns to the login form.
type LogoutMsg struct{}

// SelectCaseMsg opens the detail view of a case.
type SelectCaseMsg struct {
	Case refdata.CaseScenario
}

// StartChatMsg begins history taking for the case on display.
type StartChatMsg struct{}

// BackMsg leaves the detail view or abandons the chat.
type BackMsg struct{}

// SendTurnMsg submits one question to the owner.
type SendTurnMsg struct {
	Text string
}

// EndSessionMsg requests the evaluation of the current conversation.
type EndSessionMsg struct{}

// OpenHistoryMsg shows the signed-in user's practice history.
type OpenHistoryMsg struct{}

// BackToListMsg leaves the feedback view.
type BackToListMsg struct{}

// TurnResultMsg is delivered to the chat screen once a send finishes.
// On failure Text is the message to put back in the input.
type TurnResultMsg struct {
	Err  error
	Text string
}

// Emit wraps msg in a command.
func Emit(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}
