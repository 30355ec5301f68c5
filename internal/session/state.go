package session

import (
	"strings"

	"github.com/tu613/vet-learning-app/internal/conversation"
	"github.com/tu613/vet-learning-app/internal/persona"
	"github.com/tu613/vet-learning-app/internal/refdata"
)

// Screen is the active step of the practice flow.
type Screen int

const (
	ScreenLogin         Screen = iota // name and role form
	ScreenCaseSelection               // case list
	ScreenCaseDetail                  // one case before chatting
	ScreenChat                        // history taking with the owner
	ScreenFeedback                    // evaluation result
)

func (s Screen) String() string {
	switch s {
	case ScreenLogin:
		return "login"
	case ScreenCaseSelection:
		return "case-selection"
	case ScreenCaseDetail:
		return "case-detail"
	case ScreenChat:
		return "chat"
	case ScreenFeedback:
		return "feedback"
	}
	return "unknown"
}

// Role is the practitioner role picked at login.
type Role string

const (
	RoleStudent    Role = "Student"
	RoleInstructor Role = "Instructor"
)

// Roles lists the selectable roles in display order.
func Roles() []Role {
	return []Role{RoleStudent, RoleInstructor}
}

// ParseRole maps a case-insensitive name to a Role. Unknown names are
// treated as RoleStudent.
func ParseRole(s string) Role {
	if strings.EqualFold(strings.TrimSpace(s), string(RoleInstructor)) {
		return RoleInstructor
	}
	return RoleStudent
}

// User is the free-text identity of whoever is practising.
type User struct {
	Name string
	Role Role
}

// State is the whole practice session as seen by the UI. It is mutated
// only through Machine.
type State struct {
	Screen Screen

	// User is nil until login.
	User *User

	// Case is the selected case, nil on Login and CaseSelection.
	Case *refdata.CaseScenario

	// Transcript is the conversation for the current Chat entry.
	Transcript conversation.Transcript

	// OwnerPrompt is the persona instruction bound on entering Chat.
	OwnerPrompt persona.Prompt

	// Feedback is the last successful evaluation text. HasFeedback
	// distinguishes an empty reply from no evaluation yet.
	Feedback    string
	HasFeedback bool
	Model       string

	// Evaluating is true while the grading request is in flight.
	Evaluating bool

	// Notice is a transient message shown on the current screen.
	Notice string

	// ChatEpoch increases on every Chat entry. Replies tagged with an
	// older epoch belong to an abandoned conversation.
	ChatEpoch int
}
