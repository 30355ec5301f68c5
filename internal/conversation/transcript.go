package conversation

import "strings"

// Role identifies who spoke a turn.
type Role int

const (
	User  Role = iota // the student taking the history
	Owner             // the simulated pet owner
)

// Label is the display and serialization label for r.
func (r Role) Label() string {
	if r == Owner {
		return "Owner"
	}
	return "User"
}

// String is the lower-case form stored in the practice log.
func (r Role) String() string {
	return strings.ToLower(r.Label())
}

// Turn is one line of the conversation.
type Turn struct {
	Role    Role
	Content string
}

// Transcript is the ordered, append-only turn list of one session.
// Appends never modify the receiver's backing array, so a Transcript value
// handed to a background command stays stable.
type Transcript []Turn

// With returns a copy of t with the given turns appended.
func (t Transcript) With(turns ...Turn) Transcript {
	out := make(Transcript, len(t), len(t)+len(turns))
	copy(out, t)
	return append(out, turns...)
}

// Len returns the number of turns.
func (t Transcript) Len() int { return len(t) }

// Empty reports whether no turn has been recorded.
func (t Transcript) Empty() bool { return len(t) == 0 }
