// Package conversation drives the student/owner exchange for one case:
// it owns the chat session bound to the persona prompt and keeps the
// transcript consistent when a send fails.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/tu613/vet-learning-app/internal/llm"
	"github.com/tu613/vet-learning-app/internal/logger"
)

// ErrNoSession is returned by SendUserTurn before EnsureSession succeeded.
var ErrNoSession = errors.New("no chat session for the current case")

// ErrStaleSession is returned by EnsureSession for a key other than the one
// named by the last Expect.
var ErrStaleSession = errors.New("chat session belongs to an abandoned conversation")

// SendError reports a failed turn. The transcript is rolled back to its
// state before the send, and Text holds the message so it can be resent.
type SendError struct {
	Text string
	Err  error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("send turn: %v", e.Err)
}

func (e *SendError) Unwrap() error { return e.Err }

// Driver manages the single live chat session.
type Driver struct {
	provider llm.Provider
	log      *logger.Logger

	mu      sync.Mutex
	session llm.ChatSession
	key     string
	prompt  string
	created int

	// Set by Expect. Once strict, only expect may be bound.
	expect string
	strict bool
}

// NewDriver creates a Driver over provider. Providers that implement
// llm.ChatStarter keep history server-side.
func NewDriver(provider llm.Provider, log *logger.Logger) *Driver {
	if log == nil {
		log = logger.Nop()
	}
	return &Driver{provider: provider, log: log}
}

// EnsureSession binds a chat session to prompt under key (usually the case
// ID). A second call with the same key and prompt is a no-op; any other
// combination replaces the session with a fresh one with no prior turns.
// After Expect, keys other than the expected one get ErrStaleSession.
func (d *Driver) EnsureSession(ctx context.Context, key, prompt string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.strict && key != d.expect {
		d.log.Debug("refusing stale owner chat", "case", key, "expected", d.expect)
		return ErrStaleSession
	}
	if d.session != nil && d.key == key && d.prompt == prompt {
		return nil
	}

	s, err := llm.StartChat(llm.WithPurpose(ctx, llm.PurposeOwnerChat), d.provider, prompt)
	if err != nil {
		return fmt.Errorf("start owner chat: %w", err)
	}
	d.session, d.key, d.prompt = s, key, prompt
	d.created++
	d.log.Debug("owner chat session started", "case", key, "sessions", d.created)
	return nil
}

// Reset discards the bound session. After Expect has been used, nothing
// can be bound again until the next Expect.
func (d *Driver) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.session != nil {
		d.log.Debug("owner chat session discarded", "case", d.key)
	}
	d.session, d.key, d.prompt = nil, "", ""
	d.expect = ""
}

// Expect names the only key EnsureSession will bind from now on. Calls
// still in flight for earlier chat entries then fail instead of replacing
// the live session.
func (d *Driver) Expect(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.expect, d.strict = key, true
	if d.session != nil && d.key != key {
		d.session, d.key, d.prompt = nil, "", ""
	}
}

// Key returns the key of the bound session, or "" when none is bound.
func (d *Driver) Key() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.key
}

// SessionsCreated counts sessions opened over the driver's lifetime.
func (d *Driver) SessionsCreated() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.created
}

// SendUserTurn forwards text to the owner and returns the transcript with
// the user turn and the owner's reply appended. Whitespace-only text
// returns t unchanged and no error.
//
// On failure the user turn is rolled back: the returned transcript equals t
// and the error is a *SendError carrying the text for manual resend.
func (d *Driver) SendUserTurn(ctx context.Context, t Transcript, text string) (Transcript, error) {
	if strings.TrimSpace(text) == "" {
		return t, nil
	}

	d.mu.Lock()
	s, key := d.session, d.key
	d.mu.Unlock()
	if s == nil {
		return t, &SendError{Text: text, Err: ErrNoSession}
	}

	resp, err := s.Send(llm.WithPurpose(ctx, llm.PurposeOwnerChat), text)
	if err != nil {
		d.log.Warn("owner reply failed", "case", key, "error", err)
		return t, &SendError{Text: text, Err: err}
	}

	return t.With(
		Turn{Role: User, Content: text},
		Turn{Role: Owner, Content: resp.Text},
	), nil
}
