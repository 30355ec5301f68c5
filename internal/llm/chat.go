package llm

import (
	"context"
	"sync"
)

// ChatSession is a stateful exchange that keeps prior turns. A failed Send
// leaves the history as it was before the call.
type ChatSession interface {
	Send(ctx context.Context, text string) (*Response, error)
}

// ChatStarter is implemented by providers that hold chat history
// server-side.
type ChatStarter interface {
	StartChat(ctx context.Context, system string) (ChatSession, error)
}

// StartChat opens a chat bound to system. Providers without native chat
// sessions get one that replays the accumulated history through Generate.
func StartChat(ctx context.Context, p Provider, system string) (ChatSession, error) {
	if cs, ok := p.(ChatStarter); ok {
		return cs.StartChat(ctx, system)
	}
	return &historyChat{provider: p, system: system}, nil
}

// historyChat is the Generate-backed ChatSession.
type historyChat struct {
	mu       sync.Mutex
	provider Provider
	system   string
	history  []Message
}

func (c *historyChat) Send(ctx context.Context, text string) (*Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	msgs := make([]Message, len(c.history), len(c.history)+2)
	copy(msgs, c.history)
	msgs = append(msgs, Message{Role: RoleUser, Content: text})

	resp, err := c.provider.Generate(ctx, Request{System: c.system, Messages: msgs})
	if err != nil {
		return nil, err
	}

	c.history = append(msgs, Message{Role: RoleAssistant, Content: resp.Text})
	return resp, nil
}
