package llm

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/tu613/vet-learning-app/internal/logger"
	"github.com/tu613/vet-learning-app/internal/store"
)

// LoggingProvider is a decorator that records every LLM request as an event,
// including each turn of chat sessions started through it.
type LoggingProvider struct {
	inner     Provider
	provider  string
	eventRepo store.EventRepo
	log       *logger.Logger
}

// WithLogging wraps a Provider with event logging. name is the provider
// label stored with each event.
func WithLogging(p Provider, name string, repo store.EventRepo, log *logger.Logger) *LoggingProvider {
	if log == nil {
		log = logger.Nop()
	}
	return &LoggingProvider{inner: p, provider: name, eventRepo: repo, log: log}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := l.inner.Generate(ctx, req)
	l.record(ctx, serializeRequest(req), start, resp, err)
	return resp, err
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}

// StartChat opens a chat on the wrapped provider and logs each turn.
func (l *LoggingProvider) StartChat(ctx context.Context, system string) (ChatSession, error) {
	inner, err := StartChat(ctx, l.inner, system)
	if err != nil {
		l.log.Warn("start chat failed", "provider", l.provider, "error", err)
		return nil, err
	}
	return &loggingChat{inner: inner, parent: l, system: system}, nil
}

// loggingChat records each turn with the full context the model answers
// from: the system instruction, every earlier successful exchange, and the
// new message. That is what historyChat replays, and what a native chat
// holds server-side.
type loggingChat struct {
	mu      sync.Mutex
	inner   ChatSession
	parent  *LoggingProvider
	system  string
	history []Message
}

func (c *loggingChat) Send(ctx context.Context, text string) (*Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	msgs := make([]Message, len(c.history), len(c.history)+2)
	copy(msgs, c.history)
	msgs = append(msgs, Message{Role: RoleUser, Content: text})

	start := time.Now()
	resp, err := c.inner.Send(ctx, text)
	c.parent.record(ctx, serializeRequest(Request{System: c.system, Messages: msgs}), start, resp, err)
	if err != nil {
		return nil, err
	}

	c.history = append(msgs, Message{Role: RoleAssistant, Content: resp.Text})
	return resp, nil
}

func (l *LoggingProvider) record(ctx context.Context, body string, start time.Time, resp *Response, err error) {
	purpose := PurposeFrom(ctx)
	data := store.LLMRequestEventData{
		Provider:    l.provider,
		Model:       l.inner.ModelID(),
		Purpose:     purpose,
		LatencyMs:   time.Since(start).Milliseconds(),
		Success:     err == nil,
		RequestBody: body,
	}

	if resp != nil {
		data.InputTokens = resp.Usage.InputTokens
		data.OutputTokens = resp.Usage.OutputTokens
		data.Model = resp.Model
		data.ResponseBody = resp.Text
	}

	if err != nil {
		data.ErrorMessage = err.Error()
		l.log.Warn("llm request failed", "provider", l.provider, "purpose", purpose, "error", err)
	} else {
		l.log.Debug("llm request", "provider", l.provider, "purpose", purpose,
			"latency_ms", data.LatencyMs, "in", data.InputTokens, "out", data.OutputTokens)
	}

	if l.eventRepo == nil {
		return
	}
	// Don't fail the request if logging fails. The event write must not be
	// cancelled together with the request context.
	if logErr := l.eventRepo.AppendLLMRequest(context.WithoutCancel(ctx), data); logErr != nil {
		l.log.Warn("failed to log LLM request event", "error", logErr)
	}
}

// serializeRequest builds a readable representation of the LLM request.
func serializeRequest(req Request) string {
	var b strings.Builder

	if req.System != "" {
		b.WriteString("[system]\n")
		b.WriteString(req.System)
		b.WriteString("\n\n")
	}

	for _, m := range req.Messages {
		b.WriteString(fmt.Sprintf("[%s]\n", m.Role))
		b.WriteString(m.Content)
		b.WriteString("\n\n")
	}

	return b.String()
}
