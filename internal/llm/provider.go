package llm

import "context"

// Provider is the core abstraction for one-shot text generation.
type Provider interface {
	// Generate sends a system instruction and messages to the model and
	// returns its text reply.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Request describes what to send to the LLM.
type Request struct {
	// System is the system instruction. Sets the model's role and constraints.
	System string

	// Messages is the conversation so far. One-shot calls carry a single
	// user message.
	Messages []Message

	// MaxTokens is the maximum number of tokens in the response.
	// 0 leaves the provider default.
	MaxTokens int

	// Temperature controls randomness. Range: 0.0 - 1.0.
	// 0 leaves the provider default.
	Temperature float64
}

// Message represents a single message in the conversation.
type Message struct {
	Role    Role
	Content string
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Response holds the LLM's output.
type Response struct {
	// Text is the raw text reply.
	Text string

	// Usage reports token consumption for this request.
	Usage Usage

	// Model is the actual model that served the request.
	Model string

	// StopReason indicates why generation stopped.
	// Normalized to: "end", "max_tokens", "error"
	StopReason string
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
