package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

// geminiModels maps friendly names to Gemini model IDs.
var geminiModels = map[string]string{
	"gemini-flash": "gemini-2.5-flash",
	"gemini-pro":   "gemini-2.5-pro",
}

// GeminiProvider implements Provider and ChatStarter using the Google
// Gemini SDK.
type GeminiProvider struct {
	client *genai.Client
	model  string
}

// NewGeminiProvider creates a new Gemini provider.
func NewGeminiProvider(ctx context.Context, cfg GeminiConfig) (*GeminiProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}

	return &GeminiProvider{
		client: client,
		model:  resolveModel(cfg.Model, geminiModels),
	}, nil
}

func (p *GeminiProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	config := buildGeminiConfig(req.System, req.MaxTokens, req.Temperature)
	contents := buildGeminiContents(req.Messages)

	result, err := p.client.Models.GenerateContent(ctx, p.model, contents, config)
	if err != nil {
		return nil, mapGeminiError(err)
	}
	return p.toResponse(result)
}

func (p *GeminiProvider) ModelID() string {
	return p.model
}

// StartChat creates a native Gemini chat whose history lives in the SDK
// session object.
func (p *GeminiProvider) StartChat(ctx context.Context, system string) (ChatSession, error) {
	chat, err := p.client.Chats.Create(ctx, p.model, buildGeminiConfig(system, 0, 0), nil)
	if err != nil {
		return nil, mapGeminiError(err)
	}
	return &geminiChat{provider: p, chat: chat}, nil
}

type geminiChat struct {
	provider *GeminiProvider
	chat     *genai.Chat
}

func (c *geminiChat) Send(ctx context.Context, text string) (*Response, error) {
	result, err := c.chat.SendMessage(ctx, genai.Part{Text: text})
	if err != nil {
		return nil, mapGeminiError(err)
	}
	return c.provider.toResponse(result)
}

func (p *GeminiProvider) toResponse(result *genai.GenerateContentResponse) (*Response, error) {
	text := result.Text()
	if strings.TrimSpace(text) == "" {
		return nil, &ErrInvalidResponse{Err: fmt.Errorf("empty Gemini response (finish reason %s)", finishReason(result))}
	}

	resp := &Response{
		Text:       text,
		Model:      p.model,
		StopReason: mapGeminiStopReason(result),
	}
	if result.UsageMetadata != nil {
		resp.Usage = Usage{
			InputTokens:  int(result.UsageMetadata.PromptTokenCount),
			OutputTokens: int(result.UsageMetadata.CandidatesTokenCount),
			TotalTokens:  int(result.UsageMetadata.TotalTokenCount),
		}
	}
	return resp, nil
}

func buildGeminiConfig(system string, maxTokens int, temperature float64) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(maxTokens),
	}
	if temperature > 0 {
		temp := float32(temperature)
		config.Temperature = &temp
	}
	if system != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: system}},
		}
	}
	return config
}

func buildGeminiContents(msgs []Message) []*genai.Content {
	out := make([]*genai.Content, len(msgs))
	for i, m := range msgs {
		role := "user"
		if m.Role == RoleAssistant {
			role = "model"
		}
		out[i] = &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: m.Content}},
		}
	}
	return out
}

func finishReason(result *genai.GenerateContentResponse) string {
	if len(result.Candidates) > 0 {
		return string(result.Candidates[0].FinishReason)
	}
	return "none"
}

func mapGeminiStopReason(result *genai.GenerateContentResponse) string {
	switch finishReason(result) {
	case "STOP":
		return "end"
	case "MAX_TOKENS":
		return "max_tokens"
	}
	return "end"
}

// mapGeminiError classifies SDK errors. genai returns APIError by value.
func mapGeminiError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return mapStatusError(apiErr.Code, err)
	}
	if strings.Contains(err.Error(), "API key not valid") {
		return &ErrAuth{Err: err}
	}
	return &ErrProviderUnavailable{Err: err}
}

// mapStatusError classifies an HTTP status shared by every provider SDK.
func mapStatusError(status int, err error) error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return &ErrAuth{Err: err}
	case status == http.StatusTooManyRequests:
		return &ErrRateLimit{Err: err}
	default:
		return &ErrProviderUnavailable{Err: err}
	}
}
