package llm

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"google.golang.org/genai"
)

func TestGeminiModelMapping(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"gemini-flash", "gemini-2.5-flash"},
		{"gemini-pro", "gemini-2.5-pro"},
		{"gemini-2.5-pro", "gemini-2.5-pro"},
	}
	for _, tt := range tests {
		got := resolveModel(tt.input, geminiModels)
		if got != tt.want {
			t.Errorf("resolveModel(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestBuildGeminiConfig(t *testing.T) {
	cfg := buildGeminiConfig("be the owner", 512, 0.7)
	if cfg.MaxOutputTokens != 512 {
		t.Errorf("max tokens = %d, want 512", cfg.MaxOutputTokens)
	}
	if cfg.Temperature == nil || *cfg.Temperature < 0.69 || *cfg.Temperature > 0.71 {
		t.Errorf("temperature = %v, want 0.7", cfg.Temperature)
	}
	if cfg.SystemInstruction == nil || cfg.SystemInstruction.Parts[0].Text != "be the owner" {
		t.Fatalf("system instruction not set: %+v", cfg.SystemInstruction)
	}

	bare := buildGeminiConfig("", 0, 0)
	if bare.SystemInstruction != nil {
		t.Error("expected no system instruction")
	}
	if bare.Temperature != nil {
		t.Error("expected provider default temperature")
	}
}

func TestBuildGeminiContents(t *testing.T) {
	contents := buildGeminiContents([]Message{
		{Role: RoleUser, Content: "How long has he been coughing?"},
		{Role: RoleAssistant, Content: "About three days."},
	})
	if len(contents) != 2 {
		t.Fatalf("expected 2 contents, got %d", len(contents))
	}
	if contents[0].Role != "user" || contents[1].Role != "model" {
		t.Errorf("roles = %q, %q", contents[0].Role, contents[1].Role)
	}
	if contents[1].Parts[0].Text != "About three days." {
		t.Errorf("unexpected text %q", contents[1].Parts[0].Text)
	}
}

func TestMapGeminiStopReason(t *testing.T) {
	maxed := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{FinishReason: genai.FinishReasonMaxTokens}},
	}
	if got := mapGeminiStopReason(maxed); got != "max_tokens" {
		t.Errorf("stop reason = %q, want max_tokens", got)
	}
	if got := finishReason(&genai.GenerateContentResponse{}); got != "none" {
		t.Errorf("finish reason = %q, want none", got)
	}
}

func TestMapStatusError(t *testing.T) {
	cause := errors.New("cause")

	var auth *ErrAuth
	if !errors.As(mapStatusError(http.StatusForbidden, cause), &auth) {
		t.Error("403 should map to ErrAuth")
	}
	var rate *ErrRateLimit
	if !errors.As(mapStatusError(http.StatusTooManyRequests, cause), &rate) {
		t.Error("429 should map to ErrRateLimit")
	}
	var unavail *ErrProviderUnavailable
	if !errors.As(mapStatusError(http.StatusBadGateway, cause), &unavail) {
		t.Error("502 should map to ErrProviderUnavailable")
	}
}

func TestMapGeminiError_InvalidKeyMessage(t *testing.T) {
	err := mapGeminiError(errors.New("API key not valid. Please pass a valid API key."))
	var auth *ErrAuth
	if !errors.As(err, &auth) {
		t.Fatalf("expected ErrAuth, got %T", err)
	}
}

func TestMapGeminiError_APIErrorValue(t *testing.T) {
	t.Run("429 is a rate limit", func(t *testing.T) {
		err := mapGeminiError(genai.APIError{Code: 429, Message: "Resource has been exhausted", Status: "RESOURCE_EXHAUSTED"})
		var rl *ErrRateLimit
		if !errors.As(err, &rl) {
			t.Fatalf("expected ErrRateLimit, got %T: %v", err, err)
		}
	})
	t.Run("401 is an auth error", func(t *testing.T) {
		err := mapGeminiError(genai.APIError{Code: 401, Message: "Request had invalid authentication credentials", Status: "UNAUTHENTICATED"})
		var auth *ErrAuth
		if !errors.As(err, &auth) {
			t.Fatalf("expected ErrAuth, got %T: %v", err, err)
		}
	})
	t.Run("403 is an auth error", func(t *testing.T) {
		err := mapGeminiError(genai.APIError{Code: 403, Message: "Permission denied", Status: "PERMISSION_DENIED"})
		var auth *ErrAuth
		if !errors.As(err, &auth) {
			t.Fatalf("expected ErrAuth, got %T: %v", err, err)
		}
	})
	t.Run("500 is unavailable", func(t *testing.T) {
		err := mapGeminiError(genai.APIError{Code: 500, Message: "Internal error", Status: "INTERNAL"})
		var un *ErrProviderUnavailable
		if !errors.As(err, &un) {
			t.Fatalf("expected ErrProviderUnavailable, got %T: %v", err, err)
		}
	})
	t.Run("wrapped 429 is a rate limit", func(t *testing.T) {
		wrapped := fmt.Errorf("generate: %w", genai.APIError{Code: 429, Message: "quota"})
		var rl *ErrRateLimit
		if !errors.As(mapGeminiError(wrapped), &rl) {
			t.Fatal("expected ErrRateLimit through wrapping")
		}
	})
}
