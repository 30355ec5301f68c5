package llm

import (
	"math"
	"testing"
)

func TestLookupCost_ConfiguredModelsArePriced(t *testing.T) {
	var ids []string
	for _, table := range []map[string]string{anthropicModels, openaiModels, geminiModels} {
		for alias, id := range table {
			ids = append(ids, alias, id)
		}
	}
	d := DefaultConfig()
	ids = append(ids, d.Anthropic.Model, d.OpenAI.Model, d.Gemini.Model, d.OpenRouter.Model)

	for _, id := range ids {
		if LookupCost(id) == nil {
			t.Errorf("no price for configured model %q", id)
		}
	}
}

func TestLookupCost_RecordedNameVariants(t *testing.T) {
	tests := []struct {
		recorded string
		want     string
	}{
		{"claude-sonnet-4-5-20250929", "claude-sonnet-4-5"},
		{"claude-haiku-4-5-20251001", "claude-haiku-4-5"},
		{"gpt-4o-2024-08-06", "gpt-4o"},
		{"google/gemini-2.5-pro", "gemini-2.5-pro"},
		{"models/gemini-2.5-flash", "gemini-2.5-flash"},
		{"Gemini-2.5-Pro", "gemini-2.5-pro"},
	}
	for _, tt := range tests {
		if got := NormalizeModelID(tt.recorded); got != tt.want {
			t.Errorf("NormalizeModelID(%q) = %q, want %q", tt.recorded, got, tt.want)
		}
		if LookupCost(tt.recorded) == nil {
			t.Errorf("LookupCost(%q) = nil", tt.recorded)
		}
	}
}

func TestLookupCost_Unknown(t *testing.T) {
	if c := LookupCost("mock"); c != nil {
		t.Errorf("mock should not be priced, got %+v", c)
	}
}

func TestModelCost_Cost(t *testing.T) {
	c := ModelCost{InputPerMTok: 1.25, OutputPerMTok: 10}
	got := c.Cost(2_000_000, 100_000)
	if math.Abs(got-3.5) > 1e-9 {
		t.Errorf("cost = %v, want 3.5", got)
	}
}
