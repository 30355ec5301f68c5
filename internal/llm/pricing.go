package llm

import (
	"regexp"
	"strings"
)

// ModelCost is the list price of a model in USD per million tokens.
type ModelCost struct {
	InputPerMTok  float64
	OutputPerMTok float64
}

// Cost returns the USD cost of one call or an aggregate of calls.
func (c ModelCost) Cost(inputTokens, outputTokens int) float64 {
	return float64(inputTokens)*c.InputPerMTok/1_000_000 +
		float64(outputTokens)*c.OutputPerMTok/1_000_000
}

// LookupCost returns the price for a model as recorded in an LLM request
// event, or nil when the model is not priced. Recorded names vary by
// provider: OpenRouter prefixes the vendor ("google/gemini-2.5-pro"),
// Gemini may prefix "models/", and Anthropic and OpenAI append a release
// date. All of these resolve to the same entry.
func LookupCost(modelID string) *ModelCost {
	id := NormalizeModelID(modelID)
	if c, ok := modelCosts[id]; ok {
		return &c
	}
	return nil
}

var dateSuffix = regexp.MustCompile(`-(\d{8}|\d{4}-\d{2}-\d{2})$`)

// NormalizeModelID reduces a provider model name to its pricing key.
func NormalizeModelID(modelID string) string {
	id := strings.ToLower(strings.TrimSpace(modelID))
	id = strings.TrimPrefix(id, "models/")
	if i := strings.LastIndex(id, "/"); i >= 0 {
		id = id[i+1:]
	}
	if alias, ok := pricingAliases[id]; ok {
		return alias
	}
	return dateSuffix.ReplaceAllString(id, "")
}

// pricingAliases maps the friendly names accepted in configuration to
// the entries below, so unresolved config values still price.
var pricingAliases = map[string]string{
	"claude-sonnet": "claude-sonnet-4-5",
	"claude-haiku":  "claude-haiku-4-5",
	"gemini-pro":    "gemini-2.5-pro",
	"gemini-flash":  "gemini-2.5-flash",
}

// modelCosts covers the models this application configures by default or
// by alias (see anthropicModels, openaiModels, geminiModels and the
// OpenRouter default), plus their common substitutes. Prices from the
// providers' public price lists, 2026-02.
var modelCosts = map[string]ModelCost{
	// Anthropic: claude-sonnet, claude-haiku
	"claude-sonnet-4-5": {3, 15},
	"claude-sonnet-4":   {3, 15},
	"claude-haiku-4-5":  {1, 5},
	"claude-opus-4-5":   {5, 25},

	// OpenAI: gpt-4o (default), gpt-4o-mini
	"gpt-4o":       {2.5, 10},
	"gpt-4o-mini":  {0.15, 0.6},
	"gpt-4.1":      {2, 8},
	"gpt-4.1-mini": {0.4, 1.6},

	// Gemini and OpenRouter (google/...): gemini-2.5-pro (default),
	// gemini-2.5-flash
	"gemini-2.5-pro":        {1.25, 10},
	"gemini-2.5-flash":      {0.3, 2.5},
	"gemini-2.5-flash-lite": {0.1, 0.4},
	"gemini-2.0-flash":      {0.1, 0.4},
}
