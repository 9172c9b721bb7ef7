package llm

import (
	"context"
	"fmt"
	"strings"
)

// Supported provider names.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

// placeholderKey is the value shipped in example env files; it never authenticates.
const placeholderKey = "your_openai_api_key_here"

// Request is a single-turn chat completion request.
type Request struct {
	Model       string
	System      string
	Prompt      string
	Temperature float64
	MaxTokens   int
}

// Completer issues one chat completion against a remote model backend.
// Implementations must be safe for concurrent use.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
	Name() string
}

// DefaultModels lists the models tried for each provider, cheapest first.
var DefaultModels = map[string][]string{
	ProviderOpenAI:    {"gpt-3.5-turbo", "gpt-4", "gpt-4-turbo"},
	ProviderAnthropic: {"claude-haiku-4-5-20251001", "claude-sonnet-4-5"},
	ProviderGemini:    {"gemini-1.5-flash", "gemini-1.5-pro"},
}

// APIKeyEnv returns the conventional environment variable holding a provider's key.
func APIKeyEnv(provider string) string {
	switch normalizeProvider(provider) {
	case ProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	case ProviderGemini:
		return "GEMINI_API_KEY"
	default:
		return "OPENAI_API_KEY"
	}
}

// UsableKey reports whether key looks like a real credential.
func UsableKey(key string) bool {
	key = strings.TrimSpace(key)
	return key != "" && key != placeholderKey
}

// New creates a Completer for the named provider.
// baseURL may be empty to use the provider's public endpoint.
func New(ctx context.Context, provider, apiKey, baseURL string) (Completer, error) {
	if !UsableKey(apiKey) {
		return nil, fmt.Errorf("no API key configured for provider %s", provider)
	}
	switch normalizeProvider(provider) {
	case ProviderOpenAI:
		return NewOpenAI(apiKey, baseURL), nil
	case ProviderAnthropic:
		return NewAnthropic(apiKey, baseURL), nil
	case ProviderGemini:
		return NewGemini(ctx, apiKey, baseURL)
	default:
		return nil, fmt.Errorf("unknown provider: %s", provider)
	}
}

func normalizeProvider(provider string) string {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "", "openai":
		return ProviderOpenAI
	case "anthropic", "claude":
		return ProviderAnthropic
	case "gemini", "google":
		return ProviderGemini
	default:
		return provider
	}
}
