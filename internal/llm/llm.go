// Package llm is the optional NL translation backend. Whether a backend is
// available is resolved once at startup from configuration; the rule-based
// extractor remains the unconditional default path.
package llm

import (
	"context"
	"fmt"
)

// Client is a minimal chat-completion client.
type Client interface {
	Chat(ctx context.Context, systemPrompt, userMessage string) (string, error)
}

// Config selects and authenticates a provider.
type Config struct {
	Provider string
	APIKey   string
	Model    string
	BaseURL  string
}

// New builds a client for the configured provider. All supported providers
// speak the OpenAI-compatible chat API.
func New(cfg Config) (Client, error) {
	switch cfg.Provider {
	case "openai":
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = "https://api.openai.com/v1"
		}
		model := cfg.Model
		if model == "" {
			model = "gpt-4o-mini"
		}
		return newOpenAICompatible(cfg.APIKey, baseURL, model), nil
	case "ollama":
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434"
		}
		model := cfg.Model
		if model == "" {
			model = "llama3.1"
		}
		// Ollama's OpenAI-compatible endpoint
		return newOpenAICompatible("ollama", baseURL+"/v1", model), nil
	default:
		if cfg.BaseURL != "" {
			return newOpenAICompatible(cfg.APIKey, cfg.BaseURL, cfg.Model), nil
		}
		return nil, fmt.Errorf("unknown provider: %s", cfg.Provider)
	}
}
