package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrUnknownProvider = errors.New("unknown provider")
	ErrMissingAPIKey   = errors.New("API key required")
)

// ChatRequest is one completion call: the system prompt carries the
// article context, Messages the conversation so far.
type ChatRequest struct {
	Model    string
	System   string
	Messages []Message
}

// Provider streams completions from one upstream. Stream calls fn once
// per content delta; returning an error from fn stops the stream.
type Provider interface {
	Stream(ctx context.Context, req ChatRequest, fn func(delta string) error) error
	Models(ctx context.Context) ([]string, error)
}

// streamClient is shared by every provider. No global timeout: model
// streams run long, cancellation comes from the request context.
var streamClient = &http.Client{Timeout: 0}

// Registry builds providers from their request-supplied name and key.
type Registry struct {
	// OllamaURL is the local Ollama endpoint, from config.
	OllamaURL string
	// BaseURLs overrides provider endpoints. Tests point these at
	// httptest servers.
	BaseURLs map[string]string
}

func (r *Registry) New(name, apiKey string) (Provider, error) {
	switch name {
	case "openai":
		return r.compat(name, apiKey, "https://api.openai.com/v1")
	case "groq":
		return r.compat(name, apiKey, "https://api.groq.com/openai/v1")
	case "openrouter":
		return r.compat(name, apiKey, "https://openrouter.ai/api/v1")
	case "ollama":
		base := r.OllamaURL
		if override, ok := r.BaseURLs[name]; ok {
			base = override
		}
		return &ollamaClient{baseURL: base}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}
}

func (r *Registry) compat(name, apiKey, defaultBase string) (Provider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w for provider %q", ErrMissingAPIKey, name)
	}
	base := defaultBase
	if override, ok := r.BaseURLs[name]; ok {
		base = override
	}
	return &openAIClient{baseURL: base, apiKey: apiKey}, nil
}

// staticModels is served when a provider's model listing can't be
// reached, so the client always has something to offer in its picker.
var staticModels = map[string][]string{
	"openai":     {"gpt-4o", "gpt-4o-mini", "gpt-4.1", "gpt-4.1-mini", "o3-mini"},
	"groq":       {"llama-3.3-70b-versatile", "llama-3.1-8b-instant", "mixtral-8x7b-32768"},
	"openrouter": {"anthropic/claude-3.5-sonnet", "meta-llama/llama-3.1-70b-instruct", "google/gemini-flash-1.5"},
	"ollama":     {"llama3.1", "llama3.2", "mistral", "qwen2.5"},
}

// StaticModels returns the fallback model list for a provider.
func StaticModels(name string) []string {
	models := staticModels[name]
	out := make([]string, len(models))
	copy(out, models)
	return out
}
