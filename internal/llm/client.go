// Package llm talks to an external text-generation provider.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"carbon-tracker/internal/config"
)

// ErrUnavailable wraps every failure of the provider: transport errors, non-2xx answers
// and empty completions.
var ErrUnavailable = errors.New("text generation unavailable")

// TextGenerator turns a prompt into text.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Provider() string
}

// NewClient builds the generator for the configured provider.
// It returns (nil, nil) when no API key is configured.
func NewClient(cfg config.LLMConfig) (TextGenerator, error) {
	if !cfg.Enabled() {
		return nil, nil
	}

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 600
	}
	base := httpClient{
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		baseURL:     cfg.BaseURL,
		maxTokens:   maxTokens,
		temperature: cfg.Temperature,
		http:        &http.Client{Timeout: timeout},
	}

	switch cfg.Provider {
	case "", "openai":
		return newOpenAIClient(base), nil
	case "anthropic":
		return newAnthropicClient(base), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s (supported: openai, anthropic)", cfg.Provider)
	}
}

// httpClient holds what both providers share.
type httpClient struct {
	apiKey      string
	model       string
	baseURL     string
	maxTokens   int
	temperature float64
	http        *http.Client
}

func unavailable(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrUnavailable, fmt.Sprintf(format, args...))
}
