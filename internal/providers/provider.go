package providers

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrEmptyResponse is returned when a backend answers successfully but the
// answer carries no text.
var ErrEmptyResponse = errors.New("empty text content in API response")

// Request contains the data sent to a text-generation backend.
type Request struct {
	SystemPrompt string
	UserPrompt   string
	MaxTokens    int
	// Temperature is sent only when non-nil so provider defaults apply otherwise.
	Temperature *float64
}

// Response contains the raw text returned by a backend.
type Response struct {
	Content    string
	TokensUsed int
}

// Generator is the text-generation backend abstraction.
type Generator interface {
	Generate(ctx context.Context, req Request) (Response, error)
	Name() string
	Model() string
}

// Options tune the HTTP transport shared by all providers.
type Options struct {
	// Retries is how many times a single Generate call is retried on rate
	// limiting or 5xx responses. Zero disables transport retries.
	Retries int
	Timeout time.Duration
}

// DefaultOptions returns the transport settings used when none are configured.
func DefaultOptions() Options {
	return Options{Retries: 3, Timeout: 120 * time.Second}
}

func (o Options) timeout(fallback time.Duration) time.Duration {
	if o.Timeout > 0 {
		return o.Timeout
	}
	return fallback
}

// Temperature returns a pointer suitable for Request.Temperature.
func Temperature(v float64) *float64 {
	return &v
}

// Names lists the provider identifiers accepted by New.
var Names = []string{"huggingface", "anthropic", "openai", "gemini", "ollama", "cohere"}

// New creates a provider by name.
func New(provider, model string, opts Options) (Generator, error) {
	switch provider {
	case "huggingface", "hf":
		return NewHuggingFace(model, opts)
	case "anthropic":
		return NewAnthropic(model, opts)
	case "openai":
		return NewOpenAI(model, opts)
	case "gemini", "google":
		return NewGemini(model, opts)
	case "ollama", "lmstudio":
		return NewOllama(model, opts)
	case "cohere":
		return NewCohere(model, opts)
	default:
		return nil, fmt.Errorf("unknown provider: %s", provider)
	}
}
