package providers

import (
	"net/http"
	"os"
	"strings"
	"time"
)

const defaultOllamaURL = "http://localhost:11434"

// NewOllama creates a provider for Ollama or LM Studio through their
// OpenAI-compatible API. No API key is required by default.
func NewOllama(model string, opts Options) (*OpenAI, error) {
	baseURL := os.Getenv("OLLAMA_HOST")
	if baseURL == "" {
		baseURL = defaultOllamaURL
	}
	if !strings.Contains(baseURL, "://") {
		baseURL = "http://" + baseURL
	}

	// Normalize URL: strip trailing /, /v1, /v1/chat/completions
	baseURL = strings.TrimRight(baseURL, "/")
	baseURL = strings.TrimSuffix(baseURL, "/v1/chat/completions")
	baseURL = strings.TrimSuffix(baseURL, "/v1")

	return &OpenAI{
		name:    "ollama",
		apiKey:  os.Getenv("REVIEWLENS_OLLAMA_API_KEY"),
		model:   model,
		baseURL: baseURL + "/v1/chat/completions",
		client:  &http.Client{Timeout: opts.timeout(300 * time.Second)},
		retries: opts.Retries,
	}, nil
}
