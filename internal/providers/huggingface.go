package providers

import (
	"net/http"
	"os"
	"time"
)

const defaultHuggingFaceURL = "https://router.huggingface.co/v1/chat/completions"

// NewHuggingFace creates a provider for Hugging Face Inference Providers via
// the OpenAI-compatible router. The token is read from HF_TOKEN, falling back
// to HUGGINGFACEHUB_API_TOKEN.
func NewHuggingFace(model string, opts Options) (*OpenAI, error) {
	key := os.Getenv("HF_TOKEN")
	if key == "" {
		key = os.Getenv("HUGGINGFACEHUB_API_TOKEN")
	}
	if key == "" {
		return nil, missingKeyError("HF_TOKEN (or HUGGINGFACEHUB_API_TOKEN)")
	}
	baseURL := os.Getenv("REVIEWLENS_HF_BASE_URL")
	if baseURL == "" {
		baseURL = defaultHuggingFaceURL
	}
	return &OpenAI{
		name:    "huggingface",
		apiKey:  key,
		model:   model,
		baseURL: baseURL,
		client:  &http.Client{Timeout: opts.timeout(120 * time.Second)},
		retries: opts.Retries,
	}, nil
}
