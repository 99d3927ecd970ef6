package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	cohere "github.com/cohere-ai/cohere-go/v2"
	cohereclient "github.com/cohere-ai/cohere-go/v2/client"
	coherecore "github.com/cohere-ai/cohere-go/v2/core"
)

// Cohere implements Generator using the Cohere chat API through the official SDK.
type Cohere struct {
	model   string
	retries int
	chat    func(ctx context.Context, req *cohere.ChatRequest) (*cohere.NonStreamedChatResponse, error)
}

// NewCohere creates a new Cohere provider.
func NewCohere(model string, opts Options) (*Cohere, error) {
	key := os.Getenv("COHERE_API_KEY")
	if key == "" {
		return nil, missingKeyError("COHERE_API_KEY")
	}
	client := cohereclient.NewClient(
		cohereclient.WithToken(key),
		cohereclient.WithHTTPClient(&http.Client{Timeout: opts.timeout(120 * time.Second)}),
	)
	return &Cohere{
		model:   model,
		retries: opts.Retries,
		chat: func(ctx context.Context, req *cohere.ChatRequest) (*cohere.NonStreamedChatResponse, error) {
			return client.Chat(ctx, req)
		},
	}, nil
}

func (c *Cohere) Name() string { return "cohere" }

func (c *Cohere) Model() string { return c.model }

func (c *Cohere) Generate(ctx context.Context, req Request) (Response, error) {
	chatReq := &cohere.ChatRequest{
		Message:     req.UserPrompt,
		Model:       &c.model,
		Temperature: req.Temperature,
	}
	if req.SystemPrompt != "" {
		preamble := req.SystemPrompt
		chatReq.Preamble = &preamble
	}
	if req.MaxTokens > 0 {
		maxTokens := req.MaxTokens
		chatReq.MaxTokens = &maxTokens
	}

	var resp Response
	err := retryWithBackoff(ctx, c.retries, func() error {
		out, err := c.chat(ctx, chatReq)
		if err != nil {
			return classifyCohereError(err)
		}
		if out == nil || out.Text == "" {
			return ErrEmptyResponse
		}
		resp = Response{Content: out.Text}
		return nil
	})
	return resp, err
}

// classifyCohereError maps SDK status errors onto the shared retry taxonomy.
func classifyCohereError(err error) error {
	var apiErr *coherecore.APIError
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("cohere chat: %w", err)
	}
	switch {
	case apiErr.StatusCode == http.StatusTooManyRequests:
		return &rateLimitError{retryable: true}
	case apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden:
		return &authError{message: err.Error()}
	case apiErr.StatusCode >= 500:
		return &serverError{statusCode: apiErr.StatusCode, body: err.Error()}
	default:
		return fmt.Errorf("cohere chat: %w", err)
	}
}
