package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

const (
	anthropicAPIURL     = "https://api.anthropic.com/v1/messages"
	anthropicAPIVersion = "2023-06-01"
)

// Anthropic implements Generator for Anthropic's Messages API.
type Anthropic struct {
	apiKey  string
	model   string
	client  *http.Client
	retries int
}

// NewAnthropic creates a new Anthropic provider.
func NewAnthropic(model string, opts Options) (*Anthropic, error) {
	key := os.Getenv("ANTHROPIC_API_KEY")
	if key == "" {
		return nil, missingKeyError("ANTHROPIC_API_KEY")
	}
	return &Anthropic{
		apiKey:  key,
		model:   model,
		client:  &http.Client{Timeout: opts.timeout(120 * time.Second)},
		retries: opts.Retries,
	}, nil
}

func (a *Anthropic) Name() string { return "anthropic" }

func (a *Anthropic) Model() string { return a.model }

func (a *Anthropic) Generate(ctx context.Context, req Request) (Response, error) {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = 4096
	}

	payload, err := json.Marshal(anthropicRequest{
		Model:       a.model,
		MaxTokens:   maxTokens,
		System:      req.SystemPrompt,
		Temperature: req.Temperature,
		Messages: []anthropicMessage{
			{Role: "user", Content: req.UserPrompt},
		},
	})
	if err != nil {
		return Response{}, fmt.Errorf("marshaling request: %w", err)
	}

	var resp Response
	err = retryWithBackoff(ctx, a.retries, func() error {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, anthropicAPIURL, bytes.NewReader(payload))
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("x-api-key", a.apiKey)
		httpReq.Header.Set("anthropic-version", anthropicAPIVersion)

		httpResp, err := a.client.Do(httpReq)
		if err != nil {
			return fmt.Errorf("sending request: %w", err)
		}
		defer httpResp.Body.Close()

		respBody, err := io.ReadAll(httpResp.Body)
		if err != nil {
			return fmt.Errorf("reading response: %w", err)
		}

		if err := classifyStatus(httpResp.StatusCode, respBody); err != nil {
			return err
		}

		var result anthropicResponse
		if err := json.Unmarshal(respBody, &result); err != nil {
			return fmt.Errorf("parsing response: %w", err)
		}

		var content strings.Builder
		for _, block := range result.Content {
			if block.Type == "text" {
				content.WriteString(block.Text)
			}
		}
		if content.Len() == 0 {
			return fmt.Errorf("no text blocks: %w", ErrEmptyResponse)
		}

		resp = Response{
			Content:    content.String(),
			TokensUsed: result.Usage.InputTokens + result.Usage.OutputTokens,
		}
		return nil
	})

	return resp, err
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	System      string             `json:"system,omitempty"`
	Temperature *float64           `json:"temperature,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []anthropicBlock `json:"content"`
	Usage   anthropicUsage   `json:"usage"`
}

type anthropicBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type anthropicUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}
