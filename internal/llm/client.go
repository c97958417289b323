// Package llm talks to the OpenAI chat-completions endpoint to turn a
// task description into a structured suggestion. One attempt per call,
// no retry: the caller treats any failure as "no suggestion".
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"taskflow/internal/domain"
)

const (
	defaultBaseURL     = "https://api.openai.com/v1"
	defaultModel       = "gpt-3.5-turbo"
	defaultMaxTokens   = 1000
	defaultTemperature = 0.7
)

// ProviderError reports a non-2xx answer from the provider.
type ProviderError struct {
	StatusCode int
	Body       string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("openai api error: status %d", e.StatusCode)
}

type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

// NewClientWithBaseURL is used by tests to point at a local server.
func NewClientWithBaseURL(apiKey, baseURL string) *Client {
	c := NewClient(apiKey)
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

// Enabled reports whether an API key is configured. Without a key the
// suggestion path is disabled, not an error.
func (c *Client) Enabled() bool { return c.apiKey != "" }

type GenerateOptions struct {
	Model       string
	MaxTokens   int
	Temperature float64
}

// Result is one completed suggestion call. Structured is nil when the
// model answered with anything but strict JSON.
type Result struct {
	Content    string
	Model      string
	Structured *domain.StructuredSuggestion
	Metadata   json.RawMessage
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage json.RawMessage `json:"usage"`
}

type callMetadata struct {
	Usage        json.RawMessage `json:"usage,omitempty"`
	FinishReason string          `json:"finishReason,omitempty"`
}

// Generate sends content to the chat-completions endpoint and shapes
// the first choice into a Result. The context bounds the whole round
// trip; the caller decides the timeout.
func (c *Client) Generate(ctx context.Context, content string, opts GenerateOptions) (*Result, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("openai api key not set")
	}

	model := opts.Model
	if model == "" {
		model = defaultModel
	}
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	temperature := opts.Temperature
	if temperature <= 0 {
		temperature = defaultTemperature
	}

	body, err := json.Marshal(chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: buildUserPrompt(content)},
		},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call openai: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &ProviderError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("empty completion")
	}

	text := parsed.Choices[0].Message.Content

	// Strict-JSON-or-raw: a reply that opens with "{" is expected to be
	// the structured shape; anything else (including broken JSON) is
	// kept as raw content only.
	var structured *domain.StructuredSuggestion
	if strings.HasPrefix(strings.TrimSpace(text), "{") {
		var s domain.StructuredSuggestion
		if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &s); err == nil {
			structured = &s
		}
	}

	meta, _ := json.Marshal(callMetadata{
		Usage:        parsed.Usage,
		FinishReason: parsed.Choices[0].FinishReason,
	})

	return &Result{
		Content:    text,
		Model:      model,
		Structured: structured,
		Metadata:   meta,
	}, nil
}
