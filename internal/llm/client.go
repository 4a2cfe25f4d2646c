// Package llm talks to an OpenAI-compatible chat completions endpoint.
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
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "gpt-3.5-turbo"
	maxTokens      = 150
	temperature    = 0.7

	// placeholderKey is the value shipped in sample .env files.
	placeholderKey = "sk-your-openai-api-key-here"
)

// Prompt is a system instruction plus the user message.
type Prompt struct {
	System string
	User   string
}

type Client struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
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
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

// NewClient creates a client. Empty baseURL or model select the defaults;
// timeout bounds every call.
func NewClient(apiKey, baseURL, model string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if model == "" {
		model = defaultModel
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client:  &http.Client{Timeout: timeout},
	}
}

// Configured reports whether a real API key is present.
func (c *Client) Configured() bool {
	return c.apiKey != "" && c.apiKey != placeholderKey
}

// Summarize sends one chat completion request. There are no retries.
func (c *Client) Summarize(ctx context.Context, prompt Prompt) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}

	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: prompt.System},
			{Role: "user", Content: prompt.User},
		},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", &UpstreamError{Kind: KindNetwork, Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &UpstreamError{Kind: KindNetwork, Message: "failed to read response body", Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return "", classify(resp.StatusCode, respBody)
	}

	var chat chatResponse
	if err := json.Unmarshal(respBody, &chat); err != nil {
		return "", &UpstreamError{Kind: KindGeneric, Message: "failed to decode response", Err: err}
	}
	if len(chat.Choices) == 0 {
		return "", &UpstreamError{Kind: KindGeneric, Message: "no choices returned"}
	}

	return strings.TrimSpace(chat.Choices[0].Message.Content), nil
}

func classify(status int, body []byte) *UpstreamError {
	var apiErr apiError
	message := string(body)
	if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
		message = apiErr.Error.Message
	}

	kind := KindGeneric
	switch {
	case apiErr.Error.Code == "insufficient_quota":
		kind = KindQuota
	case apiErr.Error.Code == "invalid_api_key", status == http.StatusUnauthorized:
		kind = KindInvalidCredential
	}

	return &UpstreamError{Kind: kind, Status: status, Message: message}
}
