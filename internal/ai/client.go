// Package ai provides a thin pass-through client for an OpenAI-compatible
// chat completion API.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/peerwave/backend/internal/apperr"
	"github.com/peerwave/backend/internal/metrics"
)

const (
	chatTemperature = 0.7
	chatMaxTokens   = 150

	// fallbackReply is returned when the provider answers successfully but
	// with no usable completion.
	fallbackReply = "I apologize, but I could not generate a response."

	defaultSystemPrompt = "You are a helpful assistant on Peerwave, a social platform for crypto enthusiasts. Keep answers short and friendly."
)

// Message is one entry in a chat conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client calls an OpenAI-compatible chat completion endpoint.
type Client struct {
	baseURL      string
	apiKey       string
	model        string
	systemPrompt string
	client       *http.Client
}

// NewClient creates a chat client. The model name and base URL come from
// configuration so the provider can be swapped without code changes.
func NewClient(baseURL, apiKey, model string) *Client {
	return &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		apiKey:       apiKey,
		model:        model,
		systemPrompt: defaultSystemPrompt,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

// Chat sends the user's message and returns the assistant reply.
func (c *Client) Chat(ctx context.Context, message string) (string, error) {
	if !c.Configured() {
		return "", apperr.Upstream("AI provider").WithDetail("no API key configured")
	}

	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []Message{
			{Role: "system", Content: c.systemPrompt},
			{Role: "user", Content: message},
		},
		Temperature: chatTemperature,
		MaxTokens:   chatMaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		metrics.RecordUpstreamRequest("ai", "error", time.Since(start).Seconds())
		return "", apperr.Upstream("AI provider").WithDetail(err.Error())
	}
	defer resp.Body.Close()
	metrics.RecordUpstreamRequest("ai", fmt.Sprintf("%d", resp.StatusCode), time.Since(start).Seconds())

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", apperr.Upstream("AI provider").
			WithDetail(fmt.Sprintf("unexpected status %d", resp.StatusCode))
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", apperr.Upstream("AI provider").WithDetail(err.Error())
	}

	if len(out.Choices) == 0 || strings.TrimSpace(out.Choices[0].Message.Content) == "" {
		return fallbackReply, nil
	}
	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}
