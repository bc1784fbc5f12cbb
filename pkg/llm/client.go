// Package llm provides a minimal client for an OpenAI-compatible chat
// completion endpoint. It is optional everywhere it is used: a Client
// with no API key reports itself disabled and callers fall back to
// their non-AI path.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/UpkeepAI/upkeep-mvp/pkg/resilience"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "gpt-4o-mini"
)

// Client talks to a chat-completion endpoint.
type Client struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
	breaker *resilience.Breaker
}

// New creates a Client. An empty apiKey produces a disabled client; an
// empty baseURL or model falls back to the OpenAI defaults.
func New(baseURL, apiKey, model string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if model == "" {
		model = defaultModel
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		breaker: resilience.NewBreaker(resilience.DefaultBreakerOpts),
	}
}

// Enabled reports whether the client has a credential to work with.
func (c *Client) Enabled() bool { return c != nil && c.apiKey != "" }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends a single-turn prompt and returns the raw completion text.
// Calls run through a circuit breaker so a dead endpoint fails fast.
func (c *Client) Complete(ctx context.Context, system, prompt string) (string, error) {
	if !c.Enabled() {
		return "", fmt.Errorf("llm: no api key configured")
	}

	var content string
	err := c.breaker.Call(ctx, func(ctx context.Context) error {
		msgs := []chatMessage{}
		if system != "" {
			msgs = append(msgs, chatMessage{Role: "system", Content: system})
		}
		msgs = append(msgs, chatMessage{Role: "user", Content: prompt})

		body, _ := json.Marshal(chatRequest{Model: c.model, Messages: msgs})
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, err := c.client.Do(req)
		if err != nil {
			return fmt.Errorf("llm complete: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("llm complete: status %d", resp.StatusCode)
		}

		var result chatResponse
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return fmt.Errorf("llm complete decode: %w", err)
		}
		if len(result.Choices) == 0 {
			return fmt.Errorf("llm complete: empty choices")
		}
		content = result.Choices[0].Message.Content
		return nil
	})
	return content, err
}
