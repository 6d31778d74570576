// Package llm is the chat-completions adapter used for structured extraction
// and bilingual generation. Callers own prompt construction, fence stripping
// and JSON parsing; adapter failures are expected to be degraded to neutral
// results at the call site, never propagated as request failures.
package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/fx"
	"go.uber.org/zap"

	cfgpkg "github.com/leaselens/leaselens/pkg/config"
)

// Completer is the narrow interface services consume.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userContent string, temperature float64, maxTokens int) (string, error)
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type Client struct {
	http  *resty.Client
	model string
	log   *zap.SugaredLogger
}

// NewClient fails when no API key is configured: the analysis pipeline cannot
// operate without the language model, and this must surface at startup rather
// than as a late 500.
func NewClient(cfg *cfgpkg.Config, log *zap.SugaredLogger) (*Client, error) {
	if cfg.LLM.APIKey == "" {
		return nil, fmt.Errorf("llm api key is not configured")
	}
	httpc := resty.New().
		SetBaseURL(cfg.LLM.BaseURL).
		SetAuthToken(cfg.LLM.APIKey).
		SetTimeout(time.Duration(cfg.LLM.TimeoutSeconds) * time.Second).
		SetHeader("Content-Type", "application/json")
	return &Client{http: httpc, model: cfg.LLM.Model, log: log}, nil
}

func (c *Client) Complete(ctx context.Context, systemPrompt, userContent string, temperature float64, maxTokens int) (string, error) {
	req := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userContent},
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}

	var out chatResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		Post("/chat/completions")
	if err != nil {
		return "", fmt.Errorf("chat completion request failed: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("chat completion returned %d: %s", resp.StatusCode(), resp.String())
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return out.Choices[0].Message.Content, nil
}

var Module = fx.Options(
	fx.Provide(NewClient),
	fx.Provide(func(c *Client) Completer { return c }),
)
