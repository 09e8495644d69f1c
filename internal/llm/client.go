// Package llm provides the language-model collaborator client used for
// interview turns, transcript extraction, and document generation.
package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Config holds collaborator client configuration.
type Config struct {
	APIKey  string
	BaseURL string // OpenAI-compatible endpoint; empty = api.openai.com
	Model   string
	// GenerateRetries bounds automatic retries for document generation.
	// Interview-turn and extraction calls are never retried automatically;
	// those failures are surfaced to the caller instead.
	GenerateRetries int
	Timeout         time.Duration
}

// Client wraps the official OpenAI Go client behind the three collaborator
// call classes the interview needs.
type Client struct {
	client          openai.Client
	model           string
	generateRetries int
}

// NewClient creates a collaborator client. The endpoint may be any
// OpenAI-compatible chat completions API.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("llm: api key must not be empty")
	}
	if cfg.Model == "" {
		return nil, errors.New("llm: model must not be empty")
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}
	retries := cfg.GenerateRetries
	if retries <= 0 {
		retries = 5
	}
	return &Client{
		client:          openai.NewClient(opts...),
		model:           cfg.Model,
		generateRetries: retries,
	}, nil
}

// Converse requests the next interview reply. No automatic retry: a failed
// turn is surfaced so the caller can re-submit the same user reply.
func (c *Client) Converse(ctx context.Context, prompt string) (string, error) {
	return c.complete(ctx, prompt, option.WithMaxRetries(0))
}

// Extract requests structured field values for a finished transcript.
func (c *Client) Extract(ctx context.Context, prompt string) (string, error) {
	return c.complete(ctx, prompt, option.WithMaxRetries(0))
}

// Generate requests a long-form document. Transient failures are retried
// automatically up to the configured bound.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	return c.complete(ctx, prompt, option.WithMaxRetries(c.generateRetries))
}

func (c *Client) complete(ctx context.Context, prompt string, opts ...option.RequestOption) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	}, opts...)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no choices in chat completion response")
	}
	return resp.Choices[0].Message.Content, nil
}
