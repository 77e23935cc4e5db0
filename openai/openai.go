// Package openai provides a selfeval.Completer backed by the OpenAI chat
// completions API or any compatible endpoint.
package openai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/fwojciec/selfeval"
	goopenai "github.com/sashabaranov/go-openai"
)

// DefaultModel is the chat completion model used when none is configured.
const DefaultModel = selfeval.DefaultModel

// ErrNoChoices is returned when the API responds without any choices.
var ErrNoChoices = errors.New("openai: returned no choices")

// ChatClient is the subset of *goopenai.Client used by Completer.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req goopenai.ChatCompletionRequest) (goopenai.ChatCompletionResponse, error)
}

// Config holds connection settings for NewClient.
type Config struct {
	APIKey  string
	BaseURL string // Optional; targets an OpenAI-compatible endpoint
}

// NewClient creates a go-openai client from cfg.
func NewClient(cfg Config) (*goopenai.Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai: API key required")
	}
	clientConfig := goopenai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	return goopenai.NewClientWithConfig(clientConfig), nil
}

// Compile-time interface verification.
var _ selfeval.Completer = (*Completer)(nil)

// Completer implements selfeval.Completer using chat completions.
type Completer struct {
	client ChatClient
	logger *slog.Logger
}

// CompleterOption configures a Completer.
type CompleterOption func(*Completer)

// WithLogger sets the logger for request diagnostics.
func WithLogger(logger *slog.Logger) CompleterOption {
	return func(c *Completer) {
		c.logger = logger
	}
}

// NewCompleter creates a new Completer.
func NewCompleter(client ChatClient, opts ...CompleterOption) *Completer {
	c := &Completer{client: client, logger: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Complete issues one chat completion and returns the first choice's content.
func (c *Completer) Complete(ctx context.Context, req selfeval.CompletionRequest) (*selfeval.Completion, error) {
	model := req.Model
	if model == "" {
		model = DefaultModel
	}

	messages := make([]goopenai.ChatCompletionMessage, len(req.Messages))
	for i, m := range req.Messages {
		messages[i] = goopenai.ChatCompletionMessage{Role: m.Role, Content: m.Content}
	}

	c.logger.DebugContext(ctx, "requesting chat completion", "model", model, "messages", len(messages))

	resp, err := c.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model:    model,
		Messages: messages,
	})
	if err != nil {
		return nil, fmt.Errorf("openai: chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, ErrNoChoices
	}

	c.logger.DebugContext(ctx, "received chat completion", "model", model, "finish_reason", resp.Choices[0].FinishReason)
	return &selfeval.Completion{Text: resp.Choices[0].Message.Content}, nil
}
