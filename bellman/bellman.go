// Package bellman provides a selfeval.Completer backed by a bellman gateway,
// which proxies many LLM providers behind one API.
package bellman

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fwojciec/selfeval"
	gateway "github.com/modfin/bellman"
	"github.com/modfin/bellman/models/gen"
	"github.com/modfin/bellman/prompt"
)

// DefaultModel is the provider-qualified model used when none is configured.
const DefaultModel = "OpenAI/gpt-4o-mini"

// ErrInvalidModel is returned for model identifiers not of the form "Provider/name".
var ErrInvalidModel = errors.New("bellman: model must be of the form Provider/name")

// NewClient creates a bellman gateway client.
func NewClient(url, keyName, token string) (*gateway.Bellman, error) {
	if url == "" || token == "" {
		return nil, errors.New("bellman: url and key required")
	}
	return gateway.New(url, gateway.Key{Name: keyName, Token: token}), nil
}

// PromptFunc sends prompts to a model and returns the reply text.
type PromptFunc func(ctx context.Context, model gen.Model, prompts ...prompt.Prompt) (string, error)

// FromGen adapts a bellman generator provider into a PromptFunc. The gateway
// request is not bound to ctx; a cancelled ctx is only checked before sending.
func FromGen(g gen.Gen) PromptFunc {
	return func(ctx context.Context, model gen.Model, prompts ...prompt.Prompt) (string, error) {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		res, err := g.Generator(gen.WithModel(model)).Prompt(prompts...)
		if err != nil {
			return "", err
		}
		return res.AsText()
	}
}

// ParseModel splits a "Provider/name" identifier into a gen.Model.
func ParseModel(id string) (gen.Model, error) {
	provider, name, found := strings.Cut(id, "/")
	if !found || provider == "" || name == "" {
		return gen.Model{}, fmt.Errorf("%w: %q", ErrInvalidModel, id)
	}
	return gen.Model{Provider: provider, Name: name}, nil
}

// Compile-time interface verification.
var _ selfeval.Completer = (*Completer)(nil)

// Completer implements selfeval.Completer using bellman.
type Completer struct {
	prompt PromptFunc
}

// NewCompleter creates a new Completer.
func NewCompleter(fn PromptFunc) *Completer {
	return &Completer{prompt: fn}
}

// Complete sends the request messages as bellman prompts and returns the reply text.
func (c *Completer) Complete(ctx context.Context, req selfeval.CompletionRequest) (*selfeval.Completion, error) {
	id := req.Model
	if id == "" {
		id = DefaultModel
	}
	model, err := ParseModel(id)
	if err != nil {
		return nil, err
	}

	prompts := make([]prompt.Prompt, len(req.Messages))
	for i, m := range req.Messages {
		role := prompt.UserRole
		if m.Role == "assistant" {
			role = prompt.AssistantRole
		}
		prompts[i] = prompt.Prompt{Role: role, Text: m.Content}
	}

	text, err := c.prompt(ctx, model, prompts...)
	if err != nil {
		return nil, fmt.Errorf("bellman: failed to generate response: %w", err)
	}
	return &selfeval.Completion{Text: text}, nil
}
