package mock

import (
	"context"

	"github.com/fwojciec/selfeval"
)

// Compile-time interface verification.
var _ selfeval.Completer = (*Completer)(nil)

// Completer is a mock implementation of selfeval.Completer.
type Completer struct {
	CompleteFn func(ctx context.Context, req selfeval.CompletionRequest) (*selfeval.Completion, error)
}

func (c *Completer) Complete(ctx context.Context, req selfeval.CompletionRequest) (*selfeval.Completion, error) {
	return c.CompleteFn(ctx, req)
}
