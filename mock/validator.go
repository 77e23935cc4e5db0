package mock

import (
	"context"

	"github.com/fwojciec/selfeval"
)

// Compile-time interface verification.
var _ selfeval.Validator = (*Validator)(nil)

// Validator is a mock implementation of selfeval.Validator.
type Validator struct {
	ValidateFn func(ctx context.Context, value string, md selfeval.Metadata) (*selfeval.Outcome, error)
}

func (v *Validator) Validate(ctx context.Context, value string, md selfeval.Metadata) (*selfeval.Outcome, error) {
	return v.ValidateFn(ctx, value, md)
}
