package sqlite

import (
	"context"
	"log/slog"

	"github.com/fwojciec/selfeval"
)

// Compile-time interface verification.
var _ selfeval.Validator = (*Validator)(nil)

// Validator wraps a Validator and records every completed check.
type Validator struct {
	inner  selfeval.Validator
	store  selfeval.CheckStore
	model  string
	logger *slog.Logger
}

// NewValidator creates a recording validator. model is stored alongside
// each record.
func NewValidator(inner selfeval.Validator, store selfeval.CheckStore, model string, logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Validator{inner: inner, store: store, model: model, logger: logger}
}

// Validate delegates to the inner validator and records the outcome.
// Recording is best-effort; a store failure is logged, not returned.
func (v *Validator) Validate(ctx context.Context, value string, md selfeval.Metadata) (*selfeval.Outcome, error) {
	outcome, err := v.inner.Validate(ctx, value, md)
	if err != nil {
		return nil, err
	}

	question, _ := selfeval.QuestionFor(md)
	rec := &selfeval.CheckRecord{
		Model:     v.model,
		Question:  question,
		Candidate: value,
		Verdict:   outcome.Verdict,
		Passed:    outcome.Passed,
		Message:   outcome.Message,
	}
	if err := v.store.Record(ctx, rec); err != nil {
		v.logger.WarnContext(ctx, "failed to record check", "err", err)
	}

	return outcome, nil
}
