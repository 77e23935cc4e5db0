package mock

import (
	"context"

	"github.com/fwojciec/selfeval"
)

// Compile-time interface verification.
var _ selfeval.CheckStore = (*CheckStore)(nil)

// CheckStore is a mock implementation of selfeval.CheckStore.
type CheckStore struct {
	RecordFn func(ctx context.Context, rec *selfeval.CheckRecord) error
	ListFn   func(ctx context.Context, limit int) ([]selfeval.CheckRecord, error)
}

func (s *CheckStore) Record(ctx context.Context, rec *selfeval.CheckRecord) error {
	return s.RecordFn(ctx, rec)
}

func (s *CheckStore) List(ctx context.Context, limit int) ([]selfeval.CheckRecord, error) {
	return s.ListFn(ctx, limit)
}
