package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/fwojciec/selfeval"
	"github.com/fwojciec/selfeval/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *sqlite.Store {
	t.Helper()

	store, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "selfeval.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_RecordAndList(t *testing.T) {
	t.Parallel()

	store := openStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	first := &selfeval.CheckRecord{
		CheckedAt: base,
		Model:     "gpt-3.5-turbo",
		Question:  "Does this Response respond to the following Prompt? Prompt: What is the capital of Missouri?",
		Candidate: "Jefferson City is the capital of Missouri.",
		Verdict:   selfeval.VerdictYes,
		Passed:    true,
	}
	second := &selfeval.CheckRecord{
		CheckedAt: base.Add(time.Minute),
		Model:     "gpt-3.5-turbo",
		Question:  first.Question,
		Candidate: "Paris is the capital of France.",
		Verdict:   selfeval.VerdictNo,
		Passed:    false,
		Message:   selfeval.DefaultNoMessage,
	}
	require.NoError(t, store.Record(ctx, first))
	require.NoError(t, store.Record(ctx, second))
	assert.NotZero(t, first.ID)
	assert.NotEqual(t, first.ID, second.ID)

	records, err := store.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, second.ID, records[0].ID, "newest first")
	assert.Equal(t, selfeval.VerdictNo, records[0].Verdict)
	assert.False(t, records[0].Passed)
	assert.Equal(t, selfeval.DefaultNoMessage, records[0].Message)
	assert.True(t, records[0].CheckedAt.Equal(second.CheckedAt))

	assert.Equal(t, "Jefferson City is the capital of Missouri.", records[1].Candidate)
	assert.True(t, records[1].Passed)
}

func TestStore_List_RespectsLimit(t *testing.T) {
	t.Parallel()

	store := openStore(t)
	ctx := context.Background()
	for range 3 {
		require.NoError(t, store.Record(ctx, &selfeval.CheckRecord{Verdict: selfeval.VerdictUnsure}))
	}

	limited, err := store.List(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	all, err := store.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestStore_Record_SetsCheckedAt(t *testing.T) {
	t.Parallel()

	store := openStore(t)
	rec := &selfeval.CheckRecord{Verdict: selfeval.VerdictYes, Passed: true}

	require.NoError(t, store.Record(context.Background(), rec))

	assert.False(t, rec.CheckedAt.IsZero())
}

func TestOpen_IsIdempotent(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "selfeval.db")
	ctx := context.Background()

	store, err := sqlite.Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, store.Record(ctx, &selfeval.CheckRecord{Verdict: selfeval.VerdictYes}))
	require.NoError(t, store.Close())

	reopened, err := sqlite.Open(ctx, path)
	require.NoError(t, err)
	defer reopened.Close()

	records, err := reopened.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}
