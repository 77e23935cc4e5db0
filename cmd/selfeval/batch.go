package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/selfeval"
	"github.com/fwojciec/selfeval/jsonl"
	"github.com/modfin/henry/slicez"
	"golang.org/x/sync/errgroup"
)

// DefaultWorkers is the default number of parallel validations in a batch.
const DefaultWorkers = 4

// Summary counts batch results.
type Summary struct {
	Passed  int
	Failed  int
	Errored int
}

// BatchRunner validates many cases and writes JSONL results in input order.
type BatchRunner struct {
	Output    io.Writer
	Cases     []selfeval.Case
	Validator selfeval.Validator
	// Workers sets the number of parallel workers. If <= 1, runs sequentially.
	Workers int
	Timeout time.Duration
	Logger  *slog.Logger
}

// Run validates every case. A case that errors is written with its error
// and does not stop the batch.
func (b *BatchRunner) Run(ctx context.Context) (Summary, error) {
	logger := b.Logger
	if logger == nil {
		logger = slog.Default()
	}
	workers := b.Workers
	if workers < 1 {
		workers = 1
	}

	results := make([]selfeval.Result, len(b.Cases))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := range b.Cases {
		c := b.Cases[i]

		g.Go(func() error {
			start := time.Now()
			result := selfeval.Result{Index: i, Value: c.Value}

			outcome, err := validate(ctx, b.Validator, c.Value, c.Metadata, b.Timeout)
			if err != nil {
				logger.Warn("case failed", "index", i, "err", err)
				result.Error = err.Error()
			} else {
				result.Outcome = outcome
			}
			logger.Debug("case done", "index", i, "took", time.Since(start))

			results[i] = result
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Summary{}, err
	}

	w := jsonl.NewWriter(b.Output)
	for _, r := range results {
		if err := w.Write(r); err != nil {
			return Summary{}, err
		}
	}

	return summarize(results), nil
}

func summarize(results []selfeval.Result) Summary {
	errored := slicez.Filter(results, func(r selfeval.Result) bool { return r.Outcome == nil })
	passed := slicez.Filter(results, func(r selfeval.Result) bool { return r.Outcome != nil && r.Outcome.Passed })
	return Summary{
		Passed:  len(passed),
		Failed:  len(results) - len(passed) - len(errored),
		Errored: len(errored),
	}
}
