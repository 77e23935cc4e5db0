package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/fwojciec/selfeval"
	"github.com/fwojciec/selfeval/lipgloss"
)

// ErrNoInput is returned when no text to validate is provided.
var ErrNoInput = errors.New("no input: pass the text as an argument or pipe it on stdin")

// App validates a single output and reports the result.
type App struct {
	Validator selfeval.Validator
	Reporter  *lipgloss.Reporter
	Output    io.Writer
	// Timeout bounds the validation call. Zero means no deadline.
	Timeout time.Duration
}

// Check validates value against md and writes a report. A failed outcome is
// returned as a *selfeval.ValidationError.
func (a *App) Check(ctx context.Context, value string, md selfeval.Metadata) (*selfeval.Outcome, error) {
	if value == "" {
		return nil, ErrNoInput
	}

	outcome, err := validate(ctx, a.Validator, value, md, a.Timeout)
	if err != nil {
		return nil, err
	}

	if err := a.Reporter.Report(a.Output, selfeval.Result{Value: value, Outcome: outcome}); err != nil {
		return nil, fmt.Errorf("failed to write report: %w", err)
	}

	return outcome, outcome.Err()
}

// validate runs one validation under an optional deadline.
func validate(ctx context.Context, v selfeval.Validator, value string, md selfeval.Metadata, timeout time.Duration) (*selfeval.Outcome, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return v.Validate(ctx, value, md)
}
