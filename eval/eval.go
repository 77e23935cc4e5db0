// Package eval provides test helpers for asserting that LLM output responds
// to its prompt, judged by a selfeval.Validator.
package eval

import (
	"os"
	"testing"

	"github.com/fwojciec/selfeval"
)

// Eval provides assertion helpers for LLM-based test evaluation.
type Eval struct {
	validator selfeval.Validator
}

// New creates a new Eval with the given validator.
func New(validator selfeval.Validator) *Eval {
	return &Eval{validator: validator}
}

// AssertResponsive marks the test as failed unless output responds to prompt.
func (e *Eval) AssertResponsive(tb testing.TB, output, prompt string) {
	tb.Helper()
	e.assert(tb, output, selfeval.Metadata{selfeval.KeyOriginalPrompt: prompt}, true)
}

// AssertNotResponsive marks the test as failed if output responds to prompt.
func (e *Eval) AssertNotResponsive(tb testing.TB, output, prompt string) {
	tb.Helper()
	e.assert(tb, output, selfeval.Metadata{selfeval.KeyOriginalPrompt: prompt}, false)
}

// AssertQuestion marks the test as failed unless the evaluator answers
// question about output with yes.
func (e *Eval) AssertQuestion(tb testing.TB, output, question string) {
	tb.Helper()
	e.assert(tb, output, selfeval.Metadata{selfeval.KeyValidationQuestion: question}, true)
}

func (e *Eval) assert(tb testing.TB, output string, md selfeval.Metadata, wantPass bool) {
	tb.Helper()

	outcome, err := e.validator.Validate(tb.Context(), output, md)
	if err != nil {
		tb.Errorf("self-evaluation failed: %v", err)
		return
	}

	if outcome.Passed != wantPass {
		tb.Errorf("self-evaluation: got passed=%t, want %t for output %q\nVerdict: %s\nMessage: %s",
			outcome.Passed, wantPass, output, outcome.Verdict, outcome.Message)
	}
}

// SkipUnlessEvals skips the test unless GOEVALS environment variable is set.
// Use at the start of eval tests to make them opt-in.
func SkipUnlessEvals(tb testing.TB) {
	tb.Helper()
	if os.Getenv("GOEVALS") == "" {
		tb.Skip("GOEVALS not set")
	}
}
