// Package selfeval provides domain types for validating LLM output by asking a
// second LLM call to evaluate it.
package selfeval

import (
	"context"
	"strings"
	"time"
)

// Metadata keys understood by the Checker.
const (
	KeyValidationQuestion = "validation_question"
	KeyOriginalPrompt     = "original_prompt"
	KeyPassOnUnsure       = "pass_on_unsure"
)

// Verdict is the evaluator's tri-state judgment.
type Verdict string

// Verdicts.
const (
	VerdictYes    Verdict = "yes"
	VerdictNo     Verdict = "no"
	VerdictUnsure Verdict = "unsure"
)

// Outcome is the result of a single validation.
type Outcome struct {
	Passed  bool    `json:"passed"`
	Message string  `json:"message,omitempty"` // Empty on a Yes verdict
	Verdict Verdict `json:"verdict"`
}

// Err returns a *ValidationError for a failed outcome, or nil if it passed.
func (o Outcome) Err() error {
	if o.Passed {
		return nil
	}
	return &ValidationError{Message: o.Message}
}

// Metadata carries the caller's contextual data for a validation call.
type Metadata map[string]any

// String returns the trimmed string stored under key, or empty if the key is
// absent or not a string.
func (m Metadata) String(key string) string {
	s, _ := m[key].(string)
	return strings.TrimSpace(s)
}

// Bool returns the bool stored under key and whether it was present.
func (m Metadata) Bool(key string) (value, ok bool) {
	value, ok = m[key].(bool)
	return value, ok
}

// Message is a single chat message sent to a completion backend.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// RoleUser is the role used for the evaluation prompt.
const RoleUser = "user"

// CompletionRequest is the outbound request to a completion backend.
type CompletionRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
}

// Completion is the text returned by a completion backend.
type Completion struct {
	Text string `json:"text"`
}

// Completer issues a single completion request against an LLM backend.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (*Completion, error)
}

// Validator checks a value against the context in metadata.
type Validator interface {
	Validate(ctx context.Context, value string, md Metadata) (*Outcome, error)
}

// Case is one batch input: a candidate output and its metadata.
type Case struct {
	Value    string   `json:"value"`
	Metadata Metadata `json:"metadata"`
}

// Result pairs a Case with its outcome or error.
type Result struct {
	Index   int      `json:"index"` // Position in input file (0-based)
	Value   string   `json:"value"`
	Outcome *Outcome `json:"outcome,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// CheckRecord is a persisted record of a completed check.
type CheckRecord struct {
	ID        int64     `json:"id"`
	CheckedAt time.Time `json:"checked_at"`
	Model     string    `json:"model"`
	Question  string    `json:"question"`
	Candidate string    `json:"candidate"`
	Verdict   Verdict   `json:"verdict"`
	Passed    bool      `json:"passed"`
	Message   string    `json:"message,omitempty"`
}

// CheckStore persists check records.
type CheckStore interface {
	Record(ctx context.Context, rec *CheckRecord) error
	List(ctx context.Context, limit int) ([]CheckRecord, error)
}

// CaseLoader loads batch cases from a source.
type CaseLoader interface {
	Load(path string) ([]Case, error)
}
