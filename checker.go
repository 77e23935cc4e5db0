package selfeval

import (
	"context"
	"log/slog"
	"strings"
)

// DefaultModel is the completion model used when Config.Model is empty.
const DefaultModel = "gpt-3.5-turbo"

// Default outcome messages.
const (
	DefaultNoMessage     = "The evaluator says 'No'. The validation failed."
	DefaultUnsureMessage = "The evaluator is unsure about the answer."
)

// Config controls how the Checker calls the backend and resolves verdicts.
type Config struct {
	Model         string `yaml:"model"`
	UnsureIsPass  bool   `yaml:"unsure_is_pass"`
	NoMessage     string `yaml:"no_message"`
	UnsureMessage string `yaml:"unsure_message"`
}

// withDefaults returns a copy of c with empty fields filled in.
func (c Config) withDefaults() Config {
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.NoMessage == "" {
		c.NoMessage = DefaultNoMessage
	}
	if c.UnsureMessage == "" {
		c.UnsureMessage = DefaultUnsureMessage
	}
	return c
}

// Compile-time interface verification.
var _ Validator = (*Checker)(nil)

// Checker validates output by asking a completion backend a yes/no question
// about it. A Checker holds no mutable state and is safe for concurrent use.
type Checker struct {
	completer Completer
	config    Config
	logger    *slog.Logger
}

// CheckerOption configures a Checker.
type CheckerOption func(*Checker)

// WithLogger sets the logger used to report unsure verdicts.
func WithLogger(logger *slog.Logger) CheckerOption {
	return func(c *Checker) {
		c.logger = logger
	}
}

// NewChecker creates a Checker that sends evaluation prompts to completer.
func NewChecker(completer Completer, cfg Config, opts ...CheckerOption) *Checker {
	c := &Checker{
		completer: completer,
		config:    cfg.withDefaults(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Config returns the effective configuration.
func (c *Checker) Config() Config {
	return c.config
}

// Validate resolves the evaluation question from md and checks value against
// it. A pass_on_unsure entry in md overrides the configured unsure policy.
func (c *Checker) Validate(ctx context.Context, value string, md Metadata) (*Outcome, error) {
	question, err := QuestionFor(md)
	if err != nil {
		return nil, err
	}
	unsureIsPass := c.config.UnsureIsPass
	if v, ok := md.Bool(KeyPassOnUnsure); ok {
		unsureIsPass = v
	}
	return c.check(ctx, value, question, unsureIsPass)
}

// Check asks the backend whether candidate satisfies question.
func (c *Checker) Check(ctx context.Context, candidate, question string) (*Outcome, error) {
	return c.check(ctx, candidate, question, c.config.UnsureIsPass)
}

func (c *Checker) check(ctx context.Context, candidate, question string, unsureIsPass bool) (*Outcome, error) {
	if strings.TrimSpace(candidate) == "" {
		return nil, ErrEmptyCandidate
	}

	req := CompletionRequest{
		Model: c.config.Model,
		Messages: []Message{{
			Role:    RoleUser,
			Content: BuildEvaluationPrompt(candidate, question),
		}},
	}

	resp, err := c.completer.Complete(ctx, req)
	if err != nil {
		return nil, &UpstreamError{Model: c.config.Model, Err: err}
	}
	if resp == nil {
		return nil, &UpstreamError{Model: c.config.Model, Err: errNilCompletion}
	}

	switch verdict := ParseVerdict(resp.Text); verdict {
	case VerdictYes:
		return &Outcome{Passed: true, Verdict: verdict}, nil
	case VerdictNo:
		return &Outcome{Passed: false, Message: c.config.NoMessage, Verdict: verdict}, nil
	default:
		c.logger.WarnContext(ctx, c.config.UnsureMessage,
			"model", c.config.Model,
			"reply", resp.Text,
			"passed", unsureIsPass,
		)
		return &Outcome{Passed: unsureIsPass, Message: c.config.UnsureMessage, Verdict: verdict}, nil
	}
}
