package gemini

import (
	"context"
	"errors"

	"github.com/fwojciec/selfeval"
)

// DefaultModel is the recommended Gemini model for self-evaluation.
const DefaultModel = "gemini-2.5-flash"

// Compile-time interface verification.
var _ selfeval.Completer = (*Completer)(nil)

// Completer implements selfeval.Completer using Google Gemini.
type Completer struct {
	client GenerativeClient
}

// NewCompleter creates a new Completer.
func NewCompleter(client GenerativeClient) *Completer {
	return &Completer{client: client}
}

// Complete sends the request messages as Gemini contents and returns the reply text.
func (c *Completer) Complete(ctx context.Context, req selfeval.CompletionRequest) (*selfeval.Completion, error) {
	contents := make([]*Content, 0, len(req.Messages))
	for _, m := range req.Messages {
		contents = append(contents, &Content{
			Role:  contentRole(m.Role),
			Parts: []*Part{{Text: m.Content}},
		})
	}

	resp, err := c.client.GenerateContent(ctx, req.Model, contents, BuildConfig())
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, errors.New("gemini: returned nil response")
	}

	return &selfeval.Completion{Text: resp.Text}, nil
}

// contentRole maps chat roles to Gemini content roles.
func contentRole(role string) string {
	if role == "assistant" {
		return "model"
	}
	return "user"
}

// BuildConfig returns the GenerateContentConfig for evaluation calls.
func BuildConfig() *GenerateContentConfig {
	temp := float32(0) // Deterministic one-word answers
	return &GenerateContentConfig{
		Temperature: &temp,
	}
}

// GenerativeClient abstracts the Gemini API for testing.
type GenerativeClient interface {
	GenerateContent(ctx context.Context, model string, contents []*Content, config *GenerateContentConfig) (*GenerateContentResponse, error)
}

// Content represents a message in a Gemini conversation.
type Content struct {
	Role  string // "user" or "model"
	Parts []*Part
}

// Part represents a part of a message.
type Part struct {
	Text string
}

// GenerateContentConfig holds configuration for content generation.
type GenerateContentConfig struct {
	SystemInstruction *Content
	Temperature       *float32
}

// GenerateContentResponse holds the response from content generation.
type GenerateContentResponse struct {
	Text string
}

// MockGenerativeClient is a mock implementation of GenerativeClient for testing.
type MockGenerativeClient struct {
	GenerateContentFn func(ctx context.Context, model string, contents []*Content, config *GenerateContentConfig) (*GenerateContentResponse, error)
}

func (m *MockGenerativeClient) GenerateContent(ctx context.Context, model string, contents []*Content, config *GenerateContentConfig) (*GenerateContentResponse, error) {
	return m.GenerateContentFn(ctx, model, contents, config)
}

// APIError represents an error from the Gemini API with HTTP status code.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// NewAPIError creates a new APIError with the given status code and message.
func NewAPIError(statusCode int, message string) *APIError {
	return &APIError{StatusCode: statusCode, Message: message}
}
