// Package gemini provides a selfeval.Completer backed by Google Gemini.
package gemini

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

// Compile-time check that Client implements GenerativeClient.
var _ GenerativeClient = (*Client)(nil)

// Client adapts *genai.Client to GenerativeClient.
type Client struct {
	models *genai.Models
}

// NewClient creates a Gemini API client authenticated with apiKey.
func NewClient(ctx context.Context, apiKey string) (*Client, error) {
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	return &Client{models: c.Models}, nil
}

// GenerateContent implements GenerativeClient. A response without candidates
// is returned as nil.
func (c *Client) GenerateContent(ctx context.Context, model string, contents []*Content, config *GenerateContentConfig) (*GenerateContentResponse, error) {
	in := make([]*genai.Content, 0, len(contents))
	for _, content := range contents {
		in = append(in, toGenai(content))
	}

	result, err := c.models.GenerateContent(ctx, model, in, toGenaiConfig(config))
	if err != nil {
		return nil, wrapAPIError(err)
	}
	if result == nil || len(result.Candidates) == 0 {
		return nil, nil
	}
	return &GenerateContentResponse{Text: result.Text()}, nil
}

func toGenai(c *Content) *genai.Content {
	if c == nil {
		return nil
	}
	out := &genai.Content{Role: c.Role, Parts: make([]*genai.Part, 0, len(c.Parts))}
	for _, p := range c.Parts {
		out.Parts = append(out.Parts, genai.NewPartFromText(p.Text))
	}
	return out
}

func toGenaiConfig(config *GenerateContentConfig) *genai.GenerateContentConfig {
	if config == nil {
		return nil
	}
	return &genai.GenerateContentConfig{
		Temperature:       config.Temperature,
		SystemInstruction: toGenai(config.SystemInstruction),
	}
}

// wrapAPIError keeps the HTTP status of a genai.APIError.
func wrapAPIError(err error) error {
	var apiErr *genai.APIError
	if !errors.As(err, &apiErr) {
		return err
	}
	return NewAPIError(apiErr.Code, fmt.Sprintf("gemini API error (HTTP %d): %s", apiErr.Code, apiErr.Message))
}
