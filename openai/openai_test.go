package openai_test

import (
	"context"
	"errors"
	"testing"

	"github.com/fwojciec/selfeval"
	"github.com/fwojciec/selfeval/openai"
	goopenai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chatClient is a mock implementation of openai.ChatClient.
type chatClient struct {
	CreateChatCompletionFn func(ctx context.Context, req goopenai.ChatCompletionRequest) (goopenai.ChatCompletionResponse, error)
}

func (c *chatClient) CreateChatCompletion(ctx context.Context, req goopenai.ChatCompletionRequest) (goopenai.ChatCompletionResponse, error) {
	return c.CreateChatCompletionFn(ctx, req)
}

func reply(content string) goopenai.ChatCompletionResponse {
	return goopenai.ChatCompletionResponse{
		Choices: []goopenai.ChatCompletionChoice{{
			Message:      goopenai.ChatCompletionMessage{Role: goopenai.ChatMessageRoleAssistant, Content: content},
			FinishReason: goopenai.FinishReasonStop,
		}},
	}
}

func TestCompleter_Complete_SendsModelAndMessages(t *testing.T) {
	t.Parallel()

	var got goopenai.ChatCompletionRequest
	client := &chatClient{
		CreateChatCompletionFn: func(_ context.Context, req goopenai.ChatCompletionRequest) (goopenai.ChatCompletionResponse, error) {
			got = req
			return reply(" Yes\n"), nil
		},
	}

	resp, err := openai.NewCompleter(client).Complete(context.Background(), selfeval.CompletionRequest{
		Model:    "gpt-4o-mini",
		Messages: []selfeval.Message{{Role: selfeval.RoleUser, Content: "Is it?"}},
	})

	require.NoError(t, err)
	assert.Equal(t, " Yes\n", resp.Text)
	assert.Equal(t, "gpt-4o-mini", got.Model)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, goopenai.ChatMessageRoleUser, got.Messages[0].Role)
	assert.Equal(t, "Is it?", got.Messages[0].Content)
}

func TestCompleter_Complete_DefaultsModel(t *testing.T) {
	t.Parallel()

	var got goopenai.ChatCompletionRequest
	client := &chatClient{
		CreateChatCompletionFn: func(_ context.Context, req goopenai.ChatCompletionRequest) (goopenai.ChatCompletionResponse, error) {
			got = req
			return reply("no"), nil
		},
	}

	_, err := openai.NewCompleter(client).Complete(context.Background(), selfeval.CompletionRequest{})

	require.NoError(t, err)
	assert.Equal(t, "gpt-3.5-turbo", got.Model)
}

func TestCompleter_Complete_WrapsAPIError(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection refused")
	client := &chatClient{
		CreateChatCompletionFn: func(context.Context, goopenai.ChatCompletionRequest) (goopenai.ChatCompletionResponse, error) {
			return goopenai.ChatCompletionResponse{}, cause
		},
	}

	_, err := openai.NewCompleter(client).Complete(context.Background(), selfeval.CompletionRequest{})

	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
}

func TestCompleter_Complete_NoChoices(t *testing.T) {
	t.Parallel()

	client := &chatClient{
		CreateChatCompletionFn: func(context.Context, goopenai.ChatCompletionRequest) (goopenai.ChatCompletionResponse, error) {
			return goopenai.ChatCompletionResponse{}, nil
		},
	}

	_, err := openai.NewCompleter(client).Complete(context.Background(), selfeval.CompletionRequest{})

	assert.ErrorIs(t, err, openai.ErrNoChoices)
}

func TestNewClient_RequiresAPIKey(t *testing.T) {
	t.Parallel()

	_, err := openai.NewClient(openai.Config{})
	require.Error(t, err)

	client, err := openai.NewClient(openai.Config{APIKey: "sk-test", BaseURL: "http://localhost:11434/v1"})
	require.NoError(t, err)
	assert.NotNil(t, client)
}
