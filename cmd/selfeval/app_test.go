package main_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	lg "github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/selfeval"
	main "github.com/fwojciec/selfeval/cmd/selfeval"
	"github.com/fwojciec/selfeval/lipgloss"
	"github.com/fwojciec/selfeval/mock"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func asciiReporter() *lipgloss.Reporter {
	return lipgloss.NewReporter(lg.NewRenderer(nil, termenv.WithProfile(termenv.Ascii)))
}

func TestApp_Check_Pass(t *testing.T) {
	t.Parallel()

	var gotValue string
	var gotMetadata selfeval.Metadata
	var buf bytes.Buffer
	app := &main.App{
		Validator: &mock.Validator{
			ValidateFn: func(_ context.Context, value string, md selfeval.Metadata) (*selfeval.Outcome, error) {
				gotValue = value
				gotMetadata = md
				return &selfeval.Outcome{Passed: true, Verdict: selfeval.VerdictYes}, nil
			},
		},
		Reporter: asciiReporter(),
		Output:   &buf,
	}

	md := selfeval.Metadata{selfeval.KeyOriginalPrompt: "What is the capital of Missouri?"}
	outcome, err := app.Check(context.Background(), "Jefferson City", md)

	require.NoError(t, err)
	assert.True(t, outcome.Passed)
	assert.Equal(t, "Jefferson City", gotValue)
	assert.Equal(t, md, gotMetadata)
	assert.Equal(t, " PASS  yes Jefferson City\n", buf.String())
}

func TestApp_Check_FailReturnsValidationError(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	app := &main.App{
		Validator: &mock.Validator{
			ValidateFn: func(context.Context, string, selfeval.Metadata) (*selfeval.Outcome, error) {
				return &selfeval.Outcome{Verdict: selfeval.VerdictNo, Message: selfeval.DefaultNoMessage}, nil
			},
		},
		Reporter: asciiReporter(),
		Output:   &buf,
	}

	outcome, err := app.Check(context.Background(), "Paris", selfeval.Metadata{})

	require.Error(t, err)
	var validationErr *selfeval.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, selfeval.DefaultNoMessage, validationErr.Message)
	require.NotNil(t, outcome)
	assert.False(t, outcome.Passed)
	assert.Contains(t, buf.String(), "FAIL")
	assert.Contains(t, buf.String(), selfeval.DefaultNoMessage)
}

func TestApp_Check_EmptyInput(t *testing.T) {
	t.Parallel()

	app := &main.App{
		Validator: &mock.Validator{
			ValidateFn: func(context.Context, string, selfeval.Metadata) (*selfeval.Outcome, error) {
				t.Fatal("validator should not be called")
				return nil, nil
			},
		},
		Reporter: asciiReporter(),
		Output:   &bytes.Buffer{},
	}

	_, err := app.Check(context.Background(), "", selfeval.Metadata{})

	assert.ErrorIs(t, err, main.ErrNoInput)
}

func TestApp_Check_ValidatorError(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	app := &main.App{
		Validator: &mock.Validator{
			ValidateFn: func(context.Context, string, selfeval.Metadata) (*selfeval.Outcome, error) {
				return nil, selfeval.ErrMissingContext
			},
		},
		Reporter: asciiReporter(),
		Output:   &buf,
	}

	_, err := app.Check(context.Background(), "text", selfeval.Metadata{})

	assert.ErrorIs(t, err, selfeval.ErrMissingContext)
	assert.Empty(t, buf.String())
}

func TestApp_Check_AppliesTimeout(t *testing.T) {
	t.Parallel()

	app := &main.App{
		Validator: &mock.Validator{
			ValidateFn: func(ctx context.Context, _ string, _ selfeval.Metadata) (*selfeval.Outcome, error) {
				<-ctx.Done()
				return nil, ctx.Err()
			},
		},
		Reporter: asciiReporter(),
		Output:   &bytes.Buffer{},
		Timeout:  10 * time.Millisecond,
	}

	_, err := app.Check(context.Background(), "text", selfeval.Metadata{})

	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}
