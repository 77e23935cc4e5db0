package prometheus_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/fwojciec/selfeval"
	"github.com/fwojciec/selfeval/mock"
	"github.com/fwojciec/selfeval/prometheus"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func outcomes(results ...func() (*selfeval.Outcome, error)) *mock.Validator {
	i := 0
	return &mock.Validator{
		ValidateFn: func(context.Context, string, selfeval.Metadata) (*selfeval.Outcome, error) {
			r := results[i]
			i++
			return r()
		},
	}
}

func TestValidator_CountsVerdictsAndErrors(t *testing.T) {
	t.Parallel()

	inner := outcomes(
		func() (*selfeval.Outcome, error) {
			return &selfeval.Outcome{Passed: true, Verdict: selfeval.VerdictYes}, nil
		},
		func() (*selfeval.Outcome, error) {
			return &selfeval.Outcome{Passed: false, Verdict: selfeval.VerdictNo}, nil
		},
		func() (*selfeval.Outcome, error) {
			return &selfeval.Outcome{Passed: false, Verdict: selfeval.VerdictNo}, nil
		},
		func() (*selfeval.Outcome, error) {
			return nil, selfeval.ErrMissingContext
		},
		func() (*selfeval.Outcome, error) {
			return nil, &selfeval.UpstreamError{Err: errors.New("boom")}
		},
		func() (*selfeval.Outcome, error) {
			return nil, errors.New("other")
		},
	)

	reg := prom.NewPedanticRegistry()
	v, err := prometheus.NewValidator(inner, reg)
	require.NoError(t, err)

	for range 6 {
		_, _ = v.Validate(context.Background(), "x", nil)
	}

	assert.Equal(t, 1, testutil.CollectAndCount(reg, "selfeval_validation_duration_seconds"))
	assert.Equal(t, 2, testutil.CollectAndCount(reg, "selfeval_validations_total"))
	assert.Equal(t, 3, testutil.CollectAndCount(reg, "selfeval_validation_errors_total"))
}

func TestValidator_PassesThroughOutcome(t *testing.T) {
	t.Parallel()

	want := &selfeval.Outcome{Passed: false, Message: selfeval.DefaultUnsureMessage, Verdict: selfeval.VerdictUnsure}
	inner := outcomes(func() (*selfeval.Outcome, error) { return want, nil })

	v, err := prometheus.NewValidator(inner, prom.NewRegistry())
	require.NoError(t, err)

	got, err := v.Validate(context.Background(), "x", nil)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestNewValidator_DuplicateRegistrationFails(t *testing.T) {
	t.Parallel()

	reg := prom.NewRegistry()
	_, err := prometheus.NewValidator(&mock.Validator{}, reg)
	require.NoError(t, err)

	_, err = prometheus.NewValidator(&mock.Validator{}, reg)
	assert.Error(t, err)
}

func TestWriteTextfile(t *testing.T) {
	t.Parallel()

	inner := outcomes(func() (*selfeval.Outcome, error) {
		return &selfeval.Outcome{Passed: true, Verdict: selfeval.VerdictYes}, nil
	})
	reg := prom.NewRegistry()
	v, err := prometheus.NewValidator(inner, reg)
	require.NoError(t, err)
	_, err = v.Validate(context.Background(), "x", nil)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "selfeval.prom")
	require.NoError(t, prometheus.WriteTextfile(path, reg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `selfeval_validations_total{passed="true",verdict="yes"} 1`)
}
