// Package prometheus instruments validators with Prometheus metrics.
package prometheus

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/fwojciec/selfeval"
	prom "github.com/prometheus/client_golang/prometheus"
)

// Error kinds used as the "kind" label.
const (
	KindMissingContext = "missing_context"
	KindUpstream       = "upstream"
	KindOther          = "other"
)

// Compile-time interface verification.
var _ selfeval.Validator = (*Validator)(nil)

// Validator wraps a Validator and records metrics for every call.
type Validator struct {
	inner       selfeval.Validator
	validations *prom.CounterVec
	errors      *prom.CounterVec
	duration    prom.Histogram
}

// NewValidator creates an instrumented validator and registers its
// collectors with reg.
func NewValidator(inner selfeval.Validator, reg prom.Registerer) (*Validator, error) {
	v := &Validator{
		inner: inner,
		validations: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "selfeval",
			Name:      "validations_total",
			Help:      "Completed validations by verdict and result.",
		}, []string{"verdict", "passed"}),
		errors: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "selfeval",
			Name:      "validation_errors_total",
			Help:      "Validations that returned an error, by kind.",
		}, []string{"kind"}),
		duration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "selfeval",
			Name:      "validation_duration_seconds",
			Help:      "Time spent in a validation call, including the completion request.",
			Buckets:   prom.ExponentialBuckets(0.05, 2, 10),
		}),
	}

	for _, c := range []prom.Collector{v.validations, v.errors, v.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return v, nil
}

// Validate delegates to the inner validator and observes the result.
func (v *Validator) Validate(ctx context.Context, value string, md selfeval.Metadata) (*selfeval.Outcome, error) {
	start := time.Now()
	outcome, err := v.inner.Validate(ctx, value, md)
	v.duration.Observe(time.Since(start).Seconds())

	if err != nil {
		v.errors.WithLabelValues(errorKind(err)).Inc()
		return nil, err
	}
	v.validations.WithLabelValues(string(outcome.Verdict), strconv.FormatBool(outcome.Passed)).Inc()
	return outcome, nil
}

func errorKind(err error) string {
	var upstream *selfeval.UpstreamError
	switch {
	case errors.Is(err, selfeval.ErrMissingContext), errors.Is(err, selfeval.ErrEmptyCandidate):
		return KindMissingContext
	case errors.As(err, &upstream):
		return KindUpstream
	default:
		return KindOther
	}
}

// WriteTextfile writes the metrics gathered from g to path in the text
// exposition format, for the node_exporter textfile collector.
func WriteTextfile(path string, g prom.Gatherer) error {
	return prom.WriteToTextfile(path, g)
}
