package selfeval

import "errors"

// ErrMissingContext is returned when metadata holds neither a validation
// question nor an original prompt to derive one from.
var ErrMissingContext = errors.New("missing validation context")

// ErrEmptyCandidate is returned when the text to evaluate is blank.
var ErrEmptyCandidate = errors.New("empty candidate output")

var errNilCompletion = errors.New("backend returned no completion")

// UpstreamError wraps a failure of the completion backend.
type UpstreamError struct {
	Model string
	Err   error
}

func (e *UpstreamError) Error() string {
	return "selfeval: error getting response from the LLM: " + e.Err.Error()
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// ValidationError reports a failed outcome as an error.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return "Validation failed for field with errors: " + e.Message
}
