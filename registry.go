package selfeval

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ResponsivenessCheckName is the registered name of the Checker.
const ResponsivenessCheckName = "guardrails/responsiveness_check"

// Registry errors.
var (
	ErrUnknownValidator   = errors.New("unknown validator")
	ErrDuplicateValidator = errors.New("validator already registered")
)

// Factory builds a Validator from a completion backend and configuration.
type Factory func(completer Completer, cfg Config) Validator

// Registry maps validator names to factories. Hosts register validators
// explicitly at startup.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory under name.
func (r *Registry) Register(name string, f Factory) error {
	if name == "" {
		return errors.New("validator name must not be empty")
	}
	if f == nil {
		return fmt.Errorf("validator %q: nil factory", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.factories[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateValidator, name)
	}
	r.factories[name] = f
	return nil
}

// New builds the validator registered under name.
func (r *Registry) New(name string, completer Completer, cfg Config) (Validator, error) {
	r.mu.RLock()
	f, ok := r.factories[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownValidator, name)
	}
	return f(completer, cfg), nil
}

// Names returns the registered validator names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RegisterDefaults registers the validators provided by this package.
// Checker options apply to every validator the defaults build.
func RegisterDefaults(r *Registry, opts ...CheckerOption) error {
	return r.Register(ResponsivenessCheckName, func(completer Completer, cfg Config) Validator {
		return NewChecker(completer, cfg, opts...)
	})
}
