// Package dictionary provides the lookup capability over heterogeneous
// dictionary backends.
package dictionary

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/sony/gobreaker"
)

// ErrUnavailable indicates the backend could not serve the lookup at all
// (network failure, open circuit, bad response). It is isolated per
// dictionary and never aborts a lookup that already has a primary result.
var ErrUnavailable = errors.New("dictionary unavailable")

// ErrNotFound indicates the backend answered but has no entry for the word.
var ErrNotFound = errors.New("word not found")

// Source is the single capability all dictionary backends satisfy.
type Source interface {
	// Lookup returns the definition of word in the given language.
	Lookup(ctx context.Context, word, language string) (string, error)

	// Name returns the source name as shown in configuration.
	Name() string
}

// Registry holds the configured dictionary sources keyed by name.
type Registry struct {
	sources map[string]Source
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{sources: make(map[string]Source)}
}

// Register adds a source, replacing any previous source of the same name.
func (r *Registry) Register(s Source) {
	r.sources[s.Name()] = s
}

// Get returns the source registered under name.
func (r *Registry) Get(name string) (Source, error) {
	s, ok := r.sources[name]
	if !ok {
		return nil, fmt.Errorf("unknown dictionary: %s", name)
	}
	return s, nil
}

// Names returns all registered source names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.sources))
	for name := range r.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// breakerSource wraps a network source with a circuit breaker so a dead
// backend fails fast instead of stalling every interactive lookup.
type breakerSource struct {
	inner Source
	cb    *gobreaker.CircuitBreaker
}

// WithBreaker wraps a source with a circuit breaker.
func WithBreaker(s Source) Source {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        s.Name(),
		MaxRequests: 1,
		// A word the backend simply does not know is a valid answer,
		// not a backend failure.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNotFound)
		},
	})
	return &breakerSource{inner: s, cb: cb}
}

func (b *breakerSource) Name() string { return b.inner.Name() }

func (b *breakerSource) Lookup(ctx context.Context, word, language string) (string, error) {
	v, err := b.cb.Execute(func() (interface{}, error) {
		return b.inner.Lookup(ctx, word, language)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", fmt.Errorf("%w: %s circuit open", ErrUnavailable, b.inner.Name())
		}
		return "", err
	}
	return v.(string), nil
}
