package dictionary

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

// mockSource implements Source for testing
type mockSource struct {
	name       string
	definition string
	err        error
	calls      int
}

func (m *mockSource) Lookup(ctx context.Context, word, language string) (string, error) {
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	return m.definition, nil
}

func (m *mockSource) Name() string { return m.name }

func TestRegistry(t *testing.T) {
	registry := NewRegistry()
	registry.Register(&mockSource{name: "b"})
	registry.Register(&mockSource{name: "a"})

	if _, err := registry.Get("a"); err != nil {
		t.Errorf("Get() unexpected error: %v", err)
	}
	if _, err := registry.Get("missing"); err == nil {
		t.Error("Expected error for unknown source")
	}
	if names := registry.Names(); !reflect.DeepEqual(names, []string{"a", "b"}) {
		t.Errorf("Names() = %v, want sorted names", names)
	}
}

func TestBreakerOpensOnConsecutiveFailures(t *testing.T) {
	inner := &mockSource{name: "flaky", err: errors.New("connection refused")}
	source := WithBreaker(inner)
	ctx := context.Background()

	// The breaker trips after six straight transport failures.
	for i := 0; i < 6; i++ {
		if _, err := source.Lookup(ctx, "word", "en"); errors.Is(err, ErrUnavailable) {
			t.Fatalf("Breaker opened too early on call %d", i+1)
		}
	}
	_, err := source.Lookup(ctx, "word", "en")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("Expected ErrUnavailable after the circuit opened, got %v", err)
	}
	if inner.calls != 6 {
		t.Errorf("Expected 6 backend calls, got %d", inner.calls)
	}
}

func TestBreakerIgnoresNotFound(t *testing.T) {
	inner := &mockSource{name: "sparse", err: ErrNotFound}
	source := WithBreaker(inner)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		_, err := source.Lookup(ctx, "word", "en")
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("Expected ErrNotFound on call %d, got %v", i+1, err)
		}
	}
	if inner.calls != 10 {
		t.Errorf("Expected 10 backend calls, got %d", inner.calls)
	}
}

func TestBreakerPassesResultsThrough(t *testing.T) {
	inner := &mockSource{name: "ok", definition: "a dwelling"}
	source := WithBreaker(inner)

	definition, err := source.Lookup(context.Background(), "casa", "es")
	if err != nil {
		t.Fatalf("Lookup() unexpected error: %v", err)
	}
	if definition != "a dwelling" {
		t.Errorf("Lookup() = %q, want %q", definition, "a dwelling")
	}
	if source.Name() != "ok" {
		t.Errorf("Name() = %q, want %q", source.Name(), "ok")
	}
}
