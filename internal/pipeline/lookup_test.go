package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/kristofgazso/vocabsieve/internal/dictionary"
	"github.com/kristofgazso/vocabsieve/internal/history"
	"github.com/kristofgazso/vocabsieve/internal/lemma"
)

// mockDict implements dictionary.Source for testing
type mockDict struct {
	name       string
	definition string
	err        error
	calls      int
	lastWord   string
}

func (m *mockDict) Lookup(ctx context.Context, word, language string) (string, error) {
	m.calls++
	m.lastWord = word
	if m.err != nil {
		return "", m.err
	}
	return m.definition, nil
}

func (m *mockDict) Name() string { return m.name }

// mockRecorder captures audit rows
type mockRecorder struct {
	lookups []history.Lookup
	notes   []history.Note
}

func (m *mockRecorder) RecordLookup(l history.Lookup) error {
	m.lookups = append(m.lookups, l)
	return nil
}

func (m *mockRecorder) RecordNote(n history.Note) error {
	m.notes = append(m.notes, n)
	return nil
}

// mapLemma implements lemma.Lemmatizer with a fixed mapping
type mapLemma map[string]string

func (m mapLemma) Lemmatize(word string) string {
	if base, ok := m[word]; ok {
		return base
	}
	return word
}

func (m mapLemma) Name() string { return "map" }

func newTestOrchestrator(recorder Recorder, dicts ...*mockDict) *Orchestrator {
	registry := dictionary.NewRegistry()
	for _, d := range dicts {
		registry.Register(d)
	}
	return NewOrchestrator(registry, lemma.Passthrough{}, recorder)
}

func TestLookupPrimaryOnly(t *testing.T) {
	primary := &mockDict{name: "Primary", definition: "a dwelling"}
	recorder := &mockRecorder{}
	orch := newTestOrchestrator(recorder, primary)

	result, failure := orch.Lookup(context.Background(), Request{
		Word:        "casa",
		Language:    "es",
		PrimaryDict: "Primary",
	})

	if failure != nil {
		t.Fatalf("Lookup() unexpected failure: %v", failure.Reason)
	}
	if result.Definition != "a dwelling" {
		t.Errorf("Expected definition 'a dwelling', got %q", result.Definition)
	}
	if result.HasDefinition2 {
		t.Error("Expected no secondary definition")
	}
	if len(recorder.lookups) != 1 {
		t.Fatalf("Expected 1 audit row, got %d", len(recorder.lookups))
	}
	row := recorder.lookups[0]
	if !row.Success || row.Dictionary != "Primary" || row.Word != "casa" {
		t.Errorf("Unexpected audit row: %+v", row)
	}
}

func TestLookupSecondarySuccess(t *testing.T) {
	primary := &mockDict{name: "Primary", definition: "a dwelling"}
	secondary := &mockDict{name: "Secondary", definition: "house"}
	recorder := &mockRecorder{}
	orch := newTestOrchestrator(recorder, primary, secondary)

	result, failure := orch.Lookup(context.Background(), Request{
		Word:          "casa",
		Language:      "es",
		PrimaryDict:   "Primary",
		SecondaryDict: "Secondary",
	})

	if failure != nil {
		t.Fatalf("Lookup() unexpected failure: %v", failure.Reason)
	}
	if !result.HasDefinition2 || result.Definition2 != "house" {
		t.Errorf("Expected secondary definition 'house', got %q", result.Definition2)
	}
	if len(recorder.lookups) != 2 {
		t.Fatalf("Expected 2 audit rows, got %d", len(recorder.lookups))
	}
	if recorder.lookups[1].Dictionary != "Secondary" || !recorder.lookups[1].Success {
		t.Errorf("Unexpected secondary audit row: %+v", recorder.lookups[1])
	}
}

func TestLookupPrimaryFailureSkipsSecondary(t *testing.T) {
	primary := &mockDict{name: "Primary", err: dictionary.ErrNotFound}
	secondary := &mockDict{name: "Secondary", definition: "house"}
	recorder := &mockRecorder{}
	orch := newTestOrchestrator(recorder, primary, secondary)

	result, failure := orch.Lookup(context.Background(), Request{
		Word:          "casa",
		Language:      "es",
		PrimaryDict:   "Primary",
		SecondaryDict: "Secondary",
	})

	if result != nil {
		t.Errorf("Expected nil result, got %+v", result)
	}
	if failure == nil {
		t.Fatal("Expected a failure")
	}
	if secondary.calls != 0 {
		t.Errorf("Expected 0 secondary calls, got %d", secondary.calls)
	}
	if len(recorder.lookups) != 1 {
		t.Fatalf("Expected 1 audit row, got %d", len(recorder.lookups))
	}
	if recorder.lookups[0].Success {
		t.Error("Expected failed audit row for primary")
	}
}

func TestLookupSecondaryFailureKeepsPrimary(t *testing.T) {
	primary := &mockDict{name: "Primary", definition: "a dwelling"}
	secondary := &mockDict{name: "Secondary", err: errors.New("backend down")}
	recorder := &mockRecorder{}
	orch := newTestOrchestrator(recorder, primary, secondary)

	result, failure := orch.Lookup(context.Background(), Request{
		Word:          "casa",
		Language:      "es",
		PrimaryDict:   "Primary",
		SecondaryDict: "Secondary",
	})

	if failure != nil {
		t.Fatalf("Lookup() unexpected failure: %v", failure.Reason)
	}
	if result.HasDefinition2 {
		t.Error("Expected no secondary definition after secondary failure")
	}
	if result.Definition != "a dwelling" {
		t.Errorf("Expected primary definition to stand, got %q", result.Definition)
	}
	if len(recorder.lookups) != 2 {
		t.Fatalf("Expected 2 audit rows, got %d", len(recorder.lookups))
	}
	// The secondary row reflects the secondary's own outcome.
	if recorder.lookups[1].Success {
		t.Error("Expected failed audit row for secondary")
	}
}

func TestLookupStripsPunctAndLemmatizes(t *testing.T) {
	primary := &mockDict{name: "Primary", definition: "a dwelling"}
	registry := dictionary.NewRegistry()
	registry.Register(primary)
	recorder := &mockRecorder{}
	orch := NewOrchestrator(registry, mapLemma{"casas": "casa"}, recorder)

	result, failure := orch.Lookup(context.Background(), Request{
		Word:        "«casas,»",
		Language:    "es",
		Lemmatize:   true,
		PrimaryDict: "Primary",
	})

	if failure != nil {
		t.Fatalf("Lookup() unexpected failure: %v", failure.Reason)
	}
	if primary.lastWord != "casa" {
		t.Errorf("Expected dictionary queried with 'casa', got %q", primary.lastWord)
	}
	if result.Word != "casa" {
		t.Errorf("Expected result word 'casa', got %q", result.Word)
	}
	if recorder.lookups[0].Word != "casas" {
		t.Errorf("Expected audit row to carry the entered form 'casas', got %q", recorder.lookups[0].Word)
	}
	if !recorder.lookups[0].Lemmatize {
		t.Error("Expected audit row to record lemmatization")
	}
}

func TestLookupFailureCarriesUnlemmatizedWord(t *testing.T) {
	primary := &mockDict{name: "Primary", err: dictionary.ErrNotFound}
	registry := dictionary.NewRegistry()
	registry.Register(primary)
	recorder := &mockRecorder{}
	orch := NewOrchestrator(registry, mapLemma{"running": "run"}, recorder)

	result, failure := orch.Lookup(context.Background(), Request{
		Word:        "running",
		Language:    "en",
		Lemmatize:   true,
		PrimaryDict: "Primary",
	})

	if result != nil || failure == nil {
		t.Fatal("Expected a failure")
	}
	if failure.Word != "running" {
		t.Errorf("Expected failure word 'running', got %q", failure.Word)
	}
	if primary.lastWord != "run" {
		t.Errorf("Expected dictionary queried with the lemma 'run', got %q", primary.lastWord)
	}
	if len(recorder.lookups) != 1 {
		t.Fatalf("Expected 1 audit row, got %d", len(recorder.lookups))
	}
	if recorder.lookups[0].Word != "running" {
		t.Errorf("Expected audit row word 'running', got %q", recorder.lookups[0].Word)
	}
}

func TestLookupUnknownDictionary(t *testing.T) {
	recorder := &mockRecorder{}
	orch := newTestOrchestrator(recorder)

	result, failure := orch.Lookup(context.Background(), Request{
		Word:        "casa",
		Language:    "es",
		PrimaryDict: "Missing",
	})

	if result != nil || failure == nil {
		t.Fatal("Expected a failure for an unknown dictionary")
	}
}
