package pipeline

import (
	"context"
	"regexp"

	"github.com/kristofgazso/vocabsieve/internal/dictionary"
	"github.com/kristofgazso/vocabsieve/internal/history"
	"github.com/kristofgazso/vocabsieve/internal/lemma"
)

// Request describes one user-triggered lookup.
type Request struct {
	Word          string
	Language      string
	Lemmatize     bool
	PrimaryDict   string
	SecondaryDict string
}

// Result is a successful lookup. Definition2 is set only when a secondary
// dictionary was configured and its own lookup succeeded.
type Result struct {
	Word           string
	Definition     string
	Definition2    string
	HasDefinition2 bool
}

// Failure is a failed primary lookup.
type Failure struct {
	Word   string
	Reason string
}

// Recorder is the audit log consumed by the orchestrator.
type Recorder interface {
	RecordLookup(history.Lookup) error
	RecordNote(history.Note) error
}

// wordPunct matches punctuation stripped from a word before lookup.
var wordPunct = regexp.MustCompile(`[«»…,.()\[\]_]`)

// Orchestrator drives one or two dictionary lookups per word.
type Orchestrator struct {
	dicts    *dictionary.Registry
	lem      lemma.Lemmatizer
	recorder Recorder
}

// NewOrchestrator creates a lookup orchestrator.
func NewOrchestrator(dicts *dictionary.Registry, lem lemma.Lemmatizer, recorder Recorder) *Orchestrator {
	return &Orchestrator{dicts: dicts, lem: lem, recorder: recorder}
}

// Lookup resolves a request into either a Result or a Failure.
//
// The primary dictionary is always queried first and gates the secondary:
// a failed primary makes a secondary query meaningless since both
// definitions must share the same word form. Exactly one audit row is
// recorded per dictionary actually queried, each reflecting that
// dictionary's own outcome. Audit rows and failures carry the stripped
// word as the user entered it; only the dictionary query and Result.Word
// use the lemmatized form.
func (o *Orchestrator) Lookup(ctx context.Context, req Request) (*Result, *Failure) {
	stripped := wordPunct.ReplaceAllString(req.Word, "")
	word := stripped
	if req.Lemmatize {
		word = o.lem.Lemmatize(stripped)
	}

	definition, err := o.lookupOne(ctx, word, req.Language, req.PrimaryDict)
	o.record(req, stripped, definition, req.PrimaryDict, err == nil)
	if err != nil {
		return nil, &Failure{Word: stripped, Reason: err.Error()}
	}

	result := &Result{Word: word, Definition: definition}
	if req.SecondaryDict == "" {
		return result, nil
	}

	definition2, err := o.lookupOne(ctx, word, req.Language, req.SecondaryDict)
	o.record(req, stripped, definition2, req.SecondaryDict, err == nil)
	if err != nil {
		// The primary result stands on its own; the secondary failure
		// is already in the audit log.
		return result, nil
	}
	result.Definition2 = definition2
	result.HasDefinition2 = true
	return result, nil
}

func (o *Orchestrator) lookupOne(ctx context.Context, word, language, dict string) (string, error) {
	source, err := o.dicts.Get(dict)
	if err != nil {
		return "", err
	}
	return source.Lookup(ctx, word, language)
}

func (o *Orchestrator) record(req Request, word, definition, dict string, success bool) {
	if o.recorder == nil {
		return
	}
	// Audit failures must never abort the lookup itself.
	_ = o.recorder.RecordLookup(history.Lookup{
		Word:       word,
		Definition: definition,
		Language:   req.Language,
		Lemmatize:  req.Lemmatize,
		Dictionary: dict,
		Success:    success,
	})
}
