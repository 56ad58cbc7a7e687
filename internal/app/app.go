// Package app wires the configured components into a runnable pipeline.
package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/kristofgazso/vocabsieve/internal"
	"github.com/kristofgazso/vocabsieve/internal/audio"
	"github.com/kristofgazso/vocabsieve/internal/clipboard"
	"github.com/kristofgazso/vocabsieve/internal/config"
	"github.com/kristofgazso/vocabsieve/internal/dictionary"
	"github.com/kristofgazso/vocabsieve/internal/frequency"
	"github.com/kristofgazso/vocabsieve/internal/history"
	"github.com/kristofgazso/vocabsieve/internal/lemma"
	"github.com/kristofgazso/vocabsieve/internal/note"
	"github.com/kristofgazso/vocabsieve/internal/pipeline"
	"github.com/kristofgazso/vocabsieve/internal/server"
)

// App holds a fully wired pipeline and its listeners.
type App struct {
	cfg      config.Config
	pipeline *pipeline.Pipeline
	recorder *history.Recorder
	server   *server.Server
}

// New builds all components from the session configuration.
func New(cfg config.Config) (*App, error) {
	recorder, err := history.Open(cfg.HistoryPath())
	if err != nil {
		return nil, err
	}

	lem := lemma.ForLanguage(cfg.TargetLanguage)

	var segmenter clipboard.Segmenter
	if j, ok := lem.(*lemma.Japanese); ok {
		segmenter = j
	}
	classifier := clipboard.NewClassifier(cfg.TargetLanguage, segmenter)

	dicts := dictionary.NewRegistry()
	rps := cfg.RequestsPerSecond
	dicts.Register(dictionary.WithBreaker(
		dictionary.NewWiktionary("Wiktionary (English)", "", rps)))
	dicts.Register(dictionary.WithBreaker(
		dictionary.NewLingva("Google Translate", cfg.LingvaAPI, cfg.TranslateInto, rps)))
	if cfg.CustomURL != "" {
		dicts.Register(dictionary.WithBreaker(
			dictionary.NewCustom("Custom (URL)", cfg.CustomURL, rps)))
	}
	for name, path := range cfg.LocalDicts {
		dicts.Register(dictionary.NewLocal(name, path))
	}

	freq := frequency.NewResolver(lem)
	for name, path := range cfg.FreqLists {
		freq.Register(frequency.NewFileList(name, path))
	}

	selector := audio.NewSelector(cfg.AudioCacheDir())
	if cfg.AudioServer != "" {
		selector.Register(audio.NewHTTPSource("Server", cfg.AudioServer, rps))
	}
	if cfg.CustomSources != "" {
		sources, err := audio.LoadCustomSources(cfg.CustomSources)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to load custom audio sources: %v\n", err)
		}
		for _, s := range sources {
			selector.Register(s)
		}
	}
	if cfg.OpenAIKey != "" {
		tts, err := audio.NewOpenAISource(cfg.OpenAIKey, "", 0)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to set up TTS source: %v\n", err)
		} else {
			selector.Register(tts)
		}
	}

	var anki pipeline.AnkiClient
	if cfg.Anki.Enabled {
		anki = note.NewAnkiConnect(cfg.Anki.API)
	}

	orch := pipeline.NewOrchestrator(dicts, lem, recorder)
	pipe := pipeline.New(cfg, classifier, orch, freq, selector,
		note.NewAssembler(cfg), anki, recorder)

	return &App{
		cfg:      cfg,
		pipeline: pipe,
		recorder: recorder,
		server:   server.New(cfg, pipe, recorder),
	}, nil
}

// Close releases the history database.
func (a *App) Close() error { return a.recorder.Close() }

// Serve runs the pipeline worker and the HTTP listeners until ctx is
// canceled, printing pipeline events as they arrive.
func (a *App) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go a.pipeline.Run(ctx)
	go a.printEvents(ctx)

	lookups, _ := a.recorder.CountLookupsToday()
	notes, _ := a.recorder.CountNotesToday()
	fmt.Printf("VocabSieve v%s - L:%d N:%d\n", internal.Version, lookups, notes)
	if a.cfg.API.Enabled {
		fmt.Printf("Note API listening on %s:%d\n", a.cfg.API.Host, a.cfg.API.Port)
	}
	if a.cfg.Reader.Enabled {
		fmt.Printf("Reader endpoint listening on %s:%d\n", a.cfg.Reader.Host, a.cfg.Reader.Port)
	}

	return a.server.Run(ctx)
}

// LookupWord performs a one-shot lookup and prints the outcome.
func (a *App) LookupWord(ctx context.Context, word string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go a.pipeline.Run(ctx)
	a.pipeline.Lookup(word, true)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-a.pipeline.Events():
			done, err := a.printLookup(event)
			if done {
				return err
			}
		}
	}
}

// printLookup renders one event of a one-shot lookup. It reports whether
// the lookup has concluded.
func (a *App) printLookup(event pipeline.Event) (bool, error) {
	e, ok := event.(pipeline.LookupCompleted)
	if !ok {
		return false, nil
	}
	if e.Failure != nil {
		return true, fmt.Errorf("lookup failed: %s", e.Failure.Reason)
	}
	fmt.Printf("%s\n\n%s\n", e.Result.Word, e.Result.Definition)
	if e.Result.HasDefinition2 {
		fmt.Printf("\n%s\n", e.Result.Definition2)
	}
	if e.Frequency != nil {
		fmt.Printf("\nFrequency: %s\n", e.Frequency.Stars)
	}
	for _, c := range e.Candidates {
		fmt.Printf("Pronunciation: %s (%s)\n", c.Label, c.Source)
	}
	return true, nil
}

func (a *App) printEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-a.pipeline.Events():
			switch e := event.(type) {
			case pipeline.Status:
				fmt.Println(e.Message)
			case pipeline.SentenceChanged:
				if e.Word != "" {
					fmt.Printf("Sentence: %s (word: %s)\n", e.Sentence, e.Word)
				}
			case pipeline.NoteSubmitted:
				if !e.Success && e.Reason != "" {
					fmt.Fprintf(os.Stderr, "Note submission failed: %s\n", e.Reason)
				}
			}
		}
	}
}

// ExportLookups writes the lookup history as CSV to path.
func (a *App) ExportLookups(path string) error {
	return a.exportCSV(path, a.recorder.ExportLookupsCSV)
}

// ExportNotes writes the note history as CSV to path.
func (a *App) ExportNotes(path string) error {
	return a.exportCSV(path, a.recorder.ExportNotesCSV)
}

func (a *App) exportCSV(path string, write func(w io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer f.Close()
	if err := write(f); err != nil {
		return fmt.Errorf("failed to export history: %w", err)
	}
	return nil
}
