// Package pipeline coordinates the clipboard-to-note lookup flow.
//
// All mutations of the in-flight note state go through a single command
// queue processed by one worker goroutine. The interactive surface and
// the embedded listener endpoints enqueue the same commands, so every
// caller gets identical formatting and recording behavior.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/kristofgazso/vocabsieve/internal/audio"
	"github.com/kristofgazso/vocabsieve/internal/clipboard"
	"github.com/kristofgazso/vocabsieve/internal/config"
	"github.com/kristofgazso/vocabsieve/internal/frequency"
	"github.com/kristofgazso/vocabsieve/internal/history"
	"github.com/kristofgazso/vocabsieve/internal/note"
)

// AnkiClient submits assembled notes to the flashcard service.
type AnkiClient interface {
	AddNote(ctx context.Context, payload *note.Payload) (int64, error)
}

// Pipeline owns the in-flight note state and the command queue.
type Pipeline struct {
	cfg        config.Config
	classifier *clipboard.Classifier
	orch       *Orchestrator
	freq       *frequency.Resolver
	selector   *audio.Selector
	assembler  *note.Assembler
	anki       AnkiClient
	recorder   Recorder

	commands chan command
	events   chan Event
	seq      atomic.Uint64

	// In-flight note state, owned exclusively by the Run worker.
	sentence   string
	word       string
	result     *Result
	freqRecord *frequency.Record
	candidates []audio.Candidate
	imagePath  string
}

type command interface{ isCommand() }

type clipboardCmd struct{ text string }
type lookupCmd struct {
	word      string
	lemmatize bool
	seq       uint64
}
type selectAudioCmd struct{ index int }
type setImageCmd struct{ path string }
type createNoteCmd struct{ extraTags []string }
type noteRequestCmd struct {
	sentence   string
	word       string
	definition string
	tags       []string
}

func (clipboardCmd) isCommand()   {}
func (lookupCmd) isCommand()      {}
func (selectAudioCmd) isCommand() {}
func (setImageCmd) isCommand()    {}
func (createNoteCmd) isCommand()  {}
func (noteRequestCmd) isCommand() {}

// New creates a pipeline. The frequency resolver and anki client may be
// nil when the corresponding collaborator is disabled.
func New(cfg config.Config, classifier *clipboard.Classifier, orch *Orchestrator,
	freq *frequency.Resolver, selector *audio.Selector, assembler *note.Assembler,
	anki AnkiClient, recorder Recorder) *Pipeline {
	return &Pipeline{
		cfg:        cfg,
		classifier: classifier,
		orch:       orch,
		freq:       freq,
		selector:   selector,
		assembler:  assembler,
		anki:       anki,
		recorder:   recorder,
		commands:   make(chan command, 16),
		events:     make(chan Event, 64),
	}
}

// Events is the typed outcome stream for subscribers.
func (p *Pipeline) Events() <-chan Event { return p.events }

// HandleClipboard enqueues classification of raw clipboard text.
func (p *Pipeline) HandleClipboard(text string) {
	p.commands <- clipboardCmd{text: text}
}

// Lookup enqueues a lookup of word. Newer lookups supersede older ones:
// a result arriving after a newer request has been enqueued is dropped.
func (p *Pipeline) Lookup(word string, lemmatize bool) {
	p.commands <- lookupCmd{word: word, lemmatize: lemmatize, seq: p.seq.Add(1)}
}

// SelectAudio enqueues selection of the i-th pronunciation candidate.
func (p *Pipeline) SelectAudio(index int) {
	p.commands <- selectAudioCmd{index: index}
}

// SetImage enqueues attaching a local image to the in-flight note.
func (p *Pipeline) SetImage(path string) {
	p.commands <- setImageCmd{path: path}
}

// CreateNote enqueues assembly and submission of the in-flight note.
func (p *Pipeline) CreateNote(extraTags []string) {
	p.commands <- createNoteCmd{extraTags: extraTags}
}

// HandleNoteRequest enqueues an externally-submitted note. It runs
// through the same assemble-and-submit path as interactive creation.
func (p *Pipeline) HandleNoteRequest(sentence, word, definition string, tags []string) {
	p.commands <- noteRequestCmd{sentence: sentence, word: word, definition: definition, tags: tags}
}

// Run processes commands until ctx is canceled.
func (p *Pipeline) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case cmd := <-p.commands:
			switch c := cmd.(type) {
			case clipboardCmd:
				p.handleClipboard(ctx, c.text)
			case lookupCmd:
				p.runLookup(ctx, c.word, c.lemmatize, c.seq)
			case selectAudioCmd:
				p.handleSelectAudio(ctx, c.index)
			case setImageCmd:
				p.imagePath = c.path
			case createNoteCmd:
				p.handleCreateNote(ctx, c.extraTags, nil)
			case noteRequestCmd:
				p.handleCreateNote(ctx, c.tags, &c)
			}
		}
	}
}

func (p *Pipeline) handleClipboard(ctx context.Context, text string) {
	payload := p.classifier.Classify(text)
	switch payload.Kind {
	case clipboard.Structured:
		p.sentence = payload.Sentence
		p.word = payload.Word
		p.emit(SentenceChanged{Sentence: p.sentence, Word: p.word})
		p.runLookup(ctx, payload.Word, true, p.seq.Add(1))
	case clipboard.SingleWord:
		if !p.cfg.SingleWordLookups {
			p.sentence = payload.Text
			p.emit(SentenceChanged{Sentence: p.sentence})
			return
		}
		p.sentence = payload.Text
		p.word = payload.Word
		p.emit(SentenceChanged{Sentence: p.sentence, Word: p.word})
		p.runLookup(ctx, payload.Word, true, p.seq.Add(1))
	default:
		// Empty text must not trigger a lookup.
		p.sentence = payload.Text
		p.emit(SentenceChanged{Sentence: p.sentence})
	}
}

func (p *Pipeline) runLookup(ctx context.Context, word string, useLemmatize bool, seq uint64) {
	// Strip before frequency resolution and the status line, so "cat,"
	// and "cat" resolve to the same rank.
	word = wordPunct.ReplaceAllString(word, "")
	if word == "" {
		return
	}
	lemmatize := useLemmatize && p.cfg.Lemmatization

	if p.cfg.BoldWord {
		p.sentence = markWord(p.sentence, word)
		p.emit(SentenceChanged{Sentence: p.sentence, Word: word})
	}

	p.freqRecord = nil
	if p.freq != nil && p.cfg.FreqSource != "" {
		if rec, err := p.freq.Resolve(word, p.cfg.LemmaFreq, p.cfg.FreqSource); err == nil {
			p.freqRecord = rec
		}
	}

	short := "N"
	if lemmatize {
		short = "Y"
	}
	p.emit(Status{Message: fmt.Sprintf("L: '%s' in '%s', lemma: %s, from %s",
		word, p.cfg.TargetLanguage, short, p.cfg.DictSource)})

	result, failure := p.orch.Lookup(ctx, Request{
		Word:          word,
		Language:      p.cfg.TargetLanguage,
		Lemmatize:     lemmatize,
		PrimaryDict:   p.cfg.DictSource,
		SecondaryDict: p.cfg.DictSource2,
	})

	// A newer lookup was enqueued while this one was in flight; its
	// audit rows stand, but its state must not clobber the newer one.
	if seq != p.seq.Load() {
		return
	}

	if failure != nil {
		p.result = nil
		p.emit(Status{Message: failure.Reason})
		p.emit(LookupCompleted{Seq: seq, Failure: failure, Frequency: p.freqRecord})
		return
	}

	p.result = result
	p.word = result.Word

	p.selector.Invalidate()
	p.candidates = nil
	audioPath := ""
	if p.cfg.AudioSource != "" {
		p.candidates = p.selector.FetchCandidates(ctx, result.Word, p.cfg.TargetLanguage, p.cfg.AudioSource)
		if len(p.candidates) > 0 {
			// Selection defaults to the first candidate.
			if path, err := p.selector.Select(ctx, p.candidates[0]); err == nil {
				audioPath = path
			}
		}
	}

	p.emit(LookupCompleted{
		Seq:        seq,
		Result:     result,
		Frequency:  p.freqRecord,
		Candidates: p.candidates,
		AudioPath:  audioPath,
	})
}

func (p *Pipeline) handleSelectAudio(ctx context.Context, index int) {
	if index < 0 || index >= len(p.candidates) {
		p.emit(Status{Message: "No such pronunciation"})
		return
	}
	path, err := p.selector.Select(ctx, p.candidates[index])
	if err != nil {
		p.emit(Status{Message: fmt.Sprintf("Pronunciation unavailable: %v", err)})
		return
	}
	p.emit(Status{Message: fmt.Sprintf("Pronunciation cached: %s", path)})
}

func (p *Pipeline) handleCreateNote(ctx context.Context, extraTags []string, req *noteRequestCmd) {
	in := note.Input{
		SecondaryConfigured: p.cfg.DictSource2 != "",
		DisplayMode1:        p.cfg.DisplayMode(p.cfg.DictSource),
		DisplayMode2:        p.cfg.DisplayMode(p.cfg.DictSource2),
		AudioPath:           p.selector.Current(),
		ImagePath:           p.imagePath,
		ExtraTags:           extraTags,
	}

	if req != nil {
		in.Sentence = req.sentence
		in.Word = req.word
		in.Definition = req.definition
		in.SecondaryConfigured = false
	} else {
		if p.result == nil {
			p.emit(Status{Message: "Nothing to add: look a word up first"})
			return
		}
		in.Sentence = p.sentence
		in.Word = p.word
		in.Definition = p.result.Definition
		in.Definition2 = p.result.Definition2
		in.HasDefinition2 = p.result.HasDefinition2
		if p.freqRecord != nil {
			in.FrequencyStars = p.freqRecord.Stars
		}
	}

	payload, err := p.assembler.Assemble(in)
	if err != nil {
		p.emit(Status{Message: fmt.Sprintf("Aborted: %v", err)})
		return
	}
	p.emit(NoteAssembled{Payload: payload})
	p.emit(Status{Message: "Adding note"})

	success := false
	reason := ""
	if p.cfg.Anki.Enabled && p.anki != nil {
		if _, err := p.anki.AddNote(ctx, payload); err != nil {
			reason = err.Error()
		} else {
			success = true
		}
	}

	p.recordNote(payload, in, success)

	if success {
		p.emit(Status{Message: fmt.Sprintf("Note added: '%s'", in.Word)})
		p.clearNoteState()
	} else if reason != "" {
		p.emit(Status{Message: fmt.Sprintf("Failed to add note: %s", in.Word)})
	} else {
		p.emit(Status{Message: fmt.Sprintf("Note recorded: '%s'", in.Word)})
	}
	// The image never outlives one submission attempt.
	p.imagePath = ""

	p.emit(NoteSubmitted{Word: in.Word, Success: success, Reason: reason})
}

// recordNote persists the payload verbatim so a failed submission loses
// nothing.
func (p *Pipeline) recordNote(payload *note.Payload, in note.Input, success bool) {
	if p.recorder == nil {
		return
	}
	content, _ := json.Marshal(payload)
	fields := p.cfg.Anki.Fields
	_ = p.recorder.RecordNote(history.Note{
		Content:       string(content),
		ExportSuccess: success,
		Sentence:      payload.Fields[fields.Sentence],
		Word:          in.Word,
		Definition:    payload.Fields[fields.Definition],
		Definition2:   payload.Fields[fields.Definition2],
		Pronunciation: in.AudioPath,
		Image:         in.ImagePath,
		Tags:          strings.Join(payload.Tags, " "),
	})
}

func (p *Pipeline) clearNoteState() {
	p.sentence = ""
	p.word = ""
	p.result = nil
	p.freqRecord = nil
	p.candidates = nil
	p.selector.Invalidate()
}

// emit delivers an event without ever blocking the worker. Subscribers
// that fall behind lose transient events, not state.
func (p *Pipeline) emit(e Event) {
	select {
	case p.events <- e:
	default:
	}
}

// markWord wraps the target word in double underscores inside the
// working sentence, clearing any previous markers first.
func markWord(sentence, word string) string {
	if word == "" {
		return sentence
	}
	cleaned := strings.ReplaceAll(sentence, "_", "")
	return strings.ReplaceAll(cleaned, word, "__"+word+"__")
}
