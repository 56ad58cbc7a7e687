package pipeline

import (
	"github.com/kristofgazso/vocabsieve/internal/audio"
	"github.com/kristofgazso/vocabsieve/internal/frequency"
	"github.com/kristofgazso/vocabsieve/internal/note"
)

// Event is a typed pipeline outcome delivered to subscribers. The
// interactive surface renders these; nothing in the pipeline depends on
// who is listening.
type Event interface {
	isEvent()
}

// Status is a short transient status message.
type Status struct {
	Message string
}

// SentenceChanged reports the new working sentence after a clipboard event.
type SentenceChanged struct {
	Sentence string
	Word     string
}

// LookupCompleted reports the outcome of one lookup cycle.
type LookupCompleted struct {
	Seq        uint64
	Result     *Result
	Failure    *Failure
	Frequency  *frequency.Record
	Candidates []audio.Candidate
	AudioPath  string
}

// NoteAssembled reports a successfully built payload, before submission.
type NoteAssembled struct {
	Payload *note.Payload
}

// NoteSubmitted reports the submission outcome of an assembled note.
type NoteSubmitted struct {
	Word    string
	Success bool
	Reason  string
}

func (Status) isEvent()          {}
func (SentenceChanged) isEvent() {}
func (LookupCompleted) isEvent() {}
func (NoteAssembled) isEvent()   {}
func (NoteSubmitted) isEvent()   {}
