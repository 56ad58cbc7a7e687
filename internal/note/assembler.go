// Package note assembles lookup results into submittable flashcard notes.
package note

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/kristofgazso/vocabsieve/internal"
	"github.com/kristofgazso/vocabsieve/internal/config"
)

// ErrFieldMappingMissing aborts note assembly: a configured content slot
// has no destination field. Recoverable by reconfiguration, never by
// submitting a partial note.
var ErrFieldMappingMissing = errors.New("note field mapping missing")

// Attachment references a media file to store with the note.
type Attachment struct {
	Path     string   `json:"path"`
	Filename string   `json:"filename"`
	Fields   []string `json:"fields"`
}

// Payload is the complete note as submitted to the flashcard service.
// Built once per submission and never mutated afterwards.
type Payload struct {
	DeckName  string            `json:"deckName"`
	ModelName string            `json:"modelName"`
	Fields    map[string]string `json:"fields"`
	Tags      []string          `json:"tags"`
	Audio     *Attachment       `json:"audio,omitempty"`
	Picture   *Attachment       `json:"picture,omitempty"`
}

// Input carries everything the assembler needs for one note.
type Input struct {
	Sentence string
	Word     string

	Definition          string
	Definition2         string
	HasDefinition2      bool
	SecondaryConfigured bool
	DisplayMode1        string
	DisplayMode2        string

	FrequencyStars string
	AudioPath      string
	ImagePath      string
	ExtraTags      []string
}

// Assembler builds note payloads according to the session configuration.
type Assembler struct {
	anki         config.Anki
	boldWord     bool
	removeSpaces bool
}

// NewAssembler creates an assembler from the session configuration.
func NewAssembler(cfg config.Config) *Assembler {
	return &Assembler{
		anki:         cfg.Anki,
		boldWord:     cfg.BoldWord,
		removeSpaces: cfg.RemoveSpaces,
	}
}

var boldSpan = regexp.MustCompile(`__([^_]+)__`)
var anySpace = regexp.MustCompile(`\s`)

// Assemble builds a complete payload or fails with a classified error.
// It is pure: no I/O, no mutation of lookup state, and it never returns
// a half-populated payload.
func (a *Assembler) Assemble(in Input) (*Payload, error) {
	fields := a.anki.Fields
	if fields.Sentence == "" || fields.Word == "" || fields.Definition == "" {
		return nil, fmt.Errorf("%w: sentence, word and definition fields must be configured", ErrFieldMappingMissing)
	}

	sentence := strings.ReplaceAll(in.Sentence, "\n", "<br>")
	if a.boldWord {
		sentence = boldSpan.ReplaceAllString(sentence, "<strong>$1</strong>")
	}
	if a.removeSpaces {
		sentence = anySpace.ReplaceAllString(sentence, "")
	}

	definition, err := ConvertDefinition(in.Definition, in.DisplayMode1)
	if err != nil {
		return nil, err
	}

	payload := &Payload{
		DeckName:  a.anki.DeckName,
		ModelName: a.anki.NoteType,
		Fields: map[string]string{
			fields.Sentence:   sentence,
			fields.Word:       in.Word,
			fields.Definition: definition,
		},
		Tags: mergeTags(a.anki.Tags, in.ExtraTags),
	}

	if fields.FrequencyStars != "" {
		payload.Fields[fields.FrequencyStars] = in.FrequencyStars
	}

	if in.SecondaryConfigured {
		if fields.Definition2 == "" {
			return nil, fmt.Errorf("%w: a second dictionary is configured but no Definition#2 field is set", ErrFieldMappingMissing)
		}
		if in.HasDefinition2 {
			definition2, err := ConvertDefinition(in.Definition2, in.DisplayMode2)
			if err != nil {
				return nil, err
			}
			payload.Fields[fields.Definition2] = definition2
		}
	}

	// Attachments are omitted entirely when their destination field is
	// disabled, even if a local file exists.
	if fields.Pronunciation != "" && in.AudioPath != "" {
		payload.Audio = &Attachment{
			Path:     in.AudioPath,
			Filename: internal.SanitizeFilename(in.Word) + filepath.Ext(in.AudioPath),
			Fields:   []string{fields.Pronunciation},
		}
	}
	if fields.Image != "" && in.ImagePath != "" {
		payload.Picture = &Attachment{
			Path:     in.ImagePath,
			Filename: internal.SanitizeFilename(in.Word) + filepath.Ext(in.ImagePath),
			Fields:   []string{fields.Image},
		}
	}

	return payload, nil
}

func mergeTags(base, extra []string) []string {
	seen := make(map[string]bool)
	var tags []string
	for _, tag := range append(append([]string{}, base...), extra...) {
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		tags = append(tags, tag)
	}
	return tags
}
