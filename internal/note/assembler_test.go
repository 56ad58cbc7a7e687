package note

import (
	"errors"
	"reflect"
	"testing"

	"github.com/kristofgazso/vocabsieve/internal/config"
)

func assemblerConfig() config.Config {
	return config.Config{
		BoldWord: true,
		Anki: config.Anki{
			DeckName: "Default",
			NoteType: "Basic",
			Tags:     []string{"vocabsieve"},
			Fields: config.FieldMapping{
				Sentence:   "Sentence",
				Word:       "Word",
				Definition: "Definition",
			},
		},
	}
}

func TestAssembleBasicNote(t *testing.T) {
	assembler := NewAssembler(assemblerConfig())

	payload, err := assembler.Assemble(Input{
		Sentence:     "A __galaxy__ far\naway",
		Word:         "galaxy",
		Definition:   "a remote star system",
		DisplayMode1: ModeRaw,
		ExtraTags:    []string{"space", "vocabsieve"},
	})
	if err != nil {
		t.Fatalf("Assemble() unexpected error: %v", err)
	}

	if payload.DeckName != "Default" || payload.ModelName != "Basic" {
		t.Errorf("Unexpected deck/model: %s/%s", payload.DeckName, payload.ModelName)
	}
	if got := payload.Fields["Sentence"]; got != "A <strong>galaxy</strong> far<br>away" {
		t.Errorf("Sentence field = %q", got)
	}
	if got := payload.Fields["Word"]; got != "galaxy" {
		t.Errorf("Word field = %q, want %q", got, "galaxy")
	}
	if got := payload.Fields["Definition"]; got != "a remote star system" {
		t.Errorf("Definition field = %q", got)
	}
	if !reflect.DeepEqual(payload.Tags, []string{"vocabsieve", "space"}) {
		t.Errorf("Tags = %v, want deduplicated merge", payload.Tags)
	}
	if payload.Audio != nil || payload.Picture != nil {
		t.Error("Expected no attachments without media paths")
	}
}

func TestAssembleRemoveSpaces(t *testing.T) {
	cfg := assemblerConfig()
	cfg.RemoveSpaces = true
	cfg.BoldWord = false
	assembler := NewAssembler(cfg)

	payload, err := assembler.Assemble(Input{
		Sentence:     "私 は 学生 です",
		Word:         "学生",
		Definition:   "student",
		DisplayMode1: ModeRaw,
	})
	if err != nil {
		t.Fatalf("Assemble() unexpected error: %v", err)
	}
	if got := payload.Fields["Sentence"]; got != "私は学生です" {
		t.Errorf("Sentence field = %q, want spaces removed", got)
	}
}

func TestAssembleMissingCoreMapping(t *testing.T) {
	cfg := assemblerConfig()
	cfg.Anki.Fields.Definition = ""
	assembler := NewAssembler(cfg)

	_, err := assembler.Assemble(Input{
		Sentence:     "text",
		Word:         "word",
		Definition:   "def",
		DisplayMode1: ModeRaw,
	})
	if !errors.Is(err, ErrFieldMappingMissing) {
		t.Errorf("Expected ErrFieldMappingMissing, got %v", err)
	}
}

func TestAssembleSecondaryWithoutField(t *testing.T) {
	assembler := NewAssembler(assemblerConfig())

	_, err := assembler.Assemble(Input{
		Sentence:            "text",
		Word:                "word",
		Definition:          "def",
		SecondaryConfigured: true,
		DisplayMode1:        ModeRaw,
		DisplayMode2:        ModeRaw,
	})
	if !errors.Is(err, ErrFieldMappingMissing) {
		t.Errorf("Expected ErrFieldMappingMissing, got %v", err)
	}
}

func TestAssembleSecondaryDefinition(t *testing.T) {
	cfg := assemblerConfig()
	cfg.Anki.Fields.Definition2 = "Definition#2"
	assembler := NewAssembler(cfg)

	// Secondary configured and resolved: the field is filled.
	payload, err := assembler.Assemble(Input{
		Sentence:       "text",
		Word:           "word",
		Definition:     "def",
		Definition2:    "def2",
		HasDefinition2: true, SecondaryConfigured: true,
		DisplayMode1: ModeRaw,
		DisplayMode2: ModeRaw,
	})
	if err != nil {
		t.Fatalf("Assemble() unexpected error: %v", err)
	}
	if got := payload.Fields["Definition#2"]; got != "def2" {
		t.Errorf("Definition#2 field = %q, want %q", got, "def2")
	}

	// Secondary configured but failed: the field stays absent.
	payload, err = assembler.Assemble(Input{
		Sentence:            "text",
		Word:                "word",
		Definition:          "def",
		SecondaryConfigured: true,
		DisplayMode1:        ModeRaw,
		DisplayMode2:        ModeRaw,
	})
	if err != nil {
		t.Fatalf("Assemble() unexpected error: %v", err)
	}
	if _, ok := payload.Fields["Definition#2"]; ok {
		t.Error("Expected Definition#2 absent when the secondary lookup failed")
	}
}

func TestAssembleAttachments(t *testing.T) {
	cfg := assemblerConfig()
	cfg.Anki.Fields.Pronunciation = "Pronunciation"
	assembler := NewAssembler(cfg)

	payload, err := assembler.Assemble(Input{
		Sentence:     "text",
		Word:         "word",
		Definition:   "def",
		DisplayMode1: ModeRaw,
		AudioPath:    "/cache/ab/cdef.mp3",
		ImagePath:    "/images/shot.png",
	})
	if err != nil {
		t.Fatalf("Assemble() unexpected error: %v", err)
	}

	if payload.Audio == nil {
		t.Fatal("Expected an audio attachment")
	}
	if payload.Audio.Filename != "word.mp3" {
		t.Errorf("Audio filename = %q, want %q", payload.Audio.Filename, "word.mp3")
	}
	if !reflect.DeepEqual(payload.Audio.Fields, []string{"Pronunciation"}) {
		t.Errorf("Audio fields = %v", payload.Audio.Fields)
	}
	// The image field is not mapped, so the picture is dropped.
	if payload.Picture != nil {
		t.Error("Expected no picture attachment without a mapped field")
	}
}

func TestAssembleFrequencyStars(t *testing.T) {
	cfg := assemblerConfig()
	cfg.Anki.Fields.FrequencyStars = "Frequency"
	assembler := NewAssembler(cfg)

	payload, err := assembler.Assemble(Input{
		Sentence:       "text",
		Word:           "word",
		Definition:     "def",
		DisplayMode1:   ModeRaw,
		FrequencyStars: "★★★★☆",
	})
	if err != nil {
		t.Fatalf("Assemble() unexpected error: %v", err)
	}
	if got := payload.Fields["Frequency"]; got != "★★★★☆" {
		t.Errorf("Frequency field = %q, want stars", got)
	}
}
