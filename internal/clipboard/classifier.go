// Package clipboard classifies raw clipboard text into lookup payloads.
package clipboard

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Kind discriminates the payload variants.
type Kind int

const (
	// FreeText is the fallthrough: arbitrary sentence text.
	FreeText Kind = iota
	// SingleWord is a lone token suitable for an immediate lookup.
	SingleWord
	// Structured carries an explicit word plus its sentence context.
	Structured
)

// Payload is the classified clipboard content. Immutable once produced.
type Payload struct {
	Kind     Kind
	Word     string
	Sentence string
	Text     string
}

// boundaryPunct matches punctuation stripped from words arriving in
// structured payloads.
var boundaryPunct = regexp.MustCompile(`[?.!«»…()\[\]]`)

// Segmenter inserts word boundaries into scripts written without
// separating spaces.
type Segmenter interface {
	Segment(text string) []string
}

// Classifier decides what a piece of clipboard text is.
type Classifier struct {
	language  string
	segmenter Segmenter
}

// NewClassifier creates a classifier for the given target language.
// The segmenter may be nil for languages with space-separated words.
func NewClassifier(language string, segmenter Segmenter) *Classifier {
	return &Classifier{language: language, segmenter: segmenter}
}

// Classify inspects raw clipboard text.
//
// A JSON object with string "word" and "sentence" fields becomes a
// Structured payload. A lone token becomes SingleWord. Everything else,
// including malformed JSON-like text, falls through to FreeText.
func (c *Classifier) Classify(raw string) Payload {
	if word, sentence, ok := parseStructured(raw); ok {
		return Payload{
			Kind:     Structured,
			Word:     boundaryPunct.ReplaceAllString(word, ""),
			Sentence: c.Normalize(sentence),
		}
	}

	text := c.Normalize(raw)
	if text == "" {
		return Payload{Kind: FreeText, Text: ""}
	}
	if tokens := strings.Fields(text); len(tokens) == 1 {
		return Payload{Kind: SingleWord, Word: tokens[0], Text: text}
	}
	return Payload{Kind: FreeText, Text: text}
}

// Normalize applies the language-aware normalization rules: whitespace
// collapsing, plus segmentation for languages without word separators.
func (c *Classifier) Normalize(text string) string {
	text = strings.TrimSpace(text)
	if c.segmenter != nil {
		if surfaces := c.segmenter.Segment(text); len(surfaces) > 0 {
			return strings.Join(surfaces, " ")
		}
		return text
	}
	return strings.Join(strings.Fields(text), " ")
}

func parseStructured(raw string) (word, sentence string, ok bool) {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "{") {
		return "", "", false
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(trimmed), &obj); err != nil {
		return "", "", false
	}
	w, wok := obj["word"].(string)
	s, sok := obj["sentence"].(string)
	if !wok || !sok {
		return "", "", false
	}
	return w, s, true
}
