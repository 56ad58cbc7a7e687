// Package lemma reduces inflected word forms to their dictionary base form.
package lemma

import (
	"strings"

	"github.com/ikawaha/kagome-dict/ipa"
	"github.com/ikawaha/kagome/v2/tokenizer"
)

// Lemmatizer reduces a single word to its dictionary form.
type Lemmatizer interface {
	// Lemmatize returns the base form of word, or word itself when no
	// better form is known.
	Lemmatize(word string) string

	// Name returns the lemmatizer name
	Name() string
}

// ForLanguage returns the lemmatizer for a two-letter language code.
// Languages without a dedicated implementation get a passthrough.
func ForLanguage(code string) Lemmatizer {
	switch code {
	case "ja":
		if j, err := NewJapanese(); err == nil {
			return j
		}
		return Passthrough{}
	default:
		return Passthrough{}
	}
}

// Passthrough returns every word unchanged.
type Passthrough struct{}

func (Passthrough) Lemmatize(word string) string { return word }
func (Passthrough) Name() string                 { return "passthrough" }

// Japanese lemmatizes via morphological analysis with the IPA dictionary.
type Japanese struct {
	t *tokenizer.Tokenizer
}

// NewJapanese creates a new Japanese lemmatizer instance.
func NewJapanese() (*Japanese, error) {
	t, err := tokenizer.New(ipa.Dict(), tokenizer.OmitBosEos())
	if err != nil {
		return nil, err
	}
	return &Japanese{t: t}, nil
}

func (j *Japanese) Name() string { return "kagome-ipa" }

// Lemmatize returns the base form of the first token of word.
//
// Kagome IPA features:
//
//	0..3: part of speech, 4: conjugation type, 5: conjugation form,
//	6: base form (lemma), 7: reading, 8: pronunciation
func (j *Japanese) Lemmatize(word string) string {
	for _, token := range j.t.Tokenize(word) {
		if token.Class == tokenizer.DUMMY || strings.TrimSpace(token.Surface) == "" {
			continue
		}
		features := token.Features()
		if len(features) > 6 && features[6] != "*" {
			return features[6]
		}
		return token.Surface
	}
	return word
}

// Segment splits running text into token surfaces. Used to insert word
// boundaries into languages written without separating spaces.
func (j *Japanese) Segment(text string) []string {
	var surfaces []string
	for _, token := range j.t.Tokenize(text) {
		if token.Class == tokenizer.DUMMY || strings.TrimSpace(token.Surface) == "" {
			continue
		}
		surfaces = append(surfaces, token.Surface)
	}
	return surfaces
}
