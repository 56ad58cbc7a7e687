package dictionary

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Wiktionary looks words up through the Wiktionary REST definition API.
type Wiktionary struct {
	name    string
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
}

// NewWiktionary creates a Wiktionary source. baseURL defaults to the
// English Wiktionary when empty.
func NewWiktionary(name, baseURL string, rps float64) *Wiktionary {
	if baseURL == "" {
		baseURL = "https://en.wiktionary.org"
	}
	if rps <= 0 {
		rps = 4
	}
	return &Wiktionary{
		name:    name,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}
}

func (w *Wiktionary) Name() string { return w.name }

// wiktionaryEntry mirrors one sense block of the REST definition response.
type wiktionaryEntry struct {
	PartOfSpeech string `json:"partOfSpeech"`
	Definitions  []struct {
		Definition string `json:"definition"`
	} `json:"definitions"`
}

// Lookup fetches the definition list for word and renders it as Markdown,
// one numbered sense per line grouped under its part of speech.
func (w *Wiktionary) Lookup(ctx context.Context, word, language string) (string, error) {
	if err := w.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	endpoint := fmt.Sprintf("%s/api/rest_v1/page/definition/%s",
		w.baseURL, url.PathEscape(word))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return "", fmt.Errorf("%w: %q", ErrNotFound, word)
	case resp.StatusCode != http.StatusOK:
		return "", fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var sections map[string][]wiktionaryEntry
	if err := json.NewDecoder(resp.Body).Decode(&sections); err != nil {
		return "", fmt.Errorf("%w: decode: %v", ErrUnavailable, err)
	}

	entries, ok := sections[language]
	if !ok || len(entries) == 0 {
		// The page exists but has no section for the target language.
		return "", fmt.Errorf("%w: %q has no %s entry", ErrNotFound, word, language)
	}

	var b strings.Builder
	for _, entry := range entries {
		if entry.PartOfSpeech != "" {
			fmt.Fprintf(&b, "*%s*\n", entry.PartOfSpeech)
		}
		n := 0
		for _, def := range entry.Definitions {
			text := strings.TrimSpace(stripTags(def.Definition))
			if text == "" {
				continue
			}
			n++
			fmt.Fprintf(&b, "%d. %s\n", n, text)
		}
	}
	definition := strings.TrimSpace(b.String())
	if definition == "" {
		return "", fmt.Errorf("%w: %q", ErrNotFound, word)
	}
	return definition, nil
}

// stripTags removes inline HTML markup the definition API embeds in senses.
func stripTags(s string) string {
	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return b.String()
}
