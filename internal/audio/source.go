// Package audio fetches candidate pronunciations and caches the chosen one.
package audio

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/time/rate"
	"gopkg.in/yaml.v3"
)

// maxAudioBytes caps a single pronunciation download.
const maxAudioBytes = 10 * 1024 * 1024

// Candidate is one selectable pronunciation for a word.
type Candidate struct {
	Label  string
	URI    string
	Source string
}

// Source is the pronunciation-provider capability.
type Source interface {
	// Candidates returns the ranked pronunciations for word.
	Candidates(ctx context.Context, word, language string) ([]Candidate, error)

	// Fetch writes the audio bytes of c to dest.
	Fetch(ctx context.Context, c Candidate, dest string) error

	// Name returns the source name as shown in configuration.
	Name() string
}

// HTTPSource queries a Forvo-style endpoint returning a JSON object that
// maps candidate labels to audio URIs.
type HTTPSource struct {
	name    string
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
}

// NewHTTPSource creates a pronunciation source for a JSON catalog endpoint.
func NewHTTPSource(name, baseURL string, rps float64) *HTTPSource {
	if rps <= 0 {
		rps = 4
	}
	return &HTTPSource{
		name:    name,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: 15 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}
}

func (h *HTTPSource) Name() string { return h.name }

func (h *HTTPSource) Candidates(ctx context.Context, word, language string) ([]Candidate, error) {
	if err := h.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/%s/%s", h.baseURL,
		url.PathEscape(language), url.PathEscape(word))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("audio catalog: status %d", resp.StatusCode)
	}

	var catalog map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&catalog); err != nil {
		return nil, fmt.Errorf("audio catalog: decode: %w", err)
	}

	labels := make([]string, 0, len(catalog))
	for label := range catalog {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	candidates := make([]Candidate, 0, len(labels))
	for _, label := range labels {
		candidates = append(candidates, Candidate{
			Label:  label,
			URI:    catalog[label],
			Source: h.name,
		})
	}
	return candidates, nil
}

func (h *HTTPSource) Fetch(ctx context.Context, c Candidate, dest string) error {
	if err := h.limiter.Wait(ctx); err != nil {
		return err
	}
	return downloadTo(ctx, h.client, c.URI, dest)
}

// CustomSource is a user-defined pronunciation source described in the
// custom-sources YAML file. The URL template substitutes @@@@ with the
// word and @L@ with the language code.
type CustomSource struct {
	SourceName string `yaml:"name"`
	URL        string `yaml:"url"`

	client *http.Client
}

// LoadCustomSources reads custom source definitions from a YAML file.
func LoadCustomSources(path string) ([]*CustomSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sources []*CustomSource
	if err := yaml.Unmarshal(data, &sources); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	for _, s := range sources {
		s.client = &http.Client{Timeout: 15 * time.Second}
	}
	return sources, nil
}

func (s *CustomSource) Name() string { return s.SourceName }

func (s *CustomSource) Candidates(ctx context.Context, word, language string) ([]Candidate, error) {
	uri := strings.ReplaceAll(s.URL, "@@@@", url.PathEscape(word))
	uri = strings.ReplaceAll(uri, "@L@", url.PathEscape(language))
	return []Candidate{{Label: s.SourceName, URI: uri, Source: s.SourceName}}, nil
}

func (s *CustomSource) Fetch(ctx context.Context, c Candidate, dest string) error {
	client := s.client
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return downloadTo(ctx, client, c.URI, dest)
}

// downloadTo streams a remote file to dest, cleaning up on failure.
func downloadTo(ctx context.Context, client *http.Client, uri, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download audio: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to download audio: status %d", resp.StatusCode)
	}

	if dir := filepath.Dir(dest); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create cache directory: %w", err)
		}
	}
	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("failed to create audio file: %w", err)
	}
	defer out.Close()

	written, err := io.Copy(out, io.LimitReader(resp.Body, maxAudioBytes))
	if err != nil {
		os.Remove(dest)
		return fmt.Errorf("failed to write audio file: %w", err)
	}
	if written == 0 {
		os.Remove(dest)
		return fmt.Errorf("no audio data received")
	}
	return nil
}
