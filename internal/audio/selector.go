package audio

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/kristofgazso/vocabsieve/internal"
)

// Selector tracks the candidate pronunciations of the current lookup and
// downloads the chosen one into the local cache. Selecting the same
// candidate twice within a session reuses the cached file.
type Selector struct {
	sources  map[string]Source
	cacheDir string
	session  *gocache.Cache
	current  string
}

// NewSelector creates a selector caching audio files under cacheDir.
func NewSelector(cacheDir string) *Selector {
	return &Selector{
		sources:  make(map[string]Source),
		cacheDir: cacheDir,
		session:  gocache.New(12*time.Hour, time.Hour),
	}
}

// Register adds a pronunciation source.
func (s *Selector) Register(src Source) {
	s.sources[src.Name()] = src
}

// FetchCandidates returns the ranked pronunciations for word from the
// named source. Any failure degrades to an empty sequence: absence of
// audio must never block note creation.
func (s *Selector) FetchCandidates(ctx context.Context, word, language, source string) []Candidate {
	src, ok := s.sources[source]
	if !ok {
		return nil
	}
	candidates, err := src.Candidates(ctx, word, language)
	if err != nil {
		return nil
	}
	return candidates
}

// Select fetches the candidate's audio into the cache and makes its path
// the current selection. Re-selecting a cached candidate skips the fetch.
func (s *Selector) Select(ctx context.Context, c Candidate) (string, error) {
	src, ok := s.sources[c.Source]
	if !ok {
		return "", fmt.Errorf("unknown audio source: %s", c.Source)
	}

	key := c.Source + "\x00" + c.URI
	if cached, found := s.session.Get(key); found {
		if path, ok := cached.(string); ok {
			if _, err := os.Stat(path); err == nil {
				s.current = path
				return path, nil
			}
		}
	}

	path := s.cachePath(c)
	if err := src.Fetch(ctx, c, path); err != nil {
		return "", err
	}

	s.session.Set(key, path, gocache.DefaultExpiration)
	s.current = path
	return path, nil
}

// Current returns the path of the currently selected pronunciation, or
// empty when none is selected.
func (s *Selector) Current() string {
	return s.current
}

// Invalidate drops the current selection. The cached file stays on disk;
// only the in-flight note's reference is cleared.
func (s *Selector) Invalidate() {
	s.current = ""
}

// cachePath derives a stable cache location for a candidate. The first two
// id characters become a subdirectory to keep directory sizes sane.
func (s *Selector) cachePath(c Candidate) string {
	id := internal.MediaID(c.Source + "\x00" + c.Label + "\x00" + c.URI)

	ext := strings.ToLower(filepath.Ext(c.URI))
	switch ext {
	case ".mp3", ".ogg", ".wav", ".opus", ".aac", ".flac":
	default:
		ext = ".mp3"
	}
	return filepath.Join(s.cacheDir, id[:2], id[2:]+ext)
}
