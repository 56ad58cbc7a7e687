// Package frequency maps words to frequency ranks and star ratings.
package frequency

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/kristofgazso/vocabsieve/internal/lemma"
)

// ErrNotFound indicates the word is absent from the frequency list.
// Displayed as absence, never fatal.
var ErrNotFound = errors.New("frequency not found")

// Record is a resolved frequency entry. HasRank distinguishes a missing
// rank from rank 0.
type Record struct {
	Rank    int
	HasRank bool
	MaxRank int
	Stars   string
}

// Source is the frequency-list capability.
type Source interface {
	// Rank returns the 1-based rank of word and the list size.
	Rank(word string) (rank, maxRank int, err error)

	// Name returns the source name as shown in configuration.
	Name() string
}

// FileList is a frequency source backed by a plain-text list, one word
// per line, most frequent first. Rank is the line number.
type FileList struct {
	name string
	path string

	once    sync.Once
	loadErr error
	ranks   map[string]int
	max     int
}

// NewFileList creates a file-backed frequency source.
func NewFileList(name, path string) *FileList {
	return &FileList{name: name, path: path}
}

func (f *FileList) Name() string { return f.name }

func (f *FileList) Rank(word string) (int, int, error) {
	f.once.Do(f.load)
	if f.loadErr != nil {
		return 0, 0, f.loadErr
	}
	rank, ok := f.ranks[strings.ToLower(word)]
	if !ok {
		return 0, f.max, fmt.Errorf("%w: %q", ErrNotFound, word)
	}
	return rank, f.max, nil
}

func (f *FileList) load() {
	file, err := os.Open(f.path)
	if err != nil {
		f.loadErr = err
		return
	}
	defer file.Close()

	f.ranks = make(map[string]int)
	scanner := bufio.NewScanner(file)
	rank := 0
	for scanner.Scan() {
		word := strings.ToLower(strings.TrimSpace(scanner.Text()))
		if word == "" {
			continue
		}
		rank++
		// Earlier occurrence wins on duplicate lines.
		if _, seen := f.ranks[word]; !seen {
			f.ranks[word] = rank
		}
	}
	f.max = rank
	f.loadErr = scanner.Err()
}

// Resolver resolves (word, lemmatize, source) to a Record, caching
// results so repeated lookups of the same word stay off the hot path.
type Resolver struct {
	sources map[string]Source
	lem     lemma.Lemmatizer
	cache   *gocache.Cache
}

// NewResolver creates a resolver using lem when lemmatized frequency
// lookup is requested.
func NewResolver(lem lemma.Lemmatizer) *Resolver {
	return &Resolver{
		sources: make(map[string]Source),
		lem:     lem,
		cache:   gocache.New(30*time.Minute, 10*time.Minute),
	}
}

// Register adds a frequency source.
func (r *Resolver) Register(s Source) {
	r.sources[s.Name()] = s
}

// Resolve looks the word up in the named source. A nil Record with
// ErrNotFound means "not found", distinct from a Record without a rank.
func (r *Resolver) Resolve(word string, lemmatize bool, source string) (*Record, error) {
	s, ok := r.sources[source]
	if !ok {
		return nil, fmt.Errorf("unknown frequency source: %s", source)
	}

	if lemmatize {
		word = r.lem.Lemmatize(word)
	}

	key := source + "\x00" + word
	if cached, found := r.cache.Get(key); found {
		if rec, ok := cached.(*Record); ok {
			return rec, nil
		}
		return nil, ErrNotFound
	}

	rank, maxRank, err := s.Rank(word)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			r.cache.Set(key, nil, gocache.DefaultExpiration)
		}
		return nil, err
	}

	rec := &Record{
		Rank:    rank,
		HasRank: true,
		MaxRank: maxRank,
		Stars:   Stars(rank, true, maxRank),
	}
	r.cache.Set(key, rec, gocache.DefaultExpiration)
	return rec, nil
}

// starThresholds are rank/maxRank cutoffs for 5 down to 2 stars. Anything
// beyond the last cutoff gets a single star.
var starThresholds = []struct {
	ratio float64
	stars int
}{
	{0.02, 5},
	{0.06, 4},
	{0.15, 3},
	{0.40, 2},
}

// Stars maps a rank to its star rating. The mapping is monotone
// non-increasing in rank: a more frequent word never gets fewer stars.
// A missing rank gets the lowest bucket.
func Stars(rank int, hasRank bool, maxRank int) string {
	stars := 1
	if hasRank && maxRank > 0 {
		ratio := float64(rank) / float64(maxRank)
		for _, t := range starThresholds {
			if ratio <= t.ratio {
				stars = t.stars
				break
			}
		}
	}
	return strings.Repeat("★", stars) + strings.Repeat("☆", 5-stars)
}
