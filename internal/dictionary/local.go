package dictionary

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
)

// Local is a file-backed dictionary: a JSON object mapping headwords to
// definition text. The file is loaded lazily on first lookup.
type Local struct {
	name string
	path string

	once    sync.Once
	loadErr error
	entries map[string]string
}

// NewLocal creates a local dictionary source reading from path.
func NewLocal(name, path string) *Local {
	return &Local{name: name, path: path}
}

func (l *Local) Name() string { return l.name }

func (l *Local) Lookup(ctx context.Context, word, language string) (string, error) {
	l.once.Do(l.load)
	if l.loadErr != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, l.loadErr)
	}

	if def, ok := l.entries[word]; ok {
		return def, nil
	}
	// Case-insensitive fallback for words copied mid-sentence.
	if def, ok := l.entries[strings.ToLower(word)]; ok {
		return def, nil
	}
	return "", fmt.Errorf("%w: %q", ErrNotFound, word)
}

func (l *Local) load() {
	data, err := os.ReadFile(l.path)
	if err != nil {
		l.loadErr = err
		return
	}
	if err := json.Unmarshal(data, &l.entries); err != nil {
		l.loadErr = fmt.Errorf("parse %s: %w", l.path, err)
	}
}
