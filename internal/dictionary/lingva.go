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

// Lingva treats a Lingva translation instance as a dictionary backend:
// the "definition" of a word is its translation into the configured
// language.
type Lingva struct {
	name    string
	baseURL string
	target  string
	client  *http.Client
	limiter *rate.Limiter
}

// NewLingva creates a Lingva source translating into target.
func NewLingva(name, baseURL, target string, rps float64) *Lingva {
	if baseURL == "" {
		baseURL = "https://lingva.ml"
	}
	if target == "" {
		target = "en"
	}
	if rps <= 0 {
		rps = 4
	}
	return &Lingva{
		name:    name,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		target:  target,
		client:  &http.Client{Timeout: 10 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}
}

func (l *Lingva) Name() string { return l.name }

func (l *Lingva) Lookup(ctx context.Context, word, language string) (string, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	endpoint := fmt.Sprintf("%s/api/v1/%s/%s/%s",
		l.baseURL, url.PathEscape(language), url.PathEscape(l.target), url.PathEscape(word))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var body struct {
		Translation string `json:"translation"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("%w: decode: %v", ErrUnavailable, err)
	}
	translation := strings.TrimSpace(body.Translation)
	if translation == "" {
		return "", fmt.Errorf("%w: %q", ErrNotFound, word)
	}
	return translation, nil
}
