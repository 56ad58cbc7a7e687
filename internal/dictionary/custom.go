package dictionary

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// maxDefinitionBytes caps a single custom lookup response.
const maxDefinitionBytes = 1 << 20

// Custom looks words up through a user-supplied URL template. The
// template substitutes @@@@ with the word and @L@ with the language
// code; the response body is used verbatim as the definition.
type Custom struct {
	name     string
	template string
	client   *http.Client
	limiter  *rate.Limiter
}

// NewCustom creates a URL-template source.
func NewCustom(name, template string, rps float64) *Custom {
	if rps <= 0 {
		rps = 4
	}
	return &Custom{
		name:     name,
		template: template,
		client:   &http.Client{Timeout: 10 * time.Second},
		limiter:  rate.NewLimiter(rate.Limit(rps), 1),
	}
}

func (c *Custom) Name() string { return c.name }

func (c *Custom) Lookup(ctx context.Context, word, language string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	endpoint := strings.ReplaceAll(c.template, "@@@@", url.PathEscape(word))
	endpoint = strings.ReplaceAll(endpoint, "@L@", url.PathEscape(language))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	resp, err := c.client.Do(req)
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

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDefinitionBytes))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	definition := strings.TrimSpace(string(body))
	if definition == "" {
		return "", fmt.Errorf("%w: %q", ErrNotFound, word)
	}
	return definition, nil
}
