package note

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrSubmissionFailed indicates the flashcard service rejected or never
// received the note. The note is still recorded locally; the underlying
// transport error is surfaced verbatim.
var ErrSubmissionFailed = errors.New("note submission failed")

// AnkiConnect submits notes to a local AnkiConnect endpoint.
type AnkiConnect struct {
	api    string
	client *http.Client
}

// NewAnkiConnect creates a client for the given API address.
func NewAnkiConnect(api string) *AnkiConnect {
	return &AnkiConnect{
		api:    api,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

type ankiRequest struct {
	Action  string `json:"action"`
	Version int    `json:"version"`
	Params  any    `json:"params,omitempty"`
}

type ankiResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *string         `json:"error"`
}

// Version performs the API handshake and returns the endpoint version.
func (a *AnkiConnect) Version(ctx context.Context) (int, error) {
	raw, err := a.invoke(ctx, ankiRequest{Action: "version", Version: 6})
	if err != nil {
		return 0, err
	}
	var version int
	if err := json.Unmarshal(raw, &version); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrSubmissionFailed, err)
	}
	return version, nil
}

// AddNote submits a note and returns its id.
func (a *AnkiConnect) AddNote(ctx context.Context, payload *Payload) (int64, error) {
	raw, err := a.invoke(ctx, ankiRequest{
		Action:  "addNote",
		Version: 6,
		Params:  map[string]any{"note": payload},
	})
	if err != nil {
		return 0, err
	}
	var id int64
	if err := json.Unmarshal(raw, &id); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrSubmissionFailed, err)
	}
	return id, nil
}

func (a *AnkiConnect) invoke(ctx context.Context, request ankiRequest) (json.RawMessage, error) {
	body, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSubmissionFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.api, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSubmissionFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSubmissionFailed, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrSubmissionFailed, resp.StatusCode)
	}

	var parsed ankiResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSubmissionFailed, err)
	}
	if parsed.Error != nil && *parsed.Error != "" {
		return nil, fmt.Errorf("%w: %s", ErrSubmissionFailed, *parsed.Error)
	}
	return parsed.Result, nil
}
