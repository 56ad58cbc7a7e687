package audio

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// voices are the OpenAI TTS voices offered as pronunciation candidates,
// in preference order.
var voices = []string{"alloy", "ash", "coral", "echo", "fable", "nova", "onyx", "sage", "shimmer"}

// OpenAISource synthesizes pronunciations with OpenAI TTS. Each voice is
// offered as one candidate, so the user can pick the rendition they like.
type OpenAISource struct {
	client *openai.Client
	model  string
	speed  float64
}

// NewOpenAISource creates an OpenAI TTS pronunciation source.
func NewOpenAISource(apiKey, model string, speed float64) (*OpenAISource, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	if model == "" {
		model = "gpt-4o-mini-tts"
	}
	if speed == 0 {
		speed = 0.9
	}
	return &OpenAISource{
		client: openai.NewClient(apiKey),
		model:  model,
		speed:  speed,
	}, nil
}

func (o *OpenAISource) Name() string { return "OpenAI TTS" }

func (o *OpenAISource) Candidates(ctx context.Context, word, language string) ([]Candidate, error) {
	candidates := make([]Candidate, 0, len(voices))
	for _, voice := range voices {
		candidates = append(candidates, Candidate{
			Label:  voice,
			URI:    fmt.Sprintf("openai:%s:%s:%s", voice, language, word),
			Source: o.Name(),
		})
	}
	return candidates, nil
}

// Fetch synthesizes the candidate's voice rendition of the word to dest.
func (o *OpenAISource) Fetch(ctx context.Context, c Candidate, dest string) error {
	parts := strings.SplitN(c.URI, ":", 4)
	if len(parts) != 4 || parts[0] != "openai" {
		return fmt.Errorf("not an OpenAI TTS candidate: %s", c.URI)
	}
	voice, word := parts[1], parts[3]

	req := openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(o.model),
		Input:          prepareTTSText(word),
		Voice:          openai.SpeechVoice(voice),
		Speed:          o.speed,
		ResponseFormat: openai.SpeechResponseFormatMp3,
	}

	response, err := o.client.CreateSpeech(ctx, req)
	if err != nil {
		return fmt.Errorf("OpenAI TTS API error: %w", err)
	}
	defer response.Close()

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

	written, err := io.Copy(out, response)
	if err != nil {
		os.Remove(dest)
		return fmt.Errorf("failed to write audio file: %w", err)
	}
	if written == 0 {
		os.Remove(dest)
		return fmt.Errorf("no audio data received from OpenAI")
	}
	return nil
}

// prepareTTSText strips punctuation that should not be spoken.
func prepareTTSText(text string) string {
	cleaned := strings.TrimSpace(text)
	for _, punct := range []string{"!", "?", ".", ",", ";", ":", "\"", "'", "(", ")", "[", "]", "{", "}", "-", "—", "–"} {
		cleaned = strings.ReplaceAll(cleaned, punct, "")
	}
	return strings.TrimSpace(cleaned)
}
