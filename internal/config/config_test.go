package config

import (
	"reflect"
	"strings"
	"testing"

	"github.com/spf13/viper"
)

func TestFromViperDefaults(t *testing.T) {
	cfg := FromViper(viper.New())

	if cfg.TargetLanguage != "en" {
		t.Errorf("Expected target language 'en', got %q", cfg.TargetLanguage)
	}
	if cfg.LingvaAPI != "https://lingva.ml" {
		t.Errorf("Expected default Lingva instance, got %q", cfg.LingvaAPI)
	}
	if !cfg.Lemmatization {
		t.Error("Expected lemmatization enabled by default")
	}
	if !cfg.BoldWord {
		t.Error("Expected bold word enabled by default")
	}
	if !cfg.Anki.Enabled {
		t.Error("Expected Anki submission enabled by default")
	}
	if cfg.Anki.API != "http://127.0.0.1:8765" {
		t.Errorf("Expected default AnkiConnect address, got %q", cfg.Anki.API)
	}
	if !reflect.DeepEqual(cfg.Anki.Tags, []string{"vocabsieve"}) {
		t.Errorf("Expected default tag, got %v", cfg.Anki.Tags)
	}
	if cfg.API.Port != 39284 || cfg.Reader.Port != 39285 {
		t.Errorf("Unexpected listener ports: %d/%d", cfg.API.Port, cfg.Reader.Port)
	}
	if !strings.HasSuffix(cfg.DataDir, ".local/state/vocabsieve") {
		t.Errorf("Unexpected data directory: %q", cfg.DataDir)
	}
}

func TestFromViperOverrides(t *testing.T) {
	v := viper.New()
	v.Set("target_language", "fr")
	v.Set("dict_source2", "Google Translate")
	v.Set("data_dir", "/tmp/vs")
	v.Set("anki.deck_name", "French")

	cfg := FromViper(v)

	if cfg.TargetLanguage != "fr" {
		t.Errorf("Expected target language 'fr', got %q", cfg.TargetLanguage)
	}
	if cfg.DictSource2 != "Google Translate" {
		t.Errorf("Expected secondary dictionary, got %q", cfg.DictSource2)
	}
	if cfg.Anki.DeckName != "French" {
		t.Errorf("Expected deck 'French', got %q", cfg.Anki.DeckName)
	}
	if cfg.HistoryPath() != "/tmp/vs/record.db" {
		t.Errorf("HistoryPath() = %q", cfg.HistoryPath())
	}
	if cfg.AudioCacheDir() != "/tmp/vs/audio_cache" {
		t.Errorf("AudioCacheDir() = %q", cfg.AudioCacheDir())
	}
}

func TestDisplayMode(t *testing.T) {
	cfg := Config{DisplayModes: map[string]string{"MyDict": "Raw"}}

	if got := cfg.DisplayMode("MyDict"); got != "Raw" {
		t.Errorf("DisplayMode() = %q, want %q", got, "Raw")
	}
	if got := cfg.DisplayMode("Other"); got != "Markdown-HTML" {
		t.Errorf("DisplayMode() default = %q, want %q", got, "Markdown-HTML")
	}
}
