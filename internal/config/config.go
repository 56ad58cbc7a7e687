// Package config assembles the immutable per-session configuration.
//
// All settings are read from viper exactly once, at startup. The resulting
// Config value is passed explicitly into each component constructor so that
// formatting rules and lookup rules never couple through process-wide state.
package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// FieldMapping maps note content to the destination fields of the note type.
// An empty field name means the field is disabled.
type FieldMapping struct {
	Sentence       string
	Word           string
	Definition     string
	Definition2    string
	FrequencyStars string
	Pronunciation  string
	Image          string
}

// Anki holds note submission settings for the external flashcard service.
type Anki struct {
	Enabled  bool
	API      string
	DeckName string
	NoteType string
	Tags     []string
	Fields   FieldMapping
}

// Listener holds bind settings for one of the embedded endpoints.
type Listener struct {
	Enabled bool
	Host    string
	Port    int
}

// Config is the immutable session configuration.
type Config struct {
	TargetLanguage string
	TranslateInto  string

	Lemmatization bool
	LemmaFreq     bool

	DictSource   string
	DictSource2  string
	FreqSource   string
	AudioSource  string
	DisplayModes map[string]string

	SingleWordLookups bool
	BoldWord          bool
	RemoveSpaces      bool

	LocalDicts    map[string]string
	FreqLists     map[string]string
	LingvaAPI     string
	CustomURL     string
	CustomSources string
	AudioServer   string

	OpenAIKey         string
	RequestsPerSecond float64

	Anki   Anki
	API    Listener
	Reader Listener

	DataDir string
}

// FromViper reads the full configuration out of viper into a Config.
func FromViper(v *viper.Viper) Config {
	home, _ := os.UserHomeDir()

	setDefaults(v)

	cfg := Config{
		TargetLanguage: v.GetString("target_language"),
		TranslateInto:  v.GetString("gtrans_lang"),

		Lemmatization: v.GetBool("lemmatization"),
		LemmaFreq:     v.GetBool("lemfreq"),

		DictSource:   v.GetString("dict_source"),
		DictSource2:  v.GetString("dict_source2"),
		FreqSource:   v.GetString("freq_source"),
		AudioSource:  v.GetString("audio_dict"),
		DisplayModes: v.GetStringMapString("display_modes"),

		SingleWordLookups: v.GetBool("single_word"),
		BoldWord:          v.GetBool("bold_word"),
		RemoveSpaces:      v.GetBool("remove_spaces"),

		LocalDicts:    v.GetStringMapString("local_dicts"),
		FreqLists:     v.GetStringMapString("freq_lists"),
		LingvaAPI:     v.GetString("gtrans_api"),
		CustomURL:     v.GetString("custom_url"),
		CustomSources: v.GetString("custom_sources"),
		AudioServer:   v.GetString("audio_server"),

		OpenAIKey:         openAIKey(v),
		RequestsPerSecond: v.GetFloat64("requests_per_second"),

		Anki: Anki{
			Enabled:  v.GetBool("anki.enabled"),
			API:      v.GetString("anki.api"),
			DeckName: v.GetString("anki.deck_name"),
			NoteType: v.GetString("anki.note_type"),
			Tags:     v.GetStringSlice("anki.tags"),
			Fields: FieldMapping{
				Sentence:       v.GetString("anki.sentence_field"),
				Word:           v.GetString("anki.word_field"),
				Definition:     v.GetString("anki.definition_field"),
				Definition2:    v.GetString("anki.definition2_field"),
				FrequencyStars: v.GetString("anki.frequency_stars_field"),
				Pronunciation:  v.GetString("anki.pronunciation_field"),
				Image:          v.GetString("anki.image_field"),
			},
		},
		API: Listener{
			Enabled: v.GetBool("api.enabled"),
			Host:    v.GetString("api.host"),
			Port:    v.GetInt("api.port"),
		},
		Reader: Listener{
			Enabled: v.GetBool("reader.enabled"),
			Host:    v.GetString("reader.host"),
			Port:    v.GetInt("reader.port"),
		},

		DataDir: v.GetString("data_dir"),
	}

	if cfg.DataDir == "" {
		cfg.DataDir = filepath.Join(home, ".local", "state", "vocabsieve")
	}
	return cfg
}

// DisplayMode returns the configured display mode for a dictionary,
// defaulting to Markdown-HTML like the desktop client.
func (c Config) DisplayMode(dict string) string {
	if mode, ok := c.DisplayModes[dict]; ok && mode != "" {
		return mode
	}
	return "Markdown-HTML"
}

// AudioCacheDir is where selected pronunciations are downloaded to.
func (c Config) AudioCacheDir() string {
	return filepath.Join(c.DataDir, "audio_cache")
}

// ImageDir is where pasted images are stored before note submission.
func (c Config) ImageDir() string {
	return filepath.Join(c.DataDir, "images")
}

// HistoryPath is the sqlite database holding lookup and note history.
func (c Config) HistoryPath() string {
	return filepath.Join(c.DataDir, "record.db")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("target_language", "en")
	v.SetDefault("gtrans_lang", "en")
	v.SetDefault("gtrans_api", "https://lingva.ml")
	v.SetDefault("lemmatization", true)
	v.SetDefault("lemfreq", true)
	v.SetDefault("bold_word", true)
	v.SetDefault("dict_source", "Wiktionary (English)")
	v.SetDefault("requests_per_second", 4.0)
	v.SetDefault("anki.enabled", true)
	v.SetDefault("anki.api", "http://127.0.0.1:8765")
	v.SetDefault("anki.tags", []string{"vocabsieve"})
	v.SetDefault("api.enabled", true)
	v.SetDefault("api.host", "127.0.0.1")
	v.SetDefault("api.port", 39284)
	v.SetDefault("reader.enabled", true)
	v.SetDefault("reader.host", "127.0.0.1")
	v.SetDefault("reader.port", 39285)
}

// openAIKey retrieves the OpenAI API key from environment or config
func openAIKey(v *viper.Viper) string {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return key
	}
	return v.GetString("audio.openai_key")
}
