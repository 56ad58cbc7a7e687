package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kristofgazso/vocabsieve/internal"
)

// CreateRootCommand creates and configures the root cobra command
func CreateRootCommand(flags *Flags) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "vocabsieve [word]",
		Short: "Sentence mining and dictionary lookup pipeline",
		Long: `vocabsieve turns copied text into flashcard notes.

It classifies pushed text, looks words up in the configured
dictionaries, rates them against frequency lists, fetches candidate
pronunciations, and submits finished notes to a local AnkiConnect
endpoint while keeping a full lookup and note history.

Examples:
  vocabsieve --serve                        # Run the listener endpoints
  vocabsieve unfathomable                   # Look one word up and print it
  vocabsieve --export-lookups lookups.csv   # Export lookup history`,
		Args:    cobra.MaximumNArgs(1),
		Version: internal.Version,
	}

	// Set up flags
	setupFlags(rootCmd, flags)

	return rootCmd
}

func setupFlags(cmd *cobra.Command, flags *Flags) {
	// Global flags
	cmd.PersistentFlags().StringVar(&flags.CfgFile, "config", "", "config file (default is $HOME/.vocabsieve.yaml)")

	// Local flags
	cmd.Flags().StringVarP(&flags.Language, "language", "l", flags.Language, "Target language code (e.g. en, fr, ja)")
	cmd.Flags().StringVar(&flags.Dictionary, "dict", flags.Dictionary, "Primary dictionary source")
	cmd.Flags().StringVar(&flags.Dictionary2, "dict2", "", "Secondary dictionary source (empty disables)")
	cmd.Flags().StringVar(&flags.FreqList, "freq", "", "Frequency list name (empty disables)")
	cmd.Flags().StringVar(&flags.AudioSource, "audio", "", "Pronunciation source name (empty disables)")
	cmd.Flags().StringVar(&flags.DataDir, "data-dir", "", "Data directory for history and caches")
	cmd.Flags().BoolVar(&flags.Serve, "serve", false, "Run the note API and reader listeners")
	cmd.Flags().StringVar(&flags.ExportLookups, "export-lookups", "", "Export lookup history as CSV to file")
	cmd.Flags().StringVar(&flags.ExportNotes, "export-notes", "", "Export note history as CSV to file")

	// Bind flags to viper
	bindFlagsToViper(cmd)
}

func bindFlagsToViper(cmd *cobra.Command) {
	viper.BindPFlag("target_language", cmd.Flags().Lookup("language"))
	viper.BindPFlag("dict_source", cmd.Flags().Lookup("dict"))
	viper.BindPFlag("dict_source2", cmd.Flags().Lookup("dict2"))
	viper.BindPFlag("freq_source", cmd.Flags().Lookup("freq"))
	viper.BindPFlag("audio_dict", cmd.Flags().Lookup("audio"))
	viper.BindPFlag("data_dir", cmd.Flags().Lookup("data-dir"))
}

// InitConfig initializes viper configuration
func InitConfig(cfgFile string) {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting home directory: %v\n", err)
			return
		}

		// Search config in home directory with name ".vocabsieve" (without extension)
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".vocabsieve")
	}

	// Environment variables
	viper.SetEnvPrefix("VOCABSIEVE")
	viper.AutomaticEnv()

	// Read config file
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
