package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kristofgazso/vocabsieve/internal/app"
	"github.com/kristofgazso/vocabsieve/internal/cli"
	"github.com/kristofgazso/vocabsieve/internal/config"
)

func main() {
	// Create flags instance
	flags := cli.NewFlags()

	// Create root command
	rootCmd := cli.CreateRootCommand(flags)

	// Set up command initialization
	cobra.OnInitialize(func() {
		cli.InitConfig(flags.CfgFile)
	})

	// Set the run function
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runCommand(cmd, args, flags)
	}

	// Execute command
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func runCommand(cmd *cobra.Command, args []string, flags *cli.Flags) error {
	cfg := config.FromViper(viper.GetViper())

	a, err := app.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to set up pipeline: %w", err)
	}
	defer a.Close()

	// Handle history exports
	if flags.ExportLookups != "" {
		if err := a.ExportLookups(flags.ExportLookups); err != nil {
			return err
		}
		fmt.Printf("Lookup history exported to: %s\n", flags.ExportLookups)
		return nil
	}
	if flags.ExportNotes != "" {
		if err := a.ExportNotes(flags.ExportNotes); err != nil {
			return err
		}
		fmt.Printf("Note history exported to: %s\n", flags.ExportNotes)
		return nil
	}

	if flags.Serve {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return a.Serve(ctx)
	}

	if len(args) > 0 {
		// Look a single word up
		return a.LookupWord(context.Background(), args[0])
	}

	return cmd.Help()
}
