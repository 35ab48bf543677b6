// Package commands implements the vozaid command tree.
package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vozaid/vozaid/cmd/vozaid/internal/config"
)

var (
	// Global flags
	flagConfig  string
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:   "vozaid",
	Short: "Voice-intent backend for nonverbal patients",
	Long: `vozaid - voice-intent detection and learning for nonverbal patients.

The service accepts short audio clips, forwards them to a remote
speech-intent model, and maps the result to a fixed set of patient-need
intents (HELP, WATER, PAIN, ...). Confirmed intents feed an online
learning loop backed by stored voice embeddings.

Configuration is read from the OS config directory
(e.g. ~/.config/vozaid/config.yaml on Linux); flags override file values.

Examples:
  # Run the service with the local file snapshot backend
  vozaid serve --listen :8000 --data-dir ./data

  # Seed the intent database from a directory of wav clips
  vozaid seed --dir ./clips --server http://127.0.0.1:8000

  # Show per-intent exemplar counts
  vozaid intents --server http://127.0.0.1:8000`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file path (default: OS config dir)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "verbose logging")
}

// loadConfig loads the configuration honoring the --config flag.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// setupLogging installs the default slog handler.
func setupLogging() *slog.Logger {
	level := slog.LevelInfo
	if flagVerbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}
