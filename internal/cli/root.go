// Package cli implements the ayra command line.
package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ayrahq/ayra/internal/config"
	"github.com/ayrahq/ayra/internal/logging"
)

var (
	// Global flags
	cfgFile        string
	jsonOutput     bool
	jsonlOutput    bool
	logLevel       string
	logFormat      string
	nonInteractive bool
	noProgress     bool

	appConfig *config.Config
	logger    zerolog.Logger

	// Build info, set through SetVersion.
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "ayra",
	Short: "Ayra landing site, chat playback and demo tools",
	Long: `Ayra plays scripted WhatsApp-style conversations for the Ayra landing site.

It serves the site over HTTP with a live websocket playback stream, exposes the
same playback over gRPC, and offers a terminal preview and CLI tools for the
demo chat, theme preference and waitlist.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if jsonOutput && jsonlOutput {
			return errors.New("--json and --jsonl are mutually exclusive")
		}
		return initConfig()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logging.Close()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $XDG_CONFIG_HOME/ayra/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&jsonlOutput, "jsonl", false, "output in JSON Lines format")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "override log format (json, console)")
	rootCmd.PersistentFlags().BoolVar(&nonInteractive, "non-interactive", false, "never prompt; use defaults")
	rootCmd.PersistentFlags().BoolVar(&noProgress, "no-progress", false, "disable progress output")
}

// SetVersion records build information for `ayra version`.
func SetVersion(v, c, d string) {
	version, commit, date = v, c, d
	rootCmd.Version = v
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		printError(err)
		return 1
	}
	return 0
}

func initConfig() error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return &PreflightError{
			Message:  "failed to load configuration",
			Hint:     "Check the config file syntax or run `ayra init --force`",
			NextStep: "ayra init",
			Err:      err,
		}
	}

	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if logFormat != "" {
		cfg.Logging.Format = logFormat
	}
	if err := logging.Init(cfg.Logging); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}

	appConfig = cfg
	logger = logging.Component("cli")
	logger.Debug().Str("config", cfgFile).Msg("configuration loaded")
	return nil
}

// GetConfig returns the loaded configuration, or nil before initialization.
func GetConfig() *config.Config {
	return appConfig
}

func currentConfig() *config.Config {
	if cfg := GetConfig(); cfg != nil {
		return cfg
	}
	return config.DefaultConfig()
}

func printError(err error) {
	if IsJSONOutput() || IsJSONLOutput() {
		_ = WriteOutput(os.Stderr, map[string]string{"error": err.Error()})
		return
	}

	var preflight *PreflightError
	if errors.As(err, &preflight) {
		fmt.Fprintln(os.Stderr, colorize("Error: "+preflight.Error(), colorRed))
		if preflight.Hint != "" {
			fmt.Fprintf(os.Stderr, "Hint: %s\n", preflight.Hint)
		}
		if preflight.NextStep != "" {
			fmt.Fprintf(os.Stderr, "Next: %s\n", preflight.NextStep)
		}
		return
	}
	fmt.Fprintln(os.Stderr, colorize("Error: "+strings.TrimSpace(err.Error()), colorRed))
}
