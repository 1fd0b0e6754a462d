package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/nao1215/wordwatch/internal/config"
	wwlog "github.com/nao1215/wordwatch/internal/log"
	"github.com/nao1215/wordwatch/internal/store"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for wordwatch.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wordwatch",
		Short: "Highlight keywords on a live page and alert when they appear",
		Long: `wordwatch watches an HTML page for user-configured keywords.

The page is re-fetched over HTTP (or followed on disk) and kept live in
memory. Whenever its content changes, every occurrence of a keyword is
wrapped in a highlight marker and a short audio cue is played. Scans only
run when the page location contains the configured target site.

Settings (word list, target site, highlight color) are kept in a small
database in the data directory and edited with the words, target and color
commands.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: .wordwatch in current or home directory)")
	cmd.PersistentFlags().String("data-dir", "",
		"Directory of the settings database (default: XDG data directory)")

	cmd.AddCommand(NewWatchCmd())
	cmd.AddCommand(NewWordsCmd())
	cmd.AddCommand(NewTargetCmd())
	cmd.AddCommand(NewColorCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig builds the configuration shared by all commands: defaults,
// then the configuration file and WORDWATCH_* variables, then the global
// flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error
	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// An explicit path must exist; a searched one may be absent.
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	var file *config.File
	switch {
	case configPath != "":
		file, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	case cfg.ConfigFilePath != "":
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	default:
		file, err = config.LoadEnv()
		if err != nil {
			return nil, err
		}
	}
	if err := cfg.Apply(file); err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}

	if cfg.Verbose, err = cmd.Flags().GetBool("verbose"); err != nil {
		return nil, err
	}
	if cfg.LogJSON, err = cmd.Flags().GetBool("log-json"); err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("data-dir") {
		if cfg.DataDir, err = cmd.Flags().GetString("data-dir"); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// setupLogger creates the sanitizing logger for cfg.
func setupLogger(cfg *config.Config) *slog.Logger {
	if cfg.LogJSON {
		return wwlog.NewSecureJSONLogger(os.Stderr, cfg.Verbose)
	}
	return wwlog.NewSecureLogger(os.Stderr, cfg.Verbose)
}

// openStore opens the settings database of cfg, creating it when missing.
func openStore(cfg *config.Config) (*store.Store, error) {
	s, err := store.Open(cfg.DataDir, store.DefaultOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to open settings database: %w", err)
	}
	return s, nil
}
