// Package cmd implements the CLI commands for letterpipe using Cobra.
package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/gaurav-prasanna/letterpipe/config"
	"github.com/gaurav-prasanna/letterpipe/store"
	"github.com/spf13/cobra"
)

// Global flag variables and the state built from them before each command.
var (
	flagConfig      string
	flagDataDir     string
	flagStorePath   string
	flagStoreDriver string
	flagLogLevel    string
	flagLogFormat   string

	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "letterpipe",
	Short: "letterpipe — turn saved newsletter emails into a JSON archive",
	Long: `letterpipe ingests newsletter issues saved as .eml files (or an mbox archive)
and merges them into newsletters.json: one record per issue with an id,
date, summary, tags and the reduced HTML body. Re-running never duplicates
an issue.

Usage:
  letterpipe ingest [dir | file.mbox] [flags]
  letterpipe list [--query text]
  letterpipe remove <id>...
  letterpipe export <id> --markdown|--json|--pdf`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Assigned here rather than in the literal to avoid an initialization
	// cycle (initConfig refers to rootCmd).
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return initConfig(cmd.ErrOrStderr())
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "", "config file (default: .letterpipe.yaml)")
	pf.StringVar(&flagDataDir, "data_dir", "", "directory holding .eml files and the store (default: current directory)")
	pf.StringVar(&flagStorePath, "store", "", "path of the collection store (default: <data_dir>/newsletters.json)")
	pf.StringVar(&flagStoreDriver, "store_driver", "", "collection store backend: json or sqlite")
	pf.StringVar(&flagLogLevel, "log_level", "", "log level: debug, info, warn, error")
	pf.StringVar(&flagLogFormat, "log_format", "", "log format: text or json")
}

// initConfig loads configuration (file, env, flags) and builds the logger.
func initConfig(logOut io.Writer) error {
	v, err := config.New(flagConfig)
	if err != nil {
		return err
	}

	pf := rootCmd.PersistentFlags()
	for key, flag := range map[string]string{
		"data_dir":       "data_dir",
		"store.path":     "store",
		"store.driver":   "store_driver",
		"logging.level":  "log_level",
		"logging.format": "log_format",
	} {
		if err := v.BindPFlag(key, pf.Lookup(flag)); err != nil {
			return fmt.Errorf("binding --%s: %w", flag, err)
		}
	}

	cfg, err = config.Load(v)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger, err = config.NewLogger(cfg.Logging, logOut)
	if err != nil {
		return err
	}
	logger.Debug("configuration loaded",
		slog.String("config_file", v.ConfigFileUsed()),
		slog.String("data_dir", cfg.DataDir),
		slog.String("store_driver", cfg.Store.Driver),
		slog.String("store_path", cfg.Store.Path),
	)
	return nil
}

// openStore opens the configured collection store.
func openStore() (store.Store, error) {
	s, err := store.Open(cfg.Store.Driver, cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	return s, nil
}
