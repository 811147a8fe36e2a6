// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the medlit CLI: crawl biomedical
// literature, extract keywords, classify papers and export reports.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/medlit/internal/config"
	"github.com/pdiddy/medlit/internal/logging"
	"github.com/pdiddy/medlit/internal/metrics"
	"github.com/pdiddy/medlit/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// Populated by rootCmd's PersistentPreRunE before any subcommand runs.
var (
	cfg    types.Config
	logger zerolog.Logger
	mtx    *metrics.Metrics
)

// rootCmd is the base command for the medlit CLI.
var rootCmd = &cobra.Command{
	Use:   "medlit",
	Short: "Crawl, analyse and classify biomedical literature",
	Long: `medlit crawls paper metadata from PubMed and arXiv, extracts ranked
keywords, classifies each paper into a medical specialty and stores the
results in SQLite for search, statistics and export.

Configuration comes from medlit.yaml (in . or ~/.config/medlit/), a .env
file, MEDLIT_* environment variables and the .secrets/ directory.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("metrics-file")
		if path == "" {
			return nil
		}
		if err := mtx.WriteToTextfile(path); err != nil {
			return err
		}
		logger.Debug().Str("path", path).Msg("metrics written")
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (default: ./medlit.yaml or ~/.config/medlit/medlit.yaml)")
	rootCmd.PersistentFlags().String("metrics-file", "", "write Prometheus metrics to this textfile on exit")
	rootCmd.PersistentFlags().String("log-level", "", "override logging.level (trace, debug, info, warn, error)")
}

// setup loads configuration and builds the logger and metrics shared by
// every subcommand.
func setup(cmd *cobra.Command, args []string) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}

	v := viper.New()
	cfgFile, _ := cmd.Flags().GetString("config")
	config.Prepare(v, cfgFile)
	if err := v.BindPFlag("logging.level", cmd.Flags().Lookup("log-level")); err != nil {
		return err
	}
	if err := config.ReadFile(v); err != nil {
		return err
	}

	bootLogger := logging.New(types.LoggingConfig{Level: "warn", Format: "console", Output: "stderr"})
	secrets, err := config.LoadSecrets(config.DefaultSecretsDir, bootLogger)
	if err != nil {
		return err
	}

	loaded, err := config.Load(v, secrets)
	if err != nil {
		return err
	}
	cfg = loaded
	logger = logging.New(cfg.Logging)
	if used := v.ConfigFileUsed(); used != "" {
		logger.Debug().Str("path", used).Msg("using config file")
	}
	if len(secrets) > 0 {
		logger.Debug().Int("count", len(secrets)).Msg("loaded secrets")
	}
	mtx = metrics.New()
	return config.EnsureDirs(cfg)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
