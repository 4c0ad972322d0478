// Package main provides the validator CLI: it evaluates a trade table,
// runs walk-forward judgments and applies the final recommendation rule.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"strategy-validator/internal/config"
	"strategy-validator/internal/observability"
)

var (
	configPath string
	logLevel   string
	fixedClock string
	envFiles   []string
)

// app is the state shared by every subcommand, built once in
// PersistentPreRunE.
var app struct {
	cfg    *config.Config
	logger zerolog.Logger
	clock  func() time.Time
}

// rootCmd is the base command for the validator CLI
var rootCmd = &cobra.Command{
	Use:   "validator",
	Short: "Trading strategy validation engine",
	Long: `validator scores a table of closed trades with sixteen statistical
analyses, a tiered disqualification gate and an eight-category composite
score, then judges overfitting with walk-forward splits.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level override (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&fixedClock, "fixed-clock", "", "RFC3339 timestamp used for every report time")
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", []string{".env"}, "Env files loaded before configuration")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func setup(cmd *cobra.Command, args []string) error {
	if err := config.LoadEnvFiles(envFiles...); err != nil {
		return err
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}

	logger, err := cfg.Log.NewLogger(os.Stderr)
	if err != nil {
		return err
	}
	observability.Init(cfg.Metrics.Namespace)

	clock := func() time.Time { return time.Now().UTC() }
	if fixedClock != "" {
		ts, err := time.Parse(time.RFC3339, fixedClock)
		if err != nil {
			return fmt.Errorf("invalid --fixed-clock: %w", err)
		}
		clock = func() time.Time { return ts.UTC() }
	}

	app.cfg = cfg
	app.logger = logger.With().Str("command", cmd.Name()).Logger()
	app.clock = clock
	return nil
}
