package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"strategy-validator/internal/ingest"
	"strategy-validator/internal/pipeline"
)

// walkForwardCmd runs a single Train/Test judgment
var walkForwardCmd = &cobra.Command{
	Use:   "walkforward",
	Short: "Judge overfitting with a single Train/Test split",
	Long: `Split the trade table chronologically, compare Train and Test metrics and
score the gap from 0 to 100.

Examples:
  validator walkforward --input trades.csv
  validator walkforward --input trades.csv --ratio 0.8`,
	RunE: runWalkForward,
}

// rollingCmd runs the rolling walk-forward schedule
var rollingCmd = &cobra.Command{
	Use:   "rolling",
	Short: "Judge overfitting across 3, 4 or 5 rolling windows",
	Long: `Run one Train/Test judgment per window of the rolling schedule and
summarize the scores.

Examples:
  validator rolling --input trades.csv
  validator rolling --input trades.csv --windows 5`,
	RunE: runRolling,
}

var (
	wfInput   string
	wfFormat  string
	wfRatio   float64
	wfWindows int
)

func init() {
	rootCmd.AddCommand(walkForwardCmd)
	rootCmd.AddCommand(rollingCmd)

	for _, c := range []*cobra.Command{walkForwardCmd, rollingCmd} {
		c.Flags().StringVar(&wfInput, "input", "", "Trade table file (required)")
		c.Flags().StringVar(&wfFormat, "format", "", "Input format: csv or json (default: from extension)")
		_ = c.MarkFlagRequired("input")
	}
	walkForwardCmd.Flags().Float64Var(&wfRatio, "ratio", 0, "Train ratio in (0, 1) (default: from config)")
	rollingCmd.Flags().IntVar(&wfWindows, "windows", 0, "Number of windows: 3, 4 or 5 (default: from config)")
}

func runWalkForward(cmd *cobra.Command, args []string) error {
	tt, err := ingest.ReadFile(wfInput, wfFormat)
	if err != nil {
		return fmt.Errorf("failed to load trades: %w", err)
	}
	ratio := app.cfg.WalkForward.TrainRatio
	if cmd.Flags().Changed("ratio") {
		ratio = wfRatio
	}

	res, err := pipeline.JudgeWalkForward(tt, ratio)
	if err != nil {
		return err
	}
	app.logger.Info().Int("score", res.Score).Str("judgment", res.Judgment).Msg("walk-forward judged")
	return writeJSON(cmd, res)
}

func runRolling(cmd *cobra.Command, args []string) error {
	tt, err := ingest.ReadFile(wfInput, wfFormat)
	if err != nil {
		return fmt.Errorf("failed to load trades: %w", err)
	}
	windows := app.cfg.WalkForward.RollingWindows
	if wfWindows != 0 {
		windows = wfWindows
	}

	res, err := pipeline.RollingWalkForward(tt, windows)
	if err != nil {
		return err
	}
	app.logger.Info().Float64("avg_score", res.AvgScore).Str("judgment", res.Judgment).Msg("rolling walk-forward judged")
	return writeJSON(cmd, res)
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
