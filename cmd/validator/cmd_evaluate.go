package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"strategy-validator/internal/cache"
	"strategy-validator/internal/pipeline"
	"strategy-validator/internal/reporting"
)

// evaluateCmd runs the full validation pipeline on a trade file
var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate a trade table and write the validation report",
	Long: `Run every analysis, the disqualification gate and the composite score
over a trade table, judge it with walk-forward splits, fetch portfolio metrics
and apply the final recommendation rule.

Examples:
  validator evaluate --input trades.csv
  validator evaluate --input trades.json --out reports/
  validator evaluate --input trades.csv --walk-forward-score 72 --rolling-windows 0`,
	RunE: runEvaluate,
}

// Evaluate command flags
var (
	evalInput          string
	evalFormat         string
	evalOut            string
	evalWalkForward    float64
	evalTrainRatio     float64
	evalRollingWindows int
	evalNoPortfolio    bool
	evalNoCache        bool
)

func init() {
	rootCmd.AddCommand(evaluateCmd)

	evaluateCmd.Flags().StringVar(&evalInput, "input", "", "Trade table file (required)")
	evaluateCmd.Flags().StringVar(&evalFormat, "format", "", "Input format: csv or json (default: from extension)")
	evaluateCmd.Flags().StringVar(&evalOut, "out", "", "Directory for report files (default: print summary only)")
	evaluateCmd.Flags().Float64Var(&evalWalkForward, "walk-forward-score", 0, "Use this walk-forward score instead of the judged one")
	evaluateCmd.Flags().Float64Var(&evalTrainRatio, "train-ratio", 0, "Walk-forward train ratio (default: from config)")
	evaluateCmd.Flags().IntVar(&evalRollingWindows, "rolling-windows", -1, "Rolling windows: 3, 4, 5, or 0 to skip (default: from config)")
	evaluateCmd.Flags().BoolVar(&evalNoPortfolio, "no-portfolio", false, "Skip portfolio metrics")
	evaluateCmd.Flags().BoolVar(&evalNoCache, "no-cache", false, "Bypass the report cache")
	_ = evaluateCmd.MarkFlagRequired("input")
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := app.cfg
	opts := pipeline.Options{
		Params:         cfg.Params(),
		Workers:        cfg.Evaluation.Workers,
		TrainRatio:     cfg.WalkForward.TrainRatio,
		RollingWindows: cfg.WalkForward.RollingWindows,
	}
	if cmd.Flags().Changed("walk-forward-score") {
		score := evalWalkForward
		opts.WalkForwardScore = &score
	}
	if cmd.Flags().Changed("train-ratio") {
		opts.TrainRatio = evalTrainRatio
	}
	if evalRollingWindows >= 0 {
		opts.RollingWindows = evalRollingWindows
	}

	p := pipeline.New(opts).
		WithLogger(app.logger).
		WithClock(app.clock).
		WithOutputDir(evalOut)

	if !evalNoCache {
		c, err := cache.New(cfg.CacheOptions())
		if err != nil {
			return fmt.Errorf("failed to create cache: %w", err)
		}
		if closer, ok := c.(interface{ Close() error }); ok {
			defer closer.Close()
		}
		p = p.WithCache(c)
	}
	if !evalNoPortfolio {
		p = p.WithProvider(cfg.Provider(app.logger))
	}

	report, err := p.RunFile(ctx, evalInput, evalFormat)
	if err != nil {
		return err
	}
	return printSummary(cmd, report)
}

func printSummary(cmd *cobra.Command, r *reporting.Report) error {
	s := r.ExecutiveSummary
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Run ID\t%s\n", r.Reproducibility.RunID)
	fmt.Fprintf(w, "Trades\t%d\n", s.TotalTrades)
	fmt.Fprintf(w, "Win rate\t%.2f%%\n", s.WinRate)
	fmt.Fprintf(w, "Total return\t%.2f%%\n", s.TotalReturn)
	fmt.Fprintf(w, "Decision\t%s (%s)\n", s.Decision, s.Tier)
	fmt.Fprintf(w, "Final score\t%.1f (%s)\n", s.FinalScore, s.Rating)
	if s.WalkForwardScore != nil {
		fmt.Fprintf(w, "Walk-forward\t%.0f\n", *s.WalkForwardScore)
	}
	if r.Rolling != nil {
		fmt.Fprintf(w, "Rolling\t%.1f avg, %s\n", r.Rolling.AvgScore, r.Rolling.Judgment)
	}
	fmt.Fprintf(w, "Recommendation\t%s\n", s.Recommendation)
	for _, reason := range r.Recommendation.Reasons {
		fmt.Fprintf(w, "\t- %s\n", reason)
	}
	return w.Flush()
}
