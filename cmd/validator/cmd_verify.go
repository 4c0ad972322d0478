package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"strategy-validator/internal/pipeline"
	"strategy-validator/internal/verification"
)

// verifyCmd re-runs an evaluation and compares it with a stored report
var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check that a stored report is reproduced exactly",
	Long: `Re-run the pipeline on a trade table with the current configuration and
compare decision, scores, walk-forward results and run ID against a stored
report.json. Exits non-zero on any divergence.

Examples:
  validator verify --input trades.csv --report reports/report.json`,
	RunE: runVerify,
}

var (
	verifyInput       string
	verifyFormat      string
	verifyReport      string
	verifyNoPortfolio bool
)

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().StringVar(&verifyInput, "input", "", "Trade table file (required)")
	verifyCmd.Flags().StringVar(&verifyFormat, "format", "", "Input format: csv or json (default: from extension)")
	verifyCmd.Flags().StringVar(&verifyReport, "report", "", "Stored report.json (required)")
	verifyCmd.Flags().BoolVar(&verifyNoPortfolio, "no-portfolio", false, "Skip portfolio metrics (match the original run)")
	_ = verifyCmd.MarkFlagRequired("input")
	_ = verifyCmd.MarkFlagRequired("report")
}

func runVerify(cmd *cobra.Command, args []string) error {
	cfg := app.cfg
	p := pipeline.New(pipeline.Options{
		Params:         cfg.Params(),
		Workers:        cfg.Evaluation.Workers,
		TrainRatio:     cfg.WalkForward.TrainRatio,
		RollingWindows: cfg.WalkForward.RollingWindows,
	}).WithLogger(app.logger).WithClock(app.clock)
	if !verifyNoPortfolio {
		p = p.WithProvider(cfg.Provider(app.logger))
	}

	res, err := verification.NewReplayVerifier(p).VerifyFile(context.Background(), verifyInput, verifyFormat, verifyReport)
	if err != nil {
		return err
	}
	if err := writeJSON(cmd, res); err != nil {
		return err
	}
	if !res.Match {
		return fmt.Errorf("report diverged in %d field(s)", len(res.Divergences))
	}
	return nil
}
