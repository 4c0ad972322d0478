package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"strategy-validator/internal/decision"
	"strategy-validator/internal/ingest"
	"strategy-validator/internal/recommend"
)

// recommendCmd applies the final recommendation rule
var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Apply the ALL-PASS / PARTIAL / FAIL recommendation rule",
	Long: `Combine base performance, the gate decision, the walk-forward score and
the portfolio Sharpe ratio into a final recommendation. Omitted walk-forward
and Sharpe values count as unavailable and pass their checks.

Examples:
  validator recommend --win-rate 82 --total-return 45 --decision GO --walk-forward-score 70 --sharpe 1.2
  validator recommend --input trades.csv --decision CONDITIONAL-GO`,
	RunE: runRecommend,
}

var (
	recInput       string
	recFormat      string
	recWinRate     float64
	recTotalReturn float64
	recDecision    string
	recWalkForward float64
	recSharpe      float64
)

func init() {
	rootCmd.AddCommand(recommendCmd)

	recommendCmd.Flags().StringVar(&recInput, "input", "", "Trade table to take win rate and total return from")
	recommendCmd.Flags().StringVar(&recFormat, "format", "", "Input format: csv or json (default: from extension)")
	recommendCmd.Flags().Float64Var(&recWinRate, "win-rate", 0, "Win rate in percent")
	recommendCmd.Flags().Float64Var(&recTotalReturn, "total-return", 0, "Total return in percent")
	recommendCmd.Flags().StringVar(&recDecision, "decision", "", "Gate decision: GO, CONDITIONAL-GO or NO-GO (required)")
	recommendCmd.Flags().Float64Var(&recWalkForward, "walk-forward-score", 0, "Walk-forward score (0-100)")
	recommendCmd.Flags().Float64Var(&recSharpe, "sharpe", 0, "Portfolio Sharpe ratio")
	_ = recommendCmd.MarkFlagRequired("decision")
}

func runRecommend(cmd *cobra.Command, args []string) error {
	d := decision.Decision(strings.ToUpper(recDecision))
	switch d {
	case decision.DecisionGO, decision.DecisionConditionalGO, decision.DecisionNOGO:
	default:
		return fmt.Errorf("invalid --decision %q", recDecision)
	}

	in := recommend.Input{
		WinRate:     recWinRate,
		TotalReturn: recTotalReturn,
		Decision:    d,
	}
	if recInput != "" {
		tt, err := ingest.ReadFile(recInput, recFormat)
		if err != nil {
			return fmt.Errorf("failed to load trades: %w", err)
		}
		in.WinRate, in.TotalReturn = recommend.BaseStats(tt)
	}
	if cmd.Flags().Changed("walk-forward-score") {
		v := recWalkForward
		in.WalkForwardScore = &v
	}
	if cmd.Flags().Changed("sharpe") {
		v := recSharpe
		in.Sharpe = &v
	}

	res := recommend.Decide(in)
	app.logger.Info().Str("outcome", string(res.Outcome)).Msg("recommendation")
	return writeJSON(cmd, res)
}
