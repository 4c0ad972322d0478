// Package recommend combines the gate verdict, walk-forward score and
// portfolio Sharpe into a final deployment recommendation.
package recommend

import (
	"fmt"

	"strategy-validator/internal/decision"
	"strategy-validator/internal/domain"
	"strategy-validator/internal/metrics"
)

// Outcome is the final recommendation.
type Outcome string

const (
	AllPass Outcome = "ALL-PASS"
	Partial Outcome = "PARTIAL"
	Fail    Outcome = "FAIL"
)

// Thresholds used by Decide.
const (
	AllPassWinRate     = 80.0
	AllPassReturn      = 40.0
	PartialWinRate     = 70.0
	PartialReturn      = 30.0
	MinWalkForward     = 60.0
	MinPortfolioSharpe = 1.0
)

// Input carries everything Decide reads. WinRate and TotalReturn are percent.
// A nil WalkForwardScore or Sharpe means the metric is unavailable and its
// check passes.
type Input struct {
	WinRate          float64
	TotalReturn      float64
	Decision         decision.Decision
	WalkForwardScore *float64
	Sharpe           *float64
}

// Check is one line of the recommendation checklist.
type Check struct {
	Name   string `json:"name"`
	Target string `json:"target"`
	Actual string `json:"actual"`
	Pass   bool   `json:"pass"`
}

// Result is the recommendation with its checklist.
type Result struct {
	Outcome Outcome  `json:"outcome"`
	Summary string   `json:"summary"`
	Checks  []Check  `json:"checks"`
	Reasons []string `json:"reasons"`
}

// BaseStats returns the win rate and total return of a table in percent.
// Total return is the last cumulative value when the table carries one,
// otherwise the sum of trade returns.
func BaseStats(tt *domain.TradeTable) (winRate, totalReturn float64) {
	if tt == nil || tt.Len() == 0 {
		return 0, 0
	}
	returns := tt.Returns()
	wins := metrics.Filter(returns, func(r float64) bool { return r > 0 })
	winRate = float64(len(wins)) / float64(len(returns)) * 100

	if tt.HasCumulative() {
		trades := tt.Trades()
		return winRate, *trades[len(trades)-1].CumulativePct
	}
	return winRate, metrics.Sum(returns)
}

// Decide applies the ALL-PASS / PARTIAL / FAIL rules.
func Decide(in Input) *Result {
	basePass := in.WinRate >= AllPassWinRate && in.TotalReturn >= AllPassReturn
	gatePass := in.Decision != decision.DecisionNOGO && in.Decision != ""
	wfPass := in.WalkForwardScore == nil || *in.WalkForwardScore >= MinWalkForward
	sharpePass := in.Sharpe == nil || *in.Sharpe >= MinPortfolioSharpe

	res := &Result{
		Checks: []Check{
			{
				Name:   "base performance",
				Target: fmt.Sprintf("win rate >= %.0f%%, return >= %.0f%%", AllPassWinRate, AllPassReturn),
				Actual: fmt.Sprintf("win rate %.1f%%, return %.1f%%", in.WinRate, in.TotalReturn),
				Pass:   basePass,
			},
			{
				Name:   "walk-forward",
				Target: fmt.Sprintf(">= %.0f", MinWalkForward),
				Actual: optional(in.WalkForwardScore, "%.1f"),
				Pass:   wfPass,
			},
			{
				Name:   "portfolio sharpe",
				Target: fmt.Sprintf(">= %.1f", MinPortfolioSharpe),
				Actual: optional(in.Sharpe, "%.2f"),
				Pass:   sharpePass,
			},
			{
				Name:   "disqualification gate",
				Target: "not " + string(decision.DecisionNOGO),
				Actual: string(in.Decision),
				Pass:   gatePass,
			},
		},
		Reasons: []string{},
	}

	partialPass := in.WinRate >= PartialWinRate && in.TotalReturn >= PartialReturn && gatePass && wfPass

	switch {
	case basePass && gatePass && wfPass && sharpePass:
		res.Outcome = AllPass
		res.Summary = "all checks passed"
	case partialPass:
		res.Outcome = Partial
		res.Summary = "close to target, deploy with a small allocation"
	default:
		res.Outcome = Fail
		res.Summary = "further optimization required"
	}

	if res.Outcome == AllPass {
		return res
	}
	if in.WinRate < PartialWinRate || in.TotalReturn < PartialReturn {
		res.Reasons = append(res.Reasons, fmt.Sprintf("base performance below target (win rate %.1f%%, return %.1f%%)", in.WinRate, in.TotalReturn))
	} else if !basePass {
		res.Reasons = append(res.Reasons, fmt.Sprintf("base performance below full target (win rate %.1f%%, return %.1f%%)", in.WinRate, in.TotalReturn))
	}
	if !gatePass {
		res.Reasons = append(res.Reasons, "disqualified by gate")
	}
	if !wfPass {
		res.Reasons = append(res.Reasons, fmt.Sprintf("walk-forward overfit risk (%.1f)", *in.WalkForwardScore))
	}
	if !sharpePass {
		res.Reasons = append(res.Reasons, fmt.Sprintf("portfolio sharpe too low (%.2f)", *in.Sharpe))
	}
	return res
}

func optional(v *float64, format string) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf(format, *v)
}
