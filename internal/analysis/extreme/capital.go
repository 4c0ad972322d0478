package extreme

import (
	"strategy-validator/internal/metrics"
)

// ReplayCapital replays percent returns with a fixed fraction (lotPct, in
// percent) of current capital at risk per trade. The path starts with the
// initial capital, so it has len(returns)+1 points.
func ReplayCapital(returnsPct []float64, initial, lotPct float64) []float64 {
	path := make([]float64, 0, len(returnsPct)+1)
	capital := initial
	path = append(path, capital)
	for _, r := range returnsPct {
		capital += capital * (lotPct / 100) * (r / 100)
		path = append(path, capital)
	}
	return path
}

// CapitalShortage is the ruin check over a replayed capital path.
type CapitalShortage struct {
	InitialCapital      float64 `json:"initial_capital"`
	FinalCapital        float64 `json:"final_capital"`
	TotalReturnPct      float64 `json:"total_return_pct"`
	MinCapital          float64 `json:"min_capital"`
	MaxCapital          float64 `json:"max_capital"`
	CapitalDepletion    float64 `json:"capital_depletion"`
	CapitalDepletionPct float64 `json:"capital_depletion_pct"`
	Survived            bool    `json:"survived"`
	DrawdownFromInitial float64 `json:"drawdown_from_initial"`
	TradesToRuin        int     `json:"trades_to_ruin"`        // -1 when capital never reaches zero
	MarginOfSafety      float64 `json:"margin_of_safety"`
}

// AnalyzeCapitalShortage summarizes a capital path produced by ReplayCapital.
func AnalyzeCapitalShortage(path []float64, initial float64) CapitalShortage {
	res := CapitalShortage{InitialCapital: initial, TradesToRuin: -1}
	if len(path) == 0 {
		return res
	}
	final := path[len(path)-1]
	minCap := metrics.Min(path)

	res.FinalCapital = final
	res.TotalReturnPct = (final - initial) / initial * 100
	res.MinCapital = minCap
	res.MaxCapital = metrics.Max(path)
	res.CapitalDepletion = initial - minCap
	res.CapitalDepletionPct = (initial - minCap) / initial * 100
	res.Survived = minCap > 0
	res.DrawdownFromInitial = (minCap - initial) / initial * 100
	res.MarginOfSafety = minCap
	for i, c := range path {
		if c <= 0 {
			res.TradesToRuin = i
			break
		}
	}
	return res
}
