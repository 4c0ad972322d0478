package sizing

import (
	"strategy-validator/internal/metrics"
)

// DynamicLot maps per-window Sharpe ratios to lot multipliers.
type DynamicLot struct {
	BaseLotPct        float64   `json:"base_lot_pct"`
	WindowTrades      int       `json:"period_days"`
	Windows           int       `json:"n_periods"`
	AvgWindowSharpe   float64   `json:"avg_period_sharpe"`
	WindowSharpes     []float64 `json:"period_sharpes"`
	WindowMultipliers []float64 `json:"period_lot_multipliers"`
	AvgMultiplier     float64   `json:"avg_multiplier"`
	MaxLotPct         float64   `json:"max_lot_pct"`
	MinLotPct         float64   `json:"min_lot_pct"`
	RecommendedLotPct float64   `json:"recommended_lot_pct"`
}

// LotMultiplier maps a Sharpe ratio to a position-size multiplier.
func LotMultiplier(sharpe float64) float64 {
	switch {
	case sharpe > 2:
		return 1.0
	case sharpe > 1.5:
		return 0.8
	case sharpe > 1:
		return 0.6
	case sharpe > 0.5:
		return 0.4
	default:
		return 0.2
	}
}

// CalculateDynamicLot splits returns into max(1, n/window) consecutive
// windows of window trades (the last partial window is dropped unless it is
// the only one) and computes an annualized Sharpe per window.
func CalculateDynamicLot(returns []float64, riskFree, baseLotPct float64, window int) DynamicLot {
	n := len(returns)
	res := DynamicLot{BaseLotPct: baseLotPct, WindowTrades: window, RecommendedLotPct: baseLotPct}
	if n == 0 || window < 1 {
		return res
	}

	windows := n / window
	if windows < 1 {
		windows = 1
	}
	res.Windows = windows
	for i := 0; i < windows; i++ {
		end := (i + 1) * window
		if end > n {
			end = n
		}
		sharpe := AnnualizedSharpe(returns[i*window:end], riskFree)
		res.WindowSharpes = append(res.WindowSharpes, sharpe)
		res.WindowMultipliers = append(res.WindowMultipliers, LotMultiplier(sharpe))
	}

	res.AvgWindowSharpe = metrics.Mean(res.WindowSharpes)
	res.AvgMultiplier = metrics.Mean(res.WindowMultipliers)
	res.MaxLotPct = baseLotPct * metrics.Max(res.WindowMultipliers)
	res.MinLotPct = baseLotPct * metrics.Min(res.WindowMultipliers)
	res.RecommendedLotPct = baseLotPct * res.AvgMultiplier
	return res
}
