package sizing

import (
	"math"

	"strategy-validator/internal/metrics"
)

// Kelly feasibility values.
const (
	KellyFeasible       = "ok"
	KellyNotEnoughTrade = "not_enough_trades"
)

// kellyCaution is attached to every Kelly result.
const kellyCaution = "full Kelly implies excessive volatility; size with the fractional value"

// Kelly holds the Kelly criterion sizing. Percent fields are x100.
type Kelly struct {
	FullKellyPct        float64 `json:"full_kelly_pct"`
	FractionalKellyPct  float64 `json:"fractional_kelly_pct"`
	RecommendedKellyPct float64 `json:"recommended_kelly_pct"`
	WinRate             float64 `json:"win_rate"`
	LossRate            float64 `json:"loss_rate"`
	AvgWin              float64 `json:"avg_win"`
	AvgLoss             float64 `json:"avg_loss"`
	WinLossRatio        float64 `json:"win_loss_ratio"`
	TotalTrades         int     `json:"total_trades"`
	RequiredTrades      float64 `json:"required_trades_for_significance"`
	Feasibility         string  `json:"kelly_feasibility"`
	Caution             string  `json:"caution"`
}

// CalculateKelly computes f = (p*b - q) / b with p the win rate, q = 1 - p and
// b = mean win / mean |loss| over strictly negative returns. Without losses
// or wins the fraction is 0. Reported percentages are floored at 0.
func CalculateKelly(returns []float64) Kelly {
	n := len(returns)
	res := Kelly{TotalTrades: n, Caution: kellyCaution}
	wins := metrics.Filter(returns, func(r float64) bool { return r > 0 })
	losses := metrics.Filter(returns, func(r float64) bool { return r < 0 })

	if n > 0 {
		res.WinRate = float64(len(wins)) / float64(n)
	}
	res.LossRate = 1 - res.WinRate
	avgWin := metrics.Mean(wins)
	avgLoss := math.Abs(metrics.Mean(losses))
	res.AvgWin = avgWin * 100
	res.AvgLoss = avgLoss * 100

	f := 0.0
	if avgLoss > 0 && avgWin > 0 {
		b := avgWin / avgLoss
		res.WinLossRatio = b
		f = (res.WinRate*b - res.LossRate) / b
	}
	res.FullKellyPct = math.Max(0, f*100)
	res.FractionalKellyPct = math.Max(0, f/2*100)
	res.RecommendedKellyPct = res.FractionalKellyPct

	res.RequiredTrades = RequiredKellyTrades(res.WinRate)
	res.Feasibility = KellyNotEnoughTrade
	if float64(n) >= res.RequiredTrades {
		res.Feasibility = KellyFeasible
	}
	return res
}

// RequiredKellyTrades is 30 trades, reduced as the win rate moves away from
// 0.5, never below 20.
func RequiredKellyTrades(winRate float64) float64 {
	return math.Max(20, 30-math.Abs(winRate-0.5)*20)
}
