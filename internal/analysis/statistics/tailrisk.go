package statistics

import (
	"strategy-validator/internal/metrics"
)

// TailRisk summarizes the loss tail of the return distribution.
type TailRisk struct {
	ConfidenceLevel  float64 `json:"confidence_level"`
	VaR              float64 `json:"value_at_risk"`
	CVaR             float64 `json:"conditional_value_at_risk"`
	Worst10Threshold float64 `json:"worst_10_pct_return"`
	Worst10Avg       float64 `json:"worst_10_pct_avg"`
	Worst10Count     int     `json:"worst_10_pct_count"`
	Best10Threshold  float64 `json:"best_10_pct_return"`
	Best10Avg        float64 `json:"best_10_pct_avg"`
	Best10Count      int     `json:"best_10_pct_count"`
	ExtremeLossCount int     `json:"extreme_loss_count"`
	ExtremeLossAvg   float64 `json:"extreme_loss_avg"`
	LargestLoss      float64 `json:"largest_loss"`
	LossFrequency    float64 `json:"loss_frequency"`
	FatTailRatio     float64 `json:"fat_tail_ratio"`
}

// AnalyzeTailRisk computes empirical VaR/CVaR at the given confidence and
// the 10th/90th percentile tails. Extreme losses are losses more than two
// population standard deviations below the mean.
func AnalyzeTailRisk(returns []float64, confidence float64) TailRisk {
	res := TailRisk{ConfidenceLevel: confidence}
	n := len(returns)
	if n == 0 {
		return res
	}
	sorted := metrics.Sorted(returns)
	losses := metrics.Filter(returns, func(r float64) bool { return r < 0 })

	res.VaR = metrics.Percentile(sorted, 1-confidence)
	tail := metrics.Filter(returns, func(r float64) bool { return r <= res.VaR })
	switch {
	case len(tail) > 0:
		res.CVaR = metrics.Mean(tail)
	case len(losses) > 0:
		res.CVaR = metrics.Mean(losses)
	}

	res.Worst10Threshold = metrics.Percentile(sorted, 0.10)
	worst := metrics.Filter(returns, func(r float64) bool { return r <= res.Worst10Threshold })
	res.Worst10Avg = metrics.Mean(worst)
	res.Worst10Count = len(worst)

	res.Best10Threshold = metrics.Percentile(sorted, 0.90)
	best := metrics.Filter(returns, func(r float64) bool { return r >= res.Best10Threshold })
	res.Best10Avg = metrics.Mean(best)
	res.Best10Count = len(best)

	cutoff := metrics.Mean(returns) - 2*metrics.StdDev(returns, 0)
	extreme := metrics.Filter(losses, func(r float64) bool { return r < cutoff })
	res.ExtremeLossCount = len(extreme)
	res.ExtremeLossAvg = metrics.Mean(extreme)

	res.LargestLoss = sorted[0]
	res.LossFrequency = float64(len(losses)) / float64(n)
	res.FatTailRatio = metrics.SafeDiv(float64(len(extreme)), float64(len(losses)), 0)
	return res
}
