package extreme

import (
	"math"

	"strategy-validator/internal/metrics"
)

// Tail describes one tail of the return distribution.
type Tail struct {
	Count int     `json:"count"`
	Ratio float64 `json:"ratio"`
	Avg   float64 `json:"avg"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Std   float64 `json:"std"`
}

// ExtremeValues compares the worst and best percentile tails.
type ExtremeValues struct {
	Percentile   float64 `json:"percentile"`
	WorstCutoff  float64 `json:"worst_cutoff"`
	BestCutoff   float64 `json:"best_cutoff"`
	Worst        Tail    `json:"worst"`
	Best         Tail    `json:"best"`
	ExtremeRatio float64 `json:"extreme_ratio"`
}

// AnalyzeExtremes splits returns at the p-th and (100-p)-th percentiles.
// ExtremeRatio is best.Avg / |worst.Avg|, 0 when the worst average is zero.
func AnalyzeExtremes(returns []float64, pct float64) ExtremeValues {
	res := ExtremeValues{Percentile: pct}
	if len(returns) == 0 {
		return res
	}
	sorted := metrics.Sorted(returns)
	res.WorstCutoff = metrics.Percentile(sorted, pct/100)
	res.BestCutoff = metrics.Percentile(sorted, 1-pct/100)

	worst := metrics.Filter(returns, func(r float64) bool { return r <= res.WorstCutoff })
	best := metrics.Filter(returns, func(r float64) bool { return r >= res.BestCutoff })
	res.Worst = describeTail(worst, len(returns))
	res.Best = describeTail(best, len(returns))
	res.ExtremeRatio = metrics.SafeDiv(res.Best.Avg, math.Abs(res.Worst.Avg), 0)
	return res
}

func describeTail(xs []float64, total int) Tail {
	return Tail{
		Count: len(xs),
		Ratio: float64(len(xs)) / float64(total),
		Avg:   metrics.Mean(xs),
		Min:   metrics.Min(xs),
		Max:   metrics.Max(xs),
		Std:   metrics.StdDev(xs, 0),
	}
}
