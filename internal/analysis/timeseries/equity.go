package timeseries

import (
	"math"

	"strategy-validator/internal/metrics"
)

// EquityCurve describes the compounded cumulative-return curve.
type EquityCurve struct {
	Curve          []float64 `json:"equity_curve"`
	FinalReturn    float64   `json:"final_return"`
	MaxEquity      float64   `json:"max_equity"`
	MinEquity      float64   `json:"min_equity"`
	MeanEquity     float64   `json:"mean_equity"`
	StdEquity      float64   `json:"std_equity"`
	Smoothness     float64   `json:"smoothness_ratio"`
	UptrendSteps   int       `json:"uptrend_days"`
	DowntrendSteps int       `json:"downtrend_days"`
	SidewaysSteps  int       `json:"sideways_days"`
	UptrendRatio   float64   `json:"uptrend_ratio"`
	MaxDrawdownPct float64   `json:"max_drawdown_pct"`
	AvgDrawdownPct float64   `json:"avg_drawdown_pct"`
	DrawdownSteps  int       `json:"drawdown_days"`
}

// AnalyzeEquityCurve compounds percent returns into a percent curve and
// reports level, smoothness, direction and drawdown statistics.
func AnalyzeEquityCurve(returns []float64) EquityCurve {
	n := len(returns)
	if n == 0 {
		return EquityCurve{}
	}
	curve := metrics.CompoundCurvePct(returns)
	res := EquityCurve{
		Curve:       curve,
		FinalReturn: curve[n-1],
		MaxEquity:   metrics.Max(curve),
		MinEquity:   metrics.Min(curve),
		MeanEquity:  metrics.Mean(curve),
		StdEquity:   metrics.StdDev(curve, 1),
	}

	diff := metrics.Diff(curve)
	switch {
	case n < 2:
		res.Smoothness = 0
	case metrics.StdDev(diff, 1) == 0:
		res.Smoothness = 1
	default:
		absMean := metrics.Mean(absAll(diff))
		res.Smoothness = metrics.Clamp(1-metrics.StdDev(diff, 1)/(absMean+metrics.Epsilon), 0, 1)
	}

	for _, d := range diff {
		switch {
		case d > 0:
			res.UptrendSteps++
		case d < 0:
			res.DowntrendSteps++
		default:
			res.SidewaysSteps++
		}
	}
	res.UptrendRatio = float64(res.UptrendSteps) / float64(n)

	dd := metrics.RelativeDrawdowns(curve)
	res.MaxDrawdownPct = metrics.Min(dd) * 100
	res.AvgDrawdownPct = metrics.Mean(dd) * 100
	for _, v := range dd {
		if v < 0 {
			res.DrawdownSteps++
		}
	}
	return res
}

func absAll(xs []float64) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = math.Abs(x)
	}
	return out
}
