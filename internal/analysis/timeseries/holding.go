package timeseries

import (
	"strategy-validator/internal/metrics"
)

// Holding describes the distribution of holding periods.
type Holding struct {
	AvgHours    float64 `json:"avg_holding_hours"`
	MedianHours float64 `json:"median_holding_hours"`
	MinHours    float64 `json:"min_holding_hours"`
	MaxHours    float64 `json:"max_holding_hours"`
	StdHours    float64 `json:"std_holding_hours"`
	Consistency float64 `json:"holding_consistency"`
	Correlation float64 `json:"correlation_holding_profit"`
}

// AnalyzeHolding summarizes holding hours and their correlation with returns.
func AnalyzeHolding(hours, returns []float64) Holding {
	if len(hours) == 0 {
		return Holding{}
	}
	mean := metrics.Mean(hours)
	std := metrics.StdDev(hours, 0)
	return Holding{
		AvgHours:    mean,
		MedianHours: metrics.Median(hours),
		MinHours:    metrics.Min(hours),
		MaxHours:    metrics.Max(hours),
		StdHours:    std,
		Consistency: 1 - std/(mean+metrics.Epsilon),
		Correlation: metrics.Pearson(hours, returns),
	}
}
