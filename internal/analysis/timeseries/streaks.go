package timeseries

import (
	"math"

	"strategy-validator/internal/metrics"
)

// Streaks describes consecutive win and loss runs.
// A return <= 0 counts as a loss for streak purposes.
type Streaks struct {
	MaxConsecutiveWins    int     `json:"max_consecutive_wins"`
	MaxConsecutiveLosses  int     `json:"max_consecutive_losses"`
	AvgConsecutiveWins    float64 `json:"avg_consecutive_wins"`
	AvgConsecutiveLosses  float64 `json:"avg_consecutive_losses"`
	PsychologicalPressure int     `json:"psychological_pressure"`
	PressureScore         float64 `json:"psychological_pressure_score"`
}

// AnalyzeStreaks computes run lengths over returns in chronological order.
func AnalyzeStreaks(returns []float64) Streaks {
	wins := metrics.Streaks(returns, func(r float64) bool { return r > 0 })
	losses := metrics.Streaks(returns, func(r float64) bool { return r <= 0 })

	res := Streaks{
		MaxConsecutiveWins:   maxInt(wins),
		MaxConsecutiveLosses: maxInt(losses),
		AvgConsecutiveWins:   meanInt(wins),
		AvgConsecutiveLosses: meanInt(losses),
	}
	res.PsychologicalPressure = res.MaxConsecutiveLosses
	if n := len(returns); n > 0 {
		res.PressureScore = math.Min(100, 100*float64(res.MaxConsecutiveLosses)/float64(n))
	}
	return res
}

func maxInt(xs []int) int {
	m := 0
	for _, x := range xs {
		if x > m {
			m = x
		}
	}
	return m
}

func meanInt(xs []int) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0
	for _, x := range xs {
		sum += x
	}
	return float64(sum) / float64(len(xs))
}
