package extreme

import (
	"math"

	"strategy-validator/internal/metrics"
)

// CapitalGrowth is a month-by-month forward projection of capital.
type CapitalGrowth struct {
	InitialCapital        float64   `json:"initial_capital"`
	SimulatedMonths       int       `json:"simulated_months"`
	TradesPerMonth        float64   `json:"trades_per_month"`
	ExpectedMonthlyReturn float64   `json:"expected_monthly_return"`
	MonthlyStd            float64   `json:"monthly_std"`
	MonthlyProgression    []float64 `json:"monthly_progression"`
	ExpectedFinalCapital  float64   `json:"expected_final_capital"`
	ExpectedGrowthPct     float64   `json:"expected_growth_pct"`
	ConfidenceUpperBound  float64   `json:"confidence_upper_bound"`
	ConfidenceLowerBound  float64   `json:"confidence_lower_bound"`
}

// ProjectGrowth assumes the observed trades span a year (trades per month =
// n/12) and compounds the expected monthly return over months. The band is
// final capital times (1 +- monthly std).
func ProjectGrowth(returns []float64, initial float64, months int) CapitalGrowth {
	res := CapitalGrowth{InitialCapital: initial, SimulatedMonths: months}

	tpm := float64(len(returns)) / 12
	if len(returns) == 0 {
		tpm = 1
	}
	monthly := metrics.Mean(returns) * tpm
	monthlyStd := metrics.StdDev(returns, 0) * math.Sqrt(tpm)

	progression := make([]float64, 0, months+1)
	capital := initial
	progression = append(progression, capital)
	for m := 0; m < months; m++ {
		capital *= 1 + monthly
		progression = append(progression, capital)
	}

	res.TradesPerMonth = tpm
	res.ExpectedMonthlyReturn = monthly * 100
	res.MonthlyStd = monthlyStd * 100
	res.MonthlyProgression = progression
	res.ExpectedFinalCapital = capital
	res.ExpectedGrowthPct = (capital - initial) / initial * 100
	res.ConfidenceUpperBound = capital * (1 + monthlyStd)
	res.ConfidenceLowerBound = capital * (1 - monthlyStd)
	return res
}
