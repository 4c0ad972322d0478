package advanced

import (
	"strategy-validator/internal/analysis/extreme"
	"strategy-validator/internal/metrics"
)

// ProfitSlope is the OLS fit of the compounded percent curve on trade index.
type ProfitSlope struct {
	Slope               float64 `json:"slope"`
	AnnualSlope         float64 `json:"annual_slope"`
	Intercept           float64 `json:"intercept"`
	TStatistic          float64 `json:"t_statistic"`
	PValue              float64 `json:"p_value"`
	Significant         bool    `json:"p_value_significant"`
	RSquared            float64 `json:"r_squared"`
	StandardError       float64 `json:"standard_error"`
	CILower             float64 `json:"confidence_interval_lower"`
	CIUpper             float64 `json:"confidence_interval_upper"`
	TrendDirection      string  `json:"trend_direction"`
	TrendStrength       string  `json:"trend_strength"`
	ExpectedTotalReturn float64 `json:"expected_total_return"`
}

// TestProfitSlope regresses the compounded percent curve of returnsPct on
// its index. A perfect fit reports an infinite t statistic, sanitized to 0
// on output, with p = 0.
func TestProfitSlope(returnsPct []float64) ProfitSlope {
	curve := metrics.CompoundCurvePct(returnsPct)
	reg := metrics.OLS(metrics.Index(len(curve)), curve)
	t, p := reg.SlopeTest()
	lo, hi := reg.SlopeCI(0.95)
	return ProfitSlope{
		Slope:               reg.Slope,
		AnnualSlope:         reg.Slope * metrics.TradingDaysPerYear,
		Intercept:           reg.Intercept,
		TStatistic:          metrics.Finite(t),
		PValue:              p,
		Significant:         p < 0.05,
		RSquared:            reg.RSquared,
		StandardError:       reg.SlopeStdErr,
		CILower:             lo,
		CIUpper:             hi,
		TrendDirection:      extreme.TrendDirection(reg.Slope),
		TrendStrength:       extreme.TrendStrength(reg.RSquared),
		ExpectedTotalReturn: reg.Slope * float64(len(curve)),
	}
}
