package extreme

import (
	"math"

	"strategy-validator/internal/metrics"
)

// Trend labels shared with the advanced statistics analyzer.
const (
	TrendUp   = "up"
	TrendDown = "down"
	TrendFlat = "flat"

	StrengthVeryStrong = "very_strong"
	StrengthStrong     = "strong"
	StrengthModerate   = "moderate"
	StrengthWeak       = "weak"
	StrengthVeryWeak   = "very_weak"
)

// TrendStrength buckets an R-squared value.
func TrendStrength(r2 float64) string {
	switch {
	case r2 >= 0.9:
		return StrengthVeryStrong
	case r2 >= 0.7:
		return StrengthStrong
	case r2 >= 0.5:
		return StrengthModerate
	case r2 >= 0.3:
		return StrengthWeak
	default:
		return StrengthVeryWeak
	}
}

// TrendDirection labels the sign of a slope.
func TrendDirection(slope float64) string {
	switch {
	case slope > 0:
		return TrendUp
	case slope < 0:
		return TrendDown
	default:
		return TrendFlat
	}
}

// CapitalRegression is an OLS fit of the capital path against trade index.
type CapitalRegression struct {
	Slope                float64 `json:"slope"`
	Intercept            float64 `json:"intercept"`
	RSquared             float64 `json:"r_squared"`
	RValue               float64 `json:"r_value"`
	SlopePValue          float64 `json:"slope_pvalue"`
	SlopeSignificant     bool    `json:"slope_significant"`
	Trend                string  `json:"trend"`
	TrendStrength        string  `json:"trend_strength"`
	DailyExpectedGrowth  float64 `json:"daily_expected_growth"`
	AnnualExpectedGrowth float64 `json:"annual_expected_growth"`
}

// RegressCapital fits the capital path on its index.
func RegressCapital(path []float64) CapitalRegression {
	reg := metrics.OLS(metrics.Index(len(path)), path)
	_, p := reg.SlopeTest()
	return CapitalRegression{
		Slope:                reg.Slope,
		Intercept:            reg.Intercept,
		RSquared:             reg.RSquared,
		RValue:               math.Sqrt(math.Abs(reg.RSquared)),
		SlopePValue:          p,
		SlopeSignificant:     p < 0.05,
		Trend:                TrendDirection(reg.Slope),
		TrendStrength:        TrendStrength(reg.RSquared),
		DailyExpectedGrowth:  reg.Slope,
		AnnualExpectedGrowth: reg.Slope * metrics.TradingDaysPerYear,
	}
}
