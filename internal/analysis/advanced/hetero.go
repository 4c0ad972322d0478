package advanced

import (
	"strategy-validator/internal/metrics"
)

// Heteroscedasticity holds the Breusch-Pagan test and rolling volatility.
type Heteroscedasticity struct {
	BreuschPagan          float64 `json:"breusch_pagan_stat"`
	BreuschPaganPValue    float64 `json:"breusch_pagan_pvalue"`
	Significant           bool    `json:"heteroscedasticity_significant"`
	VolatilityStable      bool    `json:"volatility_stable"`
	VolatilityChangeRatio float64 `json:"volatility_change_ratio"`
	RollingStdMean        float64 `json:"rolling_std_mean"`
	RollingStdStd         float64 `json:"rolling_std_std"`
	RollingWindow         int     `json:"rolling_window"`
}

// BreuschPagan regresses squaredResid on x and returns LM = (SSR/SST)*(n/2)
// with its chi-square(1) p-value. Zero SST yields (0, 1).
func BreuschPagan(x, squaredResid []float64) (lm, p float64) {
	n := len(x)
	reg := metrics.OLS(x, squaredResid)
	mean := metrics.Mean(squaredResid)
	var ssr, sst float64
	for i := range x {
		fitted := reg.Intercept + reg.Slope*x[i]
		ssr += (fitted - mean) * (fitted - mean)
		sst += (squaredResid[i] - mean) * (squaredResid[i] - mean)
	}
	if sst == 0 {
		return 0, 1
	}
	lm = ssr / sst * float64(n) / 2
	return lm, metrics.ChiSquaredSurvival(lm, 1)
}

// RollingStd returns the sample std of each full window of size w.
// Windows smaller than 2 produce no values.
func RollingStd(xs []float64, w int) []float64 {
	if w < 2 || len(xs) < w {
		return nil
	}
	out := make([]float64, 0, len(xs)-w+1)
	for i := w; i <= len(xs); i++ {
		out = append(out, metrics.StdDev(xs[i-w:i], 1))
	}
	return out
}

// TestHeteroscedasticity regresses decimal returns on the compounded
// curve and tests the squared residuals for dependence on it.
func TestHeteroscedasticity(r []float64) Heteroscedasticity {
	curve := metrics.CompoundCurve(r)
	reg := metrics.OLS(curve, r)
	sq := make([]float64, len(reg.Residuals))
	for i, e := range reg.Residuals {
		sq[i] = e * e
	}
	lm, p := BreuschPagan(curve, sq)

	window := len(r) / 5
	if window > 10 {
		window = 10
	}
	rolling := RollingStd(r, window)
	mean := metrics.Mean(rolling)
	std := metrics.StdDev(rolling, 1)

	return Heteroscedasticity{
		BreuschPagan:          lm,
		BreuschPaganPValue:    p,
		Significant:           p < 0.05,
		VolatilityStable:      p > 0.05,
		VolatilityChangeRatio: metrics.SafeDiv(std, mean, 0),
		RollingStdMean:        mean,
		RollingStdStd:         std,
		RollingWindow:         window,
	}
}
