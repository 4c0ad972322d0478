package advanced

import (
	"math"

	"strategy-validator/internal/metrics"
)

// Durbin-Watson interpretation bands.
const (
	DWPositive    = "positive_autocorrelation"
	DWIndependent = "independent"
	DWNegative    = "negative_autocorrelation"
)

// Autocorrelation holds Durbin-Watson, the ACF and the Ljung-Box test.
type Autocorrelation struct {
	DurbinWatson     float64   `json:"durbin_watson_stat"`
	DWInterpretation string    `json:"dw_interpretation"`
	LjungBox         float64   `json:"ljung_box_stat"`
	LjungBoxPValue   float64   `json:"ljung_box_pvalue"`
	Significant      bool      `json:"autocorrelation_significant"`
	Independent      bool      `json:"independence_assessment"`
	ACF              []float64 `json:"acf_values"`
	Lags             []int     `json:"acf_lags"`
	SignificantLags  []int     `json:"significant_lags"`
}

// DurbinWatson returns sum(diff(r)^2) / sum(r^2), or 0 when sum(r^2) is 0.
func DurbinWatson(r []float64) float64 {
	var den float64
	for _, v := range r {
		den += v * v
	}
	if den == 0 {
		return 0
	}
	var num float64
	for _, d := range metrics.Diff(r) {
		num += d * d
	}
	return num / den
}

func interpretDW(dw float64) string {
	switch {
	case dw < 1.5:
		return DWPositive
	case dw < 2.5:
		return DWIndependent
	default:
		return DWNegative
	}
}

// ACF returns autocorrelations for lags 0..lags. The lag-k autocovariance
// is normalised by n-k and then divided by the lag-0 variance. A constant series has
// zero autocorrelation beyond lag 0.
func ACF(xs []float64, lags int) []float64 {
	if lags < 0 {
		return nil
	}
	out := make([]float64, lags+1)
	out[0] = 1
	n := len(xs)
	if n == 0 {
		return out
	}
	mean := metrics.Mean(xs)
	var c0 float64
	for _, x := range xs {
		c0 += (x - mean) * (x - mean)
	}
	c0 /= float64(n)
	if c0 == 0 {
		return out
	}
	for k := 1; k <= lags && k < n; k++ {
		var ck float64
		for i := 0; i+k < n; i++ {
			ck += (xs[i] - mean) * (xs[i+k] - mean)
		}
		out[k] = ck / float64(n-k) / c0
	}
	return out
}

// LjungBox returns Q = n(n+2) sum_{k=1..L} rho_k^2/(n-k) and its chi-square(L)
// survival p-value.
func LjungBox(acf []float64, n int) (q, p float64) {
	lags := len(acf) - 1
	if lags < 1 || n < 2 {
		return 0, 1
	}
	for k := 1; k <= lags; k++ {
		q += acf[k] * acf[k] / float64(n-k)
	}
	q *= float64(n * (n + 2))
	return q, metrics.ChiSquaredSurvival(q, lags)
}

// TestAutocorrelation runs the autocorrelation diagnostics on decimal
// returns. The lag count is clipped to n-1.
func TestAutocorrelation(r []float64, lags int) Autocorrelation {
	n := len(r)
	if lags > n-1 {
		lags = n - 1
	}
	if lags < 0 {
		lags = 0
	}
	acf := ACF(r, lags)
	dw := DurbinWatson(r)
	q, p := LjungBox(acf, n)

	res := Autocorrelation{
		DurbinWatson:     dw,
		DWInterpretation: interpretDW(dw),
		LjungBox:         q,
		LjungBoxPValue:   p,
		Significant:      p < 0.05,
		Independent:      p > 0.05,
		ACF:              acf,
		Lags:             make([]int, lags+1),
		SignificantLags:  []int{},
	}
	band := 1.96 / math.Sqrt(float64(n))
	for k := range res.Lags {
		res.Lags[k] = k
		if k > 0 && math.Abs(acf[k]) > band {
			res.SignificantLags = append(res.SignificantLags, k)
		}
	}
	return res
}
