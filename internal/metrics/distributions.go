package metrics

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// BinomialTwoSidedP returns min(1, 2 * P(X >= k)) for X ~ Binomial(n, 0.5).
func BinomialTwoSidedP(k, n int) float64 {
	if n <= 0 {
		return 1
	}
	b := distuv.Binomial{N: float64(n), P: 0.5}
	return math.Min(1, 2*b.Survival(float64(k-1)))
}

// StudentTTwoSidedP returns the two-sided p-value of t with df degrees of freedom.
// Returns 1 when df < 1 or t is not finite.
func StudentTTwoSidedP(t float64, df int) float64 {
	if df < 1 || math.IsNaN(t) {
		return 1
	}
	if math.IsInf(t, 0) {
		return 0
	}
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(df)}
	return math.Min(1, 2*dist.Survival(math.Abs(t)))
}

// StudentTQuantile returns the p-quantile of Student's t with df degrees of freedom.
func StudentTQuantile(p float64, df int) float64 {
	if df < 1 {
		return 0
	}
	return distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(df)}.Quantile(p)
}

// NormalQuantile returns the p-quantile of the standard normal distribution.
func NormalQuantile(p float64) float64 {
	return distuv.UnitNormal.Quantile(p)
}

// NormalCDF returns P(Z <= x) for Z ~ N(mu, sigma).
func NormalCDF(x, mu, sigma float64) float64 {
	return distuv.Normal{Mu: mu, Sigma: sigma}.CDF(x)
}

// ChiSquaredSurvival returns P(X > x) for X ~ chi-squared(df).
func ChiSquaredSurvival(x float64, df int) float64 {
	if df < 1 || math.IsNaN(x) {
		return 1
	}
	if x <= 0 {
		return 1
	}
	return distuv.ChiSquared{K: float64(df)}.Survival(x)
}

// WilsonInterval returns the Wilson score interval for a binomial proportion,
// clamped to [0, 1]. Returns (0, 0) when n is zero.
func WilsonInterval(successes, n int, confidence float64) (lower, upper float64) {
	if n <= 0 {
		return 0, 0
	}
	z := NormalQuantile(1 - (1-confidence)/2)
	nf := float64(n)
	p := float64(successes) / nf
	z2 := z * z

	denom := 1 + z2/nf
	center := (p + z2/(2*nf)) / denom
	half := z * math.Sqrt(p*(1-p)/nf+z2/(4*nf*nf)) / denom

	return Clamp(center-half, 0, 1), Clamp(center+half, 0, 1)
}

// RequiredSampleSize returns the number of trials needed to distinguish
// proportion p from 0.5 with two-sided alpha and the given power.
// Returns -1 when p equals 0.5 (no effect to detect).
func RequiredSampleSize(p, alpha, power float64) int {
	effect := p - 0.5
	if effect == 0 {
		return -1
	}
	zAlpha := NormalQuantile(1 - alpha/2)
	zBeta := NormalQuantile(power)
	pBar := (p + 0.5) / 2
	n := math.Pow(zAlpha+zBeta, 2) * 2 * pBar * (1 - pBar) / (effect * effect)
	return int(math.Ceil(n))
}
