// Package metrics holds the numeric building blocks shared by the analyzers:
// descriptive statistics, compounding curves, regressions, distributions and
// normality tests. Functions never panic on degenerate input; they return
// documented neutral values instead.
package metrics

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Epsilon guards divisions by values that may legitimately be zero.
const Epsilon = 1e-4

// TradingDaysPerYear is used for annualization.
const TradingDaysPerYear = 252

// Sum returns the sum of xs.
func Sum(xs []float64) float64 {
	s := 0.0
	for _, x := range xs {
		s += x
	}
	return s
}

// Mean calculates arithmetic mean. Returns 0 for empty input.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return stat.Mean(xs, nil)
}

// StdDev calculates standard deviation with the given delta degrees of freedom
// (0 = population, 1 = sample). Returns 0 when n <= ddof.
func StdDev(xs []float64, ddof int) float64 {
	n := len(xs)
	if n <= ddof || n == 0 {
		return 0
	}
	mean := Mean(xs)
	sumSq := 0.0
	for _, x := range xs {
		diff := x - mean
		sumSq += diff * diff
	}
	return math.Sqrt(sumSq / float64(n-ddof))
}

// Sorted returns an ascending copy of xs.
func Sorted(xs []float64) []float64 {
	out := make([]float64, len(xs))
	copy(out, xs)
	sort.Float64s(out)
	return out
}

// Percentile uses linear interpolation.
// sorted must be pre-sorted ASC.
// p is percentile in [0, 1] (0.10 = 10th percentile).
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 || p <= 0 {
		return sorted[0]
	}

	// Index for percentile (0-based, continuous)
	idx := p * float64(n-1)
	lower := int(idx)
	upper := lower + 1
	if upper >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lower)
	return sorted[lower] + frac*(sorted[upper]-sorted[lower])
}

// Quantile sorts a copy of xs and returns its p-quantile.
func Quantile(xs []float64, p float64) float64 {
	return Percentile(Sorted(xs), p)
}

// Median returns the 50th percentile.
func Median(xs []float64) float64 {
	return Quantile(xs, 0.5)
}

// Min returns the smallest value, 0 for empty input.
func Min(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	m := xs[0]
	for _, x := range xs[1:] {
		if x < m {
			m = x
		}
	}
	return m
}

// Max returns the largest value, 0 for empty input.
func Max(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	m := xs[0]
	for _, x := range xs[1:] {
		if x > m {
			m = x
		}
	}
	return m
}

// Mode returns the most frequent value; ties resolve to the smallest value.
func Mode(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sorted := Sorted(xs)
	best, bestCount := sorted[0], 0
	for i := 0; i < len(sorted); {
		j := i
		for j < len(sorted) && sorted[j] == sorted[i] {
			j++
		}
		if j-i > bestCount {
			best, bestCount = sorted[i], j-i
		}
		i = j
	}
	return best
}

// Skewness returns the biased (population) sample skewness.
// Returns 0 when variance is zero.
func Skewness(xs []float64) float64 {
	n := float64(len(xs))
	if n == 0 {
		return 0
	}
	mean := Mean(xs)
	var m2, m3 float64
	for _, x := range xs {
		d := x - mean
		m2 += d * d
		m3 += d * d * d
	}
	m2 /= n
	m3 /= n
	if m2 == 0 {
		return 0
	}
	return m3 / math.Pow(m2, 1.5)
}

// ExcessKurtosis returns the biased excess kurtosis (Fisher definition).
// Returns 0 when variance is zero.
func ExcessKurtosis(xs []float64) float64 {
	n := float64(len(xs))
	if n == 0 {
		return 0
	}
	mean := Mean(xs)
	var m2, m4 float64
	for _, x := range xs {
		d := x - mean
		d2 := d * d
		m2 += d2
		m4 += d2 * d2
	}
	m2 /= n
	m4 /= n
	if m2 == 0 {
		return 0
	}
	return m4/(m2*m2) - 3
}

// Pearson returns the Pearson correlation of x and y.
// Returns 0 when either series is constant or lengths differ.
func Pearson(x, y []float64) float64 {
	if len(x) != len(y) || len(x) < 2 {
		return 0
	}
	if StdDev(x, 0) == 0 || StdDev(y, 0) == 0 {
		return 0
	}
	return stat.Correlation(x, y, nil)
}

// Diff returns successive differences xs[i] - xs[i-1] (length n-1).
func Diff(xs []float64) []float64 {
	if len(xs) < 2 {
		return nil
	}
	out := make([]float64, len(xs)-1)
	for i := 1; i < len(xs); i++ {
		out[i-1] = xs[i] - xs[i-1]
	}
	return out
}

// CompoundCurvePct compounds percent returns into a cumulative percent curve:
// curve[i] = (prod(1 + r/100) - 1) * 100.
func CompoundCurvePct(returnsPct []float64) []float64 {
	out := make([]float64, len(returnsPct))
	acc := 1.0
	for i, r := range returnsPct {
		acc *= 1 + r/100
		out[i] = (acc - 1) * 100
	}
	return out
}

// CompoundCurve compounds decimal returns: curve[i] = prod(1 + r) - 1.
func CompoundCurve(returns []float64) []float64 {
	out := make([]float64, len(returns))
	acc := 1.0
	for i, r := range returns {
		acc *= 1 + r
		out[i] = acc - 1
	}
	return out
}

// RelativeDrawdowns computes (v - runmax) / (runmax + Epsilon) along a curve.
// Values are <= 0 whenever runmax is non-negative.
func RelativeDrawdowns(curve []float64) []float64 {
	out := make([]float64, len(curve))
	if len(curve) == 0 {
		return out
	}
	peak := curve[0]
	for i, v := range curve {
		if v > peak {
			peak = v
		}
		out[i] = (v - peak) / (peak + Epsilon)
	}
	return out
}

// MaxDrawdownRatio returns the most negative (v - runmax) / runmax of a
// positive capital curve. Points where runmax <= 0 are skipped.
func MaxDrawdownRatio(capital []float64) float64 {
	worst := 0.0
	peak := math.Inf(-1)
	for _, c := range capital {
		if c > peak {
			peak = c
		}
		if peak <= 0 {
			continue
		}
		dd := (c - peak) / peak
		if dd < worst {
			worst = dd
		}
	}
	return worst
}

// Streaks returns the lengths of consecutive runs where pred holds.
// Values are in chronological order.
func Streaks(values []float64, pred func(float64) bool) []int {
	var runs []int
	current := 0
	for _, v := range values {
		if pred(v) {
			current++
			continue
		}
		if current > 0 {
			runs = append(runs, current)
		}
		current = 0
	}
	if current > 0 {
		runs = append(runs, current)
	}
	return runs
}

// MaxConsecutiveLosses finds the longest streak of return <= 0.
// Returns must be in chronological order.
func MaxConsecutiveLosses(returns []float64) int {
	maxStreak := 0
	for _, s := range Streaks(returns, func(r float64) bool { return r <= 0 }) {
		if s > maxStreak {
			maxStreak = s
		}
	}
	return maxStreak
}

// Filter returns the values for which keep is true.
func Filter(xs []float64, keep func(float64) bool) []float64 {
	var out []float64
	for _, x := range xs {
		if keep(x) {
			out = append(out, x)
		}
	}
	return out
}

// SafeDiv returns num/den, or fallback when den is zero or the result is not finite.
func SafeDiv(num, den, fallback float64) float64 {
	if den == 0 {
		return fallback
	}
	v := num / den
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fallback
	}
	return v
}

// Finite replaces NaN and +-Inf with 0.
func Finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
