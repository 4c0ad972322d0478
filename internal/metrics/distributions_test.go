package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBinomialTwoSidedP(t *testing.T) {
	// 60 wins of 100 fair coin flips: P(X >= 60) ~= 0.0284
	assert.InDelta(t, 0.0569, BinomialTwoSidedP(60, 100), 1e-3)
	// Fewer wins than half clamps to 1.
	assert.Equal(t, 1.0, BinomialTwoSidedP(10, 100))
	assert.Equal(t, 1.0, BinomialTwoSidedP(0, 0))
}

func TestStudentTTwoSidedP(t *testing.T) {
	// t = 2.0, df = 10: two-sided p ~= 0.0734
	assert.InDelta(t, 0.0734, StudentTTwoSidedP(2.0, 10), 1e-3)
	assert.InDelta(t, 1.0, StudentTTwoSidedP(0, 10), 1e-12)
	assert.Equal(t, 1.0, StudentTTwoSidedP(3, 0))
}

func TestChiSquaredSurvival(t *testing.T) {
	// 3.841 is the 95th percentile of chi2(1).
	assert.InDelta(t, 0.05, ChiSquaredSurvival(3.841459, 1), 1e-4)
	assert.Equal(t, 1.0, ChiSquaredSurvival(0, 3))
}

func TestWilsonInterval(t *testing.T) {
	lo, hi := WilsonInterval(60, 100, 0.95)
	assert.InDelta(t, 0.5020, lo, 1e-3)
	assert.InDelta(t, 0.6906, hi, 1e-3)

	lo, hi = WilsonInterval(0, 10, 0.95)
	assert.Equal(t, 0.0, lo)
	assert.Greater(t, hi, 0.0)

	lo, hi = WilsonInterval(10, 10, 0.95)
	assert.LessOrEqual(t, hi, 1.0)
	assert.Less(t, lo, 1.0)
}

func TestWilsonInterval_ContainsObservedRate(t *testing.T) {
	for n := 1; n <= 60; n += 7 {
		for k := 0; k <= n; k++ {
			lo, hi := WilsonInterval(k, n, 0.95)
			p := float64(k) / float64(n)
			if lo > p+1e-12 || hi < p-1e-12 {
				t.Errorf("Wilson(%d,%d) = [%v,%v] does not contain %v", k, n, lo, hi, p)
			}
		}
	}
}

func TestRequiredSampleSize(t *testing.T) {
	assert.Equal(t, -1, RequiredSampleSize(0.5, 0.05, 0.8))
	n := RequiredSampleSize(0.6, 0.05, 0.8)
	// (1.96+0.8416)^2 * 2 * 0.55 * 0.45 / 0.01 ~= 388.4
	assert.Equal(t, 389, n)
}
