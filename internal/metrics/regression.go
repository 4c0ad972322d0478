package metrics

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Regression is an ordinary least squares fit of y = Intercept + Slope*x.
type Regression struct {
	Slope       float64
	Intercept   float64
	RSquared    float64
	SlopeStdErr float64
	Residuals   []float64
	N           int
}

// Index returns 0..n-1 as float64.
func Index(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i)
	}
	return out
}

// OLS fits y on x. With fewer than two points or constant x the slope is 0
// and the intercept is mean(y).
func OLS(x, y []float64) Regression {
	n := len(x)
	reg := Regression{N: n}
	if n == 0 || len(y) != n {
		return reg
	}
	if n < 2 || StdDev(x, 0) == 0 {
		reg.Intercept = Mean(y)
		reg.Residuals = make([]float64, n)
		for i := range y {
			reg.Residuals[i] = y[i] - reg.Intercept
		}
		return reg
	}

	alpha, beta := stat.LinearRegression(x, y, nil, false)
	reg.Slope = beta
	reg.Intercept = alpha

	meanY := Mean(y)
	meanX := Mean(x)
	var ssRes, ssTot, sxx float64
	reg.Residuals = make([]float64, n)
	for i := range x {
		res := y[i] - (alpha + beta*x[i])
		reg.Residuals[i] = res
		ssRes += res * res
		dy := y[i] - meanY
		ssTot += dy * dy
		dx := x[i] - meanX
		sxx += dx * dx
	}
	if ssTot > 0 {
		reg.RSquared = Clamp(1-ssRes/ssTot, 0, 1)
	}
	if n > 2 && sxx > 0 {
		reg.SlopeStdErr = math.Sqrt(ssRes/float64(n-2)) / math.Sqrt(sxx)
	}
	return reg
}

// SlopeTest returns the t statistic and two-sided p-value for H0: slope = 0
// with n-2 degrees of freedom. Fewer than three points yields (0, 1).
// A perfect fit with a non-zero slope yields p = 0.
func (r Regression) SlopeTest() (t, p float64) {
	if r.N < 3 {
		return 0, 1
	}
	if r.SlopeStdErr == 0 {
		if r.Slope == 0 {
			return 0, 1
		}
		return math.Copysign(math.Inf(1), r.Slope), 0
	}
	t = r.Slope / r.SlopeStdErr
	return t, StudentTTwoSidedP(t, r.N-2)
}

// SlopeCI returns the confidence interval of the slope using Student's t.
func (r Regression) SlopeCI(confidence float64) (lower, upper float64) {
	if r.N < 3 {
		return r.Slope, r.Slope
	}
	crit := StudentTQuantile(1-(1-confidence)/2, r.N-2)
	return r.Slope - crit*r.SlopeStdErr, r.Slope + crit*r.SlopeStdErr
}
