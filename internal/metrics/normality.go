package metrics

import (
	"math"
	"math/rand/v2"
)

// MaxShapiroSample is the largest sample the Shapiro-Wilk approximation supports.
const MaxShapiroSample = 5000

// ShapiroWilk returns the W statistic and p-value using Royston's (1995)
// approximation. Samples larger than MaxShapiroSample are sub-sampled without
// replacement using rng. Fewer than three points, or a constant sample,
// yields (1, 1).
func ShapiroWilk(xs []float64, rng *rand.Rand) (w, p float64) {
	sample := xs
	if len(sample) > MaxShapiroSample && rng != nil {
		perm := rng.Perm(len(xs))[:MaxShapiroSample]
		sample = make([]float64, MaxShapiroSample)
		for i, idx := range perm {
			sample[i] = xs[idx]
		}
	}

	n := len(sample)
	if n < 3 {
		return 1, 1
	}
	x := Sorted(sample)
	if x[n-1]-x[0] < 1e-12 {
		return 1, 1
	}

	a := shapiroCoefficients(n)
	mean := Mean(x)
	var num, ssq float64
	for i := 0; i < n/2; i++ {
		num += a[i] * (x[n-1-i] - x[i])
	}
	for _, v := range x {
		d := v - mean
		ssq += d * d
	}
	w = Clamp(num*num/ssq, 0, 1)
	return w, shapiroPValue(w, n)
}

// shapiroCoefficients returns the positive half of the a-vector, lowest rank first.
func shapiroCoefficients(n int) []float64 {
	half := n / 2
	a := make([]float64, half)
	if n == 3 {
		a[0] = math.Sqrt(0.5)
		return a
	}

	c1 := []float64{0, 0.221157, -0.147981, -2.07119, 4.434685, -2.706056}
	c2 := []float64{0, 0.042981, -0.293762, -1.752461, 5.682633, -3.582633}

	an := float64(n)
	m := make([]float64, half)
	summ2 := 0.0
	for i := 0; i < half; i++ {
		m[i] = NormalQuantile((float64(i+1) - 0.375) / (an + 0.25))
		summ2 += m[i] * m[i]
	}
	summ2 *= 2
	ssumm2 := math.Sqrt(summ2)
	rsn := 1 / math.Sqrt(an)

	a1 := poly(c1, rsn) - m[0]/ssumm2
	first := 1
	var fac float64
	if n > 5 {
		a2 := -m[1]/ssumm2 + poly(c2, rsn)
		fac = math.Sqrt((summ2 - 2*m[0]*m[0] - 2*m[1]*m[1]) / (1 - 2*a1*a1 - 2*a2*a2))
		a[1] = a2
		first = 2
	} else {
		fac = math.Sqrt((summ2 - 2*m[0]*m[0]) / (1 - 2*a1*a1))
	}
	a[0] = a1
	for i := first; i < half; i++ {
		a[i] = -m[i] / fac
	}
	return a
}

func shapiroPValue(w float64, n int) float64 {
	if n == 3 {
		const pi6 = 6 / math.Pi
		const stqr = math.Pi / 3
		return Clamp(pi6*(math.Asin(math.Sqrt(w))-stqr), 0, 1)
	}

	an := float64(n)
	w1 := math.Log(1 - w)
	var mu, sigma float64
	if n <= 11 {
		gamma := poly([]float64{-2.273, 0.459}, an)
		if w1 >= gamma {
			return 1e-99
		}
		w1 = -math.Log(gamma - w1)
		mu = poly([]float64{0.544, -0.39978, 0.025054, -6.714e-4}, an)
		sigma = math.Exp(poly([]float64{1.3822, -0.77857, 0.062767, -0.0020322}, an))
	} else {
		ln := math.Log(an)
		mu = poly([]float64{-1.5861, -0.31082, -0.083751, 0.0038915}, ln)
		sigma = math.Exp(poly([]float64{-0.4803, -0.082676, 0.0030302}, ln))
	}
	return Clamp(1-NormalCDF(w1, mu, sigma), 0, 1)
}

// poly evaluates c[0] + c[1]*x + c[2]*x^2 + ...
func poly(c []float64, x float64) float64 {
	res := 0.0
	for i := len(c) - 1; i >= 0; i-- {
		res = res*x + c[i]
	}
	return res
}

// KolmogorovSmirnov tests xs against N(mu, sigma) and returns the D statistic
// and the asymptotic p-value (Stephens' small-sample correction).
// A zero sigma or empty sample yields (0, 1).
func KolmogorovSmirnov(xs []float64, mu, sigma float64) (d, p float64) {
	n := len(xs)
	if n == 0 || sigma <= 0 {
		return 0, 1
	}
	x := Sorted(xs)
	nf := float64(n)
	for i, v := range x {
		cdf := NormalCDF(v, mu, sigma)
		d = math.Max(d, math.Max(cdf-float64(i)/nf, float64(i+1)/nf-cdf))
	}

	sqrtN := math.Sqrt(nf)
	lambda := (sqrtN + 0.12 + 0.11/sqrtN) * d
	return d, kolmogorovSurvival(lambda)
}

// kolmogorovSurvival returns Q_KS(lambda) = 2 * sum (-1)^(k-1) exp(-2 k^2 lambda^2).
func kolmogorovSurvival(lambda float64) float64 {
	if lambda < 0.2 {
		return 1
	}
	sum := 0.0
	sign := 1.0
	for k := 1; k <= 100; k++ {
		term := sign * math.Exp(-2*float64(k*k)*lambda*lambda)
		sum += term
		if math.Abs(term) < 1e-12 {
			break
		}
		sign = -sign
	}
	return Clamp(2*sum, 0, 1)
}

// NewRand returns a deterministic PCG generator for the given seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
