package extreme

import "strategy-validator/internal/metrics"

// Bootstrap summarizes the resampled distribution of the mean return.
// Means are reported in percent. StandardError is the spread of the
// resampled means, which estimates the standard error of the mean.
type Bootstrap struct {
	Iterations          int     `json:"n_iterations"`
	MeanReturn          float64 `json:"mean_return"`
	BootstrapMean       float64 `json:"bootstrap_mean"`
	BootstrapStd        float64 `json:"bootstrap_std"`
	ConfidenceLevel     float64 `json:"confidence_level"`
	CILower             float64 `json:"confidence_interval_lower"`
	CIUpper             float64 `json:"confidence_interval_upper"`
	CIRange             float64 `json:"ci_range"`
	StandardError       float64 `json:"standard_error"`
	ProbabilityPositive float64 `json:"probability_positive_return"`
}

// RunBootstrap draws iterations resamples with replacement from decimal
// returns and reports the percentile confidence interval of the mean.
// The same seed always yields the same result.
func RunBootstrap(returns []float64, iterations int, confidence float64, seed uint64) Bootstrap {
	res := Bootstrap{Iterations: iterations, ConfidenceLevel: confidence}
	n := len(returns)
	if n == 0 || iterations < 1 {
		return res
	}

	rng := metrics.NewRand(seed)
	means := make([]float64, iterations)
	positive := 0
	for i := range means {
		sum := 0.0
		for j := 0; j < n; j++ {
			sum += returns[rng.IntN(n)]
		}
		means[i] = sum / float64(n) * 100
		if means[i] > 0 {
			positive++
		}
	}

	sorted := metrics.Sorted(means)
	alpha := 1 - confidence
	res.MeanReturn = metrics.Mean(returns) * 100
	res.BootstrapMean = metrics.Mean(means)
	res.BootstrapStd = metrics.StdDev(means, 0)
	res.CILower = metrics.Percentile(sorted, alpha/2)
	res.CIUpper = metrics.Percentile(sorted, 1-alpha/2)
	res.CIRange = res.CIUpper - res.CILower
	res.StandardError = res.BootstrapStd
	res.ProbabilityPositive = float64(positive) / float64(iterations)
	return res
}
