package statistics

import (
	"math"

	"strategy-validator/internal/metrics"
)

// Shape and normality labels.
const (
	SkewSymmetric    = "symmetric"
	SkewRightTailed  = "right_tailed"
	SkewLeftTailed   = "left_tailed"
	KurtPlatykurtic  = "platykurtic"
	KurtNearNormal   = "near_normal"
	KurtLeptokurtic  = "leptokurtic"
	NormalityNormal  = "normal"
	NormalityPartial = "partial"
	NormalityNot     = "not_normal"
)

// Distribution describes the shape of the return distribution.
type Distribution struct {
	Mean                   float64 `json:"mean"`
	Median                 float64 `json:"median"`
	Mode                   float64 `json:"mode"`
	Skewness               float64 `json:"skewness"`
	SkewnessInterpretation string  `json:"skewness_interpretation"`
	Kurtosis               float64 `json:"kurtosis"`
	KurtosisInterpretation string  `json:"kurtosis_interpretation"`
	ShapiroWilkStat        float64 `json:"shapiro_wilk_stat"`
	ShapiroWilkP           float64 `json:"shapiro_wilk_p"`
	ShapiroWilkNormal      bool    `json:"shapiro_wilk_normal"`
	KSStat                 float64 `json:"kolmogorov_smirnov_stat"`
	KSP                    float64 `json:"kolmogorov_smirnov_p"`
	KSNormal               bool    `json:"kolmogorov_smirnov_normal"`
	Q1                     float64 `json:"q1"`
	Q3                     float64 `json:"q3"`
	IQR                    float64 `json:"iqr"`
	Normality              string  `json:"normality_assessment"`
}

// AnalyzeDistribution computes moments, quartiles and two normality tests.
// seed drives Shapiro-Wilk sub-sampling for large inputs.
func AnalyzeDistribution(returns []float64, seed uint64) Distribution {
	res := Distribution{}
	if len(returns) == 0 {
		res.SkewnessInterpretation = SkewSymmetric
		res.KurtosisInterpretation = KurtNearNormal
		res.ShapiroWilkStat, res.ShapiroWilkP = 1, 1
		res.KSP = 1
		res.Normality = NormalityNot
		return res
	}

	sorted := metrics.Sorted(returns)
	res.Mean = metrics.Mean(returns)
	res.Median = metrics.Percentile(sorted, 0.5)
	res.Mode = metrics.Mode(returns)
	res.Skewness = metrics.Skewness(returns)
	res.SkewnessInterpretation = skewBucket(res.Skewness)
	res.Kurtosis = metrics.ExcessKurtosis(returns)
	res.KurtosisInterpretation = kurtosisBucket(res.Kurtosis)

	res.ShapiroWilkStat, res.ShapiroWilkP = metrics.ShapiroWilk(returns, metrics.NewRand(seed))
	res.ShapiroWilkNormal = res.ShapiroWilkP > 0.05
	res.KSStat, res.KSP = metrics.KolmogorovSmirnov(returns, res.Mean, metrics.StdDev(returns, 0))
	res.KSNormal = res.KSP > 0.05

	res.Q1 = metrics.Percentile(sorted, 0.25)
	res.Q3 = metrics.Percentile(sorted, 0.75)
	res.IQR = res.Q3 - res.Q1

	switch {
	case res.ShapiroWilkNormal && res.KSNormal:
		res.Normality = NormalityNormal
	case res.ShapiroWilkNormal || res.KSNormal:
		res.Normality = NormalityPartial
	default:
		res.Normality = NormalityNot
	}
	return res
}

func skewBucket(s float64) string {
	switch {
	case math.Abs(s) < 0.5:
		return SkewSymmetric
	case s > 0:
		return SkewRightTailed
	default:
		return SkewLeftTailed
	}
}

func kurtosisBucket(k float64) string {
	switch {
	case k < -1:
		return KurtPlatykurtic
	case k <= 1:
		return KurtNearNormal
	default:
		return KurtLeptokurtic
	}
}
