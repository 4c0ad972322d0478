// Package statistics implements the statistical test battery: win-rate
// significance, profit significance, distribution shape and tail risk.
package statistics

import (
	"math"

	"strategy-validator/internal/analysis"
	"strategy-validator/internal/domain"
	"strategy-validator/internal/metrics"
)

// Result groups the four statistical analyses.
type Result struct {
	WinRate      WinRateTest  `json:"2-1_win_rate"`
	Profit       ProfitTest   `json:"2-2_profit"`
	Distribution Distribution `json:"2-3_distribution"`
	TailRisk     TailRisk     `json:"2-4_tail_risk"`
}

// Analyzer runs the statistical battery over a trade table.
type Analyzer struct {
	params analysis.Params
}

// New creates a statistics analyzer.
func New(params analysis.Params) *Analyzer {
	return &Analyzer{params: params}
}

// Analyze runs all four tests. Returns domain.ErrEmptyTable for an empty table.
func (a *Analyzer) Analyze(tt *domain.TradeTable) (*Result, error) {
	if tt.Len() == 0 {
		return nil, domain.ErrEmptyTable
	}
	returns := tt.Returns()

	return &Result{
		WinRate:      WinRateSignificance(returns, a.params.ConfidenceLevel),
		Profit:       ProfitSignificance(returns),
		Distribution: AnalyzeDistribution(returns, a.params.Seed),
		TailRisk:     AnalyzeTailRisk(returns, a.params.ConfidenceLevel),
	}, nil
}

// Confidence assessment buckets for the win-rate p-value.
const (
	ConfidenceVeryHigh = "very_high"
	ConfidenceHigh     = "high"
	ConfidenceModerate = "moderate"
	ConfidenceLow      = "low"
)

// WinRateTest is the result of the win-rate significance test.
type WinRateTest struct {
	TotalTrades     int     `json:"total_trades"`
	Wins            int     `json:"wins"`
	Losses          int     `json:"losses"`
	WinRate         float64 `json:"observed_win_rate"`
	WinRatePct      float64 `json:"observed_win_rate_pct"`
	PValue          float64 `json:"p_value"`
	Significant     bool    `json:"p_value_significant"`
	ConfidenceLevel float64 `json:"confidence_level"`
	CILower         float64 `json:"confidence_interval_lower"`
	CIUpper         float64 `json:"confidence_interval_upper"`
	CIRangePct      float64 `json:"ci_range_pct"`
	ZScore          float64 `json:"z_score"`
	Assessment      string  `json:"confidence_assessment"`
	RequiredTrades  int     `json:"required_trades_for_significance"` // -1 when not computable
}

// WinRateSignificance tests H0: win probability = 0.5 with an exact binomial test.
// Losses counts every non-winning trade.
func WinRateSignificance(returns []float64, confidence float64) WinRateTest {
	n := len(returns)
	wins := 0
	for _, r := range returns {
		if r > 0 {
			wins++
		}
	}
	res := WinRateTest{
		TotalTrades:     n,
		Wins:            wins,
		Losses:          n - wins,
		ConfidenceLevel: confidence,
		PValue:          1,
		Assessment:      ConfidenceLow,
		RequiredTrades:  -1,
	}
	if n == 0 {
		return res
	}

	p := float64(wins) / float64(n)
	res.WinRate = p
	res.WinRatePct = p * 100
	res.PValue = metrics.BinomialTwoSidedP(wins, n)
	res.Significant = res.PValue < 0.05
	res.CILower, res.CIUpper = metrics.WilsonInterval(wins, n, confidence)
	res.CIRangePct = (res.CIUpper - res.CILower) * 100
	res.ZScore = (p - 0.5) / math.Sqrt(0.25/float64(n))
	res.Assessment = assessConfidence(res.PValue)
	res.RequiredTrades = metrics.RequiredSampleSize(p, 0.05, 0.80)
	return res
}

func assessConfidence(p float64) string {
	switch {
	case p < 0.001:
		return ConfidenceVeryHigh
	case p < 0.01:
		return ConfidenceHigh
	case p < 0.05:
		return ConfidenceModerate
	default:
		return ConfidenceLow
	}
}

// Effect size buckets for Cohen's d.
const (
	EffectNegligible = "negligible"
	EffectSmall      = "small"
	EffectMedium     = "medium"
	EffectLarge      = "large"
)

// ProfitTest is the one-sample t-test of mean return against zero.
type ProfitTest struct {
	MeanReturn  float64 `json:"mean_return"`
	StdReturn   float64 `json:"std_return"`
	StdError    float64 `json:"std_error"`
	TStatistic  float64 `json:"t_statistic"`
	PValue      float64 `json:"p_value"`
	Significant bool    `json:"p_value_significant"`
	CILower     float64 `json:"confidence_interval_lower"`
	CIUpper     float64 `json:"confidence_interval_upper"`
	CohensD     float64 `json:"cohens_d"`
	EffectSize  string  `json:"effect_size"`
	Positive    int     `json:"positive_returns"`
	Negative    int     `json:"negative_returns"`
	Neutral     int     `json:"neutral_returns"`
}

// ProfitSignificance runs a one-sample t-test (sample std, df n-1) and a
// normal-approximation 95% CI on the mean. Fewer than two points or zero
// variance yields t = 0, p = 1.
func ProfitSignificance(returns []float64) ProfitTest {
	n := len(returns)
	res := ProfitTest{PValue: 1, EffectSize: EffectNegligible}
	if n == 0 {
		return res
	}

	mean := metrics.Mean(returns)
	std := metrics.StdDev(returns, 0)
	se := std / math.Sqrt(float64(n))

	res.MeanReturn = mean
	res.StdReturn = std
	res.StdError = se
	res.CILower = mean - 1.96*se
	res.CIUpper = mean + 1.96*se
	res.CohensD = metrics.SafeDiv(mean, std, 0)
	res.EffectSize = effectBucket(res.CohensD)

	if sample := metrics.StdDev(returns, 1); n >= 2 && sample > 0 {
		res.TStatistic = mean / (sample / math.Sqrt(float64(n)))
		res.PValue = metrics.StudentTTwoSidedP(res.TStatistic, n-1)
	}
	res.Significant = res.PValue < 0.05

	for _, r := range returns {
		switch {
		case r > 0:
			res.Positive++
		case r < 0:
			res.Negative++
		default:
			res.Neutral++
		}
	}
	return res
}

func effectBucket(d float64) string {
	switch d = math.Abs(d); {
	case d < 0.2:
		return EffectNegligible
	case d < 0.5:
		return EffectSmall
	case d < 0.8:
		return EffectMedium
	default:
		return EffectLarge
	}
}
