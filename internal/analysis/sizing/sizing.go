// Package sizing implements the position sizing analyzer: risk-adjusted
// ratios, the Kelly criterion and Sharpe-driven dynamic lot sizing. All
// computations use decimal returns (percent / 100).
package sizing

import (
	"math"

	"strategy-validator/internal/analysis"
	"strategy-validator/internal/domain"
	"strategy-validator/internal/metrics"
)

// Result groups the position sizing analyses.
type Result struct {
	RiskAdjusted RiskAdjusted `json:"7-3_risk_adjusted"`
	Kelly        Kelly        `json:"9-1_kelly"`
	DynamicLot   DynamicLot   `json:"9-3_dynamic_lot"`
}

// Analyzer runs the position sizing analyses.
type Analyzer struct {
	params analysis.Params
}

// New creates a position sizing analyzer.
func New(params analysis.Params) *Analyzer {
	return &Analyzer{params: params}
}

// Analyze runs all three analyses. Returns domain.ErrEmptyTable for an empty table.
func (a *Analyzer) Analyze(tt *domain.TradeTable) (*Result, error) {
	if tt.Len() == 0 {
		return nil, domain.ErrEmptyTable
	}
	returns := tt.DecimalReturns()
	return &Result{
		RiskAdjusted: RankRiskAdjusted(returns, a.params.RiskFreeRate),
		Kelly:        CalculateKelly(returns),
		DynamicLot:   CalculateDynamicLot(returns, a.params.RiskFreeRate, a.params.BaseLotPct, a.params.LotWindow),
	}, nil
}

// Performance rank tiers.
const (
	RankTop10    = "top_10_pct"
	RankTop25    = "top_25_pct"
	RankTop50    = "top_50_pct"
	RankAverage  = "average"
	RankBottom25 = "bottom_25_pct"
)

// Rank is the mean of Sharpe, Sortino and Calmar with its tier.
type Rank struct {
	AverageScore float64 `json:"average_score"`
	Tier         string  `json:"rank"`
}

// RiskAdjusted holds annualized risk-adjusted ratios. Percent fields are x100.
type RiskAdjusted struct {
	Sharpe           float64 `json:"sharpe_ratio"`
	Sortino          float64 `json:"sortino_ratio"`
	Calmar           float64 `json:"calmar_ratio"`
	MeanReturn       float64 `json:"mean_return"`
	StdReturn        float64 `json:"std_return"`
	AnnualReturn     float64 `json:"annual_return"`
	AnnualVolatility float64 `json:"annual_volatility"`
	MaxDrawdown      float64 `json:"max_drawdown"`
	Rank             Rank    `json:"rank"`
}

// AnnualizedSharpe returns (mean*252 - rf) / (std*sqrt(252)) with population
// std, or 0 when std is zero.
func AnnualizedSharpe(returns []float64, riskFree float64) float64 {
	annualStd := metrics.StdDev(returns, 0) * math.Sqrt(metrics.TradingDaysPerYear)
	if annualStd == 0 {
		return 0
	}
	return (metrics.Mean(returns)*metrics.TradingDaysPerYear - riskFree) / annualStd
}

// RankRiskAdjusted computes Sharpe, Sortino and Calmar. Calmar uses the
// drawdown of the straight compounded curve. Zero denominators yield 0.
func RankRiskAdjusted(returns []float64, riskFree float64) RiskAdjusted {
	mean := metrics.Mean(returns)
	std := metrics.StdDev(returns, 0)
	annual := mean * metrics.TradingDaysPerYear
	annualStd := std * math.Sqrt(metrics.TradingDaysPerYear)

	downside := metrics.Filter(returns, func(r float64) bool { return r < 0 })
	downsideStd := metrics.StdDev(downside, 0) * math.Sqrt(metrics.TradingDaysPerYear)

	maxDD := math.Abs(metrics.Min(metrics.RelativeDrawdowns(metrics.CompoundCurve(returns))))

	res := RiskAdjusted{
		Sharpe:           metrics.SafeDiv(annual-riskFree, annualStd, 0),
		Sortino:          metrics.SafeDiv(annual-riskFree, downsideStd, 0),
		Calmar:           metrics.SafeDiv(annual, maxDD, 0),
		MeanReturn:       mean * 100,
		StdReturn:        std * 100,
		AnnualReturn:     annual * 100,
		AnnualVolatility: annualStd * 100,
		MaxDrawdown:      maxDD * 100,
	}
	res.Rank = rankPerformance(res.Sharpe, res.Sortino, res.Calmar)
	return res
}

func rankPerformance(sharpe, sortino, calmar float64) Rank {
	avg := (sharpe + sortino + calmar) / 3
	r := Rank{AverageScore: avg}
	switch {
	case avg > 2:
		r.Tier = RankTop10
	case avg > 1.5:
		r.Tier = RankTop25
	case avg > 1:
		r.Tier = RankTop50
	case avg > 0.5:
		r.Tier = RankAverage
	default:
		r.Tier = RankBottom25
	}
	return r
}
