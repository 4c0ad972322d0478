// Package extreme implements the extreme-scenario simulator: ruin replay,
// bootstrap resampling, tail extremes, forward capital growth and
// capital-curve regression.
package extreme

import (
	"strategy-validator/internal/analysis"
	"strategy-validator/internal/domain"
)

// Result groups the five extreme-scenario analyses.
type Result struct {
	CapitalShortage   CapitalShortage   `json:"4-4_capital_shortage"`
	Bootstrap         Bootstrap         `json:"5-2_bootstrap"`
	ExtremeValues     ExtremeValues     `json:"5-3_extreme_values"`
	CapitalGrowth     CapitalGrowth     `json:"6-2_capital_growth"`
	CapitalRegression CapitalRegression `json:"6-3_capital_regression"`
}

// Analyzer runs the extreme-scenario analyses.
type Analyzer struct {
	params analysis.Params
}

// New creates an extreme-scenario analyzer.
func New(params analysis.Params) *Analyzer {
	return &Analyzer{params: params}
}

// Analyze runs all five analyses. Returns domain.ErrEmptyTable for an empty
// table and analysis.ErrInvalidParams when the bootstrap bound is exceeded.
func (a *Analyzer) Analyze(tt *domain.TradeTable) (*Result, error) {
	if tt.Len() == 0 {
		return nil, domain.ErrEmptyTable
	}
	if err := a.params.Validate(); err != nil {
		return nil, err
	}
	p := a.params
	returns := tt.Returns()

	path := ReplayCapital(returns, p.InitialCapital, p.LotPct)
	return &Result{
		CapitalShortage:   AnalyzeCapitalShortage(path, p.InitialCapital),
		Bootstrap:         RunBootstrap(tt.DecimalReturns(), p.BootstrapIterations, p.ConfidenceLevel, p.Seed),
		ExtremeValues:     AnalyzeExtremes(returns, p.ExtremePercentile),
		CapitalGrowth:     ProjectGrowth(tt.DecimalReturns(), p.InitialCapital, p.GrowthMonths),
		CapitalRegression: RegressCapital(path),
	}, nil
}
