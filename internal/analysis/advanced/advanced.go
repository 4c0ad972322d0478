// Package advanced implements regression and time-series diagnostics on
// the trade sequence: profit-curve slope significance, autocorrelation and
// heteroscedasticity.
package advanced

import (
	"strategy-validator/internal/analysis"
	"strategy-validator/internal/domain"
)

// Result groups the advanced statistics analyses.
type Result struct {
	ProfitSlope        ProfitSlope        `json:"8-1_profit_slope"`
	Autocorrelation    Autocorrelation    `json:"8-2_autocorrelation"`
	Heteroscedasticity Heteroscedasticity `json:"8-3_heteroscedasticity"`
}

// Analyzer runs the advanced statistics analyses.
type Analyzer struct {
	params analysis.Params
}

// New creates an advanced statistics analyzer.
func New(params analysis.Params) *Analyzer {
	return &Analyzer{params: params}
}

// Analyze runs all three analyses. Returns domain.ErrEmptyTable for an empty table.
func (a *Analyzer) Analyze(tt *domain.TradeTable) (*Result, error) {
	if tt.Len() == 0 {
		return nil, domain.ErrEmptyTable
	}
	return &Result{
		ProfitSlope:        TestProfitSlope(tt.Returns()),
		Autocorrelation:    TestAutocorrelation(tt.DecimalReturns(), a.params.ACFLags),
		Heteroscedasticity: TestHeteroscedasticity(tt.DecimalReturns()),
	}, nil
}
