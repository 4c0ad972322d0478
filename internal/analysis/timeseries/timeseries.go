// Package timeseries implements the time-series analyzer: periodic
// performance, streaks, holding periods, trade density and equity-curve
// diagnostics. All analyses are keyed on trade exit time (UTC).
package timeseries

import (
	"strategy-validator/internal/analysis"
	"strategy-validator/internal/domain"
)

// Result groups the five time-series analyses.
type Result struct {
	Periodic    Periodic    `json:"1-1_monthly"`
	Streaks     Streaks     `json:"1-2_consecutive"`
	Holding     Holding     `json:"1-3_holding_period"`
	Density     Density     `json:"1-4_trade_density"`
	EquityCurve EquityCurve `json:"1-5_equity_curve"`
}

// Analyzer runs the time-series analyses over a trade table.
type Analyzer struct {
	params analysis.Params
}

// New creates a time-series analyzer.
func New(params analysis.Params) *Analyzer {
	return &Analyzer{params: params}
}

// Analyze runs all five analyses. Returns domain.ErrEmptyTable for an empty table.
func (a *Analyzer) Analyze(tt *domain.TradeTable) (*Result, error) {
	if tt.Len() == 0 {
		return nil, domain.ErrEmptyTable
	}

	totalDays := a.params.TotalDays
	if totalDays <= 0 {
		totalDays = tt.TotalDays()
	}

	returns := tt.Returns()
	return &Result{
		Periodic:    AnalyzePeriods(tt.Trades()),
		Streaks:     AnalyzeStreaks(returns),
		Holding:     AnalyzeHolding(tt.HoldingHours(), returns),
		Density:     AnalyzeDensity(tt.Trades(), totalDays),
		EquityCurve: AnalyzeEquityCurve(returns),
	}, nil
}
