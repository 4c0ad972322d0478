// Package analysis holds the parameters shared by the trade-table analyzers.
// Each sub-package implements one analyzer category and is independent of
// the others.
package analysis

import (
	"errors"
	"fmt"
)

// Category names, used as keys under "validators" in the report.
const (
	CategoryTimeSeries      = "timeseries"
	CategoryStatistics      = "statistics"
	CategoryTradeAnalysis   = "trade_analysis"
	CategoryExtremeScenario = "extreme_scenario"
	CategoryPositionSizing  = "position_sizing"
	CategoryAdvancedStats   = "advanced_stats"
)

// Categories lists every analyzer category in report order.
var Categories = []string{
	CategoryTimeSeries,
	CategoryStatistics,
	CategoryTradeAnalysis,
	CategoryExtremeScenario,
	CategoryPositionSizing,
	CategoryAdvancedStats,
}

// ErrInvalidParams is returned when Params fail validation.
var ErrInvalidParams = errors.New("invalid analysis parameters")

// Params configures the analyzers. Zero values are not meaningful; start from
// DefaultParams.
type Params struct {
	InitialCapital      float64 // starting capital for replays
	LotPct              float64 // fixed fraction of current capital per trade, in percent
	ConfidenceLevel     float64 // for confidence intervals and VaR
	RiskFreeRate        float64 // annual, decimal
	BootstrapIterations int
	MaxBootstrap        int
	Seed                uint64 // RNG seed for bootstrap and sub-sampling
	ACFLags             int
	ExtremePercentile   float64 // tail percentile for 5-3, in percent
	GrowthMonths        int
	LotWindow           int // trades per dynamic-lot window
	BaseLotPct          float64

	// TotalDays overrides the table span when positive.
	TotalDays int
}

// DefaultParams returns the standard configuration.
func DefaultParams() Params {
	return Params{
		InitialCapital:      50,
		LotPct:              1.0,
		ConfidenceLevel:     0.95,
		RiskFreeRate:        0.02,
		BootstrapIterations: 1000,
		MaxBootstrap:        100000,
		Seed:                42,
		ACFLags:             10,
		ExtremePercentile:   10,
		GrowthMonths:        12,
		LotWindow:           20,
		BaseLotPct:          1.0,
	}
}

// Validate checks parameter ranges.
func (p Params) Validate() error {
	switch {
	case p.InitialCapital <= 0:
		return fmt.Errorf("%w: initial capital must be positive", ErrInvalidParams)
	case p.LotPct <= 0:
		return fmt.Errorf("%w: lot percent must be positive", ErrInvalidParams)
	case p.ConfidenceLevel <= 0 || p.ConfidenceLevel >= 1:
		return fmt.Errorf("%w: confidence level must be in (0, 1)", ErrInvalidParams)
	case p.BootstrapIterations < 1:
		return fmt.Errorf("%w: bootstrap iterations must be >= 1", ErrInvalidParams)
	case p.MaxBootstrap > 0 && p.BootstrapIterations > p.MaxBootstrap:
		return fmt.Errorf("%w: bootstrap iterations %d exceed limit %d", ErrInvalidParams, p.BootstrapIterations, p.MaxBootstrap)
	case p.ACFLags < 1:
		return fmt.Errorf("%w: acf lags must be >= 1", ErrInvalidParams)
	case p.ExtremePercentile <= 0 || p.ExtremePercentile >= 50:
		return fmt.Errorf("%w: extreme percentile must be in (0, 50)", ErrInvalidParams)
	case p.GrowthMonths < 1:
		return fmt.Errorf("%w: growth months must be >= 1", ErrInvalidParams)
	case p.LotWindow < 2:
		return fmt.Errorf("%w: lot window must be >= 2", ErrInvalidParams)
	case p.BaseLotPct <= 0:
		return fmt.Errorf("%w: base lot percent must be positive", ErrInvalidParams)
	}
	return nil
}
