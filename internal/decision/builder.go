package decision

import (
	"strategy-validator/internal/analysis/advanced"
	"strategy-validator/internal/analysis/extreme"
	"strategy-validator/internal/analysis/sizing"
	"strategy-validator/internal/analysis/statistics"
	"strategy-validator/internal/analysis/timeseries"
	"strategy-validator/internal/analysis/trades"
	"strategy-validator/internal/domain"
	"strategy-validator/internal/metrics"
)

// Results holds the merged analyzer outputs. A nil field marks a category
// whose analyzer failed; it is omitted from JSON.
type Results struct {
	Timeseries      *timeseries.Result `json:"timeseries,omitempty"`
	Statistics      *statistics.Result `json:"statistics,omitempty"`
	TradeAnalysis   *trades.Result     `json:"trade_analysis,omitempty"`
	ExtremeScenario *extreme.Result    `json:"extreme_scenario,omitempty"`
	PositionSizing  *sizing.Result     `json:"position_sizing,omitempty"`
	AdvancedStats   *advanced.Result   `json:"advanced_stats,omitempty"`
}

// Builder constructs GateInput and ScoreInput from a trade table and the
// analyzer results computed on it.
type Builder struct {
	initialCapital float64
}

// NewBuilder creates a new input builder.
func NewBuilder(initialCapital float64) *Builder {
	return &Builder{initialCapital: initialCapital}
}

// BuildGate creates GateInput. totalDays is the calendar span used for the
// trading-period and trade-frequency checks.
func (b *Builder) BuildGate(tt *domain.TradeTable, totalDays int, res Results) (*GateInput, error) {
	input := &GateInput{
		TotalTrades: tt.Len(),
		WinRate:     winRate(tt.Returns()),
		MaxDrawdown: CapitalDrawdown(tt, b.initialCapital),
		TotalDays:   totalDays,
	}

	if s := res.Statistics; s != nil {
		input.WinRatePValue = ptr(s.WinRate.PValue)
	}
	if p := res.PositionSizing; p != nil {
		input.Sharpe = ptr(p.RiskAdjusted.Sharpe)
	}
	if ts := res.Timeseries; ts != nil {
		input.MaxConsecutiveLosses = ptr(ts.Streaks.MaxConsecutiveLosses)
		input.NegativeMonths = ptr(ts.Periodic.NegativeMonths)
		input.MonthlyConsistency = ptr(ts.Periodic.MonthlyConsistency)
	}
	if ta := res.TradeAnalysis; ta != nil {
		if ta.Comparison.Losers.Count > 0 {
			input.AvgLosingReturn = ptr(ta.Comparison.Losers.AvgReturn)
		}
		input.RiskRewardRatio = ptr(ta.Comparison.RiskRewardRatio)
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}
	return input, nil
}

// BuildScore creates ScoreInput. walkForward is the externally supplied
// walk-forward score, nil when none is available.
func (b *Builder) BuildScore(tt *domain.TradeTable, res Results, walkForward *float64) ScoreInput {
	input := ScoreInput{
		WinRate:          winRate(tt.Returns()),
		TotalReturn:      metrics.Sum(tt.Returns()),
		InitialCapital:   b.initialCapital,
		WalkForwardScore: walkForward,
	}

	if ts := res.Timeseries; ts != nil {
		input.MonthlyConsistency = ptr(ts.Periodic.MonthlyConsistency)
	}
	if s := res.Statistics; s != nil {
		input.WinRatePValue = ptr(s.WinRate.PValue)
	}
	if ta := res.TradeAnalysis; ta != nil {
		input.ProfitFactor = ptr(ta.Comparison.ProfitFactor)
	}
	if e := res.ExtremeScenario; e != nil {
		input.Survived = ptr(e.CapitalShortage.Survived)
		input.MarginOfSafety = ptr(e.CapitalShortage.MarginOfSafety)
	}
	if p := res.PositionSizing; p != nil {
		input.Sharpe = ptr(p.RiskAdjusted.Sharpe)
	}
	if a := res.AdvancedStats; a != nil {
		input.ProfitSlopeRSquared = ptr(a.ProfitSlope.RSquared)
	}
	return input
}

// CapitalDrawdown returns the worst running-max drawdown of the capital
// curve as a ratio <= 0. The curve is initial*(1+cumulative/100) when every
// trade carries a cumulative percent, otherwise initial*prod(1+r/100).
func CapitalDrawdown(tt *domain.TradeTable, initial float64) float64 {
	curve := make([]float64, 0, tt.Len())
	if tt.HasCumulative() {
		for _, t := range tt.Trades() {
			curve = append(curve, initial*(1+*t.CumulativePct/100))
		}
	} else {
		for _, v := range metrics.CompoundCurve(tt.DecimalReturns()) {
			curve = append(curve, initial*(1+v))
		}
	}
	return metrics.MaxDrawdownRatio(curve)
}

func winRate(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	wins := metrics.Filter(returns, func(r float64) bool { return r > 0 })
	return float64(len(wins)) / float64(len(returns))
}

func ptr[T any](v T) *T {
	return &v
}
