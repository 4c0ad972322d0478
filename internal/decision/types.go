package decision

import (
	"errors"
	"fmt"
)

// Decision represents the final deployment verdict.
type Decision string

const (
	DecisionGO            Decision = "GO"
	DecisionConditionalGO Decision = "CONDITIONAL-GO"
	DecisionNOGO          Decision = "NO-GO"
)

// Tier names the gate tier that produced the verdict.
type Tier string

const (
	Tier1    Tier = "Tier 1"
	Tier2    Tier = "Tier 2"
	Tier3    Tier = "Tier 3"
	AllClear Tier = "All Clear"
)

// Validation errors for GateInput.
var (
	ErrNilInput         = errors.New("nil input")
	ErrNegativeTrades   = errors.New("total trades must be >= 0")
	ErrWinRateRange     = errors.New("win rate must be within [0, 1]")
	ErrNegativeDays     = errors.New("total days must be >= 0")
	ErrPositiveDrawdown = errors.New("max drawdown must be <= 0")
)

// GateInput contains the metrics read by the disqualification gate.
// Pointer fields come from individual analyses and are nil when that
// analysis is unavailable; the matching criterion is then skipped.
type GateInput struct {
	TotalTrades int
	WinRate     float64 // 0..1, wins are returns > 0
	MaxDrawdown float64 // ratio <= 0 on the capital curve
	TotalDays   int

	WinRatePValue       *float64
	Sharpe               *float64
	MaxConsecutiveLosses *int
	AvgLosingReturn      *float64 // percent, <= 0
	RiskRewardRatio      *float64
	NegativeMonths       *int
	MonthlyConsistency  *float64
}

// Validate checks GateInput for structurally invalid values.
func (in *GateInput) Validate() error {
	if in == nil {
		return ErrNilInput
	}
	if in.TotalTrades < 0 {
		return fmt.Errorf("%w: %d", ErrNegativeTrades, in.TotalTrades)
	}
	if in.WinRate < 0 || in.WinRate > 1 {
		return fmt.Errorf("%w: %v", ErrWinRateRange, in.WinRate)
	}
	if in.TotalDays < 0 {
		return fmt.Errorf("%w: %d", ErrNegativeDays, in.TotalDays)
	}
	if in.MaxDrawdown > 0 {
		return fmt.Errorf("%w: %v", ErrPositiveDrawdown, in.MaxDrawdown)
	}
	return nil
}

// CriterionResult represents one gate check. Pass=false means the check
// fired. Evaluated is false when the input it reads was unavailable.
type CriterionResult struct {
	Tier      Tier   `json:"tier"`
	Name      string `json:"name"`
	Threshold string `json:"threshold"`
	Actual    string `json:"actual"`
	Pass      bool   `json:"pass"`
	Evaluated bool   `json:"evaluated"`
}

// Verdict is the outcome of the disqualification gate.
type Verdict struct {
	Decision          Decision          `json:"status"`
	Tier              Tier              `json:"tier"`
	Reasons           []string          `json:"reasons"`
	TotalTrades       int               `json:"total_trades"`
	WinRatePct        float64           `json:"win_rate"`
	MaxDrawdown       float64           `json:"max_drawdown"`
	TradingPeriodDays int               `json:"trading_period_days"`
	Checklist         []CriterionResult `json:"checklist"`
}

// ScoreInput contains the metrics read by the composite scorer. Nil
// pointers score the neutral value.
type ScoreInput struct {
	WinRate        float64 // 0..1
	TotalReturn    float64 // sum of percent returns
	InitialCapital float64

	WalkForwardScore    *float64
	MonthlyConsistency  *float64
	WinRatePValue       *float64
	ProfitFactor        *float64
	Survived            *bool
	MarginOfSafety      *float64
	Sharpe              *float64
	ProfitSlopeRSquared *float64
}

// Score categories in report order.
const (
	CategoryBacktest    = "backtest_performance"
	CategoryWalkForward = "walk_forward"
	CategoryStability   = "timeseries_stability"
	CategoryConfidence  = "statistical_confidence"
	CategoryTrades      = "trade_characteristics"
	CategoryExtreme     = "extreme_survivability"
	CategoryPosition    = "position_optimization"
	CategoryAdvanced    = "advanced_statistics"
)

// ScoreCategories lists the eight categories in report order.
var ScoreCategories = []string{
	CategoryBacktest,
	CategoryWalkForward,
	CategoryStability,
	CategoryConfidence,
	CategoryTrades,
	CategoryExtreme,
	CategoryPosition,
	CategoryAdvanced,
}

// Rating buckets for the aggregate score.
const (
	RatingExcellent        = "excellent"
	RatingGood             = "good"
	RatingFair             = "fair"
	RatingNeedsImprovement = "needs_improvement"
)

// FinalScore is the composite score. Neutral lists categories that fell
// back to the neutral value because their input was unavailable.
type FinalScore struct {
	Scores     map[string]float64 `json:"scores"`
	FinalScore float64            `json:"final_score"`
	Rating     string             `json:"rating"`
	Neutral    []string           `json:"neutral_categories"`
}
