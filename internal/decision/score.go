package decision

import (
	"math"

	"strategy-validator/internal/metrics"
)

// NeutralScore is assigned to a category whose input is unavailable.
const NeutralScore = 50.0

// Scorer computes the eight-category composite score.
type Scorer struct{}

// NewScorer creates a new composite scorer.
func NewScorer() *Scorer {
	return &Scorer{}
}

// Score computes every category in [0, 100] and their unweighted mean.
func (s *Scorer) Score(input ScoreInput) *FinalScore {
	fs := &FinalScore{
		Scores:  make(map[string]float64, len(ScoreCategories)),
		Neutral: []string{},
	}
	set := func(category string, v *float64) {
		if v == nil {
			fs.Scores[category] = NeutralScore
			fs.Neutral = append(fs.Neutral, category)
			return
		}
		fs.Scores[category] = metrics.Clamp(metrics.Finite(*v), 0, 100)
	}

	// 1. Backtest: half win rate, half total return against a 40% target
	returnScore := 0.0
	if input.TotalReturn > 0 {
		returnScore = math.Min(input.TotalReturn/40*100, 100)
	}
	backtest := 0.5*math.Min(input.WinRate*100, 100) + 0.5*returnScore
	set(CategoryBacktest, &backtest)

	// 2. Walk-forward, supplied externally
	set(CategoryWalkForward, input.WalkForwardScore)

	// 3. Monthly stability
	set(CategoryStability, mapFloat(input.MonthlyConsistency, func(cv float64) float64 {
		return math.Max(0, 100*(1-math.Min(cv, 1)))
	}))

	// 4. Win-rate significance
	set(CategoryConfidence, mapFloat(input.WinRatePValue, confidenceScore))

	// 5. Profit factor, 2.0 scores full
	set(CategoryTrades, mapFloat(input.ProfitFactor, func(pf float64) float64 {
		return math.Min(pf*50, 100)
	}))

	// 6. Ruin survival and remaining margin
	var extreme *float64
	if input.Survived != nil {
		v := 0.0
		if *input.Survived && input.MarginOfSafety != nil && input.InitialCapital > 0 {
			v = math.Min(*input.MarginOfSafety/input.InitialCapital*100, 100)
		}
		extreme = &v
	}
	set(CategoryExtreme, extreme)

	// 7. Sharpe, 2.0 scores full
	set(CategoryPosition, mapFloat(input.Sharpe, func(sharpe float64) float64 {
		return math.Min(sharpe/2*100, 100)
	}))

	// 8. Profit slope fit
	set(CategoryAdvanced, mapFloat(input.ProfitSlopeRSquared, func(r2 float64) float64 {
		return math.Min(r2*125, 100)
	}))

	var sum float64
	for _, c := range ScoreCategories {
		sum += fs.Scores[c]
	}
	fs.FinalScore = sum / float64(len(ScoreCategories))
	fs.Rating = Rating(fs.FinalScore)
	return fs
}

func confidenceScore(p float64) float64 {
	switch {
	case p < 0.001:
		return 100
	case p < 0.01:
		return 90
	case p < 0.05:
		return 80
	case p < 0.1:
		return 60
	default:
		return 30
	}
}

// Rating buckets an aggregate score.
func Rating(score float64) string {
	switch {
	case score >= 85:
		return RatingExcellent
	case score >= 75:
		return RatingGood
	case score >= 60:
		return RatingFair
	default:
		return RatingNeedsImprovement
	}
}

func mapFloat(v *float64, f func(float64) float64) *float64 {
	if v == nil {
		return nil
	}
	out := f(*v)
	return &out
}
