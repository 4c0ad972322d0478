package decision

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScore_AllNeutral(t *testing.T) {
	fs := NewScorer().Score(ScoreInput{WinRate: 0.5, TotalReturn: 20, InitialCapital: 50})

	// backtest = 0.5*50 + 0.5*50 = 50, everything else neutral
	for _, c := range ScoreCategories {
		assert.InDelta(t, 50, fs.Scores[c], 1e-9, c)
	}
	assert.InDelta(t, 50, fs.FinalScore, 1e-9)
	assert.Equal(t, RatingNeedsImprovement, fs.Rating)
	assert.Len(t, fs.Neutral, 7)
}

func TestScore_Categories(t *testing.T) {
	input := ScoreInput{
		WinRate:             0.7,
		TotalReturn:         80,
		InitialCapital:      50,
		WalkForwardScore:    ptr(90.0),
		MonthlyConsistency:  ptr(0.25),
		WinRatePValue:       ptr(0.005),
		ProfitFactor:        ptr(1.5),
		Survived:            ptr(true),
		MarginOfSafety:      ptr(25.0),
		Sharpe:              ptr(1.0),
		ProfitSlopeRSquared: ptr(0.6),
	}
	fs := NewScorer().Score(input)

	want := map[string]float64{
		CategoryBacktest:    85,
		CategoryWalkForward: 90,
		CategoryStability:   75,
		CategoryConfidence:  90,
		CategoryTrades:      75,
		CategoryExtreme:     50,
		CategoryPosition:    50,
		CategoryAdvanced:    75,
	}
	for c, w := range want {
		assert.InDelta(t, w, fs.Scores[c], 1e-9, c)
	}
	assert.InDelta(t, 73.75, fs.FinalScore, 1e-9)
	assert.Equal(t, RatingFair, fs.Rating)
	assert.Empty(t, fs.Neutral)
}

func TestScore_NotSurvivedScoresZero(t *testing.T) {
	fs := NewScorer().Score(ScoreInput{Survived: ptr(false), MarginOfSafety: ptr(10.0), InitialCapital: 50})
	assert.Equal(t, 0.0, fs.Scores[CategoryExtreme])
}

func TestScore_FloorsAndCaps(t *testing.T) {
	fs := NewScorer().Score(ScoreInput{
		WinRate:        1,
		TotalReturn:    -10,
		InitialCapital: 50,
		Sharpe:         ptr(-3.0),
		ProfitFactor:   ptr(4.0),
	})
	assert.InDelta(t, 50, fs.Scores[CategoryBacktest], 1e-9)
	assert.Equal(t, 0.0, fs.Scores[CategoryPosition])
	assert.Equal(t, 100.0, fs.Scores[CategoryTrades])
}

func TestConfidenceScore(t *testing.T) {
	tests := []struct {
		p    float64
		want float64
	}{
		{0.0005, 100},
		{0.005, 90},
		{0.03, 80},
		{0.07, 60},
		{0.5, 30},
	}
	for _, tt := range tests {
		if got := confidenceScore(tt.p); got != tt.want {
			t.Errorf("confidenceScore(%v) = %v, want %v", tt.p, got, tt.want)
		}
	}
}

func TestRating(t *testing.T) {
	assert.Equal(t, RatingExcellent, Rating(85))
	assert.Equal(t, RatingGood, Rating(75))
	assert.Equal(t, RatingFair, Rating(60))
	assert.Equal(t, RatingNeedsImprovement, Rating(59.9))
}
