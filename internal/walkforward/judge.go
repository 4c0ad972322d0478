// Package walkforward splits a trade table chronologically into Train and
// Test partitions and scores how well the Train performance carries over.
package walkforward

import (
	"errors"
	"fmt"
	"math"
	"time"

	"strategy-validator/internal/domain"
	"strategy-validator/internal/metrics"
)

// DefaultTrainRatio is the Train share of trades when none is given.
const DefaultTrainRatio = 0.7

// ErrInvalidRatio is returned for a train ratio outside (0, 1).
var ErrInvalidRatio = errors.New("train ratio must be within (0, 1)")

// Judgments for the overall overfitting score.
const (
	JudgmentDeploy      = "deploy"
	JudgmentConditional = "conditional"
	JudgmentReoptimize  = "re-optimize"
)

// Ratings for an individual check.
const (
	RatingExcellent = "excellent"
	RatingFair      = "fair"
	RatingUnstable  = "unstable"
)

// PartitionMetrics are the performance metrics of one partition. Returns
// and drawdown are in percent.
type PartitionMetrics struct {
	TotalTrades   int        `json:"total_trades"`
	WinningTrades int        `json:"winning_trades"`
	LosingTrades  int        `json:"losing_trades"`
	WinRate       float64    `json:"win_rate"`
	TotalReturn   float64    `json:"total_return"`
	AvgReturn     float64    `json:"avg_return"`
	AvgWin        float64    `json:"avg_win"`
	AvgLoss       float64    `json:"avg_loss"`
	MaxWin        float64    `json:"max_win"`
	MaxLoss       float64    `json:"max_loss"`
	MaxDrawdown   float64    `json:"max_drawdown"`
	ProfitFactor  float64    `json:"profit_factor"`
	StartDate     *time.Time `json:"start_date"`
	EndDate       *time.Time `json:"end_date"`
}

// Comparison contrasts Test against Train.
type Comparison struct {
	WinRateDiff      float64 `json:"win_rate_diff"`
	ReturnDiffPct    float64 `json:"return_diff_pct"`
	DrawdownRatio    float64 `json:"dd_ratio"`
	ProfitFactorDiff float64 `json:"pf_diff"`
}

// Check is one scored comparison.
type Check struct {
	Rating string `json:"rating"`
	Points int    `json:"points"`
}

// Checks holds the three scored comparisons.
type Checks struct {
	WinRate  Check `json:"win_rate"`
	Return   Check `json:"return"`
	Drawdown Check `json:"drawdown"`
}

// Result is a single Train/Test judgment.
type Result struct {
	TrainRatio float64          `json:"train_ratio"`
	SplitIndex int              `json:"split_index"`
	Train      PartitionMetrics `json:"train_metrics"`
	Test       PartitionMetrics `json:"test_metrics"`
	Comparison Comparison       `json:"comparison"`
	Score      int              `json:"overfit_score"`
	Checks     Checks           `json:"judgments"`
	Judgment   string           `json:"final_judgment"`
}

// Judge splits tt at floor(n*trainRatio): Train is the prefix and Test the
// suffix. An empty partition yields zeroed metrics.
func Judge(tt *domain.TradeTable, trainRatio float64) (*Result, error) {
	if !(trainRatio > 0 && trainRatio < 1) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRatio, trainRatio)
	}
	split := int(float64(tt.Len()) * trainRatio)
	res := judgeSplit(tt.Slice(0, split), tt.Slice(split, tt.Len()))
	res.TrainRatio = trainRatio
	res.SplitIndex = split
	return res, nil
}

func judgeSplit(train, test *domain.TradeTable) *Result {
	trainM := Measure(train)
	testM := Measure(test)
	cmp := Compare(trainM, testM)
	checks, score := scoreComparison(cmp)
	return &Result{
		Train:      trainM,
		Test:       testM,
		Comparison: cmp,
		Score:      score,
		Checks:     checks,
		Judgment:   judge(score),
	}
}

// Measure computes the partition metrics of tt.
func Measure(tt *domain.TradeTable) PartitionMetrics {
	n := tt.Len()
	if n == 0 {
		return PartitionMetrics{}
	}
	returns := tt.Returns()
	wins := metrics.Filter(returns, func(r float64) bool { return r > 0 })
	losses := metrics.Filter(returns, func(r float64) bool { return r < 0 })

	grossLoss := math.Abs(metrics.Sum(losses))
	m := PartitionMetrics{
		TotalTrades:   n,
		WinningTrades: len(wins),
		LosingTrades:  len(losses),
		WinRate:       float64(len(wins)) / float64(n) * 100,
		TotalReturn:   metrics.Sum(returns),
		AvgReturn:     metrics.Mean(returns),
		AvgWin:        metrics.Mean(wins),
		AvgLoss:       metrics.Mean(losses),
		MaxWin:        metrics.Max(returns),
		MaxLoss:       metrics.Min(returns),
		ProfitFactor:  metrics.SafeDiv(metrics.Sum(wins), grossLoss, 0),
	}

	curve := make([]float64, 0, n)
	acc := 1.0
	for _, r := range returns {
		acc *= 1 + r/100
		curve = append(curve, acc)
	}
	m.MaxDrawdown = metrics.MaxDrawdownRatio(curve) * 100

	start, end := tt.Span()
	start, end = start.UTC(), end.UTC()
	m.StartDate, m.EndDate = &start, &end
	return m
}

// Compare contrasts test against train. The return difference is 0 when the
// Train average is 0; the drawdown ratio is 1 when Train has no drawdown.
func Compare(train, test PartitionMetrics) Comparison {
	c := Comparison{
		WinRateDiff:      test.WinRate - train.WinRate,
		DrawdownRatio:    1.0,
		ProfitFactorDiff: test.ProfitFactor - train.ProfitFactor,
	}
	if train.AvgReturn != 0 {
		c.ReturnDiffPct = (test.AvgReturn - train.AvgReturn) / math.Abs(train.AvgReturn) * 100
	}
	if train.MaxDrawdown != 0 {
		c.DrawdownRatio = math.Abs(test.MaxDrawdown / train.MaxDrawdown)
	}
	return c
}

func scoreComparison(c Comparison) (Checks, int) {
	checks := Checks{
		WinRate:  band(math.Abs(c.WinRateDiff), 5, 10, 30, 20),
		Return:   band(math.Abs(c.ReturnDiffPct), 20, 50, 30, 20),
		Drawdown: band(c.DrawdownRatio, 2, 3, 40, 25),
	}
	return checks, checks.WinRate.Points + checks.Return.Points + checks.Drawdown.Points
}

func band(v, good, fair float64, goodPts, fairPts int) Check {
	switch {
	case v < good:
		return Check{Rating: RatingExcellent, Points: goodPts}
	case v < fair:
		return Check{Rating: RatingFair, Points: fairPts}
	default:
		return Check{Rating: RatingUnstable}
	}
}

func judge(score int) string {
	switch {
	case score >= 80:
		return JudgmentDeploy
	case score >= 60:
		return JudgmentConditional
	default:
		return JudgmentReoptimize
	}
}
