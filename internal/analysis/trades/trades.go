// Package trades implements the trade characteristics analyzer: the
// winner/loser comparison and return and holding-period classification.
// Winners have return > 0; everything else is a loser.
package trades

import (
	"math"

	"strategy-validator/internal/analysis"
	"strategy-validator/internal/domain"
	"strategy-validator/internal/metrics"
)

// Result groups the trade characteristics analyses.
type Result struct {
	Comparison     Comparison     `json:"3-1_win_loss_comparison"`
	Classification Classification `json:"3-2_classification"`
	Summary        Summary        `json:"trade_summary"`
	ProfitLoss     *ProfitLoss    `json:"profit_loss_analysis,omitempty"`
}

// Analyzer runs the trade characteristics analyses.
type Analyzer struct {
	params analysis.Params
}

// New creates a trade characteristics analyzer.
func New(params analysis.Params) *Analyzer {
	return &Analyzer{params: params}
}

// Analyze runs the comparison, classification and summary, plus the profit
// and loss deep dive when the table carries run-up and drawdown.
// Returns domain.ErrEmptyTable for an empty table.
func (a *Analyzer) Analyze(tt *domain.TradeTable) (*Result, error) {
	if tt.Len() == 0 {
		return nil, domain.ErrEmptyTable
	}
	cmp := Compare(tt)
	return &Result{
		Comparison:     cmp,
		Classification: Classify(tt.Trades()),
		Summary:        Summarize(tt.Returns(), cmp),
		ProfitLoss:     AnalyzeProfitLoss(tt),
	}, nil
}

// Side describes one partition (winners or losers).
type Side struct {
	Count           int      `json:"count"`
	Ratio           float64  `json:"ratio"`
	AvgReturn       float64  `json:"avg_return"`
	MedianReturn    float64  `json:"median_return"`
	MinReturn       float64  `json:"min_return"`
	MaxReturn       float64  `json:"max_return"`
	StdReturn       float64  `json:"std_return"`
	AvgRunup        *float64 `json:"avg_runup,omitempty"`
	AvgDrawdown     *float64 `json:"avg_drawdown,omitempty"`
	AvgHoldingHours *float64 `json:"avg_holding_hours,omitempty"`
}

// Comparison contrasts winning and losing trades.
type Comparison struct {
	Winners         Side    `json:"winning_trades"`
	Losers          Side    `json:"losing_trades"`
	RiskRewardRatio float64 `json:"risk_reward_ratio"`
	ProfitFactor    float64 `json:"profit_factor"`
}

// Compare partitions the table into winners (r > 0) and losers (r <= 0).
// Run-up and drawdown averages are reported only when every trade carries them.
// Risk-reward and profit factor are 0 when there is no loss magnitude.
func Compare(tt *domain.TradeTable) Comparison {
	var winners, losers []domain.Trade
	for _, t := range tt.Trades() {
		if t.ReturnPct > 0 {
			winners = append(winners, t)
		} else {
			losers = append(losers, t)
		}
	}

	n := tt.Len()
	withRunup, withDrawdown := tt.HasRunup(), tt.HasDrawdown()
	cmp := Comparison{
		Winners: describeSide(winners, n, withRunup, withDrawdown),
		Losers:  describeSide(losers, n, withRunup, withDrawdown),
	}

	avgW := math.Abs(cmp.Winners.AvgReturn)
	avgL := math.Abs(cmp.Losers.AvgReturn)
	if avgL > 0 {
		cmp.RiskRewardRatio = avgW / avgL
	}
	if len(losers) > 0 && avgL > 0 {
		cmp.ProfitFactor = (avgW * float64(len(winners))) / (avgL * float64(len(losers)))
	}
	return cmp
}

func describeSide(trades []domain.Trade, total int, withRunup, withDrawdown bool) Side {
	s := Side{Count: len(trades)}
	if len(trades) == 0 {
		return s
	}
	returns := make([]float64, len(trades))
	hours := make([]float64, len(trades))
	var runups, drawdowns []float64
	for i, t := range trades {
		returns[i] = t.ReturnPct
		hours[i] = t.HoldingHours()
		if withRunup {
			runups = append(runups, *t.RunupPct)
		}
		if withDrawdown {
			drawdowns = append(drawdowns, *t.DrawdownPct)
		}
	}

	s.Ratio = float64(len(trades)) / float64(total)
	s.AvgReturn = metrics.Mean(returns)
	s.MedianReturn = metrics.Median(returns)
	s.MinReturn = metrics.Min(returns)
	s.MaxReturn = metrics.Max(returns)
	s.StdReturn = metrics.StdDev(returns, 1)
	if withRunup {
		v := metrics.Mean(runups)
		s.AvgRunup = &v
	}
	if withDrawdown {
		v := metrics.Mean(drawdowns)
		s.AvgDrawdown = &v
	}
	h := metrics.Mean(hours)
	s.AvgHoldingHours = &h
	return s
}

// Summary is a headline view of the trade list.
type Summary struct {
	TotalTrades     int     `json:"total_trades"`
	WinningTrades   int     `json:"winning_trades"`
	LosingTrades    int     `json:"losing_trades"`
	WinRate         float64 `json:"win_rate"`
	AvgWin          float64 `json:"avg_win"`
	AvgLoss         float64 `json:"avg_loss"`
	LargestWin      float64 `json:"largest_win"`
	LargestLoss     float64 `json:"largest_loss"`
	ProfitFactor    float64 `json:"profit_factor"`
	RiskRewardRatio float64 `json:"risk_reward_ratio"`
}

// Summarize builds the headline view from returns and a comparison.
// LargestWin is the best positive return and LargestLoss the worst negative
// one; each is 0 when its side is empty.
func Summarize(returns []float64, cmp Comparison) Summary {
	s := Summary{
		TotalTrades:     len(returns),
		WinningTrades:   cmp.Winners.Count,
		LosingTrades:    cmp.Losers.Count,
		AvgWin:          cmp.Winners.AvgReturn,
		AvgLoss:         cmp.Losers.AvgReturn,
		LargestWin:      metrics.Max(metrics.Filter(returns, func(r float64) bool { return r > 0 })),
		LargestLoss:     metrics.Min(metrics.Filter(returns, func(r float64) bool { return r < 0 })),
		ProfitFactor:    cmp.ProfitFactor,
		RiskRewardRatio: cmp.RiskRewardRatio,
	}
	if len(returns) > 0 {
		s.WinRate = float64(cmp.Winners.Count) / float64(len(returns)) * 100
	}
	return s
}
