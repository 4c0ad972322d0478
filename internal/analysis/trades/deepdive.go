package trades

import (
	"fmt"
	"sort"
	"time"

	"strategy-validator/internal/domain"
	"strategy-validator/internal/metrics"
)

const (
	// TopTradesN is the number of best winners listed.
	TopTradesN = 10
	// TopPatternN is the number of best winners profiled for a pattern.
	TopPatternN = 20
	// LongHoldingHours separates long from short holds (5 days).
	LongHoldingHours = 5 * 24.0
)

// Winning trade patterns.
const (
	PatternFastRise      = "fast_rise"
	PatternSustainedRise = "sustained_rise"
	PatternVolatile      = "volatile"
	PatternTimeProfit    = "time_profit"
	PatternOther         = "other"
)

// ProfitPatterns lists winning patterns in evaluation order.
var ProfitPatterns = []string{
	PatternFastRise, PatternSustainedRise, PatternVolatile, PatternTimeProfit, PatternOther,
}

// Losing trade patterns. A losing trade may match several.
const (
	PatternImmediateReversal = "immediate_reversal"
	PatternReversalAfterRise = "reversal_after_rise"
	PatternContinuousDecline = "continuous_decline"
	PatternTimeDecay         = "time_decay"
)

// Suggestion priorities.
const (
	PriorityCritical = "critical"
	PriorityHigh     = "high"
	PriorityMedium   = "medium"
	PriorityLow      = "low"
)

// ProfitLoss is the profit and loss deep dive. It needs run-up and
// drawdown on every trade.
type ProfitLoss struct {
	SignalStrength []SignalBucket `json:"signal_strength"`
	Profit         ProfitAnalysis `json:"profit"`
	Loss           LossAnalysis   `json:"loss"`
}

// SideSummary describes the winning or losing trades of a table.
// Rate is the side's share of all trades in percent.
type SideSummary struct {
	Count           int     `json:"count"`
	Rate            float64 `json:"rate"`
	TotalReturn     float64 `json:"total_return"`
	AvgReturn       float64 `json:"avg_return"`
	MedianReturn    float64 `json:"median_return"`
	MinReturn       float64 `json:"min_return"`
	MaxReturn       float64 `json:"max_return"`
	StdReturn       float64 `json:"std_return"`
	AvgRunup        float64 `json:"avg_runup"`
	AvgDrawdown     float64 `json:"avg_drawdown"`
	AvgHoldingHours float64 `json:"avg_holding_hours"`
}

// TradeRow is one listed trade.
type TradeRow struct {
	ID             int64     `json:"id"`
	EntryTime      time.Time `json:"entry_time"`
	ExitTime       time.Time `json:"exit_time"`
	ReturnPct      float64   `json:"return_pct"`
	RunupPct       float64   `json:"runup_pct"`
	DrawdownPct    float64   `json:"drawdown_pct"`
	HoldingHours   float64   `json:"holding_hours"`
	SignalStrength string    `json:"signal_strength"`
}

// TopPattern profiles the best winners.
type TopPattern struct {
	Trades          int     `json:"trades"`
	AvgReturn       float64 `json:"avg_return"`
	AvgRunup        float64 `json:"avg_runup"`
	AvgHoldingHours float64 `json:"avg_holding_hours"`
	DominantSignal  string  `json:"dominant_signal"`
	HoldingPattern  string  `json:"holding_pattern"`
}

// PatternGroup aggregates the trades of one pattern.
type PatternGroup struct {
	Pattern         string  `json:"pattern"`
	Count           int     `json:"count"`
	Ratio           float64 `json:"ratio"`
	AvgReturn       float64 `json:"avg_return"`
	TotalReturn     float64 `json:"total_return"`
	AvgRunup        float64 `json:"avg_runup"`
	AvgHoldingHours float64 `json:"avg_holding_hours"`
	TradeIDs        []int64 `json:"trade_ids"`
}

// ProfitAnalysis breaks down the winning trades (r > 0).
type ProfitAnalysis struct {
	Summary    SideSummary    `json:"summary"`
	BySignal   []SignalBucket `json:"by_signal_strength"`
	TopTrades  []TradeRow     `json:"top_trades"`
	TopPattern *TopPattern    `json:"top_pattern,omitempty"`
	Patterns   []PatternGroup `json:"patterns"`
}

// StopOut describes losing trades that never got a meaningful run-up
// (< 1%) and hit a drawdown below -2% before closing.
type StopOut struct {
	Count         int            `json:"count"`
	RatioOfLosses float64        `json:"ratio_of_losses"`
	RatioOfTotal  float64        `json:"ratio_of_total"`
	TotalLoss     float64        `json:"total_loss"`
	AvgLoss       float64        `json:"avg_loss"`
	MaxLoss       float64        `json:"max_loss"`
	TradeIDs      []int64        `json:"trade_ids"`
	SameSignal    []SignalBucket `json:"same_signal_comparison"`
}

// Suggestion is a rule-based improvement hint derived from loss patterns.
type Suggestion struct {
	Priority string `json:"priority"`
	Issue    string `json:"issue"`
	Detail   string `json:"detail"`
	Remedy   string `json:"remedy"`
}

// LossAnalysis breaks down the losing trades (r < 0).
type LossAnalysis struct {
	Summary     SideSummary    `json:"summary"`
	BySignal    []SignalBucket `json:"by_signal_strength"`
	StopOut     *StopOut       `json:"stop_without_target,omitempty"`
	Patterns    []PatternGroup `json:"patterns"`
	Suggestions []Suggestion   `json:"suggestions"`
}

// AnalyzeProfitLoss runs the deep dive. Returns nil unless every trade
// carries run-up and drawdown.
func AnalyzeProfitLoss(tt *domain.TradeTable) *ProfitLoss {
	if tt.Len() == 0 || !tt.HasRunup() || !tt.HasDrawdown() {
		return nil
	}
	all := tt.Trades()
	var winners, losers []domain.Trade
	for _, t := range all {
		switch {
		case t.IsWin():
			winners = append(winners, t)
		case t.IsLoss():
			losers = append(losers, t)
		}
	}
	breakdown := SignalBreakdown(all)
	return &ProfitLoss{
		SignalStrength: breakdown,
		Profit:         analyzeProfit(winners, len(all)),
		Loss:           analyzeLoss(losers, len(all), breakdown),
	}
}

func analyzeProfit(winners []domain.Trade, total int) ProfitAnalysis {
	pa := ProfitAnalysis{
		Summary:   summarizeSide(winners, total),
		BySignal:  SignalBreakdown(winners),
		TopTrades: []TradeRow{},
		Patterns:  []PatternGroup{},
	}
	if len(winners) == 0 {
		return pa
	}

	ranked := rankByReturn(winners)
	for _, t := range ranked[:min(TopTradesN, len(ranked))] {
		pa.TopTrades = append(pa.TopTrades, tradeRow(t))
	}
	pa.TopPattern = profileTop(ranked[:min(TopPatternN, len(ranked))])

	groups := make(map[string][]domain.Trade)
	for _, t := range winners {
		p := profitPattern(t)
		groups[p] = append(groups[p], t)
	}
	pa.Patterns = patternGroups(ProfitPatterns, groups, len(winners))
	return pa
}

// profitPattern classifies a winner. Rules are checked in order.
func profitPattern(t domain.Trade) string {
	runup, dd, r := *t.RunupPct, *t.DrawdownPct, t.ReturnPct
	switch {
	case runup >= 5 && r >= runup*0.8:
		return PatternFastRise
	case runup >= 2 && dd >= -1 && r >= 2:
		return PatternSustainedRise
	case runup >= 3 && dd <= -2 && r >= 1:
		return PatternVolatile
	case t.HoldingHours() >= LongHoldingHours && r >= 1:
		return PatternTimeProfit
	default:
		return PatternOther
	}
}

func profileTop(top []domain.Trade) *TopPattern {
	var returns, runups, hours []float64
	counts := make(map[string]int)
	for _, t := range top {
		returns = append(returns, t.ReturnPct)
		runups = append(runups, *t.RunupPct)
		hours = append(hours, t.HoldingHours())
		counts[SignalStrength(*t.RunupPct)]++
	}

	// Ties go to the weaker bucket.
	dominant, best := "", 0
	for _, s := range SignalStrengths {
		if counts[s] > best {
			dominant, best = s, counts[s]
		}
	}

	tp := &TopPattern{
		Trades:          len(top),
		AvgReturn:       metrics.Mean(returns),
		AvgRunup:        metrics.Mean(runups),
		AvgHoldingHours: metrics.Mean(hours),
		DominantSignal:  dominant,
		HoldingPattern:  "short",
	}
	if tp.AvgHoldingHours > LongHoldingHours {
		tp.HoldingPattern = "long"
	}
	return tp
}

func analyzeLoss(losers []domain.Trade, total int, breakdown []SignalBucket) LossAnalysis {
	la := LossAnalysis{
		Summary:     summarizeSide(losers, total),
		BySignal:    SignalBreakdown(losers),
		Patterns:    []PatternGroup{},
		Suggestions: []Suggestion{},
	}
	if len(losers) == 0 {
		return la
	}

	la.StopOut = stopOut(losers, total, breakdown)

	groups := make(map[string][]domain.Trade)
	for _, t := range losers {
		for _, p := range lossPatterns(t) {
			groups[p] = append(groups[p], t)
		}
	}
	la.Patterns = patternGroups([]string{
		PatternImmediateReversal, PatternReversalAfterRise, PatternContinuousDecline, PatternTimeDecay,
	}, groups, len(losers))

	var weak int
	for _, t := range losers {
		switch SignalStrength(*t.RunupPct) {
		case SignalExtremelyWeak, SignalVeryWeak, SignalWeak:
			weak++
		}
	}
	la.Suggestions = suggest(len(losers), weak, la.StopOut.Count, len(groups[PatternImmediateReversal]), len(groups[PatternTimeDecay]))
	return la
}

// lossPatterns returns every pattern a loser matches.
func lossPatterns(t domain.Trade) []string {
	runup, dd := *t.RunupPct, *t.DrawdownPct
	var out []string
	if runup < 0.5 && dd < -1 {
		out = append(out, PatternImmediateReversal)
	}
	if runup > 2 && dd < -runup {
		out = append(out, PatternReversalAfterRise)
	}
	if runup < 0.5 && dd < -3 {
		out = append(out, PatternContinuousDecline)
	}
	if t.HoldingHours() >= LongHoldingHours {
		out = append(out, PatternTimeDecay)
	}
	return out
}

func stopOut(losers []domain.Trade, total int, breakdown []SignalBucket) *StopOut {
	so := &StopOut{TradeIDs: []int64{}, SameSignal: []SignalBucket{}}
	var returns []float64
	strengths := make(map[string]bool)
	for _, t := range losers {
		if *t.RunupPct < 1 && *t.DrawdownPct < -2 {
			returns = append(returns, t.ReturnPct)
			so.TradeIDs = append(so.TradeIDs, t.ID)
			strengths[SignalStrength(*t.RunupPct)] = true
		}
	}
	so.Count = len(returns)
	if so.Count == 0 {
		return so
	}
	so.RatioOfLosses = float64(so.Count) / float64(len(losers)) * 100
	so.RatioOfTotal = float64(so.Count) / float64(total) * 100
	so.TotalLoss = metrics.Sum(returns)
	so.AvgLoss = metrics.Mean(returns)
	so.MaxLoss = metrics.Min(returns)
	for _, b := range breakdown {
		if strengths[b.Strength] {
			so.SameSignal = append(so.SameSignal, b)
		}
	}
	return so
}

// suggest applies the improvement rules. Shares are of losing trades.
func suggest(losers, weak, stopOuts, immediate, timeDecay int) []Suggestion {
	share := func(k int) float64 { return float64(k) / float64(losers) * 100 }
	detail := func(k int) string { return fmt.Sprintf("%d trades (%.1f%% of losses)", k, share(k)) }

	out := []Suggestion{}
	if share(weak) > 40 {
		out = append(out, Suggestion{
			Priority: PriorityCritical,
			Issue:    "too many entries on weak signals",
			Detail:   detail(weak),
			Remedy:   "tighten entry confirmation so trades with run-up below 1% are filtered out",
		})
	}
	if stopOuts > 0 && share(stopOuts) > 15 {
		out = append(out, Suggestion{
			Priority: PriorityHigh,
			Issue:    "full stop-outs without reaching a target",
			Detail:   detail(stopOuts),
			Remedy:   "size the stop to volatility (e.g. 1.5x ATR) or require a stronger trend confirmation",
		})
	}
	if share(immediate) > 25 {
		out = append(out, Suggestion{
			Priority: PriorityMedium,
			Issue:    "price reverses right after entry",
			Detail:   detail(immediate),
			Remedy:   "filter low-volume sessions and news windows, raise the minimum volume",
		})
	}
	if timeDecay > 0 {
		out = append(out, Suggestion{
			Priority: PriorityLow,
			Issue:    "losses from long holds",
			Detail:   detail(timeDecay),
			Remedy:   "cap the holding time or review the trailing stop",
		})
	}
	return out
}

func summarizeSide(trades []domain.Trade, total int) SideSummary {
	s := SideSummary{Count: len(trades)}
	if len(trades) == 0 {
		return s
	}
	var returns, runups, drawdowns, hours []float64
	for _, t := range trades {
		returns = append(returns, t.ReturnPct)
		runups = append(runups, *t.RunupPct)
		drawdowns = append(drawdowns, *t.DrawdownPct)
		hours = append(hours, t.HoldingHours())
	}
	s.Rate = float64(len(trades)) / float64(total) * 100
	s.TotalReturn = metrics.Sum(returns)
	s.AvgReturn = metrics.Mean(returns)
	s.MedianReturn = metrics.Median(returns)
	s.MinReturn = metrics.Min(returns)
	s.MaxReturn = metrics.Max(returns)
	s.StdReturn = metrics.StdDev(returns, 1)
	s.AvgRunup = metrics.Mean(runups)
	s.AvgDrawdown = metrics.Mean(drawdowns)
	s.AvgHoldingHours = metrics.Mean(hours)
	return s
}

func patternGroups(order []string, groups map[string][]domain.Trade, total int) []PatternGroup {
	out := []PatternGroup{}
	for _, p := range order {
		group := groups[p]
		if len(group) == 0 {
			continue
		}
		var returns, runups, hours []float64
		ids := make([]int64, 0, len(group))
		for _, t := range group {
			returns = append(returns, t.ReturnPct)
			runups = append(runups, *t.RunupPct)
			hours = append(hours, t.HoldingHours())
			ids = append(ids, t.ID)
		}
		out = append(out, PatternGroup{
			Pattern:         p,
			Count:           len(group),
			Ratio:           float64(len(group)) / float64(total) * 100,
			AvgReturn:       metrics.Mean(returns),
			TotalReturn:     metrics.Sum(returns),
			AvgRunup:        metrics.Mean(runups),
			AvgHoldingHours: metrics.Mean(hours),
			TradeIDs:        ids,
		})
	}
	return out
}

// rankByReturn returns a copy sorted by return descending, ties by ID.
func rankByReturn(trades []domain.Trade) []domain.Trade {
	ranked := append([]domain.Trade(nil), trades...)
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].ReturnPct != ranked[j].ReturnPct {
			return ranked[i].ReturnPct > ranked[j].ReturnPct
		}
		return ranked[i].ID < ranked[j].ID
	})
	return ranked
}

func tradeRow(t domain.Trade) TradeRow {
	return TradeRow{
		ID:             t.ID,
		EntryTime:      t.EntryTime,
		ExitTime:       t.ExitTime,
		ReturnPct:      t.ReturnPct,
		RunupPct:       *t.RunupPct,
		DrawdownPct:    *t.DrawdownPct,
		HoldingHours:   t.HoldingHours(),
		SignalStrength: SignalStrength(*t.RunupPct),
	}
}
