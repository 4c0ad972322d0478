package trades

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"strategy-validator/internal/analysis"
	"strategy-validator/internal/domain"
	"strategy-validator/internal/domain/domaintest"
)

// excursionTrades builds daily trades from (return, run-up, drawdown) rows.
func excursionTrades(rows ...[3]float64) []domain.Trade {
	returns := make([]float64, len(rows))
	for i, r := range rows {
		returns[i] = r[0]
	}
	trades := domaintest.Trades(returns...)
	for i, r := range rows {
		up, dd := r[1], r[2]
		trades[i].RunupPct, trades[i].DrawdownPct = &up, &dd
	}
	return trades
}

func sampleExcursions(t *testing.T) *domain.TradeTable {
	return domaintest.FromTrades(t, excursionTrades(
		[3]float64{8, 9, -0.5},     // strong, fast rise
		[3]float64{3, 2.5, -0.5},   // medium, sustained rise
		[3]float64{1.5, 3.5, -2.5}, // medium, volatile
		[3]float64{0.5, 0.8, -0.2}, // weak, other
		[3]float64{-2.5, 0.2, -3.5},
		[3]float64{-1, 0.4, -1.5},
		[3]float64{-3, 3, -4},
		[3]float64{0, 1, -0.1},
	))
}

func TestSignalStrength(t *testing.T) {
	tests := []struct {
		runup float64
		want  string
	}{
		{0, SignalExtremelyWeak},
		{0.29, SignalExtremelyWeak},
		{0.3, SignalVeryWeak},
		{0.49, SignalVeryWeak},
		{0.5, SignalWeak},
		{1, SignalNormal},
		{1.99, SignalNormal},
		{2, SignalMedium},
		{4.99, SignalMedium},
		{5, SignalStrong},
		{40, SignalStrong},
	}
	for _, tt := range tests {
		if got := SignalStrength(tt.runup); got != tt.want {
			t.Errorf("SignalStrength(%v) = %s, want %s", tt.runup, got, tt.want)
		}
	}
}

func TestSignalBreakdown(t *testing.T) {
	buckets := SignalBreakdown(sampleExcursions(t).Trades())
	require.Len(t, buckets, len(SignalStrengths))

	total := 0
	for i, b := range buckets {
		assert.Equal(t, SignalStrengths[i], b.Strength)
		total += b.Count
	}
	assert.Equal(t, 8, total)

	medium := buckets[4]
	assert.Equal(t, SignalMedium, medium.Strength)
	assert.Equal(t, 3, medium.Count)
	assert.Equal(t, 2, medium.Winners)
	assert.Equal(t, 1, medium.Losers)
	assert.InDelta(t, 200.0/3, medium.WinRate, 1e-9)
	assert.InDelta(t, 2.25, medium.AvgWin, 1e-12)
	assert.InDelta(t, -3, medium.AvgLoss, 1e-12)

	normal := buckets[3]
	assert.Equal(t, 0, normal.Winners+normal.Losers, "flat trade is neither")
}

func TestAnalyzeProfitLoss_RequiresExcursions(t *testing.T) {
	assert.Nil(t, AnalyzeProfitLoss(domaintest.Table(t, 1, -1, 2)))

	res, err := New(analysis.DefaultParams()).Analyze(domaintest.Table(t, 1, -1))
	require.NoError(t, err)
	assert.Nil(t, res.ProfitLoss)
}

func TestAnalyzeProfitLoss_Profit(t *testing.T) {
	res, err := New(analysis.DefaultParams()).Analyze(sampleExcursions(t))
	require.NoError(t, err)
	require.NotNil(t, res.ProfitLoss)
	p := res.ProfitLoss.Profit

	assert.Equal(t, 4, p.Summary.Count)
	assert.InDelta(t, 50, p.Summary.Rate, 1e-12)
	assert.InDelta(t, 13, p.Summary.TotalReturn, 1e-12)
	assert.Equal(t, 8.0, p.Summary.MaxReturn)
	assert.Equal(t, 0.5, p.Summary.MinReturn)

	var ids []int64
	for _, row := range p.TopTrades {
		ids = append(ids, row.ID)
	}
	assert.Equal(t, []int64{1, 2, 3, 4}, ids)
	assert.Equal(t, SignalStrong, p.TopTrades[0].SignalStrength)

	require.NotNil(t, p.TopPattern)
	assert.Equal(t, 4, p.TopPattern.Trades)
	assert.Equal(t, SignalMedium, p.TopPattern.DominantSignal)
	assert.Equal(t, "short", p.TopPattern.HoldingPattern)

	require.Len(t, p.Patterns, 4)
	want := []string{PatternFastRise, PatternSustainedRise, PatternVolatile, PatternOther}
	for i, g := range p.Patterns {
		assert.Equal(t, want[i], g.Pattern)
		assert.Equal(t, []int64{int64(i + 1)}, g.TradeIDs)
	}
}

func TestAnalyzeProfitLoss_Loss(t *testing.T) {
	pl := AnalyzeProfitLoss(sampleExcursions(t))
	require.NotNil(t, pl)
	l := pl.Loss

	assert.Equal(t, 3, l.Summary.Count)
	assert.InDelta(t, -6.5, l.Summary.TotalReturn, 1e-12)
	assert.Equal(t, -3.0, l.Summary.MinReturn)

	require.NotNil(t, l.StopOut)
	assert.Equal(t, 1, l.StopOut.Count)
	assert.Equal(t, []int64{5}, l.StopOut.TradeIDs)
	assert.InDelta(t, 100.0/3, l.StopOut.RatioOfLosses, 1e-9)
	assert.InDelta(t, 12.5, l.StopOut.RatioOfTotal, 1e-12)
	require.Len(t, l.StopOut.SameSignal, 1)
	assert.Equal(t, SignalExtremelyWeak, l.StopOut.SameSignal[0].Strength)
	assert.Equal(t, 0.0, l.StopOut.SameSignal[0].WinRate)

	patterns := map[string][]int64{}
	for _, g := range l.Patterns {
		patterns[g.Pattern] = g.TradeIDs
	}
	assert.Equal(t, map[string][]int64{
		PatternImmediateReversal: {5, 6},
		PatternReversalAfterRise: {7},
		PatternContinuousDecline: {5},
	}, patterns)

	var priorities []string
	for _, s := range l.Suggestions {
		priorities = append(priorities, s.Priority)
	}
	assert.Equal(t, []string{PriorityCritical, PriorityHigh, PriorityMedium}, priorities)
}

func TestAnalyzeProfitLoss_LongHolds(t *testing.T) {
	trades := excursionTrades(
		[3]float64{2, 1.5, -0.5},
		[3]float64{-1, 1.5, -0.8},
	)
	for i := range trades {
		trades[i].ExitTime = trades[i].EntryTime.Add(6 * 24 * time.Hour)
	}
	pl := AnalyzeProfitLoss(domaintest.FromTrades(t, trades))
	require.NotNil(t, pl)

	require.Len(t, pl.Profit.Patterns, 1)
	assert.Equal(t, PatternTimeProfit, pl.Profit.Patterns[0].Pattern)
	assert.Equal(t, "long", pl.Profit.TopPattern.HoldingPattern)

	require.Len(t, pl.Loss.Suggestions, 1)
	assert.Equal(t, PriorityLow, pl.Loss.Suggestions[0].Priority)
	assert.Equal(t, 0, pl.Loss.StopOut.Count)
}

func TestAnalyzeProfitLoss_NoLosers(t *testing.T) {
	pl := AnalyzeProfitLoss(domaintest.FromTrades(t, excursionTrades([3]float64{2, 3, -0.1})))
	require.NotNil(t, pl)
	assert.Nil(t, pl.Loss.StopOut)
	assert.Empty(t, pl.Loss.Patterns)
	assert.Empty(t, pl.Loss.Suggestions)
}
