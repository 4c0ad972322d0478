package trades

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"strategy-validator/internal/analysis"
	"strategy-validator/internal/domain"
	"strategy-validator/internal/domain/domaintest"
)

func TestAnalyze_EmptyTable(t *testing.T) {
	empty, _ := domain.NewTradeTable(nil)
	if _, err := New(analysis.DefaultParams()).Analyze(empty); !errors.Is(err, domain.ErrEmptyTable) {
		t.Errorf("expected ErrEmptyTable, got %v", err)
	}
}

func TestCompare(t *testing.T) {
	tt := domaintest.Table(t, 4, 2, -1, -3, 0)
	cmp := Compare(tt)

	assert.Equal(t, 2, cmp.Winners.Count)
	assert.Equal(t, 3, cmp.Losers.Count, "zero return is a loser")
	assert.InDelta(t, 3, cmp.Winners.AvgReturn, 1e-12)
	assert.InDelta(t, -4.0/3, cmp.Losers.AvgReturn, 1e-12)
	assert.InDelta(t, 0.4, cmp.Winners.Ratio, 1e-12)
	assert.InDelta(t, 3/(4.0/3), cmp.RiskRewardRatio, 1e-12)
	// (3*2) / (4/3*3) = 1.5
	assert.InDelta(t, 1.5, cmp.ProfitFactor, 1e-12)
	assert.Nil(t, cmp.Winners.AvgRunup)
	require.NotNil(t, cmp.Winners.AvgHoldingHours)
	assert.InDelta(t, 4, *cmp.Winners.AvgHoldingHours, 1e-12)
}

func TestCompare_NoLosersGuardsProfitFactor(t *testing.T) {
	cmp := Compare(domaintest.Table(t, 1, 2, 3))
	assert.Equal(t, 0.0, cmp.ProfitFactor)
	assert.Equal(t, 0.0, cmp.RiskRewardRatio)
	assert.Equal(t, 0, cmp.Losers.Count)
}

func TestCompare_OptionalColumns(t *testing.T) {
	trades := domaintest.Trades(2, -1)
	up1, up2 := 3.0, 0.5
	dd1, dd2 := -0.2, -2.0
	trades[0].RunupPct, trades[0].DrawdownPct = &up1, &dd1
	trades[1].RunupPct, trades[1].DrawdownPct = &up2, &dd2

	cmp := Compare(domaintest.FromTrades(t, trades))
	require.NotNil(t, cmp.Winners.AvgRunup)
	assert.Equal(t, 3.0, *cmp.Winners.AvgRunup)
	require.NotNil(t, cmp.Losers.AvgDrawdown)
	assert.Equal(t, -2.0, *cmp.Losers.AvgDrawdown)
}

func TestReturnBand(t *testing.T) {
	tests := []struct {
		r    float64
		want string
	}{
		{15, BandLargeProfit},
		{10, BandMediumProfit},
		{3, BandSmallProfit},
		{1, BandTinyProfit},
		{0.01, BandTinyProfit},
		{0, BandFlat},
		{-1, BandTinyLoss},
		{-1.5, BandSmallLoss},
		{-3, BandSmallLoss},
		{-3.01, BandLargeLoss},
	}
	for _, tt := range tests {
		if got := ReturnBand(tt.r); got != tt.want {
			t.Errorf("ReturnBand(%v) = %s, want %s", tt.r, got, tt.want)
		}
	}
}

func TestHoldingBand(t *testing.T) {
	assert.Equal(t, HoldScalp, HoldingBand(0.5))
	assert.Equal(t, HoldShort, HoldingBand(1))
	assert.Equal(t, HoldMedium, HoldingBand(24))
	assert.Equal(t, HoldLong, HoldingBand(168))
}

func TestClassify_CountsSumToTotal(t *testing.T) {
	returns := []float64{-7, -2, -0.5, 0, 0.5, 2, 5, 12, 0, -0.1}
	trades := domaintest.TradesEvery(24*time.Hour, 30*time.Minute, returns...)
	trades[1].ExitTime = trades[1].EntryTime.Add(10 * 24 * time.Hour)
	trades[2].ExitTime = trades[2].EntryTime.Add(48 * time.Hour)

	c := Classify(trades)
	assert.Len(t, c.BySize, len(ReturnBands))
	assert.Len(t, c.ByHolding, len(HoldingBands))

	sizeTotal, holdTotal := 0, 0
	for _, b := range c.BySize {
		sizeTotal += b.Count
	}
	for _, b := range c.ByHolding {
		holdTotal += b.Count
	}
	assert.Equal(t, len(returns), sizeTotal)
	assert.Equal(t, len(returns), holdTotal)
	assert.Equal(t, 2, c.BySize[BandFlat].Count)
	assert.Equal(t, 1, c.ByHolding[HoldLong].Count)
	assert.Equal(t, 1, c.ByHolding[HoldMedium].Count)
	assert.Equal(t, 8, c.ByHolding[HoldScalp].Count)
	assert.InDelta(t, -7, c.BySize[BandLargeLoss].AvgReturn, 1e-12)
}

func TestSummarize(t *testing.T) {
	tt := domaintest.Table(t, 4, -2, 1, -1)
	res, err := New(analysis.DefaultParams()).Analyze(tt)
	require.NoError(t, err)

	s := res.Summary
	assert.Equal(t, 4, s.TotalTrades)
	assert.InDelta(t, 50, s.WinRate, 1e-12)
	assert.Equal(t, 4.0, s.LargestWin)
	assert.Equal(t, -2.0, s.LargestLoss)
	assert.Equal(t, res.Comparison.ProfitFactor, s.ProfitFactor)
}

func TestSummarize_LargestPerSide(t *testing.T) {
	cmp := Compare(domaintest.Table(t, -4, -1, 0))
	s := Summarize([]float64{-4, -1, 0}, cmp)
	assert.Equal(t, 0.0, s.LargestWin, "no winners")
	assert.Equal(t, -4.0, s.LargestLoss)

	s = Summarize([]float64{3, 0.5}, Compare(domaintest.Table(t, 3, 0.5)))
	assert.Equal(t, 3.0, s.LargestWin)
	assert.Equal(t, 0.0, s.LargestLoss, "no losers")
}
