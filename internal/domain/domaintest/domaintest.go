// Package domaintest builds trade tables for tests.
package domaintest

import (
	"testing"
	"time"

	"strategy-validator/internal/domain"
)

// Epoch is the entry time of the first trade built by this package.
var Epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// Trades builds trades with the given returns, one per day starting at Epoch.
// Each trade is held for 4 hours.
func Trades(returns ...float64) []domain.Trade {
	return TradesEvery(24*time.Hour, 4*time.Hour, returns...)
}

// TradesEvery builds trades spaced by step, each held for hold.
func TradesEvery(step, hold time.Duration, returns ...float64) []domain.Trade {
	trades := make([]domain.Trade, len(returns))
	for i, r := range returns {
		entry := Epoch.Add(time.Duration(i) * step)
		trades[i] = domain.Trade{
			ID:        int64(i + 1),
			Direction: domain.DirectionLong,
			EntryTime: entry,
			ExitTime:  entry.Add(hold),
			ReturnPct: r,
		}
	}
	return trades
}

// Table builds a daily table from returns and fails the test on error.
func Table(t testing.TB, returns ...float64) *domain.TradeTable {
	t.Helper()
	return FromTrades(t, Trades(returns...))
}

// FromTrades wraps domain.NewTradeTable and fails the test on error.
func FromTrades(t testing.TB, trades []domain.Trade) *domain.TradeTable {
	t.Helper()
	tt, err := domain.NewTradeTable(trades)
	if err != nil {
		t.Fatalf("NewTradeTable: %v", err)
	}
	return tt
}

// Repeat returns pattern repeated n times.
func Repeat(n int, pattern ...float64) []float64 {
	out := make([]float64, 0, n*len(pattern))
	for i := 0; i < n; i++ {
		out = append(out, pattern...)
	}
	return out
}
