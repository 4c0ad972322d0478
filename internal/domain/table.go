package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"
)

// TradeTable is an immutable, ordered set of trades.
// Trades are sorted by ExitTime ASC, ID ASC. Accessors return copies so
// concurrent readers never share mutable state.
type TradeTable struct {
	trades []Trade
}

// NewTradeTable validates and sorts trades into a table.
// An empty input yields an empty table; analyzers decide how to treat it.
func NewTradeTable(trades []Trade) (*TradeTable, error) {
	seen := make(map[int64]struct{}, len(trades))
	sorted := make([]Trade, len(trades))
	for i, t := range trades {
		if _, ok := seen[t.ID]; ok {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateID, t.ID)
		}
		seen[t.ID] = struct{}{}

		if math.IsNaN(t.ReturnPct) || math.IsInf(t.ReturnPct, 0) {
			return nil, fmt.Errorf("%w: trade %d has non-finite return", ErrInvalidTrade, t.ID)
		}
		if t.Direction == "" {
			t.Direction = DirectionLong
		}
		if t.Direction != DirectionLong && t.Direction != DirectionShort {
			return nil, fmt.Errorf("%w: trade %d has direction %q", ErrInvalidTrade, t.ID, t.Direction)
		}
		sorted[i] = t
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].ExitTime.Equal(sorted[j].ExitTime) {
			return sorted[i].ExitTime.Before(sorted[j].ExitTime)
		}
		return sorted[i].ID < sorted[j].ID
	})

	return &TradeTable{trades: sorted}, nil
}

// Len returns the number of trades.
func (tt *TradeTable) Len() int {
	return len(tt.trades)
}

// Trades returns a copy of the ordered trades.
func (tt *TradeTable) Trades() []Trade {
	out := make([]Trade, len(tt.trades))
	copy(out, tt.trades)
	return out
}

// Returns returns percent returns in table order.
func (tt *TradeTable) Returns() []float64 {
	out := make([]float64, len(tt.trades))
	for i, t := range tt.trades {
		out[i] = t.ReturnPct
	}
	return out
}

// DecimalReturns returns returns as fractions (percent / 100).
func (tt *TradeTable) DecimalReturns() []float64 {
	out := make([]float64, len(tt.trades))
	for i, t := range tt.trades {
		out[i] = t.ReturnPct / 100
	}
	return out
}

// HoldingHours returns holding periods in hours, in table order.
func (tt *TradeTable) HoldingHours() []float64 {
	out := make([]float64, len(tt.trades))
	for i, t := range tt.trades {
		out[i] = t.HoldingHours()
	}
	return out
}

// Span returns the earliest entry time and the latest exit time.
func (tt *TradeTable) Span() (start, end time.Time) {
	if len(tt.trades) == 0 {
		return time.Time{}, time.Time{}
	}
	start = tt.trades[0].EntryTime
	end = tt.trades[0].ExitTime
	for _, t := range tt.trades {
		if t.EntryTime.Before(start) {
			start = t.EntryTime
		}
		if t.ExitTime.After(end) {
			end = t.ExitTime
		}
	}
	return start, end
}

// TotalDays returns the whole number of days covered by Span.
func (tt *TradeTable) TotalDays() int {
	start, end := tt.Span()
	if end.Before(start) {
		return 0
	}
	return int(end.Sub(start) / (24 * time.Hour))
}

// TradingDays returns the number of distinct UTC calendar days with an exit.
func (tt *TradeTable) TradingDays() int {
	days := make(map[string]struct{})
	for _, t := range tt.trades {
		days[t.ExitTime.UTC().Format(time.DateOnly)] = struct{}{}
	}
	return len(days)
}

// HasCumulative reports whether every trade carries CumulativePct.
func (tt *TradeTable) HasCumulative() bool {
	return tt.all(func(t Trade) bool { return t.CumulativePct != nil })
}

// HasRunup reports whether every trade carries RunupPct.
func (tt *TradeTable) HasRunup() bool {
	return tt.all(func(t Trade) bool { return t.RunupPct != nil })
}

// HasDrawdown reports whether every trade carries DrawdownPct.
func (tt *TradeTable) HasDrawdown() bool {
	return tt.all(func(t Trade) bool { return t.DrawdownPct != nil })
}

func (tt *TradeTable) all(pred func(Trade) bool) bool {
	if len(tt.trades) == 0 {
		return false
	}
	for _, t := range tt.trades {
		if !pred(t) {
			return false
		}
	}
	return true
}

// Slice returns the sub-table [from, to) in table order.
// Bounds are clamped to the table size.
func (tt *TradeTable) Slice(from, to int) *TradeTable {
	n := len(tt.trades)
	if from < 0 {
		from = 0
	}
	if to > n {
		to = n
	}
	if from > to {
		from = to
	}
	out := make([]Trade, to-from)
	copy(out, tt.trades[from:to])
	return &TradeTable{trades: out}
}

// ContentHash computes a deterministic SHA256 over the table contents.
// Returns hex-encoded hash (64 characters).
func (tt *TradeTable) ContentHash() string {
	h := sha256.New()
	for _, t := range tt.trades {
		fmt.Fprintf(h, "%d|%s|%d|%d|%s|%s|%s|%s|%s|%s\n",
			t.ID,
			t.Direction,
			t.EntryTime.UnixNano(),
			t.ExitTime.UnixNano(),
			t.EntryPrice.String(),
			t.ExitPrice.String(),
			strconv.FormatFloat(t.ReturnPct, 'g', -1, 64),
			optString(t.CumulativePct),
			optString(t.RunupPct),
			optString(t.DrawdownPct),
		)
	}
	return hex.EncodeToString(h.Sum(nil))
}

func optString(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'g', -1, 64)
}
