package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func mkTrade(id int64, exit time.Time, r float64) Trade {
	return Trade{ID: id, EntryTime: exit.Add(-time.Hour), ExitTime: exit, ReturnPct: r}
}

func TestNewTradeTable_SortsByExitThenID(t *testing.T) {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	tt, err := NewTradeTable([]Trade{
		mkTrade(3, base.Add(2*time.Hour), 3),
		mkTrade(2, base.Add(time.Hour), 2),
		mkTrade(1, base.Add(time.Hour), 1),
	})
	if err != nil {
		t.Fatalf("NewTradeTable: %v", err)
	}

	got := tt.Returns()
	want := []float64{1, 2, 3}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Returns()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	if tt.Trades()[0].Direction != DirectionLong {
		t.Errorf("default direction = %q, want LONG", tt.Trades()[0].Direction)
	}
}

func TestNewTradeTable_DuplicateID(t *testing.T) {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	_, err := NewTradeTable([]Trade{mkTrade(1, base, 1), mkTrade(1, base, 2)})
	if !errors.Is(err, ErrDuplicateID) {
		t.Errorf("expected ErrDuplicateID, got %v", err)
	}
}

func TestNewTradeTable_InvalidDirection(t *testing.T) {
	tr := mkTrade(1, time.Now(), 1)
	tr.Direction = "SIDEWAYS"
	_, err := NewTradeTable([]Trade{tr})
	if !errors.Is(err, ErrInvalidTrade) {
		t.Errorf("expected ErrInvalidTrade, got %v", err)
	}
}

func TestTrade_HoldingClamped(t *testing.T) {
	now := time.Now()
	tr := Trade{EntryTime: now, ExitTime: now.Add(-time.Hour)}
	if tr.Holding() != 0 {
		t.Errorf("Holding() = %v, want 0", tr.Holding())
	}
}

func TestTrade_PriceReturnPct(t *testing.T) {
	tr := Trade{
		Direction:  DirectionShort,
		EntryPrice: decimal.RequireFromString("100"),
		ExitPrice:  decimal.RequireFromString("95"),
	}
	got, ok := tr.PriceReturnPct()
	if !ok || got != 5 {
		t.Errorf("PriceReturnPct() = %v, %v; want 5, true", got, ok)
	}

	if _, ok := (Trade{}).PriceReturnPct(); ok {
		t.Error("expected ok=false without prices")
	}
}

func TestTradeTable_AccessorsReturnCopies(t *testing.T) {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	tt, _ := NewTradeTable([]Trade{mkTrade(1, base, 1)})

	r := tt.Returns()
	r[0] = 99
	trades := tt.Trades()
	trades[0].ReturnPct = 99

	if tt.Returns()[0] != 1 {
		t.Error("table mutated through accessor")
	}
}

func TestTradeTable_SpanAndDays(t *testing.T) {
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	tt, _ := NewTradeTable([]Trade{
		mkTrade(1, base, 1),
		mkTrade(2, base.Add(10*24*time.Hour), 1),
		mkTrade(3, base.Add(10*24*time.Hour+time.Minute), 1),
	})

	start, end := tt.Span()
	if !start.Equal(base.Add(-time.Hour)) {
		t.Errorf("start = %v", start)
	}
	if !end.Equal(base.Add(10*24*time.Hour + time.Minute)) {
		t.Errorf("end = %v", end)
	}
	if tt.TotalDays() != 10 {
		t.Errorf("TotalDays() = %d, want 10", tt.TotalDays())
	}
	if tt.TradingDays() != 2 {
		t.Errorf("TradingDays() = %d, want 2", tt.TradingDays())
	}
}

func TestTradeTable_Slice(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var trades []Trade
	for i := 0; i < 10; i++ {
		trades = append(trades, mkTrade(int64(i), base.Add(time.Duration(i)*time.Hour), float64(i)))
	}
	tt, _ := NewTradeTable(trades)

	sub := tt.Slice(7, 20)
	if sub.Len() != 3 {
		t.Fatalf("Slice len = %d, want 3", sub.Len())
	}
	if sub.Returns()[0] != 7 {
		t.Errorf("Slice first = %v, want 7", sub.Returns()[0])
	}
	if tt.Slice(8, 2).Len() != 0 {
		t.Error("inverted slice should be empty")
	}
}

func TestTradeTable_ContentHash(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	a, _ := NewTradeTable([]Trade{mkTrade(1, base, 1), mkTrade(2, base.Add(time.Hour), 2)})
	b, _ := NewTradeTable([]Trade{mkTrade(2, base.Add(time.Hour), 2), mkTrade(1, base, 1)})
	c, _ := NewTradeTable([]Trade{mkTrade(1, base, 1), mkTrade(2, base.Add(time.Hour), 2.5)})

	if len(a.ContentHash()) != 64 {
		t.Errorf("hash length = %d, want 64", len(a.ContentHash()))
	}
	if a.ContentHash() != b.ContentHash() {
		t.Error("input order should not change hash")
	}
	if a.ContentHash() == c.ContentHash() {
		t.Error("different returns should change hash")
	}
}

func TestTradeTable_OptionalFields(t *testing.T) {
	v := 1.0
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tr1 := mkTrade(1, base, 1)
	tr1.RunupPct = &v
	tr2 := mkTrade(2, base, 1)

	tt, _ := NewTradeTable([]Trade{tr1, tr2})
	if tt.HasRunup() {
		t.Error("HasRunup should require every trade")
	}
	empty, _ := NewTradeTable(nil)
	if empty.HasCumulative() {
		t.Error("empty table has no cumulative column")
	}
}
