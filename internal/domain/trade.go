package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Direction is the side of a closed trade.
type Direction string

// Direction values
const (
	DirectionLong  Direction = "LONG"
	DirectionShort Direction = "SHORT"
)

// Trade represents one closed trade of the strategy under validation.
// ReturnPct is signed percent (2.5 means +2.5%).
type Trade struct {
	ID        int64
	Direction Direction

	EntryTime time.Time
	ExitTime  time.Time

	// Prices are optional; zero means unknown.
	EntryPrice decimal.Decimal
	ExitPrice  decimal.Decimal

	ReturnPct float64

	// Optional per-trade fields.
	CumulativePct *float64 // running cumulative profit in percent
	RunupPct      *float64 // max favorable excursion, >= 0
	DrawdownPct   *float64 // max adverse excursion, <= 0
}

// Holding returns exit - entry, clamped to zero.
func (t Trade) Holding() time.Duration {
	d := t.ExitTime.Sub(t.EntryTime)
	if d < 0 {
		return 0
	}
	return d
}

// HoldingHours returns the holding period in hours.
func (t Trade) HoldingHours() float64 {
	return t.Holding().Hours()
}

// IsWin reports whether the trade closed with a positive return.
func (t Trade) IsWin() bool {
	return t.ReturnPct > 0
}

// IsLoss reports whether the trade closed with a negative return.
// Zero-return trades are neither wins nor losses.
func (t Trade) IsLoss() bool {
	return t.ReturnPct < 0
}

// PriceReturnPct derives the percent return from entry and exit prices.
// Returns false when either price is unknown.
func (t Trade) PriceReturnPct() (float64, bool) {
	if t.EntryPrice.IsZero() || t.ExitPrice.IsZero() {
		return 0, false
	}
	diff := t.ExitPrice.Sub(t.EntryPrice)
	if t.Direction == DirectionShort {
		diff = diff.Neg()
	}
	pct, _ := diff.Div(t.EntryPrice).Mul(decimal.NewFromInt(100)).Float64()
	return pct, true
}
