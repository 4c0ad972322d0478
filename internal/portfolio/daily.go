package portfolio

import (
	"time"

	"github.com/shopspring/decimal"

	"strategy-validator/internal/domain"
)

const dateLayout = "2006-01-02"

// DailyReturn is the summed decimal return of all trades exiting on Date.
type DailyReturn struct {
	Date   time.Time
	Return float64
}

// DailyReturns aggregates trade returns by UTC exit date over every calendar
// day from the first entry to the last exit. Days without exits are zero.
func DailyReturns(tt *domain.TradeTable) []DailyReturn {
	if tt == nil || tt.Len() == 0 {
		return nil
	}

	hundred := decimal.NewFromInt(100)
	sums := make(map[string]decimal.Decimal)
	for _, t := range tt.Trades() {
		key := t.ExitTime.UTC().Format(dateLayout)
		sums[key] = sums[key].Add(decimal.NewFromFloat(t.ReturnPct).Div(hundred))
	}

	start, end := tt.Span()
	first := truncateDay(start)
	last := truncateDay(end)

	var out []DailyReturn
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		r, _ := sums[d.Format(dateLayout)].Float64()
		out = append(out, DailyReturn{Date: d, Return: r})
	}
	return out
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func values(daily []DailyReturn) []float64 {
	out := make([]float64, len(daily))
	for i, d := range daily {
		out[i] = d.Return
	}
	return out
}
