package timeseries

import (
	"fmt"
	"sort"

	"strategy-validator/internal/domain"
	"strategy-validator/internal/metrics"
)

// PeriodReturn is the summed return of one calendar period.
type PeriodReturn struct {
	Period string  `json:"period"`
	Return float64 `json:"return"`
	Trades int     `json:"trades"`
}

// PeriodSummary summarizes a set of calendar periods.
type PeriodSummary struct {
	Periods  []PeriodReturn `json:"periods"`
	Total    int            `json:"total_periods"`
	Positive int            `json:"positive_periods"`
	Negative int            `json:"negative_periods"`
	Zero     int            `json:"zero_periods"`
	Avg      float64        `json:"avg_return"`
	Std      float64        `json:"std_return"`
	Max      float64        `json:"max_return"`
	Min      float64        `json:"min_return"`
}

// Periodic is the monthly performance block with quarterly and yearly roll-ups.
type Periodic struct {
	Months             []PeriodReturn `json:"months"`
	TotalMonths        int            `json:"total_months"`
	PositiveMonths     int            `json:"positive_months"`
	NegativeMonths     int            `json:"negative_months"`
	ZeroMonths         int            `json:"zero_months"`
	AvgMonthlyReturn   float64        `json:"avg_monthly_return"`
	StdMonthlyReturn   float64        `json:"std_monthly_return"`
	MaxMonthlyReturn   float64        `json:"max_monthly_return"`
	MinMonthlyReturn   float64        `json:"min_monthly_return"`
	MonthlyConsistency float64        `json:"monthly_consistency"`
	Quarterly          PeriodSummary  `json:"quarterly"`
	Yearly             PeriodSummary  `json:"yearly"`
}

// AnalyzePeriods groups returns by calendar month, quarter and year of exit.
// Monthly consistency is std(monthly totals) / |mean(monthly totals) + Epsilon|.
func AnalyzePeriods(trades []domain.Trade) Periodic {
	monthly := summarize(trades, func(t domain.Trade) string {
		return t.ExitTime.UTC().Format("2006-01")
	})
	quarterly := summarize(trades, func(t domain.Trade) string {
		ts := t.ExitTime.UTC()
		return fmt.Sprintf("%d-Q%d", ts.Year(), (int(ts.Month())-1)/3+1)
	})
	yearly := summarize(trades, func(t domain.Trade) string {
		return fmt.Sprintf("%d", t.ExitTime.UTC().Year())
	})

	consistency := 0.0
	if monthly.Total > 0 {
		consistency = monthly.Std / abs(monthly.Avg+metrics.Epsilon)
	}

	return Periodic{
		Months:             monthly.Periods,
		TotalMonths:        monthly.Total,
		PositiveMonths:     monthly.Positive,
		NegativeMonths:     monthly.Negative,
		ZeroMonths:         monthly.Zero,
		AvgMonthlyReturn:   monthly.Avg,
		StdMonthlyReturn:   monthly.Std,
		MaxMonthlyReturn:   monthly.Max,
		MinMonthlyReturn:   monthly.Min,
		MonthlyConsistency: consistency,
		Quarterly:          quarterly,
		Yearly:             yearly,
	}
}

// summarize groups trades by key and sums returns per group.
// Periods are ordered by key, which sorts chronologically for the formats used.
func summarize(trades []domain.Trade, key func(domain.Trade) string) PeriodSummary {
	sums := make(map[string]*PeriodReturn)
	for _, t := range trades {
		k := key(t)
		p, ok := sums[k]
		if !ok {
			p = &PeriodReturn{Period: k}
			sums[k] = p
		}
		p.Return += t.ReturnPct
		p.Trades++
	}

	periods := make([]PeriodReturn, 0, len(sums))
	for _, p := range sums {
		periods = append(periods, *p)
	}
	sort.Slice(periods, func(i, j int) bool { return periods[i].Period < periods[j].Period })

	totals := make([]float64, len(periods))
	s := PeriodSummary{Periods: periods, Total: len(periods)}
	for i, p := range periods {
		totals[i] = p.Return
		switch {
		case p.Return > 0:
			s.Positive++
		case p.Return < 0:
			s.Negative++
		default:
			s.Zero++
		}
	}
	s.Avg = metrics.Mean(totals)
	s.Std = metrics.StdDev(totals, 1)
	s.Max = metrics.Max(totals)
	s.Min = metrics.Min(totals)
	return s
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
