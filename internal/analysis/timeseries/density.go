package timeseries

import (
	"sort"
	"time"

	"strategy-validator/internal/domain"
	"strategy-validator/internal/metrics"
)

// Density status values.
const (
	DensityExtremeOvertrading  = "extreme_overtrading"
	DensityOvertradingWarning  = "overtrading_warning"
	DensityNormal              = "normal"
	DensityUndertradingWarning = "undertrading_warning"
	DensityExtremeUndertrading = "extreme_undertrading"
)

// Density describes how frequently the strategy trades.
type Density struct {
	TotalTrades       int     `json:"total_trades"`
	TotalDays         int     `json:"total_days"`
	TradingDays       int     `json:"trading_days"`
	DailyAvgTrades    float64 `json:"daily_avg_trades"`
	WeeklyAvgTrades   float64 `json:"weekly_avg_trades"`
	MonthlyAvgTrades  float64 `json:"monthly_avg_trades"`
	MaxTradesPerDay   int     `json:"max_trades_per_day"`
	MinTradesPerDay   int     `json:"min_trades_per_day"`
	AvgTradesPerDay   float64 `json:"avg_trades_per_day"`
	StdTradesPerDay   float64 `json:"std_trades_per_day"`
	OvertradingStatus string  `json:"overtrading_status"`
}

// AnalyzeDensity averages trade counts over totalDays and over the calendar
// days that had at least one exit.
func AnalyzeDensity(trades []domain.Trade, totalDays int) Density {
	n := len(trades)
	res := Density{TotalTrades: n, TotalDays: totalDays}

	if totalDays > 0 {
		days := float64(totalDays)
		res.DailyAvgTrades = float64(n) / days
		res.WeeklyAvgTrades = float64(n) / (days / 7)
		res.MonthlyAvgTrades = float64(n) / (days / 30)
	}

	perDay := make(map[string]int)
	for _, t := range trades {
		perDay[t.ExitTime.UTC().Format(time.DateOnly)]++
	}
	keys := make([]string, 0, len(perDay))
	for k := range perDay {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	counts := make([]float64, len(keys))
	for i, k := range keys {
		counts[i] = float64(perDay[k])
	}

	res.TradingDays = len(counts)
	res.MaxTradesPerDay = int(metrics.Max(counts))
	res.MinTradesPerDay = int(metrics.Min(counts))
	res.AvgTradesPerDay = metrics.Mean(counts)
	res.StdTradesPerDay = metrics.StdDev(counts, 1)
	res.OvertradingStatus = densityStatus(res.DailyAvgTrades)
	return res
}

func densityStatus(daily float64) string {
	switch {
	case daily > 2:
		return DensityExtremeOvertrading
	case daily > 1:
		return DensityOvertradingWarning
	case daily >= 0.1:
		return DensityNormal
	case daily > 0.05:
		return DensityUndertradingWarning
	default:
		return DensityExtremeUndertrading
	}
}
