package trades

import (
	"strategy-validator/internal/domain"
	"strategy-validator/internal/metrics"
)

// Signal strength buckets, derived from a trade's run-up percent. A trade
// that barely moved in its favor after entry carries a weak entry signal.
const (
	SignalExtremelyWeak = "extremely_weak"
	SignalVeryWeak      = "very_weak"
	SignalWeak          = "weak"
	SignalNormal        = "normal"
	SignalMedium        = "medium"
	SignalStrong        = "strong"
)

// SignalStrengths lists the buckets from weakest to strongest.
var SignalStrengths = []string{
	SignalExtremelyWeak, SignalVeryWeak, SignalWeak,
	SignalNormal, SignalMedium, SignalStrong,
}

// SignalStrength buckets a run-up percent: < 0.3, < 0.5, < 1, < 2, < 5, else.
func SignalStrength(runup float64) string {
	switch {
	case runup < 0.3:
		return SignalExtremelyWeak
	case runup < 0.5:
		return SignalVeryWeak
	case runup < 1:
		return SignalWeak
	case runup < 2:
		return SignalNormal
	case runup < 5:
		return SignalMedium
	default:
		return SignalStrong
	}
}

// SignalBucket describes the trades of one signal strength.
type SignalBucket struct {
	Strength        string  `json:"signal_strength"`
	Count           int     `json:"count"`
	Winners         int     `json:"winning"`
	Losers          int     `json:"losing"`
	WinRate         float64 `json:"win_rate"`
	LossRate        float64 `json:"loss_rate"`
	AvgReturn       float64 `json:"avg_return"`
	TotalReturn     float64 `json:"total_return"`
	AvgWin          float64 `json:"avg_win"`
	AvgLoss         float64 `json:"avg_loss"`
	AvgRunup        float64 `json:"avg_runup"`
	AvgHoldingHours float64 `json:"avg_holding_hours"`
}

// SignalBreakdown groups trades by signal strength. Only non-empty buckets
// are returned, in SignalStrengths order. Rates are percent; winners have
// r > 0 and losers r < 0. Every trade must carry RunupPct.
func SignalBreakdown(trades []domain.Trade) []SignalBucket {
	groups := make(map[string][]domain.Trade, len(SignalStrengths))
	for _, t := range trades {
		s := SignalStrength(*t.RunupPct)
		groups[s] = append(groups[s], t)
	}

	out := make([]SignalBucket, 0, len(groups))
	for _, s := range SignalStrengths {
		group := groups[s]
		if len(group) == 0 {
			continue
		}
		var returns, wins, losses, runups, hours []float64
		for _, t := range group {
			returns = append(returns, t.ReturnPct)
			runups = append(runups, *t.RunupPct)
			hours = append(hours, t.HoldingHours())
			switch {
			case t.IsWin():
				wins = append(wins, t.ReturnPct)
			case t.IsLoss():
				losses = append(losses, t.ReturnPct)
			}
		}
		n := float64(len(group))
		out = append(out, SignalBucket{
			Strength:        s,
			Count:           len(group),
			Winners:         len(wins),
			Losers:          len(losses),
			WinRate:         float64(len(wins)) / n * 100,
			LossRate:        float64(len(losses)) / n * 100,
			AvgReturn:       metrics.Mean(returns),
			TotalReturn:     metrics.Sum(returns),
			AvgWin:          metrics.Mean(wins),
			AvgLoss:         metrics.Mean(losses),
			AvgRunup:        metrics.Mean(runups),
			AvgHoldingHours: metrics.Mean(hours),
		})
	}
	return out
}
