package portfolio

import (
	"context"
	"math"

	"strategy-validator/internal/metrics"
)

const (
	periodsPerYear = metrics.TradingDaysPerYear
	calendarYear   = 365.0
	varConfidence  = 0.95
)

// LocalProvider computes Metrics in process.
type LocalProvider struct{}

// NewLocalProvider returns a LocalProvider.
func NewLocalProvider() *LocalProvider {
	return &LocalProvider{}
}

// Name implements Provider.
func (p *LocalProvider) Name() string { return "local" }

// Metrics implements Provider.
func (p *LocalProvider) Metrics(ctx context.Context, daily []DailyReturn) (*Metrics, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(daily) == 0 {
		return nil, ErrNoReturns
	}
	return Compute(daily), nil
}

// Compute derives every metric from daily decimal returns. Sharpe, Sortino
// and volatility annualize with 252 periods; CAGR uses calendar years.
func Compute(daily []DailyReturn) *Metrics {
	r := values(daily)
	n := len(r)
	m := &Metrics{}
	if n == 0 {
		return m
	}

	curve := wealth(r)
	total := curve[len(curve)-1] - 1
	maxDD := metrics.MaxDrawdownRatio(curve)
	m.MaxDrawdown = finite(maxDD)

	years := daily[n-1].Date.Sub(daily[0].Date).Hours() / 24 / calendarYear
	var cagr float64
	if years > 0 && total > -1 {
		cagr = math.Pow(1+total, 1/years) - 1
		m.CAGR = finite(cagr)
	}

	mean := metrics.Mean(r)
	std := metrics.StdDev(r, 1)
	annual := math.Sqrt(periodsPerYear)
	if n > 1 {
		m.Volatility = finite(std * annual)
		if std > 0 {
			m.Sharpe = finite(mean / std * annual)
		}
	}

	var downside float64
	for _, v := range r {
		if v < 0 {
			downside += v * v
		}
	}
	if downside > 0 {
		m.Sortino = finite(mean / math.Sqrt(downside/float64(n)) * annual)
	}

	if m.CAGR != nil && maxDD < 0 {
		m.Calmar = finite(cagr / math.Abs(maxDD))
	}

	if n > 1 {
		v := mean + std*metrics.NormalQuantile(1-varConfidence)
		m.VaR = finite(v)
		tail := metrics.Filter(r, func(x float64) bool { return x < v })
		if len(tail) > 0 {
			m.CVaR = finite(metrics.Mean(tail))
		} else {
			m.CVaR = finite(v)
		}
	}

	wins := metrics.Filter(r, func(x float64) bool { return x > 0 })
	winRate := float64(len(wins)) / float64(n)
	m.RiskOfRuin = finite(math.Pow((1-winRate)/(1+winRate), float64(n)))

	m.UlcerIndex = finite(ulcerIndex(curve))

	var losses float64
	for _, v := range r {
		if v < 0 {
			losses += v
		}
	}
	if losses < 0 {
		m.GainPainRatio = finite(metrics.Sum(r) / math.Abs(losses))
	}
	if maxDD < 0 {
		m.RecoveryFactor = finite(metrics.Sum(r) / math.Abs(maxDD))
	}
	return m
}

// wealth returns the compounded value of 1 unit, starting with the 1 itself.
func wealth(r []float64) []float64 {
	out := make([]float64, len(r)+1)
	out[0] = 1
	for i, v := range r {
		out[i+1] = out[i] * (1 + v)
	}
	return out
}

// ulcerIndex is the root mean square of percentage drawdowns.
func ulcerIndex(curve []float64) float64 {
	if len(curve) < 2 {
		return 0
	}
	peak := curve[0]
	var sq float64
	for _, v := range curve {
		if v > peak {
			peak = v
		}
		if peak <= 0 {
			continue
		}
		dd := (v - peak) / peak * 100
		sq += dd * dd
	}
	return math.Sqrt(sq / float64(len(curve)-1))
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
